// Package contactbridge reconciles two independently-owned contact
// directories through a shared, polled buffer, with no direct channel
// between the two sides.
//
// Each party runs on its own schedule. A run acquires the shared lock,
// pulls the other party's pending buffer rows into the local directory,
// then pushes the local labeled records back out. Pull runs before push so
// that a record just created from an incoming row is already marked
// consumed when the push phase computes its echo set, and is never bounced
// back to its origin. All state lives in the buffer; neither side retains memory
// between runs.
//
//	bridge, err := contactbridge.New(cfg,
//	    contactbridge.WithDirectory(dir),
//	    contactbridge.WithBufferStore(store),
//	    contactbridge.WithLocker(locker),
//	    contactbridge.WithRunLog(sink),
//	)
//	if err != nil { ... }
//	result, err := bridge.Sync(ctx)
package contactbridge
