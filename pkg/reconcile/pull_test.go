package reconcile_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/contactbridge/pkg/buffer"
	"github.com/agentstation/contactbridge/pkg/contacts"
	"github.com/agentstation/contactbridge/pkg/directory"
	"github.com/agentstation/contactbridge/pkg/logging"
	"github.com/agentstation/contactbridge/pkg/reconcile"
)

func pendingRow(t *testing.T, store buffer.Store, source string, rec *contacts.ContactRecord) string {
	t.Helper()
	payload, err := rec.Encode()
	require.NoError(t, err)
	fp := source + ":email:" + rec.PrimaryEmail()
	require.NoError(t, store.Upsert(context.Background(), buffer.Row{
		Fingerprint: fp,
		Source:      source,
		Payload:     payload,
		Status:      buffer.StatusPending,
	}))
	return fp
}

func newPull(dir *directory.Memory, store buffer.Store) *reconcile.PullProcessor {
	return reconcile.NewPullProcessor(partyA, testLabel, dir, store)
}

func TestPullCreatesUnmatchedRecord(t *testing.T) {
	ctx := context.Background()
	dir := directory.NewMemory()
	store := buffer.NewMemory()
	fp := pendingRow(t, store, partyB, record("Jane Doe", "jane@x.com"))

	res, err := newPull(dir, store).Pull(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.New)
	assert.Equal(t, 0, res.Merged)
	assert.Equal(t, 0, res.Failed)

	row, _ := store.Get(fp)
	assert.Equal(t, buffer.StatusConsumed, row.Status)

	labeled, err := dir.ListByLabel(ctx, testLabel)
	require.NoError(t, err)
	require.Len(t, labeled, 1)
	assert.Equal(t, "jane@x.com", labeled[0].PrimaryEmail())
}

func TestPullMergesMatchedRecord(t *testing.T) {
	ctx := context.Background()
	dir := directory.NewMemory()
	store := buffer.NewMemory()

	existing := record("Jane Doe", "jane@x.com")
	existing.Phones = []contacts.Item{{Value: "+1 555 0100", Label: "mobile"}}
	id := seedLabeled(t, dir, existing)

	incoming := record("Jane Doe", "jane@x.com")
	incoming.Phones = []contacts.Item{{Value: "+1 555 0100", Label: "work"}}
	fp := pendingRow(t, store, partyB, incoming)

	res, err := newPull(dir, store).Pull(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Merged)
	assert.Equal(t, 0, res.New)
	assert.Equal(t, 0, res.Failed)

	row, _ := store.Get(fp)
	assert.Equal(t, buffer.StatusConsumed, row.Status)

	got, ok := dir.Get(id)
	require.True(t, ok)
	require.Len(t, got.Phones, 1)
	assert.Equal(t, "work", got.Phones[0].Label, "label change must propagate")
}

func TestPullIgnoresOwnAndConsumedRows(t *testing.T) {
	ctx := context.Background()
	dir := directory.NewMemory()
	store := buffer.NewMemory()

	pendingRow(t, store, partyA, record("Own Record", "own@x.com"))
	fp := pendingRow(t, store, partyB, record("Jane Doe", "jane@x.com"))
	require.NoError(t, store.MarkConsumed(ctx, fp))

	res, err := newPull(dir, store).Pull(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, res.New)
	assert.Equal(t, 0, res.Merged)
	assert.Equal(t, 0, dir.Len())
}

func TestPullMalformedRowStaysPending(t *testing.T) {
	ctx := context.Background()
	capture := logging.CaptureLoggingForTest(t)
	dir := directory.NewMemory()
	store := buffer.NewMemory()

	require.NoError(t, store.Upsert(ctx, buffer.Row{
		Fingerprint: partyB + ":email:broken@x.com",
		Source:      partyB,
		Payload:     []byte("{not json"),
		Status:      buffer.StatusPending,
	}))

	res, err := newPull(dir, store).Pull(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)

	// Left pending: the malformation may be transient, so it is retried.
	row, _ := store.Get(partyB + ":email:broken@x.com")
	assert.Equal(t, buffer.StatusPending, row.Status)

	// The failure is surfaced as a warning with the offending fingerprint.
	assert.True(t, capture.Contains("Malformed buffer row"))
	assert.True(t, capture.Contains("broken@x.com"))
}

func TestPullFailedCreateStillMarksConsumed(t *testing.T) {
	// Deliberate trade-off: a failed directory write is recorded but the
	// row is consumed anyway, guaranteeing the run terminates instead of
	// reprocessing a permanently-failing row forever.
	ctx := context.Background()
	dir := directory.NewMemory()
	dir.FailCreate = true
	store := buffer.NewMemory()
	fp := pendingRow(t, store, partyB, record("Jane Doe", "jane@x.com"))

	res, err := newPull(dir, store).Pull(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 0, res.New)

	row, _ := store.Get(fp)
	assert.Equal(t, buffer.StatusConsumed, row.Status)
}

func TestPullFailedUpdateStillMarksConsumed(t *testing.T) {
	ctx := context.Background()
	dir := directory.NewMemory()
	store := buffer.NewMemory()

	seedLabeled(t, dir, record("Jane Doe", "jane@x.com"))
	dir.FailUpdate = true
	fp := pendingRow(t, store, partyB, record("Jane Doe", "jane@x.com"))

	res, err := newPull(dir, store).Pull(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 0, res.Merged)

	row, _ := store.Get(fp)
	assert.Equal(t, buffer.StatusConsumed, row.Status)
}

func TestPullContinuesPastRowFailures(t *testing.T) {
	ctx := context.Background()
	dir := directory.NewMemory()
	store := buffer.NewMemory()

	require.NoError(t, store.Upsert(ctx, buffer.Row{
		Fingerprint: partyB + ":email:broken@x.com",
		Source:      partyB,
		Payload:     []byte("{not json"),
		Status:      buffer.StatusPending,
	}))
	pendingRow(t, store, partyB, record("Jane Doe", "jane@x.com"))

	res, err := newPull(dir, store).Pull(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 1, res.New)
	assert.True(t, res.HasFailures())
	assert.NotEmpty(t, res.ErrorText())
}
