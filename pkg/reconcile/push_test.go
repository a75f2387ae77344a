package reconcile_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/contactbridge/pkg/buffer"
	"github.com/agentstation/contactbridge/pkg/contacts"
	"github.com/agentstation/contactbridge/pkg/digest"
	"github.com/agentstation/contactbridge/pkg/directory"
	"github.com/agentstation/contactbridge/pkg/reconcile"
)

const (
	testLabel = "bridge-sync"
	partyA    = "home"
	partyB    = "work"
)

// seedLabeled creates a labeled record in the directory and returns its id.
func seedLabeled(t *testing.T, dir *directory.Memory, rec *contacts.ContactRecord) string {
	t.Helper()
	id, err := dir.Create(context.Background(), rec)
	require.NoError(t, err)
	require.NoError(t, dir.AddToLabel(context.Background(), id, testLabel))
	return id
}

func newPush(dir *directory.Memory, store buffer.Store) *reconcile.BufferReconciler {
	return reconcile.NewBufferReconciler(partyA, testLabel, contacts.AllGroups(), dir, store)
}

func TestPushInsertsNewRow(t *testing.T) {
	ctx := context.Background()
	dir := directory.NewMemory()
	store := buffer.NewMemory()
	seedLabeled(t, dir, record("Jane Doe", "jane@x.com"))

	res, err := newPush(dir, store).Push(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Pushed)
	assert.Equal(t, 0, res.Failed)

	row, ok := store.Get(partyA + ":email:jane@x.com")
	require.True(t, ok)
	assert.Equal(t, partyA, row.Source)
	assert.Equal(t, buffer.StatusPending, row.Status)
	assert.NotEmpty(t, row.Digest)
	assert.NotEmpty(t, row.Payload)
}

func TestPushSkipsUnchangedRecord(t *testing.T) {
	ctx := context.Background()
	dir := directory.NewMemory()
	store := buffer.NewMemory()
	seedLabeled(t, dir, record("Jane Doe", "jane@x.com"))

	push := newPush(dir, store)
	_, err := push.Push(ctx)
	require.NoError(t, err)

	res, err := push.Push(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Pushed)
	assert.Equal(t, 1, store.Len())
}

func TestPushRepublishesChangedRecordAndResetsStatus(t *testing.T) {
	ctx := context.Background()
	dir := directory.NewMemory()
	store := buffer.NewMemory()
	id := seedLabeled(t, dir, record("Jane Doe", "jane@x.com"))

	push := newPush(dir, store)
	_, err := push.Push(ctx)
	require.NoError(t, err)

	fp := partyA + ":email:jane@x.com"
	require.NoError(t, store.MarkConsumed(ctx, fp))
	firstRow, _ := store.Get(fp)

	// Edit the record: add a phone.
	token, err := dir.RefreshToken(ctx, id)
	require.NoError(t, err)
	edited := record("Jane Doe", "jane@x.com")
	edited.Phones = []contacts.Item{{Value: "+1 555 0100", Label: "mobile"}}
	require.NoError(t, dir.Update(ctx, id, token, edited))

	res, err := push.Push(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Pushed)

	row, ok := store.Get(fp)
	require.True(t, ok)
	assert.Equal(t, buffer.StatusPending, row.Status, "re-publish must reset status")
	assert.NotEqual(t, firstRow.Digest, row.Digest)
	assert.Equal(t, 1, store.Len(), "row is overwritten in place, never duplicated")
}

func TestPushSuppressesEcho(t *testing.T) {
	ctx := context.Background()
	dir := directory.NewMemory()
	store := buffer.NewMemory()

	// A row from the other party, already consumed by us, whose digest
	// matches our local record: it came from them and is unchanged.
	rec := record("Jane Doe", "jane@x.com")
	seedLabeled(t, dir, rec)
	require.NoError(t, store.Upsert(ctx, buffer.Row{
		Fingerprint: partyB + ":email:jane@x.com",
		Source:      partyB,
		Status:      buffer.StatusConsumed,
		Digest:      digest.Digest(rec),
	}))

	res, err := newPush(dir, store).Push(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Pushed)
	assert.Equal(t, 1, store.Len(), "echoed record must not be re-published")
}

func TestPushPendingForeignRowIsNotEcho(t *testing.T) {
	ctx := context.Background()
	dir := directory.NewMemory()
	store := buffer.NewMemory()

	rec := record("Jane Doe", "jane@x.com")
	seedLabeled(t, dir, rec)
	// Same digest but still pending: not yet consumed, so not an echo.
	require.NoError(t, store.Upsert(ctx, buffer.Row{
		Fingerprint: partyB + ":email:jane@x.com",
		Source:      partyB,
		Status:      buffer.StatusPending,
		Digest:      digest.Digest(rec),
	}))

	res, err := newPush(dir, store).Push(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Pushed)
	assert.Equal(t, 2, store.Len())
}

func TestPushPayloadIsNormalized(t *testing.T) {
	ctx := context.Background()
	dir := directory.NewMemory()
	store := buffer.NewMemory()

	rec := &contacts.ContactRecord{
		Names:  []contacts.Name{{Given: "Jane", Family: "Doe", Display: "Jane Doe"}},
		Emails: []contacts.Item{{Value: "jane@x.com", Formatted: "Home"}},
	}
	seedLabeled(t, dir, rec)

	_, err := newPush(dir, store).Push(ctx)
	require.NoError(t, err)

	row, ok := store.Get(partyA + ":email:jane@x.com")
	require.True(t, ok)

	got, err := contacts.Decode(row.Payload)
	require.NoError(t, err)
	assert.Empty(t, got.ResourceID, "directory identifiers must not cross parties")
	assert.Empty(t, got.Token)
	assert.Empty(t, got.Names[0].Display)
	assert.Empty(t, got.Emails[0].Formatted)
	assert.Equal(t, "Jane", got.Names[0].Given)
}
