package runlog_test

import (
	"context"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/contactbridge/pkg/runlog"
)

func entry(account string, failed int) runlog.Entry {
	return runlog.Entry{
		Timestamp: time.Now().UTC(),
		Account:   account,
		Direction: runlog.DirectionSync,
		Failed:    failed,
	}
}

func TestMemoryAppendAndTrim(t *testing.T) {
	ctx := context.Background()
	sink := runlog.NewMemory()

	for i := 0; i < 5; i++ {
		require.NoError(t, sink.Append(ctx, entry("home", i)))
	}
	require.NoError(t, sink.Trim(ctx, 3))

	entries := sink.Entries()
	require.Len(t, entries, 3)
	// The oldest entries go first.
	assert.Equal(t, 2, entries[0].Failed)
	assert.Equal(t, 4, entries[2].Failed)
}

func TestMemoryTrimDisabled(t *testing.T) {
	ctx := context.Background()
	sink := runlog.NewMemory()
	require.NoError(t, sink.Append(ctx, entry("home", 0)))

	require.NoError(t, sink.Trim(ctx, 0))
	assert.Len(t, sink.Entries(), 1)

	require.NoError(t, sink.Trim(ctx, -1))
	assert.Len(t, sink.Entries(), 1)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", runlog.Truncate("abc", 10))
	assert.Equal(t, "ab", runlog.Truncate("abcdef", 2))
	assert.Equal(t, "abcdef", runlog.Truncate("abcdef", 0), "zero disables truncation")
}

func TestTruncateRuneBoundary(t *testing.T) {
	// "héllo": é is two bytes, so a byte cut inside it must back off to
	// the rune boundary instead of emitting an invalid partial sequence.
	assert.Equal(t, "h", runlog.Truncate("héllo", 2))
	assert.Equal(t, "hé", runlog.Truncate("héllo", 3))
	assert.True(t, utf8.ValidString(runlog.Truncate("héllo", 2)))

	// A cut inside a four-byte rune backs all the way off.
	assert.Equal(t, "", runlog.Truncate("\U0001F600", 3))
}
