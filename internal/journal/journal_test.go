package journal

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAndRecent(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(filepath.Join(dir, "journal.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Record(100, true, true, true, false, "ok"))
	require.NoError(t, db.Record(110, false, false, false, true, "push failed"))

	entries, err := db.Recent(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, int64(110), entries[0].OccurredAt)
	assert.True(t, entries[0].Failed)
	assert.Equal(t, "push failed", entries[0].Detail)

	assert.Equal(t, int64(100), entries[1].OccurredAt)
	assert.True(t, entries[1].Committed)
}

func TestPathIsSiblingOfClone(t *testing.T) {
	got := Path("/workdir/local-abc/project")
	assert.Equal(t, "/workdir/local-abc/journal.db", got)
}
