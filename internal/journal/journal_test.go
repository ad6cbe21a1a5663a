package journal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anhofmann/dsar/internal/request"
)

func TestRecordAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.ndjson")
	j, err := Open(path)
	require.NoError(t, err)

	at := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, j.Record(Entry{
		Time:      at,
		RequestID: "req-1",
		From:      request.StatusDraft,
		To:        request.StatusSent,
		Trigger:   "send",
	}))
	require.NoError(t, j.Record(Entry{
		Time:      at.Add(15 * 24 * time.Hour),
		RequestID: "req-1",
		From:      request.StatusSent,
		To:        request.StatusReminded,
		Trigger:   "reminder",
		Note:      "no reply after two weeks",
	}))
	require.NoError(t, j.Close())

	entries, err := Read(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, request.StatusSent, entries[0].To)
	assert.Equal(t, "reminder", entries[1].Trigger)
	assert.Equal(t, "no reply after two weeks", entries[1].Note)
	assert.True(t, entries[0].Time.Equal(at))
}

func TestOpenAppendsAcrossSessions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.ndjson")

	for i := 0; i < 2; i++ {
		j, err := Open(path)
		require.NoError(t, err)
		require.NoError(t, j.Record(Entry{RequestID: "req-1", Trigger: "send"}))
		require.NoError(t, j.Close())
	}

	entries, err := Read(path)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "reopening must append, not truncate")
}

func TestOpenCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data", "journal.ndjson")
	j, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, j.Close())

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestReadMissingFile(t *testing.T) {
	entries, err := Read(filepath.Join(t.TempDir(), "nope.ndjson"))
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestReadRejectsCorruptLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.ndjson")
	require.NoError(t, os.WriteFile(path, []byte("{\"request_id\":\"a\"}\nnot json\n"), 0600))

	_, err := Read(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestHistoryFiltersByRequest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.ndjson")
	j, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, j.Record(Entry{RequestID: "a", Trigger: "send"}))
	require.NoError(t, j.Record(Entry{RequestID: "b", Trigger: "send"}))
	require.NoError(t, j.Record(Entry{RequestID: "a", Trigger: "reminder"}))
	require.NoError(t, j.Close())

	entries, err := History(path, "a")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "send", entries[0].Trigger)
	assert.Equal(t, "reminder", entries[1].Trigger)
}
