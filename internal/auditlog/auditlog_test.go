package auditlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)

func testRecord() Record {
	return Record{
		Timestamp: testTime,
		Session:   "default",
		Event:     "addTransaction",
		EntityID:  "txn-001",
		Details:   "2 entries, sum 100.00",
	}
}

func TestAppend_NewFile(t *testing.T) {
	log := New(filepath.Join(t.TempDir(), "logs", "mutations.csv"))
	require.NoError(t, log.Append(testRecord()))

	records, err := log.Read()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "addTransaction", records[0].Event)
}

func TestAppend_WritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mutations.csv")
	log := New(path)
	require.NoError(t, log.Append(testRecord()))
	require.NoError(t, log.Append(testRecord()))

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(contents)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, Header, lines[0])
}

func TestAppend_ExistingFile(t *testing.T) {
	log := New(filepath.Join(t.TempDir(), "mutations.csv"))
	require.NoError(t, log.Append(testRecord()))

	r2 := testRecord()
	r2.Event = "deleteAccount"
	r2.EntityID = "tAcc-9"
	require.NoError(t, log.Append(r2))

	records, err := log.Read()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "addTransaction", records[0].Event)
	assert.Equal(t, "deleteAccount", records[1].Event)
}

func TestRoundTrip(t *testing.T) {
	log := New(filepath.Join(t.TempDir(), "mutations.csv"))
	original := testRecord()
	require.NoError(t, log.Append(original))

	records, err := log.Read()
	require.NoError(t, err)
	require.Len(t, records, 1)

	got := records[0]
	assert.True(t, original.Timestamp.Equal(got.Timestamp))
	assert.Equal(t, original.Session, got.Session)
	assert.Equal(t, original.Event, got.Event)
	assert.Equal(t, original.EntityID, got.EntityID)
	assert.Equal(t, original.Details, got.Details)
}

func TestRead_NotFound(t *testing.T) {
	log := New(filepath.Join(t.TempDir(), "missing.csv"))
	records, err := log.Read()
	require.NoError(t, err)
	assert.Nil(t, records)
}

func TestRead_HeaderOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mutations.csv")
	require.NoError(t, os.WriteFile(path, []byte(Header+"\n"), 0o644))

	records, err := New(path).Read()
	require.NoError(t, err)
	assert.Nil(t, records)
}

func TestUnmarshalRecord_BadFieldCount(t *testing.T) {
	_, err := UnmarshalRecord([]string{"one", "two"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 5 fields")
}
