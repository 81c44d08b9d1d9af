package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satchelhq/satchel/packages/core/fault"
)

// tickingClock hands out strictly increasing timestamps one second apart.
func tickingClock(start time.Time) func() time.Time {
	t := start
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func newTestLedger(t *testing.T, opts ...Option) *Ledger {
	t.Helper()
	return New(filepath.Join(t.TempDir(), HistoryFile), opts...)
}

func intptr(n int) *int { return &n }

func TestAppendStampsAndPersists(t *testing.T) {
	l := newTestLedger(t)

	e := &Entry{Method: "GET", URL: "https://api.local/users", Status: 200, ElapsedMs: 12}
	require.NoError(t, l.Append(e))

	assert.NotEmpty(t, e.ID, "append assigns an id")
	assert.False(t, e.Timestamp.IsZero(), "append assigns a timestamp")

	got, err := l.Entries(Query{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, e.ID, got[0].ID)
	assert.Equal(t, 200, got[0].Status)
}

func TestAppendNilEntry(t *testing.T) {
	l := newTestLedger(t)

	err := l.Append(nil)
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.Validation))
}

func TestCapIsEnforcedOnWrite(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newTestLedger(t, WithNow(tickingClock(base)))

	for i := 0; i < MaxEntries+5; i++ {
		require.NoError(t, l.Append(&Entry{Method: "GET", URL: fmt.Sprintf("https://x/%d", i)}))
	}

	// The backing file itself never exceeds the cap.
	data, err := os.ReadFile(l.Path())
	require.NoError(t, err)
	var doc struct {
		History []Entry `json:"history"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc.History, MaxEntries)

	assert.Equal(t, "https://x/5", doc.History[0].URL, "the oldest entries are dropped")
	assert.Equal(t, fmt.Sprintf("https://x/%d", MaxEntries+4), doc.History[MaxEntries-1].URL)
}

func TestEntriesNewestFirst(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newTestLedger(t, WithNow(tickingClock(base)))

	for _, url := range []string{"https://x/first", "https://x/second", "https://x/third"} {
		require.NoError(t, l.Append(&Entry{Method: "GET", URL: url}))
	}

	got, err := l.Entries(Query{})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "https://x/third", got[0].URL)
	assert.Equal(t, "https://x/second", got[1].URL)
	assert.Equal(t, "https://x/first", got[2].URL)
}

func TestEqualTimestampsKeepInsertionOrder(t *testing.T) {
	frozen := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := newTestLedger(t, WithNow(func() time.Time { return frozen }))

	for _, url := range []string{"https://x/a", "https://x/b", "https://x/c"} {
		require.NoError(t, l.Append(&Entry{Method: "GET", URL: url}))
	}

	got, err := l.Entries(Query{})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "https://x/a", got[0].URL)
	assert.Equal(t, "https://x/b", got[1].URL)
	assert.Equal(t, "https://x/c", got[2].URL)
}

func TestQueryLimits(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newTestLedger(t, WithNow(tickingClock(base)))

	for i := 0; i < 15; i++ {
		require.NoError(t, l.Append(&Entry{Method: "GET", URL: fmt.Sprintf("https://x/%d", i)}))
	}

	got, err := l.Entries(Query{})
	require.NoError(t, err)
	assert.Len(t, got, DefaultQueryLimit, "no limit means the default")
	assert.Equal(t, "https://x/14", got[0].URL)

	got, err = l.Entries(Query{Limit: intptr(0)})
	require.NoError(t, err)
	assert.Empty(t, got, "an explicit zero limit selects nothing")

	got, err = l.Entries(Query{Limit: intptr(999)})
	require.NoError(t, err)
	assert.Len(t, got, 15, "a limit beyond the ledger returns everything")
}

func TestQueryFilters(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newTestLedger(t, WithNow(tickingClock(base)))

	require.NoError(t, l.Append(&Entry{Method: "GET", URL: "https://x/1", Environment: "dev", Request: "health"}))
	require.NoError(t, l.Append(&Entry{Method: "POST", URL: "https://x/2", Environment: "prod", Request: "login"}))
	require.NoError(t, l.Append(&Entry{Method: "GET", URL: "https://x/3", Environment: "prod", Request: "health"}))

	got, err := l.Entries(Query{Environment: "prod", Limit: intptr(50)})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = l.Entries(Query{Request: "health", Limit: intptr(50)})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = l.Entries(Query{Method: "post", Limit: intptr(50)})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "https://x/2", got[0].URL)

	got, err = l.Entries(Query{Environment: "prod", Request: "health", Method: "GET", Limit: intptr(50)})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "https://x/3", got[0].URL)
}

func TestZeroStatusIsOmittedFromDisk(t *testing.T) {
	l := newTestLedger(t)

	require.NoError(t, l.Append(&Entry{
		Method: "GET",
		URL:    "https://x/unreachable",
		Meta:   map[string]any{"error": "cannot reach https://x/unreachable"},
	}))

	data, err := os.ReadFile(l.Path())
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"status"`, "a dispatch that never got a response has no status")
	assert.Contains(t, string(data), `"error"`)
}

func TestMissingFileReadsAsEmpty(t *testing.T) {
	l := newTestLedger(t)

	got, err := l.Entries(Query{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMalformedHistoryIsStorageError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, HistoryFile)
	require.NoError(t, os.WriteFile(path, []byte("[1,2"), 0644))

	l := New(path)
	_, err := l.Entries(Query{})
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.Storage))
}

func TestInitIsIdempotent(t *testing.T) {
	l := newTestLedger(t)

	require.NoError(t, l.Init())
	require.NoError(t, l.Append(&Entry{Method: "GET", URL: "https://x/keep"}))
	require.NoError(t, l.Init())

	got, err := l.Entries(Query{})
	require.NoError(t, err)
	assert.Len(t, got, 1, "init never clobbers an existing ledger")
}
