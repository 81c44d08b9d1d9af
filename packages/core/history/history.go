package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/satchelhq/satchel/packages/core/fault"
	"github.com/satchelhq/satchel/packages/core/store"
)

const (
	// HistoryFile is the file name of the execution history document.
	HistoryFile = "history.json"
	// MaxEntries caps the ledger. The cap is enforced when appending, so
	// the backing file never holds more than this many entries.
	MaxEntries = 100
	// DefaultQueryLimit applies when a query does not set one.
	DefaultQueryLimit = 10
)

// Entry records one execution. Status is absent for dispatches that never
// produced a response. Entries are immutable once appended.
type Entry struct {
	ID          string         `json:"id"`
	Timestamp   time.Time      `json:"timestamp"`
	Method      string         `json:"method"`
	URL         string         `json:"url"`
	Status      int            `json:"status,omitempty"`
	ElapsedMs   int64          `json:"elapsed_ms"`
	Environment string         `json:"environment,omitempty"`
	Request     string         `json:"request,omitempty"`
	Meta        map[string]any `json:"meta,omitempty"`
}

type document struct {
	History []Entry `json:"history"`
}

// Ledger is the append-only execution history. Like the store it does full
// read-modify-write cycles against a single JSON document.
type Ledger struct {
	path string
	now  func() time.Time
}

type Option func(*Ledger)

// WithNow is useful for tests.
func WithNow(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// New returns a Ledger backed by the document at path.
func New(path string, opts ...Option) *Ledger {
	l := &Ledger{
		path: path,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Open returns a Ledger at the default location.
func Open(opts ...Option) (*Ledger, error) {
	dir, err := store.DataDir()
	if err != nil {
		return nil, err
	}
	return New(filepath.Join(dir, HistoryFile), opts...), nil
}

// Path returns the document path this ledger reads and writes.
func (l *Ledger) Path() string {
	return l.path
}

// Append stamps e with an ID and timestamp when absent, adds it to the
// ledger, and persists immediately. When the ledger is full the oldest
// entries are dropped to make room.
func (l *Ledger) Append(e *Entry) error {
	if e == nil {
		return fault.Validationf("history.append", "entry must not be nil")
	}

	doc, err := l.load()
	if err != nil {
		return err
	}

	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = l.now().UTC()
	}

	doc.History = append(doc.History, *e)
	if len(doc.History) > MaxEntries {
		doc.History = doc.History[len(doc.History)-MaxEntries:]
	}
	return l.save(doc)
}

// Query selects and bounds history entries. The zero value of each filter
// means "any". A nil Limit applies DefaultQueryLimit; an explicit zero or
// negative limit selects nothing.
type Query struct {
	Limit       *int
	Environment string
	Request     string
	Method      string
}

// Entries returns matching history, newest first. Entries appended at the
// same instant keep their insertion order relative to each other.
func (l *Ledger) Entries(q Query) ([]Entry, error) {
	doc, err := l.load()
	if err != nil {
		return nil, err
	}

	matched := make([]Entry, 0, len(doc.History))
	for _, e := range doc.History {
		if q.Environment != "" && e.Environment != q.Environment {
			continue
		}
		if q.Request != "" && e.Request != q.Request {
			continue
		}
		if q.Method != "" && !strings.EqualFold(e.Method, q.Method) {
			continue
		}
		matched = append(matched, e)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})

	limit := DefaultQueryLimit
	if q.Limit != nil {
		limit = *q.Limit
	}
	if limit <= 0 {
		return []Entry{}, nil
	}
	if limit > len(matched) {
		limit = len(matched)
	}
	return matched[:limit], nil
}

// Init creates the history document when absent. Safe to run repeatedly.
func (l *Ledger) Init() error {
	if _, err := os.Stat(l.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fault.Storagef("history.init", err, "checking %s", l.path)
	}
	return l.save(&document{})
}

func (l *Ledger) load() (*document, error) {
	doc := &document{}
	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			doc.History = []Entry{}
			return doc, nil
		}
		return nil, fault.Storagef("history.load", err, "reading %s", l.path)
	}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fault.Storagef("history.load", err, "parsing %s", l.path)
	}
	if doc.History == nil {
		doc.History = []Entry{}
	}
	return doc, nil
}

func (l *Ledger) save(doc *document) error {
	if doc.History == nil {
		doc.History = []Entry{}
	}

	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fault.Storagef("history.save", err, "creating %s", dir)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fault.Storagef("history.save", err, "encoding history")
	}

	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fault.Storagef("history.save", err, "writing %s", tmp)
	}
	if err := os.Rename(tmp, l.path); err != nil {
		_ = os.Remove(tmp)
		return fault.Storagef("history.save", err, "replacing %s", l.path)
	}
	return nil
}
