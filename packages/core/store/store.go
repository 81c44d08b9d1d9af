package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/satchelhq/satchel/packages/core/fault"
)

const (
	// DataFile is the file name of the requests+environments document.
	DataFile = "data.json"
	// MaxNameLength bounds saved request names.
	MaxNameLength = 50
)

// forbiddenNameChars are rejected in request names so names stay portable
// across filesystems and shells.
const forbiddenNameChars = `/\:*?"<>|`

var supportedMethods = map[string]bool{
	"GET":     true,
	"POST":    true,
	"PUT":     true,
	"PATCH":   true,
	"DELETE":  true,
	"HEAD":    true,
	"OPTIONS": true,
}

// RequestTemplate is a saved request. URL, header values, and body may
// contain {{placeholder}} markers; templates are stored raw and only
// interpolated at execution time.
type RequestTemplate struct {
	Name    string   `json:"name" yaml:"name"`
	Method  string   `json:"method" yaml:"method"`
	URL     string   `json:"url" yaml:"url"`
	Headers []string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body    string   `json:"body,omitempty" yaml:"body,omitempty"`
}

// Document is the full persisted state: saved requests plus named
// environments of template variables.
type Document struct {
	Requests     []RequestTemplate         `json:"requests" yaml:"requests"`
	Environments map[string]map[string]any `json:"environments" yaml:"environments"`
}

// Store reads and writes the document at a fixed path. Every mutation is a
// full read-modify-write; writes go through a temp file and rename.
type Store struct {
	path string
}

// New returns a Store backed by the document at path.
func New(path string) *Store {
	return &Store{path: path}
}

// Open returns a Store at the default location (see DataDir).
func Open() (*Store, error) {
	dir, err := DataDir()
	if err != nil {
		return nil, err
	}
	return New(filepath.Join(dir, DataFile)), nil
}

// DataDir returns the directory satchel persists state in. SATCHEL_HOME
// overrides the per-user default.
func DataDir() (string, error) {
	if dir := os.Getenv("SATCHEL_HOME"); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fault.Storagef("store.datadir", err, "locating user config directory")
	}
	return filepath.Join(base, "satchel"), nil
}

// Path returns the document path this store reads and writes.
func (s *Store) Path() string {
	return s.path
}

// ValidateName checks a request name against the naming rules: non-empty,
// at most MaxNameLength characters, none of / \ : * ? " < > |.
func ValidateName(name string) error {
	if name == "" {
		return fault.Validationf("store.validate-name", "request name must not be empty")
	}
	if len(name) > MaxNameLength {
		return fault.Validationf("store.validate-name", "request name %q exceeds %d characters", name, MaxNameLength)
	}
	if i := strings.IndexAny(name, forbiddenNameChars); i >= 0 {
		return fault.Validationf("store.validate-name", "request name %q contains forbidden character %q", name, name[i])
	}
	return nil
}

// ValidateMethod canonicalizes method to upper case and checks it against
// the supported set.
func ValidateMethod(method string) (string, error) {
	m := strings.ToUpper(strings.TrimSpace(method))
	if !supportedMethods[m] {
		return "", fault.Validationf("store.validate-method", "method %q is not supported", method)
	}
	return m, nil
}

// ListRequests returns all saved templates in document order. A missing
// backing file is an empty collection, not an error.
func (s *Store) ListRequests() ([]RequestTemplate, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}
	return doc.Requests, nil
}

// GetRequest looks up a template by exact name.
func (s *Store) GetRequest(name string) (RequestTemplate, bool, error) {
	doc, err := s.Load()
	if err != nil {
		return RequestTemplate{}, false, err
	}
	for _, t := range doc.Requests {
		if t.Name == name {
			return t, true, nil
		}
	}
	return RequestTemplate{}, false, nil
}

// RequestNames returns the saved request names, sorted.
func (s *Store) RequestNames() ([]string, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(doc.Requests))
	for _, t := range doc.Requests {
		names = append(names, t.Name)
	}
	sort.Strings(names)
	return names, nil
}

// SaveRequest validates and upserts a template. Saving under an existing
// name replaces the stored template wholesale.
func (s *Store) SaveRequest(t RequestTemplate) error {
	if err := ValidateName(t.Name); err != nil {
		return err
	}
	method, err := ValidateMethod(t.Method)
	if err != nil {
		return err
	}
	t.Method = method

	doc, err := s.Load()
	if err != nil {
		return err
	}
	replaced := false
	for i := range doc.Requests {
		if doc.Requests[i].Name == t.Name {
			doc.Requests[i] = t
			replaced = true
			break
		}
	}
	if !replaced {
		doc.Requests = append(doc.Requests, t)
	}
	return s.save(doc)
}

// ListEnvironments returns all environments keyed by name.
func (s *Store) ListEnvironments() (map[string]map[string]any, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}
	return doc.Environments, nil
}

// EnvironmentNames returns the environment names, sorted.
func (s *Store) EnvironmentNames() ([]string, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(doc.Environments))
	for name := range doc.Environments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// GetEnvironment looks up an environment by exact name.
func (s *Store) GetEnvironment(name string) (map[string]any, bool, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, false, err
	}
	vars, ok := doc.Environments[name]
	return vars, ok, nil
}

// SaveEnvironment stores vars under name, replacing any existing variable
// set entirely. It never merges.
func (s *Store) SaveEnvironment(name string, vars map[string]any) error {
	if name == "" {
		return fault.Validationf("store.save-environment", "environment name must not be empty")
	}
	doc, err := s.Load()
	if err != nil {
		return err
	}
	if vars == nil {
		vars = map[string]any{}
	}
	doc.Environments[name] = vars
	return s.save(doc)
}

// RemoveEnvironment deletes the named environment. Removing a name that
// does not exist is a configuration error listing the ones that do.
func (s *Store) RemoveEnvironment(name string) error {
	doc, err := s.Load()
	if err != nil {
		return err
	}
	if _, ok := doc.Environments[name]; !ok {
		names := make([]string, 0, len(doc.Environments))
		for n := range doc.Environments {
			names = append(names, n)
		}
		sort.Strings(names)
		return fault.Configurationf("store.remove-environment", names, "no environment named %q", name)
	}
	delete(doc.Environments, name)
	return s.save(doc)
}

// Init creates the data directory and an empty document. Existing files
// are left untouched, so Init is safe to run repeatedly.
func (s *Store) Init() error {
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fault.Storagef("store.init", err, "checking %s", s.path)
	}
	return s.save(&Document{})
}

// Load reads the whole document. A missing file yields an empty document;
// unreadable or malformed content is a storage error.
func (s *Store) Load() (*Document, error) {
	doc := &Document{}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			normalize(doc)
			return doc, nil
		}
		return nil, fault.Storagef("store.load", err, "reading %s", s.path)
	}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fault.Storagef("store.load", err, "parsing %s", s.path)
	}
	normalize(doc)
	return doc, nil
}

func normalize(doc *Document) {
	if doc.Requests == nil {
		doc.Requests = []RequestTemplate{}
	}
	if doc.Environments == nil {
		doc.Environments = map[string]map[string]any{}
	}
}

func (s *Store) save(doc *Document) error {
	normalize(doc)

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fault.Storagef("store.save", err, "creating %s", dir)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fault.Storagef("store.save", err, "encoding document")
	}

	// Tmp then rename so a crash mid-write never truncates the document.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fault.Storagef("store.save", err, "writing %s", tmp)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fault.Storagef("store.save", err, "replacing %s", s.path)
	}
	return nil
}
