package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satchelhq/satchel/packages/core/fault"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(filepath.Join(t.TempDir(), DataFile))
}

func TestMissingFileReadsAsEmpty(t *testing.T) {
	s := newTestStore(t)

	reqs, err := s.ListRequests()
	require.NoError(t, err)
	assert.Empty(t, reqs)

	envs, err := s.ListEnvironments()
	require.NoError(t, err)
	assert.Empty(t, envs)

	_, found, err := s.GetRequest("anything")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSaveAndGetRequest(t *testing.T) {
	s := newTestStore(t)

	tmpl := RequestTemplate{
		Name:    "login",
		Method:  "post",
		URL:     "https://{{host}}/login",
		Headers: []string{"Content-Type: application/json", "X-Trace: {{trace}}"},
		Body:    `{"user":"{{user}}"}`,
	}
	require.NoError(t, s.SaveRequest(tmpl))

	got, found, err := s.GetRequest("login")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "POST", got.Method, "method is canonicalized to upper case")
	assert.Equal(t, "https://{{host}}/login", got.URL, "placeholders are stored raw")
	assert.Equal(t, tmpl.Headers, got.Headers, "header order survives persistence")
	assert.Equal(t, tmpl.Body, got.Body)
}

func TestGetRequestIsCaseSensitive(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SaveRequest(RequestTemplate{Name: "Login", Method: "GET", URL: "https://x"}))

	_, found, err := s.GetRequest("login")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestUpsertReplacesWholesale(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SaveRequest(RequestTemplate{
		Name:    "health",
		Method:  "GET",
		URL:     "https://old/health",
		Headers: []string{"Authorization: Bearer {{token}}"},
		Body:    `{"probe":true}`,
	}))
	require.NoError(t, s.SaveRequest(RequestTemplate{
		Name:   "health",
		Method: "HEAD",
		URL:    "https://new/health",
	}))

	got, found, err := s.GetRequest("health")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "HEAD", got.Method)
	assert.Equal(t, "https://new/health", got.URL)
	assert.Empty(t, got.Headers, "old headers do not leak into the replacement")
	assert.Empty(t, got.Body)

	reqs, err := s.ListRequests()
	require.NoError(t, err)
	assert.Len(t, reqs, 1)
}

func TestRequestOrderIsDocumentOrder(t *testing.T) {
	s := newTestStore(t)
	for _, name := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, s.SaveRequest(RequestTemplate{Name: name, Method: "GET", URL: "https://x/" + name}))
	}

	reqs, err := s.ListRequests()
	require.NoError(t, err)
	require.Len(t, reqs, 3)
	assert.Equal(t, "zeta", reqs[0].Name)
	assert.Equal(t, "alpha", reqs[1].Name)
	assert.Equal(t, "mid", reqs[2].Name)

	names, err := s.RequestNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, names)
}

func TestSaveRequestValidation(t *testing.T) {
	s := newTestStore(t)

	tests := []struct {
		name string
		tmpl RequestTemplate
	}{
		{"empty name", RequestTemplate{Name: "", Method: "GET", URL: "https://x"}},
		{"name too long", RequestTemplate{Name: strings.Repeat("a", 51), Method: "GET", URL: "https://x"}},
		{"slash in name", RequestTemplate{Name: "a/b", Method: "GET", URL: "https://x"}},
		{"colon in name", RequestTemplate{Name: "a:b", Method: "GET", URL: "https://x"}},
		{"wildcard in name", RequestTemplate{Name: "a*b", Method: "GET", URL: "https://x"}},
		{"unknown method", RequestTemplate{Name: "ok", Method: "FETCH", URL: "https://x"}},
		{"empty method", RequestTemplate{Name: "ok", Method: "", URL: "https://x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.SaveRequest(tt.tmpl)
			require.Error(t, err)
			assert.True(t, fault.IsKind(err, fault.Validation))
		})
	}

	// Nothing half-saved.
	reqs, err := s.ListRequests()
	require.NoError(t, err)
	assert.Empty(t, reqs)
}

func TestValidateMethodCanonicalizes(t *testing.T) {
	for _, m := range []string{"get", "Post", "DELETE", " put "} {
		got, err := ValidateMethod(m)
		require.NoError(t, err, m)
		assert.NotEqual(t, "", got)
	}

	got, err := ValidateMethod("options")
	require.NoError(t, err)
	assert.Equal(t, "OPTIONS", got)
}

func TestSaveEnvironmentReplacesNotMerges(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SaveEnvironment("dev", map[string]any{"host": "dev.local", "token": "abc"}))
	require.NoError(t, s.SaveEnvironment("dev", map[string]any{"host": "dev2.local"}))

	vars, found, err := s.GetEnvironment("dev")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "dev2.local", vars["host"])
	_, hasToken := vars["token"]
	assert.False(t, hasToken, "previous variables are discarded, never merged")
}

func TestRemoveEnvironment(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SaveEnvironment("dev", map[string]any{"a": 1}))
	require.NoError(t, s.SaveEnvironment("staging", map[string]any{"b": 2}))

	require.NoError(t, s.RemoveEnvironment("dev"))

	_, found, err := s.GetEnvironment("dev")
	require.NoError(t, err)
	assert.False(t, found)

	err = s.RemoveEnvironment("prod")
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.Configuration))
	assert.Equal(t, []string{"staging"}, fault.AvailableOf(err))
}

func TestMalformedDocumentIsStorageError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DataFile)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	s := New(path)
	_, err := s.ListRequests()
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.Storage))

	err = s.SaveRequest(RequestTemplate{Name: "x", Method: "GET", URL: "https://x"})
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.Storage), "mutations refuse to clobber a corrupt document")
}

func TestInitIsIdempotent(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Init())
	_, err := os.Stat(s.Path())
	require.NoError(t, err)

	require.NoError(t, s.SaveRequest(RequestTemplate{Name: "keep", Method: "GET", URL: "https://x"}))
	require.NoError(t, s.Init(), "second init leaves existing data alone")

	_, found, err := s.GetRequest("keep")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestDataDirHonorsOverride(t *testing.T) {
	t.Setenv("SATCHEL_HOME", "/tmp/satchel-test-home")

	dir, err := DataDir()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/satchel-test-home", dir)
}

func TestEmptyDocumentShape(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Init())

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.JSONEq(t, `{"requests": [], "environments": {}}`, string(data))
}
