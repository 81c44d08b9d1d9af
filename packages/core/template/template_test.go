package template

import (
	"testing"
	"time"

	"github.com/satchelhq/satchel/packages/core/store"
)

func TestInterpolate(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		vars        map[string]any
		expected    string
		wantMissing []string
	}{
		{
			name:     "no placeholders",
			input:    "hello world",
			expected: "hello world",
		},
		{
			name:     "simple variable",
			input:    "https://{{host}}/users",
			vars:     map[string]any{"host": "api.local"},
			expected: "https://api.local/users",
		},
		{
			name:     "multiple variables",
			input:    "{{scheme}}://{{host}}",
			vars:     map[string]any{"scheme": "https", "host": "api.local"},
			expected: "https://api.local",
		},
		{
			name:     "whitespace inside braces",
			input:    "{{ host }}",
			vars:     map[string]any{"host": "api.local"},
			expected: "api.local",
		},
		{
			name:        "missing stays verbatim",
			input:       "https://{{host}}/users",
			expected:    "https://{{host}}/users",
			wantMissing: []string{"host"},
		},
		{
			name:        "mixed resolved and missing",
			input:       "{{scheme}}://{{host}}:{{port}}",
			vars:        map[string]any{"scheme": "https"},
			expected:    "https://{{host}}:{{port}}",
			wantMissing: []string{"host", "port"},
		},
		{
			name:     "nil value becomes empty string",
			input:    "x={{flag}}y",
			vars:     map[string]any{"flag": nil},
			expected: "x=y",
		},
		{
			name:     "number value",
			input:    "port {{port}}",
			vars:     map[string]any{"port": 8080},
			expected: "port 8080",
		},
		{
			name:     "bool value",
			input:    "verbose={{on}}",
			vars:     map[string]any{"on": true},
			expected: "verbose=true",
		},
		{
			name:     "repeated placeholder resolves per occurrence",
			input:    "{{id}}-{{id}}",
			vars:     map[string]any{"id": 7},
			expected: "7-7",
		},
		{
			name:        "repeated missing placeholder reported per occurrence",
			input:       "{{id}}-{{id}}",
			expected:    "{{id}}-{{id}}",
			wantMissing: []string{"id", "id"},
		},
		{
			name:     "single braces untouched",
			input:    `{"a": 1}`,
			expected: `{"a": 1}`,
		},
		{
			name:     "empty braces untouched",
			input:    "{{}}",
			expected: "{{}}",
		},
	}

	ip := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ip.Interpolate(tt.input, tt.vars)
			if got.Text != tt.expected {
				t.Errorf("Interpolate(%q) = %q, want %q", tt.input, got.Text, tt.expected)
			}
			assertMissing(t, got.Missing, tt.wantMissing)
		})
	}
}

func TestInterpolateDynamicValues(t *testing.T) {
	ip := New()
	ip.Funcs().Register("marker", func(_ []string) any { return "MARK" })

	got := ip.Interpolate("id={{marker()}}", nil)
	if got.Text != "id=MARK" {
		t.Errorf("Interpolate() = %q, want %q", got.Text, "id=MARK")
	}
	if got.Missing != nil {
		t.Errorf("Missing = %v, want nil", got.Missing)
	}

	got = ip.Interpolate("{{unknownFn(1)}}", nil)
	if got.Text != "{{unknownFn(1)}}" {
		t.Errorf("unknown function call was altered: %q", got.Text)
	}
	assertMissing(t, got.Missing, []string{"unknownFn(1)"})

	got = ip.Interpolate("{{uuid()}}", nil)
	if len(got.Text) != 36 {
		t.Errorf("uuid() produced %q, want 36-char UUID", got.Text)
	}
}

func TestInterpolateProcessEnv(t *testing.T) {
	t.Setenv("SATCHEL_TEST_TOKEN", "sekret")

	ip := New()
	got := ip.Interpolate("Bearer {{$SATCHEL_TEST_TOKEN}}", nil)
	if got.Text != "Bearer sekret" {
		t.Errorf("Interpolate() = %q, want %q", got.Text, "Bearer sekret")
	}

	got = ip.Interpolate("{{$SATCHEL_TEST_UNSET}}", nil)
	if got.Text != "{{$SATCHEL_TEST_UNSET}}" {
		t.Errorf("unset env placeholder was altered: %q", got.Text)
	}
	assertMissing(t, got.Missing, []string{"$SATCHEL_TEST_UNSET"})
}

func TestResolveHeaders(t *testing.T) {
	ip := New()
	vars := map[string]any{"token": "abc123", "trace": 42}

	lines := []string{
		"Authorization: Bearer {{token}}",
		"X-Trace-Id: {{trace}}",
		"X-{{literal}}-Name: value",
		"Accept: application/json",
		"Accept: text/plain",
		"garbage line without colon",
	}

	headers, missing := ip.ResolveHeaders(lines, vars)

	if got := headers["Authorization"]; got != "Bearer abc123" {
		t.Errorf("Authorization = %q, want %q", got, "Bearer abc123")
	}
	if got := headers["X-Trace-Id"]; got != "42" {
		t.Errorf("X-Trace-Id = %q, want %q", got, "42")
	}
	if _, ok := headers["X-{{literal}}-Name"]; !ok {
		t.Error("header names must not be interpolated")
	}
	if got := headers["Accept"]; got != "text/plain" {
		t.Errorf("duplicate header kept %q, want last value %q", got, "text/plain")
	}
	if _, ok := headers["garbage line without colon"]; ok {
		t.Error("line without colon should be dropped")
	}
	if missing != nil {
		t.Errorf("missing = %v, want nil", missing)
	}
}

func TestResolveHeadersReportsMissing(t *testing.T) {
	ip := New()

	headers, missing := ip.ResolveHeaders([]string{"Authorization: Bearer {{token}}"}, nil)

	if got := headers["Authorization"]; got != "Bearer {{token}}" {
		t.Errorf("Authorization = %q, want placeholder kept verbatim", got)
	}
	assertMissing(t, missing, []string{"token"})
}

func TestResolveRequest(t *testing.T) {
	ip := New()
	vars := map[string]any{"baseUrl": "https://api.example.com", "token": "abc"}

	tmpl := store.RequestTemplate{
		Name:    "get-user",
		Method:  "GET",
		URL:     "{{baseUrl}}/users/{{userId}}",
		Headers: []string{"Authorization: Bearer {{token}}"},
		Body:    "",
	}

	req, missing := ip.ResolveRequest(tmpl, vars, 5*time.Second)

	if req.URL != "https://api.example.com/users/{{userId}}" {
		t.Errorf("URL = %q", req.URL)
	}
	if got := req.Headers["Authorization"]; got != "Bearer abc" {
		t.Errorf("Authorization = %q", got)
	}
	if req.Body != "" {
		t.Errorf("Body = %q, want empty body left empty", req.Body)
	}
	if req.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v", req.Timeout)
	}
	assertMissing(t, missing, []string{"userId"})

	if tmpl.URL != "{{baseUrl}}/users/{{userId}}" {
		t.Error("input template was mutated")
	}
}

func assertMissing(t *testing.T, got, want []string) {
	t.Helper()
	if want == nil {
		if got != nil {
			t.Errorf("Missing = %v, want nil", got)
		}
		return
	}
	if len(got) != len(want) {
		t.Errorf("Missing = %v, want %v", got, want)
		return
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Missing[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
