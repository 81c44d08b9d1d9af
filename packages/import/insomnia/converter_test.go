package insomnia

import (
	"strings"
	"testing"

	"github.com/satchelhq/satchel/packages/core/fault"
)

func TestParse_SimpleRequest(t *testing.T) {
	data := `{
		"_type": "export",
		"__export_format": 4,
		"resources": [
			{"_id": "req_1", "_type": "request", "parentId": "wrk_1",
			 "name": "Get User", "method": "get", "url": "https://api.example.com/users/1",
			 "headers": [{"name": "Accept", "value": "application/json"}]}
		]
	}`

	export, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	templates := export.Templates()
	if len(templates) != 1 {
		t.Fatalf("Templates() returned %d templates, want 1", len(templates))
	}

	tmpl := templates[0]
	if tmpl.Name != "Get User" {
		t.Errorf("Name = %q, want %q", tmpl.Name, "Get User")
	}
	if tmpl.Method != "GET" {
		t.Errorf("Method = %q, want GET", tmpl.Method)
	}
	if tmpl.URL != "https://api.example.com/users/1" {
		t.Errorf("URL = %q", tmpl.URL)
	}
	if len(tmpl.Headers) != 1 || tmpl.Headers[0] != "Accept: application/json" {
		t.Errorf("Headers = %v", tmpl.Headers)
	}
}

func TestTemplates_FolderPrefixAndVariables(t *testing.T) {
	data := `{
		"_type": "export",
		"__export_format": 4,
		"resources": [
			{"_id": "fld_1", "_type": "request_group", "parentId": "wrk_1", "name": "Users"},
			{"_id": "req_1", "_type": "request", "parentId": "fld_1",
			 "name": "Get One", "method": "GET", "url": "{{ _.baseUrl }}/users/{{ _.userId }}",
			 "headers": [
				{"name": "X-Api-Key", "value": "{{ apiKey }}"},
				{"name": "X-Debug", "value": "1", "disabled": true}
			 ]}
		]
	}`

	export, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	tmpl := export.Templates()[0]
	if tmpl.Name != "Users Get One" {
		t.Errorf("Name = %q, want %q", tmpl.Name, "Users Get One")
	}
	if tmpl.URL != "{{baseUrl}}/users/{{userId}}" {
		t.Errorf("URL = %q, want scoped variables rewritten", tmpl.URL)
	}
	if len(tmpl.Headers) != 1 {
		t.Fatalf("Headers = %v, want disabled header dropped", tmpl.Headers)
	}
	if tmpl.Headers[0] != "X-Api-Key: {{apiKey}}" {
		t.Errorf("Headers[0] = %q", tmpl.Headers[0])
	}
}

func TestTemplates_QueryParameters(t *testing.T) {
	data := `{
		"_type": "export",
		"__export_format": 4,
		"resources": [
			{"_id": "req_1", "_type": "request", "parentId": "wrk_1",
			 "name": "Search", "method": "GET", "url": "https://api.example.com/search",
			 "parameters": [
				{"name": "q", "value": "{{ _.term }}"},
				{"name": "page", "value": "1"},
				{"name": "debug", "value": "1", "disabled": true}
			 ]}
		]
	}`

	export, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	url := export.Templates()[0].URL
	if url != "https://api.example.com/search?q={{term}}&page=1" {
		t.Errorf("URL = %q", url)
	}
}

func TestTemplates_BasicAuth(t *testing.T) {
	data := `{
		"_type": "export",
		"__export_format": 4,
		"resources": [
			{"_id": "req_1", "_type": "request", "parentId": "wrk_1",
			 "name": "Login", "method": "POST", "url": "https://api.example.com/login",
			 "authentication": {"type": "basic", "username": "alice", "password": "secret"}}
		]
	}`

	export, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	headers := export.Templates()[0].Headers
	if len(headers) != 1 {
		t.Fatalf("Headers = %v, want one Authorization header", headers)
	}
	if headers[0] != "Authorization: Basic YWxpY2U6c2VjcmV0" {
		t.Errorf("Headers[0] = %q", headers[0])
	}
}

func TestTemplates_BasicAuthWithVariablesSkipped(t *testing.T) {
	data := `{
		"_type": "export",
		"__export_format": 4,
		"resources": [
			{"_id": "req_1", "_type": "request", "parentId": "wrk_1",
			 "name": "Login", "method": "POST", "url": "https://api.example.com/login",
			 "authentication": {"type": "basic", "username": "alice", "password": "{{ _.password }}"}}
		]
	}`

	export, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if headers := export.Templates()[0].Headers; len(headers) != 0 {
		t.Errorf("Headers = %v, want variable credentials skipped", headers)
	}
}

func TestTemplates_BearerToken(t *testing.T) {
	data := `{
		"_type": "export",
		"__export_format": 4,
		"resources": [
			{"_id": "req_1", "_type": "request", "parentId": "wrk_1",
			 "name": "Me", "method": "GET", "url": "https://api.example.com/me",
			 "authentication": {"type": "bearer", "token": "{{ _.token }}"}}
		]
	}`

	export, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	headers := export.Templates()[0].Headers
	if len(headers) != 1 || headers[0] != "Authorization: Bearer {{token}}" {
		t.Errorf("Headers = %v", headers)
	}
}

func TestEnvironments(t *testing.T) {
	data := `{
		"_type": "export",
		"__export_format": 4,
		"resources": [
			{"_id": "env_1", "_type": "environment", "parentId": "wrk_1",
			 "name": "Base Environment",
			 "data": {"baseUrl": "https://api.example.com", "retries": 3}},
			{"_id": "env_2", "_type": "environment", "parentId": "env_1",
			 "name": "Staging",
			 "data": {"baseUrl": "https://staging.example.com"}},
			{"_id": "env_3", "_type": "environment", "parentId": "env_1",
			 "name": "Empty", "data": {}}
		]
	}`

	export, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	envs := export.Environments()
	if len(envs) != 2 {
		t.Fatalf("Environments() returned %d, want 2 (empty one dropped)", len(envs))
	}
	if envs["Base Environment"]["baseUrl"] != "https://api.example.com" {
		t.Errorf("Base Environment = %v", envs["Base Environment"])
	}
	if envs["Staging"]["baseUrl"] != "https://staging.example.com" {
		t.Errorf("Staging = %v", envs["Staging"])
	}
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse([]byte("not json"))
	if !fault.IsKind(err, fault.Validation) {
		t.Errorf("Parse() error = %v, want validation fault", err)
	}

	_, err = Parse([]byte(`{"_type": "workspace"}`))
	if !fault.IsKind(err, fault.Validation) {
		t.Errorf("Parse() on non-export error = %v, want validation fault", err)
	}
}

func TestSanitizeName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Get User", "Get User"},
		{"users/list", "users-list"},
		{"a:b*c", "a-b-c"},
		{"", "imported"},
		{strings.Repeat("x", 60), strings.Repeat("x", 50)},
	}

	for _, tc := range cases {
		if got := sanitizeName(tc.in); got != tc.want {
			t.Errorf("sanitizeName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
