// Package insomnia converts Insomnia v4 exports into request templates
// and environments.
package insomnia

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/satchelhq/satchel/packages/core/fault"
	"github.com/satchelhq/satchel/packages/core/store"
)

// Export mirrors the parts of an Insomnia v4 export satchel reads.
type Export struct {
	Type         string     `json:"_type"`
	ExportFormat int        `json:"__export_format"`
	Resources    []Resource `json:"resources"`
}

// Resource is any entry of the export. The Type field tells requests,
// folders and environments apart.
type Resource struct {
	ID             string         `json:"_id"`
	Type           string         `json:"_type"`
	ParentID       string         `json:"parentId"`
	Name           string         `json:"name"`
	Method         string         `json:"method,omitempty"`
	URL            string         `json:"url,omitempty"`
	Headers        []Header       `json:"headers,omitempty"`
	Body           *Body          `json:"body,omitempty"`
	Parameters     []Parameter    `json:"parameters,omitempty"`
	Authentication *Auth          `json:"authentication,omitempty"`
	Data           map[string]any `json:"data,omitempty"`
}

type Header struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Disabled bool   `json:"disabled,omitempty"`
}

type Body struct {
	MimeType string `json:"mimeType,omitempty"`
	Text     string `json:"text,omitempty"`
}

type Parameter struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Disabled bool   `json:"disabled,omitempty"`
}

type Auth struct {
	Type     string `json:"type"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	Token    string `json:"token,omitempty"`
}

// ParseFile reads and parses an Insomnia export.
func ParseFile(path string) (*Export, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fault.Configurationf("insomnia.parse", nil, "no export file at %s", path)
		}
		return nil, fault.Storagef("insomnia.parse", err, "reading %s", path)
	}
	return Parse(data)
}

// Parse decodes an Insomnia v4 export.
func Parse(data []byte) (*Export, error) {
	var export Export
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, fault.Validationf("insomnia.parse", "not an Insomnia export: %v", err)
	}
	if export.Type != "export" || len(export.Resources) == 0 {
		return nil, fault.Validationf("insomnia.parse", "not an Insomnia export: no resources")
	}
	return &export, nil
}

// Templates converts every request resource into a template. Folder
// names prefix the request names, and Insomnia {{ _.var }} references
// become plain {{var}} placeholders.
func (e *Export) Templates() []store.RequestTemplate {
	folders := make(map[string]Resource)
	for _, res := range e.Resources {
		if res.Type == "request_group" {
			folders[res.ID] = res
		}
	}

	var templates []store.RequestTemplate
	for _, res := range e.Resources {
		if res.Type != "request" {
			continue
		}
		templates = append(templates, convertRequest(res, folders))
	}
	return templates
}

// Environments collects the environment resources, keyed by their
// cleaned-up names. Insomnia nests sub environments under a base one;
// both kinds come back flat.
func (e *Export) Environments() map[string]map[string]any {
	envs := make(map[string]map[string]any)
	for _, res := range e.Resources {
		if res.Type != "environment" || len(res.Data) == 0 {
			continue
		}
		vars := make(map[string]any, len(res.Data))
		for k, v := range res.Data {
			if s, ok := v.(string); ok {
				vars[k] = convertVariables(s)
				continue
			}
			vars[k] = v
		}
		envs[sanitizeName(res.Name)] = vars
	}
	return envs
}

func convertRequest(res Resource, folders map[string]Resource) store.RequestTemplate {
	name := res.Name
	if path := folderPath(res.ParentID, folders); path != "" {
		name = path + " " + name
	}

	method := strings.ToUpper(res.Method)
	if method == "" {
		method = "GET"
	}

	url := convertVariables(res.URL)
	if query := queryString(res.Parameters); query != "" {
		url += "?" + query
	}

	var headers []string
	for _, h := range res.Headers {
		if h.Disabled || h.Name == "" {
			continue
		}
		headers = append(headers, h.Name+": "+convertVariables(h.Value))
	}
	if auth := authHeader(res.Authentication); auth != "" {
		headers = append(headers, auth)
	}
	sort.Strings(headers)

	var body string
	if res.Body != nil {
		body = convertVariables(res.Body.Text)
	}

	return store.RequestTemplate{
		Name:    sanitizeName(name),
		Method:  method,
		URL:     url,
		Headers: headers,
		Body:    body,
	}
}

// authHeader renders Insomnia auth settings as an Authorization header.
// Basic credentials must be encoded at conversion time, so variable
// references inside them cannot survive; such requests come through
// without the header. Bearer tokens need no encoding and keep theirs.
func authHeader(auth *Auth) string {
	if auth == nil {
		return ""
	}
	switch auth.Type {
	case "basic":
		if auth.Username == "" {
			return ""
		}
		user := convertVariables(auth.Username)
		pass := convertVariables(auth.Password)
		if strings.Contains(user, "{{") || strings.Contains(pass, "{{") {
			return ""
		}
		cred := base64.StdEncoding.EncodeToString([]byte(user + ":" + pass))
		return "Authorization: Basic " + cred
	case "bearer":
		if auth.Token == "" {
			return ""
		}
		return "Authorization: Bearer " + convertVariables(auth.Token)
	}
	return ""
}

func folderPath(parentID string, folders map[string]Resource) string {
	var path []string
	for {
		folder, ok := folders[parentID]
		if !ok {
			break
		}
		path = append([]string{folder.Name}, path...)
		parentID = folder.ParentID
	}
	return strings.Join(path, " ")
}

func queryString(params []Parameter) string {
	var parts []string
	for _, p := range params {
		if p.Disabled || p.Name == "" {
			continue
		}
		parts = append(parts, p.Name+"="+convertVariables(p.Value))
	}
	return strings.Join(parts, "&")
}

var (
	scopedVarPattern = regexp.MustCompile(`\{\{\s*_\.(\w+)\s*\}\}`)
	looseVarPattern  = regexp.MustCompile(`\{\{\s*(\w+)\s*\}\}`)
)

// convertVariables rewrites {{ _.name }} and {{ name }} to {{name}}.
func convertVariables(s string) string {
	s = scopedVarPattern.ReplaceAllString(s, "{{$1}}")
	return looseVarPattern.ReplaceAllString(s, "{{$1}}")
}

var forbiddenPattern = regexp.MustCompile(`[/\\:*?"<>|]+`)

func sanitizeName(name string) string {
	name = forbiddenPattern.ReplaceAllString(name, "-")
	name = strings.TrimSpace(name)
	if name == "" {
		name = "imported"
	}
	if len(name) > store.MaxNameLength {
		name = name[:store.MaxNameLength]
	}
	return name
}
