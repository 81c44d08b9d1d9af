// Package postman converts Postman Collection v2.1 exports into request
// templates and environments.
package postman

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/satchelhq/satchel/packages/core/fault"
	"github.com/satchelhq/satchel/packages/core/store"
)

// Collection mirrors the parts of a Postman Collection v2.1 satchel reads.
type Collection struct {
	Info     Info       `json:"info"`
	Item     []Item     `json:"item"`
	Variable []Variable `json:"variable,omitempty"`
}

type Info struct {
	Name   string `json:"name"`
	Schema string `json:"schema"`
}

// Item is either a request or a folder of nested items.
type Item struct {
	Name    string   `json:"name"`
	Request *Request `json:"request,omitempty"`
	Item    []Item   `json:"item,omitempty"`
}

type Request struct {
	Method string   `json:"method"`
	Header []Header `json:"header,omitempty"`
	Body   *Body    `json:"body,omitempty"`
	URL    URL      `json:"url"`
}

type Header struct {
	Key      string `json:"key"`
	Value    string `json:"value"`
	Disabled bool   `json:"disabled,omitempty"`
}

type Body struct {
	Mode       string `json:"mode"`
	Raw        string `json:"raw,omitempty"`
	URLEncoded []KV   `json:"urlencoded,omitempty"`
}

type KV struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type Variable struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// URL accepts both forms Postman emits: a plain string and an object
// with a raw field.
type URL struct {
	Raw string `json:"raw"`
}

func (u *URL) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &u.Raw)
	}
	var obj struct {
		Raw string `json:"raw"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	u.Raw = obj.Raw
	return nil
}

// ParseFile reads and parses a collection export.
func ParseFile(path string) (*Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fault.Configurationf("postman.parse", nil, "no collection file at %s", path)
		}
		return nil, fault.Storagef("postman.parse", err, "cannot read %s", path)
	}
	return Parse(data)
}

// Parse parses a collection export.
func Parse(data []byte) (*Collection, error) {
	var collection Collection
	if err := json.Unmarshal(data, &collection); err != nil {
		return nil, fault.Validationf("postman.parse", "not a Postman collection: %v", err)
	}
	return &collection, nil
}

// Templates flattens the collection into request templates. Folder names
// prefix the request names.
func (c *Collection) Templates() []store.RequestTemplate {
	var templates []store.RequestTemplate
	collectItems(&templates, c.Item, "")
	return templates
}

// Name returns the collection name cleaned up for use as a store name.
func (c *Collection) Name() string {
	return sanitizeName(c.Info.Name)
}

// Environment builds a variable set from the collection-level variables.
// Collections without variables yield an empty map.
func (c *Collection) Environment() map[string]any {
	vars := make(map[string]any, len(c.Variable))
	for _, v := range c.Variable {
		if v.Key == "" {
			continue
		}
		vars[v.Key] = v.Value
	}
	return vars
}

func collectItems(templates *[]store.RequestTemplate, items []Item, prefix string) {
	for _, item := range items {
		if len(item.Item) > 0 {
			nested := item.Name
			if prefix != "" {
				nested = prefix + " " + item.Name
			}
			collectItems(templates, item.Item, nested)
			continue
		}

		if item.Request == nil {
			continue
		}

		name := item.Name
		if prefix != "" {
			name = prefix + " " + name
		}

		req := item.Request
		tmpl := store.RequestTemplate{
			Name:   sanitizeName(name),
			Method: strings.ToUpper(req.Method),
			URL:    convertVariables(req.URL.Raw),
		}

		for _, h := range req.Header {
			if h.Disabled || h.Key == "" {
				continue
			}
			tmpl.Headers = append(tmpl.Headers, h.Key+": "+convertVariables(h.Value))
		}

		if req.Body != nil {
			switch req.Body.Mode {
			case "raw":
				tmpl.Body = convertVariables(req.Body.Raw)
			case "urlencoded":
				var parts []string
				for _, kv := range req.Body.URLEncoded {
					parts = append(parts, kv.Key+"="+convertVariables(kv.Value))
				}
				tmpl.Body = strings.Join(parts, "&")
			}
		}

		*templates = append(*templates, tmpl)
	}
}

// convertVariables rewrites Postman dynamic variables to the builtin
// function forms. Plain {{variable}} references pass through untouched.
func convertVariables(s string) string {
	s = strings.ReplaceAll(s, "{{$guid}}", "{{uuid()}}")
	s = strings.ReplaceAll(s, "{{$randomUUID}}", "{{uuid()}}")
	s = strings.ReplaceAll(s, "{{$timestamp}}", "{{timestamp()}}")
	s = strings.ReplaceAll(s, "{{$randomInt}}", "{{randomInt(0,1000)}}")
	s = strings.ReplaceAll(s, "{{$randomEmail}}", "{{randomEmail()}}")
	return s
}

// sanitizeName makes a Postman item name storable: forbidden characters
// become dashes and the result is clipped to the name length limit.
func sanitizeName(name string) string {
	result := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '-'
		}
		return r
	}, name)

	result = strings.TrimSpace(result)
	if result == "" {
		result = "imported"
	}
	if len(result) > 50 {
		result = strings.TrimSpace(result[:50])
	}
	return result
}
