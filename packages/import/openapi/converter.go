// Package openapi converts OpenAPI 3.0/3.1 documents into request templates.
package openapi

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/satchelhq/satchel/packages/core/fault"
	"github.com/satchelhq/satchel/packages/core/store"
)

// Converter turns OpenAPI operations into request templates.
type Converter struct {
	baseURL string
	tags    []string
}

// Option is a functional option for Converter
type Option func(*Converter)

// WithBaseURL overrides the server URL from the document.
func WithBaseURL(url string) Option {
	return func(c *Converter) {
		c.baseURL = url
	}
}

// WithTags keeps only operations carrying at least one of the tags.
func WithTags(tags []string) Option {
	return func(c *Converter) {
		c.tags = tags
	}
}

// NewConverter creates a new OpenAPI converter
func NewConverter(opts ...Option) *Converter {
	c := &Converter{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ConvertFile loads a spec from disk and converts it. YAML and JSON both
// load through the same loader.
func (c *Converter) ConvertFile(path string) ([]store.RequestTemplate, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fault.Configurationf("openapi.convert", nil, "no spec file at %s", path)
	}

	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = true

	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return nil, fault.Validationf("openapi.convert", "cannot load OpenAPI spec: %v", err)
	}

	return c.Convert(doc)
}

// Convert walks the document's paths in sorted order and builds one
// template per operation.
func (c *Converter) Convert(doc *openapi3.T) ([]store.RequestTemplate, error) {
	baseURL := c.baseURL
	if baseURL == "" {
		baseURL = serverURL(doc)
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	paths := make([]string, 0, len(doc.Paths.Map()))
	for path := range doc.Paths.Map() {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var templates []store.RequestTemplate
	for _, path := range paths {
		pathItem := doc.Paths.Map()[path]
		if pathItem == nil {
			continue
		}

		operations := []struct {
			method string
			op     *openapi3.Operation
		}{
			{"GET", pathItem.Get},
			{"POST", pathItem.Post},
			{"PUT", pathItem.Put},
			{"PATCH", pathItem.Patch},
			{"DELETE", pathItem.Delete},
			{"HEAD", pathItem.Head},
			{"OPTIONS", pathItem.Options},
		}

		for _, op := range operations {
			if op.op == nil || !c.includes(op.op) {
				continue
			}
			templates = append(templates, c.convertOperation(baseURL, path, op.method, op.op, pathItem.Parameters))
		}
	}

	return templates, nil
}

func serverURL(doc *openapi3.T) string {
	if len(doc.Servers) > 0 && doc.Servers[0].URL != "" {
		return doc.Servers[0].URL
	}
	return "http://localhost:3000"
}

func (c *Converter) includes(op *openapi3.Operation) bool {
	if len(c.tags) == 0 {
		return true
	}
	for _, tag := range op.Tags {
		for _, want := range c.tags {
			if tag == want {
				return true
			}
		}
	}
	return false
}

func (c *Converter) convertOperation(baseURL, path, method string, op *openapi3.Operation, pathParams openapi3.Parameters) store.RequestTemplate {
	allParams := append(pathParams, op.Parameters...)

	url := baseURL + convertPathParams(path, allParams)
	if query := queryString(allParams); query != "" {
		url += "?" + query
	}

	tmpl := store.RequestTemplate{
		Name:   operationName(method, path, op),
		Method: method,
		URL:    url,
	}

	for _, paramRef := range allParams {
		if paramRef == nil || paramRef.Value == nil {
			continue
		}
		param := paramRef.Value
		if param.In == "header" {
			tmpl.Headers = append(tmpl.Headers, param.Name+": "+paramExample(param))
		}
	}

	if op.RequestBody != nil && op.RequestBody.Value != nil {
		reqBody := op.RequestBody.Value
		if contentType := bodyContentType(reqBody); contentType != "" {
			tmpl.Headers = append(tmpl.Headers, "Content-Type: "+contentType)
		}
		tmpl.Body = generateRequestBody(reqBody)
	}

	return tmpl
}

func operationName(method, path string, op *openapi3.Operation) string {
	name := op.OperationID
	if name == "" {
		cleaned := strings.Trim(path, "/")
		cleaned = strings.NewReplacer("/", "_", "{", "", "}", "").Replace(cleaned)
		if cleaned == "" {
			cleaned = "root"
		}
		name = strings.ToLower(method) + "_" + cleaned
	}

	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)

	if len(name) > 50 {
		name = strings.Trim(name[:50], "_")
	}
	return name
}

// convertPathParams rewrites {param} segments into {{param}} placeholders.
func convertPathParams(path string, params openapi3.Parameters) string {
	result := path
	for _, paramRef := range params {
		if paramRef == nil || paramRef.Value == nil {
			continue
		}
		param := paramRef.Value
		if param.In == "path" {
			result = strings.ReplaceAll(result, "{"+param.Name+"}", "{{"+param.Name+"}}")
		}
	}
	return result
}

func queryString(params openapi3.Parameters) string {
	var parts []string
	for _, paramRef := range params {
		if paramRef == nil || paramRef.Value == nil {
			continue
		}
		param := paramRef.Value
		if param.In == "query" {
			parts = append(parts, param.Name+"="+paramExample(param))
		}
	}
	return strings.Join(parts, "&")
}

func paramExample(param *openapi3.Parameter) string {
	if param.Example != nil {
		return fmt.Sprintf("%v", param.Example)
	}

	if param.Schema != nil && param.Schema.Value != nil {
		schema := param.Schema.Value
		if schema.Example != nil {
			return fmt.Sprintf("%v", schema.Example)
		}
		if len(schema.Type.Slice()) > 0 {
			switch schema.Type.Slice()[0] {
			case "integer":
				return "1"
			case "number":
				return "1.0"
			case "boolean":
				return "true"
			case "string":
				switch schema.Format {
				case "date":
					return "2024-01-01"
				case "date-time":
					return "2024-01-01T00:00:00Z"
				case "email":
					return "user@example.com"
				case "uuid":
					return "{{uuid()}}"
				}
				return "example"
			}
		}
	}

	return "{{" + param.Name + "}}"
}

func bodyContentType(reqBody *openapi3.RequestBody) string {
	for contentType := range reqBody.Content {
		if strings.Contains(contentType, "json") {
			return "application/json"
		}
	}
	for contentType := range reqBody.Content {
		if strings.Contains(contentType, "form") {
			return "application/x-www-form-urlencoded"
		}
	}
	return ""
}

func generateRequestBody(reqBody *openapi3.RequestBody) string {
	// Prefer JSON
	for contentType, mediaType := range reqBody.Content {
		if strings.Contains(contentType, "json") && mediaType.Schema != nil {
			return generateJSONFromSchema(mediaType.Schema.Value, 0)
		}
	}

	for contentType, mediaType := range reqBody.Content {
		if strings.Contains(contentType, "form") && mediaType.Schema != nil {
			return generateFormFromSchema(mediaType.Schema.Value)
		}
	}

	return ""
}

func generateJSONFromSchema(schema *openapi3.Schema, depth int) string {
	if schema == nil || depth > 5 {
		return "{}"
	}

	if len(schema.Type.Slice()) == 0 {
		return "{}"
	}

	switch schema.Type.Slice()[0] {
	case "object":
		var sb strings.Builder
		sb.WriteString("{\n")

		props := make([]string, 0, len(schema.Properties))
		for name := range schema.Properties {
			props = append(props, name)
		}
		sort.Strings(props)

		for i, name := range props {
			propSchema := schema.Properties[name]
			indent := strings.Repeat("  ", depth+1)
			sb.WriteString(indent)
			sb.WriteString("\"")
			sb.WriteString(name)
			sb.WriteString("\": ")

			if propSchema != nil && propSchema.Value != nil {
				sb.WriteString(generateJSONValue(propSchema.Value, depth+1))
			} else {
				sb.WriteString("null")
			}

			if i < len(props)-1 {
				sb.WriteString(",")
			}
			sb.WriteString("\n")
		}

		sb.WriteString(strings.Repeat("  ", depth))
		sb.WriteString("}")
		return sb.String()

	case "array":
		if schema.Items != nil && schema.Items.Value != nil {
			return "[" + generateJSONValue(schema.Items.Value, depth+1) + "]"
		}
		return "[]"

	default:
		return generateJSONValue(schema, depth)
	}
}

func generateJSONValue(schema *openapi3.Schema, depth int) string {
	if schema == nil {
		return "null"
	}

	if schema.Example != nil {
		if data, err := json.Marshal(schema.Example); err == nil {
			return string(data)
		}
	}

	if len(schema.Type.Slice()) == 0 {
		return "null"
	}

	switch schema.Type.Slice()[0] {
	case "string":
		switch schema.Format {
		case "date":
			return "\"2024-01-01\""
		case "date-time":
			return "\"2024-01-01T00:00:00Z\""
		case "email":
			return "\"user@example.com\""
		case "uuid":
			return "\"{{uuid()}}\""
		}
		if len(schema.Enum) > 0 {
			return fmt.Sprintf("\"%v\"", schema.Enum[0])
		}
		return "\"example\""
	case "integer":
		if schema.Min != nil {
			return fmt.Sprintf("%.0f", *schema.Min)
		}
		return "1"
	case "number":
		if schema.Min != nil {
			return fmt.Sprintf("%v", *schema.Min)
		}
		return "1.0"
	case "boolean":
		return "true"
	case "array":
		if schema.Items != nil && schema.Items.Value != nil {
			return "[" + generateJSONValue(schema.Items.Value, depth+1) + "]"
		}
		return "[]"
	case "object":
		return generateJSONFromSchema(schema, depth)
	default:
		return "null"
	}
}

func generateFormFromSchema(schema *openapi3.Schema) string {
	if schema == nil || len(schema.Properties) == 0 {
		return ""
	}

	var parts []string
	for name, propSchema := range schema.Properties {
		value := "example"
		if propSchema != nil && propSchema.Value != nil && propSchema.Value.Example != nil {
			value = fmt.Sprintf("%v", propSchema.Value.Example)
		}
		parts = append(parts, name+"="+value)
	}
	sort.Strings(parts)
	return strings.Join(parts, "&")
}
