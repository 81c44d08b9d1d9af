// Package export serializes the store document into shareable bundles
// and reads them back.
package export

import (
	"encoding/json"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/satchelhq/satchel/packages/core/fault"
	"github.com/satchelhq/satchel/packages/core/store"
)

// Format selects a bundle encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat reads a format flag value. Empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fault.Validationf("export.format", "unsupported format %q, want json or yaml", s)
	}
}

// DetectFormat guesses a bundle's format from its file name.
func DetectFormat(path string) Format {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") {
		return FormatYAML
	}
	return FormatJSON
}

// Marshal renders the document in the given format.
func Marshal(doc *store.Document, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		data, err := yaml.Marshal(doc)
		if err != nil {
			return nil, fault.Storagef("export.marshal", err, "cannot encode bundle")
		}
		return data, nil
	default:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fault.Storagef("export.marshal", err, "cannot encode bundle")
		}
		return append(data, '\n'), nil
	}
}

// Unmarshal parses a bundle. Absent sections come back empty, not nil.
func Unmarshal(data []byte, format Format) (*store.Document, error) {
	var doc store.Document
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	default:
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, fault.Validationf("export.unmarshal", "not a satchel bundle: %v", err)
	}

	if doc.Requests == nil {
		doc.Requests = []store.RequestTemplate{}
	}
	if doc.Environments == nil {
		doc.Environments = map[string]map[string]any{}
	}
	return &doc, nil
}
