package schema

import (
	"os"

	"github.com/xeipuuv/gojsonschema"

	"github.com/satchelhq/satchel/packages/core/fault"
)

// Report is the outcome of checking a response body against a JSON Schema.
type Report struct {
	Valid    bool
	Problems []string
}

// ValidateFile checks body against the schema stored at schemaPath.
func ValidateFile(schemaPath string, body []byte) (*Report, error) {
	schemaData, err := os.ReadFile(schemaPath)
	if err != nil {
		return nil, fault.Configurationf("schema.validate", nil, "cannot read schema file %s: %v", schemaPath, err)
	}
	return ValidateBytes(schemaData, body)
}

// ValidateBytes checks body against a raw schema document.
func ValidateBytes(schemaData, body []byte) (*Report, error) {
	schemaLoader := gojsonschema.NewBytesLoader(schemaData)
	documentLoader := gojsonschema.NewBytesLoader(body)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fault.Validationf("schema.validate", "schema validation error: %v", err)
	}

	if result.Valid() {
		return &Report{Valid: true}, nil
	}

	report := &Report{}
	for _, desc := range result.Errors() {
		report.Problems = append(report.Problems, desc.String())
	}
	return report, nil
}
