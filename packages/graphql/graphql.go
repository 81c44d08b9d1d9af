package graphql

import (
	"encoding/json"

	"github.com/tidwall/gjson"

	"github.com/satchelhq/satchel/packages/core/fault"
)

// Payload is the JSON body of a GraphQL request over HTTP.
type Payload struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
	OperationName string         `json:"operationName,omitempty"`
}

func NewPayload(query string) *Payload {
	return &Payload{Query: query}
}

// SetVariablesJSON parses a raw JSON object into the payload variables.
func (p *Payload) SetVariablesJSON(raw string) error {
	if raw == "" {
		return nil
	}
	vars := map[string]any{}
	if err := json.Unmarshal([]byte(raw), &vars); err != nil {
		return fault.Validationf("graphql.variables", "variables must be a JSON object: %v", err)
	}
	p.Variables = vars
	return nil
}

// Body renders the payload as the POST body. Template placeholders inside
// the query or variables survive marshalling and resolve later like any
// other body text.
func (p *Payload) Body() (string, error) {
	if p.Query == "" {
		return "", fault.Validationf("graphql.payload", "query must not be empty")
	}
	data, err := json.Marshal(p)
	if err != nil {
		return "", fault.Validationf("graphql.payload", "encoding payload: %v", err)
	}
	return string(data), nil
}

// HasErrors reports whether a response body carries a non-empty GraphQL
// errors array. GraphQL servers answer 200 even when the query failed, so
// status codes say nothing here.
func HasErrors(body []byte) bool {
	errs := gjson.GetBytes(body, "errors")
	return errs.IsArray() && len(errs.Array()) > 0
}

// ErrorMessages extracts the message of each GraphQL error in the body.
func ErrorMessages(body []byte) []string {
	var messages []string
	for _, e := range gjson.GetBytes(body, "errors").Array() {
		if msg := e.Get("message"); msg.Exists() {
			messages = append(messages, msg.String())
		}
	}
	return messages
}
