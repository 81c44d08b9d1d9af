package graphql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satchelhq/satchel/packages/core/fault"
)

func TestPayloadBody(t *testing.T) {
	p := NewPayload(`query($id: ID!) { user(id: $id) { name } }`)
	require.NoError(t, p.SetVariablesJSON(`{"id": "{{userId}}"}`))
	p.OperationName = "GetUser"

	body, err := p.Body()
	require.NoError(t, err)

	assert.Contains(t, body, `"query":"query($id: ID!) { user(id: $id) { name } }"`)
	assert.Contains(t, body, `"operationName":"GetUser"`)
	assert.Contains(t, body, `{{userId}}`, "placeholders survive into the body")
}

func TestPayloadBodyOmitsEmptyFields(t *testing.T) {
	body, err := NewPayload(`{ health }`).Body()
	require.NoError(t, err)

	assert.NotContains(t, body, "variables")
	assert.NotContains(t, body, "operationName")
}

func TestEmptyQueryIsRejected(t *testing.T) {
	_, err := NewPayload("").Body()

	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.Validation))
}

func TestBadVariablesJSON(t *testing.T) {
	p := NewPayload(`{ health }`)
	err := p.SetVariablesJSON(`["not", "an", "object"]`)

	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.Validation))
}

func TestHasErrors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected bool
	}{
		{"data only", `{"data": {"user": null}}`, false},
		{"empty errors array", `{"data": null, "errors": []}`, false},
		{"with errors", `{"errors": [{"message": "Cannot query field"}]}`, true},
		{"errors not an array", `{"errors": "weird"}`, false},
		{"not json", `<html>`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HasErrors([]byte(tt.body)))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	body := []byte(`{"errors": [{"message": "first"}, {"message": "second"}, {"path": ["x"]}]}`)

	assert.Equal(t, []string{"first", "second"}, ErrorMessages(body))
	assert.Nil(t, ErrorMessages([]byte(`{"data": {}}`)))
}
