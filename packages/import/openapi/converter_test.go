package openapi

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/satchelhq/satchel/packages/core/fault"
	"github.com/satchelhq/satchel/packages/core/store"
)

const petSpec = `
openapi: 3.0.0
info:
  title: Pet API
  version: 1.0.0
servers:
  - url: https://api.pets.dev/v1
paths:
  /pets:
    get:
      operationId: listPets
      tags: [pets]
      parameters:
        - name: limit
          in: query
          schema:
            type: integer
    post:
      operationId: createPet
      tags: [pets]
      requestBody:
        content:
          application/json:
            schema:
              type: object
              properties:
                name:
                  type: string
                age:
                  type: integer
  /pets/{petId}:
    get:
      operationId: getPet
      tags: [admin]
      parameters:
        - name: petId
          in: path
          required: true
          schema:
            type: string
`

func loadSpec(t *testing.T) *openapi3.T {
	t.Helper()
	doc, err := openapi3.NewLoader().LoadFromData([]byte(petSpec))
	if err != nil {
		t.Fatalf("cannot load test spec: %v", err)
	}
	return doc
}

func findTemplate(t *testing.T, templates []store.RequestTemplate, name string) store.RequestTemplate {
	t.Helper()
	for _, tmpl := range templates {
		if tmpl.Name == name {
			return tmpl
		}
	}
	t.Fatalf("no template named %s in %v", name, templates)
	return store.RequestTemplate{}
}

func TestConvert(t *testing.T) {
	templates, err := NewConverter().Convert(loadSpec(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(templates) != 3 {
		t.Fatalf("expected 3 templates, got %d", len(templates))
	}

	list := findTemplate(t, templates, "listPets")
	if list.Method != "GET" {
		t.Errorf("expected GET, got %s", list.Method)
	}
	if list.URL != "https://api.pets.dev/v1/pets?limit=1" {
		t.Errorf("unexpected URL %s", list.URL)
	}

	get := findTemplate(t, templates, "getPet")
	if get.URL != "https://api.pets.dev/v1/pets/{{petId}}" {
		t.Errorf("expected path param as placeholder, got %s", get.URL)
	}
}

func TestConvert_BodyFromSchema(t *testing.T) {
	templates, err := NewConverter().Convert(loadSpec(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	create := findTemplate(t, templates, "createPet")
	if len(create.Headers) != 1 || create.Headers[0] != "Content-Type: application/json" {
		t.Errorf("expected JSON content type header, got %v", create.Headers)
	}
	if !strings.Contains(create.Body, `"name": "example"`) {
		t.Errorf("expected synthesized string property, got %s", create.Body)
	}
	if !strings.Contains(create.Body, `"age": 1`) {
		t.Errorf("expected synthesized integer property, got %s", create.Body)
	}
}

func TestConvert_TagFilter(t *testing.T) {
	templates, err := NewConverter(WithTags([]string{"admin"})).Convert(loadSpec(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(templates) != 1 || templates[0].Name != "getPet" {
		t.Fatalf("expected only getPet, got %v", templates)
	}
}

func TestConvert_BaseURLOverride(t *testing.T) {
	templates, err := NewConverter(WithBaseURL("http://localhost:9999")).Convert(loadSpec(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	list := findTemplate(t, templates, "listPets")
	if !strings.HasPrefix(list.URL, "http://localhost:9999/pets") {
		t.Errorf("expected overridden base URL, got %s", list.URL)
	}
}

func TestConvertFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spec.yaml")
	if err := os.WriteFile(path, []byte(petSpec), 0644); err != nil {
		t.Fatal(err)
	}

	templates, err := NewConverter().ConvertFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(templates) != 3 {
		t.Errorf("expected 3 templates, got %d", len(templates))
	}
}

func TestConvertFile_Missing(t *testing.T) {
	_, err := NewConverter().ConvertFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing spec file")
	}
	if !fault.IsKind(err, fault.Configuration) {
		t.Errorf("expected configuration fault, got %v", err)
	}
}
