package dml

import "testing"

func TestValidateJSON_AcceptsWellFormedDocument(t *testing.T) {
	doc := Document{
		Models: []Model{
			{Name: "User", ScalarFields: []ScalarField{{Name: "id", Type: TypeInt}}},
		},
	}
	if err := doc.ValidateJSON(); err != nil {
		t.Fatalf("expected valid document, got error: %v", err)
	}
}

func TestValidateJSON_RejectsModelMissingName(t *testing.T) {
	doc := Document{Models: []Model{{ScalarFields: []ScalarField{{Name: "id", Type: TypeInt}}}}}
	if err := doc.ValidateJSON(); err == nil {
		t.Fatalf("expected a JSON Schema validation error for a model with an empty name")
	}
}
