package dml

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/lockplane/schemacore/coreerr"
)

// documentJSONSchema describes the wire shape of a Document, the way the
// teacher's schema-json/schema.json describes its own Schema JSON shape.
// It is embedded rather than loaded from a file on disk since this
// package has no fixed install location to resolve a relative path
// against (see LoadJSONSchema's "file://schema-json/schema.json" in the
// teacher, which assumes a checked-out repo root).
const documentJSONSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["Models"],
	"properties": {
		"Models": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["Name"],
				"properties": {
					"Name": {"type": "string", "minLength": 1},
					"TableName": {"type": "string"},
					"ScalarFields": {
						"type": "array",
						"items": {
							"type": "object",
							"required": ["Name", "Type"],
							"properties": {
								"Name": {"type": "string", "minLength": 1},
								"Type": {"type": "string"}
							}
						}
					},
					"RelationFields": {
						"type": "array",
						"items": {
							"type": "object",
							"required": ["Name", "TargetModel"],
							"properties": {
								"Name": {"type": "string", "minLength": 1},
								"TargetModel": {"type": "string", "minLength": 1}
							}
						}
					}
				}
			}
		},
		"Enums": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["Name", "Variants"],
				"properties": {
					"Name": {"type": "string", "minLength": 1},
					"Variants": {"type": "array", "items": {"type": "string"}}
				}
			}
		}
	}
}`

// ValidateJSON marshals doc and validates the result against this
// module's published JSON Schema, the way the teacher's LoadJSONSchema/
// LoadJSONPlan validate a file's contents against schema-json/*.json
// before handing the parsed value back to a caller. This runs in addition
// to, not instead of, Validate's Go-level structural checks: the JSON
// Schema pass exists for documents arriving over the wire (e.g. produced
// by the out-of-scope DML parser) rather than assembled directly by
// introspect.Reconcile.
func (d *Document) ValidateJSON() error {
	data, err := json.Marshal(d)
	if err != nil {
		return coreerr.Wrap(coreerr.KindInternal, "marshaling document for JSON Schema validation", err)
	}

	schemaLoader := gojsonschema.NewStringLoader(documentJSONSchema)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return coreerr.Wrap(coreerr.KindInternal, "running JSON Schema validation", err)
	}
	if !result.Valid() {
		var b strings.Builder
		b.WriteString("document failed JSON Schema validation:\n")
		for _, e := range result.Errors() {
			fmt.Fprintf(&b, "- %s\n", e)
		}
		return coreerr.New(coreerr.KindUser, b.String())
	}
	return nil
}
