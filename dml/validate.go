package dml

import (
	"fmt"
	"regexp"

	"github.com/lockplane/schemacore/coreerr"
)

var usableIdentifier = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// IsUsableIdentifier reports whether name can be used as a model or field
// name in generated client code without escaping: it must start with a
// letter and contain only letters, digits, and underscores.
func IsUsableIdentifier(name string) bool {
	return usableIdentifier.MatchString(name)
}

// Validate checks structural invariants that introspect.Reconcile and any
// future parser both need to uphold: every relation field targets a
// declared model, an owning side has as many reference columns as foreign
// key fields, every relation has exactly two sides, and every scalar field
// referencing an enum resolves to one declared in the document. Which of
// the two sides owns the relation is not checked.
func (d *Document) Validate() error {
	modelNames := make(map[string]bool, len(d.Models))
	for _, m := range d.Models {
		modelNames[m.Name] = true
	}
	enumNames := make(map[string]bool, len(d.Enums))
	for _, e := range d.Enums {
		enumNames[e.Name] = true
	}

	for _, m := range d.Models {
		for _, f := range m.ScalarFields {
			if f.EnumName != "" && !enumNames[f.EnumName] {
				return coreerr.New(coreerr.KindUser, fmt.Sprintf("model %s field %s references undeclared enum %s", m.Name, f.Name, f.EnumName))
			}
		}
		for _, r := range m.RelationFields {
			if !modelNames[r.TargetModel] {
				return coreerr.New(coreerr.KindUser, fmt.Sprintf("model %s relation field %s targets undeclared model %s", m.Name, r.Name, r.TargetModel))
			}
			owning := len(r.ForeignKeyFields) > 0
			if owning && len(r.ForeignKeyFields) != len(r.References) {
				return coreerr.New(coreerr.KindUser, fmt.Sprintf("model %s relation field %s has mismatched foreign key/reference column counts", m.Name, r.Name))
			}
		}
	}

	return validateRelationCompleteness(d)
}

// validateRelationCompleteness ensures every relation with a named
// RelationName that appears on one model's owning side also has a
// corresponding back-reference field on the target model — the spec's
// "every foreign key synthesizes both directions" rule (§4.6), checked
// here for documents assembled by hand rather than by the reconciler.
func validateRelationCompleteness(d *Document) error {
	type endpoint struct{ model, field string }
	bySameRelation := map[string][]endpoint{}

	for _, m := range d.Models {
		for _, r := range m.RelationFields {
			key := r.RelationName
			if key == "" {
				key = RelationName(m.Name, r.TargetModel)
			}
			bySameRelation[key] = append(bySameRelation[key], endpoint{model: m.Name, field: r.Name})
		}
	}

	for name, ends := range bySameRelation {
		if len(ends) != 2 {
			return coreerr.New(coreerr.KindUser, fmt.Sprintf("relation %q has %d side(s); every relation needs exactly two (forward and back-reference)", name, len(ends)))
		}
	}

	return nil
}
