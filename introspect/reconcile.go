// Package introspect turns a host.DescribedSchema (what a live database
// actually contains) into a dml.Document, optionally guided by a prior
// dml.Document so a re-introspection preserves the user's naming choices
// instead of regenerating everything from scratch (spec §4.6).
package introspect

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lockplane/schemacore/dml"
	"github.com/lockplane/schemacore/host"
)

// Warning is one structured note surfaced alongside the reconciled
// document: a decision the reconciler had to make that the user may want
// to review. Two codes are emitted: "unrecognized_native_type" (a column
// that couldn't be expressed as any known scalar type) and
// "dangling_foreign_key" (a foreign key to a table that wasn't described).
// Reserved-word renames produce no warning.
type Warning struct {
	Code    string
	Message string
	Model   string
	Field   string
}

// Result is Reconcile's output: the document plus the warnings collected
// while building it.
type Result struct {
	Document dml.Document
	Warnings []Warning
}

// Reconcile implements the seven-step algorithm of spec §4.6:
//  1. sanitize names into usable identifiers
//  2. resolve collisions with reserved words
//  3. pair each table with its prior DML model, if any
//  4. preserve user intent (explicit @@map/@map, explicit relation names)
//     for paired models
//  5. synthesize relation fields from foreign keys, applying the 1:1/1:N
//     arity rule
//  6. compute field defaults from the described column defaults
//  7. emit structured warnings for anything ambiguous
func Reconcile(described host.DescribedSchema, prior *dml.Document) Result {
	r := &reconciler{described: described, prior: prior, byTableKey: map[string]*dml.Model{}}
	return r.run()
}

type reconciler struct {
	described  host.DescribedSchema
	prior      *dml.Document
	byTableKey map[string]*dml.Model // table namespace+name -> synthesized model, for FK relation synthesis
	warnings   []Warning
}

func (r *reconciler) run() Result {
	doc := dml.Document{}

	priorByTable := map[string]*dml.Model{}
	if r.prior != nil {
		for i := range r.prior.Models {
			m := &r.prior.Models[i]
			key := m.TableName
			if key == "" {
				key = m.Name
			}
			priorByTable[key] = m
		}
	}

	for _, table := range r.described.Tables {
		model := r.reconcileTable(table, priorByTable[table.Name])
		doc.Models = append(doc.Models, model)
		r.byTableKey[tableKey(table.Namespace, table.Name)] = &doc.Models[len(doc.Models)-1]
	}

	for _, e := range r.described.Enums {
		doc.Enums = append(doc.Enums, dml.Enum{Name: sanitize(e.Name), Variants: append([]string(nil), e.Variants...)})
	}

	r.synthesizeRelations(&doc)

	return Result{Document: doc, Warnings: r.warnings}
}

// Step 1+2+3+4: sanitize the table's name, resolve a reserved-word
// collision, pair with the prior model if one maps to this table, and
// preserve its name/mapping when paired.
func (r *reconciler) reconcileTable(table host.DescribedTable, prior *dml.Model) dml.Model {
	modelName := sanitize(table.Name)
	modelName = resolveReservedWord(modelName)
	tableNameOverride := ""
	if modelName != table.Name {
		tableNameOverride = table.Name
	}

	if prior != nil {
		// Step 4: preserve the user's chosen model name even though the
		// underlying table name is unchanged, by keeping their name and
		// recording the mapping.
		modelName = prior.Name
		if prior.TableName != "" {
			tableNameOverride = prior.TableName
		} else if modelName != table.Name {
			tableNameOverride = table.Name
		}
	}

	model := dml.Model{Name: modelName, TableName: tableNameOverride}

	priorFieldsByColumn := map[string]*dml.ScalarField{}
	if prior != nil {
		for i := range prior.ScalarFields {
			f := &prior.ScalarFields[i]
			key := f.ColumnName
			if key == "" {
				key = f.Name
			}
			priorFieldsByColumn[key] = f
		}
	}

	for _, col := range table.Columns {
		model.ScalarFields = append(model.ScalarFields, r.reconcileColumn(table.Name, col, priorFieldsByColumn[col.Name]))
	}

	for _, idx := range table.Indexes {
		if idx.IsPrimary {
			continue // the primary key is expressed via ScalarField.IsID, not a DML-level @@index
		}
		model.Indexes = append(model.Indexes, dml.Index{Fields: idx.ColumnName, Unique: idx.Unique})
	}

	return model
}

func (r *reconciler) reconcileColumn(tableName string, col host.DescribedColumn, prior *dml.ScalarField) dml.ScalarField {
	fieldName := sanitize(col.Name)
	fieldName = resolveReservedWord(fieldName)
	columnNameOverride := ""
	if fieldName != col.Name {
		columnNameOverride = col.Name
	}

	if prior != nil {
		fieldName = prior.Name
		if prior.ColumnName != "" {
			columnNameOverride = prior.ColumnName
		} else if fieldName != col.Name {
			columnNameOverride = col.Name
		}
	}

	scalarType, ok := classifyScalarType(col.NativeType)
	if !ok {
		r.warnings = append(r.warnings, Warning{
			Code:    "unrecognized_native_type",
			Message: fmt.Sprintf("column %s.%s has native type %q with no known scalar mapping; defaulting to String", tableName, col.Name, col.NativeType),
			Model:   tableName, Field: col.Name,
		})
		scalarType = dml.TypeString
	}

	field := dml.ScalarField{
		Name:       fieldName,
		ColumnName: columnNameOverride,
		Type:       scalarType,
		Arity:      dml.FieldRequired,
	}
	if col.Nullable {
		field.Arity = dml.FieldOptional
	}
	if col.IsAutoIncrement {
		field.Default = &dml.FieldDefault{Expression: "autoincrement()"}
	} else if col.DefaultText != nil {
		// Step 6: compute the field default from the described column
		// default, recognizing a couple of well-known server expressions
		// the way the teacher's planner recognizes DEFAULT clauses.
		field.Default = computeDefault(*col.DefaultText)
	}

	return field
}

func computeDefault(expr string) *dml.FieldDefault {
	lower := strings.ToLower(strings.TrimSpace(expr))
	switch {
	case strings.Contains(lower, "now()") || strings.Contains(lower, "current_timestamp"):
		return &dml.FieldDefault{Expression: "now()"}
	case strings.Contains(lower, "nextval("):
		return &dml.FieldDefault{Expression: "autoincrement()"}
	default:
		return &dml.FieldDefault{Expression: expr}
	}
}

// Step 5: synthesize relation fields from every foreign key, applying the
// 1:1 vs 1:N rule: a foreign key whose constrained columns are also
// covered by a unique index produces a 1:1 relation (both sides optional
// to-one); otherwise it produces a standard 1:N (owning side to-one,
// back-reference to-many).
//
// When a table has more than one foreign key to the same referenced
// table, the plain "{A}To{B}" relation name and the plain "{target}"/
// "{owner}List" field names would collide across the two relations, so
// each one is qualified by its constrained column, matching Prisma's own
// re-introspection precedent of giving such relations distinct names
// (schema-engine/sql-introspection-tests/tests/re_introspection/sqlite.rs,
// multiple_changed_relation_names_due_to_mapped_models).
func (r *reconciler) synthesizeRelations(doc *dml.Document) {
	for i := range r.described.Tables {
		table := r.described.Tables[i]
		owner := r.byTableKey[tableKey(table.Namespace, table.Name)]
		if owner == nil {
			continue
		}

		uniqueColumnSets := uniqueColumnSetsOf(table)
		countByTarget := make(map[string]int, len(table.ForeignKeys))
		for _, fk := range table.ForeignKeys {
			countByTarget[fk.ReferencedTable]++
		}

		for _, fk := range table.ForeignKeys {
			target := r.byTableKey[tableKey(table.Namespace, fk.ReferencedTable)]
			if target == nil {
				r.warnings = append(r.warnings, Warning{
					Code:    "dangling_foreign_key",
					Message: fmt.Sprintf("foreign key %s on %s references unknown table %s", fk.Name, table.Name, fk.ReferencedTable),
					Model:   owner.Name,
				})
				continue
			}

			isOneToOne := isColumnSetCovered(uniqueColumnSets, fk.ConstrainedColumns)
			relationName := dml.RelationName(owner.Name, target.Name)

			qualifier := ""
			if countByTarget[fk.ReferencedTable] > 1 {
				qualifier = relationQualifier(fk.ConstrainedColumns)
				relationName += "_" + qualifier
			}

			ownerArity := dml.FieldRequired
			if isOneToOne {
				ownerArity = dml.FieldOptional
			}

			ownerFieldName := decapitalize(target.Name)
			if qualifier != "" {
				ownerFieldName += "_" + qualifier
			}
			ownerField := dml.RelationField{
				Name:             ownerFieldName,
				TargetModel:      target.Name,
				Arity:            ownerArity,
				RelationName:     relationName,
				ForeignKeyFields: sanitizeAll(fk.ConstrainedColumns),
				References:       sanitizeAll(fk.ReferencedColumns),
			}
			owner.RelationFields = append(owner.RelationFields, ownerField)

			backArity := dml.FieldList
			if isOneToOne {
				backArity = dml.FieldOptional
			}
			backFieldName := decapitalize(owner.Name) + "List"
			if isOneToOne {
				backFieldName = decapitalize(owner.Name)
			}
			if qualifier != "" {
				backFieldName += "_" + qualifier
			}
			backField := dml.RelationField{
				Name:         backFieldName,
				TargetModel:  owner.Name,
				Arity:        backArity,
				RelationName: relationName,
			}
			target.RelationFields = append(target.RelationFields, backField)
		}
	}
}

// relationQualifier derives a short, field-name-safe qualifier from a
// foreign key's constrained columns, stripping a trailing "_id"/"Id" so
// "user_id" disambiguates to "user" rather than "userId".
func relationQualifier(columns []string) string {
	joined := strings.Join(columns, "_")
	lower := strings.ToLower(joined)
	switch {
	case strings.HasSuffix(lower, "_id"):
		joined = joined[:len(joined)-3]
	case strings.HasSuffix(lower, "id") && len(joined) > 2:
		joined = joined[:len(joined)-2]
	}
	if joined == "" {
		joined = strings.Join(columns, "_")
	}
	return sanitize(joined)
}

func tableKey(namespace, name string) string { return namespace + "." + name }

func uniqueColumnSetsOf(table host.DescribedTable) [][]string {
	var sets [][]string
	for _, idx := range table.Indexes {
		if idx.Unique || idx.IsPrimary {
			cols := append([]string(nil), idx.ColumnName...)
			sort.Strings(cols)
			sets = append(sets, cols)
		}
	}
	return sets
}

func isColumnSetCovered(sets [][]string, columns []string) bool {
	want := append([]string(nil), columns...)
	sort.Strings(want)
	for _, s := range sets {
		if equalStrings(s, want) {
			return true
		}
	}
	return false
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sanitizeAll(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = sanitize(n)
	}
	return out
}

func decapitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
