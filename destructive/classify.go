// Package destructive classifies each migration step by how much data risk
// it carries, per spec §4.5: Safe, Warning, or Unexecutable. Classification
// is pure where the step's effect is fully determined by its shape
// (PureCheck); a handful of cases need to probe the live database (row
// counts, whether a column holds any NULL) via the host.Host port,
// handled by Execute in probe.go.
package destructive

import (
	"github.com/lockplane/schemacore/dialect"
	"github.com/lockplane/schemacore/differ"
	"github.com/lockplane/schemacore/sqlir"
)

// Severity is the three-valued outcome of classifying a step.
type Severity int

const (
	Safe Severity = iota
	Warning
	Unexecutable
)

func (s Severity) String() string {
	switch s {
	case Safe:
		return "safe"
	case Warning:
		return "warning"
	case Unexecutable:
		return "unexecutable"
	default:
		return "unknown"
	}
}

// Finding is one classified concern about a single step. A step can carry
// more than one Finding (e.g. an AlterTable with both a dropped column and
// a risky type change).
type Finding struct {
	Severity  Severity
	TableName string
	Detail    string
	// NeedsProbe is true when Severity here is provisional and Execute
	// must run a live query to resolve it (e.g. "does this column hold any
	// NULL today", which decides whether making it required is actually safe).
	NeedsProbe bool
	ProbeKind  ProbeKind
	ProbeTable string
	ProbeColumn string
}

// ProbeKind distinguishes the live queries Execute knows how to run.
type ProbeKind int

const (
	ProbeNone ProbeKind = iota
	ProbeColumnHasNull
	ProbeTableRowCount
)

// PureCheck classifies every step that needs no database access, returning
// one Finding per concern. Steps with no destructive concern produce no
// Finding at all.
func PureCheck(steps []differ.MigrationStep, ad dialect.Adapter) []Finding {
	var findings []Finding
	for _, step := range steps {
		findings = append(findings, checkStep(step, ad)...)
	}
	return findings
}

func checkStep(step differ.MigrationStep, ad dialect.Adapter) []Finding {
	switch step.Kind {
	case differ.StepDropTable:
		return []Finding{{Severity: Warning, TableName: step.Table.Name, Detail: "drops table " + step.Table.Name + " and all of its data"}}
	case differ.StepAlterTable:
		return checkAlterTable(step, ad)
	case differ.StepRedefineTables:
		return checkRedefineTables(step)
	default:
		return nil
	}
}

func checkAlterTable(step differ.MigrationStep, ad dialect.Adapter) []Finding {
	var findings []Finding
	for _, change := range step.Changes {
		switch change.Kind {
		case differ.TCDropColumn:
			findings = append(findings, Finding{
				Severity: Warning, TableName: step.TableName,
				Detail: "drops column " + change.Column.Name,
			})
		case differ.TCAddColumn:
			if change.Column.Arity == sqlir.Required && change.Column.Default.Kind == sqlir.DefaultNone {
				findings = append(findings, Finding{
					Severity:   Unexecutable, TableName: step.TableName,
					Detail:     "adds required column " + change.Column.Name + " with no default; existing rows have no value to use",
					NeedsProbe: true, ProbeKind: ProbeTableRowCount, ProbeTable: step.TableName,
				})
			}
		case differ.TCAlterColumn:
			findings = append(findings, checkAlterColumn(step.TableName, change, ad)...)
		}
	}
	return findings
}

func checkAlterColumn(tableName string, change differ.TableChange, ad dialect.Adapter) []Finding {
	var findings []Finding

	if change.Changes&differ.ChangeArity != 0 {
		becameRequired := change.PrevColumn.Arity != sqlir.Required && change.NextColumn.Arity == sqlir.Required
		becameList := change.NextColumn.Arity == sqlir.List && change.PrevColumn.Arity != sqlir.List
		switch {
		case becameList:
			findings = append(findings, Finding{
				Severity: Unexecutable, TableName: tableName,
				Detail: "column " + change.NextColumn.Name + " changes from scalar to list arity; no dialect modeled here can cast existing scalar values into a list in place",
			})
		case becameRequired:
			findings = append(findings, Finding{
				Severity: Warning, TableName: tableName,
				Detail: "column " + change.NextColumn.Name + " becomes required", NeedsProbe: true,
				ProbeKind: ProbeColumnHasNull, ProbeTable: tableName, ProbeColumn: change.NextColumn.Name,
			})
		}
	}

	if change.Changes&differ.ChangeTypeChanged != 0 {
		switch change.TypeChange.Class {
		case dialect.NotCastable:
			findings = append(findings, notCastableFinding(tableName, change))
		case dialect.RiskyCast:
			findings = append(findings, Finding{
				Severity: Warning, TableName: tableName,
				Detail: "column " + change.NextColumn.Name + " changes type with a cast that may fail or truncate data on some rows",
			})
		}
	}

	if ad.ShouldRecreateTableForChange(change.TypeChange.Class) && change.TypeChange.Classified {
		findings = append(findings, Finding{
			Severity: Warning, TableName: tableName,
			Detail: "column " + change.NextColumn.Name + " requires a full table rewrite on this dialect",
		})
	}

	return findings
}

// notCastableFinding handles a type change with no cast path: the renderer
// converts it to a drop-and-recreate (ddlrender), which by itself only
// risks the column's own data (Warning). But if the recreated column is
// required with no default, the DROP/ADD pair can't be filled back in for
// existing rows, so that case needs the same row-count probe as adding a
// required column with no default and is Unexecutable only when the table
// isn't empty.
func notCastableFinding(tableName string, change differ.TableChange) Finding {
	f := Finding{
		Severity: Warning, TableName: tableName,
		Detail: "column " + change.NextColumn.Name + " changes to a type with no cast path; converted to drop-and-recreate, which discards the column's existing data",
	}
	if change.NextColumn.Arity == sqlir.Required && change.NextColumn.Default.Kind == sqlir.DefaultNone {
		f.Severity = Unexecutable
		f.Detail += "; the recreated column is required with no default"
		f.NeedsProbe = true
		f.ProbeKind = ProbeTableRowCount
		f.ProbeTable = tableName
	}
	return f
}

func checkRedefineTables(step differ.MigrationStep) []Finding {
	var findings []Finding
	for _, r := range step.Redefines {
		for _, cc := range r.CopyColumns {
			if cc.NewlyRequired && cc.DefaultForCoalesce == "" {
				findings = append(findings, Finding{
					Severity: Unexecutable, TableName: r.TableName,
					Detail: "column " + cc.Name + " becomes required during table redefinition with no default to fill existing rows",
				})
			}
		}
		findings = append(findings, Finding{
			Severity: Warning, TableName: r.TableName,
			Detail: "table " + r.TableName + " is rebuilt in place (copy, drop, rename); briefly unavailable for writes",
		})
	}
	return findings
}
