// Package differ computes an ordered sequence of migration steps that
// transform one sqlir.Schema into another, per spec §4.2.
package differ

import (
	"github.com/lockplane/schemacore/dialect"
	"github.com/lockplane/schemacore/sqlir"
)

// StepKind tags the MigrationStep union. All variants from spec §4.2 are
// enumerated here in one place, per the redesign note in §9: a closed
// tagged union dispatched by a switch instead of a dynamic downcast. A
// kind that ddlrender's switch does not handle renders to no statements.
type StepKind int

const (
	StepCreateSchema StepKind = iota
	StepCreateEnum
	StepDropEnum
	StepAlterEnum
	StepCreateTable
	StepDropTable
	StepAlterTable
	StepCreateIndex
	StepDropIndex
	StepRenameIndex
	StepRedefineIndex
	StepAddForeignKey
	StepDropForeignKey
	StepRenameForeignKey
	StepAlterPrimaryKey
	StepCreateSequence
	StepAlterSequence
	StepDropSequence
	StepRedefineTables
	StepCreateView
	StepAlterView
	StepDropView
	StepCreateUserDefinedType
	StepAlterUserDefinedType
	StepDropUserDefinedType
	StepCreateExtension
	StepAlterExtension
	StepDropExtension
)

// ColumnChangeBit is one bit of the AlterColumn.Changes bitset.
type ColumnChangeBit int

const (
	ChangeArity ColumnChangeBit = 1 << iota
	ChangeDefault
	ChangeTypeChanged
	ChangeAutoincrement
)

// TableChangeKind tags the TableChange union nested inside AlterTable.
type TableChangeKind int

const (
	TCAddColumn TableChangeKind = iota
	TCDropColumn
	TCAlterColumn
	TCDropPrimaryKey
	TCAddPrimaryKey
	TCRenamePrimaryKey
)

// TableChange is one element of AlterTable.Changes.
type TableChange struct {
	Kind TableChangeKind

	// AddColumn / DropColumn
	Column sqlir.Column

	// AlterColumn
	PrevColumn   sqlir.Column
	NextColumn   sqlir.Column
	Changes      ColumnChangeBit
	TypeChange   TypeChangeResult

	// AddPrimaryKey / DropPrimaryKey / RenamePrimaryKey
	PrevPrimaryKey sqlir.Index
	NextPrimaryKey sqlir.Index
}

// TypeChangeResult carries the dialect's classification alongside the
// change itself so the destructive checker and renderer don't need to
// recompute it.
type TypeChangeResult struct {
	Classified bool // false when Changes has no ChangeTypeChanged bit set
	Class      dialect.TypeChangeClass
}

// MigrationStep is the tagged union produced by Diff. Exactly one of the
// payload fields below is meaningful, selected by Kind.
type MigrationStep struct {
	Kind StepKind

	// Identity/description fields used across several kinds.
	NamespaceName string
	TableName     string
	Table         sqlir.Table

	// CreateTable: the table's columns and indexes resolved out of the
	// arena, since sqlir.Table itself only carries the IDs and ddlrender
	// has no schema reference to resolve them from. Diff leaves
	// TableForeignKeys empty; a new table's foreign keys are emitted as
	// separate AddForeignKey steps.
	TableColumns     []sqlir.Column
	TableIndexes     []sqlir.Index
	TableForeignKeys []sqlir.ForeignKey

	// CreateEnum / DropEnum / AlterEnum
	Enum           sqlir.Enum
	AddedVariants  []string
	RemovedVariants []string

	// AlterTable
	Changes []TableChange

	// CreateIndex / DropIndex / RenameIndex / RedefineIndex
	Index    sqlir.Index
	OldIndex sqlir.Index // previous name/definition, for Rename/Redefine

	// AddForeignKey / DropForeignKey / RenameForeignKey
	ForeignKey    sqlir.ForeignKey
	OldForeignKey sqlir.ForeignKey

	// AlterPrimaryKey
	PrevPrimaryKey sqlir.Index
	NextPrimaryKey sqlir.Index

	// AlterSequence / DropSequence
	Sequence sqlir.Sequence

	// RedefineTables
	Redefines []TableRedefinition

	// DropView / DropUserDefinedType
	View View
	UDT  sqlir.UserDefinedType

	// CreateExtension / AlterExtension / DropExtension
	Extension sqlir.Extension
}

// View is a thin alias kept local to differ so steps.go doesn't need to
// import sqlir.View under a different name; it is structurally identical.
type View = sqlir.View

// TableRedefinition is the payload of a single table's entry inside a
// StepRedefineTables step — see redefine.go for the eight-statement
// protocol this describes (spec §4.3).
type TableRedefinition struct {
	TableName      string
	PrevTable      sqlir.Table
	NextTable      sqlir.Table
	PrevSchema     *sqlir.Schema
	NextSchema     *sqlir.Schema
	CopyColumns    []ColumnCopy
	RecreateIndexes []sqlir.Index
}

// ColumnCopy is one column in the deterministic copy-step projection of
// spec §4.3: "the intersection of previous and next columns, in
// next-declaration order, followed by columns newly required-with-default
// in next-declaration order."
type ColumnCopy struct {
	Name             string
	PrevName         string // equals Name unless renamed; RedefineTables never infers renames itself
	NewlyRequired    bool   // true when this column is newly required, whether or not it has a default
	DefaultForCoalesce string // SQL literal/expression used in coalesce(old, <default>) when NewlyRequired; empty when there is no usable default
}

// Description returns a short human-readable summary of the step, used as
// the comment line preceding each rendered statement (spec §6 "Rendered
// DDL").
func (s MigrationStep) Description() string {
	switch s.Kind {
	case StepCreateSchema:
		return "Create namespace " + s.NamespaceName
	case StepCreateEnum:
		return "Create enum " + s.Enum.Name
	case StepDropEnum:
		return "Drop enum " + s.Enum.Name
	case StepAlterEnum:
		return "Alter enum " + s.Enum.Name
	case StepCreateTable:
		return "Create table " + s.Table.Name
	case StepDropTable:
		return "Drop table " + s.Table.Name
	case StepAlterTable:
		return "Alter table " + s.TableName
	case StepCreateIndex:
		return "Create index " + s.Index.Name + " on " + s.TableName
	case StepDropIndex:
		return "Drop index " + s.Index.Name
	case StepRenameIndex:
		return "Rename index " + s.OldIndex.Name + " to " + s.Index.Name
	case StepRedefineIndex:
		return "Redefine index " + s.Index.Name
	case StepAddForeignKey:
		return "Add foreign key " + s.ForeignKey.Name + " on " + s.TableName
	case StepDropForeignKey:
		return "Drop foreign key " + s.ForeignKey.Name + " on " + s.TableName
	case StepRenameForeignKey:
		return "Rename foreign key " + s.OldForeignKey.Name + " to " + s.ForeignKey.Name
	case StepAlterPrimaryKey:
		return "Alter primary key on " + s.TableName
	case StepCreateSequence:
		return "Create sequence " + s.Sequence.Name
	case StepAlterSequence:
		return "Alter sequence " + s.Sequence.Name
	case StepDropSequence:
		return "Drop sequence " + s.Sequence.Name
	case StepRedefineTables:
		names := make([]string, len(s.Redefines))
		for i, r := range s.Redefines {
			names[i] = r.TableName
		}
		return "Redefine table(s) " + join(names)
	case StepCreateView:
		return "Create view " + s.View.Name
	case StepAlterView:
		return "Alter view " + s.View.Name
	case StepDropView:
		return "Drop view " + s.View.Name
	case StepCreateUserDefinedType:
		return "Create type " + s.UDT.Name
	case StepAlterUserDefinedType:
		return "Alter type " + s.UDT.Name
	case StepDropUserDefinedType:
		return "Drop type " + s.UDT.Name
	case StepCreateExtension:
		return "Create extension " + s.Extension.Name
	case StepAlterExtension:
		return "Alter extension " + s.Extension.Name
	case StepDropExtension:
		return "Drop extension " + s.Extension.Name
	default:
		return "Unknown step"
	}
}

func join(ss []string) string {
	out := ""
	for i, s := range ss {
		if i > 0 {
			out += ", "
		}
		out += s
	}
	return out
}
