package ddlrender

import (
	"github.com/lockplane/schemacore/dialect"
	"github.com/lockplane/schemacore/differ"
)

// LockMode mirrors the Postgres lock hierarchy the teacher's internal/
// locks package classifies rendered SQL text against. Here it is derived
// structurally from the step's StepKind/TableChange union instead of by
// pattern-matching the rendered SQL string, since this module already has
// the structural step available at render time.
type LockMode int

const (
	LockAccessShare LockMode = iota
	LockRowExclusive
	LockShareUpdateExclusive
	LockShare
	LockAccessExclusive
)

func (l LockMode) String() string {
	switch l {
	case LockAccessShare:
		return "ACCESS SHARE"
	case LockRowExclusive:
		return "ROW EXCLUSIVE"
	case LockShareUpdateExclusive:
		return "SHARE UPDATE EXCLUSIVE"
	case LockShare:
		return "SHARE"
	case LockAccessExclusive:
		return "ACCESS EXCLUSIVE"
	default:
		return "UNKNOWN"
	}
}

// ImpactLevel categorizes how disruptive a lock mode is to concurrent
// traffic, same four buckets as the teacher's ImpactLevel.
type ImpactLevel int

const (
	ImpactNone ImpactLevel = iota
	ImpactLow
	ImpactMedium
	ImpactHigh
)

func (l LockMode) BlocksReads() bool  { return l == LockAccessExclusive }
func (l LockMode) BlocksWrites() bool { return l >= LockShare }

func (l LockMode) ImpactLevel() ImpactLevel {
	switch {
	case l == LockAccessExclusive:
		return ImpactHigh
	case l == LockShare:
		return ImpactMedium
	case l == LockShareUpdateExclusive:
		return ImpactLow
	default:
		return ImpactNone
	}
}

// LockImpact is one step's informational lock annotation.
type LockImpact struct {
	Operation    string
	LockMode     LockMode
	BlocksReads  bool
	BlocksWrites bool
	Impact       ImpactLevel
}

// ClassifyLockImpact returns the lock impact of a single migration step,
// letting a caller (the CLI wizard, CheckDestructive's report) surface it
// without re-parsing rendered SQL.
func ClassifyLockImpact(step differ.MigrationStep, ad dialect.Adapter) LockImpact {
	mode := classifyLockMode(step, ad)
	return LockImpact{
		Operation:    step.Description(),
		LockMode:     mode,
		BlocksReads:  mode.BlocksReads(),
		BlocksWrites: mode.BlocksWrites(),
		Impact:       mode.ImpactLevel(),
	}
}

func classifyLockMode(step differ.MigrationStep, ad dialect.Adapter) LockMode {
	if ad.Circumstances.Has(dialect.NoTableLocks) {
		// Vitess/vschema-routed DDL doesn't hold a table-wide lock the way
		// a single Postgres/MySQL instance does.
		return LockRowExclusive
	}

	switch step.Kind {
	case differ.StepCreateSchema, differ.StepCreateEnum, differ.StepCreateSequence,
		differ.StepCreateView, differ.StepCreateUserDefinedType, differ.StepCreateExtension,
		differ.StepCreateTable, differ.StepAlterSequence:
		return LockAccessShare

	case differ.StepCreateIndex:
		return LockShare

	case differ.StepAlterTable, differ.StepDropTable, differ.StepDropIndex,
		differ.StepRenameIndex, differ.StepRedefineIndex, differ.StepAddForeignKey,
		differ.StepDropForeignKey, differ.StepRenameForeignKey, differ.StepAlterPrimaryKey,
		differ.StepRedefineTables, differ.StepDropEnum, differ.StepAlterEnum,
		differ.StepDropSequence, differ.StepAlterView, differ.StepDropView,
		differ.StepAlterUserDefinedType, differ.StepDropUserDefinedType,
		differ.StepAlterExtension, differ.StepDropExtension:
		return LockAccessExclusive

	default:
		return LockAccessExclusive
	}
}
