package ddlrender

import (
	"testing"

	"github.com/lockplane/schemacore/dialect"
	"github.com/lockplane/schemacore/differ"
	"github.com/lockplane/schemacore/sqlir"
)

func TestClassifyLockImpact_CreateTableIsAccessShare(t *testing.T) {
	ad := dialect.New(dialect.Postgres)
	step := differ.MigrationStep{Kind: differ.StepCreateTable, Table: sqlir.Table{Name: "widgets"}}
	impact := ClassifyLockImpact(step, ad)
	if impact.LockMode != LockAccessShare {
		t.Errorf("expected ACCESS SHARE for CREATE TABLE, got %v", impact.LockMode)
	}
	if impact.Impact != ImpactNone {
		t.Errorf("expected no impact for CREATE TABLE, got %v", impact.Impact)
	}
}

func TestClassifyLockImpact_AlterTableIsAccessExclusive(t *testing.T) {
	ad := dialect.New(dialect.Postgres)
	step := differ.MigrationStep{Kind: differ.StepAlterTable, TableName: "widgets"}
	impact := ClassifyLockImpact(step, ad)
	if impact.LockMode != LockAccessExclusive {
		t.Errorf("expected ACCESS EXCLUSIVE for ALTER TABLE, got %v", impact.LockMode)
	}
	if !impact.BlocksReads || !impact.BlocksWrites {
		t.Errorf("expected ACCESS EXCLUSIVE to block both reads and writes")
	}
	if impact.Impact != ImpactHigh {
		t.Errorf("expected high impact for ALTER TABLE, got %v", impact.Impact)
	}
}

func TestClassifyLockImpact_VitessHasNoTableWideLock(t *testing.T) {
	ad := dialect.New(dialect.Vitess)
	step := differ.MigrationStep{Kind: differ.StepAlterTable, TableName: "widgets"}
	impact := ClassifyLockImpact(step, ad)
	if impact.LockMode != LockRowExclusive {
		t.Errorf("expected ROW EXCLUSIVE on vitess (NoTableLocks), got %v", impact.LockMode)
	}
}
