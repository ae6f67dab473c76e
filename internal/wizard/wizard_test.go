package wizard

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lockplane/schemacore/destructive"
)

func TestModel_BlocksOnUnexecutableFinding(t *testing.T) {
	m := New([]destructive.Finding{
		{Severity: destructive.Unexecutable, TableName: "users", Detail: "column drop has no rollback"},
	}, func() error { return nil })

	if !m.hasBlocker() {
		t.Fatal("expected an unexecutable finding to block the wizard")
	}

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	mm := updated.(*Model)
	if mm.confirming {
		t.Error("pressing 'c' should not advance past an unexecutable finding")
	}
}

func TestModel_RequiresAcknowledgingWarningsBeforeConfirm(t *testing.T) {
	m := New([]destructive.Finding{
		{Severity: destructive.Warning, TableName: "users", Detail: "making email required may fail on existing nulls"},
	}, func() error { return nil })

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	if updated.(*Model).confirming {
		t.Fatal("should not be able to confirm before acknowledging the warning")
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace})
	updated, _ = updated.(*Model).Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	if !updated.(*Model).confirming {
		t.Fatal("expected confirm stage after acknowledging the only warning")
	}
}

func TestModel_ConfirmPhraseTriggersApply(t *testing.T) {
	applied := false
	m := New([]destructive.Finding{}, func() error {
		applied = true
		return nil
	})

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	mm := updated.(*Model)
	if !mm.confirming {
		t.Fatal("expected confirm stage with no findings to acknowledge")
	}

	for _, r := range confirmPhrase {
		updated, _ = mm.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		mm = updated.(*Model)
	}
	updated, cmd := mm.Update(tea.KeyMsg{Type: tea.KeyEnter})
	mm = updated.(*Model)
	if !mm.applying {
		t.Fatal("expected applying state after submitting the confirm phrase")
	}
	if cmd == nil {
		t.Fatal("expected a command to run the apply function")
	}
	msg := cmd()
	mm.Update(msg)
	if !applied {
		t.Error("expected ApplyFunc to have run")
	}
}

func TestModel_ApplyErrorSurfacesInModel(t *testing.T) {
	wantErr := errors.New("connection reset")
	m := New(nil, func() error { return wantErr })
	m.applying = true

	updated, _ := m.Update(applyResultMsg{err: wantErr})
	mm := updated.(*Model)
	if mm.err != wantErr {
		t.Errorf("expected err to be surfaced, got %v", mm.err)
	}
	if mm.done {
		t.Error("expected done=false when apply failed")
	}
}
