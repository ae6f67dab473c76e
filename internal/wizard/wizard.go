// Package wizard implements the interactive destructive-change confirmation
// flow: before corectl applies a migration script containing a Warning or
// Unexecutable finding, an operator reviews each one, acknowledges the
// ones that can be accepted, and types a confirmation phrase before the
// apply actually runs.
package wizard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lockplane/schemacore/ddlrender"
	"github.com/lockplane/schemacore/destructive"
)

const confirmPhrase = "confirm"

// New builds a wizard over the given findings. apply is called once,
// only after the operator types the confirmation phrase.
func New(findings []destructive.Finding, apply ApplyFunc) *Model {
	items := make([]Item, len(findings))
	for i, f := range findings {
		items[i] = Item{Finding: f}
	}
	return newModel(items, apply)
}

// NewWithImpacts is like New but additionally attaches each finding's
// corresponding lock impact (matched by TableName) so the review screen
// can show what lock a destructive step will hold, not just why it's
// destructive.
func NewWithImpacts(findings []destructive.Finding, impactsByTable map[string]ddlrender.LockImpact, apply ApplyFunc) *Model {
	items := make([]Item, len(findings))
	for i, f := range findings {
		items[i] = Item{Finding: f}
		if imp, ok := impactsByTable[f.TableName]; ok {
			impCopy := imp
			items[i].Impact = &impCopy
		}
	}
	return newModel(items, apply)
}

func newModel(items []Item, apply ApplyFunc) *Model {
	input := textinput.New()
	input.Placeholder = confirmPhrase
	input.Prompt = "→ "
	input.PromptStyle = focusedPromptStyle
	input.Width = 30

	return &Model{
		items:        items,
		acknowledged: make(map[int]bool),
		confirmInput: input,
		apply:        apply,
	}
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case applyResultMsg:
		m.applying = false
		m.err = msg.err
		m.done = msg.err == nil
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancelled = true
			return m, tea.Quit
		case "esc":
			if m.confirming {
				m.confirming = false
				return m, nil
			}
			m.cancelled = true
			return m, tea.Quit
		}

		if m.confirming {
			return m.updateConfirm(msg)
		}
		return m.updateReview(msg)
	}

	return m, nil
}

func (m *Model) hasBlocker() bool {
	for _, it := range m.items {
		if it.Finding.Severity == destructive.Unexecutable {
			return true
		}
	}
	return false
}

func (m *Model) allAcknowledged() bool {
	for i, it := range m.items {
		if it.Finding.Severity == destructive.Warning && !m.acknowledged[i] {
			return false
		}
	}
	return true
}

func (m *Model) updateReview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case " ", "space", "enter":
		if m.hasBlocker() {
			return m, nil
		}
		if len(m.items) > 0 && m.items[m.cursor].Finding.Severity == destructive.Warning {
			m.acknowledged[m.cursor] = !m.acknowledged[m.cursor]
		}
	case "c":
		if !m.hasBlocker() && m.allAcknowledged() {
			m.confirming = true
			m.confirmInput.Focus()
		}
	}
	return m, nil
}

func (m *Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "enter" {
		if strings.TrimSpace(m.confirmInput.Value()) == confirmPhrase {
			m.confirming = false
			m.applying = true
			return m, m.runApply()
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.confirmInput, cmd = m.confirmInput.Update(msg)
	return m, cmd
}

type applyResultMsg struct{ err error }

func (m *Model) runApply() tea.Cmd {
	apply := m.apply
	return func() tea.Msg {
		if apply == nil {
			return applyResultMsg{}
		}
		return applyResultMsg{err: apply()}
	}
}

func (m *Model) View() string {
	if m.cancelled {
		return labelStyle.Render("apply cancelled, nothing was run")
	}

	switch {
	case m.applying:
		return borderStyle.Render(infoStyle.Render("applying migration..."))
	case m.err != nil:
		return borderStyle.Render(renderError(m.err.Error()))
	case m.done:
		return borderStyle.Render(renderSuccess("migration applied"))
	case m.confirming:
		return m.renderConfirm()
	default:
		return m.renderReview()
	}
}

func (m *Model) renderReview() string {
	var b strings.Builder
	b.WriteString(renderHeader("Destructive change review"))
	b.WriteString("\n\n")

	if len(m.items) == 0 {
		b.WriteString(renderSuccess("no destructive findings"))
		b.WriteString("\n\n")
		b.WriteString(renderStatusBar("Esc: quit"))
		return borderStyle.Render(b.String())
	}

	for i, it := range m.items {
		prefix := "  "
		if i == m.cursor {
			prefix = selectedStyle.Render(iconArrow) + " "
		}
		var mark string
		switch {
		case it.Finding.Severity == destructive.Unexecutable:
			mark = errorStyle.Render(iconBlocked)
		case m.acknowledged[i]:
			mark = successStyle.Render(iconAck)
		default:
			mark = unselectedStyle.Render(iconPending)
		}
		line := fmt.Sprintf("%s%s [%s] %s: %s", prefix, mark, it.Finding.Severity, it.Finding.TableName, it.Finding.Detail)
		if it.Impact != nil {
			line += fmt.Sprintf(" (%s)", it.Impact.LockMode)
		}
		switch it.Finding.Severity {
		case destructive.Unexecutable:
			b.WriteString(errorStyle.Render(line))
		case destructive.Warning:
			b.WriteString(warningStyle.Render(line))
		default:
			b.WriteString(line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case m.hasBlocker():
		b.WriteString(renderError("at least one finding is unexecutable; this script cannot be applied as-is"))
	case m.allAcknowledged():
		b.WriteString(renderSuccess("all warnings acknowledged, press 'c' to confirm"))
	default:
		b.WriteString(renderWarning("space/enter: acknowledge the selected warning"))
	}
	b.WriteString("\n\n")
	b.WriteString(renderStatusBar("↑/↓: navigate  space: acknowledge  c: continue  Esc: cancel"))

	return borderStyle.Render(b.String())
}

func (m *Model) renderConfirm() string {
	var b strings.Builder
	b.WriteString(renderHeader("Confirm"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Type %q to apply this migration.\n\n", confirmPhrase))
	b.WriteString(m.confirmInput.View())
	b.WriteString("\n\n")
	b.WriteString(renderStatusBar("Enter: submit  Esc: back to review"))
	return borderStyle.Render(b.String())
}

// Run drives the wizard to completion and returns its outcome.
func Run(findings []destructive.Finding, apply ApplyFunc) (Result, error) {
	return run(New(findings, apply))
}

// RunWithImpacts is like Run but attaches lock impacts to the review screen.
func RunWithImpacts(findings []destructive.Finding, impactsByTable map[string]ddlrender.LockImpact, apply ApplyFunc) (Result, error) {
	return run(NewWithImpacts(findings, impactsByTable, apply))
}

func run(m *Model) (Result, error) {
	p := tea.NewProgram(m)
	final, err := p.Run()
	if err != nil {
		return Result{}, err
	}
	fm := final.(*Model)
	return Result{
		Applied:   !fm.cancelled && fm.err == nil && fm.done,
		Cancelled: fm.cancelled,
		Err:       fm.err,
	}, nil
}
