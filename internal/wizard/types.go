package wizard

import (
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/lockplane/schemacore/ddlrender"
	"github.com/lockplane/schemacore/destructive"
)

// Item pairs a destructive finding with the lock impact of the step that
// produced it, so the review screen can show both at once.
type Item struct {
	Finding destructive.Finding
	Impact  *ddlrender.LockImpact
}

// ApplyFunc performs the migration once the operator has confirmed every
// finding. It is supplied by the caller (corectl's apply command), not the
// wizard itself, which knows nothing about hosts or connection strings.
type ApplyFunc func() error

// Model holds the Bubble Tea state for the confirmation wizard.
type Model struct {
	items  []Item
	cursor int

	// acknowledged tracks, per item index, whether the operator has
	// explicitly accepted a Warning finding. Unexecutable findings can
	// never be acknowledged; they block the wizard outright.
	acknowledged map[int]bool

	confirmInput textinput.Model
	apply        ApplyFunc

	confirming bool
	applying   bool
	done       bool
	cancelled  bool
	err        error

	width, height int
}

// Result is what Run returns to the caller.
type Result struct {
	// Applied is true when the operator confirmed and ApplyFunc ran
	// without error.
	Applied bool
	// Cancelled is true when the operator backed out (Esc/Ctrl-C) before
	// confirming.
	Cancelled bool
	// Err holds ApplyFunc's error, if it returned one.
	Err error
}
