package shell

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/conn-castle/release-train/internal/messages"
)

// Confirmer asks the operator a yes/no question.
type Confirmer interface {
	Confirm(title string) (bool, error)
}

// IsInteractive reports whether stdin and stdout are both terminals.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

var runFormFunc = func(form *huh.Form) error { return form.Run() }

// HuhConfirmer implements Confirmer with a huh confirm form.
type HuhConfirmer struct {
	isTerminal func() bool
}

// NewHuhConfirmer creates a HuhConfirmer using the default terminal check.
func NewHuhConfirmer() *HuhConfirmer {
	return &HuhConfirmer{isTerminal: IsInteractive}
}

// Confirm prompts for a yes/no answer. It fails when no terminal is
// attached so scripted runs must pass an explicit no-confirm flag instead
// of hanging.
func (c *HuhConfirmer) Confirm(title string) (bool, error) {
	checker := c.isTerminal
	if checker == nil {
		checker = IsInteractive
	}
	if !checker() {
		return false, fmt.Errorf(messages.ShellConfirmRequiresTerminal)
	}

	confirmed := false
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(title).
			Affirmative("Yes").
			Negative("No").
			Value(&confirmed),
	))
	if err := runFormFunc(form); err != nil {
		return false, fmt.Errorf(messages.ShellConfirmFailedFmt, err)
	}
	return confirmed, nil
}
