package tui

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/sadopc/timer/internal/store"
)

// ConfirmDelete asks whether e should be deleted.
func ConfirmDelete(e store.Entry) (bool, error) {
	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete entry '%s' (%s)?", e.Name, formatDuration(e.Duration()))).
				Affirmative("Delete").
				Negative("Keep").
				Value(&ok),
		),
	)
	if err := form.Run(); err != nil {
		return false, err
	}
	return ok, nil
}
