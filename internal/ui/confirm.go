package ui

import (
	"github.com/charmbracelet/huh"
)

// Confirm asks a yes/no question on the terminal. A cancelled form counts as "no".
func Confirm(title, description string) bool {
	var proceed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Overwrite").
				Negative("Keep it").
				Value(&proceed),
		),
	)
	if err := form.Run(); err != nil {
		return false
	}
	return proceed
}
