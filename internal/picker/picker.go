// Package picker presents a terminal selection dialog for the interactive
// edit flow.
package picker

import (
	"errors"

	"github.com/charmbracelet/huh"
)

// Pick shows a selection dialog over names and returns the chosen index.
// The second return value reports whether a selection was made; a cancelled
// dialog (or an empty list) is not an error.
func Pick(title string, names []string) (int, bool, error) {
	if len(names) == 0 {
		return 0, false, nil
	}

	options := make([]huh.Option[int], len(names))
	for i, name := range names {
		options[i] = huh.NewOption(name, i)
	}

	var selected int

	err := huh.NewSelect[int]().
		Title(title).
		Options(options...).
		Value(&selected).
		Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return 0, false, nil
		}

		return 0, false, err
	}

	return selected, true, nil
}
