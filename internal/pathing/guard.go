package pathing

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
)

// ErrOverwriteDeclined is returned when the user refuses to overwrite
// existing output files.
var ErrOverwriteDeclined = errors.New("overwrite declined by user")

// Suspender pauses live progress output while fn talks to the user.
type Suspender interface {
	SuspendFor(fn func() error) error
}

// Confirmer asks whether existing files may be overwritten.
type Confirmer interface {
	ConfirmOverwrite(existing []string) (bool, error)
}

// Existing returns the subset of paths that already exist, in order.
func Existing(paths []string) ([]string, error) {
	existing := []string{}
	for _, p := range paths {
		_, err := os.Stat(p)
		switch {
		case err == nil:
			existing = append(existing, p)
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("check %s: %w", p, err)
		}
	}
	return existing, nil
}

// CheckOverwrite stops the run unless every path is free, overwrite is
// set, or the user agrees to replace the existing files.
func CheckOverwrite(paths []string, overwrite bool, s Suspender, c Confirmer) error {
	if overwrite {
		return nil
	}
	existing, err := Existing(paths)
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		return nil
	}

	var ok bool
	err = s.SuspendFor(func() error {
		var askErr error
		ok, askErr = c.ConfirmOverwrite(existing)
		return askErr
	})
	if err != nil {
		return fmt.Errorf("overwrite prompt: %w", err)
	}
	if !ok {
		return ErrOverwriteDeclined
	}
	return nil
}

// StaticConfirmer always gives the same answer.
type StaticConfirmer bool

// ConfirmOverwrite implements Confirmer.
func (s StaticConfirmer) ConfirmOverwrite([]string) (bool, error) {
	return bool(s), nil
}

// maxListed caps how many paths the prompt shows.
const maxListed = 10

// HuhConfirmer prompts on the terminal with a huh confirm form.
type HuhConfirmer struct {
	// Accessible switches huh to plain line prompts, for non-TTY stdin.
	Accessible bool
}

// ConfirmOverwrite implements Confirmer.
func (h HuhConfirmer) ConfirmOverwrite(existing []string) (bool, error) {
	listed := existing
	if len(listed) > maxListed {
		listed = listed[:maxListed]
	}
	desc := strings.Join(listed, "\n")
	if extra := len(existing) - len(listed); extra > 0 {
		desc += fmt.Sprintf("\n... and %d more", extra)
	}

	var confirmed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("%d output file(s) already exist. Overwrite?", len(existing))).
				Description(desc).
				Affirmative("Overwrite").
				Negative("Abort").
				Value(&confirmed),
		),
	).WithAccessible(h.Accessible)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return confirmed, nil
}
