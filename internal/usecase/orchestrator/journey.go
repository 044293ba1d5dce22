package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"browser-journey/internal/domain/entity"
	"browser-journey/internal/usecase/resolver"
)

// Step is one unit of a journey. Action performs it through the session;
// Postcondition, when set, must hold within Timeout before the next step.
type Step struct {
	Name          string
	Kind          entity.StepKind
	Action        func(ctx context.Context, s *Session) error
	Postcondition resolver.Condition

	// Soft steps record a diagnostic instead of failing the journey.
	Soft bool
	// OpensContext steps are expected to open a new tab or window, which
	// becomes the active context once it appears.
	OpensContext bool
	Timeout      time.Duration
}

type Journey struct {
	Name        string
	Description string
	Steps       []Step
}

var ErrInvalidJourney = errors.New("invalid journey")

// Validate rejects step combinations the state machine cannot express.
func (j Journey) Validate() error {
	if j.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidJourney)
	}
	if len(j.Steps) == 0 {
		return fmt.Errorf("%w: %s has no steps", ErrInvalidJourney, j.Name)
	}
	if j.Steps[0].Kind != entity.StepNavigate {
		return fmt.Errorf("%w: %s must start with a navigate step", ErrInvalidJourney, j.Name)
	}

	for i, s := range j.Steps {
		switch {
		case s.Name == "":
			return fmt.Errorf("%w: %s step %d has no name", ErrInvalidJourney, j.Name, i)
		case s.Action == nil && s.Postcondition == nil:
			return fmt.Errorf("%w: step %q does nothing", ErrInvalidJourney, s.Name)
		case s.Soft && s.Kind == entity.StepNavigate:
			return fmt.Errorf("%w: navigate step %q cannot be soft", ErrInvalidJourney, s.Name)
		case s.OpensContext && s.Kind != entity.StepInteract:
			return fmt.Errorf("%w: only interact steps may open a context (%q)", ErrInvalidJourney, s.Name)
		case s.OpensContext && s.Soft:
			return fmt.Errorf("%w: step %q opens a context and cannot be soft", ErrInvalidJourney, s.Name)
		}
	}
	return nil
}
