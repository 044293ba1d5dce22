package orchestrator

import (
	"fmt"

	"browser-journey/internal/domain/entity"
)

var transitions = map[entity.JourneyState][]entity.JourneyState{
	entity.StateIdle:        {entity.StateNavigating},
	entity.StateNavigating:  {entity.StateReady},
	entity.StateReady:       {entity.StateInteracting, entity.StateVerifying, entity.StateNavigating, entity.StateDone},
	entity.StateInteracting: {entity.StateInteracting, entity.StateReady, entity.StateVerifying, entity.StateRedirecting, entity.StateNavigating},
	entity.StateRedirecting: {entity.StateVerifying},
	entity.StateVerifying:   {entity.StateVerifying, entity.StateInteracting, entity.StateNavigating, entity.StateDone},
}

// CanTransition reports whether a journey may move from one state to another.
// Failed is reachable from every non-terminal state.
func CanTransition(from, to entity.JourneyState) bool {
	if from == entity.StateDone || from == entity.StateFailed {
		return false
	}
	if to == entity.StateFailed {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type IllegalTransitionError struct {
	From entity.JourneyState
	To   entity.JourneyState
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal transition %s -> %s", e.From, e.To)
}

// entryState is the state a step of the given kind runs in.
func entryState(kind entity.StepKind) entity.JourneyState {
	switch kind {
	case entity.StepNavigate:
		return entity.StateNavigating
	case entity.StepVerify:
		return entity.StateVerifying
	default:
		return entity.StateInteracting
	}
}
