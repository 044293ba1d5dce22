package service

import (
	"fmt"

	"browser-journey/internal/usecase/orchestrator"
)

// JourneyFactory builds a fresh journey per run; journeys keep per-run state
// in their step closures.
type JourneyFactory func() orchestrator.Journey

type JourneyRegistryImpl struct {
	factories map[string]JourneyFactory
	order     []string
}

func NewJourneyRegistry() *JourneyRegistryImpl {
	return &JourneyRegistryImpl{
		factories: make(map[string]JourneyFactory),
	}
}

// Register adds a journey under name. Names are unique; registering one twice
// is a wiring bug.
func (r *JourneyRegistryImpl) Register(name string, factory JourneyFactory) error {
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("journey %q already registered", name)
	}
	r.factories[name] = factory
	r.order = append(r.order, name)
	return nil
}

func (r *JourneyRegistryImpl) Get(name string) (orchestrator.Journey, bool) {
	factory, ok := r.factories[name]
	if !ok {
		return orchestrator.Journey{}, false
	}
	return factory(), true
}

// Names lists journeys in registration order.
func (r *JourneyRegistryImpl) Names() []string {
	result := make([]string, len(r.order))
	copy(result, r.order)
	return result
}
