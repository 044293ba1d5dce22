package entity

import "time"

type JourneyState string

const (
	StateIdle        JourneyState = "idle"
	StateNavigating  JourneyState = "navigating"
	StateReady       JourneyState = "ready"
	StateInteracting JourneyState = "interacting"
	StateRedirecting JourneyState = "redirecting"
	StateVerifying   JourneyState = "verifying"
	StateDone        JourneyState = "done"
	StateFailed      JourneyState = "failed"
)

type StepKind string

const (
	StepNavigate StepKind = "navigate"
	StepInteract StepKind = "interact"
	StepVerify   StepKind = "verify"
)

type StepStatus string

const (
	StepPassed     StepStatus = "passed"
	StepSoftFailed StepStatus = "soft_failed"
	StepFailed     StepStatus = "failed"
)

type StepRecord struct {
	Name     string
	Kind     StepKind
	State    JourneyState
	Status   StepStatus
	Duration time.Duration
	Err      error
}

// Diagnostic is a recorded, non-halting defect.
type Diagnostic struct {
	Step       string
	Message    string
	Err        error
	Candidates []string
}

type JourneyResult struct {
	RunID         string
	Journey       string
	State         JourneyState
	Steps         []StepRecord
	Diagnostics   []Diagnostic
	ActiveContext BrowsingContext
	FinalURL      string
	FinalTitle    string
	Snapshot      *Snapshot
	Started       time.Time
	Finished      time.Time
}

func (r *JourneyResult) Passed() bool {
	return r != nil && r.State == StateDone
}

func (r *JourneyResult) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}
