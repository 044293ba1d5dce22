package entity

import (
	"fmt"
	"strings"
	"time"
)

// TimeoutError means nothing satisfied the readiness predicate in time.
// Locator is zero for page-level conditions; Condition names those.
type TimeoutError struct {
	Locator   Locator
	Condition string
	Elapsed   time.Duration
	Err       error
}

func (e *TimeoutError) Error() string {
	subject := e.Condition
	if !e.Locator.IsZero() {
		subject = e.Locator.String()
		if e.Condition != "" {
			subject += " (" + e.Condition + ")"
		}
	}
	msg := fmt.Sprintf("timed out after %s waiting for %s", e.Elapsed.Round(time.Millisecond), subject)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// OccludedError means the element was found but never became interactable.
type OccludedError struct {
	Locator Locator
	Elapsed time.Duration
	Reason  string
}

func (e *OccludedError) Error() string {
	return fmt.Sprintf("element %s present but not clickable after %s: %s",
		e.Locator, e.Elapsed.Round(time.Millisecond), e.Reason)
}

type OptionNotFoundError struct {
	Control    Locator
	Desired    string
	Candidates []string
}

func (e *OptionNotFoundError) Error() string {
	return fmt.Sprintf("option %q not found in %s (candidates: [%s])",
		e.Desired, e.Control, strings.Join(e.Candidates, ", "))
}

type UnsupportedControlError struct {
	Control Locator
	Tag     string
}

func (e *UnsupportedControlError) Error() string {
	return fmt.Sprintf("control %s with tag <%s> is not a selectable widget", e.Control, e.Tag)
}

type NoNewContextError struct {
	Previous ContextID
	Waited   time.Duration
}

func (e *NoNewContextError) Error() string {
	return fmt.Sprintf("no new browsing context opened within %s (active: %s)",
		e.Waited.Round(time.Millisecond), e.Previous)
}

// JourneyFailedError wraps the first hard failure of a journey.
type JourneyFailedError struct {
	Journey string
	Step    string
	State   JourneyState
	Err     error
}

func (e *JourneyFailedError) Error() string {
	return fmt.Sprintf("journey %q failed at step %q (%s): %v", e.Journey, e.Step, e.State, e.Err)
}

func (e *JourneyFailedError) Unwrap() error { return e.Err }
