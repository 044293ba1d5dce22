// Package resolver turns locators into live element handles by polling the
// driver until a readiness predicate holds or a deadline passes.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"browser-journey/internal/application/port/output"
	"browser-journey/internal/domain/entity"

	"github.com/benbjohnson/clock"
)

const (
	defaultInterval = 250 * time.Millisecond
	defaultTimeout  = 10 * time.Second
)

// Config is the single latency knob: a shorter interval reacts faster, a
// longer timeout tolerates slower pages.
type Config struct {
	Interval time.Duration
	Timeout  time.Duration
}

func DefaultConfig() Config {
	return Config{
		Interval: defaultInterval,
		Timeout:  defaultTimeout,
	}
}

type Resolver struct {
	driver output.DriverPort
	logger output.LoggerPort
	clock  clock.Clock
	cfg    Config
}

type Option func(*Resolver)

func WithClock(c clock.Clock) Option {
	return func(r *Resolver) { r.clock = c }
}

func New(driver output.DriverPort, logger output.LoggerPort, cfg Config, opts ...Option) *Resolver {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	r := &Resolver{
		driver: driver,
		logger: logger.Named("resolver"),
		clock:  clock.New(),
		cfg:    cfg,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Resolver) Config() Config     { return r.cfg }
func (r *Resolver) Clock() clock.Clock { return r.clock }

var errDeadline = errors.New("deadline reached")

// poll calls check until it reports done. The final check always happens at
// the deadline: sleeps are clamped to the remaining budget, so a timeout is
// reported no earlier than timeout and no later than timeout plus one check.
// Errors from check are remembered but do not stop the loop.
func (r *Resolver) poll(ctx context.Context, timeout time.Duration, check func() (bool, error)) (elapsed time.Duration, lastErr, err error) {
	if timeout <= 0 {
		timeout = r.cfg.Timeout
	}

	start := r.clock.Now()
	for {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return r.clock.Since(start), lastErr, ctxErr
		}
		done, checkErr := check()
		if checkErr != nil {
			lastErr = checkErr
		}
		elapsed = r.clock.Since(start)
		if done {
			return elapsed, nil, nil
		}
		if elapsed >= timeout {
			return elapsed, lastErr, errDeadline
		}

		wait := r.cfg.Interval
		if remaining := timeout - elapsed; remaining < wait {
			wait = remaining
		}
		select {
		case <-ctx.Done():
			return r.clock.Since(start), lastErr, ctx.Err()
		case <-r.clock.After(wait):
		}
	}
}

// Resolve returns the first element matching locator that satisfies pred
// (Present when nil).
func (r *Resolver) Resolve(ctx context.Context, locator entity.Locator, pred Predicate, timeout time.Duration) (entity.ElementHandle, error) {
	if pred == nil {
		pred = Present
	}

	var found entity.ElementHandle
	elapsed, lastErr, err := r.poll(ctx, timeout, func() (bool, error) {
		els, err := r.driver.FindElements(ctx, locator)
		if err != nil {
			return false, err
		}
		var predErr error
		for _, el := range els {
			ok, err := pred(ctx, r.driver, el)
			if err != nil {
				predErr = err
				continue
			}
			if ok {
				found = el
				return true, nil
			}
		}
		return false, predErr
	})

	switch {
	case err == nil:
		r.logger.Debug("Resolved", "locator", locator.String(), "elapsed", elapsed)
		return found, nil
	case errors.Is(err, errDeadline):
		return entity.ElementHandle{}, &entity.TimeoutError{Locator: locator, Elapsed: elapsed, Err: lastErr}
	default:
		return entity.ElementHandle{}, fmt.Errorf("resolving %s: %w", locator, err)
	}
}

// ResolveClickable waits for a visible, enabled, unobscured match. A match
// that never became clickable yields OccludedError rather than TimeoutError.
func (r *Resolver) ResolveClickable(ctx context.Context, locator entity.Locator, timeout time.Duration) (entity.ElementHandle, error) {
	var (
		found  entity.ElementHandle
		seen   bool
		reason string
	)

	elapsed, lastErr, err := r.poll(ctx, timeout, func() (bool, error) {
		// Only the latest check decides between occluded and missing.
		seen, reason = false, ""
		els, err := r.driver.FindElements(ctx, locator)
		if err != nil {
			return false, err
		}
		var inspectErr error
		for _, el := range els {
			state, err := r.driver.Inspect(ctx, el)
			if err != nil {
				inspectErr = err
				continue
			}
			seen = true
			if state.Clickable() {
				found = el
				return true, nil
			}
			reason = blockedReason(state)
		}
		return false, inspectErr
	})

	switch {
	case err == nil:
		r.logger.Debug("Resolved clickable", "locator", locator.String(), "elapsed", elapsed)
		return found, nil
	case errors.Is(err, errDeadline) && seen:
		return entity.ElementHandle{}, &entity.OccludedError{Locator: locator, Elapsed: elapsed, Reason: reason}
	case errors.Is(err, errDeadline):
		return entity.ElementHandle{}, &entity.TimeoutError{Locator: locator, Condition: "clickable", Elapsed: elapsed, Err: lastErr}
	default:
		return entity.ElementHandle{}, fmt.Errorf("resolving %s: %w", locator, err)
	}
}

// ResolveAll waits until at least one element matches and returns all of them.
func (r *Resolver) ResolveAll(ctx context.Context, locator entity.Locator, timeout time.Duration) ([]entity.ElementHandle, error) {
	var found []entity.ElementHandle
	elapsed, lastErr, err := r.poll(ctx, timeout, func() (bool, error) {
		els, err := r.driver.FindElements(ctx, locator)
		if err != nil {
			return false, err
		}
		found = els
		return len(els) > 0, nil
	})

	switch {
	case err == nil:
		return found, nil
	case errors.Is(err, errDeadline):
		return nil, &entity.TimeoutError{Locator: locator, Elapsed: elapsed, Err: lastErr}
	default:
		return nil, fmt.Errorf("resolving %s: %w", locator, err)
	}
}

// IsPresent is the non-failing probe for optional UI. Absence is a valid
// answer, so only unexpected errors are logged.
func (r *Resolver) IsPresent(ctx context.Context, locator entity.Locator, timeout time.Duration) bool {
	_, err := r.Resolve(ctx, locator, Present, timeout)
	if err == nil {
		return true
	}

	var te *entity.TimeoutError
	if !errors.As(err, &te) {
		r.logger.Warn("Presence probe failed", "locator", locator.String(), "error", err)
	}
	return false
}

// WaitUntil polls a page-level condition.
func (r *Resolver) WaitUntil(ctx context.Context, name string, cond Condition, timeout time.Duration) error {
	elapsed, lastErr, err := r.poll(ctx, timeout, func() (bool, error) {
		return cond(ctx, r.driver)
	})

	switch {
	case err == nil:
		r.logger.Debug("Condition met", "condition", name, "elapsed", elapsed)
		return nil
	case errors.Is(err, errDeadline):
		return &entity.TimeoutError{Condition: name, Elapsed: elapsed, Err: lastErr}
	default:
		return fmt.Errorf("waiting for %s: %w", name, err)
	}
}

func blockedReason(s entity.ElementState) string {
	switch {
	case !s.Visible:
		return "not visible"
	case !s.Enabled:
		return "disabled"
	case s.Obscured:
		return "obscured by another element"
	}
	return ""
}
