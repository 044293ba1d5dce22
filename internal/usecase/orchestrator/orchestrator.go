// Package orchestrator runs journeys: ordered steps that move a browser
// session through an explicit state machine, following new tabs when a step
// opens one and separating cosmetic defects from fatal ones.
package orchestrator

import (
	"context"
	"errors"
	"time"

	"browser-journey/internal/application/port/output"
	"browser-journey/internal/domain/entity"
	"browser-journey/internal/usecase/resolver"
	"browser-journey/internal/usecase/widget"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
)

const defaultContextWait = 10 * time.Second

type Config struct {
	// StepTimeout bounds postcondition waits; zero uses the resolver timeout.
	StepTimeout time.Duration
	// ContextWait bounds the wait for a tab opened by an OpensContext step.
	ContextWait time.Duration
}

func DefaultConfig() Config {
	return Config{ContextWait: defaultContextWait}
}

type Orchestrator struct {
	driver   output.DriverPort
	resolver *resolver.Resolver
	widget   *widget.Adapter
	progress output.ProgressPort
	logger   output.LoggerPort
	clock    clock.Clock
	cfg      Config
	newID    func() string
}

func New(
	driver output.DriverPort,
	res *resolver.Resolver,
	wid *widget.Adapter,
	progress output.ProgressPort,
	logger output.LoggerPort,
	cfg Config,
) *Orchestrator {
	if cfg.ContextWait <= 0 {
		cfg.ContextWait = defaultContextWait
	}
	if progress == nil {
		progress = nopProgress{}
	}
	return &Orchestrator{
		driver:   driver,
		resolver: res,
		widget:   wid,
		progress: progress,
		logger:   logger.Named("orchestrator"),
		clock:    res.Clock(),
		cfg:      cfg,
		newID:    uuid.NewString,
	}
}

// run is the mutable state of one journey execution.
type run struct {
	journey Journey
	state   entity.JourneyState
	active  entity.ContextID
	result  *entity.JourneyResult
	log     output.LoggerPort
}

// Run executes j to completion. The result is always returned, also when the
// journey fails; the error is then a *entity.JourneyFailedError.
func (o *Orchestrator) Run(ctx context.Context, j Journey) (*entity.JourneyResult, error) {
	runID := o.newID()
	r := &run{
		journey: j,
		state:   entity.StateIdle,
		log:     o.logger.WithFields(map[string]any{"run_id": runID, "journey": j.Name}),
		result: &entity.JourneyResult{
			RunID:   runID,
			Journey: j.Name,
			State:   entity.StateIdle,
			Started: o.clock.Now(),
		},
	}

	o.progress.ShowJourneyStart(ctx, j.Name, runID)
	r.log.Info("Journey started", "steps", len(j.Steps))

	err := j.Validate()
	if err == nil {
		err = o.bindActiveContext(ctx, r)
	}
	if err != nil {
		return o.finish(ctx, r, o.fail(r, "", err))
	}

	for _, step := range j.Steps {
		if err := o.runStep(ctx, r, step); err != nil {
			return o.finish(ctx, r, err)
		}
	}

	// A trailing interaction has nothing left to verify.
	if r.state == entity.StateInteracting {
		if err := o.transition(r, entity.StateReady); err != nil {
			return o.finish(ctx, r, o.fail(r, "", err))
		}
	}
	if err := o.transition(r, entity.StateDone); err != nil {
		return o.finish(ctx, r, o.fail(r, "", err))
	}
	return o.finish(ctx, r, nil)
}

func (o *Orchestrator) bindActiveContext(ctx context.Context, r *run) error {
	active, err := o.driver.ActiveContext(ctx)
	if err != nil {
		return err
	}
	r.active = active.ID
	return nil
}

func (o *Orchestrator) runStep(ctx context.Context, r *run, step Step) error {
	log := r.log.WithField("step", step.Name)
	start := o.clock.Now()

	if err := o.transition(r, entryState(step.Kind)); err != nil {
		return o.fail(r, step.Name, err)
	}
	log.Debug("Step started", "state", string(r.state))

	err := o.execute(ctx, r, step, log)

	record := entity.StepRecord{
		Name:     step.Name,
		Kind:     step.Kind,
		Duration: o.clock.Since(start),
		Err:      err,
	}

	switch {
	case err == nil:
		if step.Kind == entity.StepNavigate {
			if terr := o.transition(r, entity.StateReady); terr != nil {
				return o.fail(r, step.Name, terr)
			}
		}
		record.Status = entity.StepPassed
		record.State = r.state
		r.result.Steps = append(r.result.Steps, record)
		o.progress.ShowStep(ctx, record)
		log.Info("Step passed", "duration", record.Duration)
		return nil

	case step.Soft && ctx.Err() == nil:
		diag := entity.Diagnostic{Step: step.Name, Message: err.Error(), Err: err}
		var nf *entity.OptionNotFoundError
		if errors.As(err, &nf) {
			diag.Candidates = nf.Candidates
		}
		record.Status = entity.StepSoftFailed
		record.State = r.state
		r.result.Steps = append(r.result.Steps, record)
		r.result.Diagnostics = append(r.result.Diagnostics, diag)
		o.progress.ShowStep(ctx, record)
		o.progress.ShowDiagnostic(ctx, diag)
		log.Warn("Soft step failed, continuing", "error", err)
		return nil

	default:
		failed := o.fail(r, step.Name, err)
		record.Status = entity.StepFailed
		record.State = r.state
		r.result.Steps = append(r.result.Steps, record)
		o.progress.ShowStep(ctx, record)
		return failed
	}
}

func (o *Orchestrator) execute(ctx context.Context, r *run, step Step, log output.LoggerPort) error {
	var before []entity.BrowsingContext
	if step.OpensContext {
		var err error
		if before, err = o.driver.ListContexts(ctx); err != nil {
			return err
		}
	}

	if step.Action != nil {
		sess := &Session{o: o, run: r, log: log}
		if err := step.Action(ctx, sess); err != nil {
			return err
		}
	}

	if step.OpensContext {
		if err := o.transition(r, entity.StateRedirecting); err != nil {
			return err
		}
		if err := o.followNewContext(ctx, r, before, log); err != nil {
			return err
		}
		if err := o.transition(r, entity.StateVerifying); err != nil {
			return err
		}
	}

	if step.Postcondition != nil {
		timeout := step.Timeout
		if timeout <= 0 {
			timeout = o.cfg.StepTimeout
		}
		if err := o.resolver.WaitUntil(ctx, step.Name, step.Postcondition, timeout); err != nil {
			return err
		}
	}
	return nil
}

// followNewContext waits for a context that was not open before the action
// and makes it active. If several appeared, the first listed wins.
func (o *Orchestrator) followNewContext(ctx context.Context, r *run, before []entity.BrowsingContext, log output.LoggerPort) error {
	known := make(map[entity.ContextID]struct{}, len(before))
	for _, c := range before {
		known[c.ID] = struct{}{}
	}

	var opened []entity.BrowsingContext
	spawned := func(ctx context.Context, d output.DriverPort) (bool, error) {
		all, err := d.ListContexts(ctx)
		if err != nil {
			return false, err
		}
		opened = opened[:0]
		for _, c := range all {
			if _, ok := known[c.ID]; !ok {
				opened = append(opened, c)
			}
		}
		return len(opened) > 0, nil
	}

	start := o.clock.Now()
	if err := o.resolver.WaitUntil(ctx, "new browsing context", spawned, o.cfg.ContextWait); err != nil {
		var te *entity.TimeoutError
		if errors.As(err, &te) {
			return &entity.NoNewContextError{Previous: r.active, Waited: o.clock.Since(start)}
		}
		return err
	}

	if len(opened) > 1 {
		log.Warn("Several contexts opened, following the first", "count", len(opened))
	}
	next := opened[0]
	if err := o.driver.SwitchContext(ctx, next.ID); err != nil {
		return err
	}
	log.Info("Switched browsing context", "from", string(r.active), "to", string(next.ID), "url", next.URL)
	r.active = next.ID
	return nil
}

func (o *Orchestrator) transition(r *run, to entity.JourneyState) error {
	if !CanTransition(r.state, to) {
		return &IllegalTransitionError{From: r.state, To: to}
	}
	r.log.Debug("State changed", "from", string(r.state), "to", string(to))
	r.state = to
	r.result.State = to
	return nil
}

// fail moves the run to Failed and wraps cause with where it happened.
func (o *Orchestrator) fail(r *run, step string, cause error) error {
	at := r.state
	r.state = entity.StateFailed
	r.result.State = entity.StateFailed
	r.log.Error("Journey failed", "step", step, "state", string(at), "error", cause)
	return &entity.JourneyFailedError{Journey: r.journey.Name, Step: step, State: at, Err: cause}
}

// finish fills in where the browser ended up. Lookups are best effort so a
// dead browser does not mask the journey's own error.
func (o *Orchestrator) finish(ctx context.Context, r *run, err error) (*entity.JourneyResult, error) {
	res := r.result
	res.Finished = o.clock.Now()

	if active, aerr := o.driver.ActiveContext(ctx); aerr == nil {
		res.ActiveContext = active
		res.FinalURL = active.URL
		res.FinalTitle = active.Title
	} else {
		r.log.Debug("Could not read final context", "error", aerr)
	}

	o.progress.ShowJourneyResult(ctx, res)
	if err != nil {
		return res, err
	}
	r.log.Info("Journey done", "duration", res.Duration(), "diagnostics", len(res.Diagnostics))
	return res, nil
}

type nopProgress struct{}

func (nopProgress) ShowJourneyStart(context.Context, string, string)         {}
func (nopProgress) ShowStep(context.Context, entity.StepRecord)              {}
func (nopProgress) ShowDiagnostic(context.Context, entity.Diagnostic)        {}
func (nopProgress) ShowJourneyResult(context.Context, *entity.JourneyResult) {}
