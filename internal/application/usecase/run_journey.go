package usecase

import (
	"context"
	"errors"
	"fmt"

	"browser-journey/internal/application/port/input"
	"browser-journey/internal/application/port/output"
	"browser-journey/internal/domain/entity"
	"browser-journey/internal/usecase/orchestrator"
)

var _ input.JourneyRunner = (*RunJourneyUseCase)(nil)

var ErrUnknownJourney = errors.New("unknown journey")

// resetStorageScript runs in the page; about:blank and opaque origins throw
// on storage access, which is fine to ignore.
const resetStorageScript = `() => {
	try { window.localStorage.clear(); } catch (e) {}
	try { window.sessionStorage.clear(); } catch (e) {}
}`

type JourneyCatalog interface {
	Get(name string) (orchestrator.Journey, bool)
	Names() []string
}

type JourneyExecutor interface {
	Run(ctx context.Context, j orchestrator.Journey) (*entity.JourneyResult, error)
}

// RunJourneyUseCase runs one named journey and leaves the browser clean for
// the next: failure snapshot first, then back to the primary tab with
// cookies and web storage cleared.
type RunJourneyUseCase struct {
	journeys  JourneyCatalog
	executor  JourneyExecutor
	driver    output.DriverPort
	snapshots output.SnapshotPort
	logger    output.LoggerPort
}

func NewRunJourneyUseCase(
	journeys JourneyCatalog,
	executor JourneyExecutor,
	driver output.DriverPort,
	snapshots output.SnapshotPort,
	logger output.LoggerPort,
) *RunJourneyUseCase {
	return &RunJourneyUseCase{
		journeys:  journeys,
		executor:  executor,
		driver:    driver,
		snapshots: snapshots,
		logger:    logger.Named("run"),
	}
}

func (uc *RunJourneyUseCase) Names() []string {
	return uc.journeys.Names()
}

func (uc *RunJourneyUseCase) Run(ctx context.Context, name string) (*entity.JourneyResult, error) {
	j, ok := uc.journeys.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %v)", ErrUnknownJourney, name, uc.journeys.Names())
	}

	primary, err := uc.driver.ActiveContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("read active context: %w", err)
	}

	res, runErr := uc.executor.Run(ctx, j)

	// Cleanup must happen even when the run was cancelled.
	cleanupCtx := context.WithoutCancel(ctx)
	if runErr != nil && uc.snapshots != nil && res != nil {
		snap, err := uc.snapshots.Capture(cleanupCtx, name)
		if err != nil {
			uc.logger.Warn("Failure snapshot incomplete", "journey", name, "error", err)
		}
		res.Snapshot = snap
	}

	uc.reset(cleanupCtx, primary.ID)
	return res, runErr
}

func (uc *RunJourneyUseCase) reset(ctx context.Context, primary entity.ContextID) {
	if active, err := uc.driver.ActiveContext(ctx); err == nil && active.ID != primary {
		if err := uc.driver.SwitchContext(ctx, primary); err != nil {
			uc.logger.Warn("Could not return to primary context", "context", string(primary), "error", err)
		}
	}

	if _, err := uc.driver.RunScript(ctx, resetStorageScript); err != nil {
		uc.logger.Warn("Could not clear web storage", "error", err)
	}
	if cookies, ok := uc.driver.(output.CookiePort); ok {
		if err := cookies.ClearCookies(ctx); err != nil {
			uc.logger.Warn("Could not clear cookies", "error", err)
		}
	}
}
