package di

import (
	"context"
	"fmt"

	"browser-journey/internal/application/port/input"
	"browser-journey/internal/application/port/output"
	"browser-journey/internal/application/service"
	"browser-journey/internal/application/usecase"
	"browser-journey/internal/config"
	"browser-journey/internal/infrastructure/browser/rod"
	"browser-journey/internal/infrastructure/console"
	"browser-journey/internal/infrastructure/diagnostics"
	"browser-journey/internal/infrastructure/logger"
	"browser-journey/internal/usecase/journeys"
	"browser-journey/internal/usecase/orchestrator"
	"browser-journey/internal/usecase/resolver"
	"browser-journey/internal/usecase/widget"
)

type Container struct {
	Browser output.DriverPort
	Logger  output.LoggerPort
	Runner  input.JourneyRunner
}

// Driver is what the container needs from a browser: driving plus capture
// for failure snapshots.
type Driver interface {
	output.DriverPort
	output.CapturePort
}

func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	log, err := logger.NewLoggerAdapter(logger.Config{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		File:       cfg.LogFile,
		MaxSizeMB:  logger.DefaultConfig().MaxSizeMB,
		MaxBackups: logger.DefaultConfig().MaxBackups,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	browserCfg := rod.DefaultConfig()
	browserCfg.Headless = cfg.Headless
	browserCfg.SlowMotion = cfg.SlowMotion
	browser, err := rod.NewBrowserAdapter(ctx, browserCfg)
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("failed to create browser: %w", err)
	}

	runner, err := NewRunner(cfg, browser, console.NewProgress(), log)
	if err != nil {
		browser.Close()
		log.Close()
		return nil, err
	}

	return &Container{
		Browser: browser,
		Logger:  log,
		Runner:  runner,
	}, nil
}

// NewRunner wires the journey stack on top of an already running driver.
func NewRunner(cfg *config.Config, driver Driver, progress output.ProgressPort, log output.LoggerPort) (*usecase.RunJourneyUseCase, error) {
	res := resolver.New(driver, log, resolver.Config{
		Interval: cfg.Interval,
		Timeout:  cfg.Timeout,
	})

	widgetCfg := widget.DefaultConfig()
	widgetCfg.SettleInterval = cfg.Settle
	wid := widget.New(driver, res, log, widgetCfg)

	orch := orchestrator.New(driver, res, wid, progress, log, orchestrator.Config{
		StepTimeout: cfg.Timeout,
		ContextWait: cfg.ContextWait,
	})

	snapshots := diagnostics.NewSnapshotWriter(driver, log, diagnostics.Config{Dir: cfg.DiagnosticsDir})

	registry := service.NewJourneyRegistry()
	site := journeys.Site{
		BaseURL:    cfg.BaseURL,
		Brand:      cfg.Brand,
		Location:   cfg.Location,
		Department: cfg.Department,
	}
	for _, j := range journeys.Catalog(site) {
		if err := registry.Register(j.Name, service.JourneyFactory(j.Factory)); err != nil {
			return nil, fmt.Errorf("failed to register journeys: %w", err)
		}
	}

	return usecase.NewRunJourneyUseCase(registry, orch, driver, snapshots, log), nil
}

func (c *Container) Close() {
	if c.Browser != nil {
		c.Browser.Close()
	}
	if c.Logger != nil {
		c.Logger.Close()
	}
}
