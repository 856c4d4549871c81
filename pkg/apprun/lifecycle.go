package apprun

import (
	"context"
	"fmt"

	"github.com/yndnr/apprun-go/internal/argparse"
	"github.com/yndnr/apprun-go/internal/infra/confloader"
	"github.com/yndnr/apprun-go/internal/telemetry/logger"
	"github.com/yndnr/apprun-go/internal/telemetry/metric"
)

// State is the lifecycle state of an App.
type State int32

const (
	// StateUninitialized means Prepare has not yet succeeded.
	StateUninitialized State = iota
	// StatePrepared means config, logger and Init are done.
	StatePrepared
	// StateExecuting means the application is running.
	StateExecuting
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StatePrepared:
		return "prepared"
	case StateExecuting:
		return "executing"
	default:
		return "invalid"
	}
}

// State returns the current lifecycle state.
func (a *App) State() State {
	return State(a.state.Load())
}

// Prepare performs one-time initialization: it loads the config file when
// the "config" option is present, enables the logger and calls the
// application's Init. Once it has succeeded further calls do nothing. A
// failed attempt leaves the App uninitialized so the next call retries.
func (a *App) Prepare(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.prepareLocked(ctx)
}

func (a *App) prepareLocked(ctx context.Context) error {
	if a.State() != StateUninitialized {
		return nil
	}

	if err := a.loadConfig(); err != nil {
		return err
	}

	if err := a.enableLogger(); err != nil {
		return err
	}

	if a.app.init != nil {
		initCtx := logger.WithLogger(ctx, a.log)
		if err := a.app.init.Init(initCtx, a.options); err != nil {
			a.log.Error("application init failed", "error", err)
			return &InitError{Cause: err}
		}
	}

	a.state.Store(int32(StatePrepared))
	a.log.Debug("application prepared",
		"name", a.name,
		"version", a.version,
		"config", a.configPath,
	)
	return nil
}

// loadConfig merges the config file, environment and defaults into the
// stored options. Without a "config" option only the environment and
// defaults apply.
func (a *App) loadConfig() error {
	if _, ok := a.options[argparse.ConfigKey]; !ok {
		return a.loader.Apply(a.options)
	}

	resolved, err := a.loader.Load(a.options, a.options.String(argparse.ConfigKey))
	switch {
	case confloader.IsNotFound(err):
		a.recordConfigLoad(metric.LoadNotFound)
		return err
	case err != nil:
		a.recordConfigLoad(metric.LoadFailed)
		return err
	case resolved == "":
		a.recordConfigLoad(metric.LoadNotFound)
	default:
		a.recordConfigLoad(metric.LoadLoaded)
	}
	a.configPath = resolved
	return nil
}

func (a *App) recordConfigLoad(result string) {
	if a.metrics != nil {
		a.metrics.RecordConfigLoad(result)
	}
}

// enableLogger builds the process logger from the "logger" and
// "loglevel" options unless one was supplied with WithLogger.
func (a *App) enableLogger() error {
	if a.fixedLogger {
		logger.SetDefault(a.log)
		return nil
	}

	cfg, err := logger.FromOptions(a.name, a.options)
	if err != nil {
		return fmt.Errorf("apprun: logger: %w", err)
	}
	cfg.Output = a.console

	l, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("apprun: logger: %w", err)
	}
	logger.SetDefault(l)
	a.log = l
	return nil
}
