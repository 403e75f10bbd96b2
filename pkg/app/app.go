// Package app assembles a running notigate instance from a configuration
// file: modules, dispatcher, delivery history, heartbeat, and telemetry.
// It is the shared entry point for the CLI commands and the service wrapper.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/notigate/notigate/internal/config"
	"github.com/notigate/notigate/internal/core"
	"github.com/notigate/notigate/internal/heartbeat"
	"github.com/notigate/notigate/internal/history"
	"github.com/notigate/notigate/internal/notify"
	"github.com/notigate/notigate/internal/redact"
	"github.com/notigate/notigate/internal/telemetry"
)

const (
	heartbeatStopTimeout = 5 * time.Second
	tracingFlushTimeout  = 5 * time.Second
)

// Params configures Build.
type Params struct {
	// ConfigPath is the path to the YAML configuration file.
	ConfigPath string

	// DataDir is the root directory for persistent data (delivery history).
	// Empty selects DefaultDataDir().
	DataDir string

	// LogLevel sets the slog level for the whole process.
	LogLevel slog.Level

	// Logger overrides the default stderr logger (used by tests).
	Logger *slog.Logger
}

// Application is a fully wired notigate instance.
type Application struct {
	Config     *config.Config
	Logger     *slog.Logger
	Dispatcher *notify.Dispatcher
	History    *history.Store
	Heartbeat  *heartbeat.Heartbeat

	app             *core.App
	shutdownTracing func(context.Context) error
}

// Build loads and validates the configuration, provisions all configured
// modules, and wires notifiers, rules, history, heartbeat, and telemetry.
// The returned Application is ready for Run() or for one-shot use via
// Dispatcher; the caller must Close() it.
func Build(ctx context.Context, p Params) (*Application, error) {
	cfg, err := config.Load(p.ConfigPath)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	// Secret settings values registered below must never reach log output.
	redactor := redact.NewRedactor()
	logger := p.Logger
	if logger == nil {
		logger = slog.New(redact.NewHandler(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: p.LogLevel,
		}), redactor))
	}

	dataDir := p.DataDir
	if dataDir == "" {
		dataDir = DefaultDataDir()
	}

	var shutdownTracing func(context.Context) error
	if cfg.Telemetry != nil {
		shutdownTracing, err = telemetry.Setup(ctx, *cfg.Telemetry)
		if err != nil {
			return nil, err
		}
	}

	store, err := history.Open(filepath.Join(dataDir, "history.db"))
	if err != nil {
		return nil, err
	}

	dispatcher := notify.NewDispatcher(logger.With("component", "dispatch"), store)

	appCtx := core.NewAppContext(logger, dataDir).WithModuleConfigs(cfg.Modules)
	appCtx.RegisterService("notify.dispatcher", dispatcher)

	coreApp := core.NewApp(appCtx)
	if err := coreApp.LoadModules(config.Resolve(cfg)); err != nil {
		_ = store.Close()
		return nil, err
	}

	// Register every loaded notifier with its module-level settings.
	for _, mod := range coreApp.Modules() {
		n, ok := mod.(notify.Notifier)
		if !ok {
			continue
		}
		id := string(mod.ModuleInfo().ID)
		settings := cfg.Settings[id]
		if err := dispatcher.Register(n, settings); err != nil {
			_ = store.Close()
			return nil, err
		}
		for key, field := range n.ModuleSchema() {
			if field.Type == notify.FieldSecret {
				redactor.AddLiteral(settings[key])
			}
		}
	}

	for name, rule := range cfg.Rules {
		dispatcher.SetRule(name, notify.Rule{
			Notifier: rule.Notifier,
			Settings: rule.Settings,
		})
	}

	a := &Application{
		Config:          cfg,
		Logger:          logger,
		Dispatcher:      dispatcher,
		History:         store,
		app:             coreApp,
		shutdownTracing: shutdownTracing,
	}

	if hb := cfg.Heartbeat; hb != nil {
		hbCfg := heartbeat.Config{
			Schedule: hb.Schedule,
			Rule:     hb.Rule,
			Logger:   logger.With("component", "heartbeat"),
		}
		if hb.QuietHours != "" {
			quiet, err := heartbeat.ParseQuietHours(hb.QuietHours)
			if err != nil {
				a.Close()
				return nil, err
			}
			hbCfg.QuietHours = &quiet
		}
		a.Heartbeat, err = heartbeat.New(hbCfg, dispatcher)
		if err != nil {
			a.Close()
			return nil, err
		}
	}

	return a, nil
}

// Run starts all modules plus the heartbeat and blocks until a shutdown
// signal is received.
func (a *Application) Run() error {
	if a.Heartbeat != nil {
		if err := a.Heartbeat.Start(); err != nil {
			return err
		}
		defer a.stopHeartbeat()
	}
	return a.app.Run()
}

// Start starts all modules and the heartbeat without blocking. Used by the
// service wrapper, which owns the process lifecycle itself.
func (a *Application) Start() error {
	if err := a.app.Start(); err != nil {
		return err
	}
	if a.Heartbeat != nil {
		if err := a.Heartbeat.Start(); err != nil {
			a.app.Stop()
			return err
		}
	}
	return nil
}

// Stop stops the heartbeat and all started modules.
func (a *Application) Stop() {
	a.stopHeartbeat()
	a.app.Stop()
}

func (a *Application) stopHeartbeat() {
	if a.Heartbeat == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), heartbeatStopTimeout)
	defer cancel()
	_ = a.Heartbeat.Stop(ctx)
}

// Close releases resources held by the application. Safe to call after a
// failed or partial Build.
func (a *Application) Close() {
	if a.History != nil {
		_ = a.History.Close()
	}
	if a.shutdownTracing != nil {
		ctx, cancel := context.WithTimeout(context.Background(), tracingFlushTimeout)
		defer cancel()
		if err := a.shutdownTracing(ctx); err != nil {
			a.Logger.Warn("tracing shutdown failed", "error", err)
		}
	}
}

// DefaultDataDir returns the default persistent data directory,
// honoring XDG_DATA_HOME.
func DefaultDataDir() string {
	if dir, ok := os.LookupEnv("XDG_DATA_HOME"); ok {
		return filepath.Join(dir, "notigate")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "notigate")
}

// ResolveConfigPath searches for a config file in standard locations.
// Search order: $XDG_CONFIG_HOME/notigate/notigate.yaml → ./notigate.yaml
func ResolveConfigPath() (string, error) {
	var candidates []string

	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		candidates = append(candidates, filepath.Join(xdg, "notigate", "notigate.yaml"))
	} else if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "notigate", "notigate.yaml"))
	}

	candidates = append(candidates, "notigate.yaml")

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("no configuration file found (searched: %v)", candidates)
}
