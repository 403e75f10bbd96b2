package core

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// stopTimeout bounds how long module Stop hooks may take during shutdown.
const stopTimeout = 30 * time.Second

// App owns a set of loaded module instances and drives them through their
// lifecycle: load (Configure/Provision/Validate), start, and stop.
type App struct {
	ctx     *AppContext
	logger  *slog.Logger
	modules []loadedModule
}

type loadedModule struct {
	id      ModuleID
	module  Module
	started bool
}

// NewApp creates a new App with the given context.
func NewApp(ctx *AppContext) *App {
	return &App{
		ctx:    ctx,
		logger: ctx.Logger.With("component", "core"),
	}
}

// LoadModules instantiates, provisions, and validates the modules for the
// given IDs, in order. On failure every already-loaded module is stopped
// and the error is returned.
func (a *App) LoadModules(ids []string) error {
	for _, id := range ids {
		mod, err := a.ctx.LoadModule(id)
		if err != nil {
			a.unload()
			return fmt.Errorf("loading module %s: %w", id, err)
		}
		a.modules = append(a.modules, loadedModule{id: mod.ModuleInfo().ID, module: mod})
		a.logger.Info("module loaded", "module", id)
	}
	return nil
}

// Modules returns the loaded module instances in load order.
func (a *App) Modules() []Module {
	result := make([]Module, len(a.modules))
	for i := range a.modules {
		result[i] = a.modules[i].module
	}
	return result
}

// Start starts every loaded module that implements Starter, in load order.
// A failed Start rolls back the modules started so far, in reverse.
func (a *App) Start() error {
	for i := range a.modules {
		m := &a.modules[i]
		s, ok := m.module.(Starter)
		if !ok {
			continue
		}
		a.logger.Info("starting module", "module", string(m.id))
		if err := s.Start(); err != nil {
			a.logger.Error("module start failed", "module", string(m.id), "error", err)
			a.stopFrom(i - 1)
			return fmt.Errorf("starting module %s: %w", m.id, err)
		}
		m.started = true
	}
	a.logger.Info("all modules started")
	return nil
}

// Stop stops all started modules in reverse order with a timeout.
func (a *App) Stop() {
	a.stopFrom(len(a.modules) - 1)
}

func (a *App) stopFrom(index int) {
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	for i := index; i >= 0; i-- {
		m := &a.modules[i]
		if !m.started {
			continue
		}
		if s, ok := m.module.(Stopper); ok {
			a.logger.Info("stopping module", "module", string(m.id))
			if err := s.Stop(ctx); err != nil {
				a.logger.Error("module stop error", "module", string(m.id), "error", err)
			}
		}
		m.started = false
	}
}

// unload stops whatever was loaded so far and forgets it. Used when
// LoadModules fails partway.
func (a *App) unload() {
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	for i := len(a.modules) - 1; i >= 0; i-- {
		if s, ok := a.modules[i].module.(Stopper); ok {
			_ = s.Stop(ctx)
		}
	}
	a.modules = nil
}

// Run starts all modules and blocks until SIGINT or SIGTERM, then stops
// them.
func (a *App) Run() error {
	if err := a.Start(); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	a.logger.Info("shutdown signal received", "signal", sig.String())

	a.Stop()
	a.logger.Info("shutdown complete")
	return nil
}
