// Package heartbeat sends a scheduled liveness notification through a
// configured rule, proving the delivery path end to end (credentials,
// destination, network).
package heartbeat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/notigate/notigate/internal/notify"
	"github.com/robfig/cron/v3"
)

// Sentinel errors for heartbeat operations.
var (
	ErrAlreadyStarted = errors.New("heartbeat: already started")
	ErrInvalidQuiet   = errors.New("heartbeat: invalid quiet hours format")
)

// Dispatcher is the subset of the notify dispatcher the heartbeat needs.
type Dispatcher interface {
	Dispatch(ctx context.Context, rule string, n notify.Notification) error
}

// Config holds heartbeat configuration.
type Config struct {
	// Schedule is a five-field cron expression.
	Schedule string

	// Rule names the rule the heartbeat is sent through.
	Rule string

	// QuietHours suppresses heartbeats inside a daily window. nil = none.
	QuietHours *QuietHours

	// Timezone for quiet hours evaluation. nil = UTC.
	Timezone *time.Location

	Logger *slog.Logger

	// Now is injectable for testing.
	Now func() time.Time
}

func (c Config) withDefaults() Config {
	if c.Timezone == nil {
		c.Timezone = time.UTC
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// Heartbeat periodically dispatches a liveness notification.
type Heartbeat struct {
	cfg        Config
	dispatcher Dispatcher

	mu   sync.Mutex
	cron *cron.Cron
}

// New creates a Heartbeat with the given configuration.
func New(cfg Config, dispatcher Dispatcher) (*Heartbeat, error) {
	if dispatcher == nil {
		return nil, errors.New("heartbeat: nil Dispatcher")
	}
	if cfg.Schedule == "" {
		return nil, errors.New("heartbeat: schedule is required")
	}
	if cfg.Rule == "" {
		return nil, errors.New("heartbeat: rule is required")
	}
	return &Heartbeat{
		cfg:        cfg.withDefaults(),
		dispatcher: dispatcher,
	}, nil
}

// Start begins the cron schedule. Returns ErrAlreadyStarted if called twice
// and an error if the schedule expression is invalid.
func (h *Heartbeat) Start() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cron != nil {
		return ErrAlreadyStarted
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	c := cron.New(cron.WithParser(parser), cron.WithLocation(h.cfg.Timezone))

	if _, err := c.AddFunc(h.cfg.Schedule, h.tick); err != nil {
		return fmt.Errorf("heartbeat: invalid schedule %q: %w", h.cfg.Schedule, err)
	}

	c.Start()
	h.cron = c
	h.cfg.Logger.Info("heartbeat scheduled", "schedule", h.cfg.Schedule, "rule", h.cfg.Rule)
	return nil
}

// Stop halts the schedule and waits for a running tick to finish.
func (h *Heartbeat) Stop(ctx context.Context) error {
	h.mu.Lock()
	c := h.cron
	h.cron = nil
	h.mu.Unlock()

	if c == nil {
		return nil
	}

	select {
	case <-c.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// tick sends a single heartbeat unless inside quiet hours.
func (h *Heartbeat) tick() {
	now := h.cfg.Now().In(h.cfg.Timezone)
	if h.cfg.QuietHours != nil && h.cfg.QuietHours.IsQuiet(now) {
		h.cfg.Logger.Debug("heartbeat suppressed by quiet hours")
		return
	}

	host, _ := os.Hostname()
	n := notify.Notification{
		Title:   "Heartbeat",
		Message: fmt.Sprintf("notigate on %s is alive (%s)", host, now.Format(time.RFC3339)),
	}

	if err := h.dispatcher.Dispatch(context.Background(), h.cfg.Rule, n); err != nil {
		h.cfg.Logger.Error("heartbeat delivery failed", "rule", h.cfg.Rule, "error", err)
	}
}
