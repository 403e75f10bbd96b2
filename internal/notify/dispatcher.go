package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Rule binds a named notification rule to a notifier and its per-rule settings.
type Rule struct {
	// Notifier is the module ID of the notifier handling this rule.
	Notifier string

	// Settings holds the per-rule settings (e.g. the destination chat ID).
	Settings Settings
}

// Attempt is the record of one delivery attempt, successful or not.
type Attempt struct {
	Time     time.Time
	Rule     string
	Notifier string
	OK       bool
	Error    string
	Duration time.Duration
}

// Recorder persists delivery attempts. Implementations must tolerate
// concurrent calls.
type Recorder interface {
	Record(ctx context.Context, a Attempt) error
}

// Dispatcher routes notifications to the notifier configured for a rule.
// Trigger conditions are the caller's concern; the dispatcher only resolves
// the rule, invokes Deliver, and records the outcome.
type Dispatcher struct {
	mu             sync.RWMutex
	notifiers      map[string]Notifier
	moduleSettings map[string]Settings
	rules          map[string]Rule

	recorder Recorder
	logger   *slog.Logger
}

// NewDispatcher creates an empty Dispatcher. The recorder may be nil, in
// which case attempts are not persisted.
func NewDispatcher(logger *slog.Logger, recorder Recorder) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		notifiers:      make(map[string]Notifier),
		moduleSettings: make(map[string]Settings),
		rules:          make(map[string]Rule),
		recorder:       recorder,
		logger:         logger,
	}
}

// Register adds a notifier under its module ID together with its
// module-level settings. Returns ErrDuplicateNotifier if the ID is taken.
func (d *Dispatcher) Register(n Notifier, moduleSettings Settings) error {
	id := string(n.ModuleInfo().ID)

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.notifiers[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateNotifier, id)
	}
	d.notifiers[id] = n
	d.moduleSettings[id] = moduleSettings
	return nil
}

// SetRule adds or replaces a named rule.
func (d *Dispatcher) SetRule(name string, rule Rule) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rules[name] = rule
}

// Rules returns the names of all configured rules.
func (d *Dispatcher) Rules() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, 0, len(d.rules))
	for name := range d.rules {
		names = append(names, name)
	}
	return names
}

// Notifier returns the notifier registered under id, or false if none.
func (d *Dispatcher) Notifier(id string) (Notifier, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	n, ok := d.notifiers[id]
	return n, ok
}

// ModuleSettings returns the module-level settings registered for id.
func (d *Dispatcher) ModuleSettings(id string) Settings {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.moduleSettings[id]
}

// Dispatch delivers a notification through the rule's notifier. It returns
// ErrNoRule for unconfigured rules and ErrNoNotifier when the rule points at
// an unregistered notifier; delivery failures are returned unchanged.
func (d *Dispatcher) Dispatch(ctx context.Context, ruleName string, n Notification) error {
	d.mu.RLock()
	rule, ok := d.rules[ruleName]
	var notifier Notifier
	var moduleSettings Settings
	if ok {
		notifier = d.notifiers[rule.Notifier]
		moduleSettings = d.moduleSettings[rule.Notifier]
	}
	d.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrNoRule, ruleName)
	}
	if notifier == nil {
		return fmt.Errorf("%w: %s", ErrNoNotifier, rule.Notifier)
	}

	tracer := otel.Tracer("github.com/notigate/notigate/internal/notify")
	ctx, span := tracer.Start(ctx, "notify.Dispatch")
	span.SetAttributes(
		attribute.String("notify.rule", ruleName),
		attribute.String("notify.notifier", rule.Notifier),
	)
	defer span.End()

	start := time.Now()
	err := notifier.Deliver(ctx, n, moduleSettings, rule.Settings)
	elapsed := time.Since(start)

	outcome := "ok"
	if err != nil {
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, "delivery failed")
		d.logger.Error("notification delivery failed",
			"rule", ruleName,
			"notifier", rule.Notifier,
			"error", err,
		)
	} else {
		d.logger.Info("notification delivered",
			"rule", ruleName,
			"notifier", rule.Notifier,
			"duration", elapsed,
		)
	}

	deliveriesTotal.WithLabelValues(rule.Notifier, outcome).Inc()
	deliveryDuration.WithLabelValues(rule.Notifier).Observe(elapsed.Seconds())

	if d.recorder != nil {
		attempt := Attempt{
			Time:     start,
			Rule:     ruleName,
			Notifier: rule.Notifier,
			OK:       err == nil,
			Duration: elapsed,
		}
		if err != nil {
			attempt.Error = err.Error()
		}
		if recErr := d.recorder.Record(ctx, attempt); recErr != nil {
			d.logger.Warn("recording delivery attempt failed", "error", recErr)
		}
	}

	return err
}
