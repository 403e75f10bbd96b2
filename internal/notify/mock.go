package notify

import (
	"context"
	"sync"

	"github.com/notigate/notigate/internal/core"
)

// MockNotifier is a test double that implements Notifier. It records
// delivered notifications together with the settings they were called with.
type MockNotifier struct {
	name string

	mu        sync.Mutex
	delivered []MockDelivery

	// DeliverFunc, if set, is called instead of the default recording behavior.
	DeliverFunc func(ctx context.Context, n Notification, moduleSettings, ruleSettings Settings) error

	// ValidateFunc, if set, is called by ValidateConfig. Defaults to accepting
	// any settings.
	ValidateFunc func(ctx context.Context, settings Settings) error
}

// MockDelivery is one recorded Deliver call.
type MockDelivery struct {
	Notification   Notification
	ModuleSettings Settings
	RuleSettings   Settings
}

// Compile-time interface guard.
var _ Notifier = (*MockNotifier)(nil)

// NewMockNotifier creates a MockNotifier registered as "notify.<name>".
func NewMockNotifier(name string) *MockNotifier {
	return &MockNotifier{name: name}
}

// ModuleInfo implements core.Module.
func (m *MockNotifier) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID: core.ModuleID("notify." + m.name),
		New: func() core.Module {
			return NewMockNotifier(m.name)
		},
	}
}

// Identity implements Notifier.
func (m *MockNotifier) Identity() Identity {
	return Identity{Name: m.name, Logo: m.name + ".png"}
}

// ModuleSchema implements Notifier.
func (m *MockNotifier) ModuleSchema() Schema {
	return Schema{
		"apiKey": {Label: "API key", Type: FieldSecret},
	}
}

// RuleSchema implements Notifier.
func (m *MockNotifier) RuleSchema() Schema {
	return Schema{
		"target": {Label: "Target", Type: FieldText, Required: true},
	}
}

// ValidateConfig implements Notifier.
func (m *MockNotifier) ValidateConfig(ctx context.Context, settings Settings) error {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(ctx, settings)
	}
	return nil
}

// ResolveField implements Notifier.
func (m *MockNotifier) ResolveField(_ context.Context, _ string, _ Settings) (map[string]string, error) {
	return map[string]string{}, nil
}

// Deliver records the notification. If DeliverFunc is set, it delegates to it.
func (m *MockNotifier) Deliver(ctx context.Context, n Notification, moduleSettings, ruleSettings Settings) error {
	if m.DeliverFunc != nil {
		return m.DeliverFunc(ctx, n, moduleSettings, ruleSettings)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delivered = append(m.delivered, MockDelivery{
		Notification:   n,
		ModuleSettings: moduleSettings,
		RuleSettings:   ruleSettings,
	})
	return nil
}

// Delivered returns a copy of all recorded deliveries.
func (m *MockNotifier) Delivered() []MockDelivery {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := make([]MockDelivery, len(m.delivered))
	copy(cp, m.delivered)
	return cp
}

// Reset clears recorded deliveries.
func (m *MockNotifier) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delivered = nil
}
