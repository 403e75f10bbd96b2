// Package notify defines the capability contract between the platform host
// and notification modules. A notifier declares its identity and
// configuration schemas, validates saved settings, and delivers formatted
// notifications to its destination. The host owns settings persistence and
// decides when to trigger a delivery; notifiers are stateless per call.
package notify

import (
	"context"
	"sort"

	"github.com/notigate/notigate/internal/core"
)

// Notifier is implemented by every notification module. All methods must be
// safe for concurrent use; settings are passed per call and never retained.
type Notifier interface {
	core.Module

	// Identity returns the static display identity for host UI presentation.
	Identity() Identity

	// ModuleSchema describes the module-level settings fields
	// (set once by an administrator).
	ModuleSchema() Schema

	// RuleSchema describes the per-rule settings fields
	// (one set per notification rule).
	RuleSchema() Schema

	// ValidateConfig checks module-level settings, including any remote
	// credential verification. A nil return signals validity; failures are
	// reported as *ConfigError.
	ValidateConfig(ctx context.Context, settings Settings) error

	// ResolveField supplies selectable values for a schema field declared
	// as FieldDynamic. Notifiers without dynamic fields return an empty map.
	ResolveField(ctx context.Context, field string, settings Settings) (map[string]string, error)

	// Deliver sends one notification using the given module-level and
	// per-rule settings. Failures are reported as *DeliveryError; there is
	// no retry at this layer.
	Deliver(ctx context.Context, n Notification, moduleSettings, ruleSettings Settings) error
}

// Identity is the static display identity of a notifier.
type Identity struct {
	// Name is the human-readable display name (e.g. "Telegram").
	Name string

	// Logo is the icon resource file name shown by the host UI.
	Logo string
}

// FieldType describes how a settings field is rendered and sourced.
type FieldType string

const (
	// FieldText is a plain text input.
	FieldText FieldType = "text"

	// FieldSecret is a masked text input for credentials.
	FieldSecret FieldType = "secret"

	// FieldDynamic is a select whose options come from ResolveField.
	FieldDynamic FieldType = "dynamic"
)

// Field describes a single settings field.
type Field struct {
	Label       string
	Type        FieldType
	Description string
	Required    bool
}

// Schema maps settings keys to their field descriptors.
type Schema map[string]Field

// Keys returns all settings keys in sorted order.
func (s Schema) Keys() []string {
	keys := make([]string, 0, len(s))
	for key := range s {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// RequiredKeys returns the keys of all required fields, in no particular order.
func (s Schema) RequiredKeys() []string {
	var keys []string
	for key, f := range s {
		if f.Required {
			keys = append(keys, key)
		}
	}
	return keys
}

// Settings holds host-persisted configuration values keyed by schema field.
type Settings map[string]string

// Get returns the value for key, or "" if absent.
func (s Settings) Get(key string) string {
	if s == nil {
		return ""
	}
	return s[key]
}
