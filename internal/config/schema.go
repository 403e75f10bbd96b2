// Package config handles YAML configuration loading, environment variable
// expansion, and structural validation for notigate.
package config

import (
	"github.com/notigate/notigate/internal/telemetry"
	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration structure.
type Config struct {
	// Version is the config format version. Currently only "1" is supported.
	Version string `yaml:"version"`

	// Modules maps module IDs to their raw YAML configuration.
	// Keys must match registered module IDs (e.g. "notify.telegram").
	Modules map[string]yaml.Node `yaml:"modules"`

	// Settings maps notifier module IDs to their module-level settings
	// (the values an administrator saves once, e.g. the bot token).
	Settings map[string]map[string]string `yaml:"settings"`

	// Rules maps rule names to their destination bindings.
	Rules map[string]RuleConfig `yaml:"rules"`

	// Heartbeat optionally enables a scheduled liveness notification.
	Heartbeat *HeartbeatConfig `yaml:"heartbeat,omitempty"`

	// Telemetry optionally enables OTLP trace export.
	Telemetry *telemetry.Config `yaml:"telemetry,omitempty"`
}

// RuleConfig binds one notification rule to a notifier and its settings.
type RuleConfig struct {
	// Notifier is the module ID handling this rule (e.g. "notify.telegram").
	Notifier string `yaml:"notifier"`

	// Settings holds the per-rule settings (e.g. chatID).
	Settings map[string]string `yaml:"settings"`
}

// HeartbeatConfig configures the scheduled liveness notification.
type HeartbeatConfig struct {
	// Schedule is a five-field cron expression.
	Schedule string `yaml:"schedule"`

	// Rule names the rule the heartbeat is sent through.
	Rule string `yaml:"rule"`

	// QuietHours optionally suppresses heartbeats inside a daily window,
	// format "HH:MM-HH:MM" (midnight wrap supported).
	QuietHours string `yaml:"quiet_hours,omitempty"`
}
