package config

import (
	"errors"
	"fmt"

	"github.com/notigate/notigate/internal/core"
	"github.com/notigate/notigate/internal/notify"
)

// Validate checks the structural validity of a Config. It verifies the
// version field, checks that all referenced module IDs exist in the registry,
// and that every rule points at a registered notifier and carries the
// notifier's required rule fields. Remote credential checks are not part of
// structural validation; those run separately via Notifier.ValidateConfig.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Version == "" {
		errs = append(errs, errors.New("config: version field is required"))
	} else if cfg.Version != "1" {
		errs = append(errs, fmt.Errorf("config: unsupported version %q (supported: \"1\")", cfg.Version))
	}

	for id := range cfg.Modules {
		if _, ok := core.GetModule(id); !ok {
			errs = append(errs, fmt.Errorf("config: unknown module %q", id))
		}
	}

	for id := range cfg.Settings {
		if notifierFor(id) == nil {
			errs = append(errs, fmt.Errorf("config: settings for %q do not match a registered notifier", id))
		}
	}

	for name, rule := range cfg.Rules {
		n := notifierFor(rule.Notifier)
		if n == nil {
			errs = append(errs, fmt.Errorf("config: rule %q references unknown notifier %q", name, rule.Notifier))
			continue
		}
		for _, key := range n.RuleSchema().RequiredKeys() {
			if rule.Settings[key] == "" {
				errs = append(errs, fmt.Errorf("config: rule %q is missing required field %q", name, key))
			}
		}
	}

	if hb := cfg.Heartbeat; hb != nil {
		if hb.Schedule == "" {
			errs = append(errs, errors.New("config: heartbeat.schedule is required"))
		}
		if hb.Rule == "" {
			errs = append(errs, errors.New("config: heartbeat.rule is required"))
		} else if _, ok := cfg.Rules[hb.Rule]; !ok {
			errs = append(errs, fmt.Errorf("config: heartbeat.rule %q is not a configured rule", hb.Rule))
		}
	}

	return errors.Join(errs...)
}

// notifierFor instantiates the registered module for id and returns it as a
// Notifier, or nil if the ID is unknown or not a notifier.
func notifierFor(id string) notify.Notifier {
	info, ok := core.GetModule(id)
	if !ok {
		return nil
	}
	n, ok := info.New().(notify.Notifier)
	if !ok {
		return nil
	}
	return n
}
