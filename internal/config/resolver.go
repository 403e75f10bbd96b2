package config

import "slices"

// Resolve returns the module IDs to load, in deterministic order: notifier
// modules first so they are registered before the gateway and heartbeat
// start dispatching, the rest sorted after them.
func Resolve(cfg *Config) []string {
	var notifiers, rest []string
	for id := range cfg.Modules {
		if len(id) > len("notify.") && id[:len("notify.")] == "notify." {
			notifiers = append(notifiers, id)
		} else {
			rest = append(rest, id)
		}
	}
	slices.Sort(notifiers)
	slices.Sort(rest)
	return append(notifiers, rest...)
}
