// Package core provides the module system foundation for notigate.
package core

// ModuleID uniquely identifies a module, namespaced by dots
// (e.g. "notify.telegram", "gateway.http").
type ModuleID string

// Namespace returns the part of the ID before the first dot, or the
// whole ID if there is none.
func (id ModuleID) Namespace() string {
	for i := 0; i < len(id); i++ {
		if id[i] == '.' {
			return string(id[:i])
		}
	}
	return string(id)
}

// ModuleInfo describes a registered module type.
type ModuleInfo struct {
	// ID is the unique module identifier.
	ID ModuleID

	// New returns a fresh, unconfigured instance of the module.
	New func() Module
}

// Module is the minimal interface every module must implement.
// Modules opt into lifecycle phases by additionally implementing
// Configurable, Provisioner, Validator, Starter, or Stopper.
type Module interface {
	ModuleInfo() ModuleInfo
}
