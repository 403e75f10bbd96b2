package core

import (
	"context"

	"gopkg.in/yaml.v3"
)

// The lifecycle interfaces below are all optional. A module opts into a
// phase by implementing the matching interface; phases run in the order
// Configure, Provision, Validate, Start, with Stop in reverse on shutdown.

// Configurable receives the module's raw YAML config section, before
// Provision runs.
type Configurable interface {
	Configure(node *yaml.Node) error
}

// Provisioner performs setup: building clients, opening resources, and
// resolving shared services through the AppContext.
type Provisioner interface {
	Provision(ctx *AppContext) error
}

// Validator checks that the module's configuration is complete and usable.
// Validate must be read-only: no side effects, no network.
type Validator interface {
	Validate() error
}

// Starter begins background work (listeners, schedules) once every module
// has been provisioned and validated.
type Starter interface {
	Start() error
}

// Stopper releases resources during shutdown.
type Stopper interface {
	Stop(ctx context.Context) error
}
