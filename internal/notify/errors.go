package notify

import "errors"

// Sentinel errors for dispatch operations.
var (
	// ErrNoRule indicates a dispatch referenced a rule that is not configured.
	ErrNoRule = errors.New("notify: unknown rule")

	// ErrNoNotifier indicates a rule references a notifier that is not registered.
	ErrNoNotifier = errors.New("notify: unknown notifier")

	// ErrDuplicateNotifier indicates a notifier with the same ID is already
	// registered in the dispatcher.
	ErrDuplicateNotifier = errors.New("notify: duplicate notifier")
)

// ConfigError reports invalid module-level settings, found either by a local
// precondition check or by the remote API during credential verification.
// Reason always carries the human-readable explanation; for remote failures
// it is the raw response body.
type ConfigError struct {
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Err != nil {
		return "notify: invalid configuration: " + e.Reason + ": " + e.Err.Error()
	}
	return "notify: invalid configuration: " + e.Reason
}

// Unwrap returns the underlying transport error, if any.
func (e *ConfigError) Unwrap() error { return e.Err }

// DeliveryError reports a failed delivery attempt. Message carries either a
// local precondition message or the remote API's raw response body; the
// caller is expected to surface it and mark the notification as failed.
type DeliveryError struct {
	Message string
	Err     error
}

// Error implements the error interface.
func (e *DeliveryError) Error() string {
	if e.Err != nil {
		return "notify: delivery failed: " + e.Message + ": " + e.Err.Error()
	}
	return "notify: delivery failed: " + e.Message
}

// Unwrap returns the underlying transport error, if any.
func (e *DeliveryError) Unwrap() error { return e.Err }
