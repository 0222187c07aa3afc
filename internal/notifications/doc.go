// Package notifications delivers planning and execution events to ntfy.
//
// The topic URL comes from [notifications] in config.toml; without one,
// NewService returns a no-op so callers never check whether notifications
// are enabled.
package notifications
