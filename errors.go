package ldapserver

import "errors"

// Process-fatal errors, returned by Init/Start per spec.md §7.
var (
	ErrNoHandlerConfigured = errors.New("ldapserver: no account source configured")
	ErrAlreadyStarted      = errors.New("ldapserver: server already started")
	ErrNotStarted          = errors.New("ldapserver: server not started")
)
