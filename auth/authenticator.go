// Package auth defines the credential-check contract a simple Bind uses,
// per spec.md §6's "Authenticator (external collaborator)".
//
// Concrete production backends (PAM, crypt(3) against shadow) are
// explicitly out of scope for this module (spec.md §1); this package
// carries the interface plus one bundled, clearly non-production
// implementation so the server is runnable out of the box.
package auth

import "time"

// Authenticator checks a plaintext password for a named user. Diagnostic
// is a human-readable reason to surface to the client on failure (e.g.
// "bad password"); it is ignored when ok is true. Delay is the minimum
// amount of time the connection must wait before any reply is sent for
// this bind, win or lose; backends that cannot usefully rate-limit
// should return 0.
type Authenticator interface {
	Authenticate(name, password string) (ok bool, diagnostic string, delay time.Duration, err error)
}
