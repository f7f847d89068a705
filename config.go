package ldapserver

import (
	"crypto/tls"
	"time"

	"github.com/dbaarda/entente/accounts"
	"github.com/dbaarda/entente/auth"
	"github.com/dbaarda/entente/directory"
)

// Config holds everything Server.Init needs. It is deliberately a plain
// struct rather than a functional-options chain, matching the teacher's
// nolta/ldapserver Config shape.
type Config struct {
	// Addr is the listen address, e.g. ":389" or "127.0.0.1:3890".
	Addr string

	// BaseDN is the root of the synthesized directory, e.g. "dc=example,dc=com".
	BaseDN string

	// RootUser, if non-empty, names the account treated as the directory
	// root/admin once bound (Connection.isRoot). Empty disables the
	// concept entirely — no bind can ever be root.
	RootUser string

	// AnonOK allows an anonymous simple bind (empty DN, any/no password)
	// to succeed. When false, an empty-DN bind fails with
	// invalidCredentials like any other rejected bind.
	AnonOK bool

	// Accounts enumerates the host users/groups to project. Required.
	Accounts accounts.Source

	// Authenticator checks simple-bind credentials. A nil Authenticator
	// makes every simple bind with a well-formed user DN fail with
	// invalidCredentials.
	Authenticator auth.Authenticator

	// UIDRanges and GIDRanges restrict which records are projected into
	// the directory. Empty means unrestricted.
	UIDRanges []directory.Range
	GIDRanges []directory.Range

	// TLSConfig, if non-nil, enables the StartTLS extended operation.
	TLSConfig *tls.Config

	// RecvBufSize overrides bytebuf.DefaultCapacity for the per-connection
	// receive buffer. There is no equivalent send-side cap: replies are
	// handed to the reactor's own write queue (or, once detached, written
	// directly), which owns backpressure against the socket.
	RecvBufSize int

	// MaxSearchResults caps the number of entries a single search may
	// return when the client requests no limit (sizeLimit == 0) or a
	// larger one; 0 means use DefaultMaxSearchResults.
	MaxSearchResults int

	// ReadTimeout, if non-zero, is set as a read deadline before each
	// blocking read of a detached connection (see Connection.runBlocking);
	// the reactor itself never blocks on reads. The detached connection's
	// adapter (rawConn) ignores deadlines, also underneath a TLS session,
	// so the value does not bound how long a read waits.
	ReadTimeout time.Duration

	// WriteTimeout, if non-zero, is set as a write deadline before each
	// blocking write of a detached connection. As with ReadTimeout, the
	// adapter ignores it, so it does not bound how long a write takes.
	WriteTimeout time.Duration

	Logger Logger
}

// DefaultMaxSearchResults is applied when Config.MaxSearchResults is 0.
const DefaultMaxSearchResults = 1000

func (c *Config) maxSearchResults() int {
	if c.MaxSearchResults > 0 {
		return c.MaxSearchResults
	}
	return DefaultMaxSearchResults
}

func (c *Config) recvBufSize() int {
	if c.RecvBufSize > 0 {
		return c.RecvBufSize
	}
	return 32 * 1024
}

func (c *Config) logger() Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return defaultLogger
}
