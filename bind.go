package ldapserver

import (
	"time"

	ldap "github.com/lor00x/goldap/message"

	"github.com/dbaarda/entente/directory"
)

// bindOp implements the Bind operation described in spec.md §4.4: an
// empty name is an anonymous bind, which succeeds only when
// Config.AnonOK is set; a simple bind resolves the name to a uid via the
// directory DN scheme (a DN of the wrong shape is invalidDNSyntax) and
// checks the password with the configured Authenticator; any other
// authentication choice is authMethodNotSupported. The reply is withheld
// until any delay the Authenticator requested has elapsed.
type bindOp struct {
	messageID int
	req       ldap.BindRequest

	built bool
	reply ldap.LDAPMessage
}

func newBindOp(messageID int, req ldap.BindRequest) *bindOp {
	return &bindOp{messageID: messageID, req: req}
}

func (b *bindOp) next(c *Connection) (ldap.LDAPMessage, bool, bool) {
	if c.delayActive() {
		return ldap.LDAPMessage{}, false, false
	}
	if !b.built {
		code, matchedDN, diagnostic, boundUID, anon, isRoot, delay := b.evaluate(c)
		resp := newBindResponse(code)
		resp.SetMatchedDN(matchedDN)
		if diagnostic != "" {
			resp.SetDiagnosticMessage(diagnostic)
		}
		b.reply = wrapMessage(b.messageID, resp)
		b.built = true
		if code == LDAPResultSuccess {
			c.boundUID = boundUID
			c.anonymous = anon
			c.isRoot = isRoot
		}
		if delay > 0 {
			c.armDelay(delay)
			return ldap.LDAPMessage{}, false, false
		}
	}
	return b.reply, true, true
}

// evaluate performs the actual bind decision. It never blocks; any
// backoff is communicated via the returned delay for the caller to arm.
func (b *bindOp) evaluate(c *Connection) (code LDAPResultCode, matchedDN, diagnostic string, boundUID int, anon, isRoot bool, delay time.Duration) {
	simple, isSimple := b.req.AuthenticationSimple()
	name := string(b.req.Name())

	if name == "" {
		if !c.server.config.AnonOK {
			return LDAPResultInvalidCredentials, "", "anonymous bind not allowed", 0, false, false, 0
		}
		return LDAPResultSuccess, "", "", 0, true, false, 0
	}
	if !isSimple {
		return LDAPResultAuthMethodNotSupported, "", "only simple authentication is supported", 0, false, false, 0
	}

	uname, ok := directory.DNToName(c.server.config.BaseDN, name)
	if !ok {
		return LDAPResultInvalidDNSyntax, "", "", 0, false, false, 0
	}

	if c.server.config.Authenticator == nil {
		return LDAPResultInvalidCredentials, "", "", 0, false, false, 0
	}
	authOK, diag, d, err := c.server.config.Authenticator.Authenticate(uname, string(simple))
	if err != nil {
		c.server.logger().Printf("bind: authenticate %q: %v", uname, err)
		return LDAPResultOperationsError, "", "", 0, false, false, d
	}
	if !authOK {
		return LDAPResultInvalidCredentials, "", diag, 0, false, false, d
	}
	uid, ok := c.server.config.Accounts.UIDForName(uname)
	if !ok {
		return LDAPResultInvalidCredentials, "", diag, 0, false, false, d
	}
	root := c.server.config.RootUser != "" && uname == c.server.config.RootUser
	return LDAPResultSuccess, "", "", uid, false, root, d
}
