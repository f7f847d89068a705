package ldapserver

import (
	ldap "github.com/lor00x/goldap/message"
)

// extendedOp implements the Extended operation, restricted to StartTLS
// per spec.md §4.3/§4.4: any other OID is a protocolError. Design Note
// (b): a failed handshake leaves the connection alive in cleartext
// rather than closing it; see afterSend and Connection.runDetachedTLS.
type extendedOp struct {
	messageID int
	startTLS  bool // true if the request named the StartTLS OID and TLS is configured

	reply ldap.LDAPMessage
	built bool
}

func newExtendedOp(messageID int, req ldap.ExtendedRequest, c *Connection) *extendedOp {
	e := &extendedOp{messageID: messageID}
	oid := string(req.RequestName())
	switch {
	case oid != NoticeOfStartTLS:
		e.reply = wrapMessage(messageID, extendedFailure(LDAPResultProtocolError, "Unknown extended operation."))
	case c.server.config.TLSConfig == nil:
		e.reply = wrapMessage(messageID, extendedFailure(LDAPResultProtocolError, "TLS not enabled"))
	default:
		resp := newExtendedResponse(LDAPResultSuccess)
		resp.SetResponseName(NoticeOfStartTLS)
		e.reply = wrapMessage(messageID, resp)
		e.startTLS = true
	}
	e.built = true
	return e
}

func extendedFailure(code LDAPResultCode, diagnostic string) ldap.ExtendedResponse {
	resp := newExtendedResponse(code)
	resp.SetDiagnosticMessage(diagnostic)
	return resp
}

func (e *extendedOp) next(c *Connection) (ldap.LDAPMessage, bool, bool) {
	return e.reply, true, true
}

// afterSend marks the connection for handoff to the reactor's Detach
// path once the StartTLS ack has been queued ahead of it. The actual
// handshake happens off the event loop entirely, in
// Connection.runDetachedTLS, once evio's Events.Detached fires.
func (e *extendedOp) afterSend(c *Connection) {
	if !e.startTLS {
		return
	}
	c.detachTLS = true
}
