package ldapserver

import (
	"container/list"

	ldap "github.com/lor00x/goldap/message"
)

// operation produces the reply stream for one pipelined request. next is
// called repeatedly by Request.respond:
//
//   - ok==true:  msg is the next reply to send. done indicates whether it
//     is the last one (the request is complete once it's sent).
//   - ok==false, done==false: not ready yet (e.g. a bind delay gate is
//     still armed); the caller should try again later without having
//     consumed anything.
//   - ok==false, done==true: the request is complete with no further
//     reply (Abandon uses this implicitly by removing the request
//     before next is ever called again).
type operation interface {
	next(c *Connection) (msg ldap.LDAPMessage, ok bool, done bool)
}

// afterSender is implemented by operations that need to run connection
// side effects once their final reply has been queued for delivery,
// e.g. StartTLS's handshake.
type afterSender interface {
	afterSend(c *Connection)
}

// Request is one pipelined client request: an operation plus the
// bookkeeping respond() needs to retry a reply the connection-wide delay
// gate deferred, without re-invoking the operation.
type Request struct {
	messageID int
	op        operation

	pending     *ldap.LDAPMessage
	pendingDone bool

	elem *list.Element
}

func newRequest(messageID int, op operation) *Request {
	return &Request{messageID: messageID, op: op}
}

type requestStatus int

const (
	reqBlocked requestStatus = iota
	reqSent
	reqDone
	reqFail
)

// respond advances this request by at most one reply, per the fairness
// contract in spec.md §4.4: each call sends zero or one message.
func (r *Request) respond(c *Connection) requestStatus {
	if r.pending == nil {
		msg, ok, done := r.op.next(c)
		if !ok {
			if done {
				return reqDone
			}
			return reqBlocked
		}
		r.pending = &msg
		r.pendingDone = done
	}

	switch c.sendMessage(*r.pending) {
	case sendOK:
		done := r.pendingDone
		r.pending = nil
		if done {
			if a, ok := r.op.(afterSender); ok {
				a.afterSend(c)
			}
			return reqDone
		}
		return reqSent
	case sendWantMore:
		return reqBlocked
	default:
		return reqFail
	}
}
