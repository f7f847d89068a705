package ldapserver

import (
	"bytes"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"time"

	evio "github.com/jursonmo/evio"
	ldap "github.com/lor00x/goldap/message"

	"github.com/dbaarda/entente/ber"
	"github.com/dbaarda/entente/bytebuf"
)

// Connection is one accepted client socket and its in-flight request
// pipeline, per spec.md §4.2. For its entire lifetime on the reactor, it
// is only ever touched from the single evio event-loop goroutine that
// owns it (Events.Data/Opened/Closed all run on that one thread), so —
// same as the original libev-based design — there is no locking. The
// one exception is the brief window after a StartTLS handshake is
// requested: the connection is handed off (evio's Detach) to a
// dedicated goroutine for the blocking TLS handshake, per spec.md §4.3
// Design Note (a); from then on that goroutine, and only that goroutine,
// drives the connection directly with blocking I/O.
type Connection struct {
	server *Server
	id     uint64

	evc                  evio.Conn // set while reactor-managed; nil once detached
	localAddr, remoteAddr net.Addr

	recvBuf *bytebuf.Buffer
	out     bytes.Buffer // replies produced this turn; handed to the caller and not retained

	pipeline *pipeline

	delayUntil time.Time
	delayTimer *time.Timer

	boundUID  int
	anonymous bool
	isRoot    bool

	closed    bool
	detachTLS bool // set by extendedOp.afterSend once a StartTLS ack has been queued
}

func newConnection(s *Server, id uint64, evc evio.Conn) *Connection {
	return &Connection{
		server:    s,
		id:        id,
		evc:       evc,
		recvBuf:   bytebuf.New(s.config.recvBufSize()),
		pipeline:  newPipeline(),
		anonymous: true,
	}
}

// onData runs one respond() turn for bytes the reactor just delivered —
// either newly arrived input (Events.Data) or a wake with no input
// (after evc.Wake(), used to resume a connection once an armed delay has
// elapsed; see armDelay). It never blocks.
func (c *Connection) onData(in []byte) ([]byte, evio.Action) {
	if len(in) > 0 {
		if len(in) > len(c.recvBuf.WriteRegion()) {
			return nil, evio.Close
		}
		n := copy(c.recvBuf.WriteRegion(), in)
		c.recvBuf.MarkWritten(n)
	}

	c.respond()

	out := c.out.Bytes()
	c.out = bytes.Buffer{}

	switch {
	case c.detachTLS:
		return out, evio.Detach
	case c.closed:
		return out, evio.Close
	default:
		return out, evio.None
	}
}

// respond is the single entry point that turns staged input into staged
// output, per the contract in spec.md §4.2: decode and dispatch
// everything fully buffered, then round-robin the pipeline until a
// request blocks (only possible connection-wide, via the delay gate) or
// the pipeline drains.
func (c *Connection) respond() {
	for {
		msg, status := c.recvMessage()
		if status == recvWantMore {
			break
		}
		if status == recvFail {
			c.closed = true
			return
		}
		if c.dispatch(msg) {
			c.closed = true
			return
		}
	}

	for c.pipeline.Len() > 0 {
		req := c.pipeline.Current()
		switch req.respond(c) {
		case reqSent:
			c.pipeline.Advance()
		case reqDone:
			c.pipeline.Remove(req)
		case reqBlocked:
			// Only the delay gate can block a request (output is no
			// longer bounded by a fixed send buffer — see sendMessage),
			// and the delay gates the whole connection, so nothing else
			// in the pipeline can progress either.
			return
		case reqFail:
			c.closed = true
			return
		}
	}
}

type recvStatus int

const (
	recvOK recvStatus = iota
	recvWantMore
	recvFail
)

// recvMessage decodes one complete LDAPMessage from recvBuf, if one is
// staged. Per spec.md §4.2, no reads or decodes happen while a delay is
// armed, and a buffer that fills up without ever holding one complete
// message is a fatal protocol error.
func (c *Connection) recvMessage() (ldap.LDAPMessage, recvStatus) {
	if c.delayActive() {
		return ldap.LDAPMessage{}, recvWantMore
	}

	staged := c.recvBuf.ReadRegion()
	length, err := ber.MessageLen(staged)
	if err != nil {
		if errors.Is(err, ber.ErrIncomplete) {
			if c.recvBuf.Full() {
				return ldap.LDAPMessage{}, recvFail
			}
			return ldap.LDAPMessage{}, recvWantMore
		}
		return ldap.LDAPMessage{}, recvFail
	}
	if length > c.recvBuf.Cap() {
		return ldap.LDAPMessage{}, recvFail
	}
	if length > len(staged) {
		if c.recvBuf.Full() {
			return ldap.LDAPMessage{}, recvFail
		}
		return ldap.LDAPMessage{}, recvWantMore
	}

	msg, err := ldap.ReadLDAPMessage(bytes.NewReader(staged[:length]))
	if err != nil {
		return ldap.LDAPMessage{}, recvFail
	}
	c.recvBuf.MarkConsumed(length)
	return msg, recvOK
}

type sendStatus int

const (
	sendOK sendStatus = iota
	sendWantMore
	sendFail
)

// sendMessage encodes msg onto this turn's output. Unlike recvBuf, the
// output has no fixed capacity: once a reply leaves the pipeline it
// belongs to the caller (the reactor's own per-connection write queue,
// or the detached blocking writer), which owns backpressure against the
// socket — matching a readiness-driven reactor, where the event loop's
// write buffer, not the application, absorbs a slow reader. The only
// reason a send can't proceed is the connection-wide delay gate.
func (c *Connection) sendMessage(msg ldap.LDAPMessage) sendStatus {
	if c.delayActive() {
		return sendWantMore
	}
	if _, err := msg.Write(&c.out); err != nil {
		return sendFail
	}
	return sendOK
}

// dispatch decodes one envelope's operation and either queues a Request
// onto the pipeline or handles it immediately (Abandon, Unbind). It
// returns true if the connection should close once any already-staged
// replies are handed back to the caller.
func (c *Connection) dispatch(msg ldap.LDAPMessage) bool {
	messageID := int(msg.MessageID())
	switch op := msg.ProtocolOp().(type) {
	case ldap.BindRequest:
		c.pipeline.Add(newRequest(messageID, newBindOp(messageID, op)))
	case ldap.SearchRequest:
		c.pipeline.Add(newRequest(messageID, newSearchOp(messageID, op, c)))
	case ldap.ExtendedRequest:
		c.pipeline.Add(newRequest(messageID, newExtendedOp(messageID, op, c)))
	case ldap.AbandonRequest:
		c.pipeline.Abandon(int(op.MessageID()))
	case ldap.UnbindRequest:
		return true
	default:
		c.server.logger().Printf("conn %d: unsupported operation %T", c.id, op)
		return true
	}
	return false
}

func (c *Connection) delayActive() bool {
	if c.delayUntil.IsZero() {
		return false
	}
	if time.Now().Before(c.delayUntil) {
		return true
	}
	c.delayUntil = time.Time{}
	return false
}

// armDelay blocks both recv and send until it elapses (per spec.md
// §4.4's delay gate), and schedules a wake so the connection resumes on
// its own once the delay is over even if the client sends nothing more
// in the meantime — the reactor equivalent of the original's ev_timer +
// delay_cb.
func (c *Connection) armDelay(d time.Duration) {
	c.delayUntil = time.Now().Add(d)
	if c.delayTimer != nil {
		c.delayTimer.Stop()
	}
	evc := c.evc
	if evc == nil {
		return // detached: runBlocking's own sleep loop handles this instead
	}
	c.delayTimer = time.AfterFunc(d, func() {
		evc.Wake()
	})
}

func (c *Connection) cancelDelay() {
	if c.delayTimer != nil {
		c.delayTimer.Stop()
	}
}

// runDetachedTLS performs the StartTLS handshake on a connection the
// reactor has just handed off (spec.md §4.3 Design Note (a): the
// handshake is the one piece of this protocol that genuinely wants a
// blocking call, so it runs off the shared event loop rather than
// forcing a non-blocking record-layer pump onto it). Design Note (b): a
// failed handshake does not end the connection — it keeps running,
// cleartext, on the same goroutine.
func (c *Connection) runDetachedTLS(rwc io.ReadWriteCloser) {
	raw := &rawConn{ReadWriteCloser: rwc, laddr: c.localAddr, raddr: c.remoteAddr}
	var conn net.Conn = raw

	tlsConn := tls.Server(raw, c.server.config.TLSConfig)
	if err := tlsConn.Handshake(); err != nil {
		c.server.logger().Printf("conn %d: TLS handshake failed, continuing in cleartext: %v", c.id, err)
	} else {
		conn = tlsConn
	}
	c.runBlocking(conn)
}

// runBlocking drives the remainder of a detached connection's lifetime
// with a plain read-decode-respond-write cycle. It reuses the same
// respond() the reactor path uses; only how input arrives and output
// leaves differs.
func (c *Connection) runBlocking(conn net.Conn) {
	defer conn.Close()
	for !c.closed {
		if c.delayActive() {
			time.Sleep(time.Until(c.delayUntil))
		} else {
			if c.server.config.ReadTimeout > 0 {
				conn.SetReadDeadline(time.Now().Add(c.server.config.ReadTimeout))
			}
			n, err := conn.Read(c.recvBuf.WriteRegion())
			if err != nil {
				if ne, ok := err.(net.Error); ok && ne.Timeout() {
					continue
				}
				return
			}
			if n == 0 {
				return
			}
			c.recvBuf.MarkWritten(n)
		}

		c.respond()

		if c.out.Len() > 0 {
			if c.server.config.WriteTimeout > 0 {
				conn.SetWriteDeadline(time.Now().Add(c.server.config.WriteTimeout))
			}
			if _, err := conn.Write(c.out.Bytes()); err != nil {
				return
			}
			c.out = bytes.Buffer{}
		}
	}
}

// rawConn adapts the io.ReadWriteCloser evio hands back on Detach into a
// net.Conn, which both tls.Server and runBlocking need. Deadlines are
// no-ops: the underlying fd is back in blocking mode once detached (per
// evio's own detach contract), so callers set deadlines on it via
// SetReadDeadline/SetWriteDeadline only as a courtesy; this adapter
// can't forward them without syscall access to the raw fd.
type rawConn struct {
	io.ReadWriteCloser
	laddr, raddr net.Addr
}

func (r *rawConn) LocalAddr() net.Addr                { return r.laddr }
func (r *rawConn) RemoteAddr() net.Addr               { return r.raddr }
func (r *rawConn) SetDeadline(time.Time) error      { return nil }
func (r *rawConn) SetReadDeadline(time.Time) error  { return nil }
func (r *rawConn) SetWriteDeadline(time.Time) error { return nil }
