package ldapserver

import (
	"testing"
	"time"

	"github.com/dbaarda/entente/accounts"
)

// testConnection builds a Connection with no live evio.Conn attached
// (nil), matching a detached/test connection: armDelay degrades to
// setting the deadline without scheduling a wake, which is fine since
// these tests drive delayActive/recvMessage directly rather than
// through the reactor.
func testConnection(t *testing.T, recvCap int) *Connection {
	t.Helper()

	s, err := Init(Config{
		Addr:        "unused",
		BaseDN:      "dc=example,dc=com",
		Accounts:    &accounts.PasswdSource{PasswdPath: "/dev/null", GroupPath: "/dev/null"},
		RecvBufSize: recvCap,
	})
	if err != nil {
		t.Fatal(err)
	}
	return newConnection(s, 1, nil)
}

func TestDelayActiveExpires(t *testing.T) {
	c := testConnection(t, 256)
	if c.delayActive() {
		t.Fatal("no delay armed should not be active")
	}
	c.armDelay(10 * time.Millisecond)
	if !c.delayActive() {
		t.Fatal("freshly armed delay should be active")
	}
	time.Sleep(20 * time.Millisecond)
	if c.delayActive() {
		t.Fatal("expired delay should no longer be active")
	}
	// delayActive clears the deadline once expired.
	if !c.delayUntil.IsZero() {
		t.Fatal("expired deadline should be reset to zero")
	}
}

func TestRecvMessageWantMoreOnPartialHeader(t *testing.T) {
	c := testConnection(t, 256)
	c.recvBuf.MarkWritten(copy(c.recvBuf.WriteRegion(), []byte{0x30}))
	_, status := c.recvMessage()
	if status != recvWantMore {
		t.Fatalf("status = %v, want recvWantMore", status)
	}
}

func TestRecvMessageFailsWhenOversizedForBuffer(t *testing.T) {
	c := testConnection(t, 16)
	// SEQUENCE, long-form length claiming far more bytes than the buffer
	// could ever hold: tag 0x30, length-of-length 0x82, then 0xFFFF.
	n := copy(c.recvBuf.WriteRegion(), []byte{0x30, 0x82, 0xff, 0xff})
	c.recvBuf.MarkWritten(n)
	_, status := c.recvMessage()
	if status != recvFail {
		t.Fatalf("status = %v, want recvFail", status)
	}
}

func TestRecvMessageFailsWhenBufferFullWithoutCompleteMessage(t *testing.T) {
	c := testConnection(t, 1)
	// Only the tag byte fits; the buffer is already completely full, so
	// no further read could ever stage enough to even know the length.
	n := copy(c.recvBuf.WriteRegion(), []byte{0x30})
	c.recvBuf.MarkWritten(n)
	_, status := c.recvMessage()
	if status != recvFail {
		t.Fatalf("status = %v, want recvFail (buffer full, no progress possible)", status)
	}
}

func TestRecvMessageWantsMoreWhileDelayActive(t *testing.T) {
	c := testConnection(t, 256)
	c.armDelay(time.Minute)
	n := copy(c.recvBuf.WriteRegion(), []byte{0x30, 0x03, 0x02, 0x01, 0x00})
	c.recvBuf.MarkWritten(n)
	_, status := c.recvMessage()
	if status != recvWantMore {
		t.Fatalf("status = %v, want recvWantMore while delay is armed", status)
	}
}
