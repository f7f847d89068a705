// Package bytebuf provides a fixed-capacity byte staging buffer with
// independent read and write cursors, used to stage inbound and outbound
// octets for a single LDAP connection.
package bytebuf

// DefaultCapacity is used by connections that don't override it. It must
// exceed the largest encoded LDAPMessage the server is willing to accept.
const DefaultCapacity = 32 * 1024

// Buffer is a fixed-capacity byte staging area with a write cursor and a
// read cursor. Data between the read and write cursors is unconsumed.
// Once consumed, the remaining unconsumed bytes are shuffled to the start
// of the backing array so the next write region is always contiguous.
type Buffer struct {
	buf   []byte
	start int // read cursor
	end   int // write cursor
}

// New returns a Buffer with the given fixed capacity.
func New(capacity int) *Buffer {
	return &Buffer{buf: make([]byte, capacity)}
}

// Cap returns the buffer's fixed capacity.
func (b *Buffer) Cap() int {
	return len(b.buf)
}

// Len returns the number of unconsumed bytes currently staged.
func (b *Buffer) Len() int {
	return b.end - b.start
}

// Full reports whether the buffer has no room left to write into.
func (b *Buffer) Full() bool {
	return b.end == len(b.buf)
}

// Empty reports whether there is no unconsumed data.
func (b *Buffer) Empty() bool {
	return b.start == b.end
}

// WriteRegion returns the slice that a reader may fill with new bytes.
// Callers must call MarkWritten with however many bytes were actually
// written before reading from the buffer again.
func (b *Buffer) WriteRegion() []byte {
	return b.buf[b.end:]
}

// MarkWritten records that n bytes were written into the slice returned
// by WriteRegion. It panics if n would overflow the backing array, same
// as the C original's buffer_appended assertion.
func (b *Buffer) MarkWritten(n int) {
	if b.end+n > len(b.buf) {
		panic("bytebuf: MarkWritten exceeds capacity")
	}
	b.end += n
}

// ReadRegion returns the unconsumed bytes currently staged.
func (b *Buffer) ReadRegion() []byte {
	return b.buf[b.start:b.end]
}

// MarkConsumed records that n bytes were consumed from the front of
// ReadRegion, then shuffles any remaining unconsumed bytes to the start
// of the backing array so the next WriteRegion is contiguous, mirroring
// buffer_consumed in the C original.
func (b *Buffer) MarkConsumed(n int) {
	if n > b.Len() {
		panic("bytebuf: MarkConsumed exceeds unconsumed length")
	}
	b.start += n
	if b.start == b.end {
		b.start, b.end = 0, 0
		return
	}
	remaining := b.end - b.start
	copy(b.buf[:remaining], b.buf[b.start:b.end])
	b.start, b.end = 0, remaining
}

// Reset discards all staged data.
func (b *Buffer) Reset() {
	b.start, b.end = 0, 0
}
