// Package dnsmsg implements a fixed-capacity DNS wire-format codec: a
// 512-byte cursor-backed buffer, name compression, the 12-byte header, and
// question/record/packet encoding for a minimal set of record types.
package dnsmsg

import "errors"

// MaxPacketSize is the hard ceiling for a DNS-over-UDP message this codec
// will read or write. There is no EDNS(0) size negotiation and no TCP
// fallback; every buffer is exactly this many bytes.
const MaxPacketSize = 512

// ErrEndOfBuffer is returned by any operation that would read or write past
// byte 512.
var ErrEndOfBuffer = errors.New("dnsmsg: end of buffer")

// Buffer is a mutable 512-byte array plus a position cursor. All reads and
// writes are bounds-checked against MaxPacketSize; the cursor only moves
// forward on sequential ops but can be explicitly repositioned with Seek
// (used by name-compression pointer traversal).
type Buffer struct {
	Buf [MaxPacketSize]byte
	Pos int
}

// NewBuffer returns an empty buffer ready for writing.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Load resets the buffer and copies data into it for decoding.
func (b *Buffer) Load(data []byte) {
	b.Pos = 0
	n := copy(b.Buf[:], data)
	for i := n; i < MaxPacketSize; i++ {
		b.Buf[i] = 0
	}
}

// Position returns the current cursor position.
func (b *Buffer) Position() int {
	return b.Pos
}

// Step advances the cursor by steps without touching the underlying bytes.
func (b *Buffer) Step(steps int) error {
	if b.Pos+steps > MaxPacketSize || b.Pos+steps < 0 {
		return ErrEndOfBuffer
	}
	b.Pos += steps
	return nil
}

// Seek repositions the cursor, used when following a compression pointer.
func (b *Buffer) Seek(pos int) error {
	if pos < 0 || pos > MaxPacketSize {
		return ErrEndOfBuffer
	}
	b.Pos = pos
	return nil
}

// ReadByte reads and consumes a single byte at the cursor.
func (b *Buffer) ReadByte() (byte, error) {
	if b.Pos >= MaxPacketSize {
		return 0, ErrEndOfBuffer
	}
	v := b.Buf[b.Pos]
	b.Pos++
	return v, nil
}

// ReadU16 reads a big-endian 16-bit value at the cursor.
func (b *Buffer) ReadU16() (uint16, error) {
	hi, err := b.ReadByte()
	if err != nil {
		return 0, err
	}
	lo, err := b.ReadByte()
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

// ReadU32 reads a big-endian 32-bit value at the cursor.
func (b *Buffer) ReadU32() (uint32, error) {
	hi, err := b.ReadU16()
	if err != nil {
		return 0, err
	}
	lo, err := b.ReadU16()
	if err != nil {
		return 0, err
	}
	return uint32(hi)<<16 | uint32(lo), nil
}

// PeekByte reads the byte at pos without moving the cursor.
func (b *Buffer) PeekByte(pos int) (byte, error) {
	if pos >= MaxPacketSize || pos < 0 {
		return 0, ErrEndOfBuffer
	}
	return b.Buf[pos], nil
}

// PeekRange returns a borrowed slice of length bytes starting at start,
// without moving the cursor.
//
// The bound check here is deliberately off by one relative to PeekByte:
// start+length >= 512 is rejected (not > 512), so the last byte of the
// buffer is unreachable through PeekRange even though PeekByte/ReadByte can
// reach it. This is preserved from the reference design for round-trip
// fidelity, not a bug introduced here.
func (b *Buffer) PeekRange(start, length int) ([]byte, error) {
	if start < 0 || length < 0 || start+length >= MaxPacketSize {
		return nil, ErrEndOfBuffer
	}
	return b.Buf[start : start+length], nil
}

// WriteByte writes a single byte at the cursor and advances it.
func (b *Buffer) WriteByte(v byte) error {
	if b.Pos >= MaxPacketSize {
		return ErrEndOfBuffer
	}
	b.Buf[b.Pos] = v
	b.Pos++
	return nil
}

// WriteU16 writes a big-endian 16-bit value at the cursor.
func (b *Buffer) WriteU16(v uint16) error {
	if err := b.WriteByte(byte(v >> 8)); err != nil {
		return err
	}
	return b.WriteByte(byte(v))
}

// WriteU32 writes a big-endian 32-bit value at the cursor.
func (b *Buffer) WriteU32(v uint32) error {
	if err := b.WriteU16(uint16(v >> 16)); err != nil {
		return err
	}
	return b.WriteU16(uint16(v))
}

// BackPatchByte overwrites the byte at pos without moving the cursor.
func (b *Buffer) BackPatchByte(pos int, v byte) error {
	if pos >= MaxPacketSize || pos < 0 {
		return ErrEndOfBuffer
	}
	b.Buf[pos] = v
	return nil
}

// BackPatchU16 overwrites the big-endian 16-bit value at pos without moving
// the cursor. Used by record writers that reserve an RDLENGTH slot, emit
// the body, then patch the real length back in.
func (b *Buffer) BackPatchU16(pos int, v uint16) error {
	if pos+2 > MaxPacketSize || pos < 0 {
		return ErrEndOfBuffer
	}
	b.Buf[pos] = byte(v >> 8)
	b.Buf[pos+1] = byte(v)
	return nil
}
