package dnsmsg

import (
	"errors"
	"strings"
)

// maxJumps bounds the number of compression-pointer dereferences allowed
// while decoding a single name. Compression is a graph with possible
// cycles; a bounded counter catches both cycles and unreasonably long
// pointer chains in O(1) space, at the cost of not being a general
// cycle-exactness check.
const maxJumps = 5

// maxLabelLen is the largest a single dot-separated label may be.
const maxLabelLen = 63

// ErrJumpLimitExceeded is returned when decoding a name follows more than
// maxJumps compression pointers.
var ErrJumpLimitExceeded = errors.New("dnsmsg: name compression jump limit exceeded")

// ErrLabelTooLong is returned when encoding a label longer than
// maxLabelLen.
var ErrLabelTooLong = errors.New("dnsmsg: label exceeds 63 octets")

// ReadName decodes a (possibly compressed) domain name starting at the
// buffer's current cursor, returning it lowercased with labels joined by a
// '.' separator *between* labels — no leading or trailing dot, matching
// spec.md §4.B and §8's S2/S3 vectors ("www.example.com", not
// "www.example.com."). The root name decodes to "".
//
// Before the first pointer jump, the buffer's main cursor is advanced past
// the field that contained the name (either the terminating zero byte, or
// the 2-byte pointer); subsequent jumps only move a local working position
// and never touch the main cursor again, so the caller resumes reading
// right after the name field regardless of how many jumps decoding it took.
func (b *Buffer) ReadName() (string, error) {
	pos := b.Pos
	jumped := false
	jumps := 0

	var out strings.Builder
	delim := ""

	for {
		if jumps > maxJumps {
			return "", ErrJumpLimitExceeded
		}

		lenByte, err := b.PeekByte(pos)
		if err != nil {
			return "", err
		}

		if lenByte == 0 {
			pos++
			if !jumped {
				if err := b.Seek(pos); err != nil {
					return "", err
				}
			}
			return out.String(), nil
		}

		if lenByte&0xC0 == 0xC0 {
			next, err := b.PeekByte(pos + 1)
			if err != nil {
				return "", err
			}
			if !jumped {
				if err := b.Seek(pos + 2); err != nil {
					return "", err
				}
			}
			offset := (uint16(lenByte&^0xC0) << 8) | uint16(next)
			pos = int(offset)
			jumped = true
			jumps++
			continue
		}

		pos++
		labelLen := int(lenByte)
		if pos+labelLen > MaxPacketSize {
			return "", ErrEndOfBuffer
		}
		out.WriteString(delim)
		for i := 0; i < labelLen; i++ {
			c := b.Buf[pos+i]
			if c >= 'A' && c <= 'Z' {
				c += 32
			}
			out.WriteByte(c)
		}
		delim = "."
		pos += labelLen
	}
}

// WriteName encodes name as length-prefixed labels terminated by a zero
// byte. No compression is ever performed on write: every name is written
// out in full, label by label.
func WriteName(b *Buffer, name string) error {
	name = strings.TrimSuffix(name, ".")
	if name == "" {
		return b.WriteByte(0)
	}
	for _, label := range strings.Split(name, ".") {
		if len(label) > maxLabelLen {
			return ErrLabelTooLong
		}
		if err := b.WriteByte(byte(len(label))); err != nil {
			return err
		}
		for i := 0; i < len(label); i++ {
			if err := b.WriteByte(label[i]); err != nil {
				return err
			}
		}
	}
	return b.WriteByte(0)
}
