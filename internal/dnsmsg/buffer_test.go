package dnsmsg

import "testing"

func TestBufferReadWriteRoundTrip(t *testing.T) {
	b := NewBuffer()
	if err := b.WriteU16(0x862A); err != nil {
		t.Fatalf("WriteU16: %v", err)
	}
	if err := b.WriteU32(0xDEADBEEF); err != nil {
		t.Fatalf("WriteU32: %v", err)
	}
	b.Pos = 0

	id, err := b.ReadU16()
	if err != nil || id != 0x862A {
		t.Fatalf("ReadU16 = %x, %v, want 0x862A", id, err)
	}
	v, err := b.ReadU32()
	if err != nil || v != 0xDEADBEEF {
		t.Fatalf("ReadU32 = %x, %v, want 0xDEADBEEF", v, err)
	}
}

func TestBufferEndOfBufferBounds(t *testing.T) {
	b := NewBuffer()
	b.Pos = MaxPacketSize
	if _, err := b.ReadByte(); err != ErrEndOfBuffer {
		t.Fatalf("ReadByte at end = %v, want ErrEndOfBuffer", err)
	}
	if err := b.WriteByte(1); err != ErrEndOfBuffer {
		t.Fatalf("WriteByte at end = %v, want ErrEndOfBuffer", err)
	}
}

func TestPeekRangeStrictBound(t *testing.T) {
	b := NewBuffer()
	// The last byte (511) is reachable by PeekByte but not by PeekRange:
	// PeekRange rejects start+length >= 512, an off-by-one preserved from
	// the reference design.
	if _, err := b.PeekByte(MaxPacketSize - 1); err != nil {
		t.Fatalf("PeekByte(511) = %v, want nil", err)
	}
	if _, err := b.PeekRange(MaxPacketSize-1, 1); err != ErrEndOfBuffer {
		t.Fatalf("PeekRange(511,1) = %v, want ErrEndOfBuffer", err)
	}
	if _, err := b.PeekRange(MaxPacketSize-2, 1); err != nil {
		t.Fatalf("PeekRange(510,1) = %v, want nil", err)
	}
}

func TestBackPatchU16(t *testing.T) {
	b := NewBuffer()
	pos := b.Position()
	if err := b.WriteU16(0); err != nil {
		t.Fatal(err)
	}
	if err := b.WriteByte('x'); err != nil {
		t.Fatal(err)
	}
	if err := b.BackPatchU16(pos, 42); err != nil {
		t.Fatal(err)
	}
	b.Pos = pos
	v, _ := b.ReadU16()
	if v != 42 {
		t.Fatalf("patched value = %d, want 42", v)
	}
}
