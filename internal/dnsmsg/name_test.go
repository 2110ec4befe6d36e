package dnsmsg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteNameThenReadName(t *testing.T) {
	b := NewBuffer()
	require.NoError(t, WriteName(b, "www.example.com"))
	b.Pos = 0
	name, err := b.ReadName()
	require.NoError(t, err)
	require.Equal(t, "www.example.com", name)
}

func TestReadNameFollowsCompressionPointer(t *testing.T) {
	// "example.com" written at offset 12, followed by a pointer to it.
	b := NewBuffer()
	b.Pos = 12
	require.NoError(t, WriteName(b, "example.com"))
	pointerPos := b.Position()
	require.NoError(t, b.WriteU16(0xC000|12))

	b.Pos = pointerPos
	name, err := b.ReadName()
	require.NoError(t, err)
	require.Equal(t, "example.com", name)
	// The main cursor must land just past the 2-byte pointer, not inside
	// the target label sequence.
	require.Equal(t, pointerPos+2, b.Position())
}

func TestReadNameJumpLimitExceeded(t *testing.T) {
	b := NewBuffer()
	// A pointer at offset 0 that points to itself loops forever without a
	// jump-limit defense.
	require.NoError(t, b.WriteU16(0xC000|0))
	b.Pos = 0
	_, err := b.ReadName()
	require.ErrorIs(t, err, ErrJumpLimitExceeded)
}

func TestWriteNameRejectsLongLabel(t *testing.T) {
	b := NewBuffer()
	longLabel := strings.Repeat("a", 64)
	err := WriteName(b, longLabel+".com")
	require.ErrorIs(t, err, ErrLabelTooLong)
}

func TestWriteNameAcceptsMaxLabel(t *testing.T) {
	b := NewBuffer()
	label := strings.Repeat("a", 63)
	require.NoError(t, WriteName(b, label+".com"))
}

func TestWriteNameRoot(t *testing.T) {
	b := NewBuffer()
	require.NoError(t, WriteName(b, "."))
	require.Equal(t, byte(0), b.Buf[0])
	require.Equal(t, 1, b.Position())
}
