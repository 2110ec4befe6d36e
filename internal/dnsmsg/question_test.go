package dnsmsg

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// S2 from spec.md §8, following S1's header.
func TestReadQuestionS2(t *testing.T) {
	raw := []byte{
		0x03, 0x77, 0x77, 0x77, 0x07, 0x65, 0x78, 0x61, 0x6d, 0x70, 0x6c, 0x65,
		0x03, 0x63, 0x6f, 0x6d, 0x00, 0x00, 0x01, 0x00, 0x01,
	}
	b := NewBuffer()
	b.Load(raw)

	q, err := ReadQuestion(b)
	require.NoError(t, err)
	require.Equal(t, "www.example.com", q.Name)
	require.Equal(t, QTypeA, q.Type)
}

func TestQuestionRoundTrip(t *testing.T) {
	q := Question{Name: "www.example.com", Type: QTypeMX}
	b := NewBuffer()
	require.NoError(t, q.Write(b))
	b.Pos = 0
	got, err := ReadQuestion(b)
	require.NoError(t, err)
	require.Equal(t, q.Name, got.Name)
	require.Equal(t, q.Type, got.Type)
}
