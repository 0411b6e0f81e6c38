package zc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStringAliases(t *testing.T) {
	b := []byte("hello")
	s := String(b)
	require.Equal(t, "hello", s)
	b[0] = 'j'
	require.Equal(t, "jello", s)

	require.Equal(t, "", String(nil))
	require.Equal(t, "", String([]byte{}))
}

func TestBytes(t *testing.T) {
	const s = "payload"
	b := Bytes(s)
	require.Len(t, b, len(s))
	require.Equal(t, len(s), cap(b))
	require.Equal(t, s, string(b))
	require.Nil(t, Bytes(""))
}

func TestOverlaps(t *testing.T) {
	buf := make([]byte, 16)
	require.True(t, Overlaps(buf[0:8], buf[4:12]))
	require.True(t, Overlaps(buf[4:12], buf[0:8]))
	require.False(t, Overlaps(buf[0:4], buf[4:8]))
	require.False(t, Overlaps(buf[0:0], buf))
	require.False(t, Overlaps(buf, make([]byte, 4)))
}

func BenchmarkString(b *testing.B) {
	buf := []byte("Hello I'm Test 1")
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = String(buf)
	}
}
