package alloc

import (
	"runtime/debug"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func testAllocator(t *testing.T, a Allocator) {
	t.Helper()
	b, err := a.Alloc(8)
	require.NoError(t, err)
	require.Len(t, b, 8)
	copy(b, "abcdefgh")

	b, err = a.Realloc(b, 64)
	require.NoError(t, err)
	require.Len(t, b, 64)
	require.Equal(t, "abcdefgh", string(b[:8]))

	b, err = a.Realloc(b, 4)
	require.NoError(t, err)
	require.Equal(t, "abcd", string(b))
	a.Free(b)

	_, err = a.Alloc(-1)
	require.ErrorIs(t, err, ErrNegativeLen)
	_, err = a.Realloc(nil, -1)
	require.ErrorIs(t, err, ErrNegativeLen)
}

func TestHeap(t *testing.T) {
	testAllocator(t, Heap)
}

func TestPool(t *testing.T) {
	p := NewPool()
	testAllocator(t, p)

	for i := 0; i < 100; i++ {
		b, err := p.Alloc(100)
		require.NoError(t, err)
		require.Len(t, b, 100)
		p.Free(b)
	}
	p.Free(nil)
}

func TestPoolReusesAfterCalibration(t *testing.T) {
	defer debug.SetGCPercent(debug.SetGCPercent(-1))

	p := NewPool()
	// enough frees to trigger bytebufferpool calibration several times
	for i := 0; i < 100000; i++ {
		b, err := p.Alloc(1000)
		require.NoError(t, err)
		p.Free(b)
	}

	prev, err := p.Alloc(1000)
	require.NoError(t, err)
	p.Free(prev)
	reused := 0
	for i := 0; i < 100; i++ {
		b, err := p.Alloc(1000)
		require.NoError(t, err)
		require.GreaterOrEqual(t, cap(b), 1000)
		if &b[0] == &prev[0] {
			reused++
		}
		p.Free(b)
		prev = b
	}
	require.Positive(t, reused)
}

func TestLimited(t *testing.T) {
	l := NewLimited(nil, 32)
	testAllocator(t, NewLimited(Heap, 1024))

	a, err := l.Alloc(16)
	require.NoError(t, err)
	require.Equal(t, 16, l.Used())

	_, err = l.Alloc(17)
	require.ErrorIs(t, err, ErrOutOfMemory)
	require.Equal(t, 16, l.Used())

	_, err = l.Realloc(a, 33)
	require.ErrorIs(t, err, ErrOutOfMemory)
	require.Equal(t, 16, l.Used())

	a, err = l.Realloc(a, 32)
	require.NoError(t, err)
	require.Equal(t, 32, l.Used())

	a, err = l.Realloc(a, 8)
	require.NoError(t, err)
	require.Equal(t, 8, l.Used())

	l.Free(a)
	require.Zero(t, l.Used())
}

func TestInstrument(t *testing.T) {
	m := NewMetrics("test")
	reg := prometheus.NewRegistry()
	require.NoError(t, m.Register(reg))
	require.NoError(t, m.Register(reg))

	a := Instrument(NewLimited(Heap, 10), m)
	b, err := a.Alloc(6)
	require.NoError(t, err)
	_, err = a.Alloc(6)
	require.ErrorIs(t, err, ErrOutOfMemory)
	b, err = a.Realloc(b, 10)
	require.NoError(t, err)
	a.Free(b)

	require.Equal(t, 2.0, testutil.ToFloat64(m.Allocs))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Reallocs))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Frees))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Failures))
	require.Equal(t, 16.0, testutil.ToFloat64(m.Bytes))
}

func BenchmarkPoolAlloc(b *testing.B) {
	p := NewPool()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		buf, _ := p.Alloc(256)
		p.Free(buf)
	}
}
