// Package alloc supplies the growable buffers behind owned strings.
//
// An Allocator hands out byte slices of an exact length, grows them with a
// copy, and takes them back. Buffers returned to Free must not be used again.
package alloc

import (
	"errors"
	"fmt"
	"sync"

	"github.com/valyala/bytebufferpool"
)

var (
	ErrOutOfMemory = errors.New("alloc: out of memory")
	ErrNegativeLen = errors.New("alloc: negative length")
)

// Allocator is the growable-buffer collaborator used by owned strings.
type Allocator interface {
	// Alloc returns a buffer of length n. Its contents are unspecified.
	Alloc(n int) ([]byte, error)
	// Realloc returns a buffer of length n holding the first min(len(b), n)
	// bytes of b. On success b belongs to the allocator again; on failure
	// b is untouched and still owned by the caller.
	Realloc(b []byte, n int) ([]byte, error)
	// Free returns b to the allocator.
	Free(b []byte)
}

// Heap allocates with make and leaves freeing to the garbage collector.
var Heap Allocator = heap{}

type heap struct{}

func (heap) Alloc(n int) ([]byte, error) {
	if n < 0 {
		return nil, ErrNegativeLen
	}
	return make([]byte, n), nil
}

func (heap) Realloc(b []byte, n int) ([]byte, error) {
	if n < 0 {
		return nil, ErrNegativeLen
	}
	if n <= cap(b) {
		return b[:n], nil
	}
	nb := make([]byte, n)
	copy(nb, b)
	return nb, nil
}

func (heap) Free([]byte) {}

// Pool recycles freed buffers through a calibrated bytebufferpool.Pool, so a
// workload that repeatedly builds strings of similar size stops allocating.
// It is safe for concurrent use.
type Pool struct {
	p bytebufferpool.Pool
}

// NewPool returns an empty pool.
func NewPool() *Pool {
	return &Pool{}
}

func (p *Pool) Alloc(n int) ([]byte, error) {
	if n < 0 {
		return nil, ErrNegativeLen
	}
	bb := p.p.Get()
	if cap(bb.B) < n {
		bb.B = make([]byte, n)
	}
	return bb.B[:n], nil
}

func (p *Pool) Realloc(b []byte, n int) ([]byte, error) {
	if n < 0 {
		return nil, ErrNegativeLen
	}
	if n <= cap(b) {
		return b[:n], nil
	}
	nb, err := p.Alloc(n)
	if err != nil {
		return nil, err
	}
	copy(nb, b)
	p.Free(b)
	return nb, nil
}

func (p *Pool) Free(b []byte) {
	if cap(b) == 0 {
		return
	}
	// Put calibrates on len and resets the buffer itself.
	p.p.Put(&bytebufferpool.ByteBuffer{B: b[:cap(b)]})
}

// Limited caps the number of outstanding bytes handed out by A. Requests that
// would exceed Budget fail with ErrOutOfMemory. It is safe for concurrent use.
type Limited struct {
	A      Allocator
	Budget int

	mu   sync.Mutex
	used int
}

// NewLimited wraps a (Heap when nil) with a byte budget.
func NewLimited(a Allocator, budget int) *Limited {
	if a == nil {
		a = Heap
	}
	return &Limited{A: a, Budget: budget}
}

// Used returns the number of bytes currently handed out.
func (l *Limited) Used() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.used
}

func (l *Limited) reserve(delta int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.used+delta > l.Budget {
		return fmt.Errorf("%w: %d bytes requested, %d of %d in use", ErrOutOfMemory, delta, l.used, l.Budget)
	}
	l.used += delta
	return nil
}

func (l *Limited) release(n int) {
	l.mu.Lock()
	l.used -= n
	l.mu.Unlock()
}

func (l *Limited) Alloc(n int) ([]byte, error) {
	if n < 0 {
		return nil, ErrNegativeLen
	}
	if err := l.reserve(n); err != nil {
		return nil, err
	}
	b, err := l.A.Alloc(n)
	if err != nil {
		l.release(n)
		return nil, err
	}
	return b, nil
}

func (l *Limited) Realloc(b []byte, n int) ([]byte, error) {
	if n < 0 {
		return nil, ErrNegativeLen
	}
	delta := n - len(b)
	if delta > 0 {
		if err := l.reserve(delta); err != nil {
			return nil, err
		}
	}
	nb, err := l.A.Realloc(b, n)
	if err != nil {
		if delta > 0 {
			l.release(delta)
		}
		return nil, err
	}
	if delta < 0 {
		l.release(-delta)
	}
	return nb, nil
}

func (l *Limited) Free(b []byte) {
	l.release(len(b))
	l.A.Free(b)
}
