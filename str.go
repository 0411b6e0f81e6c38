// Package strkit provides Str, a string value that is either stored inline,
// owned on the heap, or borrowed from the caller, with the same behavior from
// the outside in every case.
package strkit

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/rawbytedev/strkit/pkg/alloc"
	"github.com/rawbytedev/strkit/pkg/cursor"
	"github.com/rawbytedev/strkit/pkg/view"
	"github.com/rawbytedev/strkit/zc"
)

var (
	ErrAlloc          = errors.New("strkit: allocation failed")
	ErrTooLong        = errors.New("strkit: string too long")
	ErrEmbeddedZero   = errors.New("strkit: string contains a zero byte")
	ErrBufferTooSmall = errors.New("strkit: no room for the terminator")
	ErrRange          = errors.New("strkit: length out of range")
	ErrFormat         = errors.New("strkit: output changed between passes")
)

const (
	// InlineCap is the longest string stored without an allocation.
	InlineCap = 15
	// MaxLen is the longest string a Str can hold.
	MaxLen = math.MaxInt32
)

// Kind identifies where the bytes of a Str live.
type Kind uint8

const (
	// KindBorrowed is an immutable reference to caller memory. The zero Str
	// (null) is a borrowed string without memory.
	KindBorrowed Kind = iota
	// KindInline stores up to InlineCap bytes inside the Str.
	KindInline
	// KindOwned stores the bytes in a buffer from the Str's allocator.
	KindOwned
	// KindBorrowedMut writes in place into caller memory.
	KindBorrowedMut
)

func (k Kind) String() string {
	switch k {
	case KindBorrowed:
		return "borrowed"
	case KindInline:
		return "inline"
	case KindOwned:
		return "owned"
	case KindBorrowedMut:
		return "borrowed-mut"
	default:
		return "?"
	}
}

// Str is a byte string value. Mutable kinds (inline, owned, borrowed-mut)
// keep a zero byte after the last character at all times; borrowed strings
// are copied into owned storage the first time they are modified.
//
// A Str must not be copied once in use, since two copies of an owned string
// would share its buffer. Use Move to transfer it and Release to free it.
type Str struct {
	kind  Kind
	term  view.Term // KindBorrowed only
	n     int
	sso   [InlineCap + 1]byte
	buf   []byte // owned/borrowed-mut: cap+1 bytes; borrowed: the data
	alloc alloc.Allocator
}

// -- Construction --

// Null returns the null string.
func Null() Str {
	return Str{}
}

// Empty returns an empty inline string.
func Empty() Str {
	return Str{kind: KindInline}
}

// Move transfers the contents of src. src is null afterwards.
func Move(src *Str) Str {
	s := *src
	*src = Str{alloc: src.alloc}
	return s
}

// Borrow references v without copying. The string is immutable until its
// first modification, which copies it.
func Borrow(v view.View) Str {
	if v.IsNull() || v.Len() > MaxLen {
		return Null()
	}
	return Str{kind: KindBorrowed, buf: v.Data(), n: v.Len(), term: v.Term()}
}

// BorrowMut builds a string that is modified in place inside buf, reserving
// the last byte of buf for the terminator. n is the current length; n < 0
// counts up to the first zero byte. buf[n] is set to zero.
//
//	var aux [256]byte
//	s, _ := strkit.BorrowMut(aux[:], 0)
//	s.Format(...) // moves to owned storage if 255 bytes are not enough
func BorrowMut(buf []byte, n int) (Str, error) {
	if len(buf) == 0 {
		if n > 0 {
			return Null(), ErrBufferTooSmall
		}
		// no room for a terminator: an empty borrowed string
		return Borrow(view.FromBytes(buf)), nil
	}
	if n < 0 {
		n = bytes.IndexByte(buf, 0)
		if n < 0 {
			return Null(), fmt.Errorf("%w: no zero byte in %d bytes", ErrBufferTooSmall, len(buf))
		}
	}
	if n >= len(buf) {
		return Null(), fmt.Errorf("%w: length %d, buffer %d", ErrBufferTooSmall, n, len(buf))
	}
	if len(buf)-1 > MaxLen {
		return Null(), ErrTooLong
	}
	buf[n] = 0
	return Str{kind: KindBorrowedMut, buf: buf, n: n}, nil
}

// Copy copies v into a new inline or owned string.
func Copy(v view.View) (Str, error) {
	return CopyUsing(nil, v)
}

// CopyUsing is Copy with owned storage taken from a (alloc.Heap when nil).
func CopyUsing(a alloc.Allocator, v view.View) (Str, error) {
	s := Str{kind: KindInline, alloc: a}
	if v.IsNull() {
		return Str{alloc: a}, nil
	}
	if v.Len() > MaxLen {
		return Null(), ErrTooLong
	}
	if err := s.relocate(v.Len(), 0); err != nil {
		return Null(), err
	}
	p := s.storage()
	copy(p, v.Data())
	s.n = v.Len()
	p[s.n] = 0
	return s, nil
}

// Clone returns an independent copy of s, using the same allocator.
func (s *Str) Clone() (Str, error) {
	return CopyUsing(s.alloc, s.View())
}

// SetAllocator sets the allocator for future owned storage. The current
// buffer, if owned, is still freed by the allocator that made it, so call
// this before s owns anything.
func (s *Str) SetAllocator(a alloc.Allocator) {
	s.alloc = a
}

// Release frees owned storage and makes s null.
func (s *Str) Release() {
	if s.kind == KindOwned {
		s.allocator().Free(s.buf)
	}
	*s = Str{alloc: s.alloc}
}

// -- Queries --

func (s *Str) Kind() Kind {
	return s.kind
}

func (s *Str) IsNull() bool {
	return s.kind == KindBorrowed && s.buf == nil
}

func (s *Str) IsEmpty() bool {
	return s.n == 0
}

// IsMutable reports whether s can be written in place, which is exactly
// when Cap() > 0.
func (s *Str) IsMutable() bool {
	return s.Cap() > 0
}

// IsOwned reports whether s owns its bytes (inline or owned kinds).
func (s *Str) IsOwned() bool {
	return s.kind == KindInline || s.kind == KindOwned
}

// -- Access --

func (s *Str) Len() int {
	return s.n
}

// Cap returns the number of bytes s can hold without reallocating, not
// counting the terminator. It is 0 for borrowed strings.
func (s *Str) Cap() int {
	switch s.kind {
	case KindInline:
		return InlineCap
	case KindOwned, KindBorrowedMut:
		return len(s.buf) - 1
	default:
		return 0
	}
}

// Bytes returns the contents. The result is never nil and must not be
// modified; it is valid until the next change to s.
func (s *Str) Bytes() []byte {
	switch s.kind {
	case KindInline:
		return s.sso[:s.n]
	case KindBorrowed:
		if s.buf == nil {
			return view.Null().Data()
		}
	}
	return s.buf[:s.n]
}

// View returns a view of the contents, valid until the next change to s.
func (s *Str) View() view.View {
	if s.kind == KindBorrowed {
		if s.buf == nil {
			return view.Null()
		}
		return view.Make(s.buf[:s.n], s.term)
	}
	return view.Make(s.Bytes(), view.TermZero)
}

func (s *Str) String() string {
	return string(s.Bytes())
}

// storage returns the whole writable area, terminator slot included, for
// mutable kinds.
func (s *Str) storage() []byte {
	switch s.kind {
	case KindInline:
		return s.sso[:]
	case KindOwned, KindBorrowedMut:
		return s.buf
	default:
		return nil
	}
}

func (s *Str) allocator() alloc.Allocator {
	if s.alloc == nil {
		return alloc.Heap
	}
	return s.alloc
}

// EnsureMutable returns the contents as a slice that may be written in
// place, with len == Len() and cap == Cap(). A borrowed string is first
// copied into inline or owned storage; if that fails s is left unchanged.
// Use SetLen to commit a new length after writing.
func (s *Str) EnsureMutable() ([]byte, error) {
	if !s.IsMutable() {
		if err := s.relocate(s.n, s.n); err != nil {
			return nil, err
		}
	}
	return s.storage()[:s.n:s.Cap()], nil
}

// SetLen sets the length after in-place writes and terminates the string.
// Borrowed strings can only shrink.
func (s *Str) SetLen(n int) error {
	if !s.IsMutable() {
		if n < 0 || n > s.n {
			return fmt.Errorf("%w: %d of %d", ErrRange, n, s.n)
		}
		if n < s.n {
			s.term = view.TermRead
		}
		s.n = n
		return nil
	}
	if n < 0 || n > s.Cap() {
		return fmt.Errorf("%w: %d of %d", ErrRange, n, s.Cap())
	}
	s.n = n
	s.storage()[n] = 0
	return nil
}

// SetEmpty truncates s to zero length, keeping its storage.
func (s *Str) SetEmpty() {
	_ = s.SetLen(0)
}

// -- Allocation --

// relocate moves the contents into fresh storage of capacity newCap: inline
// when it fits, otherwise owned. keep bytes are preserved. On failure s is
// unchanged.
func (s *Str) relocate(newCap, keep int) error {
	old := s.Bytes()[:keep]
	if newCap <= InlineCap {
		var retired []byte
		if s.kind == KindOwned {
			retired = s.buf
		}
		copy(s.sso[:], old)
		s.sso[keep] = 0
		s.kind, s.buf, s.n, s.term = KindInline, nil, keep, 0
		if retired != nil {
			s.allocator().Free(retired)
		}
		return nil
	}
	a := s.allocator()
	var (
		nb  []byte
		err error
	)
	if s.kind == KindOwned {
		nb, err = a.Realloc(s.buf, newCap+1)
	} else {
		nb, err = a.Alloc(newCap + 1)
		if err == nil {
			copy(nb, old)
		}
	}
	if err != nil {
		return fmt.Errorf("%w: %d bytes: %w", ErrAlloc, newCap+1, err)
	}
	nb[keep] = 0
	s.kind, s.buf, s.n, s.term = KindOwned, nb, keep, 0
	return nil
}

// Reserve makes room for at least newCap bytes (newCap < 0 means the current
// length) and keeps the first min(Len(), preserve, newCap) bytes. A borrowed
// string is always copied into storage of its own. Owned strings shrinking
// to InlineCap or less move back inline.
//
// If the allocation fails a borrowed string is left as it was, while any
// other kind is released and becomes null.
func (s *Str) Reserve(newCap, preserve int) error {
	if newCap < 0 {
		newCap = s.n
	}
	if newCap > MaxLen {
		return fmt.Errorf("%w: capacity %d", ErrTooLong, newCap)
	}
	keep := min(max(preserve, 0), s.n, newCap)
	switch {
	case s.kind == KindBorrowed,
		s.kind == KindOwned && newCap <= InlineCap,
		newCap > s.Cap():
		if err := s.relocate(newCap, keep); err != nil {
			if s.kind != KindBorrowed {
				s.Release()
			}
			return err
		}
	default:
		s.n = keep
		s.storage()[keep] = 0
	}
	return nil
}

// grow makes room for need bytes, keeping the contents. Repeated appends to
// owned storage double its capacity.
func (s *Str) grow(need int) error {
	if need <= s.Cap() {
		return nil
	}
	newCap := need
	if s.kind != KindBorrowed && s.Cap()*2 > need {
		newCap = min(s.Cap()*2, MaxLen)
	}
	return s.Reserve(newCap, s.n)
}

// -- Modification --

// Append adds the bytes of v at the end of s.
func (s *Str) Append(v view.View) error {
	return s.AppendBytes(v.Data())
}

// AppendString adds the bytes of str at the end of s.
func (s *Str) AppendString(str string) error {
	return s.AppendBytes(zc.Bytes(str))
}

// AppendByte adds c at the end of s.
func (s *Str) AppendByte(c byte) error {
	b := [1]byte{c}
	return s.AppendBytes(b[:])
}

// AppendBytes adds b at the end of s. b may alias s.
func (s *Str) AppendBytes(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	if len(b) > MaxLen-s.n {
		return fmt.Errorf("%w: %d + %d bytes", ErrTooLong, s.n, len(b))
	}
	need := s.n + len(b)
	if need > s.Cap() {
		if zc.Overlaps(b, s.Bytes()) {
			b = bytes.Clone(b)
		}
		if err := s.grow(need); err != nil {
			return err
		}
	}
	p := s.storage()
	copy(p[s.n:], b)
	s.n = need
	p[need] = 0
	return nil
}

// An Emitter writes at a cursor and returns the full size of its output,
// following the cursor protocol. Every cursor writer and codec fits:
//
//	s.Emit(func(c *cursor.Cursor) int { return wwwform.EncodeForm(c, pairs) })
type Emitter func(c *cursor.Cursor) int

// Emit replaces the contents of s with the output of w. The current storage
// is tried first; when it is too small s grows to the exact size and w runs
// a second time, so w must produce the same output twice and must not read
// from s. On failure s is released and becomes null.
func (s *Str) Emit(w Emitter) error {
	var c cursor.Cursor
	if s.IsMutable() {
		c.Init(s.storage())
	}
	n := w(&c)
	if c.Open() {
		s.n = n
		return nil
	}
	if n > MaxLen {
		s.Release()
		return fmt.Errorf("%w: %d bytes", ErrTooLong, n)
	}
	if err := s.Reserve(n, 0); err != nil {
		s.Release()
		return err
	}
	c.Init(s.storage())
	if m := w(&c); m != n || !c.Open() {
		s.Release()
		return fmt.Errorf("%w: %d then %d bytes", ErrFormat, n, m)
	}
	s.n = n
	return nil
}

// AppendEmit adds the output of w at the end of s, with the same two-pass
// rules as Emit. On failure the contents before the call are kept, unless
// growing failed, which releases s.
func (s *Str) AppendEmit(w Emitter) error {
	var c cursor.Cursor
	if s.IsMutable() {
		c.Init(s.storage()[s.n:])
	}
	n := w(&c)
	if c.Open() {
		s.n += n
		return nil
	}
	if n > MaxLen-s.n {
		if s.IsMutable() {
			s.storage()[s.n] = 0
		}
		return fmt.Errorf("%w: %d + %d bytes", ErrTooLong, s.n, n)
	}
	if err := s.grow(s.n + n); err != nil {
		return err
	}
	c.Init(s.storage()[s.n:])
	if m := w(&c); m != n || !c.Open() {
		s.storage()[s.n] = 0
		return fmt.Errorf("%w: %d then %d bytes", ErrFormat, n, m)
	}
	s.n += n
	return nil
}

// Format replaces the contents of s with fmt-formatted output. Arguments
// must not alias s. On failure s is released and becomes null.
func (s *Str) Format(format string, args ...any) error {
	return s.Emit(func(c *cursor.Cursor) int {
		return c.Printf(format, args...)
	})
}

// AppendFormat adds fmt-formatted output at the end of s.
func (s *Str) AppendFormat(format string, args ...any) error {
	return s.AppendEmit(func(c *cursor.Cursor) int {
		return c.Printf(format, args...)
	})
}

// CString returns the contents followed by a zero byte (at index Len() of the
// result's capacity), copying a borrowed string that is not zero-terminated.
// It scans the whole string and fails with ErrEmbeddedZero if a zero byte is
// part of the contents.
func (s *Str) CString() ([]byte, error) {
	if s.IsNull() {
		return view.Null().Data(), nil
	}
	if s.kind == KindBorrowed && s.term != view.TermZero {
		if err := s.relocate(s.n, s.n); err != nil {
			return nil, err
		}
	}
	b := s.Bytes()
	if bytes.IndexByte(b, 0) >= 0 {
		return nil, ErrEmbeddedZero
	}
	return b, nil
}
