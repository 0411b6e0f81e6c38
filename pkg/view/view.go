// Package view provides View, an immutable borrowed byte string that tracks
// whether the byte just past its end can be read and whether it is zero.
package view

import (
	"bytes"

	"github.com/rawbytedev/strkit/internal/common"
	"github.com/rawbytedev/strkit/zc"
)

// NPos is returned by FindByte when nothing matches. As a length argument to
// Substr it means "up to the end".
const NPos = -1

// Term describes the byte that follows the last byte of a view.
type Term uint8

const (
	// TermNone: the terminating byte may not be readable.
	TermNone Term = iota
	// TermRead: the terminating byte is readable but its value is unknown.
	TermRead
	// TermZero: the terminating byte is 0.
	TermZero
)

func (t Term) String() string {
	switch t {
	case TermNone:
		return "none"
	case TermRead:
		return "read"
	case TermZero:
		return "zero"
	default:
		return "?"
	}
}

// zero backs Data() of null and empty views so the terminator reads as 0.
var zero = [1]byte{0}

// View is a weak reference to a byte array. It is safely copyable and can be
// passed by value. A nil array is the null view, which behaves exactly like
// the empty view except for IsNull.
//
// For term > TermNone the byte at index Len() is addressable through the
// capacity of b. Termination only describes that byte: a terminated view may
// still hold zero bytes inside its data.
type View struct {
	b    []byte
	term Term
}

// Null returns the null view.
func Null() View {
	return View{}
}

// Empty returns a non-null, zero-terminated empty view.
func Empty() View {
	return View{b: zero[:0:1], term: TermZero}
}

// FromBytes borrows b without assuming anything about the byte after it.
// A nil b gives the null view.
func FromBytes(b []byte) View {
	return View{b: b, term: TermNone}
}

// Make borrows b with termination state t, downgraded to what b can
// actually back: TermNone when the byte after b is not addressable, TermRead
// when it is not zero. The data itself is not scanned for zero bytes.
func Make(b []byte, t Term) View {
	if b == nil {
		return Null()
	}
	if t > TermNone && cap(b) <= len(b) {
		t = TermNone
	}
	if t == TermZero && b[:len(b)+1][len(b)] != 0 {
		t = TermRead
	}
	return View{b: b, term: t}
}

// FromTerminated borrows b and marks it read-terminated when the capacity of
// b makes the following byte addressable, or zero-terminated when that byte
// is 0. A zero inside b is kept as data; use FromCString to stop at the first
// one.
func FromTerminated(b []byte) View {
	if b == nil {
		return Null()
	}
	if cap(b) > len(b) {
		if b[:len(b)+1][len(b)] == 0 {
			return View{b: b, term: TermZero}
		}
		return View{b: b, term: TermRead}
	}
	return View{b: b, term: TermNone}
}

// FromCString borrows the prefix of b up to its first zero byte. When a zero
// is found the view is zero-terminated; otherwise it covers all of b.
func FromCString(b []byte) View {
	if b == nil {
		return Null()
	}
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return View{b: b[:i], term: TermZero}
	}
	return View{b: b, term: TermNone}
}

// FromLiteral borrows the bytes of s without copying. Go strings carry no
// terminator, so the view is TermNone.
func FromLiteral(s string) View {
	if len(s) == 0 {
		return Empty()
	}
	return View{b: zc.Bytes(s), term: TermNone}
}

// IsNull reports whether v is the null view.
func (v View) IsNull() bool {
	return v.b == nil
}

// IsEmpty reports whether v has no bytes. Null views are empty.
func (v View) IsEmpty() bool {
	return len(v.b) == 0
}

// Term returns the termination state. Null views read as zero-terminated,
// since Data() resolves them to a static zero byte.
func (v View) Term() Term {
	if v.b == nil {
		return TermZero
	}
	return v.term
}

// IsReadTerminated reports whether the byte at Len() can be read.
func (v View) IsReadTerminated() bool {
	return v.Term() >= TermRead
}

// IsZeroTerminated reports whether the byte at Len() is 0.
func (v View) IsZeroTerminated() bool {
	return v.Term() == TermZero
}

// Terminator returns the byte at index Len() when it is readable.
func (v View) Terminator() (byte, bool) {
	if !v.IsReadTerminated() {
		return 0, false
	}
	d := v.Data()
	return d[:len(d)+1][len(d)], true
}

// Len returns the number of bytes in v.
func (v View) Len() int {
	return len(v.b)
}

// Data returns the viewed bytes. It never returns nil, even for the null view.
// Callers must not modify the result.
func (v View) Data() []byte {
	if v.b == nil {
		return zero[:0:1]
	}
	return v.b
}

// Equal reports whether a and b hold the same bytes.
func Equal(a, b View) bool {
	return len(a.b) == len(b.b) && bytes.Equal(a.b, b.b)
}

// String returns a copy of the bytes as a string.
func (v View) String() string {
	return string(v.b)
}

// UnsafeString returns the bytes as a string without copying.
// The underlying array must outlive the string and must not change.
func (v View) UnsafeString() string {
	return zc.String(v.b)
}

// Tail drops the first n bytes. n == 0 is the identity; n > Len() gives the
// null view. The result reaches the original end and keeps its termination.
func (v View) Tail(n int) View {
	if n < 0 || n > len(v.b) {
		return Null()
	}
	if n == 0 {
		return v
	}
	return View{b: v.b[n:], term: v.term}
}

// Init keeps the first n bytes. For n >= Len() the view is returned unchanged.
// A shorter view ends mid-buffer, so the byte at its end is original content:
// readable, but not known to be zero.
func (v View) Init(n int) View {
	if n < 0 || n >= len(v.b) {
		return v
	}
	return View{b: v.b[:n], term: TermRead}
}

// Substr returns up to n bytes starting at idx. n is clamped to the remaining
// length; n < 0 means the rest of the view. idx > Len() gives the null view.
func (v View) Substr(idx, n int) View {
	t := v.Tail(idx)
	if n < 0 {
		return t
	}
	return t.Init(n)
}

// FindByte returns the index of the first c in v, or NPos.
func (v View) FindByte(c byte) int {
	return bytes.IndexByte(v.b, c)
}

// SplitByte cuts the first word off *v. It returns the bytes before the first
// c and advances *v past that c. Without c the whole view is returned and *v
// becomes empty at its end.
//
//	rest := in
//	for !rest.IsEmpty() {
//		word := view.SplitByte(&rest, ' ')
//		use(word)
//	}
func SplitByte(v *View, c byte) View {
	i := bytes.IndexByte(v.b, c)
	if i < 0 {
		word := *v
		if v.b != nil {
			v.b = v.b[len(v.b):]
		}
		return word
	}
	// the separator is readable original content
	word := View{b: v.b[:i], term: TermRead}
	v.b = v.b[i+1:]
	return word
}

// Chop removes trailing bytes matching pred.
func (v View) Chop(pred func(byte) bool) View {
	n := len(v.b)
	for n > 0 && pred(v.b[n-1]) {
		n--
	}
	return v.Init(n)
}

// Trim removes leading and trailing bytes matching pred.
func (v View) Trim(pred func(byte) bool) View {
	i := 0
	for i < len(v.b) && pred(v.b[i]) {
		i++
	}
	return v.Tail(i).Chop(pred)
}

// ChopSpaces removes trailing ASCII whitespace.
func (v View) ChopSpaces() View {
	return v.Chop(common.IsSpace)
}

// TrimSpaces removes leading and trailing ASCII whitespace.
func (v View) TrimSpaces() View {
	return v.Trim(common.IsSpace)
}
