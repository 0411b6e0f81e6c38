// Package cursor implements the bounded output protocol shared by every
// writer in strkit.
//
// A Cursor owns the unused tail of an output buffer. Every writer returns the
// number of bytes its full, untruncated output needs (terminator excluded)
// and follows the same rules:
//
//   - If the output plus a zero terminator fits, it is written, the cursor
//     advances past it and a 0 is stored at the new position.
//   - Otherwise the cursor overflows: a single 0 is stored at the current
//     position if there is room for it, and the cursor closes.
//   - A closed cursor never touches memory; writers only report sizes.
//
// The zero Cursor is closed, which makes it a size-only pass:
//
//	var sizing cursor.Cursor
//	n := wwwform.EncodeForm(&sizing, pairs)
//	buf := make([]byte, n+1)
//	c := cursor.New(buf)
//	wwwform.EncodeForm(c, pairs)
//
// Results are trustworthy after an overflow, output is not.
package cursor

import (
	"fmt"
	"io"
	"strconv"

	"github.com/rawbytedev/strkit/internal/common"
	"github.com/rawbytedev/strkit/pkg/view"
)

// Cursor is a write position inside a bounded buffer.
type Cursor struct {
	start []byte // whole buffer, for Bytes
	buf   []byte // unused tail, buf[0] holds the terminator
	n     int    // bytes written so far
	open  bool
}

// New returns an open cursor writing into buf. An empty buf overflows on the
// first write.
func New(buf []byte) *Cursor {
	c := &Cursor{}
	c.Init(buf)
	return c
}

// Init resets c to write into buf from its start.
func (c *Cursor) Init(buf []byte) {
	*c = Cursor{start: buf, buf: buf, open: true}
	if len(buf) > 0 {
		buf[0] = 0
	}
}

// Open reports whether writes still reach memory.
func (c *Cursor) Open() bool {
	return c.open
}

// Remaining returns the unused capacity, terminator byte included.
func (c *Cursor) Remaining() int {
	return len(c.buf)
}

// Written returns the number of bytes written while the cursor was open.
func (c *Cursor) Written() int {
	return c.n
}

// Bytes returns the bytes written so far. After an overflow the content is
// unspecified past the terminator that closed the cursor.
func (c *Cursor) Bytes() []byte {
	return c.start[:c.n:c.n]
}

// Reset closes c. The output is zero-terminated if there was room for it.
func (c *Cursor) Reset() {
	if c.open && len(c.buf) > 0 {
		c.buf[0] = 0
	}
	c.buf = nil
	c.open = false
}

// Next reserves n bytes for the caller to fill and returns them, or returns
// nil after overflowing. The terminator after the slot is already written.
func (c *Cursor) Next(n int) []byte {
	if !c.open || len(c.buf) <= n {
		c.Reset()
		return nil
	}
	p := c.buf[:n:n]
	c.buf = c.buf[n:]
	c.buf[0] = 0
	c.n += n
	return p
}

// PutByte writes one byte. It returns 1.
func (c *Cursor) PutByte(b byte) int {
	if p := c.Next(1); p != nil {
		p[0] = b
	}
	return 1
}

// PutBytes copies b.
func (c *Cursor) PutBytes(b []byte) int {
	if p := c.Next(len(b)); p != nil {
		copy(p, b)
	}
	return len(b)
}

// PutString copies s.
func (c *Cursor) PutString(s string) int {
	if p := c.Next(len(s)); p != nil {
		copy(p, s)
	}
	return len(s)
}

// Copy copies the bytes of v.
func (c *Cursor) Copy(v view.View) int {
	return c.PutBytes(v.Data())
}

// CopyLower copies v with ASCII letters mapped to lower case.
func (c *Cursor) CopyLower(v view.View) int {
	src := v.Data()
	if p := c.Next(len(src)); p != nil {
		for i, b := range src {
			p[i] = common.ToLower(b)
		}
	}
	return len(src)
}

// CopyUpper copies v with ASCII letters mapped to upper case.
func (c *Cursor) CopyUpper(v view.View) int {
	src := v.Data()
	if p := c.Next(len(src)); p != nil {
		for i, b := range src {
			p[i] = common.ToUpper(b)
		}
	}
	return len(src)
}

// Printf formats according to a fmt verb string.
func (c *Cursor) Printf(format string, args ...any) int {
	if !c.open || len(c.buf) == 0 {
		n, _ := fmt.Fprintf(io.Discard, format, args...)
		c.Reset()
		return n
	}
	// Appendf writes in place while the result fits in c.buf and switches to
	// a fresh array otherwise, leaving c.buf untouched.
	out := fmt.Appendf(c.buf[:0:len(c.buf)], format, args...)
	n := len(out)
	if n < len(c.buf) {
		c.buf = c.buf[n:]
		c.buf[0] = 0
		c.n += n
	} else {
		c.Reset()
	}
	return n
}

// PutUint writes x in decimal.
func (c *Cursor) PutUint(x uint64) int {
	var scratch [20]byte
	return c.PutBytes(strconv.AppendUint(scratch[:0], x, 10))
}

// PutInt writes x in decimal.
func (c *Cursor) PutInt(x int64) int {
	var scratch [20]byte
	return c.PutBytes(strconv.AppendInt(scratch[:0], x, 10))
}

// PutUvarint writes x as an unsigned LEB128 varint.
func (c *Cursor) PutUvarint(x uint64) int {
	n := common.VarUintLen(x)
	if p := c.Next(n); p != nil {
		common.WriteVarUintTo(p[:0], x)
	}
	return n
}
