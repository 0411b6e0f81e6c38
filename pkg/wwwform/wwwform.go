// Package wwwform writes application/x-www-form-urlencoded data through the
// cursor protocol.
//
// Letters, digits and "*-._" are kept, a space becomes '+', and every other
// byte is written as %XX with upper case digits.
package wwwform

import (
	"github.com/rawbytedev/strkit/internal/common"
	"github.com/rawbytedev/strkit/pkg/cursor"
	"github.com/rawbytedev/strkit/pkg/view"
	"github.com/rawbytedev/strkit/zc"
)

// Pair is one key/value entry of a form. An empty Val is written as the bare
// key.
type Pair struct {
	Key view.View
	Val view.View
}

// P builds a Pair from strings without copying them.
func P(key, val string) Pair {
	return Pair{Key: view.FromLiteral(key), Val: view.FromLiteral(val)}
}

// kept reports whether c is written as itself. Space is handled separately.
func kept(c byte) bool {
	return common.IsAlnum(c) || c == '*' || c == '-' || c == '.' || c == '_'
}

// ComponentLen returns the encoded size of src.
func ComponentLen(src []byte) int {
	n := 0
	for _, c := range src {
		if kept(c) || c == ' ' {
			n++
		} else {
			n += 3
		}
	}
	return n
}

// EncodeComponent writes src escaped at the cursor and returns the encoded
// size. Output is all or nothing: a component that does not fit leaves only
// the terminator behind.
func EncodeComponent(c *cursor.Cursor, src []byte) int {
	n := ComponentLen(src)
	p := c.Next(n)
	if p == nil {
		return n
	}
	i := 0
	for _, b := range src {
		switch {
		case b == ' ':
			p[i] = '+'
			i++
		case kept(b):
			p[i] = b
			i++
		default:
			p[i] = '%'
			p[i+1] = common.HexUpper[b>>4]
			p[i+2] = common.HexUpper[b&0x0f]
			i += 3
		}
	}
	return n
}

// FormLen returns the encoded size of pairs.
func FormLen(pairs []Pair) int {
	var sizing cursor.Cursor
	return EncodeForm(&sizing, pairs)
}

// EncodeForm writes pairs as key=value entries joined by '&' and returns the
// encoded size.
func EncodeForm(c *cursor.Cursor, pairs []Pair) int {
	n := 0
	for i, kv := range pairs {
		if i > 0 {
			n += c.PutByte('&')
		}
		n += EncodeComponent(c, kv.Key.Data())
		if !kv.Val.IsEmpty() {
			n += c.PutByte('=')
			n += EncodeComponent(c, kv.Val.Data())
		}
	}
	return n
}

// EncodeFormString encodes pairs into a new string.
func EncodeFormString(pairs []Pair) string {
	n := FormLen(pairs)
	if n == 0 {
		return ""
	}
	buf := make([]byte, n+1)
	EncodeForm(cursor.New(buf), pairs)
	return zc.String(buf[:n])
}
