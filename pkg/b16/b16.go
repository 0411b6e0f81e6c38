// Package b16 encodes and decodes base16 (hex) through the cursor protocol.
package b16

import (
	"errors"
	"fmt"

	"github.com/rawbytedev/strkit/internal/common"
	"github.com/rawbytedev/strkit/pkg/cursor"
	"github.com/rawbytedev/strkit/pkg/view"
	"github.com/rawbytedev/strkit/zc"
)

var (
	ErrDecode       = errors.New("b16: invalid input")
	ErrOddLength    = fmt.Errorf("%w: odd length", ErrDecode)
	ErrInvalidDigit = fmt.Errorf("%w: invalid digit", ErrDecode)
)

// Case selects the digit table used for encoding.
type Case uint8

const (
	Lower Case = iota
	Upper
)

func (c Case) digits() string {
	if c == Upper {
		return common.HexUpper
	}
	return common.HexLower
}

// EncodedLen returns the encoded size of n bytes.
func EncodedLen(n int) int {
	return n * 2
}

// DecodedLen returns the decoded size of n hex digits.
func DecodedLen(n int) (int, error) {
	if n%2 != 0 {
		return 0, ErrOddLength
	}
	return n / 2, nil
}

// Encode writes src as hex into dst, which must hold EncodedLen(len(src))
// bytes, and returns the number of bytes written.
func Encode(dst, src []byte, c Case) int {
	digits := c.digits()
	_ = dst[:EncodedLen(len(src))]
	for i, b := range src {
		dst[i*2] = digits[b>>4]
		dst[i*2+1] = digits[b&0x0f]
	}
	return EncodedLen(len(src))
}

// EncodeTo writes src as hex at the cursor and returns the encoded size.
func EncodeTo(cur *cursor.Cursor, src []byte, c Case) int {
	n := EncodedLen(len(src))
	if p := cur.Next(n); p != nil {
		Encode(p, src, c)
	}
	return n
}

// EncodeToString returns src as a hex string.
func EncodeToString(src []byte, c Case) string {
	dst := make([]byte, EncodedLen(len(src)))
	Encode(dst, src, c)
	return zc.String(dst)
}

// validate checks every digit of src before anything is written.
func validate(src []byte) (int, error) {
	n, err := DecodedLen(len(src))
	if err != nil {
		return 0, err
	}
	for i, c := range src {
		if common.HexValue(c) < 0 {
			return 0, fmt.Errorf("%w %q at offset %d", ErrInvalidDigit, c, i)
		}
	}
	return n, nil
}

func decode(dst, src []byte) {
	for i := range dst {
		dst[i] = byte(common.HexValue(src[i*2])<<4 | common.HexValue(src[i*2+1]))
	}
}

// Decode decodes the hex digits of v into dst and returns the number of bytes
// written. Both cases are accepted. The input is validated first, so dst is
// untouched on error. dst must hold the decoded size.
func Decode(dst []byte, v view.View) (int, error) {
	src := v.Data()
	n, err := validate(src)
	if err != nil {
		return 0, err
	}
	if len(dst) < n {
		return 0, fmt.Errorf("b16: destination holds %d of %d bytes", len(dst), n)
	}
	decode(dst[:n], src)
	return n, nil
}

// DecodeTo decodes the hex digits of v at the cursor and returns the decoded
// size. Invalid input writes nothing and leaves the cursor as it was.
func DecodeTo(cur *cursor.Cursor, v view.View) (int, error) {
	src := v.Data()
	n, err := validate(src)
	if err != nil {
		return 0, err
	}
	if p := cur.Next(n); p != nil {
		decode(p, src)
	}
	return n, nil
}
