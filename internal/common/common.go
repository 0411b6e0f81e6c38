package common

// Byte classification is table driven and locale independent: only ASCII
// letters and digits are alphanumeric, and whitespace is the C "isspace" set.

const (
	classAlpha = 1 << iota
	classDigit
	classSpace
	classUpper
	classLower
)

var classes = func() (t [256]uint8) {
	for c := 'a'; c <= 'z'; c++ {
		t[c] |= classAlpha | classLower
	}
	for c := 'A'; c <= 'Z'; c++ {
		t[c] |= classAlpha | classUpper
	}
	for c := '0'; c <= '9'; c++ {
		t[c] |= classDigit
	}
	for _, c := range []byte{' ', '\t', '\n', '\v', '\f', '\r'} {
		t[c] |= classSpace
	}
	return t
}()

// IsAlnum reports whether c is an ASCII letter or digit.
func IsAlnum(c byte) bool {
	return classes[c]&(classAlpha|classDigit) != 0
}

// IsSpace reports whether c is one of ' ', '\t', '\n', '\v', '\f', '\r'.
func IsSpace(c byte) bool {
	return classes[c]&classSpace != 0
}

// ToLower maps ASCII upper case letters to lower case, other bytes unchanged.
func ToLower(c byte) byte {
	if classes[c]&classUpper != 0 {
		return c + 'a' - 'A'
	}
	return c
}

// ToUpper maps ASCII lower case letters to upper case, other bytes unchanged.
func ToUpper(c byte) byte {
	if classes[c]&classLower != 0 {
		return c - ('a' - 'A')
	}
	return c
}

// Hex digit alphabets.
const (
	HexLower = "0123456789abcdef"
	HexUpper = "0123456789ABCDEF"
)

// HexValue returns the value of a hex digit in either case, or -1.
func HexValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	default:
		return -1
	}
}

// VarUintLen returns the number of bytes WriteVarUintTo emits for x.
func VarUintLen(x uint64) int {
	n := 1
	for x >= 0x80 {
		x >>= 7
		n++
	}
	return n
}

// WriteVarUintTo appends varint-encoded x to dst using a small stack scratch.
func WriteVarUintTo(dst []byte, x uint64) []byte {
	var scratch [10]byte
	i := 0
	for x >= 0x80 {
		scratch[i] = byte(x) | 0x80
		x >>= 7
		i++
	}
	scratch[i] = byte(x)
	i++
	return append(dst, scratch[:i]...)
}
