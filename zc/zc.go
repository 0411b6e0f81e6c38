// Package zc (zero-copy) converts between strings and byte slices without
// copying. Both directions alias memory: the caller must keep the source
// alive and must never write through a slice obtained from a string.
package zc

import "unsafe"

// String returns a string sharing b's backing array.
// b must not be modified while the string is in use.
func String(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(unsafe.SliceData(b), len(b))
}

// Bytes returns a read-only slice over s's bytes. The result has
// cap == len, so nothing past the end of s is reachable.
func Bytes(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

// Overlaps reports whether the memory of a and b intersects.
func Overlaps(a, b []byte) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	pa := uintptr(unsafe.Pointer(unsafe.SliceData(a)))
	pb := uintptr(unsafe.Pointer(unsafe.SliceData(b)))
	return pa < pb+uintptr(len(b)) && pb < pa+uintptr(len(a))
}
