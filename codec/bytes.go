package codec

import (
	"fmt"

	"github.com/pusty/f0x86/register"
)

// fitsWidth reports whether v is representable, signed or unsigned, in
// the given number of bits: the template matcher's acceptance test for
// immediate operands.
func fitsWidth(v int64, bits register.Width) bool {
	if bits >= 64 {
		return true
	}
	n := int(bits)
	lo := int64(-1) << (n - 1)
	hi := (int64(1) << n) - 1
	return v >= lo && v <= hi
}

// leBytes renders v as n little-endian bytes, truncating to width.
func leBytes(v int64, n int) []byte {
	out := make([]byte, n)
	u := uint64(v)
	for i := 0; i < n; i++ {
		out[i] = byte(u >> (8 * i))
	}
	return out
}

// readLE reads n little-endian bytes starting at off and sign-extends
// them to int64, returning the value and n (the bytes consumed).
func readLE(code []byte, off, n int) (int64, int, error) {
	if off+n > len(code) {
		return 0, 0, fmt.Errorf("truncated field at offset %d: need %d bytes, have %d", off, n, len(code)-off)
	}
	var u uint64
	for i := 0; i < n; i++ {
		u |= uint64(code[off+i]) << (8 * i)
	}
	// Sign-extend from the field's own width.
	shift := uint(64 - 8*n)
	v := int64(u<<shift) >> shift
	return v, n, nil
}

// regForWidth looks up the register of the given width occupying the
// given 3-bit ModR/M encoding. bits is an int (not register.Width) so
// callers can pass the literal 8/16/32/64 read off a directive.
func regForWidth(bits int, enc byte) (register.Register, bool) {
	return register.ByEncoding(register.Width(bits), enc)
}
