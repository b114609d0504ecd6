// Package byteutil holds small byte-slice helpers shared by the EAX and
// OCB AEAD mode implementations: XOR, GF(2^128) doubling, and the
// append-without-reallocating idiom used by the standard library's own
// AEAD implementations.
package byteutil

// RightXor XORs the byte slice b into the right-most end of a, returning
// a new slice the length of a.
func RightXor(a, b []byte) []byte {
	out := make([]byte, len(a))
	copy(out, a)
	offset := len(a) - len(b)
	for i := 0; i < len(b); i++ {
		out[offset+i] ^= b[i]
	}
	return out
}

// XorBytes sets dst[i] = x[i] ^ y[i] for the shared length of x and y.
func XorBytes(dst, x, y []byte) int {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	for i := 0; i < n; i++ {
		dst[i] = x[i] ^ y[i]
	}
	return n
}

// XorBytesMut XORs y into x in place, over the shared length of both.
func XorBytesMut(x, y []byte) {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	for i := 0; i < n; i++ {
		x[i] ^= y[i]
	}
}

// ShiftNBytesLeft returns src shifted left by n bits, as a same-length
// slice, per OCB's nonce-dependent offset stretching step.
func ShiftNBytesLeft(src []byte, n int) []byte {
	dst := make([]byte, len(src))
	byteShift := n / 8
	bitShift := uint(n % 8)
	for i := 0; i < len(src); i++ {
		si := i + byteShift
		var cur, next byte
		if si < len(src) {
			cur = src[si]
		}
		if si+1 < len(src) {
			next = src[si+1]
		}
		if bitShift == 0 {
			dst[i] = cur
		} else {
			dst[i] = cur<<bitShift | next>>(8-bitShift)
		}
	}
	return dst
}

// gfnDoubleReductionPoly is the reduction polynomial (0x87) used to fold
// the carry bit back in after a left shift, per NIST SP 800-38D's
// GF(2^128) doubling operation.
const gfnDoubleReductionPoly = 0x87

// GfnDouble returns 2*in in GF(2^128), as used by OMAC/CMAC and OCB's
// L-table generation.
func GfnDouble(in []byte) []byte {
	out := make([]byte, len(in))
	carry := in[0] >> 7
	for i := 0; i < len(in)-1; i++ {
		out[i] = in[i]<<1 | in[i+1]>>7
	}
	out[len(in)-1] = in[len(in)-1] << 1
	if carry != 0 {
		out[len(out)-1] ^= gfnDoubleReductionPoly
	}
	return out
}

// SliceForAppend extends the in slice by n bytes, reusing its capacity
// where possible, and returns both the extended slice (head) and the
// newly appended region (tail) so AEAD Seal/Open can write directly into
// caller-supplied buffers without an extra copy.
func SliceForAppend(in []byte, n int) (head, tail []byte) {
	if total := len(in) + n; cap(in) >= total {
		head = in[:total]
	} else {
		head = make([]byte, total)
		copy(head, in)
	}
	tail = head[len(in):]
	return
}
