// Package keywrap implements the AES Key Wrap algorithm from RFC 3394,
// used by OpenPGP to protect session keys under an ECDH- or composite-KEM-
// derived key-encryption key.
package keywrap

import (
	"crypto/aes"
	"crypto/subtle"
	goerrors "errors"
)

// defaultIV is the initial value specified by RFC 3394, section 2.2.3.1.
var defaultIV = []byte{0xA6, 0xA6, 0xA6, 0xA6, 0xA6, 0xA6, 0xA6, 0xA6}

var (
	// ErrNotMultipleOf8 is returned when the input is not a multiple of 8 bytes.
	ErrNotMultipleOf8 = goerrors.New("keywrap: input must be a multiple of 8 bytes")
	// ErrInvalidCiphertext is returned when Unwrap fails to verify the
	// integrity check value, either because the key is wrong or the
	// ciphertext has been tampered with.
	ErrInvalidCiphertext = goerrors.New("keywrap: integrity check failed - invalid key or ciphertext")
	// ErrTooShort is returned when the plaintext given to Wrap is shorter
	// than two 64-bit blocks (16 bytes), or the ciphertext given to Unwrap
	// is shorter than three (24 bytes).
	ErrTooShort = goerrors.New("keywrap: input too short")
)

// Wrap encrypts a plaintext key (a multiple of 8 bytes, at least 16) under
// the given key-encryption key, as specified by RFC 3394.
func Wrap(kek, plaintext []byte) ([]byte, error) {
	if len(plaintext)%8 != 0 {
		return nil, ErrNotMultipleOf8
	}
	if len(plaintext) < 16 {
		return nil, ErrTooShort
	}

	block, err := aes.NewCipher(kek)
	if err != nil {
		return nil, err
	}

	n := len(plaintext) / 8
	// R[1..n] = P[1..n]; A = IV
	r := make([][]byte, n)
	for i := 0; i < n; i++ {
		r[i] = make([]byte, 8)
		copy(r[i], plaintext[i*8:(i+1)*8])
	}

	a := make([]byte, 8)
	copy(a, defaultIV)

	buf := make([]byte, 16)
	for j := 0; j <= 5; j++ {
		for i := 1; i <= n; i++ {
			// B = AES(K, A | R[i])
			copy(buf[:8], a)
			copy(buf[8:], r[i-1])
			block.Encrypt(buf, buf)

			// A = MSB(64, B) ^ t, where t = (n*j)+i
			t := uint64(n*j + i)
			copy(a, buf[:8])
			xorBigEndianCounter(a, t)

			// R[i] = LSB(64, B)
			copy(r[i-1], buf[8:])
		}
	}

	ciphertext := make([]byte, 8+len(plaintext))
	copy(ciphertext[:8], a)
	for i := 0; i < n; i++ {
		copy(ciphertext[8+i*8:8+(i+1)*8], r[i])
	}

	return ciphertext, nil
}

// Unwrap decrypts a wrapped key produced by Wrap, verifying its integrity
// check value. Returns ErrInvalidCiphertext if the key is wrong or the
// ciphertext has been modified.
func Unwrap(kek, ciphertext []byte) ([]byte, error) {
	if len(ciphertext)%8 != 0 {
		return nil, ErrNotMultipleOf8
	}
	if len(ciphertext) < 24 {
		return nil, ErrTooShort
	}

	block, err := aes.NewCipher(kek)
	if err != nil {
		return nil, err
	}

	n := len(ciphertext)/8 - 1
	a := make([]byte, 8)
	copy(a, ciphertext[:8])

	r := make([][]byte, n)
	for i := 0; i < n; i++ {
		r[i] = make([]byte, 8)
		copy(r[i], ciphertext[8+i*8:8+(i+1)*8])
	}

	buf := make([]byte, 16)
	for j := 5; j >= 0; j-- {
		for i := n; i >= 1; i-- {
			// A = MSB(64, AES-1(K, (A ^ t) | R[i])), t = (n*j)+i
			t := uint64(n*j + i)
			xorBigEndianCounter(a, t)

			copy(buf[:8], a)
			copy(buf[8:], r[i-1])
			block.Decrypt(buf, buf)

			copy(a, buf[:8])
			copy(r[i-1], buf[8:])
		}
	}

	if subtle.ConstantTimeCompare(a, defaultIV) != 1 {
		return nil, ErrInvalidCiphertext
	}

	plaintext := make([]byte, n*8)
	for i := 0; i < n; i++ {
		copy(plaintext[i*8:(i+1)*8], r[i])
	}

	return plaintext, nil
}

func xorBigEndianCounter(a []byte, t uint64) {
	for i := 0; i < 8; i++ {
		a[7-i] ^= byte(t >> (8 * i))
	}
}
