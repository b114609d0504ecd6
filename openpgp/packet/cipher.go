// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package packet

import (
	"crypto/cipher"

	"github.com/openpgp-go/pgpcore/openpgp/internal/algorithm"
)

// CipherFunction represents the different block ciphers a packet may be
// protected with, keyed by algorithm ID (RFC 9580, section 9.3).
type CipherFunction algorithm.CipherFunction

const (
	CipherAES128 CipherFunction = CipherFunction(algorithm.AES128)
	CipherAES192 CipherFunction = CipherFunction(algorithm.AES192)
	CipherAES256 CipherFunction = CipherFunction(algorithm.AES256)
)

// Id returns the algorithm ID of cipher.
func (cipher CipherFunction) Id() uint8 {
	return uint8(cipher)
}

// KeySize returns the key size, in bytes, of cipher, or 0 if the cipher
// is unknown.
func (cipher CipherFunction) KeySize() int {
	if _, ok := algorithm.CipherById[uint8(cipher)]; !ok {
		return 0
	}
	return algorithm.CipherFunction(cipher).KeySize()
}

// blockSize returns the block size, in bytes, of cipher, or 0 if the
// cipher is unknown.
func (cf CipherFunction) blockSize() int {
	if _, ok := algorithm.CipherById[uint8(cf)]; !ok {
		return 0
	}
	return algorithm.CipherFunction(cf).BlockSize()
}

// new returns a fresh block cipher instance keyed with key.
func (cf CipherFunction) new(key []byte) cipher.Block {
	return algorithm.CipherFunction(cf).New(key)
}

// IsSupported returns true if cipher is a recognized cipher algorithm.
func (cf CipherFunction) IsSupported() bool {
	_, ok := algorithm.CipherById[uint8(cf)]
	return ok
}
