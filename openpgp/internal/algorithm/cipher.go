package algorithm

import (
	"crypto/aes"
	"crypto/cipher"
)

// Cipher is a block cipher algorithm supported by OpenPGP, as defined in
// RFC 9580, section 9.3.
type Cipher interface {
	// Id returns the algorithm ID of this cipher.
	Id() uint8
	// KeySize returns the key size, in bytes, of this cipher.
	KeySize() int
	// BlockSize returns the block size, in bytes, of this cipher.
	BlockSize() int
	// New returns a fresh instance of this cipher keyed with key.
	New(key []byte) cipher.Block
}

// CipherFunction represents the different block ciphers OpenPGP can use,
// keyed by algorithm ID as defined in RFC 9580, section 9.3.
type CipherFunction uint8

// Supported cipher functions. Only AES variants are defined: RFC 9580
// dropped the legacy IDEA/3DES/CAST5/Blowfish/Twofish algorithms from the
// set new implementations need to produce.
const (
	AES128 CipherFunction = 7
	AES192 CipherFunction = 8
	AES256 CipherFunction = 9
)

// CipherById indexes the supported ciphers by their algorithm ID.
var CipherById = map[uint8]Cipher{
	uint8(AES128): AES128,
	uint8(AES192): AES192,
	uint8(AES256): AES256,
}

func (sk CipherFunction) Id() uint8 {
	return uint8(sk)
}

var keySizeByID = map[CipherFunction]int{
	AES128: 16,
	AES192: 24,
	AES256: 32,
}

// KeySize returns the key size, in bytes, of this cipher.
func (sk CipherFunction) KeySize() int {
	size, ok := keySizeByID[sk]
	if !ok {
		panic("algorithm: unsupported cipher function")
	}
	return size
}

// BlockSize returns the block size, in bytes, of this cipher. Every
// supported cipher is AES, so the block size is always 16.
func (sk CipherFunction) BlockSize() int {
	return aes.BlockSize
}

// New returns a fresh instance of the given cipher.
func (sk CipherFunction) New(key []byte) (block cipher.Block) {
	block, _ = aes.NewCipher(key)
	return
}
