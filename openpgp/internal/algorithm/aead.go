package algorithm

import (
	"crypto/aes"
	"crypto/cipher"

	"github.com/openpgp-go/pgpcore/openpgp/eax"
	"github.com/openpgp-go/pgpcore/openpgp/ocb"
)

// AEADMode is an AEAD encryption mode supported by OpenPGP, as defined in
// RFC 9580, section 9.6.
type AEADMode interface {
	// Id returns the algorithm ID of this AEAD mode.
	Id() uint8
	// NonceLength returns the length, in bytes, of the nonce this mode needs.
	NonceLength() int
	// TagLength returns the length, in bytes, of the authentication tag
	// this mode appends to the ciphertext.
	TagLength() int
	// New instantiates this AEAD mode over AES keyed with key.
	New(key []byte) (cipher.AEAD, error)
}

type aeadMode uint8

const (
	// AEADModeEAX is the EAX mode of operation defined in RFC 9580.
	AEADModeEAX aeadMode = 1
	// AEADModeOCB is the OCB mode of operation defined in RFC 9580.
	AEADModeOCB aeadMode = 2
	// AEADModeGCM is GCM, used only in OpenPGP's experimental profile.
	AEADModeGCM aeadMode = 3
)

// AEADModeById indexes the supported AEAD modes by their algorithm ID.
var AEADModeById = map[uint8]AEADMode{
	uint8(AEADModeEAX): AEADModeEAX,
	uint8(AEADModeOCB): AEADModeOCB,
	uint8(AEADModeGCM): AEADModeGCM,
}

func (mode aeadMode) Id() uint8 {
	return uint8(mode)
}

func (mode aeadMode) NonceLength() int {
	switch mode {
	case AEADModeEAX:
		return 16
	case AEADModeOCB:
		return 15
	case AEADModeGCM:
		return 12
	default:
		panic("algorithm: unsupported AEAD mode")
	}
}

func (mode aeadMode) TagLength() int {
	return 16
}

// New instantiates this AEAD mode over AES-{128,192,256} keyed with key.
// EAX derives its own block cipher internally; OCB and GCM wrap a
// caller-constructed AES block, so the AES key schedule runs once here
// for all three modes.
func (mode aeadMode) New(key []byte) (cipher.AEAD, error) {
	switch mode {
	case AEADModeEAX:
		return eax.NewEAX(key)
	case AEADModeOCB:
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, err
		}
		return ocb.NewOCB(block)
	case AEADModeGCM:
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, err
		}
		return cipher.NewGCM(block)
	default:
		panic("algorithm: unsupported AEAD mode")
	}
}
