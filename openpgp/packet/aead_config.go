// Copyright (C) 2019 ProtonTech AG

package packet

import (
	"crypto/rand"

	"github.com/openpgp-go/pgpcore/openpgp/errors"
	"github.com/openpgp-go/pgpcore/openpgp/internal/algorithm"
)

// Only currently defined version
const aeadEncryptedVersion = 1

type AEADMode uint8

// Supported modes of operation (see RFC 9580, section 5.16, and RFC 7253).
// GCM is only used by OpenPGP's experimental symmetric-signature profile.
const (
	AEADModeEAX = AEADMode(1)
	AEADModeOCB = AEADMode(2)
	AEADModeGCM = AEADMode(3)
)

// AEADConfig collects a number of AEAD parameters along with sensible
// defaults. A nil AEADConfig is valid and results in all default values.
//
// DefaultCipher, DefaultMode and DefaultChunkSizeByte are set by callers
// that want to configure how new packets are produced. The remaining,
// unexported fields mirror a parsed AEAD Encrypted Data packet header
// (tag 20) or a reconstructed SKESK v6 prefix, and take precedence when
// present so that the same type serves both roles.
type AEADConfig struct {
	DefaultCipher        CipherFunction
	DefaultMode          AEADMode
	DefaultChunkSizeByte byte

	version       byte
	cipher        CipherFunction
	mode          AEADMode
	chunkSizeByte byte
	initialNonce  []byte
}

var defaultConfig = &AEADConfig{
	DefaultCipher:        CipherAES128,
	DefaultMode:          AEADModeEAX,
	DefaultChunkSizeByte: 0x0C, // 1<<(6 + 12) = 262144 bytes
}

// Version returns the AEAD version implemented, and is currently defined
// as 0x01.
func (conf *AEADConfig) Version() byte {
	if conf != nil && conf.version != 0 {
		return conf.version
	}
	return aeadEncryptedVersion
}

// Cipher returns the underlying block cipher used by the AEAD algorithm.
func (conf *AEADConfig) Cipher() CipherFunction {
	if conf == nil {
		return defaultConfig.DefaultCipher
	}
	if conf.cipher != 0 {
		return conf.cipher
	}
	if conf.DefaultCipher != 0 {
		return conf.DefaultCipher
	}
	return defaultConfig.DefaultCipher
}

// Mode returns the AEAD mode of operation.
func (conf *AEADConfig) Mode() AEADMode {
	if conf == nil {
		return defaultConfig.DefaultMode
	}
	if conf.mode != 0 {
		return conf.mode
	}
	if conf.DefaultMode != 0 {
		return conf.DefaultMode
	}
	return defaultConfig.DefaultMode
}

// ChunkSizeByte returns the byte indicating the chunk size. The effective
// chunk size is computed with the formula uint64(1) << (chunkSizeByte + 6)
func (conf *AEADConfig) ChunkSizeByte() byte {
	if conf == nil {
		return defaultConfig.DefaultChunkSizeByte
	}
	if conf.chunkSizeByte != 0 {
		return conf.chunkSizeByte
	}
	if conf.DefaultChunkSizeByte != 0 {
		return conf.DefaultChunkSizeByte
	}
	return defaultConfig.DefaultChunkSizeByte
}

// ChunkSize returns the maximum number of body octets in each chunk of data.
func (conf *AEADConfig) ChunkSize() uint64 {
	return uint64(1) << (conf.ChunkSizeByte() + 6)
}

// TagLength returns the length in bytes of authentication tags for conf's
// mode of operation.
func (conf *AEADConfig) TagLength() int {
	return tagLength(conf.Mode())
}

// InitialNonce returns the initial nonce, generating a fresh random one
// of the appropriate length on first use if none was set.
func (conf *AEADConfig) InitialNonce() []byte {
	if conf.initialNonce == nil {
		conf.initialNonce = make([]byte, nonceLength(conf.Mode()))
		rand.Read(conf.initialNonce)
	}
	return conf.initialNonce
}

// Check validates that conf describes a supported and well-formed AEAD
// configuration.
func (conf *AEADConfig) Check() error {
	if _, ok := algorithm.CipherById[uint8(conf.Cipher())]; !ok {
		return errors.UnsupportedError("unknown cipher algorithm for AEAD")
	}
	switch conf.Mode() {
	case AEADModeEAX, AEADModeOCB, AEADModeGCM:
	default:
		return errors.UnsupportedError("AEAD mode unsupported")
	}
	if conf.ChunkSizeByte() > 0x56 {
		return errors.UnsupportedError("aead: too long chunk size")
	}
	return nil
}

// tagLength returns the length in bytes of authentication tags.
func tagLength(mode AEADMode) int {
	switch mode {
	case AEADModeEAX, AEADModeOCB, AEADModeGCM:
		return 16
	}
	panic("unsupported AEAD mode")
}

// nonceLength returns the length in bytes of nonces.
func nonceLength(mode AEADMode) int {
	switch mode {
	case AEADModeEAX:
		return 16
	case AEADModeOCB:
		return 15
	case AEADModeGCM:
		return 12
	}
	panic("unsupported aead mode")
}
