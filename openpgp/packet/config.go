// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package packet

import (
	"crypto"
	"crypto/rand"
	"io"
	"time"

	"github.com/openpgp-go/pgpcore/openpgp/s2k"
)

// Config collects a number of parameters along with sensible defaults.
// A nil *Config is valid and results in all default values.
type Config struct {
	// Rand provides the source of entropy used during packet generation
	// and encryption. If nil, crypto/rand.Reader is used.
	Rand io.Reader
	// DefaultHash is the default hash function to be used. If zero,
	// SHA-256 is used.
	DefaultHash crypto.Hash
	// DefaultCipher is the cipher to be used. If zero, AES-128 is used.
	DefaultCipher CipherFunction
	// Time returns the timestamp to be used for packet creation. If
	// nil, time.Now is used.
	Time func() time.Time
	// DefaultCompressionAlgo is the compression algorithm to be used
	// when generating message data. If zero, no compression is done.
	DefaultCompressionAlgo CompressionAlgo
	// CompressionConfig configures the compression settings.
	CompressionConfig *CompressionConfig
	// S2KConfig configures the key-stretching transform applied to
	// passphrase-protected private keys and symmetric-key encrypted
	// session keys.
	S2KConfig *s2k.Config
	// RSABits is the number of bits for new RSA keys. If zero, 2048 is
	// used.
	RSABits int
	// AEADConfig, if not nil, turns on AEAD encryption and configures
	// its parameters. A nil AEADConfig means the legacy MDC/CFB
	// construction is produced instead.
	AEADConfig *AEADConfig
	// V6Keys configures version-6 (RFC 9580) packet generation; the
	// zero value generates version-4 packets.
	V6Keys bool
	// S2KCount sets the number of S2K iterations directly and is read
	// through PasswordHashIterations. If zero, a sensible default is used.
	S2KCount int
}

// Random returns a random number generator, using config.Rand if set or
// crypto/rand.Reader otherwise.
func (c *Config) Random() io.Reader {
	if c == nil || c.Rand == nil {
		return rand.Reader
	}
	return c.Rand
}

// Hash returns the configured default hash function, or SHA-256.
func (c *Config) Hash() crypto.Hash {
	if c == nil || uint(c.DefaultHash) == 0 {
		return crypto.SHA256
	}
	return c.DefaultHash
}

// Cipher returns the configured default cipher, or AES-128.
func (c *Config) Cipher() CipherFunction {
	if c == nil || c.DefaultCipher == 0 {
		return CipherAES128
	}
	return c.DefaultCipher
}

// Now returns the configured current time, or time.Now.
func (c *Config) Now() time.Time {
	if c == nil || c.Time == nil {
		return time.Now()
	}
	return c.Time()
}

// V6 reports whether version-6 (RFC 9580) packets should be generated.
func (c *Config) V6() bool {
	return c != nil && c.V6Keys
}

// Compression returns the configured compression algorithm, or
// CompressionNone.
func (c *Config) Compression() CompressionAlgo {
	if c == nil {
		return CompressionNone
	}
	return c.DefaultCompressionAlgo
}

// RSAModulusBits returns the configured key size for newly generated
// RSA keys, or 2048.
func (c *Config) RSAModulusBits() int {
	if c == nil || c.RSABits == 0 {
		return 2048
	}
	return c.RSABits
}

// PasswordHashIterations returns the number of times a passphrase
// should be hashed by the Iterated and Salted S2K function, or 0 to
// defer to the default used by the s2k package.
func (c *Config) PasswordHashIterations() int {
	if c == nil {
		return 0
	}
	return c.S2KCount
}

// SKEVersion returns the version number to be used for newly serialized
// Symmetric-Key Encrypted Session Key packets: version 6 if an
// AEADConfig is present or V6Keys is set, version 4 otherwise.
func (c *Config) SKEVersion() int {
	if c == nil {
		return 4
	}
	if c.AEADConfig != nil || c.V6Keys {
		return 6
	}
	return 4
}

// AEAD returns the configured AEADConfig, which may be nil if AEAD
// encryption is not requested.
func (c *Config) AEAD() *AEADConfig {
	if c == nil {
		return nil
	}
	return c.AEADConfig
}

// S2K returns the configured S2K parameters, or nil when c or its
// S2KConfig is nil.
func (c *Config) S2K() *s2k.Config {
	if c == nil {
		return nil
	}
	return c.S2KConfig
}

// CompressionConfig collects parameters tuning the behaviour of a
// compressor.
type CompressionConfig struct {
	// Level is the compression level to use. It must be in range from 1
	// (BestSpeed) to 9 (BestCompression), or it may be -1 (DefaultCompression).
	Level int
}

// CompressionAlgo identifies a compression algorithm as used by a
// Compressed Data packet (RFC 9580, section 5.9). Full compressed-packet
// support is out of scope here; the identifiers exist so that a Config
// can record a preference without this package needing the compressors
// themselves.
type CompressionAlgo uint8

const (
	CompressionNone CompressionAlgo = 0
	CompressionZIP  CompressionAlgo = 1
	CompressionZLIB CompressionAlgo = 2
	CompressionBZIP2 CompressionAlgo = 3
)
