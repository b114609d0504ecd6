// Package s2k implements the various OpenPGP string-to-key transforms, as
// specified in RFC 9580, section 3.7.1.
package s2k

import (
	"crypto"
	"hash"
	"io"
	"strconv"

	"github.com/openpgp-go/pgpcore/openpgp/errors"
	"golang.org/x/crypto/argon2"
)

// Params describes all the parameters of the various S2K schemes, along
// with the salt. The Cache in this package keys its entries by the
// serialized form of Params, since the salt slice keeps Params itself
// from being usable as a map key.
type Params struct {
	// mode is the S2K mode, as specified in RFC 9580, section 3.7.1:
	// 0 is simple, 1 is salted, 3 is iterated and salted, 4 is Argon2,
	// and 101 is the GNU extension for a "dummy" S2K with no key material.
	mode byte
	// hashId is the algorithm ID of the underlying hash function, when
	// mode is not Argon2.
	hashId byte
	// salt is the salt, for modes 1, 3, and 4.
	salt []byte
	// countByte is the encoded iteration count, for mode 3.
	countByte byte
	// argon2Passes, argon2Parallelism and argon2MemoryExp hold the
	// Argon2 parameters, for mode 4, as defined in RFC 9580, section 3.7.1.4.
	argon2Passes, argon2Parallelism, argon2MemoryExp byte
}

// Dummy returns true if the parameters indicate a GNU-Dummy S2K, in
// which case there is no key material and Function must not be called.
func (params *Params) Dummy() bool {
	return params != nil && params.mode == 101
}

// Function returns a function that performs the S2K operation described
// by params, writing the derived key into its first argument.
func (params *Params) Function() (f func(out, in []byte), err error) {
	if params.Dummy() {
		return nil, errors.ErrDummyPrivateKey
	}
	if params.mode == 4 {
		return func(out, in []byte) {
			Argon2(out, in, params.salt, params.argon2Passes, params.argon2Parallelism, params.argon2MemoryExp)
		}, nil
	}

	hashFunc, ok := algorithmHash[params.hashId]
	if !ok || !hashFunc.Available() {
		return nil, errors.UnsupportedError("hash for S2K function: " + strconv.Itoa(int(params.hashId)))
	}

	switch params.mode {
	case 0:
		f = func(out, in []byte) {
			Simple(out, hashFunc.New(), in)
		}
	case 1:
		f = func(out, in []byte) {
			Salted(out, hashFunc.New(), in, params.salt)
		}
	case 3:
		count := decodeCount(params.countByte)
		f = func(out, in []byte) {
			Iterated(out, hashFunc.New(), in, params.salt, count)
		}
	default:
		return nil, errors.UnsupportedError("S2K function mode: " + strconv.Itoa(int(params.mode)))
	}
	return f, nil
}

// ParseIntoParams parses an S2K descriptor from r, as described in RFC
// 9580, section 3.7.1.
func ParseIntoParams(r io.Reader) (params *Params, err error) {
	var buf [1]byte
	params = &Params{}

	if _, err = io.ReadFull(r, buf[:]); err != nil {
		return nil, err
	}
	params.mode = buf[0]

	switch params.mode {
	case 0:
		if _, err = io.ReadFull(r, buf[:]); err != nil {
			return nil, err
		}
		params.hashId = buf[0]
	case 1:
		if _, err = io.ReadFull(r, buf[:]); err != nil {
			return nil, err
		}
		params.hashId = buf[0]
		params.salt = make([]byte, 8)
		if _, err = io.ReadFull(r, params.salt); err != nil {
			return nil, err
		}
	case 3:
		if _, err = io.ReadFull(r, buf[:]); err != nil {
			return nil, err
		}
		params.hashId = buf[0]
		params.salt = make([]byte, 8)
		if _, err = io.ReadFull(r, params.salt); err != nil {
			return nil, err
		}
		if _, err = io.ReadFull(r, buf[:]); err != nil {
			return nil, err
		}
		params.countByte = buf[0]
	case 4:
		params.salt = make([]byte, 16)
		if _, err = io.ReadFull(r, params.salt); err != nil {
			return nil, err
		}
		var argonParams [3]byte
		if _, err = io.ReadFull(r, argonParams[:]); err != nil {
			return nil, err
		}
		params.argon2Passes = argonParams[0]
		params.argon2Parallelism = argonParams[1]
		params.argon2MemoryExp = argonParams[2]
	case 101:
		// GNU extension, mode 101: a dummy S2K with no usable key
		// material. A hash algorithm octet follows, then "GNU" and a
		// one-octet extension ID; only extension 1 (dummy) is accepted.
		if _, err = io.ReadFull(r, buf[:]); err != nil {
			return nil, err
		}
		params.hashId = buf[0]
		var gnuExt [4]byte
		if _, err = io.ReadFull(r, gnuExt[:]); err != nil {
			return nil, err
		}
		if string(gnuExt[:3]) != "GNU" || gnuExt[3] != 1 {
			return nil, errors.UnsupportedError("unknown S2K mode 101 extension")
		}
	default:
		return nil, errors.UnsupportedError("S2K function mode: " + strconv.Itoa(int(params.mode)))
	}

	return params, nil
}

// Serialize writes the S2K descriptor to w.
func (params *Params) Serialize(w io.Writer) (err error) {
	if _, err = w.Write([]byte{params.mode}); err != nil {
		return
	}
	switch params.mode {
	case 0:
		_, err = w.Write([]byte{params.hashId})
	case 1:
		if _, err = w.Write([]byte{params.hashId}); err != nil {
			return
		}
		_, err = w.Write(params.salt)
	case 3:
		if _, err = w.Write([]byte{params.hashId}); err != nil {
			return
		}
		if _, err = w.Write(params.salt); err != nil {
			return
		}
		_, err = w.Write([]byte{params.countByte})
	case 4:
		if _, err = w.Write(params.salt); err != nil {
			return
		}
		_, err = w.Write([]byte{params.argon2Passes, params.argon2Parallelism, params.argon2MemoryExp})
	case 101:
		_, err = w.Write([]byte{params.hashId, 'G', 'N', 'U', 1})
	default:
		return errors.UnsupportedError("S2K function mode: " + strconv.Itoa(int(params.mode)))
	}
	return
}

// Parse reads a binary specification for a string-to-key transformation
// from r and returns a function which performs that transform.
func Parse(r io.Reader) (f func(out, in []byte), err error) {
	params, err := ParseIntoParams(r)
	if err != nil {
		return nil, err
	}
	return params.Function()
}

var algorithmHash = map[byte]crypto.Hash{
	2:  crypto.SHA1,
	8:  crypto.SHA256,
	9:  crypto.SHA384,
	10: crypto.SHA512,
	11: crypto.SHA224,
	12: crypto.SHA3_256,
	14: crypto.SHA3_512,
}

var hashToHashId = func() map[crypto.Hash]byte {
	m := make(map[crypto.Hash]byte, len(algorithmHash))
	for id, h := range algorithmHash {
		m[h] = id
	}
	return m
}()

// Simple writes to out the result of computing the Simple S2K function
// (RFC 9580, section 3.7.1.1) using the given hash and input passphrase.
func Simple(out []byte, h hash.Hash, in []byte) {
	Iterated(out, h, in, nil, 0)
}

// Salted writes to out the result of computing the Salted S2K function
// (RFC 9580, section 3.7.1.2) using the given hash, input passphrase and
// salt.
func Salted(out []byte, h hash.Hash, in []byte, salt []byte) {
	Iterated(out, h, in, salt, 1)
}

// Iterated writes to out the result of computing the Iterated and Salted
// S2K function (RFC 9580, section 3.7.1.3). count is the plain (not
// encoded) number of times the salt+passphrase is hashed; a count value
// less than len(salt)+len(in) is rounded up to that length.
func Iterated(out []byte, h hash.Hash, in []byte, salt []byte, count int) {
	combined := make([]byte, 0, len(salt)+len(in))
	combined = append(combined, salt...)
	combined = append(combined, in...)

	if count < len(combined) {
		count = len(combined)
	}

	digestSize := h.Size()
	for i := 0; len(out) > 0; i++ {
		h.Reset()
		for j := 0; j < i; j++ {
			h.Write([]byte{0})
		}
		written := 0
		for written < count {
			remaining := count - written
			if remaining > len(combined) {
				remaining = len(combined)
			}
			h.Write(combined[:remaining])
			written += remaining
		}
		result := h.Sum(nil)
		n := copy(out, result)
		out = out[n:]
		_ = digestSize
	}
}

// Argon2 writes to out the result of computing the Argon2 S2K function
// (RFC 9580, section 3.7.1.4) over the given passphrase, using Argon2id
// with the given encoded parameters.
func Argon2(out []byte, in, salt []byte, passes, parallelism, memoryExp byte) {
	memory := uint32(1) << memoryExp
	key := argon2.IDKey(in, salt, uint32(passes), memory, parallelism, uint32(len(out)))
	copy(out, key)
}

func decodeCount(c byte) int {
	return (16 + int(c&15)) << (uint32(c>>4) + 6)
}

func encodeCount(i int) byte {
	if i < 1024 {
		i = 1024
	}
	if i > 0x3e00000 {
		i = 0x3e00000
	}

	for c := 0; c < 256; c++ {
		if i <= decodeCount(byte(c)) {
			return byte(c)
		}
	}
	return 255
}

// Mode denotes the S2K mode, as specified in RFC 9580, section 3.7.1.
type Mode uint8

const (
	SimpleS2K         = Mode(0)
	SaltedS2K         = Mode(1)
	IteratedSaltedS2K = Mode(3)
	Argon2S2K         = Mode(4)
	GnuDummyS2K       = Mode(101)
)

// Config collects configuration parameters for S2K key-stretching
// transformations. A nil Config is valid and results in all default
// values.
type Config struct {
	// Hash is the default hash function to be used. If nil, SHA256 is used.
	Hash crypto.Hash
	// S2KMode is the mode of s2k function: 1 (salted), 3 (iterated and
	// salted) or 4 (Argon2). If zero, the salted function is used when
	// PassphraseIsHighEntropy is set and the iterated and salted function
	// otherwise; the simple function (mode 0) cannot be selected here.
	S2KMode Mode
	// S2KCount is only used for S2K mode 3, and specifies how many times
	// to iterate the hash function (with the salt). If zero, the
	// default number of iterations is used.
	S2KCount int
	// ArgonConfig is used to configure the Argon2 s2k function, only relevant
	// if S2KMode is set to 4.
	ArgonConfig *ArgonConfig
	// PassphraseIsHighEntropy may be set to true when the passphrase is
	// known to already be uniformly random (e.g. a generated recovery
	// code rather than a user-chosen phrase); when S2KMode is zero,
	// Serialize then uses a lighter Salted S2K instead of paying for iterated
	// stretching that buys no additional resistance to guessing.
	PassphraseIsHighEntropy bool
}

// ArgonConfig stores the Argon2 parameters: a time, memory, and
// parallelism factor used to configure the Argon2 key-derivation.
type ArgonConfig struct {
	NumberOfPasses, DegreeOfParallelism uint8
	// The memory usage is expressed in kibibytes as 2^(MemoryExponent).
	MemoryExponent uint8
}

func (c *Config) hash() crypto.Hash {
	if c == nil || uint(c.Hash) == 0 {
		return crypto.SHA256
	}
	return c.Hash
}

func (c *Config) mode() Mode {
	if c == nil {
		return IteratedSaltedS2K
	}
	if c.S2KMode != 0 {
		return c.S2KMode
	}
	if c.PassphraseIsHighEntropy {
		return SaltedS2K
	}
	return IteratedSaltedS2K
}

func (c *Config) encodedCount() byte {
	if c == nil || c.S2KCount == 0 {
		return 96 // The default from GPG.
	}
	return encodeCount(c.S2KCount)
}

func (c *Config) argon2() *ArgonConfig {
	if c == nil {
		return nil
	}
	return c.ArgonConfig
}

func (ac *ArgonConfig) params() (passes, parallelism, memoryExp byte) {
	if ac == nil {
		return 3, 4, 16
	}
	passes = ac.NumberOfPasses
	if passes == 0 {
		passes = 3
	}
	parallelism = ac.DegreeOfParallelism
	if parallelism == 0 {
		parallelism = 4
	}
	memoryExp = ac.MemoryExponent
	if memoryExp == 0 {
		memoryExp = 16
	}
	return
}

// Serialize salts and stretches the given passphrase and writes the
// resulting key into key. It also serializes an S2K descriptor to w.
func Serialize(w io.Writer, key []byte, rand io.Reader, passphrase []byte, c *Config) error {
	var params *Params

	switch c.mode() {
	case 0:
		hashId, ok := hashToHashId[c.hash()]
		if !ok {
			return errors.UnsupportedError("no hash ID for hash function")
		}
		params = &Params{mode: 0, hashId: hashId}
		Simple(key, c.hash().New(), passphrase)
	case 1:
		hashId, ok := hashToHashId[c.hash()]
		if !ok {
			return errors.UnsupportedError("no hash ID for hash function")
		}
		salt := make([]byte, 8)
		if _, err := io.ReadFull(rand, salt); err != nil {
			return err
		}
		params = &Params{mode: 1, hashId: hashId, salt: salt}
		Salted(key, c.hash().New(), passphrase, salt)
	case 4:
		salt := make([]byte, 16)
		if _, err := io.ReadFull(rand, salt); err != nil {
			return err
		}
		passes, parallelism, memoryExp := c.argon2().params()
		params = &Params{mode: 4, salt: salt, argon2Passes: passes, argon2Parallelism: parallelism, argon2MemoryExp: memoryExp}
		Argon2(key, passphrase, salt, passes, parallelism, memoryExp)
	default:
		hashId, ok := hashToHashId[c.hash()]
		if !ok {
			return errors.UnsupportedError("no hash ID for hash function")
		}
		salt := make([]byte, 8)
		if _, err := io.ReadFull(rand, salt); err != nil {
			return err
		}
		countByte := c.encodedCount()
		params = &Params{mode: 3, hashId: hashId, salt: salt, countByte: countByte}
		Iterated(key, c.hash().New(), passphrase, salt, decodeCount(countByte))
	}

	return params.Serialize(w)
}
