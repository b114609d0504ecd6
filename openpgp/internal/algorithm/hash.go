package algorithm

import (
	"crypto"
	"hash"

	// Blank imports register their crypto.Hash constructors; this
	// package only ever refers to hashes via the crypto.Hash ID.
	_ "crypto/sha1"
	_ "crypto/sha256"
	_ "crypto/sha512"
	_ "golang.org/x/crypto/sha3"
)

// Hash is an official hash function algorithm identifier, as defined in
// RFC 9580, section 9.5.
type Hash interface {
	// Id returns the algorithm ID, as a byte, of this hash function.
	Id() uint8
	// Available reports whether the underlying hash function is linked
	// into the binary.
	Available() bool
	// HashFunc returns the crypto.Hash constant the receiver wraps, for
	// use with algorithms that key off of it directly (e.g. RSA PSS/PKCS1).
	HashFunc() crypto.Hash
	// New returns a new hash.Hash calculating this algorithm.
	New() hash.Hash
	// Size returns the length, in bytes, of this hash function's output.
	Size() int
}

// HashFunction implements the Hash interface over a crypto.Hash constant.
type HashFunction crypto.Hash

func (h HashFunction) Available() bool {
	return crypto.Hash(h).Available()
}

func (h HashFunction) New() hash.Hash {
	return crypto.Hash(h).New()
}

func (h HashFunction) HashFunc() crypto.Hash {
	return crypto.Hash(h)
}

func (h HashFunction) Size() int {
	return crypto.Hash(h).Size()
}

func (h HashFunction) Id() uint8 {
	id, ok := hashToHashId[h]
	if !ok {
		panic("algorithm: unsupported hash function")
	}
	return id
}

// The following hash functions are used in OpenPGP as specified in
// RFC 9580, section 9.5, plus the SHA-3 variants used by PQC signature
// algorithms.
var (
	SHA1   HashFunction = HashFunction(crypto.SHA1)
	SHA224 HashFunction = HashFunction(crypto.SHA224)
	SHA256 HashFunction = HashFunction(crypto.SHA256)
	SHA384 HashFunction = HashFunction(crypto.SHA384)
	SHA512 HashFunction = HashFunction(crypto.SHA512)
	SHA3_256 HashFunction = HashFunction(crypto.SHA3_256)
	SHA3_512 HashFunction = HashFunction(crypto.SHA3_512)
)

var hashToHashId = map[HashFunction]uint8{
	SHA1:     2,
	SHA256:   8,
	SHA384:   9,
	SHA512:   10,
	SHA224:   11,
	SHA3_256: 12,
	SHA3_512: 14,
}

// HashById represents the different hash functions OpenPGP can use, as
// defined in RFC 9580, section 9.5, indexed by algorithm ID.
var HashById = map[uint8]Hash{
	2:  SHA1,
	8:  SHA256,
	9:  SHA384,
	10: SHA512,
	11: SHA224,
	12: SHA3_256,
	14: SHA3_512,
}

// HashIdToHash returns the crypto.Hash corresponding to the given wire
// algorithm ID, for callers (such as packet.Signature) that key off of
// crypto.Hash directly rather than the Hash interface above.
func HashIdToHash(id uint8) (crypto.Hash, bool) {
	h, ok := HashById[id]
	if !ok {
		return 0, false
	}
	return h.HashFunc(), true
}

// HashToHashId returns the wire algorithm ID for the given crypto.Hash,
// erroring if it is not one OpenPGP defines an ID for.
func HashToHashId(h crypto.Hash) (uint8, error) {
	id, ok := hashToHashId[HashFunction(h)]
	if !ok {
		return 0, errUnsupportedHash
	}
	return id, nil
}

type unsupportedHashError struct{}

func (unsupportedHashError) Error() string { return "algorithm: unsupported hash function" }

var errUnsupportedHash = unsupportedHashError{}
