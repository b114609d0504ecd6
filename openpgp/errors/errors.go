// Package errors contains common error types used throughout the openpgp
// packages, so that callers can distinguish structural problems (malformed
// packets) from unsupported features or invalid key/signature material.
package errors

import (
	"errors"
	"fmt"
)

// Is reports whether any error in err's chain matches target. It is a
// thin re-export of the standard library so callers only need to import
// this package.
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Unwrap returns the result of calling the Unwrap method on err.
func Unwrap(err error) error { return errors.Unwrap(err) }

// New returns an error formatted from the given arguments, mirroring the
// standard library's fmt.Errorf/errors.New duo in a single call.
func New(args ...interface{}) error {
	return errors.New(fmt.Sprint(args...))
}

// StructuralError indicates that a packet's structure is invalid: wrong
// framing, an impossible field length, a value outside its defined range.
type StructuralError string

func (s StructuralError) Error() string {
	return "openpgp: invalid data: " + string(s)
}

// UnsupportedError indicates that, although the packet or key material
// parsed correctly, it uses a feature this implementation does not
// support (an unknown algorithm ID, an unrecognized curve OID, ...).
type UnsupportedError string

func (s UnsupportedError) Error() string {
	return "openpgp: unsupported feature: " + string(s)
}

// InvalidArgumentError indicates that a caller passed a value to an
// exported function that is invalid for that function, independent of
// any parsed packet.
type InvalidArgumentError string

func (s InvalidArgumentError) Error() string {
	return "openpgp: invalid argument: " + string(s)
}

// SignatureError indicates that a signature failed to verify.
type SignatureError string

func (s SignatureError) Error() string {
	return "openpgp: invalid signature: " + string(s)
}

// KeyInvalidError indicates that a key fails validation: a public point
// does not lie on the declared curve, a public/private component pair
// does not correspond, or similar.
type KeyInvalidError string

func (s KeyInvalidError) Error() string {
	return "openpgp: invalid key: " + string(s)
}

// AEADError indicates an error in AEAD encryption or decryption,
// including authentication tag mismatches.
type AEADError string

func (s AEADError) Error() string {
	return "openpgp: AEAD error: " + string(s)
}

// WeakAlgorithmError indicates that an algorithm was rejected because it
// falls below the configured minimum security level (e.g. SHA-1 used to
// bind a self-signature under a Config that disallows it).
type WeakAlgorithmError string

func (s WeakAlgorithmError) Error() string {
	return "openpgp: weak algorithm rejected: " + string(s)
}

// ErrMDCHashMismatch is returned when a legacy (v1) symmetrically
// encrypted integrity-protected packet's trailing MDC does not match the
// hash of the decrypted plaintext.
var ErrMDCHashMismatch = errors.New("openpgp: MDC hash mismatch")

// ErrDummyPrivateKey is returned by operations that need private key
// material when the key's S2K specifier is GNU-Dummy: the secret-key
// packet asserts the key exists but deliberately carries no usable
// private material (commonly used for keys held only on a smart card).
var ErrDummyPrivateKey = errors.New("openpgp: private key is a GNU-dummy placeholder")

// ErrKeyIncorrect is returned when a passphrase, derived S2K key, or
// session-key-decryption attempt fails its integrity check: the
// ciphertext could not be authenticated under the given key.
var ErrKeyIncorrect = errors.New("openpgp: incorrect key or passphrase")

// ErrMPI is returned when an MPI-encoded field's declared bit length
// does not match the length of the octets that follow it.
var ErrMPI = errors.New("openpgp: malformed MPI")
