// Package ecc implements a generic interface for ECDH, ECDSA, and EdDSA
// over the curves OpenPGP recognizes, both legacy OID-identified curves
// and the fixed native algorithms (X25519, X448, Ed25519, Ed448).
package ecc

import (
	"io"
	"math/big"
)

type Curve interface {
	GetCurveType() CurveType
	GetCurveName() string
}

// ECDSACurve is implemented by curves used for classic ECDSA signatures.
// Point and scalar material is exchanged as big.Int, matching the shape
// that crypto/ecdsa and the packet MPI fields need.
type ECDSACurve interface {
	Curve
	MarshalPoint(x, y *big.Int) []byte
	UnmarshalPoint([]byte) (x, y *big.Int)
	MarshalIntegerSecret(d *big.Int) []byte
	UnmarshalIntegerSecret(d []byte) *big.Int
	GenerateECDSA(rand io.Reader) (x, y, secret *big.Int, err error)
	Sign(rand io.Reader, x, y, d *big.Int, hash []byte) (r, s *big.Int, err error)
	Verify(x, y *big.Int, hash []byte, r, s *big.Int) bool
	Validate(x, y *big.Int, secret []byte) error
}

// EdDSACurve is implemented by Ed25519 and Ed448. Point and scalar
// material never leaves native byte-string form.
type EdDSACurve interface {
	Curve
	MarshalPoint(x []byte) []byte
	UnmarshalPoint([]byte) (x []byte)
	MarshalByteSecret(d []byte) []byte
	UnmarshalByteSecret(d []byte) []byte
	GenerateEdDSA(rand io.Reader) (pub, priv []byte, err error)
	Sign(publicKey, privateKey, message []byte) (r, s []byte, err error)
	Verify(publicKey, message, r, s []byte) bool
	Validate(publicKey, privateKey []byte) (err error)
}

// ECDHCurve is implemented by every curve usable for key encapsulation:
// the legacy NIST/Brainpool/secp256k1 curves and Curve25519/X448. Point
// and secret material are exchanged as raw byte strings; callers are
// responsible for any wire-level prefixing (e.g. the "prefixed native
// point" 0x40 marker used by legacy ECDH) or MPI/octet-string framing.
type ECDHCurve interface {
	Curve
	GenerateECDH(rand io.Reader) (point, secret []byte, err error)
	Encaps(rand io.Reader, point []byte) (ephemeral, sharedSecret []byte, err error)
	Decaps(ephemeral, secret []byte) (sharedSecret []byte, err error)
	ValidateECDH(point, secret []byte) error
}
