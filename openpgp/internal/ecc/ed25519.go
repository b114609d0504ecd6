package ecc

import (
	"crypto/subtle"
	"io"

	"github.com/openpgp-go/pgpcore/openpgp/errors"
	ed25519lib "golang.org/x/crypto/ed25519"
)

// ed25519PointSize is the byte length of an Ed25519 public point or
// seed.
const ed25519PointSize = 32

// ed25519Curve implements the legacy curve-OID EdDSA encoding of
// Ed25519, as used by PubKeyAlgoEdDSA (as opposed to the native
// PubKeyAlgoEd25519, which the ed25519 package implements directly).
type ed25519Curve struct{}

// NewEd25519 returns the legacy curve-OID Ed25519 implementation.
func NewEd25519() *ed25519Curve {
	return &ed25519Curve{}
}

func (c *ed25519Curve) GetCurveType() CurveType {
	return Ed25519
}

func (c *ed25519Curve) GetCurveName() string {
	return "ed25519"
}

// MarshalPoint prefixes x with the native-point tag 0x40 that OpenPGP's
// curve-OID encoding uses for Ed25519/Curve25519 points.
func (c *ed25519Curve) MarshalPoint(x []byte) []byte {
	return append([]byte{0x40}, x...)
}

// UnmarshalPoint strips the 0x40 tag and left-pads back to
// ed25519PointSize, restoring any leading zero bytes a big-endian MPI
// encoding would have stripped.
func (c *ed25519Curve) UnmarshalPoint(point []byte) []byte {
	x := make([]byte, ed25519PointSize)
	copy(x[ed25519PointSize+1-len(point):], point[1:])
	return x
}

func (c *ed25519Curve) MarshalByteSecret(d []byte) []byte {
	return d
}

// UnmarshalByteSecret left-pads back to ed25519PointSize, restoring any
// leading zero bytes a big-endian MPI encoding would have stripped.
func (c *ed25519Curve) UnmarshalByteSecret(point []byte) []byte {
	d := make([]byte, ed25519PointSize)
	copy(d[ed25519PointSize-len(point):], point)
	return d
}

// GenerateEdDSA generates a fresh Ed25519 key pair, returning the
// 32-byte seed rather than the library's 64-byte expanded secret key.
func (c *ed25519Curve) GenerateEdDSA(rand io.Reader) (pub, priv []byte, err error) {
	pk, sk, err := ed25519lib.GenerateKey(rand)
	if err != nil {
		return nil, nil, err
	}
	return pk, sk[:ed25519PointSize], nil
}

// expand reassembles the library's 64-byte private key form from the
// 32-byte seed and public point OpenPGP stores separately.
func expand(publicKey, privateKey []byte) ed25519lib.PrivateKey {
	return append(privateKey, publicKey...)
}

func (c *ed25519Curve) Sign(publicKey, privateKey, message []byte) (r, s []byte, err error) {
	sig := ed25519lib.Sign(expand(publicKey, privateKey), message)
	return sig[:ed25519PointSize], sig[ed25519PointSize:], nil
}

func (c *ed25519Curve) Verify(publicKey, message, r, s []byte) bool {
	signature := make([]byte, ed25519lib.SignatureSize)
	copy(signature[ed25519PointSize-len(r):ed25519PointSize], r)
	copy(signature[2*ed25519PointSize-len(s):], s)
	return ed25519lib.Verify(publicKey, message, signature)
}

func (c *ed25519Curve) Validate(publicKey, privateKey []byte) error {
	expanded := expand(publicKey, privateKey)
	expected := ed25519lib.NewKeyFromSeed(expanded.Seed())
	if subtle.ConstantTimeCompare(expanded, expected) == 0 {
		return errors.KeyInvalidError("ecc: invalid ed25519 secret")
	}
	return nil
}
