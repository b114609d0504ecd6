// Package eddsa implements EdDSA signatures over the Edwards curves that
// OpenPGP exposes via PubKeyAlgoEdDSA (legacy curve-OID encoding, as
// opposed to the native Ed25519/Ed448 algorithms in the ed25519/ed448
// packages).
package eddsa

import (
	"io"

	"github.com/openpgp-go/pgpcore/openpgp/errors"
	"github.com/openpgp-go/pgpcore/openpgp/internal/ecc"
)

// PublicKey is an EdDSA public point, encoded as the curve's native
// byte representation rather than an (X, Y) pair.
type PublicKey struct {
	X     []byte
	Curve ecc.EdDSACurve
}

// PrivateKey adds the secret scalar D to a PublicKey.
type PrivateKey struct {
	PublicKey
	D []byte
}

// GenerateKey generates a fresh EdDSA key pair on curve c.
func GenerateKey(rand io.Reader, c ecc.EdDSACurve) (*PrivateKey, error) {
	x, d, err := c.GenerateEdDSA(rand)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{PublicKey: PublicKey{X: x, Curve: c}, D: d}, nil
}

// Sign computes an EdDSA signature (r, s) over message using priv.
func Sign(priv *PrivateKey, message []byte) (r, s []byte, err error) {
	if priv == nil || priv.D == nil {
		return nil, nil, errors.InvalidArgumentError("eddsa: nil private key")
	}
	return priv.Curve.Sign(priv.X, priv.D, message)
}

// Verify reports whether (r, s) is a valid EdDSA signature over message
// under pub.
func Verify(pub *PublicKey, message, r, s []byte) bool {
	return pub.Curve.Verify(pub.X, message, r, s)
}

// Validate checks that priv's public point is consistent with its
// secret scalar on its curve.
func Validate(priv *PrivateKey) error {
	return priv.Curve.Validate(priv.X, priv.D)
}
