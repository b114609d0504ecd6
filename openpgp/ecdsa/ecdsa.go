// Package ecdsa implements ECDSA signatures over the NIST and brainpool
// curves that OpenPGP exposes via PubKeyAlgoECDSA, as specified in RFC
// 6637 section 5.
package ecdsa

import (
	"io"
	"math/big"

	"github.com/openpgp-go/pgpcore/openpgp/errors"
	"github.com/openpgp-go/pgpcore/openpgp/internal/ecc"
)

// PublicKey is an ECDSA public point on the given curve.
type PublicKey struct {
	X, Y  *big.Int
	Curve ecc.ECDSACurve
}

// PrivateKey adds the secret scalar D to a PublicKey.
type PrivateKey struct {
	PublicKey
	D *big.Int
}

// GenerateKey generates a fresh ECDSA key pair on curve c.
func GenerateKey(rand io.Reader, c ecc.ECDSACurve) (*PrivateKey, error) {
	x, y, d, err := c.GenerateECDSA(rand)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{PublicKey: PublicKey{X: x, Y: y, Curve: c}, D: d}, nil
}

// Sign computes an ECDSA signature (r, s) over hash using priv.
func Sign(rand io.Reader, priv *PrivateKey, hash []byte) (r, s *big.Int, err error) {
	if priv == nil || priv.D == nil {
		return nil, nil, errors.InvalidArgumentError("ecdsa: nil private key")
	}
	return priv.Curve.Sign(rand, priv.X, priv.Y, priv.D, hash)
}

// Verify reports whether (r, s) is a valid ECDSA signature over hash
// under pub.
func Verify(pub *PublicKey, hash []byte, r, s *big.Int) bool {
	return pub.Curve.Verify(pub.X, pub.Y, hash, r, s)
}

// Validate checks that priv's public point is consistent with its
// secret scalar on its curve.
func Validate(priv *PrivateKey) error {
	return priv.Curve.Validate(priv.X, priv.Y, priv.D.Bytes())
}
