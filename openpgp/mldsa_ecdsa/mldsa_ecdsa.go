// Package mldsa_ecdsa implements the ML-DSA + ECDSA composite signature
// algorithm OpenPGP uses for one of its post-quantum key types, per the
// draft-ietf-openpgp-pqc composite-signature specification: an ECDSA
// signature and an ML-DSA signature are produced independently over the
// same message, and both must verify for the composite to verify.
package mldsa_ecdsa

import (
	"crypto/subtle"
	"fmt"
	"io"
	"math/big"

	"github.com/cloudflare/circl/sign/dilithium"
	"github.com/openpgp-go/pgpcore/openpgp/errors"
	"github.com/openpgp-go/pgpcore/openpgp/internal/ecc"
)

// PublicKey holds the ECDSA point and ML-DSA public key that make up
// one composite public key, plus the curve/mode needed to interpret
// their wire encodings.
type PublicKey struct {
	AlgId       uint8
	Curve       ecc.ECDSACurve
	Mldsa       dilithium.Mode
	X, Y        *big.Int
	PublicMldsa dilithium.PublicKey
}

// PrivateKey adds the ECDSA scalar and ML-DSA secret key to a
// PublicKey.
type PrivateKey struct {
	PublicKey
	SecretEc    *big.Int
	SecretMldsa dilithium.PrivateKey
}

// MarshalPoint returns the wire encoding of the ECDSA point.
func (pub *PublicKey) MarshalPoint() []byte {
	return pub.Curve.MarshalPoint(pub.X, pub.Y)
}

// UnmarshalPoint decodes the ECDSA point from its wire encoding.
func (pub *PublicKey) UnmarshalPoint(p []byte) error {
	pub.X, pub.Y = pub.Curve.UnmarshalPoint(p)
	if pub.X == nil {
		return fmt.Errorf("mldsa_ecdsa: failed to parse EC point")
	}
	return nil
}

// MarshalIntegerSecret returns the wire encoding of the ECDSA scalar.
func (priv *PrivateKey) MarshalIntegerSecret() []byte {
	return priv.Curve.MarshalIntegerSecret(priv.SecretEc)
}

// UnmarshalIntegerSecret decodes the ECDSA scalar from its wire
// encoding.
func (priv *PrivateKey) UnmarshalIntegerSecret(d []byte) error {
	priv.SecretEc = priv.Curve.UnmarshalIntegerSecret(d)
	if priv.SecretEc == nil {
		return fmt.Errorf("mldsa_ecdsa: failed to parse scalar")
	}
	return nil
}

// GenerateKey generates a fresh ML-DSA + ECDSA composite key pair: an
// independent ECDSA key on c and an independent ML-DSA key under mode
// d, both drawn from rand.
func GenerateKey(rand io.Reader, algId uint8, c ecc.ECDSACurve, d dilithium.Mode) (*PrivateKey, error) {
	x, y, ecSecret, err := c.GenerateECDSA(rand)
	if err != nil {
		return nil, err
	}
	mldsaPub, mldsaSecret, err := d.GenerateKey(rand)
	if err != nil {
		return nil, err
	}

	return &PrivateKey{
		PublicKey: PublicKey{
			AlgId:       algId,
			Curve:       c,
			Mldsa:       d,
			X:           x,
			Y:           y,
			PublicMldsa: mldsaPub,
		},
		SecretEc:    ecSecret,
		SecretMldsa: mldsaSecret,
	}, nil
}

// Sign produces a composite signature over message: an ECDSA signature
// (ecR, ecS) and an independent ML-DSA signature dSig.
func Sign(rand io.Reader, priv *PrivateKey, message []byte) (dSig, ecR, ecS []byte, err error) {
	r, s, err := priv.Curve.Sign(rand, priv.X, priv.Y, priv.SecretEc, message)
	if err != nil {
		return nil, nil, nil, err
	}

	dSig = priv.Mldsa.Sign(priv.SecretMldsa, message)
	if dSig == nil {
		return nil, nil, nil, fmt.Errorf("mldsa_ecdsa: unable to sign with ML-DSA")
	}

	return dSig, priv.Curve.MarshalIntegerSecret(r), priv.Curve.MarshalIntegerSecret(s), nil
}

// Verify reports whether (dSig, ecR, ecS) is a valid composite
// signature over message under pub — both the ECDSA and the ML-DSA
// signature must verify.
func Verify(pub *PublicKey, message, dSig, ecR, ecS []byte) bool {
	r := pub.Curve.UnmarshalIntegerSecret(ecR)
	s := pub.Curve.UnmarshalIntegerSecret(ecS)

	ecdsaOK := pub.Curve.Verify(pub.X, pub.Y, message, r, s)
	mldsaOK := pub.Mldsa.Verify(pub.PublicMldsa, message, dSig)
	return ecdsaOK && mldsaOK
}

// Validate checks that priv's public key matches its secret key on
// both the ECDSA and the ML-DSA side.
func Validate(priv *PrivateKey) error {
	if err := priv.Curve.Validate(priv.X, priv.Y, priv.SecretEc.Bytes()); err != nil {
		return err
	}

	derivedPub, ok := priv.SecretMldsa.Public().(dilithium.PublicKey)
	if !ok {
		return errors.KeyInvalidError("mldsa_ecdsa: invalid public key")
	}
	if subtle.ConstantTimeCompare(priv.PublicMldsa.Bytes(), derivedPub.Bytes()) == 0 {
		return errors.KeyInvalidError("mldsa_ecdsa: invalid public key")
	}

	return nil
}
