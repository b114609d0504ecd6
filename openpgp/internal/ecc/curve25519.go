// Package ecc implements a generic interface for ECDH, ECDSA, and EdDSA.
package ecc

import (
	"crypto/subtle"
	goerrors "errors"
	"io"

	x25519lib "github.com/cloudflare/circl/dh/x25519"
	"github.com/openpgp-go/pgpcore/openpgp/errors"
)

type curve25519 struct{}

func NewCurve25519() *curve25519 {
	return &curve25519{}
}

func (c *curve25519) GetCurveType() CurveType {
	return Curve25519
}

func (c *curve25519) GetCurveName() string {
	return "curve25519"
}

func (c *curve25519) GetBuildKeyAttempts() int {
	return 3
}

// generateKeyPairBytes generates a private-public key-pair. 'priv' is a
// private key; a little-endian scalar belonging to the set
// 2^{254} + 8 * [0, 2^{251}), in order to avoid the small subgroup of the
// curve. 'pub' is simply 'priv' * G where G is the base point.
// See https://cr.yp.to/ecdh.html and RFC7748, sec 5.
func (c *curve25519) generateKeyPairBytes(rand io.Reader) (priv, pub x25519lib.Key, err error) {
	_, err = io.ReadFull(rand, priv[:])
	if err != nil {
		return
	}

	priv[0] &= 248
	priv[31] &= 127
	priv[31] |= 64

	x25519lib.KeyGen(&pub, &priv)
	return
}

// GenerateECDH returns the raw 32-byte native point and the 32-byte secret
// scalar in big-endian order (the byte reverse of the native little-endian
// scalar, as Decaps and ValidateECDH expect it). Callers
// that need the legacy "prefixed native point" wire format (0x40 || point)
// add the prefix themselves.
func (c *curve25519) GenerateECDH(rand io.Reader) (point, secret []byte, err error) {
	priv, pub, err := c.generateKeyPairBytes(rand)
	if err != nil {
		return nil, nil, err
	}

	secret = make([]byte, x25519lib.Size)
	copyReversed(secret, priv[:])

	point = make([]byte, x25519lib.Size)
	copy(point, pub[:])

	return point, secret, nil
}

func (c *curve25519) Encaps(rand io.Reader, point []byte) (ephemeral, sharedSecret []byte, err error) {
	if len(point) != x25519lib.Size {
		return nil, nil, goerrors.New("ecc: invalid curve25519 public point")
	}

	// RFC6637 §8: "Generate an ephemeral key pair {v, V=vG}"
	ephemeralPrivate, ephemeralPublic, err := c.generateKeyPairBytes(rand)
	if err != nil {
		return nil, nil, err
	}

	var pubKey x25519lib.Key
	copy(pubKey[:], point)

	var sharedPoint x25519lib.Key
	x25519lib.Shared(&sharedPoint, &ephemeralPrivate, &pubKey)

	ephemeral = make([]byte, x25519lib.Size)
	copy(ephemeral, ephemeralPublic[:])

	return ephemeral, sharedPoint[:], nil
}

func (c *curve25519) Decaps(ephemeral, secret []byte) (sharedSecret []byte, err error) {
	if len(ephemeral) != x25519lib.Size {
		return nil, goerrors.New("ecc: invalid key")
	}

	var ephemeralPublic, decodedPrivate, sharedPoint x25519lib.Key
	copy(ephemeralPublic[:], ephemeral)
	copyReversed(decodedPrivate[:], secret)

	x25519lib.Shared(&sharedPoint, &decodedPrivate, &ephemeralPublic)

	return sharedPoint[:], nil
}

func (c *curve25519) ValidateECDH(point, secret []byte) (err error) {
	var pk, sk x25519lib.Key
	copyReversed(sk[:], secret)
	x25519lib.KeyGen(&pk, &sk)

	if subtle.ConstantTimeCompare(point, pk[:]) == 0 {
		return errors.KeyInvalidError("ecc: invalid curve25519 public point")
	}

	return nil
}

func copyReversed(out []byte, in []byte) {
	l := len(in)
	for i := 0; i < l; i++ {
		out[i] = in[l-i-1]
	}
}
