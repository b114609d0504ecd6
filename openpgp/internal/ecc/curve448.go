// Package ecc implements a generic interface for ECDH, ECDSA, and EdDSA.
package ecc

import (
	"crypto/subtle"
	goerrors "errors"
	"io"

	x448lib "github.com/cloudflare/circl/dh/x448"
	"github.com/openpgp-go/pgpcore/openpgp/errors"
)

// curve448 implements ECDHCurve over Curve448 (RFC 7748), used by the
// ML-KEM-1024 + X448 composite algorithm.
type curve448 struct{}

func NewX448() *curve448 {
	return &curve448{}
}

func (c *curve448) GetCurveType() CurveType {
	return X448
}

func (c *curve448) GetCurveName() string {
	return "x448"
}

func (c *curve448) GetBuildKeyAttempts() int {
	return 1
}

func (c *curve448) generateKeyPairBytes(rand io.Reader) (priv, pub x448lib.Key, err error) {
	if _, err = io.ReadFull(rand, priv[:]); err != nil {
		return
	}
	x448lib.KeyGen(&pub, &priv)
	return
}

func (c *curve448) GenerateECDH(rand io.Reader) (point, secret []byte, err error) {
	priv, pub, err := c.generateKeyPairBytes(rand)
	if err != nil {
		return nil, nil, err
	}

	point = make([]byte, x448lib.Size)
	copy(point, pub[:])

	secret = make([]byte, x448lib.Size)
	copy(secret, priv[:])

	return point, secret, nil
}

func (c *curve448) Encaps(rand io.Reader, point []byte) (ephemeral, sharedSecret []byte, err error) {
	if len(point) != x448lib.Size {
		return nil, nil, goerrors.New("ecc: invalid x448 public point")
	}

	ephemeralPrivate, ephemeralPublic, err := c.generateKeyPairBytes(rand)
	if err != nil {
		return nil, nil, err
	}

	var pubKey, sharedPoint x448lib.Key
	copy(pubKey[:], point)

	if ok := x448lib.Shared(&sharedPoint, &ephemeralPrivate, &pubKey); !ok {
		return nil, nil, goerrors.New("ecc: x448 low-order point")
	}

	ephemeral = make([]byte, x448lib.Size)
	copy(ephemeral, ephemeralPublic[:])

	return ephemeral, sharedPoint[:], nil
}

func (c *curve448) Decaps(ephemeral, secret []byte) (sharedSecret []byte, err error) {
	if len(ephemeral) != x448lib.Size {
		return nil, goerrors.New("ecc: invalid key")
	}

	var ephemeralPublic, priv, sharedPoint x448lib.Key
	copy(ephemeralPublic[:], ephemeral)
	copy(priv[:], secret)

	if ok := x448lib.Shared(&sharedPoint, &priv, &ephemeralPublic); !ok {
		return nil, goerrors.New("ecc: x448 low-order point")
	}

	return sharedPoint[:], nil
}

func (c *curve448) ValidateECDH(point, secret []byte) (err error) {
	var pk, sk x448lib.Key
	copy(sk[:], secret)
	x448lib.KeyGen(&pk, &sk)

	if subtle.ConstantTimeCompare(point, pk[:]) == 0 {
		return errors.KeyInvalidError("ecc: invalid x448 public point")
	}

	return nil
}
