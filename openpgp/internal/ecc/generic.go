// Package ecc implements a generic interface for ECDH, ECDSA, and EdDSA.
package ecc

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"fmt"
	"github.com/openpgp-go/pgpcore/openpgp/errors"
	"io"
	"math/big"
)

type genericCurve struct {
	Curve elliptic.Curve
	Type  CurveType
}

// NewGenericCurve wraps a crypto/elliptic.Curve for use as an OpenPGP
// ECDSA/ECDH curve. Type defaults to NISTCurve when omitted; curve_info.go
// passes the right family explicitly for secp256k1 and Brainpool curves.
func NewGenericCurve(c elliptic.Curve, t ...CurveType) *genericCurve {
	curveType := NISTCurve
	if len(t) > 0 {
		curveType = t[0]
	}
	return &genericCurve{
		Curve: c,
		Type:  curveType,
	}
}

func (c *genericCurve) GetCurveName() string {
	return c.Curve.Params().Name
}

func (c *genericCurve) GetCurveType() CurveType {
	return c.Type
}

func (c *genericCurve) GetBuildKeyAttempts() int {
	return 1
}

func (c *genericCurve) MarshalPoint(x, y *big.Int) []byte {
	return elliptic.Marshal(c.Curve, x, y)
}

func (c *genericCurve) UnmarshalPoint(point []byte) (x, y *big.Int) {
	return elliptic.Unmarshal(c.Curve, point)
}

func (c *genericCurve) MarshalIntegerSecret(d *big.Int) []byte {
	return d.Bytes()
}

func (c *genericCurve) UnmarshalIntegerSecret(d []byte) *big.Int {
	return new(big.Int).SetBytes(d)
}

func (c *genericCurve) GenerateECDSA(rand io.Reader) (x, y, secret *big.Int, err error) {
	priv, err := ecdsa.GenerateKey(c.Curve, rand)
	if err != nil {
		return
	}

	return priv.X, priv.Y, priv.D, nil
}

func (c *genericCurve) Sign(rand io.Reader, x, y, d *big.Int, hash []byte) (r, s *big.Int, err error) {
	priv := &ecdsa.PrivateKey{D: d, PublicKey: ecdsa.PublicKey{X: x, Y: y, Curve: c.Curve}}
	return ecdsa.Sign(rand, priv, hash)
}

func (c *genericCurve) Verify(x, y *big.Int, hash []byte, r, s *big.Int) bool {
	pub := &ecdsa.PublicKey{X: x, Y: y, Curve: c.Curve}
	return ecdsa.Verify(pub, hash, r, s)
}

func (c *genericCurve) Validate(xP, yP *big.Int, secret []byte) error {
	// the public point should not be at infinity (0,0)
	zero := new(big.Int)
	if xP.Cmp(zero) == 0 && yP.Cmp(zero) == 0 {
		return errors.KeyInvalidError(fmt.Sprintf("ecc (%s): infinity point", c.Curve.Params().Name))
	}

	// re-derive the public point Q' = (X,Y) = dG
	// to compare to declared Q in public key
	expectedX, expectedY := c.Curve.ScalarBaseMult(secret)
	if xP.Cmp(expectedX) != 0 || yP.Cmp(expectedY) != 0 {
		return errors.KeyInvalidError(fmt.Sprintf("ecc (%s): invalid point", c.Curve.Params().Name))
	}

	return nil
}

// GenerateECDH generates an ephemeral key pair and returns the public
// point in uncompressed SEC1 form alongside the raw scalar secret.
func (c *genericCurve) GenerateECDH(rand io.Reader) (point, secret []byte, err error) {
	d, x, y, err := elliptic.GenerateKey(c.Curve, rand)
	if err != nil {
		return nil, nil, err
	}
	return elliptic.Marshal(c.Curve, x, y), d, nil
}

func (c *genericCurve) scalarMultToSecret(x, y *big.Int, d []byte) []byte {
	zbBig, _ := c.Curve.ScalarMult(x, y, d)
	byteLen := (c.Curve.Params().BitSize + 7) >> 3
	zb := make([]byte, byteLen)
	zbBytes := zbBig.Bytes()
	copy(zb[byteLen-len(zbBytes):], zbBytes)
	return zb
}

func (c *genericCurve) Encaps(rand io.Reader, point []byte) (ephemeral, sharedSecret []byte, err error) {
	xP, yP := elliptic.Unmarshal(c.Curve, point)
	if xP == nil {
		return nil, nil, errors.KeyInvalidError(fmt.Sprintf("ecc (%s): invalid point", c.Curve.Params().Name))
	}

	d, x, y, err := elliptic.GenerateKey(c.Curve, rand)
	if err != nil {
		return nil, nil, err
	}

	return elliptic.Marshal(c.Curve, x, y), c.scalarMultToSecret(xP, yP, d), nil
}

func (c *genericCurve) Decaps(ephemeral, secret []byte) (sharedSecret []byte, err error) {
	x, y := elliptic.Unmarshal(c.Curve, ephemeral)
	if x == nil {
		return nil, errors.KeyInvalidError(fmt.Sprintf("ecc (%s): invalid ephemeral point", c.Curve.Params().Name))
	}
	return c.scalarMultToSecret(x, y, secret), nil
}

func (c *genericCurve) ValidateECDH(point, secret []byte) error {
	x, y := elliptic.Unmarshal(c.Curve, point)
	if x == nil {
		return errors.KeyInvalidError(fmt.Sprintf("ecc (%s): invalid point", c.Curve.Params().Name))
	}
	return c.Validate(x, y, secret)
}
