// Package bitcurves implements the secp256k1 curve (y^2 = x^3 + 7) as an
// elliptic.Curve, for use as an OpenPGP public-key curve (SecP256k1).
//
// crypto/elliptic's CurveParams helpers assume a short-Weierstrass curve
// with a = -3, which does not hold for secp256k1 (a = 0), so point
// addition and doubling are implemented here directly over affine
// coordinates instead of reusing the generic Jacobian math.
package bitcurves

import (
	"crypto/elliptic"
	"math/big"
	"sync"
)

type secp256k1Curve struct {
	params *elliptic.CurveParams
}

func (c *secp256k1Curve) Params() *elliptic.CurveParams {
	return c.params
}

func (c *secp256k1Curve) IsOnCurve(x, y *big.Int) bool {
	p := c.params.P
	y2 := new(big.Int).Mul(y, y)
	y2.Mod(y2, p)

	x3 := new(big.Int).Mul(x, x)
	x3.Mul(x3, x)
	x3.Add(x3, c.params.B)
	x3.Mod(x3, p)

	return y2.Cmp(x3) == 0
}

func (c *secp256k1Curve) add(x1, y1, x2, y2 *big.Int) (x3, y3 *big.Int) {
	p := c.params.P

	if x1.Sign() == 0 && y1.Sign() == 0 {
		return x2, y2
	}
	if x2.Sign() == 0 && y2.Sign() == 0 {
		return x1, y1
	}

	if x1.Cmp(x2) == 0 {
		if y1.Cmp(y2) != 0 || y1.Sign() == 0 {
			return new(big.Int), new(big.Int)
		}
		return c.double(x1, y1)
	}

	// lambda = (y2-y1) / (x2-x1)
	num := new(big.Int).Sub(y2, y1)
	num.Mod(num, p)
	den := new(big.Int).Sub(x2, x1)
	den.Mod(den, p)
	den.ModInverse(den, p)
	lambda := new(big.Int).Mul(num, den)
	lambda.Mod(lambda, p)

	x3 = new(big.Int).Mul(lambda, lambda)
	x3.Sub(x3, x1)
	x3.Sub(x3, x2)
	x3.Mod(x3, p)

	y3 = new(big.Int).Sub(x1, x3)
	y3.Mul(y3, lambda)
	y3.Sub(y3, y1)
	y3.Mod(y3, p)

	return x3, y3
}

func (c *secp256k1Curve) double(x1, y1 *big.Int) (x3, y3 *big.Int) {
	p := c.params.P

	if y1.Sign() == 0 {
		return new(big.Int), new(big.Int)
	}

	// lambda = 3*x1^2 / (2*y1) ; a = 0
	num := new(big.Int).Mul(x1, x1)
	num.Mul(num, big.NewInt(3))
	num.Mod(num, p)

	den := new(big.Int).Lsh(y1, 1)
	den.Mod(den, p)
	den.ModInverse(den, p)

	lambda := new(big.Int).Mul(num, den)
	lambda.Mod(lambda, p)

	x3 = new(big.Int).Mul(lambda, lambda)
	x3.Sub(x3, new(big.Int).Lsh(x1, 1))
	x3.Mod(x3, p)

	y3 = new(big.Int).Sub(x1, x3)
	y3.Mul(y3, lambda)
	y3.Sub(y3, y1)
	y3.Mod(y3, p)

	return x3, y3
}

func (c *secp256k1Curve) Add(x1, y1, x2, y2 *big.Int) (x, y *big.Int) {
	return c.add(x1, y1, x2, y2)
}

func (c *secp256k1Curve) Double(x1, y1 *big.Int) (x, y *big.Int) {
	return c.double(x1, y1)
}

func (c *secp256k1Curve) ScalarMult(x1, y1 *big.Int, k []byte) (x, y *big.Int) {
	rx, ry := new(big.Int), new(big.Int)
	for _, b := range k {
		for bit := 0; bit < 8; bit++ {
			rx, ry = c.double(rx, ry)
			if b&0x80 != 0 {
				rx, ry = c.add(rx, ry, x1, y1)
			}
			b <<= 1
		}
	}
	return rx, ry
}

func (c *secp256k1Curve) ScalarBaseMult(k []byte) (x, y *big.Int) {
	return c.ScalarMult(c.params.Gx, c.params.Gy, k)
}

var initonce sync.Once
var secp256k1 *secp256k1Curve

func initS256() {
	p, _ := new(big.Int).SetString("FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEFFFFFC2F", 16)
	n, _ := new(big.Int).SetString("FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEBAAEDCE6AF48A03BBFD25E8CD0364141", 16)
	gx, _ := new(big.Int).SetString("79BE667EF9DCBBAC55A06295CE870B07029BFCDB2DCE28D959F2815B16F81798", 16)
	gy, _ := new(big.Int).SetString("483ADA7726A3C4655DA4FBFC0E1108A8FD17B448A68554199C47D08FFB10D4B8", 16)

	params := &elliptic.CurveParams{
		P:       p,
		N:       n,
		B:       big.NewInt(7),
		Gx:      gx,
		Gy:      gy,
		BitSize: 256,
		Name:    "secp256k1",
	}
	secp256k1 = &secp256k1Curve{params: params}
}

// S256 returns the secp256k1 curve, as used by the OpenPGP SecP256k1 key type.
func S256() elliptic.Curve {
	initonce.Do(initS256)
	return secp256k1
}
