// Package brainpool implements the Brainpool curves (RFC 5639) used by
// OpenPGP's ECDSA/ECDH Brainpool key types, as elliptic.Curve values.
//
// As with bitcurves, these curves have a != -3 so the generic
// elliptic.CurveParams Jacobian arithmetic cannot be reused; addition and
// doubling are computed directly in affine coordinates.
package brainpool

import (
	"crypto/elliptic"
	"math/big"
	"sync"
)

type brainpoolCurve struct {
	params *elliptic.CurveParams
	a      *big.Int
}

func (c *brainpoolCurve) Params() *elliptic.CurveParams {
	return c.params
}

func (c *brainpoolCurve) IsOnCurve(x, y *big.Int) bool {
	p := c.params.P
	y2 := new(big.Int).Mul(y, y)
	y2.Mod(y2, p)

	x3 := new(big.Int).Mul(x, x)
	x3.Mul(x3, x)

	ax := new(big.Int).Mul(c.a, x)

	rhs := new(big.Int).Add(x3, ax)
	rhs.Add(rhs, c.params.B)
	rhs.Mod(rhs, p)

	return y2.Cmp(rhs) == 0
}

func (c *brainpoolCurve) add(x1, y1, x2, y2 *big.Int) (x3, y3 *big.Int) {
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

func (c *brainpoolCurve) double(x1, y1 *big.Int) (x3, y3 *big.Int) {
	p := c.params.P

	if y1.Sign() == 0 {
		return new(big.Int), new(big.Int)
	}

	num := new(big.Int).Mul(x1, x1)
	num.Mul(num, big.NewInt(3))
	num.Add(num, c.a)
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

func (c *brainpoolCurve) Add(x1, y1, x2, y2 *big.Int) (x, y *big.Int) {
	return c.add(x1, y1, x2, y2)
}

func (c *brainpoolCurve) Double(x1, y1 *big.Int) (x, y *big.Int) {
	return c.double(x1, y1)
}

func (c *brainpoolCurve) ScalarMult(x1, y1 *big.Int, k []byte) (x, y *big.Int) {
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

func (c *brainpoolCurve) ScalarBaseMult(k []byte) (x, y *big.Int) {
	return c.ScalarMult(c.params.Gx, c.params.Gy, k)
}

func newCurve(name, pHex, aHex, bHex, gxHex, gyHex, nHex string, bitSize int) *brainpoolCurve {
	p, _ := new(big.Int).SetString(pHex, 16)
	a, _ := new(big.Int).SetString(aHex, 16)
	b, _ := new(big.Int).SetString(bHex, 16)
	gx, _ := new(big.Int).SetString(gxHex, 16)
	gy, _ := new(big.Int).SetString(gyHex, 16)
	n, _ := new(big.Int).SetString(nHex, 16)

	return &brainpoolCurve{
		a: a,
		params: &elliptic.CurveParams{
			P:       p,
			N:       n,
			B:       b,
			Gx:      gx,
			Gy:      gy,
			BitSize: bitSize,
			Name:    name,
		},
	}
}

var (
	initonce    sync.Once
	p256r1      *brainpoolCurve
	p384r1      *brainpoolCurve
	p512r1      *brainpoolCurve
)

func initAll() {
	p256r1 = newCurve(
		"brainpoolP256r1",
		"A9FB57DBA1EEA9BC3E660A909D838D726E3BF623D52620282013481D1F6E5377",
		"7D5A0975FC2C3057EEF67530417AFFE7FB8055C126DC5C6CE94A4B44F330B5D9",
		"26DC5C6CE94A4B44F330B5D9BBD77CBF958416295CF7E1CE6BCCDC18FF8C07B6",
		"8BD2AEB9CB7E57CB2C4B482FFC81B7AFB9DE27E1E3BD23C23A4453BD9ACE3262",
		"547EF835C3DAC4FD97F8461A14611DC9C27745132DED8E545C1D54C72F046997",
		"A9FB57DBA1EEA9BC3E660A909D838D718C397AA3B561A6F7901E0E82974856A7",
		256,
	)
	p384r1 = newCurve(
		"brainpoolP384r1",
		"8CB91E82A3386D280F5D6F7E50E641DF152F7109ED5456B412B1DA197FB71123ACD3A729901D1A71874700133107EC53",
		"7BC382C63D8C150C3C72080ACE05AFA0C2BEA28E4FB22787139165EFBA91F90F8AA5814A503AD4EB04A8C7DD22CE2826",
		"04A8C7DD22CE28268B39B55416F0447C2FB77DE107DCD2A62E880EA53EEB62D57CB4390295DBC9943AB78696FA504C11",
		"1D1C64F068CF45FFA2A63A81B7C13F6B8847A3E77EF14FE3DB7FCAFE0CBD10E8E826E03436D646AAEF87B2E247D4AF1E",
		"8ABE1D7520F9C2A45CB1EB8E95CFD55262B70B29FEEC5864E19C054FF99129280E4646217E2AD6D9E8A6D4E8E07F3F5B",
		"8CB91E82A3386D280F5D6F7E50E641DF152F7109ED5456B31F166E6CAC0425A7CF3AB6AF6B7FC3103B883202E9046565",
		384,
	)
	p512r1 = newCurve(
		"brainpoolP512r1",
		"AADD9DB8DBE9C48B3FD4E6AE33C9FC07CB308DB3B3C9D20ED6639CCA703308717D4D9B009BC66842AECDA12AE6A380E62881FF2F2D82C68528AA6056583A48F3",
		"7830A3318B603B89E2327145AC234CC594CBDD8D3DF91610A83441CAEA9863BC2DED5D5AA8253AA10A2EF1C98B9AC8B57F1117A72BF2C7B9E7C1AC4D77FC94CA",
		"3DF91610A83441CAEA9863BC2DED5D5AA8253AA10A2EF1C98B9AC8B57F1117A72BF2C7B9E7C1AC4D77FC94CADC083E67984050B75EBAE5DD2809BD638016F723",
		"81AEE4BDD82ED9645A21322E9C4C6A9385ED9F70B5D916C1B43B62EEF4D0098EFF3B1F78E2D0D48D50D1687B93B97D5F7C6D5047406A5E688B352209BCB9F822",
		"7DDE385D566332ECC0EABFA9CF7822FDF209F70024A57B1AA000C55B881F8111B2DCDE494A5F485E5BCA4BD88A2763AED1CA2B2FA8F0540678CD1E0F3AD80892",
		"AADD9DB8DBE9C48B3FD4E6AE33C9FC07CB308DB3B3C9D20ED6639CCA70330870553E5C414CA92619418661197FAC10471DB1D381085DDADDB58796829CA90069",
		512,
	)
}

// P256r1 returns the brainpoolP256r1 curve.
func P256r1() elliptic.Curve {
	initonce.Do(initAll)
	return p256r1
}

// P384r1 returns the brainpoolP384r1 curve.
func P384r1() elliptic.Curve {
	initonce.Do(initAll)
	return p384r1
}

// P512r1 returns the brainpoolP512r1 curve.
func P512r1() elliptic.Curve {
	initonce.Do(initAll)
	return p512r1
}
