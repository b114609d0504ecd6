package ecc

import (
	"bytes"
	"crypto/elliptic"

	"github.com/openpgp-go/pgpcore/bitcurves"
	"github.com/openpgp-go/pgpcore/brainpool"
	"github.com/openpgp-go/pgpcore/openpgp/internal/encoding"
)

// SignatureAlgorithm tags which signature scheme a curve is being used
// with, since some curves (e.g. Curve25519) support only one of
// ECDH/ECDSA/EdDSA while others support more than one.
type SignatureAlgorithm uint8

// CurveInfo binds a human-readable curve name and its registered OID to
// the Curve implementation, so packet parsing can go from either
// direction: OID bytes on the wire to a Curve, or a Curve back to its
// canonical OID for serialization.
type CurveInfo struct {
	Name       string
	Oid        *encoding.OID
	Curve      Curve
	CanEncrypt bool
}

// Curves lists every curve OpenPGP can negotiate, in the registered
// OID encoding from RFC 9580, section 9.2.
var Curves = []CurveInfo{
	{
		Name:  "NIST curve P-256",
		Oid:   encoding.NewOID([]byte{0x2A, 0x86, 0x48, 0xCE, 0x3D, 0x03, 0x01, 0x07}),
		Curve: NewGenericCurve(elliptic.P256(), NISTCurve),
	},
	{
		Name:  "NIST curve P-384",
		Oid:   encoding.NewOID([]byte{0x2B, 0x81, 0x04, 0x00, 0x22}),
		Curve: NewGenericCurve(elliptic.P384(), NISTCurve),
	},
	{
		Name:  "NIST curve P-521",
		Oid:   encoding.NewOID([]byte{0x2B, 0x81, 0x04, 0x00, 0x23}),
		Curve: NewGenericCurve(elliptic.P521(), NISTCurve),
	},
	{
		Name:  "SecP256k1",
		Oid:   encoding.NewOID([]byte{0x2B, 0x81, 0x04, 0x00, 0x0A}),
		Curve: NewGenericCurve(bitcurves.S256(), BitCurve),
	},
	{
		Name:  "Curve25519",
		Oid:   encoding.NewOID([]byte{0x2B, 0x06, 0x01, 0x04, 0x01, 0x97, 0x55, 0x01, 0x05, 0x01}),
		Curve: NewCurve25519(),
	},
	{
		Name:  "Ed25519",
		Oid:   encoding.NewOID([]byte{0x2B, 0x06, 0x01, 0x04, 0x01, 0xDA, 0x47, 0x0F, 0x01}),
		Curve: NewEd25519(),
	},
	{
		Name:  "Brainpool P256r1",
		Oid:   encoding.NewOID([]byte{0x2B, 0x24, 0x03, 0x03, 0x02, 0x08, 0x01, 0x01, 0x07}),
		Curve: NewGenericCurve(brainpool.P256r1(), BrainpoolCurve),
	},
	{
		Name:  "BrainpoolP384r1",
		Oid:   encoding.NewOID([]byte{0x2B, 0x24, 0x03, 0x03, 0x02, 0x08, 0x01, 0x01, 0x0B}),
		Curve: NewGenericCurve(brainpool.P384r1(), BrainpoolCurve),
	},
	{
		Name:  "BrainpoolP512r1",
		Oid:   encoding.NewOID([]byte{0x2B, 0x24, 0x03, 0x03, 0x02, 0x08, 0x01, 0x01, 0x0D}),
		Curve: NewGenericCurve(brainpool.P512r1(), BrainpoolCurve),
	},
}

// FindByCurve returns the CurveInfo matching curve's type and name, or
// nil if curve isn't one OpenPGP registers an OID for.
func FindByCurve(curve Curve) *CurveInfo {
	for i := range Curves {
		candidate := &Curves[i]
		if candidate.Curve.GetCurveType() == curve.GetCurveType() && candidate.Curve.GetCurveName() == curve.GetCurveName() {
			return candidate
		}
	}
	return nil
}

// FindByOid returns the CurveInfo whose registered OID matches oid's
// encoded bytes, or nil if no registered curve matches.
func FindByOid(oid encoding.Field) *CurveInfo {
	target := oid.Bytes()
	for i := range Curves {
		candidate := &Curves[i]
		if bytes.Equal(candidate.Oid.Bytes(), target) {
			return candidate
		}
	}
	return nil
}
