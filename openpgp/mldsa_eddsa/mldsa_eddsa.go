// Package mldsa_eddsa implements the ML-DSA + EdDSA composite signature
// algorithm OpenPGP uses for one of its post-quantum key types, per the
// draft-ietf-openpgp-pqc composite-signature specification: an EdDSA
// signature and an ML-DSA signature are produced independently over the
// same message, and both must verify for the composite to verify.
package mldsa_eddsa

import (
	"crypto/subtle"
	"fmt"
	"io"

	"github.com/cloudflare/circl/sign/dilithium"
	"github.com/openpgp-go/pgpcore/openpgp/errors"
	"github.com/openpgp-go/pgpcore/openpgp/internal/ecc"
)

// mlDsaSeedSize is the byte length of the seed ML-DSA key derivation
// expects, per FIPS 204.
const mlDsaSeedSize = 32

// PublicKey holds the EdDSA point and ML-DSA public key that make up
// one composite public key, plus the curve/mode needed to interpret
// their wire encodings.
type PublicKey struct {
	AlgId       uint8
	Curve       ecc.EdDSACurve
	Mldsa       dilithium.Mode
	PublicPoint []byte
	PublicMldsa dilithium.PublicKey
}

// PrivateKey adds the EdDSA scalar and ML-DSA secret key (plus the seed
// it was derived from) to a PublicKey.
type PrivateKey struct {
	PublicKey
	SecretEc        []byte
	SecretMldsa     dilithium.PrivateKey
	SecretMldsaSeed []byte
}

// GenerateKey generates a fresh ML-DSA + EdDSA composite key pair: an
// independent EdDSA key on c and an independent ML-DSA key under
// mode d, both drawn from rand.
func GenerateKey(rand io.Reader, algId uint8, c ecc.EdDSACurve, d dilithium.Mode) (*PrivateKey, error) {
	point, ecSecret, err := c.GenerateEdDSA(rand)
	if err != nil {
		return nil, err
	}

	priv := &PrivateKey{
		PublicKey: PublicKey{AlgId: algId, Curve: c, Mldsa: d, PublicPoint: point},
		SecretEc:  ecSecret,
	}

	seed := make([]byte, d.SeedSize())
	if _, err := io.ReadFull(rand, seed); err != nil {
		return nil, err
	}
	if err := priv.DeriveMlDsaKeys(seed, true); err != nil {
		return nil, err
	}
	return priv, nil
}

// DeriveMlDsaKeys derives priv's ML-DSA secret key from seed,
// overwriting the public key too when overridePublicKey is set (used
// during generation). When it is not set the public key is left as it is
// and is not compared with the derived one here; Validate does that.
func (priv *PrivateKey) DeriveMlDsaKeys(seed []byte, overridePublicKey bool) error {
	if len(seed) != mlDsaSeedSize {
		return fmt.Errorf("mldsa_eddsa: ml-dsa secret seed has the wrong length")
	}
	priv.SecretMldsaSeed = seed

	public, secret := priv.Mldsa.NewKeyFromSeed(seed)
	if overridePublicKey {
		priv.PublicMldsa = public
	}
	priv.SecretMldsa = secret
	return nil
}

// Sign produces a composite signature over message: an EdDSA signature
// ecSig and an independent ML-DSA signature dSig.
func Sign(priv *PrivateKey, message []byte) (dSig, ecSig []byte, err error) {
	r, s, err := priv.Curve.Sign(priv.PublicPoint, priv.SecretEc, message)
	if err != nil {
		return nil, nil, err
	}
	ecSig = append(append([]byte{}, r...), s...)

	dSig = priv.Mldsa.Sign(priv.SecretMldsa, message)
	if dSig == nil {
		return nil, nil, fmt.Errorf("mldsa_eddsa: unable to sign with ML-DSA")
	}

	return dSig, ecSig, nil
}

// Verify reports whether (dSig, ecSig) is a valid composite signature
// over message under pub — both the EdDSA and the ML-DSA signature
// must verify.
func Verify(pub *PublicKey, message, dSig, ecSig []byte) bool {
	half := len(ecSig) / 2
	eddsaOK := pub.Curve.Verify(pub.PublicPoint, message, ecSig[:half], ecSig[half:])
	mldsaOK := pub.Mldsa.Verify(pub.PublicMldsa, message, dSig)
	return eddsaOK && mldsaOK
}

// Validate checks that priv's public key matches its secret key on
// both the EdDSA and the ML-DSA side.
func Validate(priv *PrivateKey) error {
	if err := priv.Curve.Validate(priv.PublicPoint, priv.SecretEc); err != nil {
		return err
	}

	derivedPub, ok := priv.SecretMldsa.Public().(dilithium.PublicKey)
	if !ok {
		return errors.KeyInvalidError("mldsa_eddsa: invalid public key")
	}
	if subtle.ConstantTimeCompare(priv.PublicMldsa.Bytes(), derivedPub.Bytes()) == 0 {
		return errors.KeyInvalidError("mldsa_eddsa: invalid public key")
	}

	return nil
}
