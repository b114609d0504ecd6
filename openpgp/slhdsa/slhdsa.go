// Package slhdsa implements SLH-DSA signatures for OpenPGP's
// draft-ietf-openpgp-pqc composite algorithms, backed by the
// kasperdi/SPHINCSPLUS-golang reference implementation.
package slhdsa

import (
	"crypto/subtle"
	"fmt"
	"io"

	"github.com/kasperdi/SPHINCSPLUS-golang/parameters"
	"github.com/kasperdi/SPHINCSPLUS-golang/sphincs"
	"github.com/openpgp-go/pgpcore/openpgp/errors"
)

// Mode selects the hash function and ADRS addressing scheme a SLH-DSA
// instance uses, per the OpenPGP PQC draft's parameter specification.
type Mode uint8

const (
	ModeSimpleSHA2  Mode = 1
	ModeSimpleShake Mode = 2
)

// PublicKey holds a SLH-DSA public key together with the mode and
// parameter set it was generated under, both of which the underlying
// library needs to interpret the opaque key bytes.
type PublicKey struct {
	ParameterSetId ParameterSetId
	Mode           Mode
	Parameters     *parameters.Parameters
	Public         *sphincs.SPHINCS_PK
}

// PrivateKey adds the secret key to a PublicKey.
type PrivateKey struct {
	PublicKey
	Secret *sphincs.SPHINCS_SK
}

// SerializePrivate returns the wire encoding of priv's secret key.
func (priv *PrivateKey) SerializePrivate() ([]byte, error) {
	return priv.Secret.SerializeSK()
}

// UnmarshalPrivate decodes a secret key encoded by SerializePrivate.
// data is copied before being handed to the library, which retains
// slices from its input rather than copying them itself.
func (priv *PrivateKey) UnmarshalPrivate(data []byte) error {
	owned := append([]byte(nil), data...)
	secret, err := sphincs.DeserializeSK(priv.Parameters, owned)
	if err != nil {
		return err
	}
	priv.Secret = secret
	return nil
}

// SerializePublic returns the wire encoding of pub's public key.
func (pub *PublicKey) SerializePublic() ([]byte, error) {
	return pub.Public.SerializePK()
}

// UnmarshalPublic decodes a public key encoded by SerializePublic.
func (pub *PublicKey) UnmarshalPublic(data []byte) error {
	owned := append([]byte(nil), data...)
	public, err := sphincs.DeserializePK(pub.Parameters, owned)
	if err != nil {
		return err
	}
	pub.Public = public
	return nil
}

// GenerateKey generates a fresh SLH-DSA key pair for the given mode and
// parameter set.
//
// The underlying library draws its own randomness internally and does
// not accept an external entropy source, so rand is unused here; it is
// kept in the signature to match the other asymmetric packages' key
// generation calling convention.
func GenerateKey(_ io.Reader, mode Mode, param ParameterSetId) (*PrivateKey, error) {
	params, err := GetParametersFromModeAndId(mode, param)
	if err != nil {
		return nil, err
	}

	secret, public := sphincs.Spx_keygen(params)
	return &PrivateKey{
		PublicKey: PublicKey{
			ParameterSetId: param,
			Mode:           mode,
			Parameters:     params,
			Public:         public,
		},
		Secret: secret,
	}, nil
}

// Sign produces a SLH-DSA signature over message.
func Sign(priv *PrivateKey, message []byte) ([]byte, error) {
	sig := sphincs.Spx_sign(priv.Parameters, message, priv.Secret)
	return sig.SerializeSignature()
}

// Verify reports whether signature is a valid SLH-DSA signature over
// message under pub.
func Verify(pub *PublicKey, message, signature []byte) bool {
	sig, err := sphincs.DeserializeSignature(pub.Parameters, signature)
	if err != nil {
		return false
	}
	return sphincs.Spx_verify(pub.Parameters, message, sig, pub.Public)
}

// Validate checks that priv's public key matches its secret key by
// comparing the PK seed and root both carry, in constant time.
func Validate(priv *PrivateKey) error {
	seedOK := subtle.ConstantTimeCompare(priv.Public.PKseed, priv.Secret.PKseed)
	rootOK := subtle.ConstantTimeCompare(priv.Public.PKroot, priv.Secret.PKroot)
	if seedOK == 0 || rootOK == 0 {
		return errors.KeyInvalidError("slhdsa: invalid public key")
	}
	return nil
}

// parameterTable maps each (Mode, ParameterSetId) pair to the
// constructor the kasperdi library exposes for it, letting
// GetParametersFromModeAndId look the pair up instead of branching on
// it twice (once per mode, once per parameter set).
var parameterTable = map[Mode]map[ParameterSetId]func(bool) *parameters.Parameters{
	ModeSimpleSHA2: {
		Param128s: parameters.MakeSphincsPlusSHA256128sSimple,
		Param128f: parameters.MakeSphincsPlusSHA256128fSimple,
		Param192s: parameters.MakeSphincsPlusSHA256192sSimple,
		Param192f: parameters.MakeSphincsPlusSHA256192fSimple,
		Param256s: parameters.MakeSphincsPlusSHA256256sSimple,
		Param256f: parameters.MakeSphincsPlusSHA256256fSimple,
	},
	ModeSimpleShake: {
		Param128s: parameters.MakeSphincsPlusSHAKE256128sSimple,
		Param128f: parameters.MakeSphincsPlusSHAKE256128fSimple,
		Param192s: parameters.MakeSphincsPlusSHAKE256192sSimple,
		Param192f: parameters.MakeSphincsPlusSHAKE256192fSimple,
		Param256s: parameters.MakeSphincsPlusSHAKE256256sSimple,
		Param256f: parameters.MakeSphincsPlusSHAKE256256fSimple,
	},
}

// GetParametersFromModeAndId returns the library parameter set for a
// given mode and security level.
func GetParametersFromModeAndId(mode Mode, param ParameterSetId) (*parameters.Parameters, error) {
	byParam, ok := parameterTable[mode]
	if !ok {
		return nil, fmt.Errorf("slhdsa: unsupported mode %d", mode)
	}
	ctor, ok := byParam[param]
	if !ok {
		return nil, fmt.Errorf("slhdsa: unsupported parameter set %d", param)
	}
	return ctor(false), nil
}
