package slhdsa

import "fmt"

// ParameterSetId identifies one of the six SLH-DSA security levels
// OpenPGP can negotiate, per the draft-ietf-openpgp-pqc parameter table.
type ParameterSetId uint8

const (
	Param128s ParameterSetId = 1
	Param128f ParameterSetId = 2
	Param192s ParameterSetId = 3
	Param192f ParameterSetId = 4
	Param256s ParameterSetId = 5
	Param256f ParameterSetId = 6
)

type paramSize struct{ pk, sk, sig int }

// paramSizes holds the octet lengths of a parameter set's public key,
// secret key, and signature, keyed by ParameterSetId so the Get*Len
// accessors below are lookups rather than parallel switches.
var paramSizes = map[ParameterSetId]paramSize{
	Param128s: {pk: 32, sk: 64, sig: 7856},
	Param128f: {pk: 32, sk: 64, sig: 17088},
	Param192s: {pk: 48, sk: 96, sig: 16224},
	Param192f: {pk: 48, sk: 96, sig: 35664},
	Param256s: {pk: 64, sk: 128, sig: 29792},
	Param256f: {pk: 64, sk: 128, sig: 49856},
}

// ParseParameterSetID parses a ParameterSetId from its wire octet,
// rejecting values outside the six defined security levels.
func ParseParameterSetID(data [1]byte) (ParameterSetId, error) {
	setId := ParameterSetId(data[0])
	if _, ok := paramSizes[setId]; !ok {
		return 0, fmt.Errorf("slhdsa: unsupported parameter set id %d", setId)
	}
	return setId, nil
}

// GetPkLen returns the size of the public key in octets.
func (setId ParameterSetId) GetPkLen() int { return setId.sizes().pk }

// GetSkLen returns the size of the secret key in octets.
func (setId ParameterSetId) GetSkLen() int { return setId.sizes().sk }

// GetSigLen returns the size of the signature in octets.
func (setId ParameterSetId) GetSigLen() int { return setId.sizes().sig }

func (setId ParameterSetId) sizes() paramSize {
	sizes, ok := paramSizes[setId]
	if !ok {
		panic("slhdsa: unsupported parameter")
	}
	return sizes
}

// EncodedBytes returns the parameter set id's one-octet wire encoding.
func (setId ParameterSetId) EncodedBytes() []byte {
	return []byte{byte(setId)}
}
