// Package ed448 implements the native Ed448 signature algorithm OpenPGP
// exposes via PubKeyAlgoEd448, as specified in RFC 9580 section 5.2.3.
package ed448

import (
	"crypto/subtle"
	"io"

	ed448lib "github.com/cloudflare/circl/sign/ed448"
	"github.com/openpgp-go/pgpcore/openpgp/errors"
)

const (
	// PointSize is the byte length of an Ed448 public point / seed.
	PointSize = 57
	// PrivateKeySize is the byte length of a seed-expanded Ed448 key.
	PrivateKeySize = 114
	// SignatureSize is the byte length of an Ed448 signature.
	SignatureSize = 114
)

// ed448Context is the empty context string RFC 9580 section 5.2.3
// mandates for OpenPGP's use of Ed448 (no application-specific context
// is negotiated at the protocol level).
const ed448Context = ""

// PublicKey holds an Ed448 public point.
type PublicKey struct {
	Point []byte
}

// PrivateKey pairs a PublicKey with the expanded key material the
// underlying library needs to sign: the 57-byte seed followed by the
// 57-byte public point.
type PrivateKey struct {
	PublicKey
	Key []byte
}

// NewPublicKey returns an empty PublicKey ready to be populated.
func NewPublicKey() *PublicKey {
	return &PublicKey{}
}

// NewPrivateKey returns a PrivateKey bound to the given public key, with
// no secret material set yet.
func NewPrivateKey(pub PublicKey) *PrivateKey {
	return &PrivateKey{PublicKey: pub}
}

// GenerateKey generates a fresh Ed448 key pair.
func GenerateKey(rand io.Reader) (*PrivateKey, error) {
	pub, priv, err := ed448lib.GenerateKey(rand)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{PublicKey: PublicKey{Point: pub[:]}, Key: priv[:]}, nil
}

// Seed returns the 57-byte seed the private key was expanded from.
func (priv *PrivateKey) Seed() []byte {
	return priv.Key[:PointSize]
}

// MarshalByteSecret returns the private key's 57-byte seed, the form
// OpenPGP serializes rather than the library's expanded form.
func (priv *PrivateKey) MarshalByteSecret() []byte {
	return priv.Seed()
}

// UnmarshalByteSecret re-expands the private key from its 57-byte seed.
func (priv *PrivateKey) UnmarshalByteSecret(seed []byte) error {
	priv.Key = ed448lib.NewKeyFromSeed(seed)
	return nil
}

// Sign signs message with priv, using the empty context string.
func Sign(priv *PrivateKey, message []byte) ([]byte, error) {
	return ed448lib.Sign(priv.Key, message, ed448Context), nil
}

// Verify reports whether signature is a valid Ed448 signature over
// message under pub, using the empty context string.
func Verify(pub *PublicKey, message, signature []byte) bool {
	return ed448lib.Verify(pub.Point, message, signature, ed448Context)
}

// Validate recomputes priv's key material from its seed and checks it
// in constant time against what is stored, catching a torn or corrupted
// secret key.
func Validate(priv *PrivateKey) error {
	expanded := ed448lib.NewKeyFromSeed(priv.Seed())
	if subtle.ConstantTimeCompare(priv.Key, expanded) == 0 {
		return errors.KeyInvalidError("ed448: invalid ed448 secret")
	}
	if subtle.ConstantTimeCompare(priv.Point, expanded[PointSize:]) == 0 {
		return errors.KeyInvalidError("ed448: invalid ed448 public key")
	}
	return nil
}

// WriteSignature writes a fixed-size Ed448 signature to w.
func WriteSignature(w io.Writer, signature []byte) error {
	_, err := w.Write(signature)
	return err
}

// ReadSignature reads a fixed-size Ed448 signature from r.
func ReadSignature(r io.Reader) ([]byte, error) {
	signature := make([]byte, SignatureSize)
	if _, err := io.ReadFull(r, signature); err != nil {
		return nil, err
	}
	return signature, nil
}
