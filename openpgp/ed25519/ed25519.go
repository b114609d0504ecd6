// Package ed25519 implements the native Ed25519 signature algorithm
// OpenPGP exposes via PubKeyAlgoEd25519, as specified in RFC 9580
// section 5.2.3.
package ed25519

import (
	"crypto/subtle"
	"io"

	ed25519lib "github.com/cloudflare/circl/sign/ed25519"
	"github.com/openpgp-go/pgpcore/openpgp/errors"
)

const (
	// PointSize is the byte length of an Ed25519 public point / seed.
	PointSize = 32
	// PrivateKeySize is the byte length of a seed-expanded Ed25519 key
	// (32-byte seed followed by its 32-byte public point).
	PrivateKeySize = 64
	// SignatureSize is the byte length of an Ed25519 signature.
	SignatureSize = 64
)

// PublicKey holds an Ed25519 public point.
type PublicKey struct {
	Point []byte
}

// PrivateKey pairs a PublicKey with the expanded key material the
// underlying library needs to sign: the 32-byte seed followed by the
// 32-byte public point.
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

// GenerateKey generates a fresh Ed25519 key pair.
func GenerateKey(rand io.Reader) (*PrivateKey, error) {
	pub, priv, err := ed25519lib.GenerateKey(rand)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{PublicKey: PublicKey{Point: pub[:]}, Key: priv[:]}, nil
}

// Seed returns the 32-byte seed the private key was expanded from.
func (priv *PrivateKey) Seed() []byte {
	return priv.Key[:PointSize]
}

// MarshalByteSecret returns the private key's 32-byte seed, the form
// OpenPGP serializes rather than the library's expanded 64-byte form.
func (priv *PrivateKey) MarshalByteSecret() []byte {
	return priv.Seed()
}

// UnmarshalByteSecret re-expands the private key from its 32-byte seed.
func (priv *PrivateKey) UnmarshalByteSecret(seed []byte) error {
	priv.Key = ed25519lib.NewKeyFromSeed(seed)
	return nil
}

// Sign signs message with priv.
func Sign(priv *PrivateKey, message []byte) ([]byte, error) {
	return ed25519lib.Sign(priv.Key, message), nil
}

// Verify reports whether signature is a valid Ed25519 signature over
// message under pub.
func Verify(pub *PublicKey, message, signature []byte) bool {
	return ed25519lib.Verify(pub.Point, message, signature)
}

// Validate recomputes priv's key material from its seed and checks it
// in constant time against what is stored, catching a torn or corrupted
// secret key.
func Validate(priv *PrivateKey) error {
	expanded := ed25519lib.NewKeyFromSeed(priv.Seed())
	if subtle.ConstantTimeCompare(priv.Key, expanded) == 0 {
		return errors.KeyInvalidError("ed25519: invalid ed25519 secret")
	}
	if subtle.ConstantTimeCompare(priv.Point, expanded[PointSize:]) == 0 {
		return errors.KeyInvalidError("ed25519: invalid ed25519 public key")
	}
	return nil
}

// WriteSignature writes a fixed-size Ed25519 signature to w.
func WriteSignature(w io.Writer, signature []byte) error {
	_, err := w.Write(signature)
	return err
}

// ReadSignature reads a fixed-size Ed25519 signature from r.
func ReadSignature(r io.Reader) ([]byte, error) {
	signature := make([]byte, SignatureSize)
	if _, err := io.ReadFull(r, signature); err != nil {
		return nil, err
	}
	return signature, nil
}
