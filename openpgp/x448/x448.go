// Package x448 implements the native X448 session-key encryption
// algorithm OpenPGP exposes via PubKeyAlgoX448, as specified in RFC
// 9580 section 5.1.7.
package x448

import (
	"crypto/sha512"
	"crypto/subtle"
	"io"

	x448lib "github.com/cloudflare/circl/dh/x448"
	"github.com/openpgp-go/pgpcore/openpgp/errors"
	"github.com/openpgp-go/pgpcore/openpgp/internal/keywrap"
	"golang.org/x/crypto/hkdf"
)

// PointSize is the byte length of an X448 Montgomery-curve point.
const PointSize = 56

const (
	hkdfSessionInfo = "OpenPGP X448"
	wrapKeySize     = 32
	keyGenMaxTries  = 10
)

// PublicKey holds an X448 public point.
type PublicKey struct {
	Point []byte
}

// PrivateKey pairs a PublicKey with its secret scalar.
type PrivateKey struct {
	PublicKey
	Secret []byte
}

// NewPrivateKey returns a PrivateKey bound to the given public key, with
// no secret material set yet.
func NewPrivateKey(pub PublicKey) *PrivateKey {
	return &PrivateKey{PublicKey: pub}
}

// GenerateKey generates a fresh X448 key pair.
func GenerateKey(rand io.Reader) (*PrivateKey, error) {
	var secret, point x448lib.Key
	if err := generateScalar(rand, &secret, &point); err != nil {
		return nil, err
	}
	return &PrivateKey{PublicKey: PublicKey{Point: point[:]}, Secret: secret[:]}, nil
}

// Validate checks that priv's public point matches its secret scalar.
func Validate(priv *PrivateKey) error {
	var secret, recomputed x448lib.Key
	subtle.ConstantTimeCopy(1, secret[:], priv.Secret)
	x448lib.KeyGen(&recomputed, &secret)
	if subtle.ConstantTimeCompare(recomputed[:], priv.Point) == 0 {
		return errors.KeyInvalidError("x448: invalid key")
	}
	return nil
}

// generateScalar draws a secret scalar from rand, rejecting the
// all-zero scalar (which would indicate a broken randomness source
// rather than a legitimate key), and derives its public point.
func generateScalar(rand io.Reader, secret, point *x448lib.Key) error {
	for round := 0; ; round++ {
		if round == keyGenMaxTries {
			return errors.InvalidArgumentError("x448: zero keys only, randomness source might be corrupt")
		}
		if _, err := io.ReadFull(rand, secret[:]); err != nil {
			return err
		}
		if !isAllZero(secret[:]) {
			break
		}
	}
	x448lib.KeyGen(point, secret)
	return nil
}

// Encrypt wraps sessionKey for pub, per RFC 9580 section 5.1.7: a fresh
// ephemeral key pair is generated, the X448 shared secret is derived
// against pub, an AES key-wrap key is derived from it via HKDF, and
// sessionKey (already correctly formatted and padded by the caller) is
// wrapped under that key.
func Encrypt(rand io.Reader, pub *PublicKey, sessionKey []byte) (ephemeralPublicKey *PublicKey, encryptedSessionKey []byte, err error) {
	if len(pub.Point) != PointSize {
		return nil, nil, errors.KeyInvalidError("x448: the public key has the wrong size")
	}

	var ephemeralSecret, ephemeralPoint, staticPoint, shared x448lib.Key
	copy(staticPoint[:], pub.Point)
	if err = generateScalar(rand, &ephemeralSecret, &ephemeralPoint); err != nil {
		return nil, nil, err
	}
	if !x448lib.Shared(&shared, &ephemeralSecret, &staticPoint) {
		return nil, nil, errors.KeyInvalidError("x448: the public key is a low order point")
	}

	wrapKey := deriveWrapKey(ephemeralPoint[:], pub.Point, shared[:])
	encryptedSessionKey, err = keywrap.Wrap(wrapKey, sessionKey)
	return &PublicKey{Point: ephemeralPoint[:]}, encryptedSessionKey, err
}

// Decrypt reverses Encrypt: it rederives the shared secret from priv and
// ephemeralPublicKey and unwraps ciphertext under the resulting key.
func Decrypt(priv *PrivateKey, ephemeralPublicKey *PublicKey, ciphertext []byte) ([]byte, error) {
	if len(ephemeralPublicKey.Point) != PointSize {
		return nil, errors.KeyInvalidError("x448: the public key has the wrong size")
	}

	var ephemeralPoint, secret, shared x448lib.Key
	copy(ephemeralPoint[:], ephemeralPublicKey.Point)
	subtle.ConstantTimeCopy(1, secret[:], priv.Secret)
	if !x448lib.Shared(&shared, &secret, &ephemeralPoint) {
		return nil, errors.KeyInvalidError("x448: the ephemeral public key is a low order point")
	}

	wrapKey := deriveWrapKey(ephemeralPublicKey.Point, priv.Point, shared[:])
	return keywrap.Unwrap(wrapKey, ciphertext)
}

// deriveWrapKey derives the AES key-wrap key from the three inputs RFC
// 9580 section 5.1.7 specifies: ephemeral public key, recipient's
// static public key, and the X448 shared secret, concatenated and run
// through HKDF-SHA512.
func deriveWrapKey(ephemeralPoint, staticPoint, shared []byte) []byte {
	ikm := make([]byte, 0, 3*PointSize)
	ikm = append(ikm, ephemeralPoint...)
	ikm = append(ikm, staticPoint...)
	ikm = append(ikm, shared...)

	wrapKey := make([]byte, wrapKeySize)
	kdf := hkdf.New(sha512.New, ikm, nil, []byte(hkdfSessionInfo))
	_, _ = io.ReadFull(kdf, wrapKey)
	return wrapKey
}

func isAllZero(data []byte) bool {
	var acc byte
	for _, b := range data {
		acc |= b
	}
	return acc == 0
}

// EncodedFieldsLength returns the serialized length of an X448 PKESK's
// key-material fields: the ephemeral public key, the one-octet
// following-fields length, and encryptedSessionKey (plus, for v3
// packets only, a one-octet cipher-function field).
func EncodedFieldsLength(encryptedSessionKey []byte, v6 bool) int {
	return PointSize + 1 + len(encryptedSessionKey) + cipherOctetLen(v6)
}

// EncodeFields writes an X448 PKESK's key-material fields to w:
// ephemeral public key | following-length octet | cipher function
// (v3 only) | wrapped session key.
func EncodeFields(w io.Writer, ephemeralPublicKey *PublicKey, encryptedSessionKey []byte, cipherFunction byte, v6 bool) error {
	if _, err := w.Write(ephemeralPublicKey.Point); err != nil {
		return err
	}
	followingLen := byte(len(encryptedSessionKey) + cipherOctetLen(v6))
	if _, err := w.Write([]byte{followingLen}); err != nil {
		return err
	}
	if !v6 {
		if _, err := w.Write([]byte{cipherFunction}); err != nil {
			return err
		}
	}
	_, err := w.Write(encryptedSessionKey)
	return err
}

// DecodeFields reads the fields EncodeFields writes.
func DecodeFields(r io.Reader, v6 bool) (ephemeralPublicKey *PublicKey, encryptedSessionKey []byte, cipherFunction byte, err error) {
	ephemeralPublicKey = &PublicKey{Point: make([]byte, PointSize)}
	if _, err = io.ReadFull(r, ephemeralPublicKey.Point); err != nil {
		return nil, nil, 0, err
	}

	var lenByte [1]byte
	if _, err = io.ReadFull(r, lenByte[:]); err != nil {
		return nil, nil, 0, err
	}
	followingLen := lenByte[0]

	if !v6 {
		var cipherByte [1]byte
		if _, err = io.ReadFull(r, cipherByte[:]); err != nil {
			return nil, nil, 0, err
		}
		cipherFunction = cipherByte[0]
		followingLen--
	}

	encryptedSessionKey = make([]byte, followingLen)
	_, err = io.ReadFull(r, encryptedSessionKey)
	return ephemeralPublicKey, encryptedSessionKey, cipherFunction, err
}

func cipherOctetLen(v6 bool) int {
	if v6 {
		return 0
	}
	return 1
}
