// Package x25519 implements the native X25519 public-key algorithm for
// OpenPGP, as specified in RFC 9580, section 5.1.6, mirroring the native
// X448 algorithm package.
package x25519

import (
	"crypto/sha256"
	"crypto/subtle"
	"io"

	x25519lib "github.com/cloudflare/circl/dh/x25519"
	"github.com/openpgp-go/pgpcore/openpgp/errors"
	"github.com/openpgp-go/pgpcore/openpgp/internal/keywrap"
	"golang.org/x/crypto/hkdf"
)

const hkdfInfo = "OpenPGP X25519"
const aesKeySize = 32

// KeySize is the size, in bytes, of an X25519 public or secret key.
const KeySize = 32

type PublicKey struct {
	Point []byte
}

type PrivateKey struct {
	PublicKey
	Secret []byte
}

func NewPrivateKey(key PublicKey) *PrivateKey {
	return &PrivateKey{
		PublicKey: key,
	}
}

// Validate checks that the public key matches the private key.
func Validate(pk *PrivateKey) (err error) {
	var expectedPublicKey, privateKey x25519lib.Key
	subtle.ConstantTimeCopy(1, privateKey[:], pk.Secret)
	x25519lib.KeyGen(&expectedPublicKey, &privateKey)
	if subtle.ConstantTimeCompare(expectedPublicKey[:], pk.PublicKey.Point) == 0 {
		return errors.KeyInvalidError("x25519: invalid key")
	}
	return nil
}

// GenerateKey generates a new X25519 key pair, masked as required by
// RFC 7748, section 5.
func GenerateKey(rand io.Reader) (*PrivateKey, error) {
	var privateKey, publicKey x25519lib.Key
	privateKeyOut := new(PrivateKey)
	if err := generateKey(rand, &privateKey, &publicKey); err != nil {
		return nil, err
	}
	privateKeyOut.PublicKey.Point = publicKey[:]
	privateKeyOut.Secret = privateKey[:]
	return privateKeyOut, nil
}

func generateKey(rand io.Reader, privateKey, publicKey *x25519lib.Key) error {
	if _, err := io.ReadFull(rand, privateKey[:]); err != nil {
		return err
	}
	// mask, per RFC 7748 section 5 / draft-ietf-openpgp-crypto-refresh
	privateKey[0] &= 248
	privateKey[31] &= 127
	privateKey[31] |= 64
	x25519lib.KeyGen(publicKey, privateKey)
	return nil
}

// Encrypt encrypts a sessionKey with X25519 as specified in RFC 9580,
// section 5.1.6. The caller is responsible for correct session key padding.
func Encrypt(rand io.Reader, publicKey *PublicKey, sessionKey []byte) (ephemeralPublicKey *PublicKey, encryptedSessionKey []byte, err error) {
	var ephemeralPrivate, ephemeralPublic, staticPublic, shared x25519lib.Key

	if len(publicKey.Point) != KeySize {
		return nil, nil, errors.KeyInvalidError("x25519: the public key has the wrong size")
	}
	copy(staticPublic[:], publicKey.Point)

	if err = generateKey(rand, &ephemeralPrivate, &ephemeralPublic); err != nil {
		return nil, nil, err
	}

	x25519lib.Shared(&shared, &ephemeralPrivate, &staticPublic)

	encryptionKey := applyHKDF(ephemeralPublic[:], publicKey.Point, shared[:])
	ephemeralPublicKey = &PublicKey{Point: ephemeralPublic[:]}

	encryptedSessionKey, err = keywrap.Wrap(encryptionKey, sessionKey)
	return
}

// Decrypt decrypts a session key stored in ciphertext with the provided
// X25519 private key and ephemeral public key.
func Decrypt(privateKey *PrivateKey, ephemeralPublicKey *PublicKey, ciphertext []byte) (sessionKey []byte, err error) {
	var ephemeralPublic, staticPrivate, shared x25519lib.Key

	if len(ephemeralPublicKey.Point) != KeySize {
		return nil, errors.KeyInvalidError("x25519: the public key has the wrong size")
	}
	copy(ephemeralPublic[:], ephemeralPublicKey.Point)
	subtle.ConstantTimeCopy(1, staticPrivate[:], privateKey.Secret)

	x25519lib.Shared(&shared, &staticPrivate, &ephemeralPublic)

	encryptionKey := applyHKDF(ephemeralPublicKey.Point, privateKey.PublicKey.Point, shared[:])
	sessionKey, err = keywrap.Unwrap(encryptionKey, ciphertext)
	return
}

func applyHKDF(ephemeralPublicKey, publicKey, sharedSecret []byte) []byte {
	inputKey := make([]byte, 0, 3*KeySize)
	inputKey = append(inputKey, ephemeralPublicKey...)
	inputKey = append(inputKey, publicKey...)
	inputKey = append(inputKey, sharedSecret...)

	hkdfReader := hkdf.New(sha256.New, inputKey, nil, []byte(hkdfInfo))
	encryptionKey := make([]byte, aesKeySize)
	_, _ = io.ReadFull(hkdfReader, encryptionKey)
	return encryptionKey
}

// EncodedFieldsLength returns the length of the ciphertext encoding given
// the encrypted session key.
func EncodedFieldsLength(encryptedSessionKey []byte, v6 bool) int {
	lenCipherFunction := 0
	if !v6 {
		lenCipherFunction = 1
	}
	return KeySize + 1 + len(encryptedSessionKey) + lenCipherFunction
}

// EncodeFields encodes an X25519 session key encryption as
// ephemeral X25519 public key | follow byte length | cipherFunction (v3 only) | encryptedSessionKey
// and writes it to writer.
func EncodeFields(writer io.Writer, ephemeralPublicKey *PublicKey, encryptedSessionKey []byte, cipherFunction byte, v6 bool) (err error) {
	lenAlgorithm := 0
	if !v6 {
		lenAlgorithm = 1
	}
	if _, err = writer.Write(ephemeralPublicKey.Point); err != nil {
		return
	}
	if _, err = writer.Write([]byte{byte(len(encryptedSessionKey) + lenAlgorithm)}); err != nil {
		return
	}
	if !v6 {
		if _, err = writer.Write([]byte{cipherFunction}); err != nil {
			return
		}
	}
	_, err = writer.Write(encryptedSessionKey)
	return
}

// DecodeFields decodes an X25519 session key encryption as
// ephemeral X25519 public key | follow byte length | cipherFunction (v3 only) | encryptedSessionKey.
func DecodeFields(reader io.Reader, v6 bool) (ephemeralPublicKey *PublicKey, encryptedSessionKey []byte, cipherFunction byte, err error) {
	var buf [1]byte
	ephemeralPublicKey = &PublicKey{Point: make([]byte, KeySize)}

	if _, err = io.ReadFull(reader, ephemeralPublicKey.Point); err != nil {
		return
	}
	if _, err = io.ReadFull(reader, buf[:]); err != nil {
		return
	}
	followingLen := buf[0]
	if !v6 {
		if _, err = io.ReadFull(reader, buf[:]); err != nil {
			return
		}
		cipherFunction = buf[0]
		followingLen -= 1
	}
	encryptedSessionKey = make([]byte, followingLen)
	_, err = io.ReadFull(reader, encryptedSessionKey)
	return
}
