// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package packet

import (
	"bytes"
	"crypto/cipher"
	"crypto/rand"
	"io"
	"strconv"

	"github.com/openpgp-go/pgpcore/openpgp/errors"
	"github.com/openpgp-go/pgpcore/openpgp/internal/algorithm"
	"github.com/openpgp-go/pgpcore/openpgp/s2k"
)

// This is the largest session key that we'll support. Since no 512-bit cipher
// has even been seriously used, this is comfortably large.
const maxSessionKeySizeInBytes = 64

// SymmetricKeyEncrypted represents a passphrase protected session key. See
// RFC 9580, section 5.3.
type SymmetricKeyEncrypted struct {
	Version      int
	CipherFunc   CipherFunction
	Mode         AEADMode
	s2k          func(out, in []byte)
	nonce        []byte
	encryptedKey []byte
}

func (ske *SymmetricKeyEncrypted) parse(r io.Reader) error {
	var buf [1]byte
	if _, err := readFull(r, buf[:]); err != nil {
		return err
	}
	switch buf[0] {
	case 4:
		return ske.parseV4(r)
	case 6:
		return ske.parseV6(r)
	default:
		return errors.UnsupportedError("unknown SymmetricKeyEncrypted version")
	}
}

func (ske *SymmetricKeyEncrypted) parseV4(r io.Reader) error {
	ske.Version = 4

	var buf [1]byte
	if _, err := readFull(r, buf[:]); err != nil {
		return err
	}
	ske.CipherFunc = CipherFunction(buf[0])
	if ske.CipherFunc.KeySize() == 0 {
		return errors.UnsupportedError("unknown cipher: " + strconv.Itoa(int(buf[0])))
	}

	var err error
	ske.s2k, err = s2k.Parse(r)
	if err != nil {
		return err
	}

	encryptedKey := make([]byte, maxSessionKeySizeInBytes)
	n, err := readFull(r, encryptedKey)
	if err != nil && err != io.ErrUnexpectedEOF {
		return err
	}
	if n != 0 {
		if n == maxSessionKeySizeInBytes {
			return errors.UnsupportedError("oversized encrypted session key")
		}
		ske.encryptedKey = encryptedKey[:n]
	}
	return nil
}

// parseV6 reads a version-6 Symmetric-Key Encrypted Session Key packet
// (RFC 9580, section 5.3). The scalar octet count delimits the cipher,
// AEAD mode, S2K specifier and nonce fields; whatever remains is the
// encrypted session key followed by its authentication tag.
func (ske *SymmetricKeyEncrypted) parseV6(r io.Reader) error {
	ske.Version = 6

	var countBuf [1]byte
	if _, err := readFull(r, countBuf[:]); err != nil {
		return err
	}
	params := make([]byte, countBuf[0])
	if _, err := readFull(r, params); err != nil {
		return err
	}
	if len(params) < 3 {
		return errors.StructuralError("invalid SKESK v6 parameters")
	}

	ske.CipherFunc = CipherFunction(params[0])
	if ske.CipherFunc.KeySize() == 0 {
		return errors.UnsupportedError("unknown cipher: " + strconv.Itoa(int(params[0])))
	}
	ske.Mode = AEADMode(params[1])

	s2kLen := int(params[2])
	if len(params) < 3+s2kLen {
		return errors.StructuralError("invalid SKESK v6 S2K specifier")
	}
	s2kParams, err := s2k.ParseIntoParams(bytes.NewReader(params[3 : 3+s2kLen]))
	if err != nil {
		return err
	}
	ske.s2k, err = s2kParams.Function()
	if err != nil {
		return err
	}

	nonce := params[3+s2kLen:]
	if len(nonce) != nonceLength(ske.Mode) {
		return errors.StructuralError("invalid SKESK v6 nonce length")
	}
	ske.nonce = append([]byte{}, nonce...)

	encryptedKey, err := consumeRest(r)
	if err != nil {
		return err
	}
	ske.encryptedKey = encryptedKey
	return nil
}

func consumeRest(r io.Reader) ([]byte, error) {
	var out bytes.Buffer
	if _, err := io.Copy(&out, r); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// Decrypt attempts to decrypt an encrypted session key and returns the key and
// the cipher to use when decrypting a subsequent Symmetrically Encrypted Data
// packet.
func (ske *SymmetricKeyEncrypted) Decrypt(passphrase []byte) ([]byte, CipherFunction, error) {
	key := make([]byte, ske.CipherFunc.KeySize())
	ske.s2k(key, passphrase)
	if len(ske.encryptedKey) == 0 {
		return key, ske.CipherFunc, nil
	}

	switch ske.Version {
	case 4:
		return ske.decryptV4(key)
	case 6:
		plaintextKey, err := ske.decryptV6(key)
		return plaintextKey, ske.CipherFunc, err
	default:
		return nil, CipherFunction(0), errors.UnsupportedError("unknown SymmetricKeyEncrypted version")
	}
}

func (ske *SymmetricKeyEncrypted) decryptV4(key []byte) ([]byte, CipherFunction, error) {
	iv := make([]byte, ske.CipherFunc.blockSize())
	c := cipher.NewCFBDecrypter(ske.CipherFunc.new(key), iv)
	plaintextKey := make([]byte, len(ske.encryptedKey))
	c.XORKeyStream(plaintextKey, ske.encryptedKey)
	cipherFunc := CipherFunction(plaintextKey[0])
	if cipherFunc.blockSize() == 0 {
		return nil, ske.CipherFunc, errors.UnsupportedError(
			"unknown cipher: " + strconv.Itoa(int(cipherFunc)))
	}
	plaintextKey = plaintextKey[1:]
	return plaintextKey, cipherFunc, nil
}

func (ske *SymmetricKeyEncrypted) decryptV6(key []byte) ([]byte, error) {
	aeadMode, ok := algorithm.AEADModeById[uint8(ske.Mode)]
	if !ok {
		return nil, errors.UnsupportedError("unsupported AEAD mode")
	}
	alg, err := aeadMode.New(key)
	if err != nil {
		return nil, err
	}

	adata := []byte{0xc0 | byte(packetTypeSymmetricKeyEncrypted), byte(ske.Version)}
	return alg.Open(nil, ske.nonce, ske.encryptedKey, adata)
}

// SerializeSymmetricKeyEncrypted serializes a symmetric key packet to w. The
// packet contains a random session key, encrypted by a key derived from the
// given passphrase. The session key is returned and must be passed to
// SerializeSymmetricallyEncrypted.
// If config is nil, sensible defaults will be used.
func SerializeSymmetricKeyEncrypted(w io.Writer, passphrase []byte, config *Config) (key []byte, err error) {
	cipherFunc := config.Cipher()
	keySize := cipherFunc.KeySize()
	if keySize == 0 {
		return nil, errors.UnsupportedError("unknown cipher: " + strconv.Itoa(int(cipherFunc)))
	}

	sessionKey := make([]byte, keySize)
	if _, err = io.ReadFull(config.Random(), sessionKey); err != nil {
		return nil, err
	}

	if config.SKEVersion() == 6 {
		if err = serializeSymmetricKeyEncryptedV6(w, sessionKey, cipherFunc, passphrase, config); err != nil {
			return nil, err
		}
		return sessionKey, nil
	}
	if err = serializeSymmetricKeyEncryptedV4(w, sessionKey, cipherFunc, passphrase, config); err != nil {
		return nil, err
	}
	return sessionKey, nil
}

// SerializeSymmetricKeyEncryptedReuseKey serializes a symmetric key packet to w. The
// packet contains the given session key, encrypted by a key derived from the
// given passphrase. If config is nil, sensible defaults will be used.
func SerializeSymmetricKeyEncryptedReuseKey(w io.Writer, session []byte, passphrase []byte, config *Config) error {
	cipherFunc := config.Cipher()
	if cipherFunc.KeySize() == 0 {
		return errors.UnsupportedError("unknown cipher: " + strconv.Itoa(int(cipherFunc)))
	}
	if config.SKEVersion() == 6 {
		return serializeSymmetricKeyEncryptedV6(w, session, cipherFunc, passphrase, config)
	}
	return serializeSymmetricKeyEncryptedV4(w, session, cipherFunc, passphrase, config)
}

func serializeSymmetricKeyEncryptedV4(w io.Writer, sessionKey []byte, cipherFunc CipherFunction, passphrase []byte, config *Config) error {
	keySize := cipherFunc.KeySize()
	s2kBuf := new(bytes.Buffer)
	keyEncryptingKey := make([]byte, keySize)
	if err := s2k.Serialize(s2kBuf, keyEncryptingKey, config.Random(), passphrase, symmetricKeyS2KConfig(config)); err != nil {
		return err
	}
	s2kBytes := s2kBuf.Bytes()

	packetLength := 2 /* version, cipher */ + len(s2kBytes) + 1 /* cipher byte prefix of encrypted key */ + keySize
	if err := serializeHeader(w, packetTypeSymmetricKeyEncrypted, packetLength); err != nil {
		return err
	}

	var buf [2]byte
	buf[0] = 4
	buf[1] = byte(cipherFunc)
	if _, err := w.Write(buf[:]); err != nil {
		return err
	}
	if _, err := w.Write(s2kBytes); err != nil {
		return err
	}

	iv := make([]byte, cipherFunc.blockSize())
	c := cipher.NewCFBEncrypter(cipherFunc.new(keyEncryptingKey), iv)
	encryptedCipherAndKey := make([]byte, keySize+1)
	c.XORKeyStream(encryptedCipherAndKey, buf[1:])
	c.XORKeyStream(encryptedCipherAndKey[1:], sessionKey)
	_, err := w.Write(encryptedCipherAndKey)
	return err
}

func serializeSymmetricKeyEncryptedV6(w io.Writer, sessionKey []byte, cipherFunc CipherFunction, passphrase []byte, config *Config) error {
	keySize := cipherFunc.KeySize()
	mode := config.AEADConfig.Mode()

	s2kBuf := new(bytes.Buffer)
	keyEncryptingKey := make([]byte, keySize)
	if err := s2k.Serialize(s2kBuf, keyEncryptingKey, config.Random(), passphrase, symmetricKeyS2KConfig(config)); err != nil {
		return err
	}
	s2kBytes := s2kBuf.Bytes()

	nonce := make([]byte, nonceLength(mode))
	if _, err := rand.Read(nonce); err != nil {
		return err
	}

	aeadMode, ok := algorithm.AEADModeById[uint8(mode)]
	if !ok {
		return errors.UnsupportedError("unsupported AEAD mode")
	}
	alg, err := aeadMode.New(keyEncryptingKey)
	if err != nil {
		return err
	}

	adata := []byte{0xc0 | byte(packetTypeSymmetricKeyEncrypted), 6}
	encryptedKey := alg.Seal(nil, nonce, sessionKey, adata)

	params := new(bytes.Buffer)
	params.WriteByte(byte(cipherFunc))
	params.WriteByte(byte(mode))
	params.WriteByte(byte(len(s2kBytes)))
	params.Write(s2kBytes)
	params.Write(nonce)

	packetLength := 1 /* version */ + 1 /* count */ + params.Len() + len(encryptedKey)
	if err := serializeHeader(w, packetTypeSymmetricKeyEncrypted, packetLength); err != nil {
		return err
	}
	if _, err := w.Write([]byte{6, byte(params.Len())}); err != nil {
		return err
	}
	if _, err := w.Write(params.Bytes()); err != nil {
		return err
	}
	_, err = w.Write(encryptedKey)
	return err
}

func symmetricKeyS2KConfig(config *Config) *s2k.Config {
	s2kConfig := config.S2K()
	if s2kConfig != nil {
		if s2kConfig.S2KCount == 0 && config.PasswordHashIterations() != 0 {
			s2kConfig.S2KCount = config.PasswordHashIterations()
		}
		return s2kConfig
	}
	return &s2k.Config{Hash: config.Hash(), S2KCount: config.PasswordHashIterations()}
}
