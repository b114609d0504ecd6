// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package packet

import (
	"bytes"
	"crypto/cipher"
	"crypto/dsa"
	"crypto/md5"
	"crypto/rsa"
	"crypto/sha1"
	"hash"
	"io"
	"math/big"
	"strconv"
	"time"

	"github.com/openpgp-go/pgpcore/openpgp/ecdh"
	"github.com/openpgp-go/pgpcore/openpgp/ecdsa"
	"github.com/openpgp-go/pgpcore/openpgp/ed25519"
	"github.com/openpgp-go/pgpcore/openpgp/ed448"
	"github.com/openpgp-go/pgpcore/openpgp/eddsa"
	"github.com/openpgp-go/pgpcore/openpgp/elgamal"
	"github.com/openpgp-go/pgpcore/openpgp/errors"
	"github.com/openpgp-go/pgpcore/openpgp/internal/algorithm"
	"github.com/openpgp-go/pgpcore/openpgp/internal/encoding"
	"github.com/openpgp-go/pgpcore/openpgp/s2k"
	"github.com/openpgp-go/pgpcore/openpgp/x25519"
	"github.com/openpgp-go/pgpcore/openpgp/x448"
)

// s2kUsageOctet is the one-octet field that precedes a secret-key
// packet's key material and says how (if at all) it is locked. See
// RFC 9580, section 5.6.1.3.
type s2kUsageOctet uint8

const (
	// s2kUsageNone marks unencrypted secret-key material, stored as a
	// raw MPI/field sequence followed by a two-octet checksum.
	s2kUsageNone s2kUsageOctet = 0
	// s2kUsageAEAD marks key material locked with an AEAD cipher whose
	// mode is carried explicitly, per RFC 9580.
	s2kUsageAEAD s2kUsageOctet = 253
	// s2kUsageCFB marks key material locked with a CFB-mode cipher and
	// an appended SHA-1 checksum of the plaintext, rather than the
	// legacy additive checksum.
	s2kUsageCFB s2kUsageOctet = 254
	// s2kUsageCFBNoSHA1 is the pre-RFC-9580 CFB variant: the plaintext
	// carries the legacy additive checksum instead of a SHA-1 hash.
	s2kUsageCFBNoSHA1 s2kUsageOctet = 255
)

// PrivateKey represents a possibly encrypted private key. See RFC 9580,
// section 5.6.
type PrivateKey struct {
	PublicKey

	// Encrypted reports whether the secret-key material is still locked.
	// PrivateKey is nil until a successful call to Decrypt.
	Encrypted bool

	// PrivateKey holds the decrypted secret-key material, once decrypted:
	// *rsa.PrivateKey, *dsa.PrivateKey, *elgamal.PrivateKey,
	// *ecdsa.PrivateKey, *ecdh.PrivateKey, *eddsa.PrivateKey,
	// *ed25519.PrivateKey, *ed448.PrivateKey, *x25519.PrivateKey, or
	// *x448.PrivateKey.
	PrivateKey interface{}

	s2kUsage     s2kUsageOctet
	s2kParams    *s2k.Params
	s2k          func(out, in []byte)
	cipher       CipherFunction
	aeadMode     AEADMode
	sha1Checksum bool
	iv           []byte

	// encryptedData holds the still-locked secret-key material exactly as
	// read off the wire, including its trailing checksum or AEAD tag.
	encryptedData []byte
}

// NewRSAPrivateKey returns a PrivateKey that wraps the given rsa.PrivateKey.
func NewRSAPrivateKey(creationTime time.Time, priv *rsa.PrivateKey) *PrivateKey {
	pk := new(PrivateKey)
	pk.PublicKey = *NewRSAPublicKey(creationTime, &priv.PublicKey)
	pk.PrivateKey = priv
	return pk
}

// NewDSAPrivateKey returns a PrivateKey that wraps the given dsa.PrivateKey.
func NewDSAPrivateKey(creationTime time.Time, priv *dsa.PrivateKey) *PrivateKey {
	pk := new(PrivateKey)
	pk.PublicKey = *NewDSAPublicKey(creationTime, &priv.PublicKey)
	pk.PrivateKey = priv
	return pk
}

// NewElGamalPrivateKey returns a PrivateKey that wraps the given
// elgamal.PrivateKey.
func NewElGamalPrivateKey(creationTime time.Time, priv *elgamal.PrivateKey) *PrivateKey {
	pk := new(PrivateKey)
	pk.PublicKey = *NewElGamalPublicKey(creationTime, &priv.PublicKey)
	pk.PrivateKey = priv
	return pk
}

// NewECDSAPrivateKey returns a PrivateKey that wraps the given
// ecdsa.PrivateKey.
func NewECDSAPrivateKey(creationTime time.Time, priv *ecdsa.PrivateKey) *PrivateKey {
	pk := new(PrivateKey)
	pk.PublicKey = *NewECDSAPublicKey(creationTime, &priv.PublicKey)
	pk.PrivateKey = priv
	return pk
}

// NewECDHPrivateKey returns a PrivateKey that wraps the given ecdh.PrivateKey.
func NewECDHPrivateKey(creationTime time.Time, priv *ecdh.PrivateKey) *PrivateKey {
	pk := new(PrivateKey)
	pk.PublicKey = *NewECDHPublicKey(creationTime, &priv.PublicKey)
	pk.PrivateKey = priv
	return pk
}

// NewEdDSAPrivateKey returns a PrivateKey that wraps the given
// eddsa.PrivateKey.
func NewEdDSAPrivateKey(creationTime time.Time, priv *eddsa.PrivateKey) *PrivateKey {
	pk := new(PrivateKey)
	pk.PublicKey = *NewEdDSAPublicKey(creationTime, &priv.PublicKey)
	pk.PrivateKey = priv
	return pk
}

// NewX25519PrivateKey returns a PrivateKey that wraps the given
// x25519.PrivateKey.
func NewX25519PrivateKey(creationTime time.Time, priv *x25519.PrivateKey) *PrivateKey {
	pk := new(PrivateKey)
	pk.PublicKey = *NewX25519PublicKey(creationTime, &priv.PublicKey)
	pk.PrivateKey = priv
	return pk
}

// NewX448PrivateKey returns a PrivateKey that wraps the given
// x448.PrivateKey.
func NewX448PrivateKey(creationTime time.Time, priv *x448.PrivateKey) *PrivateKey {
	pk := new(PrivateKey)
	pk.PublicKey = *NewX448PublicKey(creationTime, &priv.PublicKey)
	pk.PrivateKey = priv
	return pk
}

// NewEd25519PrivateKey returns a PrivateKey that wraps the given
// ed25519.PrivateKey.
func NewEd25519PrivateKey(creationTime time.Time, priv *ed25519.PrivateKey) *PrivateKey {
	pk := new(PrivateKey)
	pk.PublicKey = *NewEd25519PublicKey(creationTime, &priv.PublicKey)
	pk.PrivateKey = priv
	return pk
}

// NewEd448PrivateKey returns a PrivateKey that wraps the given
// ed448.PrivateKey.
func NewEd448PrivateKey(creationTime time.Time, priv *ed448.PrivateKey) *PrivateKey {
	pk := new(PrivateKey)
	pk.PublicKey = *NewEd448PublicKey(creationTime, &priv.PublicKey)
	pk.PrivateKey = priv
	return pk
}

// NewSignerPrivateKey creates a PrivateKey from a crypto.Signer-shaped
// secret key of one of the algorithms OpenPGP defines signatures for. It
// is most useful for wrapping secret keys kept off-process (an HSM or a
// cloud KMS, say) that only ever expose a Sign method, but it also
// accepts the concrete types returned by this package's GenerateKey
// functions.
func NewSignerPrivateKey(creationTime time.Time, signer interface{}) *PrivateKey {
	pk := new(PrivateKey)
	switch sk := signer.(type) {
	case *rsa.PrivateKey:
		pk.PublicKey = *NewRSAPublicKey(creationTime, &sk.PublicKey)
	case *ecdsa.PrivateKey:
		pk.PublicKey = *NewECDSAPublicKey(creationTime, &sk.PublicKey)
	case *eddsa.PrivateKey:
		pk.PublicKey = *NewEdDSAPublicKey(creationTime, &sk.PublicKey)
	case *ed25519.PrivateKey:
		pk.PublicKey = *NewEd25519PublicKey(creationTime, &sk.PublicKey)
	case *ed448.PrivateKey:
		pk.PublicKey = *NewEd448PublicKey(creationTime, &sk.PublicKey)
	default:
		panic("packet: unknown signer type in NewSignerPrivateKey")
	}
	pk.PrivateKey = signer
	return pk
}

// Dummy reports whether the packet is a GNU-dummy placeholder: the
// secret-key material has deliberately been stripped (e.g. because the
// real key is kept on a smart card), and there is nothing to decrypt.
func (pk *PrivateKey) Dummy() bool {
	return pk.s2kParams != nil && pk.s2kParams.Dummy()
}

func (pk *PrivateKey) parse(r io.Reader) (err error) {
	err = (&pk.PublicKey).parse(r)
	if err != nil {
		return
	}

	var buf [1]byte
	if _, err = readFull(r, buf[:]); err != nil {
		return
	}
	pk.s2kUsage = s2kUsageOctet(buf[0])

	switch pk.s2kUsage {
	case s2kUsageNone:
		pk.s2kParams = nil
		pk.cipher = 0
	case s2kUsageAEAD:
		var params [2]byte
		if _, err = readFull(r, params[:]); err != nil {
			return
		}
		pk.cipher = CipherFunction(params[0])
		pk.aeadMode = AEADMode(params[1])
		if pk.s2kParams, err = s2k.ParseIntoParams(r); err != nil {
			return
		}
		if pk.s2kParams.Dummy() {
			return nil
		}
		pk.iv = make([]byte, nonceLength(pk.aeadMode))
		if _, err = readFull(r, pk.iv); err != nil {
			return
		}
	case s2kUsageCFB, s2kUsageCFBNoSHA1:
		var params [1]byte
		if _, err = readFull(r, params[:]); err != nil {
			return
		}
		pk.cipher = CipherFunction(params[0])
		if pk.s2kParams, err = s2k.ParseIntoParams(r); err != nil {
			return
		}
		if pk.s2kParams.Dummy() {
			return nil
		}
		pk.sha1Checksum = pk.s2kUsage == s2kUsageCFB
		if pk.cipher.blockSize() == 0 {
			return errors.UnsupportedError("unsupported cipher function: " + strconv.Itoa(int(pk.cipher)))
		}
		pk.iv = make([]byte, pk.cipher.blockSize())
		if _, err = readFull(r, pk.iv); err != nil {
			return
		}
	default:
		// Legacy, non-S2K-wrapped symmetric encryption: the octet is the
		// cipher algorithm directly, and the key is simple-S2K over MD5.
		pk.cipher = CipherFunction(pk.s2kUsage)
		if pk.cipher.blockSize() == 0 {
			return errors.UnsupportedError("unsupported cipher function: " + strconv.Itoa(int(pk.cipher)))
		}
		pk.iv = make([]byte, pk.cipher.blockSize())
		if _, err = readFull(r, pk.iv); err != nil {
			return
		}
	}

	if pk.s2kUsage != s2kUsageNone {
		pk.Encrypted = true
		pk.PrivateKey = nil
		switch {
		case pk.s2kParams != nil:
			if pk.s2k, err = pk.s2kParams.Function(); err != nil {
				return
			}
		default:
			// Legacy secret-key encryption (s2kUsage holding the cipher
			// algorithm directly) always derives its key via Simple-S2K
			// over MD5.
			pk.s2k = func(out, in []byte) { s2k.Simple(out, md5.New(), in) }
		}
	}

	if pk.encryptedData, err = consumeRest(r); err != nil {
		return
	}

	if pk.s2kUsage == s2kUsageNone {
		return pk.parsePrivateKey(pk.encryptedData)
	}
	return nil
}

// Decrypt unlocks the private key material using the given passphrase.
func (pk *PrivateKey) Decrypt(passphrase []byte) error {
	if !pk.Encrypted {
		return nil
	}
	if pk.Dummy() {
		return errors.ErrDummyPrivateKey
	}

	key := make([]byte, pk.cipher.KeySize())
	pk.s2k(key, passphrase)

	var plaintext []byte
	var err error
	switch pk.s2kUsage {
	case s2kUsageAEAD:
		plaintext, err = pk.decryptAEAD(key)
	default:
		plaintext, err = pk.decryptCFB(key)
	}
	if err != nil {
		return err
	}

	if err := pk.parsePrivateKey(plaintext); err != nil {
		if _, ok := err.(errors.StructuralError); ok {
			return errors.ErrKeyIncorrect
		}
		return err
	}

	pk.Encrypted = false
	pk.encryptedData = nil
	return nil
}

func (pk *PrivateKey) decryptCFB(key []byte) ([]byte, error) {
	block := pk.cipher.new(key)
	cfb := cipher.NewCFBDecrypter(block, pk.iv)
	data := make([]byte, len(pk.encryptedData))
	cfb.XORKeyStream(data, pk.encryptedData)

	if pk.sha1Checksum {
		if len(data) < sha1.Size {
			return nil, errors.StructuralError("truncated private key data")
		}
		h := sha1.New()
		h.Write(data[:len(data)-sha1.Size])
		sum := h.Sum(nil)
		if !bytes.Equal(sum, data[len(data)-sha1.Size:]) {
			return nil, errors.ErrKeyIncorrect
		}
		return data[:len(data)-sha1.Size], nil
	}

	if len(data) < 2 {
		return nil, errors.StructuralError("truncated private key data")
	}
	var checksum uint16
	for _, b := range data[:len(data)-2] {
		checksum += uint16(b)
	}
	want := uint16(data[len(data)-2])<<8 | uint16(data[len(data)-1])
	if checksum != want {
		return nil, errors.ErrKeyIncorrect
	}
	return data[:len(data)-2], nil
}

func (pk *PrivateKey) decryptAEAD(key []byte) ([]byte, error) {
	aeadMode, ok := algorithm.AEADModeById[uint8(pk.aeadMode)]
	if !ok {
		return nil, errors.UnsupportedError("unsupported AEAD mode")
	}
	alg, err := aeadMode.New(key)
	if err != nil {
		return nil, err
	}

	adata := pk.aeadAdditionalData()
	plaintext, err := alg.Open(nil, pk.iv, pk.encryptedData, adata)
	if err != nil {
		return nil, errors.ErrKeyIncorrect
	}
	return plaintext, nil
}

// aeadAdditionalData returns the associated data bound to an AEAD-wrapped
// secret-key packet: the packet header octet and version, followed by
// the public-key material exactly as it would be hashed for a signature.
func (pk *PrivateKey) aeadAdditionalData() []byte {
	packetType := packetTypePrivateKey
	if pk.IsSubkey {
		packetType = packetTypePrivateSubkey
	}
	var buf bytes.Buffer
	buf.WriteByte(0xc0 | byte(packetType))
	pk.PublicKey.serializeWithoutHeaders(&buf)
	return buf.Bytes()
}

// Encrypt locks the private key material with the given passphrase using
// the package defaults, as EncryptWithConfig does with a nil config.
func (pk *PrivateKey) Encrypt(passphrase []byte) error {
	return pk.EncryptWithConfig(passphrase, nil)
}

// EncryptWithConfig locks the private key material with the given
// passphrase, as configured by config. If config is nil, sensible
// defaults are used.
func (pk *PrivateKey) EncryptWithConfig(passphrase []byte, config *Config) error {
	if pk.Dummy() {
		return errors.ErrDummyPrivateKey
	}

	priv := new(bytes.Buffer)
	if err := pk.serializePrivateKey(priv); err != nil {
		return err
	}
	rawData := priv.Bytes()

	s2kBuf := new(bytes.Buffer)
	cipherFunc := config.Cipher()
	key := make([]byte, cipherFunc.KeySize())
	if err := s2k.Serialize(s2kBuf, key, config.Random(), passphrase, config.S2K()); err != nil {
		return err
	}

	if config.AEAD() != nil {
		return pk.encryptAEAD(rawData, key, s2kBuf.Bytes(), cipherFunc, config)
	}
	return pk.encryptCFB(rawData, key, s2kBuf.Bytes(), cipherFunc, config)
}

func (pk *PrivateKey) encryptCFB(rawData, key, s2kBytes []byte, cipherFunc CipherFunction, config *Config) error {
	h := sha1.New()
	h.Write(rawData)
	toEncrypt := append(rawData, h.Sum(nil)...)

	iv := make([]byte, cipherFunc.blockSize())
	if _, err := io.ReadFull(config.Random(), iv); err != nil {
		return err
	}
	cfb := cipher.NewCFBEncrypter(cipherFunc.new(key), iv)
	encrypted := make([]byte, len(toEncrypt))
	cfb.XORKeyStream(encrypted, toEncrypt)

	pk.cipher = cipherFunc
	pk.s2kParams, _ = s2k.ParseIntoParams(bytes.NewReader(s2kBytes))
	pk.sha1Checksum = true
	pk.s2kUsage = s2kUsageCFB
	pk.iv = iv
	pk.encryptedData = encrypted
	pk.Encrypted = true
	pk.PrivateKey = nil
	return nil
}

func (pk *PrivateKey) encryptAEAD(rawData, key, s2kBytes []byte, cipherFunc CipherFunction, config *Config) error {
	mode := config.AEAD().Mode()
	aeadMode, ok := algorithm.AEADModeById[uint8(mode)]
	if !ok {
		return errors.UnsupportedError("unsupported AEAD mode")
	}
	alg, err := aeadMode.New(key)
	if err != nil {
		return err
	}

	iv := make([]byte, nonceLength(mode))
	if _, err = io.ReadFull(config.Random(), iv); err != nil {
		return err
	}

	pk.cipher = cipherFunc
	pk.aeadMode = mode
	pk.s2kParams, _ = s2k.ParseIntoParams(bytes.NewReader(s2kBytes))
	pk.s2kUsage = s2kUsageAEAD
	pk.iv = iv

	adata := pk.aeadAdditionalData()
	pk.encryptedData = alg.Seal(nil, iv, rawData, adata)
	pk.Encrypted = true
	pk.PrivateKey = nil
	return nil
}

// Serialize writes pk to w as an OpenPGP secret-key (or secret-subkey)
// packet.
func (pk *PrivateKey) Serialize(w io.Writer) (err error) {
	buf := new(bytes.Buffer)
	if err = pk.PublicKey.serializeWithoutHeaders(buf); err != nil {
		return err
	}

	privateKeyBuf := new(bytes.Buffer)
	if pk.Encrypted {
		if err = pk.serializeEncryptedParams(privateKeyBuf); err != nil {
			return err
		}
	} else {
		plain := new(bytes.Buffer)
		if err = pk.serializePrivateKey(plain); err != nil {
			return err
		}
		privateKeyBuf.WriteByte(0)
		privateKeyBuf.Write(plain.Bytes())
		var checksum uint16
		for _, b := range plain.Bytes() {
			checksum += uint16(b)
		}
		privateKeyBuf.WriteByte(byte(checksum >> 8))
		privateKeyBuf.WriteByte(byte(checksum))
	}

	packetType := packetTypePrivateKey
	if pk.IsSubkey {
		packetType = packetTypePrivateSubkey
	}
	totalLength := buf.Len() + privateKeyBuf.Len()
	if err = serializeHeader(w, packetType, totalLength); err != nil {
		return err
	}
	if _, err = w.Write(buf.Bytes()); err != nil {
		return err
	}
	_, err = w.Write(privateKeyBuf.Bytes())
	return err
}

func (pk *PrivateKey) serializeEncryptedParams(w io.Writer) error {
	switch pk.s2kUsage {
	case s2kUsageAEAD:
		if _, err := w.Write([]byte{byte(s2kUsageAEAD), byte(pk.cipher), byte(pk.aeadMode)}); err != nil {
			return err
		}
		if err := pk.s2kParams.Serialize(w); err != nil {
			return err
		}
		if _, err := w.Write(pk.iv); err != nil {
			return err
		}
	default:
		if _, err := w.Write([]byte{byte(pk.s2kUsage), byte(pk.cipher)}); err != nil {
			return err
		}
		if err := pk.s2kParams.Serialize(w); err != nil {
			return err
		}
		if _, err := w.Write(pk.iv); err != nil {
			return err
		}
	}
	_, err := w.Write(pk.encryptedData)
	return err
}

// parsePrivateKey parses the secret-key material in data, dispatching on
// the public-key algorithm the embedded PublicKey already carries.
func (pk *PrivateKey) parsePrivateKey(data []byte) (err error) {
	switch pk.PublicKey.PubKeyAlgo {
	case PubKeyAlgoRSA, PubKeyAlgoRSAEncryptOnly, PubKeyAlgoRSASignOnly:
		return pk.parseRSAPrivateKey(data)
	case PubKeyAlgoDSA:
		return pk.parseDSAPrivateKey(data)
	case PubKeyAlgoElGamal:
		return pk.parseElGamalPrivateKey(data)
	case PubKeyAlgoECDSA:
		return pk.parseECDSAPrivateKey(data)
	case PubKeyAlgoECDH:
		return pk.parseECDHPrivateKey(data)
	case PubKeyAlgoEdDSA:
		return pk.parseEdDSAPrivateKey(data)
	case PubKeyAlgoX25519:
		return pk.parseX25519PrivateKey(data)
	case PubKeyAlgoX448:
		return pk.parseX448PrivateKey(data)
	case PubKeyAlgoEd25519:
		return pk.parseEd25519PrivateKey(data)
	case PubKeyAlgoEd448:
		return pk.parseEd448PrivateKey(data)
	default:
		return errors.UnsupportedError("private key material for algorithm: " + strconv.Itoa(int(pk.PublicKey.PubKeyAlgo)))
	}
}

func (pk *PrivateKey) serializePrivateKey(w io.Writer) (err error) {
	switch priv := pk.PrivateKey.(type) {
	case *rsa.PrivateKey:
		return serializeRSAPrivateKey(w, priv)
	case *dsa.PrivateKey:
		return serializeDSAPrivateKey(w, priv)
	case *elgamal.PrivateKey:
		return serializeElGamalPrivateKey(w, priv)
	case *ecdsa.PrivateKey:
		return serializeECDSAPrivateKey(w, priv)
	case *ecdh.PrivateKey:
		return serializeECDHPrivateKey(w, priv)
	case *eddsa.PrivateKey:
		return serializeEdDSAPrivateKey(w, priv)
	case *x25519.PrivateKey:
		_, err = w.Write(priv.Secret)
		return err
	case *x448.PrivateKey:
		_, err = w.Write(priv.Secret)
		return err
	case *ed25519.PrivateKey:
		_, err = w.Write(priv.Seed())
		return err
	case *ed448.PrivateKey:
		_, err = w.Write(priv.Seed())
		return err
	default:
		return errors.InvalidArgumentError("unknown private key type")
	}
}

// RSA

func (pk *PrivateKey) parseRSAPrivateKey(data []byte) error {
	rsaPub := pk.PublicKey.PublicKey.(*rsa.PublicKey)
	rsaPriv := new(rsa.PrivateKey)
	rsaPriv.PublicKey = *rsaPub

	buf := bytes.NewReader(data)
	d := new(encoding.MPI)
	if _, err := d.ReadFrom(buf); err != nil {
		return err
	}
	p := new(encoding.MPI)
	if _, err := p.ReadFrom(buf); err != nil {
		return err
	}
	q := new(encoding.MPI)
	if _, err := q.ReadFrom(buf); err != nil {
		return err
	}
	// The encoded 'u' value (p^-1 mod q) is redundant: crypto/rsa
	// recomputes the CRT values from D, P, Q via Precompute.
	_ = new(encoding.MPI)

	rsaPriv.D = new(big.Int).SetBytes(d.Bytes())
	rsaPriv.Primes = make([]*big.Int, 2)
	rsaPriv.Primes[0] = new(big.Int).SetBytes(p.Bytes())
	rsaPriv.Primes[1] = new(big.Int).SetBytes(q.Bytes())
	if rsaPriv.Primes[0].Cmp(big.NewInt(1)) <= 0 || rsaPriv.Primes[1].Cmp(big.NewInt(1)) <= 0 {
		return errors.StructuralError("RSA private key factors must be greater than 1")
	}
	if err := rsaPriv.Validate(); err != nil {
		return errors.StructuralError("invalid RSA private key: " + err.Error())
	}
	rsaPriv.Precompute()
	pk.PrivateKey = rsaPriv
	return nil
}

func serializeRSAPrivateKey(w io.Writer, priv *rsa.PrivateKey) error {
	d := encoding.NewMPI(priv.D.Bytes())
	p := encoding.NewMPI(priv.Primes[0].Bytes())
	q := encoding.NewMPI(priv.Primes[1].Bytes())
	u := encoding.NewMPI(new(big.Int).ModInverse(priv.Primes[0], priv.Primes[1]).Bytes())
	for _, f := range []encoding.Field{d, p, q, u} {
		if _, err := w.Write(f.EncodedBytes()); err != nil {
			return err
		}
	}
	return nil
}

// DSA

func (pk *PrivateKey) parseDSAPrivateKey(data []byte) error {
	dsaPub := pk.PublicKey.PublicKey.(*dsa.PublicKey)
	dsaPriv := new(dsa.PrivateKey)
	dsaPriv.PublicKey = *dsaPub

	buf := bytes.NewReader(data)
	x := new(encoding.MPI)
	if _, err := x.ReadFrom(buf); err != nil {
		return err
	}
	dsaPriv.X = new(big.Int).SetBytes(x.Bytes())
	if err := validateDSAParameters(dsaPriv); err != nil {
		return errors.StructuralError(err.Error())
	}
	pk.PrivateKey = dsaPriv
	return nil
}

func serializeDSAPrivateKey(w io.Writer, priv *dsa.PrivateKey) error {
	x := encoding.NewMPI(priv.X.Bytes())
	_, err := w.Write(x.EncodedBytes())
	return err
}

func validateDSAParameters(priv *dsa.PrivateKey) error {
	p := priv.P
	q := priv.Q
	g := priv.G
	x := priv.X
	y := priv.Y
	one := big.NewInt(1)
	if p == nil || q == nil || g == nil || x == nil || y == nil {
		return errors.New("dsa: incomplete private key")
	}
	if g.Cmp(one) <= 0 || g.Cmp(p) >= 0 {
		return errors.New("dsa: invalid generator")
	}
	if x.Cmp(one) < 0 || x.Cmp(q) >= 0 {
		return errors.New("dsa: secret exponent out of range")
	}
	pSub1 := new(big.Int).Sub(p, one)
	if new(big.Int).Mod(pSub1, q).Sign() != 0 {
		return errors.New("dsa: q does not divide p-1")
	}
	if expectedY := new(big.Int).Exp(g, x, p); expectedY.Cmp(y) != 0 {
		return errors.New("dsa: g, x, y combination invalid")
	}
	return nil
}

// ElGamal

func (pk *PrivateKey) parseElGamalPrivateKey(data []byte) error {
	elgamalPub := pk.PublicKey.PublicKey.(*elgamal.PublicKey)
	elgamalPriv := new(elgamal.PrivateKey)
	elgamalPriv.PublicKey = *elgamalPub

	buf := bytes.NewReader(data)
	x := new(encoding.MPI)
	if _, err := x.ReadFrom(buf); err != nil {
		return err
	}
	elgamalPriv.X = new(big.Int).SetBytes(x.Bytes())
	if err := validateElGamalParameters(elgamalPriv); err != nil {
		return errors.StructuralError(err.Error())
	}
	pk.PrivateKey = elgamalPriv
	return nil
}

func serializeElGamalPrivateKey(w io.Writer, priv *elgamal.PrivateKey) error {
	x := encoding.NewMPI(priv.X.Bytes())
	_, err := w.Write(x.EncodedBytes())
	return err
}

func validateElGamalParameters(priv *elgamal.PrivateKey) error {
	p := priv.P
	g := priv.G
	x := priv.X
	y := priv.Y
	one := big.NewInt(1)
	if p == nil || g == nil || x == nil || y == nil {
		return errors.New("elgamal: incomplete private key")
	}
	if g.Cmp(one) <= 0 || g.Cmp(p) >= 0 {
		return errors.New("elgamal: invalid generator")
	}
	pSub1 := new(big.Int).Sub(p, one)
	if x.Cmp(one) < 0 || x.Cmp(pSub1) >= 0 {
		return errors.New("elgamal: secret exponent out of range")
	}
	if expectedY := new(big.Int).Exp(g, x, p); expectedY.Cmp(y) != 0 {
		return errors.New("elgamal: g, x, y combination invalid")
	}
	return nil
}

// ECDSA

func (pk *PrivateKey) parseECDSAPrivateKey(data []byte) error {
	ecdsaPub := pk.PublicKey.PublicKey.(*ecdsa.PublicKey)
	ecdsaPriv := new(ecdsa.PrivateKey)
	ecdsaPriv.PublicKey = *ecdsaPub

	buf := bytes.NewReader(data)
	d := new(encoding.MPI)
	if _, err := d.ReadFrom(buf); err != nil {
		return err
	}
	ecdsaPriv.D = ecdsaPub.Curve.UnmarshalIntegerSecret(d.Bytes())
	if err := ecdsa.Validate(ecdsaPriv); err != nil {
		return errors.StructuralError(err.Error())
	}
	pk.PrivateKey = ecdsaPriv
	return nil
}

func serializeECDSAPrivateKey(w io.Writer, priv *ecdsa.PrivateKey) error {
	d := encoding.NewMPI(priv.Curve.MarshalIntegerSecret(priv.D))
	_, err := w.Write(d.EncodedBytes())
	return err
}

// ECDH

func (pk *PrivateKey) parseECDHPrivateKey(data []byte) error {
	ecdhPub := pk.PublicKey.PublicKey.(*ecdh.PublicKey)
	ecdhPriv := new(ecdh.PrivateKey)
	ecdhPriv.PublicKey = *ecdhPub

	buf := bytes.NewReader(data)
	d := new(encoding.MPI)
	if _, err := d.ReadFrom(buf); err != nil {
		return err
	}
	ecdhPriv.D = d.Bytes()
	if err := ecdh.Validate(ecdhPriv); err != nil {
		return errors.StructuralError(err.Error())
	}
	pk.PrivateKey = ecdhPriv
	return nil
}

func serializeECDHPrivateKey(w io.Writer, priv *ecdh.PrivateKey) error {
	d := encoding.NewMPI(priv.D)
	_, err := w.Write(d.EncodedBytes())
	return err
}

// EdDSA (legacy curve-OID form, see draft-koch-eddsa-for-openpgp)

func (pk *PrivateKey) parseEdDSAPrivateKey(data []byte) error {
	eddsaPub := pk.PublicKey.PublicKey.(*eddsa.PublicKey)
	eddsaPriv := new(eddsa.PrivateKey)
	eddsaPriv.PublicKey = *eddsaPub

	buf := bytes.NewReader(data)
	d := new(encoding.MPI)
	if _, err := d.ReadFrom(buf); err != nil {
		return err
	}
	eddsaPriv.D = eddsaPub.Curve.UnmarshalByteSecret(d.Bytes())
	if err := eddsa.Validate(eddsaPriv); err != nil {
		return errors.StructuralError(err.Error())
	}
	pk.PrivateKey = eddsaPriv
	return nil
}

func serializeEdDSAPrivateKey(w io.Writer, priv *eddsa.PrivateKey) error {
	d := encoding.NewMPI(priv.Curve.MarshalByteSecret(priv.D))
	_, err := w.Write(d.EncodedBytes())
	return err
}

// X25519 / X448 (native, v6 algorithms; fixed-width secrets, no MPI)

func (pk *PrivateKey) parseX25519PrivateKey(data []byte) error {
	if len(data) != x25519.KeySize {
		return errors.StructuralError("invalid X25519 private key length")
	}
	x25519Pub := pk.PublicKey.PublicKey.(*x25519.PublicKey)
	priv := x25519.NewPrivateKey(*x25519Pub)
	priv.Secret = append([]byte{}, data...)
	if err := x25519.Validate(priv); err != nil {
		return errors.StructuralError(err.Error())
	}
	pk.PrivateKey = priv
	return nil
}

func (pk *PrivateKey) parseX448PrivateKey(data []byte) error {
	if len(data) != x448.PointSize {
		return errors.StructuralError("invalid X448 private key length")
	}
	x448Pub := pk.PublicKey.PublicKey.(*x448.PublicKey)
	priv := x448.NewPrivateKey(*x448Pub)
	priv.Secret = append([]byte{}, data...)
	if err := x448.Validate(priv); err != nil {
		return errors.StructuralError(err.Error())
	}
	pk.PrivateKey = priv
	return nil
}

// Ed25519 / Ed448 (native, v6 algorithms; fixed-width seeds, no MPI)

func (pk *PrivateKey) parseEd25519PrivateKey(data []byte) error {
	if len(data) != ed25519.PointSize {
		return errors.StructuralError("invalid Ed25519 private key length")
	}
	ed25519Pub := pk.PublicKey.PublicKey.(*ed25519.PublicKey)
	priv := ed25519.NewPrivateKey(*ed25519Pub)
	if err := priv.UnmarshalByteSecret(data); err != nil {
		return err
	}
	if err := ed25519.Validate(priv); err != nil {
		return errors.StructuralError(err.Error())
	}
	pk.PrivateKey = priv
	return nil
}

func (pk *PrivateKey) parseEd448PrivateKey(data []byte) error {
	if len(data) != ed448.PointSize {
		return errors.StructuralError("invalid Ed448 private key length")
	}
	ed448Pub := pk.PublicKey.PublicKey.(*ed448.PublicKey)
	priv := ed448.NewPrivateKey(*ed448Pub)
	if err := priv.UnmarshalByteSecret(data); err != nil {
		return err
	}
	if err := ed448.Validate(priv); err != nil {
		return errors.StructuralError(err.Error())
	}
	pk.PrivateKey = priv
	return nil
}

// VerifySignature returns nil iff sig is a valid signature, made by this
// private key's corresponding public key, of the data hashed into signed.
func (pk *PrivateKey) VerifySignature(signed hash.Hash, sig *Signature) (err error) {
	return pk.PublicKey.VerifySignature(signed, sig)
}
