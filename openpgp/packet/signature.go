// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package packet

import (
	"bytes"
	"crypto"
	"encoding/binary"
	"hash"
	"io"
	"strconv"
	"time"

	"github.com/openpgp-go/pgpcore/openpgp/ecdsa"
	"github.com/openpgp-go/pgpcore/openpgp/eddsa"
	"github.com/openpgp-go/pgpcore/openpgp/errors"
	"github.com/openpgp-go/pgpcore/openpgp/internal/algorithm"
	"github.com/openpgp-go/pgpcore/openpgp/internal/encoding"
	"github.com/openpgp-go/pgpcore/openpgp/slhdsa"
)

// SignatureType represents the different semantic meanings which are
// attached to a signature, see RFC 9580, section 5.2.1.
type SignatureType uint8

const (
	SigTypeBinary               SignatureType = 0x00
	SigTypeText                 SignatureType = 0x01
	SigTypeStandalone           SignatureType = 0x02
	SigTypeGenericCert          SignatureType = 0x10
	SigTypePersonaCert          SignatureType = 0x11
	SigTypeCasualCert           SignatureType = 0x12
	SigTypePositiveCert         SignatureType = 0x13
	SigTypeSubkeyBinding        SignatureType = 0x18
	SigTypePrimaryKeyBinding    SignatureType = 0x19
	SigTypeDirectSignature      SignatureType = 0x1F
	SigTypeKeyRevocation        SignatureType = 0x20
	SigTypeSubkeyRevocation     SignatureType = 0x28
	SigTypeCertificationRevocation SignatureType = 0x30
)

// signatureSubpacketType is the type of a parsed or to-be-serialized
// signature subpacket, see RFC 9580, section 5.2.3.1.
type signatureSubpacketType uint8

const (
	creationTimeSubpacket       signatureSubpacketType = 2
	signatureExpirationSubpacket signatureSubpacketType = 3
	keyExpirationSubpacket      signatureSubpacketType = 9
	prefSymmetricAlgosSubpacket signatureSubpacketType = 11
	issuerSubpacket             signatureSubpacketType = 16
	notationDataSubpacket       signatureSubpacketType = 20
	prefHashAlgosSubpacket      signatureSubpacketType = 21
	prefCompressionSubpacket    signatureSubpacketType = 22
	primaryUserIdSubpacket      signatureSubpacketType = 25
	policyUriSubpacket          signatureSubpacketType = 26
	keyFlagsSubpacket           signatureSubpacketType = 27
	signerUserIdSubpacket       signatureSubpacketType = 28
	featuresSubpacket           signatureSubpacketType = 30
	embeddedSignatureSubpacket  signatureSubpacketType = 32
	issuerFingerprintSubpacket  signatureSubpacketType = 33
	prefAEADCiphersuites        signatureSubpacketType = 39
)

// rawSubpacket holds the verbatim contents of a signature subpacket, as
// read from the wire, along with its type and criticality. Parsed field
// values live directly on Signature; rawSubpackets exists so Serialize
// can reproduce subpackets this implementation doesn't interpret, and so
// tests can introspect which subpackets were actually emitted.
type rawSubpacket struct {
	subpacketType signatureSubpacketType
	isCritical    bool
	isHashed      bool
	contents      []byte
}

// Signature represents a signature. See RFC 9580, section 5.2.
type Signature struct {
	Version    int
	SigType    SignatureType
	PubKeyAlgo PublicKeyAlgorithm
	Hash       crypto.Hash

	// HashSuffix is extra data that is hashed in after the signed data.
	HashSuffix []byte
	// HashTag contains the first two bytes of the hash for fast rejection
	// of bad signed data.
	HashTag [2]byte

	CreationTime time.Time

	// SigLifetimeSecs, if non-nil, is the validity period of the
	// signature, in seconds after the creation time.
	SigLifetimeSecs *uint32
	// KeyLifetimeSecs, if non-nil, is the validity period of the signed
	// key, in seconds after its creation time.
	KeyLifetimeSecs *uint32

	// Flags, parsed out of a Key Flags subpacket (RFC 9580, section 5.2.3.29).
	FlagCertify, FlagSign, FlagEncryptCommunications, FlagEncryptStorage, FlagSplit, FlagAuthenticate, FlagGroupKey bool

	// IssuerKeyId, if non-zero, is the 8-byte key ID of the signer.
	IssuerKeyId *uint64
	// IssuerFingerprint is the fingerprint of the signing key, when carried
	// by an Issuer Fingerprint subpacket.
	IssuerFingerprint []byte

	// IsPrimaryId notes whether a User ID signature asserts that this is
	// the primary identity for the key.
	IsPrimaryId *bool

	// SignerUserId, if non-empty, is the user ID the signer claims to be
	// signing as (a Signer's User ID subpacket).
	SignerUserId string

	// PolicyURI, if non-empty, is the URI of the policy under which this
	// signature was issued (RFC 9580, section 5.2.3.23).
	PolicyURI string

	// PreferredSymmetric/Hash/Compression hold the signer's preferred
	// algorithms, most to least preferred, as algorithm IDs.
	PreferredSymmetric  []uint8
	PreferredHash       []uint8
	PreferredCompression []uint8

	// PreferredCipherSuites holds the signer's preferred AEAD cipher
	// suites, as pairs of (symmetric algorithm ID, AEAD mode ID).
	PreferredCipherSuites [][2]uint8

	// MDC and AEAD note support for SEIPD v1 and v2, out of a Features
	// subpacket.
	MDC, AEAD bool

	// EmbeddedSignature holds the cross-certification signature found in
	// a signing subkey's binding signature.
	EmbeddedSignature *Signature

	// Notations holds any Notation Data subpackets attached to the
	// signature.
	Notations []*Notation

	// salt is the random salt prefixed to the hashed data for v6
	// signatures, see RFC 9580, section 5.2.4.
	salt []byte

	// HMAC holds the raw tag of an ExperimentalPubKeyAlgoHMAC/AEAD
	// "symmetric signature".
	HMAC encoding.Field

	// slhDsaParameterSetId is the SLH-DSA parameter set asserted by this
	// signature, for SLH-DSA signatures.
	slhDsaParameterSetId slhdsa.ParameterSetId

	// Signature material, populated depending on PubKeyAlgo.
	RSASignature                 encoding.Field
	DSASigR, DSASigS             encoding.Field
	ECDSASigR, ECDSASigS         encoding.Field
	EdDSASigR, EdDSASigS         encoding.Field
	EdSig                        []byte
	MldsaSig                     encoding.Field
	SlhdsaSig                    encoding.Field

	outSubpackets  []outputSubpacket
	rawSubpackets  []rawSubpacket
}

func (sig *Signature) parse(r io.Reader) (err error) {
	var buf [1]byte
	_, err = readFull(r, buf[:])
	if err != nil {
		return
	}
	sig.Version = int(buf[0])
	switch sig.Version {
	case 3:
		return sig.parseV3(r)
	case 4, 5, 6:
		return sig.parseV4Up(r)
	}
	return errors.UnsupportedError("signature packet version " + strconv.Itoa(sig.Version))
}

func (sig *Signature) parseV3(r io.Reader) (err error) {
	var buf [8]byte
	if _, err = readFull(r, buf[:1]); err != nil {
		return
	}
	if buf[0] != 5 {
		return errors.UnsupportedError("invalid hashed material length " + strconv.Itoa(int(buf[0])))
	}

	if _, err = readFull(r, buf[:5]); err != nil {
		return
	}
	sig.SigType = SignatureType(buf[0])
	t := uint32(buf[1])<<24 | uint32(buf[2])<<16 | uint32(buf[3])<<8 | uint32(buf[4])
	sig.CreationTime = time.Unix(int64(t), 0)

	if _, err = readFull(r, buf[:8]); err != nil {
		return
	}
	keyId := binary.BigEndian.Uint64(buf[:8])
	sig.IssuerKeyId = &keyId

	if _, err = readFull(r, buf[:2]); err != nil {
		return
	}
	sig.PubKeyAlgo = PublicKeyAlgorithm(buf[0])
	var ok bool
	sig.Hash, ok = algorithm.HashIdToHash(buf[1])
	if !ok {
		return errors.UnsupportedError("hash function " + strconv.Itoa(int(buf[1])))
	}

	if _, err = readFull(r, sig.HashTag[:2]); err != nil {
		return
	}
	return sig.parseSignature(r)
}

func (sig *Signature) parseV4Up(r io.Reader) (err error) {
	var buf [5]byte
	if _, err = readFull(r, buf[:5]); err != nil {
		return
	}
	sig.SigType = SignatureType(buf[0])
	sig.PubKeyAlgo = PublicKeyAlgorithm(buf[1])
	var ok bool
	sig.Hash, ok = algorithm.HashIdToHash(buf[2])
	if !ok {
		return errors.UnsupportedError("hash function " + strconv.Itoa(int(buf[2])))
	}

	hashedSubpacketsLength := int(buf[3])<<8 | int(buf[4])
	if sig.Version == 6 {
		var lenBuf [4]byte
		if _, err = readFull(r, lenBuf[:]); err != nil {
			return
		}
		hashedSubpacketsLength = int(binary.BigEndian.Uint32(lenBuf[:]))
	}
	hashedSubpackets := make([]byte, hashedSubpacketsLength)
	if _, err = readFull(r, hashedSubpackets); err != nil {
		return
	}
	if err = sig.buildHashSuffix(hashedSubpackets); err != nil {
		return
	}
	if err = sig.parseSubpackets(hashedSubpackets, true); err != nil {
		return
	}

	var unhashedSubpacketsLength int
	if sig.Version == 6 {
		var lenBuf [4]byte
		if _, err = readFull(r, lenBuf[:]); err != nil {
			return
		}
		unhashedSubpacketsLength = int(binary.BigEndian.Uint32(lenBuf[:]))
	} else {
		var lenBuf [2]byte
		if _, err = readFull(r, lenBuf[:]); err != nil {
			return
		}
		unhashedSubpacketsLength = int(lenBuf[0])<<8 | int(lenBuf[1])
	}
	unhashedSubpackets := make([]byte, unhashedSubpacketsLength)
	if _, err = readFull(r, unhashedSubpackets); err != nil {
		return
	}
	if err = sig.parseSubpackets(unhashedSubpackets, false); err != nil {
		return
	}

	if _, err = readFull(r, sig.HashTag[:2]); err != nil {
		return
	}

	if sig.Version == 6 {
		var saltLen [1]byte
		if _, err = readFull(r, saltLen[:]); err != nil {
			return
		}
		sig.salt = make([]byte, saltLen[0])
		if _, err = readFull(r, sig.salt); err != nil {
			return
		}
	}

	return sig.parseSignature(r)
}

// buildHashSuffix computes the trailing bytes which get hashed in after
// the data itself: a copy of the serialized hashed subpackets plus a
// version-dependent trailer (RFC 9580, section 5.2.4).
func (sig *Signature) buildHashSuffix(hashedSubpackets []byte) (err error) {
	var hash [1]byte
	hash[0], err = algorithm.HashToHashId(sig.Hash)
	if err != nil {
		return err
	}

	var l uint32
	suffix := bytes.NewBuffer(nil)
	suffix.Write([]byte{byte(sig.Version), byte(sig.SigType), byte(sig.PubKeyAlgo), hash[0]})
	if sig.Version == 6 {
		var lenBuf [4]byte
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(hashedSubpackets)))
		suffix.Write(lenBuf[:])
	} else {
		suffix.Write([]byte{byte(len(hashedSubpackets) >> 8), byte(len(hashedSubpackets))})
	}
	suffix.Write(hashedSubpackets)
	l = uint32(suffix.Len())
	suffix.WriteByte(byte(sig.Version))
	suffix.WriteByte(0xff)
	if sig.Version == 5 || sig.Version == 6 {
		suffix.Write([]byte{0, 0, 0, 0})
	}
	suffix.Write([]byte{byte(l >> 24), byte(l >> 16), byte(l >> 8), byte(l)})
	sig.HashSuffix = suffix.Bytes()
	return nil
}

// AddMetadataToHashSuffix leaves HashSuffix unchanged: the trailer built
// by buildHashSuffix is used as it is, and no literal-data metadata is
// added to it for v5 binary or text signatures.
func (sig *Signature) AddMetadataToHashSuffix() {
	if len(sig.HashSuffix) < 4 {
		return
	}
}

func (sig *Signature) parseSubpackets(subpackets []byte, isHashed bool) (err error) {
	for len(subpackets) > 0 {
		subpackets, err = sig.parseSubpacket(subpackets, isHashed)
		if err != nil {
			return
		}
	}
	return
}

func parseSubpacketLength(b []byte) (length, n int, err error) {
	if len(b) == 0 {
		return 0, 0, errors.StructuralError("short subpacket")
	}
	switch {
	case b[0] < 192:
		return int(b[0]), 1, nil
	case b[0] < 255:
		if len(b) < 2 {
			return 0, 0, errors.StructuralError("short subpacket")
		}
		return (int(b[0])-192)<<8 + int(b[1]) + 192, 2, nil
	default:
		if len(b) < 5 {
			return 0, 0, errors.StructuralError("short subpacket")
		}
		return int(b[1])<<24 | int(b[2])<<16 | int(b[3])<<8 | int(b[4]), 5, nil
	}
}

func (sig *Signature) parseSubpacket(subpacket []byte, isHashed bool) (rest []byte, err error) {
	length, n, err := parseSubpacketLength(subpacket)
	if err != nil {
		return nil, err
	}
	subpacket = subpacket[n:]
	if length == 0 || length > len(subpacket) {
		return nil, errors.StructuralError("subpacket truncated")
	}
	packetType := signatureSubpacketType(subpacket[0] & 0x7f)
	isCritical := subpacket[0]&0x80 != 0
	contents := subpacket[1:length]
	rest = subpacket[length:]

	sig.rawSubpackets = append(sig.rawSubpackets, rawSubpacket{packetType, isCritical, isHashed, contents})

	switch packetType {
	case creationTimeSubpacket:
		if len(contents) != 4 {
			return nil, errors.StructuralError("signature creation time not four bytes")
		}
		t := binary.BigEndian.Uint32(contents)
		sig.CreationTime = time.Unix(int64(t), 0)
	case signatureExpirationSubpacket:
		if len(contents) != 4 {
			return nil, errors.StructuralError("signature expiration time not four bytes")
		}
		v := binary.BigEndian.Uint32(contents)
		sig.SigLifetimeSecs = &v
	case keyExpirationSubpacket:
		if len(contents) != 4 {
			return nil, errors.StructuralError("key expiration time not four bytes")
		}
		v := binary.BigEndian.Uint32(contents)
		sig.KeyLifetimeSecs = &v
	case prefSymmetricAlgosSubpacket:
		sig.PreferredSymmetric = append([]byte{}, contents...)
	case issuerSubpacket:
		if len(contents) != 8 {
			return nil, errors.StructuralError("issuer subpacket with wrong length")
		}
		v := binary.BigEndian.Uint64(contents)
		sig.IssuerKeyId = &v
	case issuerFingerprintSubpacket:
		if len(contents) < 1 {
			return nil, errors.StructuralError("empty issuer fingerprint subpacket")
		}
		sig.IssuerFingerprint = append([]byte{}, contents[1:]...)
		if len(sig.IssuerFingerprint) >= 8 {
			v := binary.BigEndian.Uint64(sig.IssuerFingerprint[:8])
			sig.IssuerKeyId = &v
		}
	case notationDataSubpacket:
		if len(contents) < 8 {
			return nil, errors.StructuralError("notation subpacket truncated")
		}
		nameLen := int(contents[4])<<8 | int(contents[5])
		valueLen := int(contents[6])<<8 | int(contents[7])
		if len(contents) < 8+nameLen+valueLen {
			return nil, errors.StructuralError("notation subpacket truncated")
		}
		sig.Notations = append(sig.Notations, &Notation{
			Name:          string(contents[8 : 8+nameLen]),
			Value:         append([]byte{}, contents[8+nameLen:8+nameLen+valueLen]...),
			HumanReadable: contents[0]&0x80 != 0,
			Critical:      isCritical,
		})
	case prefHashAlgosSubpacket:
		sig.PreferredHash = append([]byte{}, contents...)
	case prefCompressionSubpacket:
		sig.PreferredCompression = append([]byte{}, contents...)
	case primaryUserIdSubpacket:
		if len(contents) != 1 {
			return nil, errors.StructuralError("primary user id subpacket with wrong length")
		}
		b := contents[0] != 0
		sig.IsPrimaryId = &b
	case policyUriSubpacket:
		sig.PolicyURI = string(contents)
	case keyFlagsSubpacket:
		if len(contents) == 0 {
			return nil, errors.StructuralError("empty key flags subpacket")
		}
		flags := contents[0]
		sig.FlagCertify = flags&0x01 != 0
		sig.FlagSign = flags&0x02 != 0
		sig.FlagEncryptCommunications = flags&0x04 != 0
		sig.FlagEncryptStorage = flags&0x08 != 0
		sig.FlagSplit = flags&0x10 != 0
		sig.FlagAuthenticate = flags&0x20 != 0
		sig.FlagGroupKey = flags&0x80 != 0
	case signerUserIdSubpacket:
		sig.SignerUserId = string(contents)
	case featuresSubpacket:
		if len(contents) == 0 {
			return nil, errors.StructuralError("empty features subpacket")
		}
		sig.MDC = contents[0]&0x01 != 0
		sig.AEAD = contents[0]&0x02 != 0
	case embeddedSignatureSubpacket:
		if sig.EmbeddedSignature != nil {
			return nil, errors.StructuralError("cannot have multiple embedded signatures")
		}
		sig.EmbeddedSignature = new(Signature)
		if err := sig.EmbeddedSignature.parse(bytes.NewBuffer(contents)); err != nil {
			return nil, err
		}
		if sigType := sig.EmbeddedSignature.SigType; sigType != SigTypePrimaryKeyBinding {
			return nil, errors.StructuralError("cross-signature has unexpected type " + strconv.Itoa(int(sigType)))
		}
	case prefAEADCiphersuites:
		for i := 0; i+1 < len(contents); i += 2 {
			sig.PreferredCipherSuites = append(sig.PreferredCipherSuites, [2]uint8{contents[i], contents[i+1]})
		}
	default:
		if isCritical {
			return nil, errors.UnsupportedError("unknown critical signature subpacket type " + strconv.Itoa(int(packetType)))
		}
	}
	return
}

func (sig *Signature) parseSignature(r io.Reader) (err error) {
	switch sig.PubKeyAlgo {
	case PubKeyAlgoRSA, PubKeyAlgoRSASignOnly:
		sig.RSASignature = new(encoding.MPI)
		_, err = sig.RSASignature.ReadFrom(r)
	case PubKeyAlgoDSA:
		sig.DSASigR = new(encoding.MPI)
		if _, err = sig.DSASigR.ReadFrom(r); err != nil {
			return
		}
		sig.DSASigS = new(encoding.MPI)
		_, err = sig.DSASigS.ReadFrom(r)
	case PubKeyAlgoECDSA:
		sig.ECDSASigR = new(encoding.MPI)
		if _, err = sig.ECDSASigR.ReadFrom(r); err != nil {
			return
		}
		sig.ECDSASigS = new(encoding.MPI)
		_, err = sig.ECDSASigS.ReadFrom(r)
	case PubKeyAlgoEdDSA:
		sig.EdDSASigR = new(encoding.MPI)
		if _, err = sig.EdDSASigR.ReadFrom(r); err != nil {
			return
		}
		sig.EdDSASigS = new(encoding.MPI)
		_, err = sig.EdDSASigS.ReadFrom(r)
	case PubKeyAlgoEd25519:
		sig.EdSig = make([]byte, 64)
		_, err = readFull(r, sig.EdSig)
	case PubKeyAlgoEd448:
		sig.EdSig = make([]byte, 114)
		_, err = readFull(r, sig.EdSig)
	case PubKeyAlgoMldsa65Ed25519, PubKeyAlgoMldsa87Ed448:
		sig.MldsaSig = encoding.NewOctetString(nil)
		if _, err = sig.MldsaSig.ReadFrom(r); err != nil {
			return
		}
		n := 32
		if sig.PubKeyAlgo == PubKeyAlgoMldsa87Ed448 {
			n = 57
		}
		sig.EdDSASigR = encoding.NewOctetArray(make([]byte, n))
		_, err = sig.EdDSASigR.ReadFrom(r)
	case PubKeyAlgoMldsa65p256, PubKeyAlgoMldsa87p384, PubKeyAlgoMldsa65Brainpool256, PubKeyAlgoMldsa87Brainpool384:
		sig.MldsaSig = encoding.NewOctetString(nil)
		if _, err = sig.MldsaSig.ReadFrom(r); err != nil {
			return
		}
		sig.ECDSASigR = new(encoding.MPI)
		if _, err = sig.ECDSASigR.ReadFrom(r); err != nil {
			return
		}
		sig.ECDSASigS = new(encoding.MPI)
		_, err = sig.ECDSASigS.ReadFrom(r)
	case PubKeyAlgoSlhdsaSha2, PubKeyAlgoSlhdsaShake:
		var param [1]byte
		if _, err = readFull(r, param[:]); err != nil {
			return
		}
		if sig.slhDsaParameterSetId, err = slhdsa.ParseParameterSetID(param); err != nil {
			return
		}
		sig.SlhdsaSig = encoding.NewOctetString(nil)
		_, err = sig.SlhdsaSig.ReadFrom(r)
	case ExperimentalPubKeyAlgoHMAC, ExperimentalPubKeyAlgoAEAD:
		sig.HMAC = encoding.NewOctetString(nil)
		_, err = sig.HMAC.ReadFrom(r)
	default:
		panic("unreachable")
	}
	return
}

// PrepareVerify returns a fresh hash.Hash for the signature's declared
// hash algorithm, pre-loaded with the v6 salt (if any), ready to have the
// signed data written in and then HashSuffix appended.
func (sig *Signature) PrepareVerify() (h hash.Hash, err error) {
	if !sig.Hash.Available() {
		return nil, errors.UnsupportedError("hash not available: " + strconv.Itoa(int(sig.Hash)))
	}
	h = sig.Hash.New()
	if sig.Version == 6 {
		h.Write(sig.salt)
	}
	return h, nil
}

// outputSubpacket is a subpacket staged for serialization by Sign.
type outputSubpacket struct {
	hashed        bool
	subpacketType signatureSubpacketType
	isCritical    bool
	contents      []byte
}

func (sig *Signature) buildSubpackets(issuer *PublicKey) (subpackets []outputSubpacket) {
	creationTime := make([]byte, 4)
	binary.BigEndian.PutUint32(creationTime, uint32(sig.CreationTime.Unix()))
	subpackets = append(subpackets, outputSubpacket{true, creationTimeSubpacket, false, creationTime})

	if sig.SigLifetimeSecs != nil && *sig.SigLifetimeSecs != 0 {
		sigLifetime := make([]byte, 4)
		binary.BigEndian.PutUint32(sigLifetime, *sig.SigLifetimeSecs)
		subpackets = append(subpackets, outputSubpacket{true, signatureExpirationSubpacket, true, sigLifetime})
	}

	if issuer != nil {
		keyId := make([]byte, 8)
		binary.BigEndian.PutUint64(keyId, issuer.KeyId)
		subpackets = append(subpackets, outputSubpacket{true, issuerSubpacket, false, keyId})

		fingerprint := append([]byte{byte(issuer.Version)}, issuer.Fingerprint...)
		subpackets = append(subpackets, outputSubpacket{true, issuerFingerprintSubpacket, false, fingerprint})
	}

	if sig.KeyLifetimeSecs != nil && *sig.KeyLifetimeSecs != 0 {
		keyLifetime := make([]byte, 4)
		binary.BigEndian.PutUint32(keyLifetime, *sig.KeyLifetimeSecs)
		subpackets = append(subpackets, outputSubpacket{true, keyExpirationSubpacket, false, keyLifetime})
	}

	if sig.FlagCertify || sig.FlagSign || sig.FlagEncryptCommunications || sig.FlagEncryptStorage || sig.FlagSplit || sig.FlagAuthenticate || sig.FlagGroupKey {
		var flags byte
		if sig.FlagCertify {
			flags |= 0x01
		}
		if sig.FlagSign {
			flags |= 0x02
		}
		if sig.FlagEncryptCommunications {
			flags |= 0x04
		}
		if sig.FlagEncryptStorage {
			flags |= 0x08
		}
		if sig.FlagSplit {
			flags |= 0x10
		}
		if sig.FlagAuthenticate {
			flags |= 0x20
		}
		if sig.FlagGroupKey {
			flags |= 0x80
		}
		subpackets = append(subpackets, outputSubpacket{true, keyFlagsSubpacket, false, []byte{flags}})
	}

	if sig.SignerUserId != "" {
		subpackets = append(subpackets, outputSubpacket{true, signerUserIdSubpacket, false, []byte(sig.SignerUserId)})
	}

	if sig.PolicyURI != "" {
		subpackets = append(subpackets, outputSubpacket{true, policyUriSubpacket, false, []byte(sig.PolicyURI)})
	}

	if sig.IsPrimaryId != nil && *sig.IsPrimaryId {
		subpackets = append(subpackets, outputSubpacket{true, primaryUserIdSubpacket, false, []byte{1}})
	}

	for _, notation := range sig.Notations {
		subpackets = append(subpackets, outputSubpacket{true, notationDataSubpacket, notation.Critical, notation.getData()})
	}

	if sig.MDC || sig.AEAD {
		var features byte
		if sig.MDC {
			features |= 0x01
		}
		if sig.AEAD {
			features |= 0x02
		}
		subpackets = append(subpackets, outputSubpacket{true, featuresSubpacket, false, []byte{features}})
	}

	if sig.EmbeddedSignature != nil {
		var buf bytes.Buffer
		sig.EmbeddedSignature.serializeBody(&buf)
		subpackets = append(subpackets, outputSubpacket{false, embeddedSignatureSubpacket, true, buf.Bytes()})
	}

	return
}

func serializeSubpackets(w io.Writer, subpackets []outputSubpacket, hashed bool) (err error) {
	for _, subpacket := range subpackets {
		if subpacket.hashed != hashed {
			continue
		}
		body := make([]byte, 0, len(subpacket.contents)+1)
		body = append(body, byte(subpacket.subpacketType))
		if subpacket.isCritical {
			body[0] |= 0x80
		}
		body = append(body, subpacket.contents...)
		if err = serializeSubpacketLength(w, len(body)); err != nil {
			return
		}
		if _, err = w.Write(body); err != nil {
			return
		}
	}
	return
}

func serializeSubpacketLength(w io.Writer, length int) (err error) {
	var buf [5]byte
	switch {
	case length < 192:
		buf[0] = byte(length)
		_, err = w.Write(buf[:1])
	case length < 16320:
		length -= 192
		buf[0] = 192 + byte(length>>8)
		buf[1] = byte(length)
		_, err = w.Write(buf[:2])
	default:
		buf[0] = 255
		binary.BigEndian.PutUint32(buf[1:], uint32(length))
		_, err = w.Write(buf[:5])
	}
	return
}

func subpacketsLength(subpackets []outputSubpacket, hashed bool) (length int) {
	for _, subpacket := range subpackets {
		if subpacket.hashed != hashed {
			continue
		}
		length += subpacketLengthLength(len(subpacket.contents) + 1)
		length += len(subpacket.contents) + 1
	}
	return
}

func subpacketLengthLength(length int) int {
	if length < 192 {
		return 1
	}
	if length < 16320 {
		return 2
	}
	return 5
}

// Sign signs a message with a private key, populating the signature
// fields (hash suffix/tag and algorithm-specific signature material)
// from the hash of the message and the given creation time.
// If config is nil, sensible defaults will be used.
func (sig *Signature) Sign(h hash.Hash, priv *PrivateKey, config *Config) (err error) {
	sig.Version = priv.Version
	if sig.Version == 0 {
		sig.Version = 4
	}
	if config.V6() {
		sig.Version = 6
	}
	sig.PubKeyAlgo = priv.PubKeyAlgo
	if sig.CreationTime.IsZero() {
		sig.CreationTime = config.Now()
	}

	if sig.Version == 6 {
		sig.salt = make([]byte, sig.Hash.Size())
		if _, err = io.ReadFull(config.Random(), sig.salt); err != nil {
			return
		}
		h.Write(sig.salt)
	}

	sig.outSubpackets = sig.buildSubpackets(&priv.PublicKey)
	hashedSubpacketsBuf := new(bytes.Buffer)
	if err = serializeSubpackets(hashedSubpacketsBuf, sig.outSubpackets, true); err != nil {
		return
	}
	if err = sig.buildHashSuffix(hashedSubpacketsBuf.Bytes()); err != nil {
		return
	}

	h.Write(sig.HashSuffix)
	digest := h.Sum(nil)
	copy(sig.HashTag[:], digest)

	return sig.signDigest(digest, priv, config)
}

// SignUserId computes a certification signature for id and pub, signed
// by priv.
// If config is nil, sensible defaults will be used.
func (sig *Signature) SignUserId(id string, pub *PublicKey, priv *PrivateKey, config *Config) error {
	h, err := newHashForSignature(sig.Hash)
	if err != nil {
		return err
	}
	if err := userIdSignatureHash(id, pub, h); err != nil {
		return err
	}
	return sig.Sign(h, priv, config)
}

// SignKey computes a subkey binding signature over pub signed by priv.
// If config is nil, sensible defaults will be used.
func (sig *Signature) SignKey(pub *PublicKey, priv *PrivateKey, config *Config) error {
	preparedHash, err := newHashForSignature(sig.Hash)
	if err != nil {
		return err
	}
	h, err := keySignatureHash(&priv.PublicKey, pub, preparedHash)
	if err != nil {
		return err
	}
	return sig.Sign(h, priv, config)
}

func newHashForSignature(h crypto.Hash) (hash.Hash, error) {
	if !h.Available() {
		return nil, errors.UnsupportedError("hash not available: " + strconv.Itoa(int(h)))
	}
	return h.New(), nil
}

func (sig *Signature) signDigest(digest []byte, priv *PrivateKey, config *Config) (err error) {
	switch priv.PubKeyAlgo {
	case PubKeyAlgoRSA, PubKeyAlgoRSASignOnly:
		return sig.signRSA(digest, priv, config)
	case PubKeyAlgoECDSA:
		return sig.signECDSA(digest, priv, config)
	case PubKeyAlgoEdDSA:
		return sig.signEdDSA(digest, priv)
	case ExperimentalPubKeyAlgoHMAC:
		return errors.InvalidArgumentError("symmetric signatures are not signed with Sign")
	}
	return errors.UnsupportedError("public key algorithm cannot sign: " + strconv.Itoa(int(priv.PubKeyAlgo)))
}

func (sig *Signature) signRSA(digest []byte, priv *PrivateKey, config *Config) (err error) {
	rsaPriv, ok := priv.PrivateKey.(crypto.Signer)
	if !ok {
		return errors.InvalidArgumentError("bad RSA private key")
	}
	sigBytes, err := rsaPriv.Sign(config.Random(), digest, sig.Hash)
	if err != nil {
		return errors.InvalidArgumentError("RSA signing failed: " + err.Error())
	}
	sig.RSASignature = encoding.NewMPI(sigBytes)
	return nil
}

func (sig *Signature) signECDSA(digest []byte, priv *PrivateKey, config *Config) (err error) {
	ecdsaPriv, ok := priv.PrivateKey.(*ecdsa.PrivateKey)
	if !ok {
		return errors.InvalidArgumentError("bad ECDSA private key")
	}
	r, s, err := ecdsa.Sign(config.Random(), ecdsaPriv, digest)
	if err != nil {
		return err
	}
	sig.ECDSASigR = new(encoding.MPI).SetBig(r)
	sig.ECDSASigS = new(encoding.MPI).SetBig(s)
	return nil
}

func (sig *Signature) signEdDSA(digest []byte, priv *PrivateKey) (err error) {
	eddsaPriv, ok := priv.PrivateKey.(*eddsa.PrivateKey)
	if !ok {
		return errors.InvalidArgumentError("bad EdDSA private key")
	}
	r, s, err := eddsa.Sign(eddsaPriv, digest)
	if err != nil {
		return err
	}
	sig.EdDSASigR = encoding.NewMPI(r)
	sig.EdDSASigS = encoding.NewMPI(s)
	return nil
}

func (sig *Signature) signatureBodyLength() (length int) {
	switch sig.PubKeyAlgo {
	case PubKeyAlgoRSA, PubKeyAlgoRSASignOnly:
		length = int(sig.RSASignature.EncodedLength())
	case PubKeyAlgoDSA:
		length = int(sig.DSASigR.EncodedLength()) + int(sig.DSASigS.EncodedLength())
	case PubKeyAlgoECDSA:
		length = int(sig.ECDSASigR.EncodedLength()) + int(sig.ECDSASigS.EncodedLength())
	case PubKeyAlgoEdDSA:
		length = int(sig.EdDSASigR.EncodedLength()) + int(sig.EdDSASigS.EncodedLength())
	case PubKeyAlgoEd25519, PubKeyAlgoEd448:
		length = len(sig.EdSig)
	case PubKeyAlgoMldsa65Ed25519, PubKeyAlgoMldsa87Ed448:
		length = int(sig.MldsaSig.EncodedLength()) + int(sig.EdDSASigR.EncodedLength())
	case PubKeyAlgoMldsa65p256, PubKeyAlgoMldsa87p384, PubKeyAlgoMldsa65Brainpool256, PubKeyAlgoMldsa87Brainpool384:
		length = int(sig.MldsaSig.EncodedLength()) + int(sig.ECDSASigR.EncodedLength()) + int(sig.ECDSASigS.EncodedLength())
	case PubKeyAlgoSlhdsaSha2, PubKeyAlgoSlhdsaShake:
		length = 1 + int(sig.SlhdsaSig.EncodedLength())
	case ExperimentalPubKeyAlgoHMAC, ExperimentalPubKeyAlgoAEAD:
		length = int(sig.HMAC.EncodedLength())
	}
	return
}

func (sig *Signature) serializeSignatureBody(w io.Writer) (err error) {
	switch sig.PubKeyAlgo {
	case PubKeyAlgoRSA, PubKeyAlgoRSASignOnly:
		_, err = w.Write(sig.RSASignature.EncodedBytes())
	case PubKeyAlgoDSA:
		if _, err = w.Write(sig.DSASigR.EncodedBytes()); err != nil {
			return
		}
		_, err = w.Write(sig.DSASigS.EncodedBytes())
	case PubKeyAlgoECDSA:
		if _, err = w.Write(sig.ECDSASigR.EncodedBytes()); err != nil {
			return
		}
		_, err = w.Write(sig.ECDSASigS.EncodedBytes())
	case PubKeyAlgoEdDSA:
		if _, err = w.Write(sig.EdDSASigR.EncodedBytes()); err != nil {
			return
		}
		_, err = w.Write(sig.EdDSASigS.EncodedBytes())
	case PubKeyAlgoEd25519, PubKeyAlgoEd448:
		_, err = w.Write(sig.EdSig)
	case PubKeyAlgoMldsa65Ed25519, PubKeyAlgoMldsa87Ed448:
		if _, err = w.Write(sig.MldsaSig.EncodedBytes()); err != nil {
			return
		}
		_, err = w.Write(sig.EdDSASigR.EncodedBytes())
	case PubKeyAlgoMldsa65p256, PubKeyAlgoMldsa87p384, PubKeyAlgoMldsa65Brainpool256, PubKeyAlgoMldsa87Brainpool384:
		if _, err = w.Write(sig.MldsaSig.EncodedBytes()); err != nil {
			return
		}
		if _, err = w.Write(sig.ECDSASigR.EncodedBytes()); err != nil {
			return
		}
		_, err = w.Write(sig.ECDSASigS.EncodedBytes())
	case PubKeyAlgoSlhdsaSha2, PubKeyAlgoSlhdsaShake:
		if _, err = w.Write(sig.slhDsaParameterSetId.EncodedBytes()); err != nil {
			return
		}
		_, err = w.Write(sig.SlhdsaSig.EncodedBytes())
	case ExperimentalPubKeyAlgoHMAC, ExperimentalPubKeyAlgoAEAD:
		_, err = w.Write(sig.HMAC.EncodedBytes())
	default:
		panic("impossible")
	}
	return
}

// serializeBody writes this signature's body (everything after the
// packet header) to w, re-using any already-parsed raw subpackets when
// there are no newly staged outSubpackets (i.e. this signature was read
// rather than freshly Signed).
func (sig *Signature) serializeBody(w io.Writer) (err error) {
	hashedSubpacketsBuf := new(bytes.Buffer)
	unhashedSubpacketsBuf := new(bytes.Buffer)

	if len(sig.outSubpackets) > 0 {
		if err = serializeSubpackets(hashedSubpacketsBuf, sig.outSubpackets, true); err != nil {
			return
		}
		if err = serializeSubpackets(unhashedSubpacketsBuf, sig.outSubpackets, false); err != nil {
			return
		}
	} else {
		for _, raw := range sig.rawSubpackets {
			body := make([]byte, 0, len(raw.contents)+1)
			t := byte(raw.subpacketType)
			if raw.isCritical {
				t |= 0x80
			}
			body = append(body, t)
			body = append(body, raw.contents...)
			dst := hashedSubpacketsBuf
			if !raw.isHashed {
				dst = unhashedSubpacketsBuf
			}
			if err = serializeSubpacketLength(dst, len(body)); err != nil {
				return
			}
			if _, err = dst.Write(body); err != nil {
				return
			}
		}
	}

	hashID, err := algorithm.HashToHashId(sig.Hash)
	if err != nil {
		return err
	}

	if _, err = w.Write([]byte{byte(sig.Version), byte(sig.SigType), byte(sig.PubKeyAlgo), hashID}); err != nil {
		return
	}

	if sig.Version == 6 {
		var lenBuf [4]byte
		binary.BigEndian.PutUint32(lenBuf[:], uint32(hashedSubpacketsBuf.Len()))
		if _, err = w.Write(lenBuf[:]); err != nil {
			return
		}
	} else {
		if _, err = w.Write([]byte{byte(hashedSubpacketsBuf.Len() >> 8), byte(hashedSubpacketsBuf.Len())}); err != nil {
			return
		}
	}
	if _, err = w.Write(hashedSubpacketsBuf.Bytes()); err != nil {
		return
	}

	if sig.Version == 6 {
		var lenBuf [4]byte
		binary.BigEndian.PutUint32(lenBuf[:], uint32(unhashedSubpacketsBuf.Len()))
		if _, err = w.Write(lenBuf[:]); err != nil {
			return
		}
	} else {
		if _, err = w.Write([]byte{byte(unhashedSubpacketsBuf.Len() >> 8), byte(unhashedSubpacketsBuf.Len())}); err != nil {
			return
		}
	}
	if _, err = w.Write(unhashedSubpacketsBuf.Bytes()); err != nil {
		return
	}

	if _, err = w.Write(sig.HashTag[:2]); err != nil {
		return
	}

	if sig.Version == 6 {
		if _, err = w.Write([]byte{byte(len(sig.salt))}); err != nil {
			return
		}
		if _, err = w.Write(sig.salt); err != nil {
			return
		}
	}

	return sig.serializeSignatureBody(w)
}

// Serialize marshals sig to w, including the packet header.
func (sig *Signature) Serialize(w io.Writer) (err error) {
	if len(sig.outSubpackets) == 0 {
		sig.outSubpackets = nil
	}

	hashedSubpackets := sig.outSubpackets
	if hashedSubpackets == nil {
		hashedSubpackets = make([]outputSubpacket, 0, len(sig.rawSubpackets))
		for _, raw := range sig.rawSubpackets {
			hashedSubpackets = append(hashedSubpackets, outputSubpacket{raw.isHashed, raw.subpacketType, raw.isCritical, raw.contents})
		}
	}

	length := versionSize + 1 /* sig type */ + 1 /* pub key algo */ + 1 /* hash algo */
	length += 2 + subpacketsLength(hashedSubpackets, true)
	if sig.Version == 6 {
		length += 2 // extra length bytes for v6 subpacket length fields
	}
	length += 2 + subpacketsLength(hashedSubpackets, false)
	if sig.Version == 6 {
		length += 2
	}
	length += 2 // hash tag
	if sig.Version == 6 {
		length += 1 + len(sig.salt)
	}
	length += sig.signatureBodyLength()

	if err = serializeHeader(w, packetTypeSignature, length); err != nil {
		return
	}

	var buf bytes.Buffer
	if err = sig.serializeBodyWithSubpackets(&buf, hashedSubpackets); err != nil {
		return err
	}
	_, err = w.Write(buf.Bytes())
	return
}

func (sig *Signature) serializeBodyWithSubpackets(w io.Writer, subpackets []outputSubpacket) (err error) {
	saved := sig.outSubpackets
	sig.outSubpackets = subpackets
	err = sig.serializeBody(w)
	sig.outSubpackets = saved
	return
}
