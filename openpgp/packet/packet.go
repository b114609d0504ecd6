// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package packet implements parsing and serialization of OpenPGP packets, as
// specified in RFC 9580.
package packet

import (
	"crypto/rsa"
	"io"

	"github.com/openpgp-go/pgpcore/openpgp/errors"
)

// readFull is the same as io.ReadFull except that reading zero bytes
// returns io.ErrUnexpectedEOF rather than io.EOF, matching the Go standard
// library's own documented-but-unexported historical helper of the same
// name.
func readFull(r io.Reader, buf []byte) (n int, err error) {
	n, err = io.ReadFull(r, buf)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return
}

// consumeAll reads from r until EOF, discarding the bytes, and returns the
// number of bytes read.
func consumeAll(r io.Reader) (n int64, err error) {
	var m int
	var buf [1024]byte

	for {
		m, err = r.Read(buf[:])
		n += int64(m)
		if err == io.EOF {
			err = nil
			return
		}
		if err != nil {
			return
		}
	}
}

// packetType represents the numeric ids of the different OpenPGP packet
// types, see RFC 9580, section 5.
type packetType uint8

const (
	packetTypeEncryptedKey            packetType = 1
	packetTypeSignature                packetType = 2
	packetTypeSymmetricKeyEncrypted   packetType = 3
	packetTypeOnePassSignature        packetType = 4
	packetTypePrivateKey               packetType = 5
	packetTypePublicKey                packetType = 6
	packetTypePrivateSubkey            packetType = 7
	packetTypeCompressed               packetType = 8
	packetTypeSymmetricallyEncrypted   packetType = 9
	packetTypeMarker                   packetType = 10
	packetTypeLiteralData               packetType = 11
	packetTypeTrust                    packetType = 12
	packetTypeUserId                  packetType = 13
	packetTypePublicSubkey             packetType = 14
	packetTypeUserAttribute           packetType = 17
	packetTypeSymmetricallyEncryptedMDC packetType = 18
	packetTypeAEADEncrypted            packetType = 20
)

// readHeader parses a packet header and returns the packet type, the length
// of the packet body (-1 if the length is indeterminate: a partial-length
// body or an old-format packet of indeterminate length), a reader over the packet
// contents, and an error, if any. See RFC 9580, section 5.2.
func readHeader(r io.Reader) (tag packetType, length int64, contents io.Reader, err error) {
	var buf [4]byte
	_, err = io.ReadFull(r, buf[:1])
	if err != nil {
		return
	}
	if buf[0]&0x80 == 0 {
		err = errors.StructuralError("tag byte does not have MSB set")
		return
	}
	if buf[0]&0x40 != 0 {
		// New format packet
		tag = packetType(buf[0] & 0x3f)
		length, isPartial, err2 := readNewFormatLength(r)
		if err2 != nil {
			err = err2
			return
		}
		if isPartial {
			contents = &partialLengthReader{
				remaining: length,
				isPartial: true,
				r:         r,
			}
			length = -1
		} else {
			contents = &spanReader{r, length}
		}
		return tag, length, contents, nil
	}

	// Old format packet
	tag = packetType((buf[0] & 0x3f) >> 2)
	lengthType := buf[0] & 3

	if lengthType == 3 {
		length = -1
		contents = r
		return tag, length, contents, nil
	}

	lengthBytes := 1 << lengthType
	_, err = readFull(r, buf[0:lengthBytes])
	if err != nil {
		return
	}
	for i := 0; i < lengthBytes; i++ {
		length <<= 8
		length |= int64(buf[i])
	}
	contents = &spanReader{r, length}
	return
}

// readNewFormatLength reads a new-format packet length, see RFC 9580,
// section 4.2.2. It returns the length (if fully known), whether the
// length is only the length of the first partial chunk of a
// partial-length-encoded body, and an error.
func readNewFormatLength(r io.Reader) (length int64, isPartial bool, err error) {
	var buf [4]byte
	_, err = readFull(r, buf[:1])
	if err != nil {
		return
	}
	switch {
	case buf[0] < 192:
		length = int64(buf[0])
	case buf[0] < 224:
		length = int64(buf[0]-192) << 8
		_, err = readFull(r, buf[0:1])
		if err != nil {
			return
		}
		length += int64(buf[0]) + 192
	case buf[0] < 255:
		length = int64(1) << (buf[0] & 0x1f)
		isPartial = true
	default:
		_, err = readFull(r, buf[0:4])
		if err != nil {
			return
		}
		length = int64(buf[0])<<24 |
			int64(buf[1])<<16 |
			int64(buf[2])<<8 |
			int64(buf[3])
	}
	return
}

// partialLengthReader wraps an io.Reader and handles a sequence of
// partial-body-length packets, presenting a continuous stream of the
// underlying packet body.
type partialLengthReader struct {
	r         io.Reader
	remaining int64
	isPartial bool
}

func (r *partialLengthReader) Read(p []byte) (n int, err error) {
	for r.remaining == 0 {
		if !r.isPartial {
			return 0, io.EOF
		}
		r.remaining, r.isPartial, err = readNewFormatLength(r.r)
		if err != nil {
			return 0, err
		}
	}

	toRead := int64(len(p))
	if toRead > r.remaining {
		toRead = r.remaining
	}

	n, err = r.r.Read(p[:toRead])
	r.remaining -= int64(n)
	if n < int(toRead) && err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return
}

// spanReader is an io.LimitedReader that returns EOF once a limited
// number of bytes have been read, used for fixed-length (non-partial)
// packet bodies.
type spanReader struct {
	r io.Reader
	n int64
}

func (l *spanReader) Read(p []byte) (n int, err error) {
	if l.n <= 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > l.n {
		p = p[0:l.n]
	}
	n, err = l.r.Read(p)
	l.n -= int64(n)
	if l.n > 0 && err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return
}

// partialLengthWriter writes a stream of data using partial length headers.
type partialLengthWriter struct {
	w          io.WriteCloser
	lengthByte [1]byte
	buf        []byte
	// partialBufferSize is the number of bytes to accumulate before
	// flushing a partial-length chunk.
	partialBufferSize int
}

func (w *partialLengthWriter) Write(p []byte) (n int, err error) {
	bufLen := len(w.buf)
	if bufLen > 0 && bufLen+len(p) >= w.partialBufferSize {
		combined := append(w.buf, p...)
		toWrite := combined[:w.partialBufferSize]
		if err = w.writeChunk(toWrite); err != nil {
			return 0, err
		}
		w.buf = append([]byte{}, combined[w.partialBufferSize:]...)
		return len(p), nil
	}
	w.buf = append(w.buf, p...)
	return len(p), nil
}

func (w *partialLengthWriter) writeChunk(chunk []byte) error {
	power := 0
	for (1 << uint(power+1)) <= len(chunk) {
		power++
	}
	size := 1 << uint(power)
	w.lengthByte[0] = 224 + byte(power)
	if _, err := w.w.Write(w.lengthByte[:]); err != nil {
		return err
	}
	if _, err := w.w.Write(chunk[:size]); err != nil {
		return err
	}
	if size < len(chunk) {
		return w.writeChunk(chunk[size:])
	}
	return nil
}

func (w *partialLengthWriter) Close() (err error) {
	if len(w.buf) > 0 {
		if err = serializeLength(w.w, len(w.buf)); err != nil {
			return err
		}
		if _, err = w.w.Write(w.buf); err != nil {
			return err
		}
	}
	return w.w.Close()
}

// noOpCloser wraps an io.Writer with a no-op Close method, so that it can
// be passed where an io.WriteCloser is required but closing the underlying
// stream is the caller's responsibility.
type noOpCloser struct {
	w io.Writer
}

func (c noOpCloser) Write(data []byte) (n int, err error) {
	return c.w.Write(data)
}

func (c noOpCloser) Close() error {
	return nil
}

// serializeLength writes a new-format packet length header.
func serializeLength(w io.Writer, length int) (err error) {
	var buf [5]byte
	var n int

	if length < 192 {
		buf[0] = byte(length)
		n = 1
	} else if length < 8384 {
		length -= 192
		buf[0] = 192 + byte(length>>8)
		buf[1] = byte(length)
		n = 2
	} else {
		buf[0] = 255
		buf[1] = byte(length >> 24)
		buf[2] = byte(length >> 16)
		buf[3] = byte(length >> 8)
		buf[4] = byte(length)
		n = 5
	}

	_, err = w.Write(buf[:n])
	return
}

// serializeType writes only the packet tag octet, in new format, for
// packets whose length is written separately (e.g. as part of a larger,
// precomputed associated-data prefix).
func serializeType(w io.Writer, ptype packetType) (err error) {
	_, err = w.Write([]byte{0x80 | 0x40 | byte(ptype)})
	return
}

// serializeHeader writes a new-format packet tag and length header.
func serializeHeader(w io.Writer, ptype packetType, length int) (err error) {
	err = serializeType(w, ptype)
	if err != nil {
		return
	}
	return serializeLength(w, length)
}

// serializeStreamHeader writes a new-format packet tag with a partial
// length header, for packets whose final length is not known in advance,
// and returns a io.WriteCloser that frames Write calls into partial-body
// chunks, followed by a final fixed-length chunk on Close.
func serializeStreamHeader(w io.WriteCloser, ptype packetType) (out io.WriteCloser, err error) {
	err = serializeType(w, ptype)
	if err != nil {
		return
	}
	out = &partialLengthWriter{w: w, partialBufferSize: 512}
	return
}

// Packet represents an OpenPGP packet. Users are expected to try casting
// instances of this interface to specific packet types.
type Packet interface {
	parse(io.Reader) error
}

// consumeAllAndClose consumes the remainder of a packet body so that the
// next Read on the underlying stream begins at the following packet.
func consumeAllAndClose(r io.Reader) (err error) {
	_, err = consumeAll(r)
	return
}

// Read reads a single OpenPGP packet from r and returns its parsed
// representation, along with any I/O or structural error.
func Read(r io.Reader) (p Packet, err error) {
	tag, _, contents, err := readHeader(r)
	if err != nil {
		return
	}

	switch tag {
	case packetTypeEncryptedKey:
		p = new(EncryptedKey)
	case packetTypeSignature:
		p = new(Signature)
	case packetTypeSymmetricKeyEncrypted:
		p = new(SymmetricKeyEncrypted)
	case packetTypePrivateKey, packetTypePrivateSubkey:
		pk := new(PrivateKey)
		if tag == packetTypePrivateSubkey {
			pk.IsSubkey = true
		}
		p = pk
	case packetTypePublicKey, packetTypePublicSubkey:
		pk := new(PublicKey)
		if tag == packetTypePublicSubkey {
			pk.IsSubkey = true
		}
		p = pk
	case packetTypeSymmetricallyEncrypted, packetTypeSymmetricallyEncryptedMDC:
		se := new(SymmetricallyEncrypted)
		se.MDC = tag == packetTypeSymmetricallyEncryptedMDC
		p = se
	case packetTypeAEADEncrypted:
		p = new(AEADEncrypted)
	default:
		// Unknown or out-of-scope packet types (e.g. literal data,
		// compressed data, user IDs, marker packets) are skipped rather
		// than erroring, matching gpg's tolerant parsing.
		_, err = consumeAll(contents)
		return Read(r)
	}
	err = p.parse(contents)
	if err != nil {
		consumeAllAndClose(contents)
		return nil, err
	}
	_, err = consumeAll(contents)
	return
}

// versionSize, timestampSize, and algorithmSize are the sizes, in bytes,
// of the version, creation-time, and algorithm-id fields shared by the
// public-key and secret-key packet headers (RFC 9580, sections 5.5.2 and
// 5.6.2).
const (
	versionSize   = 1
	timestampSize = 4
	algorithmSize = 1
)

// PublicKeyAlgorithm represents the algorithm of a public key.
type PublicKeyAlgorithm uint8

const (
	PubKeyAlgoRSA            PublicKeyAlgorithm = 1
	PubKeyAlgoRSAEncryptOnly PublicKeyAlgorithm = 2
	PubKeyAlgoRSASignOnly    PublicKeyAlgorithm = 3
	PubKeyAlgoElGamal        PublicKeyAlgorithm = 16
	PubKeyAlgoDSA            PublicKeyAlgorithm = 17
	PubKeyAlgoECDH           PublicKeyAlgorithm = 18
	PubKeyAlgoECDSA          PublicKeyAlgorithm = 19
	PubKeyAlgoEdDSA          PublicKeyAlgorithm = 22
	PubKeyAlgoX25519         PublicKeyAlgorithm = 25
	PubKeyAlgoX448           PublicKeyAlgorithm = 26
	PubKeyAlgoEd25519        PublicKeyAlgorithm = 27
	PubKeyAlgoEd448          PublicKeyAlgorithm = 28

	// ExperimentalPubKeyAlgoHMAC identifies the non-standard "symmetric
	// signature" experiment: a Signature packet authenticated with an
	// HMAC under a shared symmetric key rather than a public-key
	// algorithm.
	ExperimentalPubKeyAlgoHMAC PublicKeyAlgorithm = 101
	// ExperimentalPubKeyAlgoAEAD identifies the matching AEAD-protected
	// variant.
	ExperimentalPubKeyAlgoAEAD PublicKeyAlgorithm = 102
	// ExperimentalPubKeyAlgoSymmetric identifies the matching recipient-less
	// variant of a Public-Key Encrypted Session Key packet: the session
	// key is wrapped directly under an AEAD mode keyed by a
	// pre-shared/symmetric value rather than a public key algorithm.
	ExperimentalPubKeyAlgoSymmetric PublicKeyAlgorithm = 100

	// PQC composite algorithms, draft-ietf-openpgp-pqc.
	PubKeyAlgoMlkem768X25519        PublicKeyAlgorithm = 105
	PubKeyAlgoMlkem1024X448         PublicKeyAlgorithm = 106
	PubKeyAlgoMlkem768P256          PublicKeyAlgorithm = 107
	PubKeyAlgoMlkem1024P384         PublicKeyAlgorithm = 108
	PubKeyAlgoMlkem768Brainpool256  PublicKeyAlgorithm = 109
	PubKeyAlgoMlkem1024Brainpool384 PublicKeyAlgorithm = 110
	PubKeyAlgoMldsa65Ed25519        PublicKeyAlgorithm = 111
	PubKeyAlgoMldsa87Ed448          PublicKeyAlgorithm = 112
	PubKeyAlgoMldsa65p256           PublicKeyAlgorithm = 113
	PubKeyAlgoMldsa87p384           PublicKeyAlgorithm = 114
	PubKeyAlgoMldsa65Brainpool256   PublicKeyAlgorithm = 115
	PubKeyAlgoMldsa87Brainpool384   PublicKeyAlgorithm = 116
	PubKeyAlgoSlhdsaSha2            PublicKeyAlgorithm = 117
	PubKeyAlgoSlhdsaShake           PublicKeyAlgorithm = 118
)

// CanSign returns true if the algorithm can be used for signing.
func (pka PublicKeyAlgorithm) CanSign() bool {
	switch pka {
	case PubKeyAlgoRSA, PubKeyAlgoRSASignOnly, PubKeyAlgoDSA, PubKeyAlgoECDSA,
		PubKeyAlgoEdDSA, PubKeyAlgoEd25519, PubKeyAlgoEd448,
		PubKeyAlgoMldsa65Ed25519, PubKeyAlgoMldsa87Ed448, PubKeyAlgoMldsa65p256,
		PubKeyAlgoMldsa87p384, PubKeyAlgoMldsa65Brainpool256, PubKeyAlgoMldsa87Brainpool384,
		PubKeyAlgoSlhdsaSha2, PubKeyAlgoSlhdsaShake,
		ExperimentalPubKeyAlgoHMAC:
		return true
	}
	return false
}

// CanEncrypt returns true if the algorithm can be used for encrypting
// a session key.
func (pka PublicKeyAlgorithm) CanEncrypt() bool {
	switch pka {
	case PubKeyAlgoRSA, PubKeyAlgoRSAEncryptOnly, PubKeyAlgoElGamal, PubKeyAlgoECDH,
		PubKeyAlgoX25519, PubKeyAlgoX448,
		PubKeyAlgoMlkem768X25519, PubKeyAlgoMlkem1024X448, PubKeyAlgoMlkem768P256,
		PubKeyAlgoMlkem1024P384, PubKeyAlgoMlkem768Brainpool256, PubKeyAlgoMlkem1024Brainpool384:
		return true
	}
	return false
}

// Curve names the elliptic curve used by an ECDSA/ECDH/EdDSA/X25519/X448
// key, or one limb of a PQC composite key.
type Curve string

const (
	Curve25519 Curve = "Curve25519"
	Curve448   Curve = "Curve448"
)

// padToKeySize left-pads a big-endian integer with zero bytes until it
// spans the byte length of pub's modulus, as required by PKCS#1 before
// the integer is interpreted as ciphertext or signature material.
func padToKeySize(pub *rsa.PublicKey, b []byte) []byte {
	k := (pub.N.BitLen() + 7) / 8
	if len(b) >= k {
		return b
	}
	bb := make([]byte, k)
	copy(bb[len(bb)-len(b):], b)
	return bb
}
