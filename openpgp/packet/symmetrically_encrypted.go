// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package packet

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/subtle"
	"hash"
	"io"

	"github.com/openpgp-go/pgpcore/openpgp/errors"
	"github.com/openpgp-go/pgpcore/openpgp/internal/algorithm"
	"golang.org/x/crypto/hkdf"
)

const (
	// symmetricallyEncryptedVersionMDC identifies the legacy, tag-18
	// Modification-Detection-Code construction (RFC 9580, section 5.13.1):
	// CFB encryption of a random-prefixed plaintext, followed by an
	// unencrypted-looking (but CFB-chained) MDC packet holding a SHA-1
	// digest of the whole plaintext.
	symmetricallyEncryptedVersionMDC = 1
	// symmetricallyEncryptedVersionAead identifies the AEAD-chunked
	// construction (RFC 9580, section 5.13.2).
	symmetricallyEncryptedVersionAead = 2

	mdcPacketTagByte = 0xd3
	mdcTrailerSize   = 22
)

// CipherSuite describes the symmetric cipher and AEAD mode used to
// protect a version-2 Symmetrically Encrypted Integrity Protected Data
// packet.
type CipherSuite struct {
	Cipher CipherFunction
	Mode   AEADMode
}

// EncryptedDataPacket is implemented by packet types whose body is a
// stream of data encrypted under a session key: SymmetricallyEncrypted
// (tags 9/18) and AEADEncrypted (tag 20).
type EncryptedDataPacket interface {
	Decrypt(CipherFunction, []byte) (io.ReadCloser, error)
}

// SymmetricallyEncrypted represents a symmetrically encrypted byte
// string. The encrypted contents will consist of more OpenPGP packets.
// See RFC 9580, sections 5.7 and 5.13.
type SymmetricallyEncrypted struct {
	// MDC is true for a tag-18 (Symmetrically Encrypted Integrity
	// Protected Data) packet, false for the legacy, integrity-free tag-9
	// packet.
	MDC bool
	// Version is 0 for the legacy tag-9 format, 1 for tag-18's MDC
	// construction, and 2 for tag-18's AEAD construction.
	Version int

	cipher        CipherFunction
	mode          AEADMode
	chunkSizeByte byte
	salt          [32]byte

	Contents io.Reader
}

func (se *SymmetricallyEncrypted) parse(r io.Reader) error {
	if !se.MDC {
		se.Version = 0
		se.Contents = r
		return nil
	}

	var buf [1]byte
	if _, err := readFull(r, buf[:]); err != nil {
		return err
	}
	se.Version = int(buf[0])

	switch se.Version {
	case symmetricallyEncryptedVersionMDC:
		se.Contents = r
		return nil
	case symmetricallyEncryptedVersionAead:
		var header [3]byte
		if _, err := readFull(r, header[:]); err != nil {
			return err
		}
		se.cipher = CipherFunction(header[0])
		se.mode = AEADMode(header[1])
		se.chunkSizeByte = header[2]
		if _, err := readFull(r, se.salt[:]); err != nil {
			return err
		}
		se.Contents = r
		return nil
	default:
		return errors.UnsupportedError("unknown SymmetricallyEncrypted version")
	}
}

// Decrypt returns a ReadCloser that yields the decrypted contents of the
// packet. For version-0/1 packets cipherFunc selects the block cipher
// (taken from the preceding EncryptedKey/SymmetricKeyEncrypted packet);
// for version-2 (AEAD) packets the cipher and mode are taken from the
// packet header itself and cipherFunc is ignored.
func (se *SymmetricallyEncrypted) Decrypt(cipherFunc CipherFunction, key []byte) (io.ReadCloser, error) {
	if se.Version == symmetricallyEncryptedVersionAead {
		return se.decryptAead(key)
	}
	return se.decryptCFB(cipherFunc, key)
}

func (se *SymmetricallyEncrypted) decryptCFB(cipherFunc CipherFunction, key []byte) (io.ReadCloser, error) {
	blockSize := cipherFunc.blockSize()
	if blockSize == 0 {
		return nil, errors.UnsupportedError("unsupported cipher")
	}
	iv := make([]byte, blockSize)
	s := cipher.StreamReader{S: cipher.NewCFBDecrypter(cipherFunc.new(key), iv), R: se.Contents}

	prefix := make([]byte, blockSize+2)
	if _, err := readFull(s, prefix); err != nil {
		return nil, err
	}
	if prefix[blockSize-2] != prefix[blockSize] || prefix[blockSize-1] != prefix[blockSize+1] {
		return nil, errors.StructuralError("cipher feedback check failed")
	}

	if se.Version == symmetricallyEncryptedVersionMDC {
		h := sha1.New()
		h.Write(prefix)
		return &seMDCReader{in: s, h: h}, nil
	}
	return io.NopCloser(s), nil
}

// seipdAead builds the associated-data prefix and keyed AEAD instance for
// a version-2 packet, deriving the message key from the session key via
// HKDF-SHA256 as specified in RFC 9580, section 5.13.2.
func seipdAead(cipherSuite CipherSuite, chunkSizeByte byte, salt [32]byte, sessionKey []byte) (alg cipher.AEAD, associatedData []byte, err error) {
	associatedData = []byte{
		0xc0 | 0x12, // new-format tag 18
		symmetricallyEncryptedVersionAead,
		byte(cipherSuite.Cipher),
		byte(cipherSuite.Mode),
		chunkSizeByte,
	}

	keySize := cipherSuite.Cipher.KeySize()
	hk := hkdf.New(sha256.New, sessionKey, salt[:], associatedData)
	msgKey := make([]byte, keySize)
	if _, err = io.ReadFull(hk, msgKey); err != nil {
		return nil, nil, err
	}

	aeadMode, ok := algorithm.AEADModeById[uint8(cipherSuite.Mode)]
	if !ok {
		return nil, nil, errors.UnsupportedError("unsupported AEAD mode")
	}
	alg, err = aeadMode.New(msgKey)
	return
}

func (se *SymmetricallyEncrypted) decryptAead(key []byte) (io.ReadCloser, error) {
	cipherSuite := CipherSuite{Cipher: se.cipher, Mode: se.mode}
	alg, associatedData, err := seipdAead(cipherSuite, se.chunkSizeByte, se.salt, key)
	if err != nil {
		return nil, err
	}
	nonceLen := nonceLength(se.mode)
	initialNonce := make([]byte, nonceLen)
	if _, err := readFull(se.Contents, initialNonce); err != nil {
		return nil, err
	}
	header := append(append([]byte{}, associatedData...), se.salt[:]...)
	return &streamReader{
		worker: worker{
			aead:   alg,
			config: &AEADConfig{DefaultChunkSizeByte: se.chunkSizeByte, DefaultMode: se.mode},
			header: header,
			nonce:  initialNonce,
			index:  make([]byte, 8),
		},
		reader: se.Contents,
	}, nil
}

// seMDCReader wraps an io.Reader, accumulating a running SHA-1 digest of
// everything read while holding back the final 22 bytes (the trailing
// MDC packet) until Close, when the digest is checked against it.
type seMDCReader struct {
	in          io.Reader
	h           hash.Hash
	trailer     [mdcTrailerSize]byte
	scratch     [mdcTrailerSize]byte
	trailerUsed int
	error       bool
	eof         bool
}

func (ser *seMDCReader) Read(buf []byte) (n int, err error) {
	if ser.error {
		return 0, io.ErrUnexpectedEOF
	}
	if ser.eof {
		return 0, io.EOF
	}

	for ser.trailerUsed < mdcTrailerSize {
		n, err = ser.in.Read(ser.trailer[ser.trailerUsed:])
		ser.trailerUsed += n
		if err == io.EOF {
			if ser.trailerUsed != mdcTrailerSize {
				ser.error = true
				return 0, io.ErrUnexpectedEOF
			}
			ser.eof = true
			ser.h.Write(ser.trailer[:2])
			return 0, io.EOF
		}
		if err != nil {
			return 0, err
		}
	}

	if len(buf) <= mdcTrailerSize {
		n, err = readFull(ser.in, ser.scratch[:len(buf)])
		copy(buf, ser.trailer[:n])
		ser.h.Write(buf[:n])
		copy(ser.trailer[:], ser.trailer[n:])
		copy(ser.trailer[mdcTrailerSize-n:], ser.scratch[:n])
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			ser.eof = true
			ser.h.Write(ser.trailer[:2])
			err = nil
		}
		return n, err
	}

	n, err = ser.in.Read(buf[mdcTrailerSize:])
	copy(buf, ser.trailer[:])

	if n == 0 {
		if err == io.EOF {
			ser.eof = true
			ser.h.Write(ser.trailer[:2])
		}
		return 0, err
	}

	fullBuf := buf[:n+mdcTrailerSize]
	ser.h.Write(fullBuf[:n])
	copy(ser.trailer[:], fullBuf[n:])
	if err == io.EOF {
		ser.eof = true
		ser.h.Write(ser.trailer[:2])
	}
	return n, err
}

func (ser *seMDCReader) Close() error {
	if ser.error {
		return errors.SignatureError("error during reading")
	}
	for !ser.eof {
		var buf [1024]byte
		_, err := ser.Read(buf[:])
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.SignatureError("error during reading")
		}
	}

	if ser.trailer[0] != mdcPacketTagByte || ser.trailer[1] != sha1.Size {
		return errors.SignatureError("MDC packet not found")
	}
	digest := ser.h.Sum(nil)
	if subtle.ConstantTimeCompare(digest, ser.trailer[2:]) != 1 {
		return errors.ErrMDCHashMismatch
	}
	return nil
}

// seMDCWriter wraps an encrypting io.WriteCloser, hashing the plaintext
// as it is written, and appends the trailing MDC packet on Close.
type seMDCWriter struct {
	w io.WriteCloser
	h hash.Hash
}

func (w *seMDCWriter) Write(buf []byte) (n int, err error) {
	w.h.Write(buf)
	return w.w.Write(buf)
}

func (w *seMDCWriter) Close() error {
	var buf [mdcTrailerSize]byte
	buf[0] = mdcPacketTagByte
	buf[1] = sha1.Size
	w.h.Write(buf[:2])
	copy(buf[2:], w.h.Sum(nil))

	if _, err := w.w.Write(buf[:]); err != nil {
		return err
	}
	return w.w.Close()
}

// SerializeSymmetricallyEncrypted serializes a symmetrically encrypted
// packet to w and returns a WriteCloser to which the to-be-encrypted
// packets should be written. If aeadSupported is true, a version-2 (AEAD)
// packet using cipherSuite is produced; otherwise a version-1 (MDC)
// packet using cipherFunc is produced. If config is nil, sensible
// defaults are used.
func SerializeSymmetricallyEncrypted(w io.Writer, cipherFunc CipherFunction, aeadSupported bool, cipherSuite CipherSuite, key []byte, config *Config) (contents io.WriteCloser, err error) {
	writer, err := serializeStreamHeader(noOpCloser{w}, packetTypeSymmetricallyEncryptedMDC)
	if err != nil {
		return nil, err
	}

	if aeadSupported {
		chunkSizeByte := config.AEAD().ChunkSizeByte()
		var salt [32]byte
		if _, err = rand.Read(salt[:]); err != nil {
			return nil, err
		}
		alg, associatedData, err := seipdAead(cipherSuite, chunkSizeByte, salt, key)
		if err != nil {
			return nil, err
		}
		if _, err = writer.Write(associatedData[1:]); err != nil {
			return nil, err
		}
		if _, err = writer.Write(salt[:]); err != nil {
			return nil, err
		}
		initialNonce := make([]byte, alg.NonceSize())
		if _, err = rand.Read(initialNonce); err != nil {
			return nil, err
		}
		if _, err = writer.Write(initialNonce); err != nil {
			return nil, err
		}
		header := append(append([]byte{}, associatedData...), salt[:]...)
		return &streamWriter{
			worker: worker{
				aead:   alg,
				config: &AEADConfig{DefaultChunkSizeByte: chunkSizeByte, DefaultMode: cipherSuite.Mode},
				header: header,
				index:  make([]byte, 8),
				nonce:  initialNonce,
			},
			writer: writer,
		}, nil
	}

	if _, err = writer.Write([]byte{symmetricallyEncryptedVersionMDC}); err != nil {
		return nil, err
	}

	block := cipherFunc.new(key)
	blockSize := block.BlockSize()
	iv := make([]byte, blockSize)
	s := cipher.StreamWriter{S: cipher.NewCFBEncrypter(block, iv), W: writer}

	prefix := make([]byte, blockSize+2)
	if _, err = rand.Read(prefix[:blockSize]); err != nil {
		return nil, err
	}
	prefix[blockSize] = prefix[blockSize-2]
	prefix[blockSize+1] = prefix[blockSize-1]

	h := sha1.New()
	h.Write(prefix)
	if _, err = s.Write(prefix); err != nil {
		return nil, err
	}
	return &seMDCWriter{w: s, h: h}, nil
}
