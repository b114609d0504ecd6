package encoding

import (
	"encoding/binary"
	"io"
)

// ShortByteString is a variable-length byte string prefixed by a
// two-byte big-endian length, the same wire shape as OctetString. It
// is kept as a distinct type so that packet fields which are
// conceptually "short opaque data" rather than "a stream of octets"
// (e.g. a key fingerprint carried inline) can be named for what they
// represent rather than reusing OctetString's name.
type ShortByteString struct {
	data []byte
}

// NewShortByteString wraps data as a length-prefixed byte string.
func NewShortByteString(data []byte) *ShortByteString {
	return &ShortByteString{data: data}
}

func (s *ShortByteString) Bytes() []byte     { return s.data }
func (s *ShortByteString) BitLength() uint16 { return uint16(len(s.data)) * 8 }

func (s *ShortByteString) EncodedLength() uint16 {
	return uint16(len(s.data)) + 2
}

func (s *ShortByteString) EncodedBytes() []byte {
	out := make([]byte, 2, 2+len(s.data))
	binary.BigEndian.PutUint16(out, uint16(len(s.data)))
	return append(out, s.data...)
}

func (s *ShortByteString) ReadFrom(r io.Reader) (int64, error) {
	var lenBytes [2]byte
	if _, err := io.ReadFull(r, lenBytes[:]); err != nil {
		return 0, err
	}
	length := binary.BigEndian.Uint16(lenBytes[:])

	s.data = make([]byte, length)
	n, err := io.ReadFull(r, s.data)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return int64(2 + n), err
}
