package encoding

import (
	"encoding/binary"
	"io"
)

// OctetString is a variable-length octet string prefixed by a two-byte
// big-endian byte count, used for fields such as a v6 Argon2 salt or an
// AEAD-wrapped session key whose length isn't fixed by the algorithm
// alone. Unlike OID's one-byte length prefix, the count here can exceed
// 255 bytes, e.g. a large wrapped PQC session key.
type OctetString struct {
	data []byte
}

// NewOctetString wraps data as a length-prefixed octet string.
func NewOctetString(data []byte) *OctetString {
	return &OctetString{data: data}
}

func (o *OctetString) Bytes() []byte     { return o.data }
func (o *OctetString) BitLength() uint16 { return uint16(len(o.data)) * 8 }

func (o *OctetString) EncodedLength() uint16 {
	return uint16(len(o.data)) + 2
}

func (o *OctetString) EncodedBytes() []byte {
	out := make([]byte, len(o.data)+2)
	binary.BigEndian.PutUint16(out, uint16(len(o.data)))
	copy(out[2:], o.data)
	return out
}

func (o *OctetString) ReadFrom(r io.Reader) (int64, error) {
	var lenBytes [2]byte
	if _, err := io.ReadFull(r, lenBytes[:]); err != nil {
		return 0, err
	}
	length := binary.BigEndian.Uint16(lenBytes[:])

	o.data = make([]byte, length)
	n, err := io.ReadFull(r, o.data)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return int64(2 + n), err
}
