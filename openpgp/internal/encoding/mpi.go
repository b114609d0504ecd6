package encoding

import (
	"encoding/binary"
	"io"
	"math/big"
	"math/bits"
)

// MPI is a multiprecision integer, encoded per RFC 9580 section 3.2 as
// a two-byte big-endian bit count followed by that many bits of
// big-endian data. GPG is known to preserve whatever bit length it was
// originally handed rather than always re-deriving the true bit length
// of the integer on re-encode, so this type keeps the bit length it was
// constructed or parsed with rather than recomputing it on every use.
type MPI struct {
	data      []byte
	bitLength uint16
}

// NewMPI wraps data as an MPI, stripping any leading zero bytes first
// since a freshly computed value has no meaningful leading zero bits.
func NewMPI(data []byte) *MPI {
	for len(data) > 0 && data[0] == 0 {
		data = data[1:]
	}
	return &MPI{data: data, bitLength: trueBitLength(data)}
}

func trueBitLength(data []byte) uint16 {
	if len(data) == 0 {
		return 0
	}
	return uint16(8*(len(data)-1)) + uint16(bits.Len8(data[0]))
}

func (m *MPI) Bytes() []byte     { return m.data }
func (m *MPI) BitLength() uint16 { return m.bitLength }

func (m *MPI) EncodedLength() uint16 {
	return uint16(2 + len(m.data))
}

func (m *MPI) EncodedBytes() []byte {
	out := make([]byte, 2+len(m.data))
	binary.BigEndian.PutUint16(out, m.bitLength)
	copy(out[2:], m.data)
	return out
}

func (m *MPI) ReadFrom(r io.Reader) (int64, error) {
	var header [2]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return 0, err
	}
	m.bitLength = binary.BigEndian.Uint16(header[:])

	numBytes := int(m.bitLength+7) / 8
	m.data = make([]byte, numBytes)
	n, err := io.ReadFull(r, m.data)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return int64(2 + n), err
}

// SetBig replaces the MPI's value with n, recomputing the true bit
// length. Used when serializing freshly computed key material (e.g. an
// ElGamal ciphertext component) rather than one parsed off the wire.
func (m *MPI) SetBig(n *big.Int) *MPI {
	m.data = n.Bytes()
	m.bitLength = uint16(n.BitLen())
	return m
}
