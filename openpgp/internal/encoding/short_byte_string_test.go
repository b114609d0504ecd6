package encoding

import (
	"bytes"
	"testing"
)

var shortByteStringTests = [][]byte{
	{0x0, 0x0, 0x0},
	{0x1, 0x2, 0x03},
	make([]byte, 255),
}

func TestShortByteString(t *testing.T) {
	for i, data := range shortByteStringTests {
		s := NewShortByteString(data)

		if b := s.Bytes(); !bytes.Equal(b, data) {
			t.Errorf("#%d: bad creation got:%x want:%x", i, b, data)
		}

		expectedBitLength := uint16(len(data)) * 8
		if bitLength := s.BitLength(); bitLength != expectedBitLength {
			t.Errorf("#%d: bad bit length got:%d want:%d", i, bitLength, expectedBitLength)
		}

		expectedEncodedLength := uint16(len(data)) + 2
		if encodedLength := s.EncodedLength(); encodedLength != expectedEncodedLength {
			t.Errorf("#%d: bad encoded length got:%d want:%d", i, encodedLength, expectedEncodedLength)
		}

		encodedBytes := s.EncodedBytes()
		if !bytes.Equal(encodedBytes[2:], data) {
			t.Errorf("#%d: bad encoded bytes got:%x want:%x", i, encodedBytes[2:], data)
		}

		encodedLength := (int(encodedBytes[0]) << 8) + int(encodedBytes[1])
		if encodedLength != len(data) {
			t.Errorf("#%d: bad encoded length got:%d want:%d", i, encodedLength, len(data))
		}

		parsed := new(ShortByteString)
		if _, err := parsed.ReadFrom(bytes.NewReader(encodedBytes)); err != nil {
			t.Errorf("#%d: ReadFrom failed: %s", i, err)
		}
		if !bytes.Equal(parsed.data, s.data) {
			t.Errorf("#%d: bad parsing of encoded short byte string", i)
		}
	}
}
