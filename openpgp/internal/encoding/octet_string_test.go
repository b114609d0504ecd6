package encoding

import (
	"bytes"
	"testing"
)

var octetStringTests = [][]byte{
	{0x0, 0x0, 0x0},
	{0x1, 0x2, 0x03},
	make([]byte, 255),
	make([]byte, 65535),
}

func TestOctetString(t *testing.T) {
	for i, data := range octetStringTests {
		octetString := NewOctetString(data)

		if b := octetString.Bytes(); !bytes.Equal(b, data) {
			t.Errorf("#%d: bad creation got:%x want:%x", i, b, data)
		}

		expectedBitLength := uint16(len(data)) * 8
		if bitLength := octetString.BitLength(); bitLength != expectedBitLength {
			t.Errorf("#%d: bad bit length got:%d want:%d", i, bitLength, expectedBitLength)
		}

		expectedEncodedLength := uint16(len(data)) + 2
		if encodedLength := octetString.EncodedLength(); encodedLength != expectedEncodedLength {
			t.Errorf("#%d: bad encoded length got:%d want:%d", i, encodedLength, expectedEncodedLength)
		}

		encodedBytes := octetString.EncodedBytes()
		if !bytes.Equal(encodedBytes[2:], data) {
			t.Errorf("#%d: bad encoded bytes got:%x want:%x", i, encodedBytes[2:], data)
		}

		encodedLength := (int(encodedBytes[0]) << 8) + int(encodedBytes[1])
		if encodedLength != len(data) {
			t.Errorf("#%d: bad encoded length got:%d want:%d", i, encodedLength, len(data))
		}

		parsed := new(OctetString)
		if _, err := parsed.ReadFrom(bytes.NewReader(encodedBytes)); err != nil {
			t.Errorf("#%d: ReadFrom failed: %s", i, err)
		}
		if !bytes.Equal(parsed.data, octetString.data) {
			t.Errorf("#%d: bad parsing of encoded octet string", i)
		}
	}
}

func TestOctetStringReadFromTruncated(t *testing.T) {
	encoded := NewOctetString([]byte{1, 2, 3, 4}).EncodedBytes()
	parsed := new(OctetString)
	if _, err := parsed.ReadFrom(bytes.NewReader(encoded[:len(encoded)-1])); err == nil {
		t.Error("expected an error reading a truncated octet string, got nil")
	}
}
