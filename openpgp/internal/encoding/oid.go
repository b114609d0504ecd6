package encoding

import "io"

// OID stores a curve identifier: an ASN.1 object identifier encoded as
// a single length octet followed by its DER value octets, per RFC 9580
// section 3.2.3. The same wire shape (one length octet, then data) is
// reused to carry the ECDH KDF parameter block, so OID doubles as the
// container for that field too.
type OID struct {
	data []byte
}

// NewOID wraps data, the DER-encoded object identifier (or KDF
// parameter block) bytes, as an OID.
func NewOID(data []byte) *OID {
	return &OID{data: data}
}

func (o *OID) Bytes() []byte     { return o.data }
func (o *OID) BitLength() uint16 { return uint16(len(o.data) * 8) }

func (o *OID) EncodedLength() uint16 {
	return uint16(1 + len(o.data))
}

func (o *OID) EncodedBytes() []byte {
	out := make([]byte, 1+len(o.data))
	out[0] = uint8(len(o.data))
	copy(out[1:], o.data)
	return out
}

// ReadFrom reads a length octet followed by that many data octets.
// RFC 9580 reserves lengths 0x00 and 0xff for future extensions; this
// implementation accepts them as given rather than rejecting them, so
// that parsing a future-extended key does not fail outright.
func (o *OID) ReadFrom(r io.Reader) (int64, error) {
	var lenByte [1]byte
	if _, err := io.ReadFull(r, lenByte[:]); err != nil {
		return 0, err
	}

	o.data = make([]byte, lenByte[0])
	n, err := io.ReadFull(r, o.data)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return int64(1 + n), err
}
