// Package encoding implements the various ways in which OpenPGP key
// material, as specified in RFC 9580 section 3.2, can be encoded as a
// byte sequence: as a multiprecision integer prefixed with its bit
// length, as an ASN.1 object identifier prefixed with its byte length,
// or as a fixed- or variable-length octet string.
package encoding

import "io"

// Field is an encoded field of a packet. Every type in this package
// implements it so that packet parsers and serializers can read and
// write key material uniformly without a type switch per field kind.
type Field interface {
	// Bytes returns the decoded data.
	Bytes() []byte

	// BitLength is the size in bits of the decoded data.
	BitLength() uint16

	// EncodedBytes returns the wire representation: length prefix (if
	// any) followed by the data.
	EncodedBytes() []byte

	// EncodedLength is the size in bytes of EncodedBytes.
	EncodedLength() uint16

	// ReadFrom reads one field, including its length prefix, from r.
	ReadFrom(r io.Reader) (int64, error)
}
