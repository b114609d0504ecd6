// Copyright 2017 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package encoding

import "io"

// OctetArray holds a field whose length is fixed by the algorithm that
// uses it (e.g. a Curve25519 point or an AES-256 key), rather than
// carried in a length prefix on the wire. NewEmptyOctetArray lets a
// caller declare that fixed size before any bytes are known, which is
// why the size is tracked separately from len(data) instead of being
// derived from it.
type OctetArray struct {
	size int
	data []byte
}

// NewOctetArray wraps data, whose length is the field's fixed size.
func NewOctetArray(data []byte) *OctetArray {
	return &OctetArray{size: len(data), data: data}
}

// NewEmptyOctetArray declares a fixed-size field with no data yet,
// ready to be populated by ReadFrom.
func NewEmptyOctetArray(size int) *OctetArray {
	return &OctetArray{size: size}
}

func (o *OctetArray) Bytes() []byte     { return o.data }
func (o *OctetArray) BitLength() uint16 { return uint16(o.size * 8) }
func (o *OctetArray) EncodedLength() uint16 { return uint16(o.size) }

func (o *OctetArray) EncodedBytes() []byte {
	if len(o.data) != o.size {
		panic("encoding: octet array does not match its declared size")
	}
	return o.data
}

func (o *OctetArray) ReadFrom(r io.Reader) (int64, error) {
	o.data = make([]byte, o.size)
	n, err := io.ReadFull(r, o.data)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return int64(n), err
}
