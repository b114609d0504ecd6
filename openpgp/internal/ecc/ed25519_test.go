// Package ecc implements a generic interface for ECDH, ECDSA, and EdDSA.
package ecc

import (
	"bytes"
	"crypto/rand"
	"io"
	"testing"
)

// Test correct zero padding
func TestEd25519MarshalUnmarshal(t *testing.T) {
	c := NewEd25519()

	x := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, x)
	if err != nil {
		t.Fatal(err)
	}

	x[0] = 0

	encoded := c.MarshalPoint(x)
	parsed := c.UnmarshalPoint(encoded)

	if !bytes.Equal(x, parsed) {
		t.Fatal("failed to marshal/unmarshal point correctly")
	}

	encoded = c.MarshalByteSecret(x)
	parsed = c.UnmarshalByteSecret(encoded)

	if !bytes.Equal(x, parsed) {
		t.Fatal("failed to marshal/unmarshal secret correctly")
	}
}

func TestEd25519SignVerify(t *testing.T) {
	c := NewEd25519()

	pub, priv, err := c.GenerateEdDSA(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}

	message := []byte("sign me")
	r, s, err := c.Sign(pub, priv, message)
	if err != nil {
		t.Fatal(err)
	}

	if !c.Verify(pub, message, r, s) {
		t.Fatal("valid signature did not verify")
	}

	if err := c.Validate(pub, priv); err != nil {
		t.Fatalf("key pair did not validate: %v", err)
	}
}
