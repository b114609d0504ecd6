// Package elgamal implements the padded ElGamal encryption scheme that
// OpenPGP uses for PubKeyAlgoElGamal session-key packets, per RFC 4880,
// section 13.1. The scheme is deprecated for new keys (RFC 9580 drops
// ElGamal encryption entirely) but remains here so that legacy v3/v4
// keys can still be decrypted.
//
// The padding is PKCS#1 v1.5 style and is specific to this use; it is
// not a general-purpose ElGamal implementation and should not be used
// outside of decrypting OpenPGP session keys.
package elgamal

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"io"
	"math/big"
)

// PublicKey holds the group generator, modulus, and public value of an
// ElGamal key, as carried in an OpenPGP public-key packet.
type PublicKey struct {
	G, P, Y *big.Int
}

// PrivateKey adds the secret exponent X to a PublicKey.
type PrivateKey struct {
	PublicKey
	X *big.Int
}

const minPadBytes = 11

// Encrypt pads msg with PKCS#1 v1.5-style random padding and splits the
// resulting ElGamal ciphertext into the two MPIs (c1, c2) that an
// encrypted-session-key packet serializes. msg must be considerably
// shorter than the byte length of pub.P.
func Encrypt(random io.Reader, pub *PublicKey, msg []byte) (c1, c2 *big.Int, err error) {
	modBytes := (pub.P.BitLen() + 7) / 8
	if len(msg) > modBytes-minPadBytes {
		return nil, nil, errors.New("elgamal: message too long")
	}

	block := make([]byte, modBytes-1)
	block[0] = 2
	padding, payload := block[1:len(block)-len(msg)-1], block[len(block)-len(msg):]
	if err = fillNonZero(padding, random); err != nil {
		return nil, nil, err
	}
	block[len(block)-len(msg)-1] = 0
	copy(payload, msg)

	m := new(big.Int).SetBytes(block)

	k, err := rand.Int(random, pub.P)
	if err != nil {
		return nil, nil, err
	}

	c1 = new(big.Int).Exp(pub.G, k, pub.P)
	shared := new(big.Int).Exp(pub.Y, k, pub.P)
	c2 = shared.Mul(shared, m)
	c2.Mod(c2, pub.P)
	return c1, c2, nil
}

// Decrypt reverses Encrypt: it recovers the padded block from (c1, c2)
// and strips the PKCS#1 v1.5-style padding in constant time, returning
// the original message.
func Decrypt(priv *PrivateKey, c1, c2 *big.Int) ([]byte, error) {
	shared := new(big.Int).Exp(c1, priv.X, priv.P)
	if shared.ModInverse(shared, priv.P) == nil {
		return nil, errors.New("elgamal: invalid private key")
	}
	shared.Mul(shared, c2)
	shared.Mod(shared, priv.P)
	block := shared.Bytes()
	if len(block) == 0 {
		return nil, errors.New("elgamal: decryption error")
	}

	isTwo := subtle.ConstantTimeByteEq(block[0], 2)

	// Scan past the non-zero padding octets to the terminating zero,
	// all in constant time since the padding length is secret.
	var stillScanning, zeroAt int
	stillScanning = 1
	for i := 1; i < len(block); i++ {
		isZero := subtle.ConstantTimeByteEq(block[i], 0)
		zeroAt = subtle.ConstantTimeSelect(stillScanning&isZero, i, zeroAt)
		stillScanning = subtle.ConstantTimeSelect(isZero, 0, stillScanning)
	}

	if isTwo != 1 || stillScanning != 0 || zeroAt < minPadBytes-2 {
		return nil, errors.New("elgamal: decryption error")
	}
	return block[zeroAt+1:], nil
}

// fillNonZero fills s with random bytes drawn from rand, none of which
// are zero, so that the padded block's structure is unambiguous when
// decoded.
func fillNonZero(s []byte, rand io.Reader) error {
	if _, err := io.ReadFull(rand, s); err != nil {
		return err
	}
	for i := range s {
		for s[i] == 0 {
			if _, err := io.ReadFull(rand, s[i:i+1]); err != nil {
				return err
			}
		}
	}
	return nil
}
