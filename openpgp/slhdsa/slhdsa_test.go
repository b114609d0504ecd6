package slhdsa_test

import (
	"crypto/rand"
	"io"
	"testing"

	"github.com/openpgp-go/pgpcore/openpgp/slhdsa"
)

var slhdsaModes = map[string]slhdsa.Mode{
	"SHA2-Simple":  slhdsa.ModeSimpleSHA2,
	"SHAKE-Simple": slhdsa.ModeSimpleShake,
}

var slhdsaParams = map[string]slhdsa.ParameterSetId{
	"128s": slhdsa.Param128s,
	"128f": slhdsa.Param128f,
	"192s": slhdsa.Param192s,
	"192f": slhdsa.Param192f,
	"256s": slhdsa.Param256s,
	"256f": slhdsa.Param256f,
}

func TestSignVerify(t *testing.T) {
	for modeName, mode := range slhdsaModes {
		t.Run(modeName, func(t *testing.T) {
			for paramName, param := range slhdsaParams {
				t.Run(paramName, func(t *testing.T) {
					key := generateTestKey(t, mode, param)
					testSignVerify(t, key)
					testValidate(t, mode, param)
				})
			}
		})
	}
}

func testValidate(t *testing.T, mode slhdsa.Mode, param slhdsa.ParameterSetId) {
	key := generateTestKey(t, mode, param)
	if err := slhdsa.Validate(key); err != nil {
		t.Fatalf("valid key marked as invalid: %s", err)
	}

	pkBin, err := key.SerializePublic()
	if err != nil {
		t.Fatalf("unable to serialize public key: %s", err)
	}
	skBin, err := key.SerializePrivate()
	if err != nil {
		t.Fatalf("unable to serialize private key: %s", err)
	}

	if err := key.UnmarshalPublic(pkBin); err != nil {
		t.Fatalf("unable to deserialize public key: %s", err)
	}
	if err := key.UnmarshalPrivate(skBin); err != nil {
		t.Fatalf("unable to deserialize private key: %s", err)
	}
	if err := slhdsa.Validate(key); err != nil {
		t.Fatalf("valid key marked as invalid after round trip: %s", err)
	}

	key.Public.PKroot[1] ^= 1
	if err := slhdsa.Validate(key); err == nil {
		t.Fatal("failed to detect corrupted root in public key")
	}

	if err := key.UnmarshalPublic(pkBin); err != nil {
		t.Fatalf("unable to deserialize public key: %s", err)
	}
	if err := key.UnmarshalPrivate(skBin); err != nil {
		t.Fatalf("unable to deserialize private key: %s", err)
	}
	if err := slhdsa.Validate(key); err != nil {
		t.Fatalf("valid key marked as invalid after re-load: %s", err)
	}

	key.Public.PKseed[1] ^= 1
	if err := slhdsa.Validate(key); err == nil {
		t.Fatal("failed to detect corrupted seed in public key")
	}
}

func generateTestKey(t *testing.T, mode slhdsa.Mode, param slhdsa.ParameterSetId) *slhdsa.PrivateKey {
	t.Helper()
	priv, err := slhdsa.GenerateKey(rand.Reader, mode, param)
	if err != nil {
		t.Fatal(err)
	}
	return priv
}

func testSignVerify(t *testing.T, priv *slhdsa.PrivateKey) {
	t.Helper()
	digest := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, digest); err != nil {
		t.Fatal(err)
	}

	sig, err := slhdsa.Sign(priv, digest)
	if err != nil {
		t.Fatalf("error signing: %s", err)
	}
	if !slhdsa.Verify(&priv.PublicKey, digest, sig) {
		t.Error("unable to verify valid signature")
	}
}
