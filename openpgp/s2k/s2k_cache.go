package s2k

import "bytes"

// Cache stores keys derived with s2k functions from one passphrase
// to avoid recomputation if multiple items are encrypted with
// the same parameters.
type Cache struct {
	derivedKeyCache map[string][]byte
}

// NewCache creates a new emtpy s2k cache for
// reusing keys
func NewCache() *Cache {
	return &Cache{
		derivedKeyCache: make(map[string][]byte),
	}
}

// cacheKey returns a comparable key for params, since Params itself
// contains a slice field and cannot be used as a map key directly.
func cacheKey(params *Params) (string, error) {
	var buf bytes.Buffer
	if err := params.Serialize(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// addDeriveKey adds a derived key to the cache.
func (c *Cache) addDeriveKey(params *Params, key []byte) error {
	k, err := cacheKey(params)
	if err != nil {
		return err
	}
	c.derivedKeyCache[k] = key
	return nil
}

// GetDerivedKeyOrElseCompute tries to retrive the key
// for the given s2k parameters from the cache.
// If there is no hit, it derives the key with the s2k function from the passphrase,
// updates the cache, and returns the key.
func (c *Cache) GetDerivedKeyOrElseCompute(passphrase []byte, params *Params, expectedKeySize int) ([]byte, error) {
	k, err := cacheKey(params)
	if err != nil {
		return nil, err
	}
	key, found := c.derivedKeyCache[k]
	if !found || expectedKeySize != len(key) {
		derivedKey := make([]byte, expectedKeySize)
		s2k, err := params.Function()
		if err != nil {
			return nil, err
		}
		s2k(derivedKey, passphrase)
		if err := c.addDeriveKey(params, derivedKey); err != nil {
			return nil, err
		}
		return derivedKey, nil
	}
	return key, nil
}

// Reset clears the cache.
func (c *Cache) Reset() {
	c.derivedKeyCache = make(map[string][]byte)
}
