package lockfree

import (
	"encoding/base64"
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	"github.com/minio/blake2b-simd"
)

// ResultCache memoizes transform outputs by source content. Entries are
// immutable once added, so care should be taken to switch/invalidate the
// ResultCache when the transform is changed.
type ResultCache interface {
	// Add records the output computed for the source with the given key.
	Add(key, value interface{})
	// Contains indicates an output for the given key has already been computed.
	Contains(key interface{}) bool
	// Get retrieves the previously computed output for the given key, if cached.
	Get(key interface{}) (value interface{}, ok bool)
}

// NewResultCache creates a new LRU-based result cache of the given size.
// One cache can be shared by any number of Caches with the same transform.
func NewResultCache(size int) ResultCache {
	cache, err := lru.NewARC(size)
	if err != nil {
		panic(err)
	}
	return cache
}

// resultKey derives the memo key for a source value from a hash of its
// serialized content, so equal sources share a key regardless of identity.
func (c *Cache[S, V]) resultKey(source S) (string, error) {
	encoded, err := c.marshal(source)
	if err != nil {
		return "", fmt.Errorf("marshal: %w", err)
	}
	hashBytes := blake2b.Sum256(encoded)
	return base64.RawURLEncoding.EncodeToString(hashBytes[:]), nil
}
