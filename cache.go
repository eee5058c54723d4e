package lockfree

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Cache is a concurrently-shared, lazily-recomputed value cache. Producers
// write a source value into a pending slot; readers ask for the transformed
// value, and either perform the recomputation themselves or are served the
// last published result.
//
// The two slots are guarded asymmetrically: the pending source sits behind
// an exclusive lock that readers only ever try-lock, and the derived output
// sits behind a reader/writer lock. Only the one goroutine that wins the
// claim on the source pays for the transform and the write lock, so any
// number of readers keep being served the previous output during a slow
// recomputation.
type Cache[S, V any] struct {
	sourceMu sync.Mutex
	source   *S

	derivedMu sync.RWMutex
	derived   *V

	transform func(S) V

	results ResultCache
	marshal func(interface{}) ([]byte, error)
	debug   bool
}

// CacheConfig controls optional Cache behavior. The zero value gives a
// cache with no memoization and JSON key marshaling.
type CacheConfig struct {
	// Results, if non-nil, memoizes transform outputs by source content, so
	// re-consuming a previously seen source skips the transform. Sound only
	// because the transform is required to be pure. One ResultCache can be
	// shared by any number of caches using the same transform.
	Results ResultCache

	// Marshal serializes source values for memo key derivation. Defaults
	// to JSON.
	Marshal func(interface{}) ([]byte, error)

	// Debug enables tracing of the recompute path.
	Debug bool
}

var defaultKeyMarshal = json.Marshal

// NewCache returns an empty cache around the given pure transform.
func NewCache[S, V any](transform func(S) V) *Cache[S, V] {
	return NewCacheWithConfig[S, V](transform, CacheConfig{})
}

// NewCacheWithConfig is NewCache with explicit configuration.
func NewCacheWithConfig[S, V any](transform func(S) V, config CacheConfig) *Cache[S, V] {
	if transform == nil {
		panic("lockfree: NewCache with nil transform")
	}
	marshal := config.Marshal
	if marshal == nil {
		marshal = defaultKeyMarshal
	}
	return &Cache[S, V]{
		transform: transform,
		results:   config.Results,
		marshal:   marshal,
		debug:     config.Debug,
	}
}

// SetSource publishes a new source value for the next recomputation. It
// blocks until the pending slot's lock is available and unconditionally
// overwrites any source not yet consumed: producers get no delivery
// guarantee beyond last-write-wins.
func (c *Cache[S, V]) SetSource(source S) {
	c.sourceMu.Lock()
	c.source = &source
	c.sourceMu.Unlock()
}

// GetTransformed returns the transformed value, recomputing it if a pending
// source is available, and false if nothing has ever been computed.
//
// The claim on the pending slot is non-blocking: a caller that loses the
// race to a concurrent recomputation is served the current derived output
// immediately, which may be one recomputation stale. A caller that wins the
// claim and finds a pending source consumes it, runs the transform while
// holding only the pending slot's lock, publishes under the derived write
// lock, and returns the fresh value.
//
// A panic in the transform propagates to the claiming caller; the consumed
// source is lost, matching the rule that a poisoned critical section is
// fatal for that call rather than silently papered over.
func (c *Cache[S, V]) GetTransformed() (V, bool) {
	if !c.sourceMu.TryLock() {
		return c.Peek()
	}
	if c.source == nil {
		c.sourceMu.Unlock()
		return c.Peek()
	}
	source := *c.source
	c.source = nil
	defer c.sourceMu.Unlock()

	value := c.recompute(source)

	c.derivedMu.Lock()
	c.derived = &value
	c.derivedMu.Unlock()
	return value, true
}

// Peek returns the currently published output without attempting to claim
// the pending source, and false if nothing has ever been computed.
func (c *Cache[S, V]) Peek() (V, bool) {
	c.derivedMu.RLock()
	defer c.derivedMu.RUnlock()
	if c.derived == nil {
		var zero V
		return zero, false
	}
	return *c.derived, true
}

// recompute applies the transform to a consumed source, consulting the
// memo layer when configured. Called with the pending slot's lock held.
func (c *Cache[S, V]) recompute(source S) V {
	if c.results == nil {
		return c.transform(source)
	}
	key, err := c.resultKey(source)
	if err != nil {
		// An unmarshalable source just can't be memoized; recompute.
		if c.debug {
			fmt.Printf("memo key for %v: %v\n", source, err)
		}
		return c.transform(source)
	}
	if cached, ok := c.results.Get(key); ok {
		if c.debug {
			fmt.Printf("memo hit %s\n", key)
		}
		return cached.(V)
	}
	if c.debug {
		fmt.Printf("recomputing %s from %v...\n", key, source)
	}
	value := c.transform(source)
	c.results.Add(key, value)
	return value
}
