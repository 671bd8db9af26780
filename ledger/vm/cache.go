package vm

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/khoangkhac118/namada/model/hash"
)

// DefaultCacheSize is the compilation cache capacity used when callers do
// not size it themselves.
const DefaultCacheSize = 1024

// Cache memoizes compiled artifacts by code hash. Compilation is
// deterministic per hash, so a duplicated compile under concurrent misses
// only wastes work, never correctness.
type Cache[T any] struct {
	inner *lru.Cache[hash.Hash, T]
}

// NewCache builds a cache holding up to size artifacts.
func NewCache[T any](size int) (*Cache[T], error) {
	inner, err := lru.New[hash.Hash, T](size)
	if err != nil {
		return nil, err
	}
	return &Cache[T]{inner: inner}, nil
}

// GetOrCompile returns the cached artifact for codeHash, compiling and
// inserting it on a miss.
func (c *Cache[T]) GetOrCompile(codeHash hash.Hash, compile func() (T, error)) (T, error) {
	if artifact, ok := c.inner.Get(codeHash); ok {
		return artifact, nil
	}
	artifact, err := compile()
	if err != nil {
		var zero T
		return zero, err
	}
	c.inner.Add(codeHash, artifact)
	return artifact, nil
}

// Contains reports whether codeHash is cached, without promoting it.
func (c *Cache[T]) Contains(codeHash hash.Hash) bool {
	return c.inner.Contains(codeHash)
}

// Len returns the number of cached artifacts.
func (c *Cache[T]) Len() int {
	return c.inner.Len()
}
