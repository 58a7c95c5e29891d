package dataset

import (
	"github.com/kuandriy/vocabtree/internal/cache"
	"github.com/kuandriy/vocabtree/internal/descriptor"
	"github.com/kuandriy/vocabtree/internal/logx"
)

// CachedLoader wraps a Loader with a bounded in-memory decode cache keyed
// by resolved path, so a process that loads the same descriptor file more
// than once only decodes it the first time. It implements Loader itself,
// so it drops into any place a plain Loader is expected.
type CachedLoader struct {
	next  Loader
	cache *cache.Decoded
	log   logx.Logger
}

// NewCachedLoader builds a CachedLoader of the given capacity in front of
// next. A nil logger falls back to logx.Nop.
func NewCachedLoader(next Loader, capacity int, log logx.Logger) (*CachedLoader, error) {
	c, err := cache.NewDecoded(capacity)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logx.Nop{}
	}
	return &CachedLoader{next: next, cache: c, log: log}, nil
}

// Load returns the decoded matrix for absolutePath, consulting the decode
// cache before falling through to the wrapped Loader.
func (c *CachedLoader) Load(absolutePath string) (descriptor.Matrix, error) {
	if m, ok := c.cache.Get(absolutePath); ok {
		c.log.Debugf("dataset: decode cache hit for %s", absolutePath)
		return m, nil
	}
	m, err := c.next.Load(absolutePath)
	if err != nil {
		return descriptor.Matrix{}, err
	}
	c.cache.Put(absolutePath, m)
	return m, nil
}
