// Package cache provides a bounded LRU of decoded descriptor matrices
// sitting in front of the dataset descriptor loader, keyed by resolved
// file path, so repeated loads of the same descriptor file within one
// process only decode it once.
package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/kuandriy/vocabtree/internal/descriptor"
)

// Decoded bounds the number of decoded descriptor.Matrix values held in
// memory, keyed by absolute file path.
type Decoded struct {
	lru *lru.Cache[string, descriptor.Matrix]
}

// NewDecoded builds a Decoded cache holding up to size entries. size <= 0
// falls back to a small default rather than an unbounded cache.
func NewDecoded(size int) (*Decoded, error) {
	if size <= 0 {
		size = 256
	}
	l, err := lru.New[string, descriptor.Matrix](size)
	if err != nil {
		return nil, err
	}
	return &Decoded{lru: l}, nil
}

// Get returns the cached matrix for path, if present.
func (d *Decoded) Get(path string) (descriptor.Matrix, bool) {
	return d.lru.Get(path)
}

// Put stores m under path, evicting the least-recently-used entry if the
// cache is full.
func (d *Decoded) Put(path string, m descriptor.Matrix) {
	d.lru.Add(path, m)
}

// Purge drops every cached entry.
func (d *Decoded) Purge() {
	d.lru.Purge()
}

// Len reports the number of entries currently cached.
func (d *Decoded) Len() int {
	return d.lru.Len()
}
