// Package dict keeps preset deflate dictionaries addressable by their
// RFC 1950 dictionary id, so a decompressor can resolve the id a zlib
// stream announces without being handed the one dictionary up front.
package dict

import (
	"hash/adler32"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Registry holds preset dictionaries keyed by their Adler-32 id. The
// registry is LRU-bounded; dropping a dictionary only means streams
// announcing its id fail to resolve until it is added again.
type Registry struct {
	cache *lru.Cache[uint32, []byte]
}

// New creates a registry bounded to capacity dictionaries.
func New(capacity int) (*Registry, error) {
	c, err := lru.New[uint32, []byte](capacity)
	if err != nil {
		return nil, err
	}
	return &Registry{cache: c}, nil
}

// Add stores dict and returns its dictionary id. The bytes are copied
// so later caller mutations do not corrupt resolved dictionaries.
func (r *Registry) Add(dict []byte) uint32 {
	id := adler32.Checksum(dict)
	copied := make([]byte, len(dict))
	copy(copied, dict)
	r.cache.Add(id, copied)
	return id
}

// Lookup resolves a dictionary id announced by a stream.
func (r *Registry) Lookup(id uint32) ([]byte, bool) {
	return r.cache.Get(id)
}

// Len returns the number of dictionaries currently held.
func (r *Registry) Len() int {
	return r.cache.Len()
}
