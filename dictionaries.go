package zstream

import (
	"github.com/zstreamio/zstream/internal/dict"
)

// Dictionaries resolves preset dictionaries by the id a zlib stream
// announces in its header. A single set can back any number of readers,
// which is how one Factory serves streams written with different
// dictionaries.
//
// The set is LRU-bounded. Evicting a dictionary only means streams
// announcing its id fail with ErrDictionary until it is added again.
type Dictionaries struct {
	reg *dict.Registry
}

// NewDictionaries creates a set bounded to capacity dictionaries.
func NewDictionaries(capacity int) (*Dictionaries, error) {
	reg, err := dict.New(capacity)
	if err != nil {
		return nil, err
	}
	return &Dictionaries{reg: reg}, nil
}

// Add stores d and returns its dictionary id, the Adler-32 checksum of
// the dictionary bytes. The bytes are copied.
func (s *Dictionaries) Add(d []byte) uint32 { return s.reg.Add(d) }

// Lookup resolves a dictionary id to the registered bytes.
func (s *Dictionaries) Lookup(id uint32) ([]byte, bool) { return s.reg.Lookup(id) }

// Len returns the number of dictionaries currently held.
func (s *Dictionaries) Len() int { return s.reg.Len() }
