package checksum

import (
	"hash"
	"hash/adler32"
)

// Compile-time check that Adler32 implements Digest.
var _ Digest = (*Adler32)(nil)

// Adler32 accumulates the Adler-32 used by zlib trailers: two mod-65521
// rolling sums, initialized to 1.
type Adler32 struct {
	h hash.Hash32
	n int64
}

// NewAdler32 returns an Adler-32 digest in its initial state.
func NewAdler32() *Adler32 {
	return &Adler32{h: adler32.New()}
}

// Update folds p into the running checksum.
func (d *Adler32) Update(p []byte) {
	d.h.Write(p)
	d.n += int64(len(p))
}

// Sum returns the current checksum value.
func (d *Adler32) Sum() uint32 {
	return d.h.Sum32()
}

// Bytes returns the total number of bytes fed so far.
func (d *Adler32) Bytes() int64 {
	return d.n
}

// Reset returns the digest to its initial state.
func (d *Adler32) Reset() {
	d.h.Reset()
	d.n = 0
}
