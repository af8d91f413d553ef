// Package checksum provides running checksum accumulators for container
// trailers.
package checksum

// Digest accumulates a checksum over a byte stream fed incrementally.
// Feeding bytes across any number of Update calls yields the same sum
// as feeding them in one call, as long as byte order is preserved.
type Digest interface {
	// Update folds p into the running checksum.
	Update(p []byte)
	// Sum returns the current checksum value.
	Sum() uint32
	// Bytes returns the total number of bytes fed so far.
	Bytes() int64
	// Reset returns the digest to its initial state.
	Reset()
}

// Compile-time check that None implements Digest.
var _ Digest = (*None)(nil)

// None counts bytes without computing a checksum. Used for containers
// that carry no trailer.
type None struct {
	n int64
}

// NewNone returns a counting digest with no checksum.
func NewNone() *None {
	return &None{}
}

// Update counts len(p).
func (d *None) Update(p []byte) {
	d.n += int64(len(p))
}

// Sum returns 0.
func (d *None) Sum() uint32 {
	return 0
}

// Bytes returns the total number of bytes fed so far.
func (d *None) Bytes() int64 {
	return d.n
}

// Reset returns the digest to its initial state.
func (d *None) Reset() {
	d.n = 0
}
