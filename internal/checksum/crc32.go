package checksum

import "hash/crc32"

// Compile-time check that CRC32 implements Digest.
var _ Digest = (*CRC32)(nil)

// CRC32 accumulates the CRC-32 used by gzip trailers: polynomial
// 0xedb88320 (reflected), pre and post inverted.
type CRC32 struct {
	sum uint32
	n   int64
}

// NewCRC32 returns a zeroed CRC-32 digest.
func NewCRC32() *CRC32 {
	return &CRC32{}
}

// Update folds p into the running checksum.
func (d *CRC32) Update(p []byte) {
	d.sum = crc32.Update(d.sum, crc32.IEEETable, p)
	d.n += int64(len(p))
}

// Sum returns the current checksum value.
func (d *CRC32) Sum() uint32 {
	return d.sum
}

// Bytes returns the total number of bytes fed so far.
func (d *CRC32) Bytes() int64 {
	return d.n
}

// Reset returns the digest to its initial state.
func (d *CRC32) Reset() {
	d.sum = 0
	d.n = 0
}
