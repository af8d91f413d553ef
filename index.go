package zstream

import (
	"sort"
)

// Member is one gzip member boundary in a multi-member stream.
type Member struct {
	// CompOff is the byte offset of the member header within the
	// compressed stream.
	CompOff int64
	// UncompOff is the offset of the member's first decompressed byte
	// within the concatenated output.
	UncompOff int64
}

// Index is an ordered list of member boundaries, the structure random
// access needs to start decompressing mid-stream. A Writer with
// WithMemberSize builds one as it rotates members; the entries carry no
// references into the stream, so an index can be persisted next to the
// blob it describes. A stream's index always begins with {0, 0}.
type Index []Member

// Add appends a member boundary, keeping compressed offsets strictly
// increasing and uncompressed offsets non-decreasing.
func (x *Index) Add(m Member) error {
	if m.CompOff < 0 || m.UncompOff < 0 {
		return ErrUnorderedIndex
	}
	if n := len(*x); n > 0 {
		last := (*x)[n-1]
		if m.CompOff <= last.CompOff || m.UncompOff < last.UncompOff {
			return ErrUnorderedIndex
		}
	}
	*x = append(*x, m)
	return nil
}

// Find returns the position of the member containing the uncompressed
// offset off, or -1 when the index is empty or off is negative. Empty
// members are skipped in favor of the member that actually holds off.
func (x Index) Find(off int64) int {
	if off < 0 {
		return -1
	}
	i := sort.Search(len(x), func(i int) bool {
		return x[i].UncompOff > off
	})
	return i - 1
}

// Validate checks the ordering invariant over an externally supplied
// index, such as one loaded from disk.
func (x Index) Validate() error {
	var probe Index
	for _, m := range x {
		if err := probe.Add(m); err != nil {
			return err
		}
	}
	return nil
}
