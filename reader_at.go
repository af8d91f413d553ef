package zstream

import (
	"fmt"
	"io"
	"sync"
)

// ReaderAt serves random reads from a multi-member gzip blob using the
// member index recorded when the blob was written. A read seeks to the
// member holding the requested offset, decompresses from the member
// boundary and discards the prefix, so the cost of a read is bounded by
// the member size rather than the whole blob.
//
// Decompression state is pooled and reused across calls. ReaderAt is
// safe for concurrent use by multiple goroutines.
type ReaderAt struct {
	ra    io.ReaderAt
	size  int64
	index Index
	cfg   options
	pool  sync.Pool
}

// NewReaderAt wraps a compressed blob of the given size. The index must
// start at {0, 0} and its offsets must advance; it is the index a
// Writer with WithMemberSize reports through Members, usually persisted
// next to the blob.
func NewReaderAt(ra io.ReaderAt, size int64, index Index, opts ...Option) (*ReaderAt, error) {
	cfg := defaultOptions()
	for _, o := range opts {
		o.apply(&cfg)
	}
	if err := cfg.resolveBackend(); err != nil {
		return nil, err
	}
	if err := cfg.validateReader(Gzip); err != nil {
		return nil, err
	}
	if err := index.Validate(); err != nil {
		return nil, err
	}
	if len(index) == 0 || index[0] != (Member{}) {
		return nil, fmt.Errorf("zstream: member index must start at {0, 0}")
	}
	// Reads run through the remaining members as one stream.
	cfg.multistream = true

	copied := make(Index, len(index))
	copy(copied, index)
	return &ReaderAt{
		ra:    ra,
		size:  size,
		index: copied,
		cfg:   cfg,
	}, nil
}

// ReadAt fills p with decompressed bytes starting at the uncompressed
// offset off. It reads until p is full or the stream ends; a read
// starting at or past the end returns (0, io.EOF), and a read reaching
// the end returns the bytes before it with io.EOF.
func (r *ReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("zstream: negative read offset %d", off)
	}
	i := r.index.Find(off)
	if i < 0 {
		return 0, io.EOF
	}
	m := r.index[i]

	src := io.NewSectionReader(r.ra, m.CompOff, r.size-m.CompOff)
	zr, err := r.get(src)
	if err != nil {
		return 0, err
	}

	if skip := off - m.UncompOff; skip > 0 {
		if _, err := io.CopyN(io.Discard, zr, skip); err != nil {
			r.put(zr)
			if err == io.EOF {
				return 0, io.EOF
			}
			return 0, err
		}
	}

	n, err := io.ReadFull(zr, p)
	r.put(zr)
	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}
	return n, err
}

// Size returns the compressed size the ReaderAt was built with.
func (r *ReaderAt) Size() int64 { return r.size }

// get arms a pooled Reader on src, creating one on first use.
func (r *ReaderAt) get(src io.Reader) (*Reader, error) {
	if zr, ok := r.pool.Get().(*Reader); ok {
		if err := zr.Reset(src); err != nil {
			return nil, err
		}
		return zr, nil
	}
	return newReader(src, Gzip, r.cfg)
}

func (r *ReaderAt) put(zr *Reader) { r.pool.Put(zr) }
