// Package codectest provides a scripted engine for adapter tests. Its
// wire format is trivial: every Write becomes a length-prefixed frame
// and Close appends a zero-length frame, so decompressors stop exactly
// at the end of the stream and leave container trailer bytes unread.
package codectest

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/zstreamio/zstream/internal/codec"
)

// maxFrame bounds frame lengths so garbage input fails fast.
const maxFrame = 1 << 24

// Compile-time check that Backend implements codec.Backend.
var _ codec.Backend = (*Backend)(nil)

// Backend records every session it opens (for test assertions).
type Backend struct {
	Compressors   []*Compressor
	Decompressors []*Decompressor
}

// New creates a recording fake engine.
func New() *Backend {
	return &Backend{}
}

// Name returns "fake".
func (b *Backend) Name() string {
	return "fake"
}

// NewCompressor opens a frame-writing session.
func (b *Backend) NewCompressor(w io.Writer, level int) (codec.Compressor, error) {
	c := &Compressor{w: w, Level: level}
	b.Compressors = append(b.Compressors, c)
	return c, nil
}

// NewCompressorDict is NewCompressor with the dictionary recorded.
func (b *Backend) NewCompressorDict(w io.Writer, level int, dict []byte) (codec.Compressor, error) {
	c := &Compressor{w: w, Level: level, Dict: dict}
	b.Compressors = append(b.Compressors, c)
	return c, nil
}

// NewDecompressor opens a frame-reading session.
func (b *Backend) NewDecompressor(r io.Reader, dict []byte) codec.Decompressor {
	d := &Decompressor{r: r, Dict: dict}
	b.Decompressors = append(b.Decompressors, d)
	return d
}

// Compressor writes length-prefixed frames and records calls.
type Compressor struct {
	w     io.Writer
	Level int
	Dict  []byte

	Writes  int
	Flushes int
	Resets  int
	Closed  bool
}

// Write emits p as one frame.
func (c *Compressor) Write(p []byte) (int, error) {
	var hdr [4]byte
	binary.LittleEndian.PutUint32(hdr[:], uint32(len(p)))
	if _, err := c.w.Write(hdr[:]); err != nil {
		return 0, err
	}
	if _, err := c.w.Write(p); err != nil {
		return 0, err
	}
	c.Writes++
	return len(p), nil
}

// Flush records the call; the fake format needs no sync marker.
func (c *Compressor) Flush() error {
	c.Flushes++
	return nil
}

// Close emits the zero-length terminator frame.
func (c *Compressor) Close() error {
	c.Closed = true
	var hdr [4]byte
	_, err := c.w.Write(hdr[:])
	return err
}

// Reset re-arms the session on a new sink.
func (c *Compressor) Reset(w io.Writer) {
	c.w = w
	c.Closed = false
	c.Resets++
}

// Decompressor reads frames until the terminator and records calls.
type Decompressor struct {
	r    io.Reader
	Dict []byte

	Resets int
	Closed bool

	frame []byte
	done  bool
}

// Read serves bytes from the current frame, fetching the next frame on
// demand. Returns io.EOF after the terminator frame.
func (d *Decompressor) Read(p []byte) (int, error) {
	if d.done {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}
	for len(d.frame) == 0 {
		var hdr [4]byte
		if _, err := io.ReadFull(d.r, hdr[:]); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return 0, err
		}
		n := binary.LittleEndian.Uint32(hdr[:])
		if n == 0 {
			d.done = true
			return 0, io.EOF
		}
		if n > maxFrame {
			return 0, fmt.Errorf("%w: frame length %d", codec.ErrCorrupt, n)
		}
		d.frame = make([]byte, n)
		if _, err := io.ReadFull(d.r, d.frame); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return 0, err
		}
	}
	n := copy(p, d.frame)
	d.frame = d.frame[n:]
	return n, nil
}

// Close records the call.
func (d *Decompressor) Close() error {
	d.Closed = true
	return nil
}

// Reset re-arms the session on a new source.
func (d *Decompressor) Reset(r io.Reader, dict []byte) error {
	d.r = r
	d.Dict = dict
	d.frame = nil
	d.done = false
	d.Resets++
	return nil
}
