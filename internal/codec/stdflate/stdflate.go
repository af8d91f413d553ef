// Package stdflate provides the deflate engine backed by the standard
// library's compress/flate.
package stdflate

import (
	"compress/flate"
	"errors"
	"fmt"
	"io"

	"github.com/zstreamio/zstream/internal/codec"
)

// Compile-time check that Backend implements codec.Backend.
var _ codec.Backend = (*Backend)(nil)

// Backend creates flate sessions from the standard library engine.
type Backend struct{}

// New returns the standard library engine.
func New() *Backend {
	return &Backend{}
}

// Name returns "stdlib".
func (b *Backend) Name() string {
	return "stdlib"
}

// NewCompressor opens an encoding session at the given level writing to w.
func (b *Backend) NewCompressor(w io.Writer, level int) (codec.Compressor, error) {
	return flate.NewWriter(w, level)
}

// NewCompressorDict is NewCompressor with a preset dictionary.
func (b *Backend) NewCompressorDict(w io.Writer, level int, dict []byte) (codec.Compressor, error) {
	return flate.NewWriterDict(w, level, dict)
}

// NewDecompressor opens a decoding session reading from r.
func (b *Backend) NewDecompressor(r io.Reader, dict []byte) codec.Decompressor {
	var fr io.ReadCloser
	if dict == nil {
		fr = flate.NewReader(r)
	} else {
		fr = flate.NewReaderDict(r, dict)
	}
	return &decompressor{fr: fr}
}

type decompressor struct {
	fr io.ReadCloser
}

func (d *decompressor) Read(p []byte) (int, error) {
	n, err := d.fr.Read(p)
	return n, mapError(err)
}

func (d *decompressor) Close() error {
	return mapError(d.fr.Close())
}

func (d *decompressor) Reset(r io.Reader, dict []byte) error {
	return d.fr.(flate.Resetter).Reset(r, dict)
}

// mapError folds engine corrupt-input errors onto codec.ErrCorrupt.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var cie flate.CorruptInputError
	if errors.As(err, &cie) {
		return fmt.Errorf("%w: %v", codec.ErrCorrupt, err)
	}
	var ie flate.InternalError
	if errors.As(err, &ie) {
		return fmt.Errorf("%w: %v", codec.ErrCorrupt, err)
	}
	return err
}
