// Package codec defines the deflate engine interface behind the stream
// adapters. Engines are swappable; the adapters own framing and
// checksums, the engine owns the bit stream.
package codec

import (
	"errors"
	"io"
)

// ErrCorrupt reports compressed input the engine could not decode.
// Engine implementations wrap their library's corrupt-input errors in
// ErrCorrupt so callers can match with errors.Is without importing the
// engine package.
var ErrCorrupt = errors.New("codec: corrupt deflate stream")

// Compressor is one deflate encoding session writing to a fixed sink.
// Sessions are single-stream and not safe for concurrent use.
type Compressor interface {
	io.Writer
	// Flush emits a sync marker so everything written so far becomes
	// decodable from the stream prefix.
	Flush() error
	// Close terminates the deflate stream, draining all pending
	// output. It does not close the sink.
	Close() error
	// Reset discards session state and starts a new stream on w,
	// keeping the configured level and dictionary.
	Reset(w io.Writer)
}

// Decompressor is one inflate session pulling from a fixed source. It
// returns io.EOF exactly at the end of the deflate stream, leaving any
// container trailer bytes unread when the source is byte-oriented.
type Decompressor interface {
	io.ReadCloser
	// Reset discards session state and continues with a new stream
	// from r, primed with the given preset dictionary (nil for none).
	Reset(r io.Reader, dict []byte) error
}

// Backend creates engine sessions. Implementations are stateless and
// safe to share; the sessions they create are not.
type Backend interface {
	// Name identifies the engine, e.g. "klauspost" or "stdlib".
	Name() string
	// NewCompressor opens an encoding session at the given deflate
	// level writing to w.
	NewCompressor(w io.Writer, level int) (Compressor, error)
	// NewCompressorDict is NewCompressor with a preset dictionary.
	NewCompressorDict(w io.Writer, level int, dict []byte) (Compressor, error)
	// NewDecompressor opens a decoding session reading from r, primed
	// with the given preset dictionary (nil for none).
	NewDecompressor(r io.Reader, dict []byte) Decompressor
}
