// Package zstream provides streaming compression and decompression for
// the deflate family of formats: raw deflate, zlib (RFC 1950) and gzip
// (RFC 1952). Writers compress as bytes are written, readers decompress
// as bytes are read, and the bit-level deflate work is delegated to a
// pluggable engine backend.
//
// Example usage:
//
//	var buf bytes.Buffer
//	zw, err := zstream.NewWriter(&buf, zstream.Gzip,
//	    zstream.WithLevel(zstream.BestSpeed),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if _, err := zw.Write(data); err != nil {
//	    log.Fatal(err)
//	}
//	if err := zw.Close(); err != nil {
//	    log.Fatal(err)
//	}
//
//	zr, err := zstream.NewReader(&buf, zstream.Gzip)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer zr.Close()
//	plain, err := io.ReadAll(zr)
//	if err != nil {
//	    log.Fatal(err)
//	}
package zstream

import (
	"io"
)

// Factory builds readers and writers from one shared configuration: the
// backend, level, logging, stats and dictionaries are fixed once and
// every stream created through the factory uses them. Per-stream
// options passed to its constructors are applied on top.
//
// A Factory is safe for concurrent use by multiple goroutines.
type Factory struct {
	cfg options
}

// NewFactory creates a Factory with the given options. The options are
// validated up front except for format-specific constraints, which are
// checked when a stream of that format is created.
func NewFactory(opts ...Option) (*Factory, error) {
	cfg := defaultOptions()
	for _, o := range opts {
		o.apply(&cfg)
	}
	if err := cfg.resolveBackend(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Factory{cfg: cfg}, nil
}

// NewWriter creates a Writer compressing to w with the factory's
// configuration plus any per-stream options.
func (f *Factory) NewWriter(w io.Writer, format Format, opts ...Option) (*Writer, error) {
	cfg := f.cfg
	for _, o := range opts {
		o.apply(&cfg)
	}
	if err := cfg.resolveBackend(); err != nil {
		return nil, err
	}
	return newWriter(w, format, cfg)
}

// NewReader creates a Reader decompressing from r with the factory's
// configuration plus any per-stream options.
func (f *Factory) NewReader(r io.Reader, format Format, opts ...Option) (*Reader, error) {
	cfg := f.cfg
	for _, o := range opts {
		o.apply(&cfg)
	}
	if err := cfg.resolveBackend(); err != nil {
		return nil, err
	}
	return newReader(r, format, cfg)
}

// Backend returns the name of the engine the factory builds streams
// with.
func (f *Factory) Backend() string {
	return f.cfg.backend.Name()
}

// Level returns the compression level the factory builds writers with.
func (f *Factory) Level() Level {
	return f.cfg.level
}
