package zstream

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/zstreamio/zstream/internal/checksum"
	"github.com/zstreamio/zstream/internal/codec"
	"github.com/zstreamio/zstream/internal/frame"
	"github.com/zstreamio/zstream/internal/stats"
)

// byteSource adapts the caller's source for the framer and the engine,
// counting every byte handed out. A source that already reads bytes is
// used directly and never read past the end of the stream; anything
// else gets a buffered layer, which may read ahead of the stream end.
type byteSource struct {
	fr frame.Reader
	n  int64
}

func newByteSource(r io.Reader) *byteSource {
	fr, ok := r.(frame.Reader)
	if !ok {
		fr = bufio.NewReader(r)
	}
	return &byteSource{fr: fr}
}

func (s *byteSource) Read(p []byte) (int, error) {
	n, err := s.fr.Read(p)
	s.n += int64(n)
	return n, err
}

func (s *byteSource) ReadByte() (byte, error) {
	b, err := s.fr.ReadByte()
	if err == nil {
		s.n++
	}
	return b, err
}

// Reader decompresses a framed stream as it is read. The header is
// parsed during construction, so NewReader on a malformed source fails
// immediately; the trailer is verified before Read ever returns io.EOF,
// so a clean end of stream guarantees the payload checksum matched.
//
// By default a gzip Reader decodes a single member and leaves anything
// after its trailer unread. With WithMultistream it decodes every
// concatenated member as one logical stream, checking each trailer.
//
// A Reader is not safe for concurrent use.
type Reader struct {
	src     *byteSource
	format  Format
	backend codec.Backend
	sess    codec.Decompressor
	digest  checksum.Digest
	hdr     Header

	dict        []byte
	dicts       *Dictionaries
	multistream bool

	logger *zap.Logger
	stats  stats.Collector

	totalOut int64
	closed   bool
	err      error
}

// NewReader returns a Reader decompressing the given format from r. For
// framed formats the header is read and validated before NewReader
// returns: a source with no bytes yields io.EOF, one that ends inside
// the header yields io.ErrUnexpectedEOF, and a malformed header yields
// ErrHeader.
//
// If r does not implement io.ByteReader, the Reader may read more data
// from r than the stream occupies.
func NewReader(r io.Reader, format Format, opts ...Option) (*Reader, error) {
	cfg := defaultOptions()
	for _, o := range opts {
		o.apply(&cfg)
	}
	if err := cfg.resolveBackend(); err != nil {
		return nil, err
	}
	return newReader(r, format, cfg)
}

func newReader(r io.Reader, format Format, cfg options) (*Reader, error) {
	if err := cfg.validateReader(format); err != nil {
		return nil, err
	}
	z := &Reader{
		format:      format,
		backend:     cfg.backend,
		digest:      format.digest(),
		dict:        cfg.dict,
		dicts:       cfg.dicts,
		multistream: cfg.multistream,
		logger:      cfg.logger,
		stats:       cfg.stats,
	}
	if err := z.init(r); err != nil {
		return nil, err
	}
	return z, nil
}

// init points the Reader at a fresh source, parses the leading header
// and arms the engine session.
func (z *Reader) init(r io.Reader) error {
	z.src = newByteSource(r)
	z.hdr = Header{}
	z.digest.Reset()
	z.totalOut = 0
	z.closed = false
	z.err = nil

	var dict []byte
	switch z.format {
	case Gzip:
		hdr, err := frame.ReadGzipHeader(z.src)
		if err != nil {
			return z.headerErr(err)
		}
		z.hdr = Header(hdr)
	case Zlib:
		dictID, hasDict, err := frame.ReadZlibHeader(z.src)
		if err != nil {
			return z.headerErr(err)
		}
		if hasDict {
			dict = z.resolveDict(dictID)
			if dict == nil {
				return z.fail(fmt.Errorf("%w: dictionary id %#08x not registered", ErrDictionary, dictID))
			}
		}
	default:
		dict = z.dict
	}

	if z.sess == nil {
		z.sess = z.backend.NewDecompressor(z.src, dict)
		return nil
	}
	return z.sess.Reset(z.src, dict)
}

// resolveDict maps a zlib dictionary id to bytes, preferring the
// directly configured dictionary over the shared set.
func (z *Reader) resolveDict(id uint32) []byte {
	if z.dict != nil && frame.DictID(z.dict) == id {
		return z.dict
	}
	if z.dicts != nil {
		if d, ok := z.dicts.Lookup(id); ok {
			return d
		}
	}
	return nil
}

// Read decompresses into p. At the end of the stream the trailer is
// verified before io.EOF surfaces, so io.EOF always means the checksum
// and length matched. After the end, further calls keep returning
// (0, io.EOF).
func (z *Reader) Read(p []byte) (int, error) {
	if z.closed {
		return 0, ErrClosed
	}
	if z.err != nil {
		return 0, z.err
	}
	if len(p) == 0 {
		return 0, nil
	}

	var n int
	for n == 0 {
		n, z.err = z.sess.Read(p)
		z.digest.Update(p[:n])
		z.totalOut += int64(n)
		if z.err == nil {
			continue
		}
		if z.err != io.EOF {
			return n, z.fail(codecErr(z.backend, z.err))
		}

		// The deflate stream ended. The trailer must check out before
		// the caller ever sees a clean end.
		z.err = nil
		if err := z.verifyTrailer(); err != nil {
			return n, z.fail(err)
		}

		if z.format == Gzip && z.multistream {
			hdr, err := frame.ReadGzipHeader(z.src)
			if err == nil {
				z.hdr = Header(hdr)
				z.digest.Reset()
				if err := z.sess.Reset(z.src, nil); err != nil {
					z.err = err
					return n, err
				}
				continue
			}
			if err != io.EOF {
				return n, z.headerErr(err)
			}
			// io.EOF: the source ended cleanly after the trailer.
		}

		z.observeFinish()
		z.err = io.EOF
		return n, io.EOF
	}
	return n, nil
}

func (z *Reader) verifyTrailer() error {
	switch z.format {
	case Gzip:
		return frame.VerifyGzipTrailer(z.src, z.digest.Sum(), z.digest.Bytes())
	case Zlib:
		return frame.VerifyZlibTrailer(z.src, z.digest.Sum())
	default:
		return nil
	}
}

// Close releases the engine session. It does not close the underlying
// source. Calling Close again returns ErrClosed; TotalIn, TotalOut and
// Header remain readable after Close.
func (z *Reader) Close() error {
	if z.closed {
		return ErrClosed
	}
	z.closed = true
	return z.sess.Close()
}

// Reset discards all state and restarts on a new source, keeping the
// configuration. Like NewReader it parses the leading header before
// returning. It makes a closed Reader usable again.
func (z *Reader) Reset(r io.Reader) error {
	return z.init(r)
}

// TotalIn returns the number of compressed bytes consumed so far,
// framing included. When the source is byte-oriented it stops exactly
// at the end of the stream, leaving trailing bytes unread.
func (z *Reader) TotalIn() int64 { return z.src.n }

// TotalOut returns the number of decompressed bytes produced so far.
func (z *Reader) TotalOut() int64 { return z.totalOut }

// Header returns the gzip member metadata parsed from the current
// member's header. It is the zero Header for zlib and raw streams. In
// multistream mode it reflects the most recently entered member.
func (z *Reader) Header() Header { return z.hdr }

// headerErr classifies a header parse failure. A bare io.EOF means the
// source held no member at all and passes through untouched.
func (z *Reader) headerErr(err error) error {
	if err == io.EOF {
		return err
	}
	return z.fail(err)
}

// fail records err as the Reader's sticky error and counts it.
func (z *Reader) fail(err error) error {
	z.err = err
	var ce *CodecError
	switch {
	case errors.As(err, &ce):
		z.stats.IncCounter(stats.MetricCodecErrors, 1)
	case errors.Is(err, ErrChecksum):
		z.stats.IncCounter(stats.MetricChecksumErrors, 1)
	case errors.Is(err, ErrHeader):
		z.stats.IncCounter(stats.MetricHeaderErrors, 1)
	}
	z.logger.Debug("decompress stream failed",
		zap.Stringer("format", z.format),
		zap.Error(err),
	)
	return err
}

func (z *Reader) observeFinish() {
	z.stats.IncCounter(stats.MetricDecompressStreams, 1)
	z.stats.IncCounter(stats.MetricDecompressBytesIn, z.src.n)
	z.stats.IncCounter(stats.MetricDecompressBytesOut, z.totalOut)
	z.logger.Debug("decompress stream finished",
		zap.Stringer("format", z.format),
		zap.String("backend", z.backend.Name()),
		zap.Int64("bytes_in", z.src.n),
		zap.Int64("bytes_out", z.totalOut),
	)
}
