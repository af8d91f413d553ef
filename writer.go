package zstream

import (
	"io"

	"go.uber.org/zap"

	"github.com/zstreamio/zstream/internal/checksum"
	"github.com/zstreamio/zstream/internal/codec"
	"github.com/zstreamio/zstream/internal/frame"
	"github.com/zstreamio/zstream/internal/stats"
)

// countingWriter counts every byte reaching the sink, which is how the
// writer knows its compressed size without trusting the engine.
type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

// Writer compresses everything written to it and writes the framed
// result to an underlying sink. The container header materializes on
// the first Write, Flush or Close, so a Writer that is created and
// abandoned emits nothing; Close terminates the deflate stream and
// appends the trailer. Closing the Writer does not close the sink.
//
// A Writer is not safe for concurrent use.
type Writer struct {
	cw      countingWriter
	format  Format
	level   Level
	backend codec.Backend
	sess    codec.Compressor
	digest  checksum.Digest
	hdr     Header
	dict    []byte

	memberSize int64
	memberIn   int64
	members    Index

	logger *zap.Logger
	stats  stats.Collector

	totalIn     int64
	wroteHeader bool
	closed      bool
	err         error
}

// NewWriter returns a Writer compressing to w in the given format.
func NewWriter(w io.Writer, format Format, opts ...Option) (*Writer, error) {
	cfg := defaultOptions()
	for _, o := range opts {
		o.apply(&cfg)
	}
	if err := cfg.resolveBackend(); err != nil {
		return nil, err
	}
	return newWriter(w, format, cfg)
}

func newWriter(w io.Writer, format Format, cfg options) (*Writer, error) {
	if err := cfg.validateWriter(format); err != nil {
		return nil, err
	}
	z := &Writer{
		cw:         countingWriter{w: w},
		format:     format,
		level:      cfg.level,
		backend:    cfg.backend,
		digest:     format.digest(),
		hdr:        cfg.header,
		dict:       cfg.dict,
		memberSize: cfg.memberSize,
		logger:     cfg.logger,
		stats:      cfg.stats,
	}
	var err error
	if len(z.dict) > 0 {
		z.sess, err = z.backend.NewCompressorDict(&z.cw, int(z.level), z.dict)
	} else {
		z.sess, err = z.backend.NewCompressor(&z.cw, int(z.level))
	}
	if err != nil {
		return nil, err
	}
	if z.memberSize > 0 {
		z.members = Index{{CompOff: 0, UncompOff: 0}}
	}
	return z, nil
}

// Write compresses p. The returned count is the number of bytes of p
// consumed, which on success is len(p); compressed output reaches the
// sink at the engine's pace, not byte for byte.
func (z *Writer) Write(p []byte) (int, error) {
	if z.closed {
		return 0, ErrClosed
	}
	if z.err != nil {
		return 0, z.err
	}
	if z.memberSize <= 0 || len(p) == 0 {
		return z.feed(p)
	}

	var written int
	for written < len(p) {
		if z.memberIn == z.memberSize {
			if err := z.rotateMember(); err != nil {
				z.err = err
				return written, err
			}
		}
		chunk := p[written:]
		if room := z.memberSize - z.memberIn; int64(len(chunk)) > room {
			chunk = chunk[:room]
		}
		n, err := z.feed(chunk)
		written += n
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

// feed pushes p into the current member, materializing the header
// first if this member has not produced output yet.
func (z *Writer) feed(p []byte) (int, error) {
	if !z.wroteHeader {
		if err := z.writeHeader(); err != nil {
			z.err = err
			return 0, err
		}
	}
	n, err := z.sess.Write(p)
	z.digest.Update(p[:n])
	z.totalIn += int64(n)
	z.memberIn += int64(n)
	if err != nil {
		z.err = err
	}
	return n, err
}

// Flush materializes the header if needed and emits a deflate sync
// marker, making everything written so far decodable from the stream
// prefix. Flushing costs a few bytes and hurts compression slightly.
func (z *Writer) Flush() error {
	if z.closed {
		return ErrClosed
	}
	if z.err != nil {
		return z.err
	}
	if !z.wroteHeader {
		if err := z.writeHeader(); err != nil {
			z.err = err
			return err
		}
	}
	if err := z.sess.Flush(); err != nil {
		z.err = err
		return err
	}
	return nil
}

// Close terminates the deflate stream, writes the container trailer and
// marks the Writer closed. A Writer that received no input still
// produces a complete, decodable stream. Close does not close the
// underlying sink. Calling Close again returns ErrClosed.
func (z *Writer) Close() error {
	if z.closed {
		return ErrClosed
	}
	z.closed = true
	if z.err != nil {
		return z.err
	}
	if !z.wroteHeader {
		if err := z.writeHeader(); err != nil {
			z.err = err
			return err
		}
	}
	if err := z.sess.Close(); err != nil {
		z.err = err
		return err
	}
	if err := z.writeTrailer(); err != nil {
		z.err = err
		return err
	}
	z.observeFinish()
	return nil
}

// Reset discards all state and starts a new stream writing to w,
// keeping the configuration. It makes a closed Writer usable again.
func (z *Writer) Reset(w io.Writer) {
	z.cw = countingWriter{w: w}
	z.sess.Reset(&z.cw)
	z.digest.Reset()
	z.totalIn = 0
	z.memberIn = 0
	if z.memberSize > 0 {
		z.members = Index{{CompOff: 0, UncompOff: 0}}
	}
	z.wroteHeader = false
	z.closed = false
	z.err = nil
}

// TotalIn returns the number of uncompressed bytes consumed so far.
func (z *Writer) TotalIn() int64 { return z.totalIn }

// TotalOut returns the number of bytes written to the sink so far,
// framing included.
func (z *Writer) TotalOut() int64 { return z.cw.n }

// Members returns a copy of the member index built so far. The index is
// empty unless the Writer was configured with WithMemberSize.
func (z *Writer) Members() Index {
	out := make(Index, len(z.members))
	copy(out, z.members)
	return out
}

func (z *Writer) writeHeader() error {
	var buf []byte
	switch z.format {
	case Gzip:
		buf = frame.AppendGzipHeader(nil, frame.Header(z.hdr), int(z.level))
	case Zlib:
		buf = frame.AppendZlibHeader(nil, int(z.level), z.dict)
	default:
		z.wroteHeader = true
		return nil
	}
	if _, err := z.cw.Write(buf); err != nil {
		return err
	}
	z.wroteHeader = true
	return nil
}

func (z *Writer) writeTrailer() error {
	var buf []byte
	switch z.format {
	case Gzip:
		buf = frame.AppendGzipTrailer(nil, z.digest.Sum(), z.digest.Bytes())
	case Zlib:
		buf = frame.AppendZlibTrailer(nil, z.digest.Sum())
	default:
		return nil
	}
	_, err := z.cw.Write(buf)
	return err
}

// rotateMember finishes the current gzip member and records the
// boundary, leaving the next member's header to materialize with the
// next byte of input.
func (z *Writer) rotateMember() error {
	if err := z.sess.Close(); err != nil {
		return err
	}
	if err := z.writeTrailer(); err != nil {
		return err
	}
	if err := z.members.Add(Member{CompOff: z.cw.n, UncompOff: z.totalIn}); err != nil {
		return err
	}
	z.digest.Reset()
	z.memberIn = 0
	z.wroteHeader = false
	z.sess.Reset(&z.cw)
	return nil
}

func (z *Writer) observeFinish() {
	z.stats.IncCounter(stats.MetricCompressStreams, 1)
	z.stats.IncCounter(stats.MetricCompressBytesIn, z.totalIn)
	z.stats.IncCounter(stats.MetricCompressBytesOut, z.cw.n)
	if z.totalIn > 0 {
		z.stats.ObserveHistogram(stats.MetricCompressionRatio, float64(z.cw.n)/float64(z.totalIn))
	}
	z.logger.Debug("compress stream finished",
		zap.Stringer("format", z.format),
		zap.String("backend", z.backend.Name()),
		zap.Int64("bytes_in", z.totalIn),
		zap.Int64("bytes_out", z.cw.n),
	)
}
