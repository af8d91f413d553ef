package zstream

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/zstreamio/zstream/internal/codec"
	"github.com/zstreamio/zstream/internal/codec/kpflate"
	"github.com/zstreamio/zstream/internal/codec/stdflate"
	"github.com/zstreamio/zstream/internal/frame"
	"github.com/zstreamio/zstream/internal/stats"
)

// Option configures a Writer, Reader or Factory. Options that do not
// apply to the stream being built are ignored, so one option set can be
// shared across both directions; options that contradict the stream,
// such as a preset dictionary on a gzip writer, are rejected at
// construction.
type Option interface {
	apply(*options)
}

// options holds the stream configuration.
type options struct {
	backend     codec.Backend
	backendName string
	level       Level
	stats       stats.Collector
	logger      *zap.Logger

	dict        []byte
	dicts       *Dictionaries
	multistream bool

	header     Header
	headerSet  bool
	memberSize int64
}

// defaultOptions returns the default configuration.
func defaultOptions() options {
	return options{
		backend: kpflate.New(),
		level:   DefaultCompression,
		stats:   stats.NewNoop(),
		logger:  zap.NewNop(),
		header:  Header{OS: OSUnknown},
	}
}

// optionFunc wraps a function to implement Option.
type optionFunc func(*options)

// Compile-time check that optionFunc implements Option.
var _ Option = optionFunc(nil)

func (f optionFunc) apply(o *options) { f(o) }

// Backends lists the deflate engine names WithBackend accepts.
func Backends() []string {
	return []string{"klauspost", "stdlib"}
}

// WithBackend selects the deflate engine by name. See Backends for the
// recognized names; the default is "klauspost".
func WithBackend(name string) Option {
	return optionFunc(func(o *options) {
		o.backendName = name
	})
}

// withBackend injects a backend directly. Tests use it to substitute an
// instrumented engine.
func withBackend(b codec.Backend) Option {
	return optionFunc(func(o *options) {
		o.backend = b
		o.backendName = ""
	})
}

// WithLevel sets the compression level for writers.
// If not set, DefaultCompression is used. Readers ignore it.
func WithLevel(l Level) Option {
	return optionFunc(func(o *options) {
		o.level = l
	})
}

// WithStats sets the stats collector.
// If not set, a no-op collector is used.
func WithStats(c stats.Collector) Option {
	return optionFunc(func(o *options) {
		o.stats = c
	})
}

// WithLogger sets the logger.
// If not set, a no-op logger is used.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(o *options) {
		o.logger = l
	})
}

// WithDictionary sets a preset dictionary. A zlib writer announces its
// id in the header; a zlib reader uses it when the stream announces a
// matching id; a raw reader or writer primes the engine with it
// unconditionally. Gzip has no dictionary support and rejects it.
// The bytes are copied; an empty dictionary means none.
func WithDictionary(d []byte) Option {
	var copied []byte
	if len(d) > 0 {
		copied = make([]byte, len(d))
		copy(copied, d)
	}
	return optionFunc(func(o *options) {
		o.dict = copied
	})
}

// WithDictionaries sets a dictionary set for readers to resolve zlib
// dictionary ids against. A dictionary set with WithDictionary takes
// precedence when its id matches the stream's.
func WithDictionaries(s *Dictionaries) Option {
	return optionFunc(func(o *options) {
		o.dicts = s
	})
}

// WithMultistream controls whether a gzip reader decodes members
// concatenated after the first one. When enabled, each trailer is
// verified and the next member must begin immediately; a source that
// ends cleanly after a trailer ends the stream.
// Off by default. Writers and non-gzip readers ignore it.
func WithMultistream(on bool) Option {
	return optionFunc(func(o *options) {
		o.multistream = on
	})
}

// WithName sets the gzip header file name.
func WithName(name string) Option {
	return optionFunc(func(o *options) {
		o.header.Name = name
		o.headerSet = true
	})
}

// WithComment sets the gzip header comment.
func WithComment(comment string) Option {
	return optionFunc(func(o *options) {
		o.header.Comment = comment
		o.headerSet = true
	})
}

// WithExtra sets the gzip header extra field. The bytes are copied.
func WithExtra(extra []byte) Option {
	copied := make([]byte, len(extra))
	copy(copied, extra)
	return optionFunc(func(o *options) {
		o.header.Extra = copied
		o.headerSet = true
	})
}

// WithModTime sets the gzip header modification time. Times at or
// before the Unix epoch are encoded as "not set".
func WithModTime(t time.Time) Option {
	return optionFunc(func(o *options) {
		o.header.ModTime = t
		o.headerSet = true
	})
}

// WithOS sets the gzip header operating system byte.
// If not set, OSUnknown is used.
func WithOS(os byte) Option {
	return optionFunc(func(o *options) {
		o.header.OS = os
		o.headerSet = true
	})
}

// WithMemberSize makes a gzip writer close the current member and open
// a fresh one every n uncompressed bytes, recording each boundary in
// the writer's member index. The resulting stream decodes as a whole
// with WithMultistream and supports random access through ReaderAt.
// Zero disables rotation.
func WithMemberSize(n int64) Option {
	return optionFunc(func(o *options) {
		o.memberSize = n
	})
}

// resolveBackend replaces the backend with the named one when
// WithBackend was given.
func (o *options) resolveBackend() error {
	if o.backendName == "" {
		return nil
	}
	switch o.backendName {
	case "klauspost":
		o.backend = kpflate.New()
	case "stdlib":
		o.backend = stdflate.New()
	default:
		return fmt.Errorf("zstream: unknown backend %q", o.backendName)
	}
	o.backendName = ""
	return nil
}

// validate checks the format-independent parts of the configuration.
func (o *options) validate() error {
	if !o.level.valid() {
		return fmt.Errorf("zstream: invalid compression level %d", o.level)
	}
	if o.memberSize < 0 {
		return fmt.Errorf("zstream: negative member size %d", o.memberSize)
	}
	return frame.ValidateGzipHeader(frame.Header(o.header))
}

// validateWriter checks that the configuration applies to a writer
// producing format f.
func (o *options) validateWriter(f Format) error {
	if !f.valid() {
		return fmt.Errorf("zstream: invalid format %d", int(f))
	}
	if err := o.validate(); err != nil {
		return err
	}
	if f == Gzip && len(o.dict) > 0 {
		return fmt.Errorf("zstream: gzip streams cannot carry a preset dictionary")
	}
	if f != Gzip && o.headerSet {
		return fmt.Errorf("zstream: header metadata requires the gzip format")
	}
	if f != Gzip && o.memberSize > 0 {
		return fmt.Errorf("zstream: member rotation requires the gzip format")
	}
	return nil
}

// validateReader checks that the configuration applies to a reader
// consuming format f. Writer-only options are ignored rather than
// rejected so a Factory can serve both directions.
func (o *options) validateReader(f Format) error {
	if !f.valid() {
		return fmt.Errorf("zstream: invalid format %d", int(f))
	}
	if err := o.validate(); err != nil {
		return err
	}
	if f == Gzip && len(o.dict) > 0 {
		return fmt.Errorf("zstream: gzip streams cannot carry a preset dictionary")
	}
	return nil
}
