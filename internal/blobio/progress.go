package blobio

import (
	"io"
	"time"

	"go.uber.org/zap"
)

// NewProgressReader wraps r so that cumulative byte counts are logged
// at debug level while the stream is consumed. Useful for long copies
// from slow sources.
func NewProgressReader(r io.Reader, logger *zap.Logger, name string) io.Reader {
	return &progressReader{
		r:      r,
		logger: logger,
		name:   name,
		last:   time.Now(),
	}
}

type progressReader struct {
	r      io.Reader
	logger *zap.Logger
	name   string
	read   int64
	last   time.Time
}

const progressInterval = 2 * time.Second

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)
	if time.Since(p.last) >= progressInterval {
		p.last = time.Now()
		p.logger.Debug("copy progress",
			zap.String("name", p.name),
			zap.Int64("bytes", p.read))
	}
	return n, err
}

// trackRemote adds progress logging around a remote blob read,
// preserving the underlying Close.
func (f *FS) trackRemote(rc io.ReadCloser, name string) io.ReadCloser {
	return readCloser{NewProgressReader(rc, f.logger, name), rc}
}

type readCloser struct {
	io.Reader
	io.Closer
}
