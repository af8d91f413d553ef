package zstream

import (
	"time"

	"github.com/zstreamio/zstream/internal/frame"
)

// OSUnknown is the gzip OS byte meaning the origin system is not
// recorded. Writers default to it so output is reproducible across
// platforms.
const OSUnknown = frame.OSUnknown

// Header is the metadata carried by a gzip member header. Writers
// populate it through the WithName, WithComment, WithExtra, WithModTime
// and WithOS options; readers expose the parsed fields through
// Reader.Header.
//
// Name and Comment are NUL-terminated on the wire and must not contain
// NUL bytes. ModTime is stored with one second resolution; times at or
// before the Unix epoch are encoded as zero, meaning "not set".
type Header struct {
	Name    string
	Comment string
	Extra   []byte
	ModTime time.Time
	OS      byte
}
