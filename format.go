package zstream

import (
	"fmt"
	"strings"

	"github.com/zstreamio/zstream/internal/checksum"
)

// Format selects the container framing around the deflate payload.
type Format int

const (
	// Raw is a bare deflate stream with no header, trailer or checksum.
	Raw Format = iota

	// Zlib is the RFC 1950 container: a two byte header, an optional
	// preset dictionary id, and a big-endian Adler-32 trailer.
	Zlib

	// Gzip is the RFC 1952 container: a ten byte header with optional
	// metadata fields, and a little-endian CRC-32 plus length trailer.
	Gzip
)

// ParseFormat maps a name to a Format. It accepts "raw", "zlib" and
// "gzip" in any case, plus "deflate" as an alias for Raw.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "raw", "deflate":
		return Raw, nil
	case "zlib":
		return Zlib, nil
	case "gzip":
		return Gzip, nil
	default:
		return 0, fmt.Errorf("zstream: unknown format %q", s)
	}
}

func (f Format) String() string {
	switch f {
	case Raw:
		return "raw"
	case Zlib:
		return "zlib"
	case Gzip:
		return "gzip"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

func (f Format) valid() bool { return f >= Raw && f <= Gzip }

// digest returns the checksum the format's trailer carries. Raw streams
// have no trailer and get a no-op digest so the stream paths stay
// uniform.
func (f Format) digest() checksum.Digest {
	switch f {
	case Zlib:
		return checksum.NewAdler32()
	case Gzip:
		return checksum.NewCRC32()
	default:
		return checksum.NewNone()
	}
}
