// Package frame implements the container byte layouts around a deflate
// payload: gzip members per RFC 1952 and zlib streams per RFC 1950.
// Functions here move bytes and verify fields; they hold no stream
// state of their own.
package frame

import (
	"errors"
	"io"
)

// ErrHeader reports a malformed or unsupported container header. The
// root package re-exports it as the public header error, so the message
// carries the module prefix.
var ErrHeader = errors.New("zstream: invalid header")

// ErrChecksum reports a trailer whose checksum or length does not match
// the decompressed payload. Re-exported at the root like ErrHeader.
var ErrChecksum = errors.New("zstream: checksum mismatch")

// Reader is the byte-oriented source header parsing consumes from.
// Parsing reads exactly the header bytes and no more, so the source
// position stays known for the payload that follows.
type Reader interface {
	io.Reader
	io.ByteReader
}
