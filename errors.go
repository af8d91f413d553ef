package zstream

import (
	"errors"
	"fmt"

	"github.com/zstreamio/zstream/internal/codec"
	"github.com/zstreamio/zstream/internal/frame"
)

// Sentinel errors returned by readers and writers. Wrapped errors carry
// detail; match with errors.Is.
var (
	// ErrHeader reports a malformed or unsupported container header:
	// bad magic bytes, a compression method other than deflate, reserved
	// flag bits, or a failed FHCRC check.
	ErrHeader = frame.ErrHeader

	// ErrChecksum reports a trailer whose checksum or length does not
	// match the decompressed payload.
	ErrChecksum = frame.ErrChecksum

	// ErrClosed is returned by operations on a Writer or Reader after
	// Close.
	ErrClosed = errors.New("zstream: closed")

	// ErrDictionary is returned when a zlib stream announces a preset
	// dictionary that neither WithDictionary nor WithDictionaries can
	// resolve.
	ErrDictionary = errors.New("zstream: preset dictionary required")

	// ErrUnorderedIndex is returned by Index.Add and Index.Validate when
	// member offsets do not increase.
	ErrUnorderedIndex = errors.New("zstream: member index offsets out of order")
)

// CodecError reports that the compression backend rejected the deflate
// bit stream. It wraps the backend's error and names the backend that
// produced it.
type CodecError struct {
	Backend string
	Err     error
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("zstream: backend %s: %v", e.Backend, e.Err)
}

func (e *CodecError) Unwrap() error { return e.Err }

// codecErr classifies an error surfaced by a backend session. Corrupt
// input becomes a CodecError naming the backend; everything else, such
// as a source or sink I/O failure, passes through unchanged.
func codecErr(backend codec.Backend, err error) error {
	if errors.Is(err, codec.ErrCorrupt) {
		return &CodecError{Backend: backend.Name(), Err: err}
	}
	return err
}
