package frame

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/zstreamio/zstream/internal/checksum"
)

const (
	gzipID1     = 0x1f
	gzipID2     = 0x8b
	gzipDeflate = 8

	flagHdrCRC  = 1 << 1
	flagExtra   = 1 << 2
	flagName    = 1 << 3
	flagComment = 1 << 4

	// OSUnknown is the OS byte written when the origin system is not
	// recorded, which keeps output reproducible across platforms.
	OSUnknown = 255
)

// Header carries the gzip member metadata fields. The zero value plus
// OS set to OSUnknown is what a writer emits by default. Name and
// Comment travel as raw bytes; both are NUL-terminated on the wire and
// so must not contain NUL themselves.
type Header struct {
	Name    string
	Comment string
	Extra   []byte
	ModTime time.Time
	OS      byte
}

// ValidateGzipHeader reports whether h can be encoded.
func ValidateGzipHeader(h Header) error {
	if strings.IndexByte(h.Name, 0) >= 0 {
		return fmt.Errorf("%w: NUL byte in name", ErrHeader)
	}
	if strings.IndexByte(h.Comment, 0) >= 0 {
		return fmt.Errorf("%w: NUL byte in comment", ErrHeader)
	}
	if len(h.Extra) > 0xffff {
		return fmt.Errorf("%w: extra field longer than 65535 bytes", ErrHeader)
	}
	return nil
}

// AppendGzipHeader appends the RFC 1952 member header for h to dst and
// returns the extended slice. The level tunes the XFL hint byte. The
// caller validates h first.
func AppendGzipHeader(dst []byte, h Header, level int) []byte {
	var flg byte
	if len(h.Extra) > 0 {
		flg |= flagExtra
	}
	if h.Name != "" {
		flg |= flagName
	}
	if h.Comment != "" {
		flg |= flagComment
	}

	var mtime uint32
	if t := h.ModTime; !t.IsZero() && t.Unix() > 0 {
		mtime = uint32(t.Unix())
	}

	var xfl byte
	switch {
	case level == 9:
		xfl = 2
	case level == 0 || level == 1:
		xfl = 4
	}

	dst = append(dst, gzipID1, gzipID2, gzipDeflate, flg)
	dst = binary.LittleEndian.AppendUint32(dst, mtime)
	dst = append(dst, xfl, h.OS)
	if len(h.Extra) > 0 {
		dst = binary.LittleEndian.AppendUint16(dst, uint16(len(h.Extra)))
		dst = append(dst, h.Extra...)
	}
	if h.Name != "" {
		dst = append(dst, h.Name...)
		dst = append(dst, 0)
	}
	if h.Comment != "" {
		dst = append(dst, h.Comment...)
		dst = append(dst, 0)
	}
	return dst
}

// ReadGzipHeader consumes exactly one member header from r, verifying
// the magic, the compression method, the reserved flag bits and the
// header CRC when present. A source with no bytes at all yields io.EOF;
// a source that ends mid-header yields io.ErrUnexpectedEOF.
func ReadGzipHeader(r Reader) (Header, error) {
	var h Header
	var fixed [10]byte
	if _, err := io.ReadFull(r, fixed[:]); err != nil {
		return h, err
	}
	if fixed[0] != gzipID1 || fixed[1] != gzipID2 {
		return h, fmt.Errorf("%w: bad gzip magic", ErrHeader)
	}
	if fixed[2] != gzipDeflate {
		return h, fmt.Errorf("%w: unknown compression method %d", ErrHeader, fixed[2])
	}
	flg := fixed[3]
	if flg&0xe0 != 0 {
		return h, fmt.Errorf("%w: reserved flag bits set", ErrHeader)
	}

	digest := checksum.NewCRC32()
	digest.Update(fixed[:])

	if mtime := binary.LittleEndian.Uint32(fixed[4:8]); mtime != 0 {
		h.ModTime = time.Unix(int64(mtime), 0)
	}
	h.OS = fixed[9]

	if flg&flagExtra != 0 {
		var lenBuf [2]byte
		if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
			return h, noEOF(err)
		}
		digest.Update(lenBuf[:])
		extra := make([]byte, binary.LittleEndian.Uint16(lenBuf[:]))
		if _, err := io.ReadFull(r, extra); err != nil {
			return h, noEOF(err)
		}
		digest.Update(extra)
		h.Extra = extra
	}
	if flg&flagName != 0 {
		s, err := readCString(r, digest)
		if err != nil {
			return h, err
		}
		h.Name = s
	}
	if flg&flagComment != 0 {
		s, err := readCString(r, digest)
		if err != nil {
			return h, err
		}
		h.Comment = s
	}
	if flg&flagHdrCRC != 0 {
		want := uint16(digest.Sum())
		var crcBuf [2]byte
		if _, err := io.ReadFull(r, crcBuf[:]); err != nil {
			return h, noEOF(err)
		}
		if got := binary.LittleEndian.Uint16(crcBuf[:]); got != want {
			return h, fmt.Errorf("%w: header crc mismatch", ErrHeader)
		}
	}
	return h, nil
}

// AppendGzipTrailer appends the CRC32 word and the uncompressed length
// modulo 2^32, both little-endian.
func AppendGzipTrailer(dst []byte, sum uint32, length int64) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, sum)
	dst = binary.LittleEndian.AppendUint32(dst, uint32(length))
	return dst
}

// VerifyGzipTrailer reads the 8-byte member trailer from r and compares
// it with the accumulated checksum and length.
func VerifyGzipTrailer(r io.Reader, sum uint32, length int64) error {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return noEOF(err)
	}
	wantSum := binary.LittleEndian.Uint32(buf[:4])
	wantLen := binary.LittleEndian.Uint32(buf[4:])
	if wantSum != sum || wantLen != uint32(length) {
		return fmt.Errorf("%w: gzip trailer", ErrChecksum)
	}
	return nil
}

// readCString reads raw bytes through the terminating NUL, folding the
// bytes read (NUL included) into digest.
func readCString(r Reader, digest *checksum.CRC32) (string, error) {
	var sb strings.Builder
	var one [1]byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			return "", noEOF(err)
		}
		one[0] = b
		digest.Update(one[:])
		if b == 0 {
			return sb.String(), nil
		}
		sb.WriteByte(b)
	}
}

// noEOF turns a bare io.EOF into io.ErrUnexpectedEOF for reads that sit
// inside a structure that has already begun.
func noEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
