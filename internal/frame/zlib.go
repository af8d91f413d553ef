package frame

import (
	"encoding/binary"
	"fmt"
	"hash/adler32"
	"io"
)

const (
	zlibDeflate = 8

	// zlibCMF is CINFO 7 (32 KiB window) plus CM 8 (deflate).
	zlibCMF = 0x78

	zlibFlagDict = 1 << 5
)

// AppendZlibHeader appends the RFC 1950 stream header to dst. A non-nil
// dict sets FDICT and embeds the dictionary's Adler-32 id. The FCHECK
// bits are chosen so the 16-bit header value is divisible by 31.
func AppendZlibHeader(dst []byte, level int, dict []byte) []byte {
	var flg byte
	switch level {
	case -2, 0, 1:
		flg = 0 << 6
	case 2, 3, 4, 5:
		flg = 1 << 6
	case 6, -1:
		flg = 2 << 6
	default:
		flg = 3 << 6
	}
	if dict != nil {
		flg |= zlibFlagDict
	}
	flg += uint8(31 - (uint16(zlibCMF)<<8|uint16(flg))%31)

	dst = append(dst, zlibCMF, flg)
	if dict != nil {
		dst = binary.BigEndian.AppendUint32(dst, adler32.Checksum(dict))
	}
	return dst
}

// ReadZlibHeader consumes the 2-byte stream header and, when FDICT is
// set, the 4-byte dictionary id. A source with no bytes at all yields
// io.EOF; one that ends mid-header yields io.ErrUnexpectedEOF.
func ReadZlibHeader(r Reader) (dictID uint32, hasDict bool, err error) {
	var hdr [2]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return 0, false, err
	}
	if hdr[0]&0x0f != zlibDeflate {
		return 0, false, fmt.Errorf("%w: unknown compression method %d", ErrHeader, hdr[0]&0x0f)
	}
	if hdr[0]>>4 > 7 {
		return 0, false, fmt.Errorf("%w: window size too large", ErrHeader)
	}
	if (uint16(hdr[0])<<8|uint16(hdr[1]))%31 != 0 {
		return 0, false, fmt.Errorf("%w: bad zlib check bits", ErrHeader)
	}
	if hdr[1]&zlibFlagDict != 0 {
		var id [4]byte
		if _, err := io.ReadFull(r, id[:]); err != nil {
			return 0, false, noEOF(err)
		}
		return binary.BigEndian.Uint32(id[:]), true, nil
	}
	return 0, false, nil
}

// AppendZlibTrailer appends the big-endian Adler-32 word.
func AppendZlibTrailer(dst []byte, sum uint32) []byte {
	return binary.BigEndian.AppendUint32(dst, sum)
}

// VerifyZlibTrailer reads the 4-byte trailer from r and compares it
// with the accumulated checksum.
func VerifyZlibTrailer(r io.Reader, sum uint32) error {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return noEOF(err)
	}
	if binary.BigEndian.Uint32(buf[:]) != sum {
		return fmt.Errorf("%w: zlib trailer", ErrChecksum)
	}
	return nil
}

// DictID returns the RFC 1950 identifier of a preset dictionary.
func DictID(dict []byte) uint32 {
	return adler32.Checksum(dict)
}
