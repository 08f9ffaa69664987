// Package compression transparently decompresses gzip, bzip2 and xz input.
package compression

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/ulikunitz/xz"

	"github.com/jmylchreest/toolshub/internal/security"
)

// Format identifies a compression format.
type Format string

const (
	FormatNone  Format = "none"
	FormatGzip  Format = "gzip"
	FormatBzip2 Format = "bzip2"
	FormatXz    Format = "xz"
)

// DefaultMaxBytes caps decompressed output at 100 MB.
const DefaultMaxBytes = 100 << 20

var (
	gzipMagic  = []byte{0x1f, 0x8b}
	bzip2Magic = []byte("BZh")
	xzMagic    = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
)

// Detect identifies the compression format from the leading bytes of a stream.
func Detect(header []byte) Format {
	switch {
	case bytes.HasPrefix(header, xzMagic):
		return FormatXz
	case bytes.HasPrefix(header, gzipMagic):
		return FormatGzip
	case bytes.HasPrefix(header, bzip2Magic):
		return FormatBzip2
	default:
		return FormatNone
	}
}

// NewReader returns a reader over the decompressed contents of r, detecting
// the format from its magic bytes. Uncompressed input passes through
// unchanged. When maxBytes > 0, reading more than maxBytes of output fails
// with security.ErrLimitExceeded.
func NewReader(r io.Reader, maxBytes int64) (io.Reader, Format, error) {
	br := bufio.NewReader(r)
	// A short or empty stream is simply not compressed.
	header, _ := br.Peek(len(xzMagic))

	format := Detect(header)
	var dec io.Reader
	switch format {
	case FormatGzip:
		gzr, err := gzip.NewReader(br)
		if err != nil {
			return nil, format, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		dec = gzr
	case FormatBzip2:
		dec = bzip2.NewReader(br)
	case FormatXz:
		xzr, err := xz.NewReader(br)
		if err != nil {
			return nil, format, fmt.Errorf("failed to create xz reader: %w", err)
		}
		dec = xzr
	default:
		dec = br
	}

	if maxBytes > 0 {
		dec = security.NewLimitedReader(dec, maxBytes)
	}
	return dec, format, nil
}

// ReadAll decompresses r into memory.
func ReadAll(r io.Reader, maxBytes int64) ([]byte, Format, error) {
	dec, format, err := NewReader(r, maxBytes)
	if err != nil {
		return nil, format, err
	}
	data, err := io.ReadAll(dec)
	if err != nil {
		return nil, format, fmt.Errorf("failed to decompress %s input: %w", format, err)
	}
	return data, format, nil
}
