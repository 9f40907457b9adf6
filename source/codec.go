package source

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Transparent decompression of input files, picked by the file extension.

const (
	CodecNone = iota
	CodecGzip
	CodecZstd
	CodecLz4
	CodecBrotli
)

func CodecOf(path string) int {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".gzip":
		return CodecGzip
	case ".zst", ".zstd":
		return CodecZstd
	case ".lz4":
		return CodecLz4
	case ".br":
		return CodecBrotli
	default:
		return CodecNone
	}
}

func codecName(c int) string {
	switch c {
	case CodecGzip:
		return "gzip"
	case CodecZstd:
		return "zstd"
	case CodecLz4:
		return "lz4"
	case CodecBrotli:
		return "brotli"
	default:
		return "none"
	}
}

type readCloser struct {
	io.Reader
	closer []func() error
}

func (self *readCloser) Close() error {
	var first error
	for _, c := range self.closer {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// OpenReader opens path and returns the decompressed content stream
func OpenReader(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("stage(source): %w", err)
	}
	rc, err := newDecoder(f, CodecOf(path))
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stage(source): %s: %w", path, err)
	}
	rc.closer = append(rc.closer, f.Close)
	return rc, nil
}

// NewDecoder wraps r with the decompressor of codec, closing it does not
// close r
func NewDecoder(r io.Reader, codec int) (io.ReadCloser, error) {
	rc, err := newDecoder(r, codec)
	if err != nil {
		return nil, err
	}
	return rc, nil
}

func newDecoder(r io.Reader, codec int) (*readCloser, error) {
	br := bufio.NewReader(r)

	switch codec {
	case CodecGzip:
		z, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", codecName(codec), err)
		}
		return &readCloser{Reader: z, closer: []func() error{z.Close}}, nil

	case CodecZstd:
		z, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", codecName(codec), err)
		}
		return &readCloser{
			Reader: z,
			closer: []func() error{
				func() error {
					z.Close()
					return nil
				},
			},
		}, nil

	case CodecLz4:
		return &readCloser{Reader: lz4.NewReader(br)}, nil

	case CodecBrotli:
		return &readCloser{Reader: brotli.NewReader(br)}, nil

	default:
		return &readCloser{Reader: br}, nil
	}
}
