package parse

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec is a compression format of an input.
type Codec string

const (
	CodecNone Codec = ""
	CodecGzip Codec = "gzip"
	CodecZstd Codec = "zstd"
	CodecLZ4  Codec = "lz4"
	CodecS2   Codec = "s2"
)

var magics = []struct {
	codec Codec
	magic []byte
}{
	{CodecGzip, []byte{0x1f, 0x8b}},
	{CodecZstd, []byte{0x28, 0xb5, 0x2f, 0xfd}},
	{CodecLZ4, []byte{0x04, 0x22, 0x4d, 0x18}},
	{CodecS2, []byte("\xff\x06\x00\x00S2sTwO")},
	{CodecS2, []byte("\xff\x06\x00\x00sNaPpY")},
}

var extensions = map[string]Codec{
	".gz":   CodecGzip,
	".gzip": CodecGzip,
	".zst":  CodecZstd,
	".zstd": CodecZstd,
	".lz4":  CodecLZ4,
	".s2":   CodecS2,
	".sz":   CodecS2,
}

const peekSize = 10

// DetectCodec returns the codec whose magic bytes prefix head, or the codec
// of the extension of name when none does.
func DetectCodec(head []byte, name string) Codec {
	for _, m := range magics {
		if bytes.HasPrefix(head, m.magic) {
			return m.codec
		}
	}
	return extensions[strings.ToLower(filepath.Ext(name))]
}

// Open opens path for reading, decompressing it if needed. A path of "-"
// is standard input, which Close leaves open.
func Open(path string) (io.ReadCloser, error) {
	var f io.ReadCloser
	if path == "-" {
		f = io.NopCloser(os.Stdin)
	} else {
		var err error
		f, err = os.Open(path)
		if err != nil {
			return nil, err
		}
	}
	rc, err := Decompress(f, path)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &readCloser{Reader: rc, closers: []io.Closer{rc, f}}, nil
}

// Decompress wraps r with a decompressor chosen by DetectCodec. name is
// used only for its extension.
func Decompress(r io.Reader, name string) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(peekSize)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, err
	}
	switch codec := DetectCodec(head, name); codec {
	case CodecGzip:
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", codec, err)
		}
		return zr, nil
	case CodecZstd:
		zr, err := zstd.NewReader(br, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", codec, err)
		}
		return zr.IOReadCloser(), nil
	case CodecLZ4:
		return io.NopCloser(lz4.NewReader(br)), nil
	case CodecS2:
		return io.NopCloser(s2.NewReader(br)), nil
	default:
		return io.NopCloser(br), nil
	}
}

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (r *readCloser) Close() error {
	var errs []error
	for _, c := range r.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
