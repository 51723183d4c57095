// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package unwrap

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// ErrNotCompressed is returned when a file does not decode in the
// format it was unwrapped as. Errors reading the file or writing its
// sibling never match it.
var ErrNotCompressed = errors.New("not compressed")

// Decoder decompresses one container format.
type Decoder interface {
	// Name is the human-readable format name.
	Name() string

	// Suffix is the file-name suffix that selects this decoder,
	// including the leading dot.
	Suffix() string

	// NewReader returns a reader producing the decompressed stream.
	NewReader(source io.Reader) (io.ReadCloser, error)
}

type xzDecoder struct{}

func (xzDecoder) Name() string   { return "xz" }
func (xzDecoder) Suffix() string { return ".xz" }
func (xzDecoder) NewReader(source io.Reader) (io.ReadCloser, error) {
	reader, err := xz.NewReader(source)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(reader), nil
}

type gzipDecoder struct{}

func (gzipDecoder) Name() string   { return "gzip" }
func (gzipDecoder) Suffix() string { return ".gz" }
func (gzipDecoder) NewReader(source io.Reader) (io.ReadCloser, error) {
	return gzip.NewReader(source)
}

type zstdDecoder struct{}

func (zstdDecoder) Name() string   { return "zstd" }
func (zstdDecoder) Suffix() string { return ".zst" }
func (zstdDecoder) NewReader(source io.Reader) (io.ReadCloser, error) {
	decoder, err := zstd.NewReader(source)
	if err != nil {
		return nil, err
	}
	return decoder.IOReadCloser(), nil
}

type lz4Decoder struct{}

func (lz4Decoder) Name() string   { return "lz4" }
func (lz4Decoder) Suffix() string { return ".lz4" }
func (lz4Decoder) NewReader(source io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(lz4.NewReader(source)), nil
}

var (
	// XZ decodes .xz streams.
	XZ Decoder = xzDecoder{}

	// Gzip decodes .gz streams, including concatenated members.
	Gzip Decoder = gzipDecoder{}

	// Zstd decodes .zst frames.
	Zstd Decoder = zstdDecoder{}

	// LZ4 decodes .lz4 frames.
	LZ4 Decoder = lz4Decoder{}
)

// Decoders lists every decoder selected by suffix.
var Decoders = []Decoder{XZ, Gzip, Zstd, LZ4}

// Lookup returns the decoder whose suffix the base name of name ends
// in. A name consisting only of the suffix selects nothing.
func Lookup(name string) (Decoder, bool) {
	base := filepath.Base(name)
	for _, decoder := range Decoders {
		if strings.HasSuffix(base, decoder.Suffix()) && len(base) > len(decoder.Suffix()) {
			return decoder, true
		}
	}
	return nil, false
}

// Unwrap decompresses path with decoder and returns the path of the
// decompressed sibling. Malformed compressed data returns
// [ErrNotCompressed]. No output is left behind on any failure.
func Unwrap(path string, decoder Decoder) (string, error) {
	name := strings.TrimSuffix(filepath.Base(path), decoder.Suffix())
	output, decodeFailed, err := decode(path, name, decoder)
	if err != nil {
		if decodeFailed {
			return "", fmt.Errorf("%s: %w as %s (%v)", path, ErrNotCompressed, decoder.Name(), err)
		}
		return "", fmt.Errorf("decompressing %s (%s): %w", path, decoder.Name(), err)
	}
	return output, nil
}

// UnwrapKernelImage gunzips a kernel image into a sibling and returns
// its path. When the image does not decode as gzip it returns
// [ErrNotCompressed] and leaves no output behind. Failures to read the
// image or write the sibling are returned as ordinary errors.
func UnwrapKernelImage(path string) (string, error) {
	output, decodeFailed, err := decode(path, filepath.Base(path)+".decompressed", Gzip)
	if err != nil {
		if decodeFailed {
			return "", fmt.Errorf("%s: %w (%v)", path, ErrNotCompressed, err)
		}
		return "", fmt.Errorf("decompressing kernel image %s: %w", path, err)
	}
	return output, nil
}

// decode writes the decompressed content of path to the sibling called
// name (or to a unique sibling when name is taken). decodeFailed
// distinguishes malformed input from I/O errors on either file.
func decode(path, name string, decoder Decoder) (output string, decodeFailed bool, err error) {
	source, err := os.Open(path)
	if err != nil {
		return "", false, err
	}
	defer source.Close()

	info, err := source.Stat()
	if err != nil {
		return "", false, err
	}

	tracked := &trackingReader{reader: source}
	reader, err := decoder.NewReader(tracked)
	if err != nil {
		return "", tracked.err == nil, err
	}
	defer reader.Close()

	destination, err := createOutput(filepath.Dir(path), name, info.Mode().Perm())
	if err != nil {
		return "", false, err
	}
	output = destination.Name()

	writer := &trackingWriter{writer: destination}
	_, copyErr := io.Copy(writer, reader)
	closeErr := destination.Close()
	if copyErr != nil {
		os.Remove(output)
		return "", tracked.err == nil && writer.err == nil, copyErr
	}
	if closeErr != nil {
		os.Remove(output)
		return "", false, closeErr
	}
	return output, false, nil
}

// createOutput creates directory/name exclusively, falling back to a
// unique name beside it when that entry already exists.
func createOutput(directory, name string, mode os.FileMode) (*os.File, error) {
	if name == "" || name == "." {
		name = "unwrapped"
	}

	file, err := os.OpenFile(filepath.Join(directory, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode)
	if err == nil {
		return file, nil
	}
	if !errors.Is(err, os.ErrExist) {
		return nil, err
	}

	file, err = os.CreateTemp(directory, name+".unwrapped-*")
	if err != nil {
		return nil, err
	}
	if err := file.Chmod(mode); err != nil {
		file.Close()
		os.Remove(file.Name())
		return nil, err
	}
	return file, nil
}

// trackingReader records the first error from the underlying file so
// decode failures can be told apart from read failures.
type trackingReader struct {
	reader io.Reader
	err    error
}

func (r *trackingReader) Read(buffer []byte) (int, error) {
	n, err := r.reader.Read(buffer)
	if err != nil && err != io.EOF && r.err == nil {
		r.err = err
	}
	return n, err
}

type trackingWriter struct {
	writer io.Writer
	err    error
}

func (w *trackingWriter) Write(buffer []byte) (int, error) {
	n, err := w.writer.Write(buffer)
	if err != nil && w.err == nil {
		w.err = err
	}
	return n, err
}
