package cube

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

// ErrFileSize is returned when an existing file does not match its shape.
var ErrFileSize = errors.New("cube: file size does not match shape")

const bytesPerValue = 8

// FileStore is a Store over a raw band-interleaved-by-pixel file of
// little-endian float64 values with no header. Each row range maps to one
// contiguous byte range, so a chunk is a single ReadAt or WriteAt call.
//
// Concurrent calls on disjoint row ranges are safe.
type FileStore struct {
	f     *os.File
	shape Shape
}

// CreateFile creates (or truncates) path and sizes it for shape.
func CreateFile(path string, shape Shape) (*FileStore, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("cube: create %s: %w", path, err)
	}
	if err := f.Truncate(int64(shape.Len()) * bytesPerValue); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("cube: size %s: %w", path, err)
	}

	return &FileStore{f: f, shape: shape}, nil
}

// OpenFile opens an existing cube file for reading and writing.
func OpenFile(path string, shape Shape) (*FileStore, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("cube: open %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("cube: stat %s: %w", path, err)
	}
	if want := int64(shape.Len()) * bytesPerValue; info.Size() != want {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s has %d bytes, want %d", ErrFileSize, path, info.Size(), want)
	}

	return &FileStore{f: f, shape: shape}, nil
}

// Shape returns the cube shape.
func (s *FileStore) Shape() Shape {
	return s.shape
}

// ReadRows implements Reader.
func (s *FileStore) ReadRows(ctx context.Context, start, n int, dst []float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.shape.CheckRows(start, n, len(dst)); err != nil {
		return err
	}

	buf := make([]byte, len(dst)*bytesPerValue)
	// ReadAt may report io.EOF alongside a full read at the end of the file.
	// Fewer bytes than requested means the file was truncated.
	got, err := s.f.ReadAt(buf, s.offset(start))
	if got < len(buf) {
		if err == nil || errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return fmt.Errorf("cube: read rows [%d, %d): %w", start, start+n, err)
	}
	for i := range dst {
		dst[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[i*bytesPerValue:]))
	}

	return nil
}

// WriteRows implements Writer.
func (s *FileStore) WriteRows(ctx context.Context, start, n int, src []float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.shape.CheckRows(start, n, len(src)); err != nil {
		return err
	}

	buf := make([]byte, len(src)*bytesPerValue)
	for i, v := range src {
		binary.LittleEndian.PutUint64(buf[i*bytesPerValue:], math.Float64bits(v))
	}
	if _, err := s.f.WriteAt(buf, s.offset(start)); err != nil {
		return fmt.Errorf("cube: write rows [%d, %d): %w", start, start+n, err)
	}

	return nil
}

// Sync flushes written rows to stable storage.
func (s *FileStore) Sync() error {
	return s.f.Sync()
}

// Close closes the underlying file.
func (s *FileStore) Close() error {
	return s.f.Close()
}

func (s *FileStore) offset(row int) int64 {
	return int64(row) * int64(s.shape.RowLen()) * bytesPerValue
}
