package cube

import (
	"context"
	"fmt"
	"sync"
)

// Reader reads whole rows of a cube.
type Reader interface {
	Shape() Shape
	// ReadRows fills dst with rows [start, start+n).
	ReadRows(ctx context.Context, start, n int, dst []float64) error
}

// Writer writes whole rows of a cube.
type Writer interface {
	Shape() Shape
	// WriteRows stores src as rows [start, start+n).
	WriteRows(ctx context.Context, start, n int, src []float64) error
}

// Store is a readable and writable cube.
type Store interface {
	Reader
	Writer
}

// MaskWriter receives outlier masks for whole rows.
type MaskWriter interface {
	WriteMaskRows(ctx context.Context, start, n int, mask []bool) error
}

// MemoryStore is a Store and MaskWriter backed by an in-memory cube.
// It is safe for concurrent use.
type MemoryStore struct {
	mu   sync.RWMutex
	data *Data
	mask *Mask
}

// NewMemoryStore returns a zeroed store.
func NewMemoryStore(shape Shape) (*MemoryStore, error) {
	data, err := NewData(shape)
	if err != nil {
		return nil, err
	}
	return &MemoryStore{data: data}, nil
}

// MemoryStoreFrom wraps data without copying.
func MemoryStoreFrom(data *Data) *MemoryStore {
	return &MemoryStore{data: data}
}

// Shape returns the cube shape.
func (s *MemoryStore) Shape() Shape {
	return s.data.shape
}

// ReadRows implements Reader.
func (s *MemoryStore) ReadRows(ctx context.Context, start, n int, dst []float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.data.shape.CheckRows(start, n, len(dst)); err != nil {
		return err
	}

	s.mu.RLock()
	copy(dst, s.data.Rows(start, n))
	s.mu.RUnlock()

	return nil
}

// WriteRows implements Writer.
func (s *MemoryStore) WriteRows(ctx context.Context, start, n int, src []float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.data.shape.CheckRows(start, n, len(src)); err != nil {
		return err
	}

	s.mu.Lock()
	copy(s.data.Rows(start, n), src)
	s.mu.Unlock()

	return nil
}

// WriteMaskRows implements MaskWriter. The mask is allocated on first use.
func (s *MemoryStore) WriteMaskRows(ctx context.Context, start, n int, mask []bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.data.shape.CheckRows(start, n, len(mask)); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mask == nil {
		m, err := NewMask(s.data.shape)
		if err != nil {
			return fmt.Errorf("cube: allocate mask: %w", err)
		}
		s.mask = m
	}
	copy(s.mask.Rows(start, n), mask)

	return nil
}

// Data returns a copy of the stored cube.
func (s *MemoryStore) Data() *Data {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Clone()
}

// Mask returns a copy of the stored mask, or nil if none was written.
func (s *MemoryStore) Mask() *Mask {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.mask == nil {
		return nil
	}
	values := make([]bool, len(s.mask.values))
	copy(values, s.mask.values)
	return &Mask{shape: s.mask.shape, values: values}
}
