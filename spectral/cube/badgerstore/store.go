package badgerstore

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/cwbudde/algo-spectral/spectral/cube"
	"github.com/dgraph-io/badger/v4"
)

var (
	// ErrShapeMismatch is returned when an existing database holds a cube of
	// another shape.
	ErrShapeMismatch = errors.New("badgerstore: stored shape differs")
	// ErrCorrupt is returned when a stored row cannot be decoded.
	ErrCorrupt = errors.New("badgerstore: corrupt row")
)

var (
	shapeKey   = []byte("meta/shape")
	rowPrefix  = []byte("row/")
	maskPrefix = []byte("mask/")
)

// Config configures a Store.
type Config struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path string
	// InMemory keeps the database in memory only.
	InMemory bool
	// CompressionLevel selects zstd speed: 1 fastest, 2 default, 3 better,
	// 4 best.
	CompressionLevel int
}

// DefaultConfig returns an on-disk configuration at path with the default
// compression level.
func DefaultConfig(path string) Config {
	return Config{Path: path, CompressionLevel: 2}
}

// Store is a cube.Store and cube.MaskWriter backed by BadgerDB. Rows never
// written read back as zeros.
type Store struct {
	db    *badger.DB
	codec *codec
	shape cube.Shape
}

var (
	_ cube.Store      = (*Store)(nil)
	_ cube.MaskWriter = (*Store)(nil)
)

// Open opens or creates a store for a cube of the given shape.
func Open(cfg Config, shape cube.Shape) (*Store, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}

	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badgerstore: open: %w", err)
	}

	c, err := newCodec(cfg.CompressionLevel)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{db: db, codec: c, shape: shape}
	if err := s.checkShape(); err != nil {
		_ = s.Close()
		return nil, err
	}

	return s, nil
}

// checkShape records the shape in a fresh database or compares it with the
// recorded one.
func (s *Store) checkShape() error {
	want := encodeShape(s.shape)

	return s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(shapeKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return txn.Set(shapeKey, want)
		}
		if err != nil {
			return fmt.Errorf("badgerstore: read shape: %w", err)
		}

		return item.Value(func(got []byte) error {
			if string(got) != string(want) {
				return fmt.Errorf("%w: have %v, want %v", ErrShapeMismatch, decodeShape(got), s.shape)
			}
			return nil
		})
	})
}

// Shape returns the cube shape.
func (s *Store) Shape() cube.Shape {
	return s.shape
}

// ReadRows implements cube.Reader.
func (s *Store) ReadRows(ctx context.Context, start, n int, dst []float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.shape.CheckRows(start, n, len(dst)); err != nil {
		return err
	}

	rl := s.shape.RowLen()
	return s.db.View(func(txn *badger.Txn) error {
		for r := 0; r < n; r++ {
			row := dst[r*rl : (r+1)*rl]
			item, err := txn.Get(rowKey(rowPrefix, start+r))
			if errors.Is(err, badger.ErrKeyNotFound) {
				clear(row)
				continue
			}
			if err != nil {
				return fmt.Errorf("badgerstore: read row %d: %w", start+r, err)
			}
			if err := item.Value(func(val []byte) error {
				return s.codec.decodeValues(val, row)
			}); err != nil {
				return fmt.Errorf("badgerstore: row %d: %w", start+r, err)
			}
		}
		return nil
	})
}

// WriteRows implements cube.Writer. All rows are committed in one batch.
func (s *Store) WriteRows(ctx context.Context, start, n int, src []float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.shape.CheckRows(start, n, len(src)); err != nil {
		return err
	}

	rl := s.shape.RowLen()
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for r := 0; r < n; r++ {
		val := s.codec.encodeValues(src[r*rl : (r+1)*rl])
		if err := wb.Set(rowKey(rowPrefix, start+r), val); err != nil {
			return fmt.Errorf("badgerstore: write row %d: %w", start+r, err)
		}
	}

	if err := wb.Flush(); err != nil {
		return fmt.Errorf("badgerstore: flush rows [%d, %d): %w", start, start+n, err)
	}
	return nil
}

// WriteMaskRows implements cube.MaskWriter.
func (s *Store) WriteMaskRows(ctx context.Context, start, n int, mask []bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.shape.CheckRows(start, n, len(mask)); err != nil {
		return err
	}

	rl := s.shape.RowLen()
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for r := 0; r < n; r++ {
		if err := wb.Set(rowKey(maskPrefix, start+r), s.codec.encodeMask(mask[r*rl:(r+1)*rl])); err != nil {
			return fmt.Errorf("badgerstore: write mask row %d: %w", start+r, err)
		}
	}

	if err := wb.Flush(); err != nil {
		return fmt.Errorf("badgerstore: flush mask rows [%d, %d): %w", start, start+n, err)
	}
	return nil
}

// ReadMaskRows reads mask rows written by WriteMaskRows. Rows never written
// read back as all false.
func (s *Store) ReadMaskRows(ctx context.Context, start, n int, dst []bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.shape.CheckRows(start, n, len(dst)); err != nil {
		return err
	}

	rl := s.shape.RowLen()
	return s.db.View(func(txn *badger.Txn) error {
		for r := 0; r < n; r++ {
			row := dst[r*rl : (r+1)*rl]
			item, err := txn.Get(rowKey(maskPrefix, start+r))
			if errors.Is(err, badger.ErrKeyNotFound) {
				clear(row)
				continue
			}
			if err != nil {
				return fmt.Errorf("badgerstore: read mask row %d: %w", start+r, err)
			}
			if err := item.Value(func(val []byte) error {
				return s.codec.decodeMask(val, row)
			}); err != nil {
				return fmt.Errorf("badgerstore: mask row %d: %w", start+r, err)
			}
		}
		return nil
	})
}

// Close releases the codec and closes the database.
func (s *Store) Close() error {
	s.codec.close()
	return s.db.Close()
}

func rowKey(prefix []byte, row int) []byte {
	key := make([]byte, len(prefix)+4)
	copy(key, prefix)
	binary.BigEndian.PutUint32(key[len(prefix):], uint32(row))
	return key
}

func encodeShape(s cube.Shape) []byte {
	b := make([]byte, 12)
	binary.BigEndian.PutUint32(b[0:], uint32(s.Rows))
	binary.BigEndian.PutUint32(b[4:], uint32(s.Cols))
	binary.BigEndian.PutUint32(b[8:], uint32(s.Bands))
	return b
}

func decodeShape(b []byte) cube.Shape {
	if len(b) != 12 {
		return cube.Shape{}
	}
	return cube.Shape{
		Rows:  int(binary.BigEndian.Uint32(b[0:])),
		Cols:  int(binary.BigEndian.Uint32(b[4:])),
		Bands: int(binary.BigEndian.Uint32(b[8:])),
	}
}
