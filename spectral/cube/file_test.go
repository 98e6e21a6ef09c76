package cube

import (
	"context"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "cube.bip")
	shape := Shape{Rows: 3, Cols: 2, Bands: 2}

	s, err := CreateFile(path, shape)
	require.NoError(t, err)

	row2 := []float64{0.5, -1.25, math.Inf(1), 1e-300}
	require.NoError(t, s.WriteRows(ctx, 2, 1, row2))
	require.NoError(t, s.Sync())
	require.NoError(t, s.Close())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.EqualValues(t, shape.Len()*8, info.Size())

	s, err = OpenFile(path, shape)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	got := make([]float64, 8)
	require.NoError(t, s.ReadRows(ctx, 1, 2, got))
	want := append(make([]float64, 4), row2...)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}

	assert.ErrorIs(t, s.ReadRows(ctx, 2, 2, got), ErrRowRange)
}

func TestFileStoreLayout(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "cube.bip")
	s, err := CreateFile(path, Shape{Rows: 1, Cols: 1, Bands: 2})
	require.NoError(t, err)
	require.NoError(t, s.WriteRows(ctx, 0, 1, []float64{1, 2}))
	require.NoError(t, s.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	// 1.0 and 2.0 as little-endian IEEE 754.
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0xf0, 0x3f, 0, 0, 0, 0, 0, 0, 0, 0x40}, raw)
}

func TestOpenFileSizeMismatch(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "short.bip")
	require.NoError(t, os.WriteFile(path, make([]byte, 24), 0o644))

	_, err := OpenFile(path, Shape{Rows: 2, Cols: 1, Bands: 2})
	assert.ErrorIs(t, err, ErrFileSize)

	_, err = OpenFile(filepath.Join(t.TempDir(), "missing.bip"), Shape{Rows: 1, Cols: 1, Bands: 1})
	assert.Error(t, err)
}

func TestFileStoreTruncatedRead(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "cube.bip")
	shape := Shape{Rows: 3, Cols: 2, Bands: 2}
	s, err := CreateFile(path, shape)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	// The file loses half of its last row after opening.
	require.NoError(t, os.Truncate(path, int64((shape.Len()-2)*8)))

	got := make([]float64, 4)
	require.NoError(t, s.ReadRows(ctx, 0, 1, got))

	err = s.ReadRows(ctx, 2, 1, got)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	// A read starting past the end sees no bytes at all.
	require.NoError(t, os.Truncate(path, int64(shape.RowLen()*8)))
	err = s.ReadRows(ctx, 1, 2, make([]float64, 8))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
