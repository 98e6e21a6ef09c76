package cube

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShape(t *testing.T) {
	t.Parallel()

	s := Shape{Rows: 3, Cols: 4, Bands: 5}
	require.NoError(t, s.Validate())
	assert.Equal(t, 12, s.Pixels())
	assert.Equal(t, 60, s.Len())
	assert.Equal(t, 20, s.RowLen())
	assert.Equal(t, "3x4x5", s.String())

	for _, bad := range []Shape{{0, 1, 1}, {1, -1, 1}, {1, 1, 0}} {
		assert.ErrorIs(t, bad.Validate(), ErrShape, "%v", bad)
	}

	assert.NoError(t, s.CheckRows(1, 2, 40))
	assert.NoError(t, s.CheckRows(3, 0, 0))
	assert.ErrorIs(t, s.CheckRows(2, 2, 40), ErrRowRange)
	assert.ErrorIs(t, s.CheckRows(-1, 1, 20), ErrRowRange)
	assert.ErrorIs(t, s.CheckRows(0, 1, 19), ErrBufferSize)
}

func TestDataLayout(t *testing.T) {
	t.Parallel()

	shape := Shape{Rows: 2, Cols: 3, Bands: 4}
	values := make([]float64, shape.Len())
	for i := range values {
		values[i] = float64(i)
	}
	d, err := FromSlice(shape, values)
	require.NoError(t, err)

	assert.Equal(t, []float64{16, 17, 18, 19}, d.Pixel(1, 1))
	assert.Equal(t, values[12:24], d.Rows(1, 1))

	band, err := d.Band(2)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 6, 10, 14, 18, 22}, band)

	_, err = d.Band(4)
	assert.ErrorIs(t, err, ErrShape)

	// Pixel aliases storage but cannot grow into the next pixel.
	px := d.Pixel(0, 0)
	px[0] = -1
	assert.Equal(t, -1.0, values[0])
	assert.Equal(t, 4, cap(px))

	clone := d.Clone()
	clone.Values()[0] = 99
	assert.Equal(t, -1.0, d.Values()[0])

	_, err = FromSlice(shape, values[:5])
	assert.ErrorIs(t, err, ErrBufferSize)
}

func TestMask(t *testing.T) {
	t.Parallel()

	m, err := NewMask(Shape{Rows: 2, Cols: 2, Bands: 3})
	require.NoError(t, err)

	m.Pixel(1, 0)[2] = true
	m.Rows(0, 1)[0] = true
	assert.Equal(t, 2, m.Count())
	assert.True(t, m.Values()[8])
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	shape := Shape{Rows: 4, Cols: 2, Bands: 3}
	s, err := NewMemoryStore(shape)
	require.NoError(t, err)
	assert.Equal(t, shape, s.Shape())

	rows := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	require.NoError(t, s.WriteRows(ctx, 1, 2, rows))

	got := make([]float64, 12)
	require.NoError(t, s.ReadRows(ctx, 1, 2, got))
	assert.Equal(t, rows, got)

	one := make([]float64, 6)
	require.NoError(t, s.ReadRows(ctx, 0, 1, one))
	assert.Equal(t, make([]float64, 6), one)

	assert.ErrorIs(t, s.ReadRows(ctx, 3, 2, got), ErrRowRange)
	assert.ErrorIs(t, s.WriteRows(ctx, 0, 1, rows), ErrBufferSize)

	assert.Nil(t, s.Mask())
	mask := []bool{true, false, false, false, false, true}
	require.NoError(t, s.WriteMaskRows(ctx, 3, 1, mask))
	assert.Equal(t, 2, s.Mask().Count())
	assert.Equal(t, mask, s.Mask().Rows(3, 1))

	data := s.Data()
	data.Values()[6] = -5
	require.NoError(t, s.ReadRows(ctx, 1, 1, one))
	assert.Equal(t, 1.0, one[0], "Data must return a copy")
}

func TestMemoryStoreCancelled(t *testing.T) {
	t.Parallel()

	s, err := NewMemoryStore(Shape{Rows: 1, Cols: 1, Bands: 1})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = s.ReadRows(ctx, 0, 1, make([]float64, 1))
	assert.True(t, errors.Is(err, context.Canceled))
	err = s.WriteRows(ctx, 0, 1, make([]float64, 1))
	assert.True(t, errors.Is(err, context.Canceled))
}
