package cube

import (
	"errors"
	"fmt"
)

var (
	// ErrShape is returned for invalid or mismatched shapes.
	ErrShape = errors.New("cube: invalid shape")
	// ErrRowRange is returned for row ranges outside the cube.
	ErrRowRange = errors.New("cube: row range out of bounds")
	// ErrBufferSize is returned when a buffer does not match the row range.
	ErrBufferSize = errors.New("cube: buffer size mismatch")
)

// Shape is the extent of a cube.
type Shape struct {
	Rows, Cols, Bands int
}

// Validate reports whether every dimension is positive.
func (s Shape) Validate() error {
	if s.Rows <= 0 || s.Cols <= 0 || s.Bands <= 0 {
		return fmt.Errorf("%w: %v", ErrShape, s)
	}
	return nil
}

// Pixels returns Rows·Cols.
func (s Shape) Pixels() int {
	return s.Rows * s.Cols
}

// Len returns the number of values in the cube.
func (s Shape) Len() int {
	return s.Rows * s.Cols * s.Bands
}

// RowLen returns the number of values in one row.
func (s Shape) RowLen() int {
	return s.Cols * s.Bands
}

func (s Shape) String() string {
	return fmt.Sprintf("%dx%dx%d", s.Rows, s.Cols, s.Bands)
}

// CheckRows validates a row range and its buffer length against s.
func (s Shape) CheckRows(start, n, bufLen int) error {
	if start < 0 || n < 0 || start+n > s.Rows {
		return fmt.Errorf("%w: rows [%d, %d) of %d", ErrRowRange, start, start+n, s.Rows)
	}
	if bufLen != n*s.RowLen() {
		return fmt.Errorf("%w: %d values for %d rows of %d", ErrBufferSize, bufLen, n, s.RowLen())
	}
	return nil
}

// Data is an in-memory cube.
type Data struct {
	shape  Shape
	values []float64
}

// NewData allocates a zeroed cube.
func NewData(shape Shape) (*Data, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	return &Data{shape: shape, values: make([]float64, shape.Len())}, nil
}

// FromSlice wraps values without copying. The cube takes ownership of values.
func FromSlice(shape Shape, values []float64) (*Data, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if len(values) != shape.Len() {
		return nil, fmt.Errorf("%w: %d values for shape %v", ErrBufferSize, len(values), shape)
	}
	return &Data{shape: shape, values: values}, nil
}

// Shape returns the cube shape.
func (d *Data) Shape() Shape {
	return d.shape
}

// Values returns the backing slice.
func (d *Data) Values() []float64 {
	return d.values
}

// Pixel returns the spectrum at (row, col), aliasing the cube storage.
func (d *Data) Pixel(row, col int) []float64 {
	i := (row*d.shape.Cols + col) * d.shape.Bands
	return d.values[i : i+d.shape.Bands : i+d.shape.Bands]
}

// Rows returns n rows starting at start, aliasing the cube storage.
func (d *Data) Rows(start, n int) []float64 {
	rl := d.shape.RowLen()
	return d.values[start*rl : (start+n)*rl]
}

// Band returns a rows×cols copy of band b.
func (d *Data) Band(b int) ([]float64, error) {
	if b < 0 || b >= d.shape.Bands {
		return nil, fmt.Errorf("%w: band %d of %d", ErrShape, b, d.shape.Bands)
	}

	out := make([]float64, d.shape.Pixels())
	for p := range out {
		out[p] = d.values[p*d.shape.Bands+b]
	}
	return out, nil
}

// Clone returns a deep copy.
func (d *Data) Clone() *Data {
	values := make([]float64, len(d.values))
	copy(values, d.values)
	return &Data{shape: d.shape, values: values}
}

// Mask is a per-sample boolean cube aligned with Data.
type Mask struct {
	shape  Shape
	values []bool
}

// NewMask allocates an all-false mask.
func NewMask(shape Shape) (*Mask, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	return &Mask{shape: shape, values: make([]bool, shape.Len())}, nil
}

// Shape returns the mask shape.
func (m *Mask) Shape() Shape {
	return m.shape
}

// Values returns the backing slice.
func (m *Mask) Values() []bool {
	return m.values
}

// Pixel returns the mask of (row, col), aliasing the mask storage.
func (m *Mask) Pixel(row, col int) []bool {
	i := (row*m.shape.Cols + col) * m.shape.Bands
	return m.values[i : i+m.shape.Bands : i+m.shape.Bands]
}

// Rows returns n rows starting at start, aliasing the mask storage.
func (m *Mask) Rows(start, n int) []bool {
	rl := m.shape.RowLen()
	return m.values[start*rl : (start+n)*rl]
}

// Count returns the number of set samples.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.values {
		if v {
			n++
		}
	}
	return n
}
