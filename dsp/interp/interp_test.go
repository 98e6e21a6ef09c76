package interp

import (
	"errors"
	"math"
	"testing"
)

func TestLerp(t *testing.T) {
	for _, tc := range []struct {
		frac, want float64
	}{
		{0, 2},
		{0.25, 2.5},
		{1, 4},
	} {
		if got := Lerp(tc.frac, 2, 4); got != tc.want {
			t.Fatalf("frac=%v: got %v want %v", tc.frac, got, tc.want)
		}
	}
}

func TestLine(t *testing.T) {
	l, err := NewLine(800, 1, 1200, 2)
	if err != nil {
		t.Fatal(err)
	}

	if got := l.At(1000); math.Abs(got-1.5) > 1e-12 {
		t.Fatalf("At(1000) = %v, want 1.5", got)
	}
	if got := l.Slope(); math.Abs(got-0.0025) > 1e-15 {
		t.Fatalf("Slope = %v, want 0.0025", got)
	}

	dst := make([]float64, 3)
	l.EvalTo(dst, []float64{800, 1200, 1400})
	want := []float64{1, 2, 2.5}
	for i := range want {
		if math.Abs(dst[i]-want[i]) > 1e-12 {
			t.Fatalf("EvalTo[%d] = %v, want %v", i, dst[i], want[i])
		}
	}

	if _, err := NewLine(5, 1, 5, 2); !errors.Is(err, ErrVerticalLine) {
		t.Fatalf("expected ErrVerticalLine, got %v", err)
	}
}

func TestFillGaps(t *testing.T) {
	tests := []struct {
		name string
		x    []float64
		y    []float64
		bad  []bool
		want []float64
	}{
		{
			name: "interior",
			x:    []float64{0, 1, 2, 3},
			y:    []float64{0, 99, 99, 3},
			bad:  []bool{false, true, true, false},
			want: []float64{0, 1, 2, 3},
		},
		{
			name: "non-uniform spacing",
			x:    []float64{0, 1, 4},
			y:    []float64{0, 99, 8},
			bad:  []bool{false, true, false},
			want: []float64{0, 2, 8},
		},
		{
			name: "leading and trailing",
			x:    []float64{0, 1, 2, 3, 4},
			y:    []float64{7, 7, 1, 2, 9},
			bad:  []bool{true, true, false, false, true},
			want: []float64{1, 1, 1, 2, 2},
		},
		{
			name: "nothing masked",
			x:    []float64{0, 1},
			y:    []float64{3, 4},
			bad:  []bool{false, false},
			want: []float64{3, 4},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := FillGaps(tc.x, tc.y, tc.bad); err != nil {
				t.Fatal(err)
			}
			for i := range tc.want {
				if math.Abs(tc.y[i]-tc.want[i]) > 1e-12 {
					t.Fatalf("y[%d] = %v, want %v", i, tc.y[i], tc.want[i])
				}
			}
		})
	}
}

func TestFillGapsErrors(t *testing.T) {
	if err := FillGaps([]float64{0, 1}, []float64{1, 2}, []bool{true, true}); !errors.Is(err, ErrNoKnots) {
		t.Fatalf("all masked: got %v", err)
	}
	if err := FillGaps([]float64{0}, []float64{1, 2}, []bool{false, false}); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("mismatch: got %v", err)
	}
}

func TestPolyline(t *testing.T) {
	p, err := NewPolyline([]float64{0, 1, 3}, []float64{0, 2, 2})
	if err != nil {
		t.Fatal(err)
	}

	for _, tc := range []struct {
		x, want float64
	}{
		{-1, -2},
		{0, 0},
		{0.5, 1},
		{1, 2},
		{2, 2},
		{3, 2},
		{4, 2},
	} {
		if got := p.At(tc.x); math.Abs(got-tc.want) > 1e-12 {
			t.Fatalf("At(%v) = %v, want %v", tc.x, got, tc.want)
		}
	}

	if _, err := NewPolyline([]float64{0, 0}, []float64{1, 1}); !errors.Is(err, ErrVerticalLine) {
		t.Fatalf("expected ErrVerticalLine, got %v", err)
	}
	if _, err := NewPolyline([]float64{0}, []float64{1}); !errors.Is(err, ErrNoKnots) {
		t.Fatalf("expected ErrNoKnots, got %v", err)
	}
}
