package wavelength

import (
	"errors"
	"math"
	"testing"
)

func ninePoint(t *testing.T) *Axis {
	t.Helper()
	axis, err := New([]float64{800, 850, 900, 950, 1000, 1050, 1100, 1150, 1200}, Nanometer)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return axis
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		values  []float64
		unit    Unit
		wantErr error
	}{
		{name: "empty", values: nil, unit: Nanometer, wantErr: ErrEmptyAxis},
		{name: "duplicate", values: []float64{1, 2, 2}, unit: Nanometer, wantErr: ErrNotIncreasing},
		{name: "decreasing", values: []float64{3, 2, 1}, unit: Nanometer, wantErr: ErrNotIncreasing},
		{name: "zero", values: []float64{0, 1}, unit: Nanometer, wantErr: ErrNonPositive},
		{name: "nan", values: []float64{1, math.NaN()}, unit: Nanometer, wantErr: ErrNonPositive},
		{name: "unit", values: []float64{1, 2}, unit: Unit(42), wantErr: ErrUnknownUnit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.values, tt.unit)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("New() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewCopiesInput(t *testing.T) {
	values := []float64{1, 2, 3}
	axis, err := New(values, Micrometer)
	if err != nil {
		t.Fatal(err)
	}

	values[0] = 100
	if axis.At(0) != 1 {
		t.Fatalf("axis aliases caller slice: At(0) = %v", axis.At(0))
	}

	out := axis.Values()
	out[1] = 100
	if axis.At(1) != 2 {
		t.Fatal("Values() exposes internal storage")
	}
}

func TestResolveWindow(t *testing.T) {
	axis := ninePoint(t)

	tests := []struct {
		name      string
		low, high float64
		unit      Unit
		wantLow   int
		wantHigh  int
	}{
		{name: "full", low: 800, high: 1200, unit: Nanometer, wantLow: 0, wantHigh: 8},
		{name: "inner", low: 900, high: 1100, unit: Nanometer, wantLow: 2, wantHigh: 6},
		{name: "between samples", low: 870, high: 1010, unit: Nanometer, wantLow: 2, wantHigh: 4},
		{name: "micrometers", low: 0.9, high: 1.1, unit: Micrometer, wantLow: 2, wantHigh: 6},
		{name: "exactly three", low: 900, high: 1000, unit: Nanometer, wantLow: 2, wantHigh: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := axis.ResolveWindow(tt.low, tt.high, tt.unit)
			if err != nil {
				t.Fatalf("ResolveWindow: %v", err)
			}
			if w.Low != tt.wantLow || w.High != tt.wantHigh {
				t.Fatalf("window = [%d, %d], want [%d, %d]", w.Low, w.High, tt.wantLow, tt.wantHigh)
			}
			if w.LowWavelength != axis.At(w.Low) || w.HighWavelength != axis.At(w.High) {
				t.Fatalf("window wavelengths %v..%v do not match indices", w.LowWavelength, w.HighWavelength)
			}
		})
	}
}

func TestResolveWindowErrors(t *testing.T) {
	axis := ninePoint(t)

	tests := []struct {
		name      string
		low, high float64
	}{
		{name: "low equals high", low: 900, high: 900},
		{name: "inverted", low: 1000, high: 900},
		{name: "two samples", low: 900, high: 950},
		{name: "empty", low: 1210, high: 1300},
		{name: "between samples", low: 910, high: 940},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := axis.ResolveWindow(tt.low, tt.high, Nanometer)
			if !errors.Is(err, ErrRange) {
				t.Fatalf("ResolveWindow error = %v, want ErrRange", err)
			}
			var rangeErr *RangeError
			if !errors.As(err, &rangeErr) {
				t.Fatalf("error %T is not *RangeError", err)
			}
		})
	}
}

func TestSpanAllowsShortWindows(t *testing.T) {
	axis := ninePoint(t)

	w, err := axis.Span(900, 950, Nanometer)
	if err != nil {
		t.Fatalf("Span: %v", err)
	}
	if w.Len() != 2 {
		t.Fatalf("Len = %d, want 2", w.Len())
	}
}

func TestNearestIndex(t *testing.T) {
	axis := ninePoint(t)

	tests := []struct {
		target float64
		unit   Unit
		want   int
	}{
		{target: 700, unit: Nanometer, want: 0},
		{target: 5000, unit: Nanometer, want: 8},
		{target: 910, unit: Nanometer, want: 2},
		{target: 940, unit: Nanometer, want: 3},
		{target: 925, unit: Nanometer, want: 2}, // tie -> lower
		{target: 1.049, unit: Micrometer, want: 5},
		{target: 1.58e-6, unit: Meter, want: 8},
	}

	for _, tt := range tests {
		got, err := axis.NearestIndex(tt.target, tt.unit)
		if err != nil {
			t.Fatalf("NearestIndex(%v): %v", tt.target, err)
		}
		if got != tt.want {
			t.Errorf("NearestIndex(%v %v) = %d, want %d", tt.target, tt.unit, got, tt.want)
		}
	}
}

func TestAxisIn(t *testing.T) {
	axis := ninePoint(t)

	um, err := axis.In(Micrometer)
	if err != nil {
		t.Fatal(err)
	}
	if um.Unit() != Micrometer || math.Abs(um.At(4)-1.0) > 1e-12 {
		t.Fatalf("In(um) = %v %v", um.At(4), um.Unit())
	}
	if axis.At(4) != 1000 {
		t.Fatal("In mutated the source axis")
	}
}

func TestSpacing(t *testing.T) {
	axis := ninePoint(t)

	d, err := axis.Spacing(3)
	if err != nil || d != 50 {
		t.Fatalf("Spacing(3) = %v, %v", d, err)
	}
	if _, err := axis.Spacing(8); !errors.Is(err, ErrIndexOutOfAxis) {
		t.Fatalf("Spacing(8) error = %v", err)
	}
}
