package continuum

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-spectral/internal/testutil"
	"github.com/cwbudde/algo-spectral/spectral/wavelength"
)

func mustAxis(t *testing.T, values []float64) *wavelength.Axis {
	t.Helper()
	axis, err := wavelength.New(values, wavelength.Nanometer)
	if err != nil {
		t.Fatal(err)
	}
	return axis
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatal(err)
	}
	if err := (Config{Method: ConvexHullMethod}).Validate(); err != nil {
		t.Fatal(err)
	}
	if err := (Config{SearchRadius: -1}).Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	if err := (Config{Method: Method(5)}).Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestDoubleLineAnchorsNormalizeToOne(t *testing.T) {
	wvl := testutil.Linspace(800, 1200, 41)
	axis := mustAxis(t, wvl)

	for _, depth := range []float64{0.1, 0.3, 0.6} {
		spectrum := testutil.SlopedDip(wvl, 1000, depth, 60, 0.5, 1e-3)
		testutil.AddInPlace(spectrum, testutil.DeterministicNoise(int64(depth*10), 0.001, len(spectrum)))

		for _, radius := range []int{0, 2, 5} {
			res, err := Remove(axis, spectrum, axis.Full(), Config{Method: DoubleLineMethod, SearchRadius: radius})
			if err != nil {
				t.Fatalf("depth=%v radius=%d: %v", depth, radius, err)
			}

			for _, a := range []Anchor{res.Low, res.High} {
				if math.Abs(res.Values[a.Index]-1) > 1e-12 {
					t.Fatalf("anchor %d normalized to %v", a.Index, res.Values[a.Index])
				}
				if got := res.Continuum[a.Index-res.Window.Low]; math.Abs(got-a.Value) > 1e-12 {
					t.Fatalf("continuum at anchor %d = %v, want %v", a.Index, got, a.Value)
				}
			}

			center := 20
			if math.Abs(res.Values[center]-(1-depth)) > 0.02 {
				t.Fatalf("depth=%v: removed value at center = %v", depth, res.Values[center])
			}
		}
	}
}

func TestDoubleLineAnchorSearch(t *testing.T) {
	axis := mustAxis(t, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9})
	spectrum := []float64{0.9, 1.0, 0.95, 0.8, 0.7, 0.8, 0.95, 1.1, 1.0}

	res, err := Remove(axis, spectrum, axis.Full(), DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	if res.Low.Index != 1 || res.High.Index != 7 {
		t.Fatalf("anchors = %d, %d, want 1, 7", res.Low.Index, res.High.Index)
	}
	if res.Low.Wavelength != 2 || res.High.Value != 1.1 {
		t.Fatalf("unexpected anchors %+v %+v", res.Low, res.High)
	}

	// Samples outside the anchors are divided by the extrapolated line.
	want0 := 0.9 / (1.0 - 0.1/6)
	if math.Abs(res.Values[0]-want0) > 1e-12 {
		t.Fatalf("Values[0] = %v, want %v", res.Values[0], want0)
	}

	// Radius 0 pins the anchors to the boundaries.
	res, err = Remove(axis, spectrum, axis.Full(), Config{Method: DoubleLineMethod})
	if err != nil {
		t.Fatal(err)
	}
	if res.Low.Index != 0 || res.High.Index != 8 {
		t.Fatalf("radius 0 anchors = %d, %d", res.Low.Index, res.High.Index)
	}
}

func TestDoubleLineMonotonicFallback(t *testing.T) {
	wvl := testutil.Linspace(1, 10, 10)
	axis := mustAxis(t, wvl)
	spectrum := testutil.Linspace(1, 10, 10)

	window, err := axis.ResolveWindow(3, 8, wavelength.Nanometer)
	if err != nil {
		t.Fatal(err)
	}

	res, err := Remove(axis, spectrum, window, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if res.Low.Index != window.Low || res.High.Index != window.High {
		t.Fatalf("fallback anchors = %d, %d, want %d, %d", res.Low.Index, res.High.Index, window.Low, window.High)
	}
	testutil.RequireSliceNearlyEqual(t, res.Values[window.Low:window.High+1], testutil.Ones(window.Len()), 1e-12)
}

func TestRemovePassesThroughOutsideWindow(t *testing.T) {
	wvl := testutil.Linspace(800, 1200, 41)
	axis := mustAxis(t, wvl)
	spectrum := testutil.SlopedDip(wvl, 1000, 0.3, 40, 0.4, 5e-4)
	original := append([]float64(nil), spectrum...)

	window, err := axis.ResolveWindow(900, 1100, wavelength.Nanometer)
	if err != nil {
		t.Fatal(err)
	}

	for _, cfg := range []Config{DefaultConfig(), {Method: ConvexHullMethod}} {
		res, err := Remove(axis, spectrum, window, cfg)
		if err != nil {
			t.Fatal(err)
		}
		testutil.RequireSliceEqual(t, res.Values[:window.Low], spectrum[:window.Low])
		testutil.RequireSliceEqual(t, res.Values[window.High+1:], spectrum[window.High+1:])
		if len(res.Continuum) != window.Len() {
			t.Fatalf("continuum length %d, want %d", len(res.Continuum), window.Len())
		}
	}
	testutil.RequireSliceEqual(t, spectrum, original)
}

func TestRemoveToInPlace(t *testing.T) {
	wvl := testutil.Linspace(800, 1200, 41)
	axis := mustAxis(t, wvl)
	spectrum := testutil.SlopedDip(wvl, 1000, 0.3, 40, 0.4, 5e-4)

	want, err := Remove(axis, spectrum, axis.Full(), DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := RemoveTo(spectrum, nil, axis, spectrum, axis.Full(), DefaultConfig()); err != nil {
		t.Fatal(err)
	}
	testutil.RequireSliceEqual(t, spectrum, want.Values)
}

func TestConvexHull(t *testing.T) {
	axis := mustAxis(t, []float64{1, 2, 3, 4, 5})
	spectrum := []float64{1, 0.8, 1.2, 0.9, 1.0}

	res, err := Remove(axis, spectrum, axis.Full(), Config{Method: ConvexHullMethod})
	if err != nil {
		t.Fatal(err)
	}

	testutil.RequireSliceNearlyEqual(t, res.Continuum, []float64{1, 1.1, 1.2, 1.1, 1.0}, 1e-12)
	testutil.RequireSliceNearlyEqual(t, res.Values, []float64{1, 0.8 / 1.1, 1, 0.9 / 1.1, 1}, 1e-12)
	if res.Low.Index != 0 || res.High.Index != 4 {
		t.Fatalf("hull anchors = %d, %d", res.Low.Index, res.High.Index)
	}
}

func TestConvexHullNeverExceedsOne(t *testing.T) {
	wvl := testutil.Linspace(400, 2400, 201)
	axis := mustAxis(t, wvl)
	spectrum := testutil.SlopedDip(wvl, 1400, 0.4, 120, 0.3, 2e-4)
	testutil.AddInPlace(spectrum, testutil.DeterministicNoise(4, 0.005, len(spectrum)))

	res, err := Remove(axis, spectrum, axis.Full(), Config{Method: ConvexHullMethod})
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range res.Values {
		if v > 1+1e-12 {
			t.Fatalf("Values[%d] = %v above hull", i, v)
		}
	}
}

func TestUpperHull(t *testing.T) {
	x := []float64{0, 1, 2, 3, 4}
	y := []float64{0, 1, 2, 1, 0}
	got := upperHull(x, y)
	want := []int{0, 2, 4}
	if len(got) != len(want) {
		t.Fatalf("hull = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("hull = %v, want %v", got, want)
		}
	}
}

func TestDegenerate(t *testing.T) {
	axis := mustAxis(t, []float64{1, 2, 3, 4, 5})

	t.Run("anchors coincide", func(t *testing.T) {
		window := wavelength.Window{Low: 3, High: 4, LowWavelength: 4, HighWavelength: 5}
		_, err := Remove(axis, []float64{1, 1, 1, 1, 2}, window, DefaultConfig())
		if !errors.Is(err, ErrDegenerate) {
			t.Fatalf("expected ErrDegenerate, got %v", err)
		}
		var de *DegenerateError
		if !errors.As(err, &de) || de.Index != -1 || de.Low.Index != 4 {
			t.Fatalf("unexpected error context: %+v", err)
		}
	})

	t.Run("single sample", func(t *testing.T) {
		window := wavelength.Window{Low: 2, High: 2, LowWavelength: 3, HighWavelength: 3}
		for _, cfg := range []Config{DefaultConfig(), {Method: ConvexHullMethod}} {
			_, err := Remove(axis, []float64{1, 1, 1, 1, 1}, window, cfg)
			if !errors.Is(err, ErrDegenerate) {
				t.Fatalf("%v: expected ErrDegenerate, got %v", cfg.Method, err)
			}
		}
	})

	t.Run("non-positive continuum", func(t *testing.T) {
		_, err := Remove(axis, []float64{-1, -1, -1, -1, -1}, axis.Full(), DefaultConfig())
		var de *DegenerateError
		if !errors.As(err, &de) {
			t.Fatalf("expected *DegenerateError, got %v", err)
		}
		if de.Index != 0 || de.Value != -1 {
			t.Fatalf("unexpected error context: %+v", de)
		}
	})

	t.Run("non-finite continuum", func(t *testing.T) {
		_, err := Remove(axis, []float64{math.NaN(), 1, 1, 1, 1}, axis.Full(), Config{Method: DoubleLineMethod})
		if !errors.Is(err, ErrDegenerate) {
			t.Fatalf("expected ErrDegenerate, got %v", err)
		}
	})
}

func TestRemoveErrors(t *testing.T) {
	axis := mustAxis(t, []float64{1, 2, 3})

	if _, err := Remove(axis, []float64{1, 2}, axis.Full(), DefaultConfig()); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}
	bad := wavelength.Window{Low: 1, High: 3}
	if _, err := Remove(axis, []float64{1, 2, 3}, bad, DefaultConfig()); !errors.Is(err, ErrWindowOutOfAxis) {
		t.Fatalf("expected ErrWindowOutOfAxis, got %v", err)
	}
}
