package conv

import (
	"fmt"
	"math"
	"testing"
)

// Benchmark direct convolution at typical spectrometer band counts.
func BenchmarkDirect(b *testing.B) {
	sizes := []struct {
		signal int
		kernel int
	}{
		{85, 5},
		{256, 7},
		{256, 31},
		{432, 15},
		{4096, 63},
	}

	for _, size := range sizes {
		signal := makeTestSignal(size.signal)
		kernel := makeTestKernel(size.kernel)

		b.Run(fmt.Sprintf("signal=%d_kernel=%d", size.signal, size.kernel), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_, _ = Direct(signal, kernel)
			}
		})
	}
}

// Benchmark the reflect-padded path used by spectral smoothing.
func BenchmarkConvolveReflect(b *testing.B) {
	sizes := []struct {
		signal int
		kernel int
	}{
		{85, 5},
		{432, 15},
		{4096, 63},
		{4096, 129},
	}

	for _, size := range sizes {
		signal := makeTestSignal(size.signal)
		kernel := makeTestKernel(size.kernel)

		b.Run(fmt.Sprintf("signal=%d_kernel=%d", size.signal, size.kernel), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_, _ = ConvolveReflect(signal, kernel)
			}
		})
	}
}

// Helper to create test signals.
func makeTestSignal(n int) []float64 {
	signal := make([]float64, n)
	for i := range signal {
		signal[i] = 0.5 + 0.1*math.Sin(2*math.Pi*float64(i)/100) + 0.01*math.Cos(2*math.Pi*float64(i)/3)
	}
	return signal
}

// Helper to create normalized box kernels.
func makeTestKernel(n int) []float64 {
	kernel := make([]float64, n)
	for i := range kernel {
		kernel[i] = 1 / float64(n)
	}
	return kernel
}
