package smooth

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-spectral/dsp/conv"
	"github.com/cwbudde/algo-spectral/dsp/core"
	"github.com/cwbudde/algo-vecmath"
)

// Method selects the smoothing kernel.
type Method int

const (
	// BoxFilterMethod is a uniform moving average.
	BoxFilterMethod Method = iota
	// SavitzkyGolayMethod is a local least-squares polynomial smoother.
	SavitzkyGolayMethod
)

func (m Method) String() string {
	switch m {
	case BoxFilterMethod:
		return "box_filter"
	case SavitzkyGolayMethod:
		return "savitzky_golay"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// DefaultWidth is the width used by DefaultConfig.
const DefaultWidth = 5

// Config selects a method and its parameters.
type Config struct {
	Method Method
	// Width is the odd kernel width in samples; 1 disables filtering.
	Width int
	// PolyOrder is the local polynomial order for Savitzky-Golay.
	PolyOrder int
}

// DefaultConfig returns a box filter of DefaultWidth samples.
func DefaultConfig() Config {
	return BoxFilter(DefaultWidth)
}

// BoxFilter returns a moving-average configuration.
func BoxFilter(width int) Config {
	return Config{Method: BoxFilterMethod, Width: width}
}

// SavitzkyGolay returns a Savitzky-Golay configuration.
func SavitzkyGolay(width, order int) Config {
	return Config{Method: SavitzkyGolayMethod, Width: width, PolyOrder: order}
}

// Validate checks the configuration against a spectrum of n samples.
func (c Config) Validate(n int) error {
	if c.Method != BoxFilterMethod && c.Method != SavitzkyGolayMethod {
		return fmt.Errorf("%w: %v", ErrUnknownMethod, c.Method)
	}

	werr := func(reason string) error {
		return &WidthError{Method: c.Method, Width: c.Width, Order: c.PolyOrder, Length: n, Reason: reason}
	}

	switch {
	case c.Width%2 == 0:
		return werr("width must be odd")
	case c.Width < 1:
		return werr("width must be positive")
	case c.Width > n:
		return werr("width exceeds spectrum length")
	case c.Width == 1:
		return nil
	case c.Width < 3:
		return werr("width must be at least 3")
	}

	if c.Method == SavitzkyGolayMethod && (c.PolyOrder < 0 || c.PolyOrder >= c.Width) {
		return werr(fmt.Sprintf("polynomial order %d must be in [0, width)", c.PolyOrder))
	}

	return nil
}

// Smoother applies one configuration to spectra of a fixed length.
// It is safe for concurrent use.
type Smoother struct {
	cfg    Config
	n      int
	kernel []float64
	filter *conv.Reflector
	box    *conv.Reflector
}

// New validates cfg for spectra of n samples and precomputes the kernel.
func New(cfg Config, n int) (*Smoother, error) {
	if err := cfg.Validate(n); err != nil {
		return nil, err
	}

	k, err := kernelFor(cfg)
	if err != nil {
		return nil, err
	}
	s := &Smoother{cfg: cfg, n: n, kernel: k}
	if k == nil {
		return s, nil
	}

	if s.filter, err = conv.NewReflector(k); err != nil {
		return nil, fmt.Errorf("smooth: %w", err)
	}
	if s.box, err = conv.NewReflector(boxKernel(cfg.Width)); err != nil {
		return nil, fmt.Errorf("smooth: %w", err)
	}

	return s, nil
}

// kernelFor builds the convolution kernel of a validated cfg, nil for width 1.
func kernelFor(cfg Config) ([]float64, error) {
	switch {
	case cfg.Width == 1:
		return nil, nil
	case cfg.Method == SavitzkyGolayMethod:
		return savitzkyGolayKernel(cfg.Width, cfg.PolyOrder)
	default:
		return boxKernel(cfg.Width), nil
	}
}

// Config returns the configuration the smoother was built with.
func (s *Smoother) Config() Config {
	return s.cfg
}

// Kernel returns a copy of the convolution kernel, or nil for width 1.
func (s *Smoother) Kernel() []float64 {
	return core.Clone(s.kernel)
}

// Apply writes the smoothed src into dst. dst may alias src.
func (s *Smoother) Apply(dst, src []float64) error {
	if err := s.checkLen(dst, src); err != nil {
		return err
	}
	if s.kernel == nil {
		copy(dst, src)
		return nil
	}

	out, err := s.filter.Apply(src)
	if err != nil {
		return fmt.Errorf("smooth: %w", err)
	}
	copy(dst, out)

	return nil
}

// Noise writes the standard deviation of src over each reflect-padded
// filter window into dst. Width 1 yields zeros.
func (s *Smoother) Noise(dst, src []float64) error {
	if err := s.checkLen(dst, src); err != nil {
		return err
	}
	if s.box == nil {
		for i := range dst {
			dst[i] = 0
		}
		return nil
	}

	sq := make([]float64, len(src))
	vecmath.MulBlock(sq, src, src)

	mean, err := s.box.Apply(src)
	if err != nil {
		return fmt.Errorf("smooth: %w", err)
	}
	meanSq, err := s.box.Apply(sq)
	if err != nil {
		return fmt.Errorf("smooth: %w", err)
	}

	for i := range dst {
		v := meanSq[i] - mean[i]*mean[i]
		if v < 0 {
			v = 0
		}
		dst[i] = math.Sqrt(v)
	}

	return nil
}

func (s *Smoother) checkLen(dst, src []float64) error {
	if len(src) != s.n || len(dst) != s.n {
		return fmt.Errorf("%w: smoother=%d src=%d dst=%d", ErrLengthMismatch, s.n, len(src), len(dst))
	}
	return nil
}

// Filter smooths spectrum with cfg and returns a new slice. It convolves
// once without preparing a Smoother.
func Filter(spectrum []float64, cfg Config) ([]float64, error) {
	if err := cfg.Validate(len(spectrum)); err != nil {
		return nil, err
	}
	k, err := kernelFor(cfg)
	if err != nil {
		return nil, err
	}
	if k == nil {
		return core.Clone(spectrum), nil
	}

	out, err := conv.ConvolveReflect(spectrum, k)
	if err != nil {
		return nil, fmt.Errorf("smooth: %w", err)
	}

	return out, nil
}

// Noise returns the local standard deviation of spectrum over box windows of
// the given width.
func Noise(spectrum []float64, width int) ([]float64, error) {
	s, err := New(BoxFilter(width), len(spectrum))
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(spectrum))
	if err := s.Noise(out, spectrum); err != nil {
		return nil, err
	}

	return out, nil
}

func boxKernel(width int) []float64 {
	k := make([]float64, width)
	for i := range k {
		k[i] = 1 / float64(width)
	}
	return k
}
