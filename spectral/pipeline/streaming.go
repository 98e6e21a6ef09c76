package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cwbudde/algo-spectral/dsp/core"
	"github.com/cwbudde/algo-spectral/internal/monitoring"
	"github.com/cwbudde/algo-spectral/spectral/absorption"
	"github.com/cwbudde/algo-spectral/spectral/continuum"
	"github.com/cwbudde/algo-spectral/spectral/cube"
	"github.com/cwbudde/algo-spectral/spectral/outlier"
	"github.com/cwbudde/algo-spectral/spectral/smooth"
	"github.com/cwbudde/algo-spectral/spectral/wavelength"
	"github.com/google/uuid"
)

// DefaultMemoryBudget is the chunk buffer budget used without
// WithMemoryBudget.
const DefaultMemoryBudget = 256 << 20

const (
	bytesPerSample = 8
	// Every chunk holds an input and an output sample plus one mask byte per
	// value.
	bytesPerValue = 2*bytesPerSample + 1
)

// State is the position of a Streaming processor in its run cycle.
type State int

const (
	Idle State = iota
	Reading
	Processing
	Writing
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Reading:
		return "reading"
	case Processing:
		return "processing"
	case Writing:
		return "writing"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Transition is a state change. Chunk is the chunk index for Reading,
// Processing and Writing, and -1 otherwise.
type Transition struct {
	From, To State
	Chunk    int
}

// StreamOption configures a Streaming processor.
type StreamOption func(*streamConfig)

type streamConfig struct {
	budget    int
	chunkRows int
	workers   int
	masks     cube.MaskWriter
	observer  func(Transition)
}

// WithMemoryBudget bounds the bytes held by the input, output and mask chunk
// buffers.
func WithMemoryBudget(bytes int) StreamOption {
	return func(c *streamConfig) {
		c.budget = bytes
	}
}

// WithChunkRows fixes the rows per chunk, overriding the memory budget.
func WithChunkRows(n int) StreamOption {
	return func(c *streamConfig) {
		c.chunkRows = n
	}
}

// WithStreamWorkers bounds the rows processed concurrently within a chunk.
// Values below 1 select GOMAXPROCS.
func WithStreamWorkers(n int) StreamOption {
	return func(c *streamConfig) {
		c.workers = n
	}
}

// WithMaskStore receives the outlier mask of every chunk an outlier stage
// runs on.
func WithMaskStore(w cube.MaskWriter) StreamOption {
	return func(c *streamConfig) {
		c.masks = w
	}
}

// WithObserver registers fn for every state transition. fn runs
// synchronously on the goroutine driving the run; starting another run from
// it fails with ErrBusy.
func WithObserver(fn func(Transition)) StreamOption {
	return func(c *streamConfig) {
		c.observer = fn
	}
}

// Streaming processes a cube too large for memory in chunks of whole rows.
// The first pass reads the source store; every pass writes, and later passes
// read, the destination store. Chunks are processed strictly in order and
// each is written before the next is read.
//
// Only one run may be in progress at a time; a second one fails with
// ErrBusy. A run that fails before writing a chunk leaves both stores as they
// were. A failed first pass only ever reads the source, so it may be rerun.
// A later pass that fails after writing has overwritten the data it was
// reading: every following run fails with ErrStoreInvalid until Reset
// restarts the chain from the source store.
type Streaming struct {
	axis      *wavelength.Axis
	src       cube.Reader
	dst       cube.Store
	shape     cube.Shape
	cfg       streamConfig
	chunkRows int
	pool      *chunkPool

	mu      sync.Mutex
	state   State
	running bool
	invalid bool
	passes  int
	stage   Stage
	windows []wavelength.Window
	noise   []float64
}

// NewStreaming returns a processor reading src and writing dst, which must
// have the same shape with one band per axis sample.
func NewStreaming(axis *wavelength.Axis, src cube.Reader, dst cube.Store, opts ...StreamOption) (*Streaming, error) {
	if axis == nil || src == nil || dst == nil {
		return nil, errors.New("pipeline: nil axis or store")
	}

	shape := src.Shape()
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if dst.Shape() != shape {
		return nil, fmt.Errorf("%w: source %v, destination %v", cube.ErrShape, shape, dst.Shape())
	}
	if shape.Bands != axis.Len() {
		return nil, fmt.Errorf("%w: %d bands, axis has %d", ErrAxisMismatch, shape.Bands, axis.Len())
	}

	cfg := streamConfig{budget: DefaultMemoryBudget}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.workers < 1 {
		cfg.workers = defaultWorkers()
	}

	rows, err := chunkRows(cfg, shape)
	if err != nil {
		return nil, err
	}

	return &Streaming{
		axis:      axis,
		src:       src,
		dst:       dst,
		shape:     shape,
		cfg:       cfg,
		chunkRows: rows,
		pool:      newChunkPool(),
	}, nil
}

// chunkRows sizes chunks so that the input, output and mask buffers fit the
// budget.
func chunkRows(cfg streamConfig, shape cube.Shape) (int, error) {
	if cfg.chunkRows != 0 {
		if cfg.chunkRows < 0 {
			return 0, fmt.Errorf("pipeline: invalid chunk rows %d", cfg.chunkRows)
		}
		return min(cfg.chunkRows, shape.Rows), nil
	}

	perRow := shape.RowLen() * bytesPerValue
	rows := cfg.budget / perRow
	if rows < 1 {
		return 0, fmt.Errorf("%w: budget %d bytes, one row needs %d", ErrBudgetTooSmall, cfg.budget, perRow)
	}
	return min(rows, shape.Rows), nil
}

// Axis returns the wavelength axis.
func (s *Streaming) Axis() *wavelength.Axis {
	return s.axis
}

// ChunkRows returns the rows per chunk.
func (s *Streaming) ChunkRows() int {
	return s.chunkRows
}

// Chunks returns the number of chunks per pass.
func (s *Streaming) Chunks() int {
	return (s.shape.Rows + s.chunkRows - 1) / s.chunkRows
}

// State returns the current state.
func (s *Streaming) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Stage returns the last stage written to the destination store.
func (s *Streaming) Stage() Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

// Noise returns the rows×cols image of mean local noise from the last
// completed noise reduction, or nil before it.
func (s *Streaming) Noise() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.Clone(s.noise)
}

// Reset discards the results of earlier passes so that the next run reads the
// source store again. It clears ErrStoreInvalid after a failed pass.
func (s *Streaming) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrBusy
	}
	s.invalid = false
	s.passes = 0
	s.stage = Raw
	s.windows = nil
	s.noise = nil
	s.state = Idle
	return nil
}

// RemoveOutliers implements Pipeline.
func (s *Streaming) RemoveOutliers(ctx context.Context, cfg outlier.Config) (Report, error) {
	return s.Run(ctx, OutlierRemoval(cfg))
}

// ReduceNoise implements Pipeline.
func (s *Streaming) ReduceNoise(ctx context.Context, cfg smooth.Config) (Report, error) {
	return s.Run(ctx, NoiseReduction(cfg))
}

// RemoveContinuum implements Pipeline.
func (s *Streaming) RemoveContinuum(ctx context.Context, cfg continuum.Config, low, high float64, unit wavelength.Unit) (Report, error) {
	return s.Run(ctx, ContinuumRemoval(cfg, low, high, unit))
}

// Run applies ops to every chunk in one pass. Cancellation is observed
// between chunks; a chunk that has been read is always processed and written
// in full. On failure the chunks already written stay in the destination
// store.
func (s *Streaming) Run(ctx context.Context, ops ...Op) (Report, error) {
	ks, err := compileAll(s.axis, ops)
	if err != nil {
		return Report{}, err
	}
	if err := s.begin(); err != nil {
		return Report{}, err
	}

	runID := uuid.NewString()
	rep, noise, written, err := s.pass(ctx, runID, ks)
	s.finish(runID, err, written, func() {
		s.passes++
		for _, k := range ks {
			s.stage = k.op.stage
			if k.op.stage == ContinuumRemoved {
				s.windows = append(s.windows, k.window)
			}
		}
		if noise != nil {
			s.noise = noise
		}
	})
	if err != nil {
		return Report{}, err
	}

	rep.Stage = ks[len(ks)-1].op.stage
	return rep, nil
}

// pass returns the number of chunks whose write was started, including a
// chunk whose write failed.
func (s *Streaming) pass(ctx context.Context, runID string, ks []*kernel) (Report, []float64, int, error) {
	in := s.reader()
	// A started chunk runs to completion regardless of cancellation.
	work := context.WithoutCancel(ctx)
	rl := s.shape.RowLen()
	chunks := s.Chunks()
	stage := ks[0].op.stage

	monitoring.Logf("pipeline: run %s: %v over %v in %d chunks of %d rows", runID, stage, s.shape, chunks, s.chunkRows)

	var noise []float64
	if hasStage(ks, Filtered) {
		noise = make([]float64, s.shape.Pixels())
	}
	withMask := hasStage(ks, OutliersRemoved)

	rep := Report{Pixels: s.shape.Pixels(), Chunks: chunks, RunID: runID}
	for _, k := range ks {
		if k.op.stage == ContinuumRemoved {
			rep.Window = k.window
		}
	}

	for i := 0; i < chunks; i++ {
		if err := ctx.Err(); err != nil {
			return Report{}, nil, i, fmt.Errorf("pipeline: run %s before chunk %d: %w", runID, i, err)
		}

		first := i * s.chunkRows
		n := min(s.chunkRows, s.shape.Rows-first)
		chunkErr := func(stage Stage, err error) error {
			return &ChunkError{Chunk: i, FirstRow: first, Rows: n, Stage: stage, Err: err}
		}

		inBuf := s.pool.getFloats(n * rl)
		outBuf := s.pool.getFloats(n * rl)
		var maskBuf *[]bool
		var mask []bool
		if withMask {
			maskBuf = s.pool.getBools(n * rl)
			mask = *maskBuf
		}
		release := func() {
			s.pool.putFloats(inBuf)
			s.pool.putFloats(outBuf)
			s.pool.putBools(maskBuf)
		}

		s.transition(Reading, i)
		if err := in.ReadRows(work, first, n, *inBuf); err != nil {
			release()
			return Report{}, nil, i, chunkErr(stage, fmt.Errorf("read: %w", err))
		}

		s.transition(Processing, i)
		b := block{firstRow: first, rows: n, cols: s.shape.Cols, bands: s.shape.Bands}
		var chunkNoise []float64
		if noise != nil {
			chunkNoise = noise[first*s.shape.Cols : (first+n)*s.shape.Cols]
		}
		replaced, err := runKernels(work, ks, b, *inBuf, *outBuf, mask, chunkNoise, s.cfg.workers)
		if err != nil {
			release()
			var pe *PixelError
			if errors.As(err, &pe) {
				return Report{}, nil, i, chunkErr(pe.Stage, err)
			}
			return Report{}, nil, i, chunkErr(stage, err)
		}
		rep.Replaced += replaced

		s.transition(Writing, i)
		if err := s.dst.WriteRows(work, first, n, *outBuf); err != nil {
			release()
			return Report{}, nil, i + 1, chunkErr(stage, fmt.Errorf("write: %w", err))
		}
		if withMask && s.cfg.masks != nil {
			if err := s.cfg.masks.WriteMaskRows(work, first, n, mask); err != nil {
				release()
				return Report{}, nil, i + 1, chunkErr(OutliersRemoved, fmt.Errorf("write mask: %w", err))
			}
		}
		release()
	}

	return rep, noise, chunks, nil
}

// FitAbsorption implements Pipeline by streaming chunks of the current data
// into a map. Nothing is written to the destination store.
func (s *Streaming) FitAbsorption(ctx context.Context, low, high float64, unit wavelength.Unit, degree int) (*absorption.Map, error) {
	s.mu.Lock()
	windows := append([]wavelength.Window(nil), s.windows...)
	s.mu.Unlock()

	f, err := newFitter(s.axis, windows, low, high, unit, degree)
	if err != nil {
		return nil, err
	}
	if err := s.begin(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	m, err := s.fitPass(ctx, runID, f)
	s.finish(runID, err, 0, nil)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Streaming) fitPass(ctx context.Context, runID string, f *fitter) (*absorption.Map, error) {
	in := s.reader()
	work := context.WithoutCancel(ctx)
	rl := s.shape.RowLen()
	chunks := s.Chunks()

	monitoring.Logf("pipeline: run %s: %v over %v in %d chunks of %d rows", runID, AbsorptionFit, s.shape, chunks, s.chunkRows)

	m := absorption.NewMap(s.shape.Rows, s.shape.Cols, f.fit)
	for i := 0; i < chunks; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("pipeline: run %s before chunk %d: %w", runID, i, err)
		}

		first := i * s.chunkRows
		n := min(s.chunkRows, s.shape.Rows-first)
		buf := s.pool.getFloats(n * rl)

		s.transition(Reading, i)
		if err := in.ReadRows(work, first, n, *buf); err != nil {
			s.pool.putFloats(buf)
			return nil, &ChunkError{Chunk: i, FirstRow: first, Rows: n, Stage: AbsorptionFit, Err: fmt.Errorf("read: %w", err)}
		}

		s.transition(Processing, i)
		b := block{firstRow: first, rows: n, cols: s.shape.Cols, bands: s.shape.Bands}
		err := fitKernels(work, f, b, *buf, m, s.cfg.workers)
		s.pool.putFloats(buf)
		if err != nil {
			return nil, &ChunkError{Chunk: i, FirstRow: first, Rows: n, Stage: AbsorptionFit, Err: err}
		}
	}

	return m, nil
}

// reader returns the store holding the current data.
func (s *Streaming) reader() cube.Reader {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.passes == 0 {
		return s.src
	}
	return s.dst
}

func (s *Streaming) begin() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrBusy
	}
	if s.invalid {
		s.mu.Unlock()
		return ErrStoreInvalid
	}
	s.running = true
	s.mu.Unlock()
	return nil
}

// finish records the outcome of a run. commit runs under the lock on
// success. A failed pass that wrote to the destination while reading it
// invalidates the processor.
func (s *Streaming) finish(runID string, err error, written int, commit func()) {
	s.mu.Lock()
	s.running = false
	if err == nil && commit != nil {
		commit()
	}
	if err != nil && written > 0 && s.passes > 0 {
		s.invalid = true
	}
	s.mu.Unlock()

	if err != nil {
		monitoring.Logf("pipeline: run %s failed: %v", runID, err)
		s.transition(Failed, -1)
		return
	}
	monitoring.Logf("pipeline: run %s done", runID)
	s.transition(Done, -1)
}

func (s *Streaming) transition(to State, chunk int) {
	s.mu.Lock()
	from := s.state
	s.state = to
	s.mu.Unlock()

	if s.cfg.observer != nil {
		s.cfg.observer(Transition{From: from, To: to, Chunk: chunk})
	}
}
