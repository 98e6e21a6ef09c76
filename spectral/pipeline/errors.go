package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrChunk matches every *ChunkError.
	ErrChunk = errors.New("pipeline: streaming chunk failed")
	// ErrAxisMismatch is returned when data does not match the axis length.
	ErrAxisMismatch = errors.New("pipeline: data does not match wavelength axis")
	// ErrBudgetTooSmall is returned when the memory budget cannot hold the
	// chunk buffers of a single row.
	ErrBudgetTooSmall = errors.New("pipeline: memory budget below one row")
	// ErrNoStages is returned by Run without stages.
	ErrNoStages = errors.New("pipeline: no stages")
	// ErrBusy is returned when a streaming run is started while another is
	// in progress.
	ErrBusy = errors.New("pipeline: streaming run in progress")
	// ErrStoreInvalid is returned by a streaming run after an earlier pass
	// failed part way through rewriting the destination store.
	ErrStoreInvalid = errors.New("pipeline: destination store holds a partially written pass")
)

// PixelError locates a per-pixel failure in a cube.
type PixelError struct {
	Row, Col int
	Stage    Stage
	Err      error
}

func (e *PixelError) Error() string {
	return fmt.Sprintf("pipeline: %v at pixel (%d, %d): %v", e.Stage, e.Row, e.Col, e.Err)
}

func (e *PixelError) Unwrap() error {
	return e.Err
}

// ChunkError reports a failed streaming chunk. Chunks before Chunk have
// already been written to the output store and are not rolled back, so the
// output of a failed run is partial.
type ChunkError struct {
	Chunk    int
	FirstRow int
	Rows     int
	Stage    Stage
	Err      error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("pipeline: chunk %d (rows %d-%d) %v: %v",
		e.Chunk, e.FirstRow, e.FirstRow+e.Rows-1, e.Stage, e.Err)
}

func (e *ChunkError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrChunk) match any *ChunkError.
func (e *ChunkError) Is(target error) bool {
	return target == ErrChunk
}
