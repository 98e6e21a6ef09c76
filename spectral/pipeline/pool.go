package pipeline

import (
	"sync"

	"github.com/cwbudde/algo-spectral/dsp/core"
)

// chunkPool reuses chunk buffers across chunks and runs to reduce GC
// pressure when streaming large cubes.
type chunkPool struct {
	floats sync.Pool
	bools  sync.Pool
}

func newChunkPool() *chunkPool {
	return &chunkPool{
		floats: sync.Pool{New: func() any { return new([]float64) }},
		bools:  sync.Pool{New: func() any { return new([]bool) }},
	}
}

// getFloats returns a buffer of length n. Its contents are undefined.
func (p *chunkPool) getFloats(n int) *[]float64 {
	b := p.floats.Get().(*[]float64)
	*b = core.EnsureLen(*b, n)
	return b
}

func (p *chunkPool) putFloats(b *[]float64) {
	if b != nil {
		p.floats.Put(b)
	}
}

// getBools returns a zeroed buffer of length n.
func (p *chunkPool) getBools(n int) *[]bool {
	b := p.bools.Get().(*[]bool)
	*b = core.EnsureBoolLen(*b, n)
	return b
}

func (p *chunkPool) putBools(b *[]bool) {
	if b != nil {
		p.bools.Put(b)
	}
}
