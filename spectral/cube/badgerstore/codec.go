package badgerstore

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/klauspost/compress/zstd"
)

// codec compresses rows. Encoder and decoder are safe for concurrent use.
type codec struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func newCodec(level int) (*codec, error) {
	encLevel := zstd.SpeedDefault
	switch level {
	case 1:
		encLevel = zstd.SpeedFastest
	case 2:
		encLevel = zstd.SpeedDefault
	case 3:
		encLevel = zstd.SpeedBetterCompression
	case 4:
		encLevel = zstd.SpeedBestCompression
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(encLevel))
	if err != nil {
		return nil, fmt.Errorf("badgerstore: create encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		return nil, fmt.Errorf("badgerstore: create decoder: %w", err)
	}

	return &codec{encoder: encoder, decoder: decoder}, nil
}

// encodeValues XORs each value's bits with its predecessor and compresses.
func (c *codec) encodeValues(values []float64) []byte {
	raw := make([]byte, 8*len(values))
	var prev uint64
	for i, v := range values {
		bits := math.Float64bits(v)
		binary.LittleEndian.PutUint64(raw[8*i:], bits^prev)
		prev = bits
	}
	return c.encoder.EncodeAll(raw, make([]byte, 0, len(raw)/2))
}

// decodeValues reverses encodeValues into dst.
func (c *codec) decodeValues(data []byte, dst []float64) error {
	raw, err := c.decoder.DecodeAll(data, make([]byte, 0, 8*len(dst)))
	if err != nil {
		return fmt.Errorf("badgerstore: decompress: %w", err)
	}
	if len(raw) != 8*len(dst) {
		return fmt.Errorf("%w: %d bytes for %d values", ErrCorrupt, len(raw), len(dst))
	}

	var prev uint64
	for i := range dst {
		bits := binary.LittleEndian.Uint64(raw[8*i:]) ^ prev
		dst[i] = math.Float64frombits(bits)
		prev = bits
	}
	return nil
}

// encodeMask packs mask bits LSB first and compresses.
func (c *codec) encodeMask(mask []bool) []byte {
	raw := make([]byte, (len(mask)+7)/8)
	for i, m := range mask {
		if m {
			raw[i/8] |= 1 << (i % 8)
		}
	}
	return c.encoder.EncodeAll(raw, nil)
}

func (c *codec) decodeMask(data []byte, dst []bool) error {
	raw, err := c.decoder.DecodeAll(data, nil)
	if err != nil {
		return fmt.Errorf("badgerstore: decompress mask: %w", err)
	}
	if len(raw) != (len(dst)+7)/8 {
		return fmt.Errorf("%w: %d mask bytes for %d samples", ErrCorrupt, len(raw), len(dst))
	}

	for i := range dst {
		dst[i] = raw[i/8]&(1<<(i%8)) != 0
	}
	return nil
}

func (c *codec) close() {
	c.encoder.Close()
	c.decoder.Close()
}
