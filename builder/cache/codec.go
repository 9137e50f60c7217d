package cache

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// codec compresses descriptor bodies. EncodeAll and DecodeAll are safe for
// concurrent use.
type codec struct {
	fast    *zstd.Encoder
	best    *zstd.Encoder
	decoder *zstd.Decoder
}

func newCodec() (*codec, error) {
	fast, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}

	best, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		_ = fast.Close()
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		_ = fast.Close()
		_ = best.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	return &codec{fast: fast, best: best, decoder: decoder}, nil
}

func (c *codec) Close() {
	_ = c.fast.Close()
	_ = c.best.Close()
	c.decoder.Close()
}

// compress picks a compression tier by size.
func (c *codec) compress(data []byte) ([]byte, CompressionType) {
	switch {
	case len(data) < RawThreshold:
		return data, CompressionNone
	case len(data) <= FastZstdMax:
		return c.fast.EncodeAll(data, make([]byte, 0, len(data)/2)), CompressionZstdFast
	default:
		return c.best.EncodeAll(data, make([]byte, 0, len(data)/2)), CompressionZstdDefault
	}
}

func (c *codec) decompress(data []byte, ct CompressionType) ([]byte, error) {
	if ct == CompressionNone {
		return data, nil
	}
	out, err := c.decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress body: %w", err)
	}
	return out, nil
}
