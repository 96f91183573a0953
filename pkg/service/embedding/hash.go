package embedding

import (
	"context"
	"math"

	"github.com/secmon-lab/augur/pkg/domain/interfaces"
	"github.com/secmon-lab/augur/pkg/domain/model"
)

// HashEncoder is a deterministic placeholder encoder that needs no model.
// Each rune adds its code point to the bucket of its position modulo the
// dimension, and the result is normalised to unit length.
type HashEncoder struct {
	dim int
}

var _ interfaces.Encoder = &HashEncoder{}

type Option func(*HashEncoder)

// WithDimension overrides the vector size. Non-positive values are ignored.
func WithDimension(dim int) Option {
	return func(h *HashEncoder) {
		if dim > 0 {
			h.dim = dim
		}
	}
}

func NewHashEncoder(opts ...Option) *HashEncoder {
	h := &HashEncoder{dim: model.HashEmbeddingDimension}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *HashEncoder) Dimension() int {
	return h.dim
}

func (h *HashEncoder) Embed(ctx context.Context, text string) (model.Embedding, error) {
	vec := make([]float64, h.dim)
	i := 0
	for _, r := range text {
		vec[i%h.dim] += float64(r) / 1000
		i++
	}

	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	mag := math.Sqrt(sum)

	out := make(model.Embedding, h.dim)
	for j, v := range vec {
		if mag > 0 {
			v /= mag
		}
		out[j] = float32(v)
	}
	return out, nil
}
