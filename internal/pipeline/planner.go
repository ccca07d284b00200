package pipeline

import (
	"math"

	"github.com/vrnd369/compressing/internal/domain"
)

// Plan computes the output dimensions for a source of the given size under
// cfg. It never upscales and never returns a dimension below 1. With
// MaintainAspectRatio the binding dimension is clamped first and the other
// follows the source ratio, re-clamped if it still overshoots; without it
// each dimension is clamped independently, which may distort.
func Plan(width, height int, cfg domain.TransformConfig) (int, int) {
	if cfg.PreserveDimensions {
		return width, height
	}
	if width < 1 || height < 1 {
		return width, height
	}
	if !cfg.MaintainAspectRatio {
		return min(width, cfg.MaxWidth), min(height, cfg.MaxHeight)
	}
	if width <= cfg.MaxWidth && height <= cfg.MaxHeight {
		return width, height
	}

	ratio := float64(width) / float64(height)
	if width > height {
		w := min(width, cfg.MaxWidth)
		h := roundDim(float64(w) / ratio)
		if h > cfg.MaxHeight {
			h = cfg.MaxHeight
			w = roundDim(float64(h) * ratio)
		}
		return w, h
	}

	h := min(height, cfg.MaxHeight)
	w := roundDim(float64(h) * ratio)
	if w > cfg.MaxWidth {
		w = cfg.MaxWidth
		h = roundDim(float64(w) / ratio)
	}
	return w, h
}

func roundDim(v float64) int {
	n := int(math.Round(v))
	if n < 1 {
		return 1
	}
	return n
}
