package pipeline

import (
	"context"
	"errors"
	"math"

	"github.com/vrnd369/compressing/internal/domain"
)

var (
	ErrDecode = errors.New("decode failed")
	ErrEncode = errors.New("encode failed")
)

// Transformer turns one source image into encoded output bytes plus stats.
// Implementations validate nothing; callers pass an already-validated config.
type Transformer interface {
	Transform(ctx context.Context, src domain.SourceImage, cfg domain.TransformConfig) ([]byte, domain.Stats, error)
}

// encoderQuality maps the config's [0, 1] quality fraction onto the 1-100
// scale shared by the jpeg and webp encoders.
func encoderQuality(q float64) int {
	n := int(math.Round(q * 100))
	if n < 1 {
		return 1
	}
	if n > 100 {
		return 100
	}
	return n
}

func sourceByteSize(src domain.SourceImage) int {
	if src.OriginalByteSize > 0 {
		return src.OriginalByteSize
	}
	return len(src.Data)
}
