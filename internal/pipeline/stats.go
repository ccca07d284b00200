package pipeline

import (
	"math"

	"github.com/vrnd369/compressing/internal/domain"
)

func computeStats(origW, origH, outW, outH, inBytes, outBytes int, cfg domain.TransformConfig) domain.Stats {
	return domain.Stats{
		OriginalWidth:           origW,
		OriginalHeight:          origH,
		Width:                   outW,
		Height:                  outH,
		OriginalByteSize:        inBytes,
		OutputByteSize:          outBytes,
		Format:                  cfg.Format,
		Quality:                 cfg.Quality,
		CompressionRatioPercent: compressionRatioPercent(inBytes, outBytes),
	}
}

// compressionRatioPercent reports the byte reduction as a percentage of the
// input size, rounded to one decimal. Outputs larger than the input yield a
// negative value.
func compressionRatioPercent(inBytes, outBytes int) float64 {
	if inBytes <= 0 {
		return 0
	}
	ratio := (1 - float64(outBytes)/float64(inBytes)) * 100
	return math.Round(ratio*10) / 10
}
