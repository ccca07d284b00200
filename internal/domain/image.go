package domain

// SourceImage is one input to the pipeline. Data is borrowed read-only;
// the pipeline never mutates it. OriginalWidth and OriginalHeight are
// optional caller hints (0 = unknown); the decoded bounds are authoritative.
type SourceImage struct {
	ID               string
	Data             []byte
	OriginalWidth    int
	OriginalHeight   int
	OriginalByteSize int
}

func NewSourceImage(id string, data []byte) SourceImage {
	return SourceImage{
		ID:               id,
		Data:             data,
		OriginalByteSize: len(data),
	}
}

type Stats struct {
	OriginalWidth    int
	OriginalHeight   int
	Width            int
	Height           int
	OriginalByteSize int
	OutputByteSize   int
	Format           Format
	Quality          float64
	// CompressionRatioPercent is (1 - output/input) * 100, rounded to one
	// decimal. Negative when the output grew.
	CompressionRatioPercent float64
}

// TransformResult reports the outcome for one source image. Success selects
// which side is populated: Output, OutputName and Stats on success, Error on
// failure. Never both.
type TransformResult struct {
	SourceID   string
	Success    bool
	Output     []byte
	OutputName string
	Stats      *Stats
	Error      string
}
