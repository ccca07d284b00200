package domain

import (
	"errors"
	"fmt"
)

var ErrInvalidConfig = errors.New("invalid transform config")

type TransformConfig struct {
	MaxWidth  int
	MaxHeight int
	// Quality is a fraction in [0, 1]; encoders map it to their native
	// scale. PNG output ignores it.
	Quality             float64
	Format              Format
	MaintainAspectRatio bool
	// PreserveDimensions keeps the source pixel size and makes the max
	// bounds irrelevant.
	PreserveDimensions bool
}

func (c TransformConfig) Validate() error {
	if c.Quality < 0 || c.Quality > 1 {
		return fmt.Errorf("%w: quality %.2f outside [0, 1]", ErrInvalidConfig, c.Quality)
	}
	switch c.Format {
	case FormatJPEG, FormatPNG, FormatWEBP:
	default:
		return fmt.Errorf("%w: unknown format %q", ErrInvalidConfig, string(c.Format))
	}
	if c.PreserveDimensions {
		return nil
	}
	if c.MaxWidth <= 0 {
		return fmt.Errorf("%w: max width %d must be positive", ErrInvalidConfig, c.MaxWidth)
	}
	if c.MaxHeight <= 0 {
		return fmt.Errorf("%w: max height %d must be positive", ErrInvalidConfig, c.MaxHeight)
	}
	return nil
}
