//go:build govips && cgo

package pipeline

import (
	"context"
	"fmt"

	"github.com/davidbyttow/govips/v2/vips"
	"github.com/vrnd369/compressing/internal/domain"
)

type govipsTransformer struct{}

func (t govipsTransformer) Transform(ctx context.Context, src domain.SourceImage, cfg domain.TransformConfig) ([]byte, domain.Stats, error) {
	select {
	case <-ctx.Done():
		return nil, domain.Stats{}, ctx.Err()
	default:
	}

	img, err := vips.NewImageFromBuffer(src.Data)
	if err != nil {
		return nil, domain.Stats{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	defer img.Close()

	origW, origH := img.Width(), img.Height()
	outW, outH := Plan(origW, origH, cfg)
	if outW != origW || outH != origH {
		// Width and height scale independently when the aspect ratio is
		// not maintained, so a plain Resize is not enough.
		hscale := float64(outW) / float64(origW)
		vscale := float64(outH) / float64(origH)
		if err := img.ResizeWithVScale(hscale, vscale, vips.KernelLanczos3); err != nil {
			return nil, domain.Stats{}, fmt.Errorf("resize to %dx%d: %v", outW, outH, err)
		}
	}

	output, err := exportImage(img, cfg)
	if err != nil {
		return nil, domain.Stats{}, err
	}

	return output, computeStats(origW, origH, outW, outH, sourceByteSize(src), len(output), cfg), nil
}

func exportImage(img *vips.ImageRef, cfg domain.TransformConfig) ([]byte, error) {
	switch cfg.Format {
	case domain.FormatJPEG:
		params := vips.NewJpegExportParams()
		params.Quality = encoderQuality(cfg.Quality)
		data, _, err := img.ExportJpeg(params)
		if err != nil {
			return nil, fmt.Errorf("%w: jpeg: %v", ErrEncode, err)
		}
		return data, nil
	case domain.FormatPNG:
		data, _, err := img.ExportPng(vips.NewPngExportParams())
		if err != nil {
			return nil, fmt.Errorf("%w: png: %v", ErrEncode, err)
		}
		return data, nil
	case domain.FormatWEBP:
		params := vips.NewWebpExportParams()
		params.Quality = encoderQuality(cfg.Quality)
		data, _, err := img.ExportWebp(params)
		if err != nil {
			return nil, fmt.Errorf("%w: webp: %v", ErrEncode, err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("%w: unsupported output format %q", ErrEncode, cfg.Format)
	}
}
