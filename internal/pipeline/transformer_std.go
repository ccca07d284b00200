package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/vrnd369/compressing/internal/domain"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

type stdlibTransformer struct{}

func (t stdlibTransformer) Transform(ctx context.Context, src domain.SourceImage, cfg domain.TransformConfig) ([]byte, domain.Stats, error) {
	select {
	case <-ctx.Done():
		return nil, domain.Stats{}, ctx.Err()
	default:
	}

	img, _, err := image.Decode(bytes.NewReader(src.Data))
	if err != nil {
		return nil, domain.Stats{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	bounds := img.Bounds()
	origW, origH := bounds.Dx(), bounds.Dy()

	outW, outH := Plan(origW, origH, cfg)
	if outW != origW || outH != origH {
		img = imaging.Resize(img, outW, outH, imaging.Lanczos)
	}

	output, err := encodeImage(img, cfg)
	if err != nil {
		return nil, domain.Stats{}, err
	}

	return output, computeStats(origW, origH, outW, outH, sourceByteSize(src), len(output), cfg), nil
}

func encodeImage(img image.Image, cfg domain.TransformConfig) ([]byte, error) {
	var buf bytes.Buffer

	switch cfg.Format {
	case domain.FormatJPEG:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: encoderQuality(cfg.Quality)}); err != nil {
			return nil, fmt.Errorf("%w: jpeg: %v", ErrEncode, err)
		}
	case domain.FormatPNG:
		encoder := png.Encoder{CompressionLevel: png.DefaultCompression}
		if err := encoder.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("%w: png: %v", ErrEncode, err)
		}
	case domain.FormatWEBP:
		if err := webp.Encode(&buf, img, &webp.Options{Quality: float32(encoderQuality(cfg.Quality))}); err != nil {
			return nil, fmt.Errorf("%w: webp: %v", ErrEncode, err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported output format %q", ErrEncode, cfg.Format)
	}

	return buf.Bytes(), nil
}
