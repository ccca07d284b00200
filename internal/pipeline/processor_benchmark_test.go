package pipeline

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/vrnd369/compressing/internal/domain"
)

func BenchmarkProcessorRunJPEG(b *testing.B) {
	source := benchmarkPNG(b, 1920, 1080)
	processor, err := NewProcessor(4)
	if err != nil {
		b.Fatalf("new processor: %v", err)
	}

	images := []domain.SourceImage{
		domain.NewSourceImage("bench-1.png", source),
		domain.NewSourceImage("bench-2.png", source),
		domain.NewSourceImage("bench-3.png", source),
		domain.NewSourceImage("bench-4.png", source),
	}
	cfg := domain.TransformConfig{
		MaxWidth:            640,
		MaxHeight:           640,
		Quality:             0.82,
		Format:              domain.FormatJPEG,
		MaintainAspectRatio: true,
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		report, err := processor.Run(context.Background(), images, cfg, nil)
		if err != nil {
			b.Fatalf("run batch: %v", err)
		}
		if s := report.Summary(); s.Failed != 0 {
			b.Fatalf("expected no failures, got %d", s.Failed)
		}
	}
}

func BenchmarkTransformWebP(b *testing.B) {
	src := domain.NewSourceImage("bench.png", benchmarkPNG(b, 1280, 720))
	cfg := domain.TransformConfig{
		MaxWidth:            800,
		MaxHeight:           800,
		Quality:             0.8,
		Format:              domain.FormatWEBP,
		MaintainAspectRatio: true,
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := (stdlibTransformer{}).Transform(context.Background(), src, cfg); err != nil {
			b.Fatalf("transform: %v", err)
		}
	}
}

func benchmarkPNG(b *testing.B, w, h int) []byte {
	b.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8((x * 255) / w),
				G: uint8((y * 255) / h),
				B: 140,
				A: 255,
			})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		b.Fatalf("encode source png: %v", err)
	}
	return buf.Bytes()
}
