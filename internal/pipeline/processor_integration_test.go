package pipeline

import (
	"context"
	"testing"

	"github.com/vrnd369/compressing/internal/domain"
)

func TestProcessorBatchEndToEnd(t *testing.T) {
	processor, err := NewProcessor(4)
	if err != nil {
		t.Fatalf("new processor: %v", err)
	}

	images := []domain.SourceImage{
		domain.NewSourceImage("wide.png", buildTestPNG(t, 240, 120)),
		domain.NewSourceImage("tall.png", buildTestPNG(t, 60, 180)),
		domain.NewSourceImage("small.png", buildTestPNG(t, 50, 50)),
	}
	cfg := domain.TransformConfig{
		MaxWidth:            80,
		MaxHeight:           80,
		Quality:             0.8,
		Format:              domain.FormatJPEG,
		MaintainAspectRatio: true,
	}

	report, err := processor.Run(context.Background(), images, cfg, nil)
	if err != nil {
		t.Fatalf("run batch: %v", err)
	}

	wantDims := [][2]int{{80, 40}, {27, 80}, {50, 50}}
	wantNames := []string{"wide.jpg", "tall.jpg", "small.jpg"}
	for i, res := range report.Results {
		if !res.Success {
			t.Fatalf("item %d failed: %s", i, res.Error)
		}
		if res.OutputName != wantNames[i] {
			t.Fatalf("item %d: expected output name %s, got %s", i, wantNames[i], res.OutputName)
		}

		img, format := decodeImageBytes(t, res.Output)
		if format != "jpeg" {
			t.Fatalf("item %d: expected jpeg output, got %s", i, format)
		}
		if img.Bounds().Dx() != wantDims[i][0] || img.Bounds().Dy() != wantDims[i][1] {
			t.Fatalf("item %d: expected %dx%d, got %dx%d",
				i, wantDims[i][0], wantDims[i][1], img.Bounds().Dx(), img.Bounds().Dy())
		}
		if res.Stats == nil {
			t.Fatalf("item %d: expected stats on success", i)
		}
		if res.Stats.OutputByteSize != len(res.Output) {
			t.Fatalf("item %d: stats byte size %d does not match output %d",
				i, res.Stats.OutputByteSize, len(res.Output))
		}
	}
}

func TestProcessorBatchToWebP(t *testing.T) {
	processor, err := NewProcessor(2)
	if err != nil {
		t.Fatalf("new processor: %v", err)
	}

	images := []domain.SourceImage{
		domain.NewSourceImage("one.png", buildTestPNG(t, 200, 100)),
		domain.NewSourceImage("two.png", buildTestPNG(t, 100, 200)),
	}
	cfg, ok := domain.Preset("webp")
	if !ok {
		t.Fatal("expected webp preset")
	}

	report, err := processor.Run(context.Background(), images, cfg, nil)
	if err != nil {
		t.Fatalf("run batch: %v", err)
	}

	wantDims := [][2]int{{200, 100}, {100, 200}}
	for i, res := range report.Results {
		if !res.Success {
			t.Fatalf("item %d failed: %s", i, res.Error)
		}

		img, format := decodeImageBytes(t, res.Output)
		if format != "webp" {
			t.Fatalf("item %d: expected webp output, got %s", i, format)
		}
		// Both inputs fit inside the preset bounds, so dimensions hold.
		if img.Bounds().Dx() != wantDims[i][0] || img.Bounds().Dy() != wantDims[i][1] {
			t.Fatalf("item %d: expected %dx%d, got %dx%d",
				i, wantDims[i][0], wantDims[i][1], img.Bounds().Dx(), img.Bounds().Dy())
		}
	}

	if report.Results[0].OutputName != "one.webp" || report.Results[1].OutputName != "two.webp" {
		t.Fatalf("expected webp output names, got %s / %s",
			report.Results[0].OutputName, report.Results[1].OutputName)
	}
}
