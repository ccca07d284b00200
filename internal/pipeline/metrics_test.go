package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vrnd369/compressing/internal/domain"
)

func TestMetricsHandlerReportsPipelineActivity(t *testing.T) {
	processor, err := NewProcessor(1)
	if err != nil {
		t.Fatalf("NewProcessor failed: %v", err)
	}

	images := []domain.SourceImage{
		domain.NewSourceImage("ok.png", buildTestPNG(t, 64, 32)),
		domain.NewSourceImage("bad.png", []byte("not an image")),
	}

	if _, err := processor.Run(context.Background(), images, testConfig(), nil); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	processor.MetricsHandler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	body := rec.Body.String()
	for _, want := range []string{
		`compressing_pipeline_batches_total 1`,
		`compressing_pipeline_items_total{format="jpeg",outcome="succeeded"} 1`,
		`compressing_pipeline_items_total{format="jpeg",outcome="failed"} 1`,
		`compressing_pipeline_active_items 0`,
		`compressing_pipeline_bytes_in_total`,
		`compressing_pipeline_bytes_out_total`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected metrics output to contain %q", want)
		}
	}
}

func TestMetricsRegistriesAreIndependent(t *testing.T) {
	first, err := NewProcessor(1)
	if err != nil {
		t.Fatalf("NewProcessor failed: %v", err)
	}
	second, err := NewProcessor(1)
	if err != nil {
		t.Fatalf("NewProcessor failed: %v", err)
	}

	images := []domain.SourceImage{domain.NewSourceImage("ok.png", buildTestPNG(t, 32, 32))}
	if _, err := first.Run(context.Background(), images, testConfig(), nil); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	rec := httptest.NewRecorder()
	second.MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if strings.Contains(rec.Body.String(), `compressing_pipeline_batches_total 1`) {
		t.Error("expected the second processor's registry to be untouched by the first")
	}
}
