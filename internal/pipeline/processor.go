package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/vrnd369/compressing/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ProgressFunc receives the running completion count after each item is
// accounted for. Calls are serialized and strictly increasing, ending at
// (total, total). The callback runs on a worker goroutine while an internal
// lock is held; keep it fast and do not call back into the Processor.
type ProgressFunc func(completed, total int)

type Processor struct {
	transformer Transformer
	workers     int
	metrics     *metrics
	tracer      trace.Tracer
}

// NewProcessor builds a batch processor. workers <= 0 selects
// runtime.NumCPU(); the pool never exceeds the batch size.
func NewProcessor(workers int) (*Processor, error) {
	transformer, err := newTransformer()
	if err != nil {
		return nil, fmt.Errorf("build transformer: %w", err)
	}

	return &Processor{
		transformer: transformer,
		workers:     workers,
		metrics:     newMetrics(),
		tracer:      otel.Tracer("compressing/pipeline"),
	}, nil
}

// MetricsHandler exposes the processor's Prometheus registry for callers
// that serve a metrics endpoint.
func (p *Processor) MetricsHandler() http.Handler {
	return p.metrics.Handler()
}

// Run transforms every image under cfg and returns one result per input, in
// input order. Item failures are recorded in the report, never propagated;
// the returned error is reserved for an invalid config, which fails the
// whole batch before any work starts. A cancelled ctx stops new items from
// starting: in-flight items finish, the rest are recorded as failed with the
// context error.
func (p *Processor) Run(ctx context.Context, images []domain.SourceImage, cfg domain.TransformConfig, onProgress ProgressFunc) (domain.BatchReport, error) {
	if err := cfg.Validate(); err != nil {
		return domain.BatchReport{}, err
	}

	total := len(images)
	report := domain.BatchReport{Results: make([]domain.TransformResult, total)}
	if total == 0 {
		return report, nil
	}

	workers := p.workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > total {
		workers = total
	}

	ctx, span := p.tracer.Start(ctx, "pipeline.run_batch")
	span.SetAttributes(
		attribute.Int("batch.items", total),
		attribute.Int("batch.workers", workers),
		attribute.String("batch.format", string(cfg.Format)),
	)
	defer span.End()

	workCh := make(chan int, total)
	for i := range images {
		workCh <- i
	}
	close(workCh)

	var (
		wg         sync.WaitGroup
		progressMu sync.Mutex
		completed  int
	)
	finish := func(idx int, res domain.TransformResult) {
		report.Results[idx] = res

		progressMu.Lock()
		completed++
		if onProgress != nil {
			onProgress(completed, total)
		}
		progressMu.Unlock()
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range workCh {
				select {
				case <-ctx.Done():
					finish(idx, domain.TransformResult{
						SourceID: images[idx].ID,
						Error:    ctx.Err().Error(),
					})
					continue
				default:
				}

				finish(idx, p.transformOne(ctx, images[idx], cfg))
			}
		}()
	}
	wg.Wait()

	summary := report.Summary()
	p.metrics.batchesTotal.Inc()
	p.metrics.bytesInTotal.Add(float64(summary.BytesIn))
	p.metrics.bytesOutTotal.Add(float64(summary.BytesOut))
	span.SetAttributes(
		attribute.Int("batch.succeeded", summary.Succeeded),
		attribute.Int("batch.failed", summary.Failed),
	)
	span.SetStatus(codes.Ok, "batch complete")

	return report, nil
}

func (p *Processor) transformOne(ctx context.Context, src domain.SourceImage, cfg domain.TransformConfig) domain.TransformResult {
	startedAt := time.Now()
	outcome := "failed"

	p.metrics.activeItems.Inc()
	defer func() {
		p.metrics.activeItems.Dec()
		p.metrics.itemsTotal.WithLabelValues(string(cfg.Format), outcome).Inc()
		p.metrics.itemDuration.WithLabelValues(string(cfg.Format), outcome).Observe(time.Since(startedAt).Seconds())
	}()

	output, stats, err := p.transformer.Transform(ctx, src, cfg)
	if err != nil {
		return domain.TransformResult{
			SourceID: src.ID,
			Error:    err.Error(),
		}
	}

	outcome = "succeeded"
	return domain.TransformResult{
		SourceID:   src.ID,
		Success:    true,
		Output:     output,
		OutputName: deriveOutputName(src.ID, cfg.Format),
		Stats:      &stats,
	}
}

// deriveOutputName swaps the identifier's extension for the output format's.
// Identifiers without an extension are used whole as the stem.
func deriveOutputName(id string, format domain.Format) string {
	stem := strings.TrimSuffix(id, filepath.Ext(id))
	if stem == "" {
		stem = id
	}
	return stem + "." + format.Ext()
}
