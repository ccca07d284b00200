package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/vrnd369/compressing/internal/archive"
	"github.com/vrnd369/compressing/internal/config"
	"github.com/vrnd369/compressing/internal/domain"
	"github.com/vrnd369/compressing/internal/pipeline"
	"github.com/vrnd369/compressing/internal/store"
	"github.com/vrnd369/compressing/internal/telemetry"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type options struct {
	preset       string
	format       string
	quality      float64
	maxWidth     int
	maxHeight    int
	originalSize bool
	ignoreAspect bool
	outDir       string
	zipPath      string
	workers      int
	showHistory  bool
	set          map[string]bool
}

func main() {
	opts := parseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "compressing: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "compressing: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, opts, logger); err != nil {
		fmt.Fprintf(os.Stderr, "compressing: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, opts options, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.SetupTracing(ctx, telemetry.TraceConfig{
		ServiceName:  "compressing",
		Exporter:     cfg.Telemetry.Exporter,
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		OTLPInsecure: cfg.Telemetry.OTLPInsecure,
	}, logger)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("tracing shutdown failed", zap.Error(err))
		}
	}()

	history := openHistory(ctx, cfg, logger)
	if history != nil {
		defer func() {
			if err := history.Close(); err != nil {
				logger.Warn("history close failed", zap.Error(err))
			}
		}()
	}

	if opts.showHistory {
		return printHistory(ctx, history)
	}

	if flag.NArg() == 0 {
		flag.Usage()
		return errors.New("no input files")
	}
	if opts.outDir == "" && opts.zipPath == "" {
		opts.zipPath = cfg.ArchiveName
	}

	tcfg, err := resolveTransformConfig(cfg, opts)
	if err != nil {
		return err
	}
	if err := tcfg.Validate(); err != nil {
		return err
	}

	images, err := gatherImages(flag.Args())
	if err != nil {
		return err
	}
	if len(images) == 0 {
		return errors.New("no images found in the given paths")
	}

	if err := pipeline.Startup(); err != nil {
		return fmt.Errorf("start pipeline: %w", err)
	}
	defer pipeline.Shutdown()

	processor, err := pipeline.NewProcessor(pickWorkers(cfg, opts))
	if err != nil {
		return fmt.Errorf("build processor: %w", err)
	}

	logger.Info("starting batch",
		zap.Int("images", len(images)),
		zap.String("format", string(tcfg.Format)),
		zap.Float64("quality", tcfg.Quality),
	)

	startedAt := time.Now()
	report, err := processor.Run(ctx, images, tcfg, func(completed, total int) {
		fmt.Printf("\rProcessing %d/%d", completed, total)
	})
	fmt.Println()
	if err != nil {
		return err
	}
	elapsed := time.Since(startedAt)

	for _, res := range report.Results {
		if !res.Success {
			fmt.Printf("failed %s: %s\n", res.SourceID, res.Error)
		}
	}

	if opts.outDir != "" {
		written, err := writeOutputs(opts.outDir, report)
		if err != nil {
			return err
		}
		fmt.Printf("Wrote %d files to %s\n", written, opts.outDir)
	}

	if opts.zipPath != "" {
		switch err := writeArchive(opts.zipPath, report); {
		case errors.Is(err, archive.ErrEmptyArchive):
			fmt.Println("Nothing to archive: no image was transformed successfully.")
		case err != nil:
			return err
		default:
			fmt.Printf("Wrote archive %s\n", opts.zipPath)
		}
	}

	summary := report.Summary()
	fmt.Printf("Done: %d/%d succeeded, saved %s in %s\n",
		summary.Succeeded, summary.Total, humanBytes(summary.BytesSaved()), elapsed.Round(time.Millisecond))

	recordHistory(history, tcfg, summary, elapsed, logger)

	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d images failed", summary.Failed, summary.Total)
	}
	return nil
}

func parseFlags() options {
	var opts options

	flag.StringVar(&opts.preset, "preset", "", "named preset to start from (default from config)")
	flag.StringVar(&opts.format, "format", "", "output format: jpeg, png or webp")
	flag.Float64Var(&opts.quality, "quality", 0, "quality fraction in [0,1]")
	flag.IntVar(&opts.maxWidth, "max-width", 0, "maximum output width in pixels")
	flag.IntVar(&opts.maxHeight, "max-height", 0, "maximum output height in pixels")
	flag.BoolVar(&opts.originalSize, "original-size", false, "keep source dimensions, only convert and recompress")
	flag.BoolVar(&opts.ignoreAspect, "ignore-aspect", false, "clamp width and height independently (may distort)")
	flag.StringVar(&opts.outDir, "out", "", "write outputs into this directory")
	flag.StringVar(&opts.zipPath, "zip", "", "write successful outputs into a zip archive at this path (default from config when -out is not given)")
	flag.IntVar(&opts.workers, "workers", 0, "concurrent workers, 0 = all CPUs")
	flag.BoolVar(&opts.showHistory, "show-history", false, "print recent batch history and exit")

	flag.Usage = usage
	flag.Parse()

	opts.set = make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })
	return opts
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "Usage: %s [flags] <images or directories>\n\n", filepath.Base(os.Args[0]))
	fmt.Fprintf(out, "Presets: %s\n\nFlags:\n", strings.Join(domain.PresetNames(), ", "))
	flag.PrintDefaults()
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	zcfg := zap.NewDevelopmentConfig()
	if cfg.JSON {
		zcfg = zap.NewProductionConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}

// resolveTransformConfig starts from the selected preset and applies only
// the flags the user actually set.
func resolveTransformConfig(cfg *config.Config, opts options) (domain.TransformConfig, error) {
	name := cfg.Preset
	if opts.set["preset"] {
		name = opts.preset
	}
	tcfg, ok := domain.Preset(name)
	if !ok {
		return domain.TransformConfig{}, fmt.Errorf("unknown preset %q (have %s)", name, strings.Join(domain.PresetNames(), ", "))
	}

	if opts.set["format"] {
		format, err := domain.ParseFormat(opts.format)
		if err != nil {
			return domain.TransformConfig{}, err
		}
		tcfg.Format = format
	}
	if opts.set["quality"] {
		tcfg.Quality = opts.quality
	}
	if opts.set["max-width"] {
		tcfg.MaxWidth = opts.maxWidth
	}
	if opts.set["max-height"] {
		tcfg.MaxHeight = opts.maxHeight
	}
	if opts.set["original-size"] {
		tcfg.PreserveDimensions = opts.originalSize
	}
	if opts.set["ignore-aspect"] {
		tcfg.MaintainAspectRatio = !opts.ignoreAspect
	}
	return tcfg, nil
}

func pickWorkers(cfg *config.Config, opts options) int {
	if opts.set["workers"] {
		return opts.workers
	}
	return cfg.Workers
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

func isImageFile(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// gatherImages reads the given files and directories (one level deep) into
// source images. Identifiers are base names, suffixed with -1, -2, ... when
// two inputs would otherwise collide.
func gatherImages(paths []string) ([]domain.SourceImage, error) {
	var images []domain.SourceImage
	seen := make(map[string]struct{})

	add := func(path string) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		id := uniqueID(seen, filepath.Base(path))
		seen[id] = struct{}{}
		images = append(images, domain.NewSourceImage(id, data))
		return nil
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}

		if !info.IsDir() {
			if err := add(path); err != nil {
				return nil, err
			}
			continue
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("read directory %s: %w", path, err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !isImageFile(entry.Name()) {
				continue
			}
			if err := add(filepath.Join(path, entry.Name())); err != nil {
				return nil, err
			}
		}
	}

	return images, nil
}

func uniqueID(seen map[string]struct{}, name string) string {
	if _, taken := seen[name]; !taken {
		return name
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s-%d%s", stem, i, ext)
		if _, taken := seen[candidate]; !taken {
			return candidate
		}
	}
}

// writeOutputs writes every successful result into dir. Sources that differ
// only by extension derive the same output name, so names are uniqued with
// the same -1, -2, ... scheme archive entries get.
func writeOutputs(dir string, report domain.BatchReport) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create output directory: %w", err)
	}

	seen := make(map[string]struct{})
	written := 0
	for _, res := range report.Results {
		if !res.Success {
			continue
		}

		name := uniqueID(seen, res.OutputName)
		seen[name] = struct{}{}

		dest := filepath.Join(dir, name)
		if err := os.WriteFile(dest, res.Output, 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", dest, err)
		}
		written++
	}
	return written, nil
}

func writeArchive(path string, report domain.BatchReport) error {
	data, err := archive.Build(report)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write archive %s: %w", path, err)
	}
	return nil
}

func openHistory(ctx context.Context, cfg *config.Config, logger *zap.Logger) store.History {
	if !cfg.History.Enabled {
		return nil
	}

	history, err := store.NewSQLiteHistory(ctx, cfg.History.Path)
	if err != nil {
		// History must never block compression work.
		logger.Warn("history unavailable", zap.String("path", cfg.History.Path), zap.Error(err))
		return nil
	}
	return history
}

func printHistory(ctx context.Context, history store.History) error {
	if history == nil {
		return errors.New("history is disabled")
	}

	records, err := history.Recent(ctx, 20)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	if len(records) == 0 {
		fmt.Println("No batches recorded yet.")
		return nil
	}

	for _, rec := range records {
		fmt.Printf("%s  %-5s  %d/%d ok  saved %s  %dms  %s\n",
			rec.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			rec.Format,
			rec.Succeeded,
			rec.Total,
			humanBytes(rec.BytesIn-rec.BytesOut),
			rec.DurationMS,
			rec.ID,
		)
	}
	return nil
}

// recordHistory writes through its own short-lived context so an interrupted
// batch still gets recorded.
func recordHistory(history store.History, tcfg domain.TransformConfig, summary domain.BatchSummary, elapsed time.Duration, logger *zap.Logger) {
	if history == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	rec := store.BatchRecord{
		ID:         uuid.NewString(),
		CreatedAt:  time.Now().UTC(),
		Format:     string(tcfg.Format),
		Total:      summary.Total,
		Succeeded:  summary.Succeeded,
		Failed:     summary.Failed,
		BytesIn:    summary.BytesIn,
		BytesOut:   summary.BytesOut,
		DurationMS: elapsed.Milliseconds(),
	}
	if err := history.Record(ctx, rec); err != nil {
		logger.Warn("history record failed", zap.Error(err))
	}
}

func humanBytes(n int64) string {
	const unit = 1024

	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}

	switch {
	case n >= unit*unit*unit:
		return fmt.Sprintf("%s%.1f GiB", sign, float64(n)/(unit*unit*unit))
	case n >= unit*unit:
		return fmt.Sprintf("%s%.1f MiB", sign, float64(n)/(unit*unit))
	case n >= unit:
		return fmt.Sprintf("%s%.1f KiB", sign, float64(n)/unit)
	default:
		return fmt.Sprintf("%s%d B", sign, n)
	}
}
