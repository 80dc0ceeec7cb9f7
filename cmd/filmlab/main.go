// Command filmlab renders adjustment sets and film profiles onto image files.
//
//	filmlab -a look.json --preset portra -o out photo1.jpg photo2.png
//	FILMLAB_BACKEND=cpu filmlab --format png --max-dimension 2048 *.jpg
//
// Flags may also come from FILMLAB_* environment variables, a .env file or
// a config file given with --config.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/gogpu/filmlab"
	"github.com/gogpu/filmlab/adjust"
	"github.com/gogpu/filmlab/internal/config"
	imgio "github.com/gogpu/filmlab/internal/image"
	"github.com/gogpu/filmlab/lut"
	"github.com/gogpu/filmlab/profile"
)

func main() {
	flags := config.Flags()
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: filmlab [flags] image...\n\n%s", flags.FlagUsages())
	}
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		os.Exit(2)
	}
	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if flags.NArg() == 0 {
		flags.Usage()
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)
	filmlab.SetLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	failed, err := run(ctx, cfg, flags.Args())
	if err != nil {
		slog.Error("filmlab failed", "error", err)
		os.Exit(1)
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, files []string) (int, error) {
	format, err := imgio.ParseFormat(cfg.Format)
	if err != nil {
		return 0, err
	}

	registry := lut.NewRegistry()
	if cfg.LUTDir != "" {
		if err := importLUTs(registry, cfg.LUTDir); err != nil {
			return 0, err
		}
	}

	base, err := buildRequest(cfg)
	if err != nil {
		return 0, err
	}

	p, err := filmlab.New(
		filmlab.WithLUTRegistry(registry),
		filmlab.WithGPU(cfg.GPU),
		filmlab.WithWorkers(cfg.Workers),
		filmlab.WithStickyThreshold(cfg.StickyThreshold),
		filmlab.WithMaxPixels(cfg.MaxPixels()),
	)
	if err != nil {
		return 0, err
	}
	defer p.Close()

	jobs := make([]filmlab.Job, len(files))
	for i, file := range files {
		req := base
		req.Seeds.Key = filepath.Base(file)
		jobs[i] = filmlab.Job{
			Name:    file,
			Open:    func() (io.ReadCloser, error) { return os.Open(file) },
			Request: req,
			Output:  filmlab.EncodeOptions{Format: format, Quality: cfg.Quality},
		}
	}

	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return 0, fmt.Errorf("create output directory: %w", err)
	}

	start := time.Now()
	results, err := p.ExportBatch(ctx, jobs, cfg.Concurrency)
	var (
		failed  int
		written uint64
	)
	for _, r := range results {
		if r.Err != nil {
			failed++
			slog.Error("export failed", "file", r.Name, "error", r.Err)
			continue
		}
		out := outputPath(cfg.OutDir, r.Name, format)
		if werr := os.WriteFile(out, r.Data, 0o644); werr != nil {
			failed++
			slog.Error("write failed", "file", out, "error", werr)
			continue
		}
		written += uint64(len(r.Data))
		slog.Info("exported", "file", out, "size", humanize.Bytes(uint64(len(r.Data))), "elapsed", r.Elapsed.Round(time.Millisecond))
	}
	fmt.Printf("%d of %d exported, %s written in %s\n",
		len(results)-failed, len(results), humanize.Bytes(written), time.Since(start).Round(time.Millisecond))
	return failed, err
}

// buildRequest assembles the request shared by every file.
func buildRequest(cfg *config.Config) (filmlab.Request, error) {
	req := filmlab.Request{
		Adjustments:  &adjust.Raw{},
		MaxDimension: cfg.MaxDim,
		Mode:         filmlab.ModeExport,
	}
	switch cfg.Backend {
	case "multi-pass":
		req.Preference = filmlab.PreferMultiPass
	case "single-pass":
		req.Preference = filmlab.PreferSinglePass
	case "cpu":
		req.Preference = filmlab.PreferCPU
	}

	if cfg.Adjustments != "" {
		data, err := os.ReadFile(cfg.Adjustments)
		if err != nil {
			return req, err
		}
		if err := json.Unmarshal(data, req.Adjustments); err != nil {
			return req, fmt.Errorf("parse %s: %w", cfg.Adjustments, err)
		}
	}
	if cfg.Preset != "" {
		if _, ok := profile.Preset(cfg.Preset); !ok {
			return req, fmt.Errorf("unknown preset %q (known: %s)", cfg.Preset, strings.Join(profile.PresetIDs(), ", "))
		}
		if req.Adjustments.Film == nil {
			req.Adjustments.Film = &adjust.RawFilm{}
		}
		req.Adjustments.Film.PresetID = &cfg.Preset
	}
	if cfg.Timestamp {
		if req.Adjustments.Timestamp == nil {
			req.Adjustments.Timestamp = &adjust.RawTimestamp{}
		}
		enabled := true
		req.Adjustments.Timestamp.Enabled = &enabled
	}
	if cfg.Profile != "" {
		data, err := os.ReadFile(cfg.Profile)
		if err != nil {
			return req, err
		}
		rec, err := profile.Decode(data)
		if err != nil {
			return req, fmt.Errorf("parse %s: %w", cfg.Profile, err)
		}
		req.Profile = &rec
	}
	return req, nil
}

// importLUTs registers every .cube file in dir.
func importLUTs(r *lut.Registry, dir string) error {
	matches, err := filepath.Glob(filepath.Join(dir, "*.cube"))
	if err != nil {
		return err
	}
	for _, path := range matches {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		a, err := r.Import(filepath.Base(path), f)
		f.Close()
		if err != nil {
			return fmt.Errorf("import %s: %w", path, err)
		}
		slog.Debug("imported LUT", "file", path, "id", a.ID, "size", a.Size)
	}
	return nil
}

func outputPath(dir, name string, f imgio.Format) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	ext := ".jpg"
	if f == imgio.FormatPNG {
		ext = ".png"
	}
	return filepath.Join(dir, base+ext)
}
