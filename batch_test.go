package filmlab

import (
	"bytes"
	"context"
	"errors"
	"image"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gogpu/filmlab/internal/cpu"
	"github.com/gogpu/filmlab/internal/tier"
)

func TestDecodeSource(t *testing.T) {
	src := gradient(12, 9)
	p := cpuOnly(t)

	got, err := p.DecodeSource(context.Background(), bytes.NewReader(encodePNG(t, src)))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got.Pix, src.Pix) {
		t.Error("decoded pixels differ")
	}

	if _, err := p.DecodeSource(context.Background(), strings.NewReader("nope")); err == nil {
		t.Error("garbage decoded")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.DecodeSource(ctx, bytes.NewReader(encodePNG(t, src))); !errors.Is(err, ErrCanceled) {
		t.Errorf("canceled decode: err = %v, want ErrCanceled", err)
	}
}

func TestRenderReader(t *testing.T) {
	src := gradient(40, 20)
	img, err := cpuOnly(t).RenderReader(context.Background(), bytes.NewReader(encodePNG(t, src)), Request{Width: 20})
	if err != nil {
		t.Fatal(err)
	}
	if img.Rect.Dx() != 20 || img.Rect.Dy() != 10 {
		t.Errorf("size = %v, want 20×10", img.Rect.Size())
	}
}

func TestEncode(t *testing.T) {
	src := gradient(32, 32)
	p := cpuOnly(t)
	tests := []struct {
		opts  EncodeOptions
		magic string
	}{
		{EncodeOptions{Format: FormatPNG}, "\x89PNG"},
		{EncodeOptions{Format: FormatJPEG, Quality: 80}, "\xff\xd8"},
		{EncodeOptions{}, "\xff\xd8"},
	}
	for _, tt := range tests {
		data, err := p.Encode(context.Background(), src, Request{}, tt.opts)
		if err != nil {
			t.Fatalf("%+v: %v", tt.opts, err)
		}
		if !bytes.HasPrefix(data, []byte(tt.magic)) {
			t.Errorf("%+v: output starts with % x", tt.opts, data[:4])
		}
	}
	if _, err := p.Encode(context.Background(), src, Request{}, EncodeOptions{Format: "avif"}); err == nil {
		t.Error("unknown format encoded")
	}
}

// cancelingReader cancels its context on the first read and counts reads
// that arrive after Close.
type cancelingReader struct {
	r         io.Reader
	cancel    context.CancelFunc
	closed    atomic.Bool
	lateReads atomic.Int32
}

func (c *cancelingReader) Read(p []byte) (int, error) {
	if c.closed.Load() {
		c.lateReads.Add(1)
	}
	c.cancel()
	if len(p) > 64 {
		p = p[:64]
	}
	return c.r.Read(p)
}

func (c *cancelingReader) Close() error {
	c.closed.Store(true)
	return nil
}

func TestCanceledDecodeFinishesBeforeClose(t *testing.T) {
	p := cpuOnly(t)
	encoded := encodePNG(t, gradient(64, 64))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rc := &cancelingReader{r: bytes.NewReader(encoded), cancel: cancel}
	jobs := []Job{{Name: "slow", Open: func() (io.ReadCloser, error) { return rc, nil }}}

	results, err := p.ExportBatch(ctx, jobs, 1)
	if !errors.Is(err, ErrCanceled) {
		t.Fatalf("err = %v, want ErrCanceled", err)
	}
	if !errors.Is(results[0].Err, ErrCanceled) {
		t.Errorf("job err = %v, want ErrCanceled", results[0].Err)
	}
	if !rc.closed.Load() {
		t.Error("source was not closed")
	}
	if n := rc.lateReads.Load(); n != 0 {
		t.Errorf("%d reads after Close", n)
	}
}

// countingCPU tracks how many renders run at once.
type countingCPU struct {
	*cpu.Backend
	running, peak atomic.Int32
	modes         sync.Map
}

func (c *countingCPU) Render(ctx context.Context, f *tier.Frame, dst *image.NRGBA) error {
	n := c.running.Add(1)
	defer c.running.Add(-1)
	for {
		p := c.peak.Load()
		if n <= p || c.peak.CompareAndSwap(p, n) {
			break
		}
	}
	c.modes.Store(f.Film.Seed, true)
	return c.Backend.Render(ctx, f, dst)
}

func TestExportBatch(t *testing.T) {
	counting := &countingCPU{Backend: cpu.New(nil)}
	p := cpuOnly(t, WithBackend(TierCPU, func() (tier.Backend, error) { return counting, nil }))

	src := gradient(48, 32)
	encoded := encodePNG(t, src)
	jobs := []Job{
		{Name: "a", Source: src, Output: EncodeOptions{Format: FormatPNG}},
		{Name: "b", Source: src},
		{Name: "missing"},
		{Name: "reader", Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(encoded)), nil
		}},
		{Name: "broken", Open: func() (io.ReadCloser, error) { return nil, errors.New("gone") }},
		{Name: "c", Source: src, Request: Request{MaxDimension: 16}},
	}

	results, err := p.ExportBatch(context.Background(), jobs, 2)
	if err != nil {
		t.Fatal(err)
	}

	var names []string
	for _, r := range results {
		names = append(names, r.Name)
	}
	want := []string{"a", "b", "missing", "reader", "broken", "c"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("result order (-want +got):\n%s", diff)
	}

	for _, r := range results {
		failed := r.Name == "missing" || r.Name == "broken"
		if failed != (r.Err != nil) {
			t.Errorf("%s: err = %v", r.Name, r.Err)
		}
		if !failed && len(r.Data) == 0 {
			t.Errorf("%s: no data", r.Name)
		}
	}
	if !errors.Is(results[2].Err, ErrNoDrawingContext) {
		t.Errorf("job without source: err = %v", results[2].Err)
	}
	if peak := counting.peak.Load(); peak > 2 {
		t.Errorf("%d renders ran at once, limit 2", peak)
	}
}

func TestExportBatchUsesExportSeed(t *testing.T) {
	counting := &countingCPU{Backend: cpu.New(nil)}
	p := cpuOnly(t, WithBackend(TierCPU, func() (tier.Backend, error) { return counting, nil }))

	req := Request{}
	req.Seeds.Key = "roll"
	if _, err := p.ExportBatch(context.Background(), []Job{{Name: "x", Source: gradient(8, 8), Request: req}}, 0); err != nil {
		t.Fatal(err)
	}
	if _, ok := counting.modes.Load(req.Seeds.ExportSeed()); !ok {
		t.Error("batch export did not render with the export seed")
	}
}

func TestExportBatchCanceled(t *testing.T) {
	p := cpuOnly(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	jobs := []Job{{Name: "a", Source: gradient(8, 8)}, {Name: "b", Source: gradient(8, 8)}}
	results, err := p.ExportBatch(ctx, jobs, 1)
	if !errors.Is(err, ErrCanceled) {
		t.Fatalf("err = %v, want ErrCanceled", err)
	}
	for _, r := range results {
		if !errors.Is(r.Err, ErrCanceled) {
			t.Errorf("%s: err = %v, want ErrCanceled", r.Name, r.Err)
		}
	}
}
