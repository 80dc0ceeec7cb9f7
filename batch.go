package filmlab

import (
	"context"
	"fmt"
	"image"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"
)

// DefaultBatchConcurrency is the number of exports ExportBatch runs at once
// when no limit is given.
const DefaultBatchConcurrency = 2

// Job is one export of a batch. Source wins over Open.
type Job struct {
	Name    string
	Source  image.Image
	Open    func() (io.ReadCloser, error)
	Request Request
	Output  EncodeOptions
}

// Result is the outcome of one Job.
type Result struct {
	Name    string
	Data    []byte
	Elapsed time.Duration
	Err     error
}

// ExportBatch renders and encodes jobs in export mode, at most concurrency
// at a time. Results are in job order; a failed job does not stop the
// others. The returned error is non-nil only when ctx ends, in which case
// unstarted jobs report ErrCanceled.
func (p *Pipeline) ExportBatch(ctx context.Context, jobs []Job, concurrency int) ([]Result, error) {
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}
	results := make([]Result, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, job := range jobs {
		results[i].Name = job.Name
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i].Err = canceled(err)
				return nil
			}
			start := time.Now()
			data, err := p.export(gctx, job)
			results[i].Data, results[i].Err = data, err
			results[i].Elapsed = time.Since(start)
			if err != nil {
				Logger().Warn("filmlab: export failed", "job", job.Name, "error", err)
			} else {
				Logger().Debug("filmlab: exported", "job", job.Name, "size", humanize.Bytes(uint64(len(data))), "elapsed", results[i].Elapsed)
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return results, canceled(err)
	}
	return results, nil
}

func (p *Pipeline) export(ctx context.Context, job Job) ([]byte, error) {
	src := job.Source
	if src == nil {
		if job.Open == nil {
			return nil, fmt.Errorf("%w: job %q has no source", ErrNoDrawingContext, job.Name)
		}
		rc, err := job.Open()
		if err != nil {
			return nil, fmt.Errorf("filmlab: open %q: %w", job.Name, err)
		}
		img, err := p.DecodeSource(ctx, rc)
		_ = rc.Close()
		if err != nil {
			return nil, err
		}
		src = img
	}
	req := job.Request
	req.Mode = ModeExport
	return p.Encode(ctx, src, req, job.Output)
}
