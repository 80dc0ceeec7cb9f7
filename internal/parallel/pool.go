// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package parallel runs row bands of a frame on a fixed set of goroutines.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// minBandRows is the smallest band handed to a worker.
const minBandRows = 8

// WorkerPool is a fixed set of goroutines fed from one queue. Several
// renders may share a pool; each call waits only for its own work.
type WorkerPool struct {
	workers int
	jobs    chan func()
	wg      sync.WaitGroup

	mu     sync.RWMutex // guards closed against sends on jobs
	closed bool
}

// NewWorkerPool starts a pool. Zero or negative workers means GOMAXPROCS.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	p := &WorkerPool{
		workers: workers,
		jobs:    make(chan func(), workers),
	}
	p.wg.Add(workers)
	for range workers {
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				job()
			}
		}()
	}
	return p
}

// ExecuteAll runs every item and waits for all of them. On a closed pool the
// items run on the calling goroutine.
func (p *WorkerPool) ExecuteAll(work []func()) {
	if len(work) == 0 {
		return
	}
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		for _, fn := range work {
			fn()
		}
		return
	}
	var wg sync.WaitGroup
	wg.Add(len(work))
	for _, fn := range work {
		p.jobs <- func() {
			defer wg.Done()
			fn()
		}
	}
	p.mu.RUnlock()
	wg.Wait()
}

// Rows splits [0, n) into contiguous bands and calls fn once per band,
// returning when every band is done. Workers claim bands in order, so a
// slow band does not hold up the rest.
func (p *WorkerPool) Rows(n int, fn func(y0, y1 int)) {
	if n <= 0 {
		return
	}
	bands := min(p.workers*2, (n+minBandRows-1)/minBandRows)
	if bands <= 1 {
		fn(0, n)
		return
	}
	size := (n + bands - 1) / bands

	var next atomic.Int64
	claim := func() {
		for {
			y0 := int(next.Add(1)-1) * size
			if y0 >= n {
				return
			}
			fn(y0, min(y0+size, n))
		}
	}
	work := make([]func(), min(p.workers, bands))
	for i := range work {
		work[i] = claim
	}
	p.ExecuteAll(work)
}

// Close stops the workers once queued work has run. Later calls run work
// inline. Close is safe to call more than once.
func (p *WorkerPool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *WorkerPool) Workers() int {
	return p.workers
}
