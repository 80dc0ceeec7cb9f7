// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package image decodes source images, pre-scales oversized sources,
// encodes rendered output and pools scratch NRGBA buffers.
package image

import (
	"image"
	"slices"
	"sync"
)

// DefaultPoolSizes bounds how many distinct sizes a Pool keeps.
const DefaultPoolSizes = 8

// Pool is a thread-safe pool for reusing NRGBA buffers.
//
// Pool groups buffers by their dimensions, allowing efficient reuse of
// identically-sized buffers. Preview renders of the same frame size reuse
// one scratch image instead of allocating per call. At most maxSizes
// distinct sizes are kept; storing a new size drops the least recently
// used one.
//
// Thread safety: All methods are safe for concurrent use.
type Pool struct {
	mu       sync.Mutex
	buckets  map[image.Point][]*image.NRGBA
	recent   []image.Point // sizes with pooled buffers, most recent last
	maxSize  int           // max buffers per bucket
	maxSizes int
}

// NewPool creates a pool keeping up to maxPerBucket buffers of each size
// and up to maxSizes sizes. Zero means unlimited for either bound.
func NewPool(maxPerBucket, maxSizes int) *Pool {
	return &Pool{
		buckets:  make(map[image.Point][]*image.NRGBA),
		maxSize:  maxPerBucket,
		maxSizes: maxSizes,
	}
}

// Get retrieves a w×h buffer anchored at the origin, or creates one.
// Reused buffers are cleared.
func (p *Pool) Get(w, h int) *image.NRGBA {
	key := image.Pt(w, h)

	p.mu.Lock()
	bucket := p.buckets[key]
	if n := len(bucket); n > 0 {
		img := bucket[n-1]
		if n == 1 {
			delete(p.buckets, key)
			p.forget(key)
		} else {
			p.buckets[key] = bucket[:n-1]
			p.touch(key)
		}
		p.mu.Unlock()
		clear(img.Pix)
		return img
	}
	p.mu.Unlock()

	return image.NewNRGBA(image.Rect(0, 0, w, h))
}

// Put returns a buffer to the pool. Buffers not anchored at the origin or
// with padded rows are discarded, as are buffers beyond the bucket limit.
func (p *Pool) Put(img *image.NRGBA) {
	if img == nil || img.Rect.Min != (image.Point{}) || img.Stride != img.Rect.Dx()*4 {
		return
	}
	key := img.Rect.Size()

	p.mu.Lock()
	defer p.mu.Unlock()

	bucket := p.buckets[key]
	if p.maxSize > 0 && len(bucket) >= p.maxSize {
		return
	}
	p.buckets[key] = append(bucket, img)
	p.touch(key)
	for p.maxSizes > 0 && len(p.recent) > p.maxSizes {
		delete(p.buckets, p.recent[0])
		p.recent = p.recent[1:]
	}
}

// Len returns the number of pooled buffers.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, b := range p.buckets {
		n += len(b)
	}
	return n
}

// Sizes returns the number of distinct sizes held.
func (p *Pool) Sizes() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.buckets)
}

// touch moves key to the most recent end. Callers hold p.mu.
func (p *Pool) touch(key image.Point) {
	p.forget(key)
	p.recent = append(p.recent, key)
}

func (p *Pool) forget(key image.Point) {
	if i := slices.Index(p.recent, key); i >= 0 {
		p.recent = slices.Delete(p.recent, i, i+1)
	}
}
