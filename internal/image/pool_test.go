package image

import (
	"image"
	"sync"
	"testing"
)

func TestPoolReusesAndClears(t *testing.T) {
	pool := NewPool(4, 0)

	a := pool.Get(8, 4)
	if a.Rect != image.Rect(0, 0, 8, 4) {
		t.Fatalf("rect = %v", a.Rect)
	}
	a.Pix[0] = 99
	pool.Put(a)
	if pool.Len() != 1 {
		t.Fatalf("Len = %d, want 1", pool.Len())
	}

	b := pool.Get(8, 4)
	if b != a {
		t.Error("same-size Get did not reuse the pooled buffer")
	}
	if b.Pix[0] != 0 {
		t.Error("reused buffer not cleared")
	}
	if c := pool.Get(4, 8); c == a {
		t.Error("different size returned the pooled buffer")
	}
}

func TestPoolBucketLimit(t *testing.T) {
	pool := NewPool(2, 0)
	for range 5 {
		pool.Put(image.NewNRGBA(image.Rect(0, 0, 3, 3)))
	}
	if pool.Len() != 2 {
		t.Errorf("Len = %d, want 2", pool.Len())
	}
}

func TestPoolRejectsViews(t *testing.T) {
	pool := NewPool(0, 0)
	big := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	pool.Put(big.SubImage(image.Rect(0, 0, 5, 5)).(*image.NRGBA))
	pool.Put(big.SubImage(image.Rect(2, 2, 6, 6)).(*image.NRGBA))
	pool.Put(nil)
	if pool.Len() != 0 {
		t.Errorf("Len = %d, want 0", pool.Len())
	}
}

func TestPoolConcurrent(t *testing.T) {
	pool := NewPool(8, 0)
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				img := pool.Get(16, 16)
				img.Pix[0] = 1
				pool.Put(img)
			}
		}()
	}
	wg.Wait()
	if n := pool.Len(); n < 1 || n > 8 {
		t.Errorf("Len = %d, want 1..8", n)
	}
}

func TestPoolDropsLeastRecentSize(t *testing.T) {
	pool := NewPool(4, 2)
	a := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	pool.Put(a)
	pool.Put(image.NewNRGBA(image.Rect(0, 0, 3, 3)))
	pool.Get(2, 2)
	pool.Put(a)
	for w := 4; w < 40; w++ {
		pool.Put(image.NewNRGBA(image.Rect(0, 0, w, 1)))
		if pool.Sizes() > 2 {
			t.Fatalf("after %d sizes: %d sizes held, want at most 2", w, pool.Sizes())
		}
	}
	if pool.Len() != 2 {
		t.Errorf("Len = %d, want 2", pool.Len())
	}
	if got := pool.Get(2, 2); got == a {
		t.Error("evicted size still served from the pool")
	}
}

func TestPoolEmptiedSizeFreesSlot(t *testing.T) {
	pool := NewPool(1, 1)
	a := image.NewNRGBA(image.Rect(0, 0, 5, 5))
	pool.Put(a)
	if pool.Get(5, 5) != a {
		t.Fatal("pooled buffer not reused")
	}
	if pool.Sizes() != 0 {
		t.Errorf("Sizes = %d after draining, want 0", pool.Sizes())
	}
}
