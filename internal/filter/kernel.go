package filter

import (
	"math"
	"sync"
)

// Taps is the number of taps of every blur kernel.
const Taps = 13

// HalfTaps is the number of taps on each side of the center.
const HalfTaps = Taps / 2

// Kernel is a normalized sparse Gaussian kernel. Tap i samples at offset
// (i-HalfTaps)*Step pixels.
type Kernel struct {
	Sigma   float32
	Step    float32
	Weights [Taps]float32
}

// Offset returns the sample offset of tap i in pixels.
func (k Kernel) Offset(i int) float32 {
	return float32(i-HalfTaps) * k.Step
}

// IsIdentity reports whether the kernel leaves its input unchanged.
func (k Kernel) IsIdentity() bool {
	return k.Sigma <= 0
}

// SparseKernel generates the kernel for sigma. The weights are
// exp(-(k*step)²/(2σ²)) normalized to sum to one. For sigma <= 0 the
// kernel is the identity.
func SparseKernel(sigma float32) Kernel {
	var k Kernel
	if sigma <= 0 || math.IsNaN(float64(sigma)) {
		k.Weights[HalfTaps] = 1
		return k
	}
	k.Sigma = sigma
	k.Step = max(sigma/2, 0.25)

	twoSigmaSq := 2 * float64(sigma) * float64(sigma)
	sum := 0.0
	var w [Taps]float64
	for i := range w {
		x := float64(k.Offset(i))
		w[i] = math.Exp(-(x * x) / twoSigmaSq)
		sum += w[i]
	}
	for i := range w {
		k.Weights[i] = float32(w[i] / sum)
	}
	return k
}

// kernelCache caches computed kernels keyed by sigma quantized to 0.01.
type kernelCache struct {
	mu     sync.RWMutex
	cache  map[int]Kernel
	maxLen int
}

var defaultKernelCache = newKernelCache(64)

func newKernelCache(maxLen int) *kernelCache {
	return &kernelCache{
		cache:  make(map[int]Kernel),
		maxLen: maxLen,
	}
}

func (c *kernelCache) get(sigma float32) Kernel {
	key := int(math.Round(float64(sigma) * 100))

	c.mu.RLock()
	if k, ok := c.cache[key]; ok {
		c.mu.RUnlock()
		return k
	}
	c.mu.RUnlock()

	k := SparseKernel(float32(key) / 100)

	c.mu.Lock()
	if len(c.cache) >= c.maxLen {
		// Drop half; kernels are cheap to rebuild.
		count := 0
		for key := range c.cache {
			delete(c.cache, key)
			count++
			if count >= c.maxLen/2 {
				break
			}
		}
	}
	c.cache[key] = k
	c.mu.Unlock()
	return k
}

// CachedKernel returns the kernel for sigma quantized to 0.01 pixels.
// Both tiers call this so they see the same weights.
func CachedKernel(sigma float32) Kernel {
	return defaultKernelCache.get(sigma)
}
