package adjust

import "sync"

// Memo caches the most recent normalization, keyed by the identity of the
// Raw pointer. Callers that mutate a Raw in place must pass a new pointer
// to see the change. A zero Memo is ready to use and safe for concurrent
// use.
type Memo struct {
	mu     sync.Mutex
	last   *Raw
	result Set
	valid  bool
	hits   uint64
}

// Normalize returns Normalize(r), reusing the cached result when r is the
// same pointer as the previous call. The returned set is always a private
// copy.
func (m *Memo) Normalize(r *Raw) Set {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.valid && m.last == r {
		m.hits++
		return m.result.Clone()
	}
	m.result = Normalize(r)
	m.last = r
	m.valid = true
	return m.result.Clone()
}

// Hits returns how many calls were served from the cache.
func (m *Memo) Hits() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits
}

// Reset drops the cached entry.
func (m *Memo) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = nil
	m.valid = false
	m.result = Set{}
}
