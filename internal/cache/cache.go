// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package cache provides the small keyed caches a Pipeline owns: generated
// shader programs keyed by feature set, and compiled GPU kernel sets.
package cache

import (
	"container/list"
	"sync"
)

// Cache is a bounded least-recently-used map safe for concurrent use.
// Values leaving the cache are handed to the OnEvict callback, which is how
// GPU resources held by a value get released.
//
// Cache must not be copied after creation (has mutex).
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	limit   int
	order   *list.List // front is most recent
	index   map[K]*list.Element
	onEvict func(K, V)
}

type item[K comparable, V any] struct {
	key   K
	value V
}

// New creates a cache holding at most limit entries. A limit of 0 means
// unbounded.
func New[K comparable, V any](limit int) *Cache[K, V] {
	return &Cache[K, V]{
		limit: limit,
		order: list.New(),
		index: make(map[K]*list.Element),
	}
}

// OnEvict sets the callback run for every entry removed by eviction,
// Delete or Clear. It runs with the cache lock held and must not call back
// into the cache.
func (c *Cache[K, V]) OnEvict(fn func(K, V)) {
	c.mu.Lock()
	c.onEvict = fn
	c.mu.Unlock()
}

// Get returns the value for key and marks it recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lookup(key)
}

// Set stores value under key. A replaced value is passed to OnEvict.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.index[key]; ok {
		c.remove(el)
	}
	c.insert(key, value)
}

// GetOrCreate returns the cached value or builds it with create. create
// runs under the lock, so a key is never built twice concurrently. Errors
// are returned and nothing is stored.
func (c *Cache[K, V]) GetOrCreate(key K, create func() (V, error)) (V, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.lookup(key); ok {
		return v, nil
	}
	v, err := create()
	if err != nil {
		return v, err
	}
	c.insert(key, v)
	return v, nil
}

// Delete removes key and reports whether it was present.
func (c *Cache[K, V]) Delete(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.index[key]
	if ok {
		c.remove(el)
	}
	return ok
}

// Clear removes every entry, least recently used first.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.order.Len() > 0 {
		c.remove(c.order.Back())
	}
}

// Len returns the number of entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *Cache[K, V]) lookup(key K) (V, bool) {
	el, ok := c.index[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*item[K, V]).value, true
}

func (c *Cache[K, V]) insert(key K, value V) {
	c.index[key] = c.order.PushFront(&item[K, V]{key: key, value: value})
	for c.limit > 0 && c.order.Len() > c.limit {
		c.remove(c.order.Back())
	}
}

func (c *Cache[K, V]) remove(el *list.Element) {
	it := c.order.Remove(el).(*item[K, V])
	delete(c.index, it.key)
	if c.onEvict != nil {
		c.onEvict(it.key, it.value)
	}
}
