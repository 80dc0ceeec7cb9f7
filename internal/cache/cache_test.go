package cache

import (
	"errors"
	"sync"
	"testing"
)

func TestGetSet(t *testing.T) {
	c := New[string, int](0)
	if _, ok := c.Get("a"); ok {
		t.Fatal("empty cache hit")
	}
	c.Set("a", 1)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v", v, ok)
	}
}

func TestGetOrCreateOnce(t *testing.T) {
	c := New[int, int](0)
	var calls int
	var wg sync.WaitGroup
	var mu sync.Mutex
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.GetOrCreate(7, func() (int, error) {
				mu.Lock()
				calls++
				mu.Unlock()
				return 49, nil
			})
			if err != nil || v != 49 {
				t.Errorf("GetOrCreate = %d, %v", v, err)
			}
		}()
	}
	wg.Wait()
	if calls != 1 {
		t.Errorf("create called %d times, want 1", calls)
	}
}

func TestGetOrCreateErrorNotStored(t *testing.T) {
	c := New[int, int](0)
	boom := errors.New("boom")
	if _, err := c.GetOrCreate(1, func() (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if c.Len() != 0 {
		t.Error("failed create was stored")
	}
}

func TestEvictionCallsOnEvict(t *testing.T) {
	c := New[int, int](4)
	var evicted []int
	c.OnEvict(func(k, _ int) { evicted = append(evicted, k) })
	for i := range 6 {
		c.Set(i, i)
	}
	if c.Len() != 4 {
		t.Errorf("Len = %d, want 4", c.Len())
	}
	if len(evicted) != 2 || evicted[0] != 0 || evicted[1] != 1 {
		t.Errorf("evicted = %v, want [0 1]", evicted)
	}
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c := New[string, int](2)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Set("c", 3)
	if _, ok := c.Get("b"); ok {
		t.Error("b survived although a was used more recently")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a evicted")
	}
}

func TestSetReplaceReleasesOldValue(t *testing.T) {
	c := New[string, int](0)
	var released []int
	c.OnEvict(func(_ string, v int) { released = append(released, v) })
	c.Set("k", 1)
	c.Set("k", 2)
	if v, _ := c.Get("k"); v != 2 || c.Len() != 1 {
		t.Errorf("Get = %d, Len = %d", v, c.Len())
	}
	if len(released) != 1 || released[0] != 1 {
		t.Errorf("released = %v, want [1]", released)
	}
}

func TestDeleteAndClear(t *testing.T) {
	c := New[string, int](0)
	var n int
	c.OnEvict(func(string, int) { n++ })
	c.Set("a", 1)
	c.Set("b", 2)
	if !c.Delete("a") || c.Delete("a") {
		t.Error("Delete results wrong")
	}
	c.Clear()
	if c.Len() != 0 || n != 2 {
		t.Errorf("Len = %d, evictions = %d", c.Len(), n)
	}
}
