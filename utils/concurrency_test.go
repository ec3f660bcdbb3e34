package utils

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestSetNoDuplicates(t *testing.T) {
	s := NewSet[string]()

	if !s.Add("2025-01-01|AirlineA|100") {
		t.Error("first Add should return true")
	}
	if s.Add("2025-01-01|AirlineA|100") {
		t.Error("second Add of same key should return false")
	}
	if !s.Add("2025-01-02|AirlineA|100") {
		t.Error("Add of a different key should return true")
	}
}

func TestSetConcurrentAdd(t *testing.T) {
	s := NewSet[int]()
	var added int64

	pool := NewWorkerPool(10)
	for i := 0; i < 100; i++ {
		pool.Submit(func() {
			if s.Add(42) {
				atomic.AddInt64(&added, 1)
			}
		})
	}
	pool.Wait()

	if added != 1 {
		t.Errorf("expected exactly 1 successful add, got %d", added)
	}
}

func TestWorkerPoolBoundsConcurrency(t *testing.T) {
	pool := NewWorkerPool(3)
	var running, peak int64
	for i := 0; i < 12; i++ {
		pool.Submit(func() {
			n := atomic.AddInt64(&running, 1)
			for {
				p := atomic.LoadInt64(&peak)
				if n <= p || atomic.CompareAndSwapInt64(&peak, p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt64(&running, -1)
		})
	}
	pool.Wait()

	if peak > 3 {
		t.Errorf("peak concurrency %d exceeds 3 workers", peak)
	}
}

func TestOrderedMapKeepsInputOrder(t *testing.T) {
	inputs := []int{5, 1, 4, 2, 3}
	got := OrderedMap(inputs, 0, func(n int) int {
		time.Sleep(time.Duration(n) * time.Millisecond)
		return n * 10
	})
	want := []int{50, 10, 40, 20, 30}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("OrderedMap: got %v, want %v", got, want)
		}
	}
	if len(OrderedMap(nil, 4, func(int) int { return 0 })) != 0 {
		t.Error("empty input should give empty output")
	}
}
