package utils

import "sync"

// WorkerPool runs jobs on at most maxWorkers goroutines at a time.
type WorkerPool struct {
	slots chan struct{}
	wg    sync.WaitGroup
}

// NewWorkerPool creates a WorkerPool; maxWorkers below 1 means 1.
func NewWorkerPool(maxWorkers int) *WorkerPool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &WorkerPool{slots: make(chan struct{}, maxWorkers)}
}

// Submit blocks until a worker slot is free, then runs job on it.
func (wp *WorkerPool) Submit(job func()) {
	wp.wg.Add(1)
	wp.slots <- struct{}{}

	go func() {
		defer wp.wg.Done()
		defer func() { <-wp.slots }()
		job()
	}()
}

// Wait blocks until all submitted jobs have completed.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

// OrderedMap applies fn to every input on a pool of workers. Results keep
// the order of inputs whatever order the jobs finish in.
func OrderedMap[In, Out any](inputs []In, workers int, fn func(In) Out) []Out {
	out := make([]Out, len(inputs))
	pool := NewWorkerPool(workers)
	for i := range inputs {
		i := i
		pool.Submit(func() {
			out[i] = fn(inputs[i])
		})
	}
	pool.Wait()
	return out
}

// Set is a concurrency-safe set of comparable keys.
type Set[K comparable] struct {
	mu    sync.Mutex
	items map[K]struct{}
}

// NewSet creates an empty Set.
func NewSet[K comparable]() *Set[K] {
	return &Set[K]{items: make(map[K]struct{})}
}

// Add reports whether key was newly added.
func (s *Set[K]) Add(key K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[key]; ok {
		return false
	}
	s.items[key] = struct{}{}
	return true
}
