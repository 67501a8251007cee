package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type mockResult struct {
	err error
}

func (r *mockResult) GetError() error {
	return r.err
}

type mockJob struct {
	duration  time.Duration
	shouldErr bool
	executed  *int32
}

func (j *mockJob) Execute(ctx context.Context) Result {
	if j.executed != nil {
		atomic.AddInt32(j.executed, 1)
	}
	if j.duration > 0 {
		select {
		case <-time.After(j.duration):
		case <-ctx.Done():
			return &mockResult{err: ctx.Err()}
		}
	}
	if j.shouldErr {
		return &mockResult{err: errors.New("job error")}
	}
	return &mockResult{}
}

func TestNewPool(t *testing.T) {
	if p := NewPool(context.Background(), 5); p.workers != 5 {
		t.Errorf("expected 5 workers, got %d", p.workers)
	}
	if p := NewPool(context.Background(), 0); p.workers != 1 {
		t.Errorf("expected default 1 worker for 0 input, got %d", p.workers)
	}
	if p := NewPool(context.Background(), -1); p.workers != 1 {
		t.Errorf("expected default 1 worker for negative input, got %d", p.workers)
	}
}

func TestPool_Execution(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()

	var executed int32
	count := 10
	for i := 0; i < count; i++ {
		pool.Submit(&mockJob{executed: &executed})
	}

	results := pool.Wait()
	if len(results) != count {
		t.Errorf("expected %d results, got %d", count, len(results))
	}
	if atomic.LoadInt32(&executed) != int32(count) {
		t.Errorf("expected %d executed jobs, got %d", count, executed)
	}
}

// Many more jobs than buffer space must not deadlock
func TestPool_LargeBatch(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()

	count := 200
	for i := 0; i < count; i++ {
		pool.Submit(&mockJob{})
	}

	done := make(chan []Result)
	go func() { done <- pool.Wait() }()

	select {
	case results := <-done:
		if len(results) != count {
			t.Errorf("expected %d results, got %d", count, len(results))
		}
	case <-time.After(5 * time.Second):
		t.Fatal("pool deadlocked")
	}
}

type concurrencyJob struct {
	current  *int32
	max      *int32
	duration time.Duration
}

func (j *concurrencyJob) Execute(ctx context.Context) Result {
	curr := atomic.AddInt32(j.current, 1)
	for {
		old := atomic.LoadInt32(j.max)
		if curr <= old || atomic.CompareAndSwapInt32(j.max, old, curr) {
			break
		}
	}
	time.Sleep(j.duration)
	atomic.AddInt32(j.current, -1)
	return &mockResult{}
}

func TestPool_Concurrency(t *testing.T) {
	workers := 10
	pool := NewPool(context.Background(), workers)
	pool.Start()

	var current, maxConcurrent int32
	for i := 0; i < 50; i++ {
		pool.Submit(&concurrencyJob{current: &current, max: &maxConcurrent, duration: 10 * time.Millisecond})
	}
	results := pool.Wait()

	if len(results) != 50 {
		t.Errorf("expected 50 results, got %d", len(results))
	}
	if max := atomic.LoadInt32(&maxConcurrent); max > int32(workers) {
		t.Errorf("max concurrency %d exceeded workers %d", max, workers)
	}
}

func TestPool_ErrorHandling(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()

	pool.Submit(&mockJob{shouldErr: true})
	pool.Submit(&mockJob{shouldErr: false})

	results := pool.Wait()
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	failed := 0
	for _, res := range results {
		if res.GetError() != nil {
			failed++
		}
	}
	if failed != 1 {
		t.Errorf("expected 1 error, got %d", failed)
	}
}

func TestPool_SubmitAfterShutdown(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()
	pool.Shutdown()

	done := make(chan bool)
	go func() { done <- pool.Submit(&mockJob{}) }()

	select {
	case accepted := <-done:
		if accepted {
			t.Error("expected Submit after shutdown to be rejected")
		}
	case <-time.After(time.Second):
		t.Fatal("Submit after shutdown blocked")
	}
}

func TestPool_ParentCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewPool(ctx, 1)
	pool.Start()

	pool.Submit(&mockJob{duration: time.Second})
	time.Sleep(20 * time.Millisecond)
	cancel()

	done := make(chan []Result)
	go func() { done <- pool.Shutdown() }()

	select {
	case results := <-done:
		if len(results) != 1 || !errors.Is(results[0].GetError(), context.Canceled) {
			t.Errorf("expected one cancelled result, got %v", results)
		}
	case <-time.After(time.Second):
		t.Fatal("Shutdown timed out")
	}
}
