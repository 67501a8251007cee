// Package worker runs batch analyses on a bounded pool with per-key rate limits.
package worker

import (
	"context"
	"sync"
)

// Job is a unit of work
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is the outcome of a Job
type Result interface {
	GetError() error
}

// Pool runs jobs on a fixed number of goroutines. Results are collected
// concurrently so Submit never blocks on unread results.
type Pool struct {
	workers   int
	jobQueue  chan Job
	results   chan Result
	collected []Result
	wg        sync.WaitGroup
	collector sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewPool creates a pool bound to ctx; workers <= 0 means one worker
func NewPool(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(ctx)
	return &Pool{
		workers:  workers,
		jobQueue: make(chan Job, workers*2),
		results:  make(chan Result, workers*2),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches the workers and the result collector
func (p *Pool) Start() {
	p.collector.Add(1)
	go func() {
		defer p.collector.Done()
		for result := range p.results {
			p.collected = append(p.collected, result)
		}
	}()

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobQueue:
			if !ok {
				return
			}
			p.results <- job.Execute(p.ctx)
		}
	}
}

// Submit queues a job; it returns false once the pool is cancelled
func (p *Pool) Submit(job Job) bool {
	select {
	case <-p.ctx.Done():
		return false
	case p.jobQueue <- job:
		return true
	}
}

// Wait closes the queue, waits for running jobs and returns every result
func (p *Pool) Wait() []Result {
	close(p.jobQueue)
	p.wg.Wait()
	p.closeResults()
	p.collector.Wait()
	p.cancel()
	return p.collected
}

// Shutdown cancels queued work and waits for workers to exit.
// Jobs already running see a cancelled context.
func (p *Pool) Shutdown() []Result {
	p.cancel()
	p.wg.Wait()
	p.closeResults()
	p.collector.Wait()
	return p.collected
}

func (p *Pool) closeResults() {
	p.closeOnce.Do(func() {
		close(p.results)
	})
}
