package pool

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Task represents a unit of work to be executed
type Task func() error

// WorkerPool runs background maintenance tasks (blob deletions, cleanup)
// on a fixed set of goroutines with a bounded queue.
type WorkerPool struct {
	maxWorkers  int
	taskQueue   chan Task
	workerWg    sync.WaitGroup
	quit        chan struct{}
	activeCount int32
	totalTasks  int64
	failedTasks int64
	avgExecTime int64 // nanoseconds
	started     bool
	mu          sync.RWMutex
}

// NewWorkerPool creates a new worker pool. The queue holds
// maxWorkers*queueMultiplier pending tasks before Submit falls back to a
// dedicated goroutine.
func NewWorkerPool(maxWorkers, queueMultiplier int) *WorkerPool {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	if queueMultiplier <= 0 {
		queueMultiplier = 10
	}

	return &WorkerPool{
		maxWorkers: maxWorkers,
		taskQueue:  make(chan Task, maxWorkers*queueMultiplier),
		quit:       make(chan struct{}),
	}
}

// Start initializes and starts all workers
func (p *WorkerPool) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return fmt.Errorf("worker pool already started")
	}

	for i := 0; i < p.maxWorkers; i++ {
		p.workerWg.Add(1)
		go p.worker()
	}

	p.started = true
	return nil
}

// worker is the main goroutine that processes tasks
func (p *WorkerPool) worker() {
	defer p.workerWg.Done()

	for {
		select {
		case task := <-p.taskQueue:
			if task == nil {
				continue
			}
			p.run(task)

		case <-p.quit:
			p.drain()
			return
		}
	}
}

// drain runs whatever is still queued so Stop does not drop pending
// tasks.
func (p *WorkerPool) drain() {
	for {
		select {
		case task := <-p.taskQueue:
			if task == nil {
				continue
			}
			p.run(task)
		default:
			return
		}
	}
}

func (p *WorkerPool) run(task Task) {
	start := time.Now()
	atomic.AddInt32(&p.activeCount, 1)
	atomic.AddInt64(&p.totalTasks, 1)

	if err := task(); err != nil {
		atomic.AddInt64(&p.failedTasks, 1)
	}

	elapsed := time.Since(start).Nanoseconds()
	// Simple moving average of execution time
	oldAvg := atomic.LoadInt64(&p.avgExecTime)
	atomic.StoreInt64(&p.avgExecTime, (oldAvg*9+elapsed)/10)

	atomic.AddInt32(&p.activeCount, -1)
}

// Submit adds a task to the queue
func (p *WorkerPool) Submit(task Task) error {
	p.mu.RLock()
	if !p.started {
		p.mu.RUnlock()
		return fmt.Errorf("worker pool not started")
	}
	p.mu.RUnlock()

	select {
	case p.taskQueue <- task:
		return nil
	default:
		// Queue is full, execute in new goroutine as fallback
		go p.run(task)
		return nil
	}
}

// Stop shuts down the worker pool, waiting for in-flight and queued
// tasks to finish
func (p *WorkerPool) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	close(p.quit)
	p.workerWg.Wait()
	p.started = false
}

// ActiveWorkers returns the number of currently active workers
func (p *WorkerPool) ActiveWorkers() int32 {
	return atomic.LoadInt32(&p.activeCount)
}

// QueueSize returns the current number of tasks in queue
func (p *WorkerPool) QueueSize() int {
	return len(p.taskQueue)
}

// WorkerPoolStats holds statistics about the worker pool
type WorkerPoolStats struct {
	MaxWorkers    int     `json:"max_workers"`
	ActiveWorkers int32   `json:"active_workers"`
	QueueSize     int     `json:"queue_size"`
	TotalTasks    int64   `json:"total_tasks"`
	FailedTasks   int64   `json:"failed_tasks"`
	SuccessRate   float64 `json:"success_rate"`
	AvgExecTimeMs float64 `json:"avg_exec_time_ms"`
}

// Stats returns current pool statistics
func (p *WorkerPool) Stats() WorkerPoolStats {
	total := atomic.LoadInt64(&p.totalTasks)
	failed := atomic.LoadInt64(&p.failedTasks)
	avgNs := atomic.LoadInt64(&p.avgExecTime)

	successRate := float64(0)
	if total > 0 {
		successRate = float64(total-failed) / float64(total)
	}

	return WorkerPoolStats{
		MaxWorkers:    p.maxWorkers,
		ActiveWorkers: atomic.LoadInt32(&p.activeCount),
		QueueSize:     p.QueueSize(),
		TotalTasks:    total,
		FailedTasks:   failed,
		SuccessRate:   successRate,
		AvgExecTimeMs: float64(avgNs) / 1e6,
	}
}
