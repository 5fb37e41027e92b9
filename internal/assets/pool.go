package assets

import (
	"context"
	"sync"

	"digicards/internal/components/telemetry"
)

// Task is a unit of work run by the worker pool.
type Task func(ctx context.Context) error

const report_pool_task = "pool.task"

// WorkerPool runs tasks on a fixed number of goroutines.
type WorkerPool struct {
	workerCount int
	taskQueue   chan Task
	wg          sync.WaitGroup
	ctx         context.Context
	tel         telemetry.API
	closed      bool
	closeMux    sync.Mutex
}

// NewWorkerPool creates a pool whose tasks run under a context detached from the cancellation
// of `ctx`, a task that was submitted always runs to completion.
func NewWorkerPool(ctx context.Context, workerCount int, tel telemetry.API) *WorkerPool {
	if workerCount <= 0 {
		workerCount = 1
	}
	return &WorkerPool{
		workerCount: workerCount,
		taskQueue:   make(chan Task, workerCount*2),
		ctx:         context.WithoutCancel(ctx),
		tel:         tel,
	}
}

func (wp *WorkerPool) Start() {
	for i := 0; i < wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
	wp.tel.ReportDebug("worker pool started", "workers", wp.workerCount)
}

// Submit queues a task, it blocks while the queue is full. False is returned if `ctx` is done
// before the task could be queued.
func (wp *WorkerPool) Submit(ctx context.Context, task Task) bool {
	select {
	case <-ctx.Done():
		return false
	default:
	}
	select {
	case wp.taskQueue <- task:
		return true
	case <-ctx.Done():
		return false
	}
}

// Wait closes the queue and blocks until every queued task is done.
func (wp *WorkerPool) Wait() {
	wp.closeMux.Lock()
	if !wp.closed {
		close(wp.taskQueue)
		wp.closed = true
	}
	wp.closeMux.Unlock()

	wp.wg.Wait()
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for task := range wp.taskQueue {
		if err := task(wp.ctx); err != nil {
			wp.tel.ReportDebug("task failed", "worker", id, "err", err)
		}
	}
}
