package dataset

import (
	"runtime"
	"sync"
)

// workerPool runs OCR jobs concurrently while the corpus builder walks
// the sample tree
type workerPool struct {
	workers  int
	jobQueue chan func()
	wg       sync.WaitGroup
	once     sync.Once
}

func newWorkerPool(workers int) *workerPool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &workerPool{
		workers:  workers,
		jobQueue: make(chan func(), workers*2),
	}
}

func (wp *workerPool) start() {
	wp.once.Do(func() {
		for i := 0; i < wp.workers; i++ {
			go wp.worker()
		}
	})
}

func (wp *workerPool) worker() {
	for job := range wp.jobQueue {
		job()
		wp.wg.Done()
	}
}

func (wp *workerPool) submit(job func()) {
	wp.wg.Add(1)
	wp.jobQueue <- job
}

func (wp *workerPool) wait() {
	wp.wg.Wait()
}

func (wp *workerPool) close() {
	close(wp.jobQueue)
}
