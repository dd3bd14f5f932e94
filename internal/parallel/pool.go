package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// WorkerPool is a fixed pool of goroutines shared by every canvas operation
// that fans out over tiles.
//
// Jobs are dealt round-robin onto per-worker queues. A worker whose queue
// runs dry takes jobs from its neighbours, so one slow tile does not hold
// back the rest of a phase.
//
// Thread safety: WorkerPool is safe for concurrent use.
type WorkerPool struct {
	queues  []chan func()
	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool
}

// NewWorkerPool starts n workers. If n is 0 or negative, GOMAXPROCS is used.
func NewWorkerPool(n int) *WorkerPool {
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	depth := max(n*4, 8)

	p := &WorkerPool{
		queues: make([]chan func(), n),
		done:   make(chan struct{}),
	}
	for i := range p.queues {
		p.queues[i] = make(chan func(), depth)
	}
	p.running.Store(true)

	p.wg.Add(n)
	for i := range n {
		go p.run(i)
	}
	return p
}

// Workers returns the number of worker goroutines.
func (p *WorkerPool) Workers() int {
	return len(p.queues)
}

// run serves queue id until the pool closes, then finishes what is left
// in it.
func (p *WorkerPool) run(id int) {
	defer p.wg.Done()
	own := p.queues[id]

	for {
		select {
		case job := <-own:
			job()
			continue
		case <-p.done:
			drain(own)
			return
		default:
		}

		if job := p.take(id); job != nil {
			job()
			continue
		}

		select {
		case job := <-own:
			job()
		case <-p.done:
			drain(own)
			return
		}
	}
}

// take pops one job from any queue other than id, or returns nil.
func (p *WorkerPool) take(id int) func() {
	n := len(p.queues)
	for k := 1; k < n; k++ {
		select {
		case job := <-p.queues[(id+k)%n]:
			return job
		default:
		}
	}
	return nil
}

func drain(q chan func()) {
	for {
		select {
		case job := <-q:
			job()
		default:
			return
		}
	}
}

// ExecuteAll distributes work across workers and waits for all of it to
// complete. It is the barrier every parallel phase of the painting core goes
// through: one job per tile, then wait.
//
// A single item, or a closed pool, runs on the calling goroutine.
func (p *WorkerPool) ExecuteAll(work []func()) {
	if len(work) == 0 {
		return
	}
	if len(work) == 1 || !p.running.Load() {
		for _, fn := range work {
			fn()
		}
		return
	}

	var wg sync.WaitGroup
	wg.Add(len(work))
	for i, fn := range work {
		job := func() {
			defer wg.Done()
			fn()
		}
		select {
		case p.queues[i%len(p.queues)] <- job:
		case <-p.done:
			job()
		}
	}
	wg.Wait()
}

// ForEach runs fn(i) for i in [0, n) on the pool and waits.
func (p *WorkerPool) ForEach(n int, fn func(i int)) {
	if n <= 0 {
		return
	}
	work := make([]func(), n)
	for i := range work {
		work[i] = func() { fn(i) }
	}
	p.ExecuteAll(work)
}

// Close stops the workers after their queues drain. Later phases run on
// the caller. Close may be called more than once.
func (p *WorkerPool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}
