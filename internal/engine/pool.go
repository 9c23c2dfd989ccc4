package engine

import (
	"sync"
)

// renderPool runs hazard-grid row renders across a small set of
// goroutines. Each Render call is a complete batch: it returns only
// after every submitted row has been rendered, so the field snapshot
// is never observed half-built.
type renderPool struct {
	numWorkers int
	jobs       chan func()
	wg         sync.WaitGroup
}

func newRenderPool(numWorkers int) *renderPool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	p := &renderPool{
		numWorkers: numWorkers,
		jobs:       make(chan func(), numWorkers*2),
	}
	for i := 0; i < numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *renderPool) worker() {
	defer p.wg.Done()
	for job := range p.jobs {
		job()
	}
}

// Render invokes fn for every row in [0, rows) and waits for all of
// them to finish.
func (p *renderPool) Render(rows int, fn func(row int)) {
	var batch sync.WaitGroup
	batch.Add(rows)
	for row := 0; row < rows; row++ {
		row := row
		p.jobs <- func() {
			defer batch.Done()
			fn(row)
		}
	}
	batch.Wait()
}

// Stop drains the workers. Render must not be called after Stop.
func (p *renderPool) Stop() {
	close(p.jobs)
	p.wg.Wait()
}
