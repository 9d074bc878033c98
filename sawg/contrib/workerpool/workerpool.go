// Copyright 2025 The go-sawg Authors. SPDX-License-Identifier: Apache-2.0

// Package workerpool provides a persistent worker pool for stepping many
// channels per clock cycle. A Pool is created once per simulation and
// reused for every cycle, so the per-cycle cost is a handful of channel
// sends rather than goroutine spawns.
//
// Usage:
//
//	pool := workerpool.New(workerpool.FromEnv(0))
//	defer pool.Close()
//
//	for range cycles {
//	    pool.Phases(len(channels),
//	        func(i int) { channels[i].Eval() },
//	        func(i int) { channels[i].Commit() })
//	}
package workerpool

import (
	"os"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
)

// EnvWorkers overrides the worker count chosen by FromEnv.
const EnvWorkers = "SAWG_WORKERS"

// Pool is a persistent worker pool. Workers are spawned once at creation
// and reused.
type Pool struct {
	numWorkers int
	workC      chan workItem
	closeOnce  sync.Once
	closed     atomic.Bool
}

type workItem struct {
	fn      func()
	barrier *sync.WaitGroup
}

// FromEnv returns the worker count from SAWG_WORKERS, or def when the
// variable is unset or not a positive integer.
func FromEnv(def int) int {
	v := os.Getenv(EnvWorkers)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// New creates a pool with numWorkers workers, or GOMAXPROCS workers when
// numWorkers <= 0.
func New(numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	p := &Pool{
		numWorkers: numWorkers,
		workC:      make(chan workItem, numWorkers*2),
	}
	for range numWorkers {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	for item := range p.workC {
		item.fn()
		item.barrier.Done()
	}
}

// NumWorkers returns the number of workers in the pool.
func (p *Pool) NumWorkers() int {
	return p.numWorkers
}

// Close shuts down the pool. Pending work completes. Close is idempotent;
// a closed pool runs all later work on the calling goroutine.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		close(p.workC)
	})
}

// ParallelFor runs fn over contiguous chunks of [0, n) and blocks until all
// chunks are done.
func (p *Pool) ParallelFor(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	workers := min(p.numWorkers, n)
	if p.closed.Load() || workers == 1 {
		fn(0, n)
		return
	}

	chunkSize := (n + workers - 1) / workers
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := range workers {
		start := i * chunkSize
		end := min(start+chunkSize, n)
		if start >= n {
			wg.Done()
			continue
		}
		p.workC <- workItem{
			fn:      func() { fn(start, end) },
			barrier: &wg,
		}
	}
	wg.Wait()
}

// ParallelForAtomic runs fn once for every index in [0, n), handing out
// indices one at a time, and blocks until all are done. It balances better
// than ParallelFor when the cost per index varies.
func (p *Pool) ParallelForAtomic(n int, fn func(i int)) {
	if n <= 0 {
		return
	}
	workers := min(p.numWorkers, n)
	if p.closed.Load() || workers == 1 {
		for i := range n {
			fn(i)
		}
		return
	}

	var next atomic.Int32
	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		p.workC <- workItem{
			fn: func() {
				for {
					i := int(next.Add(1)) - 1
					if i >= n {
						return
					}
					fn(i)
				}
			},
			barrier: &wg,
		}
	}
	wg.Wait()
}

// Phases runs each phase over [0, n) in order. Every index of a phase
// finishes before any index of the next phase starts, which is the
// evaluate/commit discipline of a clock edge.
func (p *Pool) Phases(n int, phases ...func(i int)) {
	for _, phase := range phases {
		p.ParallelFor(n, func(start, end int) {
			for i := start; i < end; i++ {
				phase(i)
			}
		})
	}
}
