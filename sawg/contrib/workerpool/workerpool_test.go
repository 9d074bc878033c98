// Copyright 2025 The go-sawg Authors. SPDX-License-Identifier: Apache-2.0

package workerpool

import (
	"runtime"
	"sync/atomic"
	"testing"
)

func TestNew(t *testing.T) {
	pool := New(4)
	defer pool.Close()

	if pool.NumWorkers() != 4 {
		t.Errorf("NumWorkers() = %d, want 4", pool.NumWorkers())
	}
}

func TestNewDefault(t *testing.T) {
	pool := New(0)
	defer pool.Close()

	if pool.NumWorkers() != runtime.GOMAXPROCS(0) {
		t.Errorf("NumWorkers() = %d, want %d", pool.NumWorkers(), runtime.GOMAXPROCS(0))
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvWorkers, "")
	if got := FromEnv(3); got != 3 {
		t.Errorf("unset: FromEnv(3) = %d", got)
	}
	t.Setenv(EnvWorkers, "7")
	if got := FromEnv(3); got != 7 {
		t.Errorf("SAWG_WORKERS=7: FromEnv(3) = %d", got)
	}
	for _, bad := range []string{"0", "-2", "many"} {
		t.Setenv(EnvWorkers, bad)
		if got := FromEnv(3); got != 3 {
			t.Errorf("SAWG_WORKERS=%q: FromEnv(3) = %d", bad, got)
		}
	}
}

func TestParallelFor(t *testing.T) {
	pool := New(4)
	defer pool.Close()

	n := 100
	results := make([]int, n)
	pool.ParallelFor(n, func(start, end int) {
		for i := start; i < end; i++ {
			results[i] = i * 2
		}
	})
	for i := range n {
		if results[i] != i*2 {
			t.Errorf("results[%d] = %d, want %d", i, results[i], i*2)
		}
	}
}

func TestParallelForAtomic(t *testing.T) {
	pool := New(4)
	defer pool.Close()

	var count atomic.Int32
	n := 1000
	pool.ParallelForAtomic(n, func(i int) {
		count.Add(1)
	})
	if int(count.Load()) != n {
		t.Errorf("processed %d items, want %d", count.Load(), n)
	}
}

func TestPhasesBarrier(t *testing.T) {
	pool := New(4)
	defer pool.Close()

	const n = 64
	written := make([]int, n)
	seen := make([]int, n)
	for cycle := 1; cycle <= 10; cycle++ {
		pool.Phases(n,
			func(i int) { written[i] = cycle },
			// every index reads a neighbour written in the first phase
			func(i int) { seen[i] = written[(i+1)%n] },
		)
		for i, v := range seen {
			if v != cycle {
				t.Fatalf("cycle %d: index %d saw %d", cycle, i, v)
			}
		}
	}
}

func TestClosedPoolRunsInline(t *testing.T) {
	pool := New(4)
	pool.Close()
	pool.Close()

	sum := 0
	pool.ParallelFor(10, func(start, end int) {
		for i := start; i < end; i++ {
			sum += i
		}
	})
	if sum != 45 {
		t.Errorf("sum = %d, want 45", sum)
	}
}
