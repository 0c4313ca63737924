// Package parallel splits independent index ranges across goroutines.
//
// Callers pass work whose iterations write disjoint outputs, so results do
// not depend on the number of workers.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls parallel execution.
type Config struct {
	Workers  int // Maximum goroutines; values <= 1 run sequentially.
	MinItems int // Minimum iterations per goroutine.
}

// DefaultConfig uses one worker per CPU.
func DefaultConfig() Config {
	return Config{
		Workers:  runtime.NumCPU(),
		MinItems: 8,
	}
}

// Sequential returns a Config that runs every loop on the calling goroutine.
func Sequential() Config {
	return Config{Workers: 1}
}

// For executes f(i) for i in [0, n) and returns when all calls are done.
func For(n int, f func(i int), cfg Config) {
	minItems := max(cfg.MinItems, 1)
	if cfg.Workers <= 1 || n < 2*minItems {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	per := max((n+cfg.Workers-1)/cfg.Workers, minItems)
	var wg sync.WaitGroup
	for start := 0; start < n; start += per {
		end := min(start+per, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				f(i)
			}
		}(start, end)
	}
	wg.Wait()
}

// ForBatch executes f(b, c) over a batch x channels grid, the iteration
// pattern of per-channel convolution outputs.
func ForBatch(batch, channels int, f func(b, c int), cfg Config) {
	if channels == 0 {
		return
	}
	For(batch*channels, func(k int) {
		f(k/channels, k%channels)
	}, cfg)
}
