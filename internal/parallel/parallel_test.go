package parallel

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFor(t *testing.T) {
	for name, cfg := range map[string]Config{
		"default":    DefaultConfig(),
		"sequential": Sequential(),
		"many":       {Workers: 64, MinItems: 1},
		"zero":       {},
	} {
		t.Run(name, func(t *testing.T) {
			seen := make([]int32, 1000)
			For(len(seen), func(i int) {
				atomic.AddInt32(&seen[i], 1)
			}, cfg)
			for i, v := range seen {
				if !assert.Equal(t, int32(1), v, "index %d", i) {
					break
				}
			}
		})
	}
}

func TestFor_Small(t *testing.T) {
	var counter int64
	For(3, func(_ int) { atomic.AddInt64(&counter, 1) }, DefaultConfig())
	assert.Equal(t, int64(3), counter)

	For(0, func(_ int) { t.Fatal("called for empty range") }, DefaultConfig())
}

func TestForBatch(t *testing.T) {
	batch, channels := 3, 40
	grid := make([]int32, batch*channels)
	ForBatch(batch, channels, func(b, c int) {
		atomic.AddInt32(&grid[b*channels+c], 1)
	}, Config{Workers: 4, MinItems: 1})
	for _, v := range grid {
		assert.Equal(t, int32(1), v)
	}

	ForBatch(2, 0, func(_, _ int) { t.Fatal("called for empty grid") }, DefaultConfig())
}

func BenchmarkForBatch(b *testing.B) {
	batch, channels := 16, 64
	for name, cfg := range map[string]Config{"parallel": DefaultConfig(), "sequential": Sequential()} {
		b.Run(name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				var sum int64
				ForBatch(batch, channels, func(bc, c int) {
					atomic.AddInt64(&sum, int64(bc*channels+c))
				}, cfg)
			}
		})
	}
}
