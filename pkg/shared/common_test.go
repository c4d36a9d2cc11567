package shared

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForEveryWithBoundedGoroutinesVisitsAll(t *testing.T) {
	values := make([]int, 100)
	for i := range values {
		values[i] = i
	}

	var sum int64
	ForEveryWithBoundedGoroutines(4, values, func(_ int, v int) {
		atomic.AddInt64(&sum, int64(v))
	})
	assert.Equal(t, int64(4950), sum)
}

func TestForEveryWithBoundedGoroutinesIndexMatchesValue(t *testing.T) {
	values := []string{"a", "b", "c"}
	got := make([]string, len(values))

	ForEveryWithBoundedGoroutines(1, values, func(i int, v string) {
		got[i] = v
	})
	assert.Equal(t, values, got)
}

func TestForEveryWithBoundedGoroutinesZeroLimit(t *testing.T) {
	var count int64
	ForEveryWithBoundedGoroutines(0, []int{1, 2, 3}, func(int, int) {
		atomic.AddInt64(&count, 1)
	})
	assert.Equal(t, int64(3), count)
}
