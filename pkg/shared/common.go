package shared

import (
	"sync"

	"github.com/spf13/pflag"
)

// HasFlags reports whether any flag on the set was explicitly provided.
func HasFlags(flags *pflag.FlagSet) bool {
	return flags.NFlag() > 0
}

// ForEveryWithBoundedGoroutines runs f for every value on its own goroutine,
// never more than limit at a time, and waits for all of them.
func ForEveryWithBoundedGoroutines[T any](limit int, values []T, f func(i int, value T)) {
	if limit < 1 {
		limit = 1
	}
	guard := make(chan struct{}, limit)
	var wg sync.WaitGroup
	for i, value := range values {
		guard <- struct{}{} // would block if guard channel is already filled
		wg.Add(1)
		go func(i int, value T) {
			defer wg.Done()
			f(i, value)
			<-guard
		}(i, value)
	}
	wg.Wait()
}
