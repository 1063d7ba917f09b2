package motion

import (
	"runtime"
	"sync"
)

// Parallel executes fn over [0, dataSize) split into one partition per CPU.
// It returns once every partition is done, which makes it a barrier between
// consecutive calls.
//
// @example
//
//	Parallel(height, func(start, end int) {
//	    for row := start; row < end; row++ {
//	        // Process row
//	    }
//	})
func Parallel(dataSize int, fn func(partStart, partEnd int)) {
	numGoroutines := runtime.NumCPU()

	// Small inputs are not worth the goroutine overhead.
	if dataSize < numGoroutines*2 {
		fn(0, dataSize)
		return
	}

	partSize := dataSize / numGoroutines

	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		partStart := i * partSize
		partEnd := partStart + partSize
		// Last partition gets the remainder.
		if i == numGoroutines-1 {
			partEnd = dataSize
		}
		go func(start, end int) {
			defer wg.Done()
			fn(start, end)
		}(partStart, partEnd)
	}
	wg.Wait()
}
