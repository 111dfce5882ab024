package channel_utils

import "sync"

// MergeChannels fans every input channel into one output channel. The merged
// channel closes once every input has closed. Forwarding runs on plain
// goroutines; pool workers are reserved for per-slide remote calls.
func MergeChannels[T any](channels ...<-chan T) <-chan T {
	var wg sync.WaitGroup
	merged := make(chan T)

	wg.Add(len(channels))
	for _, c := range channels {
		go func(ch <-chan T) {
			defer wg.Done()
			for val := range ch {
				merged <- val
			}
		}(c)
	}

	go func() {
		wg.Wait()
		close(merged)
	}()

	return merged
}
