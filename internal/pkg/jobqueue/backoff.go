package jobqueue

import (
	"time"

	"github.com/sethvargo/go-retry"
)

// retryDelay returns the wait before the next attempt after attempt failures,
// growing exponentially from base.
func retryDelay(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	b := retry.WithCappedDuration(time.Hour, retry.NewExponential(base))

	var d time.Duration
	for range attempt {
		next, stop := b.Next()
		if stop {
			break
		}
		d = next
	}
	return d
}
