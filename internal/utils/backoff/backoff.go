package backoff

import (
	"math"
	"math/rand"
	"time"
)

// ExponentialWithJitter computes a jittered exponential backoff delay.
// attempt is 1-based; the result is base*2^(attempt-1) with ±12.5% jitter, capped at max.
func ExponentialWithJitter(attempt int, base time.Duration, max time.Duration) time.Duration {
	if attempt <= 0 || base <= 0 {
		return 0
	}

	delay := base * time.Duration(math.Pow(2, float64(attempt-1)))
	if delay > max || delay <= 0 {
		delay = max
	}

	if spread := int64(delay / 4); spread > 0 {
		delay += time.Duration(rand.Int63n(spread)) - delay/8
	}

	if delay > max {
		delay = max
	}
	return delay
}
