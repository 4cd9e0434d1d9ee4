package service

import (
	"log"
	"time"
)

// Budget reports operations that run longer than a soft latency threshold.
// It only logs; nothing is aborted or retried.
type Budget struct {
	threshold time.Duration
	logf      func(format string, args ...interface{})
}

// NewBudget creates a budget with the given threshold.
func NewBudget(threshold time.Duration) *Budget {
	return &Budget{threshold: threshold, logf: log.Printf}
}

// Observe logs a warning when the time since start exceeds the threshold and
// returns the elapsed duration.
func (b *Budget) Observe(start time.Time) time.Duration {
	elapsed := time.Since(start)
	if b.threshold > 0 && elapsed > b.threshold {
		b.logf("Warning: Fragment processing took %dms", elapsed.Milliseconds())
	}
	return elapsed
}
