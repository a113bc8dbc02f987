// Package besteffort runs side effects whose failure is reported but never
// propagated to the caller, such as click logging and orphaned blob cleanup.
package besteffort

import (
	"kuchikomi/pkg/logger"
	"kuchikomi/pkg/metrics"
)

// Result is the outcome of a best-effort operation.
type Result struct {
	Op  string
	Err error
}

func (r Result) OK() bool {
	return r.Err == nil
}

// Log records a failed result; successful results are silent.
func (r Result) Log(log *logger.Logger) {
	if r.Err == nil {
		return
	}
	metrics.BestEffortFailures.WithLabelValues(r.Op).Inc()
	if log != nil {
		log.Warn("best-effort %s failed: %v", r.Op, r.Err)
	}
}

// Run executes fn and wraps its error in a Result.
func Run(op string, fn func() error) Result {
	return Result{Op: op, Err: fn()}
}
