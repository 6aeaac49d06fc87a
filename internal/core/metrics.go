package core

import (
	"context"
	"time"
)

// Outcomes reported to a MetricsRecorder.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeNotFound = "not_found"
	OutcomeConflict = "conflict"
	OutcomeRetry    = "retry"
	OutcomeError    = "error"
)

// MetricsRecorder receives timing and outcome for each service operation.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation, outcome string, duration time.Duration)
}

type noopRecorder struct{}

func (noopRecorder) Observe(context.Context, string, string, time.Duration) {}
