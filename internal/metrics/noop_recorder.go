package metrics

import (
	"context"
	"time"
)

// NoOpRecorder is a Recorder that does nothing. It is used when metrics are
// disabled or during testing.
type NoOpRecorder struct{}

// NewNoOpRecorder creates a new instance of NoOpRecorder.
func NewNoOpRecorder() Recorder {
	return &NoOpRecorder{}
}

// RecordRunStart does nothing.
func (r *NoOpRecorder) RecordRunStart(ctx context.Context) {}

// RecordRunEnd does nothing.
func (r *NoOpRecorder) RecordRunEnd(ctx context.Context, status string, duration time.Duration) {}

// RecordStage does nothing.
func (r *NoOpRecorder) RecordStage(ctx context.Context, stage string, duration time.Duration) {}

// RecordRecords does nothing.
func (r *NoOpRecorder) RecordRecords(ctx context.Context, stage string, count int) {}

// RecordFailedSimulations does nothing.
func (r *NoOpRecorder) RecordFailedSimulations(ctx context.Context, upgradeID int64, count int) {}

var _ Recorder = (*NoOpRecorder)(nil)
