// Package metrics abstracts metric collection for pipeline runs so the
// driver does not depend on a concrete backend.
package metrics

import (
	"context"
	"time"
)

// Recorder records run, stage, and data-quality metrics.
type Recorder interface {
	// RecordRunStart records the start of a pipeline run.
	RecordRunStart(ctx context.Context)

	// RecordRunEnd records the end of a pipeline run with its outcome.
	RecordRunEnd(ctx context.Context, status string, duration time.Duration)

	// RecordStage records the wall-clock duration of one completed stage.
	RecordStage(ctx context.Context, stage string, duration time.Duration)

	// RecordRecords records how many rows a stage produced.
	RecordRecords(ctx context.Context, stage string, count int)

	// RecordFailedSimulations records the failed-simulation count of one
	// upgrade scenario.
	RecordFailedSimulations(ctx context.Context, upgradeID int64, count int)
}
