// Package pipeline orchestrates a full postprocessing run: read raw inputs,
// build the failure registry, consolidate, enrich, weight, compute savings,
// classify segments, and export.
package pipeline

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/tigerroll/stockpost/internal/config"
	"github.com/tigerroll/stockpost/internal/consolidate"
	"github.com/tigerroll/stockpost/internal/enrich"
	"github.com/tigerroll/stockpost/internal/metrics"
	"github.com/tigerroll/stockpost/internal/model"
	"github.com/tigerroll/stockpost/internal/reader"
	"github.com/tigerroll/stockpost/internal/registry"
	"github.com/tigerroll/stockpost/internal/savings"
	"github.com/tigerroll/stockpost/internal/segment"
	"github.com/tigerroll/stockpost/internal/store"
	"github.com/tigerroll/stockpost/internal/weights"
	"github.com/tigerroll/stockpost/internal/writer"
	"github.com/tigerroll/stockpost/pkg/support/util/exception"
	"github.com/tigerroll/stockpost/pkg/support/util/logger"
)

const stageName = "pipeline"

// Run statuses persisted to the audit store and exported as metric labels.
const (
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)

// Driver executes pipeline runs. The audit store is optional; a nil store
// disables run persistence without changing pipeline behavior.
type Driver struct {
	cfg      *config.Config
	recorder metrics.Recorder
	audit    *store.AuditStore
}

// NewDriver creates a pipeline driver.
func NewDriver(cfg *config.Config, recorder metrics.Recorder, audit *store.AuditStore) *Driver {
	return &Driver{cfg: cfg, recorder: recorder, audit: audit}
}

type runResult struct {
	upgradeCount int
	recordCount  int
	failedCount  int
}

// Run executes one full pipeline run under a fresh run id. A returned error
// means the run aborted; errors of a fatal kind (excess failure rate, schema
// integrity, alignment, segment coverage) identify data problems that retrying
// will not fix.
func (d *Driver) Run(ctx context.Context) error {
	runID := uuid.NewString()
	logger.Infof("Starting postprocessing run %s", runID)
	start := time.Now()
	d.recorder.RecordRunStart(ctx)
	if d.audit != nil {
		if err := d.audit.BeginRun(ctx, runID); err != nil {
			logger.Warnf("Failed to record run start for %s: %v", runID, err)
		}
	}

	result, err := d.execute(ctx, runID)

	status := StatusCompleted
	if err != nil {
		status = StatusFailed
	}
	d.recorder.RecordRunEnd(ctx, status, time.Since(start))
	if d.audit != nil {
		if aerr := d.audit.CompleteRun(ctx, runID, status, result.upgradeCount, result.recordCount, result.failedCount); aerr != nil {
			logger.Warnf("Failed to record run completion for %s: %v", runID, aerr)
		}
	}

	if err != nil {
		if exception.IsFatal(err) {
			logger.Errorf("Run %s aborted on a non-retryable data problem: %v", runID, err)
		} else {
			logger.Errorf("Run %s failed: %v", runID, err)
		}
		return err
	}
	logger.Infof("Run %s completed: %d records across %d upgrades in %s",
		runID, result.recordCount, result.upgradeCount, time.Since(start).Round(time.Millisecond))
	return nil
}

func (d *Driver) execute(ctx context.Context, runID string) (runResult, error) {
	var res runResult
	pcfg := d.cfg.Stockpost.Pipeline
	iocfg := d.cfg.Stockpost.IO
	wcfg := d.cfg.Stockpost.Weighting

	energyUnits, err := model.ParseUnit(wcfg.EnergyUnits)
	if err != nil {
		return res, exception.NewPipelineError(exception.KindUnknown, stageName, "invalid weighted energy units", err)
	}
	ghgUnits, err := model.ParseUnit(wcfg.GHGUnits)
	if err != nil {
		return res, exception.NewPipelineError(exception.KindUnknown, stageName, "invalid weighted emissions units", err)
	}

	var (
		sampleIDs []int64
		refTable  weights.ReferenceTable
		sets      map[int64]*model.UpgradeResultSet
	)
	err = d.timeStage(ctx, runID, "read", func() error {
		var err error
		if sampleIDs, err = reader.ReadSample(iocfg.SamplePath); err != nil {
			return err
		}
		if refTable, err = reader.ReadReference(iocfg.ReferencePath); err != nil {
			return err
		}
		sets, err = reader.NewResultsReader(iocfg.ResultsDir, pcfg.SkipUpgradeIDs).ReadAll(ctx)
		return err
	})
	if err != nil {
		return res, err
	}
	res.upgradeCount = len(sets)

	// The baseline scans first so cross-run failure diagnostics have the
	// baseline set to compare against.
	reg := registry.New(pcfg.AcceptableFailureRate)
	err = d.timeStage(ctx, runID, "registry", func() error {
		for _, upgradeID := range sortedUpgradeIDs(sets) {
			if err := reg.Scan(sets[upgradeID], sampleIDs); err != nil {
				return err
			}
			d.recorder.RecordFailedSimulations(ctx, upgradeID, reg.FailedCount(upgradeID))
		}
		return nil
	})
	if err != nil {
		return res, err
	}
	res.failedCount = reg.AllFailedCount()

	var ds *model.Dataset
	err = d.timeStage(ctx, runID, "consolidate", func() error {
		var err error
		ds, err = consolidate.NewEngine(reg, pcfg.DropFailedRuns).Consolidate(sets)
		if err == nil {
			d.recorder.RecordRecords(ctx, "consolidate", ds.Len())
		}
		return err
	})
	if err != nil {
		return res, err
	}

	err = d.timeStage(ctx, runID, "enrich", func() error {
		var err error
		ds, err = enrich.Enrich(ds)
		return err
	})
	if err != nil {
		return res, err
	}

	calc := weights.NewCalculator(wcfg.MaxScaleFactor, wcfg.RemoveNonSimulatedTypes, energyUnits, ghgUnits)
	err = d.timeStage(ctx, runID, "weights", func() error {
		table, refUsed, err := calc.Compute(ds, refTable)
		if err != nil {
			return err
		}
		if ds, err = calc.Apply(ds, table); err != nil {
			return err
		}
		if d.audit != nil {
			if aerr := d.audit.SaveWeights(ctx, runID, table, refUsed); aerr != nil {
				logger.Warnf("Failed to persist scaling weights for run %s: %v", runID, aerr)
			}
		}
		return nil
	})
	if err != nil {
		return res, err
	}

	err = d.timeStage(ctx, runID, "savings", func() error {
		var err error
		ds, err = savings.NewCalculator().Compute(ds)
		return err
	})
	if err != nil {
		return res, err
	}

	err = d.timeStage(ctx, runID, "segment", func() error {
		var err error
		ds, err = segment.NewClassifier().Classify(ds)
		return err
	})
	if err != nil {
		return res, err
	}

	err = d.timeStage(ctx, runID, "export", func() error {
		return writer.NewExporter(iocfg.OutputDir, iocfg.CompressionType).Export(ctx, ds)
	})
	if err != nil {
		return res, err
	}

	res.recordCount = ds.Len()
	d.recorder.RecordRecords(ctx, "export", ds.Len())
	return res, nil
}

// timeStage runs one stage and records its duration in metrics and, when
// enabled, the audit store.
func (d *Driver) timeStage(ctx context.Context, runID, stage string, fn func() error) error {
	start := time.Now()
	err := fn()
	duration := time.Since(start)
	d.recorder.RecordStage(ctx, stage, duration)
	if d.audit != nil {
		if aerr := d.audit.RecordStageDuration(ctx, runID, stage, duration); aerr != nil {
			logger.Warnf("Failed to persist %s stage duration for run %s: %v", stage, runID, aerr)
		}
	}
	if err == nil {
		logger.Debugf("Stage %s finished in %s", stage, duration.Round(time.Millisecond))
	}
	return err
}

func sortedUpgradeIDs(sets map[int64]*model.UpgradeResultSet) []int64 {
	ids := make([]int64, 0, len(sets))
	for id := range sets {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
