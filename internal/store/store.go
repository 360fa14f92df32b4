package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tigerroll/stockpost/internal/weights"
	"github.com/tigerroll/stockpost/pkg/support/util/logger"
)

// PipelineRun is one audit row per pipeline execution.
type PipelineRun struct {
	ID           string `gorm:"primaryKey;size:36"`
	StartedAt    time.Time
	CompletedAt  *time.Time
	Status       string `gorm:"size:32"`
	UpgradeCount int
	RecordCount  int
	FailedCount  int
}

// ScalingWeight is the persisted weight table, one row per building type per
// run, kept for cross-run drift comparisons.
type ScalingWeight struct {
	ID                 uint   `gorm:"primaryKey;autoIncrement"`
	RunID              string `gorm:"index;size:36"`
	BuildingType       string `gorm:"size:64"`
	ReferenceFloorArea float64
	Weight             float64
}

// StageDuration records wall-clock time per pipeline stage.
type StageDuration struct {
	ID             uint   `gorm:"primaryKey;autoIncrement"`
	RunID          string `gorm:"index;size:36"`
	Stage          string `gorm:"size:32"`
	DurationMillis int64
}

// AuditStore wraps the GORM connection for run bookkeeping.
type AuditStore struct {
	db *gorm.DB
}

// NewAuditStore opens a connection for the configured database type and
// migrates the audit schema. GORM's own logging stays silent; the pipeline
// logger is the single log stream.
func NewAuditStore(cfg DatabaseConfig) (*AuditStore, error) {
	factory, err := GetDialectorFactory(cfg.Type)
	if err != nil {
		return nil, err
	}
	dialector, err := factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create dialector for %s: %w", cfg.Type, err)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open GORM connection: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if cfg.Pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.Pool.MaxOpenConns)
	}
	if cfg.Pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.Pool.MaxIdleConns)
	}
	if cfg.Pool.ConnMaxLifetimeMinutes > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.Pool.ConnMaxLifetimeMinutes) * time.Minute)
	}

	if err := db.AutoMigrate(&PipelineRun{}, &ScalingWeight{}, &StageDuration{}); err != nil {
		return nil, fmt.Errorf("failed to migrate audit schema: %w", err)
	}
	logger.Infof("Audit store ready (%s)", cfg.Type)
	return &AuditStore{db: db}, nil
}

// BeginRun inserts the run row in its running state.
func (s *AuditStore) BeginRun(ctx context.Context, runID string) error {
	run := &PipelineRun{ID: runID, StartedAt: time.Now().UTC(), Status: "RUNNING"}
	return s.db.WithContext(ctx).Create(run).Error
}

// CompleteRun finalizes the run row with its outcome and counts.
func (s *AuditStore) CompleteRun(ctx context.Context, runID, status string, upgradeCount, recordCount, failedCount int) error {
	now := time.Now().UTC()
	return s.db.WithContext(ctx).Model(&PipelineRun{}).Where("id = ?", runID).Updates(map[string]interface{}{
		"completed_at":  &now,
		"status":        status,
		"upgrade_count": upgradeCount,
		"record_count":  recordCount,
		"failed_count":  failedCount,
	}).Error
}

// SaveWeights persists the computed weight table for one run.
func (s *AuditStore) SaveWeights(ctx context.Context, runID string, table weights.WeightTable, reference weights.ReferenceTable) error {
	rows := make([]ScalingWeight, 0, len(table))
	for _, bt := range table.SortedTypes() {
		rows = append(rows, ScalingWeight{
			RunID:              runID,
			BuildingType:       string(bt),
			ReferenceFloorArea: reference[bt],
			Weight:             table[bt],
		})
	}
	if len(rows) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Create(&rows).Error
}

// RecordStageDuration persists one stage timing row.
func (s *AuditStore) RecordStageDuration(ctx context.Context, runID, stage string, d time.Duration) error {
	row := &StageDuration{RunID: runID, Stage: stage, DurationMillis: d.Milliseconds()}
	return s.db.WithContext(ctx).Create(row).Error
}

// Runs returns the persisted runs, newest first. Used by tests and
// operational inspection.
func (s *AuditStore) Runs(ctx context.Context) ([]PipelineRun, error) {
	var runs []PipelineRun
	err := s.db.WithContext(ctx).Order("started_at desc").Find(&runs).Error
	return runs, err
}

// WeightsForRun returns the persisted weight rows of one run.
func (s *AuditStore) WeightsForRun(ctx context.Context, runID string) ([]ScalingWeight, error) {
	var rows []ScalingWeight
	err := s.db.WithContext(ctx).Where("run_id = ?", runID).Order("building_type").Find(&rows).Error
	return rows, err
}

// Close releases the underlying connection.
func (s *AuditStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
