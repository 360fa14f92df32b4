package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tigerroll/stockpost/internal/model"
	"github.com/tigerroll/stockpost/internal/store"
	_ "github.com/tigerroll/stockpost/internal/store/sqlite"
	"github.com/tigerroll/stockpost/internal/weights"
)

func newTestStore(t *testing.T) *store.AuditStore {
	t.Helper()
	s, err := store.NewAuditStore(store.DatabaseConfig{Type: "sqlite", Database: ":memory:"})
	assert.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestBeginAndCompleteRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	assert.NoError(t, s.BeginRun(ctx, "run-1"))

	runs, err := s.Runs(ctx)
	assert.NoError(t, err)
	assert.Len(t, runs, 1)
	assert.Equal(t, "RUNNING", runs[0].Status)
	assert.Nil(t, runs[0].CompletedAt)

	assert.NoError(t, s.CompleteRun(ctx, "run-1", "COMPLETED", 3, 1200, 7))

	runs, err = s.Runs(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "COMPLETED", runs[0].Status)
	assert.Equal(t, 3, runs[0].UpgradeCount)
	assert.Equal(t, 1200, runs[0].RecordCount)
	assert.Equal(t, 7, runs[0].FailedCount)
	assert.NotNil(t, runs[0].CompletedAt)
}

func TestSaveWeightsRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	assert.NoError(t, s.BeginRun(ctx, "run-1"))

	table := weights.WeightTable{
		model.BuildingTypeSmallOffice: 2.0,
		model.BuildingTypeWarehouse:   3.5,
	}
	reference := weights.ReferenceTable{
		model.BuildingTypeSmallOffice: 1_000_000,
		model.BuildingTypeWarehouse:   2_500_000,
	}
	assert.NoError(t, s.SaveWeights(ctx, "run-1", table, reference))

	rows, err := s.WeightsForRun(ctx, "run-1")
	assert.NoError(t, err)
	assert.Len(t, rows, 2)
	// Ordered by building type.
	assert.Equal(t, "SmallOffice", rows[0].BuildingType)
	assert.InDelta(t, 2.0, rows[0].Weight, 1e-9)
	assert.Equal(t, 1_000_000.0, rows[0].ReferenceFloorArea)
	assert.Equal(t, "Warehouse", rows[1].BuildingType)
}

func TestSaveWeights_EmptyTableIsNoOp(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	assert.NoError(t, s.SaveWeights(ctx, "run-1", weights.WeightTable{}, weights.ReferenceTable{}))

	rows, err := s.WeightsForRun(ctx, "run-1")
	assert.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRecordStageDuration(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	assert.NoError(t, s.RecordStageDuration(ctx, "run-1", "consolidate", 1500*time.Millisecond))
}

func TestNewAuditStore_UnknownTypeIsError(t *testing.T) {
	_, err := store.NewAuditStore(store.DatabaseConfig{Type: "oracle"})
	assert.Error(t, err)
}
