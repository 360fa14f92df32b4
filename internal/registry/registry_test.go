package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tigerroll/stockpost/internal/model"
	"github.com/tigerroll/stockpost/internal/registry"
	"github.com/tigerroll/stockpost/pkg/support/util/exception"
)

func f64(v float64) *float64 { return &v }

// Helper to build a row with the given outcome.
func newRow(buildingID int64, status model.CompletionStatus, totalSiteEnergy *float64) *model.SimulationRecord {
	return &model.SimulationRecord{
		BuildingID:      buildingID,
		Status:          status,
		TotalSiteEnergy: totalSiteEnergy,
	}
}

func newResultSet(upgradeID int64, rows ...*model.SimulationRecord) *model.UpgradeResultSet {
	for _, r := range rows {
		r.UpgradeID = upgradeID
	}
	return &model.UpgradeResultSet{UpgradeID: upgradeID, Records: rows, RawRowCount: len(rows)}
}

func TestScan_ClassifiesFailureModes(t *testing.T) {
	reg := registry.New(1.0) // rate check disabled for this test

	rs := newResultSet(model.BaselineUpgradeID,
		newRow(1, model.StatusSuccess, f64(100)),
		newRow(2, model.StatusFail, nil),
		newRow(3, model.StatusUnknown, nil), // null status counts as failed
		newRow(4, model.StatusSuccess, nil), // fake success: no energy output
	)
	assert.NoError(t, reg.Scan(rs, []int64{1, 2, 3, 4}))

	assert.False(t, reg.IsFailed(1))
	assert.True(t, reg.IsFailed(2))
	assert.True(t, reg.IsFailed(3))
	assert.True(t, reg.IsFailed(4))
	assert.Equal(t, 3, reg.FailedCount(model.BaselineUpgradeID))
	assert.True(t, reg.IsBaselineFailed(2))
}

func TestScan_MissingFromSampleCountsAsFailed(t *testing.T) {
	reg := registry.New(1.0)

	// Building 5 was dispatched but never reached the results table.
	rs := newResultSet(model.BaselineUpgradeID,
		newRow(1, model.StatusSuccess, f64(100)),
		newRow(2, model.StatusSuccess, f64(100)),
	)
	assert.NoError(t, reg.Scan(rs, []int64{1, 2, 5}))

	assert.True(t, reg.IsFailed(5))
	assert.False(t, reg.IsFailed(1))
}

func TestScan_ExcessFailureRateIsFatal(t *testing.T) {
	reg := registry.New(0.01)

	rs := newResultSet(2,
		newRow(1, model.StatusSuccess, f64(100)),
		newRow(2, model.StatusFail, nil),
	)
	err := reg.Scan(rs, []int64{1, 2})
	assert.Error(t, err)
	assert.Equal(t, exception.KindExcessFailureRate, exception.KindOf(err))
	assert.True(t, exception.IsFatal(err))
}

func TestScan_UpgradeFailureIsPerUpgrade(t *testing.T) {
	reg := registry.New(1.0)

	assert.NoError(t, reg.Scan(newResultSet(model.BaselineUpgradeID,
		newRow(1, model.StatusSuccess, f64(100)),
		newRow(2, model.StatusSuccess, f64(100)),
	), []int64{1, 2}))
	assert.NoError(t, reg.Scan(newResultSet(1,
		newRow(1, model.StatusSuccess, f64(90)),
		newRow(2, model.StatusFail, nil),
	), []int64{1, 2}))

	assert.True(t, reg.IsUpgradeFailed(1, 2))
	assert.False(t, reg.IsUpgradeFailed(1, 1))
	assert.False(t, reg.IsBaselineFailed(2))
	// Cross-upgrade set covers any run's failure.
	assert.True(t, reg.IsFailed(2))
	assert.Equal(t, 1, reg.AllFailedCount())
}

func TestFailureRate(t *testing.T) {
	reg := registry.New(1.0)
	assert.NoError(t, reg.Scan(newResultSet(model.BaselineUpgradeID,
		newRow(1, model.StatusSuccess, f64(100)),
		newRow(2, model.StatusFail, nil),
		newRow(3, model.StatusSuccess, f64(100)),
		newRow(4, model.StatusSuccess, f64(100)),
	), []int64{1, 2, 3, 4}))

	assert.InDelta(t, 0.25, reg.FailureRate(model.BaselineUpgradeID), 1e-9)
	assert.Equal(t, 0.0, reg.FailureRate(99))
}
