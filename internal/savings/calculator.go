// Package savings computes per-building absolute and percent savings between
// each upgrade and the baseline, for every tracked metric variant.
package savings

import (
	"math"

	"github.com/tigerroll/stockpost/internal/model"
	"github.com/tigerroll/stockpost/pkg/support/util/exception"
	"github.com/tigerroll/stockpost/pkg/support/util/logger"
)

const stageName = "savings"

// Record is the per (building, upgrade) savings side-table row joined back
// onto the consolidated dataset.
type Record struct {
	BuildingID int64
	UpgradeID  int64
	Absolute   map[model.MetricKey]float64
	Percent    map[model.MetricKey]float64
}

// Calculator derives savings against the baseline partition.
type Calculator struct {
	metrics []model.MetricKey
}

// NewCalculator creates a calculator over the full tracked metric vocabulary.
func NewCalculator() *Calculator {
	return &Calculator{metrics: model.SavingsMetricKeys()}
}

// Compute verifies baseline/upgrade building-id alignment, derives the
// savings side tables, and joins them back onto the dataset. The baseline is
// compared against itself and included with all-zero savings for symmetry.
//
// A building-id mismatch between any upgrade and the baseline is a fatal
// AlignmentError: it implies failure filtering was not applied uniformly.
func (c *Calculator) Compute(ds *model.Dataset) (*model.Dataset, error) {
	baseIndex := ds.BaselineIndex()
	if len(baseIndex) == 0 {
		return nil, exception.Errorf(exception.KindSchemaIntegrity, stageName,
			"dataset has no baseline partition")
	}
	baseIDs := ds.BuildingIDs(model.BaselineUpgradeID)

	var sideTable []*Record
	for _, upgradeID := range ds.UpgradeIDs() {
		upIDs := ds.BuildingIDs(upgradeID)
		if !equalIDs(baseIDs, upIDs) {
			return nil, exception.Errorf(exception.KindAlignment, stageName,
				"upgrade %d has %d surviving buildings but baseline has %d and the id sets diverge",
				upgradeID, len(upIDs), len(baseIDs))
		}

		for _, r := range ds.Partition(upgradeID) {
			base := baseIndex[r.BuildingID]
			sideTable = append(sideTable, c.computeRow(base, r))
		}
	}

	c.join(ds, sideTable)
	logger.Infof("Computed savings for %d rows across %d metrics", len(sideTable), len(c.metrics))
	return ds, nil
}

// computeRow derives one savings record. Percent savings with a zero
// baseline denominator are coerced to 0 rather than NaN, an explicit policy
// keeping downstream aggregation well-defined.
func (c *Calculator) computeRow(base, up *model.SimulationRecord) *Record {
	rec := &Record{
		BuildingID: up.BuildingID,
		UpgradeID:  up.UpgradeID,
		Absolute:   make(map[model.MetricKey]float64, len(c.metrics)),
		Percent:    make(map[model.MetricKey]float64, len(c.metrics)),
	}
	for _, mk := range c.metrics {
		baseVal := metricValue(base, mk)
		upVal := metricValue(up, mk)
		abs := baseVal - upVal
		rec.Absolute[mk] = abs

		var pct float64
		if baseVal != 0 {
			pct = abs / baseVal
		}
		if math.IsNaN(pct) || math.IsInf(pct, 0) {
			pct = 0
		}
		rec.Percent[mk] = pct
	}
	return rec
}

// join attaches the side-table rows back onto the dataset by
// (building id, upgrade id).
func (c *Calculator) join(ds *model.Dataset, sideTable []*Record) {
	byKey := make(map[[2]int64]*Record, len(sideTable))
	for _, rec := range sideTable {
		byKey[[2]int64{rec.BuildingID, rec.UpgradeID}] = rec
	}
	for _, r := range ds.Records {
		if rec, ok := byKey[[2]int64{r.BuildingID, r.UpgradeID}]; ok {
			r.AbsoluteSavings = rec.Absolute
			r.PercentSavings = rec.Percent
		}
	}
}

// metricValue reads one metric variant from a record. A missing value (for
// example a weighted quantity on a row with no defined weight) reads as 0.
func metricValue(r *model.SimulationRecord, mk model.MetricKey) float64 {
	switch {
	case mk.Weighted:
		return r.WeightedEnergy[mk.Energy]
	case mk.Intensity:
		return r.EUI[mk.Energy]
	default:
		return r.Energy[mk.Energy]
	}
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
