package savings_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tigerroll/stockpost/internal/model"
	"github.com/tigerroll/stockpost/internal/savings"
	"github.com/tigerroll/stockpost/pkg/support/util/exception"
)

func row(buildingID, upgradeID int64, siteEnergy float64) *model.SimulationRecord {
	return &model.SimulationRecord{
		BuildingID: buildingID,
		UpgradeID:  upgradeID,
		Energy:     map[model.EnergyKey]float64{model.TotalSiteEnergyKey: siteEnergy},
	}
}

func siteMetric() model.MetricKey {
	return model.MetricKey{Energy: model.TotalSiteEnergyKey}
}

func TestCompute_AbsoluteAndPercentSavings(t *testing.T) {
	ds := model.NewDataset([]*model.SimulationRecord{
		row(1, model.BaselineUpgradeID, 100),
		row(1, 1, 80),
	})

	ds, err := savings.NewCalculator().Compute(ds)
	assert.NoError(t, err)

	up := ds.Partition(1)[0]
	assert.InDelta(t, 20, up.AbsoluteSavings[siteMetric()], 1e-9)
	assert.InDelta(t, 0.2, up.PercentSavings[siteMetric()], 1e-9)
}

func TestCompute_BaselineComparedAgainstItselfIsZero(t *testing.T) {
	ds := model.NewDataset([]*model.SimulationRecord{
		row(1, model.BaselineUpgradeID, 100),
	})

	ds, err := savings.NewCalculator().Compute(ds)
	assert.NoError(t, err)

	base := ds.Baseline()[0]
	assert.Equal(t, 0.0, base.AbsoluteSavings[siteMetric()])
	assert.Equal(t, 0.0, base.PercentSavings[siteMetric()])
}

func TestCompute_ZeroBaselineDenominatorYieldsZeroPercent(t *testing.T) {
	ds := model.NewDataset([]*model.SimulationRecord{
		row(1, model.BaselineUpgradeID, 0),
		row(1, 1, 50),
	})

	ds, err := savings.NewCalculator().Compute(ds)
	assert.NoError(t, err)

	up := ds.Partition(1)[0]
	assert.InDelta(t, -50, up.AbsoluteSavings[siteMetric()], 1e-9)
	assert.Equal(t, 0.0, up.PercentSavings[siteMetric()])
}

func TestCompute_NegativeSavingsWhenUpgradeUsesMore(t *testing.T) {
	ds := model.NewDataset([]*model.SimulationRecord{
		row(1, model.BaselineUpgradeID, 100),
		row(1, 1, 150),
	})

	ds, err := savings.NewCalculator().Compute(ds)
	assert.NoError(t, err)

	up := ds.Partition(1)[0]
	assert.InDelta(t, -50, up.AbsoluteSavings[siteMetric()], 1e-9)
	assert.InDelta(t, -0.5, up.PercentSavings[siteMetric()], 1e-9)
}

func TestCompute_WeightedVariantReadsWeightedEnergy(t *testing.T) {
	base := row(1, model.BaselineUpgradeID, 100)
	base.WeightedEnergy = map[model.EnergyKey]float64{model.TotalSiteEnergyKey: 1e-3}
	up := row(1, 1, 80)
	up.WeightedEnergy = map[model.EnergyKey]float64{model.TotalSiteEnergyKey: 8e-4}

	ds := model.NewDataset([]*model.SimulationRecord{base, up})
	ds, err := savings.NewCalculator().Compute(ds)
	assert.NoError(t, err)

	weighted := model.MetricKey{Energy: model.TotalSiteEnergyKey, Weighted: true}
	out := ds.Partition(1)[0]
	assert.InDelta(t, 2e-4, out.AbsoluteSavings[weighted], 1e-12)
	assert.InDelta(t, 0.2, out.PercentSavings[weighted], 1e-9)
}

func TestCompute_DivergentBuildingSetsIsAlignmentError(t *testing.T) {
	ds := model.NewDataset([]*model.SimulationRecord{
		row(1, model.BaselineUpgradeID, 100),
		row(2, model.BaselineUpgradeID, 200),
		row(1, 1, 80), // building 2 missing from upgrade 1
	})

	_, err := savings.NewCalculator().Compute(ds)
	assert.Error(t, err)
	assert.Equal(t, exception.KindAlignment, exception.KindOf(err))
	assert.True(t, exception.IsFatal(err))
}

func TestCompute_NoBaselinePartitionIsFatal(t *testing.T) {
	ds := model.NewDataset([]*model.SimulationRecord{row(1, 1, 80)})

	_, err := savings.NewCalculator().Compute(ds)
	assert.Error(t, err)
	assert.Equal(t, exception.KindSchemaIntegrity, exception.KindOf(err))
}
