package enrich_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tigerroll/stockpost/internal/enrich"
	"github.com/tigerroll/stockpost/internal/model"
)

func newRecord(bt model.BuildingType, year int, area float64) *model.SimulationRecord {
	return &model.SimulationRecord{
		BuildingID:   123,
		UpgradeID:    4,
		BuildingType: bt,
		YearBuilt:    year,
		FloorArea:    area,
		Energy:       map[model.EnergyKey]float64{},
	}
}

func enrichOne(t *testing.T, r *model.SimulationRecord) *model.SimulationRecord {
	t.Helper()
	ds, err := enrich.Enrich(model.NewDataset([]*model.SimulationRecord{r}))
	assert.NoError(t, err)
	return ds.Records[0]
}

func TestEnrich_GroupTotalsSumAcrossFuels(t *testing.T) {
	r := newRecord(model.BuildingTypeSmallOffice, 1985, 10_000)
	r.Energy[model.EnergyKey{Fuel: model.FuelElectricity, EndUse: model.EndUseHVAC}] = 30
	r.Energy[model.EnergyKey{Fuel: model.FuelNaturalGas, EndUse: model.EndUseHVAC}] = 20
	// Existing site-level group totals must not double count.
	r.Energy[model.EnergyKey{Fuel: model.FuelSiteEnergy, EndUse: model.EndUseHVAC}] = 999

	out := enrichOne(t, r)
	assert.InDelta(t, 50, out.Energy[model.EnergyKey{Fuel: model.FuelSiteEnergy, EndUse: model.EndUseHVAC}], 1e-9)
	// Groups without any fuel contribution are zero-filled.
	assert.Equal(t, 0.0, out.Energy[model.EnergyKey{Fuel: model.FuelSiteEnergy, EndUse: model.EndUseRefrigeration}])
}

func TestEnrich_IntensityIsEnergyPerFloorArea(t *testing.T) {
	r := newRecord(model.BuildingTypeSmallOffice, 1985, 10_000)
	r.Energy[model.TotalSiteEnergyKey] = 500_000

	out := enrichOne(t, r)
	assert.InDelta(t, 50, out.EUI[model.TotalSiteEnergyKey], 1e-9)
}

func TestEnrich_ZeroFloorAreaYieldsZeroIntensity(t *testing.T) {
	r := newRecord(model.BuildingTypeSmallOffice, 1985, 0)
	r.Energy[model.TotalSiteEnergyKey] = 500_000

	out := enrichOne(t, r)
	assert.Equal(t, 0.0, out.EUI[model.TotalSiteEnergyKey])
}

func TestEnrich_VintageAndFloorAreaBins(t *testing.T) {
	r := newRecord(model.BuildingTypeSmallOffice, 1945, 4_000)
	out := enrichOne(t, r)
	assert.Equal(t, "Before 1946", out.VintageBin)
	assert.Equal(t, "1,001 to 5,000 square feet", out.FloorAreaCategory)

	r = newRecord(model.BuildingTypeSmallOffice, 2012, 150_000)
	out = enrichOne(t, r)
	assert.Equal(t, "2000 to 2012", out.VintageBin)
	assert.Equal(t, "100,001 to 200,000 square feet", out.FloorAreaCategory)

	r = newRecord(model.BuildingTypeSmallOffice, 2024, 2_500_000)
	out = enrichOne(t, r)
	assert.Equal(t, "2019 or newer", out.VintageBin)
	assert.Equal(t, "Over 1 million square feet", out.FloorAreaCategory)
}

func TestEnrich_AEOOfficeSplitsAtFiftyThousandSqft(t *testing.T) {
	small := enrichOne(t, newRecord(model.BuildingTypeMediumOffice, 1985, 50_000))
	assert.Equal(t, "Office - Small", small.AEOBuildingType)

	large := enrichOne(t, newRecord(model.BuildingTypeMediumOffice, 1985, 50_001))
	assert.Equal(t, "Office - Large", large.AEOBuildingType)

	hotel := enrichOne(t, newRecord(model.BuildingTypeLargeHotel, 1985, 200_000))
	assert.Equal(t, "Lodging", hotel.AEOBuildingType)
}

func TestEnrich_BuildingTypeGroup(t *testing.T) {
	out := enrichOne(t, newRecord(model.BuildingTypeQuickServiceRestaurant, 1985, 2_000))
	assert.Equal(t, "Food Service", out.BuildingTypeGroup)
}

func TestEnrich_CompositeBuildingUpgradeID(t *testing.T) {
	out := enrichOne(t, newRecord(model.BuildingTypeSmallOffice, 1985, 10_000))
	// Building 123, upgrade 4.
	assert.Equal(t, int64(1234), out.BuildingUpgradeID)

	r := newRecord(model.BuildingTypeSmallOffice, 1985, 10_000)
	r.BuildingID = 350000
	r.UpgradeID = 0
	out = enrichOne(t, r)
	assert.Equal(t, int64(3500000), out.BuildingUpgradeID)
}
