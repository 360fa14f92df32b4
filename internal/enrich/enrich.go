// Package enrich appends derived attributes to the consolidated dataset:
// cross-fuel end-use group totals, energy-use intensities, reporting bins
// (vintage, floor area, building type group), the AEO building type, and the
// composite building-upgrade id.
package enrich

import (
	"strconv"

	"github.com/tigerroll/stockpost/internal/model"
	"github.com/tigerroll/stockpost/pkg/support/util/exception"
	"github.com/tigerroll/stockpost/pkg/support/util/logger"
)

const stageName = "enrich"

// aeoDirectTypes maps non-office building types to their AEO category.
// Precomputed once; offices are sized at lookup time.
var aeoDirectTypes = map[model.BuildingType]string{
	model.BuildingTypeFullServiceRestaurant:  "Food Service",
	model.BuildingTypeQuickServiceRestaurant: "Food Service",
	model.BuildingTypeRetailStripmall:        "Mercantile",
	model.BuildingTypeRetailStandalone:       "Mercantile",
	model.BuildingTypePrimarySchool:          "Education",
	model.BuildingTypeSecondarySchool:        "Education",
	model.BuildingTypeOutpatient:             "Health Care",
	model.BuildingTypeHospital:               "Health Care",
	model.BuildingTypeSmallHotel:             "Lodging",
	model.BuildingTypeLargeHotel:             "Lodging",
	model.BuildingTypeWarehouse:              "Warehouse and Storage",
}

// smallOfficeMaxArea is the AEO size cutoff between small and large offices.
const smallOfficeMaxArea = 50_000.0

// Enrich computes the derived attribute columns for every record and returns
// the same owned dataset extended in place.
func Enrich(ds *model.Dataset) (*model.Dataset, error) {
	for _, r := range ds.Records {
		addGroupTotals(r)
		addIntensities(r)
		r.VintageBin = vintageBinFromYear(r.YearBuilt)
		r.FloorAreaCategory = floorAreaBinFromArea(r.FloorArea)
		if group, ok := model.BuildingTypeGroup(r.BuildingType); ok {
			r.BuildingTypeGroup = group
		}
		r.AEOBuildingType = aeoBuildingType(r.BuildingType, r.FloorArea)

		id, err := combineBuildingUpgradeID(r.BuildingID, r.UpgradeID)
		if err != nil {
			return nil, exception.NewPipelineError(exception.KindSchemaIntegrity, stageName,
				"cannot derive building-upgrade id", err)
		}
		r.BuildingUpgradeID = id
	}
	logger.Debugf("Enriched %d records with derived attributes", ds.Len())
	return ds, nil
}

// addGroupTotals sums each end-use group across fuels into the site_energy
// pseudo carrier.
func addGroupTotals(r *model.SimulationRecord) {
	for _, g := range model.EnduseGroups {
		var total float64
		for k, v := range r.Energy {
			if k.EndUse == g && k.Fuel != model.FuelSiteEnergy {
				total += v
			}
		}
		r.Energy[model.EnergyKey{Fuel: model.FuelSiteEnergy, EndUse: g}] = total
	}
}

// addIntensities divides every tracked quantity by floor area. A zero floor
// area yields a zero intensity rather than an undefined value.
func addIntensities(r *model.SimulationRecord) {
	r.EUI = make(map[model.EnergyKey]float64, len(r.Energy))
	for k, v := range r.Energy {
		if r.FloorArea > 0 {
			r.EUI[k] = v / r.FloorArea
		} else {
			r.EUI[k] = 0
		}
	}
}

// vintageBinFromYear assigns the decadal construction vintage bins used by
// the reference survey.
func vintageBinFromYear(year int) string {
	switch {
	case year < 1946:
		return "Before 1946"
	case year < 1960:
		return "1946 to 1959"
	case year < 1970:
		return "1960 to 1969"
	case year < 1980:
		return "1970 to 1979"
	case year < 1990:
		return "1980 to 1989"
	case year < 2000:
		return "1990 to 1999"
	case year < 2013:
		return "2000 to 2012"
	case year < 2019:
		return "2013 to 2018"
	default:
		return "2019 or newer"
	}
}

// floorAreaBinFromArea assigns the reference survey's floor-area bins.
func floorAreaBinFromArea(sqft float64) string {
	switch {
	case sqft <= 5_000:
		return "1,001 to 5,000 square feet"
	case sqft <= 10_000:
		return "5,001 to 10,000 square feet"
	case sqft <= 25_000:
		return "10,001 to 25,000 square feet"
	case sqft <= 50_000:
		return "25,001 to 50,000 square feet"
	case sqft <= 100_000:
		return "50,001 to 100,000 square feet"
	case sqft <= 200_000:
		return "100,001 to 200,000 square feet"
	case sqft <= 500_000:
		return "200,001 to 500,000 square feet"
	case sqft <= 1_000_000:
		return "500,001 to 1 million square feet"
	default:
		return "Over 1 million square feet"
	}
}

// aeoBuildingType maps a building type onto its AEO category. Offices split
// by size; everything else is a direct mapping.
func aeoBuildingType(bt model.BuildingType, sqft float64) string {
	switch bt {
	case model.BuildingTypeSmallOffice, model.BuildingTypeMediumOffice, model.BuildingTypeLargeOffice:
		if sqft <= smallOfficeMaxArea {
			return "Office - Small"
		}
		return "Office - Large"
	}
	if t, ok := aeoDirectTypes[bt]; ok {
		return t
	}
	return ""
}

// combineBuildingUpgradeID concatenates the decimal digits of building and
// upgrade id into a single join key, e.g. building 123 upgrade 4 -> 1234.
func combineBuildingUpgradeID(buildingID, upgradeID int64) (int64, error) {
	return strconv.ParseInt(strconv.FormatInt(buildingID, 10)+strconv.FormatInt(upgradeID, 10), 10, 64)
}
