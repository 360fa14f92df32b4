// Package weights computes the per-building-type scaling factors that
// rescale the simulated sample to a reference population's floor-area
// distribution, and applies them to every tracked quantity.
package weights

import (
	"sort"

	"github.com/tigerroll/stockpost/internal/model"
	"github.com/tigerroll/stockpost/pkg/support/util/exception"
	"github.com/tigerroll/stockpost/pkg/support/util/logger"
)

const stageName = "weights"

// ReferenceTable is the external population survey: building type to total
// weighted floor area.
type ReferenceTable map[model.BuildingType]float64

// WeightTable maps building type to the computed multiplicative scaling
// weight. One entry per type present in both simulation and reference data
// with a defined weight.
type WeightTable map[model.BuildingType]float64

// SortedTypes returns the table's building types in lexical order, for
// stable logging and persistence.
func (wt WeightTable) SortedTypes() []model.BuildingType {
	types := make([]model.BuildingType, 0, len(wt))
	for bt := range wt {
		types = append(types, bt)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// Calculator derives and applies scaling weights.
type Calculator struct {
	// maxScaleFactor is the warning threshold for suspiciously large weights,
	// which indicate a small-sample or high-failure-rate run.
	maxScaleFactor float64
	// removeNonSimulatedTypes physically removes reference entries for types
	// absent from the simulation, so later group-bys do not include them.
	removeNonSimulatedTypes bool

	energyUnits model.Unit
	ghgUnits    model.Unit
}

// NewCalculator creates a weight calculator. energyUnits and ghgUnits are the
// target units of the weighted output columns.
func NewCalculator(maxScaleFactor float64, removeNonSimulatedTypes bool, energyUnits, ghgUnits model.Unit) *Calculator {
	return &Calculator{
		maxScaleFactor:          maxScaleFactor,
		removeNonSimulatedTypes: removeNonSimulatedTypes,
		energyUnits:             energyUnits,
		ghgUnits:                ghgUnits,
	}
}

// Compute derives the weight table from the baseline partition of the
// dataset and the reference survey. It returns the weight table and the
// reference copy actually used (filtered when removeNonSimulatedTypes is on).
//
// A type present in the filtered reference whose simulated baseline floor
// area is zero or missing has an undefined weight; the entry is dropped with
// a warning rather than failing the run.
func (c *Calculator) Compute(ds *model.Dataset, reference ReferenceTable) (WeightTable, ReferenceTable, error) {
	if len(reference) == 0 {
		return nil, nil, exception.Errorf(exception.KindSchemaIntegrity, stageName,
			"reference table is empty")
	}

	// Simulated baseline floor area by type. Only the baseline partition
	// contributes, so the factor depends on the baseline failure rate alone.
	simArea := make(map[model.BuildingType]float64)
	for _, r := range ds.Baseline() {
		simArea[r.BuildingType] += r.FloorArea
	}
	if len(simArea) == 0 {
		return nil, nil, exception.Errorf(exception.KindSchemaIntegrity, stageName,
			"dataset has no baseline partition to compute weights from")
	}

	// Weights only ever exist for the intersection of simulated and reference
	// types. The flag controls whether non-simulated types are also trimmed
	// from the reference copy handed downstream, not whether they weight.
	refCopy := make(ReferenceTable, len(reference))
	for bt, area := range reference {
		if _, simulated := simArea[bt]; simulated {
			refCopy[bt] = area
			continue
		}
		logger.Debugf("Reference building type %s is not present in the simulation", bt)
		if !c.removeNonSimulatedTypes {
			refCopy[bt] = area
		}
	}

	table := make(WeightTable)
	for bt, refArea := range refCopy {
		sim, simulated := simArea[bt]
		if !simulated {
			// Retained in the reference copy only; never weighted.
			continue
		}
		if sim <= 0 {
			// Undefined weight. Dropping silently removes the type's
			// contribution to all downstream weighted totals; kept non-fatal
			// to match the recoverable UndefinedScaleFactor policy.
			werr := exception.Errorf(exception.KindUndefinedScaleFactor, stageName,
				"building type %s has reference area %.0f but no simulated baseline floor area; dropping from weighting", bt, refArea)
			logger.Warnf("%v", werr)
			continue
		}
		table[bt] = refArea / sim
	}

	logger.Infof("Scaling factors - scale simulated results to reference floor area")
	for _, bt := range table.SortedTypes() {
		w := table[bt]
		logger.Infof("--- %s: %.2f", bt, w)
		if w > c.maxScaleFactor {
			logger.Warnf("The scaling factor for %s is %.2f, above %.2f. This indicates a small test run "+
				"or significant failed runs for this building type; comparisons to the reference will likely be invalid.",
				bt, w, c.maxScaleFactor)
		}
	}
	return table, refCopy, nil
}

// Apply broadcasts the weights to every row of every upgrade and produces
// the weighted floor-area, energy, and emissions quantities in the target
// units. Originals are preserved unweighted for consistency checks. Rows
// whose building type has no defined weight keep WeightDefined == false and
// empty weighted maps.
func (c *Calculator) Apply(ds *model.Dataset, table WeightTable) (*model.Dataset, error) {
	energyFactor, err := model.ConversionFactor(model.UnitKBtu, c.energyUnits)
	if err != nil {
		return nil, exception.NewPipelineError(exception.KindSchemaIntegrity, stageName,
			"invalid weighted energy units", err)
	}
	ghgFactor, err := model.ConversionFactor(model.UnitCO2eKg, c.ghgUnits)
	if err != nil {
		return nil, exception.NewPipelineError(exception.KindSchemaIntegrity, stageName,
			"invalid weighted emissions units", err)
	}

	weightedKeys := append(model.CanonicalEnergyKeys(), model.GroupTotalKeys()...)

	for _, r := range ds.Records {
		w, ok := table[r.BuildingType]
		if !ok {
			r.WeightDefined = false
			continue
		}
		r.Weight = w
		r.WeightDefined = true
		r.WeightedFloorArea = r.FloorArea * w

		r.WeightedEnergy = make(map[model.EnergyKey]float64, len(weightedKeys))
		for _, k := range weightedKeys {
			r.WeightedEnergy[k] = r.Energy[k] * w * energyFactor
		}

		r.WeightedEmissions = make(map[model.Fuel]float64, len(model.EmissionFuels))
		for _, f := range model.EmissionFuels {
			r.WeightedEmissions[f] = r.Emissions[f] * w * ghgFactor
		}

		c.apportionGroupEmissions(r)
	}
	return ds, nil
}

// apportionGroupEmissions derives weighted end-use-group emissions
// proportionally: group emissions = total fuel emissions x (group energy /
// total fuel energy). The blended other-fuel carrier sums propane and fuel
// oil emissions before the ratio is applied. District heating and cooling
// have no emission factor and are excluded.
func (c *Calculator) apportionGroupEmissions(r *model.SimulationRecord) {
	r.WeightedGroupEmissions = make(map[model.EnergyKey]float64)
	for _, fuel := range []model.Fuel{model.FuelElectricity, model.FuelNaturalGas, model.FuelOtherFuel, model.FuelSiteEnergy} {
		var totalGHG float64
		switch fuel {
		case model.FuelOtherFuel:
			totalGHG = r.WeightedEmissions[model.FuelPropane] + r.WeightedEmissions[model.FuelFuelOil]
		default:
			totalGHG = r.WeightedEmissions[fuel]
		}

		totalEnergy := r.WeightedEnergy[model.EnergyKey{Fuel: fuel, EndUse: model.EndUseTotal}]
		for _, g := range model.EnduseGroups {
			key := model.EnergyKey{Fuel: fuel, EndUse: g}
			groupEnergy, tracked := r.WeightedEnergy[key]
			if !tracked {
				continue
			}
			if totalEnergy == 0 {
				// No energy of this fuel means no emissions to apportion.
				r.WeightedGroupEmissions[key] = 0.0
				continue
			}
			r.WeightedGroupEmissions[key] = totalGHG * groupEnergy / totalEnergy
		}
	}
}
