package model

import "fmt"

// EnergyKey addresses one tracked energy quantity: a fuel crossed with an
// end-use group. {FuelSiteEnergy, EndUseTotal} is total site energy.
type EnergyKey struct {
	Fuel   Fuel
	EndUse EndUseGroup
}

func (k EnergyKey) String() string {
	return fmt.Sprintf("%s.%s", k.Fuel, k.EndUse)
}

// TotalSiteEnergyKey is the primary energy output; its absence on a Success
// row marks the row as a fake success.
var TotalSiteEnergyKey = EnergyKey{Fuel: FuelSiteEnergy, EndUse: EndUseTotal}

// canonicalEnergyKeys is the closed vocabulary of fuel x end-use quantities
// a consolidated record carries. Keys absent from an upgrade's raw table are
// zero-filled during consolidation so the merged schema is uniform.
var canonicalEnergyKeys = buildCanonicalEnergyKeys()

func buildCanonicalEnergyKeys() []EnergyKey {
	keys := []EnergyKey{
		TotalSiteEnergyKey,
		{FuelElectricity, EndUseTotal},
		{FuelNaturalGas, EndUseTotal},
		{FuelOtherFuel, EndUseTotal},
		{FuelDistrictHeating, EndUseTotal},
		{FuelDistrictCooling, EndUseTotal},
	}
	for _, g := range EnduseGroups {
		keys = append(keys, EnergyKey{FuelElectricity, g})
	}
	keys = append(keys,
		EnergyKey{FuelNaturalGas, EndUseHVAC},
		EnergyKey{FuelNaturalGas, EndUseWaterHeating},
		EnergyKey{FuelNaturalGas, EndUseInteriorEquipment},
		EnergyKey{FuelOtherFuel, EndUseHVAC},
		EnergyKey{FuelOtherFuel, EndUseWaterHeating},
		EnergyKey{FuelDistrictHeating, EndUseHVAC},
		EnergyKey{FuelDistrictHeating, EndUseWaterHeating},
		EnergyKey{FuelDistrictCooling, EndUseHVAC},
	)
	return keys
}

// CanonicalEnergyKeys returns a copy of the canonical quantity vocabulary.
func CanonicalEnergyKeys() []EnergyKey {
	out := make([]EnergyKey, len(canonicalEnergyKeys))
	copy(out, canonicalEnergyKeys)
	return out
}

// GroupTotalKeys returns the cross-fuel end-use group totals derived during
// enrichment: {site_energy, group} for each non-total group.
func GroupTotalKeys() []EnergyKey {
	keys := make([]EnergyKey, 0, len(EnduseGroups))
	for _, g := range EnduseGroups {
		keys = append(keys, EnergyKey{FuelSiteEnergy, g})
	}
	return keys
}

// EmissionFuels lists the fuels with a reported emissions quantity.
// District heating and cooling carry no emission factor and are absent.
var EmissionFuels = []Fuel{
	FuelElectricity,
	FuelNaturalGas,
	FuelFuelOil,
	FuelPropane,
	FuelSiteEnergy,
}

// MetricKey addresses one savings metric: an energy quantity in a weighted,
// unweighted, or unweighted-intensity variant. Weighted intensity is not a
// tracked variant.
type MetricKey struct {
	Energy    EnergyKey
	Weighted  bool
	Intensity bool
}

func (k MetricKey) String() string {
	switch {
	case k.Weighted:
		return "weighted." + k.Energy.String()
	case k.Intensity:
		return "eui." + k.Energy.String()
	default:
		return k.Energy.String()
	}
}

// SavingsMetricKeys enumerates every metric savings are computed for:
// the weighted, unweighted, and unweighted-EUI variant of each canonical
// energy key plus each derived group total.
func SavingsMetricKeys() []MetricKey {
	energy := CanonicalEnergyKeys()
	energy = append(energy, GroupTotalKeys()...)
	keys := make([]MetricKey, 0, len(energy)*3)
	for _, ek := range energy {
		keys = append(keys,
			MetricKey{Energy: ek, Weighted: true},
			MetricKey{Energy: ek},
			MetricKey{Energy: ek, Intensity: true},
		)
	}
	return keys
}
