package model

// SimulationRecord is one building simulated under one upgrade. Raw fields
// are populated by the result-set reader; derived fields are appended by the
// enrichment, weighting, savings, and segmentation stages.
type SimulationRecord struct {
	BuildingID  int64
	UpgradeID   int64
	UpgradeName string

	// Job metadata from the simulation scheduler. Never overwritten by
	// baseline fallback substitution.
	JobID       int64
	StartedAt   string
	CompletedAt string

	Status            CompletionStatus
	Applicable        bool
	ReferenceScenario string

	BuildingType   BuildingType
	HVACSystemType string
	YearBuilt      int

	// Characteristics holds descriptive attributes present only in the
	// baseline table (climate zone, state, energy code and the like). Upgrade
	// rows start without them; consolidation fills them from the baseline.
	Characteristics map[string]string

	FloorArea float64
	// TotalSiteEnergy is nil when the simulation produced no primary energy
	// output. A Success row with a nil value is a fake success.
	TotalSiteEnergy *float64
	// Energy holds every canonical fuel x end-use quantity in kBtu.
	Energy map[EnergyKey]float64
	// Emissions holds per-fuel emissions in kg CO2e.
	Emissions map[Fuel]float64

	// Derived columns.
	EUI                    map[EnergyKey]float64
	Weight                 float64
	WeightDefined          bool
	WeightedFloorArea      float64
	WeightedEnergy         map[EnergyKey]float64
	WeightedEmissions      map[Fuel]float64
	WeightedGroupEmissions map[EnergyKey]float64
	AbsoluteSavings        map[MetricKey]float64
	PercentSavings         map[MetricKey]float64

	Segment           Segment
	HVACCategory      HVACCategory
	VintageBin        string
	FloorAreaCategory string
	BuildingTypeGroup string
	AEOBuildingType   string
	// BuildingUpgradeID combines building and upgrade ids for joins of wide
	// and long outputs.
	BuildingUpgradeID int64
}

// Clone returns a deep copy of the record. Stages that substitute or extend
// rows operate on clones so no stage holds a reference into another stage's
// dataset.
func (r *SimulationRecord) Clone() *SimulationRecord {
	c := *r
	if r.TotalSiteEnergy != nil {
		v := *r.TotalSiteEnergy
		c.TotalSiteEnergy = &v
	}
	c.Characteristics = cloneStringMap(r.Characteristics)
	c.Energy = cloneKeyMap(r.Energy)
	c.Emissions = cloneFuelMap(r.Emissions)
	c.EUI = cloneKeyMap(r.EUI)
	c.WeightedEnergy = cloneKeyMap(r.WeightedEnergy)
	c.WeightedEmissions = cloneFuelMap(r.WeightedEmissions)
	c.WeightedGroupEmissions = cloneKeyMap(r.WeightedGroupEmissions)
	c.AbsoluteSavings = cloneMetricMap(r.AbsoluteSavings)
	c.PercentSavings = cloneMetricMap(r.PercentSavings)
	return &c
}

func cloneStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneKeyMap(m map[EnergyKey]float64) map[EnergyKey]float64 {
	if m == nil {
		return nil
	}
	out := make(map[EnergyKey]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneFuelMap(m map[Fuel]float64) map[Fuel]float64 {
	if m == nil {
		return nil
	}
	out := make(map[Fuel]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneMetricMap(m map[MetricKey]float64) map[MetricKey]float64 {
	if m == nil {
		return nil
	}
	out := make(map[MetricKey]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
