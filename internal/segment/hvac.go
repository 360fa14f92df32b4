package segment

import (
	"strings"

	"github.com/tigerroll/stockpost/internal/model"
)

// HVACSystem is the typed decomposition of a combined HVAC system type into
// its ventilation, heating, and cooling components.
type HVACSystem struct {
	Vent model.VentilationType
	Heat model.HeatingType
	Cool model.CoolingType
}

// knownSystems enumerates the combined HVAC system types observed in the
// simulation vocabulary. The lookup table is precomputed once from this list
// instead of memoizing string parses at call time.
var knownSystems = []HVACSystem{
	// Central Multi-zone VAV RTU
	{model.VentMultizoneVAV, model.HeatBoiler, model.CoolACC},
	{model.VentMultizoneVAV, model.HeatBoiler, model.CoolDX},
	{model.VentMultizoneVAV, model.HeatBoiler, model.CoolDistrict},
	{model.VentMultizoneVAV, model.HeatBoiler, model.CoolWCC},
	{model.VentMultizoneVAV, model.HeatDistrict, model.CoolACC},
	{model.VentMultizoneVAV, model.HeatDistrict, model.CoolDX},
	{model.VentMultizoneVAV, model.HeatDistrict, model.CoolDistrict},
	{model.VentMultizoneVAV, model.HeatDistrict, model.CoolWCC},
	{model.VentMultizoneVAV, model.HeatElectricResistance, model.CoolACC},
	{model.VentMultizoneVAV, model.HeatElectricResistance, model.CoolDX},
	{model.VentMultizoneVAV, model.HeatElectricResistance, model.CoolDistrict},
	{model.VentMultizoneVAV, model.HeatElectricResistance, model.CoolWCC},
	{model.VentMultizoneVAV, model.HeatFurnace, model.CoolDX},
	// Central Single-zone RTU
	{model.VentSinglezoneRTU, model.HeatASHP, model.CoolASHP},
	{model.VentSinglezoneRTU, model.HeatBoiler, model.CoolDX},
	{model.VentSinglezoneRTU, model.HeatBoiler, model.CoolEvaporative},
	{model.VentSinglezoneRTU, model.HeatDistrict, model.CoolDX},
	{model.VentSinglezoneRTU, model.HeatDistrict, model.CoolDistrict},
	{model.VentSinglezoneRTU, model.HeatElectricResistance, model.CoolDX},
	{model.VentSinglezoneRTU, model.HeatElectricResistance, model.CoolDistrict},
	{model.VentSinglezoneRTU, model.HeatElectricResistance, model.CoolEvaporative},
	{model.VentSinglezoneRTU, model.HeatFurnace, model.CoolDX},
	{model.VentSinglezoneRTU, model.HeatFurnace, model.CoolEvaporative},
	// DOAS + zone terminal equipment
	{model.VentDOASZoneTerminal, model.HeatASHP, model.CoolASHP},
	{model.VentDOASZoneTerminal, model.HeatBoiler, model.CoolACC},
	{model.VentDOASZoneTerminal, model.HeatBoiler, model.CoolDistrict},
	{model.VentDOASZoneTerminal, model.HeatBoiler, model.CoolWCC},
	{model.VentDOASZoneTerminal, model.HeatDistrict, model.CoolACC},
	{model.VentDOASZoneTerminal, model.HeatDistrict, model.CoolDistrict},
	{model.VentDOASZoneTerminal, model.HeatDistrict, model.CoolWCC},
	{model.VentDOASZoneTerminal, model.HeatElectricResistance, model.CoolACC},
	{model.VentDOASZoneTerminal, model.HeatElectricResistance, model.CoolDistrict},
	{model.VentDOASZoneTerminal, model.HeatElectricResistance, model.CoolWCC},
	{model.VentDOASZoneTerminal, model.HeatGSHP, model.CoolGSHP},
	{model.VentDOASZoneTerminal, model.HeatWSHP, model.CoolWSHP},
	// Zone terminal equipment
	{model.VentZoneTerminal, model.HeatASHP, model.CoolASHP},
	{model.VentZoneTerminal, model.HeatBoiler, model.CoolDX},
	{model.VentZoneTerminal, model.HeatDistrict, model.CoolDX},
	{model.VentZoneTerminal, model.HeatElectricResistance, model.CoolDX},
	{model.VentZoneTerminal, model.HeatFurnace, model.CoolDX},
	{model.VentZoneTerminal, model.HeatFurnace, model.CoolNone},
	// No central ventilation
	{model.VentNone, model.HeatBoiler, model.CoolNone},
	{model.VentNone, model.HeatElectricResistance, model.CoolNone},
	// Residential forced air
	{model.VentResidentialStyle, model.HeatFurnace, model.CoolDX},
	{model.VentResidentialStyle, model.HeatFurnace, model.CoolNone},
}

var systemIndex = buildSystemIndex()

func buildSystemIndex() map[string]HVACSystem {
	idx := make(map[string]HVACSystem, len(knownSystems))
	for _, sys := range knownSystems {
		idx[systemKey(string(sys.Vent), string(sys.Heat), string(sys.Cool))] = sys
	}
	return idx
}

func systemKey(vent, heat, cool string) string {
	return vent + "_" + heat + "_" + cool
}

// LookupSystem resolves a raw combined system type ("vent_heat_cool") to its
// typed decomposition. Components are whitespace-trimmed first: upstream
// vocabularies historically carry a trailing space on "Boiler ". The boolean
// is false for system types outside the known vocabulary.
func LookupSystem(raw string) (HVACSystem, bool) {
	parts := strings.Split(raw, "_")
	if len(parts) != 3 {
		return HVACSystem{}, false
	}
	key := systemKey(
		strings.TrimSpace(parts[0]),
		strings.TrimSpace(parts[1]),
		strings.TrimSpace(parts[2]),
	)
	sys, ok := systemIndex[key]
	return sys, ok
}
