// Package model defines the typed domain vocabulary of the stockpost
// pipeline. The finite domains (completion status, fuel, end use, building
// type, HVAC taxonomy, segment) are enumerations rather than free strings so
// an unhandled case surfaces at construction time instead of as a sentinel
// value caught by a runtime row count.
package model

import "strings"

// CompletionStatus is the per-row simulation outcome.
type CompletionStatus int

const (
	// StatusUnknown marks a missing or unrecognized completion status.
	// Rows with this status are treated as failed.
	StatusUnknown CompletionStatus = iota
	// StatusSuccess marks a simulation that completed and produced results.
	StatusSuccess
	// StatusFail marks a simulation that errored out.
	StatusFail
	// StatusInvalid marks a row whose upgrade measure did not apply to the
	// building. Such rows inherit baseline outcomes during consolidation.
	StatusInvalid
)

// ParseCompletionStatus maps a raw status string onto the enumeration.
// Anything unrecognized, including the empty string, becomes StatusUnknown.
func ParseCompletionStatus(s string) CompletionStatus {
	switch s {
	case "Success":
		return StatusSuccess
	case "Fail":
		return StatusFail
	case "Invalid":
		return StatusInvalid
	default:
		return StatusUnknown
	}
}

func (s CompletionStatus) String() string {
	switch s {
	case StatusSuccess:
		return "Success"
	case StatusFail:
		return "Fail"
	case StatusInvalid:
		return "Invalid"
	default:
		return "Unknown"
	}
}

// Fuel identifies an energy carrier. SiteEnergy is the cross-fuel pseudo
// carrier used for totals. Propane and FuelOil appear only on the emissions
// side; their energy is reported blended as OtherFuel.
type Fuel string

const (
	FuelElectricity     Fuel = "electricity"
	FuelNaturalGas      Fuel = "natural_gas"
	FuelOtherFuel       Fuel = "other_fuel"
	FuelDistrictHeating Fuel = "district_heating"
	FuelDistrictCooling Fuel = "district_cooling"
	FuelPropane         Fuel = "propane"
	FuelFuelOil         Fuel = "fuel_oil"
	FuelSiteEnergy      Fuel = "site_energy"
)

// EndUseGroup identifies a group of simulation end uses.
type EndUseGroup string

const (
	EndUseTotal             EndUseGroup = "total"
	EndUseHVAC              EndUseGroup = "hvac"
	EndUseLighting          EndUseGroup = "lighting"
	EndUseInteriorEquipment EndUseGroup = "interior_equipment"
	EndUseRefrigeration     EndUseGroup = "refrigeration"
	EndUseWaterHeating      EndUseGroup = "water_heating"
)

// EnduseGroups lists the non-total end-use groups in canonical order.
var EnduseGroups = []EndUseGroup{
	EndUseHVAC,
	EndUseLighting,
	EndUseInteriorEquipment,
	EndUseRefrigeration,
	EndUseWaterHeating,
}

// BuildingType is the simulated commercial building type tag.
type BuildingType string

const (
	BuildingTypeFullServiceRestaurant  BuildingType = "FullServiceRestaurant"
	BuildingTypeQuickServiceRestaurant BuildingType = "QuickServiceRestaurant"
	BuildingTypeRetailStripmall        BuildingType = "RetailStripmall"
	BuildingTypeRetailStandalone       BuildingType = "RetailStandalone"
	BuildingTypeSmallOffice            BuildingType = "SmallOffice"
	BuildingTypeMediumOffice           BuildingType = "MediumOffice"
	BuildingTypeLargeOffice            BuildingType = "LargeOffice"
	BuildingTypePrimarySchool          BuildingType = "PrimarySchool"
	BuildingTypeSecondarySchool        BuildingType = "SecondarySchool"
	BuildingTypeOutpatient             BuildingType = "Outpatient"
	BuildingTypeHospital               BuildingType = "Hospital"
	BuildingTypeSmallHotel             BuildingType = "SmallHotel"
	BuildingTypeLargeHotel             BuildingType = "LargeHotel"
	BuildingTypeWarehouse              BuildingType = "Warehouse"
)

// BuildingTypes lists every known building type in canonical order.
var BuildingTypes = []BuildingType{
	BuildingTypeFullServiceRestaurant,
	BuildingTypeQuickServiceRestaurant,
	BuildingTypeRetailStripmall,
	BuildingTypeRetailStandalone,
	BuildingTypeSmallOffice,
	BuildingTypeMediumOffice,
	BuildingTypeLargeOffice,
	BuildingTypePrimarySchool,
	BuildingTypeSecondarySchool,
	BuildingTypeOutpatient,
	BuildingTypeHospital,
	BuildingTypeSmallHotel,
	BuildingTypeLargeHotel,
	BuildingTypeWarehouse,
}

// ParseBuildingType returns the typed building type for a raw tag.
// The boolean reports whether the tag is part of the known vocabulary.
func ParseBuildingType(s string) (BuildingType, bool) {
	bt := BuildingType(s)
	for _, known := range BuildingTypes {
		if bt == known {
			return bt, true
		}
	}
	return bt, false
}

// BuildingTypeGroup returns the reporting group for a building type, and
// false for a type outside the known vocabulary.
func BuildingTypeGroup(bt BuildingType) (string, bool) {
	switch bt {
	case BuildingTypeFullServiceRestaurant, BuildingTypeQuickServiceRestaurant:
		return "Food Service", true
	case BuildingTypeRetailStripmall, BuildingTypeRetailStandalone:
		return "Mercantile", true
	case BuildingTypeSmallOffice, BuildingTypeMediumOffice, BuildingTypeLargeOffice:
		return "Office", true
	case BuildingTypePrimarySchool, BuildingTypeSecondarySchool:
		return "Education", true
	case BuildingTypeOutpatient, BuildingTypeHospital:
		return "Healthcare", true
	case BuildingTypeSmallHotel, BuildingTypeLargeHotel:
		return "Lodging", true
	case BuildingTypeWarehouse:
		return "Warehouse and Storage", true
	default:
		return "", false
	}
}

// VentilationType is the air-distribution style of an HVAC system.
type VentilationType string

const (
	VentMultizoneVAV     VentilationType = "Central Multi-zone VAV RTU"
	VentSinglezoneRTU    VentilationType = "Central Single-zone RTU"
	VentDOASZoneTerminal VentilationType = "DOAS+Zone terminal equipment"
	VentZoneTerminal     VentilationType = "Zone terminal equipment"
	VentResidentialStyle VentilationType = "Residential forced air"
	VentNone             VentilationType = "None"
)

// HeatingType is the primary heating source of an HVAC system.
type HeatingType string

const (
	HeatBoiler             HeatingType = "Boiler"
	HeatDistrict           HeatingType = "District"
	HeatElectricResistance HeatingType = "Electric Resistance"
	HeatFurnace            HeatingType = "Furnace"
	HeatASHP               HeatingType = "ASHP"
	HeatGSHP               HeatingType = "GSHP"
	HeatWSHP               HeatingType = "WSHP"
	HeatNone               HeatingType = "None"
)

// ParseHeatingType normalizes a raw heating tag. Upstream vocabularies carry
// a trailing space on "Boiler " as an artifact; it is trimmed here.
func ParseHeatingType(s string) (HeatingType, bool) {
	ht := HeatingType(strings.TrimSpace(s))
	switch ht {
	case HeatBoiler, HeatDistrict, HeatElectricResistance, HeatFurnace,
		HeatASHP, HeatGSHP, HeatWSHP, HeatNone:
		return ht, true
	}
	return ht, false
}

// CoolingType is the primary cooling source of an HVAC system.
type CoolingType string

const (
	CoolACC         CoolingType = "ACC"
	CoolDX          CoolingType = "DX"
	CoolDistrict    CoolingType = "District"
	CoolWCC         CoolingType = "WCC"
	CoolEvaporative CoolingType = "Evaporative Cooling"
	CoolASHP        CoolingType = "ASHP"
	CoolGSHP        CoolingType = "GSHP"
	CoolWSHP        CoolingType = "WSHP"
	CoolNone        CoolingType = "None"
)

// HVACCategory is the coarse HVAC system category driving segmentation.
type HVACCategory int

const (
	HVACCategoryUnknown HVACCategory = iota
	HVACMultizoneCAVVAV
	HVACSmallPackagedUnit
	HVACZoneByZone
	HVACResidentialStyleCentral
	HVACOther
)

func (c HVACCategory) String() string {
	switch c {
	case HVACMultizoneCAVVAV:
		return "Multizone CAV/VAV"
	case HVACSmallPackagedUnit:
		return "Small Packaged Unit"
	case HVACZoneByZone:
		return "Zone-by-Zone"
	case HVACResidentialStyleCentral:
		return "Residential Style Central Systems"
	case HVACOther:
		return "Other HVAC"
	default:
		return "Unknown"
	}
}

// CategoryForVentilation maps a ventilation type to its HVAC category.
// The mapping is total over the ventilation vocabulary.
func CategoryForVentilation(v VentilationType) (HVACCategory, bool) {
	switch v {
	case VentMultizoneVAV:
		return HVACMultizoneCAVVAV, true
	case VentSinglezoneRTU:
		return HVACSmallPackagedUnit, true
	case VentDOASZoneTerminal, VentZoneTerminal:
		return HVACZoneByZone, true
	case VentResidentialStyle:
		return HVACResidentialStyleCentral, true
	case VentNone:
		return HVACOther, true
	default:
		return HVACCategoryUnknown, false
	}
}

// Segment is one of the nine mutually exclusive addressable market segments.
type Segment int

const (
	// SegmentUnclassified marks a record no rule matched. The classifier
	// treats any occurrence as a fatal coverage error.
	SegmentUnclassified Segment = iota
	SegmentA
	SegmentB
	SegmentC
	SegmentD
	SegmentE
	SegmentF
	SegmentG
	SegmentH
	SegmentI
)

// Segments lists the nine assignable segments in rule order.
var Segments = []Segment{
	SegmentA, SegmentB, SegmentC, SegmentD, SegmentE,
	SegmentF, SegmentG, SegmentH, SegmentI,
}

func (s Segment) String() string {
	switch s {
	case SegmentA:
		return "A: Non-Food Service, Small Packaged Unit"
	case SegmentB:
		return "B: Food Service, Small Packaged Unit"
	case SegmentC:
		return "C: Boiler or District Heat, Multizone CAV/VAV"
	case SegmentD:
		return "D: Lodging, Zone-by-Zone"
	case SegmentE:
		return "E: Electric Resistance Heat, Multizone CAV/VAV"
	case SegmentF:
		return "F: Furnace Heat, Multizone CAV/VAV"
	case SegmentG:
		return "G: Residential Style Central Systems"
	case SegmentH:
		return "H: Non-Lodging, Zone-by-Zone"
	case SegmentI:
		return "I: Other HVAC"
	default:
		return "Unclassified"
	}
}
