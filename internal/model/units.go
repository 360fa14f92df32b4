package model

import "fmt"

// Unit names a measurement unit appearing in the pipeline. Raw energy is
// reported in kBtu and raw emissions in kg CO2e; weighted outputs are
// converted to the configured target units.
type Unit string

const (
	UnitKBtu    Unit = "kbtu"
	UnitMBtu    Unit = "mbtu"
	UnitTBtu    Unit = "tbtu"
	UnitKWh     Unit = "kwh"
	UnitGWh     Unit = "gwh"
	UnitCO2eKg  Unit = "co2e_kg"
	UnitCO2eMMT Unit = "co2e_mmt"
)

// conversionTable holds the closed set of supported unit conversions.
// Energy: 1 MBtu = 1e3 kBtu, 1 TBtu = 1e9 kBtu, 1 kWh = 3.412 kBtu.
// Emissions: 1 MMT = 1e9 kg.
var conversionTable = map[[2]Unit]float64{
	{UnitKBtu, UnitKBtu}:      1.0,
	{UnitKBtu, UnitMBtu}:      1.0e-3,
	{UnitKBtu, UnitTBtu}:      1.0e-9,
	{UnitKBtu, UnitKWh}:       1.0 / 3.412,
	{UnitKBtu, UnitGWh}:       1.0 / 3.412e6,
	{UnitKWh, UnitKBtu}:       3.412,
	{UnitMBtu, UnitKBtu}:      1.0e3,
	{UnitTBtu, UnitKBtu}:      1.0e9,
	{UnitCO2eKg, UnitCO2eKg}:  1.0,
	{UnitCO2eKg, UnitCO2eMMT}: 1.0e-9,
	{UnitCO2eMMT, UnitCO2eKg}: 1.0e9,
}

// ConversionFactor returns the multiplier converting a quantity from one
// unit to another. Unsupported pairs are an error rather than a silent 1.0.
func ConversionFactor(from, to Unit) (float64, error) {
	if f, ok := conversionTable[[2]Unit{from, to}]; ok {
		return f, nil
	}
	return 0, fmt.Errorf("unsupported unit conversion: %s to %s", from, to)
}

// ParseUnit validates a configured unit name.
func ParseUnit(s string) (Unit, error) {
	switch Unit(s) {
	case UnitKBtu, UnitMBtu, UnitTBtu, UnitKWh, UnitGWh, UnitCO2eKg, UnitCO2eMMT:
		return Unit(s), nil
	}
	return "", fmt.Errorf("unknown unit: %q", s)
}
