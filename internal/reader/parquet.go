// Package reader loads the pipeline's raw inputs: one Parquet result table
// per upgrade scenario, the sample definition listing the building ids every
// scenario was dispatched for, and the reference survey used for scaling.
package reader

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	preader "github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go-source/local"

	"github.com/tigerroll/stockpost/internal/model"
	"github.com/tigerroll/stockpost/pkg/support/util/exception"
	"github.com/tigerroll/stockpost/pkg/support/util/logger"
)

const stageName = "reader"

// resultFilePattern matches one upgrade's raw result table. The two-or-more
// digit suffix is the upgrade id.
const resultFilePattern = "results_up*.parquet"

// readBatchSize is the row-group read granularity.
const readBatchSize = 1024

// resultRow is the closed on-disk schema of a raw result table. Columns
// present only in the baseline table, or nullable by construction, are
// pointer fields; a nil total_site_energy on a Success row marks the fake
// success the failure registry looks for.
type resultRow struct {
	BuildingID        int64    `parquet:"name=building_id, type=INT64"`
	JobID             int64    `parquet:"name=job_id, type=INT64"`
	StartedAt         *string  `parquet:"name=started_at, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	CompletedAt       *string  `parquet:"name=completed_at, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	CompletedStatus   *string  `parquet:"name=completed_status, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	Applicable        *bool    `parquet:"name=applicable, type=BOOLEAN, repetitiontype=OPTIONAL"`
	UpgradeName       *string  `parquet:"name=upgrade_name, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	ReferenceScenario *string  `parquet:"name=reference_scenario, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	BuildingType      *string  `parquet:"name=building_type, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	HVACSystemType    *string  `parquet:"name=hvac_system_type, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	YearBuilt         *int32   `parquet:"name=year_built, type=INT32, repetitiontype=OPTIONAL"`
	ClimateZone       *string  `parquet:"name=climate_zone, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	State             *string  `parquet:"name=state, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	EnergyCode        *string  `parquet:"name=energy_code, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	FloorArea         *float64 `parquet:"name=floor_area_sqft, type=DOUBLE, repetitiontype=OPTIONAL"`

	TotalSiteEnergy *float64 `parquet:"name=total_site_energy_kbtu, type=DOUBLE, repetitiontype=OPTIONAL"`

	ElectricityTotal             *float64 `parquet:"name=electricity_total_kbtu, type=DOUBLE, repetitiontype=OPTIONAL"`
	NaturalGasTotal              *float64 `parquet:"name=natural_gas_total_kbtu, type=DOUBLE, repetitiontype=OPTIONAL"`
	OtherFuelTotal               *float64 `parquet:"name=other_fuel_total_kbtu, type=DOUBLE, repetitiontype=OPTIONAL"`
	DistrictHeatingTotal         *float64 `parquet:"name=district_heating_total_kbtu, type=DOUBLE, repetitiontype=OPTIONAL"`
	DistrictCoolingTotal         *float64 `parquet:"name=district_cooling_total_kbtu, type=DOUBLE, repetitiontype=OPTIONAL"`
	ElectricityHVAC              *float64 `parquet:"name=electricity_hvac_kbtu, type=DOUBLE, repetitiontype=OPTIONAL"`
	ElectricityLighting          *float64 `parquet:"name=electricity_lighting_kbtu, type=DOUBLE, repetitiontype=OPTIONAL"`
	ElectricityInteriorEquipment *float64 `parquet:"name=electricity_interior_equipment_kbtu, type=DOUBLE, repetitiontype=OPTIONAL"`
	ElectricityRefrigeration     *float64 `parquet:"name=electricity_refrigeration_kbtu, type=DOUBLE, repetitiontype=OPTIONAL"`
	ElectricityWaterHeating      *float64 `parquet:"name=electricity_water_heating_kbtu, type=DOUBLE, repetitiontype=OPTIONAL"`
	NaturalGasHVAC               *float64 `parquet:"name=natural_gas_hvac_kbtu, type=DOUBLE, repetitiontype=OPTIONAL"`
	NaturalGasWaterHeating       *float64 `parquet:"name=natural_gas_water_heating_kbtu, type=DOUBLE, repetitiontype=OPTIONAL"`
	NaturalGasInteriorEquipment  *float64 `parquet:"name=natural_gas_interior_equipment_kbtu, type=DOUBLE, repetitiontype=OPTIONAL"`
	OtherFuelHVAC                *float64 `parquet:"name=other_fuel_hvac_kbtu, type=DOUBLE, repetitiontype=OPTIONAL"`
	OtherFuelWaterHeating        *float64 `parquet:"name=other_fuel_water_heating_kbtu, type=DOUBLE, repetitiontype=OPTIONAL"`
	DistrictHeatingHVAC          *float64 `parquet:"name=district_heating_hvac_kbtu, type=DOUBLE, repetitiontype=OPTIONAL"`
	DistrictHeatingWaterHeating  *float64 `parquet:"name=district_heating_water_heating_kbtu, type=DOUBLE, repetitiontype=OPTIONAL"`
	DistrictCoolingHVAC          *float64 `parquet:"name=district_cooling_hvac_kbtu, type=DOUBLE, repetitiontype=OPTIONAL"`

	GHGElectricity *float64 `parquet:"name=ghg_electricity_kg, type=DOUBLE, repetitiontype=OPTIONAL"`
	GHGNaturalGas  *float64 `parquet:"name=ghg_natural_gas_kg, type=DOUBLE, repetitiontype=OPTIONAL"`
	GHGFuelOil     *float64 `parquet:"name=ghg_fuel_oil_kg, type=DOUBLE, repetitiontype=OPTIONAL"`
	GHGPropane     *float64 `parquet:"name=ghg_propane_kg, type=DOUBLE, repetitiontype=OPTIONAL"`
	GHGTotal       *float64 `parquet:"name=ghg_total_kg, type=DOUBLE, repetitiontype=OPTIONAL"`
}

// ResultsReader reads every upgrade result table under a directory.
type ResultsReader struct {
	dir  string
	skip map[int64]bool
}

// NewResultsReader creates a reader over dir. Upgrade ids in skipUpgradeIDs
// are left unread; skipping the baseline is not meaningful and is refused
// downstream by the consolidation engine.
func NewResultsReader(dir string, skipUpgradeIDs []int64) *ResultsReader {
	skip := make(map[int64]bool, len(skipUpgradeIDs))
	for _, id := range skipUpgradeIDs {
		skip[id] = true
	}
	return &ResultsReader{dir: dir, skip: skip}
}

// ReadAll loads every non-skipped upgrade result table, keyed by upgrade id.
func (rr *ResultsReader) ReadAll(ctx context.Context) (map[int64]*model.UpgradeResultSet, error) {
	paths, err := filepath.Glob(filepath.Join(rr.dir, resultFilePattern))
	if err != nil {
		return nil, exception.NewPipelineError(exception.KindUnknown, stageName,
			fmt.Sprintf("cannot list result tables under %s", rr.dir), err)
	}
	if len(paths) == 0 {
		return nil, exception.Errorf(exception.KindSchemaIntegrity, stageName,
			"no result tables matching %s under %s", resultFilePattern, rr.dir)
	}

	sets := make(map[int64]*model.UpgradeResultSet, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		upgradeID, err := upgradeIDFromPath(path)
		if err != nil {
			return nil, err
		}
		if rr.skip[upgradeID] {
			logger.Infof("Skipping upgrade %d (%s) per configuration", upgradeID, filepath.Base(path))
			continue
		}

		records, rawRows, err := rr.readTable(path, upgradeID)
		if err != nil {
			return nil, err
		}
		sets[upgradeID] = &model.UpgradeResultSet{
			UpgradeID:   upgradeID,
			Records:     records,
			RawRowCount: rawRows,
		}
		logger.Infof("Read %d rows for upgrade %d from %s", rawRows, upgradeID, filepath.Base(path))
	}
	return sets, nil
}

// readTable reads one result table in row batches.
func (rr *ResultsReader) readTable(path string, upgradeID int64) ([]*model.SimulationRecord, int, error) {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, 0, exception.NewPipelineError(exception.KindUnknown, stageName,
			fmt.Sprintf("cannot open result table %s", path), err)
	}
	defer fr.Close()

	pr, err := preader.NewParquetReader(fr, new(resultRow), 4)
	if err != nil {
		return nil, 0, exception.NewPipelineError(exception.KindSchemaIntegrity, stageName,
			fmt.Sprintf("result table %s does not match the expected schema", path), err)
	}
	defer pr.ReadStop()

	total := int(pr.GetNumRows())
	records := make([]*model.SimulationRecord, 0, total)
	for read := 0; read < total; {
		n := readBatchSize
		if read+n > total {
			n = total - read
		}
		rows := make([]resultRow, n)
		if err := pr.Read(&rows); err != nil {
			return nil, 0, exception.NewPipelineError(exception.KindSchemaIntegrity, stageName,
				fmt.Sprintf("failed reading rows %d-%d of %s", read, read+n, path), err)
		}
		for i := range rows {
			records = append(records, rows[i].toRecord(upgradeID))
		}
		read += n
	}
	return records, total, nil
}

// toRecord converts one on-disk row into the domain record. Nil quantity
// columns stay absent from the maps; consolidation zero-fills the canonical
// vocabulary afterwards.
func (row *resultRow) toRecord(upgradeID int64) *model.SimulationRecord {
	r := &model.SimulationRecord{
		BuildingID:        row.BuildingID,
		UpgradeID:         upgradeID,
		UpgradeName:       strVal(row.UpgradeName),
		JobID:             row.JobID,
		StartedAt:         strVal(row.StartedAt),
		CompletedAt:       strVal(row.CompletedAt),
		Status:            model.ParseCompletionStatus(strVal(row.CompletedStatus)),
		Applicable:        boolVal(row.Applicable),
		ReferenceScenario: strVal(row.ReferenceScenario),
		HVACSystemType:    strVal(row.HVACSystemType),
		YearBuilt:         int(i32Val(row.YearBuilt)),
		FloorArea:         f64Val(row.FloorArea),
		TotalSiteEnergy:   row.TotalSiteEnergy,
		Energy:            make(map[model.EnergyKey]float64),
		Emissions:         make(map[model.Fuel]float64),
	}
	r.BuildingType, _ = model.ParseBuildingType(strVal(row.BuildingType))

	r.Characteristics = make(map[string]string)
	putCharacteristic(r.Characteristics, "climate_zone", row.ClimateZone)
	putCharacteristic(r.Characteristics, "state", row.State)
	putCharacteristic(r.Characteristics, "energy_code", row.EnergyCode)

	for key, col := range map[model.EnergyKey]*float64{
		model.TotalSiteEnergyKey:                                              row.TotalSiteEnergy,
		{Fuel: model.FuelElectricity, EndUse: model.EndUseTotal}:              row.ElectricityTotal,
		{Fuel: model.FuelNaturalGas, EndUse: model.EndUseTotal}:               row.NaturalGasTotal,
		{Fuel: model.FuelOtherFuel, EndUse: model.EndUseTotal}:                row.OtherFuelTotal,
		{Fuel: model.FuelDistrictHeating, EndUse: model.EndUseTotal}:          row.DistrictHeatingTotal,
		{Fuel: model.FuelDistrictCooling, EndUse: model.EndUseTotal}:          row.DistrictCoolingTotal,
		{Fuel: model.FuelElectricity, EndUse: model.EndUseHVAC}:               row.ElectricityHVAC,
		{Fuel: model.FuelElectricity, EndUse: model.EndUseLighting}:           row.ElectricityLighting,
		{Fuel: model.FuelElectricity, EndUse: model.EndUseInteriorEquipment}:  row.ElectricityInteriorEquipment,
		{Fuel: model.FuelElectricity, EndUse: model.EndUseRefrigeration}:      row.ElectricityRefrigeration,
		{Fuel: model.FuelElectricity, EndUse: model.EndUseWaterHeating}:       row.ElectricityWaterHeating,
		{Fuel: model.FuelNaturalGas, EndUse: model.EndUseHVAC}:                row.NaturalGasHVAC,
		{Fuel: model.FuelNaturalGas, EndUse: model.EndUseWaterHeating}:        row.NaturalGasWaterHeating,
		{Fuel: model.FuelNaturalGas, EndUse: model.EndUseInteriorEquipment}:   row.NaturalGasInteriorEquipment,
		{Fuel: model.FuelOtherFuel, EndUse: model.EndUseHVAC}:                 row.OtherFuelHVAC,
		{Fuel: model.FuelOtherFuel, EndUse: model.EndUseWaterHeating}:         row.OtherFuelWaterHeating,
		{Fuel: model.FuelDistrictHeating, EndUse: model.EndUseHVAC}:           row.DistrictHeatingHVAC,
		{Fuel: model.FuelDistrictHeating, EndUse: model.EndUseWaterHeating}:   row.DistrictHeatingWaterHeating,
		{Fuel: model.FuelDistrictCooling, EndUse: model.EndUseHVAC}:           row.DistrictCoolingHVAC,
	} {
		if col != nil {
			r.Energy[key] = *col
		}
	}
	for fuel, col := range map[model.Fuel]*float64{
		model.FuelElectricity: row.GHGElectricity,
		model.FuelNaturalGas:  row.GHGNaturalGas,
		model.FuelFuelOil:     row.GHGFuelOil,
		model.FuelPropane:     row.GHGPropane,
		model.FuelSiteEnergy:  row.GHGTotal,
	} {
		if col != nil {
			r.Emissions[fuel] = *col
		}
	}
	return r
}

// upgradeIDFromPath extracts the upgrade id from a results_upNN.parquet name.
func upgradeIDFromPath(path string) (int64, error) {
	base := filepath.Base(path)
	digits := strings.TrimSuffix(strings.TrimPrefix(base, "results_up"), ".parquet")
	id, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, exception.NewPipelineError(exception.KindSchemaIntegrity, stageName,
			fmt.Sprintf("result table name %s carries no parseable upgrade id", base), err)
	}
	return id, nil
}

func putCharacteristic(m map[string]string, key string, v *string) {
	if v != nil {
		m[key] = *v
	}
}

func strVal(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func boolVal(v *bool) bool {
	return v != nil && *v
}

func i32Val(v *int32) int32 {
	if v == nil {
		return 0
	}
	return *v
}

func f64Val(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
