package reader

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	pwriter "github.com/xitongsys/parquet-go/writer"

	"github.com/tigerroll/stockpost/internal/model"
	"github.com/tigerroll/stockpost/pkg/support/util/exception"
)

func strPtr(v string) *string   { return &v }
func boolPtr(v bool) *bool      { return &v }
func i32Ptr(v int32) *int32     { return &v }
func f64Ptr(v float64) *float64 { return &v }

// writeResultTable writes a fixture result table through the same schema the
// reader decodes.
func writeResultTable(t *testing.T, dir, name string, rows []resultRow) {
	t.Helper()
	buf := new(bytes.Buffer)
	pw, err := pwriter.NewParquetWriterFromWriter(buf, new(resultRow), 1)
	assert.NoError(t, err)
	for i := range rows {
		assert.NoError(t, pw.Write(rows[i]))
	}
	assert.NoError(t, pw.WriteStop())
	assert.NoError(t, os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0o644))
}

func successRow(buildingID int64) resultRow {
	return resultRow{
		BuildingID:       buildingID,
		JobID:            7,
		StartedAt:        strPtr("2024-01-01T00:00:00Z"),
		CompletedStatus:  strPtr("Success"),
		Applicable:       boolPtr(true),
		UpgradeName:      strPtr("HVAC Efficiency"),
		BuildingType:     strPtr("SmallOffice"),
		HVACSystemType:   strPtr("Central Single-zone RTU_Furnace_DX"),
		YearBuilt:        i32Ptr(1985),
		ClimateZone:      strPtr("3A"),
		State:            strPtr("GA"),
		FloorArea:        f64Ptr(10_000),
		TotalSiteEnergy:  f64Ptr(500_000),
		ElectricityTotal: f64Ptr(400_000),
		GHGElectricity:   f64Ptr(2_000),
	}
}

func TestReadAll_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	writeResultTable(t, dir, "results_up00.parquet", []resultRow{successRow(1), successRow(2)})
	writeResultTable(t, dir, "results_up01.parquet", []resultRow{successRow(1)})

	sets, err := NewResultsReader(dir, nil).ReadAll(context.Background())
	assert.NoError(t, err)
	assert.Len(t, sets, 2)
	assert.Equal(t, 2, sets[0].RawRowCount)
	assert.Equal(t, int64(0), sets[0].UpgradeID)
	assert.Equal(t, int64(1), sets[1].UpgradeID)

	r := sets[0].Records[0]
	assert.Equal(t, int64(1), r.BuildingID)
	assert.Equal(t, int64(0), r.UpgradeID)
	assert.Equal(t, int64(7), r.JobID)
	assert.Equal(t, model.StatusSuccess, r.Status)
	assert.True(t, r.Applicable)
	assert.Equal(t, model.BuildingTypeSmallOffice, r.BuildingType)
	assert.Equal(t, "Central Single-zone RTU_Furnace_DX", r.HVACSystemType)
	assert.Equal(t, 1985, r.YearBuilt)
	assert.Equal(t, 10_000.0, r.FloorArea)
	assert.Equal(t, "3A", r.Characteristics["climate_zone"])
	assert.Equal(t, "GA", r.Characteristics["state"])
	if assert.NotNil(t, r.TotalSiteEnergy) {
		assert.Equal(t, 500_000.0, *r.TotalSiteEnergy)
	}
	assert.Equal(t, 500_000.0, r.Energy[model.TotalSiteEnergyKey])
	assert.Equal(t, 400_000.0, r.Energy[model.EnergyKey{Fuel: model.FuelElectricity, EndUse: model.EndUseTotal}])
	assert.Equal(t, 2_000.0, r.Emissions[model.FuelElectricity])
	// Columns null on disk stay absent; consolidation zero-fills later.
	_, present := r.Energy[model.EnergyKey{Fuel: model.FuelNaturalGas, EndUse: model.EndUseTotal}]
	assert.False(t, present)
}

func TestReadAll_NullEnergyStaysNil(t *testing.T) {
	dir := t.TempDir()
	fake := resultRow{
		BuildingID:      3,
		CompletedStatus: strPtr("Success"),
		// total_site_energy_kbtu null: a fake success for the registry.
	}
	missingStatus := resultRow{BuildingID: 4}
	writeResultTable(t, dir, "results_up00.parquet", []resultRow{fake, missingStatus})

	sets, err := NewResultsReader(dir, nil).ReadAll(context.Background())
	assert.NoError(t, err)

	r := sets[0].Records[0]
	assert.Equal(t, model.StatusSuccess, r.Status)
	assert.Nil(t, r.TotalSiteEnergy)
	_, present := r.Energy[model.TotalSiteEnergyKey]
	assert.False(t, present)

	assert.Equal(t, model.StatusUnknown, sets[0].Records[1].Status)
}

func TestReadAll_SkipList(t *testing.T) {
	dir := t.TempDir()
	writeResultTable(t, dir, "results_up00.parquet", []resultRow{successRow(1)})
	writeResultTable(t, dir, "results_up05.parquet", []resultRow{successRow(1)})

	sets, err := NewResultsReader(dir, []int64{5}).ReadAll(context.Background())
	assert.NoError(t, err)
	assert.Len(t, sets, 1)
	assert.Contains(t, sets, int64(0))
	assert.NotContains(t, sets, int64(5))
}

func TestReadAll_EmptyDirIsFatal(t *testing.T) {
	_, err := NewResultsReader(t.TempDir(), nil).ReadAll(context.Background())
	assert.Error(t, err)
	assert.Equal(t, exception.KindSchemaIntegrity, exception.KindOf(err))
}

func TestReadAll_CancelledContextStopsRead(t *testing.T) {
	dir := t.TempDir()
	writeResultTable(t, dir, "results_up00.parquet", []resultRow{successRow(1)})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewResultsReader(dir, nil).ReadAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUpgradeIDFromPath(t *testing.T) {
	id, err := upgradeIDFromPath("/data/results_up07.parquet")
	assert.NoError(t, err)
	assert.Equal(t, int64(7), id)

	id, err = upgradeIDFromPath("results_up12.parquet")
	assert.NoError(t, err)
	assert.Equal(t, int64(12), id)

	_, err = upgradeIDFromPath("results_upABC.parquet")
	assert.Error(t, err)
	assert.Equal(t, exception.KindSchemaIntegrity, exception.KindOf(err))
}
