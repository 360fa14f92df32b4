package segment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tigerroll/stockpost/internal/model"
	"github.com/tigerroll/stockpost/internal/segment"
	"github.com/tigerroll/stockpost/pkg/support/util/exception"
)

func record(bt model.BuildingType, hvac string) *model.SimulationRecord {
	return &model.SimulationRecord{
		BuildingID:     1,
		UpgradeID:      model.BaselineUpgradeID,
		BuildingType:   bt,
		HVACSystemType: hvac,
	}
}

func classifyOne(t *testing.T, bt model.BuildingType, hvac string) model.Segment {
	t.Helper()
	ds := model.NewDataset([]*model.SimulationRecord{record(bt, hvac)})
	ds, err := segment.NewClassifier().Classify(ds)
	assert.NoError(t, err)
	return ds.Records[0].Segment
}

func TestClassify_AllNineSegments(t *testing.T) {
	tests := []struct {
		name string
		bt   model.BuildingType
		hvac string
		want model.Segment
	}{
		{"non-food-service small packaged", model.BuildingTypeSmallOffice,
			"Central Single-zone RTU_Furnace_DX", model.SegmentA},
		{"food service small packaged", model.BuildingTypeQuickServiceRestaurant,
			"Central Single-zone RTU_Furnace_DX", model.SegmentB},
		{"strip mall counts as food service", model.BuildingTypeRetailStripmall,
			"Central Single-zone RTU_Electric Resistance_DX", model.SegmentB},
		{"boiler multizone", model.BuildingTypeLargeOffice,
			"Central Multi-zone VAV RTU_Boiler_ACC", model.SegmentC},
		{"district heat multizone", model.BuildingTypeHospital,
			"Central Multi-zone VAV RTU_District_District", model.SegmentC},
		{"lodging zone-by-zone", model.BuildingTypeSmallHotel,
			"Zone terminal equipment_Boiler_DX", model.SegmentD},
		{"electric resistance multizone", model.BuildingTypeLargeOffice,
			"Central Multi-zone VAV RTU_Electric Resistance_DX", model.SegmentE},
		{"furnace multizone", model.BuildingTypeWarehouse,
			"Central Multi-zone VAV RTU_Furnace_DX", model.SegmentF},
		{"residential style central", model.BuildingTypeSmallOffice,
			"Residential forced air_Furnace_DX", model.SegmentG},
		{"non-lodging zone-by-zone", model.BuildingTypeOutpatient,
			"DOAS+Zone terminal equipment_Boiler_WCC", model.SegmentH},
		{"no central ventilation", model.BuildingTypeWarehouse,
			"None_Electric Resistance_None", model.SegmentI},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyOne(t, tt.bt, tt.hvac))
		})
	}
}

func TestClassify_TrailingSpaceOnHeatingComponent(t *testing.T) {
	// Historic vocabulary carries "Boiler " with a trailing space.
	got := classifyOne(t, model.BuildingTypeLargeOffice, "Central Multi-zone VAV RTU_Boiler _ACC")
	assert.Equal(t, model.SegmentC, got)
}

func TestClassify_SetsHVACCategory(t *testing.T) {
	ds := model.NewDataset([]*model.SimulationRecord{
		record(model.BuildingTypeSmallOffice, "Central Single-zone RTU_Furnace_DX"),
	})
	ds, err := segment.NewClassifier().Classify(ds)
	assert.NoError(t, err)
	assert.Equal(t, model.HVACSmallPackagedUnit, ds.Records[0].HVACCategory)
}

func TestClassify_UnknownSystemTypeIsCoverageError(t *testing.T) {
	ds := model.NewDataset([]*model.SimulationRecord{
		record(model.BuildingTypeSmallOffice, "Central Single-zone RTU_Furnace_DX"),
		record(model.BuildingTypeSmallOffice, "Steam Punk Contraption"),
	})

	_, err := segment.NewClassifier().Classify(ds)
	assert.Error(t, err)
	assert.Equal(t, exception.KindSegmentCoverage, exception.KindOf(err))
	assert.True(t, exception.IsFatal(err))
}

func TestLookupSystem(t *testing.T) {
	sys, ok := segment.LookupSystem("DOAS+Zone terminal equipment_GSHP_GSHP")
	assert.True(t, ok)
	assert.Equal(t, model.VentDOASZoneTerminal, sys.Vent)
	assert.Equal(t, model.HeatGSHP, sys.Heat)

	_, ok = segment.LookupSystem("not_a_known_system_at_all")
	assert.False(t, ok)
}
