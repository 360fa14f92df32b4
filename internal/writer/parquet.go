// Package writer exports the consolidated, enriched dataset as Parquet
// files partitioned by upgrade scenario.
package writer

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/xitongsys/parquet-go/parquet"
	pwriter "github.com/xitongsys/parquet-go/writer"

	"github.com/tigerroll/stockpost/internal/model"
	"github.com/tigerroll/stockpost/pkg/support/util/exception"
	"github.com/tigerroll/stockpost/pkg/support/util/logger"
)

const stageName = "writer"

// exportRow is the flattened wide-format output schema. Quantities that only
// exist for rows with a defined scaling weight are optional columns.
type exportRow struct {
	BuildingID        int64  `parquet:"name=building_id, type=INT64"`
	UpgradeID         int64  `parquet:"name=upgrade_id, type=INT64"`
	BuildingUpgradeID int64  `parquet:"name=building_upgrade_id, type=INT64"`
	UpgradeName       string `parquet:"name=upgrade_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	CompletedStatus   string `parquet:"name=completed_status, type=BYTE_ARRAY, convertedtype=UTF8"`
	Applicable        bool   `parquet:"name=applicable, type=BOOLEAN"`

	BuildingType      string `parquet:"name=building_type, type=BYTE_ARRAY, convertedtype=UTF8"`
	BuildingTypeGroup string `parquet:"name=building_type_group, type=BYTE_ARRAY, convertedtype=UTF8"`
	AEOBuildingType   string `parquet:"name=aeo_building_type, type=BYTE_ARRAY, convertedtype=UTF8"`
	VintageBin        string `parquet:"name=vintage_bin, type=BYTE_ARRAY, convertedtype=UTF8"`
	FloorAreaCategory string `parquet:"name=floor_area_category, type=BYTE_ARRAY, convertedtype=UTF8"`
	HVACSystemType    string `parquet:"name=hvac_system_type, type=BYTE_ARRAY, convertedtype=UTF8"`
	HVACCategory      string `parquet:"name=hvac_category, type=BYTE_ARRAY, convertedtype=UTF8"`
	Segment           string `parquet:"name=segment, type=BYTE_ARRAY, convertedtype=UTF8"`
	ClimateZone       string `parquet:"name=climate_zone, type=BYTE_ARRAY, convertedtype=UTF8"`
	State             string `parquet:"name=state, type=BYTE_ARRAY, convertedtype=UTF8"`
	YearBuilt         int32  `parquet:"name=year_built, type=INT32"`

	FloorArea       float64 `parquet:"name=floor_area_sqft, type=DOUBLE"`
	TotalSiteEnergy float64 `parquet:"name=total_site_energy_kbtu, type=DOUBLE"`
	SiteEUI         float64 `parquet:"name=site_eui_kbtu_per_sqft, type=DOUBLE"`

	Weight                  *float64 `parquet:"name=weight, type=DOUBLE, repetitiontype=OPTIONAL"`
	WeightedFloorArea       *float64 `parquet:"name=weighted_floor_area_sqft, type=DOUBLE, repetitiontype=OPTIONAL"`
	WeightedTotalSiteEnergy *float64 `parquet:"name=weighted_total_site_energy, type=DOUBLE, repetitiontype=OPTIONAL"`
	WeightedGHGTotal        *float64 `parquet:"name=weighted_ghg_total, type=DOUBLE, repetitiontype=OPTIONAL"`

	SiteEnergySavings          float64 `parquet:"name=total_site_energy_savings_kbtu, type=DOUBLE"`
	SiteEnergyPercentSavings   float64 `parquet:"name=total_site_energy_percent_savings, type=DOUBLE"`
	SiteEUISavings             float64 `parquet:"name=site_eui_savings_kbtu_per_sqft, type=DOUBLE"`
	WeightedSiteEnergySavings  float64 `parquet:"name=weighted_total_site_energy_savings, type=DOUBLE"`
	WeightedSitePercentSavings float64 `parquet:"name=weighted_total_site_energy_percent_savings, type=DOUBLE"`
}

// Exporter writes the dataset to local Parquet files, one directory per
// upgrade partition.
type Exporter struct {
	outputDir       string
	compressionType string
}

// NewExporter creates an exporter targeting outputDir. compressionType is
// SNAPPY, GZIP or NONE; empty defaults to SNAPPY.
func NewExporter(outputDir, compressionType string) *Exporter {
	if compressionType == "" {
		compressionType = "SNAPPY"
	}
	return &Exporter{outputDir: outputDir, compressionType: compressionType}
}

// Export writes one Parquet file per upgrade partition. Partitions fail
// independently; errors are aggregated so one bad partition does not abort
// the remaining exports.
func (e *Exporter) Export(ctx context.Context, ds *model.Dataset) error {
	codec, err := compressionCodec(e.compressionType)
	if err != nil {
		return exception.NewPipelineError(exception.KindUnknown, stageName,
			fmt.Sprintf("invalid compression type %q", e.compressionType), err)
	}

	var multiErr error
	for _, upgradeID := range ds.UpgradeIDs() {
		if err := ctx.Err(); err != nil {
			return err
		}
		records := ds.Partition(upgradeID)
		if err := e.exportPartition(upgradeID, records, codec); err != nil {
			multiErr = multierror.Append(multiErr, err)
			continue
		}
		logger.Infof("Exported %d rows for upgrade %d", len(records), upgradeID)
	}
	return multiErr
}

func (e *Exporter) exportPartition(upgradeID int64, records []*model.SimulationRecord, codec parquet.CompressionCodec) error {
	buf := new(bytes.Buffer)
	pw, err := pwriter.NewParquetWriterFromWriter(buf, new(exportRow), int64(len(records)))
	if err != nil {
		return exception.NewPipelineError(exception.KindUnknown, stageName,
			fmt.Sprintf("cannot create parquet writer for upgrade %d", upgradeID), err)
	}
	pw.CompressionType = codec

	for _, r := range records {
		if err := pw.Write(flatten(r)); err != nil {
			return exception.NewPipelineError(exception.KindUnknown, stageName,
				fmt.Sprintf("failed writing building %d of upgrade %d", r.BuildingID, upgradeID), err)
		}
	}

	// WriteStop can panic inside the library; convert that to an error.
	if err := stopWriter(pw); err != nil {
		return exception.NewPipelineError(exception.KindUnknown, stageName,
			fmt.Sprintf("failed finalizing parquet file for upgrade %d", upgradeID), err)
	}

	dir := filepath.Join(e.outputDir, fmt.Sprintf("upgrade=%d", upgradeID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return exception.NewPipelineError(exception.KindUnknown, stageName,
			fmt.Sprintf("cannot create partition directory %s", dir), err)
	}
	fileName := fmt.Sprintf("data_%s_%s.parquet",
		time.Now().Format("20060102150405"), strings.Split(uuid.NewString(), "-")[0])
	path := filepath.Join(dir, fileName)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return exception.NewPipelineError(exception.KindUnknown, stageName,
			fmt.Sprintf("cannot write %s", path), err)
	}
	logger.Debugf("Wrote %d bytes to %s", buf.Len(), path)
	return nil
}

func stopWriter(pw *pwriter.ParquetWriter) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parquet writer panicked during WriteStop: %v", r)
		}
	}()
	return pw.WriteStop()
}

// flatten projects a record onto the wide output schema.
func flatten(r *model.SimulationRecord) exportRow {
	row := exportRow{
		BuildingID:        r.BuildingID,
		UpgradeID:         r.UpgradeID,
		BuildingUpgradeID: r.BuildingUpgradeID,
		UpgradeName:       r.UpgradeName,
		CompletedStatus:   r.Status.String(),
		Applicable:        r.Applicable,
		BuildingType:      string(r.BuildingType),
		BuildingTypeGroup: r.BuildingTypeGroup,
		AEOBuildingType:   r.AEOBuildingType,
		VintageBin:        r.VintageBin,
		FloorAreaCategory: r.FloorAreaCategory,
		HVACSystemType:    r.HVACSystemType,
		HVACCategory:      r.HVACCategory.String(),
		Segment:           r.Segment.String(),
		ClimateZone:       r.Characteristics["climate_zone"],
		State:             r.Characteristics["state"],
		YearBuilt:         int32(r.YearBuilt),
		FloorArea:         r.FloorArea,
		TotalSiteEnergy:   r.Energy[model.TotalSiteEnergyKey],
		SiteEUI:           r.EUI[model.TotalSiteEnergyKey],
	}

	if r.WeightDefined {
		row.Weight = ptr(r.Weight)
		row.WeightedFloorArea = ptr(r.WeightedFloorArea)
		row.WeightedTotalSiteEnergy = ptr(r.WeightedEnergy[model.TotalSiteEnergyKey])
		row.WeightedGHGTotal = ptr(r.WeightedEmissions[model.FuelSiteEnergy])
	}

	siteKey := model.TotalSiteEnergyKey
	row.SiteEnergySavings = r.AbsoluteSavings[model.MetricKey{Energy: siteKey}]
	row.SiteEnergyPercentSavings = r.PercentSavings[model.MetricKey{Energy: siteKey}]
	row.SiteEUISavings = r.AbsoluteSavings[model.MetricKey{Energy: siteKey, Intensity: true}]
	row.WeightedSiteEnergySavings = r.AbsoluteSavings[model.MetricKey{Energy: siteKey, Weighted: true}]
	row.WeightedSitePercentSavings = r.PercentSavings[model.MetricKey{Energy: siteKey, Weighted: true}]
	return row
}

func compressionCodec(compressionType string) (parquet.CompressionCodec, error) {
	switch strings.ToUpper(compressionType) {
	case "SNAPPY":
		return parquet.CompressionCodec_SNAPPY, nil
	case "GZIP":
		return parquet.CompressionCodec_GZIP, nil
	case "NONE":
		return parquet.CompressionCodec_UNCOMPRESSED, nil
	default:
		return 0, fmt.Errorf("unsupported compression type: %s", compressionType)
	}
}

func ptr(v float64) *float64 {
	return &v
}
