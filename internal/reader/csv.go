package reader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/tigerroll/stockpost/internal/model"
	"github.com/tigerroll/stockpost/internal/weights"
	"github.com/tigerroll/stockpost/pkg/support/util/exception"
	"github.com/tigerroll/stockpost/pkg/support/util/logger"
)

// ReadSample loads the sample definition and returns the sorted building ids
// every upgrade scenario was dispatched for. Ids missing from a result table
// relative to this list are counted as failed simulations.
func ReadSample(path string) ([]int64, error) {
	rows, header, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	idCol, err := columnIndex(header, "building_id", path)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(rows))
	seen := make(map[int64]bool, len(rows))
	for i, row := range rows {
		id, err := strconv.ParseInt(row[idCol], 10, 64)
		if err != nil {
			return nil, exception.NewPipelineError(exception.KindSchemaIntegrity, stageName,
				fmt.Sprintf("sample %s row %d has non-numeric building_id %q", path, i+2, row[idCol]), err)
		}
		if seen[id] {
			return nil, exception.Errorf(exception.KindSchemaIntegrity, stageName,
				"sample %s repeats building_id %d", path, id)
		}
		seen[id] = true
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	logger.Infof("Sample defines %d buildings", len(ids))
	return ids, nil
}

// ReadReference loads the reference survey: total weighted floor area per
// building type. Types outside the known vocabulary fail the load; the
// survey is curated, so an unknown tag is a preparation error rather than
// data to tolerate.
func ReadReference(path string) (weights.ReferenceTable, error) {
	rows, header, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	typeCol, err := columnIndex(header, "building_type", path)
	if err != nil {
		return nil, err
	}
	areaCol, err := columnIndex(header, "weighted_floor_area_sqft", path)
	if err != nil {
		return nil, err
	}

	table := make(weights.ReferenceTable, len(rows))
	for i, row := range rows {
		bt, known := model.ParseBuildingType(row[typeCol])
		if !known {
			return nil, exception.Errorf(exception.KindSchemaIntegrity, stageName,
				"reference %s row %d has unknown building type %q", path, i+2, row[typeCol])
		}
		area, err := strconv.ParseFloat(row[areaCol], 64)
		if err != nil {
			return nil, exception.NewPipelineError(exception.KindSchemaIntegrity, stageName,
				fmt.Sprintf("reference %s row %d has non-numeric floor area %q", path, i+2, row[areaCol]), err)
		}
		if _, dup := table[bt]; dup {
			return nil, exception.Errorf(exception.KindSchemaIntegrity, stageName,
				"reference %s repeats building type %s", path, bt)
		}
		table[bt] = area
	}
	logger.Infof("Reference survey covers %d building types", len(table))
	return table, nil
}

// readCSV reads a headed CSV file fully, returning body rows and the header.
func readCSV(path string) ([][]string, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, exception.NewPipelineError(exception.KindUnknown, stageName,
			fmt.Sprintf("cannot open %s", path), err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	header, err := cr.Read()
	if err != nil {
		return nil, nil, exception.NewPipelineError(exception.KindSchemaIntegrity, stageName,
			fmt.Sprintf("%s has no header row", path), err)
	}

	var rows [][]string
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, exception.NewPipelineError(exception.KindSchemaIntegrity, stageName,
				fmt.Sprintf("malformed row in %s", path), err)
		}
		rows = append(rows, row)
	}
	return rows, header, nil
}

func columnIndex(header []string, name, path string) (int, error) {
	for i, h := range header {
		if h == name {
			return i, nil
		}
	}
	return 0, exception.Errorf(exception.KindSchemaIntegrity, stageName,
		"%s is missing required column %q", path, name)
}
