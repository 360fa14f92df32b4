// Package consolidate merges per-upgrade result sets into one
// schema-uniform dataset, applying failure exclusion and invalid-upgrade
// fallback substitution.
package consolidate

import (
	"sort"

	"github.com/tigerroll/stockpost/internal/model"
	"github.com/tigerroll/stockpost/internal/registry"
	"github.com/tigerroll/stockpost/pkg/support/util/exception"
	"github.com/tigerroll/stockpost/pkg/support/util/logger"
)

const stageName = "consolidate"

// BaselineName is the upgrade name assigned to the unmodified scenario.
const BaselineName = "Baseline"

// Engine produces one ConsolidatedDataset from N upgrade result sets.
type Engine struct {
	registry       *registry.FailureRegistry
	dropFailedRuns bool
}

// NewEngine creates a consolidation engine backed by a completed failure
// registry. dropFailedRuns gates the per-upgrade exclusion of baseline-failed
// and own-failed rows; the cross-upgrade failed set is always excluded so a
// building appears either in every partition or in none.
func NewEngine(reg *registry.FailureRegistry, dropFailedRuns bool) *Engine {
	return &Engine{registry: reg, dropFailedRuns: dropFailedRuns}
}

// Consolidate merges the result sets in ascending upgrade-id order and
// returns the owned, schema-uniform dataset. The baseline result set
// (upgrade 0) must be present.
func (e *Engine) Consolidate(resultSets map[int64]*model.UpgradeResultSet) (*model.Dataset, error) {
	base, ok := resultSets[model.BaselineUpgradeID]
	if !ok {
		return nil, exception.Errorf(exception.KindSchemaIntegrity, stageName,
			"baseline result set (upgrade %d) is missing", model.BaselineUpgradeID)
	}

	baseIndex := e.baselineIndex(base)
	if len(baseIndex) == 0 {
		return nil, exception.Errorf(exception.KindSchemaIntegrity, stageName,
			"baseline is empty after failure filtering")
	}

	ids := make([]int64, 0, len(resultSets))
	for id := range resultSets {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var merged []*model.SimulationRecord
	for _, upgradeID := range ids {
		logger.Infof("Processing upgrade %d", upgradeID)
		rows, err := e.consolidateUpgrade(resultSets[upgradeID], baseIndex)
		if err != nil {
			return nil, err
		}
		merged = append(merged, rows...)
	}
	return model.NewDataset(merged), nil
}

// baselineIndex returns surviving baseline records keyed by building id,
// with the baseline identity columns normalized.
func (e *Engine) baselineIndex(base *model.UpgradeResultSet) map[int64]*model.SimulationRecord {
	idx := make(map[int64]*model.SimulationRecord, len(base.Records))
	for _, r := range base.Records {
		if e.excluded(model.BaselineUpgradeID, r.BuildingID) {
			continue
		}
		c := r.Clone()
		// The baseline is always "applicable" to itself.
		c.UpgradeName = BaselineName
		c.Applicable = true
		idx[c.BuildingID] = c
	}
	return idx
}

// excluded reports whether a building is dropped from an upgrade's partition.
func (e *Engine) excluded(upgradeID, buildingID int64) bool {
	if e.dropFailedRuns {
		if e.registry.IsBaselineFailed(buildingID) || e.registry.IsUpgradeFailed(upgradeID, buildingID) {
			return true
		}
	}
	// Buildings that failed in ANY run are excluded from every partition,
	// not just the one where the failure was observed.
	return e.registry.IsFailed(buildingID)
}

func (e *Engine) consolidateUpgrade(rs *model.UpgradeResultSet, baseIndex map[int64]*model.SimulationRecord) ([]*model.SimulationRecord, error) {
	var applicable, notApplicable []*model.SimulationRecord
	dropped := 0

	for _, r := range rs.Records {
		if e.excluded(rs.UpgradeID, r.BuildingID) {
			dropped++
			continue
		}
		row := r.Clone()
		if rs.UpgradeID == model.BaselineUpgradeID {
			row = baseIndex[row.BuildingID]
			if row == nil {
				continue
			}
		} else {
			if err := e.joinBaselineCharacteristics(row, baseIndex); err != nil {
				return nil, err
			}
		}

		switch row.Status {
		case model.StatusSuccess:
			applicable = append(applicable, row)
		case model.StatusInvalid:
			adjusted, err := e.substituteBaseline(row, baseIndex)
			if err != nil {
				return nil, err
			}
			notApplicable = append(notApplicable, adjusted)
		default:
			// Fail/Unknown rows are in the cross-upgrade failed set and were
			// dropped above; anything else here is upstream schema drift.
			return nil, exception.Errorf(exception.KindSchemaIntegrity, stageName,
				"upgrade %d building %d has unexpected surviving status %s",
				rs.UpgradeID, r.BuildingID, row.Status)
		}
	}

	if dropped > 0 {
		logger.Infof("Upgrade %d: dropped %d failed rows", rs.UpgradeID, dropped)
	}

	rows := append(applicable, notApplicable...)
	if len(rows) == 0 {
		return nil, exception.Errorf(exception.KindSchemaIntegrity, stageName,
			"upgrade %d is empty after failure filtering", rs.UpgradeID)
	}

	for _, row := range rows {
		fillMissingEnergy(row)
	}
	return rows, nil
}

// joinBaselineCharacteristics left-joins the descriptive attributes present
// only on the baseline row onto an upgrade row, by building id.
func (e *Engine) joinBaselineCharacteristics(row *model.SimulationRecord, baseIndex map[int64]*model.SimulationRecord) error {
	base, ok := baseIndex[row.BuildingID]
	if !ok {
		return exception.Errorf(exception.KindSchemaIntegrity, stageName,
			"upgrade %d building %d has no surviving baseline row to join", row.UpgradeID, row.BuildingID)
	}
	if row.Characteristics == nil {
		row.Characteristics = make(map[string]string, len(base.Characteristics))
	}
	for k, v := range base.Characteristics {
		if _, present := row.Characteristics[k]; !present {
			row.Characteristics[k] = v
		}
	}
	if row.BuildingType == "" {
		row.BuildingType = base.BuildingType
	}
	if row.HVACSystemType == "" {
		row.HVACSystemType = base.HVACSystemType
	}
	if row.YearBuilt == 0 {
		row.YearBuilt = base.YearBuilt
	}
	return nil
}

// substituteBaseline overwrites a not-applicable row's physical outcomes with
// the matching baseline row's values. An Invalid determination means the
// measure did not apply, so the row's outcome must equal the baseline exactly,
// guaranteeing zero savings without special-casing downstream metrics.
// Job metadata, completion status, the applicability flag, the upgrade
// name/id, and the reference-scenario marker are left untouched.
func (e *Engine) substituteBaseline(row *model.SimulationRecord, baseIndex map[int64]*model.SimulationRecord) (*model.SimulationRecord, error) {
	base, ok := baseIndex[row.BuildingID]
	if !ok {
		return nil, exception.Errorf(exception.KindSchemaIntegrity, stageName,
			"upgrade %d building %d is Invalid but has no baseline row for fallback", row.UpgradeID, row.BuildingID)
	}

	out := base.Clone()
	out.JobID = row.JobID
	out.StartedAt = row.StartedAt
	out.CompletedAt = row.CompletedAt
	out.Status = row.Status
	out.Applicable = row.Applicable
	out.UpgradeName = row.UpgradeName
	out.UpgradeID = row.UpgradeID
	out.ReferenceScenario = row.ReferenceScenario
	return out, nil
}

// fillMissingEnergy zero-fills canonical quantities absent from a row so the
// merged schema is uniform across upgrades.
func fillMissingEnergy(row *model.SimulationRecord) {
	if row.Energy == nil {
		row.Energy = make(map[model.EnergyKey]float64)
	}
	for _, k := range model.CanonicalEnergyKeys() {
		if _, ok := row.Energy[k]; !ok {
			row.Energy[k] = 0.0
		}
	}
	if row.TotalSiteEnergy != nil {
		row.Energy[model.TotalSiteEnergyKey] = *row.TotalSiteEnergy
	}
	if row.Emissions == nil {
		row.Emissions = make(map[model.Fuel]float64)
	}
	for _, f := range model.EmissionFuels {
		if _, ok := row.Emissions[f]; !ok {
			row.Emissions[f] = 0.0
		}
	}
}
