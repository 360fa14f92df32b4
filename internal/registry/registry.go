// Package registry tracks failed building ids across simulation runs and
// enforces the acceptable failure-rate policy. It is built incrementally
// while upgrade result sets are scanned and is read-only once consolidation
// begins.
package registry

import (
	"github.com/tigerroll/stockpost/internal/model"
	"github.com/tigerroll/stockpost/pkg/support/util/exception"
	"github.com/tigerroll/stockpost/pkg/support/util/logger"
)

const stageName = "registry"

// FailureRegistry classifies every row of every upgrade result set into
// failed / not-failed and exposes the id sets downstream filtering needs.
type FailureRegistry struct {
	acceptableFailureRate float64

	allFailed      map[int64]bool
	baselineFailed map[int64]bool
	perUpgrade     map[int64]map[int64]bool
	rawCounts      map[int64]int
}

// New creates an empty registry with the configured acceptable failure rate
// (a fraction, e.g. 0.01).
func New(acceptableFailureRate float64) *FailureRegistry {
	return &FailureRegistry{
		acceptableFailureRate: acceptableFailureRate,
		allFailed:             make(map[int64]bool),
		baselineFailed:        make(map[int64]bool),
		perUpgrade:            make(map[int64]map[int64]bool),
		rawCounts:             make(map[int64]int),
	}
}

// rowFailed reports whether a single row counts as failed: an explicit Fail,
// an unknown/null status, or a Success with no primary energy output (a fake
// success left behind when a long-running job is killed).
func rowFailed(r *model.SimulationRecord) bool {
	switch r.Status {
	case model.StatusFail, model.StatusUnknown:
		return true
	case model.StatusSuccess:
		return r.TotalSiteEnergy == nil
	default:
		return false
	}
}

// Scan classifies one upgrade result set. expectedIDs is the full sample of
// building ids the run was scheduled for; ids missing from the result table
// signal silently dropped jobs and are treated as failed. Scan returns an
// ExcessFailureRate error when the upgrade's failure rate exceeds the
// acceptable threshold; this is the pipeline's one hard stop.
func (fr *FailureRegistry) Scan(rs *model.UpgradeResultSet, expectedIDs []int64) error {
	failed := make(map[int64]bool)
	present := make(map[int64]bool, len(rs.Records))
	for _, r := range rs.Records {
		present[r.BuildingID] = true
		if rowFailed(r) {
			failed[r.BuildingID] = true
		}
	}

	// Rows missing from the raw table entirely (job never reported back).
	if len(expectedIDs) > 0 && rs.RawRowCount != len(expectedIDs) {
		logger.Warnf("Upgrade %d: expected %d buildings in the sample but found %d in the results (%.2f%%).",
			rs.UpgradeID, len(expectedIDs), rs.RawRowCount,
			float64(rs.RawRowCount)/float64(len(expectedIDs))*100)
		logger.Warnf("    This likely means one or more simulation jobs timed out and never reached the results table.")
		for _, id := range expectedIDs {
			if !present[id] {
				fr.allFailed[id] = true
			}
		}
	}

	for id := range failed {
		fr.allFailed[id] = true
		if rs.UpgradeID == model.BaselineUpgradeID {
			fr.baselineFailed[id] = true
		}
	}
	fr.perUpgrade[rs.UpgradeID] = failed
	fr.rawCounts[rs.UpgradeID] = rs.RawRowCount

	rate := fr.FailureRate(rs.UpgradeID)
	if rate > fr.acceptableFailureRate {
		return exception.Errorf(exception.KindExcessFailureRate, stageName,
			"upgrade %d failure rate was %.4f (%d of %d simulations), above the acceptable limit of %.4f",
			rs.UpgradeID, rate, len(failed), rs.RawRowCount, fr.acceptableFailureRate)
	}

	fr.logCrossRunDiagnostics(rs.UpgradeID, failed)
	return nil
}

// logCrossRunDiagnostics logs buildings that failed in this upgrade but not
// the baseline, and vice versa. Non-fatal.
func (fr *FailureRegistry) logCrossRunDiagnostics(upgradeID int64, failed map[int64]bool) {
	if upgradeID == model.BaselineUpgradeID {
		return
	}
	failedInUpOnly := 0
	for id := range failed {
		if !fr.baselineFailed[id] {
			failedInUpOnly++
		}
	}
	if failedInUpOnly > 0 {
		logger.Infof("%d models that were successful in the baseline failed in upgrade %d", failedInUpOnly, upgradeID)
	}

	failedInBaseOnly := 0
	for id := range fr.baselineFailed {
		if !failed[id] {
			failedInBaseOnly++
		}
	}
	if failedInBaseOnly > 0 {
		logger.Infof("%d models that were successful in upgrade %d failed in the baseline", failedInBaseOnly, upgradeID)
	}
}

// IsFailed reports whether a building failed in any scanned run.
func (fr *FailureRegistry) IsFailed(buildingID int64) bool {
	return fr.allFailed[buildingID]
}

// IsBaselineFailed reports whether a building failed in the baseline run.
func (fr *FailureRegistry) IsBaselineFailed(buildingID int64) bool {
	return fr.baselineFailed[buildingID]
}

// IsUpgradeFailed reports whether a building failed in one specific upgrade.
func (fr *FailureRegistry) IsUpgradeFailed(upgradeID, buildingID int64) bool {
	return fr.perUpgrade[upgradeID][buildingID]
}

// FailureRate returns failed rows / raw rows for one upgrade, or 0 when the
// upgrade has not been scanned or had no rows.
func (fr *FailureRegistry) FailureRate(upgradeID int64) float64 {
	total := fr.rawCounts[upgradeID]
	if total == 0 {
		return 0
	}
	return float64(len(fr.perUpgrade[upgradeID])) / float64(total)
}

// FailedCount returns the number of failed buildings in one upgrade.
func (fr *FailureRegistry) FailedCount(upgradeID int64) int {
	return len(fr.perUpgrade[upgradeID])
}

// AllFailedCount returns the size of the cross-upgrade failed set.
func (fr *FailureRegistry) AllFailedCount() int {
	return len(fr.allFailed)
}

// ScannedUpgrades returns the upgrade ids scanned so far.
func (fr *FailureRegistry) ScannedUpgrades() []int64 {
	ids := make([]int64, 0, len(fr.perUpgrade))
	for id := range fr.perUpgrade {
		ids = append(ids, id)
	}
	return ids
}
