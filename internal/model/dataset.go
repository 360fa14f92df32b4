package model

import "sort"

// BaselineUpgradeID identifies the unmodified scenario every upgrade is
// compared against.
const BaselineUpgradeID int64 = 0

// UpgradeResultSet holds every SimulationRecord read from one upgrade's raw
// result table. It is consumed by the failure registry and the consolidation
// engine and discarded after the merge.
type UpgradeResultSet struct {
	UpgradeID int64
	Records   []*SimulationRecord
	// RawRowCount is the row count of the source table before any filtering,
	// used for failure-rate and sample-count diagnostics.
	RawRowCount int
}

// Dataset is the single merged table spanning all upgrades. Each pipeline
// stage takes ownership of its input dataset and hands ownership of the
// (possibly extended) result to the next stage; no stage retains a reference
// to an intermediate it does not own.
type Dataset struct {
	Records []*SimulationRecord
}

// NewDataset wraps records into an owned dataset.
func NewDataset(records []*SimulationRecord) *Dataset {
	return &Dataset{Records: records}
}

// Len returns the record count.
func (d *Dataset) Len() int {
	return len(d.Records)
}

// UpgradeIDs returns the distinct upgrade ids present, in ascending order.
func (d *Dataset) UpgradeIDs() []int64 {
	seen := make(map[int64]bool)
	var ids []int64
	for _, r := range d.Records {
		if !seen[r.UpgradeID] {
			seen[r.UpgradeID] = true
			ids = append(ids, r.UpgradeID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Partition returns the records belonging to one upgrade.
func (d *Dataset) Partition(upgradeID int64) []*SimulationRecord {
	var out []*SimulationRecord
	for _, r := range d.Records {
		if r.UpgradeID == upgradeID {
			out = append(out, r)
		}
	}
	return out
}

// Baseline returns the baseline partition.
func (d *Dataset) Baseline() []*SimulationRecord {
	return d.Partition(BaselineUpgradeID)
}

// BuildingIDs returns the sorted building ids of one upgrade's partition.
func (d *Dataset) BuildingIDs(upgradeID int64) []int64 {
	var ids []int64
	for _, r := range d.Records {
		if r.UpgradeID == upgradeID {
			ids = append(ids, r.BuildingID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// BaselineIndex returns baseline records keyed by building id.
func (d *Dataset) BaselineIndex() map[int64]*SimulationRecord {
	idx := make(map[int64]*SimulationRecord)
	for _, r := range d.Records {
		if r.UpgradeID == BaselineUpgradeID {
			idx[r.BuildingID] = r
		}
	}
	return idx
}
