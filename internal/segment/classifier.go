// Package segment assigns every consolidated record to exactly one of nine
// named, mutually exclusive addressable-market segments, derived from
// building type and HVAC system category through an ordered decision list.
package segment

import (
	"github.com/tigerroll/stockpost/internal/model"
	"github.com/tigerroll/stockpost/pkg/support/util/exception"
	"github.com/tigerroll/stockpost/pkg/support/util/logger"
)

const stageName = "segment"

// Building type groupings relevant to segmentation. The food-service group
// deliberately includes strip malls, following the established market
// definition.
var foodServiceTypes = map[model.BuildingType]bool{
	model.BuildingTypeQuickServiceRestaurant: true,
	model.BuildingTypeFullServiceRestaurant:  true,
	model.BuildingTypeRetailStripmall:        true,
}

var lodgingTypes = map[model.BuildingType]bool{
	model.BuildingTypeSmallHotel: true,
	model.BuildingTypeLargeHotel: true,
}

// Classifier assigns segments and enforces exhaustive coverage.
type Classifier struct{}

// NewClassifier creates a segment classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify resolves every record's HVAC category and segment. It counts
// records matched by no rule and returns a fatal SegmentCoverageError when
// that count is nonzero: the decision list is defined to be exhaustive, and
// an uncovered record means the upstream type or HVAC vocabulary drifted.
func (c *Classifier) Classify(ds *model.Dataset) (*model.Dataset, error) {
	unclassified := 0
	for _, r := range ds.Records {
		sys, known := LookupSystem(r.HVACSystemType)
		if !known {
			logger.Debugf("Building %d upgrade %d: unknown HVAC system type %q",
				r.BuildingID, r.UpgradeID, r.HVACSystemType)
			r.Segment = model.SegmentUnclassified
			unclassified++
			continue
		}
		category, _ := model.CategoryForVentilation(sys.Vent)
		r.HVACCategory = category

		seg := classify(r.BuildingType, category, sys.Heat)
		r.Segment = seg
		if seg == model.SegmentUnclassified {
			logger.Debugf("Building %d upgrade %d: no segment rule for type=%s category=%s heat=%s",
				r.BuildingID, r.UpgradeID, r.BuildingType, category, sys.Heat)
			unclassified++
		}
	}

	if unclassified > 0 {
		return nil, exception.Errorf(exception.KindSegmentCoverage, stageName,
			"%d records matched no addressable segment rule", unclassified)
	}
	logger.Infof("Segment coverage complete: all %d records classified", ds.Len())
	return ds, nil
}

// classify evaluates the ordered decision list; the first matching rule wins.
func classify(bt model.BuildingType, category model.HVACCategory, heat model.HeatingType) model.Segment {
	_, knownType := model.ParseBuildingType(string(bt))

	switch {
	case knownType && !foodServiceTypes[bt] && category == model.HVACSmallPackagedUnit:
		return model.SegmentA
	case foodServiceTypes[bt] && category == model.HVACSmallPackagedUnit:
		return model.SegmentB
	case (heat == model.HeatBoiler || heat == model.HeatDistrict) && category == model.HVACMultizoneCAVVAV:
		return model.SegmentC
	case lodgingTypes[bt] && category == model.HVACZoneByZone:
		return model.SegmentD
	case heat == model.HeatElectricResistance && category == model.HVACMultizoneCAVVAV:
		return model.SegmentE
	case heat == model.HeatFurnace && category == model.HVACMultizoneCAVVAV:
		return model.SegmentF
	case category == model.HVACResidentialStyleCentral:
		return model.SegmentG
	case knownType && !lodgingTypes[bt] && category == model.HVACZoneByZone:
		return model.SegmentH
	case category == model.HVACOther:
		return model.SegmentI
	default:
		return model.SegmentUnclassified
	}
}
