package liquefaction

import (
	"math"
)

// referenceBlowCounts maps seismic intensity to the reference blow count N0.
var referenceBlowCounts = map[Intensity]float64{
	7: 13,
	8: 15,
	9: 19,
}

// gradeBands holds the upper (inclusive) index bound of Slight and Moderate
// for each discrimination depth. Anything above Moderate is Severe.
var gradeBands = map[DepthCriterion][2]float64{
	Depth15: {5, 15},
	Depth20: {6, 18},
}

// ReferenceBlowCount returns N0 for the given intensity.
func ReferenceBlowCount(i Intensity) (float64, error) {
	n0, ok := referenceBlowCounts[i]
	if !ok {
		return 0, &InputError{Field: "intensity", Layer: -1, Value: float64(i), Reason: "must be 7, 8 or 9"}
	}
	return n0, nil
}

// DepthFactor adjusts N0 for the layer depth relative to the water table.
// Layers at or above the water table get 0.05 per meter, deeper ones 0.1.
func DepthFactor(ds, dw float64) float64 {
	if ds <= dw {
		return 1.0 + 0.05*(dw-ds)
	}
	return 1.0 + 0.1*(ds-dw)
}

// CriticalBlowCount returns Ncr for a layer at depth ds.
func CriticalBlowCount(n0, ds, dw float64) float64 {
	return n0 * DepthFactor(ds, dw)
}

// SafetyFactor returns N / Ncr, or +Inf when Ncr is zero.
func SafetyFactor(n, ncr float64) float64 {
	if ncr == 0 {
		return math.Inf(1)
	}
	return n / ncr
}

// DepthWeight returns the weight wi for saturated depth ds.
// Band upper bounds are inclusive: ds == 5 weighs 10, not 5.
func DepthWeight(ds float64) float64 {
	switch {
	case ds <= 5:
		return 10.0
	case ds <= 15:
		return 5.0
	case ds <= 20:
		return 2.0
	default:
		return 0.0
	}
}

// Contribution returns the layer's share of the index. Layers with FS > 1
// contribute nothing.
func Contribution(fs, di, wi float64) float64 {
	if fs > 1 {
		return 0
	}
	return math.Max(0, 1-fs) * di * wi
}

// Classify grades a liquefaction index for a discrimination depth.
// Criteria other than 15 m use the 20 m bands.
func Classify(index float64, criterion DepthCriterion) Grade {
	if index <= 0 {
		return GradeNone
	}
	bands, ok := gradeBands[criterion]
	if !ok {
		bands = gradeBands[Depth20]
	}
	switch {
	case index <= bands[0]:
		return GradeSlight
	case index <= bands[1]:
		return GradeModerate
	default:
		return GradeSevere
	}
}

// Validate checks a site point before computation.
func Validate(p SitePoint) error {
	if _, err := ReferenceBlowCount(p.Intensity); err != nil {
		return err
	}
	if _, ok := gradeBands[p.DepthCriterion]; !ok {
		return &InputError{Field: "depthCriterion", Layer: -1, Value: float64(p.DepthCriterion), Reason: "must be 15 or 20"}
	}
	if err := checkQuantity("groundwaterDepth", -1, p.GroundwaterDepth); err != nil {
		return err
	}
	for i, l := range p.Layers {
		if err := checkQuantity("ds", i, l.SaturatedDepth); err != nil {
			return err
		}
		if err := checkQuantity("N", i, l.BlowCount); err != nil {
			return err
		}
		if err := checkQuantity("di", i, l.Thickness); err != nil {
			return err
		}
	}
	return nil
}

func checkQuantity(field string, layer int, v float64) error {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return &InputError{Field: field, Layer: layer, Value: v, Reason: "must be a finite number"}
	case v < 0:
		return &InputError{Field: field, Layer: layer, Value: v, Reason: "must not be negative"}
	}
	return nil
}

// Compute calculates the liquefaction index and grade of a site point.
// An empty layer list is valid and yields index 0 with no liquefaction.
func Compute(p SitePoint) (Result, error) {
	if err := Validate(p); err != nil {
		return Result{}, err
	}
	n0, _ := ReferenceBlowCount(p.Intensity)

	details := make([]LayerDetail, 0, len(p.Layers))
	index := 0.0
	for i, l := range p.Layers {
		ncr := CriticalBlowCount(n0, l.SaturatedDepth, p.GroundwaterDepth)
		if math.IsInf(ncr, 0) {
			return Result{}, &InputError{Field: "ds", Layer: i, Value: l.SaturatedDepth, Reason: "critical blow count out of range"}
		}
		fs := SafetyFactor(l.BlowCount, ncr)
		wi := DepthWeight(l.SaturatedDepth)
		c := Contribution(fs, l.Thickness, wi)
		if math.IsInf(c, 0) || math.IsInf(index+c, 0) {
			return Result{}, &InputError{Field: "di", Layer: i, Value: l.Thickness, Reason: "contribution out of range"}
		}

		details = append(details, LayerDetail{
			SaturatedDepth:     l.SaturatedDepth,
			BlowCount:          l.BlowCount,
			ReferenceBlowCount: n0,
			CriticalBlowCount:  ncr,
			SafetyFactor:       fs,
			Thickness:          l.Thickness,
			Weight:             wi,
			Contribution:       c,
		})
		index += c
	}

	return Result{
		PointID:          p.ID,
		Intensity:        p.Intensity,
		DepthCriterion:   p.DepthCriterion,
		GroundwaterDepth: p.GroundwaterDepth,
		Index:            index,
		Grade:            Classify(index, p.DepthCriterion),
		Layers:           details,
	}, nil
}
