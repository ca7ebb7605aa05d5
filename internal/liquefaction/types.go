package liquefaction

import "strings"

// Intensity is the seismic fortification intensity in degrees.
type Intensity int

// DepthCriterion is the discrimination depth in meters.
type DepthCriterion int

const (
	Depth15 DepthCriterion = 15
	Depth20 DepthCriterion = 20
)

// Grade is the liquefaction severity classification.
type Grade string

const (
	GradeNone     Grade = "No liquefaction"
	GradeSlight   Grade = "Slight"
	GradeModerate Grade = "Moderate"
	GradeSevere   Grade = "Severe"
)

// Grades lists the grades in increasing severity.
var Grades = []Grade{GradeNone, GradeSlight, GradeModerate, GradeSevere}

// ParseGrade resolves a grade label, case-insensitively.
func ParseGrade(s string) (Grade, bool) {
	for _, g := range Grades {
		if strings.EqualFold(string(g), strings.TrimSpace(s)) {
			return g, true
		}
	}
	return "", false
}

// Layer is one SPT measurement within a site point.
type Layer struct {
	SaturatedDepth float64 `json:"ds" yaml:"ds"` // ds, meters
	BlowCount      float64 `json:"n" yaml:"n"`   // measured N
	Thickness      float64 `json:"di" yaml:"di"` // di, meters
}

// SitePoint holds the site parameters and ordered layers of one point.
type SitePoint struct {
	ID               string         `json:"pointId"`
	Intensity        Intensity      `json:"intensity"`
	DepthCriterion   DepthCriterion `json:"depthCriterion"`
	GroundwaterDepth float64        `json:"groundwaterDepth"` // dw, meters
	Layers           []Layer        `json:"layers"`
}

// LayerDetail carries the per-layer intermediate values of a calculation.
type LayerDetail struct {
	SaturatedDepth     float64 `json:"ds"`
	BlowCount          float64 `json:"n"`
	ReferenceBlowCount float64 `json:"n0"`
	CriticalBlowCount  float64 `json:"ncr"`
	SafetyFactor       float64 `json:"fs"`
	Thickness          float64 `json:"di"`
	Weight             float64 `json:"wi"`
	Contribution       float64 `json:"contribution"`
}

// Liquefiable reports whether the layer is at risk (FS <= 1).
func (d LayerDetail) Liquefiable() bool {
	return d.SafetyFactor <= 1
}

// Result is the outcome of computing one site point.
type Result struct {
	PointID          string         `json:"pointId"`
	Intensity        Intensity      `json:"intensity"`
	DepthCriterion   DepthCriterion `json:"depthCriterion"`
	GroundwaterDepth float64        `json:"groundwaterDepth"`
	Index            float64        `json:"ile"`
	Grade            Grade          `json:"grade"`
	Layers           []LayerDetail  `json:"layers"`
}

// DefaultPoint returns the five-layer point offered for manual entry.
func DefaultPoint() SitePoint {
	return SitePoint{
		ID:               "Point 1",
		Intensity:        7,
		DepthCriterion:   Depth15,
		GroundwaterDepth: 2.0,
		Layers: []Layer{
			{SaturatedDepth: 1.5, BlowCount: 12, Thickness: 3.0},
			{SaturatedDepth: 4.5, BlowCount: 14, Thickness: 3.0},
			{SaturatedDepth: 7.5, BlowCount: 16, Thickness: 3.0},
			{SaturatedDepth: 10.5, BlowCount: 18, Thickness: 3.0},
			{SaturatedDepth: 13.5, BlowCount: 20, Thickness: 3.0},
		},
	}
}
