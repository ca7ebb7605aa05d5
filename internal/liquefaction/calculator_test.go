package liquefaction

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-6

func TestReferenceBlowCount(t *testing.T) {
	tests := []struct {
		intensity Intensity
		want      float64
	}{
		{7, 13},
		{8, 15},
		{9, 19},
	}
	for _, tt := range tests {
		got, err := ReferenceBlowCount(tt.intensity)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "intensity %d", tt.intensity)
	}

	for _, bad := range []Intensity{0, 6, 10, -7} {
		_, err := ReferenceBlowCount(bad)
		assert.ErrorIs(t, err, ErrInvalidInput, "intensity %d", bad)
	}
}

func TestDepthFactor(t *testing.T) {
	tests := []struct {
		name   string
		ds, dw float64
		want   float64
	}{
		{"above water table", 1.5, 2.0, 1.025},
		{"at water table", 2.0, 2.0, 1.0},
		{"below water table", 4.5, 2.0, 1.25},
		{"deep", 13.5, 2.0, 2.15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, DepthFactor(tt.ds, tt.dw), tolerance)
		})
	}
}

func TestSafetyFactor_ZeroCritical(t *testing.T) {
	fs := SafetyFactor(12, 0)
	assert.True(t, math.IsInf(fs, 1), "SafetyFactor(12, 0) = %v, want +Inf", fs)
	assert.Zero(t, Contribution(fs, 3, 10))
}

func TestDepthWeight(t *testing.T) {
	tests := []struct {
		ds   float64
		want float64
	}{
		{0, 10},
		{5.0, 10},
		{5.0001, 5},
		{15, 5},
		{15.0001, 2},
		{20, 2},
		{20.0001, 0},
		{40, 0},
	}
	for _, tt := range tests {
		if got := DepthWeight(tt.ds); got != tt.want {
			t.Errorf("DepthWeight(%v) = %v, want %v", tt.ds, got, tt.want)
		}
	}
}

func TestContribution(t *testing.T) {
	assert.Zero(t, Contribution(1.2, 3, 10), "FS > 1 must not contribute")
	assert.Zero(t, Contribution(1.0, 3, 10), "FS == 1 contributes zero")
	assert.InDelta(t, 15.0, Contribution(0.5, 3, 10), tolerance)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		index     float64
		criterion DepthCriterion
		want      Grade
	}{
		{0, Depth15, GradeNone},
		{-1, Depth20, GradeNone},
		{0.01, Depth15, GradeSlight},
		{5.0, Depth15, GradeSlight},
		{5.0001, Depth15, GradeModerate},
		{15.0, Depth15, GradeModerate},
		{15.0001, Depth15, GradeSevere},
		{5.5, Depth20, GradeSlight},
		{6.0, Depth20, GradeSlight},
		{6.0001, Depth20, GradeModerate},
		{18.0, Depth20, GradeModerate},
		{18.0001, Depth20, GradeSevere},
		{17, DepthCriterion(25), GradeModerate},
	}
	for _, tt := range tests {
		if got := Classify(tt.index, tt.criterion); got != tt.want {
			t.Errorf("Classify(%v, %d) = %q, want %q", tt.index, tt.criterion, got, tt.want)
		}
	}
}

func TestCompute_SingleLayer(t *testing.T) {
	p := SitePoint{
		ID:               "A",
		Intensity:        7,
		DepthCriterion:   Depth15,
		GroundwaterDepth: 2.0,
		Layers:           []Layer{{SaturatedDepth: 1.5, BlowCount: 12, Thickness: 3.0}},
	}

	res, err := Compute(p)
	require.NoError(t, err)
	require.Len(t, res.Layers, 1)

	d := res.Layers[0]
	assert.Equal(t, 13.0, d.ReferenceBlowCount)
	assert.InDelta(t, 13.325, d.CriticalBlowCount, tolerance)
	assert.InDelta(t, 12/13.325, d.SafetyFactor, tolerance)
	assert.Equal(t, 10.0, d.Weight)
	assert.True(t, d.Liquefiable())
	assert.InDelta(t, 2.98311445, d.Contribution, tolerance)
	assert.InDelta(t, 2.98311445, res.Index, tolerance)
	assert.Equal(t, GradeSlight, res.Grade)
	assert.Equal(t, "A", res.PointID)
}

func TestCompute_DefaultPoint(t *testing.T) {
	p := DefaultPoint()

	res, err := Compute(p)
	require.NoError(t, err)
	require.Len(t, res.Layers, 5)

	want := []float64{2.98311445, 4.15384615, 3.08933002, 3.77338877, 4.26654741}
	sum := 0.0
	for i, d := range res.Layers {
		assert.InDelta(t, want[i], d.Contribution, tolerance, "layer %d", i+1)
		sum += d.Contribution
	}
	assert.Equal(t, sum, res.Index, "index must be the sum of contributions")
	assert.InDelta(t, 18.2662268, res.Index, tolerance)
	assert.Equal(t, GradeSevere, res.Grade)

	p.DepthCriterion = Depth20
	res, err = Compute(p)
	require.NoError(t, err)
	assert.Equal(t, GradeSevere, res.Grade)
}

func TestCompute_NonLiquefiableLayers(t *testing.T) {
	p := SitePoint{
		Intensity:        9,
		DepthCriterion:   Depth20,
		GroundwaterDepth: 1.0,
		Layers: []Layer{
			{SaturatedDepth: 3, BlowCount: 50, Thickness: 2},
			{SaturatedDepth: 8, BlowCount: 60, Thickness: 2},
		},
	}

	res, err := Compute(p)
	require.NoError(t, err)
	for _, d := range res.Layers {
		assert.False(t, d.Liquefiable())
		assert.Zero(t, d.Contribution)
	}
	assert.Zero(t, res.Index)
	assert.Equal(t, GradeNone, res.Grade)
}

func TestCompute_EmptyLayers(t *testing.T) {
	res, err := Compute(SitePoint{Intensity: 8, DepthCriterion: Depth15})
	require.NoError(t, err)
	assert.Zero(t, res.Index)
	assert.Equal(t, GradeNone, res.Grade)
	assert.Empty(t, res.Layers)
}

func TestCompute_IndexNeverNegative(t *testing.T) {
	for _, i := range []Intensity{7, 8, 9} {
		for dw := 0.0; dw <= 10; dw += 2.5 {
			p := SitePoint{Intensity: i, DepthCriterion: Depth15, GroundwaterDepth: dw}
			for ds := 0.5; ds <= 25; ds += 1.5 {
				p.Layers = append(p.Layers, Layer{SaturatedDepth: ds, BlowCount: ds * 1.3, Thickness: 1.5})
			}
			res, err := Compute(p)
			require.NoError(t, err)

			sum := 0.0
			for _, d := range res.Layers {
				assert.GreaterOrEqual(t, d.Contribution, 0.0)
				sum += d.Contribution
			}
			assert.Equal(t, sum, res.Index)
			assert.GreaterOrEqual(t, res.Index, 0.0)
		}
	}
}

func TestValidate(t *testing.T) {
	valid := DefaultPoint()
	require.NoError(t, Validate(valid))

	tests := []struct {
		name   string
		mutate func(*SitePoint)
		field  string
		layer  int
	}{
		{"intensity", func(p *SitePoint) { p.Intensity = 6 }, "intensity", -1},
		{"criterion", func(p *SitePoint) { p.DepthCriterion = 10 }, "depthCriterion", -1},
		{"negative dw", func(p *SitePoint) { p.GroundwaterDepth = -1 }, "groundwaterDepth", -1},
		{"nan dw", func(p *SitePoint) { p.GroundwaterDepth = math.NaN() }, "groundwaterDepth", -1},
		{"negative ds", func(p *SitePoint) { p.Layers[1].SaturatedDepth = -0.5 }, "ds", 1},
		{"inf N", func(p *SitePoint) { p.Layers[2].BlowCount = math.Inf(1) }, "N", 2},
		{"negative di", func(p *SitePoint) { p.Layers[4].Thickness = -3 }, "di", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultPoint()
			tt.mutate(&p)

			err := Validate(p)
			require.ErrorIs(t, err, ErrInvalidInput)

			var ie *InputError
			require.True(t, errors.As(err, &ie))
			assert.Equal(t, tt.field, ie.Field)
			assert.Equal(t, tt.layer, ie.Layer)

			_, err = Compute(p)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestInputError_Message(t *testing.T) {
	err := &InputError{Field: "N", Layer: 2, Value: -1, Reason: "must not be negative"}
	assert.Equal(t, "invalid input: layer 3 N = -1: must not be negative", err.Error())
}

func TestCompute_RejectsOverflow(t *testing.T) {
	tests := []struct {
		name   string
		layers []Layer
		field  string
		layer  int
	}{
		{"huge ds", []Layer{{SaturatedDepth: 1.7e308, BlowCount: 12, Thickness: 3}}, "ds", 0},
		{"huge di", []Layer{{SaturatedDepth: 1.5, BlowCount: 0, Thickness: math.MaxFloat64}}, "di", 0},
		{"index sum", []Layer{
			{SaturatedDepth: 1.5, BlowCount: 12, Thickness: math.MaxFloat64},
			{SaturatedDepth: 1.5, BlowCount: 12, Thickness: math.MaxFloat64},
		}, "di", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := SitePoint{ID: "P", Intensity: 7, DepthCriterion: Depth15, GroundwaterDepth: 2, Layers: tt.layers}

			_, err := Compute(p)
			require.ErrorIs(t, err, ErrInvalidInput)

			var ie *InputError
			require.True(t, errors.As(err, &ie))
			assert.Equal(t, tt.field, ie.Field)
			assert.Equal(t, tt.layer, ie.Layer)
		})
	}
}
