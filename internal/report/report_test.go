package report

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/liquefy/internal/liquefaction"
	"github.com/JonMunkholm/liquefy/internal/storage"
)

func defaultResult(t *testing.T) liquefaction.Result {
	t.Helper()
	res, err := liquefaction.Compute(liquefaction.DefaultPoint())
	require.NoError(t, err)
	return res
}

func TestCenter(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"1.5", 12, "    1.5     "},
		{"13", 10, "    13    "},
		{"Measured N", 10, "Measured N"},
		{"Saturated Depth", 12, "Saturated Depth"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, center(tt.in, tt.width), "center(%q, %d)", tt.in, tt.width)
	}
}

func TestWriteLayerTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLayerTable(&buf, defaultResult(t)))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[0], "Saturated DepthMeasured N"))
	assert.Contains(t, lines[0], "Contribution")

	first := lines[1]
	assert.True(t, strings.HasPrefix(first, "    1.5        12.0       13    "), "row %q", first)
	assert.Contains(t, first, "0.90")
	assert.True(t, strings.HasSuffix(first, "    2.98    "), "row %q", first)
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, defaultResult(t)))

	out := buf.String()
	assert.Contains(t, out, strings.Repeat("-", 65)+"\n")
	assert.Contains(t, out, "Total Liquefaction Index (ILE): 18.27\n")
	assert.Contains(t, out, "Liquefaction Classification: Severe\n")
}

func TestWriteReport(t *testing.T) {
	res := defaultResult(t)
	want, err := liquefaction.Measure(res.Grade, liquefaction.CategoryC)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, res, liquefaction.CategoryC))

	out := buf.String()
	assert.Contains(t, out, "Point: Point 1\n")
	assert.Contains(t, out, "Groundwater depth dw: 2.00 m")
	assert.Contains(t, out, "Anti-liquefaction measures (Category C):\n"+want)
}

func TestWriteReport_NoLiquefaction(t *testing.T) {
	res, err := liquefaction.Compute(liquefaction.SitePoint{
		ID:               "dense",
		Intensity:        7,
		DepthCriterion:   liquefaction.Depth15,
		GroundwaterDepth: 2,
		Layers:           []liquefaction.Layer{{SaturatedDepth: 3, BlowCount: 40, Thickness: 2}},
	})
	require.NoError(t, err)
	require.Equal(t, liquefaction.GradeNone, res.Grade)

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, res, liquefaction.CategoryB))
	assert.Contains(t, buf.String(), "No anti-liquefaction measures required.")
}

func TestWriteReport_UnknownCategory(t *testing.T) {
	var buf bytes.Buffer
	err := WriteReport(&buf, defaultResult(t), liquefaction.Category("Z"))
	assert.ErrorIs(t, err, liquefaction.ErrUnknownCategory)
}

func TestWriteCSV(t *testing.T) {
	res := defaultResult(t)
	rec := storage.NewRecord(res, storage.SourceManual, liquefaction.CategoryB)
	rec.CalculatedAt = time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []storage.Record{rec}))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, []string{
		"Point 1", "manual", "B", "7", "15", "2", "5", "18.2662", "Severe", "2024-03-01T08:30:00Z",
	}, rows[1])
}

func TestWriteChartPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteChartPNG(&buf, defaultResult(t), 6, 4))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG\r\n\x1a\n")))
}

func TestWriteChartPNG_NoLayers(t *testing.T) {
	var buf bytes.Buffer
	err := WriteChartPNG(&buf, liquefaction.Result{PointID: "empty"}, 6, 4)
	assert.ErrorIs(t, err, ErrNoLayers)
	assert.Zero(t, buf.Len())
}

func TestWriteChartHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteChartHTML(&buf, defaultResult(t)))

	out := buf.String()
	assert.Contains(t, out, "<title>"+chartTitle+"</title>")
	assert.Contains(t, out, "echarts")
}

func TestProfile_SkipsInfiniteSafetyFactor(t *testing.T) {
	res := defaultResult(t)
	res.Layers[0].SafetyFactor = liquefaction.SafetyFactor(10, 0)

	pts := profile(res)
	assert.Len(t, pts, len(res.Layers)-1)
	assert.Equal(t, res.Layers[1].SaturatedDepth, pts[0].Y)
}
