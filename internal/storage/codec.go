package storage

import (
	"encoding/json"
	"fmt"

	"github.com/JonMunkholm/liquefy/internal/liquefaction"
)

// row holds the scalar columns of the results table.
type row struct {
	ID               string
	PointID          string
	Source           string
	Category         string
	Intensity        int
	DepthCriterion   int
	GroundwaterDepth float64
	Index            float64
	Grade            string
	Layers           []byte
}

func encodeRecord(rec Record) (row, error) {
	layers, err := json.Marshal(rec.Result.Layers)
	if err != nil {
		return row{}, fmt.Errorf("encode layers of %q: %w", rec.PointID, err)
	}
	return row{
		ID:               rec.ID.String(),
		PointID:          rec.PointID,
		Source:           rec.Source,
		Category:         string(rec.Category),
		Intensity:        int(rec.Result.Intensity),
		DepthCriterion:   int(rec.Result.DepthCriterion),
		GroundwaterDepth: rec.Result.GroundwaterDepth,
		Index:            rec.Result.Index,
		Grade:            string(rec.Result.Grade),
		Layers:           layers,
	}, nil
}

// decodeInto fills the result half of rec from r.
func decodeInto(rec *Record, r row) error {
	var layers []liquefaction.LayerDetail
	if err := json.Unmarshal(r.Layers, &layers); err != nil {
		return fmt.Errorf("decode layers of %q: %w", r.PointID, err)
	}
	rec.PointID = r.PointID
	rec.Source = r.Source
	rec.Category = liquefaction.Category(r.Category)
	rec.Result = liquefaction.Result{
		PointID:          r.PointID,
		Intensity:        liquefaction.Intensity(r.Intensity),
		DepthCriterion:   liquefaction.DepthCriterion(r.DepthCriterion),
		GroundwaterDepth: r.GroundwaterDepth,
		Index:            r.Index,
		Grade:            liquefaction.Grade(r.Grade),
		Layers:           layers,
	}
	return nil
}
