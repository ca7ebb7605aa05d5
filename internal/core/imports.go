package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/liquefy/internal/liquefaction"
	"github.com/JonMunkholm/liquefy/internal/logging"
	"github.com/JonMunkholm/liquefy/internal/reconcile"
	"github.com/JonMunkholm/liquefy/internal/storage"
	"github.com/JonMunkholm/liquefy/internal/tabular"
)

// ImportedPointPrefix is prepended to point ids read from a file.
const ImportedPointPrefix = "Imported Point "

// ImportPreview describes an uploaded table after column reconciliation.
// ImportID is empty when the mapping is incomplete.
type ImportPreview struct {
	ImportID  string            `json:"importId,omitempty"`
	FileName  string            `json:"fileName"`
	Columns   []string          `json:"columns"`
	Matches   []reconcile.Match `json:"matches"`
	Missing   []reconcile.Field `json:"missing,omitempty"`
	Stats     reconcile.Stats   `json:"stats"`
	PointIDs  []string          `json:"pointIds,omitempty"`
	Rows      [][]string        `json:"rows"`
	CreatedAt time.Time         `json:"createdAt"`
}

// SiteParams are the site parameters shared by every point of an import.
type SiteParams struct {
	Intensity        liquefaction.Intensity      `json:"intensity"`
	DepthCriterion   liquefaction.DepthCriterion `json:"depthCriterion"`
	GroundwaterDepth float64                     `json:"groundwaterDepth"`
	Category         string                      `json:"category,omitempty"`
}

type importSession struct {
	preview ImportPreview
	points  []reconcile.PointRows
}

// Import reads an uploaded table, reconciles its columns and groups the rows
// into points. The points are held in a session until calculated or
// discarded.
//
// When a required column cannot be recognized the preview is still returned,
// listing the missing fields, together with the mapping error; no session is
// created in that case.
func (s *Service) Import(ctx context.Context, fileName string, r io.Reader) (*ImportPreview, error) {
	logger := logging.WithFields(ctx, "file", fileName)

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	table, err := tabular.Read(fileName, r, tabular.Options{
		Encoding: s.imports.Encoding,
		MaxRows:  s.imports.MaxRows,
		MaxBytes: s.imports.MaxFileSize,
		Sheet:    s.imports.Sheet,
	})
	if err != nil {
		s.metrics.observeImport("unreadable", 0)
		logger.Warn("import unreadable", "error", err)
		return nil, err
	}

	matches, mapErr := reconcile.Resolve(s.dict, table.Columns)
	mapping := make(reconcile.Mapping, len(matches))
	for _, m := range matches {
		mapping[m.Field] = m.Header
	}

	preview := &ImportPreview{
		FileName:  fileName,
		Columns:   table.Columns,
		Matches:   matches,
		Stats:     reconcile.Summarize(table, mapping),
		Rows:      table.Rows[:min(len(table.Rows), PreviewRows)],
		CreatedAt: time.Now().UTC(),
	}

	var incomplete *reconcile.IncompleteMappingError
	if errors.As(mapErr, &incomplete) {
		preview.Missing = incomplete.Missing
		s.metrics.observeImport("incomplete", len(table.Rows))
		logger.Info("import mapping incomplete", "missing", incomplete.Missing)
		return preview, mapErr
	}
	if mapErr != nil {
		return nil, mapErr
	}

	points, err := reconcile.Group(table, mapping)
	if err != nil {
		s.metrics.observeImport("invalid", len(table.Rows))
		return preview, err
	}
	if len(points) == 0 {
		s.metrics.observeImport("invalid", len(table.Rows))
		return preview, ErrNoPoints
	}

	preview.ImportID = uuid.New().String()
	preview.PointIDs = make([]string, len(points))
	for i, p := range points {
		preview.PointIDs[i] = p.ID
	}

	s.addSession(&importSession{preview: *preview, points: points})
	s.metrics.observeImport("ok", len(table.Rows))

	logger.Info("import ready",
		"import_id", preview.ImportID,
		"points", len(points),
		"records", preview.Stats.Records,
	)
	return preview, nil
}

func (s *Service) addSession(sess *importSession) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := sess.preview.ImportID
	s.sessions[id] = sess
	s.order = append(s.order, id)

	for len(s.order) > s.imports.MaxSessions {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.sessions, oldest)
	}
	s.metrics.setPending(len(s.sessions))
}

func (s *Service) session(id string) (*importSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrImportNotFound, id)
	}
	return sess, nil
}

// PendingImport returns the preview of a stored import session.
func (s *Service) PendingImport(id string) (*ImportPreview, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	p := sess.preview
	return &p, nil
}

// PendingImports lists the previews of every session, oldest first.
func (s *Service) PendingImports() []ImportPreview {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ImportPreview, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.sessions[id].preview)
	}
	return out
}

// DiscardImport drops an import session.
func (s *Service) DiscardImport(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrImportNotFound, id)
	}
	delete(s.sessions, id)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
	s.metrics.setPending(len(s.sessions))
	return nil
}

// ImportedPointID is the stored point id of a point read from a file.
func ImportedPointID(id string) string {
	return ImportedPointPrefix + id
}

// CalculateImported computes the points of an import with shared site
// parameters and stores the results. pointIDs selects points by their id in
// the file; empty selects all. The batch is stored only if every point
// computes.
func (s *Service) CalculateImported(ctx context.Context, importID string, params SiteParams, pointIDs []string) ([]storage.Record, error) {
	logger := logging.WithFields(ctx, "import_id", importID)

	sess, err := s.session(importID)
	if err != nil {
		return nil, err
	}
	cat, err := s.category(params.Category)
	if err != nil {
		return nil, err
	}

	points := sess.points
	if len(pointIDs) > 0 {
		points = make([]reconcile.PointRows, 0, len(pointIDs))
		for _, id := range pointIDs {
			i := slices.IndexFunc(sess.points, func(p reconcile.PointRows) bool {
				return p.ID == strings.TrimSpace(id)
			})
			if i < 0 {
				return nil, fmt.Errorf("%w: %q", ErrPointNotInImport, id)
			}
			points = append(points, sess.points[i])
		}
	}

	records := make([]storage.Record, 0, len(points))
	for _, p := range points {
		sp := liquefaction.SitePoint{
			ID:               ImportedPointID(p.ID),
			Intensity:        params.Intensity,
			DepthCriterion:   params.DepthCriterion,
			GroundwaterDepth: params.GroundwaterDepth,
			Layers:           make([]liquefaction.Layer, len(p.Rows)),
		}
		for i, row := range p.Rows {
			sp.Layers[i] = liquefaction.Layer{
				SaturatedDepth: row.SaturatedDepth,
				BlowCount:      row.BlowCount,
				Thickness:      row.Thickness,
			}
		}

		res, err := liquefaction.Compute(sp)
		if err != nil {
			s.metrics.observeRejected(storage.SourceImport)
			return nil, fmt.Errorf("point %s: %w", p.ID, err)
		}
		records = append(records, storage.NewRecord(res, storage.SourceImport, cat))
	}

	if err := s.store.SaveAll(ctx, records); err != nil {
		return nil, fmt.Errorf("store results: %w", err)
	}
	for _, rec := range records {
		s.metrics.observeResult(storage.SourceImport, rec.Result)
	}

	logger.Info("import calculated", "points", len(records), "file", sess.preview.FileName)
	return records, nil
}
