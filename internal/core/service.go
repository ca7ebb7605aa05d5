package core

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/JonMunkholm/liquefy/internal/config"
	"github.com/JonMunkholm/liquefy/internal/liquefaction"
	"github.com/JonMunkholm/liquefy/internal/logging"
	"github.com/JonMunkholm/liquefy/internal/reconcile"
	"github.com/JonMunkholm/liquefy/internal/storage"
)

// PreviewRows is how many data rows an import preview carries.
const PreviewRows = 20

// Options configures a Service. Zero values fall back to config defaults.
type Options struct {
	Import      config.ImportConfig
	Calculation config.CalculationConfig
	Dictionary  reconcile.Dictionary
	Metrics     *Metrics
}

// Service ties the calculator, the column reconciler and the result store
// together for the web and CLI front ends.
type Service struct {
	store   storage.Store
	dict    reconcile.Dictionary
	imports config.ImportConfig
	calc    config.CalculationConfig
	limiter *ImportLimiter
	metrics *Metrics

	mu       sync.RWMutex
	sessions map[string]*importSession
	order    []string // session ids, oldest first
}

// NewService creates a Service backed by store.
func NewService(store storage.Store, opts Options) *Service {
	if opts.Dictionary == nil {
		opts.Dictionary = reconcile.DefaultDictionary()
	}
	if opts.Import.MaxSessions <= 0 {
		opts.Import.MaxSessions = 32
	}
	if opts.Calculation.DefaultIntensity == 0 {
		opts.Calculation = config.CalculationConfig{
			DefaultIntensity:        7,
			DefaultDepthCriterion:   15,
			DefaultGroundwaterDepth: 2.0,
			DefaultCategory:         string(liquefaction.CategoryB),
		}
	}

	return &Service{
		store:    store,
		dict:     opts.Dictionary,
		imports:  opts.Import,
		calc:     opts.Calculation,
		limiter:  NewImportLimiter(opts.Import.MaxConcurrent, opts.Import.MaxWait),
		metrics:  opts.Metrics,
		sessions: make(map[string]*importSession),
	}
}

// Fields returns the column dictionary used for imports.
func (s *Service) Fields() reconcile.Dictionary {
	return s.dict
}

// Limiter exposes the import limiter for shutdown draining.
func (s *Service) Limiter() *ImportLimiter {
	return s.limiter
}

// Defaults returns the point offered for manual entry, with the configured
// site parameters, and the default category.
func (s *Service) Defaults() (liquefaction.SitePoint, liquefaction.Category) {
	p := liquefaction.DefaultPoint()
	p.Intensity = liquefaction.Intensity(s.calc.DefaultIntensity)
	p.DepthCriterion = liquefaction.DepthCriterion(s.calc.DefaultDepthCriterion)
	p.GroundwaterDepth = s.calc.DefaultGroundwaterDepth

	cat, err := liquefaction.ParseCategory(s.calc.DefaultCategory)
	if err != nil {
		cat = liquefaction.CategoryB
	}
	return p, cat
}

func (s *Service) category(raw string) (liquefaction.Category, error) {
	if strings.TrimSpace(raw) == "" {
		_, cat := s.Defaults()
		return cat, nil
	}
	return liquefaction.ParseCategory(raw)
}

// CalculateRequest is a manually entered point.
type CalculateRequest struct {
	Point    liquefaction.SitePoint `json:"point"`
	Category string                 `json:"category,omitempty"`
}

// Calculate computes one point and stores the result, replacing any
// earlier result for the same point id.
func (s *Service) Calculate(ctx context.Context, req CalculateRequest) (*storage.Record, error) {
	logger := logging.WithFields(ctx, "point_id", req.Point.ID)

	cat, err := s.category(req.Category)
	if err != nil {
		return nil, err
	}
	req.Point.ID = strings.TrimSpace(req.Point.ID)
	if req.Point.ID == "" {
		s.metrics.observeRejected(storage.SourceManual)
		return nil, &liquefaction.InputError{Field: "pointId", Layer: -1, Reason: "must not be empty"}
	}

	res, err := liquefaction.Compute(req.Point)
	if err != nil {
		s.metrics.observeRejected(storage.SourceManual)
		logger.Debug("point rejected", "error", err)
		return nil, err
	}

	rec := storage.NewRecord(res, storage.SourceManual, cat)
	if err := s.store.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("store result: %w", err)
	}
	s.metrics.observeResult(storage.SourceManual, res)

	logger.Info("point calculated", "ile", res.Index, "grade", res.Grade, "layers", len(res.Layers))
	return &rec, nil
}

// Results lists every stored result ordered by point id.
func (s *Service) Results(ctx context.Context) ([]storage.Record, error) {
	return s.store.List(ctx)
}

// Result returns the stored result of one point.
func (s *Service) Result(ctx context.Context, pointID string) (*storage.Record, error) {
	rec, err := s.store.Get(ctx, pointID)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// DeleteResult removes the stored result of one point.
func (s *Service) DeleteResult(ctx context.Context, pointID string) error {
	if err := s.store.Delete(ctx, pointID); err != nil {
		return err
	}
	logging.FromContext(ctx).Info("result deleted", "point_id", pointID)
	return nil
}

// ClearResults removes every stored result and reports how many there were.
func (s *Service) ClearResults(ctx context.Context) (int, error) {
	n, err := s.store.Reset(ctx)
	if err != nil {
		return 0, err
	}
	logging.FromContext(ctx).Info("results cleared", "count", n)
	return n, nil
}

// Measure looks up the mitigation text for a grade and a category name.
// An empty category uses the configured default.
func (s *Service) Measure(grade liquefaction.Grade, category string) (string, error) {
	cat, err := s.category(category)
	if err != nil {
		return "", err
	}
	return liquefaction.Measure(grade, cat)
}
