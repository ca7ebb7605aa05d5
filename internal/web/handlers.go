package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/liquefy/internal/core"
	"github.com/JonMunkholm/liquefy/internal/liquefaction"
	"github.com/JonMunkholm/liquefy/internal/report"
	"github.com/JonMunkholm/liquefy/internal/storage"
	"github.com/JonMunkholm/liquefy/internal/tabular"
)

// multipartOverhead is allowed on top of the file size limit for the form
// envelope.
const multipartOverhead = 1 << 20

const (
	defaultChartWidth  = 8.0
	defaultChartHeight = 6.0
	maxChartInches     = 40.0
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":         "ok",
		"pendingImports": len(s.service.PendingImports()),
		"activeImports":  s.service.Limiter().ActiveCount(),
	})
}

type defaultsResponse struct {
	Point    liquefaction.SitePoint `json:"point"`
	Category liquefaction.Category  `json:"category"`
}

func (s *Server) handleDefaults(w http.ResponseWriter, r *http.Request) {
	p, cat := s.service.Defaults()
	writeJSON(w, r, http.StatusOK, defaultsResponse{Point: p, Category: cat})
}

func (s *Server) handleFields(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.service.Fields())
}

type measureResponse struct {
	Grade    liquefaction.Grade    `json:"grade"`
	Category liquefaction.Category `json:"category"`
	Measure  string                `json:"measure"`
}

func (s *Server) handleMeasure(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	grade, ok := liquefaction.ParseGrade(q.Get("grade"))
	if !ok {
		respondError(w, r, &liquefaction.InputError{Field: "grade", Layer: -1, Reason: fmt.Sprintf("unknown grade %q", q.Get("grade"))}, 0)
		return
	}
	text, err := s.service.Measure(grade, q.Get("category"))
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	cat, _ := liquefaction.ParseCategory(q.Get("category"))
	if cat == "" {
		_, cat = s.service.Defaults()
	}
	writeJSON(w, r, http.StatusOK, measureResponse{Grade: grade, Category: cat, Measure: text})
}

// decodeJSON reads a JSON body. Malformed bodies are invalid input.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, multipartOverhead))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: request body: %v", liquefaction.ErrInvalidInput, err)
	}
	return nil
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req core.CalculateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err, 0)
		return
	}
	rec, err := s.service.Calculate(r.Context(), req)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, r, http.StatusOK, rec)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, r, fmt.Errorf("%w: limit is %d bytes", tabular.ErrFileTooLarge, maxSize), 0)
			return
		}
		respondError(w, r, fmt.Errorf("%w: %v", errNoFile, err), 0)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, errNoFile, 0)
		return
	}
	defer file.Close()

	preview, err := s.service.Import(r.Context(), header.Filename, file)
	if err != nil {
		respondImportError(w, r, err, preview)
		return
	}
	writeJSON(w, r, http.StatusCreated, preview)
}

func (s *Server) handleImportPreview(w http.ResponseWriter, r *http.Request) {
	preview, err := s.service.PendingImport(chi.URLParam(r, "importID"))
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, r, http.StatusOK, preview)
}

// calculateImportRequest carries the shared site parameters and an optional
// selection of point ids; an empty selection calculates every point.
type calculateImportRequest struct {
	core.SiteParams
	Points []string `json:"points,omitempty"`
}

type calculateImportResponse struct {
	ImportID string           `json:"importId"`
	Results  []storage.Record `json:"results"`
}

func (s *Server) handleCalculateImport(w http.ResponseWriter, r *http.Request) {
	importID := chi.URLParam(r, "importID")

	var req calculateImportRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err, 0)
		return
	}
	recs, err := s.service.CalculateImported(r.Context(), importID, req.SiteParams, req.Points)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, r, http.StatusOK, calculateImportResponse{ImportID: importID, Results: recs})
}

func (s *Server) handleDiscardImport(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DiscardImport(chi.URLParam(r, "importID")); err != nil {
		respondError(w, r, err, 0)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListResults(w http.ResponseWriter, r *http.Request) {
	recs, err := s.service.Results(r.Context())
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	if recs == nil {
		recs = []storage.Record{}
	}
	writeJSON(w, r, http.StatusOK, recs)
}

func (s *Server) handleExportResults(w http.ResponseWriter, r *http.Request) {
	recs, err := s.service.Results(r.Context())
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, recs); err != nil {
		respondError(w, r, err, 0)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="liquefaction-results.csv"`)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleClearResults(w http.ResponseWriter, r *http.Request) {
	n, err := s.service.ClearResults(r.Context())
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]int{"deleted": n})
}

func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	rec, err := s.service.Result(r.Context(), chi.URLParam(r, "pointID"))
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, r, http.StatusOK, rec)
}

func (s *Server) handleDeleteResult(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteResult(r.Context(), chi.URLParam(r, "pointID")); err != nil {
		respondError(w, r, err, 0)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// recordCategory is the ?category= override or the category stored with rec.
func recordCategory(r *http.Request, rec *storage.Record) (liquefaction.Category, error) {
	raw := r.URL.Query().Get("category")
	if strings.TrimSpace(raw) == "" {
		return rec.Category, nil
	}
	return liquefaction.ParseCategory(raw)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	rec, err := s.service.Result(r.Context(), chi.URLParam(r, "pointID"))
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	cat, err := recordCategory(r, rec)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	var buf bytes.Buffer
	if err := report.WriteReport(&buf, rec.Result, cat); err != nil {
		respondError(w, r, err, 0)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// chartSize reads ?width= and ?height= in inches.
func chartSize(r *http.Request) (float64, float64) {
	size := func(name string, def float64) float64 {
		v, err := strconv.ParseFloat(r.URL.Query().Get(name), 64)
		if err != nil || v <= 0 || v > maxChartInches {
			return def
		}
		return v
	}
	return size("width", defaultChartWidth), size("height", defaultChartHeight)
}

func (s *Server) handleChartPNG(w http.ResponseWriter, r *http.Request) {
	rec, err := s.service.Result(r.Context(), chi.URLParam(r, "pointID"))
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	width, height := chartSize(r)
	var buf bytes.Buffer
	if err := report.WriteChartPNG(&buf, rec.Result, width, height); err != nil {
		respondError(w, r, err, 0)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleChartHTML(w http.ResponseWriter, r *http.Request) {
	rec, err := s.service.Result(r.Context(), chi.URLParam(r, "pointID"))
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	var buf bytes.Buffer
	if err := report.WriteChartHTML(&buf, rec.Result); err != nil {
		respondError(w, r, err, 0)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
