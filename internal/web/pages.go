package web

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/liquefy/internal/liquefaction"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	recs, err := s.service.Results(r.Context())
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	point, _ := s.service.Defaults()
	render(w, r, dashboardPage(dashboardData{
		Results: recs,
		Imports: s.service.PendingImports(),
		Fields:  s.service.Fields(),
		Point:   point,
	}))
}

func (s *Server) handleResultPage(w http.ResponseWriter, r *http.Request) {
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
	measure, err := liquefaction.Measure(rec.Result.Grade, cat)
	switch {
	case errors.Is(err, liquefaction.ErrNoMeasure):
		measure = "No anti-liquefaction measures required."
	case err != nil:
		respondError(w, r, err, 0)
		return
	}
	render(w, r, resultPage(resultData{Record: *rec, Category: cat, Measure: measure}))
}

// render writes an HTML page, buffered so a failed render can still
// become an error response.
func render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	var buf bytes.Buffer
	if err := c.Render(r.Context(), &buf); err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
