package web

// errors.go turns errors into responses. The technical error is logged with
// the request id; clients get core.MapError's coded message as JSON, or a
// small HTML page for browser routes.

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/liquefy/internal/core"
	"github.com/JonMunkholm/liquefy/internal/liquefaction"
	"github.com/JonMunkholm/liquefy/internal/logging"
	"github.com/JonMunkholm/liquefy/internal/reconcile"
	"github.com/JonMunkholm/liquefy/internal/report"
	"github.com/JonMunkholm/liquefy/internal/storage"
	"github.com/JonMunkholm/liquefy/internal/tabular"
)

// ErrorResponse is the JSON body of every API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
	Detail  string `json:"detail,omitempty"`
}

// importErrorResponse adds the partial preview to a failed import.
type importErrorResponse struct {
	ErrorResponse
	Preview *core.ImportPreview `json:"preview,omitempty"`
}

var errNoFile = errors.New("no file provided")

// statusFor picks the HTTP status for err.
func statusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound),
		errors.Is(err, core.ErrImportNotFound),
		errors.Is(err, liquefaction.ErrNoMeasure),
		errors.Is(err, report.ErrNoLayers):
		return http.StatusNotFound
	case errors.Is(err, liquefaction.ErrInvalidInput),
		errors.Is(err, reconcile.ErrInvalidNumber),
		errors.Is(err, reconcile.ErrIncompleteMapping),
		errors.Is(err, core.ErrNoPoints),
		errors.Is(err, core.ErrPointNotInImport):
		return http.StatusUnprocessableEntity
	case errors.Is(err, tabular.ErrFileTooLarge),
		errors.Is(err, tabular.ErrTooManyRows):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, tabular.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, tabular.ErrEmptyFile),
		errors.Is(err, tabular.ErrUnknownEncoding),
		errors.Is(err, tabular.ErrSheetNotFound),
		errors.Is(err, liquefaction.ErrUnknownCategory),
		errors.Is(err, errNoFile):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrTooManyImports):
		return http.StatusServiceUnavailable
	case errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	}
	if strings.Contains(strings.ToLower(err.Error()), "parse csv") ||
		strings.Contains(strings.ToLower(err.Error()), "open workbook") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func toResponse(msg core.UserMessage) ErrorResponse {
	return ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
		Detail:  msg.Detail,
	}
}

// respondError logs err and writes the mapped message. status 0 derives the
// status from err.
func respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	if status == 0 {
		status = statusFor(err)
	}
	msg := core.MapError(err)
	logError(r, err, status, msg.Code)

	if !wantsJSON(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_ = errorPage(status, msg).Render(r.Context(), w)
		return
	}
	writeJSON(w, r, status, toResponse(msg))
}

// respondImportError is respondError for uploads that produced a preview.
func respondImportError(w http.ResponseWriter, r *http.Request, err error, preview *core.ImportPreview) {
	status := statusFor(err)
	msg := core.MapError(err)
	logError(r, err, status, msg.Code)
	writeJSON(w, r, status, importErrorResponse{ErrorResponse: toResponse(msg), Preview: preview})
}

func logError(r *http.Request, err error, status int, code string) {
	logger := logging.FromContext(r.Context())
	log := logger.Warn
	if status >= http.StatusInternalServerError {
		log = logger.Error
	}
	log("request error",
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"code", code,
		"error", err.Error(),
	)
}

func wantsJSON(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/") ||
		strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.Contains(r.Header.Get("Content-Type"), "application/json")
}
