package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/JonMunkholm/liquefy/internal/liquefaction"
	"github.com/JonMunkholm/liquefy/internal/reconcile"
	"github.com/JonMunkholm/liquefy/internal/storage"
	"github.com/JonMunkholm/liquefy/internal/tabular"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantDetail bool
	}{
		{"nil", nil, "", false},
		{"invalid input", &liquefaction.InputError{Field: "N", Layer: 0, Value: -1, Reason: "must not be negative"}, "VAL001", true},
		{"invalid cell", fmt.Errorf("import: %w", &reconcile.CellError{Line: 3, Column: "N", Value: "x"}), "VAL002", true},
		{"incomplete mapping", &reconcile.IncompleteMappingError{Missing: []reconcile.Field{reconcile.FieldBlowCount}}, "MAP001", true},
		{"too large", fmt.Errorf("%w (10 bytes)", tabular.ErrFileTooLarge), "FILE001", true},
		{"xls", fmt.Errorf("%w: .xls", tabular.ErrUnsupportedFormat), "FILE002", true},
		{"empty", tabular.ErrEmptyFile, "FILE005", false},
		{"too many rows", tabular.ErrTooManyRows, "FILE006", true},
		{"import missing", ErrImportNotFound, "IMP001", false},
		{"busy", ErrTooManyImports, "IMP004", false},
		{"result missing", fmt.Errorf("get: %w", storage.ErrNotFound), "RES001", false},
		{"no measure", liquefaction.ErrNoMeasure, "MEA001", false},
		{"category", liquefaction.ErrUnknownCategory, "MEA002", true},
		{"cancelled", fmt.Errorf("save: %w", context.Canceled), "REQ001", false},
		{"bad csv pattern", errors.New("parse csv: record on line 2: wrong number of fields"), "FILE003", false},
		{"no file pattern", errors.New("No File Provided"), "FILE004", false},
		{"rate limit", errors.New("rate limit exceeded"), "RATE001", false},
		{"unknown", errors.New("some random internal error"), "ERR000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if (got.Detail != "") != tt.wantDetail {
				t.Errorf("MapError() detail = %q, want detail: %v", got.Detail, tt.wantDetail)
			}
		})
	}
}

func TestMapError_DetailNamesMissingField(t *testing.T) {
	err := &reconcile.IncompleteMappingError{Missing: []reconcile.Field{reconcile.FieldBlowCount}}
	got := MapError(err)
	if got.Detail != err.Error() {
		t.Errorf("Detail = %q, want %q", got.Detail, err.Error())
	}
}

func TestFormatUserError(t *testing.T) {
	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}

	got := FormatUserError(ErrImportNotFound)
	want := "Import session not found (Code: IMP001). The import may have expired. Please upload the file again"
	if got != want {
		t.Errorf("FormatUserError() = %q, want %q", got, want)
	}
}

func TestIsUserFacing(t *testing.T) {
	if IsUserFacing(nil) {
		t.Error("IsUserFacing(nil) = true")
	}
	if !IsUserFacing(storage.ErrNotFound) {
		t.Error("IsUserFacing(ErrNotFound) = false")
	}
	if IsUserFacing(errors.New("boom")) {
		t.Error("IsUserFacing(boom) = true")
	}
}
