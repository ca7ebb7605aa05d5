package core

import "errors"

var (
	// ErrImportNotFound is returned for unknown or discarded import ids.
	ErrImportNotFound = errors.New("import not found")

	// ErrPointNotInImport is returned when a selected point id is not part
	// of the import.
	ErrPointNotInImport = errors.New("point not in import")

	// ErrNoPoints is returned when an import contains no usable rows.
	ErrNoPoints = errors.New("import contains no points")
)
