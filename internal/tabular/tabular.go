// Package tabular decodes uploaded CSV and Excel files into reconcile.Table
// values.
//
// CSV input is run through a decoding chain before parsing:
//
//   - a byte order mark selects UTF-8 or UTF-16 when present
//   - otherwise the configured encoding (UTF-8 or GB18030) is used
//   - ill-formed sequences become U+FFFD
//
// The delimiter (comma, semicolon or tab) is sniffed from the header line.
package tabular

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/liquefy/internal/reconcile"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEmptyFile         = errors.New("file contains no header row")
	ErrTooManyRows       = errors.New("file exceeds the row limit")
	ErrFileTooLarge      = errors.New("file exceeds the size limit")
	ErrUnknownEncoding   = errors.New("unknown text encoding")
	ErrSheetNotFound     = errors.New("worksheet not found")
)

// Options limits and tunes decoding. Zero values mean no limit, UTF-8 and
// the first worksheet.
type Options struct {
	Encoding string
	MaxRows  int
	MaxBytes int64
	Sheet    string
}

// Format is a supported input format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
	FormatXLSX Format = "xlsx"
)

// DetectFormat resolves a file name to a Format by extension.
func DetectFormat(name string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".tsv":
		return FormatTSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	default:
		if ext == "" {
			ext = name
		}
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// Read decodes r according to the extension of name.
func Read(name string, r io.Reader, opts Options) (reconcile.Table, error) {
	format, err := DetectFormat(name)
	if err != nil {
		return reconcile.Table{}, err
	}

	data, err := readLimited(r, opts.MaxBytes)
	if err != nil {
		return reconcile.Table{}, err
	}

	var records [][]string
	switch format {
	case FormatXLSX:
		records, err = readXLSX(data, opts.Sheet)
	case FormatTSV:
		records, err = readCSV(data, opts.Encoding, '\t')
	default:
		records, err = readCSV(data, opts.Encoding, 0)
	}
	if err != nil {
		return reconcile.Table{}, err
	}
	return toTable(records, opts.MaxRows)
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w (%d bytes)", ErrFileTooLarge, limit)
	}
	return data, nil
}

// toTable takes the first non-empty record as header and pads shorter
// rows to its width.
func toTable(records [][]string, maxRows int) (reconcile.Table, error) {
	start := -1
	for i, rec := range records {
		if !isEmptyRow(rec) {
			start = i
			break
		}
	}
	if start < 0 {
		return reconcile.Table{}, ErrEmptyFile
	}

	header := make([]string, len(records[start]))
	for i, h := range records[start] {
		header[i] = strings.TrimSpace(h)
	}

	body := records[start+1:]
	for len(body) > 0 && isEmptyRow(body[len(body)-1]) {
		body = body[:len(body)-1]
	}
	if maxRows > 0 && len(body) > maxRows {
		return reconcile.Table{}, fmt.Errorf("%w: %d rows, limit %d", ErrTooManyRows, len(body), maxRows)
	}

	rows := make([][]string, len(body))
	for i, rec := range body {
		row := make([]string, max(len(rec), len(header)))
		copy(row, rec)
		rows[i] = row
	}
	return reconcile.Table{Columns: header, Rows: rows}, nil
}

func isEmptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
