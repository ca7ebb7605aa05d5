package core

// error_messages.go turns technical errors into coded messages that users
// can quote to support.
//
// # Codes
//
//	VAL001  Invalid site parameters or layer values
//	VAL002  A numeric cell in the uploaded table could not be read
//	MAP001  A required column could not be recognized
//	FILE001 File exceeds the size limit
//	FILE002 File format is not supported
//	FILE003 File text could not be decoded or parsed
//	FILE004 No file was provided
//	FILE005 File has no header row
//	FILE006 File has too many rows
//	FILE007 Worksheet not found
//	IMP001  Import session not found
//	IMP002  Selected point is not part of the import
//	IMP003  Import contains no points
//	IMP004  Too many imports in progress
//	RES001  No stored result for the point
//	RES002  Result has nothing to chart
//	MEA001  Grade has no mitigation measure
//	MEA002  Unknown fortification category
//	REQ001  Request cancelled
//	REQ002  Request timed out
//	RATE001 Too many requests
//	ERR000  Anything else; check the logs for the technical error
//
// Known sentinel errors are matched first with errors.Is. Remaining errors
// are matched case-insensitively by substring, first match wins.

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/liquefy/internal/liquefaction"
	"github.com/JonMunkholm/liquefy/internal/reconcile"
	"github.com/JonMunkholm/liquefy/internal/storage"
	"github.com/JonMunkholm/liquefy/internal/tabular"
)

// UserMessage is a user-facing description of an error.
type UserMessage struct {
	Message string `json:"message"`
	Action  string `json:"action"`
	Code    string `json:"code"`
	// Detail is the technical text, set only for errors caused by user input.
	Detail string `json:"detail,omitempty"`
}

// errorKind maps a sentinel to a message. withDetail exposes err.Error().
type errorKind struct {
	target     error
	msg        UserMessage
	withDetail bool
}

var errorKinds = []errorKind{
	{liquefaction.ErrInvalidInput, UserMessage{
		Message: "Invalid site parameters or layer values",
		Action:  "Check intensity (7, 8, 9), depth criterion (15 or 20) and that depths, N-values and thicknesses are non-negative",
		Code:    "VAL001",
	}, true},
	{reconcile.ErrInvalidNumber, UserMessage{
		Message: "A numeric cell could not be read",
		Action:  "Fix the cell named in the detail and upload the file again",
		Code:    "VAL002",
	}, true},
	{reconcile.ErrIncompleteMapping, UserMessage{
		Message: "A required column could not be recognized",
		Action:  "Rename the column to one of the accepted headers listed under fields",
		Code:    "MAP001",
	}, true},
	{tabular.ErrFileTooLarge, UserMessage{
		Message: "File exceeds the maximum size",
		Action:  "Split the file into smaller files",
		Code:    "FILE001",
	}, true},
	{tabular.ErrUnsupportedFormat, UserMessage{
		Message: "File format is not supported",
		Action:  "Save the file as .csv or .xlsx",
		Code:    "FILE002",
	}, true},
	{tabular.ErrUnknownEncoding, UserMessage{
		Message: "File text could not be decoded",
		Action:  "Save the file as UTF-8",
		Code:    "FILE003",
	}, true},
	{tabular.ErrEmptyFile, UserMessage{
		Message: "The uploaded file has no header row",
		Action:  "Upload a table whose first row holds the column names",
		Code:    "FILE005",
	}, false},
	{tabular.ErrTooManyRows, UserMessage{
		Message: "File has too many rows",
		Action:  "Split the file into smaller files",
		Code:    "FILE006",
	}, true},
	{tabular.ErrSheetNotFound, UserMessage{
		Message: "Worksheet not found",
		Action:  "Check the sheet name or leave it empty to use the first sheet",
		Code:    "FILE007",
	}, true},
	{ErrImportNotFound, UserMessage{
		Message: "Import session not found",
		Action:  "The import may have expired. Please upload the file again",
		Code:    "IMP001",
	}, false},
	{ErrPointNotInImport, UserMessage{
		Message: "Selected point is not part of the import",
		Action:  "Choose point ids from the import preview",
		Code:    "IMP002",
	}, true},
	{ErrNoPoints, UserMessage{
		Message: "The file contains no measurement points",
		Action:  "Fill in the point ID column",
		Code:    "IMP003",
	}, false},
	{ErrTooManyImports, UserMessage{
		Message: "System is busy processing other imports",
		Action:  "Please wait a moment and try again",
		Code:    "IMP004",
	}, false},
	{storage.ErrNotFound, UserMessage{
		Message: "No result stored for this point",
		Action:  "Calculate the point first",
		Code:    "RES001",
	}, false},
	{liquefaction.ErrNoMeasure, UserMessage{
		Message: "No mitigation measure applies to this grade",
		Action:  "No anti-liquefaction measures are needed",
		Code:    "MEA001",
	}, false},
	{liquefaction.ErrUnknownCategory, UserMessage{
		Message: "Unknown fortification category",
		Action:  "Use category B, C or D",
		Code:    "MEA002",
	}, true},
	{context.Canceled, UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "REQ001",
	}, false},
	{context.DeadlineExceeded, UserMessage{
		Message: "Request timed out",
		Action:  "Try a smaller file or try again later",
		Code:    "REQ002",
	}, false},
}

// errorPattern maps a lower-case substring to a message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{"parse csv", UserMessage{
		Message: "File is not a valid delimited text file",
		Action:  "Ensure the file uses commas, semicolons or tabs consistently",
		Code:    "FILE003",
	}},
	{"open workbook", UserMessage{
		Message: "File is not a valid Excel workbook",
		Action:  "Open and re-save the file in Excel as .xlsx",
		Code:    "FILE003",
	}},
	{"no file provided", UserMessage{
		Message: "No file was selected",
		Action:  "Please select a CSV or Excel file to upload",
		Code:    "FILE004",
	}},
	{"no plottable layers", UserMessage{
		Message: "The result has no layers to draw",
		Action:  "Recalculate the point with at least one layer",
		Code:    "RES002",
	}},
	{"rate limit", UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts an error to a UserMessage. nil maps to the zero value.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, k := range errorKinds {
		if errors.Is(err, k.target) {
			msg := k.msg
			if k.withDetail {
				msg.Detail = err.Error()
			}
			return msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError renders "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to something other than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
