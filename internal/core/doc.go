// Package core is the application layer between the front ends (HTTP and
// CLI) and the pure packages liquefaction, reconcile and tabular.
//
// # Manual calculation
//
// [Service.Calculate] validates and computes one point and stores the
// result. Storing a point again replaces its previous result.
//
// # Imports
//
// Importing is a two-step flow:
//
//  1. [Service.Import] decodes the file, reconciles its headers against the
//     field dictionary and groups the rows by point id. The grouped points
//     are kept in a session and a preview is returned.
//  2. [Service.CalculateImported] computes every (or the selected) point of
//     the session with shared site parameters and stores the results as
//     one batch. Stored ids are prefixed with [ImportedPointPrefix].
//
// At most IMPORT_MAX_SESSIONS sessions are kept; the oldest is dropped
// first. File decoding is bounded by an [ImportLimiter].
//
// # Error Handling
//
// Technical errors are mapped to coded user messages by [MapError].
package core
