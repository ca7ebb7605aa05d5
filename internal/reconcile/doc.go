// Package reconcile maps the loosely named columns of an imported SPT table
// onto the canonical fields the calculator needs.
//
// Headers are compared after normalization (only ASCII letters, digits and
// CJK ideographs survive, lower-cased). Each field is resolved in three
// stages: exact name, then listed aliases, then substring containment of
// the name or any alias. Exact and alias matches for every field are
// settled before any fuzzy match is attempted, and a header claimed by one
// field is never offered to another. This differs from matching every field
// on its own with first hit wins: a later field's exact or alias match can
// take precedence over an earlier field's fuzzy match, and two fields never
// share a column. Match.Kind reports the stage that won under these rules.
//
// Numeric cells accept comma thousands separators (1,234.5) and, in a number
// without a decimal point, a single decimal comma (1,5). Other commas are
// invalid.
//
// Once a mapping is complete, Group turns the table rows into per-point
// layer lists and Summarize reports import statistics. Nothing in this
// package mutates the table it is given.
package reconcile
