package reconcile

import (
	"errors"
	"fmt"
	"strings"
)

// ErrIncompleteMapping is wrapped by IncompleteMappingError.
var ErrIncompleteMapping = errors.New("incomplete column mapping")

// IncompleteMappingError lists the fields no header could be matched to,
// in dictionary order.
type IncompleteMappingError struct {
	Missing []Field
}

func (e *IncompleteMappingError) Error() string {
	names := make([]string, len(e.Missing))
	for i, f := range e.Missing {
		names[i] = string(f)
	}
	return fmt.Sprintf("incomplete column mapping: no column found for %s", strings.Join(names, ", "))
}

func (e *IncompleteMappingError) Unwrap() error {
	return ErrIncompleteMapping
}

// MatchKind records which stage resolved a field.
type MatchKind string

const (
	MatchExact MatchKind = "exact"
	MatchAlias MatchKind = "alias"
	MatchFuzzy MatchKind = "fuzzy"
)

// Match is the header chosen for one field.
type Match struct {
	Field  Field     `json:"field"`
	Header string    `json:"header"`
	Column int       `json:"column"`
	Kind   MatchKind `json:"kind"`
}

// Mapping maps a canonical field to the original header text.
// A missing key means the field is unmatched.
type Mapping map[Field]string

// Missing returns the fields of d absent from m, in dictionary order.
func (m Mapping) Missing(d Dictionary) []Field {
	var out []Field
	for _, e := range d {
		if _, ok := m[e.Field]; !ok {
			out = append(out, e.Field)
		}
	}
	return out
}

// Reconcile maps headers onto the fields of d. When a field cannot be
// matched the partial mapping is still returned, together with an
// *IncompleteMappingError.
func Reconcile(d Dictionary, headers []string) (Mapping, error) {
	matches, err := Resolve(d, headers)
	m := make(Mapping, len(matches))
	for _, mt := range matches {
		m[mt.Field] = mt.Header
	}
	return m, err
}

// Resolve is Reconcile with match details, in dictionary order.
func Resolve(d Dictionary, headers []string) ([]Match, error) {
	norm := make([]string, len(headers))
	for i, h := range headers {
		norm[i] = Normalize(h)
	}

	claimed := make([]bool, len(headers))
	found := make([]*Match, len(d))

	claim := func(fi, col int, kind MatchKind) {
		claimed[col] = true
		found[fi] = &Match{Field: d[fi].Field, Header: headers[col], Column: col, Kind: kind}
	}

	// indexOf returns the first unclaimed header equal to key.
	indexOf := func(key string) int {
		if key == "" {
			return -1
		}
		for i, n := range norm {
			if !claimed[i] && n == key {
				return i
			}
		}
		return -1
	}

	for fi, e := range d {
		if col := indexOf(Normalize(string(e.Field))); col >= 0 {
			claim(fi, col, MatchExact)
			continue
		}
		for _, alias := range e.Aliases {
			if col := indexOf(Normalize(alias)); col >= 0 {
				claim(fi, col, MatchAlias)
				break
			}
		}
	}

	for fi, e := range d {
		if found[fi] != nil {
			continue
		}
		keys := make([]string, 0, len(e.Aliases)+1)
		for _, k := range append([]string{string(e.Field)}, e.Aliases...) {
			if nk := Normalize(k); nk != "" {
				keys = append(keys, nk)
			}
		}
	headers:
		for col, n := range norm {
			if claimed[col] || n == "" {
				continue
			}
			for _, k := range keys {
				if strings.Contains(n, k) {
					claim(fi, col, MatchFuzzy)
					break headers
				}
			}
		}
	}

	matches := make([]Match, 0, len(d))
	var missing []Field
	for fi, e := range d {
		if found[fi] == nil {
			missing = append(missing, e.Field)
			continue
		}
		matches = append(matches, *found[fi])
	}
	if len(missing) > 0 {
		return matches, &IncompleteMappingError{Missing: missing}
	}
	return matches, nil
}
