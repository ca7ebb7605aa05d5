package reconcile

import (
	_ "embed"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"gopkg.in/yaml.v3"
)

// Field is a canonical column name.
type Field string

const (
	FieldPointID        Field = "Point ID"
	FieldSaturatedDepth Field = "Saturated soil depth ds(m)"
	FieldBlowCount      Field = "Measured N-value"
	FieldThickness      Field = "Layer thickness di(m)"
)

// Entry is one canonical field with its accepted header spellings.
type Entry struct {
	Field   Field    `yaml:"field" json:"field"`
	Aliases []string `yaml:"aliases" json:"aliases"`
}

// Dictionary is the ordered list of fields to resolve.
type Dictionary []Entry

// Fields returns the canonical fields in dictionary order.
func (d Dictionary) Fields() []Field {
	out := make([]Field, len(d))
	for i, e := range d {
		out[i] = e.Field
	}
	return out
}

//go:embed fields.yaml
var fieldsYAML []byte

var defaultDictionary = mustLoadDictionary(fieldsYAML)

// DefaultDictionary returns a copy of the built-in SPT field dictionary.
func DefaultDictionary() Dictionary {
	out := make(Dictionary, len(defaultDictionary))
	for i, e := range defaultDictionary {
		out[i] = Entry{Field: e.Field, Aliases: append([]string(nil), e.Aliases...)}
	}
	return out
}

// LoadDictionary decodes a YAML field list in the format of fields.yaml.
func LoadDictionary(data []byte) (Dictionary, error) {
	var d Dictionary
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode dictionary: %w", err)
	}
	seen := make(map[Field]bool, len(d))
	for i, e := range d {
		if strings.TrimSpace(string(e.Field)) == "" {
			return nil, fmt.Errorf("dictionary entry %d: empty field name", i+1)
		}
		if seen[e.Field] {
			return nil, fmt.Errorf("dictionary entry %d: duplicate field %q", i+1, e.Field)
		}
		seen[e.Field] = true
	}
	return d, nil
}

func mustLoadDictionary(data []byte) Dictionary {
	d, err := LoadDictionary(data)
	if err != nil {
		panic("reconcile: " + err.Error())
	}
	return d
}

// dropped reports runes removed by Normalize.
var dropped = runes.Predicate(func(r rune) bool {
	switch {
	case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
		return false
	case r >= 0x4E00 && r <= 0x9FA5:
		return false
	}
	return true
})

// Normalize strips every rune that is not an ASCII letter, an ASCII digit
// or a CJK ideograph, and lower-cases the rest.
func Normalize(s string) string {
	out, _, err := transform.String(runes.Remove(dropped), s)
	if err != nil {
		return ""
	}
	return strings.ToLower(out)
}
