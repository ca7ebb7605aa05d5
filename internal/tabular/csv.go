package tabular

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// candidateDelimiters in preference order when counts tie.
var candidateDelimiters = []rune{',', ';', '\t'}

func textEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return unicode.UTF8, nil
	case "gb18030", "gbk":
		return simplifiedchinese.GB18030, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
}

// decodeText converts raw file bytes to UTF-8. A BOM overrides the
// configured encoding.
func decodeText(data []byte, enc string) ([]byte, error) {
	fallback, err := textEncoding(enc)
	if err != nil {
		return nil, err
	}
	t := transform.Chain(unicode.BOMOverride(fallback.NewDecoder()), runes.ReplaceIllFormed())
	out, _, err := transform.Bytes(t, data)
	if err != nil {
		return nil, fmt.Errorf("decode text: %w", err)
	}
	return out, nil
}

// sniffDelimiter picks the candidate occurring most often outside quotes
// on the first non-blank line.
func sniffDelimiter(text []byte) rune {
	var line []byte
	for l := range bytes.Lines(text) {
		if len(bytes.TrimSpace(l)) > 0 {
			line = l
			break
		}
	}

	counts := make(map[rune]int, len(candidateDelimiters))
	quoted := false
	for _, r := range string(line) {
		if r == '"' {
			quoted = !quoted
			continue
		}
		if !quoted {
			counts[r]++
		}
	}

	best := candidateDelimiters[0]
	for _, d := range candidateDelimiters[1:] {
		if counts[d] > counts[best] {
			best = d
		}
	}
	return best
}

// readCSV parses delimited text. A zero delim is sniffed.
func readCSV(data []byte, enc string, delim rune) ([][]string, error) {
	text, err := decodeText(data, enc)
	if err != nil {
		return nil, err
	}
	if delim == 0 {
		delim = sniffDelimiter(text)
	}

	r := csv.NewReader(bytes.NewReader(text))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return records, nil
}
