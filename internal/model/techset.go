package model

import (
	"sort"
	"strings"
)

// TechSet is an ordered, de-duplicated set of technology tokens. It
// marshals to a pipe-joined string so the processed CSV keeps one cell
// per record.
type TechSet []string

// NewTechSet builds a sorted, de-duplicated set from tokens, dropping
// empties.
func NewTechSet(tokens ...string) TechSet {
	seen := make(map[string]bool, len(tokens))
	var out TechSet
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" || seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
	}
	sort.Strings(out)
	return out
}

const techSep = "|"

// MarshalCSV implements csvutil.Marshaler.
func (s TechSet) MarshalCSV() ([]byte, error) {
	return []byte(strings.Join(s, techSep)), nil
}

// UnmarshalCSV implements csvutil.Unmarshaler.
func (s *TechSet) UnmarshalCSV(data []byte) error {
	raw := string(data)
	if raw == "" {
		*s = nil
		return nil
	}
	*s = NewTechSet(strings.Split(raw, techSep)...)
	return nil
}

func (s TechSet) String() string {
	return strings.Join(s, techSep)
}
