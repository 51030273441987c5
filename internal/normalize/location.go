package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/laborlens/jobmarket-cli/internal/model"
)

// Location categories the pipeline tracks. Free-form location strings
// fold onto one of these; anything unrecognized becomes "other".
const LocationOther = "other"

// DefaultLocations is the fixed, ordered category list. The feature
// schema depends on this order staying stable across runs.
var DefaultLocations = []string{
	"madrid", "barcelona", "valencia", "sevilla", "bilbao",
	"malaga", "zaragoza", "alicante", "murcia", "las palmas",
	"remote", LocationOther,
}

// LocationTable maps free-text locations to a category and a remote
// mode. Matching is accent- and case-insensitive substring lookup.
type LocationTable struct {
	categories []string
}

// NewLocationTable builds a table over the given category list. The
// "remote" and "other" categories are always recognized.
func NewLocationTable(categories []string) *LocationTable {
	return &LocationTable{categories: categories}
}

// Lookup returns the location category and remote mode for a raw
// location string. "Híbrido (Madrid)" maps to category "madrid" with
// mode hybrid; a bare "Remoto" maps to category "remote".
func (t *LocationTable) Lookup(raw string) (category string, mode model.RemoteMode) {
	folded := Fold(raw)
	if folded == "" {
		return LocationOther, model.RemoteUnknown
	}

	mode = model.RemoteOnsite
	switch {
	case strings.Contains(folded, "hibrido") || strings.Contains(folded, "hybrid"):
		mode = model.RemoteHybrid
	case strings.Contains(folded, "remoto") || strings.Contains(folded, "remote"):
		mode = model.RemoteRemote
	}

	for _, cat := range t.categories {
		if cat == "remote" || cat == LocationOther {
			continue
		}
		if strings.Contains(folded, cat) {
			return cat, mode
		}
	}

	if mode == model.RemoteRemote {
		return "remote", mode
	}
	return LocationOther, mode
}

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lowercases a string and strips diacritics, so "Málaga" and
// "malaga" compare equal.
func Fold(s string) string {
	out, _, err := transform.String(foldTransformer, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}
