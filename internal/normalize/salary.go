package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

// Salary convention: all amounts normalize to gross annual EUR.
// Monthly expressions multiply by 12, hourly by 1720 (full-time annual
// hours). Currency symbols are stripped and assumed EUR.
const (
	monthsPerYear = 12
	hoursPerYear  = 1720
)

var numberRe = regexp.MustCompile(`(?i)\d{1,3}(?:[.,]\d{3})+|\d+(?:[.,]\d+)?\s*k|\d+(?:[.,]\d+)?`)

// ParseSalary parses a free-form salary expression into annual-EUR
// min/max bounds. A single value becomes min=max; a range keeps order
// after swapping reversed bounds. Returns nil bounds when nothing
// numeric can be extracted.
func ParseSalary(text string) (min, max *float64) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	mult := periodMultiplier(text)

	var values []float64
	for _, tok := range numberRe.FindAllString(text, 3) {
		v, ok := parseAmount(tok)
		if !ok {
			continue
		}
		values = append(values, v*mult)
	}

	switch len(values) {
	case 0:
		return nil, nil
	case 1:
		v := values[0]
		return &v, &v
	default:
		lo, hi := values[0], values[1]
		if lo > hi {
			lo, hi = hi, lo
		}
		return &lo, &hi
	}
}

// ParseBound parses a single explicit numeric bound (already annual).
func ParseBound(text string) *float64 {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	v, ok := parseAmount(text)
	if !ok {
		return nil
	}
	return &v
}

func periodMultiplier(text string) float64 {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "hora") || strings.Contains(lower, "hour"):
		return hoursPerYear
	case strings.Contains(lower, "mes") || strings.Contains(lower, "month"):
		return monthsPerYear
	default:
		return 1
	}
}

// parseAmount converts one numeric token to a float. Separators
// followed by exactly three digits are thousands separators; a
// trailing "k" multiplies by 1000.
func parseAmount(tok string) (float64, bool) {
	tok = strings.ToLower(strings.TrimSpace(tok))

	kilo := false
	if strings.HasSuffix(tok, "k") {
		kilo = true
		tok = strings.TrimSpace(strings.TrimSuffix(tok, "k"))
	}

	tok = thousandsRe.ReplaceAllStringFunc(tok, func(m string) string {
		return m[1:] // drop the separator, keep the digits
	})
	tok = strings.ReplaceAll(tok, ",", ".")

	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, false
	}
	if kilo {
		v *= 1000
	}
	return v, true
}

var thousandsRe = regexp.MustCompile(`[.,]\d{3}(?:\b|$)`)
