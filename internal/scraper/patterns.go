package scraper

import (
	"regexp"
	"strconv"
	"strings"
)

// Prices outside this window are treated as pattern noise (review counts,
// shipping fees, phone numbers) and skipped.
const (
	MinValidPrice = 10
	MaxValidPrice = 10000
)

// numberRe pulls the numeric part out of a pattern match.
var numberRe = regexp.MustCompile(`\d+[.,]\d+`)

// ExtractPrice applies each pattern in order and returns the first match
// that parses into a price within the sanity window. A pattern whose
// matches are all out of range does not abort extraction; the next pattern
// gets its turn. The false return is the normal "not found" outcome, not an
// error.
func ExtractPrice(body string, patterns []*regexp.Regexp) (float64, bool) {
	for _, pattern := range patterns {
		for _, match := range pattern.FindAllString(body, -1) {
			raw := numberRe.FindString(match)
			if raw == "" {
				continue
			}
			price, err := ParsePrice(raw)
			if err != nil {
				continue
			}
			if price >= MinValidPrice && price <= MaxValidPrice {
				return price, true
			}
		}
	}

	return 0, false
}

// ParsePrice parses a decimal that may use a comma as the fractional
// separator.
func ParsePrice(raw string) (float64, error) {
	price, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil {
		return 0, err
	}

	return price, nil
}
