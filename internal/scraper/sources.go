package scraper

import (
	"fmt"
	"net/url"
	"regexp"
)

// Source describes one retailer search endpoint: where to search and how to
// recognize prices in its markup. The table is configuration, not engine
// logic; swapping it retargets the whole discovery pipeline.
type Source struct {
	Name string
	// QueryURL is a format string with one %s placeholder for the
	// URL-escaped search query.
	QueryURL string
	// Patterns are tried in order; earlier ones are more specific.
	Patterns []*regexp.Regexp
	StoreURL string
}

// SearchURL builds the search-results URL for the given query.
func (s Source) SearchURL(query string) string {
	return fmt.Sprintf(s.QueryURL, url.QueryEscape(query))
}

// plnPatterns recognize prices in Polish retailer markup, from tight
// currency suffixes down to price/cena-labelled markup fragments.
var plnPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+[.,]\d+)\s*(zł|PLN)`),
	regexp.MustCompile(`(?i)(\d+[.,]\d+)\s*zł`),
	regexp.MustCompile(`(?is)price[^>]*>.*?(\d+[.,]\d+)\s*zł`),
	regexp.MustCompile(`(?is)cena[^>]*>.*?(\d+[.,]\d+)\s*zł`),
}

// GenericPatterns match prices on an arbitrary product page when nothing is
// known about its markup (the direct-URL path).
var GenericPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+[.,]\d+)\s*(zł|PLN|злотых)`),
	regexp.MustCompile(`(?i)(\d+[.,]\d+)\s*PLN`),
	regexp.MustCompile(`(?i)(\d+[.,]\d+)\s*zł`),
	regexp.MustCompile(`(?i)(\d+[.,]\d+)\s*злотых`),
}

// DefaultSources returns the built-in retailer table.
func DefaultSources() []Source {
	return []Source{
		{
			Name:     "x-kom",
			QueryURL: "https://www.x-kom.pl/szukaj?q=%s",
			Patterns: plnPatterns,
			StoreURL: "https://www.x-kom.pl",
		},
		{
			Name:     "Allegro",
			QueryURL: "https://allegro.pl/listing?string=%s",
			Patterns: plnPatterns,
			StoreURL: "https://allegro.pl",
		},
		{
			Name:     "Amazon Poland",
			QueryURL: "https://www.amazon.pl/s?k=%s",
			Patterns: plnPatterns,
			StoreURL: "https://www.amazon.pl",
		},
		{
			Name:     "Ceneo",
			QueryURL: "https://www.ceneo.pl/;szukaj-%s",
			Patterns: plnPatterns,
			StoreURL: "https://www.ceneo.pl",
		},
		{
			Name:     "Media Expert",
			QueryURL: "https://www.mediaexpert.pl/search?query=%s",
			Patterns: plnPatterns,
			StoreURL: "https://www.mediaexpert.pl",
		},
		{
			Name:     "RTV Euro AGD",
			QueryURL: "https://www.euro.com.pl/search?query=%s",
			Patterns: plnPatterns[:1],
			StoreURL: "https://www.euro.com.pl",
		},
	}
}
