package scraper

import (
	"math"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Two displayed prices closer than this are considered the same.
const priceTolerance = 0.01

// linkPatterns associate an href with a nearby price, loosest last. Tried
// only after the anchor-level pass.
var linkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)href="([^"]*/[^"]*/[^"]*)"[^>]*>.*?(\d+[.,]\d+)\s*zł`),
	regexp.MustCompile(`(?is)href="([^"]*/product[^"]*)"[^>]*>.*?(\d+[.,]\d+)\s*zł`),
	regexp.MustCompile(`(?is)href="([^"]*/[^"]*)"[^>]*>.*?(\d+[.,]\d+)\s*zł`),
	regexp.MustCompile(`(?is)<a[^>]*href="([^"]*)"[^>]*>.*?(\d+[.,]\d+)\s*zł`),
}

// ResolveProductLink tries to find the link of the listing whose displayed
// price equals matchedPrice. Best effort: an equal price on a different
// product is indistinguishable from the right one, so false positives are a
// known precision limit of this path. Returns fallbackURL when nothing
// matches.
func ResolveProductLink(body string, matchedPrice float64, fallbackURL, storeURL string) string {
	if href, ok := anchorWithPrice(body, matchedPrice); ok {
		return normalizeLink(href, storeURL)
	}

	for _, pattern := range linkPatterns {
		for _, m := range pattern.FindAllStringSubmatch(body, -1) {
			price, err := ParsePrice(m[2])
			if err != nil {
				continue
			}
			if math.Abs(price-matchedPrice) < priceTolerance {
				return normalizeLink(m[1], storeURL)
			}
		}
	}

	return fallbackURL
}

// anchorWithPrice is the strict pass: an <a> element whose own text carries
// the matched price.
func anchorWithPrice(body string, matchedPrice float64) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return "", false
	}

	var href string
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		for _, raw := range numberRe.FindAllString(sel.Text(), -1) {
			price, err := ParsePrice(raw)
			if err != nil {
				continue
			}
			if math.Abs(price-matchedPrice) < priceTolerance {
				href = sel.AttrOr("href", "")
				return false
			}
		}
		return true
	})

	return href, href != ""
}

// normalizeLink resolves root-relative and bare-relative hrefs against the
// store base; absolute links pass through.
func normalizeLink(href, storeURL string) string {
	switch {
	case strings.HasPrefix(href, "http"):
		return href
	case strings.HasPrefix(href, "/"):
		return storeURL + href
	default:
		return storeURL + "/" + href
	}
}
