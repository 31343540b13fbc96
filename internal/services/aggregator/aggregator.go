package aggregator

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"net/url"
	"sync"

	"github.com/Perchusha/price-checker-v2/internal/models"
	"github.com/Perchusha/price-checker-v2/internal/scraper"
)

// FallbackMode controls what FindBestPrice reports when every source and
// the API came back empty.
type FallbackMode string

const (
	// FallbackNull reports the all-failed outcome as not-found.
	FallbackNull FallbackMode = "null"
	// FallbackDemo synthesizes a placeholder candidate instead. A
	// development convenience, off by default.
	FallbackDemo FallbackMode = "demo-fallback"
)

// SourceFetcher is the per-source discovery dependency.
type SourceFetcher interface {
	FetchSearch(ctx context.Context, query string, src scraper.Source) *models.PriceCandidate
	FetchDirect(ctx context.Context, pageURL string) *models.PriceCandidate
}

// APISearcher is the aggregation-API dependency.
type APISearcher interface {
	Search(ctx context.Context, query string, targetPrice *float64) *models.PriceCandidate
}

// Aggregator fans a product query out to every configured source at once
// and picks the cheapest acceptable candidate.
type Aggregator struct {
	log      *slog.Logger
	fetcher  SourceFetcher
	api      APISearcher // nil when no API key is configured
	sources  []scraper.Source
	fallback FallbackMode
}

// New creates an Aggregator. api may be nil.
func New(log *slog.Logger, fetcher SourceFetcher, api APISearcher, sources []scraper.Source, fallback FallbackMode) *Aggregator {
	return &Aggregator{log: log, fetcher: fetcher, api: api, sources: sources, fallback: fallback}
}

// FindBestPrice resolves the best price for a product. A nil candidate with
// a nil error is the regular "not found" outcome; it covers both "no price
// anywhere" and "every price above target". When directURL is set the
// multi-source search is bypassed in favor of a single direct extraction.
func (a *Aggregator) FindBestPrice(ctx context.Context, name, directURL string, targetPrice *float64) (*models.PriceCandidate, error) {
	if directURL != "" {
		return a.fetcher.FetchDirect(ctx, directURL), nil
	}

	candidates := a.gather(ctx, name, targetPrice)
	if len(candidates) == 0 {
		a.log.InfoContext(ctx, "no prices found at any source", "product", name)
		return a.fallbackCandidate(ctx, name), nil
	}

	if targetPrice != nil {
		acceptable := make([]models.PriceCandidate, 0, len(candidates))
		for _, c := range candidates {
			if c.Price <= *targetPrice {
				acceptable = append(acceptable, c)
			}
		}
		if len(acceptable) == 0 {
			a.log.InfoContext(ctx, "all candidates above target",
				"product", name, "target", *targetPrice, "candidates", len(candidates))
			return nil, nil
		}
		candidates = acceptable
	}

	// Strict less-than keeps the first-seen candidate among ties. Gather
	// order is latency-dependent, so which tied candidate wins is not
	// stable across runs.
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Price < best.Price {
			best = c
		}
	}

	a.log.InfoContext(ctx, "best price selected", "product", name, "price", best.Price, "store", best.Store)

	return &best, nil
}

// gather runs one request per source plus the API concurrently and collects
// every hit. Total latency is bounded by the slowest source; a timed-out
// source contributes nothing and does not cancel its siblings.
func (a *Aggregator) gather(ctx context.Context, name string, targetPrice *float64) []models.PriceCandidate {
	results := make(chan *models.PriceCandidate, len(a.sources)+1)

	var wg sync.WaitGroup
	if a.api != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- a.api.Search(ctx, name, targetPrice)
		}()
	}
	for _, src := range a.sources {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- a.fetcher.FetchSearch(ctx, name, src)
		}()
	}
	wg.Wait()
	close(results)

	var candidates []models.PriceCandidate
	for c := range results {
		if c != nil {
			candidates = append(candidates, *c)
		}
	}

	return candidates
}

func (a *Aggregator) fallbackCandidate(ctx context.Context, name string) *models.PriceCandidate {
	if a.fallback != FallbackDemo {
		return nil
	}

	price := float64(300 + rand.IntN(200))
	a.log.WarnContext(ctx, "demo fallback price synthesized", "product", name, "price", price)

	return &models.PriceCandidate{
		Price:    price,
		URL:      "https://www.google.com/search?q=" + url.QueryEscape(name),
		Store:    "Demo",
		StoreURL: "https://www.google.com",
	}
}
