package scraper

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/Perchusha/price-checker-v2/internal/models"
)

// minBodyLength guards against consent walls, bot checks and empty shells:
// anything shorter cannot be a real results page.
const minBodyLength = 1000

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Fetcher performs single bounded GET requests against retailer pages.
// Every failure mode (network error, timeout, redirect, thin body, no
// pattern hit) resolves to a nil candidate, so one broken source can never
// abort an aggregate check.
type Fetcher struct {
	log    *slog.Logger
	search *http.Client
	direct *http.Client
}

// NewFetcher creates a Fetcher with separate budgets for search-page and
// direct product-page requests.
func NewFetcher(log *slog.Logger, searchTimeout, directTimeout time.Duration) *Fetcher {
	return &Fetcher{
		log:    log,
		search: newClient(searchTimeout),
		direct: newClient(directTimeout),
	}
}

// Retailers answer 301/302 to bare clients as a bot defense; following the
// redirect never leads to a results page, so redirects count as a miss.
func newClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// FetchSearch queries one source's search page, extracts the first
// plausible price and refines the link to the matching listing.
func (f *Fetcher) FetchSearch(ctx context.Context, query string, src Source) *models.PriceCandidate {
	searchURL := src.SearchURL(query)

	body, ok := f.get(ctx, f.search, searchURL, src.Name)
	if !ok {
		return nil
	}

	price, ok := ExtractPrice(body, src.Patterns)
	if !ok {
		f.log.DebugContext(ctx, "no price matched", "source", src.Name)
		return nil
	}

	return &models.PriceCandidate{
		Price:    price,
		URL:      ResolveProductLink(body, price, searchURL, src.StoreURL),
		Store:    src.Name,
		StoreURL: src.StoreURL,
	}
}

// FetchDirect extracts a price from a user-supplied product page. No store
// is known on this path, so provenance is the URL alone.
func (f *Fetcher) FetchDirect(ctx context.Context, pageURL string) *models.PriceCandidate {
	body, ok := f.get(ctx, f.direct, pageURL, "direct")
	if !ok {
		return nil
	}

	price, ok := ExtractPrice(body, GenericPatterns)
	if !ok {
		f.log.DebugContext(ctx, "no price matched on direct page", "url", pageURL)
		return nil
	}

	return &models.PriceCandidate{Price: price, URL: pageURL}
}

// get performs the request and applies the fetch-level policies. The bool
// is false for every kind of soft miss.
func (f *Fetcher) get(ctx context.Context, client *http.Client, rawURL, name string) (string, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		f.log.DebugContext(ctx, "failed to build request", "source", name, "error", err)
		return "", false
	}

	// Realistic browser profile; retailers refuse bare Go clients.
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "pl-PL,pl;q=0.9,en;q=0.8")

	resp, err := client.Do(req)
	if err != nil {
		f.log.DebugContext(ctx, "request failed", "source", name, "url", rawURL, "error", err)
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusMovedPermanently || resp.StatusCode == http.StatusFound {
		f.log.DebugContext(ctx, "redirect treated as miss", "source", name, "status", resp.StatusCode)
		return "", false
	}
	if resp.StatusCode != http.StatusOK {
		f.log.DebugContext(ctx, "unexpected status", "source", name, "status", resp.StatusCode)
		return "", false
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		f.log.DebugContext(ctx, "failed to read body", "source", name, "error", err)
		return "", false
	}
	if len(body) < minBodyLength {
		f.log.DebugContext(ctx, "body too short to be a results page", "source", name, "length", len(body))
		return "", false
	}

	return string(body), true
}
