package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/Perchusha/price-checker-v2/internal/models"
)

// ShoppingClient queries a Google-Shopping-style aggregation API. It is a
// best-effort extra source with the same soft-failure contract as the
// retailer fetcher: every error resolves to a nil candidate.
type ShoppingClient struct {
	log    *slog.Logger
	client *http.Client
	host   string
	apiKey string
}

// NewShoppingClient creates an API client with its own request budget.
func NewShoppingClient(log *slog.Logger, host, apiKey string, timeout time.Duration) *ShoppingClient {
	return &ShoppingClient{
		log:    log,
		client: &http.Client{Timeout: timeout},
		host:   host,
		apiKey: apiKey,
	}
}

type shoppingResponse struct {
	ShoppingResults []struct {
		Price  string `json:"price"`
		Link   string `json:"link"`
		Source string `json:"source"`
	} `json:"shopping_results"`
}

// nonPriceChars strips currency symbols and whitespace from an API price.
var nonPriceChars = regexp.MustCompile(`[^\d.,]`)

// Search returns the first API result whose price parses, filtered by
// targetPrice when given.
func (c *ShoppingClient) Search(ctx context.Context, query string, targetPrice *float64) *models.PriceCandidate {
	// The host may carry an explicit scheme; https otherwise. The host
	// header wants the bare name either way.
	base, hostHeader := c.host, c.host
	if idx := strings.Index(hostHeader, "://"); idx >= 0 {
		hostHeader = hostHeader[idx+3:]
	} else {
		base = "https://" + base
	}
	reqURL := fmt.Sprintf("%s/shopping/search?query=%s&country=PL&language=pl",
		base, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", hostHeader)

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.DebugContext(ctx, "shopping API unavailable", "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.DebugContext(ctx, "shopping API status", "status", resp.StatusCode)
		return nil
	}

	var parsed shoppingResponse
	if err = json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		c.log.DebugContext(ctx, "shopping API parse error", "error", err)
		return nil
	}
	if len(parsed.ShoppingResults) == 0 {
		return nil
	}

	first := parsed.ShoppingResults[0]
	price, err := ParsePrice(nonPriceChars.ReplaceAllString(first.Price, ""))
	if err != nil || price <= 0 {
		return nil
	}
	if targetPrice != nil && price > *targetPrice {
		return nil
	}

	c.log.DebugContext(ctx, "shopping API hit", "price", price, "source", first.Source)

	return &models.PriceCandidate{
		Price:    price,
		URL:      first.Link,
		Store:    first.Source,
		StoreURL: first.Source,
	}
}
