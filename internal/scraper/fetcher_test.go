package scraper_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Perchusha/price-checker-v2/internal/scraper"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// padBody pads markup past the thin-page threshold so the fetcher accepts it
// as a real results page.
func padBody(markup string) string {
	return markup + "<!--" + strings.Repeat("x", 1200) + "-->"
}

func testSource(serverURL string) scraper.Source {
	return scraper.Source{
		Name:     "x-kom",
		QueryURL: serverURL + "/szukaj?q=%s",
		Patterns: scraper.GenericPatterns,
		StoreURL: serverURL,
	}
}

func TestFetchSearch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "logitech mx", r.URL.Query().Get("q"))
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla")

		_, _ = w.Write([]byte(padBody(`<a href="/produkty/mysz-1">Mysz 399,99 zł</a>`)))
	}))
	defer server.Close()

	fetcher := scraper.NewFetcher(testLogger(), time.Second, time.Second)

	candidate := fetcher.FetchSearch(t.Context(), "logitech mx", testSource(server.URL))

	require.NotNil(t, candidate)
	assert.InEpsilon(t, 399.99, candidate.Price, 1e-9)
	assert.Equal(t, "x-kom", candidate.Store)
	assert.Equal(t, server.URL, candidate.StoreURL)
	assert.Equal(t, server.URL+"/produkty/mysz-1", candidate.URL)
}

func TestFetchSearch_LinkFallsBackToSearchURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(padBody(`<div>399,99 zł</div>`)))
	}))
	defer server.Close()

	fetcher := scraper.NewFetcher(testLogger(), time.Second, time.Second)
	src := testSource(server.URL)

	candidate := fetcher.FetchSearch(t.Context(), "logitech mx", src)

	require.NotNil(t, candidate)
	assert.Equal(t, src.SearchURL("logitech mx"), candidate.URL)
}

func TestFetchSearch_SoftMisses(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "redirect is a miss, not followed",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Location", "/blocked")
				w.WriteHeader(http.StatusFound)
			},
		},
		{
			name: "non-200 status",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusForbidden)
			},
		},
		{
			name: "body too short",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`<div>399,99 zł</div>`))
			},
		},
		{
			name: "no price in body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(padBody(`<div>brak wyników</div>`)))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			fetcher := scraper.NewFetcher(testLogger(), time.Second, time.Second)

			candidate := fetcher.FetchSearch(t.Context(), "logitech mx", testSource(server.URL))
			assert.Nil(t, candidate)
		})
	}
}

func TestFetchSearch_ServerUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close() // refuse connections

	fetcher := scraper.NewFetcher(testLogger(), time.Second, time.Second)

	candidate := fetcher.FetchSearch(t.Context(), "logitech mx", testSource(server.URL))
	assert.Nil(t, candidate)
}

func TestFetchDirect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(padBody(`<span class="price">1549,00 zł</span>`)))
	}))
	defer server.Close()

	fetcher := scraper.NewFetcher(testLogger(), time.Second, time.Second)

	candidate := fetcher.FetchDirect(t.Context(), server.URL+"/produkt/monitor")

	require.NotNil(t, candidate)
	assert.InEpsilon(t, 1549.00, candidate.Price, 1e-9)
	assert.Equal(t, server.URL+"/produkt/monitor", candidate.URL)
	// Direct pages carry no store provenance.
	assert.Empty(t, candidate.Store)
	assert.Empty(t, candidate.StoreURL)
}

func TestSourceSearchURL_EscapesQuery(t *testing.T) {
	src := scraper.Source{QueryURL: "https://www.x-kom.pl/szukaj?q=%s"}

	assert.Equal(t, "https://www.x-kom.pl/szukaj?q=logitech+mx+master+3%2F5",
		src.SearchURL("logitech mx master 3/5"))
}

func TestDefaultSources(t *testing.T) {
	sources := scraper.DefaultSources()

	require.Len(t, sources, 6)
	names := make([]string, 0, len(sources))
	for _, src := range sources {
		names = append(names, src.Name)
		assert.Contains(t, src.QueryURL, "%s")
		assert.NotEmpty(t, src.Patterns)
		assert.NotEmpty(t, src.StoreURL)
	}
	assert.Equal(t, []string{"x-kom", "Allegro", "Amazon Poland", "Ceneo", "Media Expert", "RTV Euro AGD"}, names)
}
