package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Perchusha/price-checker-v2/internal/models"
	"github.com/Perchusha/price-checker-v2/internal/repository"
	"github.com/Perchusha/price-checker-v2/internal/server"
	"github.com/Perchusha/price-checker-v2/internal/services/checker"
)

// fakeService scripts every command-surface call.
type fakeService struct {
	products      []models.Product
	productsErr   error
	added         *models.Product
	addErr        error
	deleteErr     error
	history       []models.PriceHistoryEntry
	historyErr    error
	timerStatus   models.TimerStatus
	checkCalled   bool
	restartCalled bool
}

func (f *fakeService) GetProducts(context.Context) ([]models.Product, error) {
	return f.products, f.productsErr
}

func (f *fakeService) AddProduct(context.Context, string, float64, string) (*models.Product, error) {
	return f.added, f.addErr
}

func (f *fakeService) DeleteProduct(context.Context, int64) error {
	return f.deleteErr
}

func (f *fakeService) History(context.Context, int64) ([]models.PriceHistoryEntry, error) {
	return f.history, f.historyErr
}

func (f *fakeService) CheckAllPricesNow(context.Context) { f.checkCalled = true }

func (f *fakeService) GetTimerStatus() models.TimerStatus { return f.timerStatus }

func (f *fakeService) RestartTimer() { f.restartCalled = true }

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func doRequest(t *testing.T, svc server.ProductService, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := server.New(logger, svc, http.NotFoundHandler()).Router()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))

	return rec, env
}

func TestGetProducts(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &fakeService{products: []models.Product{
			{ID: 1, Name: "mysz", TargetPrice: 400},
		}}

		rec, env := doRequest(t, svc, http.MethodGet, "/api/products", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, env.Success)

		var products []models.Product
		require.NoError(t, json.Unmarshal(env.Data, &products))
		require.Len(t, products, 1)
		assert.Equal(t, "mysz", products[0].Name)
	})

	t.Run("storage failure", func(t *testing.T) {
		svc := &fakeService{productsErr: errors.New("db is down")}

		rec, env := doRequest(t, svc, http.MethodGet, "/api/products", "")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.False(t, env.Success)
		// Raw storage errors must not leak to the client.
		assert.Equal(t, "could not fetch products", env.Error)
	})
}

func TestAddProduct(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := &fakeService{added: &models.Product{ID: 7, Name: "mysz", TargetPrice: 400}}

		rec, env := doRequest(t, svc, http.MethodPost, "/api/products",
			`{"name": "mysz", "target_price": 400}`)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.True(t, env.Success)

		var product models.Product
		require.NoError(t, json.Unmarshal(env.Data, &product))
		assert.Equal(t, int64(7), product.ID)
	})

	t.Run("malformed body", func(t *testing.T) {
		rec, env := doRequest(t, &fakeService{}, http.MethodPost, "/api/products", `{"name": `)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.False(t, env.Success)
	})

	t.Run("validation errors map to 400", func(t *testing.T) {
		for _, vErr := range []error{checker.ErrEmptyName, checker.ErrInvalidTargetPrice} {
			svc := &fakeService{addErr: vErr}

			rec, env := doRequest(t, svc, http.MethodPost, "/api/products",
				`{"name": "", "target_price": 0}`)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, vErr.Error(), env.Error)
		}
	})

	t.Run("storage failure maps to 500", func(t *testing.T) {
		svc := &fakeService{addErr: errors.New("db is down")}

		rec, env := doRequest(t, svc, http.MethodPost, "/api/products",
			`{"name": "mysz", "target_price": 400}`)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "could not add product", env.Error)
	})
}

func TestDeleteProduct(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		rec, env := doRequest(t, &fakeService{}, http.MethodDelete, "/api/products/42", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, env.Success)
	})

	t.Run("unknown product", func(t *testing.T) {
		svc := &fakeService{deleteErr: repository.ErrProductNotFound}

		rec, env := doRequest(t, svc, http.MethodDelete, "/api/products/42", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "product not found", env.Error)
	})

	t.Run("non-numeric id", func(t *testing.T) {
		rec, env := doRequest(t, &fakeService{}, http.MethodDelete, "/api/products/abc", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "invalid product id", env.Error)
	})
}

func TestHistory(t *testing.T) {
	svc := &fakeService{history: []models.PriceHistoryEntry{
		{ID: 1, ProductID: 42, Price: 389.99, Store: "x-kom"},
	}}

	rec, env := doRequest(t, svc, http.MethodGet, "/api/products/42/history", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	var entries []models.PriceHistoryEntry
	require.NoError(t, json.Unmarshal(env.Data, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "x-kom", entries[0].Store)
}

func TestCheckNow(t *testing.T) {
	svc := &fakeService{}

	rec, env := doRequest(t, svc, http.MethodPost, "/api/check", "")

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.True(t, env.Success)
	assert.True(t, svc.checkCalled)
}

func TestTimer(t *testing.T) {
	next := time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC)
	svc := &fakeService{timerStatus: models.TimerStatus{
		NextCheckTime:      &next,
		TimeUntilNextCheck: 30 * time.Minute,
	}}

	t.Run("status", func(t *testing.T) {
		rec, env := doRequest(t, svc, http.MethodGet, "/api/timer", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, env.Success)
	})

	t.Run("restart", func(t *testing.T) {
		rec, env := doRequest(t, svc, http.MethodPost, "/api/timer/restart", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, env.Success)
		assert.True(t, svc.restartCalled)
	})
}
