package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Perchusha/price-checker-v2/internal/models"
)

// ProductService is the command surface the HTTP layer exposes.
type ProductService interface {
	GetProducts(ctx context.Context) ([]models.Product, error)
	AddProduct(ctx context.Context, name string, targetPrice float64, url string) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	History(ctx context.Context, productID int64) ([]models.PriceHistoryEntry, error)
	CheckAllPricesNow(ctx context.Context)
	GetTimerStatus() models.TimerStatus
	RestartTimer()
}

// Server hosts the REST command surface and the websocket event stream.
type Server struct {
	log *slog.Logger
	svc ProductService
	ws  http.Handler
}

// New creates the server. ws serves the event stream endpoint.
func New(log *slog.Logger, svc ProductService, ws http.Handler) *Server {
	return &Server{log: log, svc: svc, ws: ws}
}

// Router wires all routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", s.handleGetProducts)
		r.Post("/products", s.handleAddProduct)
		r.Delete("/products/{id}", s.handleDeleteProduct)
		r.Get("/products/{id}/history", s.handleHistory)
		r.Post("/check", s.handleCheckNow)
		r.Get("/timer", s.handleTimerStatus)
		r.Post("/timer/restart", s.handleRestartTimer)
	})
	r.Handle("/ws", s.ws)

	return r
}
