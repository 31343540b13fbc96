package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Perchusha/price-checker-v2/internal/repository"
	"github.com/Perchusha/price-checker-v2/internal/services/checker"
)

// response is the uniform command-surface envelope: success with data, or
// failure with a message. Handlers never panic and never leak raw errors.
type response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

type addProductRequest struct {
	Name        string  `json:"name"`
	TargetPrice float64 `json:"target_price"`
	URL         string  `json:"url"`
}

func (s *Server) handleGetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.svc.GetProducts(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "could not fetch products", err)
		return
	}

	s.writeJSON(w, http.StatusOK, products)
}

func (s *Server) handleAddProduct(w http.ResponseWriter, r *http.Request) {
	var req addProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	product, err := s.svc.AddProduct(r.Context(), req.Name, req.TargetPrice, req.URL)
	if err != nil {
		if errors.Is(err, checker.ErrEmptyName) || errors.Is(err, checker.ErrInvalidTargetPrice) {
			s.writeError(w, http.StatusBadRequest, err.Error(), err)
			return
		}
		s.writeError(w, http.StatusInternalServerError, "could not add product", err)
		return
	}

	s.writeJSON(w, http.StatusCreated, product)
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid product id", err)
		return
	}

	if err = s.svc.DeleteProduct(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			s.writeError(w, http.StatusNotFound, "product not found", err)
			return
		}
		s.writeError(w, http.StatusInternalServerError, "could not delete product", err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]int64{"product_id": id})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid product id", err)
		return
	}

	entries, err := s.svc.History(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "could not fetch history", err)
		return
	}

	s.writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleCheckNow(w http.ResponseWriter, r *http.Request) {
	s.svc.CheckAllPricesNow(r.Context())
	s.writeJSON(w, http.StatusAccepted, map[string]string{"status": "check started"})
}

func (s *Server) handleTimerStatus(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.svc.GetTimerStatus())
}

func (s *Server) handleRestartTimer(w http.ResponseWriter, _ *http.Request) {
	s.svc.RestartTimer()
	s.writeJSON(w, http.StatusOK, s.svc.GetTimerStatus())
}

// writeJSON writes a success envelope.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response{Success: true, Data: data}); err != nil {
		s.log.Error("failed to write response", "error", err)
	}
}

// writeError writes a failure envelope with a client-safe message.
func (s *Server) writeError(w http.ResponseWriter, status int, msg string, err error) {
	s.log.Error(msg, "status", status, "error", err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response{Success: false, Error: msg}); err != nil {
		s.log.Error("failed to write error response", "error", err)
	}
}
