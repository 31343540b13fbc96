package checker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Perchusha/price-checker-v2/internal/events"
	"github.com/Perchusha/price-checker-v2/internal/models"
	"github.com/Perchusha/price-checker-v2/internal/notifier"
	"github.com/Perchusha/price-checker-v2/internal/repository"
)

// Validation errors for the command surface.
var (
	ErrEmptyName          = errors.New("product name must not be empty")
	ErrInvalidTargetPrice = errors.New("target price must be positive")
)

// PriceFinder is the discovery-engine dependency. A nil candidate with a
// nil error is the regular not-found outcome.
type PriceFinder interface {
	FindBestPrice(ctx context.Context, name, directURL string, targetPrice *float64) (*models.PriceCandidate, error)
}

// Service owns the product set and the recurring check schedule. One
// Service is constructed at process start with its collaborators injected;
// there is no ambient state.
type Service struct {
	log      *slog.Logger
	repo     repository.Interface
	finder   PriceFinder
	notifier notifier.Notifier
	emitter  events.Emitter

	interval     time.Duration
	startupDelay time.Duration

	timerMu   sync.Mutex
	nextCheck time.Time

	idMu   sync.Mutex
	lastID int64

	// sweepMu serializes sweeps so a manual trigger cannot race the
	// scheduled one into duplicate history entries.
	sweepMu sync.Mutex
}

// NewService creates the orchestrator.
func NewService(
	log *slog.Logger,
	repo repository.Interface,
	finder PriceFinder,
	notify notifier.Notifier,
	emitter events.Emitter,
	interval, startupDelay time.Duration,
) *Service {
	return &Service{
		log:          log,
		repo:         repo,
		finder:       finder,
		notifier:     notify,
		emitter:      emitter,
		interval:     interval,
		startupDelay: startupDelay,
	}
}

// GetProducts returns every tracked product.
func (s *Service) GetProducts(ctx context.Context) ([]models.Product, error) {
	const opn = "checker.GetProducts"

	products, err := s.repo.GetProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opn, err)
	}

	return products, nil
}

// AddProduct registers a new product; it gets checked on the next sweep.
func (s *Service) AddProduct(ctx context.Context, name string, targetPrice float64, url string) (*models.Product, error) {
	const opn = "checker.AddProduct"

	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyName
	}
	if targetPrice <= 0 {
		return nil, ErrInvalidTargetPrice
	}

	now := time.Now()
	product := &models.Product{
		ID:          s.nextID(now),
		Name:        name,
		TargetPrice: targetPrice,
		URL:         url,
		IsActive:    true,
		CreatedAt:   now,
	}

	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("%s: %w", opn, err)
	}

	s.emitter.Emit(events.ProductAdded, product)
	s.log.InfoContext(ctx, "product added", "id", product.ID, "name", name, "target", targetPrice)

	return product, nil
}

// nextID derives a product ID from the wall clock. Adds landing in the
// same millisecond get consecutive IDs instead of colliding on the
// primary key.
func (s *Service) nextID(now time.Time) int64 {
	s.idMu.Lock()
	defer s.idMu.Unlock()

	id := now.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id

	return id
}

// DeleteProduct removes a product together with its price history.
func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	const opn = "checker.DeleteProduct"

	product, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", opn, err)
	}

	if err = s.repo.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", opn, err)
	}

	s.emitter.Emit(events.ProductDeleted, map[string]any{
		"product_id": id,
		"product":    product,
	})
	s.log.InfoContext(ctx, "product deleted", "id", id)

	return nil
}

// History returns the recorded price points for one product.
func (s *Service) History(ctx context.Context, productID int64) ([]models.PriceHistoryEntry, error) {
	const opn = "checker.History"

	entries, err := s.repo.HistoryForProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opn, err)
	}

	return entries, nil
}

// StartMonitoring launches the recurring schedule: one sweep shortly after
// start, then one per interval, with timer snapshots emitted every second.
func (s *Service) StartMonitoring(ctx context.Context) {
	s.log.Info("price monitoring started", "interval", s.interval)
	s.resetTimer()
	go s.run(ctx)
}

func (s *Service) run(ctx context.Context) {
	startup := time.NewTimer(s.startupDelay)
	defer startup.Stop()
	tick := time.NewTicker(time.Second)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-startup.C:
			s.sweep(ctx)
		case <-tick.C:
			if s.timeUntilNextCheck() > 0 {
				s.emitTimer()
				continue
			}
			s.sweep(ctx)
			s.resetTimer()
		}
	}
}

// CheckAllPricesNow runs a sweep out of band and restarts the countdown.
// The sweep outlives the caller's request context.
func (s *Service) CheckAllPricesNow(ctx context.Context) {
	s.RestartTimer()
	go s.sweep(context.WithoutCancel(ctx))
}

// RestartTimer resets the countdown to the full period.
func (s *Service) RestartTimer() {
	s.resetTimer()
}

// GetTimerStatus reports the absolute and relative time of the next sweep.
func (s *Service) GetTimerStatus() models.TimerStatus {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()

	if s.nextCheck.IsZero() {
		return models.TimerStatus{}
	}

	next := s.nextCheck
	remaining := time.Until(next)
	if remaining < 0 {
		remaining = 0
	}

	return models.TimerStatus{NextCheckTime: &next, TimeUntilNextCheck: remaining}
}

func (s *Service) resetTimer() {
	s.timerMu.Lock()
	s.nextCheck = time.Now().Add(s.interval)
	s.timerMu.Unlock()
	s.emitTimer()
}

func (s *Service) timeUntilNextCheck() time.Duration {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()

	return time.Until(s.nextCheck)
}

func (s *Service) emitTimer() {
	s.emitter.Emit(events.TimerUpdated, s.GetTimerStatus())
}

// sweep checks every active product sequentially. Products are taken in
// list order as of sweep start; only the per-product source fan-out is
// concurrent. One sweep at a time.
func (s *Service) sweep(ctx context.Context) {
	s.sweepMu.Lock()
	defer s.sweepMu.Unlock()

	products, err := s.repo.GetProducts(ctx)
	if err != nil {
		s.log.Error("failed to load products for sweep", "error", err)
		return
	}

	checked := 0
	for _, product := range products {
		if !product.IsActive {
			continue
		}
		checked++
		s.checkProduct(ctx, product)
	}

	s.log.InfoContext(ctx, "sweep finished", "checked", checked)
}

// checkProduct runs the full check lifecycle for one product. The checking
// flag is cleared and last_checked is written no matter how discovery ends.
func (s *Service) checkProduct(ctx context.Context, product models.Product) {
	log := s.log.With("product", product.Name, "id", product.ID)

	s.setCheckingStatus(ctx, product.ID, true)
	defer s.setCheckingStatus(ctx, product.ID, false)

	target := product.TargetPrice
	candidate, err := s.finder.FindBestPrice(ctx, product.Name, product.URL, &target)
	if err != nil {
		log.Error("price check failed", "error", err)
		candidate = nil
	}

	if candidate == nil {
		log.InfoContext(ctx, "no acceptable price found")
		s.touchLastChecked(ctx, product.ID)
		return
	}

	log.InfoContext(ctx, "price found", "price", candidate.Price, "store", candidate.Store)
	s.recordPrice(ctx, product.ID, *candidate)

	if candidate.Price <= product.TargetPrice {
		s.notifier.Notify(
			"Price Checker - Great price found!",
			fmt.Sprintf("Product %q now costs %.2f PLN (target price: %.2f)",
				product.Name, candidate.Price, product.TargetPrice),
		)
	}
}

// recordPrice persists the winning candidate on the product and appends a
// history entry.
func (s *Service) recordPrice(ctx context.Context, productID int64, candidate models.PriceCandidate) {
	now := time.Now()

	product, err := s.repo.GetProduct(ctx, productID)
	if err != nil {
		s.log.Error("failed to load product for update", "id", productID, "error", err)
		return
	}

	product.CurrentPrice = &candidate.Price
	product.LastChecked = &now
	if candidate.URL != "" {
		product.FoundURL = &candidate.URL
	}
	if candidate.Store != "" {
		product.FoundStore = &candidate.Store
		product.FoundStoreURL = &candidate.StoreURL
	}

	if err = s.repo.UpdateProduct(ctx, product); err != nil {
		s.log.Error("failed to persist price", "id", productID, "error", err)
		return
	}

	entry := &models.PriceHistoryEntry{
		ProductID: productID,
		Price:     candidate.Price,
		Store:     candidate.Store,
		CheckedAt: now,
	}
	if err = s.repo.AddHistoryEntry(ctx, entry); err != nil {
		s.log.Error("failed to append history entry", "id", productID, "error", err)
	}

	s.emitter.Emit(events.ProductUpdated, product)
}

// touchLastChecked updates the check timestamp so an unlucky product does
// not look stale.
func (s *Service) touchLastChecked(ctx context.Context, productID int64) {
	now := time.Now()

	product, err := s.repo.GetProduct(ctx, productID)
	if err != nil {
		s.log.Error("failed to load product for timestamp update", "id", productID, "error", err)
		return
	}

	product.LastChecked = &now
	if err = s.repo.UpdateProduct(ctx, product); err != nil {
		s.log.Error("failed to persist check timestamp", "id", productID, "error", err)
	}
}

func (s *Service) setCheckingStatus(ctx context.Context, productID int64, checking bool) {
	product, err := s.repo.GetProduct(ctx, productID)
	if err != nil {
		s.log.Error("failed to load product for status update", "id", productID, "error", err)
		return
	}

	product.IsChecking = checking
	if err = s.repo.UpdateProduct(ctx, product); err != nil {
		s.log.Error("failed to persist checking status", "id", productID, "error", err)
		return
	}

	s.emitter.Emit(events.CheckingStatusUpdated, map[string]any{
		"product_id":  productID,
		"is_checking": checking,
		"product":     product,
	})
}
