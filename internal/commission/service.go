// Package commission resolves the effective commission rate for a seller
// and applies admin-driven rate changes, including the global bulk update.
package commission

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/homeplate/homeplate-golang/internal/errs"
	"github.com/homeplate/homeplate-golang/internal/retry"
)

// DefaultRate is applied to sellers without a stored rate.
const DefaultRate = 0.10

// Store is the persistence boundary for seller rates.
type Store interface {
	// SellerRate returns the stored rate and whether one exists.
	SellerRate(ctx context.Context, sellerID int64) (float64, bool, error)
	// UpdateSellerRate overwrites the stored rate for one seller.
	UpdateSellerRate(ctx context.Context, sellerID int64, rate float64) error
	// SellerIDs lists every seller record the global update must touch.
	SellerIDs(ctx context.Context) ([]int64, error)
}

// BulkFailure records one seller the global update could not reach.
type BulkFailure struct {
	SellerID int64  `json:"sellerId"`
	Reason   string `json:"reason"`
}

// BulkResult is the aggregate outcome of a global rate update. Partial
// failure is reported here rather than swallowed.
type BulkResult struct {
	Updated  int           `json:"updated"`
	Failures []BulkFailure `json:"failures,omitempty"`
}

type Service struct {
	store Store
	log   *zap.Logger

	defaultRate float64

	// Bulk update tuning.
	maxParallel   int
	retryAttempts int
	retryBase     time.Duration
}

func NewService(store Store, log *zap.Logger) *Service {
	return &Service{
		store:         store,
		log:           log,
		defaultRate:   DefaultRate,
		maxParallel:   8,
		retryAttempts: 3,
		retryBase:     100 * time.Millisecond,
	}
}

// WithDefaultRate overrides the platform default rate (read from config).
func (s *Service) WithDefaultRate(rate float64) *Service {
	if validRate(rate) {
		s.defaultRate = rate
	}
	return s
}

// EffectiveRate returns the seller's stored rate, or the platform default
// when none is stored.
func (s *Service) EffectiveRate(ctx context.Context, sellerID int64) (float64, error) {
	rate, ok, err := s.store.SellerRate(ctx, sellerID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return s.defaultRate, nil
	}
	return rate, nil
}

// SetSellerRate overwrites one seller's rate. Existing products keep the
// prices stamped at their creation time.
func (s *Service) SetSellerRate(ctx context.Context, sellerID int64, rate float64) error {
	if !validRate(rate) {
		return errs.Validationf("commission rate must be between 0 and 1")
	}
	return s.store.UpdateSellerRate(ctx, sellerID, rate)
}

// SetGlobalRate overwrites the rate on every known seller record. Per-seller
// updates run in parallel with bounded retries; the caller always receives
// the aggregate outcome, including every seller that could not be updated.
func (s *Service) SetGlobalRate(ctx context.Context, rate float64) (BulkResult, error) {
	if !validRate(rate) {
		return BulkResult{}, errs.Validationf("commission rate must be between 0 and 1")
	}

	ids, err := s.store.SellerIDs(ctx)
	if err != nil {
		return BulkResult{}, err
	}

	var (
		mu     sync.Mutex
		result BulkResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxParallel)

	for _, id := range ids {
		sellerID := id
		g.Go(func() error {
			err := retry.Do(gctx, s.retryAttempts, s.retryBase, retry.Transient, func() error {
				return s.store.UpdateSellerRate(gctx, sellerID, rate)
			})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.log.Warn("global rate update failed for seller",
					zap.Int64("sellerId", sellerID), zap.Error(err))
				result.Failures = append(result.Failures, BulkFailure{
					SellerID: sellerID,
					Reason:   err.Error(),
				})
			} else {
				result.Updated++
			}
			// Failures are collected, never propagated, so one bad record
			// does not abort the rest of the fan-out.
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return result, fmt.Errorf("global rate update: %w", err)
	}

	s.log.Info("global commission rate updated",
		zap.Float64("rate", rate),
		zap.Int("updated", result.Updated),
		zap.Int("failed", len(result.Failures)))
	return result, nil
}

func validRate(rate float64) bool {
	return rate == rate && rate >= 0 && rate <= 1 // rate == rate filters NaN
}
