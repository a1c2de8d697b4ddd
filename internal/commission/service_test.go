package commission

import (
	"context"
	"sync"
	"syscall"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/homeplate/homeplate-golang/internal/errs"
)

// mockStore keeps rates in a map. failUntil lets tests inject transient
// failures for specific sellers; permanent marks sellers that always fail.
type mockStore struct {
	mu        sync.Mutex
	rates     map[int64]float64
	failUntil map[int64]int // remaining ECONNRESET failures per seller
	permanent map[int64]bool
	calls     map[int64]int
}

func newMockStore(sellerIDs ...int64) *mockStore {
	m := &mockStore{
		rates:     map[int64]float64{},
		failUntil: map[int64]int{},
		permanent: map[int64]bool{},
		calls:     map[int64]int{},
	}
	for _, id := range sellerIDs {
		m.rates[id] = DefaultRate
	}
	return m
}

func (m *mockStore) SellerRate(ctx context.Context, sellerID int64) (float64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rate, ok := m.rates[sellerID]
	return rate, ok, nil
}

func (m *mockStore) UpdateSellerRate(ctx context.Context, sellerID int64, rate float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls[sellerID]++
	if m.permanent[sellerID] {
		return errs.NotFoundf("seller %d not found", sellerID)
	}
	if m.failUntil[sellerID] > 0 {
		m.failUntil[sellerID]--
		return syscall.ECONNRESET
	}
	m.rates[sellerID] = rate
	return nil
}

func (m *mockStore) SellerIDs(ctx context.Context) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int64, 0, len(m.rates))
	for id := range m.rates {
		ids = append(ids, id)
	}
	for id := range m.permanent {
		if _, ok := m.rates[id]; !ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func newTestService(store *mockStore) *Service {
	svc := NewService(store, zap.NewNop())
	svc.retryBase = time.Millisecond // keep backoff out of test time
	return svc
}

func TestEffectiveRate_FallsBackToDefault(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store)

	rate, err := svc.EffectiveRate(context.Background(), 42)
	if err != nil {
		t.Fatalf("Expected success, got error: %v", err)
	}
	if rate != DefaultRate {
		t.Errorf("Expected default rate %v, got %v", DefaultRate, rate)
	}
}

func TestEffectiveRate_UsesStoredRate(t *testing.T) {
	store := newMockStore(42)
	store.rates[42] = 0.25
	svc := newTestService(store)

	rate, err := svc.EffectiveRate(context.Background(), 42)
	if err != nil {
		t.Fatalf("Expected success, got error: %v", err)
	}
	if rate != 0.25 {
		t.Errorf("Expected stored rate 0.25, got %v", rate)
	}
}

func TestWithDefaultRate_IgnoresInvalid(t *testing.T) {
	svc := NewService(newMockStore(), zap.NewNop()).WithDefaultRate(1.5)
	if svc.defaultRate != DefaultRate {
		t.Errorf("Invalid default should be ignored, got %v", svc.defaultRate)
	}

	svc = NewService(newMockStore(), zap.NewNop()).WithDefaultRate(0.12)
	if svc.defaultRate != 0.12 {
		t.Errorf("Expected default 0.12, got %v", svc.defaultRate)
	}
}

func TestSetSellerRate(t *testing.T) {
	store := newMockStore(7)
	svc := newTestService(store)

	if err := svc.SetSellerRate(context.Background(), 7, 0.15); err != nil {
		t.Fatalf("Expected success, got error: %v", err)
	}
	if store.rates[7] != 0.15 {
		t.Errorf("Rate not persisted: got %v", store.rates[7])
	}

	for _, rate := range []float64{-0.01, 1.01} {
		err := svc.SetSellerRate(context.Background(), 7, rate)
		if !errs.IsValidation(err) {
			t.Errorf("Rate %v: expected ValidationError, got %v", rate, err)
		}
	}
}

func TestSetGlobalRate_UpdatesEverySeller(t *testing.T) {
	store := newMockStore(1, 2, 3)
	svc := newTestService(store)

	result, err := svc.SetGlobalRate(context.Background(), 0.15)
	if err != nil {
		t.Fatalf("Expected success, got error: %v", err)
	}

	if result.Updated != 3 || len(result.Failures) != 0 {
		t.Fatalf("Expected 3 updated / 0 failed, got %+v", result)
	}
	for id := int64(1); id <= 3; id++ {
		if store.rates[id] != 0.15 {
			t.Errorf("Seller %d: expected rate 0.15, got %v", id, store.rates[id])
		}
	}
}

func TestSetGlobalRate_RetriesTransientFailures(t *testing.T) {
	store := newMockStore(1, 2)
	store.failUntil[2] = 2 // fails twice, succeeds on the third attempt
	svc := newTestService(store)

	result, err := svc.SetGlobalRate(context.Background(), 0.20)
	if err != nil {
		t.Fatalf("Expected success, got error: %v", err)
	}

	if result.Updated != 2 || len(result.Failures) != 0 {
		t.Fatalf("Expected both sellers updated after retries, got %+v", result)
	}
	if store.calls[2] != 3 {
		t.Errorf("Expected 3 attempts for seller 2, got %d", store.calls[2])
	}
	if store.rates[2] != 0.20 {
		t.Errorf("Seller 2 rate not updated: %v", store.rates[2])
	}
}

func TestSetGlobalRate_ReportsPartialFailure(t *testing.T) {
	store := newMockStore(1, 2, 3)
	store.permanent[2] = true
	svc := newTestService(store)

	result, err := svc.SetGlobalRate(context.Background(), 0.18)
	if err != nil {
		t.Fatalf("Partial failure must not become a hard error: %v", err)
	}

	if result.Updated != 2 {
		t.Errorf("Expected 2 updated, got %d", result.Updated)
	}
	if len(result.Failures) != 1 || result.Failures[0].SellerID != 2 {
		t.Fatalf("Expected seller 2 in failures, got %+v", result.Failures)
	}

	// A permanent error must not be retried.
	if store.calls[2] != 1 {
		t.Errorf("Expected 1 attempt for permanently failing seller, got %d", store.calls[2])
	}

	// The other sellers still got the new rate.
	if store.rates[1] != 0.18 || store.rates[3] != 0.18 {
		t.Errorf("Healthy sellers should be updated: %v / %v", store.rates[1], store.rates[3])
	}
}

func TestSetGlobalRate_RejectsInvalidRate(t *testing.T) {
	svc := newTestService(newMockStore(1))

	_, err := svc.SetGlobalRate(context.Background(), 1.5)
	if !errs.IsValidation(err) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
}
