package pricing

import (
	"math"
	"testing"

	"github.com/homeplate/homeplate-golang/internal/errs"
)

func TestCompute_HappyPath(t *testing.T) {
	q, err := Compute(20.00, 0.10)
	if err != nil {
		t.Fatalf("Expected success, got error: %v", err)
	}

	if q.SellerPrice != 20.00 {
		t.Errorf("Wrong seller price: got %v", q.SellerPrice)
	}
	if q.AdminCommission != 2.00 {
		t.Errorf("Wrong commission: expected 2.00, got %v", q.AdminCommission)
	}
	if q.FinalPrice != 22.00 {
		t.Errorf("Wrong final price: expected 22.00, got %v", q.FinalPrice)
	}
}

func TestCompute_Rounding(t *testing.T) {
	// 19.99 * 0.15 = 2.9985 -> rounds half-up to 3.00 at computation time.
	q, err := Compute(19.99, 0.15)
	if err != nil {
		t.Fatalf("Expected success, got error: %v", err)
	}
	if q.AdminCommission != 3.00 {
		t.Errorf("Expected commission 3.00, got %v", q.AdminCommission)
	}

	// 10.00 * 0.125 = 1.25 exactly.
	q, err = Compute(10.00, 0.125)
	if err != nil {
		t.Fatalf("Expected success, got error: %v", err)
	}
	if q.AdminCommission != 1.25 {
		t.Errorf("Expected commission 1.25, got %v", q.AdminCommission)
	}
}

func TestCompute_BreakdownInvariant(t *testing.T) {
	cases := []struct {
		price float64
		rate  float64
	}{
		{20.00, 0.10},
		{5.49, 0.07},
		{999.99, 1.0},
		{0.01, 0.0},
		{150.75, 0.33},
	}

	for _, tc := range cases {
		q, err := Compute(tc.price, tc.rate)
		if err != nil {
			t.Fatalf("Compute(%v, %v) failed: %v", tc.price, tc.rate, err)
		}
		if q.FinalPrice != q.SellerPrice+q.AdminCommission {
			t.Errorf("Compute(%v, %v): finalPrice %v != sellerPrice %v + commission %v",
				tc.price, tc.rate, q.FinalPrice, q.SellerPrice, q.AdminCommission)
		}
	}
}

func TestCompute_Deterministic(t *testing.T) {
	first, err := Compute(150.75, 0.33)
	if err != nil {
		t.Fatalf("Expected success, got error: %v", err)
	}

	for i := 0; i < 100; i++ {
		q, err := Compute(150.75, 0.33)
		if err != nil {
			t.Fatalf("Expected success, got error: %v", err)
		}
		if q != first {
			t.Fatalf("Non-deterministic result on call %d: %+v vs %+v", i, q, first)
		}
	}
}

func TestCompute_RejectsInvalidPrice(t *testing.T) {
	cases := []float64{0, -1, -20.50, math.NaN(), math.Inf(1), math.Inf(-1),
		1e307, math.MaxFloat64} // overflow the cent-rounding multiply

	for _, price := range cases {
		_, err := Compute(price, 0.10)
		if err == nil {
			t.Errorf("Compute(%v, 0.10): expected validation error, got nil", price)
			continue
		}
		if !errs.IsValidation(err) {
			t.Errorf("Compute(%v, 0.10): expected ValidationError, got %T", price, err)
		}
	}
}

func TestCompute_RejectsInvalidRate(t *testing.T) {
	cases := []float64{-0.01, 1.01, 2, -1, math.NaN()}

	for _, rate := range cases {
		_, err := Compute(20.00, rate)
		if err == nil {
			t.Errorf("Compute(20.00, %v): expected validation error, got nil", rate)
			continue
		}
		if !errs.IsValidation(err) {
			t.Errorf("Compute(20.00, %v): expected ValidationError, got %T", rate, err)
		}
	}
}

func TestCompute_RateBoundsInclusive(t *testing.T) {
	if _, err := Compute(20.00, 0); err != nil {
		t.Errorf("rate 0 should be valid: %v", err)
	}

	q, err := Compute(20.00, 1)
	if err != nil {
		t.Fatalf("rate 1 should be valid: %v", err)
	}
	if q.AdminCommission != 20.00 || q.FinalPrice != 40.00 {
		t.Errorf("rate 1: expected commission 20.00 / final 40.00, got %v / %v",
			q.AdminCommission, q.FinalPrice)
	}
}
