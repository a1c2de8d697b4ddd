// Package pricing computes the three-part price breakdown stamped onto a
// product at listing time. It is pure: the same inputs always produce the
// same quote, which keeps historical orders auditable after rate changes.
package pricing

import (
	"math"

	"github.com/homeplate/homeplate-golang/internal/errs"
)

// Quote is the price breakdown shown to buyers and stored on the product.
type Quote struct {
	SellerPrice     float64 `json:"sellerPrice"`
	AdminCommission float64 `json:"adminCommission"`
	FinalPrice      float64 `json:"finalPrice"`
}

// Compute derives the commission and final price from a seller-entered
// amount and a commission rate in [0,1].
//
// Currency values are rounded to 2 decimal places (half-up) here, at
// computation time, so the stored values are exact. FinalPrice is the sum
// of the two rounded components.
func Compute(sellerPrice, commissionRate float64) (Quote, error) {
	if math.IsNaN(sellerPrice) || math.IsInf(sellerPrice, 0) || sellerPrice <= 0 {
		return Quote{}, errs.Validationf("seller price must be a positive amount")
	}
	// The cent-rounding step multiplies by 100, so anything above
	// MaxFloat64/100 would overflow to +Inf before rounding.
	if sellerPrice > math.MaxFloat64/100 {
		return Quote{}, errs.Validationf("seller price is too large")
	}
	if math.IsNaN(commissionRate) || commissionRate < 0 || commissionRate > 1 {
		return Quote{}, errs.Validationf("commission rate must be between 0 and 1")
	}

	price := round2(sellerPrice)
	if price == 0 {
		// Sub-cent amounts round down to zero, which is not a sellable price.
		return Quote{}, errs.Validationf("seller price must be at least 0.01")
	}
	commission := round2(price * commissionRate)

	return Quote{
		SellerPrice:     price,
		AdminCommission: commission,
		FinalPrice:      price + commission,
	}, nil
}

// round2 rounds to 2 decimal places, half-up.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
