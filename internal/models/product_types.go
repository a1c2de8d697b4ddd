package models

import (
	"time"
)

// Product statuses. A product never reverts from 'sold' to 'available' by
// system action; only a manual toggle by the owner or an admin does that.
const (
	ProductAvailable = "available"
	ProductSold      = "sold"
)

// Product is the model for the 'products' table.
// The price breakdown (SellerPrice, AdminCommission, FinalPrice) and the
// CommissionRate are stamped once at creation time; later rate changes
// never rewrite them.
type Product struct {
	ID          int64  `json:"id" db:"id"`
	OwnerID     int64  `json:"ownerId" db:"owner_id"`
	Title       string `json:"title" db:"title"`
	Description string `json:"description" db:"description"`

	SellerPrice     float64 `json:"sellerPrice" db:"seller_price"`
	AdminCommission float64 `json:"adminCommission" db:"admin_commission"`
	FinalPrice      float64 `json:"finalPrice" db:"final_price"`
	CommissionRate  float64 `json:"commissionRate" db:"commission_rate"`

	ImageURL *string `json:"imageUrl,omitempty" db:"image_url"`
	Status   string  `json:"status" db:"status"`
	BuyerID  *int64  `json:"buyerId,omitempty" db:"buyer_id"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
