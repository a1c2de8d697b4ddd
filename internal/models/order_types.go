package models

import (
	"time"
)

// Order statuses. Progression is strictly pending -> confirmed -> delivered,
// one step at a time, with no cancellation or reversal path.
const (
	OrderPending   = "pending"
	OrderConfirmed = "confirmed"
	OrderDelivered = "delivered"
)

// GeoPoint is a latitude/longitude pair, consumed by the client's map view.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Order is the model for the 'orders' table. BuyerLocation is captured at
// placement; SellerLocation is filled in when the seller confirms.
type Order struct {
	ID        int64 `json:"id" db:"id"`
	BuyerID   int64 `json:"buyerId" db:"buyer_id"`
	SellerID  int64 `json:"sellerId" db:"seller_id"`
	ProductID int64 `json:"productId" db:"product_id"`

	Price float64 `json:"price" db:"price"`

	BuyerLocation  GeoPoint  `json:"buyerLocation"`
	SellerLocation *GeoPoint `json:"sellerLocation,omitempty"`

	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
