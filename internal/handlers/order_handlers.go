package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/homeplate/homeplate-golang/internal/models"
	"github.com/homeplate/homeplate-golang/internal/orders"
)

//
// --- Order Handlers ---
//

type PlaceOrderInput struct {
	ProductID     int64            `json:"productId" binding:"required"`
	BuyerLocation *models.GeoPoint `json:"buyerLocation" binding:"required"`
}

// PlaceOrder is the handler for POST /v1/orders.
// The buyer's geolocation is required at creation so the seller can see
// where to deliver.
func (h *Handlers) PlaceOrder(c *gin.Context) {
	buyerID := currentUserID(c)

	var input PlaceOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.Orders.Place(c, orders.PlaceInput{
		BuyerID:       buyerID,
		ProductID:     input.ProductID,
		BuyerLocation: *input.BuyerLocation,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"order":   order,
	})
}

// UpdateOrderStatusInput mirrors the JSON body the dashboard posts when a
// seller or admin drives an order forward.
type UpdateOrderStatusInput struct {
	OrderID        int64            `json:"orderId" binding:"required"`
	Status         string           `json:"status" binding:"required"`
	SellerLocation *models.GeoPoint `json:"sellerLocation"`
}

// UpdateOrderStatus is the handler for POST /v1/orders/update-status.
// It advances the order exactly one step; anything else is rejected.
func (h *Handlers) UpdateOrderStatus(c *gin.Context) {
	actorID := currentUserID(c)

	var input UpdateOrderStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields: orderId or status"})
		return
	}

	order, err := h.Orders.Advance(c, orders.AdvanceInput{
		OrderID:        input.OrderID,
		Target:         input.Status,
		ActorID:        actorID,
		ActorIsAdmin:   currentUserIsAdmin(c),
		SellerLocation: input.SellerLocation,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order updated successfully",
		"order":   order,
	})
}

// GetMyOrders is the handler for GET /v1/orders/mine?role=buyer|seller.
func (h *Handlers) GetMyOrders(c *gin.Context) {
	userID := currentUserID(c)

	field := "buyer_id"
	if c.Query("role") == "seller" {
		field = "seller_id"
	}

	query := `
		SELECT id, buyer_id, seller_id, product_id, price,
		       buyer_lat, buyer_lng, seller_lat, seller_lng, status, created_at
		FROM orders
		WHERE ` + field + ` = ?
		ORDER BY created_at DESC`

	rows, err := h.DB.Query(query, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}
	defer rows.Close()

	ordersList, err := scanOrders(rows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan order data"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": ordersList,
	})
}

// GetOrderDetails is the handler for GET /v1/orders/:id.
// Both geolocations are included so the client can draw the delivery route.
func (h *Handlers) GetOrderDetails(c *gin.Context) {
	userID := currentUserID(c)
	orderID := c.Param("id")

	order, err := h.scanOneOrder(orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
		return
	}

	// Only the participants and admins may see an order.
	if order.BuyerID != userID && order.SellerID != userID && !currentUserIsAdmin(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	// Attach the product snapshot for the details screen.
	var product models.Product
	err = h.DB.QueryRow(`
		SELECT id, owner_id, title, description, seller_price, admin_commission,
		       final_price, commission_rate, image_url, status, buyer_id, created_at
		FROM products WHERE id = ?`, order.ProductID).Scan(
		&product.ID, &product.OwnerID, &product.Title, &product.Description,
		&product.SellerPrice, &product.AdminCommission, &product.FinalPrice,
		&product.CommissionRate, &product.ImageURL, &product.Status,
		&product.BuyerID, &product.CreatedAt,
	)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order":   order,
		"product": product,
	})
}

func (h *Handlers) scanOneOrder(orderID string) (*models.Order, error) {
	var (
		o         models.Order
		sellerLat sql.NullFloat64
		sellerLng sql.NullFloat64
	)
	err := h.DB.QueryRow(`
		SELECT id, buyer_id, seller_id, product_id, price,
		       buyer_lat, buyer_lng, seller_lat, seller_lng, status, created_at
		FROM orders WHERE id = ?`, orderID).Scan(
		&o.ID, &o.BuyerID, &o.SellerID, &o.ProductID, &o.Price,
		&o.BuyerLocation.Latitude, &o.BuyerLocation.Longitude,
		&sellerLat, &sellerLng, &o.Status, &o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if sellerLat.Valid && sellerLng.Valid {
		o.SellerLocation = &models.GeoPoint{Latitude: sellerLat.Float64, Longitude: sellerLng.Float64}
	}
	return &o, nil
}

func scanOrders(rows *sql.Rows) ([]*models.Order, error) {
	ordersList := []*models.Order{}
	for rows.Next() {
		var (
			o         models.Order
			sellerLat sql.NullFloat64
			sellerLng sql.NullFloat64
		)
		if err := rows.Scan(
			&o.ID, &o.BuyerID, &o.SellerID, &o.ProductID, &o.Price,
			&o.BuyerLocation.Latitude, &o.BuyerLocation.Longitude,
			&sellerLat, &sellerLng, &o.Status, &o.CreatedAt,
		); err != nil {
			return nil, err
		}
		if sellerLat.Valid && sellerLng.Valid {
			o.SellerLocation = &models.GeoPoint{Latitude: sellerLat.Float64, Longitude: sellerLng.Float64}
		}
		ordersList = append(ordersList, &o)
	}
	return ordersList, rows.Err()
}
