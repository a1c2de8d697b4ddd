package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/homeplate/homeplate-golang/internal/models"
	"github.com/homeplate/homeplate-golang/internal/pricing"
)

// --- Inputs ---

type CreateProductInput struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description" binding:"required"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	ImageURL    string  `json:"imageUrl"`
}

// CreateProduct is the handler for POST /v1/products.
// The seller's current commission rate is resolved and the full price
// breakdown is stamped onto the product now; later rate changes never
// rewrite it.
func (h *Handlers) CreateProduct(c *gin.Context) {
	sellerID := currentUserID(c)

	var input CreateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 1. --- Resolve Rate & Compute Prices ---
	rate, err := h.Commission.EffectiveRate(c, sellerID)
	if err != nil {
		respondError(c, err)
		return
	}

	quote, err := pricing.Compute(input.Price, rate)
	if err != nil {
		respondError(c, err)
		return
	}

	product := &models.Product{
		OwnerID:         sellerID,
		Title:           input.Title,
		Description:     input.Description,
		SellerPrice:     quote.SellerPrice,
		AdminCommission: quote.AdminCommission,
		FinalPrice:      quote.FinalPrice,
		CommissionRate:  rate,
		Status:          models.ProductAvailable,
		CreatedAt:       time.Now(),
	}
	if input.ImageURL != "" {
		product.ImageURL = &input.ImageURL
	}

	// 2. --- Save to Database ---
	query := `
		INSERT INTO products
		(owner_id, title, description, seller_price, admin_commission, final_price,
		 commission_rate, image_url, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := h.DB.Exec(query,
		product.OwnerID, product.Title, product.Description,
		product.SellerPrice, product.AdminCommission, product.FinalPrice,
		product.CommissionRate, product.ImageURL, product.Status, product.CreatedAt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}
	product.ID, _ = result.LastInsertId()

	c.JSON(http.StatusCreated, gin.H{
		"product": product,
	})
}

// GetProducts is the handler for GET /v1/products.
// It returns available products, newest first, for the browse screen.
func (h *Handlers) GetProducts(c *gin.Context) {
	query := `
		SELECT id, owner_id, title, description, seller_price, admin_commission,
		       final_price, commission_rate, image_url, status, buyer_id, created_at
		FROM products
		WHERE status = ?
		ORDER BY created_at DESC`

	rows, err := h.DB.Query(query, models.ProductAvailable)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	defer rows.Close()

	products, err := scanProducts(rows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan product row"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
	})
}

// GetProduct is the handler for GET /v1/products/:id.
func (h *Handlers) GetProduct(c *gin.Context) {
	productID := c.Param("id")

	var product models.Product
	query := `
		SELECT id, owner_id, title, description, seller_price, admin_commission,
		       final_price, commission_rate, image_url, status, buyer_id, created_at
		FROM products WHERE id = ?`
	err := h.DB.QueryRow(query, productID).Scan(
		&product.ID, &product.OwnerID, &product.Title, &product.Description,
		&product.SellerPrice, &product.AdminCommission, &product.FinalPrice,
		&product.CommissionRate, &product.ImageURL, &product.Status,
		&product.BuyerID, &product.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// GetMyProducts is the handler for GET /v1/products/mine.
func (h *Handlers) GetMyProducts(c *gin.Context) {
	sellerID := currentUserID(c)

	query := `
		SELECT id, owner_id, title, description, seller_price, admin_commission,
		       final_price, commission_rate, image_url, status, buyer_id, created_at
		FROM products
		WHERE owner_id = ?
		ORDER BY created_at DESC`

	rows, err := h.DB.Query(query, sellerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	defer rows.Close()

	products, err := scanProducts(rows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan product row"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
	})
}

type ToggleAvailabilityInput struct {
	Status string `json:"status" binding:"required,oneof=available sold"`
}

// ToggleAvailability is the handler for PATCH /v1/products/:id/availability.
// This is the only path that moves a product back from 'sold' to
// 'available'; the system itself never reverts a sale.
func (h *Handlers) ToggleAvailability(c *gin.Context) {
	userID := currentUserID(c)
	productID := c.Param("id")

	var input ToggleAvailabilityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Only the owner (or an admin) may toggle. Relisting clears the buyer.
	var (
		query string
		args  []interface{}
	)
	if input.Status == models.ProductAvailable {
		query = "UPDATE products SET status = ?, buyer_id = NULL WHERE id = ?"
		args = []interface{}{input.Status, productID}
	} else {
		query = "UPDATE products SET status = ? WHERE id = ?"
		args = []interface{}{input.Status, productID}
	}
	if !currentUserIsAdmin(c) {
		query += " AND owner_id = ?"
		args = append(args, userID)
	}

	result, err := h.DB.Exec(query, args...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check affected rows"})
		return
	}
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found or you do not own it"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"status":  input.Status,
	})
}

// DeleteProduct is the handler for DELETE /v1/products/:id.
func (h *Handlers) DeleteProduct(c *gin.Context) {
	userID := currentUserID(c)
	productID := c.Param("id")

	query := "DELETE FROM products WHERE id = ?"
	args := []interface{}{productID}
	if !currentUserIsAdmin(c) {
		query += " AND owner_id = ?"
		args = append(args, userID)
	}

	result, err := h.DB.Exec(query, args...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check affected rows"})
		return
	}
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found or you do not own it"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func scanProducts(rows *sql.Rows) ([]*models.Product, error) {
	products := []*models.Product{}
	for rows.Next() {
		var product models.Product
		if err := rows.Scan(
			&product.ID, &product.OwnerID, &product.Title, &product.Description,
			&product.SellerPrice, &product.AdminCommission, &product.FinalPrice,
			&product.CommissionRate, &product.ImageURL, &product.Status,
			&product.BuyerID, &product.CreatedAt,
		); err != nil {
			return nil, err
		}
		products = append(products, &product)
	}
	return products, rows.Err()
}
