package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/homeplate/homeplate-golang/internal/models"
)

//
// --- Admin: User Management ---
//

// GetAllUsers is the handler for GET /v1/admin/users.
func (h *Handlers) GetAllUsers(c *gin.Context) {
	query := `
		SELECT id, email, full_name, role, banned, commission_rate, address, created_at
		FROM users
		ORDER BY created_at DESC`

	rows, err := h.DB.Query(query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		var user models.User
		if err := rows.Scan(
			&user.ID, &user.Email, &user.FullName, &user.Role,
			&user.Banned, &user.CommissionRate, &user.Address, &user.CreatedAt,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan user row"})
			return
		}
		users = append(users, &user)
	}
	if err = rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating user rows"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
	})
}

type BanUserInput struct {
	Banned *bool `json:"banned" binding:"required"`
}

// BanUser is the handler for PATCH /v1/admin/users/:id/ban.
// A banned user keeps their data but can no longer authenticate actions;
// the auth middleware enforces the block.
func (h *Handlers) BanUser(c *gin.Context) {
	userID := c.Param("id")

	var input BanUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.DB.Exec(
		"UPDATE users SET banned = ? WHERE id = ? AND role != ?",
		*input.Banned, userID, models.RoleAdmin)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check affected rows"})
		return
	}
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found or cannot be banned"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"banned":  *input.Banned,
	})
}

//
// --- Admin: Catalog & Order Oversight ---
//

// GetAllOrders is the handler for GET /v1/admin/orders.
func (h *Handlers) GetAllOrders(c *gin.Context) {
	query := `
		SELECT id, buyer_id, seller_id, product_id, price,
		       buyer_lat, buyer_lng, seller_lat, seller_lng, status, created_at
		FROM orders
		ORDER BY created_at DESC`

	rows, err := h.DB.Query(query)
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

// GetAllProducts is the handler for GET /v1/admin/products.
// Unlike the public listing it includes sold products.
func (h *Handlers) GetAllProducts(c *gin.Context) {
	query := `
		SELECT id, owner_id, title, description, seller_price, admin_commission,
		       final_price, commission_rate, image_url, status, buyer_id, created_at
		FROM products
		ORDER BY created_at DESC`

	rows, err := h.DB.Query(query)
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

//
// --- Admin: Commission Rates ---
//

type SetCommissionRateInput struct {
	CommissionRate *float64 `json:"commissionRate" binding:"required"`
}

// SetUserCommissionRate is the handler for
// PATCH /v1/admin/users/:id/commission-rate.
// Products the seller already listed keep their stamped prices.
func (h *Handlers) SetUserCommissionRate(c *gin.Context) {
	sellerID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	var input SetCommissionRateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Commission.SetSellerRate(c, sellerID, *input.CommissionRate); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"commissionRate": *input.CommissionRate,
	})
}

// SetGlobalCommissionRate is the handler for
// PATCH /v1/admin/settings/commission-rate.
// It overwrites every seller's rate and reports the aggregate outcome;
// partial failure comes back in the response instead of being dropped.
func (h *Handlers) SetGlobalCommissionRate(c *gin.Context) {
	var input SetCommissionRateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.Commission.SetGlobalRate(c, *input.CommissionRate)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  len(result.Failures) == 0,
		"updated":  result.Updated,
		"failures": result.Failures,
	})
}
