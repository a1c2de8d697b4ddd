package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

//
// --- Seller Dashboard Stats ---
//

type SellerStats struct {
	AvailableDishes int     `json:"availableDishes"`
	SoldDishes      int     `json:"soldDishes"`
	PendingOrders   int     `json:"pendingOrders"`
	ConfirmedOrders int     `json:"confirmedOrders"`
	TotalEarned     float64 `json:"totalEarned"` // Seller share of delivered orders
}

// GetSellerStats returns KPI data for the seller dashboard
// GET /v1/dashboard/seller
func (h *Handlers) GetSellerStats(c *gin.Context) {
	sellerID := currentUserID(c)

	stats := SellerStats{}

	// 1. Listing Counts
	err := h.DB.QueryRow("SELECT COUNT(*) FROM products WHERE owner_id = ? AND status = 'available'", sellerID).Scan(&stats.AvailableDishes)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count available dishes"})
		return
	}
	err = h.DB.QueryRow("SELECT COUNT(*) FROM products WHERE owner_id = ? AND status = 'sold'", sellerID).Scan(&stats.SoldDishes)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count sold dishes"})
		return
	}

	// 2. Order Pipeline Counts
	err = h.DB.QueryRow("SELECT COUNT(*) FROM orders WHERE seller_id = ? AND status = 'pending'", sellerID).Scan(&stats.PendingOrders)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count pending orders"})
		return
	}
	err = h.DB.QueryRow("SELECT COUNT(*) FROM orders WHERE seller_id = ? AND status = 'confirmed'", sellerID).Scan(&stats.ConfirmedOrders)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count confirmed orders"})
		return
	}

	// 3. Total Earned (seller price portion of delivered orders)
	// COALESCE so an empty result set reads as 0 instead of NULL.
	queryEarned := `
		SELECT COALESCE(SUM(p.seller_price), 0)
		FROM orders o
		JOIN products p ON o.product_id = p.id
		WHERE o.seller_id = ? AND o.status = 'delivered'
	`
	err = h.DB.QueryRow(queryEarned, sellerID).Scan(&stats.TotalEarned)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to calculate earnings"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// --- Admin Dashboard Stats ---

type AdminStats struct {
	TotalUsers       int     `json:"totalUsers"`
	BannedUsers      int     `json:"bannedUsers"`
	AvailableDishes  int     `json:"availableDishes"`
	PendingOrders    int     `json:"pendingOrders"`
	DeliveredOrders  int     `json:"deliveredOrders"`
	CommissionEarned float64 `json:"commissionEarned"` // Platform share of delivered orders
}

// GetAdminStats returns KPI data for the admin dashboard
// GET /v1/admin/dashboard
func (h *Handlers) GetAdminStats(c *gin.Context) {
	stats := AdminStats{}

	// 1. User Counts
	err := h.DB.QueryRow("SELECT COUNT(*) FROM users WHERE role = 'user'").Scan(&stats.TotalUsers)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count users"})
		return
	}
	err = h.DB.QueryRow("SELECT COUNT(*) FROM users WHERE banned = TRUE").Scan(&stats.BannedUsers)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count banned users"})
		return
	}

	// 2. Marketplace Counts
	err = h.DB.QueryRow("SELECT COUNT(*) FROM products WHERE status = 'available'").Scan(&stats.AvailableDishes)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count available dishes"})
		return
	}
	err = h.DB.QueryRow("SELECT COUNT(*) FROM orders WHERE status = 'pending'").Scan(&stats.PendingOrders)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count pending orders"})
		return
	}
	err = h.DB.QueryRow("SELECT COUNT(*) FROM orders WHERE status = 'delivered'").Scan(&stats.DeliveredOrders)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count delivered orders"})
		return
	}

	// 3. Commission Earned on delivered orders
	queryCommission := `
		SELECT COALESCE(SUM(p.admin_commission), 0)
		FROM orders o
		JOIN products p ON o.product_id = p.id
		WHERE o.status = 'delivered'
	`
	err = h.DB.QueryRow(queryCommission).Scan(&stats.CommissionEarned)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to calculate commission"})
		return
	}

	c.JSON(http.StatusOK, stats)
}
