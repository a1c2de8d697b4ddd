package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/homeplate/homeplate-golang/internal/models"
	"github.com/homeplate/homeplate-golang/internal/notify"
)

//
// --- Notification Handlers ---
//

// GetMyNotifications is the handler for GET /v1/notifications.
// It retrieves notifications for the logged-in user, unread and newest first.
func (h *Handlers) GetMyNotifications(c *gin.Context) {
	userID := currentUserID(c)

	// Limit to 50 to avoid performance issues.
	query := `
		SELECT id, user_id, title, body, category, is_read, created_at
		FROM notifications
		WHERE user_id = ?
		ORDER BY is_read ASC, created_at DESC
		LIMIT 50`

	rows, err := h.DB.Query(query, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	defer rows.Close()

	notifications := []*models.Notification{}
	for rows.Next() {
		var notif models.Notification
		if err := rows.Scan(
			&notif.ID,
			&notif.UserID,
			&notif.Title,
			&notif.Body,
			&notif.Category,
			&notif.IsRead,
			&notif.CreatedAt,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan notification row"})
			return
		}
		notifications = append(notifications, &notif)
	}
	if err = rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating notification rows"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
	})
}

// MarkNotificationAsRead is the handler for PATCH /v1/notifications/:id/read.
func (h *Handlers) MarkNotificationAsRead(c *gin.Context) {
	userID := currentUserID(c)
	notificationID := c.Param("id")

	// The user_id predicate stops users from marking someone else's
	// notifications as read.
	query := `
		UPDATE notifications
		SET is_read = 1
		WHERE id = ? AND user_id = ?`

	result, err := h.DB.Exec(query, notificationID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification"})
		return
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check affected rows"})
		return
	}
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found or you do not have permission to update it"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}

type SendNotificationInput struct {
	RecipientID int64  `json:"recipientId" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Body        string `json:"body" binding:"required"`
	Category    string `json:"category"`
}

// SendNotification is the handler for POST /v1/admin/notifications.
// Delivery is best-effort: the payload is queued and the request returns
// immediately; a gateway failure later is logged, not surfaced here.
func (h *Handlers) SendNotification(c *gin.Context) {
	var input SendNotificationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields: recipientId, title, or body"})
		return
	}

	category := input.Category
	if category == "" {
		category = "general"
	}

	queued := h.Notifier.Enqueue(notify.Payload{
		RecipientID: input.RecipientID,
		Title:       input.Title,
		Body:        input.Body,
		Category:    category,
	})

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"queued":  queued,
	})
}
