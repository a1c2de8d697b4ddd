package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-sql-driver/mysql"

	"github.com/homeplate/homeplate-golang/internal/auth"
	"github.com/homeplate/homeplate-golang/internal/models"
)

// --- User Registration ---

// RegisterUserInput is separate from models.User so clients cannot supply
// an id, role, or commission rate.
type RegisterUserInput struct {
	FullName string `json:"fullName" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Address  string `json:"address"`
}

// Register is the handler for POST /v1/register.
// Every account starts as a regular user with the platform default
// commission rate; the admin role is assigned at provisioning time, never
// through this endpoint.
func (h *Handlers) Register(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input RegisterUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 2. --- Hash the Password ---
	var password models.Password
	if err := password.Set(input.Password); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := &models.User{
		Email:          strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash:   password.Hash,
		FullName:       input.FullName,
		Role:           models.RoleUser,
		Banned:         false,
		CommissionRate: h.Cfg.DefaultCommissionRate,
		CreatedAt:      time.Now(),
	}
	if input.Address != "" {
		user.Address = &input.Address
	}

	// 3. --- Save to Database ---
	query := `
		INSERT INTO users
		(email, password_hash, full_name, role, banned, commission_rate, address, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := h.DB.Exec(query,
		user.Email, user.PasswordHash, user.FullName, user.Role,
		user.Banned, user.CommissionRate, user.Address, user.CreatedAt)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}
	user.ID, _ = result.LastInsertId()

	// 4. --- Issue Token ---
	token, err := auth.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user":  user,
	})
}

// --- Login ---

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login is the handler for POST /v1/login.
func (h *Handlers) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 1. --- Fetch the User ---
	var user models.User
	query := `
		SELECT id, email, password_hash, full_name, role, banned, commission_rate, address, created_at
		FROM users WHERE email = ?`
	err := h.DB.QueryRow(query, strings.ToLower(strings.TrimSpace(input.Email))).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.FullName,
		&user.Role, &user.Banned, &user.CommissionRate, &user.Address, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up account"})
		return
	}

	// 2. --- Check the Password ---
	password := models.Password{Hash: user.PasswordHash}
	match, err := password.Matches(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify password"})
		return
	}
	if !match {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	if user.Banned {
		c.JSON(http.StatusForbidden, gin.H{"error": "Your account has been banned"})
		return
	}

	// 3. --- Issue Token ---
	token, err := auth.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

// --- Device Token Registration ---

type UpdateFCMTokenInput struct {
	FCMToken string `json:"fcmToken" binding:"required"`
}

// UpdateFCMToken is the handler for POST /v1/users/update-fcm-token.
// It stores the push token the notification dispatcher delivers to.
func (h *Handlers) UpdateFCMToken(c *gin.Context) {
	userID := currentUserID(c)

	var input UpdateFCMTokenInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required field: fcmToken"})
		return
	}

	_, err := h.DB.Exec("UPDATE users SET fcm_token = ? WHERE id = ?", input.FCMToken, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save device token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Device token updated",
	})
}

// GetMe is the handler for GET /v1/profile/me.
func (h *Handlers) GetMe(c *gin.Context) {
	userID := currentUserID(c)

	var user models.User
	query := `
		SELECT id, email, full_name, role, banned, commission_rate, address, created_at
		FROM users WHERE id = ?`
	err := h.DB.QueryRow(query, userID).Scan(
		&user.ID, &user.Email, &user.FullName, &user.Role,
		&user.Banned, &user.CommissionRate, &user.Address, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}
