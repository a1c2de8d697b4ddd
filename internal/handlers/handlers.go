package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/homeplate/homeplate-golang/internal/commission"
	"github.com/homeplate/homeplate-golang/internal/config"
	"github.com/homeplate/homeplate-golang/internal/errs"
	"github.com/homeplate/homeplate-golang/internal/notify"
	"github.com/homeplate/homeplate-golang/internal/orders"
)

// Handlers struct holds all dependencies for our handlers.
type Handlers struct {
	DB         *sql.DB
	Orders     *orders.Service
	Commission *commission.Service
	Notifier   *notify.Dispatcher
	Cfg        *config.Config
}

// currentUserID reads the authenticated user set by AuthMiddleware.
func currentUserID(c *gin.Context) int64 {
	userID_raw, _ := c.Get("userID")
	id, _ := userID_raw.(int64)
	return id
}

func currentUserIsAdmin(c *gin.Context) bool {
	role, _ := c.Get("userRole")
	return role == "admin"
}

// respondError maps the domain error taxonomy onto HTTP status codes.
// Unexpected errors are logged and hidden behind a generic message.
func respondError(c *gin.Context, err error) {
	switch {
	case errs.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errs.IsConflict(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errs.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errs.IsPermission(err):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errs.IsDependency(err):
		zap.L().Error("dependency failure", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "A backing service is unavailable, please try again"})
	default:
		zap.L().Error("unexpected handler error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
	}
}
