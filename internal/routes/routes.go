package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/homeplate/homeplate-golang/internal/handlers"
	"github.com/homeplate/homeplate-golang/internal/middleware"
)

// CORSMiddleware tells the browser the frontend origin may talk to us,
// including the Authorization header used for JWT tokens.
func CORSMiddleware(allowedOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		// Preflight OPTIONS gets an empty 204.
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func SetupRouter(h *handlers.Handlers, allowedOrigin string) *gin.Engine {
	router := gin.Default()

	router.Use(CORSMiddleware(allowedOrigin))

	// Uploaded dish images are served statically.
	router.Static("/uploads", h.Cfg.UploadDir)

	v1 := router.Group("/v1")
	{
		// --- Ping Route (Public) ---
		v1.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong!"})
		})

		// --- Auth Routes (Public) ---
		v1.POST("/register", h.Register)
		v1.POST("/login", h.Login)

		// --- Public Catalog Routes ---
		v1.GET("/products", h.GetProducts)
		v1.GET("/products/:id", h.GetProduct)

		// --- Protected Routes (Login Required) ---
		auth := v1.Group("/")
		auth.Use(middleware.AuthMiddleware(h.DB))
		{
			auth.GET("/profile/me", h.GetMe)
			auth.GET("/dashboard/seller", h.GetSellerStats)

			// --- Seller Routes ---
			auth.POST("/products", h.CreateProduct)
			auth.GET("/products/mine", h.GetMyProducts)
			auth.PATCH("/products/:id/availability", h.ToggleAvailability)
			auth.DELETE("/products/:id", h.DeleteProduct)
			auth.POST("/upload", h.UploadFile)

			// --- Order Routes ---
			auth.POST("/orders", h.PlaceOrder)
			auth.POST("/orders/update-status", h.UpdateOrderStatus)
			auth.GET("/orders/mine", h.GetMyOrders)
			auth.GET("/orders/:id", h.GetOrderDetails)

			// --- Notification Routes ---
			auth.GET("/notifications", h.GetMyNotifications)
			auth.PATCH("/notifications/:id/read", h.MarkNotificationAsRead)
			auth.POST("/users/update-fcm-token", h.UpdateFCMToken)
		}

		// --- Admin-Only Routes ---
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthMiddleware(h.DB))
		admin.Use(middleware.AdminMiddleware())
		{
			admin.GET("/dashboard", h.GetAdminStats)
			admin.GET("/users", h.GetAllUsers)
			admin.PATCH("/users/:id/ban", h.BanUser)
			admin.PATCH("/users/:id/commission-rate", h.SetUserCommissionRate)
			admin.PATCH("/settings/commission-rate", h.SetGlobalCommissionRate)

			admin.GET("/orders", h.GetAllOrders)
			admin.GET("/products", h.GetAllProducts)

			admin.POST("/notifications", h.SendNotification)
		}
	}

	return router
}
