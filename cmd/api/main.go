package main

import (
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/homeplate/homeplate-golang/internal/auth"
	"github.com/homeplate/homeplate-golang/internal/commission"
	"github.com/homeplate/homeplate-golang/internal/config"
	"github.com/homeplate/homeplate-golang/internal/database"
	"github.com/homeplate/homeplate-golang/internal/handlers"
	"github.com/homeplate/homeplate-golang/internal/logger"
	"github.com/homeplate/homeplate-golang/internal/notify"
	"github.com/homeplate/homeplate-golang/internal/orders"
	"github.com/homeplate/homeplate-golang/internal/routes"
)

func main() {
	// 0. --- Load Environment Variables (.env) ---
	if err := godotenv.Load(); err != nil {
		log.Println("WARNING: Could not find or load .env file. Relying on system environment variables.")
	}

	cfg := config.Load()

	// 1. --- Logger ---
	zlog := logger.Setup(cfg.LogMode, cfg.LogFile)
	defer zlog.Sync()

	if cfg.DSN == "" {
		zap.S().Fatal("DB_DSN environment variable is not set")
	}
	if cfg.JWTSecret == "" {
		zap.S().Fatal("JWT_SECRET environment variable is not set")
	}
	auth.Init(cfg.JWTSecret)

	// 2. --- Database Connection ---
	db, err := database.OpenDB(cfg.DSN)
	if err != nil {
		zap.S().Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	zap.S().Info("Database connection pool established")

	// 3. --- Notification Dispatcher ---
	// Push delivery is best-effort and runs on its own workers so order
	// mutations never wait on the gateway.
	sender := notify.NewFCMSender(cfg.PushGatewayURL, cfg.PushServerKey)
	dispatcher := notify.NewDispatcher(notify.NewMySQLStore(db), sender, zlog,
		cfg.NotifyQueueSize, cfg.NotifyWorkers)
	defer dispatcher.Close()

	// 4. --- Core Services ---
	commissionSvc := commission.NewService(commission.NewMySQLStore(db), zlog).
		WithDefaultRate(cfg.DefaultCommissionRate)
	orderSvc := orders.NewService(orders.NewMySQLStore(db), dispatcher, zlog)

	app := &handlers.Handlers{
		DB:         db,
		Orders:     orderSvc,
		Commission: commissionSvc,
		Notifier:   dispatcher,
		Cfg:        cfg,
	}

	// --- Router Setup ---
	router := routes.SetupRouter(app, cfg.FrontendOrigin)

	// --- Start Server ---
	zap.S().Infof("Starting HomePlate API server on %s", cfg.Addr)
	if err := router.Run(cfg.Addr); err != nil {
		zap.S().Fatalf("Failed to start server: %v", err)
	}
}
