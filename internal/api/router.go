package api

import (
	"github.com/muddasirfaiyaj66/nirapoth-backend-sub002/config"
	adminDebt "github.com/muddasirfaiyaj66/nirapoth-backend-sub002/internal/api/v1/admin/debt"
	adminGem "github.com/muddasirfaiyaj66/nirapoth-backend-sub002/internal/api/v1/admin/gem"
	debtRoutes "github.com/muddasirfaiyaj66/nirapoth-backend-sub002/internal/api/v1/debt"
	gemRoutes "github.com/muddasirfaiyaj66/nirapoth-backend-sub002/internal/api/v1/gem"
	paymentRoutes "github.com/muddasirfaiyaj66/nirapoth-backend-sub002/internal/api/v1/payment"
	"github.com/muddasirfaiyaj66/nirapoth-backend-sub002/internal/middleware"
	"github.com/muddasirfaiyaj66/nirapoth-backend-sub002/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// NewRouter wires the services and mounts the HTTP surface. Redis is
// optional: without it, notifications are dropped and the late fee
// scheduler runs without the cross-instance lock.
func NewRouter(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	var notifier services.Notifier = services.NopNotifier{}
	if rdb != nil {
		notifier = services.NewRedisNotifier(rdb, cfg.NotifyQueueKey)
	}

	balanceSvc := services.NewBalanceService(db)
	gemSvc := services.NewGemService(db, notifier)
	debtSvc := services.NewDebtService(db, balanceSvc, notifier)
	paymentSvc := services.NewPaymentService(db, debtSvc, notifier, cfg.TxHashSecret)

	router := gin.New()
	router.Use(middleware.Logger(), gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:8080"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// API v1
	v1 := router.Group("/api/v1")
	{
		gemRoutes.RegisterRoutes(v1, gemRoutes.NewHandler(gemSvc))
		debtRoutes.RegisterRoutes(v1, debtRoutes.NewHandler(debtSvc))
		paymentRoutes.RegisterRoutes(v1, paymentRoutes.NewHandler(paymentSvc, cfg.NotifyBaseURL))

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AdminAuthMiddleware())
		{
			adminGem.RegisterRoutes(admin, adminGem.NewHandler(gemSvc))
			adminDebt.RegisterRoutes(admin, adminDebt.NewHandler(debtSvc))
		}
	}

	return router
}
