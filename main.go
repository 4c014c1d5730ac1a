package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/muddasirfaiyaj66/nirapoth-backend-sub002/config"
	"github.com/muddasirfaiyaj66/nirapoth-backend-sub002/internal/api"
	"github.com/muddasirfaiyaj66/nirapoth-backend-sub002/internal/database"
	"github.com/muddasirfaiyaj66/nirapoth-backend-sub002/internal/services"
	"github.com/muddasirfaiyaj66/nirapoth-backend-sub002/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	reconcile := flag.Bool("reconcile", false, "run the debt reconciliation pass and exit")
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := logger.InitLogger(&logger.Config{
		Level:      cfg.LogLevel,
		Filename:   cfg.LogFilename,
		MaxSize:    cfg.LogMaxSize,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAge,
		Compress:   cfg.LogCompress,
	}); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		zap.L().Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := database.Migrate(db); err != nil {
		zap.L().Fatal("Failed to migrate database", zap.Error(err))
	}

	if *reconcile {
		result, err := services.NewReconcileService(db, cfg.TxHashSecret).Run(context.Background())
		if err != nil {
			zap.L().Error("Reconciliation failed", zap.Error(err))
			os.Exit(1)
		}
		out, _ := json.Marshal(result)
		os.Stdout.Write(append(out, '\n'))
		return
	}

	// Redis is optional: without it, notifications are dropped and the late
	// fee sweep runs without the cross-instance lock.
	rdb, err := database.ConnectRedis(cfg)
	if err != nil {
		zap.L().Warn("Redis unavailable, continuing without it", zap.Error(err))
		rdb = nil
	}

	router := api.NewRouter(cfg, db, rdb)

	balanceSvc := services.NewBalanceService(db)
	var notifier services.Notifier = services.NopNotifier{}
	if rdb != nil {
		notifier = services.NewRedisNotifier(rdb, cfg.NotifyQueueKey)
	}
	debtSvc := services.NewDebtService(db, balanceSvc, notifier)

	scheduler := services.NewLateFeeScheduler(debtSvc, rdb, cfg.LateFeeSweepInterval)
	go scheduler.Start()
	defer scheduler.Stop()

	zap.L().Info("Server starting", zap.String("addr", *addr))
	if err := router.Run(*addr); err != nil {
		zap.L().Fatal("Server exited", zap.Error(err))
	}
}
