package main

import (
	"context"
	"coursemaster/config"
	"coursemaster/database"
	"coursemaster/logger"
	"coursemaster/payment"
	"coursemaster/routers"
	"coursemaster/utils"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	cfg := config.Load()

	appLog, err := logger.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer appLog.Sync()

	db, err := database.ConnectDb(cfg, appLog)
	if err != nil {
		appLog.Fatal("failed to connect to database", "error", err)
	}
	appLog.Info("Connected to database", "driver", cfg.DBDriver)

	provider, err := payment.New(cfg)
	if err != nil {
		appLog.Fatal("failed to configure payment provider", "error", err)
	}

	server := routers.NewApp(routers.Deps{
		Config:    cfg,
		DB:        db,
		Log:       appLog,
		Notifier:  utils.NewNotifier(cfg, appLog),
		Provider:  provider,
		AccessLog: true,
	})

	scheduler, err := utils.InitializeOrderScheduler(cfg.OrderExpiryCron, cfg.OrderPendingTTL, server.Payments, appLog)
	if err != nil {
		appLog.Fatal("failed to start order scheduler", "error", err)
	}

	go func() {
		appLog.Info("Server is running", "port", cfg.Port, "env", cfg.AppEnv, "payment_provider", provider.Name())
		if err := server.App.Listen(":" + cfg.Port); err != nil {
			appLog.Fatal("server stopped", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down")

	<-scheduler.Stop().Done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.App.ShutdownWithContext(ctx); err != nil {
		appLog.Error("graceful shutdown failed", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
