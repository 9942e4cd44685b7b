package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/example/orderflow/internal/config"
	"github.com/example/orderflow/internal/infrastructure/store"
	"github.com/example/orderflow/internal/merchants"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	var cfg config.Directory
	if err := config.Load(&cfg); err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	db, err := store.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer db.Close()
	if err := store.Migrate(db, store.SchemaMerchants); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	handlers := merchants.NewHandlers(store.NewPostgresMerchantStore(db), logger)
	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: merchants.NewRouter(handlers),
	}

	go func() {
		logger.Info("merchant service listening", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	server.Shutdown(shutdownCtx)
}
