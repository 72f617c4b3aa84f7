// Package main запускает HTTP-сервер сервиса стирки ковров.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/carpetwash-system/internal/config"
	"github.com/mmeshcher/carpetwash-system/internal/handler"
	"github.com/mmeshcher/carpetwash-system/internal/locations"
	"github.com/mmeshcher/carpetwash-system/internal/middleware"
	"github.com/mmeshcher/carpetwash-system/internal/oauth"
	"github.com/mmeshcher/carpetwash-system/internal/pricing"
	"github.com/mmeshcher/carpetwash-system/internal/repository"
	"github.com/mmeshcher/carpetwash-system/internal/service"
)

func main() {
	// Денежные суммы сериализуются числами, как их ожидают клиенты API.
	decimal.MarshalJSONWithoutQuotes = true

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	repo, err := repository.NewPostgresRepository(cfg.DatabaseURI)
	if err != nil {
		sugar.Fatalw("database initialization error", "error", err.Error())
	}
	defer repo.Close()

	var oauthClient service.OAuthClient
	if cfg.OAuthAddress != "" {
		oauthClient = oauth.NewClient(cfg.OAuthAddress)
	}

	svc := service.NewService(repo, oauthClient, pricing.DefaultTable(), locations.Default())
	defer svc.Close()

	authMiddleware := middleware.NewAuthMiddleware(svc)
	h := handler.NewHandler(svc, logger, authMiddleware)

	r := h.SetupRouter()

	server := &http.Server{
		Addr:    cfg.RunAddress,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Запуск HTTP-сервера
	g.Go(func() error {
		sugar.Infow("starting carpetwash server", "addr", cfg.RunAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}
