package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rahim-jr/stripe-payment-tester-repo/internal/api"
	"github.com/rahim-jr/stripe-payment-tester-repo/internal/auth"
	"github.com/rahim-jr/stripe-payment-tester-repo/internal/config"
	"github.com/rahim-jr/stripe-payment-tester-repo/internal/logger"
	"github.com/rahim-jr/stripe-payment-tester-repo/internal/payments"
	"github.com/rahim-jr/stripe-payment-tester-repo/internal/store"
)

// Main entry point: wires config, database, services and the HTTP server.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New("shop-api", cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	st, err := store.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer st.Close()

	authService := auth.NewService(st, cfg.JWTSecret, cfg.JWTTTL)
	gateway := payments.NewStripe(cfg.StripeSecretKey, cfg.StripeWebhookSecret, cfg.FrontendURL)

	handler := api.NewHandler(st, authService, gateway, log)
	router := api.NewRouter(handler, cfg.FrontendURL)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info().Msg("shutting down")

	shCtx, shCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shCancel()
	if err := srv.Shutdown(shCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}
