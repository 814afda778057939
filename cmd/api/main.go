package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/linkbazaar/linkbazaar-api/internal/config"
	"github.com/linkbazaar/linkbazaar-api/internal/domain/auth"
	"github.com/linkbazaar/linkbazaar-api/internal/domain/fee"
	"github.com/linkbazaar/linkbazaar-api/internal/domain/notification"
	"github.com/linkbazaar/linkbazaar-api/internal/domain/order"
	"github.com/linkbazaar/linkbazaar-api/internal/domain/referral"
	"github.com/linkbazaar/linkbazaar-api/internal/domain/security"
	"github.com/linkbazaar/linkbazaar-api/internal/domain/settings"
	"github.com/linkbazaar/linkbazaar-api/internal/domain/stats"
	"github.com/linkbazaar/linkbazaar-api/internal/domain/transaction"
	"github.com/linkbazaar/linkbazaar-api/internal/domain/user"
	"github.com/linkbazaar/linkbazaar-api/internal/domain/wallet"
	"github.com/linkbazaar/linkbazaar-api/internal/middleware"
	"github.com/linkbazaar/linkbazaar-api/internal/pkg/database"
	"github.com/linkbazaar/linkbazaar-api/internal/pkg/jwt"
	"github.com/linkbazaar/linkbazaar-api/internal/pkg/logger"
	pkgresponse "github.com/linkbazaar/linkbazaar-api/internal/pkg/response"
)

const lockoutSweepInterval = 10 * time.Minute

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting LinkBazaar API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redisClient, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redisClient)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)

	// ---------- Repositories ----------
	userRepo := user.NewRepository(db)
	walletRepo := wallet.NewRepository(db)
	feeRepo := fee.NewRepository(db)
	settingsRepo := settings.NewRepository(db)
	transactionRepo := transaction.NewRepository(db)
	orderRepo := order.NewRepository(db)
	referralRepo := referral.NewRepository(db)
	securityRepo := security.NewRepository(db)
	notificationRepo := notification.NewRepository(db)
	statsRepo := stats.NewRepository(db)

	settingsCache := settings.NewCache(settingsRepo, redisClient)

	// ---------- WebSocket hub ----------
	hub := notification.NewHub()

	// ---------- Services ----------
	notificationService := notification.NewService(notificationRepo, hub)
	walletService := wallet.NewService(walletRepo, notificationService)
	securityService := security.NewService(securityRepo, settingsCache)
	referralService := referral.NewService(referralRepo, walletRepo, orderRepo, settingsRepo, notificationService)
	transactionService := transaction.NewService(transactionRepo, walletRepo, feeRepo, settingsRepo, userRepo, notificationService)
	orderService := order.NewService(orderRepo, walletRepo, feeRepo, settingsRepo, userRepo, statsRepo, referralService, notificationService)
	authService := auth.NewService(userRepo, jwtService, securityService, referralService)

	// ---------- Handlers ----------
	authHandler := auth.NewHandler(authService)
	walletHandler := wallet.NewHandler(walletService)
	transactionHandler := transaction.NewHandler(transactionService)
	orderHandler := order.NewHandler(orderService)
	settingsHandler := settings.NewHandler(settingsRepo, settingsCache)
	securityHandler := security.NewHandler(securityService)
	feeHandler := fee.NewHandler(feeRepo)
	notificationHandler := notification.NewHandler(notificationService, hub)
	statsHandler := stats.NewHandler(statsRepo)

	authMiddleware := middleware.Auth(jwtService)

	// Periodic cleanup of lapsed lockouts
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go func() {
		ticker := time.NewTicker(lockoutSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				securityService.SweepExpired(sweepCtx)
			}
		}
	}()

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/auth", authHandler.Routes(authMiddleware))
		r.Mount("/wallet", walletHandler.Routes(authMiddleware))
		r.Mount("/transactions", transactionHandler.Routes(authMiddleware))
		r.Mount("/orders", orderHandler.Routes(authMiddleware))
		r.Mount("/notifications", notificationHandler.Routes(authMiddleware))
		r.Mount("/stats", statsHandler.Routes())

		r.Route("/admin", func(r chi.Router) {
			r.Mount("/settings", settingsHandler.Routes(authMiddleware))
			r.Mount("/security", securityHandler.Routes(authMiddleware))
			r.Mount("/fees", feeHandler.Routes(authMiddleware))
		})
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	stopSweep()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
