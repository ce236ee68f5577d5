package main

import (
	"encoding/json"
	stdlog "log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/username/tradeguard/backend/src/config"
	"github.com/username/tradeguard/backend/src/database"
	"github.com/username/tradeguard/backend/src/engine"
	"github.com/username/tradeguard/backend/src/handlers"
	"github.com/username/tradeguard/backend/src/logger"
	"github.com/username/tradeguard/backend/src/repository"
	"github.com/username/tradeguard/backend/src/services"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded", "path", r.URL.Path)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowedOrigins := map[string]bool{
			"http://localhost:3000": true,
		}

		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, If-None-Match")
			w.Header().Set("Access-Control-Expose-Headers", "ETag")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)

	logger.L.Info("TradeGuard backend server starting...")

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	database.RunMigrations(config.Cfg.DatabasePath)

	historyCache := cache.New(config.Cfg.CacheExpiration, services.CacheCleanupInterval)

	clock := engine.SystemClock()
	repo := repository.NewSQLiteRepository(database.DB)
	machine := engine.NewStateMachine(config.Cfg.DedupWindow, clock)
	detector := engine.NewAnomalyDetector(engine.AnomalyConfig{
		VelocityLimit:     config.Cfg.VelocityLimit,
		VelocityWindow:    config.Cfg.VelocityWindow,
		TradingHoursStart: config.Cfg.TradingHoursStart,
		TradingHoursEnd:   config.Cfg.TradingHoursEnd,
		SigmaThreshold:    config.Cfg.SigmaThreshold,
		MinSample:         config.Cfg.MinAnomalySample,
	})
	notifier := services.NewNotifier()

	txService := services.NewTransactionService(repo, machine, clock, config.Cfg.DedupWindow, historyCache)
	anomalyService := services.NewAnomalyService(repo, detector, notifier)
	portfolioService := services.NewPortfolioService(repo, clock)
	reportService := services.NewReportService(repo)

	txHandler := handlers.NewTransactionHandler(txService)
	portfolioHandler := handlers.NewPortfolioHandler(portfolioService, reportService)
	anomalyHandler := handlers.NewAnomalyHandler(anomalyService)
	feeHandler := handlers.NewFeeHandler()

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(handlers.ContextualLoggerMiddleware)
	r.Use(enableCORS)
	r.Use(rateLimitMiddleware)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "TradeGuard Backend is running"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/transactions", txHandler.HandleSubmit)
		r.Post("/transactions/{id}/transition", txHandler.HandleTransition)
		r.Get("/transactions", txHandler.HandleGetHistory)

		r.Post("/portfolios/{id}/holdings", portfolioHandler.HandleGetHoldings)
		r.Get("/portfolios/{id}/report", portfolioHandler.HandleGetReport)
		r.Post("/portfolios/{id}/anomalies/scan", anomalyHandler.HandleScan)

		r.Get("/fees/quote", feeHandler.HandleQuote)
	})

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		stdlog.Fatalf("Failed to start server: %v", err)
	}
}
