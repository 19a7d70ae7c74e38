package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/AnshRaj112/landing-backend/internal/config"
	"github.com/AnshRaj112/landing-backend/internal/database"
	"github.com/AnshRaj112/landing-backend/internal/handlers"
	"github.com/AnshRaj112/landing-backend/internal/middleware"
	"github.com/AnshRaj112/landing-backend/internal/routes"
	"github.com/AnshRaj112/landing-backend/internal/services"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Account directory
	var accounts services.AccountRepository
	if cfg.Storage == config.StorageMemory {
		log.Println("⚠️  WARNING: STORAGE=memory, accounts are lost on restart")
		accounts = services.NewMemoryAccountRepository()
	} else {
		log.Printf("Connecting to PostgreSQL...")
		if err := database.ConnectPostgres(cfg.PostgresURI); err != nil {
			log.Fatal("Failed to connect to PostgreSQL:", err)
		}
		defer database.DisconnectPostgres()
		accounts = services.NewPostgresAccountRepository(database.PostgresDB)
	}

	// Expiring store for codes, tokens, sessions and rate limit counters
	var store services.KeyValueStore
	if cfg.Cache == config.CacheMemory {
		log.Println("⚠️  WARNING: CACHE=memory, codes and sessions are per-process")
		mem := services.NewMemoryStore(nil)
		mem.StartSweeper(ctx, time.Minute)
		store = mem
	} else {
		log.Printf("Connecting to Redis...")
		if err := database.ConnectRedis(ctx, cfg.RedisURI); err != nil {
			log.Fatal("Failed to connect to Redis:", err)
		}
		defer database.DisconnectRedis()
		store = services.NewRedisStore(database.RedisClient, "landing:")
	}

	verification := services.NewVerificationService(store, accounts, cfg.VerificationCodeTTL, cfg.VerificationTokenTTL)
	auth := services.NewAuthService(accounts)
	sessions := services.NewSessionManager(store, cfg.SessionCookie, cfg.SessionTTL, cfg.IsProduction())
	pages := handlers.NewRenderer(cfg.TemplateDir, cfg.IsProduction())
	h := handlers.New(accounts, verification, auth, sessions, pages)

	if _, err := os.Stat(cfg.TemplateDir); err != nil {
		log.Printf("⚠️  WARNING: template directory %q not readable, pages fall back to plain text", cfg.TemplateDir)
	}

	// Setup router
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Production: SecurityHeaders → GlobalRateLimit → LoginRateLimit
	// Non-production: store-backed per-IP rate limit only
	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity() {
			r.Use(mw)
		}
		log.Println("✅ Production security enabled (security headers, per-IP + login rate limiting)")
	} else {
		r.Use(middleware.RateLimit(store, middleware.RateLimitMaxRequests, middleware.RateLimitWindow))
	}

	r.Use(middleware.CurrentAccount(sessions, accounts))

	routes.SetupRoutes(r, h)

	log.Println("📋 Registered routes:")
	_ = chi.Walk(r, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		log.Printf("  %-6s %s", method, route)
		return nil
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("⚠️  shutdown: %v", err)
		}
	}()

	log.Printf("🚀 Landing backend running on :%s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("Failed to start server:", err)
	}
	log.Println("👋 Server stopped")
}
