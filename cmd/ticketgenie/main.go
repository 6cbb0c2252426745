package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ticketgenie/internal/auth"
	auth_api "ticketgenie/internal/auth/api"
	"ticketgenie/internal/catalog"
	"ticketgenie/internal/config"
	"ticketgenie/internal/dialogue"
	dialogue_api "ticketgenie/internal/dialogue/api"
	"ticketgenie/internal/intent"
	"ticketgenie/internal/issuance"
	showlock "ticketgenie/internal/issuance/redis"
	"ticketgenie/internal/kafka"
	"ticketgenie/internal/ledger"
	"ticketgenie/internal/logger"
	"ticketgenie/internal/notify"
	"ticketgenie/internal/ticket"
)

func connectDatabase(cfg config.DatabaseConfig, log *logger.Logger) *bun.DB {
	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		log.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", cfg.DSN)
		if err == nil {
			err = sqldb.Ping()
		}
		if err == nil {
			break
		}
		log.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.MaxLifetime)

	log.Info("DATABASE", "✅ PostgreSQL connection successful")
	return bun.NewDB(sqldb, pgdialect.New())
}

func connectRedis(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{Addr: cfg.Addr})
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Redis connection error: %v", err))
	}
	log.Info("DATABASE", fmt.Sprintf("✅ Redis connection successful to %s", cfg.Addr))
	return client
}

func main() {
	log := logger.NewLogger()
	defer log.Close()

	log.Info("APP", "Starting TicketGenie initialization")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	}
	cfg := config.Load()

	ctx := context.Background()
	bunDB := connectDatabase(cfg.Database, log)
	defer bunDB.Close()

	redisClient := connectRedis(ctx, cfg.Redis, log)
	defer redisClient.Close()

	var producer *kafka.Producer
	if cfg.Kafka.Enabled {
		producer = kafka.NewProducer(cfg.Kafka.Brokers)
		defer producer.Close()
		topics := []string{cfg.Kafka.Topics.BookingCreated, cfg.Kafka.Topics.BookingCancelled}
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, topics); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		} else {
			log.Info("KAFKA", "Required topics ensured successfully")
		}
	} else {
		log.Warn("KAFKA", "Kafka disabled; booking events will not be published")
	}

	classifier, err := intent.Load(cfg.Intent.Path)
	if err != nil {
		log.Fatal("INTENT", fmt.Sprintf("Failed to load intents from %s: %v", cfg.Intent.Path, err))
	}
	log.Info("INTENT", fmt.Sprintf("Intent classifier loaded from %s", cfg.Intent.Path))

	catalogDB := &catalog.DB{Bun: bunDB}
	ledgerDB := &ledger.DB{Bun: bunDB}
	renderer := ticket.NewRenderer(cfg.Ticket)
	mailer := notify.NewMailer(cfg.Email)
	lock := showlock.NewLock(redisClient, cfg.Redis.LockTTL)

	var events issuance.EventPublisher
	if producer != nil {
		events = producer
	}
	issuer := issuance.NewService(catalogDB, ledgerDB, lock, renderer, mailer, events, cfg.Kafka.Topics, log)
	if cfg.Email.SendTimeout > 0 {
		issuer.DeliveryTimeout = cfg.Email.SendTimeout
	}

	sessions := dialogue.NewManager()
	machine := dialogue.NewMachine(catalogDB, issuer, classifier, log)

	authService := auth.NewService(&auth.DB{Bun: bunDB}, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authHandler := &auth_api.Handler{Auth: authService, Sessions: sessions, Logger: log}
	chatHandler := &dialogue_api.Handler{
		Machine:  machine,
		Sessions: sessions,
		Catalog:  catalogDB,
		Ledger:   ledgerDB,
		Renderer: renderer,
		Logger:   log,
	}

	log.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.Signup)
		r.Post("/login", authHandler.Login)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(authService))

		r.Post("/api/auth/logout", authHandler.Logout)
		r.Get("/api/shows", chatHandler.ListShows)
		r.Route("/api/chat", func(r chi.Router) {
			r.Post("/", chatHandler.Chat)
			r.Get("/transcript", chatHandler.Transcript)
			r.Post("/reset", chatHandler.Reset)
		})
		r.Get("/api/bookings", chatHandler.ListBookings)
		r.Get("/api/bookings/{bookingID}/ticket", chatHandler.DownloadTicket)
	})
	log.Info("ROUTER", "Auth, chat and ticket routes registered")

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("🚀 TicketGenie running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		log.Info("HTTP", "✅ TicketGenie shutdown complete")
	}
}
