package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ignite/trader-link/internal/api"
	"github.com/ignite/trader-link/internal/cache"
	"github.com/ignite/trader-link/internal/config"
	"github.com/ignite/trader-link/internal/domain"
	"github.com/ignite/trader-link/internal/errlog"
	"github.com/ignite/trader-link/internal/events"
	"github.com/ignite/trader-link/internal/mailer"
	"github.com/ignite/trader-link/internal/pkg/logger"
	"github.com/ignite/trader-link/internal/repository/memory"
	"github.com/ignite/trader-link/internal/repository/postgres"
	"github.com/ignite/trader-link/internal/service/linking"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"
)

// checkPortAvailable verifies that the target port is not already in use.
// This prevents confusion from stale processes occupying the port.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v", port, addr, err)
	}
	ln.Close()
	return nil
}

func main() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("DATABASE_URL") != "" {
		log.Println("[config] DATABASE_URL env override active")
	}

	host := cfg.Server.GetHost()
	if err := checkPortAvailable(host, cfg.Server.Port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}

	deps := linking.Deps{
		Errors:   errlog.NewLog(cfg.Provisioning.ErrorLogSize, nil),
		LoginURL: cfg.Provisioning.LoginURL,
	}

	// Stores: Postgres in production, in-memory for local development.
	if cfg.Database.URL != "" {
		db, err := sql.Open("postgres", cfg.Database.URL)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
		if err := db.Ping(); err != nil {
			log.Fatalf("Database ping failed: %v", err)
		}
		defer db.Close()

		deps.Listings = postgres.NewListingRepo(db)
		deps.Accounts = postgres.NewAccountRepo(db)
		deps.Attrs = postgres.NewAttributeRepo(db)
		logger.Info("database connected")
	} else {
		deps.Listings = memory.NewListingStore()
		deps.Accounts = memory.NewDirectory()
		deps.Attrs = memory.NewAttributeStore()
		logger.Warn("no DATABASE_URL set, using in-memory stores (data is not persisted)")
	}

	// Cache and event bus share one Redis connection; without Redis the
	// cache degrades to in-process and events stay local.
	ttl := time.Duration(cfg.Provisioning.CacheTTLSeconds) * time.Second
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatalf("Invalid Redis URL: %v", err)
		}
		client := redis.NewClient(opts)
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Fatalf("Redis ping failed: %v", err)
		}
		deps.Cache = cache.NewRedis(client, ttl)
		deps.Events = events.NewPublisher(client)
		logger.Info("redis connected", "cache_ttl", ttl.String())
	} else {
		deps.Cache = cache.NewMemory(ttl, nil)
		logger.Warn("no REDIS_URL set, using in-process cache")
	}

	// Credential mail: SES when a sender address is configured, otherwise
	// log-only so local provisioning still works end to end.
	var sender mailer.Sender
	if cfg.SES.FromAddress != "" {
		s, err := mailer.NewSESSender(context.Background(), cfg.SES.Region, cfg.SES.AccessKey, cfg.SES.SecretKey, cfg.SES.FromAddress, cfg.SES.FromName)
		if err != nil {
			log.Fatalf("Failed to initialize SES: %v", err)
		}
		sender = s
		logger.Info("ses sender initialized", "region", cfg.SES.Region)
	} else {
		sender = mailer.LogSender{}
		logger.Warn("no SES from_address configured, credential mails are logged only")
	}
	notifier, err := mailer.NewCredentialMailer(sender)
	if err != nil {
		log.Fatalf("Failed to build credential mailer: %v", err)
	}
	deps.Notifier = notifier

	svc := linking.NewService(deps)
	svc.OnConnectionEvent(func(evt domain.ConnectionEvent) {
		logger.Info("connection event",
			"type", evt.Type,
			"listing_id", evt.ListingID,
			"account_id", evt.AccountID,
			"mode", string(evt.Mode))
	})

	server := api.NewServer(cfg.Server, svc)

	// Setup graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		addr := fmt.Sprintf("%s:%d", host, cfg.Server.Port)
		log.Printf("Starting server on %s", addr)
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
