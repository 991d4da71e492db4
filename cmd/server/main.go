package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jurislink/jurislink/internal/config"
	"github.com/jurislink/jurislink/internal/database"
	"github.com/jurislink/jurislink/internal/logger"
	"github.com/jurislink/jurislink/internal/metrics"
	"github.com/jurislink/jurislink/internal/repository"
	memoryrepo "github.com/jurislink/jurislink/internal/repository/memory"
	postgresrepo "github.com/jurislink/jurislink/internal/repository/postgres"
	redisrepo "github.com/jurislink/jurislink/internal/repository/redis"
	"github.com/jurislink/jurislink/internal/service"
	"github.com/jurislink/jurislink/internal/transport/http/handlers"
	"github.com/jurislink/jurislink/internal/transport/http/middleware"
	"github.com/jurislink/jurislink/internal/transport/ws"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	log := logger.New(cfg.Logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	// Repositories
	var (
		userRepo repository.UserRepository
		connRepo repository.ConnectionRepository
		convRepo repository.ConversationRepository
	)
	switch cfg.StoreDriver {
	case "postgres":
		pool, err := database.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer pool.Close()
		log.Info("connected to database", "host", cfg.DBHost, "name", cfg.DBName)

		userRepo = postgresrepo.NewUserRepo(pool)
		connRepo = postgresrepo.NewConnectionRepo(pool)
		convRepo = postgresrepo.NewConversationRepo(pool)
	case "memory":
		userRepo = memoryrepo.NewUserRepo()
		connRepo = memoryrepo.NewConnectionRepo()
		convRepo = memoryrepo.NewConversationRepo()
		log.Info("using in-memory store")
	default:
		return fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	// Optional presence mirror
	var presence repository.PresenceStore
	if cfg.Redis.URL != "" {
		rdb, err := redisrepo.NewClient(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rdb.Close()
		presence = redisrepo.NewPresenceStore(rdb, cfg.PresenceWindow)
		log.Info("presence mirror enabled")
	}

	// Services
	authService := service.NewAuthService(userRepo, cfg.JWTSecret)
	directoryService := service.NewDirectoryService(userRepo)
	contactService := service.NewContactService(connRepo, userRepo)
	routerService := service.NewRouterService(log, convRepo, contactService, m)

	// WebSocket hub
	hub := ws.NewHub(log, presence, m)
	go hub.Run(ctx)
	routerService.SetNotifier(ws.NewHubNotifier(hub, log))

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	contactHandler := handlers.NewContactHandler(contactService)

	auth := middleware.Auth(cfg.JWTSecret)

	// Routes
	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)

	// Protected - Contacts
	mux.Handle("POST /api/v1/contacts", auth(http.HandlerFunc(contactHandler.AddContact)))
	mux.Handle("GET /api/v1/contacts", auth(http.HandlerFunc(contactHandler.ListContacts)))

	// Protected - Presence (only when the mirror is configured)
	if presence != nil {
		presenceHandler := handlers.NewPresenceHandler(presence)
		mux.Handle("GET /api/v1/presence", auth(http.HandlerFunc(presenceHandler.Online)))
	}

	// Relay (token in query param)
	mux.HandleFunc("GET /ws", ws.ServeWS(hub, routerService, directoryService, cfg.JWTSecret, log))

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: middleware.CORS(mux),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
