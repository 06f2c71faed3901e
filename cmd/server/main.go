package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"freight-order-service/internal/adapters/cache"
	"freight-order-service/internal/adapters/distance"
	"freight-order-service/internal/adapters/events"
	"freight-order-service/internal/adapters/notify"
	"freight-order-service/internal/adapters/repositories"
	"freight-order-service/internal/api"
	"freight-order-service/internal/auth"
	"freight-order-service/internal/config"
	"freight-order-service/internal/platform/db"
	"freight-order-service/internal/platform/obs"
	"freight-order-service/internal/ports"
	"freight-order-service/internal/pricing"
	"freight-order-service/internal/services"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// main is the application composition root.
// It wires concrete adapters (SQLite, ORS, Redis, Telegram, AMQP) behind ports and starts the HTTP server.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := obs.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	obs.SetLogger(logger)

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting", zap.Stringer("config", cfg))

	conn, err := db.OpenSqlite(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Initialize schema and seed accounts on startup for local runs.
	if err := initAndSeed(ctx, conn, cfg.Database.SeedPath); err != nil {
		return err
	}

	routing, closeRouting, err := newRouting(ctx, cfg, conn)
	if err != nil {
		return err
	}
	defer closeRouting()
	resolver := distance.NewResolver(routing)
	resolver.SpeedKmh = cfg.Distance.AvgSpeedKmh

	users := repositories.NewSqliteUserRepository(conn)
	orders := repositories.NewSqliteOrderRepository(conn)
	drivers := repositories.NewSqliteDriverRepository(conn)
	inbox := repositories.NewSqliteNotificationRepository(conn)
	notifier := notify.NewRepositoryNotifier(inbox)

	var alerter ports.Alerter
	if cfg.Notify.TelegramToken != "" {
		a, err := notify.NewTelegramAlerter(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID, "")
		if err != nil {
			return err
		}
		alerter = a
	}

	var publisher ports.EventPublisher
	if cfg.Events.AMQPURL != "" {
		p, err := events.DialAMQP(cfg.Events.AMQPURL, cfg.Events.Exchange)
		if err != nil {
			return err
		}
		defer p.Close()
		publisher = p
	}

	orderSvc := &services.OrderService{
		Orders:     orders,
		Users:      users,
		Drivers:    drivers,
		Calculator: pricing.New(cfg.Pricing),
		Distances:  resolver,
		Notifier:   notifier,
		Alerter:    alerter,
		Events:     publisher,
	}
	sessions, err := auth.NewSessions(cfg.Auth.SessionSecret, cfg.Auth.SessionTTL)
	if err != nil {
		return err
	}
	sessions.Secure = cfg.Auth.SecureCookie

	router := api.NewRouter(api.Deps{
		Accounts: &services.AccountService{Users: users, Orders: orders, Inbox: inbox},
		Orders:   orderSvc,
		Drivers: &services.DriverService{
			Drivers:      drivers,
			Users:        users,
			Orders:       orders,
			Notifier:     notifier,
			Alerter:      alerter,
			OrderService: orderSvc,
			Routes:       resolver,
			CityOf:       func(a string) string { return distance.NormalizeCity(distance.ExtractCity(a)) },
		},
		Sessions: sessions,
		Users:    users,
	})

	// Timeouts are tuned for cold-cache trip planning (external API latency).
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func initAndSeed(ctx context.Context, conn *sql.DB, seedPath string) error {
	if err := repositories.InitSchema(ctx, conn); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}
	if err := repositories.SeedUsers(ctx, conn, []repositories.UserSeed{repositories.DefaultAdmin}); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}
	if err := repositories.SeedFromJSON(ctx, conn, seedPath); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}
	return nil
}

// newRouting builds the ORS provider used for pairs the distance table does
// not know. Without an API key the resolver falls back to its fixed default.
// Distance caches live in Redis or Postgres when configured, SQLite otherwise.
func newRouting(ctx context.Context, cfg *config.Config, conn *sql.DB) (ports.DistanceProvider, func(), error) {
	noop := func() {}
	if cfg.Distance.ORSKey == "" {
		obs.L().Warn("ORS_API_KEY not set; unknown city pairs use the fallback distance")
		return nil, noop, nil
	}

	var (
		distances ports.DistanceCache = cache.NewSqliteDistanceCache(conn, cfg.Distance.CacheTTL)
		geocodes  ports.GeocodeCache  = cache.NewSqliteGeocodeCache(conn)
		closers   []func()
	)

	if cfg.Database.CacheURL != "" {
		pg, err := db.Open(cfg.Database.CacheURL)
		if err != nil {
			return nil, noop, err
		}
		if err := repositories.InitCacheSchema(ctx, pg); err != nil {
			_ = pg.Close()
			return nil, noop, err
		}
		closers = append(closers, func() { _ = pg.Close() })
		distances = cache.NewPostgresDistanceCache(pg, cfg.Distance.CacheTTL)
		geocodes = cache.NewPostgresGeocodeCache(pg)
	}

	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, noop, fmt.Errorf("redis ping %s: %w", cfg.Redis.Addr, err)
		}
		closers = append(closers, func() { _ = rdb.Close() })
		distances = cache.NewRedisDistanceCache(rdb, cfg.Distance.CacheTTL)
	}

	var opts []distance.ORSOption
	if cfg.Distance.ORSBaseURL != "" {
		opts = append(opts, distance.WithBaseURL(cfg.Distance.ORSBaseURL))
	}
	provider, err := distance.NewORSDistanceProvider(cfg.Distance.ORSKey, distances, geocodes, opts...)
	if err != nil {
		for _, c := range closers {
			c()
		}
		return nil, noop, err
	}

	return provider, func() {
		for _, c := range closers {
			c()
		}
	}, nil
}
