package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/tablenow/tablenow-backend/api/routes"
	"github.com/tablenow/tablenow-backend/internal/auth"
	"github.com/tablenow/tablenow-backend/internal/reservations"
	"github.com/tablenow/tablenow-backend/internal/reviews"
	"github.com/tablenow/tablenow-backend/internal/stores"
	"github.com/tablenow/tablenow-backend/internal/users"
	"github.com/tablenow/tablenow-backend/pkg/config"
	"github.com/tablenow/tablenow-backend/pkg/db"
	"github.com/tablenow/tablenow-backend/pkg/instance"
	"github.com/tablenow/tablenow-backend/pkg/logger"
	"github.com/tablenow/tablenow-backend/pkg/maps"
	"github.com/tablenow/tablenow-backend/pkg/metrics"
	"github.com/tablenow/tablenow-backend/pkg/migrate"
	"github.com/tablenow/tablenow-backend/pkg/redis"
	"github.com/tablenow/tablenow-backend/pkg/security"
)

type geocoder interface {
	Geocode(ctx context.Context, address string) (*maps.Place, error)
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var closers []io.Closer
	defer func() {
		if err := closeAll(closers); err != nil {
			logg.Error(context.Background(), "error releasing resources", err)
		}
	}()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	closers = append(closers, dbClient)

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		closers = append(closers, redisClient)
	} else {
		logg.Warn(ctx, "redis not configured; rate limiting and idempotency disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	userRepo := users.NewRepository(dbClient.DB())
	storeRepo := stores.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:  userRepo,
		Hasher:    security.NewPasswordHasher(cfg.Password),
		JWTConfig: cfg.JWT,
	})
	if err != nil {
		logg.Error(ctx, "failed to create auth service", err)
		os.Exit(1)
	}

	userService, err := users.NewService(userRepo)
	if err != nil {
		logg.Error(ctx, "failed to create user service", err)
		os.Exit(1)
	}

	var geo geocoder
	if cfg.Maps.Enabled() {
		client, err := maps.NewClient(cfg.Maps.APIKey, maps.WithLanguage(cfg.Maps.Language))
		if err != nil {
			logg.Error(ctx, "failed to create maps client", err)
			os.Exit(1)
		}
		geo = client
	}
	storeService, err := stores.NewService(storeRepo, geo)
	if err != nil {
		logg.Error(ctx, "failed to create store service", err)
		os.Exit(1)
	}

	reviewService, err := reviews.NewService(reviews.NewRepository(dbClient.DB()), storeRepo, nil)
	if err != nil {
		logg.Error(ctx, "failed to create review service", err)
		os.Exit(1)
	}

	locker, err := slotLocker(cfg.Reservation, redisClient, logg)
	if err != nil {
		logg.Error(ctx, "failed to create slot locker", err)
		os.Exit(1)
	}
	reservationService, err := reservations.NewService(reservations.ServiceParams{
		Users:    userRepo,
		Stores:   storeRepo,
		Repo:     reservations.NewRepository(dbClient.DB()),
		Locker:   locker,
		Weekdays: reservations.NewWeekdayNames(cfg.Reservation.Locale),
		Location: cfg.Reservation.Location(),
		Metrics:  metrics.NewReservationMetrics(registry),
		Logger:   logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create reservation service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	serverCtx := logg.WithFields(ctx, map[string]any{
		"env":       cfg.App.Env,
		"addr":      addr,
		"instance":  instance.GetID(),
		"slot_lock": cfg.Reservation.SlotLock,
		"timezone":  cfg.Reservation.Timezone,
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			registry,
			metrics.NewHTTPMetrics(registry),
			authService,
			userService,
			storeService,
			reviewService,
			reservationService,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(serverCtx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(serverCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(serverCtx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(serverCtx, "graceful shutdown failed", err)
		}
	}
}

func slotLocker(cfg config.ReservationConfig, redisClient *redis.Client, logg *logger.Logger) (reservations.SlotLocker, error) {
	if strings.EqualFold(cfg.SlotLock, config.SlotLockRedis) {
		if redisClient == nil {
			return nil, errors.New("redis slot lock requires redis configuration")
		}
		return reservations.NewRedisSlotLocker(redisClient, cfg.SlotLockTTL, cfg.SlotLockWait, logg)
	}
	return reservations.NewLocalSlotLocker(), nil
}

func closeAll(closers []io.Closer) error {
	var err error
	for i := len(closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, closers[i].Close())
	}
	return err
}
