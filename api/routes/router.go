package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tablenow/tablenow-backend/api/controllers"
	"github.com/tablenow/tablenow-backend/api/middleware"
	"github.com/tablenow/tablenow-backend/internal/auth"
	"github.com/tablenow/tablenow-backend/internal/reservations"
	"github.com/tablenow/tablenow-backend/internal/reviews"
	"github.com/tablenow/tablenow-backend/internal/stores"
	"github.com/tablenow/tablenow-backend/internal/users"
	"github.com/tablenow/tablenow-backend/pkg/config"
	"github.com/tablenow/tablenow-backend/pkg/db"
	"github.com/tablenow/tablenow-backend/pkg/enums"
	"github.com/tablenow/tablenow-backend/pkg/logger"
	"github.com/tablenow/tablenow-backend/pkg/metrics"
	"github.com/tablenow/tablenow-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	gatherer prometheus.Gatherer,
	httpMetrics *metrics.HTTPMetrics,
	authService auth.Service,
	userService users.Service,
	storeService stores.Service,
	reviewService reviews.Service,
	reservationService reservations.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(cfg.HTTP.CORSOrigins),
		middleware.Metrics(httpMetrics),
		middleware.Logging(logg),
	)

	// A nil *redis.Client must not reach the middleware as a non-nil interface.
	var (
		limiter     middleware.RateLimiterStore
		idempotency middleware.IdempotencyStore
		redisPinger controllers.Pinger
	)
	if redisClient != nil {
		limiter = redisClient
		idempotency = redisClient
		redisPinger = redisClient
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"database": dbP,
			"redis":    redisPinger,
		}))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(loginPolicy, limiter, logg)).Post("/login", controllers.AuthLogin(authService, logg))
			r.With(middleware.AuthRateLimit(registerPolicy, limiter, logg)).Post("/register", controllers.AuthRegister(authService, logg))
		})

		r.Get("/stores", controllers.StoreList(storeService, logg))
		r.Get("/stores/{storeId}", controllers.StoreDetail(storeService, logg))
		r.Get("/stores/{storeId}/reviews", controllers.ReviewList(reviewService, logg))
		r.Get("/reviews", controllers.ReviewList(reviewService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Use(middleware.Idempotency(idempotency, cfg.HTTP.IdempotencyTTL, logg))

			r.Get("/ping", controllers.PrivatePing())

			r.Route("/users/me", func(r chi.Router) {
				r.Get("/", controllers.UserMe(userService, logg))
				r.Delete("/", controllers.UserWithdraw(userService, logg))
			})

			r.Post("/stores/{storeId}/reviews", controllers.ReviewCreate(reviewService, logg))
			r.Patch("/reviews/{reviewId}", controllers.ReviewUpdate(reviewService, logg))
			r.Delete("/reviews/{reviewId}", controllers.ReviewDelete(reviewService, logg))

			r.Route("/reservations", func(r chi.Router) {
				r.Post("/", controllers.ReservationRequest(reservationService, logg))
				r.Post("/approve", controllers.ReservationApprove(reservationService, logg))
				r.Get("/{reservationId}", controllers.ReservationDetail(reservationService, logg))
			})

			r.Route("/manager/stores", func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, enums.UserRoleManager))
				r.Post("/", controllers.StoreRegister(storeService, logg))
				r.Patch("/{storeId}", controllers.StoreUpdate(storeService, logg))
				r.Delete("/{storeId}", controllers.StoreDelete(storeService, logg))
				r.Get("/{storeId}/reservations", controllers.StoreReservationsForDay(reservationService, cfg.Reservation.Location(), logg))
			})
		})
	})

	return r
}
