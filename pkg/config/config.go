package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Reservation   ReservationConfig
	Maps          MapsConfig
	HTTP          HTTPConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Reservation.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TABLENOW_APP_ENV" required:"true"`
	Port         string `envconfig:"TABLENOW_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TABLENOW_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TABLENOW_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"TABLENOW_DB_DSN"`
	Driver string `envconfig:"TABLENOW_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"TABLENOW_DB_HOST"`
	LegacyPort     int    `envconfig:"TABLENOW_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TABLENOW_DB_USER"`
	LegacyPassword string `envconfig:"TABLENOW_DB_PASSWORD"`
	LegacyName     string `envconfig:"TABLENOW_DB_NAME"`
	LegacySSLMode  string `envconfig:"TABLENOW_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TABLENOW_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TABLENOW_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TABLENOW_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TABLENOW_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TABLENOW_REDIS_URL"`
	Address      string        `envconfig:"TABLENOW_REDIS_ADDR"`
	Password     string        `envconfig:"TABLENOW_REDIS_PASSWORD"`
	DB           int           `envconfig:"TABLENOW_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TABLENOW_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TABLENOW_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TABLENOW_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TABLENOW_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TABLENOW_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether any redis endpoint is configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"TABLENOW_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"TABLENOW_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"TABLENOW_JWT_EXPIRATION_MINUTES" required:"true"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"TABLENOW_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"TABLENOW_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"TABLENOW_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"TABLENOW_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"TABLENOW_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"TABLENOW_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"TABLENOW_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"TABLENOW_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"TABLENOW_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"TABLENOW_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"TABLENOW_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

// MapsConfig enables geocoding of store addresses. Stores can still be
// registered with explicit coordinates when no key is set.
type MapsConfig struct {
	APIKey   string `envconfig:"TABLENOW_GOOGLE_MAPS_API_KEY"`
	Language string `envconfig:"TABLENOW_GOOGLE_MAPS_LANGUAGE" default:"en"`
}

func (m MapsConfig) Enabled() bool {
	return strings.TrimSpace(m.APIKey) != ""
}

// HTTPConfig holds transport concerns of the API process.
type HTTPConfig struct {
	CORSOrigins     []string      `envconfig:"TABLENOW_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	IdempotencyTTL  time.Duration `envconfig:"TABLENOW_IDEMPOTENCY_TTL" default:"24h"`
	ShutdownTimeout time.Duration `envconfig:"TABLENOW_SHUTDOWN_TIMEOUT" default:"15s"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"TABLENOW_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"TABLENOW_AUTO_MIGRATE" default:"false"`
}

// ReservationConfig tunes the reservation engine.
//
// Locale selects the weekday abbreviations compared against a store's
// week-off text. Timezone is the wall-clock zone reservation times are
// interpreted in; its UTC offset must stay a multiple of ten minutes so local
// grid slots are also UTC grid slots. SlotLock picks the critical-section
// backend guarding validate-then-write per store slot.
type ReservationConfig struct {
	Locale       string        `envconfig:"TABLENOW_RESERVATION_LOCALE" default:"en"`
	Timezone     string        `envconfig:"TABLENOW_RESERVATION_TIMEZONE" default:"UTC"`
	SlotLock     string        `envconfig:"TABLENOW_RESERVATION_SLOT_LOCK" default:"local"`
	// SlotLockTTL is the redis lease on a slot. The lease is not renewed while
	// the conflict check and insert run, so it must exceed their worst-case
	// latency or a second request can enter the same slot.
	SlotLockTTL  time.Duration `envconfig:"TABLENOW_RESERVATION_SLOT_LOCK_TTL" default:"10s"`
	SlotLockWait time.Duration `envconfig:"TABLENOW_RESERVATION_SLOT_LOCK_WAIT" default:"2s"`
}

// Location resolves the configured timezone, falling back to UTC.
func (r ReservationConfig) Location() *time.Location {
	if strings.TrimSpace(r.Timezone) == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (r ReservationConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(r.SlotLock)) {
	case SlotLockLocal, SlotLockRedis:
	default:
		return fmt.Errorf("%s must be one of %q or %q", EnvReservationSlotLock, SlotLockLocal, SlotLockRedis)
	}
	if r.SlotLockTTL <= 0 {
		return fmt.Errorf("%s must be positive", EnvReservationSlotLockTTL)
	}
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", EnvReservationTimezone, err)
	}
	if offset, ok := offGridOffset(loc, time.Now()); ok {
		return fmt.Errorf("%s %q has UTC offset %s, which is not a multiple of %s",
			EnvReservationTimezone, r.Timezone, time.Duration(offset)*time.Second, reservationGrid)
	}
	return nil
}

// reservationGrid matches the slot grid enforced by the engine and by the
// reservations.reserved_at CHECK, which is evaluated in UTC.
const reservationGrid = 10 * time.Minute

// offGridOffset reports the first UTC offset of loc, sampled monthly over the
// year of from and the next, that would move a grid-aligned local time off
// the UTC grid.
func offGridOffset(loc *time.Location, from time.Time) (int, bool) {
	grid := int(reservationGrid / time.Second)
	for year := from.Year(); year <= from.Year()+1; year++ {
		for month := time.January; month <= time.December; month++ {
			_, offset := time.Date(year, month, 15, 12, 0, 0, 0, loc).Zone()
			if offset%grid != 0 {
				return offset, true
			}
		}
	}
	return 0, false
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
