package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	CORS          CORSConfig
	Identity      IdentityConfig
	Cron          CronConfig
	Seed          SeedConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"GUDANG_APP_ENV" required:"true"`
	Port         string `envconfig:"GUDANG_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"GUDANG_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GUDANG_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"GUDANG_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"GUDANG_DB_DSN"`
	Driver string `envconfig:"GUDANG_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"GUDANG_DB_HOST"`
	LegacyPort     int    `envconfig:"GUDANG_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"GUDANG_DB_USER"`
	LegacyPassword string `envconfig:"GUDANG_DB_PASSWORD"`
	LegacyName     string `envconfig:"GUDANG_DB_NAME"`
	LegacySSLMode  string `envconfig:"GUDANG_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"GUDANG_SQLITE_PATH" default:"gudang.db"`

	MaxOpenConns    int           `envconfig:"GUDANG_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GUDANG_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GUDANG_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GUDANG_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// RedisConfig is optional. An empty URL and address disables rate limiting and
// falls back to a process-local cron lock.
type RedisConfig struct {
	URL          string        `envconfig:"GUDANG_REDIS_URL"`
	Address      string        `envconfig:"GUDANG_REDIS_ADDR"`
	Password     string        `envconfig:"GUDANG_REDIS_PASSWORD"`
	DB           int           `envconfig:"GUDANG_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GUDANG_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GUDANG_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GUDANG_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GUDANG_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GUDANG_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"GUDANG_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"GUDANG_JWT_ISSUER" default:"gudang-mitra"`
	ExpirationMinutes int    `envconfig:"GUDANG_JWT_EXPIRATION_MINUTES" default:"60"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"GUDANG_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"GUDANG_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"GUDANG_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"GUDANG_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"GUDANG_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"GUDANG_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"GUDANG_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"GUDANG_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite    bool `envconfig:"GUDANG_USE_SQLITE" default:"false"`
	AutoMigrate  bool `envconfig:"GUDANG_AUTO_MIGRATE" default:"false"`
	OpenRegister bool `envconfig:"GUDANG_OPEN_REGISTER" default:"true"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"GUDANG_CORS_ALLOWED_ORIGINS" default:"*"`
}

// IdentityConfig carries the static legacy id table. Entries look like
// "users:1=00000000-0000-4000-8000-000000000001,categories:3=<uuid>".
type IdentityConfig struct {
	LegacyMap string `envconfig:"GUDANG_IDENTITY_LEGACY_MAP"`
}

// SeedConfig holds the bootstrap administrator created by the migrate command.
type SeedConfig struct {
	AdminName     string `envconfig:"GUDANG_SEED_ADMIN_NAME" default:"Administrator"`
	AdminEmail    string `envconfig:"GUDANG_SEED_ADMIN_EMAIL"`
	AdminPassword string `envconfig:"GUDANG_SEED_ADMIN_PASSWORD"`
}

type CronConfig struct {
	Interval              time.Duration `envconfig:"GUDANG_CRON_INTERVAL" default:"1h"`
	LockTTL               time.Duration `envconfig:"GUDANG_CRON_LOCK_TTL" default:"10m"`
	NotificationRetention time.Duration `envconfig:"GUDANG_NOTIFICATION_RETENTION" default:"720h"`
	PendingReminderAge    time.Duration `envconfig:"GUDANG_PENDING_REMINDER_AGE" default:"72h"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if db.DSN != "" || useSQLite {
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
