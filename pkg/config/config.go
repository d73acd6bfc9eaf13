package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix scopes every environment variable the service reads.
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "QUOTEFLOW_DB_DSN"
	EnvDBHost = "QUOTEFLOW_DB_HOST"
	EnvDBUser = "QUOTEFLOW_DB_USER"
	EnvDBName = "QUOTEFLOW_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Estimates    EstimatesConfig
	FeatureFlags FeatureFlagsConfig
	CORS         CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"QUOTEFLOW_APP_ENV" required:"true"`
	Port         string `envconfig:"QUOTEFLOW_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"QUOTEFLOW_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"QUOTEFLOW_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"QUOTEFLOW_DB_DSN"`
	Driver string `envconfig:"QUOTEFLOW_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"QUOTEFLOW_DB_HOST"`
	LegacyPort     int    `envconfig:"QUOTEFLOW_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"QUOTEFLOW_DB_USER"`
	LegacyPassword string `envconfig:"QUOTEFLOW_DB_PASSWORD"`
	LegacyName     string `envconfig:"QUOTEFLOW_DB_NAME"`
	LegacySSLMode  string `envconfig:"QUOTEFLOW_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"QUOTEFLOW_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"QUOTEFLOW_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"QUOTEFLOW_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"QUOTEFLOW_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the service should run against an embedded SQLite file.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, "sqlite")
}

type RedisConfig struct {
	URL          string        `envconfig:"QUOTEFLOW_REDIS_URL" required:"true"`
	Address      string        `envconfig:"QUOTEFLOW_REDIS_ADDR"`
	Password     string        `envconfig:"QUOTEFLOW_REDIS_PASSWORD"`
	DB           int           `envconfig:"QUOTEFLOW_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"QUOTEFLOW_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"QUOTEFLOW_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"QUOTEFLOW_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"QUOTEFLOW_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"QUOTEFLOW_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"QUOTEFLOW_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"QUOTEFLOW_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"QUOTEFLOW_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"QUOTEFLOW_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"QUOTEFLOW_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"QUOTEFLOW_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"QUOTEFLOW_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"QUOTEFLOW_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"QUOTEFLOW_ARGON_KEY_LEN" default:"32"`
}

type EstimatesConfig struct {
	// ValidityDays is the default quote lifetime when valid_until is omitted.
	ValidityDays int `envconfig:"QUOTEFLOW_ESTIMATE_VALIDITY_DAYS" default:"30"`
	// NumberRetries bounds the re-allocation attempts after a unique-number collision.
	NumberRetries int `envconfig:"QUOTEFLOW_ESTIMATE_NUMBER_RETRIES" default:"3"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"QUOTEFLOW_AUTO_MIGRATE" default:"false"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"QUOTEFLOW_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" || db.IsSQLite() {
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
