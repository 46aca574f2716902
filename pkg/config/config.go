package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the envconfig prefix shared by every binary.
const EnvPrefix = "tradedesk"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	PDF           PDFConfig
	FeatureFlags  FeatureFlagsConfig
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
	Env          string `envconfig:"TRADEDESK_APP_ENV" required:"true"`
	Port         string `envconfig:"TRADEDESK_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"TRADEDESK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TRADEDESK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"TRADEDESK_DB_DSN"`

	Host     string `envconfig:"TRADEDESK_DB_HOST"`
	Port     int    `envconfig:"TRADEDESK_DB_PORT" default:"5432"`
	User     string `envconfig:"TRADEDESK_DB_USER"`
	Password string `envconfig:"TRADEDESK_DB_PASSWORD"`
	Name     string `envconfig:"TRADEDESK_DB_NAME"`
	SSLMode  string `envconfig:"TRADEDESK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TRADEDESK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TRADEDESK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TRADEDESK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TRADEDESK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// ensureDSN assembles a postgres DSN from the discrete fields when one was
// not provided directly.
func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("either TRADEDESK_DB_DSN or host/user/name must be set")
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   "/" + d.Name,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	d.DSN = u.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"TRADEDESK_REDIS_URL"`
	Address      string        `envconfig:"TRADEDESK_REDIS_ADDR"`
	Password     string        `envconfig:"TRADEDESK_REDIS_PASSWORD"`
	DB           int           `envconfig:"TRADEDESK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TRADEDESK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TRADEDESK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TRADEDESK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TRADEDESK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TRADEDESK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"TRADEDESK_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"TRADEDESK_JWT_ISSUER" default:"tradedesk"`
	ExpirationMinutes      int    `envconfig:"TRADEDESK_JWT_EXPIRATION_MINUTES" default:"30"`
	RefreshTokenTTLMinutes int    `envconfig:"TRADEDESK_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"TRADEDESK_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"TRADEDESK_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"TRADEDESK_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"TRADEDESK_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"TRADEDESK_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"TRADEDESK_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"TRADEDESK_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"TRADEDESK_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

// PDFConfig tunes the quotation PDF rendering chain.
type PDFConfig struct {
	// ChromiumPath points at the restricted-environment Chromium binary used
	// by the first rendering strategy. Empty means the strategy reports
	// itself unavailable.
	ChromiumPath string `envconfig:"TRADEDESK_PDF_CHROMIUM_PATH"`
	// AllowLocalBrowser enables the locally-installed-Chrome fallback. It is
	// meant for developer machines and disabled in production by default.
	AllowLocalBrowser bool `envconfig:"TRADEDESK_PDF_ALLOW_LOCAL_BROWSER" default:"true"`
	// StrategyTimeout bounds each strategy attempt. A timeout counts as a
	// strategy failure and advances the chain.
	StrategyTimeout time.Duration `envconfig:"TRADEDESK_PDF_STRATEGY_TIMEOUT" default:"45s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"TRADEDESK_AUTO_MIGRATE" default:"false"`
}
