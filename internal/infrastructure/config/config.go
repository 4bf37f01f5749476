package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root of all runtime configuration.
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Log      LogConfig
	HTTP     HTTPConfig
	Courier  CourierConfig
	Razorpay RazorpayConfig
	Storage  StorageConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig holds JWT settings
type JWTConfig struct {
	Secret                 string
	AccessTokenExpiration  time.Duration
	RefreshTokenExpiration time.Duration
	Issuer                 string
	RefreshSecret          string
	MaxRefreshCount        int
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout           time.Duration
	WriteTimeout          time.Duration
	IdleTimeout           time.Duration
	MaxHeaderBytes        int
	MaxBodySize           int64
	RateLimitEnabled      bool
	RateLimitRequests     int
	RateLimitWindow       time.Duration
	AuthRateLimitEnabled  bool
	AuthRateLimitRequests int
	AuthRateLimitWindow   time.Duration
	CORSAllowOrigins      []string
	CORSAllowMethods      []string
	CORSAllowHeaders      []string
	TrustedProxies        []string
}

// CourierConfig holds courier aggregator API settings
type CourierConfig struct {
	BaseURL  string
	Email    string
	Password string
	TokenTTL time.Duration
	Timeout  time.Duration
}

// RazorpayConfig holds payment gateway settings
type RazorpayConfig struct {
	BaseURL       string
	KeyID         string
	KeySecret     string
	WebhookSecret string
	Timeout       time.Duration
}

// StorageConfig holds S3-compatible object storage settings for chat and
// product media
type StorageConfig struct {
	Endpoint          string
	Region            string
	Bucket            string
	AccessKey         string
	SecretKey         string
	UseSSL            bool
	UsePathStyle      bool
	PresignExpiration time.Duration
}

// Load resolves configuration in priority order: COSTERBOX_-prefixed
// environment variables (e.g. COSTERBOX_DATABASE_PASSWORD) override
// config.toml, which overrides built-in defaults.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine; env vars and defaults take over.
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("COSTERBOX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App:      appFrom(v),
		Database: databaseFrom(v),
		Redis:    redisFrom(v),
		JWT:      jwtFrom(v),
		Log:      logFrom(v),
		HTTP:     httpFrom(v),
		Courier:  courierFrom(v),
		Razorpay: razorpayFrom(v),
		Storage:  storageFrom(v),
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func appFrom(v *viper.Viper) AppConfig {
	return AppConfig{
		Name: v.GetString("app.name"),
		Env:  v.GetString("app.env"),
		Port: v.GetString("app.port"),
	}
}

func databaseFrom(v *viper.Viper) DatabaseConfig {
	return DatabaseConfig{
		Host:            v.GetString("database.host"),
		Port:            v.GetInt("database.port"),
		User:            v.GetString("database.user"),
		Password:        v.GetString("database.password"),
		DBName:          v.GetString("database.dbname"),
		SSLMode:         v.GetString("database.sslmode"),
		MaxOpenConns:    v.GetInt("database.max_open_conns"),
		MaxIdleConns:    v.GetInt("database.max_idle_conns"),
		ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
		ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
	}
}

func redisFrom(v *viper.Viper) RedisConfig {
	return RedisConfig{
		Host:     v.GetString("redis.host"),
		Port:     v.GetInt("redis.port"),
		Password: v.GetString("redis.password"),
		DB:       v.GetInt("redis.db"),
	}
}

func jwtFrom(v *viper.Viper) JWTConfig {
	return JWTConfig{
		Secret:                 v.GetString("jwt.secret"),
		AccessTokenExpiration:  v.GetDuration("jwt.access_token_expiration"),
		RefreshTokenExpiration: v.GetDuration("jwt.refresh_token_expiration"),
		Issuer:                 v.GetString("jwt.issuer"),
		RefreshSecret:          v.GetString("jwt.refresh_secret"),
		MaxRefreshCount:        v.GetInt("jwt.max_refresh_count"),
	}
}

func logFrom(v *viper.Viper) LogConfig {
	return LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
		Output: v.GetString("log.output"),
	}
}

func httpFrom(v *viper.Viper) HTTPConfig {
	return HTTPConfig{
		ReadTimeout:           v.GetDuration("http.read_timeout"),
		WriteTimeout:          v.GetDuration("http.write_timeout"),
		IdleTimeout:           v.GetDuration("http.idle_timeout"),
		MaxHeaderBytes:        v.GetInt("http.max_header_bytes"),
		MaxBodySize:           v.GetInt64("http.max_body_size"),
		RateLimitEnabled:      v.GetBool("http.rate_limit_enabled"),
		RateLimitRequests:     v.GetInt("http.rate_limit_requests"),
		RateLimitWindow:       v.GetDuration("http.rate_limit_window"),
		AuthRateLimitEnabled:  v.GetBool("http.auth_rate_limit_enabled"),
		AuthRateLimitRequests: v.GetInt("http.auth_rate_limit_requests"),
		AuthRateLimitWindow:   v.GetDuration("http.auth_rate_limit_window"),
		CORSAllowOrigins:      v.GetStringSlice("http.cors_allow_origins"),
		CORSAllowMethods:      v.GetStringSlice("http.cors_allow_methods"),
		CORSAllowHeaders:      v.GetStringSlice("http.cors_allow_headers"),
		TrustedProxies:        v.GetStringSlice("http.trusted_proxies"),
	}
}

func courierFrom(v *viper.Viper) CourierConfig {
	return CourierConfig{
		BaseURL:  v.GetString("courier.base_url"),
		Email:    v.GetString("courier.email"),
		Password: v.GetString("courier.password"),
		TokenTTL: v.GetDuration("courier.token_ttl"),
		Timeout:  v.GetDuration("courier.timeout"),
	}
}

func razorpayFrom(v *viper.Viper) RazorpayConfig {
	return RazorpayConfig{
		BaseURL:       v.GetString("razorpay.base_url"),
		KeyID:         v.GetString("razorpay.key_id"),
		KeySecret:     v.GetString("razorpay.key_secret"),
		WebhookSecret: v.GetString("razorpay.webhook_secret"),
		Timeout:       v.GetDuration("razorpay.timeout"),
	}
}

func storageFrom(v *viper.Viper) StorageConfig {
	return StorageConfig{
		Endpoint:          v.GetString("storage.endpoint"),
		Region:            v.GetString("storage.region"),
		Bucket:            v.GetString("storage.bucket"),
		AccessKey:         v.GetString("storage.access_key"),
		SecretKey:         v.GetString("storage.secret_key"),
		UseSSL:            v.GetBool("storage.use_ssl"),
		UsePathStyle:      v.GetBool("storage.use_path_style"),
		PresignExpiration: v.GetDuration("storage.presign_expiration"),
	}
}

func fallbackString(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

func fallbackInt(field *int, value int) {
	if *field == 0 {
		*field = value
	}
}

func fallbackDuration(field *time.Duration, value time.Duration) {
	if *field == 0 {
		*field = value
	}
}

// applyDefaults fills every unset field with its built-in default.
func applyDefaults(cfg *Config) {
	fallbackString(&cfg.App.Name, "costerbox-backend")
	fallbackString(&cfg.App.Env, "development")
	fallbackString(&cfg.App.Port, "8080")

	fallbackString(&cfg.Database.Host, "localhost")
	fallbackInt(&cfg.Database.Port, 5432)
	fallbackString(&cfg.Database.User, "postgres")
	fallbackString(&cfg.Database.DBName, "costerbox")
	fallbackString(&cfg.Database.SSLMode, "disable")
	fallbackInt(&cfg.Database.MaxOpenConns, 25)
	fallbackInt(&cfg.Database.MaxIdleConns, 5)
	fallbackInt(&cfg.Database.ConnMaxLifetime, 60)
	fallbackInt(&cfg.Database.ConnMaxIdleTime, 30)

	fallbackString(&cfg.Redis.Host, "localhost")
	fallbackInt(&cfg.Redis.Port, 6379)

	fallbackDuration(&cfg.JWT.AccessTokenExpiration, 15*time.Minute)
	fallbackDuration(&cfg.JWT.RefreshTokenExpiration, 168*time.Hour)
	fallbackString(&cfg.JWT.Issuer, "costerbox-backend")
	fallbackInt(&cfg.JWT.MaxRefreshCount, 10)

	fallbackString(&cfg.Log.Level, "info")
	fallbackString(&cfg.Log.Format, "console")
	fallbackString(&cfg.Log.Output, "stdout")

	fallbackDuration(&cfg.HTTP.ReadTimeout, 15*time.Second)
	fallbackDuration(&cfg.HTTP.WriteTimeout, 15*time.Second)
	fallbackDuration(&cfg.HTTP.IdleTimeout, 60*time.Second)
	fallbackInt(&cfg.HTTP.MaxHeaderBytes, 1<<20)
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 10 << 20
	}
	fallbackInt(&cfg.HTTP.RateLimitRequests, 100)
	fallbackDuration(&cfg.HTTP.RateLimitWindow, time.Minute)
	fallbackInt(&cfg.HTTP.AuthRateLimitRequests, 5)
	fallbackDuration(&cfg.HTTP.AuthRateLimitWindow, time.Minute)
	// CORS origins deliberately have no "*" fallback. An empty list means
	// no cross-origin requests until an operator configures them.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}

	fallbackDuration(&cfg.Courier.TokenTTL, 216*time.Hour) // courier tokens live 9 days
	fallbackDuration(&cfg.Courier.Timeout, 30*time.Second)
	fallbackDuration(&cfg.Razorpay.Timeout, 30*time.Second)

	fallbackString(&cfg.Storage.Region, "ap-south-1")
	fallbackDuration(&cfg.Storage.PresignExpiration, 15*time.Minute)
}

func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	if c.App.Env == "production" {
		return c.validateProduction()
	}
	return nil
}

// validateProduction refuses startup with credentials or transport
// settings that would be unsafe outside development.
func (c *Config) validateProduction() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required in production")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("jwt.secret must be at least 32 characters in production")
	}
	if c.Database.Password == "" {
		return fmt.Errorf("database.password is required in production")
	}
	if c.Database.SSLMode == "disable" {
		return fmt.Errorf("database.sslmode cannot be 'disable' in production")
	}
	if c.Courier.Email == "" || c.Courier.Password == "" {
		return fmt.Errorf("courier credentials are required in production")
	}
	if c.Razorpay.KeyID == "" || c.Razorpay.KeySecret == "" {
		return fmt.Errorf("razorpay credentials are required in production")
	}
	if c.Razorpay.WebhookSecret == "" {
		return fmt.Errorf("razorpay.webhook_secret is required in production")
	}
	for _, origin := range c.HTTP.CORSAllowOrigins {
		if origin == "*" {
			return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
		}
	}
	return nil
}

// DSN renders a postgres URL with credentials escaped.
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
