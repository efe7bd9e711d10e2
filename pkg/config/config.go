package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	RabbitMQ   RabbitMQConfig
	GRPC       GRPCConfig
	Monitoring MonitoringConfig
	RateLimit  RateLimitConfig
	CORS       CORSConfig
	Pagination PaginationConfig
}

type AppConfig struct {
	Name      string
	Env       string
	Port      int
	LogLevel  string
	LogFormat string
}

func (a AppConfig) IsDevelopment() bool {
	return a.Env == "development"
}

type DatabaseConfig struct {
	URI         string
	DBName      string
	Timeout     time.Duration
	MaxPoolSize uint64
	MinPoolSize uint64
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RabbitMQConfig struct {
	URL      string
	Exchange string
}

type GRPCConfig struct {
	Port int
}

type MonitoringConfig struct {
	MetricsPath string
}

type RateLimitConfig struct {
	Enabled  bool
	Requests int
	Window   time.Duration
}

type CORSConfig struct {
	AllowOrigins []string
}

type PaginationConfig struct {
	DefaultLimit int
	MaxLimit     int
}

// Load reads config.yaml from the given paths (plus ./config and .),
// then overlays environment variables. A missing file is not an error.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetEnvPrefix("NUMBERING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	if err := bindEnvVariables(v); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Database.URI == "" {
		return errors.New("database.uri is required")
	}
	if c.Database.DBName == "" {
		return errors.New("database.dbname is required")
	}
	if c.Pagination.DefaultLimit <= 0 {
		return errors.New("pagination.defaultlimit must be positive")
	}
	if c.Pagination.MaxLimit < c.Pagination.DefaultLimit {
		return errors.New("pagination.maxlimit must be >= pagination.defaultlimit")
	}
	if c.RateLimit.Enabled && (c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0) {
		return errors.New("ratelimit.requests and ratelimit.window must be positive when enabled")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "numbering-service")
	v.SetDefault("app.env", "production")
	v.SetDefault("app.port", 5555)
	v.SetDefault("app.loglevel", "info")
	v.SetDefault("app.logformat", "json")

	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.dbname", "numbering")
	v.SetDefault("database.timeout", "10s")
	v.SetDefault("database.maxpoolsize", 50)
	v.SetDefault("database.minpoolsize", 5)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("rabbitmq.url", "")
	v.SetDefault("rabbitmq.exchange", "numbering.events")

	v.SetDefault("grpc.port", 50061)

	v.SetDefault("monitoring.metricspath", "/metrics")

	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.requests", 100)
	v.SetDefault("ratelimit.window", "60s")

	v.SetDefault("cors.alloworigins", []string{"*"})

	v.SetDefault("pagination.defaultlimit", 10)
	v.SetDefault("pagination.maxlimit", 100)
}

func bindEnvVariables(v *viper.Viper) error {
	bindings := map[string][]string{
		"app.env":            {"APP_ENV"},
		"app.port":           {"APP_PORT", "PORT"},
		"app.loglevel":       {"LOG_LEVEL"},
		"app.logformat":      {"LOG_FORMAT"},
		"database.uri":       {"MONGO_URI", "MONGODB_URI", "MONGO_URL"},
		"database.dbname":    {"MONGO_DB_NAME"},
		"redis.addr":         {"REDIS_ADDR"},
		"redis.password":     {"REDIS_PASSWORD"},
		"redis.db":           {"REDIS_DB"},
		"rabbitmq.url":       {"RABBITMQ_URL"},
		"grpc.port":          {"GRPC_PORT"},
		"ratelimit.enabled":  {"RATE_LIMIT_ENABLED"},
		"ratelimit.requests": {"RATE_LIMIT_REQUESTS"},
		"ratelimit.window":   {"RATE_LIMIT_WINDOW"},
	}

	for key, envs := range bindings {
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			return fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	return nil
}
