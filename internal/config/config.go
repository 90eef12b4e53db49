package config

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	defaultKakaoBaseURL    = "https://dapi.kakao.com"
	defaultStationsBaseURL = "http://localhost:8000"
)

type Config struct {
	Environment     string
	LogLevel        zerolog.Level
	HTTPTimeout     time.Duration
	KakaoBaseURL    string
	KakaoAPIKey     string
	StationsBaseURL string
	// MaxConcurrentLookups caps in-flight geocoding requests; 0 means no cap.
	MaxConcurrentLookups int
	// RegionAliases are extra region spellings layered over the built-in table.
	RegionAliases map[string]string
	Cache         *CacheConfig
}

type Option func(*Config)

// WithEnvironment allows setting the environment
func WithEnvironment(env string) Option {
	return func(c *Config) {
		c.Environment = env
	}
}

// WithLogLevel allows setting the log level
func WithLogLevel(level string) Option {
	return func(c *Config) {
		parsedLevel, err := zerolog.ParseLevel(level)
		if err != nil {
			parsedLevel = zerolog.InfoLevel
		}
		c.LogLevel = parsedLevel
	}
}

// WithHTTPTimeout allows setting the HTTP timeout
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.HTTPTimeout = timeout
	}
}

func WithKakao(baseURL, apiKey string) Option {
	return func(c *Config) {
		if baseURL != "" {
			c.KakaoBaseURL = baseURL
		}
		if apiKey != "" {
			c.KakaoAPIKey = apiKey
		}
	}
}

func WithStationsBaseURL(baseURL string) Option {
	return func(c *Config) {
		if baseURL != "" {
			c.StationsBaseURL = baseURL
		}
	}
}

func WithMaxConcurrentLookups(n int) Option {
	return func(c *Config) {
		if n >= 0 {
			c.MaxConcurrentLookups = n
		}
	}
}

// WithRegionAliases merges extra region spellings into the config.
func WithRegionAliases(aliases map[string]string) Option {
	return func(c *Config) {
		if len(aliases) == 0 {
			return
		}
		if c.RegionAliases == nil {
			c.RegionAliases = make(map[string]string, len(aliases))
		}
		for name, code := range aliases {
			c.RegionAliases[name] = code
		}
	}
}

func WithCacheConfig(cacheConfig *CacheConfig) Option {
	return func(c *Config) {
		if cacheConfig != nil {
			c.Cache = cacheConfig
		}
	}
}

// New creates a new configuration with default values
func New(opts ...Option) *Config {
	cfg := &Config{
		Environment:     "production",
		LogLevel:        zerolog.InfoLevel,
		HTTPTimeout:     10 * time.Second,
		KakaoBaseURL:    defaultKakaoBaseURL,
		StationsBaseURL: defaultStationsBaseURL,
		Cache:           DefaultCacheConfig(),
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// InitializeLogging sets up logging based on the configuration
func (c *Config) InitializeLogging() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(c.LogLevel)

	if c.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "local" || c.Environment == "development"
}

// LoadFromEnv loads configuration from environment variables. Extra options
// are applied last and win over the environment.
func LoadFromEnv(extra ...Option) *Config {
	opts := []Option{
		WithEnvironment(getEnvOrDefault("ENV", "production")),
		WithLogLevel(getEnvOrDefault("LOG_LEVEL", "info")),
		WithHTTPTimeout(getDurationEnvOrDefault("HTTP_TIMEOUT", 10*time.Second)),
		WithKakao(os.Getenv("KAKAO_BASE_URL"), os.Getenv("KAKAO_REST_API_KEY")),
		WithStationsBaseURL(os.Getenv("STATIONS_BASE_URL")),
		WithMaxConcurrentLookups(getEnvInt("MAX_CONCURRENT_LOOKUPS", 0)),
		WithCacheConfig(GetCacheConfig()),
	}
	return New(append(opts, extra...)...)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnvOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultVal int) int {
	if val, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
		log.Warn().Str("key", key).Msg("Invalid integer value in environment variable, using default")
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val, exists := os.LookupEnv(key); exists {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}
