package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds the full application configuration
type Config struct {
	Env       string          `mapstructure:"env"`
	Log       LogConfig       `mapstructure:"log"`
	Browser   BrowserConfig   `mapstructure:"browser"`
	Selenium  SeleniumConfig  `mapstructure:"selenium"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Verify    VerifyConfig    `mapstructure:"verify"`
	Output    OutputConfig    `mapstructure:"output"`
	S3        S3Config        `mapstructure:"s3"`
	Mongo     MongoConfig     `mapstructure:"mongo"`
	Postgres  PostgresConfig  `mapstructure:"postgres"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Server    ServerConfig    `mapstructure:"server"`
}

// LogConfig configures logging
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}

// BrowserConfig configures page rendering
type BrowserConfig struct {
	Driver         string        `mapstructure:"driver"` // "chromedp", "selenium", "playwright" or "http"
	Headless       bool          `mapstructure:"headless"`
	UserAgent      string        `mapstructure:"user_agent"`
	ViewportWidth  int           `mapstructure:"viewport_width"`
	ViewportHeight int           `mapstructure:"viewport_height"`
	Locale         string        `mapstructure:"locale"`
	Timezone       string        `mapstructure:"timezone"`
	NavTimeout     time.Duration `mapstructure:"nav_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"` // Soft wait for network idle after load
	Linger         time.Duration `mapstructure:"linger"`       // Pause before closing, for watching a headed browser
}

// SeleniumConfig is only read when Browser.Driver is "selenium"
type SeleniumConfig struct {
	RemoteURL  string `mapstructure:"remote_url"`
	DriverPath string `mapstructure:"driver_path"`
	Port       int    `mapstructure:"port"`
}

// LLMConfig selects the structured-extraction provider
type LLMConfig struct {
	Provider      string `mapstructure:"provider"` // "gemini" or "anthropic"
	MaxInputChars int    `mapstructure:"max_input_chars"`
}

// GeminiConfig holds Google Gemini settings
type GeminiConfig struct {
	APIKey     string `mapstructure:"api_key"`
	PriceModel string `mapstructure:"price_model"`
	ImageModel string `mapstructure:"image_model"`
}

// AnthropicConfig holds Anthropic API settings
type AnthropicConfig struct {
	APIKey     string `mapstructure:"api_key"`
	PriceModel string `mapstructure:"price_model"`
	ImageModel string `mapstructure:"image_model"`
	MaxTokens  int64  `mapstructure:"max_tokens"`
}

// VerifyConfig configures image URL verification
type VerifyConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

// OutputConfig configures local result files
type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

// S3Config enables uploading results when Bucket is set
type S3Config struct {
	Bucket string `mapstructure:"bucket"`
	Region string `mapstructure:"region"`
	Prefix string `mapstructure:"prefix"`
}

// MongoConfig enables storing reports when URI is set
type MongoConfig struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

// PostgresConfig enables storing reports when DSN is set
type PostgresConfig struct {
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// RedisConfig enables the server's report cache when Addr is set
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// ServerConfig configures the HTTP surface
type ServerConfig struct {
	Port      int    `mapstructure:"port"`
	JWTSecret string `mapstructure:"jwt_secret"` // When set, API calls need a bearer token
}

// IsDevelopment reports whether the process runs in the development environment
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// Load reads configuration from .env, config.yaml and the environment
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("PAGEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Names the rest of the ecosystem already uses.
	_ = v.BindEnv("env", "PAGEX_ENV", "APP_ENV")
	_ = v.BindEnv("gemini.api_key", "PAGEX_GEMINI_API_KEY", "GEMINI_API_KEY")
	_ = v.BindEnv("anthropic.api_key", "PAGEX_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
	_ = v.BindEnv("postgres.dsn", "PAGEX_POSTGRES_DSN", "DATABASE_URL")
	_ = v.BindEnv("redis.addr", "PAGEX_REDIS_ADDR", "REDIS_ADDR")
	_ = v.BindEnv("server.jwt_secret", "PAGEX_SERVER_JWT_SECRET", "JWT_SECRET")
	_ = v.BindEnv("browser.headless", "PAGEX_BROWSER_HEADLESS")
	_ = v.BindEnv("browser.linger", "PAGEX_BROWSER_LINGER")

	v.SetDefault("env", EnvProduction)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("browser.driver", "chromedp")
	v.SetDefault("browser.user_agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/136.0.0.0 Safari/537.36")
	v.SetDefault("browser.viewport_width", 1366)
	v.SetDefault("browser.viewport_height", 768)
	v.SetDefault("browser.locale", "en-US")
	v.SetDefault("browser.timezone", "America/New_York")
	v.SetDefault("browser.nav_timeout", 2*time.Minute)
	v.SetDefault("browser.idle_timeout", 5*time.Second)
	v.SetDefault("selenium.remote_url", "")
	v.SetDefault("selenium.driver_path", "/usr/local/bin/chromedriver")
	v.SetDefault("selenium.port", 4444)
	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.max_input_chars", 1000000)
	v.SetDefault("gemini.price_model", "gemini-2.5-flash")
	v.SetDefault("gemini.image_model", "gemini-2.5-flash-lite")
	v.SetDefault("anthropic.price_model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.image_model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 4096)
	v.SetDefault("verify.timeout", 5*time.Second)
	v.SetDefault("verify.user_agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	v.SetDefault("output.dir", "output")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.prefix", "pages")
	v.SetDefault("mongo.uri", "")
	v.SetDefault("mongo.database", "pagex")
	v.SetDefault("mongo.collection", "reports")
	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.max_conns", 4)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", time.Hour)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.jwt_secret", "")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	// Development runs show the browser and keep it open briefly.
	if !v.IsSet("browser.headless") {
		cfg.Browser.Headless = !cfg.IsDevelopment()
	}
	if !v.IsSet("browser.linger") && cfg.IsDevelopment() {
		cfg.Browser.Linger = 5 * time.Second
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
