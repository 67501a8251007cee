package model

import "time"

// Config holds all runtime configuration
type Config struct {
	HTTP         HTTPConfig         `yaml:"http" mapstructure:"http"`
	Extract      ExtractConfig      `yaml:"extract" mapstructure:"extract"`
	Scoring      ScoringConfig      `yaml:"scoring" mapstructure:"scoring"`
	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
	Server       ServerConfig       `yaml:"server" mapstructure:"server"`
	Auth         AuthConfig         `yaml:"auth" mapstructure:"auth"`
	Store        StoreConfig        `yaml:"store" mapstructure:"store"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Report       ReportConfig       `yaml:"report" mapstructure:"report"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	Logging      LoggingConfig      `yaml:"logging" mapstructure:"logging"`
}

// HTTPConfig controls outbound page fetches
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	MaxRedirects int           `yaml:"max_redirects" mapstructure:"max_redirects"`
	HTTPProxy    string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
}

// ExtractConfig controls content extraction
type ExtractConfig struct {
	RespectRobots bool `yaml:"respect_robots" mapstructure:"respect_robots"`
	Readability   bool `yaml:"readability" mapstructure:"readability"`
}

// ScoringConfig holds the domain lists used by the rule scorer
type ScoringConfig struct {
	TrustedDomains      []string `yaml:"trusted_domains" mapstructure:"trusted_domains"`
	QuestionableDomains []string `yaml:"questionable_domains" mapstructure:"questionable_domains"`
}

// LLMConfig configures the optional AI-assisted path
type LLMConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"`
	Model     string `yaml:"model,omitempty" mapstructure:"model"`
	APIKey    string `yaml:"-" mapstructure:"api_key"`
	BaseURL   string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// ServerConfig controls the HTTP API
type ServerConfig struct {
	Addr            string        `yaml:"addr" mapstructure:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
	AnalyzeTimeout  time.Duration `yaml:"analyze_timeout" mapstructure:"analyze_timeout"`
	Debug           bool          `yaml:"debug" mapstructure:"debug"`
}

// AuthConfig holds the token verification secret
type AuthConfig struct {
	JWTSecret string        `yaml:"-" mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl" mapstructure:"token_ttl"`
}

// StoreConfig selects the history backend
type StoreConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"` // memory, sqlite, postgres
	DSN    string `yaml:"dsn,omitempty" mapstructure:"dsn"`
}

// CacheConfig controls the analysis result cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	TTL       time.Duration `yaml:"ttl" mapstructure:"ttl"`
	RedisAddr string        `yaml:"redis_addr,omitempty" mapstructure:"redis_addr"`
	RedisDB   int           `yaml:"redis_db" mapstructure:"redis_db"`
}

// ReportConfig controls where rendered reports go
type ReportConfig struct {
	Dir        string `yaml:"dir" mapstructure:"dir"`
	S3Bucket   string `yaml:"s3_bucket,omitempty" mapstructure:"s3_bucket"`
	S3Prefix   string `yaml:"s3_prefix,omitempty" mapstructure:"s3_prefix"`
	S3Region   string `yaml:"s3_region,omitempty" mapstructure:"s3_region"`
	S3Endpoint string `yaml:"s3_endpoint,omitempty" mapstructure:"s3_endpoint"`

	// Static credentials; empty uses the default AWS credential chain
	S3AccessKeyID     string `yaml:"-" mapstructure:"s3_access_key_id"`
	S3SecretAccessKey string `yaml:"-" mapstructure:"s3_secret_access_key"`
}

// RateLimitingConfig controls token buckets for the API and batch fetches
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// ConcurrencyConfig controls batch workers
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// LoggingConfig controls structured logging
type LoggingConfig struct {
	Level       string `yaml:"level" mapstructure:"level"`
	Development bool   `yaml:"development" mapstructure:"development"`
}

// DefaultUserAgent is a realistic browser user agent; some news sites block bot agents
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// DefaultTrustedDomains are outlets and agencies that earn the domain bonus
var DefaultTrustedDomains = []string{
	"reuters.com",
	"apnews.com",
	"bbc.com",
	"bbc.co.uk",
	"npr.org",
	"cnn.com",
	"nytimes.com",
	"washingtonpost.com",
	"theguardian.com",
	"wsj.com",
	"nature.com",
	"science.org",
	"who.int",
	"cdc.gov",
}

// DefaultQuestionableDomains earn the domain penalty
var DefaultQuestionableDomains = []string{
	"infowars.com",
	"breitbart.com",
	"naturalnews.com",
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:      10 * time.Second,
			UserAgent:    DefaultUserAgent,
			MaxBodyBytes: 2_000_000,
			MaxRedirects: 5,
		},
		Extract: ExtractConfig{
			RespectRobots: false,
			Readability:   true,
		},
		Scoring: ScoringConfig{
			TrustedDomains:      append([]string(nil), DefaultTrustedDomains...),
			QuestionableDomains: append([]string(nil), DefaultQuestionableDomains...),
		},
		LLM: LLMConfig{
			Timeout:   30,
			MaxTokens: 1500,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    90 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			AnalyzeTimeout:  60 * time.Second,
		},
		Auth: AuthConfig{
			TokenTTL: 24 * time.Hour,
		},
		Store: StoreConfig{
			Driver: "sqlite",
			DSN:    "credence.db",
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     time.Hour,
		},
		Report: ReportConfig{
			Dir: "./credence-reports",
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 2,
			BurstSize:         5,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
