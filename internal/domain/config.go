package domain

import (
	"time"
)

// Config represents the main application configuration
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Advisory   AdvisoryConfig   `mapstructure:"advisory"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Confidence ConfidenceConfig `mapstructure:"confidence"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Upload     UploadConfig     `mapstructure:"upload"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	RateLimitRPS float64       `mapstructure:"rate_limit_rps"`
	RateLimitBurst int         `mapstructure:"rate_limit_burst"`
}

// DatabaseConfig represents guideline store configuration. Driver selects
// between the embedded sqlite store and postgres.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Path            string        `mapstructure:"path"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Database        string        `mapstructure:"database"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsPath  string        `mapstructure:"migrations_path"`
	CacheSize       int           `mapstructure:"cache_size"`
}

// AdvisoryConfig represents advisory model client configuration
type AdvisoryConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	BaseURL    string        `mapstructure:"base_url"`
	APIKey     string        `mapstructure:"api_key"`
	Model      string        `mapstructure:"model"`
	Timeout    time.Duration `mapstructure:"timeout"`
	RateLimit  float64       `mapstructure:"rate_limit"`
	RetryCount int           `mapstructure:"retry_count"`
}

// CacheConfig represents the optional redis cache for advisory narratives
type CacheConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	RedisURL    string        `mapstructure:"redis_url"`
	DefaultTTL  time.Duration `mapstructure:"default_ttl"`
	MaxRetries  int           `mapstructure:"max_retries"`
	PoolSize    int           `mapstructure:"pool_size"`
	PoolTimeout time.Duration `mapstructure:"pool_timeout"`
}

// ConfidenceConfig represents the blended confidence model weights and
// normalization windows
type ConfidenceConfig struct {
	WeightVCF  float64 `mapstructure:"weight_vcf"`
	WeightCPIC float64 `mapstructure:"weight_cpic"`
	WeightLLM  float64 `mapstructure:"weight_llm"`
	QualMin    float64 `mapstructure:"qual_min"`
	QualMax    float64 `mapstructure:"qual_max"`
	DepthMin   float64 `mapstructure:"depth_min"`
	DepthMax   float64 `mapstructure:"depth_max"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// UploadConfig represents VCF upload handling configuration
type UploadConfig struct {
	MaxFileSize int64  `mapstructure:"max_file_size"`
	TempDir     string `mapstructure:"temp_dir"`
}
