package config

// Config represents the complete configuration for the doclens service.
// It covers all commands (serve, locate, scan, print) and supports loading
// from configuration files, environment variables, and command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Document storage
	Documents DocumentsConfig `mapstructure:"documents" yaml:"documents" json:"documents"`

	// OCR fallback settings
	OCR OCRConfig `mapstructure:"ocr" yaml:"ocr" json:"ocr"`

	// Coordinate cache settings
	Cache CacheConfig `mapstructure:"cache" yaml:"cache" json:"cache"`

	// Radar scan settings
	Scan ScanConfig `mapstructure:"scan" yaml:"scan" json:"scan"`

	// Print flattening settings
	Print PrintConfig `mapstructure:"print" yaml:"print" json:"print"`

	// Server configuration (for serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`
}

// DocumentsConfig locates the document store.
type DocumentsConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir" json:"dir"`
}

// OCRConfig contains OCR fallback settings.
type OCRConfig struct {
	Languages  string `mapstructure:"languages" yaml:"languages" json:"languages"`
	TimeoutSec int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
}

// CacheConfig contains coordinate cache settings. Backend is "memory" or
// "redis"; Redis lets several service instances share one OCR cache.
type CacheConfig struct {
	Backend       string `mapstructure:"backend" yaml:"backend" json:"backend"`
	TTLDays       int    `mapstructure:"ttl_days" yaml:"ttl_days" json:"ttl_days"`
	RedisAddr     string `mapstructure:"redis_addr" yaml:"redis_addr" json:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password" yaml:"redis_password" json:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db" yaml:"redis_db" json:"redis_db"`
}

// ScanConfig contains radar scan settings.
type ScanConfig struct {
	BatchSize int `mapstructure:"batch_size" yaml:"batch_size" json:"batch_size"`
}

// PrintConfig contains print flattening settings.
type PrintConfig struct {
	Scale float64 `mapstructure:"scale" yaml:"scale" json:"scale"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string `mapstructure:"host" yaml:"host" json:"host"`
	Port            int    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin      string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	TimeoutSec      int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`

	// Rate limiting
	RateLimitEnabled  bool `mapstructure:"rate_limit_enabled" yaml:"rate_limit_enabled" json:"rate_limit_enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute" yaml:"requests_per_minute" json:"requests_per_minute"`
	RequestsPerHour   int  `mapstructure:"requests_per_hour" yaml:"requests_per_hour" json:"requests_per_hour"`
	MaxRequestsPerDay int  `mapstructure:"max_requests_per_day" yaml:"max_requests_per_day" json:"max_requests_per_day"`
}
