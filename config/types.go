package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	LMS     LMSConfig     `mapstructure:"lms"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Filter  FilterConfig  `mapstructure:"filter"`
	Logging LoggingConfig `mapstructure:"logging"`
	Update  UpdateConfig  `mapstructure:"update"`
}

// LMSConfig holds the training registry connection details
type LMSConfig struct {
	URL          string        `mapstructure:"url" validate:"required,url"`
	Username     string        `mapstructure:"username" validate:"required"`
	SharedSecret string        `mapstructure:"shared_secret" validate:"required"`
	SecretKey    string        `mapstructure:"secret_key"`
	UserAgent    string        `mapstructure:"user_agent"`
	Timeout      time.Duration `mapstructure:"timeout" validate:"gt=0"`
	PingUploader bool          `mapstructure:"ping_uploader"`
	Concurrency  int           `mapstructure:"concurrency" validate:"gte=1,lte=64"`
}

// CacheConfig controls lookup memoization
type CacheConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	InvalidateOnWrite bool `mapstructure:"invalidate_on_write"`
}

// FilterConfig contains named filter expressions per record kind
type FilterConfig struct {
	Nodes          map[string]string `mapstructure:"nodes"`
	Qualifications map[string]string `mapstructure:"qualifications"`
	Activities     map[string]string `mapstructure:"activities"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=trace debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=console json"`
	Color  bool   `mapstructure:"color"`
}

// UpdateConfig controls self-update
type UpdateConfig struct {
	Repository string `mapstructure:"repository" validate:"required"`
}
