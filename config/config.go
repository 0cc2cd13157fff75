package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. LMSCTL_LMS_SHARED_SECRET.
const EnvPrefix = "LMSCTL"

const placeholderSecret = "your-shared-secret-here"

var validate = newValidator()

// Load loads the configuration from file and the environment. Without an
// explicit path a missing config file is not an error, so the whole
// configuration can come from LMSCTL_ variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".lmsctl"))
		}
		v.AddConfigPath("/etc/lmsctl/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values. Every key that may come
// from the environment needs a default so viper knows to look it up.
func setDefaults(v *viper.Viper) {
	v.SetDefault("lms.url", "")
	v.SetDefault("lms.username", "")
	v.SetDefault("lms.shared_secret", "")
	v.SetDefault("lms.secret_key", "")
	v.SetDefault("lms.user_agent", "lmsctl")
	v.SetDefault("lms.timeout", "30s")
	v.SetDefault("lms.ping_uploader", false)
	v.SetDefault("lms.concurrency", 4)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.invalidate_on_write", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)

	v.SetDefault("update.repository", "s0up4200/lmsctl")
}

// Validate checks the configuration against its struct tags. Errors name
// the offending keys the way they appear in the config file.
func Validate(cfg *Config) error {
	if cfg.LMS.SharedSecret == placeholderSecret {
		return errors.New("lms.shared_secret must be set to a valid secret")
	}

	err := validate.Struct(cfg)
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	key := fe.Namespace()
	if _, rest, ok := strings.Cut(key, "."); ok {
		key = rest
	}

	switch fe.Tag() {
	case "required":
		return key + " is required"
	case "url":
		return fmt.Sprintf("%s must be a valid URL: %v", key, fe.Value())
	case "oneof":
		return fmt.Sprintf("invalid %s: %v (expected one of: %s)", key, fe.Value(), fe.Param())
	default:
		return fmt.Sprintf("invalid %s: %v (must be %s %s)", key, fe.Value(), fe.Tag(), fe.Param())
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}
