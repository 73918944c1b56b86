package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Remote   RemoteConfig   `mapstructure:"remote"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Audio    AudioConfig    `mapstructure:"audio"`
	Database DatabaseConfig `mapstructure:"database"`
}

type RemoteConfig struct {
	Endpoint      string        `mapstructure:"endpoint" validate:"url"`
	PageSize      int           `mapstructure:"page_size" validate:"gte=1,lte=100"`
	PageDelay     time.Duration `mapstructure:"page_delay" validate:"gte=0"`
	RetryAttempts int           `mapstructure:"retry_attempts" validate:"gte=0,lte=10"`
	MaxEntries    int           `mapstructure:"max_entries" validate:"gte=0"`
}

type CacheConfig struct {
	Directory string        `mapstructure:"directory"`
	MaxAge    time.Duration `mapstructure:"max_age" validate:"gt=0"`
}

type AudioConfig struct {
	Directory     string        `mapstructure:"directory"`
	DurationsFile string        `mapstructure:"durations_file"`
	BatchDelay    time.Duration `mapstructure:"batch_delay" validate:"gte=0"`
	BatchSize     int           `mapstructure:"batch_size" validate:"gte=1,lte=50"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/wayuu")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("remote.endpoint", "https://datasets-server.huggingface.co/rows")
	v.SetDefault("remote.page_size", 100)
	v.SetDefault("remote.page_delay", "300ms")
	v.SetDefault("remote.retry_attempts", 3)
	v.SetDefault("remote.max_entries", 0)
	v.SetDefault("cache.directory", filepath.Join("data", "cache"))
	v.SetDefault("cache.max_age", "24h")
	v.SetDefault("audio.directory", filepath.Join("data", "audio"))
	v.SetDefault("audio.durations_file", filepath.Join("data", "audio_durations.json"))
	v.SetDefault("audio.batch_delay", "1s")
	v.SetDefault("audio.batch_size", 10)
	v.SetDefault("database.path", filepath.Join("data", "registry.db"))

	// Bind deployment-specific overrides to environment variables only (not
	// from config file)
	if err := v.BindEnv("remote.endpoint", "WAYUU_ROWS_ENDPOINT"); err != nil {
		return nil, fmt.Errorf("failed to bind WAYUU_ROWS_ENDPOINT environment variable: %w", err)
	}
	if err := v.BindEnv("database.path", "WAYUU_REGISTRY_PATH"); err != nil {
		return nil, fmt.Errorf("failed to bind WAYUU_REGISTRY_PATH environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.Struct(cfg); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}

// Load reads the configuration from configFile, or from the default search
// paths when configFile is empty.
func Load(configFile string) (*Config, error) {
	loader, err := NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("NewConfigLoader() > %w", err)
	}
	return loader.Load()
}
