// Package config loads layered configuration (flags > env > file >
// defaults) for the git-xrays CLI, grounded on the teacher's viper-based
// server config loader.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Sentinel validation errors.
var (
	ErrInvalidWindow       = errors.New("window_days must be positive")
	ErrInvalidPort         = errors.New("invalid server port")
	ErrInvalidKMeansBounds = errors.New("kmeans min_k must be less than max_k")
)

// Default configuration values.
const (
	defaultWindowDays = 90
	defaultHalfLifeHotspot = 30
	defaultHalfLifeKnowledge = 90
	defaultMinK  = 2
	defaultMaxK  = 8
	defaultSeed  = 42
	defaultPort  = 8085
	maxPort      = 65535
)

// Config holds all configuration for an analysis run.
type Config struct {
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Store    StoreConfig    `mapstructure:"store"`
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// AnalysisConfig holds pipeline-tuning parameters.
type AnalysisConfig struct {
	WindowDays          int     `mapstructure:"window_days"`
	HotspotHalfLifeDays float64 `mapstructure:"hotspot_half_life_days"`
	KnowledgeHalfLifeDays float64 `mapstructure:"knowledge_half_life_days"`
	KMeansMinK          int     `mapstructure:"kmeans_min_k"`
	KMeansMaxK          int     `mapstructure:"kmeans_max_k"`
	KMeansSeed          int64   `mapstructure:"kmeans_seed"`
}

// StoreConfig holds run-store persistence settings.
type StoreConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// ServerConfig holds the optional REST-boundary settings.
type ServerConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load builds a Config from (in increasing precedence) built-in
// defaults, an optional config file, environment variables prefixed
// GITXRAYS_, and whatever the caller has already set on v. The CLI
// layer passes a fresh viper instance and applies explicitly set cobra
// flags onto the returned Config after Load.
func Load(v *viper.Viper, configPath string) (*Config, error) {
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("git-xrays")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.git-xrays")
	}

	v.SetEnvPrefix("GITXRAYS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("analysis.window_days", defaultWindowDays)
	v.SetDefault("analysis.hotspot_half_life_days", defaultHalfLifeHotspot)
	v.SetDefault("analysis.knowledge_half_life_days", defaultHalfLifeKnowledge)
	v.SetDefault("analysis.kmeans_min_k", defaultMinK)
	v.SetDefault("analysis.kmeans_max_k", defaultMaxK)
	v.SetDefault("analysis.kmeans_seed", defaultSeed)

	v.SetDefault("store.db_path", "")

	v.SetDefault("server.enabled", false)
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", defaultPort)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

func validate(cfg *Config) error {
	if cfg.Analysis.WindowDays <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWindow, cfg.Analysis.WindowDays)
	}

	if cfg.Server.Port <= 0 || cfg.Server.Port > maxPort {
		return fmt.Errorf("%w: %d", ErrInvalidPort, cfg.Server.Port)
	}

	if cfg.Analysis.KMeansMinK >= cfg.Analysis.KMeansMaxK {
		return fmt.Errorf("%w: min=%d max=%d", ErrInvalidKMeansBounds, cfg.Analysis.KMeansMinK, cfg.Analysis.KMeansMaxK)
	}

	return nil
}
