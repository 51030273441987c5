package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration. It is constructed
// once at process start and passed into each stage.
type Config struct {
	Data     DataConfig     `yaml:"data" mapstructure:"data"`
	Collect  CollectConfig  `yaml:"collect" mapstructure:"collect"`
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// DataConfig holds the directory layout and artifact paths.
type DataConfig struct {
	RawDir       string `yaml:"raw_dir" mapstructure:"raw_dir"`
	ProcessedDir string `yaml:"processed_dir" mapstructure:"processed_dir"`
	ModelPath    string `yaml:"model_path" mapstructure:"model_path"`
}

// CollectConfig configures the data-collection stage.
type CollectConfig struct {
	AdzunaAppID   string  `yaml:"adzuna_app_id" mapstructure:"adzuna_app_id"`
	AdzunaAPIKey  string  `yaml:"adzuna_api_key" mapstructure:"adzuna_api_key"`
	AdzunaBaseURL string  `yaml:"adzuna_base_url" mapstructure:"adzuna_base_url"`
	JoobleAPIKey  string  `yaml:"jooble_api_key" mapstructure:"jooble_api_key"`
	JoobleBaseURL string  `yaml:"jooble_base_url" mapstructure:"jooble_base_url"`
	Country       string  `yaml:"country" mapstructure:"country"`
	What          string  `yaml:"what" mapstructure:"what"`
	MaxPages      int     `yaml:"max_pages" mapstructure:"max_pages"`
	RatePerSec    float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	Synthetic     int     `yaml:"synthetic" mapstructure:"synthetic"`
}

// PipelineConfig configures normalization, training, and splits.
type PipelineConfig struct {
	MinTrainingRecords int     `yaml:"min_training_records" mapstructure:"min_training_records"`
	RandomSeed         int64   `yaml:"random_seed" mapstructure:"random_seed"`
	TestFraction       float64 `yaml:"test_fraction" mapstructure:"test_fraction"`
}

// StoreConfig configures the run-history backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the dashboard-facing API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("JOBMARKET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.raw_dir", "data/raw")
	v.SetDefault("data.processed_dir", "data/processed")
	v.SetDefault("data.model_path", "models/salary_model.json")
	v.SetDefault("collect.adzuna_base_url", "https://api.adzuna.com/v1/api")
	v.SetDefault("collect.jooble_base_url", "https://jooble.org/api")
	v.SetDefault("collect.country", "es")
	v.SetDefault("collect.what", "developer OR programmer OR engineer OR data")
	v.SetDefault("collect.max_pages", 5)
	v.SetDefault("collect.rate_per_sec", 2)
	v.SetDefault("collect.synthetic", 200)
	v.SetDefault("pipeline.min_training_records", 30)
	v.SetDefault("pipeline.random_seed", 42)
	v.SetDefault("pipeline.test_fraction", 0.2)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "jobmarket.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
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
