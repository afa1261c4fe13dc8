package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	EnvPrefix   = "AGRIATLAS"
	DefaultFile = "agri-atlas.yaml"
)

// ResolvePath returns path, or DefaultFile when path is empty and that file
// exists in the working directory.
func ResolvePath(path string) string {
	if path != "" {
		return path
	}
	if _, err := os.Stat(DefaultFile); err == nil {
		return DefaultFile
	}
	return ""
}

type Config struct {
	Dataset   DatasetConfig   `mapstructure:"dataset"`
	DuckDB    DuckDBConfig    `mapstructure:"duckdb"`
	Export    ExportConfig    `mapstructure:"export"`
	Assistant AssistantConfig `mapstructure:"assistant"`
	Alerts    AlertsConfig    `mapstructure:"alerts"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
}

type DatasetConfig struct {
	// Source is "fixture" (YAML file or the embedded dataset) or "duckdb"
	Source string `mapstructure:"source"`
	// Path of a YAML dataset; empty selects the embedded dataset
	Path string `mapstructure:"path"`
}

type DuckDBConfig struct {
	Path string `mapstructure:"path"`
}

type ExportConfig struct {
	Dir      string `mapstructure:"dir"`
	Sink     string `mapstructure:"sink"`
	Bucket   string `mapstructure:"bucket"`
	Profile  string `mapstructure:"profile"`
	Profiles string `mapstructure:"profiles"`
}

type AssistantConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit float64       `mapstructure:"rate_limit"`
}

type AlertsConfig struct {
	GroundwaterDependence float64 `mapstructure:"groundwater_dependence"`
	CriticalStage         float64 `mapstructure:"critical_stage"`
	OverExploitation      float64 `mapstructure:"over_exploitation"`
	MarginalShare         float64 `mapstructure:"marginal_share"`
	DiversityFloor        float64 `mapstructure:"diversity_floor"`
	FirstMatchOnly        bool    `mapstructure:"first_match_only"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("dataset.source", "fixture")
	v.SetDefault("dataset.path", "")
	v.SetDefault("duckdb.path", "agri-atlas.duckdb")
	v.SetDefault("export.dir", "exports")
	v.SetDefault("export.sink", "local")
	v.SetDefault("export.bucket", "")
	v.SetDefault("export.profile", "default")
	v.SetDefault("export.profiles", "")
	v.SetDefault("assistant.base_url", "")
	v.SetDefault("assistant.timeout", 30*time.Second)
	v.SetDefault("assistant.rate_limit", 1.0)
	v.SetDefault("alerts.groundwater_dependence", 65.0)
	v.SetDefault("alerts.critical_stage", 90.0)
	v.SetDefault("alerts.over_exploitation", 100.0)
	v.SetDefault("alerts.marginal_share", 70.0)
	v.SetDefault("alerts.diversity_floor", 0.4)
	v.SetDefault("alerts.first_match_only", false)
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("log.level", "info")
}

// LoadConfig reads path when given, then applies AGRIATLAS_* environment
// overrides (AGRIATLAS_EXPORT_SINK overrides export.sink). An empty path
// yields the defaults plus environment.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	switch c.Dataset.Source {
	case "fixture", "duckdb":
	default:
		errs = append(errs, fmt.Errorf("dataset.source must be fixture or duckdb, got %q", c.Dataset.Source))
	}
	switch c.Export.Sink {
	case "local", "s3", "minio":
	default:
		errs = append(errs, fmt.Errorf("export.sink must be local, s3 or minio, got %q", c.Export.Sink))
	}
	if c.Export.Sink != "local" && c.Export.Bucket == "" {
		errs = append(errs, fmt.Errorf("export.bucket is required for the %s sink", c.Export.Sink))
	}
	if c.Assistant.RateLimit <= 0 {
		errs = append(errs, fmt.Errorf("assistant.rate_limit must be positive"))
	}
	return errors.Join(errs...)
}
