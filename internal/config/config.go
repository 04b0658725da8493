package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/danielpatrickdp/squat-coach/internal/feedback"
)

// FileName is the optional configuration file looked up in the config directory.
const FileName = "squat_coach.cfg.json"

// Config holds process-level settings shared by the commands.
type Config struct {
	LogLevel   string             `mapstructure:"logLevel"`
	DB         DBConfig           `mapstructure:"db"`
	GRPC       GRPCConfig         `mapstructure:"grpc"`
	Report     ReportConfig       `mapstructure:"report"`
	Thresholds map[string]float64 `mapstructure:"thresholds"`
}

// DBConfig holds SQLite session store settings.
type DBConfig struct {
	Path string `mapstructure:"path"`
}

// GRPCConfig holds the feedback service listen/dial address.
type GRPCConfig struct {
	Addr string `mapstructure:"addr"`
}

// ReportConfig holds chart output settings.
type ReportConfig struct {
	Dir string `mapstructure:"dir"`
}

// Load reads configuration from configDir, falling back to defaults when the file
// is absent. Environment variables prefixed SQUAT_ override both.
func Load(configDir string) (Config, error) {
	v := viper.New()

	v.SetDefault("logLevel", "info")
	v.SetDefault("db.path", "squat_coach.db")
	v.SetDefault("grpc.addr", "localhost:50061")
	v.SetDefault("report.dir", "./reports")
	v.SetDefault("thresholds.knee_min", 70)
	v.SetDefault("thresholds.knee_max", 120)

	v.SetEnvPrefix("SQUAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName(FileName)
	v.SetConfigType("json")
	if configDir != "" {
		v.AddConfigPath(configDir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	// Unmarshal sees nested keys only through the map; env overrides need explicit reads.
	cfg.Thresholds = map[string]float64{}
	for _, key := range []string{feedback.KeyKneeMin, feedback.KeyKneeMax} {
		if v.IsSet("thresholds." + key) {
			cfg.Thresholds[key] = v.GetFloat64("thresholds." + key)
		}
	}
	return cfg, nil
}

// KneeThresholds converts the flat threshold section into evaluator bounds.
func (c Config) KneeThresholds() (feedback.Thresholds, error) {
	return feedback.ThresholdsFromFlat(c.Thresholds)
}
