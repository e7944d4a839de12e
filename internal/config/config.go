package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Dekic648/segmentator/internal/dataset"
	"github.com/Dekic648/segmentator/internal/survey"
)

const dirName = ".segmentator"

// Global configuration structure.
type Global struct {
	SessionsDir string `mapstructure:"sessions_dir" yaml:"sessions_dir"`
	// Store selects the session backend: file or postgres.
	Store       string `mapstructure:"store" yaml:"store"`
	DatabaseURL string `mapstructure:"database_url" yaml:"database_url,omitempty"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	ServerAddr  string   `mapstructure:"server_addr" yaml:"server_addr"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`

	// Classifier thresholds
	CategoricalMaxDistinct int     `mapstructure:"categorical_max_distinct" yaml:"categorical_max_distinct"`
	OpenEndedMinLength     float64 `mapstructure:"open_ended_min_length" yaml:"open_ended_min_length"`
	LikertMin              float64 `mapstructure:"likert_min" yaml:"likert_min"`
	LikertMax              float64 `mapstructure:"likert_max" yaml:"likert_max"`

	// MissingMarkers replaces the built-in list when non-empty.
	MissingMarkers []string `mapstructure:"missing_markers" yaml:"missing_markers,omitempty"`
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.segmentator/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, dirName)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env (including a .env file in the working directory) > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	// Real environment variables win over .env entries.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("SEGMENTATOR")
	v.AutomaticEnv()

	v.SetDefault("sessions_dir", "")
	v.SetDefault("store", "file")
	v.SetDefault("database_url", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("server_addr", "127.0.0.1:8080")
	v.SetDefault("cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("categorical_max_distinct", 10)
	v.SetDefault("open_ended_min_length", 20.0)
	v.SetDefault("likert_min", 1.0)
	v.SetDefault("likert_max", 7.0)
	v.SetDefault("missing_markers", []string{})

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, dirName))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	// Env values arrive as one string split on whitespace; accept commas too.
	c.CORSOrigins = splitList(strings.Join(c.CORSOrigins, ","))
	c.MissingMarkers = splitList(strings.Join(c.MissingMarkers, ","))
	if c.SessionsDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		c.SessionsDir = filepath.Join(home, dirName, "sessions")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks values that would otherwise fail later in surprising ways.
func (c *Global) Validate() error {
	switch c.Store {
	case "file", "postgres":
	default:
		return fmt.Errorf("invalid store: %q (use file or postgres)", c.Store)
	}
	if c.CategoricalMaxDistinct < 0 {
		return fmt.Errorf("categorical_max_distinct must be >= 0, got %d", c.CategoricalMaxDistinct)
	}
	if c.LikertMin > c.LikertMax {
		return fmt.Errorf("likert_min (%g) exceeds likert_max (%g)", c.LikertMin, c.LikertMax)
	}
	return nil
}

// Set assigns one key from its string form, as used by `config set`.
func (c *Global) Set(key, val string) error {
	switch key {
	case "sessions_dir":
		c.SessionsDir = val
	case "store":
		switch strings.ToLower(val) {
		case "file", "postgres":
			c.Store = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid store: %s (use file or postgres)", val)
		}
	case "database_url":
		c.DatabaseURL = val
	case "log_level":
		c.LogLevel = val
	case "log_format":
		switch val {
		case "text", "json":
			c.LogFormat = val
		default:
			return fmt.Errorf("invalid log_format: %s (use text or json)", val)
		}
	case "server_addr":
		c.ServerAddr = val
	case "cors_origins":
		c.CORSOrigins = splitList(val)
	case "missing_markers":
		c.MissingMarkers = splitList(val)
	case "categorical_max_distinct":
		i, err := strconv.Atoi(val)
		if err != nil || i < 0 {
			return fmt.Errorf("invalid int for categorical_max_distinct: %v", val)
		}
		c.CategoricalMaxDistinct = i
	case "open_ended_min_length", "likert_min", "likert_max":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("invalid float for %s: %w", key, err)
		}
		switch key {
		case "open_ended_min_length":
			c.OpenEndedMinLength = f
		case "likert_min":
			c.LikertMin = f
		default:
			c.LikertMax = f
		}
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return c.Validate()
}

// ClassifierOptions returns the configured classifier thresholds.
func (c *Global) ClassifierOptions() survey.ClassifierOptions {
	return survey.ClassifierOptions{
		CategoricalMaxDistinct: c.CategoricalMaxDistinct,
		OpenEndedMinLength:     c.OpenEndedMinLength,
		LikertMin:              c.LikertMin,
		LikertMax:              c.LikertMax,
	}
}

// DatasetOptions returns loader options carrying the configured missing markers.
func (c *Global) DatasetOptions() dataset.Options {
	opt := dataset.DefaultOptions()
	if len(c.MissingMarkers) > 0 {
		opt.MissingMarkers = append([]string(nil), c.MissingMarkers...)
	}
	return opt
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
