// Package config loads the settings of the filmlab command from flags,
// FILMLAB_* environment variables, an optional .env file and an optional
// config file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. FILMLAB_QUALITY.
const EnvPrefix = "FILMLAB"

// Config holds the command settings.
type Config struct {
	LogLevel string `mapstructure:"log-level" validate:"oneof=debug info warn error"`

	OutDir      string `mapstructure:"out" validate:"required"`
	Format      string `mapstructure:"format" validate:"oneof=jpeg jpg png"`
	Quality     int    `mapstructure:"quality" validate:"gte=1,lte=100"`
	MaxDim      int    `mapstructure:"max-dimension" validate:"gte=0"`
	Concurrency int    `mapstructure:"concurrency" validate:"gte=1,lte=64"`

	Adjustments string `mapstructure:"adjustments" validate:"omitempty,file"`
	Profile     string `mapstructure:"profile" validate:"omitempty,file"`
	Preset      string `mapstructure:"preset"`
	LUTDir      string `mapstructure:"lut-dir" validate:"omitempty,dir"`
	Timestamp   bool   `mapstructure:"timestamp"`

	Backend         string `mapstructure:"backend" validate:"oneof=auto multi-pass single-pass cpu"`
	GPU             bool   `mapstructure:"gpu"`
	Workers         int    `mapstructure:"workers" validate:"gte=0,lte=512"`
	StickyThreshold int    `mapstructure:"sticky-threshold" validate:"gte=0"`
	MaxOutput       string `mapstructure:"max-output" validate:"required"`

	// MaxOutputBytes is MaxOutput parsed.
	MaxOutputBytes uint64 `mapstructure:"-"`
}

// Level returns the slog level of LogLevel.
func (c *Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// MaxPixels returns the output pixel limit implied by MaxOutput at four
// bytes per pixel.
func (c *Config) MaxPixels() int {
	return int(min(c.MaxOutputBytes/4, 1<<40)) //nolint:gosec // bounded above
}

// Flags returns the command's flag set with its defaults.
func Flags() *pflag.FlagSet {
	f := pflag.NewFlagSet("filmlab", pflag.ContinueOnError)
	f.String("config", "", "config file (json, yaml or toml)")
	f.String("env-file", ".env", "dotenv file loaded before reading the environment")
	f.String("log-level", "info", "log level: debug, info, warn or error")

	f.StringP("out", "o", "out", "output directory")
	f.StringP("format", "f", "jpeg", "output format: jpeg or png")
	f.IntP("quality", "q", 92, "JPEG quality 1-100")
	f.Int("max-dimension", 0, "bound the longer output edge (0 keeps the crop size)")
	f.IntP("concurrency", "j", 2, "exports running at once")

	f.StringP("adjustments", "a", "", "JSON file with adjustment sliders")
	f.StringP("profile", "p", "", "JSON film profile record")
	f.String("preset", "", "built-in film profile id")
	f.String("lut-dir", "", "directory of .cube files to import")
	f.Bool("timestamp", false, "draw the date imprint")

	f.String("backend", "auto", "first tier: auto, multi-pass, single-pass or cpu")
	f.Bool("gpu", true, "enable the GPU tiers")
	f.Int("workers", 0, "CPU worker goroutines (0 means GOMAXPROCS)")
	f.Int("sticky-threshold", 2, "multi-pass failures before a file skips the tier")
	f.String("max-output", "1GiB", "largest decoded output, e.g. 512MB")
	return f
}

// Load resolves the configuration for a parsed flag set.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}

	if env := v.GetString("env-file"); env != "" {
		if err := godotenv.Load(env); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", env, err)
		}
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	cfg := Config{}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Format = strings.ToLower(cfg.Format)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	n, err := humanize.ParseBytes(cfg.MaxOutput)
	if err != nil {
		return nil, fmt.Errorf("validate config: max-output %q: %w", cfg.MaxOutput, err)
	}
	if n < 4 {
		return nil, fmt.Errorf("validate config: max-output %q below one pixel", cfg.MaxOutput)
	}
	cfg.MaxOutputBytes = n
	return &cfg, nil
}
