package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/Digital-Shane/season-tidy/internal/core"
	"github.com/Digital-Shane/season-tidy/internal/session"
	"github.com/charmbracelet/log"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the effective configuration of one run.
type Config struct {
	MountPoint       string        `mapstructure:"mount_point"`
	SeriesTitle      string        `mapstructure:"series_title"`
	AutoRun          bool          `mapstructure:"auto_run"`
	PromptTimeout    time.Duration `mapstructure:"prompt_timeout"`
	JunkMarkers      []string      `mapstructure:"junk_markers"`
	Journal          bool          `mapstructure:"journal"`
	JournalDir       string        `mapstructure:"journal_dir"`
	LogRetentionDays int           `mapstructure:"log_retention_days"`
	LogLevel         string        `mapstructure:"log_level"`
}

// Flag names bound to configuration keys.
var flagKeys = map[string]string{
	"root":      "mount_point",
	"series":    "series_title",
	"auto":      "auto_run",
	"timeout":   "prompt_timeout",
	"junk":      "junk_markers",
	"log-level": "log_level",
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		PromptTimeout:    15 * time.Second,
		JunkMarkers:      append([]string(nil), core.DefaultJunkMarkers...),
		Journal:          true,
		LogRetentionDays: 30,
		LogLevel:         "info",
	}
}

// ConfigPath returns the path to the default config file
func ConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".season-tidy", "config.yaml"), nil
}

// Loader assembles a Config from defaults, a YAML file, a .env file, the
// environment and command line flags, in increasing precedence.
type Loader struct {
	Fs afero.Fs
	// ConfigFile is an explicit YAML file. It must exist when set. When empty
	// the default path is used if present.
	ConfigFile string
	// EnvFile is a dotenv file merged over the YAML file when present.
	EnvFile string
	Flags   *pflag.FlagSet
}

// Load reads and validates the configuration.
func (l Loader) Load() (*Config, error) {
	fs := l.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}

	v := viper.New()
	v.SetFs(fs)
	setDefaults(v)

	if err := l.readConfigFile(v, fs); err != nil {
		return nil, err
	}
	if err := l.mergeEnvFile(v, fs); err != nil {
		return nil, err
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := l.bindFlags(v); err != nil {
		return nil, err
	}

	cfg := &Config{}
	err := v.Unmarshal(cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		secondsOrDurationHook(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.JunkMarkers = trimMarkers(cfg.JunkMarkers)

	if cfg.JournalDir == "" {
		dir, err := session.DefaultDir()
		if err != nil {
			return nil, err
		}
		cfg.JournalDir = dir
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("mount_point", d.MountPoint)
	v.SetDefault("series_title", d.SeriesTitle)
	v.SetDefault("auto_run", d.AutoRun)
	v.SetDefault("prompt_timeout", d.PromptTimeout.String())
	v.SetDefault("junk_markers", d.JunkMarkers)
	v.SetDefault("journal", d.Journal)
	v.SetDefault("journal_dir", d.JournalDir)
	v.SetDefault("log_retention_days", d.LogRetentionDays)
	v.SetDefault("log_level", d.LogLevel)
}

func (l Loader) readConfigFile(v *viper.Viper, fs afero.Fs) error {
	path := l.ConfigFile
	if path == "" {
		def, err := ConfigPath()
		if err != nil {
			return nil
		}
		if ok, _ := afero.Exists(fs, def); !ok {
			return nil
		}
		path = def
	} else if ok, err := afero.Exists(fs, path); err != nil || !ok {
		return fmt.Errorf("config file %s not found", path)
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

func (l Loader) mergeEnvFile(v *viper.Viper, fs afero.Fs) error {
	if l.EnvFile == "" {
		return nil
	}
	data, err := afero.ReadFile(fs, l.EnvFile)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", l.EnvFile, err)
	}

	v.SetConfigType("env")
	if err := v.MergeConfig(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to parse %s: %w", l.EnvFile, err)
	}
	return nil
}

func (l Loader) bindFlags(v *viper.Viper) error {
	if l.Flags == nil {
		return nil
	}
	for name, key := range flagKeys {
		f := l.Flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	if f := l.Flags.Lookup("no-journal"); f != nil && f.Changed {
		v.Set("journal", f.Value.String() != "true")
	}
	return nil
}

// secondsOrDurationHook accepts a bare integer as seconds and anything else
// as a Go duration string.
func secondsOrDurationHook() mapstructure.DecodeHookFuncType {
	return func(from, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		switch from.Kind() {
		case reflect.String:
			s := strings.TrimSpace(data.(string))
			if n, err := strconv.Atoi(s); err == nil {
				return time.Duration(n) * time.Second, nil
			}
			return time.ParseDuration(s)
		case reflect.Int, reflect.Int64, reflect.Int32:
			return time.Duration(reflect.ValueOf(data).Int()) * time.Second, nil
		}
		return data, nil
	}
}

func trimMarkers(in []string) []string {
	out := make([]string, 0, len(in))
	for _, m := range in {
		if m = strings.TrimSpace(m); m != "" {
			out = append(out, m)
		}
	}
	return out
}

// Validate checks the values a run cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.MountPoint == "" {
		errs = append(errs, errors.New("mount point (root directory) is not set"))
	}
	if _, err := core.SanitizeName(c.SeriesTitle); err != nil {
		errs = append(errs, fmt.Errorf("series title: %w", err))
	}
	if c.PromptTimeout <= 0 {
		errs = append(errs, fmt.Errorf("prompt timeout must be positive, got %s", c.PromptTimeout))
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log level: %w", err))
	}
	return errors.Join(errs...)
}

// Level returns the parsed log level, defaulting to info.
func (c *Config) Level() log.Level {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}
