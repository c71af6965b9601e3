package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/loykin/launchstub/internal/cmdline"
	"github.com/loykin/launchstub/internal/env"
	"github.com/loykin/launchstub/internal/location"
	"github.com/loykin/launchstub/internal/logger"
)

// EnvPrefix prefixes environment overrides, e.g. LAUNCHSTUB_DEBUG=1.
const EnvPrefix = "LAUNCHSTUB"

// PathEnv names the variable holding an explicit config file path.
const PathEnv = EnvPrefix + "_CONFIG"

// Config is the launcher configuration. Every field has a default, so the
// launcher runs without any file.
type Config struct {
	Target          string        `mapstructure:"target"` // sibling executable; default <stem>-orig<ext>
	PathVar         string        `mapstructure:"path_var"`
	HomeVar         string        `mapstructure:"home_var"`
	PathRelDir      string        `mapstructure:"path_rel_dir"`
	HomeRelDir      string        `mapstructure:"home_rel_dir"`
	JobName         string        `mapstructure:"job_name"` // empty: anonymous job object
	Breakaway       bool          `mapstructure:"breakaway"`
	StrictCmdline   bool          `mapstructure:"strict_cmdline"`
	CmdlineCapacity int           `mapstructure:"cmdline_capacity"`
	Debug           bool          `mapstructure:"debug"`
	Log             LogConfig     `mapstructure:"log"`
	Metrics         MetricsConfig `mapstructure:"metrics"`
	History         HistoryConfig `mapstructure:"history"`
}

type LogConfig = logger.FileConfig

type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"` // node-exporter textfile collector target
}

type HistoryConfig struct {
	DSN     string        `mapstructure:"dsn"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		PathVar:         env.DefaultPathVar,
		HomeVar:         env.DefaultHomeVar,
		PathRelDir:      env.DefaultPathRel,
		HomeRelDir:      env.DefaultHomeRel,
		Breakaway:       true,
		StrictCmdline:   true,
		CmdlineCapacity: cmdline.DefaultCapacity,
		History:         HistoryConfig{Timeout: 2 * time.Second},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("target", d.Target)
	v.SetDefault("path_var", d.PathVar)
	v.SetDefault("home_var", d.HomeVar)
	v.SetDefault("path_rel_dir", d.PathRelDir)
	v.SetDefault("home_rel_dir", d.HomeRelDir)
	v.SetDefault("job_name", d.JobName)
	v.SetDefault("breakaway", d.Breakaway)
	v.SetDefault("strict_cmdline", d.StrictCmdline)
	v.SetDefault("cmdline_capacity", d.CmdlineCapacity)
	v.SetDefault("debug", d.Debug)
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 0)
	v.SetDefault("log.max_backups", 0)
	v.SetDefault("log.max_age_days", 0)
	v.SetDefault("log.compress", false)
	v.SetDefault("metrics.textfile", "")
	v.SetDefault("history.dsn", "")
	v.SetDefault("history.timeout", d.History.Timeout)
}

// FilePath returns the config file the launcher at loc would read:
// $LAUNCHSTUB_CONFIG if set, otherwise <stem>.toml next to the launcher.
func FilePath(loc location.Location) string {
	if p := os.Getenv(PathEnv); p != "" {
		return p
	}
	return loc.Rel(loc.Stem() + ".toml")
}

// Load reads the config for the launcher at loc. A missing default file
// is not an error; a missing explicit file is.
func Load(loc location.Location) (Config, error) {
	path := FilePath(loc)
	explicit := os.Getenv(PathEnv) != ""
	if _, err := os.Stat(path); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			path = ""
		} else {
			return Config{}, err
		}
	}
	return LoadFile(path)
}

// LoadFile reads a TOML config file (or only defaults and environment
// overrides when path is empty) and validates it.
func LoadFile(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects settings the launcher cannot act on.
func (c Config) Validate() error {
	var errs []error
	if strings.ContainsAny(c.Target, `/\`) {
		errs = append(errs, fmt.Errorf("target %q must be a file name next to the launcher", c.Target))
	}
	if c.PathVar == "" || c.HomeVar == "" {
		errs = append(errs, errors.New("path_var and home_var must not be empty"))
	}
	if c.CmdlineCapacity <= 0 {
		errs = append(errs, fmt.Errorf("cmdline_capacity must be positive, got %d", c.CmdlineCapacity))
	}
	if c.History.Timeout < 0 {
		errs = append(errs, errors.New("history.timeout must not be negative"))
	}
	return errors.Join(errs...)
}

// TargetName returns the configured target or the launcher's sibling name.
func (c Config) TargetName(loc location.Location) string {
	if c.Target != "" {
		return c.Target
	}
	return loc.Sibling()
}

// EnvBuilder returns the environment builder for these settings.
func (c Config) EnvBuilder() env.Builder {
	return env.Builder{
		PathVar: c.PathVar,
		HomeVar: c.HomeVar,
		PathRel: c.PathRelDir,
		HomeRel: c.HomeRelDir,
	}
}

// Logger returns the diagnostic logging settings.
func (c Config) Logger() logger.Config {
	return logger.Config{Debug: c.Debug, File: c.Log}
}
