// Package config loads update checker settings.
//
// Settings come from four layers, later layers winning: built-in defaults,
// an optional TOML file, UPDATE_CHECKER_* environment variables and command
// line flags. Flags are applied by the caller after [Load] and
// [Config.ApplyEnv].
//
// # File Format
//
//	base_path = "/var/www/site"
//	allowed_types = ["silverstripe-vendormodule", "silverstripe-module"]
//	addr = ":8080"
//	log_level = "info"
//	composer_home = "/tmp"
//
//	[proxy]
//	host = "proxy.internal"
//	port = 3128
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/creative-commoners/silverstripe-composer-update-checker/pkg/environment"
	"github.com/creative-commoners/silverstripe-composer-update-checker/pkg/errors"
)

// Environment variables read by ApplyEnv.
const (
	EnvBasePath     = "UPDATE_CHECKER_BASE_PATH"
	EnvAllowedTypes = "UPDATE_CHECKER_ALLOWED_TYPES" // Comma-separated
	EnvAddr         = "UPDATE_CHECKER_ADDR"
	EnvLogLevel     = "UPDATE_CHECKER_LOG_LEVEL"
)

// Config holds all update checker settings.
type Config struct {
	BasePath string `toml:"base_path"`
	// AllowedTypes filters listings by package type. Nil lists every type.
	AllowedTypes []string `toml:"allowed_types"`
	Addr         string   `toml:"addr"`
	LogLevel     string   `toml:"log_level"`
	ComposerHome string   `toml:"composer_home"`
	Proxy        Proxy    `toml:"proxy"`
}

// Proxy is the outbound proxy Composer should use. It only takes effect
// when SS_OUTBOUND_PROXY and SS_OUTBOUND_PROXY_PORT are not already set.
type Proxy struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		BasePath:     ".",
		Addr:         ":8080",
		LogLevel:     "info",
		ComposerHome: environment.DefaultComposerHome,
	}
}

// Load returns the defaults overlaid with the TOML file at path. An empty
// path skips the file. Unknown keys are rejected so typos do not pass
// silently.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s not found", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// ApplyEnv overlays UPDATE_CHECKER_* variables from env onto c. Unset or
// empty variables leave the current value alone.
func (c *Config) ApplyEnv(env environment.Snapshot) {
	if v := env.Get(EnvBasePath); v != "" {
		c.BasePath = v
	}
	if v := env.Get(EnvAllowedTypes); v != "" {
		c.AllowedTypes = SplitTypes(v)
	}
	if v := env.Get(EnvAddr); v != "" {
		c.Addr = v
	}
	if v := env.Get(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
}

// Validate checks that c is usable.
func (c *Config) Validate() error {
	if err := errors.ValidatePath(c.BasePath); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "base_path")
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "log_level")
	}
	if c.Proxy.Port < 0 || c.Proxy.Port > 65535 {
		return errors.New(errors.ErrCodeInvalidConfig, "proxy.port %d out of range", c.Proxy.Port)
	}
	if c.Proxy.Port != 0 && c.Proxy.Host == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "proxy.port set without proxy.host")
	}
	return nil
}

// Level returns the parsed log level, falling back to info.
func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// Defaults returns the environment plan defaults this configuration implies.
func (c *Config) Defaults() environment.Defaults {
	return environment.Defaults{ComposerHome: c.ComposerHome}
}

// Snapshot returns env with the configured proxy filled in where the
// environment does not set one itself.
func (c *Config) Snapshot(env environment.Snapshot) environment.Snapshot {
	if c.Proxy.Host == "" || c.Proxy.Port == 0 {
		return env
	}
	if env.Get(environment.ProxyHost) != "" || env.Get(environment.ProxyPort) != "" {
		return env
	}
	return env.
		With(environment.ProxyHost, c.Proxy.Host).
		With(environment.ProxyPort, strconv.Itoa(c.Proxy.Port))
}

// SplitTypes parses a comma-separated type list, dropping blanks.
func SplitTypes(s string) []string {
	var types []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			types = append(types, t)
		}
	}
	return types
}
