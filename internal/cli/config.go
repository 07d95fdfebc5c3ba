package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// Config File
// =============================================================================

// Config holds the optional TOML configuration. File values sit below
// environment variables and flags in precedence: flags override env, env
// overrides the file, and the file overrides built-in defaults.
type Config struct {
	Store    StoreConfig    `toml:"store"`
	Cache    CacheConfig    `toml:"cache"`
	Defaults DefaultsConfig `toml:"defaults"`
}

// StoreConfig selects the Mongo template store.
type StoreConfig struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// CacheConfig selects the byte-cache backend. RedisAddr takes precedence
// over Dir when both are set.
type CacheConfig struct {
	Dir       string `toml:"dir"`
	RedisAddr string `toml:"redis_addr"`
}

// DefaultsConfig overrides the built-in generation defaults.
type DefaultsConfig struct {
	Width  int `toml:"width"`
	Count  int `toml:"count"`
	Length int `toml:"length"`
}

const (
	defaultStoreURI      = "mongodb://localhost:27017"
	defaultStoreDatabase = "revsynth"
)

// storeURI returns the configured Mongo URI or the local default.
func (c *Config) storeURI() string {
	if c.Store.URI != "" {
		return c.Store.URI
	}
	return defaultStoreURI
}

// storeDatabase returns the configured database name or the default.
func (c *Config) storeDatabase() string {
	if c.Store.Database != "" {
		return c.Store.Database
	}
	return defaultStoreDatabase
}

// loadConfig reads the TOML config file. An explicitly given path must
// exist; the default path is optional and yields an empty config when the
// file is missing.
func (c *CLI) loadConfig() (*Config, error) {
	path := c.configPath
	explicit := path != ""
	if !explicit {
		var err error
		path, err = defaultConfigPath()
		if err != nil {
			return &Config{}, nil
		}
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) && !explicit {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return &cfg, nil
}

// defaultConfigPath returns the config file location using the XDG
// standard (~/.config/revsynth/config.toml).
func defaultConfigPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// =============================================================================
// Environment
// =============================================================================

// envInt reads an integer environment variable. Unset or malformed values
// report ok == false.
func envInt(name string) (int, bool) {
	v := os.Getenv(name)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// envString reads a string environment variable; empty counts as unset.
func envString(name string) (string, bool) {
	v := os.Getenv(name)
	return v, v != ""
}

// envBool reads a boolean environment variable. The cluster scripts set
// "1"/"0"; anything strconv.ParseBool accepts works.
func envBool(name string) (bool, bool) {
	v := os.Getenv(name)
	if v == "" {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}

// The cluster job contract: qsub submissions configure a run entirely
// through these variables (WIDTH, COUNT, LENGTH, OUTPUT, USE_DB,
// USE_CACHE). PBS_JOBID and JOB_ID are resolved inside the pipeline.
func widthFromEnv() (int, bool)     { return envInt("WIDTH") }
func countFromEnv() (int, bool)     { return envInt("COUNT") }
func outputFromEnv() (string, bool) { return envString("OUTPUT") }
func useDBFromEnv() (bool, bool)    { return envBool("USE_DB") }
func useCacheFromEnv() (bool, bool) { return envBool("USE_CACHE") }

// lengthFromEnv reads the target length, accepting DEPTH as the legacy
// spelling used by older job scripts.
func lengthFromEnv() (int, bool) {
	if n, ok := envInt("LENGTH"); ok {
		return n, true
	}
	return envInt("DEPTH")
}

// =============================================================================
// Precedence
// =============================================================================

// resolveInt applies the flag > env > file > default precedence for one
// integer knob. changed reports whether the user set the flag explicitly;
// flagVal carries the built-in default otherwise. A zero fileVal means the
// config file does not set the knob.
func resolveInt(changed bool, flagVal int, env func() (int, bool), fileVal int) int {
	if changed {
		return flagVal
	}
	if v, ok := env(); ok {
		return v
	}
	if fileVal != 0 {
		return fileVal
	}
	return flagVal
}

// resolveString applies flag > env precedence for a string knob.
func resolveString(changed bool, flagVal string, env func() (string, bool)) string {
	if changed {
		return flagVal
	}
	if v, ok := env(); ok {
		return v
	}
	return flagVal
}

// resolveBool applies flag > env precedence for a boolean knob.
func resolveBool(changed bool, flagVal bool, env func() (bool, bool)) bool {
	if changed {
		return flagVal
	}
	if v, ok := env(); ok {
		return v
	}
	return flagVal
}
