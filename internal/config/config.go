package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"todo/internal/util"
)

const (
	DefaultAddr            = ":8080"
	DefaultDBPath          = "data/todo.db"
	DefaultStaticDir       = "web/dist"
	DefaultAPIPrefix       = "/api/v1"
	DefaultEnvironment     = "development"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
	DefaultPageSize        = 100
	DefaultMaxPageSize     = 1000
	DefaultConfigFileName  = "todo.toml"
	EnvironmentProduction  = "production"
	EnvironmentDevelopment = "development"
)

// Environment variable names that override file values.
const (
	EnvAddr        = "TODO_ADDR"
	EnvDBPath      = "TODO_DB_PATH"
	EnvStaticDir   = "TODO_STATIC_DIR"
	EnvAPIPrefix   = "TODO_API_PREFIX"
	EnvEnvironment = "TODO_ENV"
	EnvLogLevel    = "TODO_LOG_LEVEL"
	EnvLogFormat   = "TODO_LOG_FORMAT"
	EnvPageSize    = "TODO_PAGE_SIZE"
	EnvMaxPageSize = "TODO_MAX_PAGE_SIZE"
)

// Config defines runtime configuration for the todo server.
type Config struct {
	Addr            string `toml:"addr"`
	DBPath          string `toml:"db_path"`
	StaticDir       string `toml:"static_dir"`
	APIPrefix       string `toml:"api_prefix"`
	Environment     string `toml:"environment"`
	LogLevel        string `toml:"log_level"`
	LogFormat       string `toml:"log_format"`
	DefaultPageSize int    `toml:"default_page_size"`
	MaxPageSize     int    `toml:"max_page_size"`
}

// Default returns default configuration values.
func Default() Config {
	return Config{
		Addr:            DefaultAddr,
		DBPath:          DefaultDBPath,
		StaticDir:       DefaultStaticDir,
		APIPrefix:       DefaultAPIPrefix,
		Environment:     DefaultEnvironment,
		LogLevel:        DefaultLogLevel,
		LogFormat:       DefaultLogFormat,
		DefaultPageSize: DefaultPageSize,
		MaxPageSize:     DefaultMaxPageSize,
	}
}

// Load builds the configuration from defaults, the TOML file at path (if it
// exists) and environment overrides, in that order.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := loadFileIfExists(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	cfg.normalize()
	return cfg, nil
}

func loadFileIfExists(path string, cfg *Config) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("config path %s is a directory", path)
	}
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return fmt.Errorf("unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Addr = util.EnvOrDefault(EnvAddr, c.Addr)
	c.DBPath = util.EnvOrDefault(EnvDBPath, c.DBPath)
	c.StaticDir = util.EnvOrDefault(EnvStaticDir, c.StaticDir)
	c.APIPrefix = util.EnvOrDefault(EnvAPIPrefix, c.APIPrefix)
	c.Environment = util.EnvOrDefault(EnvEnvironment, c.Environment)
	c.LogLevel = util.EnvOrDefault(EnvLogLevel, c.LogLevel)
	c.LogFormat = util.EnvOrDefault(EnvLogFormat, c.LogFormat)

	var err error
	if c.DefaultPageSize, err = util.EnvIntOrDefault(EnvPageSize, c.DefaultPageSize); err != nil {
		return err
	}
	if c.MaxPageSize, err = util.EnvIntOrDefault(EnvMaxPageSize, c.MaxPageSize); err != nil {
		return err
	}
	return nil
}

func (c *Config) normalize() {
	c.APIPrefix = "/" + strings.Trim(strings.TrimSpace(c.APIPrefix), "/")
	if c.APIPrefix == "/" {
		c.APIPrefix = ""
	}
	c.Environment = strings.ToLower(strings.TrimSpace(c.Environment))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.DBPath) == "" {
		return fmt.Errorf("db path is required")
	}
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("listen address is required")
	}
	if c.DefaultPageSize <= 0 {
		return fmt.Errorf("default_page_size must be positive (got %d)", c.DefaultPageSize)
	}
	if c.MaxPageSize < c.DefaultPageSize {
		return fmt.Errorf("max_page_size (%d) must be >= default_page_size (%d)", c.MaxPageSize, c.DefaultPageSize)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be text or json (got %q)", c.LogFormat)
	}
	return nil
}

// IsProduction reports whether the server runs in production mode.
func (c Config) IsProduction() bool {
	return c.Environment == EnvironmentProduction
}

// Encode renders the configuration as TOML.
func (c Config) Encode() (string, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return "", err
	}
	return buf.String(), nil
}
