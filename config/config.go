package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/chararch/gobatch-sample/internal/logs"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefix of environment overrides, log.dir is read from GOBATCH_LOG_DIR
const EnvPrefix = "GOBATCH"

// Config is the top-level configuration structure.
type Config struct {
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
	Server ServerConfig `mapstructure:"server" yaml:"server"`
	Batch  BatchConfig  `mapstructure:"batch" yaml:"batch"`
}

type LogConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	Format     string `mapstructure:"format" yaml:"format"`
	Dir        string `mapstructure:"dir" yaml:"dir"`
	RouteKey   string `mapstructure:"route_key" yaml:"route_key"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
}

type ServerConfig struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ResourceLocations []string      `mapstructure:"resource_locations" yaml:"resource_locations"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

type BatchConfig struct {
	MaxRunningJobs     int           `mapstructure:"max_running_jobs" yaml:"max_running_jobs"`
	ExecutionRetention time.Duration `mapstructure:"execution_retention" yaml:"execution_retention"`
}

var defaults = map[string]interface{}{
	"log.level":                 "info",
	"log.format":                logs.FormatConsole,
	"log.dir":                   "./logs",
	"log.route_key":             logs.DefaultRouteKey,
	"log.max_size_mb":           10,
	"log.max_backups":           5,
	"server.addr":               ":8080",
	"server.resource_locations": []string{},
	"server.shutdown_timeout":   "10s",
	"batch.max_running_jobs":    10,
	"batch.execution_retention": "1h",
}

// SetDefaults registers every key so that environment overrides apply to all of them
func SetDefaults(v *viper.Viper) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

// Load resolves config from defaults → config file → .env file → GOBATCH_* environment.
// Empty file names are skipped.
func Load(v *viper.Viper, configFile, envFile string) (*Config, error) {
	SetDefaults(v)
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, errors.Wrapf(err, "loading env file %s", envFile)
		}
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "loading config file %s", configFile)
		}
	}
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late at startup.
func (c *Config) Validate() error {
	if _, err := logs.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(err, "log.level")
	}
	if c.Log.Format != logs.FormatConsole && c.Log.Format != logs.FormatJSON {
		return errors.Errorf("log.format must be %s or %s, got %q", logs.FormatConsole, logs.FormatJSON, c.Log.Format)
	}
	if c.Log.RouteKey == "" {
		return errors.New("log.route_key is required")
	}
	if c.Log.MaxSizeMB <= 0 {
		return errors.Errorf("log.max_size_mb must be positive, got %d", c.Log.MaxSizeMB)
	}
	if c.Log.MaxBackups < 0 {
		return errors.Errorf("log.max_backups must not be negative, got %d", c.Log.MaxBackups)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.Errorf("server.shutdown_timeout must be positive, got %v", c.Server.ShutdownTimeout)
	}
	if c.Batch.MaxRunningJobs <= 0 {
		return errors.Errorf("batch.max_running_jobs must be positive, got %d", c.Batch.MaxRunningJobs)
	}
	if c.Batch.ExecutionRetention <= 0 {
		return errors.Errorf("batch.execution_retention must be positive, got %v", c.Batch.ExecutionRetention)
	}
	return nil
}

// Locations resource locations served under /logs/**, the log directory when none are configured
func (c *Config) Locations() ([]string, error) {
	if len(c.Server.ResourceLocations) > 0 {
		return c.Server.ResourceLocations, nil
	}
	dir, err := filepath.Abs(c.Log.Dir)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving log.dir %s", c.Log.Dir)
	}
	return []string{DirURL(dir)}, nil
}

// DirURL file url of an absolute directory, C:\logs becomes file:///C:/logs/
func DirURL(dir string) string {
	p := filepath.ToSlash(dir)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return "file://" + p
}

// LogOptions options of the log builder derived from the log section
func (c *Config) LogOptions() (logs.Options, error) {
	level, err := logs.ParseLevel(c.Log.Level)
	if err != nil {
		return logs.Options{}, err
	}
	return logs.Options{
		Level:      level,
		Format:     c.Log.Format,
		Dir:        c.Log.Dir,
		RouteKey:   c.Log.RouteKey,
		MaxSizeMB:  c.Log.MaxSizeMB,
		MaxBackups: c.Log.MaxBackups,
	}, nil
}

// YAML effective configuration as yaml
func (c *Config) YAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", errors.Wrap(err, "encoding config")
	}
	return string(data), nil
}
