// Package config loads application configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// AppFs is the filesystem configuration is read from and written to.
var AppFs = afero.NewOsFs()

// FileName is the configuration file name without extension.
const FileName = ".datatables"

// EnvPrefix prefixes environment overrides, e.g. DATATABLES_DATABASE_URL.
const EnvPrefix = "DATATABLES"

// Config holds the application configuration.
type Config struct {
	Database  DatabaseConfig         `mapstructure:"database" yaml:"database"`
	Server    ServerConfig           `mapstructure:"server" yaml:"server"`
	Logging   LoggingConfig          `mapstructure:"logging" yaml:"logging"`
	Telemetry TelemetryConfig        `mapstructure:"telemetry" yaml:"telemetry"`
	Tables    map[string]TableConfig `mapstructure:"tables" yaml:"tables"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Provider       string `mapstructure:"provider" yaml:"provider"`
	Driver         string `mapstructure:"driver" yaml:"driver"`
	URL            string `mapstructure:"url" yaml:"url"`
	MaxConnections int    `mapstructure:"max_connections" yaml:"max_connections"`
	MaxIdleTime    int    `mapstructure:"max_idle_time" yaml:"max_idle_time"`
	ConnectTimeout int    `mapstructure:"connect_timeout" yaml:"connect_timeout"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	SeqURL string `mapstructure:"seq_url" yaml:"seq_url"`
}

// TelemetryConfig holds metrics settings.
type TelemetryConfig struct {
	Type      string `mapstructure:"type" yaml:"type"`
	Namespace string `mapstructure:"namespace" yaml:"namespace"`
}

// TableConfig declares a table served by name.
type TableConfig struct {
	From          string           `mapstructure:"from" yaml:"from"`
	Select        []string         `mapstructure:"select" yaml:"select,omitempty"`
	Joins         []JoinConfig     `mapstructure:"joins" yaml:"joins,omitempty"`
	Where         []string         `mapstructure:"where" yaml:"where,omitempty"`
	GroupBy       []string         `mapstructure:"group_by" yaml:"group_by,omitempty"`
	Searchable    []string         `mapstructure:"searchable" yaml:"searchable,omitempty"`
	Orderable     []string         `mapstructure:"orderable" yaml:"orderable,omitempty"`
	CountDistinct string           `mapstructure:"count_distinct" yaml:"count_distinct,omitempty"`
	Hidden        []string         `mapstructure:"hidden" yaml:"hidden,omitempty"`
	Order         []OrderConfig    `mapstructure:"order" yaml:"order,omitempty"`
	Relations     []RelationConfig `mapstructure:"relations" yaml:"relations,omitempty"`
}

// JoinConfig declares a join.
type JoinConfig struct {
	Table string `mapstructure:"table" yaml:"table"`
	On    string `mapstructure:"on" yaml:"on"`
	Type  string `mapstructure:"type" yaml:"type,omitempty"`
}

// OrderConfig declares an explicit ordering term.
type OrderConfig struct {
	Field string `mapstructure:"field" yaml:"field"`
	Dir   string `mapstructure:"dir" yaml:"dir,omitempty"`
}

// RelationConfig declares a batch-loaded relation.
type RelationConfig struct {
	Table      string           `mapstructure:"table" yaml:"table"`
	As         string           `mapstructure:"as" yaml:"as,omitempty"`
	LocalKey   string           `mapstructure:"local_key" yaml:"local_key"`
	ForeignKey string           `mapstructure:"foreign_key" yaml:"foreign_key"`
	Columns    []string         `mapstructure:"columns" yaml:"columns,omitempty"`
	Nested     []RelationConfig `mapstructure:"nested" yaml:"nested,omitempty"`
	Gate       []string         `mapstructure:"gate" yaml:"gate,omitempty"`
}

// Loader reads configuration with viper.
type Loader struct {
	v    *viper.Viper
	mu   sync.Mutex
	file string
}

// NewLoader creates a loader. An explicit file skips the search path.
func NewLoader(file string) *Loader {
	v := viper.New()
	v.SetFs(AppFs)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("database.provider", "sqlite")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.connect_timeout", 5)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("telemetry.type", "noop")

	// Bound explicitly so AutomaticEnv sees keys absent from the file.
	for _, key := range []string{"database.url", "database.driver", "logging.seq_url", "telemetry.namespace"} {
		_ = v.BindEnv(key)
	}

	return &Loader{v: v, file: file}
}

// Load reads .env files, the config file and the environment.
// A missing config file is not an error.
func (l *Loader) Load() (*Config, error) {
	loadDotEnv()

	if l.file != "" {
		l.v.SetConfigFile(l.file)
	} else {
		l.v.SetConfigName(FileName)
		l.v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			l.v.AddConfigPath(home)
			l.v.AddConfigPath(filepath.Join(home, ".config", "datatables"))
		}
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || l.file != "" {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return l.decode()
}

// Watch calls fn with the reloaded configuration whenever the config file
// changes. Decoding errors are passed to onError.
func (l *Loader) Watch(fn func(*Config), onError func(error)) {
	l.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := l.decode()
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		fn(cfg)
	})
	l.v.WatchConfig()
}

// ConfigFile returns the file that was read, empty when none was found.
func (l *Loader) ConfigFile() string {
	return l.v.ConfigFileUsed()
}

func (l *Loader) decode() (*Config, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.Database.URL == "" {
		cfg.Database.URL = os.Getenv("DATABASE_URL")
	}
	if cfg.Tables == nil {
		cfg.Tables = map[string]TableConfig{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes cfg as YAML to path on AppFs.
func Save(cfg *Config, path string) error {
	v := viper.New()
	v.SetFs(AppFs)
	v.SetConfigType("yaml")

	v.Set("database", cfg.Database)
	v.Set("server", cfg.Server)
	v.Set("logging", cfg.Logging)
	v.Set("telemetry", cfg.Telemetry)
	if len(cfg.Tables) > 0 {
		v.Set("tables", cfg.Tables)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := AppFs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate checks table declarations.
func (c *Config) Validate() error {
	for name, t := range c.Tables {
		if t.From == "" {
			return fmt.Errorf("table %s: from is required", name)
		}
		for i, j := range t.Joins {
			if j.Table == "" || j.On == "" {
				return fmt.Errorf("table %s: join %d needs table and on", name, i)
			}
		}
		if err := validateRelations(name, t.Relations); err != nil {
			return err
		}
	}
	return nil
}

func validateRelations(table string, rels []RelationConfig) error {
	for _, r := range rels {
		if r.Table == "" || r.LocalKey == "" || r.ForeignKey == "" {
			return fmt.Errorf("table %s: relation %q needs table, local_key and foreign_key", table, r.Table)
		}
		if err := validateRelations(table, r.Nested); err != nil {
			return err
		}
	}
	return nil
}

// loadDotEnv loads .env and then .env.local, which wins.
func loadDotEnv() {
	if _, err := AppFs.Stat(".env"); err == nil {
		if data, err := afero.ReadFile(AppFs, ".env"); err == nil {
			applyEnv(data, false)
		}
	}
	if _, err := AppFs.Stat(".env.local"); err == nil {
		if data, err := afero.ReadFile(AppFs, ".env.local"); err == nil {
			applyEnv(data, true)
		}
	}
}

func applyEnv(data []byte, override bool) {
	values, err := godotenv.UnmarshalBytes(data)
	if err != nil {
		return
	}
	for k, v := range values {
		if _, exists := os.LookupEnv(k); exists && !override {
			continue
		}
		_ = os.Setenv(k, v)
	}
}
