package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DriverMemory       = "memory"
	DriverPostgres     = "postgres"
	DriverPostgresSQL  = "postgres-sql"
	DriverPostgresSQLX = "postgres-sqlx"
	DriverSQLite       = "sqlite3"

	LogFormatText = "text"
	LogFormatJSON = "json"

	defaultTableName      = "schedule_records"
	defaultLogLevel       = "info"
	defaultReconcileCron  = "@every 10m"
	defaultServiceName    = "schedulestore"
	defaultTraceEndpoint  = "localhost:4319"
	defaultMetricEndpoint = "localhost:4317"
)

var (
	ErrReadingConfigFailed = errors.New("reading the config file failed")
	ErrParsingConfigFailed = errors.New("parsing the config file failed")
	ErrUnknownDriver       = errors.New("unknown store driver")
	ErrMissingDSN          = errors.New("store dsn must not be blank for a database driver")
	ErrReplicaNotSupported = errors.New("a replica dsn is only supported by the postgres driver")
	ErrUnknownLogLevel     = errors.New("unknown log level")
	ErrUnknownLogFormat    = errors.New("unknown log format")
)

// Config is the application configuration.
type Config struct {
	Store         StoreConfig         `yaml:"store"`
	Log           LogConfig           `yaml:"log"`
	Reconcile     ReconcileConfig     `yaml:"reconcile"`
	Observability ObservabilityConfig `yaml:"observability"`
}

type StoreConfig struct {
	Driver       string `yaml:"driver"`
	DSN          string `yaml:"dsn"`
	ReplicaDSN   string `yaml:"replicaDSN"`
	TableName    string `yaml:"tableName"`
	SnapshotFile string `yaml:"snapshotFile"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type ReconcileConfig struct {
	Cron string `yaml:"cron"`
}

type ObservabilityConfig struct {
	Enabled        bool   `yaml:"enabled"`
	ServiceName    string `yaml:"serviceName"`
	TraceEndpoint  string `yaml:"traceEndpoint"`
	MetricEndpoint string `yaml:"metricEndpoint"`
}

// Default returns the configuration used when no file is given: an in-memory store without persistence.
func Default() Config {
	cfg := Config{}
	cfg.Normalize()

	return cfg
}

// Load reads and validates the YAML file at path. An empty path returns Default().
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Join(ErrReadingConfigFailed, err)
	}

	return Parse(raw)
}

// Parse decodes, normalizes and validates a YAML document.
func Parse(raw []byte) (Config, error) {
	cfg := Config{}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, errors.Join(ErrParsingConfigFailed, err)
	}

	cfg.Normalize()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Normalize trims and lower-cases the enumerations and fills in defaults.
func (c *Config) Normalize() {
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	if c.Store.Driver == "" {
		c.Store.Driver = DriverMemory
	}

	c.Store.DSN = strings.TrimSpace(c.Store.DSN)
	c.Store.ReplicaDSN = strings.TrimSpace(c.Store.ReplicaDSN)
	c.Store.SnapshotFile = strings.TrimSpace(c.Store.SnapshotFile)

	c.Store.TableName = strings.TrimSpace(c.Store.TableName)
	if c.Store.TableName == "" {
		c.Store.TableName = defaultTableName
	}

	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if c.Log.Level == "" {
		c.Log.Level = defaultLogLevel
	}

	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	if c.Log.Format == "" {
		c.Log.Format = LogFormatText
	}

	c.Reconcile.Cron = strings.TrimSpace(c.Reconcile.Cron)
	if c.Reconcile.Cron == "" {
		c.Reconcile.Cron = defaultReconcileCron
	}

	if c.Observability.ServiceName == "" {
		c.Observability.ServiceName = defaultServiceName
	}

	if c.Observability.TraceEndpoint == "" {
		c.Observability.TraceEndpoint = defaultTraceEndpoint
	}

	if c.Observability.MetricEndpoint == "" {
		c.Observability.MetricEndpoint = defaultMetricEndpoint
	}
}

// Validate checks a normalized configuration.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory:
	case DriverPostgres, DriverPostgresSQL, DriverPostgresSQLX, DriverSQLite:
		if c.Store.DSN == "" {
			return ErrMissingDSN
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, c.Store.Driver)
	}

	if c.Store.ReplicaDSN != "" && c.Store.Driver != DriverPostgres {
		return ErrReplicaNotSupported
	}

	if _, err := ParseLogLevel(c.Log.Level); err != nil {
		return err
	}

	if c.Log.Format != LogFormatText && c.Log.Format != LogFormatJSON {
		return fmt.Errorf("%w: %q", ErrUnknownLogFormat, c.Log.Format)
	}

	return nil
}
