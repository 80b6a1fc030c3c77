// Package config loads process configuration from an optional YAML file with
// OHANA_* environment variable overrides.
//
//	OHANA_STORAGE_DRIVER: memory|sqlite|postgres|blob (default memory)
//	OHANA_SQLITE_PATH: path to sqlite file (default ./ohana.db)
//	OHANA_POSTGRES_DSN: postgres DSN when driver=postgres
//	OHANA_BLOB_DRIVER: fs|s3|memory (default fs)
//	OHANA_BLOB_ROOT: filesystem root for the fs blob driver
//	OHANA_BLOB_KEY: document key holding the dataset (default dataset.json)
//	OHANA_BLOB_S3_BUCKET / OHANA_BLOB_S3_REGION / OHANA_BLOB_S3_ENDPOINT / OHANA_BLOB_S3_PATH_STYLE
//	OHANA_HTTP_ADDR: listen address (default :8080)
//	OHANA_HTTP_TIMEOUT: per-request timeout, Go duration syntax (default 5s)
//	OHANA_LOG_MODE: dev|prod (default dev)
//	OHANA_METRICS_ENABLED: true|false (default true)
//	OHANA_TRACE_FILE: append query spans as JSON lines to this file (default off)
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// MaxFileSize bounds the YAML file accepted by Load.
const MaxFileSize = 1 << 20

// Config is the full process configuration.
type Config struct {
	Storage Storage `yaml:"storage"`
	HTTP    HTTP    `yaml:"http"`
	Log     Log     `yaml:"log"`
	Metrics Metrics `yaml:"metrics"`
	Trace   Trace   `yaml:"trace"`
}

// Storage selects the dataset backend read at startup.
type Storage struct {
	Driver      string `yaml:"driver"`
	SQLitePath  string `yaml:"sqlite_path"`
	PostgresDSN string `yaml:"postgres_dsn"`
	Blob        Blob   `yaml:"blob"`
}

// Blob configures the document store used by the blob storage driver.
type Blob struct {
	Driver    string `yaml:"driver"`
	Root      string `yaml:"root"`
	Key       string `yaml:"key"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"path_style"`
}

// HTTP configures the query server.
type HTTP struct {
	Addr              string        `yaml:"addr"`
	RequestTimeout    time.Duration `yaml:"request_timeout"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
}

// Log selects the logger mode.
type Log struct {
	Mode string `yaml:"mode"`
}

// Trace enables the JSON span log. An empty path disables it.
type Trace struct {
	Path string `yaml:"path"`
}

// Metrics toggles the Prometheus endpoint.
type Metrics struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Default returns the configuration used when no file or environment overrides are present.
func Default() Config {
	return Config{
		Storage: Storage{
			Driver:     "memory",
			SQLitePath: "ohana.db",
			Blob: Blob{
				Driver: "fs",
				Root:   "./blobdata",
				Key:    "dataset.json",
				Region: "us-east-1",
			},
		},
		HTTP: HTTP{
			Addr:              ":8080",
			RequestTimeout:    5 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			ShutdownTimeout:   10 * time.Second,
		},
		Log:     Log{Mode: "dev"},
		Metrics: Metrics{Enabled: true, Path: "/metrics"},
	}
}

// Load reads path (when non-empty) over the defaults, applies environment
// overrides, and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		info, err := os.Stat(path)
		if err != nil {
			return Config{}, fmt.Errorf("stat config: %w", err)
		}
		if info.Size() > MaxFileSize {
			return Config{}, fmt.Errorf("config file %s exceeds %d bytes", path, MaxFileSize)
		}
		data, err := os.ReadFile(path) // #nosec G304 -- operator supplied path
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// normalize lower-cases the enumerated settings so later driver switches
// can compare them exactly.
func (c *Config) normalize() {
	for _, v := range []*string{&c.Storage.Driver, &c.Storage.Blob.Driver, &c.Log.Mode} {
		*v = strings.ToLower(strings.TrimSpace(*v))
	}
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	boolean := func(key string, dst *bool) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = b
		return nil
	}

	str("OHANA_STORAGE_DRIVER", &cfg.Storage.Driver)
	str("OHANA_SQLITE_PATH", &cfg.Storage.SQLitePath)
	str("OHANA_POSTGRES_DSN", &cfg.Storage.PostgresDSN)
	str("OHANA_BLOB_DRIVER", &cfg.Storage.Blob.Driver)
	str("OHANA_BLOB_ROOT", &cfg.Storage.Blob.Root)
	str("OHANA_BLOB_KEY", &cfg.Storage.Blob.Key)
	str("OHANA_BLOB_S3_BUCKET", &cfg.Storage.Blob.Bucket)
	str("OHANA_BLOB_S3_REGION", &cfg.Storage.Blob.Region)
	str("OHANA_BLOB_S3_ENDPOINT", &cfg.Storage.Blob.Endpoint)
	if err := boolean("OHANA_BLOB_S3_PATH_STYLE", &cfg.Storage.Blob.PathStyle); err != nil {
		return err
	}
	str("OHANA_HTTP_ADDR", &cfg.HTTP.Addr)
	if v, ok := lookup("OHANA_HTTP_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("OHANA_HTTP_TIMEOUT: %w", err)
		}
		cfg.HTTP.RequestTimeout = d
	}
	str("OHANA_LOG_MODE", &cfg.Log.Mode)
	str("OHANA_TRACE_FILE", &cfg.Trace.Path)
	return boolean("OHANA_METRICS_ENABLED", &cfg.Metrics.Enabled)
}

// Validate reports every inconsistent setting. Driver names are matched
// exactly; Load lower-cases them first.
func (c Config) Validate() error {
	var errs []error
	switch c.Storage.Driver {
	case "memory", "sqlite":
	case "postgres":
		if c.Storage.PostgresDSN == "" {
			errs = append(errs, errors.New("storage.postgres_dsn required for postgres driver"))
		}
	case "blob":
		switch c.Storage.Blob.Driver {
		case "fs", "memory":
		case "s3":
			if c.Storage.Blob.Bucket == "" {
				errs = append(errs, errors.New("storage.blob.bucket required for s3 blob driver"))
			}
		default:
			errs = append(errs, fmt.Errorf("unknown blob driver %q", c.Storage.Blob.Driver))
		}
		if c.Storage.Blob.Key == "" {
			errs = append(errs, errors.New("storage.blob.key required for blob driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage driver %q", c.Storage.Driver))
	}
	if c.HTTP.RequestTimeout < 0 {
		errs = append(errs, errors.New("http.request_timeout must not be negative"))
	}
	return errors.Join(errs...)
}
