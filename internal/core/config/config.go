// Package config loads the NLDI service's YAML configuration document,
// expands "${VAR}" environment references in it, overlays individual
// environment variables on top (env wins), and validates the result.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/internetofwater/nldi-go/internal/nldierrors"
)

// Server holds the HTTP-facing settings.
type Server struct {
	URL    string `yaml:"url" validate:"required,url"`
	Path   string `yaml:"path" validate:"required"`
	Addr   string `yaml:"addr" validate:"required"`
	Pretty bool   `yaml:"pretty_print"`
}

// Database holds PostGIS connection settings.
type Database struct {
	Host     string `yaml:"host" validate:"required"`
	Port     int    `yaml:"port" validate:"required,min=1,max=65535"`
	Name     string `yaml:"name" validate:"required"`
	Username string `yaml:"username" validate:"required"`
	Password string `yaml:"password"`
	PoolSize int    `yaml:"pool_size" validate:"min=1"`
	// AcquireTimeout bounds how long with_session waits for a pooled
	// connection before surfacing DatabaseUnavailable.
	AcquireTimeout time.Duration `yaml:"acquire_timeout"`
}

// Geoprocessing holds the remote split-catchment/hydrolocation endpoint.
type Geoprocessing struct {
	URL     string        `yaml:"url" validate:"omitempty,url"`
	Enabled bool          `yaml:"enabled"`
	Timeout time.Duration `yaml:"timeout"`
}

// Metadata is reproduced verbatim into the OpenAPI document.
type Metadata struct {
	Title    string `yaml:"title"`
	Version  string `yaml:"version"`
	License  string `yaml:"license"`
	Contact  string `yaml:"contact"`
	Describe string `yaml:"description"`
}

// SourceConfig is one entry of the declarative sources: list consumed by
// the registry's align operation.
type SourceConfig struct {
	SourceID      int    `yaml:"source_id" validate:"required"`
	Suffix        string `yaml:"suffix" validate:"required"`
	SourceName    string `yaml:"source_name" validate:"required"`
	SourceURI     string `yaml:"source_uri"`
	FeatureID     string `yaml:"feature_id_column" validate:"required"`
	FeatureName   string `yaml:"feature_name_column"`
	FeatureURI    string `yaml:"feature_uri_column"`
	IngestType    string `yaml:"ingest_type" validate:"required,oneof=point reach"`
	FeatureType   string `yaml:"feature_type"`
}

// Config is the fully resolved, validated configuration for one process.
type Config struct {
	Server        Server          `yaml:"server" validate:"required"`
	Database      Database        `yaml:"database" validate:"required"`
	LogLevel      string          `yaml:"log_level" validate:"required,oneof=debug info warn error"`
	Geoprocessing Geoprocessing   `yaml:"geoprocessing"`
	Metadata      Metadata        `yaml:"metadata"`
	Sources       []SourceConfig  `yaml:"sources"`
}

var validate = validator.New()

// Load reads path, expands ${VAR} references against the process
// environment, unmarshals YAML, overlays individual env var overrides, and
// validates the result. A malformed document or a validation failure is a
// ConfigurationError.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, nldierrors.Wrap(nldierrors.ConfigurationError, "read config file", err)
	}

	expanded := os.Expand(string(raw), envLookup)

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Config{}, nldierrors.Wrap(nldierrors.ConfigurationError, "parse config yaml", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate.Struct(cfg); err != nil {
		return Config{}, nldierrors.Wrap(nldierrors.ConfigurationError, "validate config", err)
	}
	return cfg, nil
}

// envLookup backs os.Expand; unset variables expand to the empty string
// rather than leaving "${VAR}" verbatim in the document.
func envLookup(name string) string {
	return os.Getenv(name)
}

// applyEnvOverrides lets the well-known environment variables win over
// whatever the YAML document says.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("NLDI_URL"); v != "" {
		cfg.Server.URL = v
	}
	if v := os.Getenv("NLDI_PATH"); v != "" {
		cfg.Server.Path = v
	}
	if v := os.Getenv("NLDI_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("NLDI_DB_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = n
		}
	}
	if v := os.Getenv("NLDI_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("NLDI_DB_USERNAME"); v != "" {
		cfg.Database.Username = v
	}
	if v := os.Getenv("NLDI_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("PYGEOAPI_URL"); v != "" {
		cfg.Geoprocessing.URL = v
		cfg.Geoprocessing.Enabled = true
	}
}

func setDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.Path == "" {
		cfg.Server.Path = "/api/nldi"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Database.PoolSize == 0 {
		cfg.Database.PoolSize = 4
	}
	if cfg.Database.AcquireTimeout == 0 {
		cfg.Database.AcquireTimeout = 5 * time.Second
	}
	if cfg.Geoprocessing.Timeout == 0 {
		cfg.Geoprocessing.Timeout = 30 * time.Second
	}
}

// DSN renders the libpq-style connection string pgxpool.New expects.
func (d Database) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=prefer",
		d.Host, d.Port, d.Name, d.Username, d.Password,
	)
}
