// Package config resolves the harvester configuration once at startup from
// defaults, an optional YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"

	"waybackseller/internal/timerange"
	"waybackseller/pkg/utils"
)

// Configuration validation errors.
var (
	ErrMissingDomain        = errors.New("harvest.domain is required")
	ErrUnknownSink          = errors.New("sink.kind must be one of: csv, d1, sql")
	ErrMissingCSVDir        = errors.New("sink.csv.dir is required")
	ErrMissingD1Credentials = errors.New("missing required d1 credentials")
	ErrMissingSQLTarget     = errors.New("sink.sql.url or sink.sql.file is required")
	ErrInvalidTimeout       = errors.New("timeout_sec must be at least 1")
	ErrInvalidChunkSize     = errors.New("cdx.chunk_size must be at least 1")
	ErrInvalidLogLevel      = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidLogFormat     = errors.New("logging.format must be 'text' or 'json'")
)

// Sink kinds.
const (
	SinkCSV = "csv"
	SinkD1  = "d1"
	SinkSQL = "sql"
)

// Environment variables read by ApplyEnv.
const (
	EnvDomain       = "domain"
	EnvDomainUpper  = "DOMAIN"
	EnvTimeFrame    = "TIME_FRAME"
	EnvSink         = "SINK"
	EnvResultDir    = "RESULT_DIR"
	EnvAPIToken     = "CLOUDFLARE_API_TOKEN"
	EnvAccountID    = "CLOUDFLARE_ACCOUNT_ID"
	EnvDatabaseID   = "CLOUDFLARE_D1_DATABASE_ID"
	EnvSQLURL       = "SQL_URL"
	EnvSQLAuthToken = "SQL_AUTH_TOKEN"
	EnvSQLFile      = "SQL_FILE"
	EnvLogLevel     = "LOG_LEVEL"
)

// Config represents the complete harvester configuration.
type Config struct {
	Harvest HarvestConfig `yaml:"harvest"`
	CDX     CDXConfig     `yaml:"cdx"`
	Sink    SinkConfig    `yaml:"sink"`
	Logging LoggingConfig `yaml:"logging"`
}

// HarvestConfig selects what to look for in the index.
type HarvestConfig struct {
	Domain     string `yaml:"domain"`
	TimeFrame  string `yaml:"time_frame"`
	StatusCode string `yaml:"status_code"`
	MatchType  string `yaml:"match_type"`
	Collapse   string `yaml:"collapse"`
	AllTime    bool   `yaml:"all_time"`
}

// CDXConfig configures the upstream request.
type CDXConfig struct {
	Endpoint   string `yaml:"endpoint"`
	Referer    string `yaml:"referer"`
	UserAgent  string `yaml:"user_agent"`
	TimeoutSec int    `yaml:"timeout_sec"`
	ChunkSize  int    `yaml:"chunk_size"`
}

// SinkConfig selects and configures the record sink.
type SinkConfig struct {
	Kind string    `yaml:"kind"`
	CSV  CSVConfig `yaml:"csv"`
	D1   D1Config  `yaml:"d1"`
	SQL  SQLConfig `yaml:"sql"`
}

// CSVConfig configures the local file sink.
type CSVConfig struct {
	Dir string `yaml:"dir"`
}

// D1Config configures the Cloudflare D1 sink.
type D1Config struct {
	BaseURL    string `yaml:"base_url"`
	APIToken   string `yaml:"api_token"`
	AccountID  string `yaml:"account_id"`
	DatabaseID string `yaml:"database_id"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// SQLConfig configures the database/sql sink.
type SQLConfig struct {
	URL       string `yaml:"url"`
	AuthToken string `yaml:"auth_token"`
	File      string `yaml:"file"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Harvest: HarvestConfig{
			Domain:     "https://www.amazon.com/sp?ie=UTF8&seller=",
			TimeFrame:  "3",
			StatusCode: "200",
			MatchType:  "prefix",
			Collapse:   "urlkey",
		},
		CDX: CDXConfig{
			Endpoint:   "http://web.archive.org/cdx/search/cdx",
			Referer:    utils.DefaultReferer,
			UserAgent:  utils.DefaultUserAgent,
			TimeoutSec: 300,
			ChunkSize:  10240,
		},
		Sink: SinkConfig{
			Kind: SinkD1,
			CSV:  CSVConfig{Dir: "result"},
			D1: D1Config{
				BaseURL:    "https://api.cloudflare.com/client/v4",
				TimeoutSec: 30,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the configuration: defaults, overlaid by the YAML file at path
// (skipped when path is empty), overlaid by the environment. It does not validate.
func Load(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	// Fill whatever the file left empty.
	if err := mergo.Merge(&cfg, Defaults()); err != nil {
		return Config{}, fmt.Errorf("failed to apply defaults: %w", err)
	}

	if lookup != nil {
		cfg.ApplyEnv(lookup)
	}

	return cfg, nil
}

// LoadConfig loads configuration from a YAML file and the process
// environment, then validates it.
func LoadConfig(filepath string) (*Config, error) {
	cfg, err := Load(filepath, os.LookupEnv)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// SaveConfig saves configuration to YAML file.
func (c *Config) SaveConfig(filepath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides fields with non-empty environment values.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(dst *string, keys ...string) {
		for _, key := range keys {
			if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
				*dst = strings.TrimSpace(v)
				return
			}
		}
	}

	set(&c.Harvest.Domain, EnvDomain, EnvDomainUpper)
	set(&c.Harvest.TimeFrame, EnvTimeFrame)
	set(&c.Sink.Kind, EnvSink)
	set(&c.Sink.CSV.Dir, EnvResultDir)
	set(&c.Sink.D1.APIToken, EnvAPIToken)
	set(&c.Sink.D1.AccountID, EnvAccountID)
	set(&c.Sink.D1.DatabaseID, EnvDatabaseID)
	set(&c.Sink.SQL.URL, EnvSQLURL)
	set(&c.Sink.SQL.AuthToken, EnvSQLAuthToken)
	set(&c.Sink.SQL.File, EnvSQLFile)
	set(&c.Logging.Level, EnvLogLevel)
}

// Validate validates the configuration. It never touches the network.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Harvest.Domain) == "" {
		return ErrMissingDomain
	}

	if c.CDX.TimeoutSec < 1 {
		return fmt.Errorf("cdx.%w", ErrInvalidTimeout)
	}

	if c.CDX.ChunkSize < 1 {
		return ErrInvalidChunkSize
	}

	switch c.Sink.Kind {
	case SinkCSV:
		if c.Sink.CSV.Dir == "" {
			return ErrMissingCSVDir
		}
	case SinkD1:
		if missing := c.MissingD1Credentials(); len(missing) > 0 {
			return fmt.Errorf("%w: %s", ErrMissingD1Credentials, strings.Join(missing, ", "))
		}

		if c.Sink.D1.TimeoutSec < 1 {
			return fmt.Errorf("sink.d1.%w", ErrInvalidTimeout)
		}
	case SinkSQL:
		if c.Sink.SQL.URL == "" && c.Sink.SQL.File == "" {
			return ErrMissingSQLTarget
		}
	default:
		return fmt.Errorf("%w (got %q)", ErrUnknownSink, c.Sink.Kind)
	}

	if !slices.Contains([]string{"debug", "info", "warn", "error"}, c.Logging.Level) {
		return ErrInvalidLogLevel
	}

	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return ErrInvalidLogFormat
	}

	return nil
}

// MissingD1Credentials lists the environment names of unset D1 credentials.
func (c *Config) MissingD1Credentials() []string {
	var missing []string

	if c.Sink.D1.APIToken == "" {
		missing = append(missing, EnvAPIToken)
	}

	if c.Sink.D1.AccountID == "" {
		missing = append(missing, EnvAccountID)
	}

	if c.Sink.D1.DatabaseID == "" {
		missing = append(missing, EnvDatabaseID)
	}

	return missing
}

// TimeFrameKey resolves the numeric selector into a window key. fellBack
// reports that the selector was invalid and the default was used.
func (c *Config) TimeFrameKey() (key string, index int, fellBack bool) {
	return timerange.ResolveIndex(c.Harvest.TimeFrame)
}

// CDXTimeout returns the upstream request timeout.
func (c *Config) CDXTimeout() time.Duration {
	return time.Duration(c.CDX.TimeoutSec) * time.Second
}

// D1Timeout returns the per-call timeout of the D1 API.
func (c *Config) D1Timeout() time.Duration {
	return time.Duration(c.Sink.D1.TimeoutSec) * time.Second
}

// String returns a string representation of the config with secrets masked.
func (c *Config) String() string {
	s := utils.NewStringHelper()

	return fmt.Sprintf(
		"Config{Domain: %s, TimeFrame: %s, Sink: %s, D1Token: %s, SQLToken: %s}",
		c.Harvest.Domain,
		c.Harvest.TimeFrame,
		c.Sink.Kind,
		s.Mask(c.Sink.D1.APIToken),
		s.Mask(c.Sink.SQL.AuthToken),
	)
}
