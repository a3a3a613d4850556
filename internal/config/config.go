// Package config loads and validates walkthroughs configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/JakeFAU/twir-walkthroughs/internal/crawler"
	"github.com/JakeFAU/twir-walkthroughs/internal/export"
	"github.com/JakeFAU/twir-walkthroughs/internal/logging"
	"github.com/JakeFAU/twir-walkthroughs/internal/storage"
	pkgconfig "github.com/JakeFAU/twir-walkthroughs/pkg/config"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Source  SourceConfig   `mapstructure:"source"`
	Crawler CrawlerConfig  `mapstructure:"crawler"`
	HTTP    HTTPConfig     `mapstructure:"http"`
	Storage StorageConfig  `mapstructure:"storage"`
	Export  ExportConfig   `mapstructure:"export"`
	Server  ServerConfig   `mapstructure:"server"`
	Logging logging.Config `mapstructure:"logging"`
}

// SourceConfig names the archive index page.
type SourceConfig struct {
	IndexURL string `mapstructure:"index_url"`
}

// CrawlerConfig governs the issue fan-out.
type CrawlerConfig struct {
	Concurrency     int    `mapstructure:"concurrency"`
	IsolateFailures bool   `mapstructure:"isolate_failures"`
	UserAgent       string `mapstructure:"user_agent"`
}

// HTTPConfig configures page fetching.
type HTTPConfig struct {
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
}

// StorageConfig selects where the archive is cached.
type StorageConfig struct {
	Backend  string         `mapstructure:"backend"`
	Path     string         `mapstructure:"path"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	GCS      GCSConfig      `mapstructure:"gcs"`
}

// PostgresConfig controls access to the relational database backend.
type PostgresConfig struct {
	DSN             string        `mapstructure:"dsn"`
	Table           string        `mapstructure:"table"`
	MaxConns        int32         `mapstructure:"max_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// GCSConfig locates the archive object in Cloud Storage.
type GCSConfig struct {
	Bucket string `mapstructure:"bucket"`
	Object string `mapstructure:"object"`
}

// ExportConfig drives the article fetch and text reduction step.
type ExportConfig struct {
	OutputDir           string   `mapstructure:"output_dir"`
	Limit               int      `mapstructure:"limit"`
	Concurrency         int      `mapstructure:"concurrency"`
	IgnoreHosts         []string `mapstructure:"ignore_hosts"`
	IgnoreTitleKeywords []string `mapstructure:"ignore_title_keywords"`
	TextTags            []string `mapstructure:"text_tags"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// Load builds a Config from defaults, an optional file, and the environment.
// An empty path searches the default locations and tolerates a missing file.
func Load(path string) (Config, error) {
	v := pkgconfig.New()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	u, err := url.Parse(c.Source.IndexURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("source.index_url must be an absolute URL")
	}
	if c.Crawler.Concurrency <= 0 {
		return fmt.Errorf("crawler.concurrency must be > 0")
	}
	if c.HTTP.Timeout < 0 {
		return fmt.Errorf("http.timeout must be >= 0")
	}
	if c.HTTP.RequestsPerSecond < 0 {
		return fmt.Errorf("http.requests_per_second must be >= 0")
	}
	switch strings.ToLower(c.Storage.Backend) {
	case storage.BackendFile, storage.BackendMemory:
	case storage.BackendPostgres:
		if c.Storage.Postgres.DSN == "" {
			return fmt.Errorf("storage.postgres.dsn must be set when storage.backend is postgres")
		}
	case storage.BackendGCS:
		if c.Storage.GCS.Bucket == "" {
			return fmt.Errorf("storage.gcs.bucket must be set when storage.backend is gcs")
		}
	default:
		return fmt.Errorf("storage.backend must be one of file, postgres, gcs, memory")
	}
	if c.Export.OutputDir == "" {
		return fmt.Errorf("export.output_dir must be set")
	}
	if c.Export.Limit < 0 {
		return fmt.Errorf("export.limit must be >= 0")
	}
	if c.Export.Concurrency <= 0 {
		return fmt.Errorf("export.concurrency must be > 0")
	}
	if len(c.Export.TextTags) == 0 {
		return fmt.Errorf("export.text_tags must name at least one tag")
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	return nil
}

// CrawlerSettings converts the crawl section into crawler.Config.
func (c Config) CrawlerSettings() crawler.Config {
	return crawler.Config{
		IndexURL:        c.Source.IndexURL,
		Concurrency:     c.Crawler.Concurrency,
		IsolateFailures: c.Crawler.IsolateFailures,
	}
}

// StorageSettings converts the storage section into storage.Config.
func (c Config) StorageSettings() storage.Config {
	return storage.Config{
		Backend:         c.Storage.Backend,
		Path:            c.Storage.Path,
		PostgresDSN:     c.Storage.Postgres.DSN,
		PostgresTable:   c.Storage.Postgres.Table,
		PostgresMaxConn: c.Storage.Postgres.MaxConns,
		ConnLifetime:    c.Storage.Postgres.ConnMaxLifetime,
		GCSBucket:       c.Storage.GCS.Bucket,
		GCSObject:       c.Storage.GCS.Object,
	}
}

// ExportSettings converts the export section into export.Config.
func (c Config) ExportSettings() export.Config {
	return export.Config{
		OutputDir:   c.Export.OutputDir,
		Limit:       c.Export.Limit,
		Concurrency: c.Export.Concurrency,
		TextTags:    c.Export.TextTags,
		Policy: export.PolicyConfig{
			IgnoreHosts:         c.Export.IgnoreHosts,
			IgnoreTitleKeywords: c.Export.IgnoreTitleKeywords,
		},
	}
}
