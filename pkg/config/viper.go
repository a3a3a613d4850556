// Package config holds the Viper defaults and lookup rules shared by every
// walkthroughs command: search paths, environment prefix, and default values.
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment overrides, e.g. WALKTHROUGHS_CRAWLER_CONCURRENCY.
const EnvPrefix = "WALKTHROUGHS"

// DefaultIndexURL is the This Week in Rust past issues page.
const DefaultIndexURL = "https://this-week-in-rust.org/blog/archives/index.html"

// New returns a Viper instance with search paths, environment binding, and
// defaults applied. It does not read any file.
func New() *viper.Viper {
	v := viper.New()

	// --- Set Search Paths ---
	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.twir-walkthroughs")

	// --- Environment Variables ---
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)
	return v
}

// SetDefaults registers the default value of every known key. Registering a
// default also lets AutomaticEnv resolve the key during Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("source.index_url", DefaultIndexURL)

	v.SetDefault("crawler.concurrency", 8)
	v.SetDefault("crawler.isolate_failures", false)
	v.SetDefault("crawler.user_agent", "")

	// Zero means no per-request timeout.
	v.SetDefault("http.timeout", "0s")
	// Zero disables per-host throttling.
	v.SetDefault("http.requests_per_second", 0.0)
	v.SetDefault("http.burst", 1)

	v.SetDefault("storage.backend", "file")
	v.SetDefault("storage.path", "")
	v.SetDefault("storage.postgres.dsn", "")
	v.SetDefault("storage.postgres.table", "walkthrough_issues")
	v.SetDefault("storage.postgres.max_conns", 4)
	v.SetDefault("storage.postgres.conn_max_lifetime", "30m")
	v.SetDefault("storage.gcs.bucket", "")
	v.SetDefault("storage.gcs.object", "rust_walkthrough_articles.json")

	v.SetDefault("export.output_dir", "./output")
	v.SetDefault("export.limit", 0)
	v.SetDefault("export.concurrency", 4)
	v.SetDefault("export.ignore_hosts", []string{
		"medium.com",
		"www.medium.com",
		"youtube.com",
		"www.youtube.com",
		"youtu.be",
		"www.youtu.be",
	})
	v.SetDefault("export.ignore_title_keywords", []string{"[Video]"})
	v.SetDefault("export.text_tags", []string{"title", "p", "ul", "ol"})

	v.SetDefault("server.port", 8080)

	v.SetDefault("logging.development", false)
	v.SetDefault("logging.level", "")
}
