// Package config loads the application configuration the same way the
// teacher's cmd/ublock-webkit-filters/main.go does: viper reads a TOML
// file, set-defaults-then-unmarshal into a mapstructure-tagged struct.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// StoreConfig configures internal/store.Open.
type StoreConfig struct {
	Path           string        `mapstructure:"path"`
	Overwrite      bool          `mapstructure:"overwrite"`
	Synchronous    string        `mapstructure:"synchronous"`
	JournalMode    string        `mapstructure:"journal_mode"`
	SharedCache    bool          `mapstructure:"shared_cache"`
	PageCacheKB    int           `mapstructure:"page_cache_kb"`
	AutomaticIndex bool          `mapstructure:"automatic_index"`
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`
}

// CacheConfig configures internal/cache beyond what StoreConfig.CacheTTL
// already carries — kept as its own section so the lookup cache can be
// tuned independently of store-level PRAGMA settings.
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// HTTPConfig configures internal/fetcher's retryable client, kept from
// the teacher's models.HTTPConfig shape.
type HTTPConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
	Retries int           `mapstructure:"retries"`
}

// FilterList names one remote rule list from the config file's
// [[lists]] table, kept from the teacher's models.FilterList. No CLI
// command reads Config.Lists: `abpfilter ingest --url` takes its URL
// from the flag.
type FilterList struct {
	Name    string `mapstructure:"name"`
	URL     string `mapstructure:"url"`
	Enabled bool   `mapstructure:"enabled"`
}

// Config is the top-level application configuration.
type Config struct {
	Store           StoreConfig  `mapstructure:"store"`
	Cache           CacheConfig  `mapstructure:"cache"`
	HTTP            HTTPConfig   `mapstructure:"http"`
	Lists           []FilterList `mapstructure:"lists"`
	StrictSelectors bool         `mapstructure:"strict_selectors"`
}

// EnabledLists returns only the enabled remote lists, mirroring the
// teacher's Config.EnabledLists.
func (c *Config) EnabledLists() []FilterList {
	var enabled []FilterList
	for _, l := range c.Lists {
		if l.Enabled {
			enabled = append(enabled, l)
		}
	}
	return enabled
}

// Load reads cfgFile (or the default search path of ./configs and .)
// into a fresh viper instance and unmarshals it into a Config, applying
// the same default-then-override pattern as the teacher's initConfig.
func Load(cfgFile string) (Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("filter_rules")
		v.SetConfigType("toml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("config: read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.path", "./abpfilter.db")
	v.SetDefault("store.synchronous", "OFF")
	v.SetDefault("store.journal_mode", "OFF")
	v.SetDefault("store.shared_cache", true)
	v.SetDefault("store.page_cache_kb", 64000)
	v.SetDefault("store.automatic_index", false)
	v.SetDefault("store.cache_ttl", "10m")

	v.SetDefault("cache.ttl", "10m")

	v.SetDefault("http.timeout", "30s")
	v.SetDefault("http.retries", 3)

	v.SetDefault("strict_selectors", false)
}
