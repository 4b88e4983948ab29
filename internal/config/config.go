// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all configuration knobs loaded via Viper. Values come
// from the optional config file, MIRRORFEED_* environment variables, or
// the defaults below.
type Config struct {
	Crawler CrawlerConfig `mapstructure:"crawler"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Store   StoreConfig   `mapstructure:"store"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// CrawlerConfig governs the crawl loop.
type CrawlerConfig struct {
	// Instances is the ordered candidate mirror host list; failover
	// walks it front to back.
	Instances       []string      `mapstructure:"instances"`
	FollowersPath   string        `mapstructure:"followers_path"`
	MaxPagesPerUser int           `mapstructure:"max_pages_per_user"`
	PageDelay       time.Duration `mapstructure:"page_delay"`
	AccountDelay    time.Duration `mapstructure:"account_delay"`
	RetentionLimit  int           `mapstructure:"retention_limit"`
}

// HTTPConfig configures the page fetch client.
type HTTPConfig struct {
	UserAgent          string        `mapstructure:"user_agent"`
	Timeout            time.Duration `mapstructure:"timeout"`
	MinRequestInterval time.Duration `mapstructure:"min_request_interval"`
}

// StoreConfig locates the persisted snapshot.
type StoreConfig struct {
	SnapshotPath string `mapstructure:"snapshot_path"`
}

// ServerConfig controls serve mode: the HTTP listener and the crawl
// schedule (cron spec).
type ServerConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
	Schedule   string `mapstructure:"schedule"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("MIRRORFEED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
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

func setDefaults(v *viper.Viper) {
	v.SetDefault("crawler.instances", []string{
		"nitter.privacyredirect.com",
		"xcancel.com",
		"nitter.poast.org",
	})
	v.SetDefault("crawler.followers_path", "data/followers.txt")
	v.SetDefault("crawler.max_pages_per_user", 5)
	v.SetDefault("crawler.page_delay", "1500ms")
	v.SetDefault("crawler.account_delay", "2s")
	v.SetDefault("crawler.retention_limit", 500)
	// The mirrors serve a plain curl agent without a challenge page.
	v.SetDefault("http.user_agent", "curl/8.7.1")
	v.SetDefault("http.timeout", "30s")
	v.SetDefault("http.min_request_interval", "500ms")
	v.SetDefault("store.snapshot_path", "data/tweets.json")
	v.SetDefault("server.listen_addr", ":8080")
	v.SetDefault("server.schedule", "@every 30m")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if len(c.Crawler.Instances) == 0 {
		return fmt.Errorf("crawler.instances must include at least one mirror host")
	}
	if c.Crawler.FollowersPath == "" {
		return fmt.Errorf("crawler.followers_path must be set")
	}
	if c.Crawler.MaxPagesPerUser <= 0 {
		return fmt.Errorf("crawler.max_pages_per_user must be > 0")
	}
	if c.Crawler.PageDelay < 0 || c.Crawler.AccountDelay < 0 {
		return fmt.Errorf("crawler delays must be >= 0")
	}
	if c.Crawler.RetentionLimit <= 0 {
		return fmt.Errorf("crawler.retention_limit must be > 0")
	}
	if c.HTTP.UserAgent == "" {
		return fmt.Errorf("http.user_agent must be set")
	}
	if c.HTTP.Timeout <= 0 {
		return fmt.Errorf("http.timeout must be > 0")
	}
	if c.Store.SnapshotPath == "" {
		return fmt.Errorf("store.snapshot_path must be set")
	}
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("server.listen_addr must be set")
	}
	if c.Server.Schedule == "" {
		return fmt.Errorf("server.schedule must be set")
	}
	return nil
}
