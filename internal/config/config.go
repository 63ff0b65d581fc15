// Package config loads and validates application configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/soclens/profile-scout/internal/scout"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Credentials   CredentialsConfig   `mapstructure:"credentials"`
	Scraping      ScrapingConfig      `mapstructure:"scraping"`
	Criteria      scout.CrawlCriteria `mapstructure:"criteria"`
	Proxies       ProxiesConfig       `mapstructure:"proxies"`
	Output        OutputConfig        `mapstructure:"output"`
	Notifications NotifyConfig        `mapstructure:"notifications"`
	API           APIConfig           `mapstructure:"api"`
	Logging       LoggingConfig       `mapstructure:"logging"`
}

// CredentialsConfig holds the platform account used for the browsing session.
type CredentialsConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// ScrapingConfig governs the acquisition client's pacing and retry behavior.
type ScrapingConfig struct {
	MinDelayMs        int    `mapstructure:"min_delay_ms"`
	MaxDelayMs        int    `mapstructure:"max_delay_ms"`
	NavTimeoutSec     int    `mapstructure:"nav_timeout_seconds"`
	MaxRetries        int    `mapstructure:"max_retries"`
	UserAgent         string `mapstructure:"user_agent"`
	BaseURL           string `mapstructure:"base_url"`
	GestureChance     float64 `mapstructure:"gesture_chance"`
	SeedsPerTopic     int    `mapstructure:"seeds_per_topic"`
	FollowerFanOut    int    `mapstructure:"follower_fan_out"`
	EngagementSamples int    `mapstructure:"engagement_samples"`
}

// ProxiesConfig controls the egress identity pool.
type ProxiesConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ListFile       string `mapstructure:"list_file"`
	CheckOnStartup bool   `mapstructure:"check_on_startup"`
	CanaryURL      string `mapstructure:"canary_url"`
}

// OutputConfig sets file destinations for session artifacts.
type OutputConfig struct {
	CSVFile     string `mapstructure:"csv_file"`
	SessionFile string `mapstructure:"session_file"`
}

// NotifyConfig configures SMTP delivery of acceptance and summary mail.
type NotifyConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	SMTPHost  string `mapstructure:"smtp_host"`
	SMTPPort  int    `mapstructure:"smtp_port"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	Recipient string `mapstructure:"recipient"`
	Threshold int    `mapstructure:"accept_threshold"`
}

// APIConfig controls the optional progress/metrics HTTP server.
type APIConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SCOUT")
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
	v.SetDefault("scraping.min_delay_ms", 2000)
	v.SetDefault("scraping.max_delay_ms", 8000)
	v.SetDefault("scraping.nav_timeout_seconds", 10)
	v.SetDefault("scraping.max_retries", 3)
	v.SetDefault("scraping.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	v.SetDefault("scraping.base_url", "https://www.instagram.com")
	v.SetDefault("scraping.gesture_chance", 0.3)
	v.SetDefault("scraping.seeds_per_topic", 5)
	v.SetDefault("scraping.follower_fan_out", 50)
	v.SetDefault("scraping.engagement_samples", 3)
	v.SetDefault("criteria.min_followers", 1000)
	v.SetDefault("criteria.max_followers", 50000)
	v.SetDefault("criteria.min_posts", 50)
	v.SetDefault("criteria.min_engagement", 0.5)
	v.SetDefault("criteria.max_engagement", 15.0)
	v.SetDefault("criteria.require_profile_pic", true)
	v.SetDefault("criteria.max_depth", 3)
	v.SetDefault("criteria.max_profiles", 1000)
	v.SetDefault("proxies.enabled", false)
	v.SetDefault("proxies.list_file", "proxy_list.txt")
	v.SetDefault("proxies.check_on_startup", true)
	v.SetDefault("proxies.canary_url", "https://www.google.com/generate_204")
	v.SetDefault("output.csv_file", "scout_results.csv")
	v.SetDefault("output.session_file", "scout_session.json")
	v.SetDefault("notifications.enabled", false)
	v.SetDefault("notifications.smtp_host", "smtp.gmail.com")
	v.SetDefault("notifications.smtp_port", 587)
	v.SetDefault("notifications.accept_threshold", 10)
	v.SetDefault("api.enabled", false)
	v.SetDefault("api.port", 8080)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and the criteria invariants the core
// relies on: non-negative numeric fields and min <= max for ranged pairs.
func (c Config) Validate() error {
	crit := c.Criteria
	if crit.MinFollowers < 0 || crit.MaxFollowers < 0 {
		return fmt.Errorf("criteria follower bounds must be >= 0")
	}
	if crit.MinFollowers > crit.MaxFollowers {
		return fmt.Errorf("criteria.min_followers must be <= criteria.max_followers")
	}
	if crit.MinPosts < 0 {
		return fmt.Errorf("criteria.min_posts must be >= 0")
	}
	if crit.MinEngagement < 0 || crit.MaxEngagement < 0 {
		return fmt.Errorf("criteria engagement bounds must be >= 0")
	}
	if crit.MinEngagement > crit.MaxEngagement {
		return fmt.Errorf("criteria.min_engagement must be <= criteria.max_engagement")
	}
	if crit.MaxDepth < 0 {
		return fmt.Errorf("criteria.max_depth must be >= 0")
	}
	if crit.MaxProfiles <= 0 {
		return fmt.Errorf("criteria.max_profiles must be > 0")
	}
	if c.Scraping.MinDelayMs < 0 || c.Scraping.MaxDelayMs < c.Scraping.MinDelayMs {
		return fmt.Errorf("scraping delay window is invalid")
	}
	if c.Scraping.MaxRetries < 1 {
		return fmt.Errorf("scraping.max_retries must be >= 1")
	}
	if c.Notifications.Enabled && c.Notifications.Recipient == "" {
		return fmt.Errorf("notifications.recipient must be set when notifications are enabled")
	}
	if c.API.Enabled && c.API.Port <= 0 {
		return fmt.Errorf("api.port must be > 0 when the api is enabled")
	}
	return nil
}

// NavTimeout converts the configured page-wait ceiling into a duration.
func (c Config) NavTimeout() time.Duration {
	return time.Duration(c.Scraping.NavTimeoutSec) * time.Second
}

// DelayWindow returns the randomized pacing bounds.
func (c Config) DelayWindow() (time.Duration, time.Duration) {
	return time.Duration(c.Scraping.MinDelayMs) * time.Millisecond,
		time.Duration(c.Scraping.MaxDelayMs) * time.Millisecond
}
