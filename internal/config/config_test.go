package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
credentials:
  username: scout_account
  password: hunter2
scraping:
  min_delay_ms: 500
  max_delay_ms: 1500
  nav_timeout_seconds: 20
  max_retries: 4
  seeds_per_topic: 8
criteria:
  min_followers: 2000
  max_followers: 40000
  min_posts: 30
  max_depth: 2
  max_profiles: 250
  seed_topics: ["momlife", "parenting"]
  exclude_keywords: ["premium"]
proxies:
  enabled: true
  list_file: proxies.txt
  check_on_startup: false
output:
  csv_file: out.csv
  session_file: session.json
logging:
  development: false
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Credentials.Username != "scout_account" {
		t.Fatalf("expected credentials override, got %q", cfg.Credentials.Username)
	}
	if cfg.Criteria.MinFollowers != 2000 || cfg.Criteria.MaxFollowers != 40000 {
		t.Fatalf("expected criteria overrides to apply: %+v", cfg.Criteria)
	}
	if len(cfg.Criteria.SeedTopics) != 2 || cfg.Criteria.SeedTopics[0] != "momlife" {
		t.Fatalf("expected seed topics to be loaded: %+v", cfg.Criteria.SeedTopics)
	}
	if !cfg.Proxies.Enabled || cfg.Proxies.ListFile != "proxies.txt" {
		t.Fatalf("expected proxies overrides to apply: %+v", cfg.Proxies)
	}
	if cfg.Logging.Development {
		t.Fatalf("expected production logging")
	}
	if got := cfg.NavTimeout(); got != 20*time.Second {
		t.Fatalf("expected nav timeout 20s, got %v", got)
	}
	minDelay, maxDelay := cfg.DelayWindow()
	if minDelay != 500*time.Millisecond || maxDelay != 1500*time.Millisecond {
		t.Fatalf("expected delay window overrides, got %v/%v", minDelay, maxDelay)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Criteria.MinFollowers != 1000 || cfg.Criteria.MaxFollowers != 50000 {
		t.Fatalf("expected default follower bounds, got %+v", cfg.Criteria)
	}
	if cfg.Criteria.MaxProfiles != 1000 {
		t.Fatalf("expected default budget 1000, got %d", cfg.Criteria.MaxProfiles)
	}
	if !cfg.Logging.Development {
		t.Fatalf("expected development logging by default")
	}
}

func TestValidateRejectsInvertedRanges(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	cfg.Criteria.MinFollowers = 100
	cfg.Criteria.MaxFollowers = 10
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected inverted follower range to fail validation")
	}

	cfg, _ = Load("")
	cfg.Criteria.MinEngagement = 20
	cfg.Criteria.MaxEngagement = 5
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected inverted engagement range to fail validation")
	}

	cfg, _ = Load("")
	cfg.Notifications.Enabled = true
	cfg.Notifications.Recipient = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected missing recipient to fail validation")
	}
}
