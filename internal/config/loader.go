package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	envPrefix         = "CLEVER_MULTI"
	defaultConfigPath = "config/config.yaml"
)

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

// readExpanded reads the file and expands ${VAR} placeholders before parsing
func readExpanded(v *viper.Viper, configPath string) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return err
	}
	expanded := os.ExpandEnv(string(data))
	if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// Load reads and parses the configuration from file and environment variables.
// The file must exist.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	v := newViper()
	if err := readExpanded(v, configPath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return cfg, nil
}

// LoadWithDefaults loads configuration, falling back to defaults for every
// key the file and environment leave unset. A missing file is not an error.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	v := newViper()
	setDefaults(v)

	if err := readExpanded(v, configPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "clever-multi")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("selection.min_ev_threshold", 0.02)
	v.SetDefault("selection.min_confidence_threshold", 0.70)
	v.SetDefault("selection.min_odds_filter", 1.05)
	v.SetDefault("selection.max_odds_filter", 1.25)
	v.SetDefault("selection.stage1_min_model_prob", 75)
	v.SetDefault("selection.stage1_min_edge", 2)
	v.SetDefault("selection.stage1_min_ev", -5)
	v.SetDefault("selection.stage1_candidate_limit", 0)
	v.SetDefault("selection.stage2_rivalry_penalty", 8)
	v.SetDefault("selection.recommended_legs_count", 20)

	v.SetDefault("multi.target_multi_odds", 2.0)
	v.SetDefault("multi.max_legs_in_multi", 4)
	v.SetDefault("multi.reference_stake", 10)

	v.SetDefault("signals.memo_ttl_seconds", 0)

	v.SetDefault("odds_api.base_url", "https://api.the-odds-api.com/v4")
	v.SetDefault("odds_api.api_key", "")
	v.SetDefault("odds_api.regions", "au")
	v.SetDefault("odds_api.props_regions", "us")
	v.SetDefault("odds_api.markets", "h2h")
	v.SetDefault("odds_api.props_event_limit", 5)
	v.SetDefault("odds_api.max_event_days_ahead", 7)
	v.SetDefault("odds_api.cache_ttl_seconds", 600)
	v.SetDefault("odds_api.timeout_seconds", 15)
	v.SetDefault("odds_api.retry_attempts", 3)
	v.SetDefault("odds_api.rate_limit_per_second", 2)
	v.SetDefault("odds_api.rate_limit_burst", 4)

	v.SetDefault("ml_service.enabled", false)
	v.SetDefault("ml_service.grpc_address", "")
	v.SetDefault("ml_service.model_name", "default")
	v.SetDefault("ml_service.request_timeout_seconds", 2)
	v.SetDefault("ml_service.cache_ttl_seconds", 600)
	v.SetDefault("ml_service.cache_max_size", 10000)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "clever_multi")
	v.SetDefault("database.user", "clever_multi")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.min_connections", 1)

	v.SetDefault("snapshot.store", "file")
	v.SetDefault("snapshot.path", "cached_odds_data.json")
	v.SetDefault("snapshot.best_odds_only", false)

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.fetch_schedule", "0 6 * * 1,4")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout_seconds", 15)
	v.SetDefault("server.write_timeout_seconds", 30)
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("sports", []string{"nba", "nfl"})
}
