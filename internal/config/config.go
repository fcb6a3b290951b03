// Package config provides configuration management for the clever-multi service.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app" validate:"required"`
	Selection SelectionConfig `mapstructure:"selection" validate:"required"`
	Multi     MultiConfig     `mapstructure:"multi" validate:"required"`
	Signals   SignalsConfig   `mapstructure:"signals"`
	OddsAPI   OddsAPIConfig   `mapstructure:"odds_api" validate:"required"`
	MLService MLServiceConfig `mapstructure:"ml_service"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Snapshot  SnapshotConfig  `mapstructure:"snapshot" validate:"required"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Sports    []string        `mapstructure:"sports" validate:"required,min=1,sports"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// SelectionConfig holds the analysis and filter thresholds. Stage 1
// thresholds are percentages.
type SelectionConfig struct {
	MinEVThreshold         float64 `mapstructure:"min_ev_threshold"`
	MinConfidenceThreshold float64 `mapstructure:"min_confidence_threshold" validate:"gte=0,lte=1"`
	MinOddsFilter          float64 `mapstructure:"min_odds_filter" validate:"gt=1"`
	MaxOddsFilter          float64 `mapstructure:"max_odds_filter" validate:"gt=1"`
	Stage1MinModelProb     float64 `mapstructure:"stage1_min_model_prob" validate:"gte=0,lte=100"`
	Stage1MinEdge          float64 `mapstructure:"stage1_min_edge"`
	Stage1MinEV            float64 `mapstructure:"stage1_min_ev"`
	Stage1CandidateLimit   int     `mapstructure:"stage1_candidate_limit" validate:"gte=0"`
	Stage2RivalryPenalty   float64 `mapstructure:"stage2_rivalry_penalty" validate:"gte=0"`
	RecommendedLegsCount   int     `mapstructure:"recommended_legs_count" validate:"gte=0"`
}

// MultiConfig holds the parlay builder settings
type MultiConfig struct {
	TargetMultiOdds float64 `mapstructure:"target_multi_odds" validate:"gt=1"`
	MaxLegsInMulti  int     `mapstructure:"max_legs_in_multi" validate:"gte=2"`
	ReferenceStake  float64 `mapstructure:"reference_stake" validate:"gt=0"`
}

// SignalsConfig controls the team signal memo
type SignalsConfig struct {
	MemoTTLSeconds int `mapstructure:"memo_ttl_seconds" validate:"gte=0"`
}

// OddsAPIConfig represents the upstream odds provider configuration
type OddsAPIConfig struct {
	BaseURL            string  `mapstructure:"base_url" validate:"required,url"`
	APIKey             string  `mapstructure:"api_key"`
	Regions            string  `mapstructure:"regions" validate:"required"`
	PropsRegions       string  `mapstructure:"props_regions" validate:"required"`
	Markets            string  `mapstructure:"markets" validate:"required"`
	PropsEventLimit    int     `mapstructure:"props_event_limit" validate:"gte=0"`
	MaxEventDaysAhead  int     `mapstructure:"max_event_days_ahead" validate:"gt=0"`
	CacheTTLSeconds    int     `mapstructure:"cache_ttl_seconds" validate:"gte=0"`
	TimeoutSeconds     int     `mapstructure:"timeout_seconds" validate:"gt=0"`
	RetryAttempts      int     `mapstructure:"retry_attempts" validate:"gte=0"`
	RateLimitPerSecond float64 `mapstructure:"rate_limit_per_second" validate:"gt=0"`
	RateLimitBurst     int     `mapstructure:"rate_limit_burst" validate:"gt=0"`
}

// MLServiceConfig represents the optional trained probability source
type MLServiceConfig struct {
	Enabled               bool   `mapstructure:"enabled"`
	GRPCAddress           string `mapstructure:"grpc_address" validate:"required_if=Enabled true"`
	ModelName             string `mapstructure:"model_name"`
	RequestTimeoutSeconds int    `mapstructure:"request_timeout_seconds" validate:"gte=0"`
	CacheTTLSeconds       int    `mapstructure:"cache_ttl_seconds" validate:"gte=0"`
	CacheMaxSize          int    `mapstructure:"cache_max_size" validate:"gte=0"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Host           string `mapstructure:"host" validate:"required_if=Enabled true"`
	Port           int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name           string `mapstructure:"name" validate:"required_if=Enabled true"`
	User           string `mapstructure:"user" validate:"required_if=Enabled true"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"gte=0"`
	MinConnections int    `mapstructure:"min_connections" validate:"gte=0"`
}

// SnapshotConfig controls where fetched odds are stored
type SnapshotConfig struct {
	Store string `mapstructure:"store" validate:"required,oneof=file postgres"`
	Path  string `mapstructure:"path" validate:"required_if=Store file"`

	// BestOddsOnly keeps only the best bookmaker price per selection on load
	BestOddsOnly bool `mapstructure:"best_odds_only"`
}

// SchedulerConfig represents the fetch schedule
type SchedulerConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	FetchSchedule string `mapstructure:"fetch_schedule" validate:"required_if=Enabled true"`
}

// ServerConfig represents the HTTP API configuration
type ServerConfig struct {
	Port                int      `mapstructure:"port" validate:"required,min=1,max=65535"`
	ReadTimeoutSeconds  int      `mapstructure:"read_timeout_seconds" validate:"gte=0"`
	WriteTimeoutSeconds int      `mapstructure:"write_timeout_seconds" validate:"gte=0"`
	AllowedOrigins      []string `mapstructure:"allowed_origins"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required_if=Enabled true"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// MemoTTL returns the team signal memo lifetime; zero keeps entries for the run
func (c *Config) MemoTTL() time.Duration {
	return time.Duration(c.Signals.MemoTTLSeconds) * time.Second
}

// OddsCacheTTL returns the upstream response cache lifetime
func (c *Config) OddsCacheTTL() time.Duration {
	return time.Duration(c.OddsAPI.CacheTTLSeconds) * time.Second
}
