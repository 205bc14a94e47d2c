package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/ajitpratap0/relgraph/internal/graphpattern"
	"github.com/ajitpratap0/relgraph/internal/multihop"
	"github.com/ajitpratap0/relgraph/internal/semantic"
	"github.com/ajitpratap0/relgraph/internal/temporal"
)

// Config holds all configuration for relgraph.
type Config struct {
	Discovery DiscoveryConfig `mapstructure:"discovery"`
	Temporal  TemporalConfig  `mapstructure:"temporal"`
	Semantic  SemanticConfig  `mapstructure:"semantic"`
	Patterns  PatternsConfig  `mapstructure:"patterns"`
	Claude    ClaudeConfig    `mapstructure:"claude"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	API       APIConfig       `mapstructure:"api"`
}

// DiscoveryConfig holds cross-strategy discovery settings.
type DiscoveryConfig struct {
	MaxHops       int      `mapstructure:"max_hops"`
	MinConfidence float64  `mapstructure:"min_confidence"`
	ExcludeTypes  []string `mapstructure:"exclude_types"`
}

// TemporalConfig holds event correlation settings.
type TemporalConfig struct {
	LagWindowDays  int     `mapstructure:"lag_window_days"`
	MinEvents      int     `mapstructure:"min_events"`
	MinCorrelation float64 `mapstructure:"min_correlation"`
	MinCausality   float64 `mapstructure:"min_causality"`
}

// SemanticConfig holds text mining settings.
type SemanticConfig struct {
	MaxTextLength int `mapstructure:"max_text_length"`
}

// PatternsConfig holds graph pattern recognition settings.
type PatternsConfig struct {
	HubCentralityThreshold float64 `mapstructure:"hub_centrality_threshold"`
	MinCommunitySize       int     `mapstructure:"min_community_size"`
}

// ClaudeConfig holds Anthropic Claude API settings for entity extraction.
type ClaudeConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// String returns a safe representation of ClaudeConfig with the API key masked.
func (c ClaudeConfig) String() string {
	return fmt.Sprintf("ClaudeConfig{APIKey:%s, Model:%s}", maskAPIKey(c.APIKey), c.Model)
}

// maskAPIKey shows first 4 + last 4 chars, replacing the middle with asterisks.
func maskAPIKey(key string) string {
	const visible = 4
	if len(key) <= visible*2 {
		return "***"
	}
	return key[:visible] + "****" + key[len(key)-visible:]
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
	AuthToken  string `mapstructure:"auth_token"`
}

// Load reads configuration from file and environment variables.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("discovery.max_hops", multihop.DefaultMaxHops)
	v.SetDefault("discovery.min_confidence", 0.0)
	v.SetDefault("discovery.exclude_types", []string{})

	v.SetDefault("temporal.lag_window_days", temporal.DefaultLagWindowDays)
	v.SetDefault("temporal.min_events", temporal.DefaultMinEvents)
	v.SetDefault("temporal.min_correlation", temporal.DefaultMinCorrelation)
	v.SetDefault("temporal.min_causality", temporal.DefaultMinCausality)

	v.SetDefault("semantic.max_text_length", semantic.DefaultMaxTextLength)

	v.SetDefault("patterns.hub_centrality_threshold", graphpattern.DefaultHubCentralityThreshold)
	v.SetDefault("patterns.min_community_size", graphpattern.DefaultMinCommunitySize)

	v.SetDefault("claude.model", "claude-haiku-4-5-20251001")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("api.listen_addr", ":8080")
	v.SetDefault("api.auth_token", "")

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(homeDir(), ".relgraph"))
	v.AddConfigPath(".")

	// Environment variables
	v.SetEnvPrefix("RELGRAPH")
	v.AutomaticEnv()

	// Map specific env vars
	_ = v.BindEnv("claude.api_key", "ANTHROPIC_API_KEY")
	_ = v.BindEnv("api.listen_addr", "RELGRAPH_API_LISTEN_ADDR")
	_ = v.BindEnv("api.auth_token", "RELGRAPH_API_AUTH_TOKEN")
	_ = v.BindEnv("discovery.max_hops", "RELGRAPH_DISCOVERY_MAX_HOPS")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// Config file not found is OK — use defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Validate checks that configuration fields are set and consistent.
func (c *Config) Validate() error {
	if c.Discovery.MaxHops < 0 {
		return fmt.Errorf("discovery.max_hops must be >= 0")
	}
	if c.Discovery.MinConfidence < 0 || c.Discovery.MinConfidence > 1 {
		return fmt.Errorf("discovery.min_confidence must be between 0 and 1")
	}
	if c.Temporal.LagWindowDays <= 0 {
		return fmt.Errorf("temporal.lag_window_days must be greater than 0")
	}
	if c.Temporal.MinEvents <= 0 {
		return fmt.Errorf("temporal.min_events must be greater than 0")
	}
	if c.Temporal.MinCorrelation < 0 || c.Temporal.MinCorrelation > 1 {
		return fmt.Errorf("temporal.min_correlation must be between 0 and 1")
	}
	if c.Temporal.MinCausality < 0 || c.Temporal.MinCausality > 1 {
		return fmt.Errorf("temporal.min_causality must be between 0 and 1")
	}
	if c.Semantic.MaxTextLength <= 0 {
		return fmt.Errorf("semantic.max_text_length must be greater than 0")
	}
	if c.Patterns.HubCentralityThreshold <= 0 || c.Patterns.HubCentralityThreshold > 1 {
		return fmt.Errorf("patterns.hub_centrality_threshold must be in (0, 1]")
	}
	if c.Patterns.MinCommunitySize < 2 {
		return fmt.Errorf("patterns.min_community_size must be >= 2")
	}
	return nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
