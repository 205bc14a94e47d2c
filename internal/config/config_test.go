package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/relgraph/internal/graphpattern"
	"github.com/ajitpratap0/relgraph/internal/multihop"
	"github.com/ajitpratap0/relgraph/internal/semantic"
	"github.com/ajitpratap0/relgraph/internal/temporal"
)

// validCfg returns a fully-valid Config for mutation testing.
func validCfg() *Config {
	return &Config{
		Discovery: DiscoveryConfig{
			MaxHops:       3,
			MinConfidence: 0.5,
		},
		Temporal: TemporalConfig{
			LagWindowDays:  30,
			MinEvents:      10,
			MinCorrelation: 0.5,
			MinCausality:   0.5,
		},
		Semantic: SemanticConfig{
			MaxTextLength: 50000,
		},
		Patterns: PatternsConfig{
			HubCentralityThreshold: 0.5,
			MinCommunitySize:       3,
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
		API:     APIConfig{ListenAddr: ":8080"},
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, multihop.DefaultMaxHops, cfg.Discovery.MaxHops)
	assert.Equal(t, 0.0, cfg.Discovery.MinConfidence)

	assert.Equal(t, temporal.DefaultLagWindowDays, cfg.Temporal.LagWindowDays)
	assert.Equal(t, temporal.DefaultMinEvents, cfg.Temporal.MinEvents)
	assert.Equal(t, temporal.DefaultMinCorrelation, cfg.Temporal.MinCorrelation)
	assert.Equal(t, temporal.DefaultMinCausality, cfg.Temporal.MinCausality)

	assert.Equal(t, semantic.DefaultMaxTextLength, cfg.Semantic.MaxTextLength)

	assert.Equal(t, graphpattern.DefaultHubCentralityThreshold, cfg.Patterns.HubCentralityThreshold)
	assert.Equal(t, graphpattern.DefaultMinCommunitySize, cfg.Patterns.MinCommunitySize)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, ":8080", cfg.API.ListenAddr)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("RELGRAPH_DISCOVERY_MAX_HOPS", "5")
	t.Setenv("RELGRAPH_API_LISTEN_ADDR", ":9090")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Discovery.MaxHops)
	assert.Equal(t, ":9090", cfg.API.ListenAddr)
}

func TestLoad_ClaudeAPIKeyFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test-key-12345")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sk-ant-test-key-12345", cfg.Claude.APIKey)
}

func TestValidate_NegativeMaxHops(t *testing.T) {
	cfg := validCfg()
	cfg.Discovery.MaxHops = -1
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_hops")
}

func TestValidate_MinConfidenceOutOfRange(t *testing.T) {
	cfg := validCfg()
	cfg.Discovery.MinConfidence = 1.5
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "min_confidence")
}

func TestValidate_LagWindowZero(t *testing.T) {
	cfg := validCfg()
	cfg.Temporal.LagWindowDays = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lag_window_days")
}

func TestValidate_MinEventsZero(t *testing.T) {
	cfg := validCfg()
	cfg.Temporal.MinEvents = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "min_events")
}

func TestValidate_MinCorrelationOutOfRange(t *testing.T) {
	cfg := validCfg()
	cfg.Temporal.MinCorrelation = -0.1
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "min_correlation")
}

func TestValidate_MinCausalityOutOfRange(t *testing.T) {
	cfg := validCfg()
	cfg.Temporal.MinCausality = 2
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "min_causality")
}

func TestValidate_MaxTextLengthZero(t *testing.T) {
	cfg := validCfg()
	cfg.Semantic.MaxTextLength = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_text_length")
}

func TestValidate_HubThresholdOutOfRange(t *testing.T) {
	cfg := validCfg()
	cfg.Patterns.HubCentralityThreshold = 1.1
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hub_centrality_threshold")
}

func TestValidate_MinCommunitySizeTooSmall(t *testing.T) {
	cfg := validCfg()
	cfg.Patterns.MinCommunitySize = 1
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "min_community_size")
}

func TestClaudeConfig_StringMasksAPIKey(t *testing.T) {
	c := ClaudeConfig{APIKey: "sk-ant-1234567890abcdef", Model: "claude-haiku-4-5-20251001"}
	s := c.String()
	assert.NotContains(t, s, "1234567890")
	assert.True(t, strings.Contains(s, "sk-a") && strings.Contains(s, "cdef"))

	short := ClaudeConfig{APIKey: "tiny"}
	assert.Contains(t, short.String(), "***")
	assert.NotContains(t, short.String(), "tiny")
}
