package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ajitpratap0/relgraph/internal/config"
	"github.com/ajitpratap0/relgraph/internal/discovery"
	"github.com/ajitpratap0/relgraph/internal/explicit"
	"github.com/ajitpratap0/relgraph/internal/graphpattern"
	"github.com/ajitpratap0/relgraph/internal/multihop"
	"github.com/ajitpratap0/relgraph/internal/semantic"
	"github.com/ajitpratap0/relgraph/internal/temporal"
)

var cfg *config.Config

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	rootCmd := &cobra.Command{
		Use:   "relgraph",
		Short: "relgraph — relationship discovery engine over business entities",
		Long:  "relgraph discovers typed relationships between business entities through explicit rule matching, multi-hop path search, temporal event correlation, and semantic text mining, then aggregates them into structural graph patterns.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return nil
		},
	}

	rootCmd.AddCommand(
		discoverCmd(),
		mineCmd(),
		patternsCmd(),
		rulesCmd(),
		extractCmd(),
		serveCmd(),
		mcpCmd(),
	)

	rootCmd.SetContext(ctx)

	err := rootCmd.Execute()
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if cfg != nil && cfg.Logging.Level == "debug" {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg != nil && cfg.Logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func newEngine(logger *slog.Logger) *discovery.Engine {
	return discovery.NewEngine(
		explicit.NewBuilder(explicit.DefaultRules(), logger),
		multihop.NewDiscoverer(cfg.Discovery.MaxHops, logger),
		newAnalyzer(logger),
		newMiner(logger),
		logger,
	)
}

func newAnalyzer(logger *slog.Logger) *temporal.Analyzer {
	return temporal.NewAnalyzer(
		cfg.Temporal.LagWindowDays,
		cfg.Temporal.MinEvents,
		cfg.Temporal.MinCorrelation,
		cfg.Temporal.MinCausality,
		logger,
	)
}

func newMiner(logger *slog.Logger) *semantic.Miner {
	return semantic.NewMiner(semantic.DefaultPatterns(), cfg.Semantic.MaxTextLength, logger)
}

func newRecognizer(logger *slog.Logger) *graphpattern.Recognizer {
	return graphpattern.NewRecognizer(
		cfg.Patterns.HubCentralityThreshold,
		cfg.Patterns.MinCommunitySize,
		logger,
	)
}
