package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ajitpratap0/relgraph/internal/extract"
)

func extractCmd() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "extract [text-file]",
		Short: "Extract business entities from text using Claude",
		Long: `Identifies customers, teams, projects, risks, people, subscriptions,
and objectives in free text and emits them as an entities JSON file
suitable for the discover command.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			if cfg.Claude.APIKey == "" {
				return fmt.Errorf("extract: ANTHROPIC_API_KEY is not set")
			}

			text, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("extract: reading text: %w", err)
			}

			ex := extract.NewExtractor(cfg.Claude.APIKey, cfg.Claude.Model, logger)
			entities, err := ex.Extract(cmd.Context(), string(text))
			if err != nil {
				return fmt.Errorf("extract: %w", err)
			}

			return writeJSONOutput(outputFile, entities)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "write entities JSON to file instead of stdout")
	return cmd
}
