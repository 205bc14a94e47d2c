package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ajitpratap0/relgraph/internal/models"
)

func patternsCmd() *cobra.Command {
	var (
		entitiesFile string
		relsFile     string
		outputFile   string
	)

	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "Recognize hubs, triangles, and communities in a relationship set",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			var entities []models.Entity
			if err := readJSONFile(entitiesFile, &entities); err != nil {
				return fmt.Errorf("patterns: reading entities: %w", err)
			}

			var rels []models.Relationship
			if err := readJSONFile(relsFile, &rels); err != nil {
				return fmt.Errorf("patterns: reading relationships: %w", err)
			}

			rec := newRecognizer(logger)
			out := map[string]any{
				"patterns":       rec.Recognize(entities, rels),
				"collaborations": rec.Collaborations(entities, rels),
			}
			return writeJSONOutput(outputFile, out)
		},
	}

	cmd.Flags().StringVar(&entitiesFile, "entities", "", "path to entities JSON file (required)")
	cmd.Flags().StringVar(&relsFile, "relationships", "", "path to relationships JSON file (required)")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "write JSON output to file instead of stdout")
	_ = cmd.MarkFlagRequired("entities")
	_ = cmd.MarkFlagRequired("relationships")

	return cmd
}
