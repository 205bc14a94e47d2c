package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ajitpratap0/relgraph/internal/discovery"
	"github.com/ajitpratap0/relgraph/internal/models"
	"github.com/ajitpratap0/relgraph/internal/semantic"
)

func discoverCmd() *cobra.Command {
	var (
		entitiesFile  string
		eventsFile    string
		docsFile      string
		minConfidence float64
		excludeTypes  []string
		focusEntities []string
		outputFile    string
	)

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Run all discovery strategies over an entity snapshot",
		Long: `Reads entities (and optionally events and documents) from JSON files,
runs explicit, multi-hop, temporal, and semantic discovery, and writes
the merged relationship set as JSON to stdout or a file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			var entities []models.Entity
			if err := readJSONFile(entitiesFile, &entities); err != nil {
				return fmt.Errorf("discover: reading entities: %w", err)
			}

			var events []models.Event
			if eventsFile != "" {
				if err := readJSONFile(eventsFile, &events); err != nil {
					return fmt.Errorf("discover: reading events: %w", err)
				}
			}

			var documents []semantic.Document
			if docsFile != "" {
				if err := readJSONFile(docsFile, &documents); err != nil {
					return fmt.Errorf("discover: reading documents: %w", err)
				}
			}

			dctx := models.DiscoveryContext{MinConfidence: minConfidence}
			if minConfidence == 0 {
				dctx.MinConfidence = cfg.Discovery.MinConfidence
			}
			allExcludes := append(cfg.Discovery.ExcludeTypes, excludeTypes...)
			if len(allExcludes) > 0 {
				dctx.ExcludeTypes = make(map[models.RelationshipType]bool, len(allExcludes))
				for _, t := range allExcludes {
					dctx.ExcludeTypes[models.RelationshipType(t)] = true
				}
			}
			if len(focusEntities) > 0 {
				dctx.FocusEntities = make(map[string]bool, len(focusEntities))
				for _, id := range focusEntities {
					dctx.FocusEntities[id] = true
				}
			}

			engine := newEngine(logger)
			result, err := engine.Discover(cmd.Context(), discovery.Input{
				Entities:  entities,
				Events:    events,
				Documents: documents,
			}, dctx)
			if err != nil {
				return fmt.Errorf("discover: %w", err)
			}

			return writeJSONOutput(outputFile, result)
		},
	}

	cmd.Flags().StringVar(&entitiesFile, "entities", "", "path to entities JSON file (required)")
	cmd.Flags().StringVar(&eventsFile, "events", "", "path to events JSON file")
	cmd.Flags().StringVar(&docsFile, "documents", "", "path to documents JSON file")
	cmd.Flags().Float64Var(&minConfidence, "min-confidence", 0, "discard relationships below this confidence")
	cmd.Flags().StringSliceVar(&excludeTypes, "exclude-types", nil, "relationship types to suppress")
	cmd.Flags().StringSliceVar(&focusEntities, "focus", nil, "restrict output to relationships touching these entity ids")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "write JSON output to file instead of stdout")
	_ = cmd.MarkFlagRequired("entities")

	return cmd
}

// readJSONFile decodes a JSON file into v.
func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// writeJSONOutput writes v as indented JSON to a file, or stdout when
// path is empty.
func writeJSONOutput(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	data = append(data, '\n')
	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
