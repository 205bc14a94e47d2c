package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ajitpratap0/relgraph/internal/models"
	"github.com/ajitpratap0/relgraph/internal/semantic"
)

func mineCmd() *cobra.Command {
	var (
		entitiesFile string
		docsFile     string
		outputFile   string
	)

	cmd := &cobra.Command{
		Use:   "mine [text-file]",
		Short: "Mine relationships from text via mentions and verb patterns",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			if len(args) == 0 && docsFile == "" {
				return fmt.Errorf("mine: provide a text file argument or --documents")
			}

			var entities []models.Entity
			if err := readJSONFile(entitiesFile, &entities); err != nil {
				return fmt.Errorf("mine: reading entities: %w", err)
			}

			miner := newMiner(logger)

			var rels []models.Relationship
			if len(args) == 1 {
				text, err := os.ReadFile(args[0])
				if err != nil {
					return fmt.Errorf("mine: reading text: %w", err)
				}
				rels = miner.Mine(string(text), entities, nil)
			}

			if docsFile != "" {
				var documents []semantic.Document
				if err := readJSONFile(docsFile, &documents); err != nil {
					return fmt.Errorf("mine: reading documents: %w", err)
				}
				docRels, err := miner.MineDocuments(cmd.Context(), documents, entities)
				if err != nil {
					return fmt.Errorf("mine: %w", err)
				}
				rels = append(rels, docRels...)
			}

			return writeJSONOutput(outputFile, map[string][]models.Relationship{"relationships": rels})
		},
	}

	cmd.Flags().StringVar(&entitiesFile, "entities", "", "path to entities JSON file (required)")
	cmd.Flags().StringVar(&docsFile, "documents", "", "path to documents JSON file")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "write JSON output to file instead of stdout")
	_ = cmd.MarkFlagRequired("entities")

	return cmd
}
