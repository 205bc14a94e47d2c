package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ajitpratap0/relgraph/internal/explicit"
)

func rulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the built-in explicit relationship rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			rules := explicit.DefaultRules()

			fmt.Printf("%-14s %-16s %-14s %-18s %s\n", "SOURCE", "FIELD", "TARGET", "RELATIONSHIP", "CONFIDENCE")
			for _, r := range rules {
				fmt.Printf("%-14s %-16s %-14s %-18s %.2f\n",
					r.SourceType, r.Field, r.TargetType, r.Relationship, r.Confidence)
			}
			return nil
		},
	}
}
