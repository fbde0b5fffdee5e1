package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grailhealth/phiscan-go/core"
)

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "List the detector pattern catalog in evaluation order",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry := core.NewRegistry()
		if flagPatterns != "" {
			overlay, err := core.LoadPatternOverlay(flagPatterns)
			if err != nil {
				return err
			}
			registry = registry.WithOverlay(overlay...)
		}

		for i, p := range registry.Patterns() {
			fmt.Printf("%2d. %-15s %-8s %s\n", i+1, p.Category, p.Severity, p.Description)
		}
		return nil
	},
}

func init() {
	patternsCmd.Flags().StringVar(&flagPatterns, "patterns", "", "YAML pattern overlay file appended to the built-in catalog")
	rootCmd.AddCommand(patternsCmd)
}
