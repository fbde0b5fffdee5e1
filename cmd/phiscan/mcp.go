package main

import (
	"github.com/spf13/cobra"

	phiscan "github.com/grailhealth/phiscan-go"
	"github.com/grailhealth/phiscan-go/server"
)

var mcpPatternsFile string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the scan pipeline as MCP tools over stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := []phiscan.Option{}
		if mcpPatternsFile != "" {
			opts = append(opts, phiscan.WithPatternOverlay(mcpPatternsFile))
		}
		engine, err := phiscan.NewEngine(opts...)
		if err != nil {
			return err
		}
		return server.ServeStdio(engine)
	},
}

func init() {
	mcpCmd.Flags().StringVar(&mcpPatternsFile, "patterns", "", "YAML pattern overlay file appended to the built-in catalog")
	rootCmd.AddCommand(mcpCmd)
}
