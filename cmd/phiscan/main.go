package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "phiscan",
	Short: "PHI exposure scanner for healthcare file inventories",
	Long: `phiscan scans file content for Protected Health Information using an
ordered pattern catalog, scores each file and folder by exposure risk, and
fingerprints content shapes to surface duplicate files.`,
}

func main() {
	cobra.CheckErr(rootCmd.Execute())
}
