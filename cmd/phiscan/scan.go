package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	phiscan "github.com/grailhealth/phiscan-go"
	"github.com/grailhealth/phiscan-go/alert"
	"github.com/grailhealth/phiscan-go/core"
	"github.com/grailhealth/phiscan-go/store"
)

// maxReadBytes caps how much of each file is read for scanning.
const maxReadBytes = 10 * 1024 * 1024

var (
	flagPatterns     string
	flagJSON         bool
	flagFailOn       string
	flagMetadataOnly bool
	flagTimeoutSec   int
)

var scanCmd = &cobra.Command{
	Use:   "scan [paths...]",
	Short: "Scan files or directories for PHI exposure",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runScan,
}

func init() {
	scanCmd.Flags().StringVar(&flagPatterns, "patterns", "", "YAML pattern overlay file appended to the built-in catalog")
	scanCmd.Flags().BoolVar(&flagJSON, "json", false, "Print the full scan summary as JSON")
	scanCmd.Flags().StringVar(&flagFailOn, "fail-on", "", "Exit non-zero if the overall risk level reaches this (LOW, MEDIUM, HIGH, CRITICAL)")
	scanCmd.Flags().BoolVar(&flagMetadataOnly, "metadata-only", false, "Do not read file content; score from synthesized metadata text")
	scanCmd.Flags().IntVar(&flagTimeoutSec, "timeout", 600, "Batch timeout in seconds")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	var failOn core.RiskLevel
	if flagFailOn != "" {
		parsed, err := core.ParseSeverity(flagFailOn)
		if err != nil {
			return err
		}
		failOn = parsed
	}

	opts := []phiscan.Option{
		phiscan.WithRepository(store.NewMemory()),
		phiscan.WithNotifier(alert.AuditNotifier{}),
	}
	if flagPatterns != "" {
		opts = append(opts, phiscan.WithPatternOverlay(flagPatterns))
	}
	engine, err := phiscan.NewEngine(opts...)
	if err != nil {
		return err
	}

	files, rootPath, err := collectFiles(args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(flagTimeoutSec)*time.Second)
	defer cancel()

	summary, err := engine.ScanBatch(ctx, files, rootPath)
	if err != nil {
		return err
	}

	if flagJSON {
		data, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	} else {
		printSummary(summary)
	}

	if failOn != "" && summary.OverallRiskLevel.Rank() >= failOn.Rank() {
		return fmt.Errorf("overall risk level %s reached fail-on threshold %s", summary.OverallRiskLevel, failOn)
	}
	return nil
}

// collectFiles expands the argument paths into file inputs. Directories are
// walked recursively; logical paths are made relative to the argument so
// folder rollups follow the on-disk layout.
func collectFiles(paths []string) ([]core.FileInput, string, error) {
	var files []core.FileInput
	rootPath := strings.TrimSuffix(paths[0], "/")

	for _, arg := range paths {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, "", fmt.Errorf("cannot scan %s: %w", arg, err)
		}

		if !info.IsDir() {
			input, err := fileInput(arg, filepath.Base(arg))
			if err != nil {
				return nil, "", err
			}
			files = append(files, input)
			continue
		}

		err = filepath.Walk(arg, func(path string, fi os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if fi.IsDir() {
				if fi.Name() == ".git" {
					return filepath.SkipDir
				}
				return nil
			}
			rel, err := filepath.Rel(arg, path)
			if err != nil {
				return err
			}
			input, err := fileInput(path, filepath.ToSlash(rel))
			if err != nil {
				return err
			}
			files = append(files, input)
			return nil
		})
		if err != nil {
			return nil, "", err
		}
	}
	return files, rootPath, nil
}

func fileInput(path, logicalPath string) (core.FileInput, error) {
	info, err := os.Stat(path)
	if err != nil {
		return core.FileInput{}, err
	}

	input := core.FileInput{
		FileName:    filepath.Base(path),
		LogicalPath: logicalPath,
		SizeBytes:   info.Size(),
	}
	if flagMetadataOnly {
		return input, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return core.FileInput{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(data) > maxReadBytes {
		data = data[:maxReadBytes]
	}
	content := string(data)
	input.Content = &content
	return input, nil
}

func printSummary(summary core.ScanSummary) {
	fmt.Printf("Scan %s: %s\n", summary.ScanID, summary.State)
	fmt.Printf("Files: %d  PHI occurrences: %d  Overall: %d (%s)\n\n",
		summary.FileCount, summary.TotalPHICount, summary.OverallRiskScore, summary.OverallRiskLevel)

	for _, r := range summary.FileResults {
		fmt.Printf("  %-40s score %3d (%s), %d PHI\n", r.FileID, r.RiskScore, r.RiskLevel, r.PHICount)
		for _, f := range r.Findings {
			fmt.Printf("    - %s x%d (%s) sample %q line %d\n",
				f.Category, f.Occurrences, f.Severity, f.MaskedSample, f.ApproxLine)
		}
	}

	if len(summary.FolderAggregates) > 0 {
		fmt.Println("\nFolder rollups:")
		for _, agg := range summary.FolderAggregates {
			fmt.Printf("  %-40s files %3d  PHI %4d  avg %3d  max %s\n",
				agg.FolderPath, agg.TotalFiles, agg.TotalPHICount, agg.AvgRiskScore, agg.MaxRiskLevel)
		}
	}

	if len(summary.Unscanned) > 0 {
		fmt.Printf("\nNot scanned before timeout: %s\n", strings.Join(summary.Unscanned, ", "))
	}
	for _, msg := range summary.CollaboratorErrors {
		fmt.Fprintf(os.Stderr, "warning: %s\n", msg)
	}
}
