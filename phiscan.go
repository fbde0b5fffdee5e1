// Package phiscan flags files likely to contain Protected Health
// Information. It scans file content (or deterministic stand-in text for
// metadata-only files) against an ordered pattern registry, scores each
// file and folder by exposure risk, and fingerprints content shapes to
// surface duplicate and PHI-proliferation signals.
package phiscan

import (
	"context"
	"fmt"

	"github.com/grailhealth/phiscan-go/core"
)

// Engine bundles a configured pattern registry with the scan orchestrator
// and its collaborators. One engine is safe for concurrent use and keeps a
// fingerprint index that spans all scans it has run.
type Engine struct {
	registry     *core.Registry
	scanner      *core.Scanner
	orchestrator *core.Orchestrator
}

// Option configures an Engine.
type Option func(*engineConfig)

type engineConfig struct {
	overlayPaths []string
	repo         core.Repository
	notifier     core.Notifier
	workers      int
}

// WithPatternOverlay loads tenant-specific patterns from a YAML file and
// appends them after the built-in catalog.
func WithPatternOverlay(path string) Option {
	return func(c *engineConfig) { c.overlayPaths = append(c.overlayPaths, path) }
}

// WithRepository wires a persistence collaborator into the orchestrator.
func WithRepository(repo core.Repository) Option {
	return func(c *engineConfig) { c.repo = repo }
}

// WithNotifier wires an alerting collaborator into the orchestrator.
func WithNotifier(n core.Notifier) Option {
	return func(c *engineConfig) { c.notifier = n }
}

// WithWorkers overrides the scan worker pool size.
func WithWorkers(n int) Option {
	return func(c *engineConfig) { c.workers = n }
}

// NewEngine builds an engine from the built-in registry plus any configured
// overlays and collaborators.
func NewEngine(opts ...Option) (*Engine, error) {
	var cfg engineConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	registry := core.NewRegistry()
	for _, path := range cfg.overlayPaths {
		patterns, err := core.LoadPatternOverlay(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load pattern overlay: %w", err)
		}
		registry = registry.WithOverlay(patterns...)
	}

	orchOpts := []core.OrchestratorOption{}
	if cfg.repo != nil {
		orchOpts = append(orchOpts, core.WithRepository(cfg.repo))
	}
	if cfg.notifier != nil {
		orchOpts = append(orchOpts, core.WithNotifier(cfg.notifier))
	}
	if cfg.workers > 0 {
		orchOpts = append(orchOpts, core.WithWorkers(cfg.workers))
	}

	return &Engine{
		registry:     registry,
		scanner:      core.NewScanner(registry),
		orchestrator: core.NewOrchestrator(registry, orchOpts...),
	}, nil
}

// ScanFile runs the pipeline for a single file. The summary's overall score
// equals the file's risk score.
func (e *Engine) ScanFile(ctx context.Context, file core.FileInput) (core.ScanSummary, error) {
	return e.orchestrator.RunSingleFileScan(ctx, file)
}

// ScanBatch runs the pipeline for a batch of files rooted at rootPath.
func (e *Engine) ScanBatch(ctx context.Context, files []core.FileInput, rootPath string) (core.ScanSummary, error) {
	return e.orchestrator.RunBatchScan(ctx, files, rootPath)
}

// Redact returns the text with every detected PHI span replaced by a
// category tag.
func (e *Engine) Redact(text string) string {
	return e.scanner.Redact(text)
}

// DuplicatesOf returns every other file sharing a content fingerprint with
// the given file, across all scans this engine has run.
func (e *Engine) DuplicatesOf(fileID string) []string {
	return e.orchestrator.Index().DuplicatesOf(fileID)
}

// Registry exposes the engine's pattern catalog.
func (e *Engine) Registry() *core.Registry {
	return e.registry
}

// ScanText is a convenience for callers that only need findings and a score
// for one piece of text, without orchestration or collaborators.
func ScanText(text, logicalName string) ([]core.Finding, int, core.RiskLevel) {
	scanner := core.NewScanner(core.NewRegistry())
	findings := scanner.Scan(&text, logicalName)
	score, level := core.Score(findings)
	return findings, score, level
}
