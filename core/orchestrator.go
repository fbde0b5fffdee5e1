package core

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"strconv"
	"sync"
	"time"
)

// ErrEmptyBatch is returned when a batch scan is requested with no files.
var ErrEmptyBatch = errors.New("scan batch contains no files")

// ErrMissingFileName is returned when a file descriptor lacks the required
// identifying field. Input errors are rejected before scanning begins; no
// partial state is created.
var ErrMissingFileName = errors.New("file descriptor has no file name")

// Orchestrator coordinates the scan pipeline for single-file and batch
// requests. It is the only component that talks to the persistence and
// alerting collaborators; per-file scanning itself is pure and runs on a
// bounded worker pool.
type Orchestrator struct {
	scanner  *Scanner
	index    *FingerprintIndex
	repo     Repository
	notifier Notifier
	workers  int
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithRepository sets the persistence collaborator. Without one, results
// stay in memory only.
func WithRepository(repo Repository) OrchestratorOption {
	return func(o *Orchestrator) { o.repo = repo }
}

// WithNotifier sets the alerting collaborator.
func WithNotifier(n Notifier) OrchestratorOption {
	return func(o *Orchestrator) { o.notifier = n }
}

// WithWorkers overrides the worker pool size. Values below one fall back to
// the CPU-derived default.
func WithWorkers(n int) OrchestratorOption {
	return func(o *Orchestrator) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithFingerprintIndex shares a fingerprint index across scans so duplicate
// detection spans the whole organization rather than one batch.
func WithFingerprintIndex(ix *FingerprintIndex) OrchestratorOption {
	return func(o *Orchestrator) { o.index = ix }
}

// NewOrchestrator creates an orchestrator over the given registry. Pattern
// matching is CPU-bound, so the default pool size tracks available
// parallelism.
func NewOrchestrator(registry *Registry, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		scanner: NewScanner(registry),
		index:   NewFingerprintIndex(),
		workers: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Index exposes the fingerprint index for duplicate queries.
func (o *Orchestrator) Index() *FingerprintIndex {
	return o.index
}

// RunSingleFileScan scans one file. The summary's overall score equals the
// file's own risk score.
func (o *Orchestrator) RunSingleFileScan(ctx context.Context, file FileInput) (ScanSummary, error) {
	return o.RunBatchScan(ctx, []FileInput{file}, "")
}

// RunBatchScan runs the full pipeline over a batch of files: scan and score
// each file on the worker pool, fingerprint the results, aggregate by
// folder, then hand the summary to the persistence and alerting
// collaborators. A failure scanning or persisting one file never fails the
// batch; collaborator errors are collected on the summary as a
// partial-success indicator.
func (o *Orchestrator) RunBatchScan(ctx context.Context, files []FileInput, rootPath string) (ScanSummary, error) {
	summary := ScanSummary{
		ScanID: newScanID(),
		State:  ScanPending,
	}

	if len(files) == 0 {
		summary.State = ScanFailed
		LogScanEvent(summary.ScanID, "scan_failed", AuditError, map[string]string{
			"reason": ErrEmptyBatch.Error(),
		})
		return summary, ErrEmptyBatch
	}
	for i, f := range files {
		if f.FileName == "" && f.LogicalPath == "" {
			summary.State = ScanFailed
			return summary, fmt.Errorf("file %d: %w", i, ErrMissingFileName)
		}
	}

	LogScanEvent(summary.ScanID, "scan_started", AuditInfo, map[string]string{
		"file_count": strconv.Itoa(len(files)),
		"root_path":  rootPath,
	})

	// All per-file scans are dispatched below; the scan is RUNNING until
	// every worker has produced its result.
	summary.State = ScanRunning

	results := make([]*FileScanResult, len(files))
	sem := make(chan struct{}, o.workers)
	var wg sync.WaitGroup

	for i := range files {
		if ctx.Err() != nil {
			// Batch timeout: remaining files are marked not-yet-scanned,
			// completed results are kept untouched.
			summary.Unscanned = append(summary.Unscanned, files[i].ID())
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			result := o.scanOne(files[i])
			results[i] = &result
		}(i)
	}
	wg.Wait()

	// Fingerprinting runs after the workers in input order so occurrence
	// counts and link output stay deterministic.
	for i := range results {
		if results[i] == nil {
			continue
		}
		summary.FileResults = append(summary.FileResults, *results[i])
		if link, ok := o.index.Add(results[i].FileID, results[i].Findings); ok {
			summary.FingerprintLinks = append(summary.FingerprintLinks, link)
		}
	}

	summary.FolderAggregates = Aggregate(summary.FileResults, rootPath)
	o.finalize(&summary)
	summary.State = ScanCompleted

	o.signalAlerts(ctx, &summary)
	o.persist(ctx, &summary)

	LogScanEvent(summary.ScanID, "scan_completed", AuditInfo, map[string]string{
		"file_count":      strconv.Itoa(summary.FileCount),
		"total_phi_count": strconv.Itoa(summary.TotalPHICount),
		"overall_score":   strconv.Itoa(summary.OverallRiskScore),
		"overall_level":   string(summary.OverallRiskLevel),
	})
	return summary, nil
}

// scanOne runs the pure Scanner -> Scorer pipeline for a single file.
func (o *Orchestrator) scanOne(file FileInput) FileScanResult {
	findings := o.scanner.Scan(file.Content, file.ID())
	score, level := Score(findings)

	return FileScanResult{
		FileID:      file.ID(),
		LogicalPath: file.ID(),
		RiskScore:   score,
		RiskLevel:   level,
		PHICount:    TotalOccurrences(findings),
		Findings:    findings,
	}
}

// finalize computes the scan-level reduction: rounded mean of per-file
// scores and the maximum-severity level, mirroring the folder rules.
func (o *Orchestrator) finalize(summary *ScanSummary) {
	summary.FileCount = len(summary.FileResults)
	if summary.FileCount == 0 {
		summary.OverallRiskLevel = SeverityLow
		return
	}

	scoreSum := 0
	level := SeverityLow
	for _, r := range summary.FileResults {
		scoreSum += r.RiskScore
		summary.TotalPHICount += r.PHICount
		level = MaxRiskLevel(level, r.RiskLevel)
	}
	summary.OverallRiskScore = int(math.Round(float64(scoreSum) / float64(summary.FileCount)))
	summary.OverallRiskLevel = level
}

// signalAlerts notifies the alerting collaborator once per HIGH or CRITICAL
// file. Delivery is fire-and-forget: a notifier failure is logged and
// recorded, never propagated.
func (o *Orchestrator) signalAlerts(ctx context.Context, summary *ScanSummary) {
	if o.notifier == nil {
		return
	}

	for _, r := range summary.FileResults {
		if r.RiskLevel.Rank() < SeverityHigh.Rank() {
			continue
		}

		alert := Alert{
			Type:          AlertTypeHighFileRisk,
			Severity:      r.RiskLevel,
			Title:         fmt.Sprintf("%s risk file detected", r.RiskLevel),
			Description:   fmt.Sprintf("File %s scored %d with %d PHI occurrences across %d categories", r.FileID, r.RiskScore, r.PHICount, len(r.Findings)),
			RelatedScanID: summary.ScanID,
			RelatedFileID: r.FileID,
		}
		if err := o.notifier.Notify(ctx, alert); err != nil {
			summary.CollaboratorErrors = append(summary.CollaboratorErrors,
				fmt.Sprintf("alert for %s: %v", r.FileID, err))
			LogFileEvent(summary.ScanID, r.FileID, "collaborator_error", AuditWarning, map[string]string{
				"collaborator": "alerting",
				"error":        err.Error(),
			})
		}
	}
}

// persist hands the completed results to the repository with per-file
// isolation: one file's failed write marks that file only and the batch
// continues. Already-computed in-memory results are never discarded.
func (o *Orchestrator) persist(ctx context.Context, summary *ScanSummary) {
	if o.repo == nil {
		return
	}

	record := func(scope string, err error) {
		summary.CollaboratorErrors = append(summary.CollaboratorErrors,
			fmt.Sprintf("%s: %v", scope, err))
		LogScanEvent(summary.ScanID, "collaborator_error", AuditWarning, map[string]string{
			"collaborator": "persistence",
			"scope":        scope,
			"error":        err.Error(),
		})
	}

	if err := o.repo.SaveScan(ctx, *summary); err != nil {
		record("scan", err)
	}
	for _, r := range summary.FileResults {
		if err := o.repo.SaveFileResult(ctx, summary.ScanID, r); err != nil {
			record("file "+r.FileID, err)
		}
	}
	if err := o.repo.SaveFolderAggregates(ctx, summary.ScanID, summary.FolderAggregates); err != nil {
		record("folder aggregates", err)
	}
	if len(summary.FingerprintLinks) > 0 {
		if err := o.repo.SaveFingerprintLinks(ctx, summary.ScanID, summary.FingerprintLinks); err != nil {
			record("fingerprint links", err)
		}
	}
}

func newScanID() string {
	now := time.Now()
	return fmt.Sprintf("scan-%d-%x", now.UnixNano(), now.Nanosecond())
}
