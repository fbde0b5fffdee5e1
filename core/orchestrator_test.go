package core

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu     sync.Mutex
	alerts []Alert
	err    error
}

func (n *recordingNotifier) Notify(_ context.Context, a Alert) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.alerts = append(n.alerts, a)
	return nil
}

type recordingRepo struct {
	mu          sync.Mutex
	scans       []ScanSummary
	fileResults []FileScanResult
	aggregates  []FolderAggregate
	links       []FingerprintLink
	failFiles   bool
}

func (r *recordingRepo) SaveScan(_ context.Context, s ScanSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scans = append(r.scans, s)
	return nil
}

func (r *recordingRepo) SaveFileResult(_ context.Context, _ string, result FileScanResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failFiles {
		return errors.New("datastore unavailable")
	}
	r.fileResults = append(r.fileResults, result)
	return nil
}

func (r *recordingRepo) SaveFolderAggregates(_ context.Context, _ string, aggs []FolderAggregate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aggregates = append(r.aggregates, aggs...)
	return nil
}

func (r *recordingRepo) SaveFingerprintLinks(_ context.Context, _ string, links []FingerprintLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.links = append(r.links, links...)
	return nil
}

func strptr(s string) *string { return &s }

func TestRunSingleFileScan(t *testing.T) {
	orch := NewOrchestrator(NewRegistry())

	summary, err := orch.RunSingleFileScan(context.Background(), FileInput{
		FileName: "record.txt",
		Content:  strptr("SSN: 123-45-6789"),
	})

	require.NoError(t, err)
	assert.Equal(t, ScanCompleted, summary.State)
	require.Len(t, summary.FileResults, 1)

	file := summary.FileResults[0]
	assert.Equal(t, 100, file.RiskScore)
	assert.Equal(t, SeverityCritical, file.RiskLevel)
	assert.Equal(t, 1, file.PHICount)
	// A single-file scan's overall score is the file's own score.
	assert.Equal(t, file.RiskScore, summary.OverallRiskScore)
	assert.Equal(t, file.RiskLevel, summary.OverallRiskLevel)
}

func TestRunBatchScan(t *testing.T) {
	notifier := &recordingNotifier{}
	repo := &recordingRepo{}
	orch := NewOrchestrator(NewRegistry(), WithRepository(repo), WithNotifier(notifier), WithWorkers(2))

	files := []FileInput{
		{FileName: "a.txt", LogicalPath: "clinic/a.txt", Content: strptr("SSN: 123-45-6789")},
		{FileName: "b.txt", LogicalPath: "clinic/b.txt", Content: strptr("nothing sensitive here")},
	}

	summary, err := orch.RunBatchScan(context.Background(), files, "clinic")

	require.NoError(t, err)
	assert.Equal(t, ScanCompleted, summary.State)
	assert.Equal(t, 2, summary.FileCount)
	require.Len(t, summary.FileResults, 2)

	// Results keep input order regardless of worker completion order.
	assert.Equal(t, "clinic/a.txt", summary.FileResults[0].FileID)
	assert.Equal(t, "clinic/b.txt", summary.FileResults[1].FileID)

	// Overall is the rounded mean of per-file scores, level the maximum.
	assert.Equal(t, 50, summary.OverallRiskScore)
	assert.Equal(t, SeverityCritical, summary.OverallRiskLevel)

	require.Len(t, summary.FolderAggregates, 1)
	assert.Equal(t, "clinic", summary.FolderAggregates[0].FolderPath)
	assert.Equal(t, 2, summary.FolderAggregates[0].TotalFiles)

	// One alert: only the CRITICAL file crosses the HIGH threshold.
	require.Len(t, notifier.alerts, 1)
	alert := notifier.alerts[0]
	assert.Equal(t, AlertTypeHighFileRisk, alert.Type)
	assert.Equal(t, SeverityCritical, alert.Severity)
	assert.Equal(t, summary.ScanID, alert.RelatedScanID)
	assert.Equal(t, "clinic/a.txt", alert.RelatedFileID)

	assert.Len(t, repo.scans, 1)
	assert.Len(t, repo.fileResults, 2)
	assert.Len(t, repo.aggregates, 1)
	assert.Empty(t, summary.CollaboratorErrors)
}

func TestRunBatchScanEmptyBatch(t *testing.T) {
	orch := NewOrchestrator(NewRegistry())

	summary, err := orch.RunBatchScan(context.Background(), nil, "")

	assert.ErrorIs(t, err, ErrEmptyBatch)
	assert.Equal(t, ScanFailed, summary.State)
}

func TestRunBatchScanMissingFileName(t *testing.T) {
	orch := NewOrchestrator(NewRegistry())

	_, err := orch.RunBatchScan(context.Background(), []FileInput{{}}, "")

	assert.ErrorIs(t, err, ErrMissingFileName)
}

func TestRunBatchScanPersistenceFailureIsIsolated(t *testing.T) {
	repo := &recordingRepo{failFiles: true}
	orch := NewOrchestrator(NewRegistry(), WithRepository(repo))

	summary, err := orch.RunBatchScan(context.Background(), []FileInput{
		{FileName: "a.txt", Content: strptr("SSN: 123-45-6789")},
		{FileName: "b.txt", Content: strptr("clean")},
	}, "")

	// A downstream write failure marks the summary as partial success; the
	// in-memory results themselves are never discarded.
	require.NoError(t, err)
	assert.Equal(t, ScanCompleted, summary.State)
	assert.Len(t, summary.FileResults, 2)
	assert.Len(t, summary.CollaboratorErrors, 2)
}

func TestRunBatchScanNotifierFailureIsIsolated(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("pager down")}
	orch := NewOrchestrator(NewRegistry(), WithNotifier(notifier))

	summary, err := orch.RunBatchScan(context.Background(), []FileInput{
		{FileName: "a.txt", Content: strptr("SSN: 123-45-6789")},
	}, "")

	require.NoError(t, err)
	assert.Equal(t, ScanCompleted, summary.State)
	require.Len(t, summary.CollaboratorErrors, 1)
	assert.Contains(t, summary.CollaboratorErrors[0], "pager down")
}

func TestRunBatchScanExpiredContext(t *testing.T) {
	orch := NewOrchestrator(NewRegistry())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := orch.RunBatchScan(ctx, []FileInput{
		{FileName: "a.txt"},
		{FileName: "b.txt"},
	}, "")

	require.NoError(t, err)
	assert.Empty(t, summary.FileResults)
	assert.Equal(t, []string{"a.txt", "b.txt"}, summary.Unscanned)
}

func TestRunBatchScanMetadataOnlyFiles(t *testing.T) {
	orch := NewOrchestrator(NewRegistry())

	summary, err := orch.RunBatchScan(context.Background(), []FileInput{
		{FileName: "patient_roster.csv"},
		{FileName: "notes.txt"},
	}, "")

	require.NoError(t, err)
	require.Len(t, summary.FileResults, 2)
	assert.Positive(t, summary.FileResults[0].RiskScore, "clinical name should synthesize PHI-dense text")
	assert.Zero(t, summary.FileResults[1].RiskScore)
	assert.Equal(t, SeverityLow, summary.FileResults[1].RiskLevel)
}

func TestOrchestratorDuplicateDetection(t *testing.T) {
	orch := NewOrchestrator(NewRegistry())

	_, err := orch.RunBatchScan(context.Background(), []FileInput{
		{FileName: "a.txt", LogicalPath: "v1/a.txt", Content: strptr("SSN: 123-45-6789 DOB: 04/12/1968")},
		{FileName: "b.txt", LogicalPath: "v2/b.txt", Content: strptr("SSN: 987-65-4321 DOB: 01/01/1990")},
		{FileName: "c.txt", LogicalPath: "v3/c.txt", Content: strptr("just an email: a@b.example")},
	}, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"v2/b.txt"}, orch.Index().DuplicatesOf("v1/a.txt"))
	assert.Equal(t, []string{"v1/a.txt"}, orch.Index().DuplicatesOf("v2/b.txt"))
	assert.Empty(t, orch.Index().DuplicatesOf("v3/c.txt"))
}

func TestRunBatchScanDeterministic(t *testing.T) {
	files := []FileInput{
		{FileName: "a.txt", LogicalPath: "f/a.txt", Content: strptr("SSN: 123-45-6789")},
		{FileName: "b.txt", LogicalPath: "f/b.txt"},
	}

	first, err := NewOrchestrator(NewRegistry()).RunBatchScan(context.Background(), files, "f")
	require.NoError(t, err)
	second, err := NewOrchestrator(NewRegistry()).RunBatchScan(context.Background(), files, "f")
	require.NoError(t, err)

	assert.Equal(t, first.FileResults, second.FileResults)
	assert.Equal(t, first.FolderAggregates, second.FolderAggregates)
	assert.Equal(t, first.OverallRiskScore, second.OverallRiskScore)
}
