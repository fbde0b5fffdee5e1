package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grailhealth/phiscan-go/core"
)

func TestMemoryScanRoundTrip(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	summary := core.ScanSummary{
		ScanID:           "scan-1",
		State:            core.ScanCompleted,
		FileCount:        1,
		OverallRiskScore: 100,
		OverallRiskLevel: core.SeverityCritical,
	}
	require.NoError(t, m.SaveScan(ctx, summary))

	got, err := m.GetScan("scan-1")
	require.NoError(t, err)
	assert.Equal(t, summary, got)

	_, err = m.GetScan("scan-2")
	assert.Error(t, err)
}

func TestMemoryFileResults(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	a := core.FileScanResult{FileID: "f/a.txt", RiskScore: 90, RiskLevel: core.SeverityCritical}
	b := core.FileScanResult{FileID: "f/b.txt", RiskScore: 10, RiskLevel: core.SeverityLow}
	require.NoError(t, m.SaveFileResult(ctx, "scan-1", a))
	require.NoError(t, m.SaveFileResult(ctx, "scan-1", b))
	require.NoError(t, m.SaveFileResult(ctx, "scan-2", a))

	assert.Equal(t, []core.FileScanResult{a, b}, m.FileResults("scan-1"))
	assert.Len(t, m.FileResults("scan-2"), 1)
	assert.Empty(t, m.FileResults("scan-3"))
}

func TestMemoryFolderAggregates(t *testing.T) {
	m := NewMemory()

	aggs := []core.FolderAggregate{
		{FolderPath: "f", TotalFiles: 2, TotalPHICount: 6, AvgRiskScore: 60, MaxRiskLevel: core.SeverityCritical},
	}
	require.NoError(t, m.SaveFolderAggregates(context.Background(), "scan-1", aggs))

	assert.Equal(t, aggs, m.FolderAggregates("scan-1"))
}

func TestMemoryFingerprintLinks(t *testing.T) {
	m := NewMemory()

	links := []core.FingerprintLink{
		{FileID: "f/a.txt", FingerprintHash: "h1", Similarity: 1.0},
		{FileID: "f/b.txt", FingerprintHash: "h1", Similarity: 0.9},
	}
	require.NoError(t, m.SaveFingerprintLinks(context.Background(), "scan-1", links))

	assert.Equal(t, links[:1], m.LinksForFile("f/a.txt"))
	assert.Equal(t, links[1:], m.LinksForFile("f/b.txt"))
	assert.Empty(t, m.LinksForFile("f/c.txt"))
}
