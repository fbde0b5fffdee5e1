package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFolderKey(t *testing.T) {
	cases := []struct {
		path     string
		rootPath string
		want     string
	}{
		{"folder1/a.txt", "", "folder1"},
		{"x/y/z.txt", "", "x/y"},
		{"a.txt", "/data", "/data"},
		{"a.txt", "", "/"},
		{"/rooted.txt", "", "/"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FolderKey(tc.path, tc.rootPath), "FolderKey(%q, %q)", tc.path, tc.rootPath)
	}
}

func TestAggregateSingleFolder(t *testing.T) {
	results := []FileScanResult{
		{FileID: "folder1/a.txt", LogicalPath: "folder1/a.txt", RiskScore: 90, RiskLevel: SeverityCritical, PHICount: 5},
		{FileID: "folder1/b.txt", LogicalPath: "folder1/b.txt", RiskScore: 30, RiskLevel: SeverityMedium, PHICount: 1},
	}

	aggregates := Aggregate(results, "")

	require.Len(t, aggregates, 1)
	agg := aggregates[0]
	assert.Equal(t, "folder1", agg.FolderPath)
	assert.Equal(t, 2, agg.TotalFiles)
	assert.Equal(t, 6, agg.TotalPHICount)
	assert.Equal(t, 60, agg.AvgRiskScore)
	assert.Equal(t, SeverityCritical, agg.MaxRiskLevel)
}

func TestAggregateOrderIndependent(t *testing.T) {
	a := FileScanResult{LogicalPath: "f/a.txt", RiskScore: 10, RiskLevel: SeverityLow, PHICount: 2}
	b := FileScanResult{LogicalPath: "f/b.txt", RiskScore: 80, RiskLevel: SeverityCritical, PHICount: 9}
	c := FileScanResult{LogicalPath: "g/c.txt", RiskScore: 40, RiskLevel: SeverityMedium, PHICount: 3}

	forward := Aggregate([]FileScanResult{a, b, c}, "")
	reversed := Aggregate([]FileScanResult{c, b, a}, "")

	assert.Equal(t, forward, reversed)
}

func TestAggregatePHICountInvariant(t *testing.T) {
	results := []FileScanResult{
		{LogicalPath: "f/a.txt", RiskScore: 10, RiskLevel: SeverityLow, PHICount: 2},
		{LogicalPath: "f/b.txt", RiskScore: 80, RiskLevel: SeverityCritical, PHICount: 9},
		{LogicalPath: "g/c.txt", RiskScore: 40, RiskLevel: SeverityMedium, PHICount: 3},
		{LogicalPath: "loose.txt", RiskScore: 0, RiskLevel: SeverityLow, PHICount: 0},
	}

	aggregates := Aggregate(results, "/root")

	fileTotal := 0
	for _, r := range results {
		fileTotal += r.PHICount
	}
	folderTotal := 0
	for _, agg := range aggregates {
		folderTotal += agg.TotalPHICount
	}
	assert.Equal(t, fileTotal, folderTotal)
}

func TestAggregateRootFallback(t *testing.T) {
	results := []FileScanResult{
		{LogicalPath: "bare.txt", RiskScore: 50, RiskLevel: SeverityMedium, PHICount: 1},
	}

	withRoot := Aggregate(results, "/data")
	require.Len(t, withRoot, 1)
	assert.Equal(t, "/data", withRoot[0].FolderPath)

	withoutRoot := Aggregate(results, "")
	require.Len(t, withoutRoot, 1)
	assert.Equal(t, "/", withoutRoot[0].FolderPath)
}

func TestAggregateRoundsMean(t *testing.T) {
	results := []FileScanResult{
		{LogicalPath: "f/a.txt", RiskScore: 33, RiskLevel: SeverityMedium},
		{LogicalPath: "f/b.txt", RiskScore: 34, RiskLevel: SeverityMedium},
		{LogicalPath: "f/c.txt", RiskScore: 34, RiskLevel: SeverityMedium},
	}

	aggregates := Aggregate(results, "")

	require.Len(t, aggregates, 1)
	// mean 33.666... rounds to 34
	assert.Equal(t, 34, aggregates[0].AvgRiskScore)
}
