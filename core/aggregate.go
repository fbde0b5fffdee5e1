package core

import (
	"math"
	"sort"
	"strings"
)

// FolderKey derives the logical folder a file belongs to: the parent of its
// logical path, or the scan root for bare filenames. Logical paths use
// forward slashes regardless of the source platform.
func FolderKey(logicalPath, rootPath string) string {
	idx := strings.LastIndex(logicalPath, "/")
	if idx <= 0 {
		if rootPath != "" {
			return rootPath
		}
		return "/"
	}
	return logicalPath[:idx]
}

// Aggregate groups per-file results by logical parent folder and produces
// folder-level rollups: file and PHI totals, the rounded mean risk score
// and the highest-severity risk level observed in each folder. Input order
// does not affect the resulting set; output is sorted by folder path.
func Aggregate(fileResults []FileScanResult, rootPath string) []FolderAggregate {
	type accumulator struct {
		files    int
		phiCount int
		scoreSum int
		maxLevel RiskLevel
	}

	folders := make(map[string]*accumulator)
	for _, result := range fileResults {
		key := FolderKey(result.LogicalPath, rootPath)
		acc, ok := folders[key]
		if !ok {
			acc = &accumulator{maxLevel: SeverityLow}
			folders[key] = acc
		}
		acc.files++
		acc.phiCount += result.PHICount
		acc.scoreSum += result.RiskScore
		acc.maxLevel = MaxRiskLevel(acc.maxLevel, result.RiskLevel)
	}

	out := make([]FolderAggregate, 0, len(folders))
	for path, acc := range folders {
		out = append(out, FolderAggregate{
			FolderPath:    path,
			TotalFiles:    acc.files,
			TotalPHICount: acc.phiCount,
			AvgRiskScore:  int(math.Round(float64(acc.scoreSum) / float64(acc.files))),
			MaxRiskLevel:  acc.maxLevel,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].FolderPath < out[j].FolderPath
	})
	return out
}
