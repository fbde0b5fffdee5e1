package core

import "math"

// countSaturation is the occurrence count at which a single finding's
// contribution stops growing.
const countSaturation = 10

// Score converts a file's findings into a bounded risk score and its
// discrete risk level. It is deterministic and pure: empty findings always
// yield (0, LOW), and the score never leaves [0,100].
//
// Each finding contributes one unit of weight regardless of how often its
// pattern matched; occurrence volume enters through a per-finding count
// factor that saturates at ten matches and a small scan-wide count bonus
// capped at twenty points.
func Score(findings []Finding) (int, RiskLevel) {
	if len(findings) == 0 {
		return 0, SeverityLow
	}

	var weightedSum float64
	totalPHICount := 0
	for _, f := range findings {
		severityWeight := float64(f.Severity.Score()) / 100
		countWeight := math.Min(float64(f.Occurrences)/countSaturation, 1)
		weightedSum += severityWeight * (1 + countWeight)
		totalPHICount += f.Occurrences
	}

	baseScore := weightedSum / float64(len(findings)) * 100
	countBonus := math.Min(float64(totalPHICount)*2, 20)

	score := int(math.Round(baseScore + countBonus))
	if score > 100 {
		score = 100
	}
	return score, RiskLevelForScore(score)
}

// TotalOccurrences sums occurrences across findings, the file's phiCount.
func TotalOccurrences(findings []Finding) int {
	total := 0
	for _, f := range findings {
		total += f.Occurrences
	}
	return total
}
