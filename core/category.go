package core

import (
	"fmt"
	"strings"
)

// Category identifies a detectable class of Protected Health Information.
// The enumeration is closed: overlay patterns may reuse any of these values
// but cannot introduce new ones.
type Category string

const (
	CategorySSN           Category = "SSN"
	CategoryMRN           Category = "MRN"
	CategoryDOB           Category = "DOB"
	CategoryPhone         Category = "PHONE"
	CategoryEmail         Category = "EMAIL"
	CategoryAddress       Category = "ADDRESS"
	CategoryName          Category = "NAME"
	CategoryDiagnosis     Category = "DIAGNOSIS"
	CategoryMedication    Category = "MEDICATION"
	CategoryInsuranceID   Category = "INSURANCE_ID"
	CategoryCreditCard    Category = "CREDIT_CARD"
	CategoryDriverLicense Category = "DRIVER_LICENSE"
	CategoryPassport      Category = "PASSPORT"
	CategoryIPAddress     Category = "IP_ADDRESS"
	CategoryBiometric     Category = "BIOMETRIC"
	CategoryOther         Category = "OTHER"
)

// AllCategories lists every known category in declaration order.
var AllCategories = []Category{
	CategorySSN, CategoryMRN, CategoryDOB, CategoryPhone, CategoryEmail,
	CategoryAddress, CategoryName, CategoryDiagnosis, CategoryMedication,
	CategoryInsuranceID, CategoryCreditCard, CategoryDriverLicense,
	CategoryPassport, CategoryIPAddress, CategoryBiometric, CategoryOther,
}

// ParseCategory parses a category string case-insensitively.
func ParseCategory(s string) (Category, error) {
	upper := Category(strings.ToUpper(strings.TrimSpace(s)))
	for _, c := range AllCategories {
		if c == upper {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown PHI category: %s", s)
}

// Severity is the default seriousness assigned to a detector pattern.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Rank returns an integer rank for comparison (Low=1, Critical=4).
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 0
	}
}

// Score returns the numeric weight used by the risk scorer.
func (s Severity) Score() int {
	switch s {
	case SeverityLow:
		return 25
	case SeverityMedium:
		return 50
	case SeverityHigh:
		return 75
	case SeverityCritical:
		return 100
	default:
		return 0
	}
}

// ParseSeverity parses a severity string case-insensitively.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LOW":
		return SeverityLow, nil
	case "MEDIUM":
		return SeverityMedium, nil
	case "HIGH":
		return SeverityHigh, nil
	case "CRITICAL":
		return SeverityCritical, nil
	default:
		return "", fmt.Errorf("invalid severity: %s", s)
	}
}

// RiskLevel is the discrete exposure bucket derived from a numeric risk
// score. It reuses the severity labels and ordering.
type RiskLevel = Severity

// Risk level thresholds applied uniformly wherever a numeric score
// collapses to a level (file, folder-via-max, scan-level).
const (
	thresholdCritical = 80
	thresholdHigh     = 60
	thresholdMedium   = 30
)

// RiskLevelForScore maps a 0..100 risk score to its discrete level.
func RiskLevelForScore(score int) RiskLevel {
	switch {
	case score >= thresholdCritical:
		return SeverityCritical
	case score >= thresholdHigh:
		return SeverityHigh
	case score >= thresholdMedium:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// MaxRiskLevel returns the higher-severity of two levels.
func MaxRiskLevel(a, b RiskLevel) RiskLevel {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}
