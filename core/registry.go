package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// DetectorPattern is one entry in the pattern catalog: a category, its
// compiled matcher, a default severity and a human description. Patterns are
// immutable once the registry is built.
type DetectorPattern struct {
	Category    Category
	Regex       *regexp.Regexp
	Severity    Severity
	Description string
}

// Registry is the static, ordered catalog of detectable PHI categories.
// Order is evaluation order and is stable: overlays append, never reorder,
// so callers may rely on first-match-wins semantics for overlapping spans.
type Registry struct {
	patterns []DetectorPattern
}

// builtinPatterns returns the default detector catalog. Severities reflect
// HIPAA exposure: direct identifiers (SSN, credit card, biometrics) are
// CRITICAL, medical identifiers HIGH, contact details MEDIUM.
func builtinPatterns() []DetectorPattern {
	return []DetectorPattern{
		{
			Category:    CategorySSN,
			Regex:       regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
			Severity:    SeverityCritical,
			Description: "US Social Security number",
		},
		{
			Category:    CategoryMRN,
			Regex:       regexp.MustCompile(`(?i)\b(?:mrn|medical record(?: number)?|patient id)[:#\s]*\d{6,10}\b`),
			Severity:    SeverityHigh,
			Description: "Medical record number",
		},
		{
			Category:    CategoryDOB,
			Regex:       regexp.MustCompile(`(?i)\b(?:dob|date of birth|born)[:\s]*\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`),
			Severity:    SeverityHigh,
			Description: "Date of birth",
		},
		{
			Category:    CategoryPhone,
			Regex:       regexp.MustCompile(`\(?\d{3}\)?[-.\s]\d{3}[-.\s]?\d{4}\b`),
			Severity:    SeverityMedium,
			Description: "US phone number",
		},
		{
			Category:    CategoryEmail,
			Regex:       regexp.MustCompile(`[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+`),
			Severity:    SeverityMedium,
			Description: "Email address",
		},
		{
			Category:    CategoryAddress,
			Regex:       regexp.MustCompile(`(?i)\b\d{1,5}\s+[a-z]+\s+(?:street|st|avenue|ave|road|rd|boulevard|blvd|lane|ln|drive|dr|court|ct|way)\b`),
			Severity:    SeverityMedium,
			Description: "US street address",
		},
		{
			Category:    CategoryName,
			Regex:       regexp.MustCompile(`(?:Patient Name|Patient|Mr\.|Mrs\.|Ms\.|Dr\.)[:\s]+[A-Z][a-z]+(?: [A-Z][a-z]+)?`),
			Severity:    SeverityMedium,
			Description: "Labeled personal name",
		},
		{
			Category:    CategoryDiagnosis,
			Regex:       regexp.MustCompile(`(?i)\b(?:diagnosis|diagnosed with)\b[:\s]*[a-z0-9][a-z0-9 ,.-]{2,60}|\b[A-TV-Z]\d{2}\.\d{1,2}\b`),
			Severity:    SeverityHigh,
			Description: "Diagnosis statement or ICD-10 code",
		},
		{
			Category:    CategoryMedication,
			Regex:       regexp.MustCompile(`(?i)\b(?:medication|prescribed|prescription)\b[:\s]*[a-z][a-z0-9 ,.-]{2,60}|\b\d{1,4}\s?mg\b`),
			Severity:    SeverityMedium,
			Description: "Medication statement or dosage",
		},
		{
			Category:    CategoryInsuranceID,
			Regex:       regexp.MustCompile(`(?i)\b(?:member id|policy (?:number|no)|insurance id)[:#\s]*[A-Z0-9][A-Z0-9-]{5,19}\b`),
			Severity:    SeverityHigh,
			Description: "Insurance member or policy identifier",
		},
		{
			Category:    CategoryCreditCard,
			Regex:       regexp.MustCompile(`\b(?:\d{4}[- ]){3}\d{4}\b|\b\d{15,16}\b`),
			Severity:    SeverityCritical,
			Description: "Credit card number",
		},
		{
			Category:    CategoryDriverLicense,
			Regex:       regexp.MustCompile(`(?i)\b(?:driver'?s? license|license number)[:#\s]*[A-Z0-9]{5,13}\b`),
			Severity:    SeverityHigh,
			Description: "Driver's license number",
		},
		{
			Category:    CategoryPassport,
			Regex:       regexp.MustCompile(`(?i)\bpassport(?: number| no)?[:#\s]*[A-Z0-9]{6,9}\b`),
			Severity:    SeverityHigh,
			Description: "Passport number",
		},
		{
			Category:    CategoryIPAddress,
			Regex:       regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`),
			Severity:    SeverityLow,
			Description: "IP address",
		},
		{
			Category:    CategoryBiometric,
			Regex:       regexp.MustCompile(`(?i)\b(?:fingerprint|retina scan|iris scan|voiceprint|biometric)\b`),
			Severity:    SeverityCritical,
			Description: "Biometric identifier reference",
		},
	}
}

// NewRegistry returns the built-in detector catalog.
func NewRegistry() *Registry {
	return &Registry{patterns: builtinPatterns()}
}

// Patterns returns the catalog in evaluation order. The returned slice is a
// copy; the registry itself never changes after construction.
func (r *Registry) Patterns() []DetectorPattern {
	out := make([]DetectorPattern, len(r.patterns))
	copy(out, r.patterns)
	return out
}

// Len returns the number of registered patterns.
func (r *Registry) Len() int {
	return len(r.patterns)
}

// WithOverlay returns a new registry with the given patterns appended after
// the existing ones. The receiver is left untouched.
func (r *Registry) WithOverlay(patterns ...DetectorPattern) *Registry {
	merged := make([]DetectorPattern, 0, len(r.patterns)+len(patterns))
	merged = append(merged, r.patterns...)
	merged = append(merged, patterns...)
	return &Registry{patterns: merged}
}

// OverlayMetadata describes a pattern overlay file.
type OverlayMetadata struct {
	Version     string    `yaml:"version"`
	CreatedAt   time.Time `yaml:"created_at,omitempty"`
	UpdatedAt   time.Time `yaml:"updated_at,omitempty"`
	Description string    `yaml:"description,omitempty"`
	Author      string    `yaml:"author,omitempty"`

	// Hash of the overlay file content for integrity verification
	Hash string `yaml:"hash,omitempty"`
}

// OverlayEntry is one tenant-supplied pattern in YAML form.
type OverlayEntry struct {
	Category    string `yaml:"category"`
	Pattern     string `yaml:"pattern"`
	Severity    string `yaml:"severity"`
	Description string `yaml:"description,omitempty"`
}

// Overlay is a set of tenant-specific detector patterns loaded from YAML.
type Overlay struct {
	Metadata OverlayMetadata `yaml:"metadata"`
	Patterns []OverlayEntry  `yaml:"patterns"`
}

// LoadPatternOverlay reads a YAML overlay file and compiles it into detector
// patterns ready to append to a registry.
func LoadPatternOverlay(path string) ([]DetectorPattern, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pattern overlay: %w", err)
	}

	var overlay Overlay
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("failed to parse pattern overlay: %w", err)
	}

	overlay.Metadata.Hash = overlayHash(data)

	patterns, err := compileOverlay(overlay)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern overlay %s: %w", path, err)
	}
	return patterns, nil
}

func compileOverlay(overlay Overlay) ([]DetectorPattern, error) {
	if len(overlay.Patterns) == 0 {
		return nil, fmt.Errorf("overlay contains no patterns")
	}

	out := make([]DetectorPattern, 0, len(overlay.Patterns))
	for i, entry := range overlay.Patterns {
		category, err := ParseCategory(entry.Category)
		if err != nil {
			return nil, fmt.Errorf("pattern %d: %w", i+1, err)
		}

		if entry.Pattern == "" {
			return nil, fmt.Errorf("pattern %d has no matcher", i+1)
		}
		re, err := regexp.Compile(entry.Pattern)
		if err != nil {
			return nil, fmt.Errorf("pattern %d: invalid regex: %w", i+1, err)
		}

		severity, err := ParseSeverity(entry.Severity)
		if err != nil {
			return nil, fmt.Errorf("pattern %d: %w", i+1, err)
		}

		description := entry.Description
		if description == "" {
			description = fmt.Sprintf("Custom pattern %d (%s)", i+1, category)
		}

		out = append(out, DetectorPattern{
			Category:    category,
			Regex:       re,
			Severity:    severity,
			Description: description,
		})
	}
	return out, nil
}

// overlayHash generates a hash of the overlay content for integrity checking.
func overlayHash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
