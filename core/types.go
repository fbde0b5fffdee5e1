package core

// Finding is one detector's result for one file. It is created when a
// pattern matches at least once and is never mutated afterwards.
type Finding struct {
	// Category of PHI that matched
	Category Category `json:"category"`

	// Default severity carried over from the pattern
	Severity Severity `json:"severity"`

	// Number of matches in the scanned text, always >= 1
	Occurrences int `json:"occurrences"`

	// Masked form of the first matched value; the raw value is never
	// exposed in a result
	MaskedSample string `json:"masked_sample"`

	// 1-based line of the first match, 0 when no offset was resolvable
	ApproxLine int `json:"approx_line,omitempty"`

	// Detector confidence in [0,1]
	Confidence float64 `json:"confidence"`
}

// FileInput describes one file handed to the pipeline. Content is optional:
// when nil the scanner synthesizes deterministic text from the file name so
// metadata-only scans still produce a reproducible result.
type FileInput struct {
	FileName    string  `json:"file_name"`
	LogicalPath string  `json:"logical_path,omitempty"`
	SizeBytes   int64   `json:"size_bytes,omitempty"`
	MimeType    string  `json:"mime_type,omitempty"`
	Content     *string `json:"content,omitempty"`
}

// ID returns the identifier used for this file throughout a scan: the
// logical path when present, otherwise the bare file name.
func (f FileInput) ID() string {
	if f.LogicalPath != "" {
		return f.LogicalPath
	}
	return f.FileName
}

// FileScanResult is the immutable per-file output of the scan pipeline.
type FileScanResult struct {
	FileID      string    `json:"file_id"`
	LogicalPath string    `json:"logical_path"`
	RiskScore   int       `json:"risk_score"`
	RiskLevel   RiskLevel `json:"risk_level"`
	PHICount    int       `json:"phi_count"`
	Findings    []Finding `json:"findings"`
}

// FolderAggregate is the rollup of all files sharing a logical parent path
// within one scan batch. It is derived data, recomputed per batch.
type FolderAggregate struct {
	FolderPath    string    `json:"folder_path"`
	TotalFiles    int       `json:"total_files"`
	TotalPHICount int       `json:"total_phi_count"`
	AvgRiskScore  int       `json:"avg_risk_score"`
	MaxRiskLevel  RiskLevel `json:"max_risk_level"`
}

// ScanState tracks the lifecycle of one orchestrator invocation.
type ScanState string

const (
	ScanPending   ScanState = "pending"
	ScanRunning   ScanState = "running"
	ScanCompleted ScanState = "completed"
	ScanFailed    ScanState = "failed"
)

// ScanSummary is the terminal output of one orchestrator invocation.
type ScanSummary struct {
	ScanID           string            `json:"scan_id"`
	State            ScanState         `json:"state"`
	FileCount        int               `json:"file_count"`
	TotalPHICount    int               `json:"total_phi_count"`
	OverallRiskScore int               `json:"overall_risk_score"`
	OverallRiskLevel RiskLevel         `json:"overall_risk_level"`
	FileResults      []FileScanResult  `json:"file_results"`
	FolderAggregates []FolderAggregate `json:"folder_aggregates"`
	FingerprintLinks []FingerprintLink `json:"fingerprint_links,omitempty"`

	// Unscanned lists files that were still pending when the batch context
	// expired. Completed results are never discarded.
	Unscanned []string `json:"unscanned,omitempty"`

	// CollaboratorErrors records persistence or alerting failures. They
	// indicate partial success and never abort the scan itself.
	CollaboratorErrors []string `json:"collaborator_errors,omitempty"`
}
