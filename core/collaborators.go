package core

import "context"

// AlertTypeHighFileRisk is raised once per file whose risk level reaches
// HIGH or CRITICAL.
const AlertTypeHighFileRisk = "HIGH_FILE_RISK"

// Alert is the payload handed to the alerting collaborator. Delivery is
// fire-and-forget from the pipeline's perspective.
type Alert struct {
	Type          string    `json:"alert_type"`
	Severity      RiskLevel `json:"severity"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	RelatedScanID string    `json:"related_scan_id"`
	RelatedFileID string    `json:"related_file_id"`
}

// Notifier delivers alerts to an external collaborator. A Notify failure is
// logged and surfaced as a partial-success indicator, never as a scan
// failure.
type Notifier interface {
	Notify(ctx context.Context, a Alert) error
}

// Repository is the narrow persistence boundary for scan output. The
// pipeline depends only on this interface, never on a datastore client, so
// any storage engine or an in-memory fake can be substituted.
type Repository interface {
	SaveScan(ctx context.Context, summary ScanSummary) error
	SaveFileResult(ctx context.Context, scanID string, result FileScanResult) error
	SaveFolderAggregates(ctx context.Context, scanID string, aggregates []FolderAggregate) error
	SaveFingerprintLinks(ctx context.Context, scanID string, links []FingerprintLink) error
}
