// Package alert provides alerting collaborators for the scan pipeline.
// Delivery is fire-and-forget from the pipeline's perspective: a failed
// notification surfaces as a partial-success indicator on the scan summary
// and never fails the scan.
package alert

import (
	"context"

	"github.com/grailhealth/phiscan-go/core"
)

// Func adapts a plain function to the core.Notifier interface.
type Func func(ctx context.Context, a core.Alert) error

// Notify calls the wrapped function.
func (f Func) Notify(ctx context.Context, a core.Alert) error {
	return f(ctx, a)
}

// AuditNotifier records alerts on the scan audit trail. It is the default
// collaborator when no external alerting system is wired in.
type AuditNotifier struct{}

var _ core.Notifier = AuditNotifier{}

// Notify writes the alert as a file_alert audit event.
func (AuditNotifier) Notify(_ context.Context, a core.Alert) error {
	severity := core.AuditWarning
	if a.Severity == core.SeverityCritical {
		severity = core.AuditCritical
	}

	return core.LogFileEvent(a.RelatedScanID, a.RelatedFileID, "file_alert", severity, map[string]string{
		"alert_type":  a.Type,
		"level":       string(a.Severity),
		"title":       a.Title,
		"description": a.Description,
	})
}
