package alert

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grailhealth/phiscan-go/core"
)

func TestFuncAdapter(t *testing.T) {
	var received []core.Alert
	notifier := Func(func(_ context.Context, a core.Alert) error {
		received = append(received, a)
		return nil
	})

	alert := core.Alert{
		Type:          core.AlertTypeHighFileRisk,
		Severity:      core.SeverityHigh,
		RelatedScanID: "scan-1",
		RelatedFileID: "f/a.txt",
	}
	require.NoError(t, notifier.Notify(context.Background(), alert))
	assert.Equal(t, []core.Alert{alert}, received)
}

func TestFuncAdapterPropagatesError(t *testing.T) {
	sentinel := errors.New("pager down")
	notifier := Func(func(context.Context, core.Alert) error { return sentinel })

	assert.ErrorIs(t, notifier.Notify(context.Background(), core.Alert{}), sentinel)
}

func TestAuditNotifier(t *testing.T) {
	err := AuditNotifier{}.Notify(context.Background(), core.Alert{
		Type:          core.AlertTypeHighFileRisk,
		Severity:      core.SeverityCritical,
		Title:         "CRITICAL risk file detected",
		RelatedScanID: "scan-1",
		RelatedFileID: "f/a.txt",
	})
	assert.NoError(t, err)
}
