// Package store provides persistence backends for scan output behind the
// core.Repository interface.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/grailhealth/phiscan-go/core"
)

// Memory is an in-memory repository. It backs the CLI and tests, and serves
// as the reference implementation for the read-back contract a real
// datastore adapter must honor.
type Memory struct {
	mu         sync.RWMutex
	scans      map[string]core.ScanSummary
	fileByScan map[string][]core.FileScanResult
	aggsByScan map[string][]core.FolderAggregate
	linksByFil map[string][]core.FingerprintLink
}

// NewMemory creates an empty in-memory repository.
func NewMemory() *Memory {
	return &Memory{
		scans:      make(map[string]core.ScanSummary),
		fileByScan: make(map[string][]core.FileScanResult),
		aggsByScan: make(map[string][]core.FolderAggregate),
		linksByFil: make(map[string][]core.FingerprintLink),
	}
}

var _ core.Repository = (*Memory)(nil)

// SaveScan stores a scan summary keyed by its scan identifier.
func (m *Memory) SaveScan(_ context.Context, summary core.ScanSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scans[summary.ScanID] = summary
	return nil
}

// SaveFileResult appends a per-file result under its scan.
func (m *Memory) SaveFileResult(_ context.Context, scanID string, result core.FileScanResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fileByScan[scanID] = append(m.fileByScan[scanID], result)
	return nil
}

// SaveFolderAggregates stores a scan's folder rollups.
func (m *Memory) SaveFolderAggregates(_ context.Context, scanID string, aggregates []core.FolderAggregate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.aggsByScan[scanID] = append([]core.FolderAggregate(nil), aggregates...)
	return nil
}

// SaveFingerprintLinks stores a scan's file-to-fingerprint links, indexed
// by file for duplicate lookups.
func (m *Memory) SaveFingerprintLinks(_ context.Context, scanID string, links []core.FingerprintLink) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, link := range links {
		m.linksByFil[link.FileID] = append(m.linksByFil[link.FileID], link)
	}
	return nil
}

// GetScan reads back a stored scan summary.
func (m *Memory) GetScan(scanID string) (core.ScanSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	summary, ok := m.scans[scanID]
	if !ok {
		return core.ScanSummary{}, fmt.Errorf("scan not found: %s", scanID)
	}
	return summary, nil
}

// FileResults reads back the per-file results stored for a scan.
func (m *Memory) FileResults(scanID string) []core.FileScanResult {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]core.FileScanResult(nil), m.fileByScan[scanID]...)
}

// FolderAggregates reads back the folder rollups stored for a scan.
func (m *Memory) FolderAggregates(scanID string) []core.FolderAggregate {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]core.FolderAggregate(nil), m.aggsByScan[scanID]...)
}

// LinksForFile reads back the fingerprint links stored for a file.
func (m *Memory) LinksForFile(fileID string) []core.FingerprintLink {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]core.FingerprintLink(nil), m.linksByFil[fileID]...)
}
