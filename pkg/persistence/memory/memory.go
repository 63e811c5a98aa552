package memory

import (
	"fmt"
	"sync"

	"github.com/Layr-Labs/merkle-proofs-go/pkg/persistence"
	"github.com/Layr-Labs/merkle-proofs-go/pkg/report"
)

// MemoryPersistence is an in-memory implementation of IReportPersistence.
//
// All data is stored in memory and will be lost when the process exits.
// Thread-safe using sync.RWMutex for concurrent access.
// Deep copies data to prevent external mutation.
type MemoryPersistence struct {
	mu sync.RWMutex

	// Report storage: root hex -> Report
	reports map[string]*report.Report

	// Closed flag
	closed bool
}

// NewMemoryPersistence creates a new in-memory persistence layer.
func NewMemoryPersistence() *MemoryPersistence {
	return &MemoryPersistence{
		reports: make(map[string]*report.Report),
	}
}

// SaveReport persists a report under its root.
func (m *MemoryPersistence) SaveReport(r *report.Report) error {
	if r == nil {
		return fmt.Errorf("cannot save nil Report")
	}
	key, err := persistence.RootKey(r.RootHex())
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return persistence.ErrClosed
	}

	// Deep copy to prevent external mutation
	m.reports[key] = persistence.CopyReport(r)

	return nil
}

// LoadReport retrieves a report by root.
func (m *MemoryPersistence) LoadReport(root string) (*report.Report, error) {
	key, err := persistence.RootKey(root)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, persistence.ErrClosed
	}

	r, exists := m.reports[key]
	if !exists {
		return nil, nil // Not found is not an error
	}

	return persistence.CopyReport(r), nil
}

// ListReports returns summaries of all reports sorted by creation time.
func (m *MemoryPersistence) ListReports() ([]*persistence.ReportSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, persistence.ErrClosed
	}

	result := make([]*persistence.ReportSummary, 0, len(m.reports))
	for _, r := range m.reports {
		result = append(result, persistence.Summarize(r))
	}
	persistence.SortSummaries(result)

	return result, nil
}

// DeleteReport removes a report.
func (m *MemoryPersistence) DeleteReport(root string) error {
	key, err := persistence.RootKey(root)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return persistence.ErrClosed
	}

	delete(m.reports, key)
	return nil
}

// Close shuts down the persistence layer.
func (m *MemoryPersistence) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	return nil
}

// HealthCheck verifies the persistence layer is operational.
func (m *MemoryPersistence) HealthCheck() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return persistence.ErrClosed
	}

	return nil
}

var _ persistence.IReportPersistence = (*MemoryPersistence)(nil)
