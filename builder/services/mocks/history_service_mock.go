// Package mocks provides mock implementations for testing
package mocks

import (
	"github.com/Kush-Singh-26/koshpack/builder/cache"
	"github.com/Kush-Singh-26/koshpack/builder/models"
)

// MockHistoryService is a mock implementation of services.HistoryService.
// It keeps the last fingerprint per mode in memory.
type MockHistoryService struct {
	Latests   map[models.BuildMode]*cache.Snapshot
	Err       error
	CallCount map[string]int
	Closed    bool
}

// NewMockHistoryService creates a new mock history service
func NewMockHistoryService() *MockHistoryService {
	return &MockHistoryService{
		Latests:   make(map[models.BuildMode]*cache.Snapshot),
		CallCount: make(map[string]int),
	}
}

func (m *MockHistoryService) recordCall(method string) {
	if m.CallCount == nil {
		m.CallCount = make(map[string]int)
	}
	m.CallCount[method]++
}

// Record stores body and reports whether it changed
func (m *MockHistoryService) Record(mode models.BuildMode, format string, body []byte) (bool, error) {
	m.recordCall("Record")
	if m.Err != nil {
		return false, m.Err
	}
	fp := cache.HashContent(body)
	prev := m.Latests[mode]
	if prev != nil && prev.Fingerprint == fp && prev.Format == format {
		prev.Count++
		return false, nil
	}
	m.Latests[mode] = &cache.Snapshot{
		Mode:        mode.String(),
		Format:      format,
		Fingerprint: fp,
		Size:        len(body),
		Body:        body,
		Count:       1,
	}
	return true, nil
}

// Latest returns the stored snapshot for mode
func (m *MockHistoryService) Latest(mode models.BuildMode) (*cache.Snapshot, error) {
	m.recordCall("Latest")
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Latests[mode], nil
}

// History returns the latest snapshot as a one-element history
func (m *MockHistoryService) History(mode models.BuildMode, limit int) ([]cache.Snapshot, error) {
	m.recordCall("History")
	if m.Err != nil {
		return nil, m.Err
	}
	if s := m.Latests[mode]; s != nil {
		return []cache.Snapshot{*s}, nil
	}
	return nil, nil
}

// Stats counts stored modes
func (m *MockHistoryService) Stats() (cache.Stats, error) {
	m.recordCall("Stats")
	return cache.Stats{Modes: len(m.Latests), SchemaVersion: cache.SchemaVersion}, m.Err
}

// Clear drops all snapshots
func (m *MockHistoryService) Clear() error {
	m.recordCall("Clear")
	if m.Err != nil {
		return m.Err
	}
	m.Latests = make(map[models.BuildMode]*cache.Snapshot)
	return nil
}

// Close marks the mock closed
func (m *MockHistoryService) Close() error {
	m.recordCall("Close")
	m.Closed = true
	return nil
}
