// Package store provides repository implementations: an in-memory store for
// tests and dry runs, and a SQLite store for real deployments. Both are
// last-write-wins; concurrent clients are not reconciled.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/velosched/velosched/core/model"
)

// Memory is an in-memory repository.
type Memory struct {
	mu        sync.RWMutex
	practices map[string]model.Practice
	order     []string
	riders    []model.Rider
	coaches   []model.Coach
	settings  model.SeasonSettings
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{practices: make(map[string]model.Practice)}
}

// SeedRiders replaces the rider roster.
func (m *Memory) SeedRiders(riders []model.Rider) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.riders = append([]model.Rider(nil), riders...)
}

// SeedCoaches replaces the coach roster.
func (m *Memory) SeedCoaches(coaches []model.Coach) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.coaches = append([]model.Coach(nil), coaches...)
}

// SetSeasonSettings replaces the season window and rules.
func (m *Memory) SetSeasonSettings(s model.SeasonSettings) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = s
}

// ListPractices returns every record in insertion order, tombstones included.
func (m *Memory) ListPractices(context.Context) ([]model.Practice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Practice, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.practices[id])
	}
	return out, nil
}

// CreatePractice stores p under a fresh id.
func (m *Memory) CreatePractice(_ context.Context, p model.Practice) (model.Practice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if _, exists := m.practices[p.ID]; exists {
		return model.Practice{}, fmt.Errorf("practice %s already exists", p.ID)
	}
	m.practices[p.ID] = p
	m.order = append(m.order, p.ID)
	return p, nil
}

// UpdatePractice overwrites the stored record.
func (m *Memory) UpdatePractice(_ context.Context, p model.Practice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.practices[p.ID]; !ok {
		return fmt.Errorf("practice %s not found", p.ID)
	}
	m.practices[p.ID] = p
	return nil
}

// SoftDeletePractice marks the record as a tombstone.
func (m *Memory) SoftDeletePractice(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.practices[id]
	if !ok {
		return fmt.Errorf("practice %s not found", id)
	}
	p.Deleted = true
	m.practices[id] = p
	return nil
}

// DeletePractice removes the record outright.
func (m *Memory) DeletePractice(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.practices[id]; !ok {
		return fmt.Errorf("practice %s not found", id)
	}
	delete(m.practices, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// ListRiders returns the rider roster.
func (m *Memory) ListRiders(context.Context) ([]model.Rider, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.Rider(nil), m.riders...), nil
}

// ListCoaches returns the coach roster.
func (m *Memory) ListCoaches(context.Context) ([]model.Coach, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.Coach(nil), m.coaches...), nil
}

// SeasonSettings returns the season window and rules.
func (m *Memory) SeasonSettings(context.Context) (model.SeasonSettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings, nil
}
