// Package repository defines the persistence boundary of the scheduling core.
// The core never talks to a database directly; it plans against a snapshot of
// records and applies changes through this interface. The backing store is
// last-write-wins: there is no multi-client conflict resolution here, a known
// limitation inherited from the system this core serves.
package repository

import (
	"context"

	"github.com/velosched/velosched/core/model"
)

// Repository is the abstract store for practices, people and season settings.
type Repository interface {
	// ListPractices returns every practice record, tombstones included.
	ListPractices(ctx context.Context) ([]model.Practice, error)
	// CreatePractice persists p and returns it with its assigned id.
	CreatePractice(ctx context.Context, p model.Practice) (model.Practice, error)
	// UpdatePractice overwrites the stored record with the same id.
	UpdatePractice(ctx context.Context, p model.Practice) error
	// SoftDeletePractice marks the record as a tombstone. The record stays in
	// the store so its date is never regenerated.
	SoftDeletePractice(ctx context.Context, id string) error
	// DeletePractice removes the record outright. Used when pruning invalid
	// entries and when a restore clears a leftover tombstone; a soft delete
	// would wrongly block the date forever.
	DeletePractice(ctx context.Context, id string) error

	ListRiders(ctx context.Context) ([]model.Rider, error)
	ListCoaches(ctx context.Context) ([]model.Coach, error)

	// SeasonSettings returns the season window and practice rules. The rule
	// store is read-only to the core.
	SeasonSettings(ctx context.Context) (model.SeasonSettings, error)
}
