// Package storage provides abstractions for persistent group document storage.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no document exists for a group id. It is a
// branchable outcome, not a failure; callers are expected to errors.Is on it.
var ErrNotFound = errors.New("group not found")

// Store is a key-value view over the document table: one serialized JSON
// document per group id plus timestamps. This abstraction allows swapping
// storage backends (SQLite, PostgreSQL, etc.) without changing the service
// layer.
type Store interface {
	// PutGroup inserts or overwrites the document for groupID as a single
	// atomic upsert, setting created_at on first write and bumping updated_at
	// on every write.
	PutGroup(ctx context.Context, groupID string, doc []byte) error

	// GetGroup returns the stored document for groupID, or ErrNotFound.
	GetGroup(ctx context.Context, groupID string) ([]byte, error)

	// DeleteGroup removes the document for groupID, or returns ErrNotFound
	// if there is none. Deletion is final.
	DeleteGroup(ctx context.Context, groupID string) error

	// DeleteOlderThan removes every document whose last-modified time is
	// strictly before cutoff and returns the number removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// Close releases any resources held by the store.
	Close() error
}
