// Package storage defines the site's storage boundary. Every tool works on
// the caller's own data, so nothing is persisted; MemStorage only reports
// health and keeps a place for future state.
package storage

import (
	"context"
	"time"
)

// Status is the result of a health check.
type Status struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// Storage is implemented by storage backends.
type Storage interface {
	Health(ctx context.Context) (Status, error)
}

// MemStorage is a no-op backend that is always healthy.
type MemStorage struct {
	now func() time.Time
}

// NewMemStorage creates a new MemStorage.
func NewMemStorage() *MemStorage {
	return &MemStorage{now: time.Now}
}

// Health implements Storage.
func (m *MemStorage) Health(ctx context.Context) (Status, error) {
	if err := ctx.Err(); err != nil {
		return Status{}, err
	}
	return Status{Status: "ok", Timestamp: m.now().UTC()}, nil
}
