// Package store persists the scam-intelligence snapshot. Persistence is a
// best-effort accelerator, not a system of record: a load failure falls back
// to an empty snapshot and a save failure only risks one update cycle.
package store

import (
	"context"

	"github.com/satark-labs/scamintel/internal/model"
)

// Store defines the snapshot persistence interface.
type Store interface {
	// Load reads the persisted snapshot. It returns (nil, nil) when no
	// snapshot exists and an error when the stored document is unreadable
	// or fails schema validation; it never fabricates a default snapshot.
	Load(ctx context.Context) (*model.Snapshot, error)

	// Save serializes the full snapshot, replacing any previous state.
	Save(ctx context.Context, snap *model.Snapshot) error

	// Migrate prepares the backing schema. A no-op for document stores.
	Migrate(ctx context.Context) error

	Close() error
}
