// Package storage persists the attempt snapshot as a single namespaced row
// in the local SQLite store.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/teamcollar/stem-assessment/internal/model"
)

// SnapshotStore reads and writes the persisted attempt record.
type SnapshotStore struct {
	db        *sql.DB
	namespace string
}

// New creates a SnapshotStore keyed by namespace.
func New(db *sql.DB, namespace string) *SnapshotStore {
	return &SnapshotStore{db: db, namespace: namespace}
}

// Save upserts the snapshot under the store's namespace. Timestamps inside
// the snapshot serialize as absolute RFC3339 instants.
func (s *SnapshotStore) Save(ctx context.Context, snap *model.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO session_snapshots (namespace, payload, updated_at)
         VALUES ($1, $2, $3)
         ON CONFLICT (namespace) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		s.namespace, string(payload), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}

// Load returns the persisted snapshot, or (nil, nil) when none exists. A
// corrupt payload is returned as an error so the caller can fall back to
// fresh state.
func (s *SnapshotStore) Load(ctx context.Context) (*model.Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT payload FROM session_snapshots WHERE namespace = $1`, s.namespace)

	var payload string
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snap model.Snapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

// Clear deletes the persisted snapshot.
func (s *SnapshotStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM session_snapshots WHERE namespace = $1`, s.namespace)
	if err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}
	return nil
}
