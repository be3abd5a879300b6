// Package stores holds the SQLite-backed persistence layer.
package stores

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/annoforge/annoforge/internal/core/logging"
	"github.com/annoforge/annoforge/internal/data/db"
)

// AnnotationStore persists per-item, per-plugin JSON documents.
//
// The store is deliberately forgiving: when no database is connected, or a
// read fails, operations log and report absence instead of failing the
// caller. Plugins treat annotations as best-effort state, not as a system
// of record.
type AnnotationStore struct {
	log zerolog.Logger

	mu sync.RWMutex
	db *db.DB
}

// NewAnnotationStore creates a disconnected store. Call Connect once a
// project database path is known.
func NewAnnotationStore() *AnnotationStore {
	return &AnnotationStore{log: logging.Component("annotations")}
}

// Connect opens (or replaces) the backing database. On failure the store
// stays inert: the error is logged and subsequent calls behave as if no
// data exists.
func (s *AnnotationStore) Connect(dbPath string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.log.Warn().Err(err).Msg("close previous annotation database")
		}
		s.db = nil
	}

	conn, err := db.Open(dbPath)
	if err != nil {
		s.log.Error().Err(err).Str("path", dbPath).Msg("annotation database unavailable")
		return
	}

	s.db = conn
	s.log.Info().Str("path", dbPath).Msg("annotation database connected")
}

// Connected reports whether a database is open.
func (s *AnnotationStore) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db != nil
}

// Save upserts the annotation for (itemID, pluginName). The value is
// serialized to JSON.
func (s *AnnotationStore) Save(ctx context.Context, itemID, pluginName string, value any) error {
	s.mu.RLock()
	conn := s.db
	s.mu.RUnlock()

	if conn == nil {
		return errors.New("annotation store not connected")
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode annotation: %w", err)
	}

	now := time.Now().UnixNano()
	_, err = conn.Conn().ExecContext(ctx, `
		INSERT INTO annotations (item_id, plugin_name, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (item_id, plugin_name)
		DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		itemID, pluginName, string(data), now, now,
	)
	if err != nil {
		return fmt.Errorf("save annotation: %w", err)
	}
	return nil
}

// Get decodes the annotation for (itemID, pluginName) into dest. It
// returns false when the store is disconnected, the row is missing, or the
// stored document does not decode; failures beyond absence are logged.
func (s *AnnotationStore) Get(ctx context.Context, itemID, pluginName string, dest any) bool {
	s.mu.RLock()
	conn := s.db
	s.mu.RUnlock()

	if conn == nil {
		return false
	}

	var data string
	row := conn.Conn().QueryRowContext(ctx, `
		SELECT data FROM annotations WHERE item_id = ? AND plugin_name = ?`,
		itemID, pluginName,
	)
	if err := row.Scan(&data); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.log.Warn().Err(err).Str("item", itemID).Str("plugin", pluginName).Msg("read annotation")
		}
		return false
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		s.log.Warn().Err(err).Str("item", itemID).Str("plugin", pluginName).Msg("decode annotation")
		return false
	}
	return true
}

// Delete removes the annotation for (itemID, pluginName). Deleting a
// missing row is not an error.
func (s *AnnotationStore) Delete(ctx context.Context, itemID, pluginName string) error {
	s.mu.RLock()
	conn := s.db
	s.mu.RUnlock()

	if conn == nil {
		return errors.New("annotation store not connected")
	}

	if _, err := conn.Conn().ExecContext(ctx, `
		DELETE FROM annotations WHERE item_id = ? AND plugin_name = ?`,
		itemID, pluginName,
	); err != nil {
		return fmt.Errorf("delete annotation: %w", err)
	}
	return nil
}

// Close releases the database, returning the store to its inert state.
func (s *AnnotationStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
