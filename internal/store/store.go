// Package store is the persisted session record: a best-effort shadow of
// {player name, room id, phase} that survives a restart. It is a hint for the
// reconnection coordinator, never a source of truth; the server's handshake
// snapshot always wins over anything read from here.
package store

import (
	"database/sql"
	"fmt"
	"strconv"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Storage keys, one per field. Kept compatible with records written by the
// original client.
const (
	keyPlayerName = "startup_player_name"
	keyRoomID     = "startup_room_id"
	keyGameState  = "startup_game_state"
	keyVersion    = "schema_version"
)

const schemaVersion = 1

// Record is the persisted session hint. Empty fields mean "not set".
type Record struct {
	PlayerName string
	RoomID     string
	Phase      string
}

func (r Record) Empty() bool {
	return r.PlayerName == "" && r.RoomID == "" && r.Phase == ""
}

// Store wraps a small sqlite key/value table. All write failures are
// swallowed and logged; session logic must keep working with storage gone.
type Store struct {
	db  *sql.DB
	log *zap.Logger
}

// Open opens (or creates) the store at path. A record written under a
// different schema version is cleared rather than reinterpreted.
func Open(path string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS session (key TEXT PRIMARY KEY, value TEXT NOT NULL)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("init session store: %w", err)
	}

	s := &Store{db: db, log: log}
	if v := s.get(keyVersion); v != "" && v != strconv.Itoa(schemaVersion) {
		log.Warn("session store schema mismatch, clearing", zap.String("found", v))
		s.Clear()
	}
	s.set(keyVersion, strconv.Itoa(schemaVersion))
	return s, nil
}

func (s *Store) Close() {
	if err := s.db.Close(); err != nil {
		s.log.Warn("closing session store", zap.Error(err))
	}
}

func (s *Store) get(key string) string {
	var value string
	err := s.db.QueryRow(`SELECT value FROM session WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if err != sql.ErrNoRows {
			s.log.Warn("session store read failed", zap.String("key", key), zap.Error(err))
		}
		return ""
	}
	return value
}

func (s *Store) set(key, value string) {
	if _, err := s.db.Exec(`INSERT OR REPLACE INTO session (key, value) VALUES (?, ?)`, key, value); err != nil {
		s.log.Warn("session store write failed", zap.String("key", key), zap.Error(err))
	}
}

// Save merges the non-empty fields of rec into the store. An unset field
// never overwrites a stored value. Fire-and-forget.
func (s *Store) Save(rec Record) {
	if rec.PlayerName != "" {
		s.set(keyPlayerName, rec.PlayerName)
	}
	if rec.RoomID != "" {
		s.set(keyRoomID, rec.RoomID)
	}
	if rec.Phase != "" {
		s.set(keyGameState, rec.Phase)
	}
}

// Load returns the stored record; a missing or unreadable store yields a
// zero Record.
func (s *Store) Load() Record {
	return Record{
		PlayerName: s.get(keyPlayerName),
		RoomID:     s.get(keyRoomID),
		Phase:      s.get(keyGameState),
	}
}

// Clear removes the session fields atomically. Idempotent; the schema
// version row survives.
func (s *Store) Clear() {
	if _, err := s.db.Exec(`DELETE FROM session WHERE key IN (?, ?, ?)`,
		keyPlayerName, keyRoomID, keyGameState); err != nil {
		s.log.Warn("session store clear failed", zap.Error(err))
	}
}
