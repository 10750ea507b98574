package dal

import (
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/opencourt/scoutbook/internal/models"
)

// slotName is the single key-value slot holding the serialized store,
// matching the one localStorage entry the browser version used.
const slotName = "basketballScoutingData"

// SQLiteDAL implements ScoutingDAL using SQLite.
type SQLiteDAL struct {
	db *sql.DB
}

// NewSQLiteDAL creates a new SQLite data access layer.
func NewSQLiteDAL(dbPath string) (*SQLiteDAL, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, &PersistenceError{Op: "load", Err: err}
	}

	dal := &SQLiteDAL{db: db}
	if err := dal.initSchema(); err != nil {
		return nil, &PersistenceError{Op: "load", Err: err}
	}

	return dal, nil
}

func (s *SQLiteDAL) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scouting_store (
		slot TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteDAL) Load() (models.Store, error) {
	var payload string
	err := s.db.QueryRow(`SELECT payload FROM scouting_store WHERE slot = ?`, slotName).Scan(&payload)
	if err == sql.ErrNoRows {
		return models.Store{}, nil
	}
	if err != nil {
		return nil, &PersistenceError{Op: "load", Err: err}
	}

	store := models.Store{}
	if err := json.Unmarshal([]byte(payload), &store); err != nil {
		return nil, &PersistenceError{Op: "load", Err: err}
	}
	return store, nil
}

func (s *SQLiteDAL) Save(store models.Store) error {
	payload, err := json.Marshal(store)
	if err != nil {
		return &PersistenceError{Op: "save", Err: err}
	}

	_, err = s.db.Exec(`
		INSERT INTO scouting_store (slot, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at
	`, slotName, string(payload), time.Now().UTC())
	if err != nil {
		return &PersistenceError{Op: "save", Err: err}
	}
	return nil
}

func (s *SQLiteDAL) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM scouting_store WHERE slot = ?`, slotName); err != nil {
		return &PersistenceError{Op: "clear", Err: err}
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLiteDAL) Close() error {
	return s.db.Close()
}
