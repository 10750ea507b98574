package dal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/opencourt/scoutbook/internal/models"
)

// PostgresDAL implements ScoutingDAL using PostgreSQL, for clubs that run
// the tool on a shared box instead of a scout's laptop.
type PostgresDAL struct {
	db *sql.DB
}

// NewPostgresDAL creates a new PostgreSQL data access layer.
func NewPostgresDAL(connString string) (*PostgresDAL, error) {
	db, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, &PersistenceError{Op: "load", Err: err}
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Retry the initial ping; the database may still be coming up when the
	// tool starts alongside it.
	maxRetries := 5
	retryDelay := 2 * time.Second
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		lastErr = db.PingContext(ctx)
		cancel()
		if lastErr == nil {
			break
		}
		if i < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}
	if lastErr != nil {
		return nil, &PersistenceError{Op: "load", Err: fmt.Errorf("ping after %d retries: %w", maxRetries, lastErr)}
	}

	dal := &PostgresDAL{db: db}
	if err := dal.initSchema(); err != nil {
		return nil, &PersistenceError{Op: "load", Err: err}
	}
	return dal, nil
}

func (p *PostgresDAL) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scouting_store (
		slot TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);
	`
	_, err := p.db.Exec(schema)
	return err
}

func (p *PostgresDAL) Load() (models.Store, error) {
	var payload string
	err := p.db.QueryRow(`SELECT payload FROM scouting_store WHERE slot = $1`, slotName).Scan(&payload)
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

func (p *PostgresDAL) Save(store models.Store) error {
	payload, err := json.Marshal(store)
	if err != nil {
		return &PersistenceError{Op: "save", Err: err}
	}

	_, err = p.db.Exec(`
		INSERT INTO scouting_store (slot, payload, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (slot) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at
	`, slotName, string(payload), time.Now().UTC())
	if err != nil {
		return &PersistenceError{Op: "save", Err: err}
	}
	return nil
}

func (p *PostgresDAL) Clear() error {
	if _, err := p.db.Exec(`DELETE FROM scouting_store WHERE slot = $1`, slotName); err != nil {
		return &PersistenceError{Op: "clear", Err: err}
	}
	return nil
}

// Close releases the underlying database handle.
func (p *PostgresDAL) Close() error {
	return p.db.Close()
}
