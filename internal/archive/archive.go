// Package archive mirrors rating rows into ClickHouse so a club can run
// season-wide analysis over every scouted game. It is optional and only
// wired up in production.
package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/opencourt/scoutbook/internal/models"
	"github.com/opencourt/scoutbook/internal/schema"
	"github.com/opencourt/scoutbook/internal/scoring"
)

// Client provides the ClickHouse integration.
type Client struct {
	conn driver.Conn
	sch  *schema.Schema
}

// NewClient connects to ClickHouse and ensures the ratings table exists.
func NewClient(addr, database, username, password string, sch *schema.Schema) (*Client, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: database,
			Username: username,
			Password: password,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	if err := conn.Ping(context.Background()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	c := &Client{conn: conn, sch: sch}
	if err := c.initSchema(); err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

func (c *Client) initSchema() error {
	// ReplacingMergeTree collapses re-synced rows by recorded_at, so the
	// periodic full sync stays idempotent.
	ddl := `
		CREATE TABLE IF NOT EXISTS scouting_ratings (
			game_key       String,
			match_number   String,
			game_date      String,
			opponent       String,
			player_number  Int32,
			player_size    Int8,
			category       String,
			rating         Int8,
			average        Float64,
			recorded_at    DateTime
		)
		ENGINE = ReplacingMergeTree(recorded_at)
		ORDER BY (game_key, player_number, category)
	`
	return c.conn.Exec(context.Background(), ddl)
}

// ArchiveGame inserts one row per populated rating category of every
// player in the record. The average is recomputed per player at insert
// time, same as the exports do.
func (c *Client) ArchiveGame(ctx context.Context, rec models.GameRecord) error {
	batch, err := c.conn.PrepareBatch(ctx, "INSERT INTO scouting_ratings")
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}

	now := time.Now()
	for _, p := range rec.Players {
		avg := scoring.AverageScore(c.sch, p)
		for _, key := range c.sch.ScoredKeys() {
			v, ok := p.Ratings[key]
			if !ok {
				continue
			}
			err := batch.Append(
				rec.Game.GameKey,
				rec.Game.MatchNumber,
				rec.Game.Date,
				rec.Game.Opponent,
				int32(p.Number),
				int8(p.Size),
				key,
				int8(v),
				avg,
				now,
			)
			if err != nil {
				return fmt.Errorf("failed to append row: %w", err)
			}
		}
	}

	return batch.Send()
}

// SyncStore replays every stored game into the archive. Called
// periodically so rows lost to a ClickHouse outage catch up.
func (c *Client) SyncStore(ctx context.Context, store models.Store) error {
	for _, rec := range store {
		if err := c.ArchiveGame(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

// GameCount reports how many distinct games the archive holds.
func (c *Client) GameCount(ctx context.Context) (uint64, error) {
	var count uint64
	row := c.conn.QueryRow(ctx, `SELECT countDistinct(game_key) FROM scouting_ratings`)
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// Close releases the ClickHouse connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
