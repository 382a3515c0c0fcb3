// Package sqlite stores conversations in a single-file database. Handy for
// deployments that want local persistence without a directory of JSON files.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	// SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/oncobrief/oncobrief/internal/profile"
	"github.com/oncobrief/oncobrief/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS conversation (
	session_id TEXT PRIMARY KEY,
	messages TEXT NOT NULL,
	created_ts BIGINT NOT NULL,
	updated_ts BIGINT NOT NULL
);
`

type Driver struct {
	db *sql.DB
}

func NewDriver(ctx context.Context, p *profile.Profile) (*Driver, error) {
	if p.DSN == "" {
		return nil, errors.New("database DSN is not configured")
	}
	db, err := sql.Open("sqlite", p.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database %s", p.DSN)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to migrate conversation table")
	}
	return &Driver{db: db}, nil
}

func (d *Driver) LoadConversation(ctx context.Context, sessionID string) ([]store.Message, error) {
	var data string
	err := d.db.QueryRowContext(ctx,
		"SELECT messages FROM conversation WHERE session_id = ?", sessionID,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []store.Message{}, nil
		}
		return nil, errors.Wrapf(err, "failed to query conversation %s", sessionID)
	}
	var messages []store.Message
	if err := json.Unmarshal([]byte(data), &messages); err != nil {
		return nil, errors.Wrapf(err, "malformed conversation row %s", sessionID)
	}
	return messages, nil
}

func (d *Driver) SaveConversation(ctx context.Context, sessionID string, messages []store.Message) error {
	data, err := json.MarshalIndent(messages, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal conversation")
	}
	now := time.Now().Unix()
	_, err = d.db.ExecContext(ctx, `
		INSERT INTO conversation (session_id, messages, created_ts, updated_ts)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(session_id)
		DO UPDATE SET messages = excluded.messages, updated_ts = excluded.updated_ts
	`, sessionID, string(data), now, now)
	if err != nil {
		return errors.Wrapf(err, "failed to save conversation %s", sessionID)
	}
	return nil
}

func (d *Driver) Close() error {
	return d.db.Close()
}
