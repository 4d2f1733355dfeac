// Package history keeps a log of Data Endpoint fetches in PostgreSQL.
//
// Only fetch metadata is stored (outcome, counts, timing, caller); the
// Records themselves are never persisted, so every fetch still reads the
// object.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/csvtable/internal/core"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

// Lister returns recent fetches, newest first.
type Lister interface {
	Recent(ctx context.Context, limit int) ([]core.FetchRecord, error)
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS fetch_history (
    id          UUID PRIMARY KEY,
    source      TEXT        NOT NULL,
    status      TEXT        NOT NULL,
    code        TEXT,
    rows        INTEGER     NOT NULL DEFAULT 0,
    bytes       BIGINT      NOT NULL DEFAULT 0,
    duration_ms BIGINT      NOT NULL DEFAULT 0,
    error       TEXT,
    started_at  TIMESTAMPTZ NOT NULL,
    client_ip   TEXT,
    user_agent  TEXT
);
CREATE INDEX IF NOT EXISTS fetch_history_started_at_idx ON fetch_history (started_at DESC);
`

const insertSQL = `
INSERT INTO fetch_history (id, source, status, code, rows, bytes, duration_ms, error, started_at, client_ip, user_agent)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

const recentSQL = `
SELECT id, source, status, code, rows, bytes, duration_ms, error, started_at, client_ip, user_agent
FROM fetch_history
ORDER BY started_at DESC
LIMIT $1`

// DefaultLimit is used when Recent is called with a non-positive limit.
const DefaultLimit = 50

// Store records fetch outcomes. It implements core.FetchRecorder.
type Store struct {
	db DBTX
}

var (
	_ core.FetchRecorder = (*Store)(nil)
	_ Lister             = (*Store)(nil)
)

// NewStore creates a store on db.
func NewStore(db DBTX) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the history table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create fetch_history: %w", err)
	}
	return nil
}

// RecordFetch inserts one fetch outcome.
func (s *Store) RecordFetch(ctx context.Context, rec core.FetchRecord) error {
	id, err := uuid.Parse(rec.ID)
	if err != nil {
		return fmt.Errorf("fetch id %q: %w", rec.ID, err)
	}

	_, err = s.db.Exec(ctx, insertSQL,
		pgtype.UUID{Bytes: id, Valid: true},
		rec.Source,
		string(rec.Status),
		textOrNull(rec.Code),
		int32(rec.Rows),
		rec.Bytes,
		rec.Duration.Milliseconds(),
		textOrNull(rec.Error),
		pgtype.Timestamptz{Time: rec.StartedAt, Valid: true},
		textOrNull(rec.ClientIP),
		textOrNull(rec.UserAgent),
	)
	if err != nil {
		return fmt.Errorf("insert fetch %s: %w", rec.ID, err)
	}
	return nil
}

// Recent returns up to limit fetches, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]core.FetchRecord, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	rows, err := s.db.Query(ctx, recentSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("query fetch history: %w", err)
	}
	defer rows.Close()

	out := []core.FetchRecord{}
	for rows.Next() {
		rec, err := scanFetch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fetch history: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read fetch history: %w", err)
	}
	return out, nil
}

func scanFetch(rows pgx.Rows) (core.FetchRecord, error) {
	var (
		id         pgtype.UUID
		source     string
		status     string
		code       pgtype.Text
		nrows      int32
		nbytes     int64
		durationMS int64
		errMsg     pgtype.Text
		startedAt  pgtype.Timestamptz
		clientIP   pgtype.Text
		userAgent  pgtype.Text
	)

	if err := rows.Scan(&id, &source, &status, &code, &nrows, &nbytes, &durationMS, &errMsg, &startedAt, &clientIP, &userAgent); err != nil {
		return core.FetchRecord{}, err
	}

	rec := core.FetchRecord{
		Source:    source,
		Status:    core.FetchStatus(status),
		Code:      code.String,
		Rows:      int(nrows),
		Bytes:     nbytes,
		Duration:  time.Duration(durationMS) * time.Millisecond,
		Error:     errMsg.String,
		ClientIP:  clientIP.String,
		UserAgent: userAgent.String,
		StartedAt: startedAt.Time,
	}
	if id.Valid {
		rec.ID = uuid.UUID(id.Bytes).String()
	}
	return rec, nil
}

func textOrNull(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

// Disabled is the Lister used when no database is configured. It always
// returns an empty history.
type Disabled struct{}

// Recent returns an empty slice.
func (Disabled) Recent(context.Context, int) ([]core.FetchRecord, error) {
	return []core.FetchRecord{}, nil
}
