package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS boards (
		id         TEXT PRIMARY KEY,
		state      TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS boards_created_at ON boards (created_at DESC)`,
}

// SQLite is a Store backed by a SQLite database file. Timestamps are stored as unix microseconds.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and applies the schema
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "[OpenSQLite] failed to open database: %+v", path)
	}
	// SQLite serializes writers, a single connection avoids SQLITE_BUSY under concurrent requests
	db.SetMaxOpenConns(1)

	for _, stmt := range schema {
		if _, err = db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, errors.Wrapf(err, "[OpenSQLite] failed to apply schema: %+v", path)
		}
	}
	return &SQLite{db: db}, nil
}

// Create stores a new board and assigns it an id
func (s *SQLite) Create(ctx context.Context, state string) (Record, error) {
	ts := now()
	rec := Record{ID: newID(), State: state, CreatedAt: ts, UpdatedAt: ts}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO boards (id, state, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		rec.ID, rec.State, ts.UnixMicro(), ts.UnixMicro())
	if err != nil {
		return Record{}, errors.Wrap(err, "[Create] failed to insert board")
	}
	return rec, nil
}

// Get retrieves a board by id
func (s *SQLite) Get(ctx context.Context, id string) (Record, error) {
	var (
		rec                  = Record{ID: id}
		createdAt, updatedAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT state, created_at, updated_at FROM boards WHERE id = ?`, id,
	).Scan(&rec.State, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, errors.Wrapf(err, "[Get] failed to query board: %+v", id)
	}

	rec.CreatedAt = fromMicros(createdAt)
	rec.UpdatedAt = fromMicros(updatedAt)
	return rec, nil
}

// Update replaces the state of an existing board
func (s *SQLite) Update(ctx context.Context, id, state string) (Record, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE boards SET state = ?, updated_at = ? WHERE id = ?`,
		state, now().UnixMicro(), id)
	if err != nil {
		return Record{}, errors.Wrapf(err, "[Update] failed to update board: %+v", id)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return Record{}, errors.Wrapf(err, "[Update] failed to read affected rows: %+v", id)
	}
	if affected == 0 {
		return Record{}, ErrNotFound
	}
	return s.Get(ctx, id)
}

// List returns all boards ordered by creation time, newest first
func (s *SQLite) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, created_at FROM boards ORDER BY created_at DESC, id ASC`)
	if err != nil {
		return nil, errors.Wrap(err, "[List] failed to query boards")
	}
	defer rows.Close()

	summaries := []Summary{}
	for rows.Next() {
		var (
			sum       Summary
			createdAt int64
		)
		if err = rows.Scan(&sum.ID, &createdAt); err != nil {
			return nil, errors.Wrap(err, "[List] failed to scan board")
		}
		sum.CreatedAt = fromMicros(createdAt)
		summaries = append(summaries, sum)
	}
	return summaries, errors.Wrap(rows.Err(), "[List] failed to iterate boards")
}

// Close closes the underlying database
func (s *SQLite) Close() error {
	return s.db.Close()
}

func fromMicros(us int64) time.Time {
	return time.UnixMicro(us).UTC()
}
