package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ignite/open-tracker/internal/domain"
	_ "github.com/lib/pq" // PostgreSQL driver
)

// PostgresStore implements Store against PostgreSQL. The upsert is a single
// INSERT ... ON CONFLICT statement, so first opens racing on the same id are
// resolved by the database rather than by check-then-insert logic.
type PostgresStore struct{ db *sql.DB }

// NewPostgresStore wraps an existing database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore { return &PostgresStore{db: db} }

// OpenPostgres connects to dsn and ensures the tracking_events table exists.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS tracking_events (
			id         TEXT PRIMARY KEY,
			email      TEXT NOT NULL,
			sent_time  TIMESTAMPTZ NOT NULL,
			opened     BOOLEAN NOT NULL DEFAULT FALSE,
			open_time  TIMESTAMPTZ,
			ip_address TEXT NOT NULL DEFAULT '',
			user_agent TEXT NOT NULL DEFAULT ''
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure tracking_events table: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() error { return s.db.Close() }

func (s *PostgresStore) RecordOpen(ctx context.Context, id, ip, userAgent string) (domain.TrackingEvent, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO tracking_events (id, email, sent_time, opened, open_time, ip_address, user_agent)
		VALUES ($1, $2, NOW(), TRUE, NOW(), $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET opened = TRUE, open_time = EXCLUDED.open_time,
		    ip_address = EXCLUDED.ip_address, user_agent = EXCLUDED.user_agent
		RETURNING id, email, sent_time, opened, open_time, ip_address, user_agent
	`, id, domain.UnknownEmail, ip, userAgent)

	evt, err := scanEvent(row)
	if err != nil {
		return domain.TrackingEvent{}, fmt.Errorf("record open: %w", err)
	}
	return evt, nil
}

func (s *PostgresStore) Register(ctx context.Context, id, email string) (domain.TrackingEvent, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO tracking_events (id, email, sent_time)
		VALUES ($1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email
		RETURNING id, email, sent_time, opened, open_time, ip_address, user_agent
	`, id, email)

	evt, err := scanEvent(row)
	if err != nil {
		return domain.TrackingEvent{}, fmt.Errorf("register send: %w", err)
	}
	return evt, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (domain.TrackingEvent, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, sent_time, opened, open_time, ip_address, user_agent
		FROM tracking_events
		WHERE id = $1
	`, id)

	evt, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return domain.TrackingEvent{}, ErrNotFound
	}
	if err != nil {
		return domain.TrackingEvent{}, fmt.Errorf("get tracking event: %w", err)
	}
	return evt, nil
}

func (s *PostgresStore) GetAll(ctx context.Context) ([]domain.TrackingEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, email, sent_time, opened, open_time, ip_address, user_agent
		FROM tracking_events
		ORDER BY sent_time DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list tracking events: %w", err)
	}
	defer rows.Close()

	out := make([]domain.TrackingEvent, 0)
	for rows.Next() {
		evt, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tracking event: %w", err)
		}
		out = append(out, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tracking events: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (domain.TrackingEvent, error) {
	var evt domain.TrackingEvent
	var openTime sql.NullTime
	if err := row.Scan(
		&evt.ID, &evt.Email, &evt.SentTime, &evt.Opened,
		&openTime, &evt.IPAddress, &evt.UserAgent,
	); err != nil {
		return domain.TrackingEvent{}, err
	}
	if openTime.Valid {
		t := openTime.Time
		evt.OpenTime = &t
	}
	return evt, nil
}
