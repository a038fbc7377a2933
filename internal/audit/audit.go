// Package audit provides a peripheral, best-effort SQLite-backed log of
// broker-affecting HTTP operations (register, publish, subscribe,
// unsubscribe, acknowledge). It exists purely for admin observability —
// nothing in the broker reads from it, and it never backs session or
// message state. A Logger with no database (AuditDBPath == "") is a
// silent no-op so the broker never depends on it being available.
package audit

import (
	"context"
	"database/sql"
	"embed"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Logger records audit events to SQLite. The zero value is not usable;
// construct with Open.
type Logger struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite database at path and applies
// pending migrations. An empty path disables the audit trail entirely:
// Open returns a Logger whose methods are no-ops.
func Open(path string) (*Logger, error) {
	if path == "" {
		return &Logger{}, nil
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Logger{db: db}, nil
}

func applyMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	dbDriver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", dbDriver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

// Close releases the underlying database handle. Safe to call on a
// no-op Logger.
func (l *Logger) Close() error {
	if l.db == nil {
		return nil
	}
	return l.db.Close()
}

// Event is one audit-trail row.
type Event struct {
	ID        int64
	Timestamp int64
	Event     string
	SessionID string
	Topic     string
	MessageID string
}

// Record inserts one audit event. Failures are logged and swallowed —
// an audit-trail outage must never fail the HTTP request that triggered
// it.
func (l *Logger) Record(ctx context.Context, event, sessionID, topic, messageID string) {
	if l.db == nil {
		return
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO audit_events (timestamp, event, session_id, topic, message_id) VALUES (?, ?, ?, ?, ?)`,
		time.Now().Unix(), event, sessionID, topic, messageID,
	)
	if err != nil {
		slog.WarnContext(ctx, "audit: failed to record event", slog.String("event", event), slog.Any("error", err))
	}
}

// Recent returns up to limit audit events, newest first. Returns an
// empty slice (not an error) when the audit trail is disabled.
func (l *Logger) Recent(ctx context.Context, limit int) ([]Event, error) {
	if l.db == nil {
		return nil, nil
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, timestamp, event, session_id, topic, message_id FROM audit_events ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Event, &e.SessionID, &e.Topic, &e.MessageID); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
