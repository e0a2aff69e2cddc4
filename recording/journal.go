package recording

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Session describes one annotation run recorded in the journal
type Session struct {
	ID         string
	Video      string
	Handedness string
	Output     string
	StartedAt  time.Time
	EndedAt    time.Time // zero while the session is open
	Saved      int
}

// Entry is one state change inside a session
type Entry struct {
	Seq   int
	Kind  string
	Frame int
	Start int
	Stop  int
	At    time.Time
}

// Journal appends annotation events to a SQLite database so a session can be
// audited after the fact
type Journal struct {
	db  *sql.DB
	now func() time.Time
	seq map[string]int
}

// OpenJournal creates or opens the journal database at path
func OpenJournal(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to journal: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply journal schema: %w", err)
	}

	return &Journal{db: db, now: time.Now, seq: make(map[string]int)}, nil
}

// Close closes the database
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

// BeginSession records a new session and returns its generated ID
func (j *Journal) BeginSession(ctx context.Context, s Session) (string, error) {
	id := uuid.New().String()
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO sessions (id, video, handedness, output, started_at) VALUES (?, ?, ?, ?, ?)`,
		id, s.Video, s.Handedness, s.Output, formatTime(j.now()),
	)
	if err != nil {
		return "", fmt.Errorf("failed to record session: %w", err)
	}
	j.seq[id] = 0
	return id, nil
}

// Append records one event for the session
func (j *Journal) Append(ctx context.Context, sessionID string, e Entry) error {
	j.seq[sessionID]++
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO events (session_id, seq, kind, frame, start_frame, stop_frame, at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sessionID, j.seq[sessionID], e.Kind, e.Frame, e.Start, e.Stop, formatTime(j.now()),
	)
	if err != nil {
		return fmt.Errorf("failed to record %s event: %w", e.Kind, err)
	}
	return nil
}

// EndSession marks the session finished with the number of intervals saved
func (j *Journal) EndSession(ctx context.Context, sessionID string, saved int) error {
	res, err := j.db.ExecContext(ctx,
		`UPDATE sessions SET ended_at = ?, saved = ? WHERE id = ?`,
		formatTime(j.now()), saved, sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to close session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("session not found: %s", sessionID)
	}
	return nil
}

// Sessions lists all recorded sessions, oldest first
func (j *Journal) Sessions(ctx context.Context) ([]Session, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, video, handedness, output, started_at, ended_at, saved FROM sessions ORDER BY started_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var (
			s       Session
			started string
			ended   sql.NullString
			saved   sql.NullInt64
		)
		if err := rows.Scan(&s.ID, &s.Video, &s.Handedness, &s.Output, &started, &ended, &saved); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		s.StartedAt = parseTime(started)
		if ended.Valid {
			s.EndedAt = parseTime(ended.String)
		}
		s.Saved = int(saved.Int64)
		out = append(out, s)
	}
	return out, rows.Err()
}

// Entries returns the events of one session in order
func (j *Journal) Entries(ctx context.Context, sessionID string) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT seq, kind, frame, start_frame, stop_frame, at FROM events WHERE session_id = ? ORDER BY seq`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e  Entry
			at string
		)
		if err := rows.Scan(&e.Seq, &e.Kind, &e.Frame, &e.Start, &e.Stop, &at); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.At = parseTime(at)
		out = append(out, e)
	}
	return out, rows.Err()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
