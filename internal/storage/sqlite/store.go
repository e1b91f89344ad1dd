// Package sqlite provides a SQLite-backed implementation of the storage interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/mcoot/sessiongate/internal/model"
	"github.com/mcoot/sessiongate/internal/storage"
)

// Store persists sessions and players in SQLite
type Store struct {
	sqlDB *sql.DB
}

// Ensure Store implements the interface
var _ storage.Storage = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens the database at path and creates any missing tables
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := "file:" + filepath.Clean(path) +
		"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// SQLite allows a single writer; one connection keeps AddPlayer's
	// read-then-insert transaction from failing with SQLITE_BUSY.
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	for _, stmt := range schema {
		if _, err := sqlDB.Exec(stmt); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Session operations

func (s *Store) CreateSession(ctx context.Context, session *model.Session) error {
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO sessions (id, created, active, settings) VALUES (?, ?, ?, ?)`,
		session.ID.String(),
		toMillis(session.CreatedAt),
		session.Active,
		session.Settings,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrSessionExists
		}
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, created, active, settings FROM sessions WHERE id = ?`,
		id.String(),
	)
	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return session, nil
}

func (s *Store) SetSessionActive(ctx context.Context, id model.SessionID, active bool) error {
	res, err := s.sqlDB.ExecContext(ctx,
		`UPDATE sessions SET active = ? WHERE id = ?`,
		active, id.String(),
	)
	if err != nil {
		return fmt.Errorf("set session active: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set session active: %w", err)
	}
	if n == 0 {
		return model.ErrSessionNotFound
	}
	return nil
}

func (s *Store) ListSessions(ctx context.Context) ([]*model.Session, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, created, active, settings FROM sessions ORDER BY created, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []*model.Session{}
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("list sessions: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

func (s *Store) CountActiveSessions(ctx context.Context) (int, error) {
	var count int
	err := s.sqlDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions WHERE active = 1`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count active sessions: %w", err)
	}
	return count, nil
}

// Player operations

func (s *Store) AddPlayer(ctx context.Context, sid model.SessionID, name string, joined time.Time) (*model.Player, error) {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("add player: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var active bool
	err = tx.QueryRowContext(ctx, `SELECT active FROM sessions WHERE id = ?`, sid.String()).Scan(&active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrSessionNotFound
		}
		return nil, fmt.Errorf("add player: %w", err)
	}
	if !active {
		return nil, model.ErrSessionInactive
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO users (session_id, user_name, role, joined, state) VALUES (?, ?, '', ?, ?)`,
		sid.String(), name, toMillis(joined), model.PlayerStateWaiting,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, model.ErrDuplicateName
		}
		return nil, fmt.Errorf("add player: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("add player: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("add player: %w", err)
	}

	return &model.Player{
		UserID:    model.UserID(id),
		SessionID: sid,
		Name:      name,
		State:     model.PlayerStateWaiting,
		JoinedAt:  fromMillis(toMillis(joined)),
	}, nil
}

func (s *Store) ListPlayers(ctx context.Context, sid model.SessionID) ([]*model.Player, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT user_id, user_name, role, joined, state FROM users WHERE session_id = ? ORDER BY user_id`,
		sid.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	players := []*model.Player{}
	for rows.Next() {
		var (
			id     int64
			joined int64
			p      = &model.Player{SessionID: sid}
		)
		if err := rows.Scan(&id, &p.Name, &p.Role, &joined, &p.State); err != nil {
			return nil, fmt.Errorf("list players: %w", err)
		}
		p.UserID = model.UserID(id)
		p.JoinedAt = fromMillis(joined)
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	return players, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanSession reads a sessions row. Stored ids are validated like any other input.
func scanSession(row rowScanner) (*model.Session, error) {
	var (
		rawID   string
		created int64
		session model.Session
	)
	if err := row.Scan(&rawID, &created, &session.Active, &session.Settings); err != nil {
		return nil, err
	}
	sid, err := model.ParseSessionID(rawID)
	if err != nil {
		return nil, fmt.Errorf("stored session id %q: %w", rawID, err)
	}
	session.ID = sid
	session.CreatedAt = fromMillis(created)
	return &session, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
