// Package storage is the sqlite-backed home of users and the search audit
// trail. Catalog data itself lives in spreadsheets, not here.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"medbuscador/internal"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
)

type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	username      TEXT PRIMARY KEY,
	password_hash TEXT NOT NULL,
	role          TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS search_runs (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	username   TEXT NOT NULL,
	query      TEXT NOT NULL,
	mode       TEXT NOT NULL,
	hits       INTEGER NOT NULL,
	elapsed_ms INTEGER NOT NULL,
	created_at TEXT NOT NULL DEFAULT (datetime('now'))
);
CREATE INDEX IF NOT EXISTS idx_runs_created ON search_runs(created_at);
`

// Open prepares the database, applies the schema and seeds the default
// accounts on first run.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// modernc sqlite is safest with a single writer connection.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma: %w", err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	s := &Store{db: db}
	if err := s.seedDefaults(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) seedDefaults(ctx context.Context) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}
	defaults := []struct{ user, pass, role string }{
		{"admin", "admin", internal.RoleAdmin},
		{"consulta", "consulta", internal.RoleConsulta},
	}
	for _, d := range defaults {
		if err := s.CreateUser(ctx, internal.User{Username: d.user, Role: d.role}, d.pass); err != nil {
			return err
		}
	}
	return nil
}

// Authenticate verifies a username/password pair. Any mismatch, including an
// unknown user, comes back as ErrInvalidCredentials.
func (s *Store) Authenticate(ctx context.Context, username, password string) (internal.User, error) {
	var hash, role string
	err := s.db.QueryRowContext(ctx,
		`SELECT password_hash, role FROM users WHERE username = ?`, username,
	).Scan(&hash, &role)
	if errors.Is(err, sql.ErrNoRows) {
		return internal.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return internal.User{}, fmt.Errorf("lookup user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return internal.User{}, ErrInvalidCredentials
	}
	return internal.User{Username: username, Role: role}, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]internal.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT username, role FROM users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []internal.User{}
	for rows.Next() {
		var u internal.User
		if err := rows.Scan(&u.Username, &u.Role); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) CreateUser(ctx context.Context, user internal.User, password string) error {
	if user.Username == "" || password == "" {
		return errors.New("username and password required")
	}
	if user.Role != internal.RoleAdmin && user.Role != internal.RoleConsulta {
		return fmt.Errorf("unknown role %q", user.Role)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, role) VALUES (?, ?, ?)`,
		user.Username, string(hash), user.Role)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUserExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Store) UpdatePassword(ctx context.Context, username, password string) error {
	if password == "" {
		return errors.New("password required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE username = ?`, string(hash), username)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, username string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE username = ?`, username)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Run is one line of the search audit trail.
type Run struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Query     string    `json:"query"`
	Mode      string    `json:"mode"`
	Hits      int       `json:"hits"`
	Elapsed   int64     `json:"elapsedMs"`
	CreatedAt time.Time `json:"createdAt"`
}

func (s *Store) RecordRun(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO search_runs (username, query, mode, hits, elapsed_ms) VALUES (?, ?, ?, ?, ?)`,
		run.Username, run.Query, run.Mode, run.Hits, run.Elapsed)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, username, query, mode, hits, elapsed_ms, created_at
		 FROM search_runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var (
			run     Run
			created string
		)
		if err := rows.Scan(&run.ID, &run.Username, &run.Query, &run.Mode,
			&run.Hits, &run.Elapsed, &created); err != nil {
			return nil, err
		}
		run.CreatedAt, _ = time.Parse("2006-01-02 15:04:05", created)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "constraint")
}
