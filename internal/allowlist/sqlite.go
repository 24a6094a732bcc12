package allowlist

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite for persistence. Every mutation
// is a committed statement before the call returns, so the durable copy never
// lags what callers have been told.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-backed allowlist store. A missing
// database file is valid and starts with empty sets.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite works best with a single writer
	db.SetMaxOpenConns(1)

	for _, table := range []string{"admins", "users"} {
		_, err = db.Exec(fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				user_id INTEGER PRIMARY KEY,
				name TEXT,
				added_at DATETIME NOT NULL,
				added_by INTEGER NOT NULL
			)
		`, table))
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("create %s table: %w", table, err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) add(table string, m Member) error {
	_, err := s.db.Exec(fmt.Sprintf(`
		INSERT INTO %s (user_id, name, added_at, added_by)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			name = excluded.name,
			added_at = excluded.added_at,
			added_by = excluded.added_by
	`, table), m.UserID, m.Name, m.AddedAt, m.AddedBy)

	if err != nil {
		return fmt.Errorf("add to %s: %w", table, err)
	}
	return nil
}

func (s *SQLiteStore) remove(table string, userID int64) error {
	_, err := s.db.Exec(fmt.Sprintf("DELETE FROM %s WHERE user_id = ?", table), userID)
	if err != nil {
		return fmt.Errorf("remove from %s: %w", table, err)
	}
	return nil
}

func (s *SQLiteStore) list(table string) ([]Member, error) {
	rows, err := s.db.Query(fmt.Sprintf(
		"SELECT user_id, name, added_at, added_by FROM %s ORDER BY user_id", table))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.UserID, &m.Name, &m.AddedAt, &m.AddedBy); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", table, err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}
	return members, nil
}

func (s *SQLiteStore) contains(table string, userID int64) (bool, error) {
	var exists int
	err := s.db.QueryRow(fmt.Sprintf(
		"SELECT 1 FROM %s WHERE user_id = ?", table), userID).Scan(&exists)

	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check %s membership: %w", table, err)
	}
	return true, nil
}

// AddAdmin adds or updates an admin entry
func (s *SQLiteStore) AddAdmin(m Member) error {
	return s.add("admins", m)
}

// RemoveAdmin removes an admin entry
func (s *SQLiteStore) RemoveAdmin(userID int64) error {
	return s.remove("admins", userID)
}

// AddUser adds or updates a user entry
func (s *SQLiteStore) AddUser(m Member) error {
	return s.add("users", m)
}

// RemoveUser removes a user entry
func (s *SQLiteStore) RemoveUser(userID int64) error {
	return s.remove("users", userID)
}

// ListAdmins returns all admins
func (s *SQLiteStore) ListAdmins() ([]Member, error) {
	return s.list("admins")
}

// ListUsers returns all users
func (s *SQLiteStore) ListUsers() ([]Member, error) {
	return s.list("users")
}

// IsAdmin checks admin membership
func (s *SQLiteStore) IsAdmin(userID int64) (bool, error) {
	return s.contains("admins", userID)
}

// IsUser checks user membership only
func (s *SQLiteStore) IsUser(userID int64) (bool, error) {
	return s.contains("users", userID)
}

// IsAuthorizedUser reports whether userID is in either set
func (s *SQLiteStore) IsAuthorizedUser(userID int64) (bool, error) {
	admin, err := s.IsAdmin(userID)
	if err != nil {
		return false, err
	}
	if admin {
		return true, nil
	}
	return s.IsUser(userID)
}

// Close releases database resources
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
