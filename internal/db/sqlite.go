// Package db implements the account store backing Login (spec.md §4.7),
// on top of a thread-safe SQLite connection wrapper.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/DaCodeChick/rhxd/internal/wire"
)

// Database wraps a SQLite database connection with thread-safe access.
type Database struct {
	mu   sync.Mutex
	db   *sql.DB
	path string
}

// NewDatabase opens or creates a SQLite database at the given path.
func NewDatabase(dbPath string) (*Database, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", dbPath, err)
	}

	// Configure connection pool for SQLite
	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes
	db.SetMaxIdleConns(1)

	// Enable WAL mode for better read concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		log.Warn().Err(err).Msg("failed to enable WAL mode")
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		log.Warn().Err(err).Msg("failed to enable foreign keys")
	}

	// Verify connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("database opened")

	return &Database{
		db:   db,
		path: dbPath,
	}, nil
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.db.Close()
}

// Exec executes a query without returning rows (INSERT, UPDATE, DELETE).
func (d *Database) Exec(query string, args ...interface{}) (sql.Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.db.Exec(query, args...)
}

// Query executes a query that returns rows (SELECT).
func (d *Database) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return d.db.Query(query, args...)
}

// QueryRow executes a query that returns a single row.
func (d *Database) QueryRow(query string, args ...interface{}) *sql.Row {
	return d.db.QueryRow(query, args...)
}

// Transaction executes a function within a database transaction.
func (d *Database) Transaction(fn func(tx *sql.Tx) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

// SQLiteStore is an AccountStore backed by a Database connection.
type SQLiteStore struct {
	db *Database
}

// OpenSQLiteStore opens or creates the account database at path, runs its
// schema migration, and seeds the default guest and admin accounts if
// absent.
func OpenSQLiteStore(path string, defaultGuestAccess, defaultAdminAccess wire.AccessPrivileges) (*SQLiteStore, error) {
	database, err := NewDatabase(path)
	if err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: database}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate account database: %w", err)
	}
	if err := s.seedDefaults(defaultGuestAccess, defaultAdminAccess); err != nil {
		return nil, fmt.Errorf("seed default accounts: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	const schema = `
		CREATE TABLE IF NOT EXISTS accounts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			login TEXT UNIQUE NOT NULL COLLATE NOCASE,
			password_hash BLOB NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			access INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL,
			modified_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_accounts_login ON accounts(login);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("schema migration failed: %w", err)
	}
	log.Debug().Msg("account database schema migrated")
	return nil
}

// seedDefaults creates the "guest" and "admin" accounts used when no
// operator-provisioned accounts exist yet, so a freshly deployed server can
// still be logged into. Each seed is skipped when its own login already
// exists.
func (s *SQLiteStore) seedDefaults(guestAccess, adminAccess wire.AccessPrivileges) error {
	seeds := []struct {
		login    string
		password []byte
		name     string
		access   wire.AccessPrivileges
	}{
		{"guest", nil, "Guest", guestAccess},
		{"admin", scrambleBytes([]byte("admin")), "Administrator", adminAccess},
	}
	for _, seed := range seeds {
		if _, err := s.Lookup(seed.login); err == nil {
			continue
		} else if err != ErrAccountNotFound {
			return err
		}
		if _, err := s.Create(seed.login, seed.password, seed.name, seed.access); err != nil && err != ErrAccountExists {
			return err
		}
	}
	return nil
}

func scrambleBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		out[i] = c ^ 0xFF
	}
	return out
}

// Lookup finds an account by login, case-insensitively.
func (s *SQLiteStore) Lookup(login string) (Account, error) {
	row := s.db.QueryRow(
		`SELECT id, login, password_hash, name, access, created_at, modified_at
		 FROM accounts WHERE login = ? COLLATE NOCASE`, login)
	return scanAccount(row)
}

// GetByID finds an account by its database key, for looking up a
// connected session's account details (e.g. GetClientInfoText).
func (s *SQLiteStore) GetByID(id int64) (Account, error) {
	row := s.db.QueryRow(
		`SELECT id, login, password_hash, name, access, created_at, modified_at
		 FROM accounts WHERE id = ?`, id)
	return scanAccount(row)
}

// Create inserts a new account. login must be unique case-insensitively.
func (s *SQLiteStore) Create(login string, password []byte, name string, access wire.AccessPrivileges) (Account, error) {
	if password == nil {
		// password_hash is NOT NULL; a nil slice would bind as NULL.
		password = []byte{}
	}
	now := time.Now().Unix()
	var account Account
	err := s.db.Transaction(func(tx *sql.Tx) error {
		res, err := tx.Exec(
			`INSERT INTO accounts (login, password_hash, name, access, created_at, modified_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			login, password, name, int64(access), now, now)
		if err != nil {
			if isUniqueConstraintErr(err) {
				return ErrAccountExists
			}
			return fmt.Errorf("create account %q: %w", login, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("create account %q: %w", login, err)
		}
		account = Account{
			ID: id, Login: login, Password: password, Name: name, Access: access,
			CreatedAt: time.Unix(now, 0), ModifiedAt: time.Unix(now, 0),
		}
		return nil
	})
	return account, err
}

// UpdatePassword replaces an account's scrambled password bytes.
func (s *SQLiteStore) UpdatePassword(id int64, password []byte) error {
	_, err := s.db.Exec(
		`UPDATE accounts SET password_hash = ?, modified_at = ? WHERE id = ?`,
		password, time.Now().Unix(), id)
	return err
}

// List returns every account ordered by login, for administrative tooling.
func (s *SQLiteStore) List() ([]Account, error) {
	rows, err := s.db.Query(
		`SELECT id, login, password_hash, name, access, created_at, modified_at
		 FROM accounts ORDER BY login`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAccount(row rowScanner) (Account, error) {
	var (
		a                     Account
		access                int64
		createdAt, modifiedAt int64
	)
	err := row.Scan(&a.ID, &a.Login, &a.Password, &a.Name, &access, &createdAt, &modifiedAt)
	if err == sql.ErrNoRows {
		return Account{}, ErrAccountNotFound
	}
	if err != nil {
		return Account{}, err
	}
	a.Access = wire.AccessPrivileges(access)
	a.CreatedAt = time.Unix(createdAt, 0)
	a.ModifiedAt = time.Unix(modifiedAt, 0)
	return a, nil
}

func isUniqueConstraintErr(err error) bool {
	return err != nil && strings.Contains(strings.ToUpper(err.Error()), "UNIQUE CONSTRAINT")
}
