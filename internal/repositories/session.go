package repositories

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/mrx/internal/session"
)

var _ session.Storage = (*SessionRepository)(nil)

// SessionRepository stores the session pair in the session_store table.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new session repository.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Load reads both keys. Missing keys read as empty strings.
func (r *SessionRepository) Load() (string, string, error) {
	rows, err := r.db.Query(`SELECT key, value FROM session_store WHERE key IN (?, ?)`, session.TokenKey, session.UserKey)
	if err != nil {
		return "", "", fmt.Errorf("failed to query session: %w", err)
	}
	defer rows.Close()

	var token, user string
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return "", "", fmt.Errorf("failed to scan session: %w", err)
		}
		switch key {
		case session.TokenKey:
			token = value
		case session.UserKey:
			user = value
		}
	}
	if err := rows.Err(); err != nil {
		return "", "", fmt.Errorf("failed to read session: %w", err)
	}
	return token, user, nil
}

// Save upserts both keys in one transaction.
func (r *SessionRepository) Save(token, user string) error {
	return withTx(r.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT INTO session_store (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`)
		if err != nil {
			return fmt.Errorf("failed to prepare session upsert: %w", err)
		}
		defer stmt.Close()

		for _, kv := range [][2]string{{session.TokenKey, token}, {session.UserKey, user}} {
			if _, err := stmt.Exec(kv[0], kv[1]); err != nil {
				return fmt.Errorf("failed to save %s: %w", kv[0], err)
			}
		}
		return nil
	})
}

// Clear deletes both keys in one transaction.
func (r *SessionRepository) Clear() error {
	return withTx(r.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM session_store WHERE key IN (?, ?)`, session.TokenKey, session.UserKey); err != nil {
			return fmt.Errorf("failed to clear session: %w", err)
		}
		return nil
	})
}

// Set writes a single key outside the pair discipline. It exists for repair tooling and tests.
func (r *SessionRepository) Set(key, value string) error {
	_, err := r.db.Exec(`
		INSERT INTO session_store (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Count returns the number of stored keys.
func (r *SessionRepository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM session_store`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count session keys: %w", err)
	}
	return n, nil
}
