// Package store persists the client's only durable state: the device
// fingerprint token. Nothing else survives a session.
package store

import (
	"database/sql"
	"time"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Token returns the live fingerprint token, or "" when none is stored.
// An expired token is purged and reported as absent.
func (s *Store) Token() (string, error) {
	row := s.db.QueryRow(`SELECT token, expires_at FROM device_token WHERE id = 1`)

	var token string
	var expires time.Time
	err := row.Scan(&token, &expires)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	if time.Now().After(expires) {
		if _, err := s.db.Exec(`DELETE FROM device_token WHERE id = 1`); err != nil {
			return "", err
		}
		return "", nil
	}
	return token, nil
}

// SaveToken stores a fingerprint token. A live token is never overwritten;
// the insert is a no-op if a row already exists.
func (s *Store) SaveToken(token string, expires time.Time) error {
	_, err := s.db.Exec(`
		INSERT INTO device_token (id, token, issued_at, expires_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, token, time.Now().UTC(), expires.UTC())
	return err
}
