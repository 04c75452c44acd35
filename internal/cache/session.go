package cache

import (
	"database/sql"
	"errors"
)

// Session is the key/value view of the session table. It backs the token
// and user store.
type Session struct {
	db *sql.DB
}

func (d *DB) Session() *Session {
	return &Session{db: d.db}
}

func (s *Session) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM session WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *Session) Set(key, value string) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO session (key, value) VALUES (?, ?)`, key, value)
	return err
}

func (s *Session) Delete(key string) error {
	_, err := s.db.Exec(`DELETE FROM session WHERE key = ?`, key)
	return err
}

func (d *DB) getMeta(key string) string {
	var value string
	d.db.QueryRow(`SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	return value
}

func (d *DB) setMeta(key, value string) error {
	_, err := d.db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)`, key, value)
	return err
}
