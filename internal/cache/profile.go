package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kaboocam/kaboocam/internal/api"
)

// GetProfile retrieves the cached profile of the logged-in member.
func (d *DB) GetProfile(ttl time.Duration) (*api.Member, bool, error) {
	var m api.Member
	res, err := d.getBlob(`SELECT payload, fetched_at FROM profile WHERE id = ?`, 1, ttl, &m)
	if err != nil || !res.found {
		return nil, false, err
	}
	return &m, res.fresh, nil
}

// PutProfile stores the member profile.
func (d *DB) PutProfile(m *api.Member) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}
	_, err = d.db.Exec(`INSERT OR REPLACE INTO profile (id, payload, fetched_at) VALUES (1, ?, ?)`,
		string(data), time.Now().Unix())
	return err
}

// ClearProfile forgets the member profile, e.g. on logout.
func (d *DB) ClearProfile() error {
	_, err := d.db.Exec(`DELETE FROM profile`)
	return err
}
