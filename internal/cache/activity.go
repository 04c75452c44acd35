package cache

import (
	"database/sql"
	"time"

	"github.com/kaboocam/kaboocam/internal/api"
)

const lastSeenPostKey = "monitor_last_seen_post"

// Activity is a post that appeared while the user was away from the board.
type Activity struct {
	PostID    api.ID
	Title     string
	Author    string
	Preview   string
	CreatedAt time.Time
	Read      bool
}

// AddActivity records a new post. Recording the same post twice is a no-op.
func (d *DB) AddActivity(a Activity) error {
	_, err := d.db.Exec(`INSERT OR IGNORE INTO activity
		(post_id, title, author, preview, created_at, read)
		VALUES (?, ?, ?, ?, ?, 0)`,
		string(a.PostID), nullStr(a.Title), nullStr(a.Author), nullStr(a.Preview), a.CreatedAt.Unix())
	return err
}

// Activities returns the newest entries first.
func (d *DB) Activities(limit int) ([]Activity, error) {
	rows, err := d.db.Query(`SELECT post_id, COALESCE(title, ''), COALESCE(author, ''), COALESCE(preview, ''), created_at, read
		FROM activity ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Activity
	for rows.Next() {
		var a Activity
		var postID string
		var createdAt int64
		var read int
		if err := rows.Scan(&postID, &a.Title, &a.Author, &a.Preview, &createdAt, &read); err != nil {
			return nil, err
		}
		a.PostID = api.ID(postID)
		a.CreatedAt = time.Unix(createdAt, 0)
		a.Read = read != 0
		result = append(result, a)
	}
	return result, rows.Err()
}

func (d *DB) MarkActivityRead(postID api.ID) error {
	_, err := d.db.Exec(`UPDATE activity SET read = 1 WHERE post_id = ?`, string(postID))
	return err
}

func (d *DB) MarkAllActivityRead() error {
	_, err := d.db.Exec(`UPDATE activity SET read = 1 WHERE read = 0`)
	return err
}

// UnreadActivityCount returns the count of unread entries.
func (d *DB) UnreadActivityCount() int {
	var count int
	d.db.QueryRow(`SELECT COUNT(*) FROM activity WHERE read = 0`).Scan(&count)
	return count
}

// LatestSeenPost is the newest post id the monitor has already reported.
func (d *DB) LatestSeenPost() api.ID {
	return api.ID(d.getMeta(lastSeenPostKey))
}

func (d *DB) SetLatestSeenPost(id api.ID) error {
	return d.setMeta(lastSeenPostKey, string(id))
}

func nullStr(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
