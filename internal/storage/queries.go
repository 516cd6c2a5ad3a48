package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CachedMatch describes one cached match body.
type CachedMatch struct {
	MatchID    string
	FetchedAt  time.Time
	RawSize    int
	StoredSize int
}

// CacheStats summarises the cache contents.
type CacheStats struct {
	Matches     int
	RawBytes    int64
	StoredBytes int64
}

// GetMatch returns the cached body for matchID. ok is false when the match is
// not cached.
func (db *DB) GetMatch(matchID string) (body []byte, ok bool, err error) {
	var blob []byte
	err = db.conn.QueryRow("SELECT body FROM matches WHERE match_id = ?", matchID).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	body, err = db.dec.DecodeAll(blob, nil)
	if err != nil {
		return nil, false, fmt.Errorf("decompress %s: %w", matchID, err)
	}
	return body, true, nil
}

// PutMatch stores a match body. Uses INSERT OR REPLACE for idempotency.
func (db *DB) PutMatch(matchID string, body []byte, fetchedAt time.Time) error {
	blob := db.enc.EncodeAll(body, nil)
	_, err := db.conn.Exec(`
		INSERT OR REPLACE INTO matches(match_id, fetched_at, raw_size, body)
		VALUES (?, ?, ?, ?)`,
		matchID, fetchedAt.Unix(), len(body), blob,
	)
	if err != nil {
		return fmt.Errorf("insert match %s: %w", matchID, err)
	}
	return nil
}

// ListMatches returns every cached match, newest fetch first.
func (db *DB) ListMatches() ([]CachedMatch, error) {
	rows, err := db.conn.Query(`
		SELECT match_id, fetched_at, raw_size, length(body)
		FROM matches ORDER BY fetched_at DESC, match_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CachedMatch
	for rows.Next() {
		var m CachedMatch
		var fetched int64
		if err := rows.Scan(&m.MatchID, &fetched, &m.RawSize, &m.StoredSize); err != nil {
			return nil, err
		}
		m.FetchedAt = time.Unix(fetched, 0).UTC()
		out = append(out, m)
	}
	return out, rows.Err()
}

// Stats returns the number of cached matches and their total sizes.
func (db *DB) Stats() (CacheStats, error) {
	var s CacheStats
	err := db.conn.QueryRow(`
		SELECT COUNT(1), COALESCE(SUM(raw_size), 0), COALESCE(SUM(length(body)), 0)
		FROM matches`).Scan(&s.Matches, &s.RawBytes, &s.StoredBytes)
	return s, err
}
