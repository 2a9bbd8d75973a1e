package repository

import (
	"context"
	"database/sql"
)

// SongRepo persists song metadata. Songs are keyed by the fingerprint of
// their audio, so re-ingesting the same file updates metadata in place.
type SongRepo struct {
	db *sql.DB
}

// NewSongRepo constructs a SongRepo with the given DB handle.
func NewSongRepo(db *sql.DB) *SongRepo {
	return &SongRepo{db: db}
}

// Upsert inserts a song or, when a row with the same fingerprint already
// exists, overwrites its artist, title, tempo and key. The whole operation is
// a single statement, so concurrent ingests of the same fingerprint cannot
// duplicate the row.
func (r *SongRepo) Upsert(ctx context.Context, crateID, artistID int64, hash []byte, title string, tempo float64, key string) (string, error) {
	const q = `INSERT INTO song (crate_id, hash, artist_id, song_title, song_tempo, song_key)
               VALUES ($1, $2, $3, $4, $5, $6)
               ON CONFLICT (hash)
               DO UPDATE SET artist_id = EXCLUDED.artist_id, song_title = EXCLUDED.song_title,
                             song_tempo = EXCLUDED.song_tempo, song_key = EXCLUDED.song_key
               RETURNING song_id`
	var id string
	if err := r.db.QueryRowContext(ctx, q, crateID, hash, artistID, title, tempo, key).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}
