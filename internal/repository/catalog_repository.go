package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/plzdj/plz-api/internal/model"
)

// CatalogRepo resolves human-readable names (crates, artists, shows) to
// stable identifiers, creating rows on first use, and serves the browse
// queries the public request form needs.
type CatalogRepo struct {
	db *sql.DB
}

// NewCatalogRepo constructs a CatalogRepo with the given DB handle.
func NewCatalogRepo(db *sql.DB) *CatalogRepo {
	return &CatalogRepo{db: db}
}

// ResolveOrCreateCrate returns the id of the crate with the given name,
// inserting it first if absent. The insert uses ON CONFLICT DO NOTHING under
// the unique name constraint, so concurrent first references to the same name
// cannot produce duplicate rows; the loser of the race falls through to the
// select and finds the winner's row.
func (r *CatalogRepo) ResolveOrCreateCrate(ctx context.Context, name string) (int64, error) {
	return r.resolveOrCreate(ctx, name,
		`INSERT INTO crate (crate_name) VALUES ($1) ON CONFLICT (crate_name) DO NOTHING RETURNING crate_id`,
		`SELECT crate_id FROM crate WHERE crate_name = $1`)
}

// ResolveOrCreateArtist behaves like ResolveOrCreateCrate for artist names.
func (r *CatalogRepo) ResolveOrCreateArtist(ctx context.Context, name string) (int64, error) {
	return r.resolveOrCreate(ctx, name,
		`INSERT INTO artist (artist_name) VALUES ($1) ON CONFLICT (artist_name) DO NOTHING RETURNING artist_id`,
		`SELECT artist_id FROM artist WHERE artist_name = $1`)
}

func (r *CatalogRepo) resolveOrCreate(ctx context.Context, name, insertQ, selectQ string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, ErrEmptyName
	}
	var id int64
	err := r.db.QueryRowContext(ctx, insertQ, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}
	// Conflict: the name already exists, fetch its id.
	if err := r.db.QueryRowContext(ctx, selectQ, name).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// CreateShow inserts a new show and returns its id.
func (r *CatalogRepo) CreateShow(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, ErrEmptyName
	}
	const q = `INSERT INTO show (show_name) VALUES ($1) RETURNING show_id`
	var id int64
	if err := r.db.QueryRowContext(ctx, q, name).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// GetShows returns all active shows ordered by name. It returns an empty
// slice and nil error when there are none.
func (r *CatalogRepo) GetShows(ctx context.Context) ([]model.Show, error) {
	const q = `SELECT show_id, show_name FROM show WHERE active = true ORDER BY show_name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var shows []model.Show
	for rows.Next() {
		var s model.Show
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, err
		}
		s.Active = true
		shows = append(shows, s)
	}
	return shows, rows.Err()
}

// GetCrates returns every crate in the catalog.
func (r *CatalogRepo) GetCrates(ctx context.Context) ([]model.Crate, error) {
	const q = `SELECT crate_id, crate_name FROM crate ORDER BY crate_name`
	return r.scanCrates(ctx, q)
}

// GetCratesByShow returns the crates associated with a show.
func (r *CatalogRepo) GetCratesByShow(ctx context.Context, showID int64) ([]model.Crate, error) {
	const q = `SELECT crate.crate_id, crate.crate_name FROM show_crate
               INNER JOIN crate ON show_crate.crate_id = crate.crate_id
               WHERE show_crate.show_id = $1
               ORDER BY crate.crate_name`
	return r.scanCrates(ctx, q, showID)
}

func (r *CatalogRepo) scanCrates(ctx context.Context, q string, args ...any) ([]model.Crate, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var crates []model.Crate
	for rows.Next() {
		var c model.Crate
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		crates = append(crates, c)
	}
	return crates, rows.Err()
}

// AssociateCrates links the given crates to a show inside one transaction.
// Re-associating an existing pair is a no-op rather than an error.
func (r *CatalogRepo) AssociateCrates(ctx context.Context, showID int64, crateIDs []int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	const q = `INSERT INTO show_crate (show_id, crate_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	for _, crateID := range crateIDs {
		if _, err = tx.ExecContext(ctx, q, showID, crateID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetShowArtists returns artists reachable from a show's crates together with
// their appearance counts, from the artist_appearance_count view.
func (r *CatalogRepo) GetShowArtists(ctx context.Context, showID int64) ([]model.ShowArtist, error) {
	const q = `SELECT artist_id, artist_name, appearances FROM artist_appearance_count WHERE show_id = $1`
	rows, err := r.db.QueryContext(ctx, q, showID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var artists []model.ShowArtist
	for rows.Next() {
		var a model.ShowArtist
		if err := rows.Scan(&a.ID, &a.Name, &a.Appearances); err != nil {
			return nil, err
		}
		artists = append(artists, a)
	}
	return artists, rows.Err()
}

// GetShowSongs returns the songs in a show's crates, optionally filtered to a
// single artist, ordered by title.
func (r *CatalogRepo) GetShowSongs(ctx context.Context, showID int64, artistID *int64) ([]model.ShowSong, error) {
	q := `SELECT song.song_id, song.song_title, artist.artist_name FROM show_crate
          INNER JOIN song ON song.crate_id = show_crate.crate_id
          INNER JOIN artist ON song.artist_id = artist.artist_id
          WHERE show_crate.show_id = $1`
	args := []any{showID}
	if artistID != nil {
		q += ` AND song.artist_id = $2`
		args = append(args, *artistID)
	}
	q += ` ORDER BY song.song_title`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var songs []model.ShowSong
	for rows.Next() {
		var s model.ShowSong
		if err := rows.Scan(&s.ID, &s.Title, &s.ArtistName); err != nil {
			return nil, err
		}
		songs = append(songs, s)
	}
	return songs, rows.Err()
}
