package model

// Show is a live event that accepts song requests. Requests reference a show
// so the operator can filter tickets per event.
type Show struct {
	ID     int64  `json:"show_id"`
	Name   string `json:"show_name"`
	Active bool   `json:"-"`
}

// Crate is a named collection used to organize songs, the way a DJ crates
// records. Crate names are unique; resolution is idempotent.
type Crate struct {
	ID   int64  `json:"crate_id"`
	Name string `json:"crate_name"`
}

// Artist names are unique and resolved idempotently, like crates.
type Artist struct {
	ID   int64  `json:"artist_id"`
	Name string `json:"artist_name"`
}

// Song is a catalog entry keyed by the fingerprint of its audio. Re-ingesting
// the same fingerprint updates the metadata in place rather than duplicating
// the row.
type Song struct {
	ID       string  `json:"song_id"` // UUID
	CrateID  int64   `json:"crate_id"`
	ArtistID int64   `json:"artist_id"`
	Hash     []byte  `json:"-"` // audio fingerprint, fixed-width binary
	Title    string  `json:"song_title"`
	Tempo    float64 `json:"song_tempo"`
	Key      string  `json:"song_key"`
}

// ShowArtist is a row of the artist_appearance_count view: how many songs by
// an artist are reachable from a show's crates.
type ShowArtist struct {
	ID          int64  `json:"artist_id"`
	Name        string `json:"artist_name"`
	Appearances int64  `json:"appearances"`
}

// ShowSong is a browse row for the public request form.
type ShowSong struct {
	ID         string `json:"song_id"`
	Title      string `json:"song_title"`
	ArtistName string `json:"artist_name"`
}
