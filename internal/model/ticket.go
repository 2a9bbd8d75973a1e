package model

// Request variant markers stored on the ticket rows returned by the request
// view. A ticket has exactly one variant.
const (
	RequestTypeSelected = "selected"
	RequestTypeFreeform = "freeform"
)

// Ticket is a single song-request submission together with its variant
// columns, flattened the way the request view reports them. For a selected
// request SongID/SongTitle/ArtistName come from the catalog; for a freeform
// request SongID is nil and the title/artist are the submitter's free text.
//
// RequestedAt is rendered by the database in the timezone the caller asked
// for, so it is carried as a string rather than a time.Time.
type Ticket struct {
	ID          string  `json:"ticket_id"`
	ShowID      int64   `json:"show_id"`
	RequestedBy string  `json:"requested_by"`
	IPAddress   string  `json:"ip_address"`
	ReverseDNS  *string `json:"reverse_dns"`
	Notes       *string `json:"notes"`
	RequestedAt string  `json:"requested_at"`
	Printed     bool    `json:"printed"`
	RequestType string  `json:"request_type"`
	SongID      *string `json:"song_id"`
	SongTitle   *string `json:"song_title"`
	ArtistName  *string `json:"artist_name"`
}
