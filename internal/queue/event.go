// Package queue defines message payloads exchanged over the message broker
// and the background consumer that records them.
package queue

// TicketCreatedEvent is published after a song request is accepted. It gives
// downstream consumers enough to log or count submissions without querying
// the primary database. Printing stays poll-based; this stream is
// observability only.
type TicketCreatedEvent struct {
	TicketID    string `json:"ticket_id"`
	ShowID      int64  `json:"show_id"`
	RequestType string `json:"request_type"` // "selected" or "freeform"
	RequestedBy string `json:"requested_by"`
	SongID      string `json:"song_id,omitempty"`
	SongTitle   string `json:"song_title,omitempty"`
	ArtistName  string `json:"artist_name,omitempty"`
	IPAddress   string `json:"ip_address"`
	RequestedAt string `json:"requested_at"`
}
