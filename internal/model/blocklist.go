package model

import "time"

// BlocklistEntry marks an IP address as permanently banned from submitting
// requests. Entries are only ever added; the service has no unblock path.
type BlocklistEntry struct {
	ID         int64
	IPAddress  string
	ReverseDNS *string // best-effort PTR lookup result, nil when unresolvable
	Notes      *string
	CreatedAt  time.Time
}
