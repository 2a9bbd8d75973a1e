package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/plzdj/plz-api/internal/model"
)

// Submission rate caps per source IP, evaluated as sliding windows over the
// ticket table. Fixed policy, not configuration.
const (
	maxPerMinute = 3
	maxPerHour   = 10
	maxPerDay    = 20
)

// rateWindows pairs each cap with its trailing interval. Checks run shortest
// window first and short-circuit on the first cap that trips.
var rateWindows = []struct {
	interval string
	limit    int
}{
	{"1 minute", maxPerMinute},
	{"1 hour", maxPerHour},
	{"1 day", maxPerDay},
}

// ticketColumns renders requested_at in the caller's timezone ($1 in every
// query built on it) and carries the variant columns flattened by the request
// view.
const ticketColumns = `ticket_id, show_id, requested_by, ip_address, reverse_dns, notes,
       to_char(requested_at AT TIME ZONE $1, 'YYYY-MM-DD HH24:MI:SS') AS requested_at,
       printed, request_type, song_id, song_title, artist_name`

// TicketRepo persists song-request tickets and answers the sliding-window
// rate queries the admission gate needs. All cross-request coordination goes
// through Postgres; the repo holds no state beyond the pool handle.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo constructs a TicketRepo with the given DB handle.
func NewTicketRepo(db *sql.DB) *TicketRepo {
	return &TicketRepo{db: db}
}

// DB exposes the underlying sql.DB for callers that need transaction control.
func (r *TicketRepo) DB() *sql.DB {
	return r.db
}

// IsRateLimited reports whether ip has tripped any submission window. The
// counts come from persisted tickets, so the verdict is shared across service
// instances.
func (r *TicketRepo) IsRateLimited(ctx context.Context, ip string) (bool, error) {
	const q = `SELECT COUNT(*) FROM ticket WHERE ip_address = $1 AND requested_at >= now() - $2::interval`
	for _, w := range rateWindows {
		var n int
		if err := r.db.QueryRowContext(ctx, q, ip, w.interval).Scan(&n); err != nil {
			return false, err
		}
		if n >= w.limit {
			return true, nil
		}
	}
	return false, nil
}

// CreateSelected inserts a ticket plus its catalog-selection record in one
// transaction. Either both rows appear or neither does.
func (r *TicketRepo) CreateSelected(ctx context.Context, showID int64, songID, requestedBy, ip string, reverseDNS, notes *string) (string, error) {
	const variantQ = `INSERT INTO selected_request (ticket_id, song_id) VALUES ($1, $2)`
	return r.createTicket(ctx, showID, requestedBy, ip, reverseDNS, notes, variantQ, songID)
}

// CreateFreeform inserts a ticket plus its free-text record in one
// transaction.
func (r *TicketRepo) CreateFreeform(ctx context.Context, showID int64, artistName, songTitle, requestedBy, ip string, reverseDNS, notes *string) (string, error) {
	const variantQ = `INSERT INTO freeform_request (ticket_id, artist_name, song_title) VALUES ($1, $2, $3)`
	return r.createTicket(ctx, showID, requestedBy, ip, reverseDNS, notes, variantQ, artistName, songTitle)
}

// createTicket writes the ticket row and the variant row referencing it. The
// variant query receives the new ticket id as its first parameter followed by
// variantArgs.
func (r *TicketRepo) createTicket(ctx context.Context, showID int64, requestedBy, ip string, reverseDNS, notes *string, variantQ string, variantArgs ...any) (string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const q = `INSERT INTO ticket (show_id, requested_by, ip_address, reverse_dns, notes)
               VALUES ($1, $2, $3, $4, $5) RETURNING ticket_id`
	var ticketID string
	if err = tx.QueryRowContext(ctx, q, showID, requestedBy, ip, reverseDNS, notes).Scan(&ticketID); err != nil {
		return "", err
	}

	args := append([]any{ticketID}, variantArgs...)
	if _, err = tx.ExecContext(ctx, variantQ, args...); err != nil {
		return "", err
	}

	if err = tx.Commit(); err != nil {
		return "", err
	}
	return ticketID, nil
}

// ValidateTimezone checks tz against the database's canonical timezone list
// and returns ErrInvalidTimezone when it is not recognized.
func (r *TicketRepo) ValidateTimezone(ctx context.Context, tz string) error {
	const q = `SELECT EXISTS (SELECT 1 FROM pg_timezone_names WHERE name = $1)`
	var known bool
	if err := r.db.QueryRowContext(ctx, q, tz).Scan(&known); err != nil {
		return err
	}
	if !known {
		return ErrInvalidTimezone
	}
	return nil
}

// GetUnprinted returns all unprinted tickets ordered oldest first, with
// timestamps rendered in tz. An empty result is an empty slice, not an error;
// the handler decides how to report it.
func (r *TicketRepo) GetUnprinted(ctx context.Context, tz string) ([]model.Ticket, error) {
	if err := r.ValidateTimezone(ctx, tz); err != nil {
		return nil, err
	}
	q := `SELECT ` + ticketColumns + ` FROM request WHERE printed = false ORDER BY requested_at ASC`
	rows, err := r.db.QueryContext(ctx, q, tz)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

// GetByID returns a single ticket with its timestamp rendered in tz, or
// ErrTicketNotFound.
func (r *TicketRepo) GetByID(ctx context.Context, id, tz string) (*model.Ticket, error) {
	if err := r.ValidateTimezone(ctx, tz); err != nil {
		return nil, err
	}
	q := `SELECT ` + ticketColumns + ` FROM request WHERE ticket_id = $2`
	rows, err := r.db.QueryContext(ctx, q, tz, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tickets, err := scanTickets(rows)
	if err != nil {
		return nil, err
	}
	if len(tickets) == 0 {
		return nil, ErrTicketNotFound
	}
	return &tickets[0], nil
}

// TicketFilter narrows List results. All set fields are AND-combined.
// Interval is a relative lookback such as "2 hours", applied against
// requested_at >= now() - interval.
type TicketFilter struct {
	Interval    *string
	ShowID      *int64
	IP          *string
	RequestedBy *string
}

// List returns tickets matching the filter, newest first, with timestamps
// rendered in tz.
func (r *TicketRepo) List(ctx context.Context, tz string, f TicketFilter) ([]model.Ticket, error) {
	if err := r.ValidateTimezone(ctx, tz); err != nil {
		return nil, err
	}

	args := []any{tz}
	var conds []string
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Interval != nil {
		add("requested_at >= now() - $%d::interval", *f.Interval)
	}
	if f.ShowID != nil {
		add("show_id = $%d", *f.ShowID)
	}
	if f.IP != nil {
		add("ip_address = $%d", *f.IP)
	}
	if f.RequestedBy != nil {
		add("requested_by = $%d", *f.RequestedBy)
	}

	q := `SELECT ` + ticketColumns + ` FROM request`
	if len(conds) > 0 {
		q += ` WHERE ` + strings.Join(conds, " AND ")
	}
	q += ` ORDER BY requested_at DESC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

// MarkPrinted flips the printed flag on a ticket. Re-marking an already
// printed ticket succeeds silently; an unknown id is ErrTicketNotFound.
func (r *TicketRepo) MarkPrinted(ctx context.Context, id string) error {
	const q = `UPDATE ticket SET printed = true WHERE ticket_id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTicketNotFound
	}
	return nil
}

// scanTickets reads request-view rows into models, mapping nullable columns.
func scanTickets(rows *sql.Rows) ([]model.Ticket, error) {
	var tickets []model.Ticket
	for rows.Next() {
		var (
			t          model.Ticket
			reverseDNS sql.NullString
			notes      sql.NullString
			songID     sql.NullString
			songTitle  sql.NullString
			artistName sql.NullString
		)
		if err := rows.Scan(&t.ID, &t.ShowID, &t.RequestedBy, &t.IPAddress, &reverseDNS, &notes,
			&t.RequestedAt, &t.Printed, &t.RequestType, &songID, &songTitle, &artistName); err != nil {
			return nil, err
		}
		t.ReverseDNS = nullableString(reverseDNS)
		t.Notes = nullableString(notes)
		t.SongID = nullableString(songID)
		t.SongTitle = nullableString(songTitle)
		t.ArtistName = nullableString(artistName)
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
