package repository

import (
	"context"
	"database/sql"
)

// BlocklistRepo manages the permanent IP blocklist. Membership is a set test;
// duplicate inserts for the same address are harmless.
type BlocklistRepo struct {
	db *sql.DB
}

// NewBlocklistRepo constructs a BlocklistRepo with the given DB handle.
func NewBlocklistRepo(db *sql.DB) *BlocklistRepo {
	return &BlocklistRepo{db: db}
}

// IsBlocked reports whether ip appears in the blocklist.
func (r *BlocklistRepo) IsBlocked(ctx context.Context, ip string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM blocklist WHERE ip_address = $1)`
	var blocked bool
	if err := r.db.QueryRowContext(ctx, q, ip).Scan(&blocked); err != nil {
		return false, err
	}
	return blocked, nil
}

// Block inserts a blocklist entry and returns its id. The reverse DNS name is
// supplied by the caller (nil when the lookup failed); there is no expiry and
// no removal path.
func (r *BlocklistRepo) Block(ctx context.Context, ip string, reverseDNS, notes *string) (int64, error) {
	const q = `INSERT INTO blocklist (ip_address, reverse_dns, notes) VALUES ($1, $2, $3) RETURNING blocklist_id`
	var id int64
	if err := r.db.QueryRowContext(ctx, q, ip, reverseDNS, notes).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}
