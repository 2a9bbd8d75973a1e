package repository

import (
	"context"
	"database/sql"
	"errors"
)

// CredentialRepo manages persistence for API credentials. Only the argon2id
// hash of a secret is ever stored.
type CredentialRepo struct {
	db *sql.DB
}

// NewCredentialRepo constructs a CredentialRepo with the given DB handle.
func NewCredentialRepo(db *sql.DB) *CredentialRepo {
	return &CredentialRepo{db: db}
}

// Create inserts a new credential row with the given password hash and
// returns the generated credential id. New credentials are active.
func (r *CredentialRepo) Create(ctx context.Context, passwordHash string) (string, error) {
	const q = `INSERT INTO credential (password_hash) VALUES ($1) RETURNING credential_id`
	var id string
	if err := r.db.QueryRowContext(ctx, q, passwordHash).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

// GetActiveHash returns the stored hash for an active credential. It returns
// ErrCredentialNotFound when the id is unknown or the credential has been
// deactivated, so verification fails closed either way.
func (r *CredentialRepo) GetActiveHash(ctx context.Context, id string) (string, error) {
	const q = `SELECT password_hash FROM credential WHERE credential_id = $1 AND active = true`
	var hash string
	err := r.db.QueryRowContext(ctx, q, id).Scan(&hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrCredentialNotFound
		}
		return "", err
	}
	return hash, nil
}

// Deactivate revokes a credential. A deactivated credential never verifies
// again; rows are never deleted.
func (r *CredentialRepo) Deactivate(ctx context.Context, id string) error {
	const q = `UPDATE credential SET active = false WHERE credential_id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCredentialNotFound
	}
	return nil
}
