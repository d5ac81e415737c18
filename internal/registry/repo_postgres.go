package registry

import (
	"context"
	"database/sql"
	"errors"
)

// PostgresRepo persists reputation entries.
//
// NOTE: This repository assumes the following table exists:
//
//	CREATE TABLE reputation_entries (
//	    phone_number TEXT PRIMARY KEY,
//	    whitelisted  BOOLEAN NOT NULL DEFAULT FALSE,
//	    blacklisted  BOOLEAN NOT NULL DEFAULT FALSE,
//	    display_name TEXT NOT NULL DEFAULT '',
//	    updated_at   TIMESTAMPTZ NOT NULL,
//	    CHECK (NOT (whitelisted AND blacklisted))
//	);
//
// The CHECK constraint backs up the exclusivity invariant the service already
// enforces; a violation reaching the database is a programming error.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Get(ctx context.Context, phoneNumber string) (Entry, bool, error) {
	const q = `
SELECT phone_number, whitelisted, blacklisted, display_name, updated_at
FROM reputation_entries
WHERE phone_number = $1
`
	var e Entry
	err := r.db.QueryRowContext(ctx, q, phoneNumber).Scan(
		&e.PhoneNumber,
		&e.Whitelisted,
		&e.Blacklisted,
		&e.DisplayName,
		&e.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	return e, true, nil
}

func (r *PostgresRepo) Upsert(ctx context.Context, e Entry) error {
	// Single statement: both flags land together, so exclusivity can never be
	// observed half-written.
	const q = `
INSERT INTO reputation_entries (phone_number, whitelisted, blacklisted, display_name, updated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (phone_number) DO UPDATE SET
    whitelisted = EXCLUDED.whitelisted,
    blacklisted = EXCLUDED.blacklisted,
    display_name = EXCLUDED.display_name,
    updated_at = EXCLUDED.updated_at
`
	_, err := r.db.ExecContext(ctx, q, e.PhoneNumber, e.Whitelisted, e.Blacklisted, e.DisplayName, e.UpdatedAt)
	return err
}

func (r *PostgresRepo) Delete(ctx context.Context, phoneNumber string) error {
	const q = `DELETE FROM reputation_entries WHERE phone_number = $1`
	res, err := r.db.ExecContext(ctx, q, phoneNumber)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
