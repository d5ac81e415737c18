package screening

import (
	"context"
	"database/sql"
	"errors"
)

// PostgresCallLog persists call records.
//
// NOTE: This repository assumes the following table exists:
//
//	CREATE TABLE call_records (
//	    call_no      BIGSERIAL PRIMARY KEY,
//	    phone_number TEXT NOT NULL,
//	    caller_name  TEXT NOT NULL DEFAULT '',
//	    timestamp    TIMESTAMPTZ NOT NULL,
//	    action       TEXT NOT NULL,
//	    reason       TEXT NOT NULL,
//	    msg_no       BIGINT
//	);
//
// Rows are INSERT-only apart from the msg_no weak reference; action and
// reason are never updated. BIGSERIAL makes CallNo allocation linearizable
// without a read-then-write on a max value.
type PostgresCallLog struct {
	db *sql.DB
}

func NewPostgresCallLog(db *sql.DB) *PostgresCallLog { return &PostgresCallLog{db: db} }

func (l *PostgresCallLog) Insert(ctx context.Context, rec CallRecord) (int64, error) {
	const q = `
INSERT INTO call_records (phone_number, caller_name, timestamp, action, reason)
VALUES ($1, $2, $3, $4, $5)
RETURNING call_no
`
	var callNo int64
	err := l.db.QueryRowContext(ctx, q,
		rec.PhoneNumber,
		rec.CallerName,
		rec.Timestamp,
		rec.Action,
		rec.Reason,
	).Scan(&callNo)
	if err != nil {
		return 0, err
	}
	return callNo, nil
}

func (l *PostgresCallLog) Get(ctx context.Context, callNo int64) (CallRecord, error) {
	const q = `
SELECT call_no, phone_number, caller_name, timestamp, action, reason, msg_no
FROM call_records
WHERE call_no = $1
`
	return scanRecord(l.db.QueryRowContext(ctx, q, callNo))
}

func (l *PostgresCallLog) Recent(ctx context.Context, limit int) ([]CallRecord, error) {
	const q = `
SELECT call_no, phone_number, caller_name, timestamp, action, reason, msg_no
FROM call_records
ORDER BY call_no DESC
LIMIT $1
`
	rows, err := l.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]CallRecord, 0, limit)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (l *PostgresCallLog) AttachMessage(ctx context.Context, callNo, msgNo int64) error {
	const q = `UPDATE call_records SET msg_no = $2 WHERE call_no = $1`
	return mustAffect(l.db.ExecContext(ctx, q, callNo, msgNo))
}

func (l *PostgresCallLog) DetachMessage(ctx context.Context, callNo, msgNo int64) error {
	// Guarded: only clear the reference while it still points at msgNo.
	const q = `UPDATE call_records SET msg_no = NULL WHERE call_no = $1 AND msg_no = $2`
	_, err := l.db.ExecContext(ctx, q, callNo, msgNo)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (CallRecord, error) {
	var rec CallRecord
	var msgNo sql.NullInt64
	err := row.Scan(
		&rec.CallNo,
		&rec.PhoneNumber,
		&rec.CallerName,
		&rec.Timestamp,
		&rec.Action,
		&rec.Reason,
		&msgNo,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return CallRecord{}, ErrNotFound
	}
	if err != nil {
		return CallRecord{}, err
	}
	if msgNo.Valid {
		rec.MsgNo = &msgNo.Int64
	}
	return rec, nil
}

func mustAffect(res sql.Result, err error) error {
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
