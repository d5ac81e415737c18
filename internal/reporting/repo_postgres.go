package reporting

import (
	"context"
	"database/sql"
	"time"

	"callscreen/internal/screening"
	"callscreen/internal/voicemail"
)

// PostgresRepo reads reporting data straight from the screening and
// voicemail tables. Read-only: reporting never mutates either table.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) ListCalls(ctx context.Context, from, to time.Time) ([]screening.CallRecord, error) {
	const q = `
SELECT call_no, phone_number, caller_name, timestamp, action, reason, msg_no
FROM call_records
WHERE timestamp >= $1 AND timestamp < $2
ORDER BY call_no
`
	rows, err := r.db.QueryContext(ctx, q, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]screening.CallRecord, 0)
	for rows.Next() {
		var rec screening.CallRecord
		var msgNo sql.NullInt64
		if err := rows.Scan(&rec.CallNo, &rec.PhoneNumber, &rec.CallerName, &rec.Timestamp, &rec.Action, &rec.Reason, &msgNo); err != nil {
			return nil, err
		}
		if msgNo.Valid {
			rec.MsgNo = &msgNo.Int64
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) ListMessages(ctx context.Context, from, to time.Time) ([]voicemail.Message, error) {
	const q = `
SELECT msg_no, call_no, audio_ref, played, decremented, created_at
FROM messages
WHERE created_at >= $1 AND created_at < $2
ORDER BY msg_no
`
	rows, err := r.db.QueryContext(ctx, q, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]voicemail.Message, 0)
	for rows.Next() {
		var m voicemail.Message
		if err := rows.Scan(&m.MsgNo, &m.CallNo, &m.AudioRef, &m.Played, &m.Decremented, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
