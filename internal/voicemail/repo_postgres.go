package voicemail

import (
	"context"
	"database/sql"
	"errors"

	"callscreen/pkg/utils"
)

// PostgresRepo persists voicemail messages.
//
// NOTE: This repository assumes the following table exists:
//
//	CREATE TABLE messages (
//	    msg_no      BIGSERIAL PRIMARY KEY,
//	    call_no     BIGINT NOT NULL REFERENCES call_records(call_no),
//	    audio_ref   TEXT NOT NULL,
//	    played      BOOLEAN NOT NULL DEFAULT FALSE,
//	    decremented BOOLEAN NOT NULL DEFAULT FALSE,
//	    created_at  TIMESTAMPTZ NOT NULL
//	);
//
// Transitions lock the message row (FOR UPDATE) so concurrent mark-played
// and delete on the same msg_no resolve deterministically.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Insert(ctx context.Context, m Message) (int64, error) {
	const q = `
INSERT INTO messages (call_no, audio_ref, played, decremented, created_at)
VALUES ($1, $2, FALSE, FALSE, $3)
RETURNING msg_no
`
	var msgNo int64
	if err := r.db.QueryRowContext(ctx, q, m.CallNo, m.AudioRef, m.CreatedAt).Scan(&msgNo); err != nil {
		return 0, err
	}
	return msgNo, nil
}

func (r *PostgresRepo) Get(ctx context.Context, msgNo int64) (Message, error) {
	const q = `
SELECT msg_no, call_no, audio_ref, played, decremented, created_at
FROM messages
WHERE msg_no = $1
`
	var m Message
	err := r.db.QueryRowContext(ctx, q, msgNo).Scan(
		&m.MsgNo, &m.CallNo, &m.AudioRef, &m.Played, &m.Decremented, &m.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Message{}, ErrNotFound
	}
	if err != nil {
		return Message{}, err
	}
	return m, nil
}

func (r *PostgresRepo) List(ctx context.Context) ([]Message, error) {
	const q = `
SELECT msg_no, call_no, audio_ref, played, decremented, created_at
FROM messages
ORDER BY msg_no DESC
`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.MsgNo, &m.CallNo, &m.AudioRef, &m.Played, &m.Decremented, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) MarkPlayed(ctx context.Context, msgNo int64) (PlayedResult, error) {
	var out PlayedResult
	err := utils.WithTx(ctx, r.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		m, err := lockMessage(ctx, tx, msgNo)
		if err != nil {
			return err
		}
		if m.Played {
			out = PlayedResult{AlreadyPlayed: true}
			return nil
		}

		const q = `UPDATE messages SET played = TRUE, decremented = TRUE WHERE msg_no = $1`
		if _, err := tx.ExecContext(ctx, q, msgNo); err != nil {
			return err
		}
		out = PlayedResult{Decrement: true}
		return nil
	})
	if err != nil {
		return PlayedResult{}, err
	}
	return out, nil
}

func (r *PostgresRepo) Delete(ctx context.Context, msgNo int64) (DeleteResult, error) {
	var out DeleteResult
	err := utils.WithTx(ctx, r.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		m, err := lockMessage(ctx, tx, msgNo)
		if err != nil {
			return err
		}

		const q = `DELETE FROM messages WHERE msg_no = $1`
		if _, err := tx.ExecContext(ctx, q, msgNo); err != nil {
			return err
		}
		out = DeleteResult{
			CallNo:    m.CallNo,
			AudioRef:  m.AudioRef,
			Decrement: !m.Decremented,
		}
		return nil
	})
	if err != nil {
		return DeleteResult{}, err
	}
	return out, nil
}

func (r *PostgresRepo) CountUnplayed(ctx context.Context) (int64, error) {
	const q = `SELECT COUNT(*) FROM messages WHERE played = FALSE`
	var n int64
	if err := r.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func lockMessage(ctx context.Context, tx *sql.Tx, msgNo int64) (Message, error) {
	// Serializes concurrent transitions per message.
	const q = `
SELECT msg_no, call_no, audio_ref, played, decremented, created_at
FROM messages
WHERE msg_no = $1
FOR UPDATE
`
	var m Message
	err := tx.QueryRowContext(ctx, q, msgNo).Scan(
		&m.MsgNo, &m.CallNo, &m.AudioRef, &m.Played, &m.Decremented, &m.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Message{}, ErrNotFound
	}
	if err != nil {
		return Message{}, err
	}
	return m, nil
}
