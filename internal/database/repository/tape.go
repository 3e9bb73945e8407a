package repository

import (
	"context"
	"database/sql"
)

// TapeRepo handles session tape entries.
type TapeRepo struct {
	db *sql.DB
}

func NewTapeRepo(db *sql.DB) *TapeRepo { return &TapeRepo{db: db} }

func (r *TapeRepo) Insert(ctx context.Context, e TapeEntry) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO tape_entries(id, seq, left_operand, operator, right_operand, result, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?);
	`, e.ID, e.Seq, e.Left, e.Operator, e.Right, e.Result, e.CreatedAt)
	return err
}

// Recent lists up to limit entries, newest first. A limit of zero or less
// lists everything.
func (r *TapeRepo) Recent(ctx context.Context, limit int) ([]TapeEntry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, seq, left_operand, operator, right_operand, result, created_at
	FROM tape_entries ORDER BY seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []TapeEntry
	for rows.Next() {
		var e TapeEntry
		if err := rows.Scan(&e.ID, &e.Seq, &e.Left, &e.Operator, &e.Right, &e.Result, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *TapeRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tape_entries`).Scan(&n)
	return n, err
}

// DeleteAll removes every entry inside tx.
func (r *TapeRepo) DeleteAll(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM tape_entries`)
	return err
}
