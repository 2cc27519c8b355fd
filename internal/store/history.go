package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// QueryOpts configures history queries.
type QueryOpts struct {
	Limit int       // max results (0 = unlimited)
	From  time.Time // created_at >= From
}

// SubmissionRecord is one successful submission made from this machine.
type SubmissionRecord struct {
	ID          int64
	ResultID    string
	PartnerID   string // empty when the submission started a new result
	Combined    bool   // matches were already available in the response
	AnswerCount int
	CreatedAt   time.Time
}

// HistoryRepo records and lists submissions.
type HistoryRepo interface {
	// AppendSubmission stores a new record.
	AppendSubmission(ctx context.Context, rec SubmissionRecord) error

	// Submissions returns records newest first.
	Submissions(ctx context.Context, opts QueryOpts) ([]SubmissionRecord, error)
}

// historyRepo implements HistoryRepo on the submissions table.
type historyRepo struct {
	db *sql.DB
}

func (r *historyRepo) AppendSubmission(ctx context.Context, rec SubmissionRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO submissions (result_id, partner_id, combined, answer_count, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		rec.ResultID, rec.PartnerID, rec.Combined, rec.AnswerCount, rec.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("append submission: %w", err)
	}
	return nil
}

func (r *historyRepo) Submissions(ctx context.Context, opts QueryOpts) ([]SubmissionRecord, error) {
	query := `SELECT id, result_id, partner_id, combined, answer_count, created_at FROM submissions`
	var args []any
	if !opts.From.IsZero() {
		query += ` WHERE created_at >= ?`
		args = append(args, opts.From.UTC())
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	var out []SubmissionRecord
	for rows.Next() {
		var rec SubmissionRecord
		if err := rows.Scan(&rec.ID, &rec.ResultID, &rec.PartnerID, &rec.Combined, &rec.AnswerCount, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
