package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/ds124wfegd/facility-booking/internal/entity"
)

type accessCodeRepository struct {
	db *sql.DB
}

func NewAccessCodeRepository(db *sql.DB) AccessCodeRepository {
	return &accessCodeRepository{db: db}
}

func (r *accessCodeRepository) Has(ctx context.Context, bookingID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM access_codes WHERE booking_id = $1)`
	if err := r.db.QueryRowContext(ctx, query, bookingID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check access code: %v", err)
	}
	return exists, nil
}

// Issue stores the code for a booking exactly once. The unique constraint
// on booking_id catches the race between Has and Issue.
func (r *accessCodeRepository) Issue(ctx context.Context, bookingID int64, code string) error {
	query := `INSERT INTO access_codes (booking_id, code) VALUES ($1, $2)`
	_, err := r.db.ExecContext(ctx, query, bookingID, code)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return entity.ErrAccessCodeIssued
		}
		return fmt.Errorf("failed to issue access code: %v", err)
	}
	return nil
}
