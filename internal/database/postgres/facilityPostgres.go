package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ds124wfegd/facility-booking/internal/entity"
)

type facilityRepository struct {
	db *sql.DB
}

func NewFacilityRepository(db *sql.DB) FacilityRepository {
	return &facilityRepository{db: db}
}

// ResolveByName loads the facility and all of its bookings, creating the
// facility row on first reference. Each call re-reads persisted state so
// concurrent requests observe a fresh snapshot.
func (r *facilityRepository) ResolveByName(ctx context.Context, name string) (*entity.Facility, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	facility := &entity.Facility{Name: name}

	query := `SELECT id, created_at FROM facilities WHERE name = $1`
	err = tx.QueryRowContext(ctx, query, name).Scan(&facility.ID, &facility.CreatedAt)
	if err == sql.ErrNoRows {
		query = `INSERT INTO facilities (name) VALUES ($1) RETURNING id, created_at`
		err = tx.QueryRowContext(ctx, query, name).Scan(&facility.ID, &facility.CreatedAt)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve facility: %v", err)
	}

	query = `
		SELECT id, facility_id, user_name,
		       start_day, start_hour, start_minute,
		       end_day, end_hour, end_minute,
		       status, created_at, updated_at
		FROM bookings
		WHERE facility_id = $1
		ORDER BY id
	`
	rows, err := tx.QueryContext(ctx, query, facility.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load facility bookings: %v", err)
	}
	defer rows.Close()

	for rows.Next() {
		booking := &entity.Booking{}
		err = rows.Scan(
			&booking.ID, &booking.FacilityID, &booking.UserName,
			&booking.StartDay, &booking.StartHour, &booking.StartMinute,
			&booking.EndDay, &booking.EndHour, &booking.EndMinute,
			&booking.Status, &booking.CreatedAt, &booking.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %v", err)
		}
		facility.Bookings = append(facility.Bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bookings: %v", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %v", err)
	}

	return facility, nil
}
