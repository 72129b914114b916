package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ds124wfegd/facility-booking/internal/entity"
)

type bookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) BookingRepository {
	return &bookingRepository{db: db}
}

// Create persists a booking with transaction to ensure data consistency.
// The facility row is locked for the duration of the transaction, so two
// concurrent inserts against the same facility are serialized here even
// though each request ran its in-memory conflict check against its own
// snapshot. A booked candidate that lost the race is stored as failed.
func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
	})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	var facilityID int64
	query := `SELECT id FROM facilities WHERE id = $1 FOR UPDATE`
	err = tx.QueryRowContext(ctx, query, booking.FacilityID).Scan(&facilityID)
	if err == sql.ErrNoRows {
		return entity.ErrFacilityNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to lock facility: %v", err)
	}

	conflicted := false
	if booking.Status == entity.BookingStatusBooked {
		// Same start day, hour-level interval intersection
		query = `
			SELECT EXISTS (
				SELECT 1 FROM bookings
				WHERE facility_id = $1
				  AND status = 'booked'
				  AND start_day = $2
				  AND start_hour < $3
				  AND end_hour > $4
			)
		`
		err = tx.QueryRowContext(ctx, query,
			booking.FacilityID, booking.StartDay, booking.EndHour, booking.StartHour,
		).Scan(&conflicted)
		if err != nil {
			return fmt.Errorf("failed to check booking conflict: %v", err)
		}
		if conflicted {
			booking.Status = entity.BookingStatusFailed
		}
	}

	query = `
		INSERT INTO bookings (
			facility_id, user_name,
			start_day, start_hour, start_minute,
			end_day, end_hour, end_minute,
			status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`

	now := time.Now()
	err = tx.QueryRowContext(ctx, query,
		booking.FacilityID,
		booking.UserName,
		booking.StartDay, booking.StartHour, booking.StartMinute,
		booking.EndDay, booking.EndHour, booking.EndMinute,
		booking.Status,
		now,
		now,
	).Scan(&booking.ID)

	if err != nil {
		return fmt.Errorf("failed to create booking: %v", err)
	}

	booking.CreatedAt = now
	booking.UpdatedAt = now

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	if conflicted {
		return entity.ErrBookingConflict
	}
	return nil
}

// GetByID retrieves a booking by its ID
func (r *bookingRepository) GetByID(ctx context.Context, id int64) (*entity.Booking, error) {
	booking := &entity.Booking{}

	query := `
		SELECT id, facility_id, user_name,
		       start_day, start_hour, start_minute,
		       end_day, end_hour, end_minute,
		       status, created_at, updated_at
		FROM bookings
		WHERE id = $1
	`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&booking.ID, &booking.FacilityID, &booking.UserName,
		&booking.StartDay, &booking.StartHour, &booking.StartMinute,
		&booking.EndDay, &booking.EndHour, &booking.EndMinute,
		&booking.Status, &booking.CreatedAt, &booking.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, entity.ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %v", err)
	}

	return booking, nil
}

// Update persists the mutable time fields of an existing booking
func (r *bookingRepository) Update(ctx context.Context, booking *entity.Booking) error {
	query := `
		UPDATE bookings
		SET start_day = $1, start_hour = $2, start_minute = $3,
		    end_day = $4, end_hour = $5, end_minute = $6,
		    status = $7, updated_at = $8
		WHERE id = $9
	`

	now := time.Now()
	result, err := r.db.ExecContext(ctx, query,
		booking.StartDay, booking.StartHour, booking.StartMinute,
		booking.EndDay, booking.EndHour, booking.EndMinute,
		booking.Status,
		now,
		booking.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update booking: %v", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %v", err)
	}
	if affected == 0 {
		return entity.ErrBookingNotFound
	}

	booking.UpdatedAt = now
	return nil
}

// GetByUser retrieves all bookings of a user together with facility names
func (r *bookingRepository) GetByUser(ctx context.Context, userName string) ([]*entity.UserBooking, error) {
	query := `
		SELECT b.id, b.facility_id, b.user_name,
		       b.start_day, b.start_hour, b.start_minute,
		       b.end_day, b.end_hour, b.end_minute,
		       b.status, b.created_at, b.updated_at,
		       f.name
		FROM bookings b
		JOIN facilities f ON f.id = b.facility_id
		WHERE b.user_name = $1 AND b.status = 'booked'
		ORDER BY b.id
	`

	rows, err := r.db.QueryContext(ctx, query, userName)
	if err != nil {
		return nil, fmt.Errorf("failed to get user bookings: %v", err)
	}
	defer rows.Close()

	var bookings []*entity.UserBooking
	for rows.Next() {
		row := &entity.UserBooking{}
		err = rows.Scan(
			&row.ID, &row.FacilityID, &row.UserName,
			&row.StartDay, &row.StartHour, &row.StartMinute,
			&row.EndDay, &row.EndHour, &row.EndMinute,
			&row.Status, &row.CreatedAt, &row.UpdatedAt,
			&row.FacilityName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user booking: %v", err)
		}
		bookings = append(bookings, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user bookings: %v", err)
	}

	return bookings, nil
}
