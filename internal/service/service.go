package service

import (
	"context"

	"github.com/ds124wfegd/facility-booking/internal/entity"
)

// BookingService определяет интерфейс для операций с бронированиями
type BookingService interface {
	// Основные операции
	Availability(ctx context.Context, facilityName string, days []entity.Day) ([]entity.DayAvailability, error)
	Book(ctx context.Context, req *BookRequest) (*entity.Booking, error)
	Shift(ctx context.Context, userName string, bookingID int64, deltaMinutes int) (*entity.Booking, error)
	UserBookings(ctx context.Context, userName string) ([]*entity.UserBooking, error)

	// Коды доступа
	IssueAccessCode(ctx context.Context, userName string, bookingID int64) (string, error)
}
