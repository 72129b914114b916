package repository

import (
	"context"

	"github.com/ds124wfegd/facility-booking/internal/entity"
)

type FacilityRepository interface {
	// ResolveByName загружает объект вместе со всеми бронированиями;
	// отсутствующий объект создается
	ResolveByName(ctx context.Context, name string) (*entity.Facility, error)
}

type BookingRepository interface {
	// Create сохраняет бронирование и присваивает ему идентификатор.
	// Для статуса booked конфликт повторно проверяется внутри транзакции
	// под блокировкой строки объекта; при конфликте бронирование
	// записывается со статусом failed и возвращается ErrBookingConflict.
	Create(ctx context.Context, booking *entity.Booking) error

	GetByID(ctx context.Context, id int64) (*entity.Booking, error)
	Update(ctx context.Context, booking *entity.Booking) error

	GetByUser(ctx context.Context, userName string) ([]*entity.UserBooking, error)
}

type AccessCodeRepository interface {
	Has(ctx context.Context, bookingID int64) (bool, error)
	Issue(ctx context.Context, bookingID int64, code string) error
}
