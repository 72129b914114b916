package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"sort"

	"github.com/sirupsen/logrus"

	repository "github.com/ds124wfegd/facility-booking/internal/database/postgres"
	"github.com/ds124wfegd/facility-booking/internal/entity"
)

// BookRequest представляет данные для бронирования объекта
type BookRequest struct {
	UserName     string
	FacilityName string
	StartDay     entity.Day
	StartHour    int
	StartMinute  int
	EndDay       entity.Day
	EndHour      int
	EndMinute    int
}

type bookingService struct {
	facilityRepo   repository.FacilityRepository
	bookingRepo    repository.BookingRepository
	accessCodeRepo repository.AccessCodeRepository
}

// NewBookingService создает новый экземпляр BookingService
func NewBookingService(
	facilityRepo repository.FacilityRepository,
	bookingRepo repository.BookingRepository,
	accessCodeRepo repository.AccessCodeRepository,
) BookingService {
	return &bookingService{
		facilityRepo:   facilityRepo,
		bookingRepo:    bookingRepo,
		accessCodeRepo: accessCodeRepo,
	}
}

// Availability возвращает занятые интервалы объекта по запрошенным дням.
// Бронирование, выходящее за пределы своего дня начала, усекается до 23:59
// в представлении этого дня.
func (s *bookingService) Availability(ctx context.Context, facilityName string, days []entity.Day) ([]entity.DayAvailability, error) {
	facility, err := s.facilityRepo.ResolveByName(ctx, facilityName)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve facility: %w", err)
	}

	result := make([]entity.DayAvailability, 0, len(days))
	for _, day := range days {
		view := entity.DayAvailability{Day: day}
		for _, b := range facility.BookedOn(day) {
			end := b.EndHour*100 + b.EndMinute
			if b.EndDay != b.StartDay {
				end = 2359
			}
			view.Slots = append(view.Slots, entity.Slot{
				Start: b.StartHour*100 + b.StartMinute,
				End:   end,
			})
		}
		sort.Slice(view.Slots, func(i, j int) bool {
			return view.Slots[i].Start < view.Slots[j].Start
		})
		result = append(result, view)
	}

	return result, nil
}

// Book создает новое бронирование объекта.
// Кандидат проверяется на пересечение с каждым подтвержденным бронированием;
// при конфликте он сохраняется со статусом failed для аудита.
func (s *bookingService) Book(ctx context.Context, req *BookRequest) (*entity.Booking, error) {
	facility, err := s.facilityRepo.ResolveByName(ctx, req.FacilityName)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve facility: %w", err)
	}

	candidate := &entity.Booking{
		FacilityID:  facility.ID,
		UserName:    req.UserName,
		StartDay:    req.StartDay,
		StartHour:   req.StartHour,
		StartMinute: req.StartMinute,
		EndDay:      req.EndDay,
		EndHour:     req.EndHour,
		EndMinute:   req.EndMinute,
		Status:      entity.BookingStatusPending,
	}

	if err := candidate.Validate(); err != nil {
		return nil, err
	}

	if conflict := facility.FindConflict(candidate); conflict != nil {
		candidate.Status = entity.BookingStatusFailed
		if err := s.bookingRepo.Create(ctx, candidate); err != nil {
			return nil, fmt.Errorf("failed to persist failed booking: %w", err)
		}
		facility.Bookings = append(facility.Bookings, candidate)
		return candidate, fmt.Errorf("%w: %s %02d:00-%02d:00 is taken by booking %d",
			entity.ErrBookingConflict,
			conflict.StartDay, conflict.StartHour, conflict.EndHour, conflict.ID)
	}

	candidate.Status = entity.BookingStatusBooked
	err = s.bookingRepo.Create(ctx, candidate)
	facility.Bookings = append(facility.Bookings, candidate)
	if err != nil {
		// проигранная гонка за слот: хранилище записало кандидата как failed
		return candidate, err
	}

	logrus.WithFields(logrus.Fields{
		"booking_id": candidate.ID,
		"facility":   facility.Name,
		"user":       req.UserName,
	}).Info("Booking created")

	return candidate, nil
}

// Shift переносит бронирование на deltaMinutes в пределах его дня.
// Владельца проверяем до сдвига; повторная проверка конфликтов с другими
// бронированиями здесь не выполняется.
func (s *bookingService) Shift(ctx context.Context, userName string, bookingID int64, deltaMinutes int) (*entity.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.UserName != userName {
		return nil, entity.ErrNotOwner
	}

	if err := booking.ShiftMinutes(deltaMinutes); err != nil {
		return nil, err
	}

	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"delta_min":  deltaMinutes,
	}).Info("Booking shifted")

	return booking, nil
}

// UserBookings возвращает подтвержденные бронирования пользователя
func (s *bookingService) UserBookings(ctx context.Context, userName string) ([]*entity.UserBooking, error) {
	bookings, err := s.bookingRepo.GetByUser(ctx, userName)
	if err != nil {
		return nil, fmt.Errorf("failed to list user bookings: %w", err)
	}
	return bookings, nil
}

// IssueAccessCode выдает шестизначный код доступа, не более одного на бронирование
func (s *bookingService) IssueAccessCode(ctx context.Context, userName string, bookingID int64) (string, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return "", err
	}

	if booking.UserName != userName {
		return "", entity.ErrNotOwner
	}

	issued, err := s.accessCodeRepo.Has(ctx, bookingID)
	if err != nil {
		return "", err
	}
	if issued {
		return "", entity.ErrAccessCodeIssued
	}

	code, err := generateAccessCode()
	if err != nil {
		return "", fmt.Errorf("failed to generate access code: %w", err)
	}

	if err := s.accessCodeRepo.Issue(ctx, bookingID, code); err != nil {
		return "", err
	}

	logrus.WithField("booking_id", bookingID).Info("Access code issued")
	return code, nil
}

func generateAccessCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
