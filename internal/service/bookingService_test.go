package service

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ds124wfegd/facility-booking/internal/entity"
)

type fakeFacilityRepo struct {
	facilities map[string]*entity.Facility
	nextID     int64
}

func newFakeFacilityRepo() *fakeFacilityRepo {
	return &fakeFacilityRepo{facilities: make(map[string]*entity.Facility), nextID: 1}
}

func (r *fakeFacilityRepo) ResolveByName(_ context.Context, name string) (*entity.Facility, error) {
	if f, ok := r.facilities[name]; ok {
		return f, nil
	}
	f := &entity.Facility{ID: r.nextID, Name: name}
	r.nextID++
	r.facilities[name] = f
	return f, nil
}

type fakeBookingRepo struct {
	bookings    map[int64]*entity.Booking
	nextID      int64
	createCalls int
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[int64]*entity.Booking), nextID: 1}
}

func (r *fakeBookingRepo) Create(_ context.Context, b *entity.Booking) error {
	r.createCalls++
	b.ID = r.nextID
	r.nextID++
	copied := *b
	r.bookings[b.ID] = &copied
	return nil
}

func (r *fakeBookingRepo) GetByID(_ context.Context, id int64) (*entity.Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, entity.ErrBookingNotFound
	}
	copied := *b
	return &copied, nil
}

func (r *fakeBookingRepo) Update(_ context.Context, b *entity.Booking) error {
	if _, ok := r.bookings[b.ID]; !ok {
		return entity.ErrBookingNotFound
	}
	copied := *b
	r.bookings[b.ID] = &copied
	return nil
}

func (r *fakeBookingRepo) GetByUser(_ context.Context, userName string) ([]*entity.UserBooking, error) {
	var out []*entity.UserBooking
	for _, b := range r.bookings {
		if b.UserName == userName && b.Status == entity.BookingStatusBooked {
			out = append(out, &entity.UserBooking{Booking: *b, FacilityName: "Meeting Room A"})
		}
	}
	return out, nil
}

type fakeAccessCodeRepo struct {
	codes map[int64]string
}

func newFakeAccessCodeRepo() *fakeAccessCodeRepo {
	return &fakeAccessCodeRepo{codes: make(map[int64]string)}
}

func (r *fakeAccessCodeRepo) Has(_ context.Context, bookingID int64) (bool, error) {
	_, ok := r.codes[bookingID]
	return ok, nil
}

func (r *fakeAccessCodeRepo) Issue(_ context.Context, bookingID int64, code string) error {
	if _, ok := r.codes[bookingID]; ok {
		return entity.ErrAccessCodeIssued
	}
	r.codes[bookingID] = code
	return nil
}

func newTestService() (BookingService, *fakeBookingRepo, *fakeAccessCodeRepo) {
	bookings := newFakeBookingRepo()
	codes := newFakeAccessCodeRepo()
	return NewBookingService(newFakeFacilityRepo(), bookings, codes), bookings, codes
}

func bookReq(user string, day entity.Day, startHour, endHour int) *BookRequest {
	return &BookRequest{
		UserName:     user,
		FacilityName: "Meeting Room A",
		StartDay:     day, StartHour: startHour,
		EndDay: day, EndHour: endHour,
	}
}

// TestBook тестирует создание бронирования и отказ при пересечении
func TestBook(t *testing.T) {
	ctx := context.Background()
	svc, bookings, _ := newTestService()

	first, err := svc.Book(ctx, bookReq("alice", entity.Tuesday, 10, 12))
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusBooked, first.Status)
	assert.NotZero(t, first.ID)

	// пересекающийся кандидат отклоняется, но сохраняется для аудита
	second, err := svc.Book(ctx, bookReq("bob", entity.Tuesday, 11, 13))
	require.ErrorIs(t, err, entity.ErrBookingConflict)
	require.NotNil(t, second)
	assert.Equal(t, entity.BookingStatusFailed, second.Status)
	assert.Equal(t, 2, bookings.createCalls)

	// после отказа подтвержденным остается только одно бронирование
	rows, err := svc.UserBookings(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, rows)

	// смежный интервал не пересекается
	third, err := svc.Book(ctx, bookReq("bob", entity.Tuesday, 12, 14))
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusBooked, third.Status)

	// тот же интервал в другой день свободен
	_, err = svc.Book(ctx, bookReq("bob", entity.Wednesday, 10, 12))
	assert.NoError(t, err)
}

// TestBookValidation тестирует отклонение некорректного времени
func TestBookValidation(t *testing.T) {
	ctx := context.Background()
	svc, bookings, _ := newTestService()

	_, err := svc.Book(ctx, bookReq("alice", entity.Tuesday, 12, 10))
	assert.ErrorIs(t, err, entity.ErrEndBeforeStart)
	assert.Equal(t, 0, bookings.createCalls)
}

// TestAvailability тестирует выдачу занятых интервалов по дням
func TestAvailability(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	_, err := svc.Book(ctx, bookReq("alice", entity.Wednesday, 10, 11))
	require.NoError(t, err)
	_, err = svc.Book(ctx, bookReq("bob", entity.Wednesday, 14, 16))
	require.NoError(t, err)

	days, err := svc.Availability(ctx, "Meeting Room A",
		[]entity.Day{entity.Wednesday, entity.Thursday})
	require.NoError(t, err)
	require.Len(t, days, 2)

	assert.Equal(t, entity.Wednesday, days[0].Day)
	assert.Equal(t, []entity.Slot{{Start: 1000, End: 1100}, {Start: 1400, End: 1600}}, days[0].Slots)

	// день без бронирований присутствует с пустым списком
	assert.Equal(t, entity.Thursday, days[1].Day)
	assert.Empty(t, days[1].Slots)
}

// TestAvailabilityCrossDayClamp тестирует усечение интервала, уходящего за полночь
func TestAvailabilityCrossDayClamp(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	_, err := svc.Book(ctx, &BookRequest{
		UserName:     "alice",
		FacilityName: "Meeting Room A",
		StartDay:     entity.Friday, StartHour: 22,
		EndDay: entity.Saturday, EndHour: 2,
	})
	require.NoError(t, err)

	days, err := svc.Availability(ctx, "Meeting Room A", []entity.Day{entity.Friday})
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, []entity.Slot{{Start: 2200, End: 2359}}, days[0].Slots)
}

// TestShift тестирует перенос бронирования
func TestShift(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	created, err := svc.Book(ctx, bookReq("alice", entity.Tuesday, 10, 12))
	require.NoError(t, err)

	tests := []struct {
		name      string
		user      string
		delta     int
		wantErr   error
		wantStart int
		wantEnd   int
	}{
		{name: "postpone within the day", user: "alice", delta: 90, wantStart: 11*60 + 30, wantEnd: 13*60 + 30},
		{name: "advance back", user: "alice", delta: -90, wantStart: 10 * 60, wantEnd: 12 * 60},
		{name: "overflow past midnight", user: "alice", delta: 13 * 60, wantErr: entity.ErrInvalidShift},
		{name: "not the owner", user: "bob", delta: 30, wantErr: entity.ErrNotOwner},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shifted, err := svc.Shift(ctx, tt.user, created.ID, tt.delta)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, shifted.StartMinutes())
			assert.Equal(t, tt.wantEnd, shifted.EndMinutes())
		})
	}
}

// TestShiftUnknownBooking тестирует перенос несуществующего бронирования
func TestShiftUnknownBooking(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.Shift(context.Background(), "alice", 404, 30)
	assert.ErrorIs(t, err, entity.ErrBookingNotFound)
}

// TestIssueAccessCode тестирует выдачу кода доступа и ее однократность
func TestIssueAccessCode(t *testing.T) {
	ctx := context.Background()
	svc, _, codes := newTestService()

	created, err := svc.Book(ctx, bookReq("alice", entity.Tuesday, 10, 12))
	require.NoError(t, err)

	code, err := svc.IssueAccessCode(ctx, "alice", created.ID)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), code)

	// повторная выдача отклоняется, сохраненный код не меняется
	_, err = svc.IssueAccessCode(ctx, "alice", created.ID)
	assert.ErrorIs(t, err, entity.ErrAccessCodeIssued)
	assert.Equal(t, code, codes.codes[created.ID])

	// чужое бронирование
	_, err = svc.IssueAccessCode(ctx, "bob", created.ID)
	assert.ErrorIs(t, err, entity.ErrNotOwner)
}
