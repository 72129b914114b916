package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ds124wfegd/facility-booking/internal/entity"
)

// TestEncodeAvailability тестирует кодирование занятых интервалов по дням
func TestEncodeAvailability(t *testing.T) {
	days := []entity.DayAvailability{
		{
			Day: entity.Wednesday,
			Slots: []entity.Slot{
				{Start: 1000, End: 1100},
				{Start: 1430, End: 2359},
			},
		},
		{Day: entity.Friday},
	}

	got := EncodeAvailability(days)

	want := []byte{
		2,          // days
		2, 2,       // Wednesday, two slots
		10, 0, 11, 0,
		14, 30, 23, 59,
		4, 0, // Friday, no slots
	}
	assert.Equal(t, want, got)
}

// TestEncodeBookResult тестирует кодирование результата бронирования
func TestEncodeBookResult(t *testing.T) {
	got := EncodeBookResult(0, "17")

	want := []byte{0, 0, 0, 0, 2, '1', '7'}
	assert.Equal(t, want, got)
}

// TestEncodeShiftResult тестирует кодирование нового времени бронирования
func TestEncodeShiftResult(t *testing.T) {
	b := &entity.Booking{
		StartDay: entity.Tuesday, StartHour: 22, StartMinute: 30,
		EndDay: entity.Tuesday, EndHour: 23, EndMinute: 0,
	}

	got := EncodeShiftResult(b)

	assert.Equal(t, []byte{1, 22, 30, 1, 23, 0}, got)
}

// TestEncodeUserBookings тестирует кодирование списка бронирований пользователя
func TestEncodeUserBookings(t *testing.T) {
	rows := []*entity.UserBooking{
		{
			Booking: entity.Booking{
				ID:       17,
				StartDay: entity.Monday, StartHour: 9, StartMinute: 15,
				EndDay: entity.Monday, EndHour: 10, EndMinute: 45,
			},
			FacilityName: "Gym",
		},
	}

	got := EncodeUserBookings(rows)

	want := []byte{
		1,
		0, 9, 15, 10, 45,
		2, '1', '7',
		3, 'G', 'y', 'm',
	}
	assert.Equal(t, want, got)
}

// TestEncodeAccessCode тестирует кодирование кода доступа
func TestEncodeAccessCode(t *testing.T) {
	got := EncodeAccessCode("042917")

	assert.Equal(t, []byte{6, '0', '4', '2', '9', '1', '7'}, got)
}
