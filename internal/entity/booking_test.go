package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConflictsWith тестирует предикат пересечения бронирований
func TestConflictsWith(t *testing.T) {
	base := &Booking{
		FacilityID: 1,
		StartDay:   Tuesday, StartHour: 10, StartMinute: 0,
		EndDay: Tuesday, EndHour: 12, EndMinute: 0,
	}

	tests := []struct {
		name  string
		other *Booking
		want  bool
	}{
		{
			name: "overlapping hours on the same day",
			other: &Booking{FacilityID: 1,
				StartDay: Tuesday, StartHour: 11, EndDay: Tuesday, EndHour: 13},
			want: true,
		},
		{
			name: "contained interval",
			other: &Booking{FacilityID: 1,
				StartDay: Tuesday, StartHour: 10, EndDay: Tuesday, EndHour: 11},
			want: true,
		},
		{
			name: "adjacent intervals do not conflict",
			other: &Booking{FacilityID: 1,
				StartDay: Tuesday, StartHour: 12, EndDay: Tuesday, EndHour: 14},
			want: false,
		},
		{
			name: "different start day",
			other: &Booking{FacilityID: 1,
				StartDay: Wednesday, StartHour: 10, EndDay: Wednesday, EndHour: 12},
			want: false,
		},
		{
			name: "different facility",
			other: &Booking{FacilityID: 2,
				StartDay: Tuesday, StartHour: 10, EndDay: Tuesday, EndHour: 12},
			want: false,
		},
		{
			// минуты не участвуют в проверке: 12:30 старт не спасает
			// при пересечении часовых интервалов
			name: "minutes are ignored",
			other: &Booking{FacilityID: 1,
				StartDay: Tuesday, StartHour: 11, StartMinute: 59,
				EndDay: Tuesday, EndHour: 13},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.ConflictsWith(tt.other))
			assert.Equal(t, tt.want, tt.other.ConflictsWith(base))
		})
	}
}

// TestShiftMinutes тестирует перенос бронирования в пределах дня
func TestShiftMinutes(t *testing.T) {
	tests := []struct {
		name      string
		delta     int
		wantErr   bool
		wantStart [2]int // hour, minute
		wantEnd   [2]int
	}{
		{
			name:  "postpone by an hour overflows the day",
			delta: 60, wantErr: true,
		},
		{
			name:  "advance by thirty minutes",
			delta: -30, wantStart: [2]int{22, 30}, wantEnd: [2]int{23, 0},
		},
		{
			name:  "advance to midnight is out of range",
			delta: -23 * 60, wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Booking{
				StartDay: Friday, StartHour: 23, StartMinute: 0,
				EndDay: Friday, EndHour: 23, EndMinute: 30,
			}

			err := b.ShiftMinutes(tt.delta)

			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidShift)
				// бронирование не изменяется при отказе
				assert.Equal(t, 23, b.StartHour)
				assert.Equal(t, 0, b.StartMinute)
				assert.Equal(t, 23, b.EndHour)
				assert.Equal(t, 30, b.EndMinute)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, [2]int{b.StartHour, b.StartMinute})
			assert.Equal(t, tt.wantEnd, [2]int{b.EndHour, b.EndMinute})
		})
	}
}

// TestValidate тестирует проверку времени нового бронирования
func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		booking Booking
		wantErr error
	}{
		{
			name: "valid booking",
			booking: Booking{
				StartDay: Monday, StartHour: 10,
				EndDay: Monday, EndHour: 11,
			},
		},
		{
			name: "spanning into the next day",
			booking: Booking{
				StartDay: Monday, StartHour: 23,
				EndDay: Tuesday, EndHour: 1,
			},
		},
		{
			name: "end before start",
			booking: Booking{
				StartDay: Monday, StartHour: 11,
				EndDay: Monday, EndHour: 10,
			},
			wantErr: ErrEndBeforeStart,
		},
		{
			name: "invalid day",
			booking: Booking{
				StartDay: 7, StartHour: 10,
				EndDay: 7, EndHour: 11,
			},
			wantErr: ErrInvalidInput,
		},
		{
			name: "invalid hour",
			booking: Booking{
				StartDay: Monday, StartHour: 24,
				EndDay: Monday, EndHour: 11,
			},
			wantErr: ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.booking.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}
