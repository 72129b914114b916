package entity

import (
	"time"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusBooked    BookingStatus = "booked"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusFailed    BookingStatus = "failed"
)

// Day нумерует дни недели: понедельник = 0 ... воскресенье = 6
type Day uint8

const (
	Monday Day = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var dayNames = [...]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

func (d Day) String() string {
	if d > Sunday {
		return "Invalid"
	}
	return dayNames[d]
}

func (d Day) Valid() bool {
	return d <= Sunday
}

type Booking struct {
	ID          int64         `json:"id" db:"id"`
	FacilityID  int64         `json:"facility_id" db:"facility_id"`
	UserName    string        `json:"user_name" db:"user_name"`
	StartDay    Day           `json:"start_day" db:"start_day"`
	StartHour   int           `json:"start_hour" db:"start_hour"`
	StartMinute int           `json:"start_minute" db:"start_minute"`
	EndDay      Day           `json:"end_day" db:"end_day"`
	EndHour     int           `json:"end_hour" db:"end_hour"`
	EndMinute   int           `json:"end_minute" db:"end_minute"`
	Status      BookingStatus `json:"status" db:"status"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
}

// StartMinutes возвращает время начала в минутах от полуночи его дня
func (b *Booking) StartMinutes() int {
	return b.StartHour*60 + b.StartMinute
}

// EndMinutes возвращает время окончания в минутах от полуночи его дня
func (b *Booking) EndMinutes() int {
	return b.EndHour*60 + b.EndMinute
}

// ConflictsWith проверяет пересечение с другим бронированием.
// Пересечением считается общий объект, общий день начала и пересечение
// часовых интервалов [StartHour, EndHour); минуты не участвуют в проверке.
func (b *Booking) ConflictsWith(other *Booking) bool {
	if b.FacilityID != other.FacilityID {
		return false
	}
	if b.StartDay != other.StartDay {
		return false
	}
	return b.StartHour < other.EndHour && b.EndHour > other.StartHour
}

// ShiftMinutes сдвигает бронирование на delta минут в пределах одного дня.
// Новые начало и конец должны лежать строго внутри (0, 1440); при выходе
// за границы бронирование не изменяется.
func (b *Booking) ShiftMinutes(delta int) error {
	newStart := b.StartMinutes() + delta
	newEnd := b.EndMinutes() + delta

	if newStart <= 0 || newStart >= 24*60 || newEnd <= 0 || newEnd >= 24*60 {
		return ErrInvalidShift
	}

	b.StartHour = newStart / 60
	b.StartMinute = newStart % 60
	b.EndHour = newEnd / 60
	b.EndMinute = newEnd % 60
	return nil
}

// Validate проверяет поля времени нового бронирования
func (b *Booking) Validate() error {
	if !b.StartDay.Valid() || !b.EndDay.Valid() {
		return ErrInvalidInput
	}
	if b.StartHour < 0 || b.StartHour > 23 || b.EndHour < 0 || b.EndHour > 23 {
		return ErrInvalidInput
	}
	if b.StartMinute < 0 || b.StartMinute > 59 || b.EndMinute < 0 || b.EndMinute > 59 {
		return ErrInvalidInput
	}
	startAbs := int(b.StartDay)*24*60 + b.StartMinutes()
	endAbs := int(b.EndDay)*24*60 + b.EndMinutes()
	if endAbs <= startAbs {
		return ErrEndBeforeStart
	}
	return nil
}

// UserBooking представляет бронирование вместе с именем объекта,
// как его возвращает выборка по пользователю
type UserBooking struct {
	Booking
	FacilityName string `json:"facility_name" db:"facility_name"`
}
