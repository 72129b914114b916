package entity

import "time"

type Facility struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// Бронирования объекта, загруженные при его разрешении по имени
	Bookings []*Booking `json:"bookings,omitempty"`
}

// FindConflict возвращает первое подтвержденное бронирование,
// пересекающееся с кандидатом, или nil
func (f *Facility) FindConflict(candidate *Booking) *Booking {
	for _, b := range f.Bookings {
		if b.Status == BookingStatusBooked && b.ConflictsWith(candidate) {
			return b
		}
	}
	return nil
}

// BookedOn возвращает подтвержденные бронирования, начинающиеся в указанный день
func (f *Facility) BookedOn(day Day) []*Booking {
	var out []*Booking
	for _, b := range f.Bookings {
		if b.Status == BookingStatusBooked && b.StartDay == day {
			out = append(out, b)
		}
	}
	return out
}
