package entity

type ChangeAction string

const (
	ChangeActionInsert ChangeAction = "INSERT"
	ChangeActionUpdate ChangeAction = "UPDATE"
	ChangeActionDelete ChangeAction = "DELETE"
)

// BookingChange — событие изменения бронирования, публикуемое хранилищем
// через канал booking_changes (LISTEN/NOTIFY). Формат JSON задается
// триггером notify_booking_change в pkg/postgres.
type BookingChange struct {
	Action       ChangeAction  `json:"action"`
	BookingID    int64         `json:"booking_id"`
	FacilityName string        `json:"facility_name"`
	StartDay     Day           `json:"start_day"`
	StartHour    int           `json:"start_hour"`
	StartMinute  int           `json:"start_minute"`
	EndDay       Day           `json:"end_day"`
	EndHour      int           `json:"end_hour"`
	EndMinute    int           `json:"end_minute"`
	Status       BookingStatus `json:"status"`
}
