package protocol

import (
	"encoding/binary"
	"time"

	"github.com/ds124wfegd/facility-booking/internal/entity"
)

// Request — размеченное объединение шести операций протокола.
// Диспетчер ветвится по конкретному типу, что дает проверку полноты
// вариантов на этапе компиляции.
type Request interface {
	Op() byte
}

type QueryAvailabilityRequest struct {
	FacilityName string
	Days         []entity.Day // по возрастанию, из битовой маски
}

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

type ShiftRequest struct {
	UserName     string
	BookingID    int64
	DeltaMinutes int // отрицательное значение — перенос на более раннее время
}

type MonitorRequest struct {
	FacilityName string
	Duration     time.Duration
}

type ListBookingsRequest struct {
	UserName string
}

type AccessCodeRequest struct {
	UserName  string
	BookingID int64
}

func (QueryAvailabilityRequest) Op() byte { return OpQueryAvailability }
func (BookRequest) Op() byte              { return OpBookFacility }
func (ShiftRequest) Op() byte             { return OpShiftBooking }
func (MonitorRequest) Op() byte           { return OpMonitorFacility }
func (ListBookingsRequest) Op() byte      { return OpListBookings }
func (AccessCodeRequest) Op() byte        { return OpAccessCode }

// ParseRequest разбирает полезную нагрузку сообщения в типизированный запрос
func ParseRequest(msg *Message) (Request, error) {
	r := payloadReader{data: msg.Payload}

	switch msg.Operation {
	case OpQueryAvailability:
		name, err := r.lstring()
		if err != nil {
			return nil, err
		}
		mask, err := r.byte()
		if err != nil {
			return nil, err
		}
		var days []entity.Day
		for d := entity.Monday; d <= entity.Sunday; d++ {
			if mask&(1<<d) != 0 {
				days = append(days, d)
			}
		}
		return QueryAvailabilityRequest{FacilityName: name, Days: days}, nil

	case OpBookFacility:
		user, err := r.lstring()
		if err != nil {
			return nil, err
		}
		name, err := r.lstring()
		if err != nil {
			return nil, err
		}
		t, err := r.bytes(6)
		if err != nil {
			return nil, err
		}
		return BookRequest{
			UserName:     user,
			FacilityName: name,
			StartDay:     entity.Day(t[0]),
			StartHour:    int(t[1]),
			StartMinute:  int(t[2]),
			EndDay:       entity.Day(t[3]),
			EndHour:      int(t[4]),
			EndMinute:    int(t[5]),
		}, nil

	case OpShiftBooking:
		user, err := r.lstring()
		if err != nil {
			return nil, err
		}
		id, err := r.uint32()
		if err != nil {
			return nil, err
		}
		sign, err := r.byte()
		if err != nil {
			return nil, err
		}
		offset, err := r.uint32()
		if err != nil {
			return nil, err
		}
		delta := int(offset)
		if sign == 0 {
			delta = -delta
		}
		return ShiftRequest{UserName: user, BookingID: int64(id), DeltaMinutes: delta}, nil

	case OpMonitorFacility:
		name, err := r.lstring()
		if err != nil {
			return nil, err
		}
		minutes, err := r.uint32()
		if err != nil {
			return nil, err
		}
		return MonitorRequest{
			FacilityName: name,
			Duration:     time.Duration(minutes) * time.Minute,
		}, nil

	case OpListBookings:
		user, err := r.lstring()
		if err != nil {
			return nil, err
		}
		return ListBookingsRequest{UserName: user}, nil

	case OpAccessCode:
		user, err := r.lstring()
		if err != nil {
			return nil, err
		}
		id, err := r.uint32()
		if err != nil {
			return nil, err
		}
		return AccessCodeRequest{UserName: user, BookingID: int64(id)}, nil
	}

	return nil, ErrUnknownOperation
}

// payloadReader читает поля с проверкой границ вместо чтения за пределами буфера
type payloadReader struct {
	data []byte
	off  int
}

func (r *payloadReader) byte() (byte, error) {
	if r.off+1 > len(r.data) {
		return 0, ErrTruncatedPayload
	}
	b := r.data[r.off]
	r.off++
	return b, nil
}

func (r *payloadReader) uint32() (uint32, error) {
	if r.off+4 > len(r.data) {
		return 0, ErrTruncatedPayload
	}
	v := binary.BigEndian.Uint32(r.data[r.off : r.off+4])
	r.off += 4
	return v, nil
}

func (r *payloadReader) bytes(n int) ([]byte, error) {
	if r.off+n > len(r.data) {
		return nil, ErrTruncatedPayload
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b, nil
}

// lstring читает строку с четырехбайтовым префиксом длины
func (r *payloadReader) lstring() (string, error) {
	n, err := r.uint32()
	if err != nil {
		return "", err
	}
	b, err := r.bytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
