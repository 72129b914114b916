package protocol

import (
	"encoding/binary"
	"strconv"

	"github.com/ds124wfegd/facility-booking/internal/entity"
)

// EncodeAvailability кодирует ответ операции 1: количество дней, затем
// для каждого дня — номер дня, число интервалов и по четыре байта на
// интервал (час и минута начала, час и минута конца).
func EncodeAvailability(days []entity.DayAvailability) []byte {
	buf := []byte{byte(len(days))}
	for _, d := range days {
		buf = append(buf, byte(d.Day), byte(len(d.Slots)))
		for _, s := range d.Slots {
			buf = append(buf,
				byte(s.Start/100), byte(s.Start%100),
				byte(s.End/100), byte(s.End%100),
			)
		}
	}
	return buf
}

// EncodeBookResult кодирует ответ операции 2: байт статуса и строка
// результата — идентификатор подтверждения либо причина отказа.
func EncodeBookResult(status byte, result string) []byte {
	buf := []byte{status}
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(result)))
	return append(buf, result...)
}

// EncodeShiftResult кодирует ответ операции 3: шесть байт нового времени
func EncodeShiftResult(b *entity.Booking) []byte {
	return []byte{
		byte(b.StartDay), byte(b.StartHour), byte(b.StartMinute),
		byte(b.EndDay), byte(b.EndHour), byte(b.EndMinute),
	}
}

// EncodeUserBookings кодирует ответ операции 5: счетчик, затем на каждое
// бронирование пять байт времени, идентификатор и имя объекта со
// однобайтовыми префиксами длины.
func EncodeUserBookings(rows []*entity.UserBooking) []byte {
	buf := []byte{byte(len(rows))}
	for _, row := range rows {
		buf = append(buf,
			byte(row.StartDay),
			byte(row.StartHour), byte(row.StartMinute),
			byte(row.EndHour), byte(row.EndMinute),
		)
		id := strconv.FormatInt(row.ID, 10)
		buf = append(buf, byte(len(id)))
		buf = append(buf, id...)
		buf = append(buf, byte(len(row.FacilityName)))
		buf = append(buf, row.FacilityName...)
	}
	return buf
}

// EncodeAccessCode кодирует ответ операции 6: код с байтовым префиксом длины
func EncodeAccessCode(code string) []byte {
	buf := []byte{byte(len(code))}
	return append(buf, code...)
}
