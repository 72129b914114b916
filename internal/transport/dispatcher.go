package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ds124wfegd/facility-booking/internal/cache"
	"github.com/ds124wfegd/facility-booking/internal/entity"
	"github.com/ds124wfegd/facility-booking/internal/monitor"
	"github.com/ds124wfegd/facility-booking/internal/obs"
	"github.com/ds124wfegd/facility-booking/internal/protocol"
	"github.com/ds124wfegd/facility-booking/internal/service"
)

const maxDatagramSize = 1024

// PacketConn — операции UDP-сокета, нужные диспетчеру; *net.UDPConn их реализует
type PacketConn interface {
	ReadFromUDP(b []byte) (int, *net.UDPAddr, error)
	WriteToUDP(b []byte, addr *net.UDPAddr) (int, error)
	SetReadDeadline(t time.Time) error
}

// Dispatcher принимает датаграммы, применяет дедупликацию и направляет
// запросы в сервис бронирований или реестр подписок
type Dispatcher struct {
	conn         PacketConn
	bookings     service.BookingService
	registry     *monitor.Registry
	replies      cache.ReplyCache
	metrics      *obs.Metrics
	pollInterval time.Duration
}

func NewDispatcher(
	conn PacketConn,
	bookings service.BookingService,
	registry *monitor.Registry,
	replies cache.ReplyCache,
	metrics *obs.Metrics,
	pollInterval time.Duration,
) *Dispatcher {
	return &Dispatcher{
		conn:         conn,
		bookings:     bookings,
		registry:     registry,
		replies:      replies,
		metrics:      metrics,
		pollInterval: pollInterval,
	}
}

// Run обрабатывает датаграммы по одной до отмены контекста.
// Чтение идет с дедлайном в один интервал опроса, поэтому остановка
// замечается не позже чем через интервал.
func (d *Dispatcher) Run(ctx context.Context) {
	logrus.Info("UDP dispatcher started")
	buf := make([]byte, maxDatagramSize)

	for {
		select {
		case <-ctx.Done():
			logrus.Info("UDP dispatcher stopped")
			return
		default:
		}

		if err := d.conn.SetReadDeadline(time.Now().Add(d.pollInterval)); err != nil {
			logrus.Errorf("Failed to set read deadline: %v", err)
			return
		}

		n, addr, err := d.conn.ReadFromUDP(buf)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			logrus.Errorf("ReadFromUDP error: %v", err)
			continue
		}

		data := make([]byte, n)
		copy(data, buf[:n])
		d.HandlePacket(ctx, data, addr)
	}
}

// HandlePacket обрабатывает одну датаграмму: декодирование, дедупликация,
// выполнение операции, отправка ответа. Некорректные датаграммы
// отбрасываются; при сбое хранилища ответ не отправляется — восстановление
// обеспечивает ретрансляция клиента.
func (d *Dispatcher) HandlePacket(ctx context.Context, data []byte, addr *net.UDPAddr) {
	start := time.Now()

	msg, err := protocol.Decode(data)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"client": addr.String(),
			"size":   len(data),
		}).Warn("Dropped undersized datagram")
		d.countResult("unknown", "dropped")
		return
	}

	req, err := protocol.ParseRequest(msg)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"client":     addr.String(),
			"op":         msg.Operation,
			"request_id": msg.RequestID,
			"error":      err.Error(),
		}).Warn("Dropped malformed request")
		d.countResult(opName(msg.Operation), "dropped")
		return
	}

	entry := logrus.WithFields(logrus.Fields{
		"op":         opName(msg.Operation),
		"request_id": msg.RequestID,
		"client":     addr.String(),
	})

	// Все операции, кроме запроса доступности, имеют побочные эффекты
	// и проходят проверку дедупликации до какой-либо работы
	dedup := msg.Operation != protocol.OpQueryAvailability
	if dedup {
		cached, hit, err := d.replies.Lookup(ctx, addr.String(), msg.RequestID)
		if err != nil {
			entry.Errorf("Reply cache lookup failed: %v", err)
		}
		if hit {
			if _, err := d.conn.WriteToUDP(cached, addr); err != nil {
				entry.Errorf("Failed to resend cached reply: %v", err)
			}
			if d.metrics != nil {
				d.metrics.DedupHitsTotal.Inc()
			}
			entry.Info("Retransmission answered from reply cache")
			return
		}
	}

	reply, result := d.process(ctx, msg, req, addr)
	if reply == nil {
		entry.WithField("result", result).Error("Request aborted, no reply sent")
		d.countResult(opName(msg.Operation), "error")
		return
	}

	if dedup {
		if err := d.replies.Record(ctx, addr.String(), msg.RequestID, reply); err != nil {
			entry.Errorf("Reply cache record failed: %v", err)
		}
	}

	if _, err := d.conn.WriteToUDP(reply, addr); err != nil {
		entry.Errorf("Failed to send reply: %v", err)
		return
	}

	d.countResult(opName(msg.Operation), result)
	if d.metrics != nil {
		d.metrics.ReplyLatencyMS.WithLabelValues(opName(msg.Operation)).
			Observe(float64(time.Since(start).Milliseconds()))
	}
	entry.WithFields(logrus.Fields{
		"result":   result,
		"duration": time.Since(start),
	}).Info("Request processed")
}

// process выполняет операцию и возвращает готовый ответ.
// nil означает прерывание без ответа (сбой хранилища).
func (d *Dispatcher) process(ctx context.Context, msg *protocol.Message, req protocol.Request, addr *net.UDPAddr) ([]byte, string) {
	switch r := req.(type) {
	case protocol.QueryAvailabilityRequest:
		views, err := d.bookings.Availability(ctx, r.FacilityName, r.Days)
		if err != nil {
			return nil, err.Error()
		}
		return protocol.EncodeReply(msg, protocol.CodeOK, protocol.EncodeAvailability(views)), "success"

	case protocol.BookRequest:
		booking, err := d.bookings.Book(ctx, &service.BookRequest{
			UserName:     r.UserName,
			FacilityName: r.FacilityName,
			StartDay:     r.StartDay,
			StartHour:    r.StartHour,
			StartMinute:  r.StartMinute,
			EndDay:       r.EndDay,
			EndHour:      r.EndHour,
			EndMinute:    r.EndMinute,
		})
		switch {
		case err == nil:
			payload := protocol.EncodeBookResult(0, strconv.FormatInt(booking.ID, 10))
			return protocol.EncodeReply(msg, protocol.CodeOK, payload), "success"
		case errors.Is(err, entity.ErrBookingConflict):
			payload := protocol.EncodeBookResult(1, err.Error())
			return protocol.EncodeReply(msg, protocol.CodeConflict, payload), "conflict"
		case errors.Is(err, entity.ErrEndBeforeStart), errors.Is(err, entity.ErrInvalidInput):
			payload := protocol.EncodeBookResult(1, err.Error())
			return protocol.EncodeReply(msg, protocol.CodeValidation, payload), "invalid"
		default:
			return nil, err.Error()
		}

	case protocol.ShiftRequest:
		booking, err := d.bookings.Shift(ctx, r.UserName, r.BookingID, r.DeltaMinutes)
		switch {
		case err == nil:
			return protocol.EncodeReply(msg, protocol.CodeOK, protocol.EncodeShiftResult(booking)), "success"
		case errors.Is(err, entity.ErrNotOwner):
			return protocol.EncodeReply(msg, protocol.CodeNotOwner, nil), "not_owner"
		case errors.Is(err, entity.ErrInvalidShift):
			return protocol.EncodeReply(msg, protocol.CodeValidation, nil), "invalid"
		case errors.Is(err, entity.ErrBookingNotFound):
			return protocol.EncodeReply(msg, protocol.CodeNotFound, nil), "not_found"
		default:
			return nil, err.Error()
		}

	case protocol.MonitorRequest:
		sub := d.registry.Subscribe(r.FacilityName, addr, r.Duration, msg)
		if d.metrics != nil {
			d.metrics.SubscriptionsLive.Set(float64(d.registry.CountLive(time.Now())))
		}
		logrus.WithFields(logrus.Fields{
			"subscription": sub.ID.String(),
			"facility":     r.FacilityName,
			"expires_at":   sub.ExpiresAt,
		}).Info("Monitor subscription registered")
		text := fmt.Sprintf("Monitoring %s for %d minutes.", r.FacilityName, int(r.Duration.Minutes()))
		return protocol.EncodeReply(msg, protocol.CodeOK, []byte(text)), "success"

	case protocol.ListBookingsRequest:
		rows, err := d.bookings.UserBookings(ctx, r.UserName)
		if err != nil {
			return nil, err.Error()
		}
		return protocol.EncodeReply(msg, protocol.CodeOK, protocol.EncodeUserBookings(rows)), "success"

	case protocol.AccessCodeRequest:
		code, err := d.bookings.IssueAccessCode(ctx, r.UserName, r.BookingID)
		switch {
		case err == nil:
			return protocol.EncodeReply(msg, protocol.CodeOK, protocol.EncodeAccessCode(code)), "success"
		case errors.Is(err, entity.ErrAccessCodeIssued):
			return protocol.EncodeReply(msg, protocol.CodeConflict, nil), "already_issued"
		case errors.Is(err, entity.ErrNotOwner):
			return protocol.EncodeReply(msg, protocol.CodeValidation, nil), "not_owner"
		case errors.Is(err, entity.ErrBookingNotFound):
			return protocol.EncodeReply(msg, protocol.CodeNotFound, nil), "not_found"
		default:
			return nil, err.Error()
		}
	}

	// недостижимо: ParseRequest возвращает только перечисленные варианты
	return nil, "unknown operation"
}

func (d *Dispatcher) countResult(op, result string) {
	if d.metrics != nil {
		d.metrics.RequestsTotal.WithLabelValues(op, result).Inc()
	}
}

func opName(op byte) string {
	switch op {
	case protocol.OpQueryAvailability:
		return "query_availability"
	case protocol.OpBookFacility:
		return "book_facility"
	case protocol.OpShiftBooking:
		return "shift_booking"
	case protocol.OpMonitorFacility:
		return "monitor_facility"
	case protocol.OpListBookings:
		return "list_bookings"
	case protocol.OpAccessCode:
		return "access_code"
	default:
		return "unknown"
	}
}
