// Package notifier рассылает уведомления об изменениях бронирований
// подписчикам мониторинга
package notifier

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ds124wfegd/facility-booking/internal/entity"
	"github.com/ds124wfegd/facility-booking/internal/monitor"
	"github.com/ds124wfegd/facility-booking/internal/obs"
	"github.com/ds124wfegd/facility-booking/internal/protocol"
)

// PacketWriter — отправка датаграмм; *net.UDPConn реализует интерфейс
type PacketWriter interface {
	WriteToUDP(b []byte, addr *net.UDPAddr) (int, error)
}

// Notifier потребляет поток изменений хранилища и доставляет каждое
// событие живым подписчикам затронутого объекта. Это широковещательная
// рассылка: записи в кэш ответов для уведомлений не создаются.
type Notifier struct {
	events   <-chan entity.BookingChange
	registry *monitor.Registry
	conn     PacketWriter
	metrics  *obs.Metrics
	now      func() time.Time
}

func New(events <-chan entity.BookingChange, registry *monitor.Registry, conn PacketWriter, metrics *obs.Metrics) *Notifier {
	return &Notifier{
		events:   events,
		registry: registry,
		conn:     conn,
		metrics:  metrics,
		now:      time.Now,
	}
}

// Run читает события до отмены контекста или закрытия канала событий
func (n *Notifier) Run(ctx context.Context) {
	logrus.Info("Notification fan-out started")

	for {
		select {
		case <-ctx.Done():
			logrus.Info("Notification fan-out stopped")
			return
		case change, ok := <-n.events:
			if !ok {
				logrus.Info("Change stream closed, notification fan-out stopped")
				return
			}
			n.Dispatch(change)
		}
	}
}

// Dispatch доставляет одно событие всем живым подписчикам объекта.
// События по неподтвержденным бронированиям клиентам не видны.
// Уведомление кодируется как ответ на исходный запрос мониторинга,
// чтобы клиент сопоставил его со своей подпиской.
func (n *Notifier) Dispatch(change entity.BookingChange) {
	if change.Status != entity.BookingStatusBooked {
		return
	}

	subs := n.registry.ResolveLive(change.FacilityName, n.now())
	if len(subs) == 0 {
		return
	}

	text := formatChange(change)
	sent := 0
	for _, sub := range subs {
		push := protocol.EncodeReply(sub.Request, protocol.CodeOK, []byte(text))
		if _, err := n.conn.WriteToUDP(push, sub.ClientAddr); err != nil {
			logrus.WithFields(logrus.Fields{
				"subscription": sub.ID.String(),
				"client":       sub.ClientAddr.String(),
			}).Errorf("Failed to send notification: %v", err)
			continue
		}
		sent++
	}

	if n.metrics != nil {
		n.metrics.NotificationsTotal.Add(float64(sent))
	}
	logrus.WithFields(logrus.Fields{
		"facility": change.FacilityName,
		"action":   change.Action,
		"sent":     sent,
	}).Info("Change event fanned out")
}

func formatChange(change entity.BookingChange) string {
	span := fmt.Sprintf("%s %02d:%02d-%02d:%02d",
		change.StartDay,
		change.StartHour, change.StartMinute,
		change.EndHour, change.EndMinute)

	switch change.Action {
	case entity.ChangeActionInsert:
		return fmt.Sprintf("New booking %d on %s: %s", change.BookingID, change.FacilityName, span)
	case entity.ChangeActionUpdate:
		return fmt.Sprintf("Booking %d on %s moved to %s", change.BookingID, change.FacilityName, span)
	case entity.ChangeActionDelete:
		return fmt.Sprintf("Booking %d on %s removed (%s)", change.BookingID, change.FacilityName, span)
	default:
		return fmt.Sprintf("Booking %d on %s changed: %s", change.BookingID, change.FacilityName, span)
	}
}
