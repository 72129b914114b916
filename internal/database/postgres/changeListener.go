package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/ds124wfegd/facility-booking/internal/entity"
)

// pingInterval — предел ожидания уведомления перед проверкой соединения
const pingInterval = 90 * time.Second

// ChangeListener доставляет события изменения бронирований из канала
// LISTEN/NOTIFY Postgres. События публикует триггер notify_booking_change
// на таблице bookings (см. pkg/postgres).
type ChangeListener struct {
	listener *pq.Listener
	channel  string
	events   chan entity.BookingChange
}

func NewChangeListener(dsn, channel string, minReconnect, maxReconnect time.Duration) (*ChangeListener, error) {
	listener := pq.NewListener(dsn, minReconnect, maxReconnect, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			logrus.Errorf("Change listener connection event %d: %v", ev, err)
		}
	})

	if err := listener.Listen(channel); err != nil {
		listener.Close()
		return nil, err
	}

	return &ChangeListener{
		listener: listener,
		channel:  channel,
		events:   make(chan entity.BookingChange, 64),
	}, nil
}

// Events возвращает канал событий, потребляемый циклом рассылки
func (l *ChangeListener) Events() <-chan entity.BookingChange {
	return l.events
}

// Run перекачивает уведомления Postgres в канал событий до отмены контекста.
// При затишье соединение периодически проверяется ping-ом.
func (l *ChangeListener) Run(ctx context.Context) {
	logrus.Info("Booking change listener started")
	defer close(l.events)
	defer l.listener.Close()

	for {
		select {
		case <-ctx.Done():
			logrus.Info("Booking change listener stopped")
			return

		case n := <-l.listener.Notify:
			if n == nil {
				// переподключение: lib/pq шлет nil после восстановления
				continue
			}
			var change entity.BookingChange
			if err := json.Unmarshal([]byte(n.Extra), &change); err != nil {
				logrus.Errorf("Failed to decode booking change payload: %v", err)
				continue
			}
			select {
			case l.events <- change:
			case <-ctx.Done():
				logrus.Info("Booking change listener stopped")
				return
			}

		case <-time.After(pingInterval):
			if err := l.listener.Ping(); err != nil {
				logrus.Errorf("Change listener ping failed: %v", err)
			}
		}
	}
}
