// Package monitor ведет подписки клиентов на изменения объектов
package monitor

import (
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ds124wfegd/facility-booking/internal/protocol"
)

// Subscription — регистрация клиента на уведомления об объекте.
// Исходный конверт запроса сохраняется, чтобы уведомления кодировались
// как ответы на первоначальный запрос мониторинга.
type Subscription struct {
	ID           uuid.UUID
	FacilityName string
	ClientAddr   *net.UDPAddr
	ExpiresAt    time.Time
	Request      *protocol.Message
}

// Registry — мультимап объект -> подписки под мьютексом.
// Читается циклом рассылки одновременно с записью из диспетчера.
// Дубликаты по адресу допустимы и истекают независимо.
type Registry struct {
	mu          sync.Mutex
	subs        map[string][]*Subscription
	maxDuration time.Duration
	now         func() time.Time
}

func NewRegistry(maxDuration time.Duration) *Registry {
	return &Registry{
		subs:        make(map[string][]*Subscription),
		maxDuration: maxDuration,
		now:         time.Now,
	}
}

// Subscribe регистрирует подписку со сроком now + duration.
// Длительность сверх настроенного максимума усекается.
func (r *Registry) Subscribe(facilityName string, addr *net.UDPAddr, duration time.Duration, req *protocol.Message) *Subscription {
	if r.maxDuration > 0 && duration > r.maxDuration {
		duration = r.maxDuration
	}

	sub := &Subscription{
		ID:           uuid.New(),
		FacilityName: facilityName,
		ClientAddr:   addr,
		ExpiresAt:    r.now().Add(duration),
		Request:      req,
	}

	r.mu.Lock()
	r.subs[facilityName] = append(r.subs[facilityName], sub)
	r.mu.Unlock()

	return sub
}

// ResolveLive возвращает подписки на объект, не истекшие к моменту now.
// Истекшие пропускаются, но не удаляются: их убирает Prune.
func (r *Registry) ResolveLive(facilityName string, now time.Time) []*Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()

	var live []*Subscription
	for _, sub := range r.subs[facilityName] {
		if now.Before(sub.ExpiresAt) {
			live = append(live, sub)
		}
	}
	return live
}

// Prune удаляет истекшие подписки и возвращает их количество
func (r *Registry) Prune(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for name, subs := range r.subs {
		kept := subs[:0]
		for _, sub := range subs {
			if now.Before(sub.ExpiresAt) {
				kept = append(kept, sub)
			} else {
				removed++
			}
		}
		if len(kept) == 0 {
			delete(r.subs, name)
		} else {
			r.subs[name] = kept
		}
	}
	return removed
}

// CountLive возвращает число живых подписок (для статистики)
func (r *Registry) CountLive(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, subs := range r.subs {
		for _, sub := range subs {
			if now.Before(sub.ExpiresAt) {
				n++
			}
		}
	}
	return n
}
