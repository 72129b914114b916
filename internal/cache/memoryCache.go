package cache

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type memoryEntry struct {
	reply    []byte
	storedAt time.Time
}

// MemoryReplyCache — кэш в памяти под мьютексом с ленивой проверкой TTL.
// Используется, когда Redis не настроен; истекшие записи убирает Sweep.
type MemoryReplyCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryReplyCache(ttl time.Duration) *MemoryReplyCache {
	return &MemoryReplyCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func replyKey(addr string, requestID uint32) string {
	return fmt.Sprintf("%s:%d", addr, requestID)
}

func (c *MemoryReplyCache) Lookup(_ context.Context, addr string, requestID uint32) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[replyKey(addr, requestID)]
	if !ok {
		return nil, false, nil
	}
	if c.now().Sub(e.storedAt) >= c.ttl {
		delete(c.entries, replyKey(addr, requestID))
		return nil, false, nil
	}
	return e.reply, true, nil
}

func (c *MemoryReplyCache) Record(_ context.Context, addr string, requestID uint32, reply []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[replyKey(addr, requestID)] = memoryEntry{reply: reply, storedAt: c.now()}
	return nil
}

// Sweep удаляет истекшие записи и возвращает их количество
func (c *MemoryReplyCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	cutoff := c.now().Add(-c.ttl)
	for k, e := range c.entries {
		if e.storedAt.Before(cutoff) || e.storedAt.Equal(cutoff) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// Len возвращает текущее число записей (для страницы статистики)
func (c *MemoryReplyCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
