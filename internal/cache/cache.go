// Package cache хранит отправленные ответы для повторной выдачи
// ретрансляций без повторного выполнения операции.
package cache

import "context"

// ReplyCache — кэш ответов, ключ — адрес клиента и requestID.
// Записи живут ограниченное время (TTL задается конфигурацией);
// в пределах этого окна повторный запрос получает байт-в-байт тот же ответ.
type ReplyCache interface {
	// Lookup возвращает ранее отправленные байты ответа, если они есть
	Lookup(ctx context.Context, addr string, requestID uint32) ([]byte, bool, error)

	// Record сохраняет байты свежесформированного ответа.
	// Вызывается один раз на вычисленный ответ, никогда — при попадании.
	Record(ctx context.Context, addr string, requestID uint32, reply []byte) error
}
