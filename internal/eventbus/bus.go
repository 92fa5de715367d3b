package eventbus

import (
	"sync"

	"github.com/oklog/ulid/v2"
)

// Bus fans published values out to every subscriber. Delivery never blocks:
// a subscriber whose buffer is full misses the value.
type Bus[T any] struct {
	mu          sync.RWMutex
	subscribers map[string]chan T
}

func New[T any]() *Bus[T] {
	return &Bus[T]{
		subscribers: make(map[string]chan T),
	}
}

func (b *Bus[T]) Subscribe(bufSize int) (string, <-chan T) {
	id := ulid.Make().String()
	ch := make(chan T, bufSize)
	b.mu.Lock()
	b.subscribers[id] = ch
	b.mu.Unlock()
	return id, ch
}

func (b *Bus[T]) Unsubscribe(id string) {
	b.mu.Lock()
	if ch, ok := b.subscribers[id]; ok {
		close(ch)
		delete(b.subscribers, id)
	}
	b.mu.Unlock()
}

// Publish reports how many subscribers accepted v.
func (b *Bus[T]) Publish(v T) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	delivered := 0
	for _, ch := range b.subscribers {
		select {
		case ch <- v:
			delivered++
		default:
			// buffer full, drop for this subscriber
		}
	}
	return delivered
}
