package realtime

import (
	"context"
	"sync"

	"mediconnect/internal/domain/entity"
)

// MemoryBroker fans change events out to in-process subscribers. It is used
// when Redis pub/sub is not wanted, such as in tests and single-node setups.
type MemoryBroker struct {
	mu      sync.Mutex
	clients map[string]map[chan entity.ChangeEvent]struct{}
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{clients: make(map[string]map[chan entity.ChangeEvent]struct{})}
}

// Publish never blocks: a subscriber whose buffer is full misses the event.
func (b *MemoryBroker) Publish(ctx context.Context, event entity.ChangeEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for client := range b.clients[event.Table] {
		select {
		case client <- event:
		default:
		}
	}
	return nil
}

func (b *MemoryBroker) Subscribe(ctx context.Context, table string) (<-chan entity.ChangeEvent, func() error, error) {
	client := make(chan entity.ChangeEvent, 16)

	b.mu.Lock()
	if b.clients[table] == nil {
		b.clients[table] = make(map[chan entity.ChangeEvent]struct{})
	}
	b.clients[table][client] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	unsubscribe := func() error {
		once.Do(func() {
			b.mu.Lock()
			delete(b.clients[table], client)
			close(client)
			b.mu.Unlock()
		})
		return nil
	}

	go func() {
		<-ctx.Done()
		unsubscribe()
	}()

	return client, unsubscribe, nil
}
