package session

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"autoshop/pkg/domain/model"
)

// Broker fans session events out to subscribers. Each subscription lives exactly as long
// as the context it was created with.
type Broker struct {
	mu          sync.Mutex
	subscribers map[int]chan model.SessionEvent
	nextID      int
	buffer      int
	closed      bool
	done        chan struct{}
	watchers    sync.WaitGroup
}

func NewBroker(buffer int) *Broker {
	if buffer < 1 {
		buffer = 1
	}
	return &Broker{
		subscribers: make(map[int]chan model.SessionEvent),
		buffer:      buffer,
		done:        make(chan struct{}),
	}
}

// Subscribe returns a stream that is closed once ctx is done or the broker is closed.
// The goroutine watching ctx ends in either case.
func (b *Broker) Subscribe(ctx context.Context) <-chan model.SessionEvent {
	ch := make(chan model.SessionEvent, b.buffer)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch
	}
	id := b.nextID
	b.nextID++
	b.subscribers[id] = ch
	b.watchers.Add(1)
	b.mu.Unlock()

	go func() {
		defer b.watchers.Done()
		select {
		case <-ctx.Done():
			b.unsubscribe(id)
		case <-b.done:
		}
	}()
	return ch
}

// Publish never blocks. A subscriber with a full buffer misses the event.
func (b *Broker) Publish(event model.SessionEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
			log.WithFields(log.Fields{"subscriber": id, "kind": event.Kind}).Warn("session event dropped")
		}
	}
}

func (b *Broker) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}

func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	close(b.done)
	for id, ch := range b.subscribers {
		delete(b.subscribers, id)
		close(ch)
	}
}

func (b *Broker) unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subscribers[id]; ok {
		delete(b.subscribers, id)
		close(ch)
	}
}
