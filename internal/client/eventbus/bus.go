// Package eventbus реализует шину публикации/подписки между компонентами клиента.
//
// Обработчики вызываются последовательно одной горутиной-посредником, поэтому
// два обработчика никогда не выполняются одновременно. События, опубликованные
// во время обработки, попадают в очередь и доставляются следующим проходом.
package eventbus

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/iudanet/gophsync/internal/client/events"
)

// Handler обработчик события. Не должен блокироваться надолго.
type Handler func(event events.Event)

// Bus шина событий. Создается явно и передается компонентам.
type Bus struct {
	logger      *slog.Logger
	subscribers map[uint64]Handler
	wake        chan struct{}
	done        chan struct{}
	closed      chan struct{}
	queue       []events.Event
	nextID      uint64
	mu          sync.Mutex
	closeOnce   sync.Once
}

// New создает шину и запускает посредника
func New(logger *slog.Logger) *Bus {
	b := &Bus{
		logger:      logger,
		subscribers: make(map[uint64]Handler),
		wake:        make(chan struct{}, 1),
		done:        make(chan struct{}),
		closed:      make(chan struct{}),
	}
	go b.mediate()
	return b
}

// Subscription дескриптор подписки
type Subscription struct {
	bus  *Bus
	once sync.Once
	id   uint64
}

// Unsubscribe removes the handler. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		s.bus.mu.Lock()
		delete(s.bus.subscribers, s.id)
		s.bus.mu.Unlock()
	})
}

// Subscribe registers a handler for every published event.
func (b *Bus) Subscribe(handler Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.subscribers[b.nextID] = handler
	return &Subscription{bus: b, id: b.nextID}
}

// Publish enqueues the event and returns immediately.
func (b *Bus) Publish(event events.Event) {
	b.mu.Lock()
	b.queue = append(b.queue, event)
	b.mu.Unlock()

	select {
	case b.wake <- struct{}{}:
	default:
	}
}

// Close stops the mediator after the queue currently being processed.
func (b *Bus) Close() {
	b.closeOnce.Do(func() {
		close(b.done)
		<-b.closed
	})
}

func (b *Bus) mediate() {
	defer close(b.closed)
	for {
		select {
		case <-b.done:
			return
		case <-b.wake:
			b.drain()
		}
	}
}

func (b *Bus) drain() {
	for {
		b.mu.Lock()
		pending := b.queue
		b.queue = nil
		b.mu.Unlock()

		if len(pending) == 0 {
			return
		}
		for _, event := range pending {
			for _, handler := range b.handlers() {
				b.dispatch(handler, event)
			}
		}
	}
}

// handlers returns a snapshot ordered by subscription time.
func (b *Bus) handlers() []Handler {
	b.mu.Lock()
	defer b.mu.Unlock()

	ids := make([]uint64, 0, len(b.subscribers))
	for id := range b.subscribers {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	result := make([]Handler, 0, len(ids))
	for _, id := range ids {
		result = append(result, b.subscribers[id])
	}
	return result
}

func (b *Bus) dispatch(handler Handler, event events.Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				"event", event.Name(),
				"panic", r,
			)
		}
	}()
	handler(event)
}
