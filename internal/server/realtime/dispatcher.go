// Package realtime рассылает уведомления об изменениях партиций
// открытым сокетам того же workspace.
package realtime

import (
	"context"
	"sync"

	"github.com/iudanet/gophsync/pkg/api"
)

const defaultBufferSize = 16

// Change изменение партиции workspace
type Change struct {
	WorkspaceID string
	RootID      string
	Type        api.SynchronizerType
}

// Dispatcher fan-out уведомлений подписчикам workspace.
// Publish не блокируется: если буфер подписчика полон, уведомление
// отбрасывается, в буфере уже есть необработанные уведомления.
type Dispatcher struct {
	subscribers map[string]map[int64]*subscriber
	nextID      int64
	bufferSize  int
	mu          sync.RWMutex
}

type subscriber struct {
	stream chan Change
	id     int64
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		subscribers: make(map[string]map[int64]*subscriber),
		bufferSize:  defaultBufferSize,
	}
}

// Subscribe registers a subscriber for changes of the workspace. The
// subscription ends when ctx is done or cleanup is called.
func (d *Dispatcher) Subscribe(ctx context.Context, workspaceID string) (<-chan Change, func()) {
	sub := &subscriber{stream: make(chan Change, d.bufferSize)}

	d.mu.Lock()
	d.nextID++
	sub.id = d.nextID
	if _, ok := d.subscribers[workspaceID]; !ok {
		d.subscribers[workspaceID] = make(map[int64]*subscriber)
	}
	d.subscribers[workspaceID][sub.id] = sub
	d.mu.Unlock()

	var once sync.Once
	cleanup := func() {
		once.Do(func() { d.unsubscribe(workspaceID, sub.id) })
	}
	go func() {
		<-ctx.Done()
		cleanup()
	}()
	return sub.stream, cleanup
}

// Publish delivers the change to every subscriber of its workspace.
func (d *Dispatcher) Publish(change Change) {
	if change.WorkspaceID == "" {
		return
	}

	d.mu.RLock()
	subs := make([]*subscriber, 0, len(d.subscribers[change.WorkspaceID]))
	for _, sub := range d.subscribers[change.WorkspaceID] {
		subs = append(subs, sub)
	}
	d.mu.RUnlock()

	for _, sub := range subs {
		select {
		case sub.stream <- change:
		default:
		}
	}
}

func (d *Dispatcher) unsubscribe(workspaceID string, id int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	subs := d.subscribers[workspaceID]
	if subs == nil {
		return
	}
	delete(subs, id)
	if len(subs) == 0 {
		delete(d.subscribers, workspaceID)
	}
}
