// Package eventloop запускает callback по интервалу и по требованию.
//
// Callback никогда не выполняется параллельно сам с собой: Trigger во время
// выполнения оставляет ровно один отложенный запуск в слоте на одно значение.
package eventloop

import (
	"context"
	"sync"
	"time"
)

// Loop периодический планировщик с внеочередным запуском
type Loop struct {
	callback     func(ctx context.Context)
	trigger      chan struct{}
	cancel       context.CancelFunc
	done         chan struct{}
	interval     time.Duration
	initialDelay time.Duration
	mu           sync.Mutex
}

// New создает остановленный цикл
func New(interval, initialDelay time.Duration, callback func(ctx context.Context)) *Loop {
	return &Loop{
		interval:     interval,
		initialDelay: initialDelay,
		callback:     callback,
		trigger:      make(chan struct{}, 1),
	}
}

// Start arms the periodic timer. Calling Start on a running loop is a no-op.
func (l *Loop) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	l.done = make(chan struct{})
	go l.run(ctx, l.done)
}

// Trigger requests an out-of-band run. Repeated triggers coalesce into one.
func (l *Loop) Trigger() {
	select {
	case l.trigger <- struct{}{}:
	default:
	}
}

// Stop cancels the timer and waits for an in-flight callback to return.
func (l *Loop) Stop() {
	l.mu.Lock()
	cancel, done := l.cancel, l.done
	l.cancel, l.done = nil, nil
	l.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (l *Loop) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	timer := time.NewTimer(l.initialDelay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		case <-l.trigger:
		}

		if ctx.Err() != nil {
			return
		}
		l.callback(ctx)
		timer.Reset(l.interval)
	}
}
