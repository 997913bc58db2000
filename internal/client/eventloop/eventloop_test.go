package eventloop

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoop_RunsOnInterval(t *testing.T) {
	var calls atomic.Int32
	loop := New(10*time.Millisecond, 0, func(ctx context.Context) {
		calls.Add(1)
	})
	loop.Start()
	defer loop.Stop()

	require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
}

func TestLoop_TriggerCoalesces(t *testing.T) {
	var calls, running, overlap atomic.Int32
	release := make(chan struct{})
	started := make(chan struct{}, 10)

	loop := New(time.Hour, time.Hour, func(ctx context.Context) {
		if running.Add(1) > 1 {
			overlap.Add(1)
		}
		defer running.Add(-1)
		calls.Add(1)
		started <- struct{}{}
		<-release
	})
	loop.Start()
	defer loop.Stop()

	loop.Trigger()
	<-started

	// во время выполнения: много триггеров -> один повторный запуск
	for range 10 {
		loop.Trigger()
	}
	release <- struct{}{}
	<-started
	release <- struct{}{}

	// третьего запуска быть не должно
	select {
	case <-started:
		t.Fatal("unexpected extra run")
	case <-time.After(50 * time.Millisecond):
	}

	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, int32(0), overlap.Load())
}

func TestLoop_StopSuppressesCallbacks(t *testing.T) {
	var calls atomic.Int32
	loop := New(5*time.Millisecond, 0, func(ctx context.Context) {
		calls.Add(1)
	})
	loop.Start()
	require.Eventually(t, func() bool { return calls.Load() >= 1 }, time.Second, time.Millisecond)

	loop.Stop()
	after := calls.Load()
	loop.Trigger()
	time.Sleep(30 * time.Millisecond)

	assert.Equal(t, after, calls.Load())
	// повторный Stop безопасен
	loop.Stop()
}

func TestLoop_StartIsIdempotent(t *testing.T) {
	var calls atomic.Int32
	loop := New(time.Hour, time.Hour, func(ctx context.Context) {
		calls.Add(1)
	})
	loop.Start()
	loop.Start()
	defer loop.Stop()

	loop.Trigger()
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}
