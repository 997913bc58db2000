// Package backoff вычисляет задержку повторных попыток по числу подряд идущих ошибок.
package backoff

import (
	"sync"
	"time"
)

const (
	DefaultBase = time.Second
	DefaultMax  = 5 * time.Minute
)

// Option настраивает Calculator
type Option func(*Calculator)

// WithClock подменяет источник времени (для тестов)
func WithClock(now func() time.Time) Option {
	return func(c *Calculator) {
		c.now = now
	}
}

// WithBase задает задержку после первой ошибки
func WithBase(base time.Duration) Option {
	return func(c *Calculator) {
		if base > 0 {
			c.base = base
		}
	}
}

// WithMax задает верхнюю границу задержки
func WithMax(limit time.Duration) Option {
	return func(c *Calculator) {
		if limit > 0 {
			c.max = limit
		}
	}
}

// Calculator хранит число последовательных ошибок и момент, с которого разрешена следующая попытка.
// Задержка после n-й ошибки: min(base * 2^(n-1), max).
type Calculator struct {
	nextAttemptAt time.Time
	now           func() time.Time
	base          time.Duration
	max           time.Duration
	failures      int
	mu            sync.Mutex
}

// New создает калькулятор со значениями по умолчанию
func New(opts ...Option) *Calculator {
	c := &Calculator{
		now:  time.Now,
		base: DefaultBase,
		max:  DefaultMax,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CanRetry reports whether the backoff window has elapsed.
func (c *Calculator) CanRetry() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.now().Before(c.nextAttemptAt)
}

// IncreaseError records a failure and pushes the next eligible time forward.
func (c *Calculator) IncreaseError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures++
	c.nextAttemptAt = c.now().Add(c.delay(c.failures))
}

// Reset clears the failure count after a success.
func (c *Calculator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures = 0
	c.nextAttemptAt = time.Time{}
}

// Failures returns the number of consecutive failures.
func (c *Calculator) Failures() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failures
}

// NextAttemptAt returns the earliest time a retry is allowed.
func (c *Calculator) NextAttemptAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nextAttemptAt
}

// Delay returns the wait after the n-th consecutive failure.
func (c *Calculator) Delay(failures int) time.Duration {
	return c.delay(failures)
}

func (c *Calculator) delay(failures int) time.Duration {
	if failures <= 0 {
		return 0
	}
	d := c.base
	for i := 1; i < failures; i++ {
		// удвоение с проверкой переполнения
		if d >= c.max/2 {
			return c.max
		}
		d *= 2
	}
	return min(d, c.max)
}
