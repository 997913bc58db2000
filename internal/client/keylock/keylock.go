// Package keylock выдает именованные блокировки: одна блокировка на ключ,
// запись в карте живет только пока ее кто-то держит или ждет.
package keylock

import "sync"

type entry struct {
	mu   sync.Mutex
	refs int
}

// Locker набор блокировок по строковому ключу
type Locker struct {
	entries map[string]*entry
	mu      sync.Mutex
}

// New создает пустой набор блокировок
func New() *Locker {
	return &Locker{entries: make(map[string]*entry)}
}

// Lock acquires the lock for key and returns its release function.
func (l *Locker) Lock(key string) (unlock func()) {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{}
		l.entries[key] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Unlock()

			l.mu.Lock()
			e.refs--
			if e.refs == 0 {
				delete(l.entries, key)
			}
			l.mu.Unlock()
		})
	}
}

// Len returns the number of keys currently held or awaited.
func (l *Locker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
