package synchronizer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Set группа синхронизаторов, которые живут и умирают вместе (партиции одного root)
type Set struct {
	members []Instance
}

// StartSet initialises every member concurrently. If any Init fails, the members
// that did start are destroyed and the error is returned.
func StartSet(ctx context.Context, members ...Instance) (*Set, error) {
	var (
		mu      sync.Mutex
		started []Instance
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, m := range members {
		g.Go(func() error {
			if err := m.Init(gctx); err != nil {
				return fmt.Errorf("synchronizer %s: %w", m.Input().Key(), err)
			}
			mu.Lock()
			started = append(started, m)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for _, m := range started {
			_ = m.Destroy(context.WithoutCancel(ctx), false)
		}
		return nil, err
	}

	return &Set{members: members}, nil
}

// Members returns the synchronizers of the set.
func (s *Set) Members() []Instance {
	return s.members
}

// Destroy stops every member; deleteCursors is passed through.
func (s *Set) Destroy(ctx context.Context, deleteCursors bool) error {
	var errs []error
	for _, m := range s.members {
		if err := m.Destroy(ctx, deleteCursors); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
