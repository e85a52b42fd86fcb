package mock

import (
	"context"
	"sync"
)

// Settings with a controllable enable flag
type Settings struct {
	lock     sync.Mutex
	watchers []func(enabled bool)

	EnabledFn     func(ctx context.Context) (bool, error)
	EnabledCalled bool

	WatchEnabledFn     func(ctx context.Context, fn func(enabled bool)) error
	WatchEnabledCalled bool
}

// Enabled calls EnabledFn
func (s *Settings) Enabled(ctx context.Context) (bool, error) {
	s.EnabledCalled = true
	return s.EnabledFn(ctx)
}

// WatchEnabled calls WatchEnabledFn
func (s *Settings) WatchEnabled(ctx context.Context, fn func(enabled bool)) error {
	s.WatchEnabledCalled = true
	return s.WatchEnabledFn(ctx, fn)
}

// Toggle delivers enabled to every registered watcher
func (s *Settings) Toggle(enabled bool) {
	s.lock.Lock()
	watchers := make([]func(bool), len(s.watchers))
	copy(watchers, s.watchers)
	s.lock.Unlock()

	for _, fn := range watchers {
		fn(enabled)
	}
}

// Watchers number of registered watch callbacks
func (s *Settings) Watchers() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.watchers)
}

// MakeMockSettings returns settings reporting enabled, or err if set. Watch
// callbacks are registered for Toggle.
func MakeMockSettings(enabled bool, err error) *Settings {
	s := &Settings{}
	s.EnabledFn = func(ctx context.Context) (bool, error) {
		if err != nil {
			return false, err
		}
		return enabled, nil
	}
	s.WatchEnabledFn = func(ctx context.Context, fn func(enabled bool)) error {
		s.lock.Lock()
		s.watchers = append(s.watchers, fn)
		s.lock.Unlock()
		return nil
	}
	return s
}
