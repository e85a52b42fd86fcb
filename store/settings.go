package store

import (
	"context"

	badger "github.com/dgraph-io/badger/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var enabledKey = MakeKey([]byte("enabled"), settingsPredicate)

// Settings persists the detection enable flag
type Settings struct {
	db             *badger.DB
	enabledDefault bool
}

// Enabled reads the flag, a flag that was never written is enabledDefault
func (s *Settings) Enabled(ctx context.Context) (bool, error) {
	enabled := s.enabledDefault
	err := s.db.View(func(txn *badger.Txn) error {
		err := getValue(txn, enabledKey, &enabled)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		return s.enabledDefault, errors.Wrap(err, "reading enabled flag")
	}
	return enabled, nil
}

// SetEnabled writes the flag, watchers are notified after commit
func (s *Settings) SetEnabled(enabled bool) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return setValue(txn, enabledKey, enabled)
	})
}

// WatchEnabled calls fn with every value written to the flag until ctx is
// done. It returns once the watch goroutine is started.
func (s *Settings) WatchEnabled(ctx context.Context, fn func(enabled bool)) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	go func() {
		err := s.db.Subscribe(ctx, func(kv *badger.KVList) error {
			for _, entry := range kv.Kv {
				// deletes publish an empty value
				if len(entry.Value) == 0 {
					fn(s.enabledDefault)
					continue
				}
				enabled, err := DecodeBool(entry.Value)
				if err != nil {
					log.Warn().Err(err).Msg("ignoring undecodable enabled flag")
					continue
				}
				fn(enabled)
			}
			return nil
		}, enabledKey)

		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			log.Error().Err(err).Msg("enabled flag watch ended")
		}
	}()
	return nil
}
