// Package store persists the enable flag, domain lists, counters and threat
// history in badger
package store

import (
	"os"

	badger "github.com/dgraph-io/badger/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Store wraps the badger database shared by settings, lists and counters
type Store struct {
	DB        *badger.DB
	filepath  string
	threatSeq *badger.Sequence
}

// New store at filepath, an empty path keeps everything in memory
func New(filepath string) *Store {
	return &Store{filepath: filepath}
}

// Init opens the database
func (s *Store) Init() error {
	var err error

	if s.filepath == "" {
		s.DB, err = badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(newBadgerLogger()))
		if err != nil {
			return errors.Wrap(err, "opening in memory store")
		}
		return s.initSequences()
	}

	if err = os.MkdirAll(s.filepath, 0700); err != nil {
		return errors.Wrap(err, "creating store directory")
	}

	opts := badger.DefaultOptions(s.filepath).WithLogger(newBadgerLogger())
	s.DB, err = badger.Open(opts)

	if errors.Is(err, badger.ErrTruncateNeeded) {
		log.Warn().Msg("there was a failure re-opening database, trying to recover")
		s.DB, err = badger.Open(opts.WithTruncate(true))
	}

	if err != nil {
		return errors.Wrap(err, "opening store")
	}
	return s.initSequences()
}

func (s *Store) initSequences() error {
	var err error
	s.threatSeq, err = s.DB.GetSequence(MakeKey([]byte("threat"), "seq"), 64)
	return errors.Wrap(err, "allocating threat sequence")
}

// Settings backed by this store. enabledDefault is returned while the flag
// has never been written.
func (s *Store) Settings(enabledDefault bool) *Settings {
	return &Settings{db: s.DB, enabledDefault: enabledDefault}
}

// Lists backed by this store
func (s *Store) Lists() *Lists {
	return &Lists{db: s.DB}
}

// Counters backed by this store
func (s *Store) Counters() *Counters {
	return &Counters{db: s.DB}
}

// Threats history backed by this store
func (s *Store) Threats() *Threats {
	return &Threats{db: s.DB, seq: s.threatSeq}
}

// Close the database
func (s *Store) Close() error {
	if s.DB == nil {
		return nil
	}
	if s.threatSeq != nil {
		if err := s.threatSeq.Release(); err != nil {
			log.Warn().Err(err).Msg("failed to release threat sequence")
		}
	}
	return s.DB.Close()
}

const maxConflictRetries = 10

// update runs fn in a read-write transaction, retrying when a concurrent
// transaction committed a key fn read
func update(db *badger.DB, fn func(txn *badger.Txn) error) error {
	var err error
	for i := 0; i < maxConflictRetries; i++ {
		if err = db.Update(fn); !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}
