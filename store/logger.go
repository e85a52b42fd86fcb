package store

import (
	"strings"

	"github.com/rs/zerolog/log"
)

// badgerLogger sends badger's internal logging through zerolog
type badgerLogger struct{}

func newBadgerLogger() *badgerLogger {
	return &badgerLogger{}
}

func (b *badgerLogger) Errorf(format string, args ...interface{}) {
	log.Error().Str("component", "badger").Msgf(strings.TrimSpace(format), args...)
}

func (b *badgerLogger) Warningf(format string, args ...interface{}) {
	log.Warn().Str("component", "badger").Msgf(strings.TrimSpace(format), args...)
}

func (b *badgerLogger) Infof(format string, args ...interface{}) {
	log.Debug().Str("component", "badger").Msgf(strings.TrimSpace(format), args...)
}

func (b *badgerLogger) Debugf(format string, args ...interface{}) {
	log.Debug().Str("component", "badger").Msgf(strings.TrimSpace(format), args...)
}
