package store

import (
	badger "github.com/dgraph-io/badger/v2"
	"github.com/pkg/errors"
)

// Counter names
const (
	ThreatCount  = "threatCount"
	SitesChecked = "sitesChecked"
)

// Counters persists the host statistics
type Counters struct {
	db *badger.DB
}

// Incr adds one to counter name and returns the new value
func (c *Counters) Incr(name string) (int64, error) {
	key := MakeKey([]byte(name), counterPredicate)
	var value int64
	err := update(c.db, func(txn *badger.Txn) error {
		value = 0
		err := getValue(txn, key, &value)
		if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		value++
		return setValue(txn, key, value)
	})
	return value, errors.Wrap(err, "incrementing counter")
}

// Get counter name, zero if never incremented
func (c *Counters) Get(name string) (int64, error) {
	key := MakeKey([]byte(name), counterPredicate)
	var value int64
	err := c.db.View(func(txn *badger.Txn) error {
		err := getValue(txn, key, &value)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
	return value, errors.Wrap(err, "reading counter")
}

// All counters by name
func (c *Counters) All() (map[string]int64, error) {
	all := make(map[string]int64, 2)
	for _, name := range []string{ThreatCount, SitesChecked} {
		v, err := c.Get(name)
		if err != nil {
			return nil, err
		}
		all[name] = v
	}
	return all, nil
}
