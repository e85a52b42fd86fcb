package store

import (
	"bytes"

	badger "github.com/dgraph-io/badger/v2"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v4"
)

// key predicates
const (
	settingsPredicate = "settings"
	listPredicate     = "list"
	counterPredicate  = "counter"
	threatPredicate   = "threat"
)

// MakeKey of a predicate and id
func MakeKey(id []byte, predicate string) []byte {
	key := []byte(predicate)
	key = append(key, byte(':'))
	key = append(key, id...)
	return key
}

// GetID of key from a pred:key
func GetID(key []byte) []byte {
	split := bytes.SplitN(key, []byte(":"), 2)
	if len(split) == 1 {
		return []byte{}
	}
	return split[1]
}

// GetPredicate from pred:key
func GetPredicate(key []byte) []byte {
	split := bytes.SplitN(key, []byte(":"), 2)
	return split[0]
}

// setValue msgpacks v under key
func setValue(txn *badger.Txn, key []byte, v interface{}) error {
	bytez, err := msgpack.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "encoding value")
	}
	return txn.Set(key, bytez)
}

// getValue decodes the msgpack value at key into v, returns
// badger.ErrKeyNotFound untouched so callers can apply defaults
func getValue(txn *badger.Txn, key []byte, v interface{}) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return errors.Wrap(msgpack.Unmarshal(val, v), "decoding value")
	})
}

// DecodeBool msgpack'd bool
func DecodeBool(val []byte) (bool, error) {
	var b bool
	err := msgpack.Unmarshal(val, &b)
	return b, err
}
