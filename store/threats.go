package store

import (
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v2"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
	"gitlab.com/phishker/phishk"
)

// ThreatRecord is a report received by the host
type ThreatRecord struct {
	ID       string                `msgpack:"id" json:"id"`
	Received time.Time             `msgpack:"received" json:"received"`
	Domain   string                `msgpack:"domain" json:"domain"`
	URL      string                `msgpack:"url" json:"url"`
	Severity string                `msgpack:"severity" json:"severity"`
	Score    int                   `msgpack:"score" json:"score"`
	Threats  []phishk.ReportThreat `msgpack:"threats" json:"threats"`
}

// Threats persists every report the host receives
type Threats struct {
	db  *badger.DB
	seq *badger.Sequence
}

// Add a record of report for domain, returns the record
func (t *Threats) Add(domain string, report *phishk.Report) (*ThreatRecord, error) {
	if report == nil || report.Data == nil {
		return nil, errors.New("report has no data")
	}

	record := &ThreatRecord{
		ID:       uuid.NewV4().String(),
		Received: time.Now().UTC(),
		Domain:   domain,
		URL:      report.Data.URL,
		Severity: report.Data.Severity,
		Score:    report.Data.Score,
		Threats:  report.Data.Threats,
	}

	n, err := t.seq.Next()
	if err != nil {
		return nil, errors.Wrap(err, "allocating threat sequence")
	}

	// zero padded so iteration returns records oldest first
	id := []byte(fmt.Sprintf("%020d", n))
	err = t.db.Update(func(txn *badger.Txn) error {
		return setValue(txn, MakeKey(id, threatPredicate), record)
	})
	if err != nil {
		return nil, errors.Wrap(err, "storing threat record")
	}
	return record, nil
}

// List up to limit records, oldest first. A limit <= 0 returns everything.
func (t *Threats) List(limit int) ([]*ThreatRecord, error) {
	records := make([]*ThreatRecord, 0)
	prefix := MakeKey(nil, threatPredicate)

	err := t.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(records) >= limit {
				break
			}
			record := &ThreatRecord{}
			err := getValue(txn, it.Item().KeyCopy(nil), record)
			if err != nil {
				return err
			}
			records = append(records, record)
		}
		return nil
	})
	return records, errors.Wrap(err, "listing threat records")
}
