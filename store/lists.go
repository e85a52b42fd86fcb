package store

import (
	"regexp"
	"strings"

	badger "github.com/dgraph-io/badger/v2"
	"github.com/pkg/errors"
	"golang.org/x/net/publicsuffix"
)

// List names
const (
	Blacklist = "blacklist"
	Whitelist = "whitelist"
)

var (
	// ErrUnknownList returned for list names other than blacklist and whitelist
	ErrUnknownList = errors.New("unknown list")
	// ErrInvalidDomain returned when an entry is not a domain name
	ErrInvalidDomain = errors.New("please enter a valid domain")
	// ErrPublicSuffix returned when an entry is a public suffix such as co.uk
	ErrPublicSuffix = errors.New("domain is a public suffix")
	// ErrDuplicateDomain returned when adding an entry already in the list
	ErrDuplicateDomain = errors.New("domain already exists in the list")
	// ErrDomainNotFound returned when removing an entry not in the list
	ErrDomainNotFound = errors.New("domain not found in the list")
)

var domainRe = regexp.MustCompile(`^([a-z0-9]([a-z0-9-]*[a-z0-9])?\.)+[a-z]{2,}$`)

// NormalizeDomain trims and lower cases an entry and validates it
func NormalizeDomain(domain string) (string, error) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if !domainRe.MatchString(domain) {
		return "", errors.Wrap(ErrInvalidDomain, domain)
	}
	if suffix, _ := publicsuffix.PublicSuffix(domain); suffix == domain {
		return "", errors.Wrap(ErrPublicSuffix, domain)
	}
	return domain, nil
}

// ValidList returns true for the two known list names
func ValidList(name string) bool {
	return name == Blacklist || name == Whitelist
}

// Lists persists the blacklist and whitelist
type Lists struct {
	db *badger.DB
}

func listKey(name string) ([]byte, error) {
	if !ValidList(name) {
		return nil, errors.Wrap(ErrUnknownList, name)
	}
	return MakeKey([]byte(name), listPredicate), nil
}

func readList(txn *badger.Txn, key []byte) ([]string, error) {
	domains := make([]string, 0)
	err := getValue(txn, key, &domains)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return make([]string, 0), nil
	}
	return domains, err
}

// Get the entries of list name in insertion order
func (l *Lists) Get(name string) ([]string, error) {
	key, err := listKey(name)
	if err != nil {
		return nil, err
	}

	var domains []string
	err = l.db.View(func(txn *badger.Txn) error {
		domains, err = readList(txn, key)
		return err
	})
	return domains, errors.Wrap(err, "reading list")
}

// Search entries of list name containing term, case insensitive
func (l *Lists) Search(name, term string) ([]string, error) {
	domains, err := l.Get(name)
	if err != nil {
		return nil, err
	}
	term = strings.ToLower(term)
	found := make([]string, 0)
	for _, domain := range domains {
		if strings.Contains(domain, term) {
			found = append(found, domain)
		}
	}
	return found, nil
}

// Contains returns true if domain is in list name
func (l *Lists) Contains(name, domain string) (bool, error) {
	domains, err := l.Get(name)
	if err != nil {
		return false, err
	}
	domain = strings.ToLower(strings.TrimSpace(domain))
	for _, d := range domains {
		if d == domain {
			return true, nil
		}
	}
	return false, nil
}

// Set replaces list name. Every entry is validated and duplicates are
// rejected, nothing is written on error.
func (l *Lists) Set(name string, domains []string) error {
	key, err := listKey(name)
	if err != nil {
		return err
	}

	normalized := make([]string, 0, len(domains))
	seen := make(map[string]struct{}, len(domains))
	for _, domain := range domains {
		d, err := NormalizeDomain(domain)
		if err != nil {
			return err
		}
		if _, exists := seen[d]; exists {
			return errors.Wrap(ErrDuplicateDomain, d)
		}
		seen[d] = struct{}{}
		normalized = append(normalized, d)
	}

	return l.db.Update(func(txn *badger.Txn) error {
		return setValue(txn, key, normalized)
	})
}

// Add domain to list name
func (l *Lists) Add(name, domain string) error {
	key, err := listKey(name)
	if err != nil {
		return err
	}
	d, err := NormalizeDomain(domain)
	if err != nil {
		return err
	}

	return update(l.db, func(txn *badger.Txn) error {
		domains, err := readList(txn, key)
		if err != nil {
			return err
		}
		for _, existing := range domains {
			if existing == d {
				return errors.Wrap(ErrDuplicateDomain, d)
			}
		}
		return setValue(txn, key, append(domains, d))
	})
}

// AddIfMissing adds domain without validation when it is not already in
// list name, returns true if it was added
func (l *Lists) AddIfMissing(name, domain string) (bool, error) {
	key, err := listKey(name)
	if err != nil {
		return false, err
	}

	added := false
	err = update(l.db, func(txn *badger.Txn) error {
		added = false
		domains, err := readList(txn, key)
		if err != nil {
			return err
		}
		for _, existing := range domains {
			if existing == domain {
				return nil
			}
		}
		added = true
		return setValue(txn, key, append(domains, domain))
	})
	if err != nil {
		return false, errors.Wrap(err, "updating list")
	}
	return added, nil
}

// Remove domain from list name
func (l *Lists) Remove(name, domain string) error {
	key, err := listKey(name)
	if err != nil {
		return err
	}
	domain = strings.ToLower(strings.TrimSpace(domain))

	return update(l.db, func(txn *badger.Txn) error {
		domains, err := readList(txn, key)
		if err != nil {
			return err
		}
		kept := make([]string, 0, len(domains))
		for _, existing := range domains {
			if existing != domain {
				kept = append(kept, existing)
			}
		}
		if len(kept) == len(domains) {
			return errors.Wrap(ErrDomainNotFound, domain)
		}
		return setValue(txn, key, kept)
	})
}
