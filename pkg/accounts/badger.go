package accounts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	badger "github.com/dgraph-io/badger/v4"
)

// keyPrefix namespaces account records inside the database.
const keyPrefix = "account:"

// Badger is a Store implementation backed by BadgerDB v4. Badger
// transactions give the atomic per-address get/put the Store contract
// requires.
type Badger struct {
	db *badger.DB
}

var _ Store = (*Badger)(nil)

// BadgerOptions configures the BadgerDB store.
type BadgerOptions struct {
	// Dir is the directory for BadgerDB data files. Required unless
	// InMemory is set.
	Dir string

	// InMemory runs BadgerDB without disk persistence. Useful for
	// testing against the real engine.
	InMemory bool
}

// NewBadger opens a BadgerDB-backed Store.
func NewBadger(opts BadgerOptions) (*Badger, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, errors.New("accounts: BadgerOptions.Dir is required for on-disk mode")
	}
	dbOpts := badger.DefaultOptions(opts.Dir).WithLogger(slogBadger{})
	if opts.InMemory {
		dbOpts = dbOpts.WithInMemory(true)
	}
	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, err
	}
	return &Badger{db: db}, nil
}

func key(address string) []byte {
	return []byte(keyPrefix + address)
}

func (b *Badger) Get(_ context.Context, address string) (*Record, error) {
	var data []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(address))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeRecord(data)
}

func (b *Badger) Put(_ context.Context, rec *Record) error {
	data, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(rec.Address), data)
	})
}

func (b *Badger) Delete(_ context.Context, address string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(address))
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	return err
}

func (b *Badger) List(_ context.Context) ([]string, error) {
	prefix := []byte(keyPrefix)
	var addresses []string
	err := b.db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = prefix
		iterOpts.PrefetchValues = false
		it := txn.NewIterator(iterOpts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			k := it.Item().KeyCopy(nil)
			addresses = append(addresses, string(k[len(prefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return addresses, nil
}

func (b *Badger) Close() error {
	return b.db.Close()
}

// slogBadger routes badger's warnings and errors to slog and drops the
// chatty info/debug output.
type slogBadger struct{}

func (slogBadger) Errorf(f string, v ...interface{})   { slog.Error("badger: " + fmt.Sprintf(f, v...)) }
func (slogBadger) Warningf(f string, v ...interface{}) { slog.Warn("badger: " + fmt.Sprintf(f, v...)) }
func (slogBadger) Infof(string, ...interface{})        {}
func (slogBadger) Debugf(string, ...interface{})       {}
