package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"go.trai.ch/reload/internal/core/domain"
	"go.trai.ch/reload/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.StateStore = (*BadgerStore)(nil)

// stateKey holds the single scan state record.
var stateKey = []byte("reload/scan_state")

// BadgerStore implements ports.StateStore on an embedded badger database.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens (or creates) the database in dir.
func OpenBadger(dir string, logger ports.Logger) (*BadgerStore, error) {
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to create database directory"), "dir", dir)
	}

	opts := badger.DefaultOptions(dir).
		WithSyncWrites(true).
		WithNumVersionsToKeep(1).
		WithLogger(&badgerLogger{logger: logger})

	return openBadger(opts)
}

// OpenBadgerInMemory opens a database that lives only as long as the store.
func OpenBadgerInMemory() (*BadgerStore, error) {
	return openBadger(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
}

func openBadger(opts badger.Options) (*BadgerStore, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to open badger database"), "dir", opts.Dir)
	}
	return &BadgerStore{db: db}, nil
}

// Load reads the state record, or returns an empty state if none was saved.
func (s *BadgerStore) Load(_ context.Context) (*domain.ScanState, error) {
	var state domain.ScanState
	found := false

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(stateKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &state)
		})
	})
	if err != nil {
		return nil, domain.Classify(domain.ErrStateRead, err)
	}
	if !found {
		return domain.NewScanState(), nil
	}

	return state.Normalize(), nil
}

// Save replaces the state record in a single transaction.
func (s *BadgerStore) Save(_ context.Context, state *domain.ScanState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return domain.Classify(domain.ErrStateWrite, err)
	}

	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(stateKey, data)
	}); err != nil {
		return domain.Classify(domain.ErrStateWrite, err)
	}
	return nil
}

// Close closes the database.
func (s *BadgerStore) Close() error {
	if err := s.db.Close(); err != nil {
		return zerr.Wrap(err, "failed to close badger database")
	}
	return nil
}

// badgerLogger forwards badger's printf-style logging to ports.Logger.
type badgerLogger struct {
	logger ports.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...), "component", "badger")
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...), "component", "badger")
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...), "component", "badger")
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...), "component", "badger")
}
