// Copyright (C) 2025 MoviOps (engineering@moviops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package fleet

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// ErrNotFound is returned by store lookups when no entity exists under
// the requested key.
var ErrNotFound = errors.New("fleet: entity not found")

// Key prefixes, one per entity kind. Full keys are "<prefix><name>".
const (
	prefixStop       = "stop/"
	prefixPath       = "path/"
	prefixRoute      = "route/"
	prefixVehicle    = "vehicle/"
	prefixDriver     = "driver/"
	prefixTrip       = "trip/"
	prefixDeployment = "deployment/"
)

// StoreConfig holds configuration for the fleet store's embedded
// BadgerDB instance.
type StoreConfig struct {
	// Path is the directory for database files. Required unless
	// InMemory is true.
	Path string

	// InMemory enables in-memory mode (no disk persistence). Useful
	// for testing.
	InMemory bool

	// SyncWrites enables synchronous writes for durability.
	SyncWrites bool

	// Logger receives BadgerDB's internal log output. If nil,
	// BadgerDB's internal logging is disabled.
	Logger *slog.Logger
}

// DefaultStoreConfig returns production defaults for a persistent store
// at the given path.
func DefaultStoreConfig(path string) StoreConfig {
	return StoreConfig{Path: path, SyncWrites: true}
}

// InMemoryStoreConfig returns configuration for tests: in-memory mode,
// no sync writes.
func InMemoryStoreConfig() StoreConfig {
	return StoreConfig{InMemory: true}
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Store is the embedded fleet database. Entities are stored as JSON
// values under "<kind>/<name>" keys; listings are prefix scans and come
// back in lexicographic key order.
//
// Thread Safety: safe for concurrent use. BadgerDB transactions provide
// isolation; mutating operations in Service run inside Update
// transactions.
type Store struct {
	db *badger.DB
}

// OpenStore creates and opens the fleet store.
//
// Inputs:
//
//	cfg - Store configuration. Path is required unless InMemory is true.
//
// Outputs:
//
//	*Store - The opened store. Caller must call Close() when done.
//	error - Non-nil if the path is invalid or the database cannot be
//	opened.
func OpenStore(cfg StoreConfig) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("fleet: path is required for persistent store")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("fleet: create store directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites)
	opts = opts.WithNumVersionsToKeep(1)

	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("fleet: open store: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenInMemoryStore is a convenience function for tests.
func OpenInMemoryStore() (*Store, error) {
	return OpenStore(InMemoryStoreConfig())
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// put serializes v as JSON under key within txn.
func put(txn *badger.Txn, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("fleet: marshal %s: %w", key, err)
	}
	return txn.Set([]byte(key), data)
}

// get deserializes the value under key into v within txn. Returns
// ErrNotFound when the key is absent.
func get(txn *badger.Txn, key string, v any) error {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("fleet: get %s: %w", key, err)
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

// scan visits every value under prefix, decoding each into a fresh T.
func scan[T any](txn *badger.Txn, prefix string, visit func(T)) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		var v T
		err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &v)
		})
		if err != nil {
			return fmt.Errorf("fleet: scan %s: %w", prefix, err)
		}
		visit(v)
	}
	return nil
}

// view runs fn in a read-only transaction.
func (s *Store) view(fn func(txn *badger.Txn) error) error {
	return s.db.View(fn)
}

// update runs fn in a read-write transaction.
func (s *Store) update(fn func(txn *badger.Txn) error) error {
	return s.db.Update(fn)
}

// exists reports whether key is present.
func exists(txn *badger.Txn, key string) (bool, error) {
	_, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// listAll returns every entity under prefix sorted by name, using
// nameOf to extract the sort key. Badger already iterates keys in
// order, so the sort is belt-and-braces for callers that merge lists.
func listAll[T any](s *Store, prefix string, nameOf func(T) string) ([]T, error) {
	var out []T
	err := s.view(func(txn *badger.Txn) error {
		return scan(txn, prefix, func(v T) {
			out = append(out, v)
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(nameOf(out[i])) < strings.ToLower(nameOf(out[j]))
	})
	return out, nil
}

// ListStops returns all stops sorted by name.
func (s *Store) ListStops() ([]Stop, error) {
	return listAll(s, prefixStop, func(v Stop) string { return v.Name })
}

// ListPaths returns all paths sorted by name.
func (s *Store) ListPaths() ([]Path, error) {
	return listAll(s, prefixPath, func(v Path) string { return v.Name })
}

// ListRoutes returns all routes sorted by display name.
func (s *Store) ListRoutes() ([]Route, error) {
	return listAll(s, prefixRoute, func(v Route) string { return v.DisplayName })
}

// ListVehicles returns all vehicles sorted by license plate.
func (s *Store) ListVehicles() ([]Vehicle, error) {
	return listAll(s, prefixVehicle, func(v Vehicle) string { return v.LicensePlate })
}

// ListDrivers returns all drivers sorted by name.
func (s *Store) ListDrivers() ([]Driver, error) {
	return listAll(s, prefixDriver, func(v Driver) string { return v.Name })
}

// ListTrips returns all daily trips sorted by display name.
func (s *Store) ListTrips() ([]DailyTrip, error) {
	return listAll(s, prefixTrip, func(v DailyTrip) string { return v.DisplayName })
}

// ListDeployments returns all deployments sorted by trip name.
func (s *Store) ListDeployments() ([]Deployment, error) {
	return listAll(s, prefixDeployment, func(v Deployment) string { return v.TripName })
}
