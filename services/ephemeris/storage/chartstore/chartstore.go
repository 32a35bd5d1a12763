// Copyright (C) 2025 Daily Secrets (dev@dailysecrets.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package chartstore persists resolved charts in an embedded BadgerDB so
// a chart served once can be replayed later without re-resolving.
//
// Archived entries are keyed by the resolver's cache key and carry a TTL;
// Badger drops them lazily after expiry. Placeholder (synthetic) charts
// are never archived, mirroring the resolver's cache policy.
//
// License: BadgerDB is Apache 2.0 licensed (github.com/dgraph-io/badger).
package chartstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/dailysecrets/astrocore/services/ephemeris/datatypes"
)

// ErrNotFound is returned when no archived chart exists for a key.
var ErrNotFound = errors.New("chart not found")

// keyPrefix namespaces archive entries inside the database.
const keyPrefix = "chart/"

// DefaultTTL keeps archived charts for a week.
const DefaultTTL = 7 * 24 * time.Hour

// Config holds configuration for a chart archive.
type Config struct {
	// Path is the directory for BadgerDB files.
	// Ignored when InMemory is true.
	Path string

	// InMemory enables in-memory mode (no disk persistence).
	// Useful for testing.
	InMemory bool

	// SyncWrites enables synchronous writes for durability.
	SyncWrites bool

	// TTL bounds how long an archived chart is readable.
	// Zero means DefaultTTL.
	TTL time.Duration

	// Logger receives BadgerDB's internal logging. Nil disables it.
	Logger *slog.Logger
}

// InMemoryConfig returns configuration for tests: in-memory, no sync,
// default TTL.
func InMemoryConfig() Config {
	return Config{InMemory: true}
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

// Store is a BadgerDB-backed chart archive.
//
// # Thread Safety
//
// Safe for concurrent use; BadgerDB handles its own locking.
type Store struct {
	db  *badger.DB
	ttl time.Duration
}

// Open creates and opens a chart archive with the given configuration.
// Creates the directory if it doesn't exist. Caller must Close().
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent archive")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create archive directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites)

	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open chart archive: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{db: db, ttl: ttl}, nil
}

// Put archives a resolved chart under the given cache key, overwriting
// any previous entry for the key.
func (s *Store) Put(ctx context.Context, key string, result datatypes.ChartResult) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}
	if key == "" {
		return errors.New("key must not be empty")
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode chart: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(keyPrefix+key), encoded).WithTTL(s.ttl)
		return txn.SetEntry(entry)
	})
}

// Get loads an archived chart. Returns ErrNotFound when the key is
// absent or has expired.
func (s *Store) Get(ctx context.Context, key string) (datatypes.ChartResult, error) {
	var result datatypes.ChartResult
	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("context cancelled: %w", err)
	}

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &result)
		})
	})
	if err != nil {
		return datatypes.ChartResult{}, err
	}
	return result, nil
}

// Delete removes an archived chart. Deleting an absent key is not an
// error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(keyPrefix + key))
	})
}

// Keys lists archived cache keys, up to limit. A limit of zero or less
// lists everything.
func (s *Store) Keys(ctx context.Context, limit int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled: %w", err)
	}

	var keys []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(keys) >= limit {
				break
			}
			keys = append(keys, string(it.Item().Key()[len(prefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
