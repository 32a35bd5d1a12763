// Copyright (C) 2025 Daily Secrets (dev@dailysecrets.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package cache provides a generic in-memory TTL store with
// least-recently-accessed eviction under capacity pressure.
//
// The store performs no I/O. Expired entries are removed lazily on access;
// EvictExpired sweeps them eagerly for callers that want bounded memory
// between accesses. A Put is atomic with respect to concurrent Gets:
// readers observe either the previous value or the new one, never a torn
// entry.
//
// # Thread Safety
//
// All methods are safe for concurrent use.
package cache

import (
	"sync"
	"time"
)

// entry is the stored record. Owned exclusively by the Store; never
// escapes it.
type entry[T any] struct {
	value        T
	createdAt    time.Time
	expiresAt    time.Time
	lastAccessed time.Time
}

// Config configures a Store.
type Config struct {
	// MaxEntries bounds the entry count. When a Put pushes the store past
	// this limit, least-recently-accessed entries are evicted until the
	// store is back under it. Zero means unbounded.
	MaxEntries int

	// Now is the clock used for expiry and recency. Defaults to time.Now.
	// Tests inject a fake clock here.
	Now func() time.Time
}

// Store is a TTL key/value cache keyed by string.
type Store[T any] struct {
	mu         sync.RWMutex
	entries    map[string]*entry[T]
	maxEntries int
	now        func() time.Time
}

// New creates an empty Store with the given configuration.
func New[T any](cfg Config) *Store[T] {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Store[T]{
		entries:    make(map[string]*entry[T]),
		maxEntries: cfg.MaxEntries,
		now:        now,
	}
}

// Get returns the value for key if present and unexpired. An expired entry
// is removed on access and reported as a miss. A hit refreshes the entry's
// recency for LRU purposes.
func (s *Store[T]) Get(key string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	e, ok := s.entries[key]
	if !ok {
		return zero, false
	}
	if s.now().After(e.expiresAt) {
		delete(s.entries, key)
		return zero, false
	}
	e.lastAccessed = s.now()
	return e.value, true
}

// Put stores value under key with the given lifetime, overwriting any
// existing entry, then enforces the capacity bound.
func (s *Store[T]) Put(key string, value T, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := s.now()
	s.entries[key] = &entry[T]{
		value:        value,
		createdAt:    created,
		expiresAt:    created.Add(ttl),
		lastAccessed: created,
	}
	s.evictOverCapacityLocked()
}

// EvictExpired removes every expired entry and returns how many were
// dropped.
func (s *Store[T]) EvictExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	evicted := 0
	for key, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, key)
			evicted++
		}
	}
	return evicted
}

// Len returns the current entry count, including entries that have expired
// but not yet been swept.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// evictOverCapacityLocked drops least-recently-accessed entries until the
// store is within MaxEntries. Expired entries go first; they are free to
// reclaim regardless of recency. Caller must hold mu.
func (s *Store[T]) evictOverCapacityLocked() {
	if s.maxEntries <= 0 {
		return
	}
	now := s.now()
	for key, e := range s.entries {
		if len(s.entries) <= s.maxEntries {
			return
		}
		if now.After(e.expiresAt) {
			delete(s.entries, key)
		}
	}
	for len(s.entries) > s.maxEntries {
		oldestKey := ""
		var oldest time.Time
		for key, e := range s.entries {
			if oldestKey == "" || e.lastAccessed.Before(oldest) {
				oldestKey = key
				oldest = e.lastAccessed
			}
		}
		delete(s.entries, oldestKey)
	}
}
