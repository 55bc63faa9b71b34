// Copyright (c) 2026 Sowon. All rights reserved.
// Author: sowon.dev.kr@gmail.com

package kvstore

import (
	"context"
	"sync"
)

// MemoryStore implements [Store] with a process-local map.
// It exists for tests and local development.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string

	// FailNext makes the next operation return this error, then resets.
	// Tests use it to simulate an unavailable store.
	FailNext error
}

// Ensure the interface is met.
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory [Store].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Get returns the value stored under key, or [ErrKeyNotFound].
func (store *MemoryStore) Get(context context.Context, key string) (string, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	if err := store.takeFailure(); err != nil {
		return "", err
	}

	value, found := store.values[key]
	if !found {
		return "", ErrKeyNotFound
	}
	return value, nil
}

// Set stores value under key.
func (store *MemoryStore) Set(context context.Context, key string, value string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if err := store.takeFailure(); err != nil {
		return err
	}

	store.values[key] = value
	return nil
}

// Remove deletes the value stored under key. Absent keys are a no-op.
func (store *MemoryStore) Remove(context context.Context, key string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if err := store.takeFailure(); err != nil {
		return err
	}

	delete(store.values, key)
	return nil
}

// Seed writes a raw value directly, bypassing failure injection.
// Tests use it to plant corrupted payloads.
func (store *MemoryStore) Seed(key, value string) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.values[key] = value
}

// takeFailure consumes a pending injected failure. Caller must hold mu.
func (store *MemoryStore) takeFailure() error {
	err := store.FailNext
	store.FailNext = nil
	return err
}
