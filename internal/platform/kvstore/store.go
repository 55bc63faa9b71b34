// Copyright (c) 2026 Sowon. All rights reserved.
// Author: sowon.dev.kr@gmail.com

/*
Package kvstore defines the durable key-value store collaborator and its
concrete backends.

The account engine requires only get/set/remove semantics over string keys and
JSON-encoded string values; it does not care where the store lives. Two logical
keys exist today: the full account collection and the current redacted session.

Backends:

  - Postgres: durable single-table storage for the account collection.
  - Redis: volatile storage for the session snapshot (TTL policy belongs
    to the store, not the engine).
  - Memory: process-local storage for tests and development.
*/
package kvstore

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by [Store.Get] when no value exists for the key.
//
// Callers must distinguish an absent key (normal first-run state) from an
// I/O failure (storage unavailable).
var ErrKeyNotFound = errors.New("kvstore: key not found")

// Store is the durable store collaborator contract.
type Store interface {

	/*
		Get returns the value stored under key.

		Parameters:
		  - context: context.Context
		  - key: string

		Returns:
		  - string: Stored value
		  - error: [ErrKeyNotFound] if absent, otherwise I/O failures
	*/
	Get(context context.Context, key string) (string, error)

	/*
		Set stores value under key, replacing any previous value atomically.

		Parameters:
		  - context: context.Context
		  - key: string
		  - value: string

		Returns:
		  - error: I/O failures (quota exceeded, connectivity)
	*/
	Set(context context.Context, key string, value string) error

	/*
		Remove deletes the value stored under key. Removing an absent key is
		a no-op success.

		Parameters:
		  - context: context.Context
		  - key: string

		Returns:
		  - error: I/O failures
	*/
	Remove(context context.Context, key string) error
}
