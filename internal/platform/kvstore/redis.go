// Copyright (c) 2026 Sowon. All rights reserved.
// Author: sowon.dev.kr@gmail.com

package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements [Store] on top of a Redis client.
//
// # Volatility
//
// Values live for the configured TTL (zero = no expiry). The session snapshot
// uses a TTL so an abandoned login eventually disappears; the engine itself
// never depends on the expiry.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed [Store]. All keys are namespaced with
// the given prefix. A zero ttl stores values without expiry.
func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

/*
Get returns the value stored under key.

Parameters:
  - context: context.Context
  - key: string

Returns:
  - string: Stored value
  - error: [ErrKeyNotFound] if absent, otherwise connectivity errors
*/
func (store *RedisStore) Get(context context.Context, key string) (string, error) {

	// Namespace the key
	value, err := store.client.Get(context, store.prefix+key).Result()

	// Handle errors
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrKeyNotFound
		}
		return "", fmt.Errorf("redis_store_get_failed: %w", err)
	}

	// Return the value
	return value, nil
}

/*
Set stores value under key with the configured TTL.

Parameters:
  - context: context.Context
  - key: string
  - value: string

Returns:
  - error: Execution errors
*/
func (store *RedisStore) Set(context context.Context, key string, value string) error {

	// Set the value with TTL
	if err := store.client.Set(context, store.prefix+key, value, store.ttl).Err(); err != nil {
		return fmt.Errorf("redis_store_set_failed: %w", err)
	}

	// Return nil on success
	return nil
}

/*
Remove deletes the value stored under key.

Parameters:
  - context: context.Context
  - key: string

Returns:
  - error: Deletion failures
*/
func (store *RedisStore) Remove(context context.Context, key string) error {

	// Delete the key; Redis treats an absent key as a successful no-op
	if err := store.client.Del(context, store.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis_store_remove_failed: %w", err)
	}

	// Return nil on success
	return nil
}
