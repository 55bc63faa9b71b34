// Copyright (c) 2026 Sowon. All rights reserved.
// Author: sowon.dev.kr@gmail.com

package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements [Store] on top of a single `kv` table
// (key TEXT PRIMARY KEY, value TEXT, updated_at TIMESTAMPTZ).
//
// # Atomicity
//
// Each Set is a single upsert statement, so readers never observe a
// partial write of the account collection.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed [Store].
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

/*
Get returns the value stored under key.

Parameters:
  - context: context.Context
  - key: string

Returns:
  - string: Stored value
  - error: [ErrKeyNotFound] if absent, otherwise query failures
*/
func (store *PostgresStore) Get(context context.Context, key string) (string, error) {
	var value string

	err := store.pool.QueryRow(context,
		`SELECT value FROM kv WHERE key = $1`, key,
	).Scan(&value)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrKeyNotFound
		}
		return "", fmt.Errorf("postgres_store_get_failed: %w", err)
	}

	return value, nil
}

/*
Set stores value under key using an idempotent upsert.

Parameters:
  - context: context.Context
  - key: string
  - value: string

Returns:
  - error: Execution errors
*/
func (store *PostgresStore) Set(context context.Context, key string, value string) error {
	_, err := store.pool.Exec(context,
		`INSERT INTO kv (key, value, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (key)
		 DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("postgres_store_set_failed: %w", err)
	}

	return nil
}

/*
Remove deletes the value stored under key. Removing an absent key succeeds.

Parameters:
  - context: context.Context
  - key: string

Returns:
  - error: Execution errors
*/
func (store *PostgresStore) Remove(context context.Context, key string) error {
	_, err := store.pool.Exec(context, `DELETE FROM kv WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("postgres_store_remove_failed: %w", err)
	}

	return nil
}
