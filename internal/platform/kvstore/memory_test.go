// Copyright (c) 2026 Sowon. All rights reserved.
// Author: sowon.dev.kr@gmail.com

package kvstore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sowondev/sowon/internal/platform/kvstore"
)

/*
TestMemoryStore_RoundTrip exercises the basic Get/Set/Remove contract.
*/
func TestMemoryStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()

	// Absent key
	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, kvstore.ErrKeyNotFound)

	// Set and read back
	require.NoError(t, store.Set(ctx, "greeting", "annyeong"))
	value, err := store.Get(ctx, "greeting")
	require.NoError(t, err)
	assert.Equal(t, "annyeong", value)

	// Overwrite
	require.NoError(t, store.Set(ctx, "greeting", "annyeonghaseyo"))
	value, err = store.Get(ctx, "greeting")
	require.NoError(t, err)
	assert.Equal(t, "annyeonghaseyo", value)

	// Remove, then the key is gone
	require.NoError(t, store.Remove(ctx, "greeting"))
	_, err = store.Get(ctx, "greeting")
	assert.ErrorIs(t, err, kvstore.ErrKeyNotFound)

	// Removing an absent key is a no-op success
	assert.NoError(t, store.Remove(ctx, "greeting"))
}

/*
TestMemoryStore_FailNext verifies single-shot failure injection: exactly one
operation fails, then the store recovers.
*/
func TestMemoryStore_FailNext(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	boom := errors.New("store offline")

	store.FailNext = boom
	err := store.Set(ctx, "key", "value")
	assert.ErrorIs(t, err, boom)

	// The failure is consumed; the next call succeeds
	assert.NoError(t, store.Set(ctx, "key", "value"))

	store.FailNext = boom
	_, err = store.Get(ctx, "key")
	assert.ErrorIs(t, err, boom)

	value, err := store.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, "value", value)
}

/*
TestMemoryStore_Seed verifies that seeding bypasses failure injection and
plants the raw value.
*/
func TestMemoryStore_Seed(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()

	store.FailNext = errors.New("store offline")
	store.Seed("planted", "{not json")

	// Seed neither consumed nor triggered the injected failure
	_, err := store.Get(ctx, "planted")
	assert.Error(t, err)

	value, err := store.Get(ctx, "planted")
	require.NoError(t, err)
	assert.Equal(t, "{not json", value)
}
