// Copyright (c) 2026 Sowon. All rights reserved.
// Author: sowon.dev.kr@gmail.com

package account_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sowondev/sowon/internal/account"
	"github.com/sowondev/sowon/internal/platform/constants"
	"github.com/sowondev/sowon/internal/platform/kvstore"
)

/*
TestSessionManager_PublishAndCurrent verifies the publish/read round trip
and that the stored snapshot is always redacted.
*/
func TestSessionManager_PublishAndCurrent(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	manager := account.NewSessionManager(store)

	// No session published yet
	current, err := manager.Current(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)
	assert.False(t, manager.IsAuthenticated(ctx))

	subject := &account.Account{
		ID:                 "a1",
		Email:              "alice@example.com",
		CredentialVerifier: "top-secret-verifier",
		DisplayName:        "Alice",
	}
	require.NoError(t, manager.Publish(ctx, subject))

	current, err = manager.Current(ctx)
	require.NoError(t, err)
	require.NotNil(t, current)

	assert.Equal(t, "a1", current.ID)
	assert.Equal(t, "alice@example.com", current.Email)

	// The verifier never reaches the snapshot
	assert.Empty(t, current.CredentialVerifier)
	assert.True(t, manager.IsAuthenticated(ctx))
}

/*
TestSessionManager_PublishReplaces verifies that publishing a second account
replaces the single current snapshot.
*/
func TestSessionManager_PublishReplaces(t *testing.T) {
	ctx := context.Background()
	manager := account.NewSessionManager(kvstore.NewMemoryStore())

	require.NoError(t, manager.Publish(ctx, &account.Account{ID: "a1"}))
	require.NoError(t, manager.Publish(ctx, &account.Account{ID: "a2"}))

	current, err := manager.Current(ctx)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, "a2", current.ID)
}

/*
TestSessionManager_ClearIdempotent verifies that clearing an absent session
is a no-op success.
*/
func TestSessionManager_ClearIdempotent(t *testing.T) {
	ctx := context.Background()
	manager := account.NewSessionManager(kvstore.NewMemoryStore())

	// Clear with nothing published
	assert.NoError(t, manager.Clear(ctx))

	require.NoError(t, manager.Publish(ctx, &account.Account{ID: "a1"}))
	require.NoError(t, manager.Clear(ctx))

	current, err := manager.Current(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)

	// And clearing again still succeeds
	assert.NoError(t, manager.Clear(ctx))
}

/*
TestSessionManager_UndecodableSnapshot verifies that a snapshot that no
longer decodes reads as "no session" rather than an error.
*/
func TestSessionManager_UndecodableSnapshot(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	manager := account.NewSessionManager(store)

	store.Seed(constants.StoreKeySession, "{not-a-snapshot")

	current, err := manager.Current(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)
	assert.False(t, manager.IsAuthenticated(ctx))
}
