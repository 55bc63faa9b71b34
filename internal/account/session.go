// Copyright (c) 2026 Sowon. All rights reserved.
// Author: sowon.dev.kr@gmail.com

package account

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/sowondev/sowon/internal/platform/apperr"
	"github.com/sowondev/sowon/internal/platform/constants"
	"github.com/sowondev/sowon/internal/platform/kvstore"
)

// SessionManager tracks the single "current" authenticated account as a
// redacted snapshot, independent of the authoritative account collection.
//
// # Design
//
// This is an explicit instance passed to callers, not ambient global state,
// so multiple independent sessions (e.g. multi-tenant tests) stay
// representable. The snapshot is durable only for whatever lifetime the
// collaborator store gives the key.
//
// # Staleness
//
// No consistency with the repository is enforced beyond publish time.
// [SessionManager.Current] returns the last-published snapshot as-is; callers
// needing freshness must re-fetch by ID through the repository.
type SessionManager struct {
	store kvstore.Store
}

// NewSessionManager constructs a [SessionManager] over the given store.
func NewSessionManager(store kvstore.Store) *SessionManager {
	return &SessionManager{store: store}
}

/*
Publish stores a redacted copy of the account as the current session.

Parameters:
  - context: context.Context
  - account: *Account (will be redacted before storage)

Returns:
  - error: Storage persistence failures
*/
func (manager *SessionManager) Publish(context context.Context, account *Account) error {
	payload, err := json.Marshal(account.Redacted())
	if err != nil {
		return apperr.StorageUnavailable(err)
	}

	if err := manager.store.Set(context, constants.StoreKeySession, string(payload)); err != nil {
		return apperr.StorageUnavailable(err)
	}

	return nil
}

/*
Current returns the last-published redacted snapshot, or nil when no
session is active.

Parameters:
  - context: context.Context

Returns:
  - *Account: Redacted snapshot, nil when absent
  - error: Storage retrieval failures
*/
func (manager *SessionManager) Current(context context.Context) (*Account, error) {
	payload, err := manager.store.Get(context, constants.StoreKeySession)
	if err != nil {
		if errors.Is(err, kvstore.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, apperr.StorageUnavailable(err)
	}

	var snapshot Account
	if err := json.Unmarshal([]byte(payload), &snapshot); err != nil {
		// An undecodable snapshot is indistinguishable from no session.
		return nil, nil
	}

	return &snapshot, nil
}

/*
Clear removes the current session. Clearing an already-empty session is a
no-op success (idempotent).

Parameters:
  - context: context.Context

Returns:
  - error: Storage failures
*/
func (manager *SessionManager) Clear(context context.Context) error {
	if err := manager.store.Remove(context, constants.StoreKeySession); err != nil {
		return apperr.StorageUnavailable(err)
	}
	return nil
}

/*
IsAuthenticated reports whether a session snapshot is currently published.

Parameters:
  - context: context.Context

Returns:
  - bool: true iff Current() would return a snapshot
*/
func (manager *SessionManager) IsAuthenticated(context context.Context) bool {
	current, err := manager.Current(context)
	return err == nil && current != nil
}
