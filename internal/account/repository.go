// Copyright (c) 2026 Sowon. All rights reserved.
// Author: sowon.dev.kr@gmail.com

package account

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/sowondev/sowon/internal/platform/apperr"
	"github.com/sowondev/sowon/internal/platform/constants"
	"github.com/sowondev/sowon/internal/platform/kvstore"
)

// # Account Data Access

// Repository defines the data access contract for the account collection.
type Repository interface {

	/*
		List returns every account in stable insertion order.

		Parameters:
		  - context: context.Context

		Returns:
		  - []*Account: Hydrated entities
		  - error: Storage retrieval failures
	*/
	List(context context.Context) ([]*Account, error)

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Account: Hydrated entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*Account, error)

	/*
		FindByEmail returns the account with the given email (case-sensitive).

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *Account: Hydrated entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByEmail(context context.Context, email string) (*Account, error)

	/*
		Upsert replaces the record with matching ID, else appends. The whole
		collection is persisted atomically — a single write per call, so no
		partial-write state is ever observable.

		Parameters:
		  - context: context.Context
		  - account: *Account

		Returns:
		  - error: Storage persistence failures
	*/
	Upsert(context context.Context, account *Account) error
}

// # KV-backed Implementation

// StoreRepository implements [Repository] on top of the durable key-value
// store collaborator. The full collection lives as a JSON array under a
// single key.
//
// # Concurrency
//
// The load-mutate-persist pattern loses updates under concurrent writers,
// so every operation serializes through one mutex. Within a process this
// repository is the single writer of the account collection.
type StoreRepository struct {
	store  kvstore.Store
	logger *slog.Logger

	mu sync.Mutex

	// loadedOnce flips after the first successful load or persist. A corrupt
	// payload before that point is treated as an empty collection (first-ever
	// initialization); afterwards it surfaces as a storage failure.
	loadedOnce bool
}

// Ensure the interface is met.
var _ Repository = (*StoreRepository)(nil)

// NewStoreRepository constructs a [StoreRepository] over the given store.
func NewStoreRepository(store kvstore.Store, logger *slog.Logger) *StoreRepository {
	return &StoreRepository{store: store, logger: logger}
}

// List returns every account in insertion order.
func (repository *StoreRepository) List(context context.Context) ([]*Account, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	return repository.load(context)
}

// FindByID scans the collection for a matching ID. Linear scan is fine at
// this collection size; no index is maintained.
func (repository *StoreRepository) FindByID(context context.Context, id string) (*Account, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	accounts, err := repository.load(context)
	if err != nil {
		return nil, err
	}

	for _, candidate := range accounts {
		if candidate.ID == id {
			return candidate, nil
		}
	}

	return nil, apperr.NotFound("Account")
}

// FindByEmail scans the collection for a matching email. Comparison is
// case-sensitive by contract.
func (repository *StoreRepository) FindByEmail(context context.Context, email string) (*Account, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	accounts, err := repository.load(context)
	if err != nil {
		return nil, err
	}

	for _, candidate := range accounts {
		if candidate.Email == email {
			return candidate, nil
		}
	}

	return nil, apperr.NotFound("Account")
}

// Upsert replaces the record with matching ID, else appends, then persists
// the whole collection in a single write.
func (repository *StoreRepository) Upsert(context context.Context, account *Account) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	accounts, err := repository.load(context)
	if err != nil {
		return err
	}

	replaced := false
	for i, existing := range accounts {
		if existing.ID == account.ID {
			accounts[i] = account
			replaced = true
			break
		}
	}
	if !replaced {
		accounts = append(accounts, account)
	}

	return repository.persist(context, accounts)
}

// # Internal Load/Persist

// load reads and decodes the full collection. Caller must hold mu.
func (repository *StoreRepository) load(context context.Context) ([]*Account, error) {
	payload, err := repository.store.Get(context, constants.StoreKeyAccounts)
	if err != nil {
		// An absent key is the normal first-run state.
		if errors.Is(err, kvstore.ErrKeyNotFound) {
			repository.loadedOnce = true
			return []*Account{}, nil
		}
		return nil, apperr.StorageUnavailable(err)
	}

	var accounts []*Account
	if err := json.Unmarshal([]byte(payload), &accounts); err != nil {
		// A corrupted payload is forgiven only before the first successful
		// load; anything later means real data is at risk and must surface.
		if !repository.loadedOnce {
			repository.logger.Warn("account_collection_corrupt_reset",
				slog.String("error", err.Error()),
			)
			repository.loadedOnce = true
			// Discard the unreadable payload so later loads start clean.
			if err := repository.persist(context, []*Account{}); err != nil {
				return nil, err
			}
			return []*Account{}, nil
		}
		return nil, apperr.StorageUnavailable(err)
	}

	repository.loadedOnce = true
	if accounts == nil {
		accounts = []*Account{}
	}
	return accounts, nil
}

// persist encodes and writes the full collection. Caller must hold mu.
func (repository *StoreRepository) persist(context context.Context, accounts []*Account) error {
	payload, err := json.Marshal(accounts)
	if err != nil {
		return apperr.StorageUnavailable(err)
	}

	if err := repository.store.Set(context, constants.StoreKeyAccounts, string(payload)); err != nil {
		return apperr.StorageUnavailable(err)
	}

	repository.loadedOnce = true
	return nil
}
