// Copyright (c) 2026 Sowon. All rights reserved.
// Author: sowon.dev.kr@gmail.com

package account_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sowondev/sowon/internal/account"
	"github.com/sowondev/sowon/internal/platform/middleware"
	"github.com/sowondev/sowon/internal/platform/sec"
)

// mapVerifier resolves bearer tokens to claims from a fixed map.
type mapVerifier struct {
	tokens map[string]*sec.AuthClaims
}

func (v *mapVerifier) VerifyToken(tokenStr string) (*sec.AuthClaims, error) {
	claims, found := v.tokens[tokenStr]
	if !found {
		return nil, errors.New("unknown token")
	}
	return claims, nil
}

// newTestRouter wires the handler under the Authenticate middleware the same
// way the server composition root does.
func newTestRouter(e *engine, dailyQuota int, verifier *mapVerifier) http.Handler {
	handler := account.NewHandler(e.service, dailyQuota)

	router := chi.NewRouter()
	router.Use(middleware.Authenticate(verifier))
	router.Mount("/auth", handler.AuthRoutes())
	router.Mount("/account", handler.MeRoutes())
	return router
}

func doJSON(t *testing.T, router http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	request := httptest.NewRequest(method, path, strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

/*
TestHandler_Register covers the registration endpoint: creation, payload
errors, and the conflict status.
*/
func TestHandler_Register(t *testing.T) {
	e := newTestEngine()
	router := newTestRouter(e, 10, &mapVerifier{})

	t.Run("created", func(t *testing.T) {
		response := doJSON(t, router, http.MethodPost, "/auth/register", "",
			`{"email":"alice@example.com","password":"superSecret1","display_name":"앨리스"}`)

		assert.Equal(t, http.StatusCreated, response.Code)

		var envelope struct {
			Data account.Account `json:"data"`
		}
		require.NoError(t, json.Unmarshal(response.Body.Bytes(), &envelope))
		assert.Equal(t, "alice@example.com", envelope.Data.Email)
		assert.Empty(t, envelope.Data.CredentialVerifier)
	})

	t.Run("invalid_json", func(t *testing.T) {
		response := doJSON(t, router, http.MethodPost, "/auth/register", "", `{broken`)
		assert.Equal(t, http.StatusBadRequest, response.Code)
	})

	t.Run("validation_failure", func(t *testing.T) {
		response := doJSON(t, router, http.MethodPost, "/auth/register", "",
			`{"email":"not-an-email","password":"superSecret1","display_name":"X"}`)

		assert.Equal(t, http.StatusBadRequest, response.Code)

		var envelope struct {
			Code string `json:"code"`
		}
		require.NoError(t, json.Unmarshal(response.Body.Bytes(), &envelope))
		assert.Equal(t, "VALIDATION_ERROR", envelope.Code)
	})

	t.Run("email_conflict", func(t *testing.T) {
		response := doJSON(t, router, http.MethodPost, "/auth/register", "",
			`{"email":"alice@example.com","password":"superSecret1","display_name":"Impostor"}`)
		assert.Equal(t, http.StatusConflict, response.Code)
	})
}

/*
TestHandler_LoginLogout covers authentication status codes and the
idempotent logout.
*/
func TestHandler_LoginLogout(t *testing.T) {
	e := newTestEngine()
	router := newTestRouter(e, 10, &mapVerifier{})
	registerAlice(t, e)

	t.Run("unknown_email", func(t *testing.T) {
		response := doJSON(t, router, http.MethodPost, "/auth/login", "",
			`{"email":"nobody@example.com","password":"superSecret1"}`)
		assert.Equal(t, http.StatusNotFound, response.Code)
	})

	t.Run("wrong_password", func(t *testing.T) {
		response := doJSON(t, router, http.MethodPost, "/auth/login", "",
			`{"email":"alice@example.com","password":"wrongSecret1"}`)
		assert.Equal(t, http.StatusUnauthorized, response.Code)
	})

	t.Run("success", func(t *testing.T) {
		response := doJSON(t, router, http.MethodPost, "/auth/login", "",
			`{"email":"alice@example.com","password":"superSecret1"}`)

		require.Equal(t, http.StatusOK, response.Code)

		var envelope struct {
			Data struct {
				TokenType string          `json:"token_type"`
				Account   account.Account `json:"account"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(response.Body.Bytes(), &envelope))
		assert.Equal(t, "Bearer", envelope.Data.TokenType)
		assert.Equal(t, "alice@example.com", envelope.Data.Account.Email)
		assert.Empty(t, envelope.Data.Account.CredentialVerifier)
	})

	t.Run("logout_idempotent", func(t *testing.T) {
		assert.Equal(t, http.StatusNoContent,
			doJSON(t, router, http.MethodPost, "/auth/logout", "", "").Code)
		assert.Equal(t, http.StatusNoContent,
			doJSON(t, router, http.MethodPost, "/auth/logout", "", "").Code)
	})
}

/*
TestHandler_MeSurface covers the authenticated self-service routes: auth
gating, profile reads, and the consultation quota.
*/
func TestHandler_MeSurface(t *testing.T) {
	e := newTestEngine()
	alice := registerAlice(t, e)

	verifier := &mapVerifier{tokens: map[string]*sec.AuthClaims{
		"alice-token": {AccountID: alice.ID, Email: alice.Email},
	}}
	router := newTestRouter(e, 2, verifier)

	t.Run("requires_auth", func(t *testing.T) {
		response := doJSON(t, router, http.MethodGet, "/account/me", "", "")
		assert.Equal(t, http.StatusUnauthorized, response.Code)
	})

	t.Run("rejects_bad_token", func(t *testing.T) {
		response := doJSON(t, router, http.MethodGet, "/account/me", "forged-token", "")
		assert.Equal(t, http.StatusUnauthorized, response.Code)
	})

	t.Run("profile", func(t *testing.T) {
		response := doJSON(t, router, http.MethodGet, "/account/me", "alice-token", "")
		require.Equal(t, http.StatusOK, response.Code)

		var envelope struct {
			Data account.Account `json:"data"`
		}
		require.NoError(t, json.Unmarshal(response.Body.Bytes(), &envelope))
		assert.Equal(t, alice.ID, envelope.Data.ID)
		assert.Empty(t, envelope.Data.CredentialVerifier)
	})

	t.Run("patch_profile", func(t *testing.T) {
		response := doJSON(t, router, http.MethodPatch, "/account/me", "alice-token",
			`{"display_name":"앨리스 김"}`)
		require.Equal(t, http.StatusOK, response.Code)

		var envelope struct {
			Data account.Account `json:"data"`
		}
		require.NoError(t, json.Unmarshal(response.Body.Bytes(), &envelope))
		assert.Equal(t, "앨리스 김", envelope.Data.DisplayName)
	})

	t.Run("consultation_quota", func(t *testing.T) {
		// Quota is 2 for this router
		for i := 0; i < 2; i++ {
			response := doJSON(t, router, http.MethodPost, "/account/me/consultations", "alice-token",
				`{"details":{"topic":"career"}}`)
			require.Equal(t, http.StatusCreated, response.Code)
		}

		response := doJSON(t, router, http.MethodPost, "/account/me/consultations", "alice-token",
			`{"details":{"topic":"career"}}`)
		assert.Equal(t, http.StatusTooManyRequests, response.Code)

		// The counter endpoint agrees
		response = doJSON(t, router, http.MethodGet, "/account/me/consultations/today", "alice-token", "")
		require.Equal(t, http.StatusOK, response.Code)

		var envelope struct {
			Data map[string]int `json:"data"`
		}
		require.NoError(t, json.Unmarshal(response.Body.Bytes(), &envelope))
		assert.Equal(t, 2, envelope.Data["count"])
		assert.Equal(t, 2, envelope.Data["quota"])
	})

	t.Run("profile_data", func(t *testing.T) {
		// A missing blob is a field-level validation failure
		response := doJSON(t, router, http.MethodPut, "/account/me/profile-data", "alice-token", `{}`)
		assert.Equal(t, http.StatusBadRequest, response.Code)

		var failure struct {
			Code    string `json:"code"`
			Details []struct {
				Field string `json:"field"`
			} `json:"details"`
		}
		require.NoError(t, json.Unmarshal(response.Body.Bytes(), &failure))
		assert.Equal(t, "VALIDATION_ERROR", failure.Code)
		require.NotEmpty(t, failure.Details)
		assert.Equal(t, "profile_data", failure.Details[0].Field)

		response = doJSON(t, router, http.MethodPut, "/account/me/profile-data", "alice-token",
			`{"profile_data":{"elements":{"wood":2}}}`)
		require.Equal(t, http.StatusOK, response.Code)

		var envelope struct {
			Data account.Account `json:"data"`
		}
		require.NoError(t, json.Unmarshal(response.Body.Bytes(), &envelope))
		assert.NotNil(t, envelope.Data.ProfileComputedAt)
	})

	t.Run("purchase_history", func(t *testing.T) {
		response := doJSON(t, router, http.MethodPost, "/account/me/purchases", "alice-token",
			`{"type":"premium_monthly","details":{"amount":9900}}`)
		require.Equal(t, http.StatusCreated, response.Code)

		response = doJSON(t, router, http.MethodGet, "/account/me/purchases", "alice-token", "")
		require.Equal(t, http.StatusOK, response.Code)

		var envelope struct {
			Data []account.PurchaseRecord `json:"data"`
		}
		require.NoError(t, json.Unmarshal(response.Body.Bytes(), &envelope))
		require.Len(t, envelope.Data, 1)
		assert.Equal(t, account.PurchasePremiumMonthly, envelope.Data[0].Type)
	})
}
