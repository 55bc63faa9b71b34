// Copyright (c) 2026 Sowon. All rights reserved.
// Author: sowon.dev.kr@gmail.com

package config_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sowondev/sowon/internal/platform/config"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/sowon")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("JWT_PRIVATE_KEY_PATH", "/keys/private.pem")
	t.Setenv("JWT_PUBLIC_KEY_PATH", "/keys/public.pem")
}

/*
TestConfig_Defaults verifies that Load fills the documented defaults when
only the required variables are set.
*/
func TestConfig_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "bcrypt", cfg.CredentialCodec)
	assert.Equal(t, "Asia/Seoul", cfg.ReferenceTimezone)
	assert.Equal(t, 10, cfg.DailyConsultationQuota)
}

/*
TestConfig_MissingRequired verifies that Load fails when a required
variable is absent.
*/
func TestConfig_MissingRequired(t *testing.T) {
	setRequiredEnv(t)
	// t.Setenv registered the restore; drop the variable entirely since
	// "required" checks presence, not emptiness.
	require.NoError(t, os.Unsetenv("DATABASE_URL"))

	_, err := config.Load()
	assert.Error(t, err)
}

/*
TestConfig_EnvironmentPredicates pins the environment classification used
by startup guards (production refuses the log-only secret deliverer).
*/
func TestConfig_EnvironmentPredicates(t *testing.T) {
	tests := []struct {
		name          string
		environment   string
		isDevelopment bool
		isProduction  bool
	}{
		{"development", "development", true, false},
		{"production", "production", false, true},
		{"staging_is_neither", "staging", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv("ENVIRONMENT", tt.environment)

			cfg, err := config.Load()
			require.NoError(t, err)

			assert.Equal(t, tt.isDevelopment, cfg.IsDevelopment())
			assert.Equal(t, tt.isProduction, cfg.IsProduction())
		})
	}
}
