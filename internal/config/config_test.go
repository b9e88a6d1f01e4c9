package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("JWT_SECRET", strings.Repeat("a", 32))
	t.Setenv("TOKEN_TTL", "90m")
	t.Setenv("HTTP_PORT", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, 90*time.Minute, cfg.TokenTTL)
	assert.Equal(t, "warn", cfg.DBLogLevel)
}

func TestLoad_InvalidDurationFallsBack(t *testing.T) {
	t.Setenv("JWT_SECRET", strings.Repeat("a", 32))
	t.Setenv("TOKEN_TTL", "tomorrow")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name string
		cfg  Config
		msg  string
	}{
		{name: "missing secret", cfg: Config{TokenTTL: time.Hour}, msg: "JWT_SECRET is not set"},
		{name: "short secret", cfg: Config{JWTSecret: "short", TokenTTL: time.Hour}, msg: "at least 32"},
		{name: "zero ttl", cfg: Config{JWTSecret: strings.Repeat("a", 32)}, msg: "TOKEN_TTL"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.msg)
		})
	}
}
