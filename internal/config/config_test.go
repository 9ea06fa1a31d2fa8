package config

import (
	"encoding/hex"
	"testing"
	"time"

	"github.com/aviate-labs/agent-go/principal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sage-x-project/sage-http-certification/internal/certtesting"
)

func setRequired(t *testing.T) principal.Principal {
	t.Helper()
	p := principal.Principal{Raw: certtesting.CanisterID}
	t.Setenv("CANISTER_ID", p.String())
	t.Setenv("ROOT_KEY_HEX", hex.EncodeToString(certtesting.NewKeyPair("config").DERPublicKey()))
	return p
}

func TestFromEnvDefaults(t *testing.T) {
	p := setRequired(t)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, p.Raw, cfg.CanisterID.Raw)
	assert.Equal(t, certtesting.NewKeyPair("config").DERPublicKey(), cfg.RootKey)
	assert.Equal(t, 5*time.Minute, cfg.MaxCertTimeOffset())
	assert.Equal(t, 1, cfg.MinVerificationVersion)
	assert.False(t, cfg.AllowUncertified)
	assert.Equal(t, 1000, cfg.SignatureCacheSize)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, 0, cfg.RedisDB)
}

func TestFromEnvOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("UPSTREAM_URL", "http://upstream:8000")
	t.Setenv("MAX_CERT_TIME_OFFSET_SECONDS", "60")
	t.Setenv("MIN_VERIFICATION_VERSION", "2")
	t.Setenv("ALLOW_UNCERTIFIED", "yes")
	t.Setenv("SIGNATURE_CACHE_SIZE", "0")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "3")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "http://upstream:8000", cfg.UpstreamURL)
	assert.Equal(t, time.Minute, cfg.MaxCertTimeOffset())
	assert.Equal(t, 2, cfg.MinVerificationVersion)
	assert.True(t, cfg.AllowUncertified)
	assert.Equal(t, 0, cfg.SignatureCacheSize)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 3, cfg.RedisDB)
}

func TestFromEnvInvalidValuesFallBack(t *testing.T) {
	setRequired(t)
	t.Setenv("MAX_CERT_TIME_OFFSET_SECONDS", "soon")
	t.Setenv("ALLOW_UNCERTIFIED", "maybe")
	t.Setenv("REDIS_DB", "-1")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 300, cfg.MaxCertTimeOffsetSecs)
	assert.False(t, cfg.AllowUncertified)
	assert.Equal(t, 0, cfg.RedisDB)
}

func TestFromEnvErrors(t *testing.T) {
	cases := map[string]map[string]string{
		"missing canister": {"CANISTER_ID": ""},
		"bad canister":     {"CANISTER_ID": "!!!"},
		"missing root key": {"ROOT_KEY_HEX": ""},
		"bad root key":     {"ROOT_KEY_HEX": "zz"},
		"version too big":  {"MIN_VERIFICATION_VERSION": "256"},
		"version prefixed": {"MIN_VERIFICATION_VERSION": "v2"},
		"version spaced":   {"MIN_VERIFICATION_VERSION": "2 "},
		"version word":     {"MIN_VERIFICATION_VERSION": "two"},
		"version zero":     {"MIN_VERIFICATION_VERSION": "0"},
		"version negative": {"MIN_VERIFICATION_VERSION": "-1"},
		"version unknown":  {"MIN_VERIFICATION_VERSION": "3"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			setRequired(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			cfg, err := FromEnv()
			assert.Error(t, err)
			assert.Zero(t, cfg.MinVerificationVersion)
		})
	}
}
