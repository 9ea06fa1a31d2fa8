package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aviate-labs/agent-go/principal"

	"github.com/sage-x-project/sage-http-certification/pkg/protocol"
)

type Config struct {
	HTTPAddr    string
	UpstreamURL string
	LogLevel    string

	CanisterID principal.Principal
	RootKey    []byte

	MaxCertTimeOffsetSecs  int
	MinVerificationVersion int
	AllowUncertified       bool
	SignatureCacheSize     int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// FromEnv reads the gateway configuration. CANISTER_ID and ROOT_KEY_HEX are
// required.
func FromEnv() (Config, error) {
	cfg := Config{
		HTTPAddr:               envDefault("HTTP_ADDR", ":8080"),
		UpstreamURL:            os.Getenv("UPSTREAM_URL"),
		LogLevel:               envDefault("LOG_LEVEL", "info"),
		MaxCertTimeOffsetSecs:  envIntDefault("MAX_CERT_TIME_OFFSET_SECONDS", 300),
		AllowUncertified:       envBoolDefault("ALLOW_UNCERTIFIED", false),
		SignatureCacheSize:     envIntDefault("SIGNATURE_CACHE_SIZE", 1000),
		RedisAddr:              os.Getenv("REDIS_ADDR"),
		RedisPassword:          os.Getenv("REDIS_PASSWORD"),
		RedisDB:                envIntDefault("REDIS_DB", 0),
	}

	canister := strings.TrimSpace(os.Getenv("CANISTER_ID"))
	if canister == "" {
		return Config{}, errors.New("CANISTER_ID is required")
	}
	p, err := principal.Decode(canister)
	if err != nil {
		return Config{}, fmt.Errorf("invalid CANISTER_ID: %w", err)
	}
	cfg.CanisterID = p

	rootKey := strings.TrimSpace(os.Getenv("ROOT_KEY_HEX"))
	if rootKey == "" {
		return Config{}, errors.New("ROOT_KEY_HEX is required")
	}
	cfg.RootKey, err = hex.DecodeString(rootKey)
	if err != nil {
		return Config{}, fmt.Errorf("invalid ROOT_KEY_HEX: %w", err)
	}

	cfg.MinVerificationVersion, err = envVersion("MIN_VERIFICATION_VERSION", int(protocol.MinVerificationVersion))
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) MaxCertTimeOffset() time.Duration {
	return time.Duration(c.MaxCertTimeOffsetSecs) * time.Second
}

func envDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func envIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}

// envVersion parses a verification version strictly. Unlike the other
// numeric knobs, a bad value is an error rather than the default.
func envVersion(key string, def int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def, nil
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	if parsed < int(protocol.MinVerificationVersion) || parsed > int(protocol.MaxVerificationVersion) {
		return 0, fmt.Errorf("invalid %s %d: supported versions are %d to %d",
			key, parsed, protocol.MinVerificationVersion, protocol.MaxVerificationVersion)
	}
	return parsed, nil
}

func envBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "Yes":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "No":
		return false
	default:
		return def
	}
}
