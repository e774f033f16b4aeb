package config

import (
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnvDefaults(t *testing.T) {
	c, err := FromEnv(envOf(map[string]string{
		"HTTP_ADDR":          ":8080",
		"JWT_SECRET":         "s3cret",
		"INTERNAL_API_TOKEN": "ops",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, "optiondesk", c.JWTIssuer)
	assert.Equal(t, 24*time.Hour, c.JWTTTL)
	assert.Equal(t, "*", c.WebSocketOrigin)
	assert.Equal(t, "development", c.AppMode)
	assert.Equal(t, log.InfoLevel, c.LogLevel)
	assert.Equal(t, 6.5, c.DefaultRiskFreeRate)
	assert.Empty(t, c.DBDSN)
}

func TestFromEnvReportsAllMissing(t *testing.T) {
	_, err := FromEnv(envOf(map[string]string{"APP_MODE": "production"}))
	require.Error(t, err)
	assert.Equal(t, "missing required env: HTTP_ADDR,JWT_SECRET,INTERNAL_API_TOKEN,DB_DSN", err.Error())
}

func TestFromEnvParsesOverrides(t *testing.T) {
	c, err := FromEnv(envOf(map[string]string{
		"HTTP_ADDR":               ":9000",
		"JWT_SECRET":              "s3cret",
		"JWT_TTL":                 "90m",
		"INTERNAL_API_TOKEN_HASH": "$2a$10$abc",
		"LOG_LEVEL":               "debug",
		"DEFAULT_RISK_FREE_RATE":  "7.1",
	}))
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, c.JWTTTL)
	assert.Equal(t, log.DebugLevel, c.LogLevel)
	assert.Equal(t, 7.1, c.DefaultRiskFreeRate)

	_, err = FromEnv(envOf(map[string]string{"HTTP_ADDR": ":1", "JWT_SECRET": "x", "INTERNAL_API_TOKEN": "y", "APP_MODE": "staging"}))
	assert.EqualError(t, err, "invalid APP_MODE: use development or production")
}

func TestFromEnvRejectsNonFiniteRiskFreeRate(t *testing.T) {
	for _, raw := range []string{"NaN", "Inf", "-inf", "6.5%"} {
		_, err := FromEnv(envOf(map[string]string{
			"HTTP_ADDR":              ":8080",
			"JWT_SECRET":             "s3cret",
			"INTERNAL_API_TOKEN":     "ops",
			"DEFAULT_RISK_FREE_RATE": raw,
		}))
		assert.EqualError(t, err, "invalid DEFAULT_RISK_FREE_RATE", raw)
	}
}
