package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, c.DefaultTimeout)
	assert.Equal(t, 1, c.MaxRetries)
	assert.Equal(t, "docs/policies", c.PolicyDir)
	assert.Equal(t, "info", c.LogLevel)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SALESMESH_DEFAULT_TIMEOUT", "250ms")
	t.Setenv("SALESMESH_MAX_RETRIES", "3")
	t.Setenv("SALESMESH_REDIS_ADDR", "localhost:6379")
	t.Setenv("SALESMESH_LOG_LEVEL", "debug")

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, c.DefaultTimeout)
	assert.Equal(t, 3, c.MaxRetries)
	assert.Equal(t, "localhost:6379", c.RedisAddr)
	assert.Equal(t, "debug", c.LogLevel)
}

func TestValidate(t *testing.T) {
	c := &Config{DefaultTimeout: time.Second, MaxRetries: 0}
	require.NoError(t, c.Validate())

	c.DefaultTimeout = 0
	assert.Error(t, c.Validate())

	c.DefaultTimeout = time.Second
	c.MaxRetries = -1
	assert.Error(t, c.Validate())
}
