package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer(t *testing.T) {
	cfg, err := Server("0.0.0.0", 8080, "data.sqlite", "hush", 120, true)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr)
	assert.Equal(t, "data.sqlite", cfg.DBUrl)
	assert.Equal(t, 2*time.Minute, cfg.TokenTTL)
	assert.True(t, cfg.Debug)

	_, err = Server("0.0.0.0", 8080, "data.sqlite", "", 120, false)
	assert.EqualError(t, err, "missing parameter -token-secret")
}

func TestUrl(t *testing.T) {
	cfg := Config{Addr: "0.0.0.0:8080"}
	assert.Equal(t, "http://localhost:8080", cfg.Url())

	cfg = Config{Addr: "example.org:80"}
	assert.Equal(t, "http://example.org:80", cfg.Url())
}
