package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTOSHOP_DB_DSN", "shop:secret@tcp(localhost:3306)/autoshop")
	t.Setenv("AUTOSHOP_BACKEND_URL", "https://backend.example.com")
	t.Setenv("AUTOSHOP_BACKEND_API_KEY", "anon-key")

	c, err := Load()

	require.NoError(t, err)
	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, 10, c.DBMaxOpenConns)
	assert.Equal(t, 10*time.Second, c.BackendTimeout)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "https://backend.example.com", c.BackendURL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("AUTOSHOP_DB_DSN", "dsn")
	t.Setenv("AUTOSHOP_BACKEND_URL", "https://backend.example.com")
	t.Setenv("AUTOSHOP_BACKEND_API_KEY", "anon-key")
	t.Setenv("AUTOSHOP_HTTP_ADDR", ":9090")
	t.Setenv("AUTOSHOP_BACKEND_TIMEOUT", "3s")

	c, err := Load()

	require.NoError(t, err)
	assert.Equal(t, ":9090", c.HTTPAddr)
	assert.Equal(t, 3*time.Second, c.BackendTimeout)
}

func TestLoadFailsWithoutRequired(t *testing.T) {
	t.Setenv("AUTOSHOP_DB_DSN", "")
	t.Setenv("AUTOSHOP_BACKEND_URL", "")
	t.Setenv("AUTOSHOP_BACKEND_API_KEY", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsNonPositivePool(t *testing.T) {
	t.Setenv("AUTOSHOP_DB_DSN", "dsn")
	t.Setenv("AUTOSHOP_BACKEND_URL", "https://backend.example.com")
	t.Setenv("AUTOSHOP_BACKEND_API_KEY", "anon-key")
	t.Setenv("AUTOSHOP_DB_MAX_OPEN_CONNS", "0")

	_, err := Load()
	assert.Error(t, err)
}
