package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "sql", cfg.Store.Backend)
	assert.Equal(t, "local", cfg.Identity.Backend)
	assert.Equal(t, "manual", cfg.Upload.Backend)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("SESSION_SECRET", "secret")
	t.Setenv("STORE_BACKEND", "Firestore")
	t.Setenv("DOMAIN", "https://odontologiapedro.com.br/")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "firestore", cfg.Store.Backend)
	assert.Equal(t, "https://odontologiapedro.com.br", cfg.Server.Domain)
}

func TestLoadConfig_MissingSecret(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")

	_, err := LoadConfig()
	assert.ErrorIs(t, err, ErrMissingSessionSecret)
}
