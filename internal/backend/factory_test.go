package backend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"harcama/internal/api"
	"harcama/internal/api/memory"
	"harcama/internal/config"
	"harcama/internal/log"
)

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	assert.Error(t, err)

	_, err = FromAppConfig(&config.Config{DataBackend: "sheets"})
	assert.Error(t, err)

	c, err := FromAppConfig(&config.Config{DataBackend: "rest", APIBaseURL: "http://localhost:8080"})
	require.NoError(t, err)
	assert.Equal(t, RESTBackend, c.Type)
	assert.Equal(t, "http://localhost:8080", c.APIBaseURL)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, Config{Type: MemoryBackend}.Validate())
	assert.NoError(t, Config{Type: RESTBackend, APIBaseURL: "http://x"}.Validate())
	assert.Error(t, Config{Type: RESTBackend}.Validate())
	assert.Error(t, Config{Type: "sqlite"}.Validate())
}

func TestGetBackendTypeStrings(t *testing.T) {
	assert.Equal(t, []string{"rest", "memory"}, GetBackendTypeStrings())
}

func TestCreateBackend(t *testing.T) {
	f := NewFactory(log.Discard(), nil)
	ctx := context.Background()

	res, err := f.CreateBackend(ctx, Config{Type: RESTBackend, APIBaseURL: "http://localhost:8080"})
	require.NoError(t, err)
	assert.IsType(t, &api.Client{}, res.Backend)
	require.NotNil(t, res.Cleanup)
	assert.NoError(t, res.Cleanup())

	res, err = f.CreateBackend(ctx, Config{Type: MemoryBackend})
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, res.Backend)
	assert.Nil(t, res.Cleanup)

	_, err = f.CreateBackend(ctx, Config{Type: "sheets"})
	assert.Error(t, err)
}
