package main

import (
	"path/filepath"
	"testing"

	"github.com/sagarc03/fsgate/clientcli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetFlags(t *testing.T) {
	t.Helper()
	cfgFile, endpoint, apiKey, profile = "", "", "", ""
	t.Setenv("FSGATE_ENDPOINT", "")
	t.Setenv("FSGATE_API_KEY", "")
	t.Setenv("FSGATE_PROFILE", "")
	t.Setenv("FSGATE_CONFIG", "")
	t.Cleanup(func() { cfgFile, endpoint, apiKey, profile = "", "", "", "" })
}

func writeProfiles(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	file := &clientcli.ConfigFile{Profiles: []clientcli.Profile{
		{Name: "local", Endpoint: "http://localhost:5708", APIKey: "local-key", Default: true},
		{Name: "prod", Endpoint: "https://files.example.com", APIKey: "prod-key"},
	}}
	require.NoError(t, file.Save(path))
	return path
}

func TestBuildConfig_DefaultProfile(t *testing.T) {
	resetFlags(t)
	cfgFile = writeProfiles(t)

	cfg, err := buildConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5708", cfg.Endpoint)
	assert.Equal(t, "local-key", cfg.APIKey)
}

func TestBuildConfig_NamedProfileFromEnv(t *testing.T) {
	resetFlags(t)
	cfgFile = writeProfiles(t)
	t.Setenv("FSGATE_PROFILE", "prod")

	cfg, err := buildConfig()
	require.NoError(t, err)
	assert.Equal(t, "https://files.example.com", cfg.Endpoint)
	assert.Equal(t, "prod-key", cfg.APIKey)
}

func TestBuildConfig_UnknownProfile(t *testing.T) {
	resetFlags(t)
	cfgFile = writeProfiles(t)
	profile = "missing"

	_, err := buildConfig()
	assert.ErrorIs(t, err, clientcli.ErrProfileNotFound)
}

func TestBuildConfig_FlagsOverrideEnvAndFile(t *testing.T) {
	resetFlags(t)
	cfgFile = writeProfiles(t)
	t.Setenv("FSGATE_API_KEY", "env-key")

	cfg, err := buildConfig()
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.APIKey)

	apiKey = "flag-key"
	endpoint = "http://127.0.0.1:9000"

	cfg, err = buildConfig()
	require.NoError(t, err)
	assert.Equal(t, "flag-key", cfg.APIKey)
	assert.Equal(t, "http://127.0.0.1:9000", cfg.Endpoint)
}

func TestBuildConfig_MissingDefaultFileIgnored(t *testing.T) {
	resetFlags(t)
	t.Setenv("HOME", t.TempDir())
	apiKey = "flag-key"

	cfg, err := buildConfig()
	require.NoError(t, err)
	assert.Equal(t, "flag-key", cfg.APIKey)
}

func TestBuildConfig_MissingExplicitFile(t *testing.T) {
	resetFlags(t)
	cfgFile = filepath.Join(t.TempDir(), "nope.yaml")

	_, err := buildConfig()
	assert.Error(t, err)
}

func TestGetClient_RequiresAPIKey(t *testing.T) {
	resetFlags(t)
	t.Setenv("HOME", t.TempDir())

	_, err := getClient()
	assert.ErrorIs(t, err, clientcli.ErrAPIKeyRequired)
}
