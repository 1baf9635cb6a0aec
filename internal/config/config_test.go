package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"main"}, cfg.RagIndex.EnabledBaseBranches)
	assert.Equal(t, []string{"go", "gomod", "python"}, cfg.RagIndex.AllowedLanguages)
	assert.Equal(t, 10, cfg.RagIndex.BatchSize)
	assert.Equal(t, 2500, cfg.RagIndex.QueryTokenBuffer)
	assert.Equal(t, "http://127.0.0.1:8000", cfg.RagIndex.RagBackendBaseURL)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("RAG_INDEX_RAG_BACKEND_BASE_URL", "http://backend.internal:9000")
	t.Setenv("GITHUB_APP_ID", "42")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "http://backend.internal:9000", cfg.RagIndex.RagBackendBaseURL)
	assert.EqualValues(t, 42, cfg.GitHub.AppID)
}

func TestValidateForServerRequiresAppCredentials(t *testing.T) {
	cfg := &Config{}
	err := cfg.ValidateForServer()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "app_id")
}

func TestValidateForServerRequiresPrivateKeyFile(t *testing.T) {
	cfg := &Config{
		GitHub: GitHubConfig{
			AppID:          1,
			WebhookSecret:  "secret",
			PrivateKeyPath: "/nonexistent/path.pem",
		},
		RagIndex: RagIndexConfig{AllowedLanguages: []string{"go"}},
	}
	err := cfg.ValidateForServer()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "private key")
}

func TestValidateForServerSucceeds(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "key-*.pem")
	require.NoError(t, err)
	defer f.Close()

	cfg := &Config{
		GitHub: GitHubConfig{
			AppID:          1,
			WebhookSecret:  "secret",
			PrivateKeyPath: f.Name(),
		},
		RagIndex: RagIndexConfig{AllowedLanguages: []string{"go"}},
	}
	assert.NoError(t, cfg.ValidateForServer())
}

func TestValidateForCLIOnlyRequiresLanguages(t *testing.T) {
	cfg := &Config{}
	require.Error(t, cfg.ValidateForCLI())

	cfg.RagIndex.AllowedLanguages = []string{"go"}
	assert.NoError(t, cfg.ValidateForCLI())
}

func TestDBConfigGetDSN(t *testing.T) {
	db := DBConfig{Host: "localhost", Port: 5432, Username: "postgres", Password: "pw", Database: "rag_index_manager", SSLMode: "disable"}
	dsn := db.GetDSN()
	assert.Contains(t, dsn, "host=localhost")
	assert.Contains(t, dsn, "dbname=rag_index_manager")
}
