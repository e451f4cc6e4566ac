package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearCredentialEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvSiteURL, EnvUserEmail, EnvAPIToken, EnvAuthScheme, EnvDestBranch} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadMissingCredentials(t *testing.T) {
	clearCredentialEnv(t)

	_, err := Load(t.TempDir())
	require.Error(t, err)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), "missing credentials")
}

func TestLoadFromEnvCloud(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv(EnvSiteURL, "bitbucket")
	t.Setenv(EnvUserEmail, "dev@example.com")
	t.Setenv(EnvAPIToken, "tok123")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "https://api.bitbucket.org/2.0", cfg.BaseURL)
	assert.Equal(t, "dev@example.com", cfg.UserIdentity)
	assert.Equal(t, "tok123", cfg.APICredential)
	assert.Equal(t, AuthBasic, cfg.AuthScheme)
	assert.Equal(t, "main", cfg.DefaultDestBranch)
	assert.True(t, cfg.IsCloud())
}

func TestLoadFromEnvServer(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv(EnvSiteURL, "https://git.example.com/rest/api/1.0")
	t.Setenv(EnvUserEmail, "dev@example.com")
	t.Setenv(EnvAPIToken, "tok123")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "https://git.example.com/rest/api/1.0", cfg.BaseURL)
	assert.Equal(t, AuthBearer, cfg.AuthScheme)
	assert.False(t, cfg.IsCloud())
}

func TestLoadAuthSchemeOverride(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv(EnvSiteURL, "https://git.example.com")
	t.Setenv(EnvUserEmail, "dev@example.com")
	t.Setenv(EnvAPIToken, "tok123")
	t.Setenv(EnvAuthScheme, "basic")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, AuthBasic, cfg.AuthScheme)
}

func TestLoadEmptySiteURLDefaultsToCloud(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv(EnvUserEmail, "dev@example.com")
	t.Setenv(EnvAPIToken, "tok123")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, CloudBaseURL, cfg.BaseURL)
}

func TestLoadDotEnvPrecedence(t *testing.T) {
	clearCredentialEnv(t)
	dir := t.TempDir()

	env := "ATLASSIAN_SITE_URL=bitbucket\n" +
		"ATLASSIAN_USER_EMAIL=dotenv@example.com\n" +
		"ATLASSIAN_API_TOKEN=dotenv-token\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o600))

	// A JSON file is also present; the .env path must win.
	json := `{"bitbucket":{"environments":{
		"ATLASSIAN_SITE_URL":"https://git.example.com",
		"ATLASSIAN_USER_EMAIL":"file@example.com",
		"ATLASSIAN_API_TOKEN":"file-token"}}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bitbucket-mcp.json"), []byte(json), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "dotenv@example.com", cfg.UserIdentity)
	assert.Equal(t, "dotenv-token", cfg.APICredential)
}

func TestLoadDotEnvDoesNotOverrideProcessEnv(t *testing.T) {
	clearCredentialEnv(t)
	dir := t.TempDir()

	env := "ATLASSIAN_USER_EMAIL=dotenv@example.com\n" +
		"ATLASSIAN_API_TOKEN=dotenv-token\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o600))

	t.Setenv(EnvUserEmail, "process@example.com")
	t.Setenv(EnvAPIToken, "process-token")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "process@example.com", cfg.UserIdentity)
	assert.Equal(t, "process-token", cfg.APICredential)
}

func TestLoadFromJSONFile(t *testing.T) {
	clearCredentialEnv(t)
	dir := t.TempDir()

	json := `{"bitbucket":{"environments":{
		"ATLASSIAN_SITE_URL":"https://git.example.com",
		"ATLASSIAN_USER_EMAIL":"file@example.com",
		"ATLASSIAN_API_TOKEN":"file-token",
		"BITBUCKET_DEFAULT_DEST_BRANCH":"develop"}}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".bitbucket-mcp.json"), []byte(json), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "https://git.example.com", cfg.BaseURL)
	assert.Equal(t, "file@example.com", cfg.UserIdentity)
	assert.Equal(t, AuthBearer, cfg.AuthScheme)
	assert.Equal(t, "develop", cfg.DefaultDestBranch)
}

func TestLoadJSONDestBranchBeatsEnv(t *testing.T) {
	clearCredentialEnv(t)
	dir := t.TempDir()
	t.Setenv(EnvDestBranch, "master")

	json := `{"bitbucket":{"environments":{
		"ATLASSIAN_USER_EMAIL":"file@example.com",
		"ATLASSIAN_API_TOKEN":"file-token",
		"BITBUCKET_DEFAULT_DEST_BRANCH":"develop"}}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bitbucket.config.json"), []byte(json), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "develop", cfg.DefaultDestBranch)
}

func TestLoadJSONFileInvalid(t *testing.T) {
	clearCredentialEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bitbucket-mcp.json"), []byte("{not json"), 0o600))

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse")
}

func TestLoadTrimsTrailingSlash(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv(EnvSiteURL, "https://git.example.com/")
	t.Setenv(EnvUserEmail, "dev@example.com")
	t.Setenv(EnvAPIToken, "tok123")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "https://git.example.com", cfg.BaseURL)
}

func TestRedacted(t *testing.T) {
	cfg := &Config{APICredential: "secret", UserIdentity: "dev@example.com"}
	red := cfg.Redacted()
	assert.Equal(t, "********", red.APICredential)
	assert.Equal(t, "secret", cfg.APICredential)
	assert.Equal(t, "dev@example.com", red.UserIdentity)
}

func TestResolvePaths(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("BITBUCKET_MCP_HOME", tmp)

	paths, err := ResolvePaths()
	require.NoError(t, err)
	assert.Equal(t, tmp, paths.Base)
	assert.Equal(t, filepath.Join(tmp, "config.yaml"), paths.Settings)
	assert.Contains(t, paths.Logs, "logs")
}

func TestEnsureDirs(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("BITBUCKET_MCP_HOME", tmp)

	paths, err := ResolvePaths()
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirs())

	info, err := os.Stat(paths.Logs)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
