package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// CloudBaseURL is the Bitbucket Cloud v2 API root.
const CloudBaseURL = "https://api.bitbucket.org/2.0"

// Environment variables forming the credential surface.
const (
	EnvSiteURL    = "ATLASSIAN_SITE_URL"
	EnvUserEmail  = "ATLASSIAN_USER_EMAIL"
	EnvAPIToken   = "ATLASSIAN_API_TOKEN"
	EnvAuthScheme = "ATLASSIAN_AUTH_SCHEME"
	EnvDestBranch = "BITBUCKET_DEFAULT_DEST_BRANCH"
)

// Recognized JSON configuration filenames, tried in order.
var configFileNames = []string{
	"bitbucket-mcp.json",
	".bitbucket-mcp.json",
	"bitbucket.config.json",
}

// AuthScheme selects how the API credential is presented.
type AuthScheme string

const (
	AuthBasic  AuthScheme = "basic"
	AuthBearer AuthScheme = "bearer"
)

// Config holds the resolved Bitbucket connection settings. It is built once
// at startup and never mutated afterwards.
type Config struct {
	BaseURL           string
	UserIdentity      string
	APICredential     string
	AuthScheme        AuthScheme
	DefaultDestBranch string
}

// IsCloud reports whether BaseURL denotes the Bitbucket Cloud API host.
func (c *Config) IsCloud() bool {
	return strings.Contains(c.BaseURL, "api.bitbucket.org")
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

// jsonFile mirrors the recognized JSON configuration file shape.
type jsonFile struct {
	Bitbucket struct {
		Environments map[string]string `json:"environments"`
	} `json:"bitbucket"`
}

// Load resolves the Bitbucket configuration from the working directory.
// Resolution order, first match wins:
//
//  1. A .env file in dir plus both credential variables set in the
//     environment (the .env file is loaded first, without overriding
//     variables that are already set).
//  2. A JSON file at one of the recognized filenames in dir containing
//     bitbucket.environments with the credential fields.
//  3. Both credential variables set directly in the environment.
//
// Anything else is a ConfigError.
func Load(dir string) (*Config, error) {
	envPath := filepath.Join(dir, ".env")
	if _, err := os.Stat(envPath); err == nil {
		// godotenv never overrides variables already set in the process.
		_ = godotenv.Load(envPath)
		if os.Getenv(EnvUserEmail) != "" && os.Getenv(EnvAPIToken) != "" {
			return fromValues(os.Getenv(EnvSiteURL), os.Getenv(EnvUserEmail),
				os.Getenv(EnvAPIToken), os.Getenv(EnvDestBranch)), nil
		}
	}

	for _, name := range configFileNames {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var f jsonFile
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, &ConfigError{Message: fmt.Sprintf("failed to parse %s: %v", name, err)}
		}
		envs := f.Bitbucket.Environments
		if envs[EnvUserEmail] == "" || envs[EnvAPIToken] == "" {
			continue
		}
		// A destination-branch override inside the file beats the
		// environment variable of the same purpose.
		dest := envs[EnvDestBranch]
		if dest == "" {
			dest = os.Getenv(EnvDestBranch)
		}
		return fromValues(envs[EnvSiteURL], envs[EnvUserEmail], envs[EnvAPIToken], dest), nil
	}

	if os.Getenv(EnvUserEmail) != "" && os.Getenv(EnvAPIToken) != "" {
		return fromValues(os.Getenv(EnvSiteURL), os.Getenv(EnvUserEmail),
			os.Getenv(EnvAPIToken), os.Getenv(EnvDestBranch)), nil
	}

	return nil, &ConfigError{Message: "missing credentials: set " + EnvUserEmail +
		" and " + EnvAPIToken + ", or provide a configuration file"}
}

func fromValues(siteURL, user, token, destBranch string) *Config {
	cfg := &Config{
		BaseURL:           resolveBaseURL(siteURL),
		UserIdentity:      user,
		APICredential:     token,
		DefaultDestBranch: destBranch,
	}
	if cfg.DefaultDestBranch == "" {
		cfg.DefaultDestBranch = "main"
	}
	cfg.AuthScheme = resolveAuthScheme(cfg)
	return cfg
}

// resolveBaseURL maps the literal token "bitbucket" (or an empty value) to
// the Cloud API root; any other value is used verbatim.
func resolveBaseURL(siteURL string) string {
	switch strings.TrimSpace(siteURL) {
	case "", "bitbucket":
		return CloudBaseURL
	default:
		return strings.TrimRight(siteURL, "/")
	}
}

// resolveAuthScheme derives basic for Cloud and bearer otherwise, honoring
// an explicit override.
func resolveAuthScheme(cfg *Config) AuthScheme {
	switch strings.ToLower(os.Getenv(EnvAuthScheme)) {
	case "basic":
		return AuthBasic
	case "bearer":
		return AuthBearer
	}
	if cfg.IsCloud() {
		return AuthBasic
	}
	return AuthBearer
}

// Redacted returns a copy of the config safe for display.
func (c *Config) Redacted() Config {
	out := *c
	if out.APICredential != "" {
		out.APICredential = "********"
	}
	return out
}
