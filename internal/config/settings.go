package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Settings carries the non-credential knobs of the bridge, read from the
// YAML file under the base directory. Credentials never live here.
type Settings struct {
	Logging LoggingSettings `yaml:"logging"`
	HTTP    HTTPSettings    `yaml:"http"`
}

type LoggingSettings struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type HTTPSettings struct {
	TimeoutSeconds int `yaml:"timeoutSeconds"`
}

// DefaultSettings returns Settings with sensible defaults applied.
func DefaultSettings() Settings {
	return Settings{
		Logging: LoggingSettings{Level: "info"},
		HTTP:    HTTPSettings{TimeoutSeconds: 30},
	}
}

// envVarPattern matches ${VAR_NAME} patterns in strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} patterns with environment variable values.
// Unset variables are left unchanged.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match
	})
}

// LoadSettings reads the settings file, applies environment overrides, and
// returns merged Settings. A missing file produces defaults only.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applySettingsEnvOverrides(&s)
			return s, nil
		}
		return s, err
	}

	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, &ConfigError{Message: "failed to parse settings: " + err.Error()}
	}

	applySettingsDefaults(&s)
	applySettingsEnvOverrides(&s)
	s.Logging.File = expandEnvVars(s.Logging.File)
	return s, nil
}

// applySettingsDefaults fills zero-value fields with sensible defaults.
func applySettingsDefaults(s *Settings) {
	if s.Logging.Level == "" {
		s.Logging.Level = "info"
	}
	if s.HTTP.TimeoutSeconds == 0 {
		s.HTTP.TimeoutSeconds = 30
	}
}

// applySettingsEnvOverrides reads BITBUCKET_MCP_* environment variables and
// overrides settings values.
func applySettingsEnvOverrides(s *Settings) {
	if v := os.Getenv("BITBUCKET_MCP_LOG_LEVEL"); v != "" {
		s.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("BITBUCKET_MCP_LOG_FILE"); v != "" {
		s.Logging.File = v
	}
	if v := os.Getenv("BITBUCKET_MCP_HTTP_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			s.HTTP.TimeoutSeconds = secs
		}
	}
}
