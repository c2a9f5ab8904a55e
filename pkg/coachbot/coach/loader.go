// Package coach – loader.go handles loading configuration from YAML files
// with credentials supplied via environment variables and .env files.
package coach

import (
	"fmt"
	"os"
	"regexp"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// envVarPattern matches environment variable references in config values:
//   - ${VAR_NAME}          - simple variable
//   - ${VAR_NAME:-default} - default value if not set
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// LoadConfig builds the effective configuration: defaults, then the YAML
// file (optional when path is empty and no config.yaml exists), then
// environment variable overrides using the original variable names.
// .env files are loaded first and never override real environment values.
func LoadConfig(path string) (*Config, error) {
	loadEnvFiles()

	cfg := DefaultConfig()

	resolved, explicit := resolveConfigPath(path)
	if data, err := os.ReadFile(resolved); err == nil {
		expanded := expandEnvVars(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", resolved, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// resolveConfigPath picks the config file location. An explicit path must
// exist; otherwise config.yaml in the working directory is used when present.
func resolveConfigPath(path string) (resolved string, explicit bool) {
	if path != "" {
		return path, true
	}
	return "config.yaml", false
}

// loadEnvFiles loads .env files from the working directory.
// godotenv.Load never overwrites variables already set in the environment.
func loadEnvFiles() {
	for _, f := range []string{".env", ".env.local"} {
		if _, err := os.Stat(f); err == nil {
			_ = godotenv.Load(f)
		}
	}
}

// expandEnvVars substitutes ${VAR} and ${VAR:-default} references in the
// raw YAML before parsing.
func expandEnvVars(raw string) string {
	return envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		name, def := groups[1], groups[2]
		if val, ok := os.LookupEnv(name); ok {
			return val
		}
		return def
	})
}

// applyEnvOverrides lets the original environment variables win over file
// values, so a pure-env deployment needs no config file at all.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DISCORD_BOT_TOKEN"); v != "" {
		cfg.Discord.Token = v
	}
	if v := os.Getenv("DISCORD_USER_ID"); v != "" {
		cfg.Discord.UserID = v
	}
	if v := os.Getenv("CRAFT_API_URL"); v != "" {
		cfg.Craft.APIURL = v
	}
	if v := os.Getenv("TIMEZONE"); v != "" {
		cfg.Timezone = v
	}
}

// SaveConfig writes the configuration as YAML, replacing the token with an
// environment reference so the credential never lands on disk in plaintext.
func SaveConfig(cfg *Config, path string) error {
	sanitized := *cfg
	if sanitized.Discord.Token != "" {
		sanitized.Discord.Token = "${DISCORD_BOT_TOKEN}"
	}

	data, err := yaml.Marshal(&sanitized)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
