package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/keywatch/keywatch/internal/core/domain"
	"github.com/keywatch/keywatch/internal/core/ports/driven"
)

// Environment variables consulted for credentials, after flags and
// credential files and before the config file.
const (
	EnvToken  = "KEYWATCH_TOKEN"
	EnvSecret = "KEYWATCH_SECRET"
)

// loadEnvFile loads ~/.keywatch/.env into the environment, best
// effort. A missing file is the normal case.
func loadEnvFile() {
	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	_ = godotenv.Load(filepath.Join(home, ".keywatch", ".env"))
}

// resolveCredential resolves one credential in precedence order: flag
// value, credential file (first line, whitespace stripped), environment
// variable, config file.
func resolveCredential(
	value, filePath, envKey, cfgKey string, cfg driven.ConfigStore,
) (string, error) {
	if value != "" {
		return value, nil
	}

	if filePath != "" {
		return credentialFromFile(filePath)
	}

	if v := os.Getenv(envKey); v != "" {
		return v, nil
	}

	if cfg != nil {
		if v := cfg.GetString(cfgKey); v != "" {
			return v, nil
		}
	}

	return "", domain.ErrMissingCredentials
}

// credentialFromFile reads the first line of a credential file,
// whitespace stripped.
func credentialFromFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading credential file: %w", err)
	}

	line, _, _ := strings.Cut(string(data), "\n")
	line = strings.TrimSpace(line)
	if line == "" {
		return "", fmt.Errorf("%w: %s is empty", domain.ErrMissingCredentials, path)
	}
	return line, nil
}
