// Package config resolves process configuration once at startup. Values come
// from the environment, optionally seeded from a .env file, and are treated
// as immutable afterwards; nothing deeper in the call tree reads the
// environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the resolved process configuration.
type Config struct {
	DatabasePath string `envconfig:"FLOW_DATABASE_PATH"`
	BackupDir    string `envconfig:"FLOW_BACKUP_DIR"`
	NoColor      bool   `ignored:"true"`
}

// Load reads configuration from the environment. The first .env file found
// among the candidate locations is loaded first; real environment variables
// take precedence over it.
func Load() (Config, error) {
	for _, path := range envFileCandidates() {
		if _, err := os.Stat(path); err == nil {
			// godotenv never overwrites variables already set.
			_ = godotenv.Load(path)
			break
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("process environment: %w", err)
	}

	// NO_COLOR convention: any non-empty value disables color.
	cfg.NoColor = os.Getenv("NO_COLOR") != ""

	if cfg.DatabasePath == "" {
		cfg.DatabasePath = defaultDatabasePath()
	}
	if cfg.BackupDir == "" {
		cfg.BackupDir = filepath.Join(filepath.Dir(cfg.DatabasePath), "backups")
	}
	return cfg, nil
}

func envFileCandidates() []string {
	candidates := []string{".env"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "flowscribe", ".env"))
	}
	return candidates
}

func defaultDatabasePath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "Library", "Application Support", "Wispr Flow", "flow.sqlite")
}
