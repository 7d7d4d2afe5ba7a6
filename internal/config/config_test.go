package config

import "testing"

func TestLoadNoColorAnyNonEmptyValue(t *testing.T) {
	for _, value := range []string{"1", "true", "yes", "anything"} {
		t.Setenv("NO_COLOR", value)
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load with NO_COLOR=%q: %v", value, err)
		}
		if !cfg.NoColor {
			t.Errorf("NO_COLOR=%q must disable color", value)
		}
	}
}

func TestLoadNoColorUnset(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.NoColor {
		t.Error("empty NO_COLOR must leave color enabled")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FLOW_DATABASE_PATH", "")
	t.Setenv("FLOW_BACKUP_DIR", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DatabasePath == "" {
		t.Error("DatabasePath must have a default")
	}
	if cfg.BackupDir == "" {
		t.Error("BackupDir must default next to the database")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("FLOW_DATABASE_PATH", "/srv/flow.sqlite")
	t.Setenv("FLOW_BACKUP_DIR", "/srv/backups")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DatabasePath != "/srv/flow.sqlite" {
		t.Errorf("DatabasePath = %q", cfg.DatabasePath)
	}
	if cfg.BackupDir != "/srv/backups" {
		t.Errorf("BackupDir = %q", cfg.BackupDir)
	}
}
