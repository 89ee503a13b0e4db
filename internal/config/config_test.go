package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureExistsWritesDefaultConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")

	if err := EnsureExists(); err != nil {
		t.Fatalf("EnsureExists: %v", err)
	}
	path := filepath.Join(Dir(), fileName)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config file at %s: %v", path, err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	def := Default()
	if cfg.WindowManager.Decorations.TitlebarHeight != def.WindowManager.Decorations.TitlebarHeight {
		t.Errorf("loaded titlebar height = %d, want %d", cfg.WindowManager.Decorations.TitlebarHeight, def.WindowManager.Decorations.TitlebarHeight)
	}
	if cfg.Panel.Position != def.Panel.Position {
		t.Errorf("loaded panel position = %q, want %q", cfg.Panel.Position, def.Panel.Position)
	}
}

func TestEnsureExistsIsIdempotent(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")

	if err := EnsureExists(); err != nil {
		t.Fatalf("first EnsureExists: %v", err)
	}
	path := filepath.Join(Dir(), fileName)
	custom := []byte("[panel]\nheight = 99\n")
	if err := os.WriteFile(path, custom, 0644); err != nil {
		t.Fatalf("writing custom config: %v", err)
	}

	if err := EnsureExists(); err != nil {
		t.Fatalf("second EnsureExists: %v", err)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Panel.Height != 99 {
		t.Errorf("EnsureExists must not overwrite an existing config file; got panel height %d", cfg.Panel.Height)
	}
}
