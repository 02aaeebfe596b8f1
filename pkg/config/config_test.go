package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if !cfg.Parse.EnvReplace {
		t.Error("expected EnvReplace to default to true")
	}

	if cfg.Parse.Escape != "\\" {
		t.Errorf("expected default escape '\\\\', got %q", cfg.Parse.Escape)
	}

	if cfg.Observability.ServiceName != "dockerfile-parse" {
		t.Errorf("expected observability service name 'dockerfile-parse', got %q", cfg.Observability.ServiceName)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
parse:
  env_replace: false
  escape: "`+"`"+`"
  parent_env: true
observability:
  service_name: myapp
  enabled: false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Parse.EnvReplace {
		t.Error("expected EnvReplace overridden to false")
	}

	if cfg.Parse.Escape != "`" {
		t.Errorf("expected escape override '`', got %q", cfg.Parse.Escape)
	}

	if !cfg.Parse.ParentEnv {
		t.Error("expected ParentEnv overridden to true")
	}

	if cfg.Observability.ServiceName != "myapp" {
		t.Errorf("expected observability service name override 'myapp', got %q", cfg.Observability.ServiceName)
	}

	if cfg.Observability.Enabled {
		t.Error("expected observability Enabled overridden to false")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault("")
	if err != nil {
		t.Fatalf("LoadOrDefault failed: %v", err)
	}
	if cfg.Parse.Escape != "\\" {
		t.Errorf("expected default config, got escape %q", cfg.Parse.Escape)
	}

	cfg, err = LoadOrDefault("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("LoadOrDefault failed for missing file: %v", err)
	}
	if cfg.Parse.Escape != "\\" {
		t.Errorf("expected default config for missing file, got escape %q", cfg.Parse.Escape)
	}
}
