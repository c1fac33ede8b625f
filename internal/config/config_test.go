package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/meshfab/unfold/internal/mesh"
	"github.com/meshfab/unfold/internal/pipeline"
)

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := pipeline.DefaultSettings()
	cfg.Method = pipeline.MethodGrid
	cfg.ComponentPolicy = mesh.PolicyLargest
	cfg.Tolerance = 0.01
	cfg.MaterialMargin = 25

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Method != pipeline.MethodGrid {
		t.Errorf("expected method=grid, got %s", loaded.Method)
	}
	if loaded.ComponentPolicy != mesh.PolicyLargest {
		t.Errorf("expected policy=largest, got %s", loaded.ComponentPolicy)
	}
	if loaded.Tolerance != 0.01 {
		t.Errorf("expected tolerance=0.01, got %f", loaded.Tolerance)
	}
	if loaded.MaterialMargin != 25 {
		t.Errorf("expected material margin=25, got %f", loaded.MaterialMargin)
	}
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent", "config.json")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}

	defaults := pipeline.DefaultSettings()
	if cfg.Method != defaults.Method {
		t.Errorf("expected default method %s, got %s", defaults.Method, cfg.Method)
	}
	if cfg.Tolerance != defaults.Tolerance {
		t.Errorf("expected default tolerance %f, got %f", defaults.Tolerance, cfg.Tolerance)
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("not valid json{{{"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid JSON, got nil")
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"tolerance": 0.005}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Tolerance != 0.005 {
		t.Errorf("expected tolerance=0.005, got %f", cfg.Tolerance)
	}
	if cfg.Method != pipeline.MethodLSCM {
		t.Errorf("unset fields should keep defaults, got method=%s", cfg.Method)
	}
}

func TestSaveCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "dir", "config.json")

	if err := Save(path, pipeline.DefaultSettings()); err != nil {
		t.Fatalf("Save should create parent dirs: %v", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatal("config file was not created")
	}
}
