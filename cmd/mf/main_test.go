package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_AbsentFile(t *testing.T) {
	dir := t.TempDir()
	wd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("missing config file must not be an error: %v", err)
	}
	if cfg.OutDir != "" {
		t.Errorf("expected zero config, got %+v", cfg)
	}
}

func TestLoadConfig_ReadsYAML(t *testing.T) {
	dir := t.TempDir()
	content := "out_dir: bundles\ndefaults:\n  duration_sec: 3\n  fps: 24\ngenerator:\n  name: studio-mf\n  version: 2.1.0\n"
	if err := os.WriteFile(filepath.Join(dir, "motionforge.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	wd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	cfg, err := loadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.OutDir != "bundles" || cfg.Defaults.DurationSec != 3 || cfg.Defaults.FPS != 24 {
		t.Errorf("unexpected config: %+v", cfg)
	}
	gen := cfg.generator()
	if gen.Name != "studio-mf" || gen.Version != "2.1.0" {
		t.Errorf("unexpected generator: %+v", gen)
	}
}

func TestGenerator_Defaults(t *testing.T) {
	var cfg cliConfig
	gen := cfg.generator()
	if gen.Name != "motionforge" {
		t.Errorf("expected default generator name, got %q", gen.Name)
	}
	if gen.Version == "" {
		t.Error("generator version must never be empty")
	}
}
