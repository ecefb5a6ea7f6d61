package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveConfigDispatchesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.yaml")
	data := []byte("server: 0.0.0.0:9735\n" +
		"static_key: 1111111111111111111111111111111111111111111111111111111111111111\n")
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := resolveConfig(path, "", "", "tcp", "", "")
	if err != nil {
		t.Fatalf("resolveConfig: %v", err)
	}
	if cfg.Listen != "0.0.0.0:9735" {
		t.Errorf("Listen = %q, want 0.0.0.0:9735", cfg.Listen)
	}
}

func TestResolveConfigDispatchesJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.json")
	data := []byte(`{"listen":"0.0.0.0:9735","staticKeyHex":"1111111111111111111111111111111111111111111111111111111111111111"}`)
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := resolveConfig(path, "", "", "tcp", "", "")
	if err != nil {
		t.Fatalf("resolveConfig: %v", err)
	}
	if cfg.Listen != "0.0.0.0:9735" {
		t.Errorf("Listen = %q, want 0.0.0.0:9735", cfg.Listen)
	}
}

func TestIsYAMLPath(t *testing.T) {
	cases := map[string]bool{
		"config.yaml": true,
		"config.YML":  true,
		"config.json": false,
		"config":      false,
	}
	for path, want := range cases {
		if got := isYAMLPath(path); got != want {
			t.Errorf("isYAMLPath(%q) = %v, want %v", path, got, want)
		}
	}
}
