package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSimpleConfigServer(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.yaml")
	data := []byte("server: 0.0.0.0:9735\n" +
		"static_key: 1111111111111111111111111111111111111111111111111111111111111111\n" +
		"log_level: debug\n")
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	sc, err := LoadSimpleConfig(path)
	if err != nil {
		t.Fatalf("LoadSimpleConfig: %v", err)
	}
	if sc.Server != "0.0.0.0:9735" {
		t.Errorf("Server = %q, want 0.0.0.0:9735", sc.Server)
	}
	if sc.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", sc.LogLevel)
	}

	pc, err := sc.ToPeerConfig()
	if err != nil {
		t.Fatalf("ToPeerConfig: %v", err)
	}
	if pc.Listen != "0.0.0.0:9735" {
		t.Errorf("Listen = %q, want 0.0.0.0:9735", pc.Listen)
	}
	if pc.Dial != "" {
		t.Errorf("Dial = %q, want empty", pc.Dial)
	}
	if pc.RemoteStaticHex != nil {
		t.Errorf("RemoteStaticHex should be nil for a server config")
	}
}

func TestLoadSimpleConfigClient(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "client.yml")
	data := []byte("connect: peer.example.com:9735\n" +
		"static_key: 1212121212121212121212121212121212121212121212121212121212121212\n" +
		"remote_key: 022222222222222222222222222222222222222222222222222222222222222222\n" +
		"keep_alive: 45s\n")
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	sc, err := LoadSimpleConfig(path)
	if err != nil {
		t.Fatalf("LoadSimpleConfig: %v", err)
	}

	pc, err := sc.ToPeerConfig()
	if err != nil {
		t.Fatalf("ToPeerConfig: %v", err)
	}
	if pc.Dial != "peer.example.com:9735" {
		t.Errorf("Dial = %q, want peer.example.com:9735", pc.Dial)
	}
	if pc.RemoteStaticHex == nil {
		t.Fatalf("RemoteStaticHex should be set for a client config")
	}
	if pc.Keepalive.Duration.String() != "45s" {
		t.Errorf("Keepalive = %v, want 45s", pc.Keepalive.Duration)
	}
}

func TestValidateSimpleConfigRejectsBothOrNeither(t *testing.T) {
	neither := &SimpleConfig{StaticKey: "11"}
	if err := ValidateSimpleConfig(neither); err == nil {
		t.Error("expected error when neither server nor connect is set")
	}

	both := &SimpleConfig{Server: "a", Connect: "b", StaticKey: "11"}
	if err := ValidateSimpleConfig(both); err == nil {
		t.Error("expected error when both server and connect are set")
	}
}

func TestValidateSimpleConfigRequiresRemoteKeyForConnect(t *testing.T) {
	sc := &SimpleConfig{
		Connect:   "peer.example.com:9735",
		StaticKey: "1111111111111111111111111111111111111111111111111111111111111111",
	}
	if err := ValidateSimpleConfig(sc); err == nil {
		t.Error("expected error when connect is set without remote_key")
	}
}

func TestSaveSimpleConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "roundtrip.yaml")

	original := &SimpleConfig{
		Server:    "0.0.0.0:9735",
		StaticKey: "1111111111111111111111111111111111111111111111111111111111111111",
		LogLevel:  "info",
	}
	if err := SaveSimpleConfig(original, path); err != nil {
		t.Fatalf("SaveSimpleConfig: %v", err)
	}

	loaded, err := LoadSimpleConfig(path)
	if err != nil {
		t.Fatalf("LoadSimpleConfig: %v", err)
	}
	if loaded.Server != original.Server || loaded.StaticKey != original.StaticKey {
		t.Errorf("round trip mismatch: got %+v, want %+v", loaded, original)
	}
}

func TestGenerateMinimalConfig(t *testing.T) {
	if s := GenerateMinimalConfig("server"); s == "" {
		t.Error("server config template should not be empty")
	}
	if s := GenerateMinimalConfig("client"); s == "" {
		t.Error("client config template should not be empty")
	}
}
