package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadPeerConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "peer.json")
	data := []byte(`{
		"dial": "peer.example.com:9735",
		"staticKeyHex": "1111111111111111111111111111111111111111111111111111111111111111",
		"remoteStaticHex": "022222222222222222222222222222222222222222222222222222222222222222",
		"keepalive": "20s"
	}`)
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Dial != "peer.example.com:9735" {
		t.Errorf("Dial = %q, want peer.example.com:9735", cfg.Dial)
	}
	if cfg.Transport != "tcp" {
		t.Errorf("Transport = %q, want tcp (default)", cfg.Transport)
	}
	if cfg.EffectiveKeepalive() != 20*time.Second {
		t.Errorf("EffectiveKeepalive() = %v, want 20s", cfg.EffectiveKeepalive())
	}
}

func TestPeerConfigEffectiveKeepaliveDefault(t *testing.T) {
	cfg := &PeerConfig{Listen: "0.0.0.0:9735"}
	if got, want := cfg.EffectiveKeepalive(), 30*time.Second; got != want {
		t.Errorf("EffectiveKeepalive() = %v, want %v", got, want)
	}
}

func TestPeerConfigNormalisedLevel(t *testing.T) {
	cfg := &PeerConfig{LogLevel: "  WARN  "}
	if got, want := cfg.NormalisedLevel(), "warn"; got != want {
		t.Errorf("NormalisedLevel() = %q, want %q", got, want)
	}
}

func TestValidatePeerConfigRejectsBothOrNeither(t *testing.T) {
	neither := &PeerConfig{}
	if err := neither.validate(); err == nil {
		t.Error("expected error when neither listen nor dial is set")
	}

	both := &PeerConfig{Listen: "a", Dial: "b"}
	if err := both.validate(); err == nil {
		t.Error("expected error when both listen and dial are set")
	}
}

func TestValidatePeerConfigRequiresRemoteStaticForDial(t *testing.T) {
	cfg := &PeerConfig{Dial: "peer.example.com:9735"}
	if err := cfg.validate(); err == nil {
		t.Error("expected error when dial is set without remoteStaticHex")
	}
}

func TestValidatePeerConfigRejectsUnsupportedTransport(t *testing.T) {
	cfg := &PeerConfig{Listen: "0.0.0.0:9735", Transport: "quic"}
	if err := cfg.validate(); err == nil {
		t.Error("expected error for an unsupported transport")
	}
}

func TestValidatePeerConfigRejectsShortKeepalive(t *testing.T) {
	cfg := &PeerConfig{Listen: "0.0.0.0:9735", Keepalive: Duration{500 * time.Millisecond}}
	if err := cfg.validate(); err == nil {
		t.Error("expected error for a keepalive shorter than 1 second")
	}
}

func TestHexKey32RoundTrip(t *testing.T) {
	var k HexKey32
	k[0] = 0xab
	k[31] = 0xcd

	b, err := k.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}

	var decoded HexKey32
	if err := decoded.UnmarshalJSON(b); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	if decoded != k {
		t.Errorf("round trip mismatch: got %x, want %x", decoded, k)
	}
}
