package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// SimpleConfig is the hand-written YAML form of PeerConfig: the same fields
// under friendlier names, except transport, which it does not carry, for a
// config a person types by hand instead of generating.
type SimpleConfig struct {
	Server    string `yaml:"server,omitempty"`     // listen address, if this process accepts connections
	Connect   string `yaml:"connect,omitempty"`    // remote address, if this process dials out
	StaticKey string `yaml:"static_key"`           // hex-encoded 32-byte local static private key
	RemoteKey string `yaml:"remote_key,omitempty"` // hex-encoded 33-byte known remote static public key
	KeepAlive string `yaml:"keep_alive,omitempty"` // e.g. "30s"
	LogLevel  string `yaml:"log_level,omitempty"`
}

// LoadSimpleConfig reads and parses a hand-written YAML config file.
func LoadSimpleConfig(path string) (*SimpleConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config SimpleConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := ValidateSimpleConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// SaveSimpleConfig writes config back out as YAML.
func SaveSimpleConfig(config *SimpleConfig, path string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// ValidateSimpleConfig checks the structural requirements SPEC_FULL §4.15
// places on a SimpleConfig, independent of PeerConfig's JSON validation.
func ValidateSimpleConfig(config *SimpleConfig) error {
	if config.Server == "" && config.Connect == "" {
		return fmt.Errorf("config must set exactly one of server or connect")
	}
	if config.Server != "" && config.Connect != "" {
		return fmt.Errorf("config must set exactly one of server or connect, not both")
	}

	if config.StaticKey == "" {
		return fmt.Errorf("static_key is required")
	}
	key, err := hex.DecodeString(config.StaticKey)
	if err != nil || len(key) != 32 {
		return fmt.Errorf("static_key must be 64 hex characters (32 bytes)")
	}

	if config.Connect != "" {
		if config.RemoteKey == "" {
			return fmt.Errorf("remote_key is required when connect is set")
		}
		remote, err := hex.DecodeString(config.RemoteKey)
		if err != nil || len(remote) != 33 {
			return fmt.Errorf("remote_key must be 66 hex characters (33 bytes)")
		}
	}

	return nil
}

// ToPeerConfig converts the friendlier YAML shape into the canonical
// PeerConfig the rest of the program consumes.
func (sc *SimpleConfig) ToPeerConfig() (*PeerConfig, error) {
	if err := ValidateSimpleConfig(sc); err != nil {
		return nil, err
	}

	pc := &PeerConfig{
		Listen:   sc.Server,
		Dial:     sc.Connect,
		LogLevel: sc.LogLevel,
	}

	staticKey, err := hex.DecodeString(sc.StaticKey)
	if err != nil {
		return nil, err
	}
	copy(pc.StaticKeyHex[:], staticKey)

	if sc.RemoteKey != "" {
		remoteKey, err := hex.DecodeString(sc.RemoteKey)
		if err != nil {
			return nil, err
		}
		var rk HexKey33
		copy(rk[:], remoteKey)
		pc.RemoteStaticHex = &rk
	}

	if sc.KeepAlive != "" {
		d, err := time.ParseDuration(sc.KeepAlive)
		if err != nil {
			return nil, fmt.Errorf("invalid keep_alive %q: %w", sc.KeepAlive, err)
		}
		pc.Keepalive = Duration{d}
	}

	return pc, nil
}

// GenerateMinimalConfig returns an example YAML config a user can fill in
// by hand, matching this corpus's "three lines is enough" philosophy.
func GenerateMinimalConfig(mode string) string {
	if mode == "server" {
		return `# noisepeer server config
server: 0.0.0.0:9735
static_key: <hex-encoded 32-byte private key>
`
	}

	return `# noisepeer client config
connect: peer.example.com:9735
static_key: <hex-encoded 32-byte private key>
remote_key: <hex-encoded 33-byte peer static public key>
`
}
