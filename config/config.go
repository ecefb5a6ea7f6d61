package config

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Duration marshals as a Go duration string ("15s") but also accepts a
// plain JSON number of milliseconds, matching how most hand-edited configs
// in this corpus write timeouts.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	if len(b) == 0 {
		return errors.New("empty duration")
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			d.Duration = 0
			return nil
		}
		dur, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration string %q: %w", s, err)
		}
		d.Duration = dur
		return nil
	}
	var ms int64
	if err := json.Unmarshal(b, &ms); err != nil {
		return err
	}
	d.Duration = time.Duration(ms) * time.Millisecond
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Duration.String())
}

// HexKey32 is a 32-byte value that marshals as hex in JSON, used for the
// local static private key.
type HexKey32 [32]byte

func (k HexKey32) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(k[:]))
}

func (k *HexKey32) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("invalid hex key: %w", err)
	}
	if len(decoded) != 32 {
		return fmt.Errorf("key must be 32 bytes, got %d", len(decoded))
	}
	copy(k[:], decoded)
	return nil
}

// HexKey33 is a 33-byte compressed secp256k1 public key that marshals as
// hex, used for a known remote static key.
type HexKey33 [33]byte

func (k HexKey33) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(k[:]))
}

func (k *HexKey33) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("invalid hex key: %w", err)
	}
	if len(decoded) != 33 {
		return fmt.Errorf("key must be 33 bytes, got %d", len(decoded))
	}
	copy(k[:], decoded)
	return nil
}

// PeerConfig is the JSON configuration for one noisepeer process: either a
// listening responder or a dialing initiator, per SPEC_FULL §4.15.
type PeerConfig struct {
	Listen          string    `json:"listen,omitempty"`
	Dial            string    `json:"dial,omitempty"`
	Transport       string    `json:"transport,omitempty"` // "tcp" (default) or "ws"
	StaticKeyHex    HexKey32  `json:"staticKeyHex"`
	RemoteStaticHex *HexKey33 `json:"remoteStaticHex,omitempty"`
	Keepalive       Duration  `json:"keepalive,omitempty"`
	LogLevel        string    `json:"logLevel,omitempty"`
}

// Load reads and validates a PeerConfig from a JSON file, or from stdin if
// path is "-".
func Load(path string) (*PeerConfig, error) {
	var reader io.ReadCloser
	if path == "-" {
		reader = io.NopCloser(os.Stdin)
	} else {
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		reader = file
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	var cfg PeerConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *PeerConfig) validate() error {
	if c.Listen == "" && c.Dial == "" {
		return errors.New("config must set exactly one of listen or dial")
	}
	if c.Listen != "" && c.Dial != "" {
		return errors.New("config must set exactly one of listen or dial, not both")
	}

	c.Transport = strings.ToLower(strings.TrimSpace(c.Transport))
	if c.Transport == "" {
		c.Transport = "tcp"
	}
	switch c.Transport {
	case "tcp", "ws":
	default:
		return fmt.Errorf("unsupported transport %q", c.Transport)
	}

	if c.Dial != "" && c.RemoteStaticHex == nil {
		return errors.New("dial mode requires remoteStaticHex, the responder's known static key")
	}

	if c.Keepalive.Duration < 0 {
		return errors.New("keepalive duration cannot be negative")
	}
	if c.Keepalive.Duration > 0 && c.Keepalive.Duration < time.Second {
		return errors.New("keepalive duration must be at least 1 second if specified")
	}

	return nil
}

func (c *PeerConfig) EffectiveKeepalive() time.Duration {
	if c.Keepalive.Duration <= 0 {
		return 30 * time.Second
	}
	return c.Keepalive.Duration
}

func (c *PeerConfig) NormalisedLevel() string {
	return strings.ToLower(strings.TrimSpace(c.LogLevel))
}
