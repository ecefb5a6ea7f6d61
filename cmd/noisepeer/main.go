// Command noisepeer is a thin end-to-end exercise of the noise handshake
// and transport stack over a real socket: it dials or listens, completes
// the three-act handshake in the appropriate role, then relays stdin lines
// as framed transport messages and prints received frames to stdout.
package main

import (
	"bufio"
	"encoding/hex"
	"flag"
	"fmt"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/lnpeer/noisexk/config"
	"github.com/lnpeer/noisexk/internal"
	"github.com/lnpeer/noisexk/internal/logging"
	"github.com/lnpeer/noisexk/noise"
	"github.com/lnpeer/noisexk/noisepeer"
	"github.com/lnpeer/noisexk/peer"
	"github.com/lnpeer/noisexk/transport"
)

func main() {
	listen := flag.String("listen", "", "address to accept one connection on, as a responder")
	dial := flag.String("dial", "", "address to connect to, as an initiator")
	transportKind := flag.String("transport", "tcp", "underlying transport: tcp or ws")
	configPath := flag.String("config", "", "path to a PeerConfig JSON file, or a SimpleConfig YAML file if it ends in .yaml/.yml (overrides other flags)")
	staticKeyFile := flag.String("static-key-file", "", "path to a file containing a hex-encoded 32-byte static private key")
	remotePubkey := flag.String("remote-pubkey", "", "hex-encoded 33-byte remote static public key, required when -dial is set")
	flag.Parse()

	cfg, err := resolveConfig(*configPath, *listen, *dial, *transportKind, *staticKeyFile, *remotePubkey)
	if err != nil {
		fmt.Fprintln(os.Stderr, "noisepeer:", err)
		os.Exit(1)
	}

	log := logging.New(logging.ParseLevel(cfg.NormalisedLevel()), os.Stderr)

	ls, err := noise.KeyPairFromPrivate(cfg.StaticKeyHex)
	if err != nil {
		fmt.Fprintln(os.Stderr, "noisepeer: static key:", err)
		os.Exit(1)
	}

	if cfg.Dial != "" {
		if err := runInitiator(cfg, ls, log); err != nil {
			fmt.Fprintln(os.Stderr, "noisepeer:", err)
			os.Exit(1)
		}
		return
	}
	if err := runResponder(cfg, ls, log); err != nil {
		fmt.Fprintln(os.Stderr, "noisepeer:", err)
		os.Exit(1)
	}
}

func resolveConfig(configPath, listen, dial, transportKind, staticKeyFile, remotePubkey string) (*config.PeerConfig, error) {
	if configPath != "" {
		if isYAMLPath(configPath) {
			sc, err := config.LoadSimpleConfig(configPath)
			if err != nil {
				return nil, err
			}
			return sc.ToPeerConfig()
		}
		return config.Load(configPath)
	}

	cfg := &config.PeerConfig{
		Listen:    listen,
		Dial:      dial,
		Transport: transportKind,
	}

	if staticKeyFile == "" {
		return nil, fmt.Errorf("-static-key-file is required without -config")
	}
	keyHex, err := os.ReadFile(staticKeyFile)
	if err != nil {
		return nil, fmt.Errorf("reading static key file: %w", err)
	}
	key, err := hex.DecodeString(trimNewline(string(keyHex)))
	if err != nil || len(key) != 32 {
		return nil, fmt.Errorf("static key file must contain 64 hex characters")
	}
	copy(cfg.StaticKeyHex[:], key)

	if remotePubkey != "" {
		remote, err := hex.DecodeString(remotePubkey)
		if err != nil || len(remote) != 33 {
			return nil, fmt.Errorf("-remote-pubkey must be 66 hex characters")
		}
		var rk config.HexKey33
		copy(rk[:], remote)
		cfg.RemoteStaticHex = &rk
	}

	return cfg, nil
}

// isYAMLPath picks the hand-written SimpleConfig form over the canonical
// JSON PeerConfig by file extension, per SPEC_FULL §2 component 9's
// "minimal YAML form for quick manual setup".
func isYAMLPath(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml")
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}

func runInitiator(cfg *config.PeerConfig, ls noise.KeyPair, log *logging.Logger) error {
	if cfg.RemoteStaticHex == nil {
		return fmt.Errorf("dial mode requires a remote static public key")
	}

	backoff := internal.NewBackoff(time.Second, 30*time.Second)
	var conn net.Conn
	var err error
	for attempt := 0; attempt < 5; attempt++ {
		conn, err = dialTransport(cfg.Transport, cfg.Dial)
		if err == nil {
			break
		}
		log.Warn("dial.retry", map[string]interface{}{"attempt": attempt, "err": err.Error()})
		time.Sleep(backoff.Next())
	}
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	es, err := noise.GenerateKeyPair()
	if err != nil {
		return fmt.Errorf("generating ephemeral key: %w", err)
	}

	t, err := noisepeer.Dial(conn, ls, es, [33]byte(*cfg.RemoteStaticHex), log)
	if err != nil {
		return err
	}
	p := peer.NewPeer([33]byte(*cfg.RemoteStaticHex), conn.RemoteAddr())

	return relay(conn, t, p, cfg.EffectiveKeepalive(), log)
}

func runResponder(cfg *config.PeerConfig, ls noise.KeyPair, log *logging.Logger) error {
	conn, err := acceptOne(cfg.Transport, cfg.Listen)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	defer conn.Close()

	es, err := noise.GenerateKeyPair()
	if err != nil {
		return fmt.Errorf("generating ephemeral key: %w", err)
	}

	t, remoteStatic, err := noisepeer.Accept(conn, ls, es, log)
	if err != nil {
		return err
	}
	p := peer.NewPeer(remoteStatic, conn.RemoteAddr())

	return relay(conn, t, p, cfg.EffectiveKeepalive(), log)
}

func dialTransport(kind, addr string) (net.Conn, error) {
	if kind == "ws" {
		return transport.DialWebSocket(addr, false)
	}
	return net.Dial("tcp", addr)
}

func acceptOne(kind, addr string) (net.Conn, error) {
	if kind == "ws" {
		ln, err := transport.ListenWebSocket(addr)
		if err != nil {
			return nil, err
		}
		defer ln.Close()
		return ln.Accept()
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	defer ln.Close()
	return ln.Accept()
}

// relay reads lines from stdin and ships each as a framed transport
// message, printing received frames to stdout, until either side closes
// the connection. Between lines, a keepalive ticker sends an empty frame
// every keepalive interval so the connection survives idle NAT/firewall
// timeouts, mirroring the teacher's own startKeepalive ticker loop.
func relay(conn net.Conn, t *noise.Transport, p *peer.Peer, keepalive time.Duration, log *logging.Logger) error {
	sender, receiver := t.Split()
	var writeMu sync.Mutex

	writeFrame := func(m []byte) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := noisepeer.WriteFrame(conn, sender, m); err != nil {
			return err
		}
		p.TouchSend()
		if epoch := sender.Epoch(); epoch != p.SendEpoch() {
			p.NoteSendRotation(epoch)
			log.Info("transport.rekey", map[string]interface{}{"direction": "send", "epoch": epoch})
		}
		return nil
	}

	stopKeepalive := make(chan struct{})
	keepaliveErrs := make(chan error, 1)
	go func() {
		ticker := time.NewTicker(keepalive)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := writeFrame(nil); err != nil {
					keepaliveErrs <- fmt.Errorf("keepalive: %w", err)
					return
				}
			case <-stopKeepalive:
				return
			}
		}
	}()
	defer close(stopKeepalive)

	readErrs := make(chan error, 1)
	go func() {
		for {
			m, err := noisepeer.ReadFrame(conn, receiver)
			if err != nil {
				readErrs <- err
				return
			}
			p.TouchReceive()
			if epoch := receiver.Epoch(); epoch != p.RecvEpoch() {
				p.NoteRecvRotation(epoch)
				log.Info("transport.rekey", map[string]interface{}{"direction": "recv", "epoch": epoch})
			}
			if len(m) == 0 {
				continue // keepalive frame from the peer, nothing to print
			}
			fmt.Println(string(m))
		}
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if err := writeFrame(scanner.Bytes()); err != nil {
			return fmt.Errorf("write frame: %w", err)
		}
	}

	select {
	case err := <-readErrs:
		return err
	case err := <-keepaliveErrs:
		return err
	}
}
