// Package noisepeer drives a noise.HandshakeState/noise.Transport over a
// real net.Conn: the handshake act I/O, the framed transport read loop, and
// the structured logging around both, none of which the noise package
// itself performs (per its no-I/O design).
package noisepeer

import (
	"fmt"
	"io"
	"net"
	"time"

	"github.com/lnpeer/noisexk/internal/logging"
	"github.com/lnpeer/noisexk/noise"
)

// frameLengthCiphertextSize is the wire size of the encrypted length
// prefix: a 2-byte plaintext length plus its 16-byte AEAD tag.
const frameLengthCiphertextSize = 18

// Dial performs the initiator side of the handshake over conn: write act1,
// read act2, write act3. It is the only function in this package that
// blocks on act I/O for the initiator role.
func Dial(conn net.Conn, ls, es noise.KeyPair, remoteStatic [33]byte, log *logging.Logger) (*noise.Transport, error) {
	if log == nil {
		log = logging.New(logging.LevelInfo, nil)
	}
	log.Info("handshake.start", map[string]interface{}{"role": "initiator"})
	start := time.Now()

	hs := noise.NewInitiator(ls, es, remoteStatic)

	act1, err := hs.InitiatorAct1()
	if err != nil {
		log.Error("handshake.failed", map[string]interface{}{"role": "initiator", "stage": "act1", "err": err.Error()})
		return nil, fmt.Errorf("noisepeer: act1: %w", err)
	}
	if _, err := conn.Write(act1); err != nil {
		return nil, fmt.Errorf("noisepeer: write act1: %w", err)
	}

	act2 := make([]byte, 50)
	if _, err := io.ReadFull(conn, act2); err != nil {
		log.Error("handshake.failed", map[string]interface{}{"role": "initiator", "stage": "act2", "err": err.Error()})
		return nil, fmt.Errorf("noisepeer: read act2: %w", err)
	}
	if err := hs.InitiatorReceiveAct2(act2); err != nil {
		log.Error("handshake.failed", map[string]interface{}{"role": "initiator", "stage": "act2", "err": err.Error()})
		return nil, fmt.Errorf("noisepeer: act2: %w", err)
	}

	act3, err := hs.InitiatorAct3()
	if err != nil {
		log.Error("handshake.failed", map[string]interface{}{"role": "initiator", "stage": "act3", "err": err.Error()})
		return nil, fmt.Errorf("noisepeer: act3: %w", err)
	}
	if _, err := conn.Write(act3); err != nil {
		return nil, fmt.Errorf("noisepeer: write act3: %w", err)
	}

	transport, err := hs.Transport()
	if err != nil {
		return nil, fmt.Errorf("noisepeer: transport: %w", err)
	}
	log.Info("handshake.complete", map[string]interface{}{"role": "initiator", "elapsed": time.Since(start).String()})
	return transport, nil
}

// Accept performs the responder side of the handshake over conn: read
// act1, write act2, read act3. It returns the established transport and
// the now-known remote static public key.
func Accept(conn net.Conn, ls, es noise.KeyPair, log *logging.Logger) (*noise.Transport, [33]byte, error) {
	var remoteStatic [33]byte
	if log == nil {
		log = logging.New(logging.LevelInfo, nil)
	}
	log.Info("handshake.start", map[string]interface{}{"role": "responder"})
	start := time.Now()

	hs := noise.NewResponder(ls, es)

	act1 := make([]byte, 50)
	if _, err := io.ReadFull(conn, act1); err != nil {
		log.Error("handshake.failed", map[string]interface{}{"role": "responder", "stage": "act1", "err": err.Error()})
		return nil, remoteStatic, fmt.Errorf("noisepeer: read act1: %w", err)
	}
	if err := hs.ResponderReceiveAct1(act1); err != nil {
		log.Error("handshake.failed", map[string]interface{}{"role": "responder", "stage": "act1", "err": err.Error()})
		return nil, remoteStatic, fmt.Errorf("noisepeer: act1: %w", err)
	}

	act2, err := hs.ResponderAct2()
	if err != nil {
		log.Error("handshake.failed", map[string]interface{}{"role": "responder", "stage": "act2", "err": err.Error()})
		return nil, remoteStatic, fmt.Errorf("noisepeer: act2: %w", err)
	}
	if _, err := conn.Write(act2); err != nil {
		return nil, remoteStatic, fmt.Errorf("noisepeer: write act2: %w", err)
	}

	act3 := make([]byte, 66)
	if _, err := io.ReadFull(conn, act3); err != nil {
		log.Error("handshake.failed", map[string]interface{}{"role": "responder", "stage": "act3", "err": err.Error()})
		return nil, remoteStatic, fmt.Errorf("noisepeer: read act3: %w", err)
	}
	remoteStatic, err = hs.ResponderReceiveAct3(act3)
	if err != nil {
		log.Error("handshake.failed", map[string]interface{}{"role": "responder", "stage": "act3", "err": err.Error()})
		return nil, remoteStatic, fmt.Errorf("noisepeer: act3: %w", err)
	}

	transport, err := hs.Transport()
	if err != nil {
		return nil, remoteStatic, fmt.Errorf("noisepeer: transport: %w", err)
	}
	log.Info("handshake.complete", map[string]interface{}{"role": "responder", "elapsed": time.Since(start).String()})
	return transport, remoteStatic, nil
}

// WriteFrame seals m and writes its length-then-body frame to w in one
// call, so callers never invoke EncryptLength/EncryptMessage out of order.
func WriteFrame(w io.Writer, sender *noise.Sender, m []byte) error {
	lc, err := sender.EncryptLength(len(m))
	if err != nil {
		return err
	}
	c, err := sender.EncryptMessage(m)
	if err != nil {
		return err
	}
	if _, err := w.Write(lc); err != nil {
		return err
	}
	_, err = w.Write(c)
	return err
}

// ReadFrame composes the mandatory length-then-body alternation into one
// call (§4.9/§9 "combined read_frame helper"), so a caller cannot
// accidentally desynchronize rn by calling the two decrypt stages out of
// order or in the wrong count.
func ReadFrame(r io.Reader, recv *noise.Receiver) ([]byte, error) {
	lenCipher := make([]byte, frameLengthCiphertextSize)
	if _, err := io.ReadFull(r, lenCipher); err != nil {
		return nil, err
	}
	n, err := recv.DecryptLength(lenCipher)
	if err != nil {
		return nil, err
	}

	body := make([]byte, n+16)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}
	return recv.DecryptMessage(body)
}
