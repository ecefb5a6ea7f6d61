package noise

import "encoding/binary"

// rotationInterval is the fixed number of AEAD uses BOLT #8 rotates a
// transport key at. Each message uses the key twice (length, then body),
// so a key rotates every 500 messages. Both directions rotate
// independently once their own counter reaches it.
const rotationInterval = 1000

// lengthFieldSize is the plaintext size of the two-byte big-endian message
// length prefix, before its own 16-byte AEAD tag is appended.
const lengthFieldSize = 2

// Transport is the post-handshake symmetric-encryption state for one
// connection: one send key/nonce/chaining-key triple and one receive
// triple, rotating independently every 1000 key uses (500 messages) in each
// direction. Once constructed it is the single source of truth for framing.
// The HandshakeState that produced it still holds its keypairs, chaining
// key and temporary keys; they are not zeroed when the handshake completes.
type Transport struct {
	sendCK    [32]byte
	recvCK    [32]byte
	sendKey   [32]byte
	recvKey   [32]byte
	sn        uint16
	rn        uint16
	sendEpoch uint32
	recvEpoch uint32
}

func newTransport(ck, sendKey, recvKey [32]byte) *Transport {
	return &Transport{
		sendCK:  ck,
		recvCK:  ck,
		sendKey: sendKey,
		recvKey: recvKey,
	}
}

// EncryptLength seals the big-endian uint16 length of an upcoming message
// body, returning the 18-byte (2+16) ciphertext that must be written first.
func (t *Transport) EncryptLength(n int) ([]byte, error) {
	if n < 0 || n > 0xffff {
		return nil, ErrMessageTooLarge
	}
	var lenBuf [lengthFieldSize]byte
	binary.BigEndian.PutUint16(lenBuf[:], uint16(n))

	nonce := transportNonce(t.sn)
	ct, err := encryptWithAD(t.sendKey, nonce, nil, lenBuf[:])
	if err != nil {
		return nil, err
	}
	t.advanceSend()
	return ct, nil
}

// EncryptMessage seals the message body, returning ciphertext+tag. Must be
// called once immediately after the matching EncryptLength, using the same
// logical message's nonce slot (EncryptLength already advanced sn, so this
// call consumes the following nonce — matching BOLT #8's two AEAD
// invocations per message, each under its own nonce).
func (t *Transport) EncryptMessage(plaintext []byte) ([]byte, error) {
	nonce := transportNonce(t.sn)
	ct, err := encryptWithAD(t.sendKey, nonce, nil, plaintext)
	if err != nil {
		return nil, err
	}
	t.advanceSend()
	return ct, nil
}

// DecryptLength opens an 18-byte length ciphertext and returns the body
// length to read next.
func (t *Transport) DecryptLength(ct []byte) (int, error) {
	nonce := transportNonce(t.rn)
	pt, err := decryptWithAD(t.recvKey, nonce, nil, ct)
	if err != nil {
		return 0, ErrTransportBadTag
	}
	t.advanceRecv()
	return int(binary.BigEndian.Uint16(pt)), nil
}

// DecryptMessage opens a message body ciphertext (len+16 bytes) and returns
// the plaintext. Must be called once immediately after the matching
// DecryptLength.
func (t *Transport) DecryptMessage(ct []byte) ([]byte, error) {
	nonce := transportNonce(t.rn)
	pt, err := decryptWithAD(t.recvKey, nonce, nil, ct)
	if err != nil {
		return nil, ErrTransportBadTag
	}
	t.advanceRecv()
	return pt, nil
}

// advanceSend increments sn and rotates the send key once 1000 messages
// (counting both the length and body AEAD calls as separate increments,
// per BOLT #8's literal nonce bookkeeping) have been sent under it.
func (t *Transport) advanceSend() {
	t.sn++
	if t.sn >= rotationInterval {
		t.sendCK, t.sendKey = hkdf2(t.sendCK, t.sendKey[:])
		t.sn = 0
		t.sendEpoch++
	}
}

func (t *Transport) advanceRecv() {
	t.rn++
	if t.rn >= rotationInterval {
		t.recvCK, t.recvKey = hkdf2(t.recvCK, t.recvKey[:])
		t.rn = 0
		t.recvEpoch++
	}
}

// SendEpoch returns how many times the send key has rotated so far, for
// callers that want to surface rotation as a liveness/status signal (see
// peer.Peer.NoteSendRotation).
func (t *Transport) SendEpoch() uint32 { return t.sendEpoch }

// RecvEpoch returns how many times the receive key has rotated so far.
func (t *Transport) RecvEpoch() uint32 { return t.recvEpoch }

// Split divides the transport into independently-owned send/receive
// halves, letting one goroutine write while another reads without either
// touching the other's key or nonce state.
func (t *Transport) Split() (*Sender, *Receiver) {
	return &Sender{t: t}, &Receiver{t: t}
}

// Sender is the write-only half of a split Transport.
type Sender struct{ t *Transport }

func (s *Sender) EncryptLength(n int) ([]byte, error)      { return s.t.EncryptLength(n) }
func (s *Sender) EncryptMessage(pt []byte) ([]byte, error) { return s.t.EncryptMessage(pt) }

// Epoch returns how many times this sender's key has rotated so far.
func (s *Sender) Epoch() uint32 { return s.t.SendEpoch() }

// Receiver is the read-only half of a split Transport.
type Receiver struct{ t *Transport }

func (r *Receiver) DecryptLength(ct []byte) (int, error)     { return r.t.DecryptLength(ct) }
func (r *Receiver) DecryptMessage(ct []byte) ([]byte, error) { return r.t.DecryptMessage(ct) }

// Epoch returns how many times this receiver's key has rotated so far.
func (r *Receiver) Epoch() uint32 { return r.t.RecvEpoch() }
