package noise

import "crypto/sha256"

// protocolName and prologue are fixed per BOLT #8; there is no negotiation
// of either, unlike a general-purpose Noise implementation.
const (
	protocolName = "Noise_XK_secp256k1_ChaChaPoly_SHA256"
	prologue     = "lightning"
)

// symmetricState carries the running handshake hash h and chaining key ck
// threaded through every mix/encrypt/decrypt step of acts 1-3. It holds no
// AEAD key directly; each step derives its own temporary key from ck via
// hkdf2 and uses it exactly once or twice before discarding it.
type symmetricState struct {
	h  [32]byte
	ck [32]byte
}

// initializeSymmetric seeds h/ck from the protocol name and mixes in the
// prologue, matching the generic Noise initialization before the
// pattern-specific pre-message key mixing happens in NewInitiator and
// NewResponder.
func initializeSymmetric() symmetricState {
	var s symmetricState
	if len(protocolName) <= 32 {
		var buf [32]byte
		copy(buf[:], protocolName)
		s.h = buf
	} else {
		s.h = sha256.Sum256([]byte(protocolName))
	}
	s.ck = s.h
	s.mixHash([]byte(prologue))
	return s
}

// mixHash folds data into the running handshake hash: h = SHA256(h || data).
func (s *symmetricState) mixHash(data []byte) {
	buf := make([]byte, 0, len(s.h)+len(data))
	buf = append(buf, s.h[:]...)
	buf = append(buf, data...)
	s.h = sha256.Sum256(buf)
}

// mixKey folds Diffie-Hellman output into the chaining key and returns the
// temporary key derived alongside it: ck, temp_k = HKDF(ck, ikm).
func (s *symmetricState) mixKey(ikm [32]byte) [32]byte {
	ck, tempK := hkdf2(s.ck, ikm[:])
	s.ck = ck
	return tempK
}

// encryptAndHash seals plaintext under key using the all-zero handshake
// nonce and the current h as associated data, then mixes the ciphertext
// into h. Every act-1/act-2 encryption step in BOLT #8 follows this shape.
func (s *symmetricState) encryptAndHash(key [32]byte, plaintext []byte) []byte {
	return s.encryptAndHashN(key, zeroNonce, plaintext)
}

// decryptAndHash is the receiving side of encryptAndHash: it opens
// ciphertext under key/zeroNonce with the current h as AD, then mixes the
// (still-sealed) ciphertext into h exactly as the sender did.
func (s *symmetricState) decryptAndHash(key [32]byte, ciphertext []byte) ([]byte, error) {
	return s.decryptAndHashN(key, zeroNonce, ciphertext)
}

// encryptAndHashN is encryptAndHash generalized to an explicit nonce, needed
// once in act 3 where temp_k2 is reused with nonce 1 to encrypt the
// initiator's static key.
func (s *symmetricState) encryptAndHashN(key [32]byte, nonce [12]byte, plaintext []byte) []byte {
	ct, err := encryptWithAD(key, nonce, s.h[:], plaintext)
	if err != nil {
		// chacha20poly1305.New only fails on a malformed key size, which
		// cannot happen here: key is always a fixed [32]byte.
		panic("noise: encryptAndHash: " + err.Error())
	}
	s.mixHash(ct)
	return ct
}

// decryptAndHashN is decryptAndHash generalized to an explicit nonce.
func (s *symmetricState) decryptAndHashN(key [32]byte, nonce [12]byte, ciphertext []byte) ([]byte, error) {
	pt, err := decryptWithAD(key, nonce, s.h[:], ciphertext)
	if err != nil {
		return nil, err
	}
	s.mixHash(ciphertext)
	return pt, nil
}

// split derives the final transport sk/rk pair from ck once all three
// Diffie-Hellman exchanges have been mixed in: sk, rk = HKDF(ck, "").
func (s *symmetricState) split() (sendKey, recvKey [32]byte) {
	return hkdf2(s.ck, nil)
}
