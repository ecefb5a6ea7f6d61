package noise

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// encryptWithAD seals plaintext (often zero-length, during the handshake)
// under key/nonce with ad as associated data, per the Noise AEAD contract.
func encryptWithAD(key [32]byte, nonce [12]byte, ad []byte, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		return nil, err
	}
	return aead.Seal(nil, nonce[:], plaintext, ad), nil
}

// decryptWithAD opens ciphertext (which includes its trailing 16-byte tag)
// under key/nonce with ad as associated data.
func decryptWithAD(key [32]byte, nonce [12]byte, ad []byte, ciphertext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		return nil, err
	}
	return aead.Open(nil, nonce[:], ciphertext, ad)
}

// hkdf2 runs HKDF-SHA256 with the given salt and input keying material and
// an empty info string, returning the first 64 bytes split into two 32-byte
// halves as every handshake step in BOLT #8 requires.
func hkdf2(salt [32]byte, ikm []byte) (out1 [32]byte, out2 [32]byte) {
	r := hkdf.New(sha256.New, ikm, salt[:], nil)
	var buf [64]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		// hkdf.New/Read over SHA256 cannot fail for a 64-byte request;
		// a failure here means the runtime's crypto/sha256 is broken.
		panic("noise: hkdf read failed: " + err.Error())
	}
	copy(out1[:], buf[:32])
	copy(out2[:], buf[32:])
	return out1, out2
}

// zeroNonce and the act-3 static-key nonce are the only two handshake-phase
// nonce values BOLT #8 ever uses; both are fixed constants, never derived
// from a counter.
var zeroNonce = [12]byte{}

// act3StaticKeyNonce is 00 00 00 00 01 00 00 00 00 00 00 00: the second use
// of temp_k2 within act 3, encrypting the initiator's static key.
var act3StaticKeyNonce = [12]byte{0, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0}

// transportNonce renders a little-endian 16-bit message counter into the
// 12-byte form the transport cipher uses: 4 zero bytes, then the counter as
// 2 little-endian bytes, then 6 more zero bytes. The counter only ever
// ranges 0..999 between rotations, so 16 bits is ample, but the wire layout
// reserves the full 6 remaining bytes as zero per BOLT #8.
func transportNonce(counter uint16) [12]byte {
	var n [12]byte
	n[4] = byte(counter)
	n[5] = byte(counter >> 8)
	return n
}
