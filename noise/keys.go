package noise

import (
	"crypto/rand"
	"crypto/sha256"

	"github.com/btcsuite/btcd/btcec/v2"
)

// KeyPair is a secp256k1 private/public pair used for both the long-lived
// static identity key and the per-handshake ephemeral key. Public is always
// the 33-byte compressed SEC1 encoding.
type KeyPair struct {
	Private [32]byte
	Public  [33]byte
}

// GenerateKeyPair draws a fresh secp256k1 keypair from crypto/rand. Used for
// the ephemeral key in every handshake and, by callers, for the static
// identity key at node provisioning time.
func GenerateKeyPair() (KeyPair, error) {
	var priv [32]byte
	for {
		if _, err := rand.Read(priv[:]); err != nil {
			return KeyPair{}, err
		}
		// PrivKeyFromBytes silently reduces out-of-range scalars; reject
		// the all-zero case explicitly so we never hand back a degenerate
		// key that happens to parse.
		if !isZero(priv[:]) {
			break
		}
	}
	return keyPairFromPrivate(priv)
}

// KeyPairFromPrivate derives the compressed public key for a caller-supplied
// private scalar, e.g. a static key loaded from configuration.
func KeyPairFromPrivate(priv [32]byte) (KeyPair, error) {
	return keyPairFromPrivate(priv)
}

func keyPairFromPrivate(priv [32]byte) (KeyPair, error) {
	sk := secpPrivKey(priv)
	var kp KeyPair
	kp.Private = priv
	copy(kp.Public[:], sk.PubKey().SerializeCompressed())
	return kp, nil
}

func secpPrivKey(b [32]byte) *btcec.PrivateKey {
	priv, _ := btcec.PrivKeyFromBytes(b[:])
	return priv
}

func parsePublicKey(b [33]byte) (*btcec.PublicKey, error) {
	return btcec.ParsePubKey(b[:])
}

// ecdh computes the BOLT #8 Diffie-Hellman operation: SHA256 of the
// compressed serialization of priv*pub, using Jacobian scalar multiplication
// so the shared point is never materialized in affine form until the final
// serialize step.
func ecdh(priv [32]byte, pub [33]byte) ([32]byte, error) {
	pubKey, err := parsePublicKey(pub)
	if err != nil {
		return [32]byte{}, err
	}
	privKey := secpPrivKey(priv)

	var pubJacobian, resultJacobian btcec.JacobianPoint
	pubKey.AsJacobian(&pubJacobian)
	btcec.ScalarMultNonConst(&privKey.Key, &pubJacobian, &resultJacobian)
	resultJacobian.ToAffine()

	sharedPub := btcec.NewPublicKey(&resultJacobian.X, &resultJacobian.Y)
	return sha256.Sum256(sharedPub.SerializeCompressed()), nil
}

func isZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

// zero overwrites a secret byte slice in place. Go has no destructors; this
// is the best-effort equivalent. HandshakeState.fail calls it on the
// temporary keys when a handshake fails; nothing else calls it.
func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
