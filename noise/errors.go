package noise

import "errors"

// Handshake and transport errors. Each is a distinct, non-recoverable
// sentinel so callers can distinguish failure modes with errors.Is while
// still getting a human-readable message. None of these leave the state
// machine in a usable condition; the owning connection must be dropped.
var (
	ErrAct1ReadFailed = errors.New("noise: act1 message has unexpected length")
	ErrAct1BadVersion = errors.New("noise: act1 message has unsupported version byte")
	ErrAct1BadTag     = errors.New("noise: act1 authentication failed")

	ErrAct2ReadFailed = errors.New("noise: act2 message has unexpected length")
	ErrAct2BadVersion = errors.New("noise: act2 message has unsupported version byte")
	ErrAct2BadTag     = errors.New("noise: act2 authentication failed")

	ErrAct3ReadFailed = errors.New("noise: act3 message has unexpected length")
	ErrAct3BadVersion = errors.New("noise: act3 message has unsupported version byte")
	ErrAct3BadTag     = errors.New("noise: act3 authentication failed")

	ErrTransportBadTag = errors.New("noise: transport authentication failed")
	ErrOutOfSequence   = errors.New("noise: handshake method invoked out of sequence")

	ErrMessageTooLarge = errors.New("noise: message exceeds 65535 bytes")
)
