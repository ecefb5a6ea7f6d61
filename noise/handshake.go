package noise

// Role identifies which side of the handshake a HandshakeState plays. The
// pattern is asymmetric (XK): the initiator must know the responder's
// static public key before the handshake starts; the responder learns the
// initiator's static key only at the end of act 3.
type Role int

const (
	RoleInitiator Role = iota
	RoleResponder
)

// state is the explicit progress tag a HandshakeState carries. Every act
// method checks it first and fails closed with ErrOutOfSequence if the
// caller invokes acts out of order, double-invokes one, or calls a
// responder method on an initiator (or vice versa).
type state int

const (
	stateInit state = iota
	stateAct1Sent
	stateAct1Recv
	stateAct2Sent
	stateAct2Recv
	stateAct3Sent
	stateAct3Recv
	stateTransport
	stateTerminated
)

// HandshakeState drives the three-act Noise_XK_secp256k1_ChaChaPoly_SHA256
// dance for one connection, for exactly one role. It is single-owner and
// not safe for concurrent use: only one act method may be in flight at a
// time, matching the "no operation blocks on I/O" / single-owner model the
// post-handshake Transport inherits.
type HandshakeState struct {
	role  Role
	state state
	sym   symmetricState

	ls KeyPair // local static keypair
	e  KeyPair // local ephemeral keypair for this handshake

	rs      [33]byte // remote static public key
	rsKnown bool
	re      [33]byte // remote ephemeral public key, set once received

	tempK1 [32]byte
	tempK2 [32]byte
	tempK3 [32]byte

	transport *Transport
}

// NewInitiator begins a handshake as the initiator. remoteStatic is the
// responder's static public key, which the initiator must already know
// (the "K" in XK) — typically the Lightning node ID being dialed. e is the
// ephemeral keypair act 1 will send; callers normally draw it fresh via
// GenerateKeyPair, but test vectors pin it explicitly.
func NewInitiator(ls, e KeyPair, remoteStatic [33]byte) *HandshakeState {
	hs := &HandshakeState{
		role: RoleInitiator,
		ls:   ls,
		e:    e,
		rs:   remoteStatic,
	}
	hs.rsKnown = true
	hs.sym = initializeSymmetric()
	hs.sym.mixHash(remoteStatic[:])
	return hs
}

// NewResponder begins a handshake as the responder. e is the ephemeral
// keypair act 2 will send once act 1 has been received.
func NewResponder(ls, e KeyPair) *HandshakeState {
	hs := &HandshakeState{
		role: RoleResponder,
		ls:   ls,
		e:    e,
	}
	hs.sym = initializeSymmetric()
	hs.sym.mixHash(ls.Public[:])
	return hs
}

// InitiatorAct1 produces the 50-byte act-1 message: version || e.pub || c.
func (hs *HandshakeState) InitiatorAct1() ([]byte, error) {
	if hs.role != RoleInitiator || hs.state != stateInit {
		return nil, hs.fail(ErrOutOfSequence)
	}

	hs.sym.mixHash(hs.e.Public[:])

	ss, err := ecdh(hs.e.Private, hs.rs)
	if err != nil {
		return nil, hs.fail(ErrAct1BadTag)
	}
	hs.tempK1 = hs.sym.mixKey(ss)

	c := hs.sym.encryptAndHash(hs.tempK1, nil)

	hs.state = stateAct1Sent
	return actMessage(hs.e.Public[:], c), nil
}

// ResponderReceiveAct1 consumes the initiator's act-1 message.
func (hs *HandshakeState) ResponderReceiveAct1(msg []byte) error {
	if hs.role != RoleResponder || hs.state != stateInit {
		return hs.fail(ErrOutOfSequence)
	}
	if len(msg) != 50 {
		return hs.fail(ErrAct1ReadFailed)
	}
	if msg[0] != 0x00 {
		return hs.fail(ErrAct1BadVersion)
	}

	var re [33]byte
	copy(re[:], msg[1:34])
	c := msg[34:50]

	hs.sym.mixHash(re[:])

	ss, err := ecdh(hs.ls.Private, re)
	if err != nil {
		return hs.fail(ErrAct1BadTag)
	}
	hs.tempK1 = hs.sym.mixKey(ss)

	if _, err := hs.sym.decryptAndHash(hs.tempK1, c); err != nil {
		return hs.fail(ErrAct1BadTag)
	}

	hs.re = re
	hs.state = stateAct1Recv
	return nil
}

// ResponderAct2 produces the 50-byte act-2 message: version || e.pub || c.
func (hs *HandshakeState) ResponderAct2() ([]byte, error) {
	if hs.role != RoleResponder || hs.state != stateAct1Recv {
		return nil, hs.fail(ErrOutOfSequence)
	}

	hs.sym.mixHash(hs.e.Public[:])

	ss, err := ecdh(hs.e.Private, hs.re)
	if err != nil {
		return nil, hs.fail(ErrAct2BadTag)
	}
	hs.tempK2 = hs.sym.mixKey(ss)

	c := hs.sym.encryptAndHash(hs.tempK2, nil)

	hs.state = stateAct2Sent
	return actMessage(hs.e.Public[:], c), nil
}

// InitiatorReceiveAct2 consumes the responder's act-2 message.
func (hs *HandshakeState) InitiatorReceiveAct2(msg []byte) error {
	if hs.role != RoleInitiator || hs.state != stateAct1Sent {
		return hs.fail(ErrOutOfSequence)
	}
	if len(msg) != 50 {
		return hs.fail(ErrAct2ReadFailed)
	}
	if msg[0] != 0x00 {
		return hs.fail(ErrAct2BadVersion)
	}

	var re [33]byte
	copy(re[:], msg[1:34])
	c := msg[34:50]

	hs.sym.mixHash(re[:])

	ss, err := ecdh(hs.e.Private, re)
	if err != nil {
		return hs.fail(ErrAct2BadTag)
	}
	hs.tempK2 = hs.sym.mixKey(ss)

	if _, err := hs.sym.decryptAndHash(hs.tempK2, c); err != nil {
		return hs.fail(ErrAct2BadTag)
	}

	hs.re = re
	hs.state = stateAct2Recv
	return nil
}

// InitiatorAct3 produces the 66-byte act-3 message: version || c || t, and
// completes the handshake, making Transport() available.
func (hs *HandshakeState) InitiatorAct3() ([]byte, error) {
	if hs.role != RoleInitiator || hs.state != stateAct2Recv {
		return nil, hs.fail(ErrOutOfSequence)
	}

	c := hs.sym.encryptAndHashN(hs.tempK2, act3StaticKeyNonce, hs.ls.Public[:])

	ss, err := ecdh(hs.ls.Private, hs.re)
	if err != nil {
		return nil, hs.fail(ErrAct3BadTag)
	}
	hs.tempK3 = hs.sym.mixKey(ss)

	t := hs.sym.encryptAndHash(hs.tempK3, nil)

	sendKey, recvKey := hs.sym.split()
	hs.transport = newTransport(hs.sym.ck, sendKey, recvKey)
	hs.state = stateTransport

	msg := make([]byte, 0, 66)
	msg = append(msg, 0x00)
	msg = append(msg, c...)
	msg = append(msg, t...)
	return msg, nil
}

// ResponderReceiveAct3 consumes the initiator's act-3 message, authenticates
// the initiator's revealed static key, and completes the handshake. It
// returns that static key so the caller can record which peer connected.
func (hs *HandshakeState) ResponderReceiveAct3(msg []byte) ([33]byte, error) {
	var remoteStatic [33]byte
	if hs.role != RoleResponder || hs.state != stateAct2Sent {
		return remoteStatic, hs.fail(ErrOutOfSequence)
	}
	if len(msg) != 66 {
		return remoteStatic, hs.fail(ErrAct3ReadFailed)
	}
	if msg[0] != 0x00 {
		return remoteStatic, hs.fail(ErrAct3BadVersion)
	}

	c := msg[1:50]
	t := msg[50:66]

	rsBytes, err := hs.sym.decryptAndHashN(hs.tempK2, act3StaticKeyNonce, c)
	if err != nil {
		return remoteStatic, hs.fail(ErrAct3BadTag)
	}
	copy(remoteStatic[:], rsBytes)

	ss, err := ecdh(hs.e.Private, remoteStatic)
	if err != nil {
		return remoteStatic, hs.fail(ErrAct3BadTag)
	}
	hs.tempK3 = hs.sym.mixKey(ss)

	if _, err := hs.sym.decryptAndHash(hs.tempK3, t); err != nil {
		return remoteStatic, hs.fail(ErrAct3BadTag)
	}

	hs.rs = remoteStatic
	hs.rsKnown = true

	// Responder's send/recv keys are the reverse of the initiator's:
	// the first HKDF output is the key for data flowing from the
	// initiator (responder's recv key), the second is the responder's
	// send key.
	recvKey, sendKey := hs.sym.split()
	hs.transport = newTransport(hs.sym.ck, sendKey, recvKey)
	hs.state = stateTransport

	return remoteStatic, nil
}

// Transport returns the established post-handshake transport cipher. It is
// only valid once the handshake has completed (InitiatorAct3 or
// ResponderReceiveAct3 returned successfully).
func (hs *HandshakeState) Transport() (*Transport, error) {
	if hs.state != stateTransport || hs.transport == nil {
		return nil, ErrOutOfSequence
	}
	return hs.transport, nil
}

// RemoteStatic returns the peer's static public key, known from
// construction for an initiator and learned at act 3 for a responder.
// ok is false if the responder handshake has not reached that point yet.
func (hs *HandshakeState) RemoteStatic() (key [33]byte, ok bool) {
	return hs.rs, hs.rsKnown
}

// fail marks the handshake terminally broken and returns err unchanged, so
// call sites can write `return hs.fail(ErrXxx)` instead of a separate
// assignment-then-return.
func (hs *HandshakeState) fail(err error) error {
	hs.state = stateTerminated
	zero(hs.tempK1[:])
	zero(hs.tempK2[:])
	zero(hs.tempK3[:])
	return err
}

func actMessage(pub []byte, c []byte) []byte {
	msg := make([]byte, 0, 1+len(pub)+len(c))
	msg = append(msg, 0x00)
	msg = append(msg, pub...)
	msg = append(msg, c...)
	return msg
}
