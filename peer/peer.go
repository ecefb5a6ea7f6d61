package peer

import (
	"encoding/hex"
	"net"
	"sync"
	"time"
)

// Peer tracks the liveness and traffic counters for one Lightning peer
// connection secured by the noise package. It holds no cryptographic
// material itself; NodeID is the peer's static public key, the identity
// the noise handshake authenticated.
type Peer struct {
	mu            sync.RWMutex
	NodeID        [33]byte
	endpoint      net.Addr
	lastHandshake time.Time
	lastSend      time.Time
	lastReceive   time.Time
	messagesSent  uint64
	messagesRecv  uint64
	sendEpoch     uint32
	recvEpoch     uint32
}

// NewPeer constructs a Peer for a connection whose handshake has just
// completed, identified by the now-known remote static key.
func NewPeer(nodeID [33]byte, endpoint net.Addr) *Peer {
	return &Peer{
		NodeID:        nodeID,
		endpoint:      endpoint,
		lastHandshake: time.Now(),
	}
}

// TouchSend records that a transport frame was sent, and is called once per
// message from the peer-connection driver.
func (p *Peer) TouchSend() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastSend = time.Now()
	p.messagesSent++
}

// TouchReceive records that a transport frame was received.
func (p *Peer) TouchReceive() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastReceive = time.Now()
	p.messagesRecv++
}

// SendEpoch returns the send-direction rotation epoch last recorded via
// NoteSendRotation, so a driver can detect "has this rotated since I last
// checked" without holding its own copy of the count.
func (p *Peer) SendEpoch() uint32 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.sendEpoch
}

// RecvEpoch returns the receive-direction rotation epoch last recorded via
// NoteRecvRotation.
func (p *Peer) RecvEpoch() uint32 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.recvEpoch
}

// NoteSendRotation records that the sending key has rotated to the given
// epoch. The driver reads this from noise.Sender.Epoch(), the rotation
// counter the transport itself maintains.
func (p *Peer) NoteSendRotation(epoch uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sendEpoch = epoch
}

// NoteRecvRotation records a receive-direction key rotation, read from
// noise.Receiver.Epoch().
func (p *Peer) NoteRecvRotation(epoch uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.recvEpoch = epoch
}

// Snapshot returns a point-in-time, JSON-serializable view of the peer.
func (p *Peer) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	snapshot := Snapshot{
		NodeID:        hex.EncodeToString(p.NodeID[:]),
		LastHandshake: p.lastHandshake,
		LastSend:      p.lastSend,
		LastReceive:   p.lastReceive,
		MessagesSent:  p.messagesSent,
		MessagesRecv:  p.messagesRecv,
		SendEpoch:     p.sendEpoch,
		RecvEpoch:     p.recvEpoch,
	}
	if p.endpoint != nil {
		snapshot.Endpoint = p.endpoint.String()
	}
	return snapshot
}

type Snapshot struct {
	NodeID        string    `json:"nodeId"`
	Endpoint      string    `json:"endpoint"`
	LastHandshake time.Time `json:"lastHandshake"`
	LastSend      time.Time `json:"lastSend"`
	LastReceive   time.Time `json:"lastReceive"`
	MessagesSent  uint64    `json:"messagesSent"`
	MessagesRecv  uint64    `json:"messagesRecv"`
	SendEpoch     uint32    `json:"sendEpoch"`
	RecvEpoch     uint32    `json:"recvEpoch"`
}
