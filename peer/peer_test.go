package peer

import (
	"net"
	"testing"
)

func testNodeID() [33]byte {
	var id [33]byte
	id[0] = 0x02
	id[1] = 0xab
	return id
}

func TestNewPeerSnapshot(t *testing.T) {
	addr := &net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 9735}
	p := NewPeer(testNodeID(), addr)

	snap := p.Snapshot()
	if snap.NodeID == "" {
		t.Error("Snapshot().NodeID should not be empty")
	}
	if snap.Endpoint != addr.String() {
		t.Errorf("Snapshot().Endpoint = %q, want %q", snap.Endpoint, addr.String())
	}
	if snap.LastHandshake.IsZero() {
		t.Error("Snapshot().LastHandshake should be set at construction")
	}
	if snap.MessagesSent != 0 || snap.MessagesRecv != 0 {
		t.Error("a fresh peer should have no traffic counted yet")
	}
}

func TestTouchSendAndReceive(t *testing.T) {
	p := NewPeer(testNodeID(), nil)

	p.TouchSend()
	p.TouchSend()
	p.TouchReceive()

	snap := p.Snapshot()
	if snap.MessagesSent != 2 {
		t.Errorf("MessagesSent = %d, want 2", snap.MessagesSent)
	}
	if snap.MessagesRecv != 1 {
		t.Errorf("MessagesRecv = %d, want 1", snap.MessagesRecv)
	}
	if snap.LastSend.IsZero() || snap.LastReceive.IsZero() {
		t.Error("LastSend/LastReceive should be set after Touch calls")
	}
}

func TestNoteRotation(t *testing.T) {
	p := NewPeer(testNodeID(), nil)

	if p.SendEpoch() != 0 || p.RecvEpoch() != 0 {
		t.Fatalf("a fresh peer should start at epoch 0 in both directions")
	}

	p.NoteSendRotation(1)
	p.NoteRecvRotation(3)

	if got := p.SendEpoch(); got != 1 {
		t.Errorf("SendEpoch() = %d, want 1", got)
	}
	if got := p.RecvEpoch(); got != 3 {
		t.Errorf("RecvEpoch() = %d, want 3", got)
	}

	snap := p.Snapshot()
	if snap.SendEpoch != 1 || snap.RecvEpoch != 3 {
		t.Errorf("Snapshot epochs = (%d, %d), want (1, 3)", snap.SendEpoch, snap.RecvEpoch)
	}
}

func TestSnapshotWithNilEndpoint(t *testing.T) {
	p := NewPeer(testNodeID(), nil)
	if snap := p.Snapshot(); snap.Endpoint != "" {
		t.Errorf("Snapshot().Endpoint = %q, want empty for a nil endpoint", snap.Endpoint)
	}
}
