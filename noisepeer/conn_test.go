package noisepeer

import (
	"net"
	"testing"

	"github.com/lnpeer/noisexk/noise"
)

func mustKeyPair(t *testing.T) noise.KeyPair {
	t.Helper()
	kp, err := noise.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	return kp
}

func TestDialAcceptRoundTrip(t *testing.T) {
	initiatorLs := mustKeyPair(t)
	initiatorE := mustKeyPair(t)
	responderLs := mustKeyPair(t)
	responderE := mustKeyPair(t)

	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	type dialResult struct {
		transport *noise.Transport
		err       error
	}
	type acceptResult struct {
		transport    *noise.Transport
		remoteStatic [33]byte
		err          error
	}

	dialCh := make(chan dialResult, 1)
	acceptCh := make(chan acceptResult, 1)

	go func() {
		transport, err := Dial(clientConn, initiatorLs, initiatorE, responderLs.Public, nil)
		dialCh <- dialResult{transport, err}
	}()
	go func() {
		transport, remoteStatic, err := Accept(serverConn, responderLs, responderE, nil)
		acceptCh <- acceptResult{transport, remoteStatic, err}
	}()

	dr := <-dialCh
	if dr.err != nil {
		t.Fatalf("Dial: %v", dr.err)
	}
	ar := <-acceptCh
	if ar.err != nil {
		t.Fatalf("Accept: %v", ar.err)
	}
	if ar.remoteStatic != initiatorLs.Public {
		t.Fatalf("Accept learned wrong remote static key")
	}

	clientSender, clientReceiver := dr.transport.Split()
	serverSender, serverReceiver := ar.transport.Split()

	messages := []string{"hello", "", "another message", "a longer message to exercise framing a bit more"}

	errs := make(chan error, len(messages)*2)
	go func() {
		for _, m := range messages {
			if err := WriteFrame(clientConn, clientSender, []byte(m)); err != nil {
				errs <- err
				return
			}
		}
		errs <- nil
	}()
	go func() {
		for _, want := range messages {
			got, err := ReadFrame(serverConn, serverReceiver)
			if err != nil {
				errs <- err
				return
			}
			if string(got) != want {
				errs <- nil
				t.Errorf("server got %q, want %q", got, want)
				return
			}
		}
		errs <- nil
	}()
	for i := 0; i < 2; i++ {
		if err := <-errs; err != nil {
			t.Fatalf("frame exchange: %v", err)
		}
	}

	// Reverse direction too, to exercise both Sender/Receiver halves.
	go func() {
		if err := WriteFrame(serverConn, serverSender, []byte("pong")); err != nil {
			t.Errorf("WriteFrame: %v", err)
		}
	}()
	got, err := ReadFrame(clientConn, clientReceiver)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if string(got) != "pong" {
		t.Fatalf("got %q, want %q", got, "pong")
	}
}

func TestReadFrameDesyncIsAnError(t *testing.T) {
	initiatorLs := mustKeyPair(t)
	initiatorE := mustKeyPair(t)
	responderLs := mustKeyPair(t)
	responderE := mustKeyPair(t)

	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	type result struct {
		transport *noise.Transport
		err       error
	}
	dialCh := make(chan result, 1)
	acceptCh := make(chan result, 1)

	go func() {
		transport, err := Dial(clientConn, initiatorLs, initiatorE, responderLs.Public, nil)
		dialCh <- result{transport, err}
	}()
	go func() {
		transport, _, err := Accept(serverConn, responderLs, responderE, nil)
		acceptCh <- result{transport, err}
	}()

	dr := <-dialCh
	if dr.err != nil {
		t.Fatalf("Dial: %v", dr.err)
	}
	ar := <-acceptCh
	if ar.err != nil {
		t.Fatalf("Accept: %v", ar.err)
	}

	_, serverReceiver := ar.transport.Split()

	// Calling DecryptMessage without a preceding DecryptLength must fail
	// rather than silently desynchronizing rn.
	if _, err := serverReceiver.DecryptMessage(make([]byte, 21)); err == nil {
		t.Fatalf("DecryptMessage without DecryptLength should fail")
	}
}
