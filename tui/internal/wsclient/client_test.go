package wsclient

import (
	"bytes"
	"log"
	"os"
	"testing"
	"time"
)

func TestClientErrorHandling(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	client := New("localhost", 9999) // port assumed unused

	cmd := client.Connect()
	msg := cmd()

	statusMsg, ok := msg.(ConnectionStatusMsg)
	if !ok {
		t.Fatalf("expected ConnectionStatusMsg, got %T", msg)
	}
	if statusMsg.Connected {
		t.Error("expected connection to fail")
	}
	if statusMsg.Error == nil {
		t.Error("expected error to be non-nil")
	}

	time.Sleep(100 * time.Millisecond)

	if buf.Len() > 0 {
		t.Errorf("expected no log output, got: %s", buf.String())
	}
}

func TestClientReconnection(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	client := New("localhost", 9999)

	cmd := client.Connect()
	msg := cmd()
	statusMsg, ok := msg.(ConnectionStatusMsg)
	if !ok || statusMsg.Connected {
		t.Skip("test requires no daemon running on port 9999")
	}

	reconnectCmd := client.Reconnect()
	reconnectMsg := reconnectCmd()

	statusMsg2, ok := reconnectMsg.(ConnectionStatusMsg)
	if !ok {
		t.Fatalf("expected ConnectionStatusMsg on reconnect, got %T", reconnectMsg)
	}
	if statusMsg2.Connected {
		t.Error("expected reconnection to fail (no daemon running)")
	}

	if err := client.Close(); err != nil {
		t.Errorf("expected Close() to succeed, got error: %v", err)
	}

	if buf.Len() > 0 {
		t.Errorf("expected no log output, got: %s", buf.String())
	}
}

func TestClientIsConnected(t *testing.T) {
	client := New("localhost", 9999)

	if client.IsConnected() {
		t.Error("expected client to not be connected initially")
	}

	cmd := client.Connect()
	cmd()

	if client.IsConnected() {
		t.Error("expected client to not be connected after failed connection")
	}
}
