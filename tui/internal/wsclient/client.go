// Package wsclient connects the viewer to a running daemon's summary
// websocket and turns incoming frames into Bubble Tea messages.
package wsclient

import (
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"

	"github.com/nettap/tcpreasm-view/internal/models"
)

// Client owns the websocket connection to a daemon's /summaries endpoint.
type Client struct {
	conn     *websocket.Conn
	url      string
	messages chan models.ConnectionSummary
}

// SummaryMsg carries one updated connection summary into the Bubble Tea
// update loop.
type SummaryMsg models.ConnectionSummary

// ConnectionStatusMsg reports the outcome of a (re)connect attempt.
type ConnectionStatusMsg struct {
	Connected bool
	Error     error
}

// New creates a client targeting the daemon at host:port.
func New(host string, port int) *Client {
	u := url.URL{Scheme: "ws", Host: fmt.Sprintf("%s:%d", host, port), Path: "/summaries"}
	return &Client{
		url:      u.String(),
		messages: make(chan models.ConnectionSummary, 256),
	}
}

// Connect dials the daemon and starts the read loop, returning a command
// that resolves to a ConnectionStatusMsg.
func (c *Client) Connect() tea.Cmd {
	return func() tea.Msg {
		conn, _, err := websocket.DefaultDialer.Dial(c.url, nil)
		if err != nil {
			return ConnectionStatusMsg{Connected: false, Error: err}
		}
		c.conn = conn

		go c.readMessages()

		return ConnectionStatusMsg{Connected: true}
	}
}

func (c *Client) readMessages() {
	defer c.Close()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			log.Printf("[WARN] wsclient: read error: %v", err)
			return
		}

		var summary models.ConnectionSummary
		if err := json.Unmarshal(message, &summary); err != nil {
			log.Printf("[WARN] wsclient: decode error: %v", err)
			continue
		}

		select {
		case c.messages <- summary:
		default:
			// Drop the update rather than block the read loop; the next
			// broadcast will carry a fresher picture of the connection.
		}
	}
}

// WaitForSummary returns a command that blocks until the next summary
// arrives, resolving to a SummaryMsg.
func (c *Client) WaitForSummary() tea.Cmd {
	return func() tea.Msg {
		summary := <-c.messages
		return SummaryMsg(summary)
	}
}

// Close closes the underlying connection, if any.
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsConnected reports whether Connect has established a live connection.
func (c *Client) IsConnected() bool {
	return c.conn != nil
}

// Reconnect waits briefly, then attempts Connect again.
func (c *Client) Reconnect() tea.Cmd {
	return func() tea.Msg {
		time.Sleep(2 * time.Second)
		return c.Connect()()
	}
}
