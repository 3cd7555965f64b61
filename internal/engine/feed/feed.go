// Package feed consumes the store's live notification channel. Only
// journal-change messages are forwarded; everything else, including
// unparsable payloads, is logged and dropped so a bad message can
// never take the view down.
package feed

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

// ChangeType is the message type the engine reacts to.
const ChangeType = "journal-change"

const (
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
)

// Event is one decoded push notification.
type Event struct {
	Type    string `json:"type"`
	Action  string `json:"action"`
	EntryID string `json:"entryId"`
}

// Listener maintains a WebSocket subscription to the push channel,
// reconnecting with bounded exponential backoff when the stream drops
// rather than leaving the channel silently dead.
type Listener struct {
	url    string
	dialer *websocket.Dialer
}

// New returns a listener for the given ws:// or wss:// URL.
func New(wsURL string) *Listener {
	return &Listener{url: wsURL, dialer: websocket.DefaultDialer}
}

// Listen starts consuming the channel until ctx is cancelled. The
// returned channel closes when the listener stops; it only ever
// carries journal-change events.
func (l *Listener) Listen(ctx context.Context) <-chan Event {
	ch := make(chan Event, 4)
	go l.run(ctx, ch)
	return ch
}

func (l *Listener) run(ctx context.Context, ch chan<- Event) {
	defer close(ch)

	backoff := initialBackoff
	for ctx.Err() == nil {
		conn, _, err := l.dialer.DialContext(ctx, l.url, nil)
		if err != nil {
			log.Printf("push channel connect failed (retrying in %s): %v", backoff, err)
			if !sleep(ctx, backoff) {
				return
			}
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}

		if l.read(ctx, conn, ch) {
			// At least one message arrived on this connection.
			backoff = initialBackoff
		}
	}
}

// read pumps one connection until it fails or ctx ends. Reports
// whether any message was successfully received.
func (l *Listener) read(ctx context.Context, conn *websocket.Conn, ch chan<- Event) bool {
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()
	defer conn.Close()

	received := false
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				log.Printf("push channel read failed: %v", err)
			}
			return received
		}
		received = true

		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			log.Printf("ignoring malformed push payload: %v", err)
			continue
		}
		if ev.Type != ChangeType {
			continue
		}

		select {
		case ch <- ev:
		case <-ctx.Done():
			return received
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
